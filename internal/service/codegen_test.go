package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCode_LengthAndDigits(t *testing.T) {
	for _, length := range []int{4, 6, 8} {
		code, err := GenerateCode(length)
		require.NoError(t, err)
		assert.Len(t, code, length)
		for _, r := range code {
			assert.GreaterOrEqual(t, r, '0')
			assert.LessOrEqual(t, r, '9')
		}
	}
}

func TestGenerateCode_InvalidLength(t *testing.T) {
	_, err := GenerateCode(0)
	assert.Error(t, err)

	_, err = GenerateCode(-1)
	assert.Error(t, err)
}

func TestGenerateCode_CoversAllDigits(t *testing.T) {
	// На 200 четырёхзначных кодах каждая цифра должна встретиться хотя бы раз.
	seen := make(map[rune]bool)
	for i := 0; i < 200; i++ {
		code, err := GenerateCode(4)
		require.NoError(t, err)
		for _, r := range code {
			seen[r] = true
		}
	}
	assert.Len(t, seen, 10)
}
