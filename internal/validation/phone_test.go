package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanPhone(t *testing.T) {
	assert.Equal(t, "+79991234567", CleanPhone("+7 (999) 123-45-67"))
	assert.Equal(t, "89991234567", CleanPhone("8 999 123 45 67"))
}

func TestValidatePhone(t *testing.T) {
	assert.NoError(t, ValidatePhone("+79991234567"))
	assert.NoError(t, ValidatePhone("79991234567"))
	assert.NoError(t, ValidatePhone("+7 (999) 123-45-67"))

	assert.Error(t, ValidatePhone(""))
	assert.Error(t, ValidatePhone("12345"))
	assert.Error(t, ValidatePhone("abc1234567890"))
	assert.Error(t, ValidatePhone("+7999123456789012"))
}

func TestNormalizePhone(t *testing.T) {
	// Российский номер с 8 переводится в +7.
	assert.Equal(t, "+79991234567", NormalizePhone("89991234567"))
	assert.Equal(t, "+79991234567", NormalizePhone("8 (999) 123-45-67"))

	// Номер с + остаётся как есть.
	assert.Equal(t, "+79991234567", NormalizePhone("+79991234567"))

	// Прочие номера просто получают +.
	assert.Equal(t, "+79991234567", NormalizePhone("79991234567"))
	assert.Equal(t, "+380991234567", NormalizePhone("380991234567"))
}

func TestValidateCode(t *testing.T) {
	assert.NoError(t, ValidateCode("4821"))
	assert.NoError(t, ValidateCode("482135"))

	assert.Error(t, ValidateCode("123"))
	assert.Error(t, ValidateCode("1234567"))
	assert.Error(t, ValidateCode("48a1"))
	assert.Error(t, ValidateCode(""))
}
