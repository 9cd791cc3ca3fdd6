package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// GenerateCode генерирует числовой код верификации заданной длины.
// Каждая цифра выбирается независимо и равномерно из 0-9.
// В потоке звонков код выбирает провайдер, а генератор используется
// dev-диспетчером и каналами, где код создаём мы сами.
func GenerateCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("codegen: длина кода должна быть положительной")
	}

	var sb strings.Builder
	sb.Grow(length)

	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("codegen: не удалось получить случайную цифру: %w", err)
		}
		sb.WriteByte(byte('0' + n.Int64()))
	}

	return sb.String(), nil
}
