package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// Константы валидации
const (
	MinCodeLength = 4
	MaxCodeLength = 6
)

var (
	phonePattern = regexp.MustCompile(`^\+?\d{10,15}$`)
	digitsOnly   = regexp.MustCompile(`^\d+$`)
)

// CleanPhone убирает пробелы, дефисы и скобки из номера.
func CleanPhone(phone string) string {
	return strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(phone)
}

// ValidatePhone проверяет формат номера телефона после очистки.
func ValidatePhone(phone string) error {
	cleaned := CleanPhone(phone)
	if !phonePattern.MatchString(cleaned) {
		return fmt.Errorf("некорректный формат номера телефона")
	}
	return nil
}

// NormalizePhone приводит номер к виду +<цифры>.
// Номер из 11 цифр, начинающийся с 8, считается российским и получает +7.
func NormalizePhone(phone string) string {
	cleaned := strings.TrimPrefix(CleanPhone(phone), "+")
	if strings.HasPrefix(cleaned, "8") && len(cleaned) == 11 {
		cleaned = "7" + cleaned[1:]
	}
	return "+" + cleaned
}

// ValidateCode проверяет, что код верификации состоит только из цифр.
func ValidateCode(code string) error {
	if len(code) < MinCodeLength || len(code) > MaxCodeLength {
		return fmt.Errorf("код должен быть от %d до %d символов", MinCodeLength, MaxCodeLength)
	}
	if !digitsOnly.MatchString(code) {
		return fmt.Errorf("код должен содержать только цифры")
	}
	return nil
}
