package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound          ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized      ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden         ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest        ErrorCode = "BAD_REQUEST"
	ErrCodeInternal          ErrorCode = "INTERNAL_ERROR"
	ErrCodeLockContention    ErrorCode = "LOCK_CONTENTION"
	ErrCodeCooldownActive    ErrorCode = "COOLDOWN_ACTIVE"
	ErrCodeCodeExpired       ErrorCode = "CODE_EXPIRED_OR_MISSING"
	ErrCodeAttemptsExhausted ErrorCode = "ATTEMPTS_EXHAUSTED"
	ErrCodeCodeMismatch      ErrorCode = "CODE_MISMATCH"
	ErrCodeDispatchFailure   ErrorCode = "DISPATCH_FAILURE"
	ErrCodeTokenInvalid      ErrorCode = "TOKEN_INVALID"
	ErrCodeTokenRevoked      ErrorCode = "TOKEN_REVOKED"
)

// AppError — закрытый набор исходов операций движка. Сервисы возвращают
// эти варианты, а в HTTP статусы они превращаются только на границе.
type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error

	// SecondsRemaining заполняется для CooldownActive.
	SecondsRemaining int
	// AttemptsLeft заполняется для CodeMismatch.
	AttemptsLeft int
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

// CooldownActive сообщает, сколько секунд осталось до следующего запроса кода.
func CooldownActive(seconds int) *AppError {
	e := New(ErrCodeCooldownActive, fmt.Sprintf("Слишком частые запросы. Попробуйте через %d секунд.", seconds))
	e.SecondsRemaining = seconds
	return e
}

// CodeMismatch сообщает количество оставшихся попыток.
func CodeMismatch(attemptsLeft int) *AppError {
	e := New(ErrCodeCodeMismatch, fmt.Sprintf("Неверный код. Осталось попыток: %d", attemptsLeft))
	e.AttemptsLeft = attemptsLeft
	return e
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized, ErrCodeTokenInvalid, ErrCodeTokenRevoked:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeBadRequest, ErrCodeCodeExpired, ErrCodeAttemptsExhausted, ErrCodeCodeMismatch:
		return http.StatusBadRequest
	case ErrCodeLockContention, ErrCodeCooldownActive:
		return http.StatusTooManyRequests
	case ErrCodeDispatchFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// AsAppError извлекает AppError из цепочки ошибок.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func IsCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

var (
	ErrGuestNotFound       = New(ErrCodeNotFound, "Гость с таким номером телефона не найден")
	ErrLockContention      = New(ErrCodeLockContention, "Запрос уже обрабатывается. Подождите несколько секунд.")
	ErrVerificationExpired = New(ErrCodeCodeExpired, "Код не найден или истек. Запросите новый код.")
	ErrAttemptsExhausted   = New(ErrCodeAttemptsExhausted, "Превышено количество попыток. Запросите новый код.")
	ErrTokenInvalid        = New(ErrCodeTokenInvalid, "Токен истек или недействителен")
	ErrTokenRevoked        = New(ErrCodeTokenRevoked, "Токен отозван или уже использован")
)
