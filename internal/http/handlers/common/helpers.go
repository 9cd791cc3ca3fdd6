package common

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ivanzorin/wedding-backend/internal/http/middleware"
	"github.com/ivanzorin/wedding-backend/internal/models"
	"github.com/ivanzorin/wedding-backend/internal/pkg/apperror"
)

// ErrGuestNotInContext возвращается, когда в контексте запроса нет гостя.
var ErrGuestNotInContext = errors.New("гость не найден в контексте")

// CurrentGuest извлекает запись гостя, положенную auth middleware.
func CurrentGuest(c *gin.Context) (*models.Guest, error) {
	raw, exists := c.Get(middleware.ContextGuestKey)
	if !exists {
		return nil, ErrGuestNotInContext
	}

	guest, ok := raw.(*models.Guest)
	if !ok {
		return nil, ErrGuestNotInContext
	}

	return guest, nil
}

// CurrentPhone извлекает номер телефона из контекста.
func CurrentPhone(c *gin.Context) (string, error) {
	raw, exists := c.Get(middleware.ContextPhoneKey)
	if !exists {
		return "", ErrGuestNotInContext
	}

	phone, ok := raw.(string)
	if !ok {
		return "", ErrGuestNotInContext
	}

	return phone, nil
}

// BindJSON валидирует тело запроса, оборачивая ошибку в вариант BadRequest.
func BindJSON(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeBadRequest, "некорректное тело запроса")
	}
	return nil
}

// ParseUUIDField разбирает строку как UUID, возвращая вариант BadRequest.
func ParseUUIDField(value, field string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, apperror.New(apperror.ErrCodeBadRequest,
			fmt.Sprintf("неверный формат %s", field))
	}
	return parsed, nil
}

// Fail передаёт ошибку централизованному обработчику.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
}
