package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ivanzorin/wedding-backend/internal/repository"
	"github.com/ivanzorin/wedding-backend/internal/service"
)

// Context ключи для gin.Context.
const (
	ContextPhoneKey = "phone"
	ContextGuestKey = "guest"
)

// AuthMiddleware проверяет JWT access токен и кладёт в контекст номер
// телефона и запись гостя.
func AuthMiddleware(tokens *service.TokenManager, guests *repository.GuestRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "требуется авторизация"})
			return
		}

		raw := strings.TrimPrefix(auth, "Bearer ")
		phone, err := tokens.VerifyAccess(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "токен истек или недействителен"})
			return
		}

		guest, err := guests.GetByPhone(c.Request.Context(), phone)
		if errors.Is(err, repository.ErrGuestNotFound) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "гость не найден"})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "внутренняя ошибка сервера"})
			return
		}

		c.Set(ContextPhoneKey, phone)
		c.Set(ContextGuestKey, guest)
		c.Next()
	}
}
