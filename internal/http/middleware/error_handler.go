package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ivanzorin/wedding-backend/internal/logger"
	"github.com/ivanzorin/wedding-backend/internal/pkg/apperror"
)

// ErrorHandler обрабатывает ошибки централизованно: варианты apperror
// превращаются в HTTP ответы только здесь, внутренние ошибки маскируются.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err

		if appErr, ok := apperror.AsAppError(err); ok {
			if logger.Log != nil && appErr.HTTPStatus >= http.StatusInternalServerError {
				logger.Log.WithFields(logrus.Fields{
					"code":   appErr.Code,
					"error":  appErr.Error(),
					"path":   c.Request.URL.Path,
					"method": c.Request.Method,
				}).Error("Request error")
			}

			body := gin.H{"error": appErr.Message, "code": appErr.Code}
			if appErr.SecondsRemaining > 0 {
				body["seconds_remaining"] = appErr.SecondsRemaining
			}
			if appErr.Code == apperror.ErrCodeCodeMismatch {
				body["attempts_left"] = appErr.AttemptsLeft
			}
			c.JSON(appErr.HTTPStatus, body)
			return
		}

		// Неизвестная ошибка: логируем причину, клиенту общий ответ.
		if logger.Log != nil {
			logger.Log.WithFields(logrus.Fields{
				"error":  err.Error(),
				"path":   c.Request.URL.Path,
				"method": c.Request.Method,
			}).Error("Request error")
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "внутренняя ошибка сервера"})
	}
}
