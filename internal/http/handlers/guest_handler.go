package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ivanzorin/wedding-backend/internal/http/handlers/common"
	"github.com/ivanzorin/wedding-backend/internal/pkg/apperror"
	"github.com/ivanzorin/wedding-backend/internal/repository"
)

type GuestHandler struct {
	guests *repository.GuestRepository
}

func NewGuestHandler(guests *repository.GuestRepository) *GuestHandler {
	return &GuestHandler{guests: guests}
}

// Me GET /guests/me
func (h *GuestHandler) Me(c *gin.Context) {
	guest, err := common.CurrentGuest(c)
	if err != nil {
		common.Fail(c, apperror.New(apperror.ErrCodeUnauthorized, "требуется авторизация"))
		return
	}

	c.JSON(http.StatusOK, guest)
}

// GetRSVP GET /rsvp
func (h *GuestHandler) GetRSVP(c *gin.Context) {
	guest, err := common.CurrentGuest(c)
	if err != nil {
		common.Fail(c, apperror.New(apperror.ErrCodeUnauthorized, "требуется авторизация"))
		return
	}

	message := "RSVP еще не подтвержден"
	if guest.RSVP != nil {
		if *guest.RSVP {
			message = "Вы подтвердили присутствие"
		} else {
			message = "Вы отклонили приглашение"
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": message, "rsvp": guest.RSVP})
}

// SetRSVP POST /rsvp
func (h *GuestHandler) SetRSVP(c *gin.Context) {
	guest, err := common.CurrentGuest(c)
	if err != nil {
		common.Fail(c, apperror.New(apperror.ErrCodeUnauthorized, "требуется авторизация"))
		return
	}

	var req struct {
		RSVP *bool `json:"rsvp" binding:"required"`
	}
	if err := common.BindJSON(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	if err := h.guests.UpdateRSVP(c.Request.Context(), guest.UUID, *req.RSVP); err != nil {
		common.Fail(c, apperror.Wrap(err, apperror.ErrCodeInternal, "Ошибка при сохранении RSVP"))
		return
	}

	message := "Отклонение присутствия сохранено"
	if *req.RSVP {
		message = "Подтверждение присутствия сохранено"
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": message, "rsvp": *req.RSVP})
}
