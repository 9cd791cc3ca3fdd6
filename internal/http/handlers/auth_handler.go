package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ivanzorin/wedding-backend/internal/http/handlers/common"
	"github.com/ivanzorin/wedding-backend/internal/pkg/apperror"
	"github.com/ivanzorin/wedding-backend/internal/service"
	"github.com/ivanzorin/wedding-backend/internal/validation"
)

type AuthHandler struct {
	sessions *service.SessionService
}

func NewAuthHandler(sessions *service.SessionService) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

// SendCode POST /auth/send-code
func (h *AuthHandler) SendCode(c *gin.Context) {
	var req struct {
		Phone string `json:"phone" binding:"required"`
	}
	if err := common.BindJSON(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	if err := validation.ValidatePhone(req.Phone); err != nil {
		common.Fail(c, apperror.New(apperror.ErrCodeBadRequest, err.Error()))
		return
	}
	phone := validation.NormalizePhone(req.Phone)

	message, err := h.sessions.RequestCode(c.Request.Context(), phone)
	if err != nil {
		common.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}

// VerifyCode POST /auth/verify-code
func (h *AuthHandler) VerifyCode(c *gin.Context) {
	var req struct {
		Phone string `json:"phone" binding:"required"`
		Code  string `json:"code" binding:"required"`
	}
	if err := common.BindJSON(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	if err := validation.ValidatePhone(req.Phone); err != nil {
		common.Fail(c, apperror.New(apperror.ErrCodeBadRequest, err.Error()))
		return
	}
	if err := validation.ValidateCode(req.Code); err != nil {
		common.Fail(c, apperror.New(apperror.ErrCodeBadRequest, err.Error()))
		return
	}
	phone := validation.NormalizePhone(req.Phone)

	result, err := h.sessions.ConfirmCode(c.Request.Context(), phone, req.Code)
	if err != nil {
		common.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       result.Message,
		"access_token":  result.Tokens.AccessToken,
		"refresh_token": result.Tokens.RefreshToken,
		"guest":         result.Guest,
	})
}

// Refresh POST /auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := common.BindJSON(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	pair, err := h.sessions.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		common.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, pair)
}

// Logout POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := common.BindJSON(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	if err := h.sessions.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		common.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Выход выполнен успешно"})
}

// Validate GET /auth/validate
func (h *AuthHandler) Validate(c *gin.Context) {
	auth := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if len(auth) <= len(prefix) || auth[:len(prefix)] != prefix {
		common.Fail(c, apperror.New(apperror.ErrCodeUnauthorized, "требуется авторизация"))
		return
	}

	result, err := h.sessions.Validate(c.Request.Context(), auth[len(prefix):])
	if err != nil {
		common.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":  true,
		"phone":  result.Phone,
		"friend": result.Friend,
	})
}

// OAuthLogin POST /auth/oauth/login
func (h *AuthHandler) OAuthLogin(c *gin.Context) {
	var req struct {
		Provider    string `json:"provider" binding:"required,oneof=vk yandex"`
		AccessToken string `json:"access_token" binding:"required"`
	}
	if err := common.BindJSON(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	result, err := h.sessions.LoginWithOAuth(c.Request.Context(), req.Provider, req.AccessToken)
	if err != nil {
		common.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       result.Message,
		"access_token":  result.Tokens.AccessToken,
		"refresh_token": result.Tokens.RefreshToken,
		"guest":         result.Guest,
	})
}
