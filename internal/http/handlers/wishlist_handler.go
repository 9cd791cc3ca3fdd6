package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ivanzorin/wedding-backend/internal/http/handlers/common"
	"github.com/ivanzorin/wedding-backend/internal/pkg/apperror"
	"github.com/ivanzorin/wedding-backend/internal/service"
)

type WishlistHandler struct {
	wishlist *service.WishlistService
}

func NewWishlistHandler(wishlist *service.WishlistService) *WishlistHandler {
	return &WishlistHandler{wishlist: wishlist}
}

// List GET /wishlist
func (h *WishlistHandler) List(c *gin.Context) {
	guest, err := common.CurrentGuest(c)
	if err != nil {
		common.Fail(c, apperror.New(apperror.ErrCodeUnauthorized, "требуется авторизация"))
		return
	}

	list, err := h.wishlist.List(c.Request.Context())
	if err != nil {
		common.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":             list.Items,
		"bride_items":       list.BrideItems,
		"groom_items":       list.GroomItems,
		"current_user_uuid": guest.UUID,
	})
}

// Reserve POST /wishlist/reserve
func (h *WishlistHandler) Reserve(c *gin.Context) {
	guest, err := common.CurrentGuest(c)
	if err != nil {
		common.Fail(c, apperror.New(apperror.ErrCodeUnauthorized, "требуется авторизация"))
		return
	}

	var req struct {
		WishlistUUID string `json:"wishlist_uuid" binding:"required"`
	}
	if err := common.BindJSON(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	itemID, err := common.ParseUUIDField(req.WishlistUUID, "wishlist_uuid")
	if err != nil {
		common.Fail(c, err)
		return
	}

	item, err := h.wishlist.Reserve(c.Request.Context(), itemID, guest.UUID)
	if err != nil {
		common.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Предмет успешно забронирован",
		"item":    item,
	})
}

// Unreserve POST /wishlist/unreserve
func (h *WishlistHandler) Unreserve(c *gin.Context) {
	guest, err := common.CurrentGuest(c)
	if err != nil {
		common.Fail(c, apperror.New(apperror.ErrCodeUnauthorized, "требуется авторизация"))
		return
	}

	var req struct {
		WishlistUUID string `json:"wishlist_uuid" binding:"required"`
	}
	if err := common.BindJSON(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	itemID, err := common.ParseUUIDField(req.WishlistUUID, "wishlist_uuid")
	if err != nil {
		common.Fail(c, err)
		return
	}

	if err := h.wishlist.Unreserve(c.Request.Context(), itemID, guest.UUID); err != nil {
		common.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Бронирование отменено"})
}
