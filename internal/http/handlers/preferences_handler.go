package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ivanzorin/wedding-backend/internal/http/handlers/common"
	"github.com/ivanzorin/wedding-backend/internal/pkg/apperror"
	"github.com/ivanzorin/wedding-backend/internal/service"
)

type PreferencesHandler struct {
	preferences *service.PreferencesService
}

func NewPreferencesHandler(preferences *service.PreferencesService) *PreferencesHandler {
	return &PreferencesHandler{preferences: preferences}
}

// FormOptions GET /preferences/form-options
func (h *PreferencesHandler) FormOptions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"food_choices":    service.FoodChoices,
		"alcohol_choices": service.AlcoholChoices,
	})
}

// GetAll GET /preferences
func (h *PreferencesHandler) GetAll(c *gin.Context) {
	guest, err := common.CurrentGuest(c)
	if err != nil {
		common.Fail(c, apperror.New(apperror.ErrCodeUnauthorized, "требуется авторизация"))
		return
	}

	prefs, err := h.preferences.GetAll(c.Request.Context(), guest.UUID)
	if err != nil {
		common.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, prefs)
}

// SetFood POST /preferences/food
func (h *PreferencesHandler) SetFood(c *gin.Context) {
	guest, err := common.CurrentGuest(c)
	if err != nil {
		common.Fail(c, apperror.New(apperror.ErrCodeUnauthorized, "требуется авторизация"))
		return
	}

	var req struct {
		FoodChoice string `json:"food_choice" binding:"required"`
	}
	if err := common.BindJSON(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	if err := h.preferences.SetFood(c.Request.Context(), guest.UUID, req.FoodChoice); err != nil {
		common.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "Предпочтение по еде сохранено",
		"food_choice": req.FoodChoice,
	})
}

// SetAlcohol POST /preferences/alcohol
func (h *PreferencesHandler) SetAlcohol(c *gin.Context) {
	guest, err := common.CurrentGuest(c)
	if err != nil {
		common.Fail(c, apperror.New(apperror.ErrCodeUnauthorized, "требуется авторизация"))
		return
	}

	var req struct {
		AlcoholChoices []string `json:"alcohol_choices" binding:"required"`
	}
	if err := common.BindJSON(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	if err := h.preferences.SetAlcohol(c.Request.Context(), guest.UUID, req.AlcoholChoices); err != nil {
		common.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"message":         "Предпочтения по алкоголю сохранены",
		"alcohol_choices": req.AlcoholChoices,
	})
}

// AddAllergy POST /preferences/allergies
func (h *PreferencesHandler) AddAllergy(c *gin.Context) {
	guest, err := common.CurrentGuest(c)
	if err != nil {
		common.Fail(c, apperror.New(apperror.ErrCodeUnauthorized, "требуется авторизация"))
		return
	}

	var req struct {
		Allergen string `json:"allergen" binding:"required"`
	}
	if err := common.BindJSON(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	if err := h.preferences.AddAllergy(c.Request.Context(), guest.UUID, req.Allergen); err != nil {
		common.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Аллергия добавлена",
		"allergen": req.Allergen,
	})
}

// DeleteAllergy DELETE /preferences/allergies
func (h *PreferencesHandler) DeleteAllergy(c *gin.Context) {
	guest, err := common.CurrentGuest(c)
	if err != nil {
		common.Fail(c, apperror.New(apperror.ErrCodeUnauthorized, "требуется авторизация"))
		return
	}

	var req struct {
		Allergen string `json:"allergen" binding:"required"`
	}
	if err := common.BindJSON(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	if err := h.preferences.DeleteAllergy(c.Request.Context(), guest.UUID, req.Allergen); err != nil {
		common.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Аллергия удалена",
		"allergen": req.Allergen,
	})
}
