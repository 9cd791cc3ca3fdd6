package router

import (
	"github.com/gin-gonic/gin"

	"github.com/ivanzorin/wedding-backend/internal/config"
	"github.com/ivanzorin/wedding-backend/internal/http/handlers"
	"github.com/ivanzorin/wedding-backend/internal/http/middleware"
	"github.com/ivanzorin/wedding-backend/internal/repository"
	"github.com/ivanzorin/wedding-backend/internal/service"
)

func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	guestHandler *handlers.GuestHandler,
	wishlistHandler *handlers.WishlistHandler,
	preferencesHandler *handlers.PreferencesHandler,
	galleryHandler *handlers.GalleryHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
	guestRepo *repository.GuestRepository,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)

	api := r.Group("/api")

	// Авторизация: транспортный rate limit поверх кулдауна движка.
	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		authGroup.POST("/send-code", authHandler.SendCode)
		authGroup.POST("/verify-code", authHandler.VerifyCode)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/logout", authHandler.Logout)
		authGroup.GET("/validate", authHandler.Validate)
		authGroup.POST("/oauth/login", authHandler.OAuthLogin)
	}

	// Защищённые маршруты
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager, guestRepo))
	{
		protected.GET("/guests/me", guestHandler.Me)

		protected.GET("/rsvp", guestHandler.GetRSVP)
		protected.POST("/rsvp", guestHandler.SetRSVP)

		protected.GET("/wishlist", wishlistHandler.List)
		protected.POST("/wishlist/reserve", wishlistHandler.Reserve)
		protected.POST("/wishlist/unreserve", wishlistHandler.Unreserve)

		protected.GET("/preferences", preferencesHandler.GetAll)
		protected.GET("/preferences/form-options", preferencesHandler.FormOptions)
		protected.POST("/preferences/food", preferencesHandler.SetFood)
		protected.POST("/preferences/alcohol", preferencesHandler.SetAlcohol)
		protected.POST("/preferences/allergies", preferencesHandler.AddAllergy)
		protected.DELETE("/preferences/allergies", preferencesHandler.DeleteAllergy)

		protected.GET("/gallery/status", galleryHandler.Status)
		protected.GET("/gallery/list", galleryHandler.List)
		protected.GET("/gallery/stream-url", galleryHandler.StreamURL)
		protected.GET("/gallery/download-url", galleryHandler.DownloadURL)
		protected.GET("/gallery/archive-url", galleryHandler.ArchiveURL)
	}

	return r
}
