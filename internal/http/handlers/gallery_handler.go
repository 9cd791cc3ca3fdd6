package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ivanzorin/wedding-backend/internal/http/handlers/common"
	"github.com/ivanzorin/wedding-backend/internal/pkg/apperror"
	"github.com/ivanzorin/wedding-backend/internal/service"
)

type GalleryHandler struct {
	gallery *service.GalleryService
}

func NewGalleryHandler(gallery *service.GalleryService) *GalleryHandler {
	return &GalleryHandler{gallery: gallery}
}

// Status GET /gallery/status
func (h *GalleryHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"content_enabled": h.gallery.ContentEnabled()})
}

// List GET /gallery/list?folder=...
func (h *GalleryHandler) List(c *gin.Context) {
	folder := c.Query("folder")
	if folder == "" {
		common.Fail(c, apperror.New(apperror.ErrCodeBadRequest, "folder не указан"))
		return
	}

	list, err := h.gallery.List(c.Request.Context(), folder)
	if err != nil {
		common.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// StreamURL GET /gallery/stream-url?path=...
func (h *GalleryHandler) StreamURL(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		common.Fail(c, apperror.New(apperror.ErrCodeBadRequest, "path не указан"))
		return
	}

	url, err := h.gallery.StreamURL(path)
	if err != nil {
		common.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// DownloadURL GET /gallery/download-url?path=...
func (h *GalleryHandler) DownloadURL(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		common.Fail(c, apperror.New(apperror.ErrCodeBadRequest, "path не указан"))
		return
	}

	url, err := h.gallery.DownloadURL(path)
	if err != nil {
		common.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// ArchiveURL GET /gallery/archive-url?type=...
func (h *GalleryHandler) ArchiveURL(c *gin.Context) {
	archiveType := c.Query("type")
	if archiveType == "" {
		common.Fail(c, apperror.New(apperror.ErrCodeBadRequest, "type не указан"))
		return
	}

	url, err := h.gallery.ArchiveURL(archiveType)
	if err != nil {
		common.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}
