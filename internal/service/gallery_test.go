package service

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanzorin/wedding-backend/internal/pkg/apperror"
)

// fakeIssuer выпускает детерминированные медиа-токены.
type fakeIssuer struct {
	lastScope string
	lastPath  string
}

func (f *fakeIssuer) IssueMedia(scope, path string) (string, error) {
	f.lastScope = scope
	f.lastPath = path
	return "media-token", nil
}

func newTestGallery() (*GalleryService, *fakeIssuer) {
	issuer := &fakeIssuer{}
	return NewGalleryService(issuer, "http://storage.local/media/", "http://file-storage:8081", true), issuer
}

func TestGalleryStreamURL(t *testing.T) {
	g, issuer := newTestGallery()

	raw, err := g.StreamURL("wedding_day_video/main.mp4")
	require.NoError(t, err)

	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/media/stream", parsed.Path)
	assert.Equal(t, "wedding_day_video/main.mp4", parsed.Query().Get("path"))
	assert.Equal(t, "media-token", parsed.Query().Get("token"))
	assert.Equal(t, "wedding_day_video/main.mp4", issuer.lastPath)
}

func TestGalleryDownloadURL_AllowedFolders(t *testing.T) {
	g, _ := newTestGallery()

	raw, err := g.DownloadURL("wedding_day_all_photos/001.jpg")
	require.NoError(t, err)
	assert.Contains(t, raw, "/media/download?")

	// Скачивание из прочих папок запрещено.
	_, err = g.DownloadURL("couple_photo/main.jpg")
	assert.True(t, apperror.IsCode(err, apperror.ErrCodeForbidden))

	// Обход через обратные слэши и ведущие слэши не работает.
	_, err = g.DownloadURL("\\couple_photo\\main.jpg")
	assert.True(t, apperror.IsCode(err, apperror.ErrCodeForbidden))

	_, err = g.DownloadURL("")
	assert.True(t, apperror.IsCode(err, apperror.ErrCodeBadRequest))
}

func TestGalleryArchiveURL(t *testing.T) {
	g, issuer := newTestGallery()

	raw, err := g.ArchiveURL("wedding_best_moments")
	require.NoError(t, err)

	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/media/archive", parsed.Path)
	assert.Equal(t, "wedding_best_moments", parsed.Query().Get("type"))
	assert.Equal(t, "archive:wedding_best_moments", issuer.lastScope)

	_, err = g.ArchiveURL("everything")
	assert.True(t, apperror.IsCode(err, apperror.ErrCodeBadRequest))
}
