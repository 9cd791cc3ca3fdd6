package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ivanzorin/wedding-backend/internal/pkg/apperror"
)

// Папки файлового хранилища, известные галерее.
var galleryFolders = map[string]struct{}{
	"couple_photo":           {},
	"background_photo":       {},
	"dress_code":             {},
	"wedding_day_all_photos": {},
	"wedding_day_video":      {},
	"zip":                    {},
}

// Папки, из которых разрешено скачивание отдельных файлов.
var downloadAllowed = map[string]struct{}{
	"wedding_day_all_photos": {},
	"wedding_day_video":      {},
}

// Типы архивов, доступных для скачивания.
var archiveTypes = map[string]struct{}{
	"wedding_day_all_photos": {},
	"wedding_day_video":      {},
	"wedding_best_moments":   {},
}

// GalleryFile — файл в ответе файлового хранилища.
type GalleryFile struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// GalleryFileList — список файлов папки.
type GalleryFileList struct {
	Folder string        `json:"folder"`
	Files  []GalleryFile `json:"files"`
}

// mediaTokenIssuer выпускает медиа-токены для ссылок галереи.
type mediaTokenIssuer interface {
	IssueMedia(scope, path string) (string, error)
}

// GalleryService выдаёт подписанные медиа-токеном URL файлового хранилища.
// Сами байты файлов отдаёт хранилище, здесь только чеканка ссылок.
type GalleryService struct {
	tokens         mediaTokenIssuer
	client         *http.Client
	mediaBase      string
	internalURL    string
	contentEnabled bool
}

// NewGalleryService создаёт сервис галереи.
func NewGalleryService(tokens mediaTokenIssuer, mediaBase, internalURL string, contentEnabled bool) *GalleryService {
	return &GalleryService{
		tokens:         tokens,
		client:         &http.Client{Timeout: 10 * time.Second},
		mediaBase:      strings.TrimRight(mediaBase, "/"),
		internalURL:    strings.TrimRight(internalURL, "/"),
		contentEnabled: contentEnabled,
	}
}

// ContentEnabled сообщает, открыт ли контент галереи. До мероприятия фронт
// показывает заглушку «скоро после мероприятия».
func (s *GalleryService) ContentEnabled() bool {
	return s.contentEnabled
}

// List запрашивает у файлового хранилища список файлов папки.
func (s *GalleryService) List(ctx context.Context, folder string) (*GalleryFileList, error) {
	if _, ok := galleryFolders[folder]; !ok {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "Неизвестная папка")
	}

	token, err := s.tokens.IssueMedia("list", "")
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "Внутренняя ошибка сервера")
	}

	params := url.Values{}
	params.Set("folder", folder)
	params.Set("token", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		s.internalURL+"/list?"+params.Encode(), nil)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "Внутренняя ошибка сервера")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "Файловое хранилище недоступно")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "Файловое хранилище недоступно")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apperror.New(apperror.ErrCodeInternal,
			fmt.Sprintf("Ошибка файлового хранилища: %d", resp.StatusCode))
	}

	var list GalleryFileList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "Повреждённый ответ файлового хранилища")
	}

	return &list, nil
}

// StreamURL возвращает URL просмотра файла (для <video src> или <img src>).
func (s *GalleryService) StreamURL(path string) (string, error) {
	return s.mediaURL("stream", "", path)
}

// DownloadURL возвращает URL скачивания файла. Разрешено только для папок
// wedding_day_all_photos и wedding_day_video.
func (s *GalleryService) DownloadURL(path string) (string, error) {
	parts := strings.Split(strings.Trim(strings.ReplaceAll(path, "\\", "/"), "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		return "", apperror.New(apperror.ErrCodeBadRequest, "Путь не указан")
	}
	if _, ok := downloadAllowed[parts[0]]; !ok {
		return "", apperror.New(apperror.ErrCodeForbidden,
			"Скачивание разрешено только для файлов из wedding_day_all_photos и wedding_day_video")
	}
	return s.mediaURL("download", "", path)
}

// ArchiveURL возвращает URL скачивания zip-архива известного типа.
func (s *GalleryService) ArchiveURL(archiveType string) (string, error) {
	if _, ok := archiveTypes[archiveType]; !ok {
		return "", apperror.New(apperror.ErrCodeBadRequest,
			"type должен быть wedding_day_all_photos, wedding_day_video или wedding_best_moments")
	}

	token, err := s.tokens.IssueMedia("archive:"+archiveType, "")
	if err != nil {
		return "", apperror.Wrap(err, apperror.ErrCodeInternal, "Внутренняя ошибка сервера")
	}

	params := url.Values{}
	params.Set("type", archiveType)
	params.Set("token", token)
	return s.mediaBase + "/archive?" + params.Encode(), nil
}

// mediaURL чеканит ссылку на endpoint хранилища с медиа-токеном,
// привязанным к пути файла.
func (s *GalleryService) mediaURL(endpoint, scope, path string) (string, error) {
	token, err := s.tokens.IssueMedia(scope, path)
	if err != nil {
		return "", apperror.Wrap(err, apperror.ErrCodeInternal, "Внутренняя ошибка сервера")
	}

	params := url.Values{}
	params.Set("path", path)
	params.Set("token", token)
	return s.mediaBase + "/" + endpoint + "?" + params.Encode(), nil
}
