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

// OAuthProvider получает номер телефона пользователя по access токену
// внешнего провайдера. Токен выдаёт фронтенд после прохождения OAuth
// авторизации на стороне провайдера.
type OAuthProvider interface {
	UserPhone(ctx context.Context, accessToken string) (string, error)
}

// OAuthFactory выбирает провайдера по имени.
type OAuthFactory struct {
	providers map[string]OAuthProvider
}

// NewOAuthFactory создаёт фабрику с провайдерами VK ID и Яндекс.
func NewOAuthFactory(vkClientID, vkClientSecret, yandexClientID, yandexClientSecret string) *OAuthFactory {
	client := &http.Client{Timeout: 10 * time.Second}
	return &OAuthFactory{
		providers: map[string]OAuthProvider{
			"vk":     &vkProvider{client: client, clientID: vkClientID, clientSecret: vkClientSecret},
			"yandex": &yandexProvider{client: client},
		},
	}
}

// UserPhone запрашивает номер телефона у провайдера provider.
func (f *OAuthFactory) UserPhone(ctx context.Context, provider, accessToken string) (string, error) {
	p, ok := f.providers[provider]
	if !ok {
		return "", apperror.New(apperror.ErrCodeBadRequest,
			fmt.Sprintf("Неизвестный OAuth провайдер: %s", provider))
	}
	return p.UserPhone(ctx, accessToken)
}

// vkProvider ходит в VK ID API за данными пользователя.
type vkProvider struct {
	client       *http.Client
	clientID     string
	clientSecret string
}

func (p *vkProvider) UserPhone(ctx context.Context, accessToken string) (string, error) {
	// VK ID: основной путь — oauth2/user_info, телефон приходит в профиле.
	form := url.Values{}
	form.Set("access_token", accessToken)
	form.Set("client_id", p.clientID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		"https://id.vk.com/oauth2/user_info", strings.NewReader(form.Encode()))
	if err != nil {
		return "", apperror.Wrap(err, apperror.ErrCodeInternal, "Внутренняя ошибка сервера")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", apperror.Wrap(err, apperror.ErrCodeBadRequest, "Не удалось получить данные пользователя VK")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", apperror.Wrap(err, apperror.ErrCodeBadRequest, "Не удалось получить данные пользователя VK")
	}

	if resp.StatusCode != http.StatusOK {
		return "", apperror.New(apperror.ErrCodeUnauthorized, "VK токен истек или недействителен")
	}

	var payload struct {
		User struct {
			Phone string `json:"phone"`
		} `json:"user"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", apperror.Wrap(err, apperror.ErrCodeBadRequest, "Не удалось получить данные пользователя VK")
	}

	return payload.User.Phone, nil
}

// yandexProvider ходит в login.yandex.ru за паспортными данными.
type yandexProvider struct {
	client *http.Client
}

func (p *yandexProvider) UserPhone(ctx context.Context, accessToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		"https://login.yandex.ru/info?format=json", nil)
	if err != nil {
		return "", apperror.Wrap(err, apperror.ErrCodeInternal, "Внутренняя ошибка сервера")
	}
	req.Header.Set("Authorization", "OAuth "+accessToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", apperror.Wrap(err, apperror.ErrCodeBadRequest, "Не удалось получить данные пользователя Яндекс")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", apperror.Wrap(err, apperror.ErrCodeBadRequest, "Не удалось получить данные пользователя Яндекс")
	}

	if resp.StatusCode != http.StatusOK {
		return "", apperror.New(apperror.ErrCodeUnauthorized, "Яндекс токен истек или недействителен")
	}

	var payload struct {
		DefaultPhone struct {
			Number string `json:"number"`
		} `json:"default_phone"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", apperror.Wrap(err, apperror.ErrCodeBadRequest, "Не удалось получить данные пользователя Яндекс")
	}

	return payload.DefaultPhone.Number, nil
}
