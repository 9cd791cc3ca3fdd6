package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ivanzorin/wedding-backend/internal/kv"
	"github.com/ivanzorin/wedding-backend/internal/pkg/apperror"
)

// Типы токенов. Дискриминатор в клеймах не позволяет подменить один другим.
const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
	tokenTypeMedia   = "media"
)

const refreshKeyPrefix = "refresh_token:"

// TokenPair хранит пару access/refresh токенов.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// tokenClaims — клеймы всех выпускаемых токенов. Scope и Path заполняются
// только у медиа-токенов.
type tokenClaims struct {
	Typ   string `json:"typ"`
	Scope string `json:"scope,omitempty"`
	Path  string `json:"path,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager отвечает за выпуск и проверку JWT.
//
// Access и медиа токены полностью stateless: их валидность — подпись плюс
// срок действия, поэтому выпущенный access токен нельзя отозвать досрочно
// (logout отзывает только refresh). Refresh токены дополнительно
// записываются в KV хранилище и валидны, только пока запись существует и
// subject совпадает — это и делает их отзываемыми и одноразовыми.
type TokenManager struct {
	store         kv.Store
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	mediaTTL      time.Duration

	now func() time.Time
}

// NewTokenManager создаёт менеджер токенов.
func NewTokenManager(store kv.Store, accessSecret, refreshSecret string, accessTTL, refreshTTL, mediaTTL time.Duration) *TokenManager {
	return &TokenManager{
		store:         store,
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		mediaTTL:      mediaTTL,
		now:           time.Now,
	}
}

func refreshKey(token string) string { return refreshKeyPrefix + token }

// IssueAccess выпускает access токен для номера телефона.
func (m *TokenManager) IssueAccess(phone string) (string, error) {
	return m.sign(m.accessSecret, tokenClaims{
		Typ: tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   phone,
			IssuedAt:  jwt.NewNumericDate(m.now()),
			ExpiresAt: jwt.NewNumericDate(m.now().Add(m.accessTTL)),
		},
	})
}

// IssueRefresh выпускает refresh токен. Случайный jti делает значение токена
// уникальным и непредсказуемым — оно же служит ключом записи в хранилище.
func (m *TokenManager) IssueRefresh(phone string) (string, error) {
	return m.sign(m.refreshSecret, tokenClaims{
		Typ: tokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   phone,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(m.now()),
			ExpiresAt: jwt.NewNumericDate(m.now().Add(m.refreshTTL)),
		},
	})
}

// IssueMedia выпускает короткоживущий медиа-токен, опционально привязанный
// к пути файла или scope операции. Привязка носит рекомендательный характер:
// файловое хранилище обязано проверять права само, токен лишь подтверждает,
// что запрос поручился слоем сессий в последние N секунд.
func (m *TokenManager) IssueMedia(scope, path string) (string, error) {
	return m.sign(m.accessSecret, tokenClaims{
		Typ:   tokenTypeMedia,
		Scope: scope,
		Path:  path,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(m.now()),
			ExpiresAt: jwt.NewNumericDate(m.now().Add(m.mediaTTL)),
		},
	})
}

// CreateSession выпускает пару токенов и записывает refresh токен в
// хранилище с TTL, равным его сроку жизни. Запись делает самоподписанный
// refresh токен отзываемым: валидность требует и подписи, и записи.
func (m *TokenManager) CreateSession(ctx context.Context, phone string) (*TokenPair, error) {
	access, err := m.IssueAccess(phone)
	if err != nil {
		return nil, err
	}

	refresh, err := m.IssueRefresh(phone)
	if err != nil {
		return nil, err
	}

	if err := m.store.SetEX(ctx, refreshKey(refresh), phone, m.refreshTTL); err != nil {
		return nil, fmt.Errorf("token: не удалось сохранить refresh токен: %w", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// VerifyAccess проверяет access токен: подпись, срок и тип. Без обращения
// к хранилищу. Возвращает номер телефона из subject.
func (m *TokenManager) VerifyAccess(token string) (string, error) {
	claims, err := m.parse(token, m.accessSecret)
	if err != nil || claims.Typ != tokenTypeAccess || claims.Subject == "" {
		return "", apperror.ErrTokenInvalid
	}
	return claims.Subject, nil
}

// VerifyRefresh проверяет refresh токен: подпись, срок, тип, затем запись в
// хранилище. Отсутствие записи или несовпадение subject означает, что токен
// отозван или уже использован.
func (m *TokenManager) VerifyRefresh(ctx context.Context, token string) (string, error) {
	claims, err := m.parse(token, m.refreshSecret)
	if err != nil || claims.Typ != tokenTypeRefresh || claims.Subject == "" {
		return "", apperror.ErrTokenInvalid
	}

	phone, err := m.store.Get(ctx, refreshKey(token))
	if errors.Is(err, kv.ErrNotFound) {
		return "", apperror.ErrTokenRevoked
	}
	if err != nil {
		return "", fmt.Errorf("token: не удалось прочитать refresh токен: %w", err)
	}
	if phone != claims.Subject {
		return "", apperror.ErrTokenRevoked
	}

	return phone, nil
}

// Rotate обменивает refresh токен на новую пару. Старая запись удаляется до
// создания новой: сбой между шагами оставляет пользователя без валидного
// refresh токена (повторная авторизация), а не с двумя валидными.
func (m *TokenManager) Rotate(ctx context.Context, token string) (*TokenPair, error) {
	phone, err := m.VerifyRefresh(ctx, token)
	if err != nil {
		return nil, err
	}

	if err := m.store.Del(ctx, refreshKey(token)); err != nil {
		return nil, fmt.Errorf("token: не удалось удалить refresh токен: %w", err)
	}

	return m.CreateSession(ctx, phone)
}

// Revoke удаляет запись refresh токена. Идемпотентен: отсутствующий ключ
// не является ошибкой.
func (m *TokenManager) Revoke(ctx context.Context, token string) error {
	if err := m.store.Del(ctx, refreshKey(token)); err != nil {
		return fmt.Errorf("token: не удалось отозвать refresh токен: %w", err)
	}
	return nil
}

// sign формирует подписанный HS256 токен.
func (m *TokenManager) sign(secret []byte, claims tokenClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("token: не удалось подписать токен: %w", err)
	}
	return signed, nil
}

// parse проверяет подпись и срок действия, возвращает клеймы.
func (m *TokenManager) parse(token string, secret []byte) (*tokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}

	return claims, nil
}
