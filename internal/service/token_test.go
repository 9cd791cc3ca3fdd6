package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanzorin/wedding-backend/internal/pkg/apperror"
)

func newTestTokenManager(t *testing.T) (*TokenManager, *fakeStore, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	store := newFakeStore(clock)
	m := NewTokenManager(store, "access-secret-for-tests", "refresh-secret-for-tests",
		15*time.Minute, 720*time.Hour, 5*time.Minute)
	m.now = clock.Now
	return m, store, clock
}

func TestTokenManager_AccessRoundtrip(t *testing.T) {
	m, _, _ := newTestTokenManager(t)

	token, err := m.IssueAccess(testPhone)
	require.NoError(t, err)

	phone, err := m.VerifyAccess(token)
	require.NoError(t, err)
	assert.Equal(t, testPhone, phone)
}

func TestTokenManager_AccessExpiry(t *testing.T) {
	// Парсер сверяет exp с реальными часами, поэтому выпускаем токен
	// с отрицательным TTL.
	store := newFakeStore(newFakeClock())
	expired := NewTokenManager(store, "access-secret-for-tests",
		"refresh-secret-for-tests", -time.Minute, time.Hour, time.Minute)

	token, err := expired.IssueAccess(testPhone)
	require.NoError(t, err)

	_, err = expired.VerifyAccess(token)
	assert.True(t, apperror.IsCode(err, apperror.ErrCodeTokenInvalid))
}

func TestTokenManager_TypeSubstitutionFails(t *testing.T) {
	m, _, _ := newTestTokenManager(t)
	ctx := context.Background()

	pair, err := m.CreateSession(ctx, testPhone)
	require.NoError(t, err)

	// Refresh токен нельзя выдать за access: другой секрет и другой typ.
	_, err = m.VerifyAccess(pair.RefreshToken)
	assert.True(t, apperror.IsCode(err, apperror.ErrCodeTokenInvalid))

	// И наоборот.
	_, err = m.VerifyRefresh(ctx, pair.AccessToken)
	assert.True(t, apperror.IsCode(err, apperror.ErrCodeTokenInvalid))

	// Медиа-токен подписан access секретом, но typ не даёт использовать его
	// как сессионный.
	media, err := m.IssueMedia("list", "")
	require.NoError(t, err)
	_, err = m.VerifyAccess(media)
	assert.True(t, apperror.IsCode(err, apperror.ErrCodeTokenInvalid))
}

func TestTokenManager_RotateReplayFails(t *testing.T) {
	m, _, _ := newTestTokenManager(t)
	ctx := context.Background()

	pair, err := m.CreateSession(ctx, testPhone)
	require.NoError(t, err)

	rotated, err := m.Rotate(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	// Повтор использованного токена не проходит.
	_, err = m.Rotate(ctx, pair.RefreshToken)
	assert.True(t, apperror.IsCode(err, apperror.ErrCodeTokenRevoked))

	// Новый токен валиден.
	phone, err := m.VerifyRefresh(ctx, rotated.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, testPhone, phone)
}

func TestTokenManager_RevokeIsIdempotent(t *testing.T) {
	m, _, _ := newTestTokenManager(t)
	ctx := context.Background()

	pair, err := m.CreateSession(ctx, testPhone)
	require.NoError(t, err)

	require.NoError(t, m.Revoke(ctx, pair.RefreshToken))
	require.NoError(t, m.Revoke(ctx, pair.RefreshToken))

	_, err = m.VerifyRefresh(ctx, pair.RefreshToken)
	assert.True(t, apperror.IsCode(err, apperror.ErrCodeTokenRevoked))
}

func TestTokenManager_RefreshRequiresStoreRecord(t *testing.T) {
	m, store, _ := newTestTokenManager(t)
	ctx := context.Background()

	// Подписанный, но не записанный токен отклоняется.
	refresh, err := m.IssueRefresh(testPhone)
	require.NoError(t, err)

	_, err = m.VerifyRefresh(ctx, refresh)
	assert.True(t, apperror.IsCode(err, apperror.ErrCodeTokenRevoked))

	// Несовпадение subject с записью тоже означает отзыв.
	pair, err := m.CreateSession(ctx, testPhone)
	require.NoError(t, err)
	require.NoError(t, store.SetEX(ctx, refreshKey(pair.RefreshToken), "+70000000000", time.Hour))

	_, err = m.VerifyRefresh(ctx, pair.RefreshToken)
	assert.True(t, apperror.IsCode(err, apperror.ErrCodeTokenRevoked))
}
