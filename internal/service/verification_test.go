package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanzorin/wedding-backend/internal/pkg/apperror"
)

const testPhone = "+79990000000"

func newTestVerification(t *testing.T) (*VerificationService, *fakeStore, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	store := newFakeStore(clock)
	svc := NewVerificationService(store, VerificationConfig{
		CodeTTL:     300 * time.Second,
		Cooldown:    150 * time.Second,
		MaxAttempts: 3,
		LockTTL:     10 * time.Second,
	})
	svc.now = clock.Now
	return svc, store, clock
}

func TestVerifyCode_FullScenario(t *testing.T) {
	svc, _, _ := newTestVerification(t)
	ctx := context.Background()

	require.NoError(t, svc.StoreCode(ctx, testPhone, "4821"))

	// Неверный код: остаётся 2 попытки.
	msg, err := svc.VerifyCode(ctx, testPhone, "1111")
	assert.Equal(t, "Неверный код. Осталось попыток: 2", msg)
	require.True(t, apperror.IsCode(err, apperror.ErrCodeCodeMismatch))
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, 2, appErr.AttemptsLeft)

	// Верный код подтверждается.
	msg, err = svc.VerifyCode(ctx, testPhone, "4821")
	require.NoError(t, err)
	assert.Equal(t, "Код подтвержден", msg)

	// Повторная отправка того же кода не проходит: код одноразовый.
	msg, err = svc.VerifyCode(ctx, testPhone, "4821")
	assert.Equal(t, "Код не найден или истек. Запросите новый код.", msg)
	assert.True(t, apperror.IsCode(err, apperror.ErrCodeCodeExpired))
}

func TestVerifyCode_AttemptsExhausted(t *testing.T) {
	svc, store, _ := newTestVerification(t)
	ctx := context.Background()

	require.NoError(t, svc.StoreCode(ctx, testPhone, "4821"))

	for i := 2; i >= 1; i-- {
		msg, err := svc.VerifyCode(ctx, testPhone, "0000")
		require.True(t, apperror.IsCode(err, apperror.ErrCodeCodeMismatch))
		appErr, _ := apperror.AsAppError(err)
		assert.Equal(t, i, appErr.AttemptsLeft)
		assert.Contains(t, msg, "Неверный код")
	}

	// Третий промах исчерпывает лимит, код удаляется в том же ответе.
	msg, err := svc.VerifyCode(ctx, testPhone, "0000")
	assert.Equal(t, MsgAttemptsExhausted, msg)
	assert.True(t, apperror.IsCode(err, apperror.ErrCodeAttemptsExhausted))
	assert.False(t, store.has(verificationKey(testPhone)))
	assert.False(t, store.has(attemptsKey(testPhone)))

	// После исчерпания даже верный код не проходит: кода больше нет.
	msg, err = svc.VerifyCode(ctx, testPhone, "4821")
	assert.Equal(t, MsgCodeExpired, msg)
	assert.True(t, apperror.IsCode(err, apperror.ErrCodeCodeExpired))
}

func TestVerifyCode_ExpiredCode(t *testing.T) {
	svc, _, clock := newTestVerification(t)
	ctx := context.Background()

	require.NoError(t, svc.StoreCode(ctx, testPhone, "4821"))
	clock.Advance(301 * time.Second)

	msg, err := svc.VerifyCode(ctx, testPhone, "4821")
	assert.Equal(t, MsgCodeExpired, msg)
	assert.True(t, apperror.IsCode(err, apperror.ErrCodeCodeExpired))
}

func TestVerifyCode_AttemptsExpireWithCode(t *testing.T) {
	svc, store, clock := newTestVerification(t)
	ctx := context.Background()

	require.NoError(t, svc.StoreCode(ctx, testPhone, "4821"))

	// Промах на середине жизни кода: счётчик живёт столько же, сколько код.
	clock.Advance(150 * time.Second)
	_, err := svc.VerifyCode(ctx, testPhone, "0000")
	require.True(t, apperror.IsCode(err, apperror.ErrCodeCodeMismatch))

	ttl, err := store.TTL(ctx, attemptsKey(testPhone))
	require.NoError(t, err)
	assert.Equal(t, 150*time.Second, ttl)

	// Код истёк — счётчик исчез вместе с ним.
	clock.Advance(151 * time.Second)
	assert.False(t, store.has(attemptsKey(testPhone)))
}

func TestVerifyCode_ExactComparison(t *testing.T) {
	svc, _, _ := newTestVerification(t)
	ctx := context.Background()

	require.NoError(t, svc.StoreCode(ctx, testPhone, "4821"))

	// Пробелы и другие вариации не нормализуются.
	_, err := svc.VerifyCode(ctx, testPhone, " 4821")
	assert.True(t, apperror.IsCode(err, apperror.ErrCodeCodeMismatch))
}

func TestCanRequestCode_Cooldown(t *testing.T) {
	svc, _, clock := newTestVerification(t)
	ctx := context.Background()

	// До первого запроса кулдауна нет.
	allowed, seconds, err := svc.CanRequestCode(ctx, testPhone)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Zero(t, seconds)

	require.NoError(t, svc.StoreCode(ctx, testPhone, "4821"))

	allowed, seconds, err = svc.CanRequestCode(ctx, testPhone)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, 150, seconds)

	// Отсчёт идёт от момента запроса.
	clock.Advance(100 * time.Second)
	allowed, seconds, err = svc.CanRequestCode(ctx, testPhone)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, 50, seconds)

	clock.Advance(50 * time.Second)
	allowed, _, err = svc.CanRequestCode(ctx, testPhone)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestStoreCode_ReplacesOldState(t *testing.T) {
	svc, store, _ := newTestVerification(t)
	ctx := context.Background()

	require.NoError(t, svc.StoreCode(ctx, testPhone, "1111"))
	_, err := svc.VerifyCode(ctx, testPhone, "0000")
	require.True(t, apperror.IsCode(err, apperror.ErrCodeCodeMismatch))

	// Новый код сбрасывает счётчик попыток.
	require.NoError(t, svc.StoreCode(ctx, testPhone, "2222"))
	assert.False(t, store.has(attemptsKey(testPhone)))

	msg, err := svc.VerifyCode(ctx, testPhone, "2222")
	require.NoError(t, err)
	assert.Equal(t, MsgCodeConfirmed, msg)
}

func TestAcquireLock_DoubleAcquireFails(t *testing.T) {
	svc, _, clock := newTestVerification(t)
	ctx := context.Background()

	acquired, err := svc.AcquireLock(ctx, testPhone)
	require.NoError(t, err)
	assert.True(t, acquired)

	acquired, err = svc.AcquireLock(ctx, testPhone)
	require.NoError(t, err)
	assert.False(t, acquired)

	// После освобождения блокировка снова доступна.
	require.NoError(t, svc.ReleaseLock(ctx, testPhone))
	acquired, err = svc.AcquireLock(ctx, testPhone)
	require.NoError(t, err)
	assert.True(t, acquired)

	// Истёкшая блокировка тоже не мешает.
	clock.Advance(11 * time.Second)
	acquired, err = svc.AcquireLock(ctx, testPhone)
	require.NoError(t, err)
	assert.True(t, acquired)
}

func TestClearCode_RemovesCodeAndAttempts(t *testing.T) {
	svc, store, _ := newTestVerification(t)
	ctx := context.Background()

	require.NoError(t, svc.StoreCode(ctx, testPhone, "4821"))
	_, err := svc.VerifyCode(ctx, testPhone, "0000")
	require.True(t, apperror.IsCode(err, apperror.ErrCodeCodeMismatch))

	require.NoError(t, svc.ClearCode(ctx, testPhone))
	assert.False(t, store.has(verificationKey(testPhone)))
	assert.False(t, store.has(attemptsKey(testPhone)))
	// Отметка кулдауна не трогается.
	assert.True(t, store.has(lastRequestKey(testPhone)))
}
