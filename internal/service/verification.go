package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ivanzorin/wedding-backend/internal/kv"
	"github.com/ivanzorin/wedding-backend/internal/pkg/apperror"
)

// Сообщения движка верификации, видимые пользователю.
const (
	MsgCodeConfirmed     = "Код подтвержден"
	MsgCodeExpired       = "Код не найден или истек. Запросите новый код."
	MsgAttemptsExhausted = "Превышено количество попыток. Запросите новый код."
)

// VerificationConfig задаёт параметры движка верификации.
type VerificationConfig struct {
	CodeTTL     time.Duration
	Cooldown    time.Duration
	MaxAttempts int
	LockTTL     time.Duration
}

// VerificationService владеет состоянием кода верификации для номера:
// блокировкой, кулдауном, самим кодом и счётчиком попыток. Всё состояние
// живёт в KV хранилище и координируется его атомарными операциями, поэтому
// сервис можно запускать в нескольких экземплярах.
type VerificationService struct {
	store kv.Store
	cfg   VerificationConfig

	// now подменяется в тестах для проверки кулдауна.
	now func() time.Time
}

// NewVerificationService создаёт движок верификации.
func NewVerificationService(store kv.Store, cfg VerificationConfig) *VerificationService {
	return &VerificationService{
		store: store,
		cfg:   cfg,
		now:   time.Now,
	}
}

func verificationKey(phone string) string { return "verification_code:" + phone }
func attemptsKey(phone string) string     { return "verification_attempts:" + phone }
func lastRequestKey(phone string) string  { return "verification_last_request:" + phone }
func lockKey(phone string) string         { return "verification_lock:" + phone }

// AcquireLock пытается атомарно захватить блокировку запроса кода для номера
// (SET NX). Возвращает true, если блокировка получена. Без ретраев: занятая
// блокировка означает, что параллельный запрос уже в работе.
func (s *VerificationService) AcquireLock(ctx context.Context, phone string) (bool, error) {
	acquired, err := s.store.SetNX(ctx, lockKey(phone), uuid.NewString(), s.cfg.LockTTL)
	if err != nil {
		return false, fmt.Errorf("verification: не удалось захватить блокировку: %w", err)
	}
	return acquired, nil
}

// ReleaseLock безусловно освобождает блокировку. Вызывается через defer на
// каждом пути выхода из защищённой секции, чтобы сбой не задерживал
// следующий запрос дольше TTL блокировки.
func (s *VerificationService) ReleaseLock(ctx context.Context, phone string) error {
	return s.store.Del(ctx, lockKey(phone))
}

// CanRequestCode проверяет, можно ли запросить новый код.
// Кулдаун отсчитывается от времени запроса, а не от истечения кода.
// Возвращает (можно, секунд осталось).
func (s *VerificationService) CanRequestCode(ctx context.Context, phone string) (bool, int, error) {
	raw, err := s.store.Get(ctx, lastRequestKey(phone))
	if errors.Is(err, kv.ErrNotFound) {
		return true, 0, nil
	}
	if err != nil {
		return false, 0, fmt.Errorf("verification: не удалось прочитать время запроса: %w", err)
	}

	lastRequest, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, 0, fmt.Errorf("verification: повреждённое время запроса %q: %w", raw, err)
	}

	elapsed := s.now().Unix() - lastRequest
	cooldown := int64(s.cfg.Cooldown.Seconds())
	if elapsed < cooldown {
		return false, int(cooldown - elapsed), nil
	}

	return true, 0, nil
}

// ClearCode удаляет предыдущий код и счётчик попыток. Вызывается перед
// отправкой нового кода: новый код всегда обесценивает старый.
func (s *VerificationService) ClearCode(ctx context.Context, phone string) error {
	return s.store.Del(ctx, verificationKey(phone), attemptsKey(phone))
}

// StoreCode сохраняет код с TTL, сбрасывает счётчик попыток и ставит отметку
// кулдауна. Вызывается только после успешной отправки, поэтому неудачная
// отправка не сжигает кулдаун пользователя.
func (s *VerificationService) StoreCode(ctx context.Context, phone, code string) error {
	if err := s.store.SetEX(ctx, verificationKey(phone), code, s.cfg.CodeTTL); err != nil {
		return fmt.Errorf("verification: не удалось сохранить код: %w", err)
	}

	if err := s.store.Del(ctx, attemptsKey(phone)); err != nil {
		return fmt.Errorf("verification: не удалось сбросить попытки: %w", err)
	}

	stamp := strconv.FormatInt(s.now().Unix(), 10)
	if err := s.store.SetEX(ctx, lastRequestKey(phone), stamp, s.cfg.Cooldown); err != nil {
		return fmt.Errorf("verification: не удалось сохранить время запроса: %w", err)
	}

	return nil
}

// VerifyCode проверяет введённый код. Возвращает сообщение для пользователя
// и вариант ошибки из закрытого набора; успех — (MsgCodeConfirmed, nil).
// Сравнение строгое, без нормализации. Блокировка запроса кода проверку не
// ограничивает: повторная отправка лишь увеличивает счётчик попыток.
func (s *VerificationService) VerifyCode(ctx context.Context, phone, submitted string) (string, error) {
	codeKey := verificationKey(phone)
	attKey := attemptsKey(phone)

	attempts, err := s.readAttempts(ctx, attKey)
	if err != nil {
		return "", err
	}

	// Лимит уже исчерпан: закрываемся до сравнения кода.
	if attempts >= s.cfg.MaxAttempts {
		if err := s.store.Del(ctx, codeKey, attKey); err != nil {
			return "", fmt.Errorf("verification: не удалось удалить код: %w", err)
		}
		return MsgAttemptsExhausted, apperror.ErrAttemptsExhausted
	}

	stored, err := s.store.Get(ctx, codeKey)
	if errors.Is(err, kv.ErrNotFound) {
		return MsgCodeExpired, apperror.ErrVerificationExpired
	}
	if err != nil {
		return "", fmt.Errorf("verification: не удалось прочитать код: %w", err)
	}

	if stored == submitted {
		if err := s.store.Del(ctx, codeKey, attKey); err != nil {
			return "", fmt.Errorf("verification: не удалось удалить код: %w", err)
		}
		return MsgCodeConfirmed, nil
	}

	// Неверный код: счётчик переживает ровно столько же, сколько сам код.
	attempts++
	ttl, err := s.store.TTL(ctx, codeKey)
	if err != nil {
		ttl = s.cfg.CodeTTL
	}
	if err := s.store.SetEX(ctx, attKey, strconv.Itoa(attempts), ttl); err != nil {
		return "", fmt.Errorf("verification: не удалось обновить попытки: %w", err)
	}

	remaining := s.cfg.MaxAttempts - attempts
	if remaining > 0 {
		appErr := apperror.CodeMismatch(remaining)
		return appErr.Message, appErr
	}

	// Последняя попытка использована: удаляем код сразу же.
	if err := s.store.Del(ctx, codeKey, attKey); err != nil {
		return "", fmt.Errorf("verification: не удалось удалить код: %w", err)
	}
	return MsgAttemptsExhausted, apperror.ErrAttemptsExhausted
}

// readAttempts читает счётчик попыток; отсутствие ключа означает ноль.
func (s *VerificationService) readAttempts(ctx context.Context, key string) (int, error) {
	raw, err := s.store.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("verification: не удалось прочитать попытки: %w", err)
	}

	attempts, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("verification: повреждённый счётчик попыток %q: %w", raw, err)
	}
	return attempts, nil
}
