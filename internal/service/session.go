package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ivanzorin/wedding-backend/internal/logger"
	"github.com/ivanzorin/wedding-backend/internal/models"
	"github.com/ivanzorin/wedding-backend/internal/pkg/apperror"
	"github.com/ivanzorin/wedding-backend/internal/repository"
	"github.com/ivanzorin/wedding-backend/internal/validation"
)

// MsgCallIncoming отправляется пользователю после успешной постановки звонка.
const MsgCallIncoming = "Вам поступит звонок. Последние 4 цифры номера звонящего - это ваш код верификации."

// GuestProvider описывает зависимость оркестратора от хранилища гостей.
type GuestProvider interface {
	GetByPhone(ctx context.Context, phone string) (*models.Guest, error)
}

// AuthResult возвращает итог подтверждения кода или OAuth входа.
type AuthResult struct {
	Guest   *models.Guest
	Tokens  *TokenPair
	Message string
}

// ValidationResult — ответ на проверку access токена.
type ValidationResult struct {
	Phone  string
	Friend bool
}

// SessionService связывает движок верификации, диспетчер звонков и менеджер
// токенов в три пользовательских потока: запрос кода, подтверждение кода и
// работа с токенами (refresh/validate/logout).
type SessionService struct {
	guests       GuestProvider
	verification *VerificationService
	dispatcher   Dispatcher
	tokens       *TokenManager
	oauth        *OAuthFactory
}

// NewSessionService создаёт оркестратор сессий.
func NewSessionService(
	guests GuestProvider,
	verification *VerificationService,
	dispatcher Dispatcher,
	tokens *TokenManager,
	oauth *OAuthFactory,
) *SessionService {
	return &SessionService{
		guests:       guests,
		verification: verification,
		dispatcher:   dispatcher,
		tokens:       tokens,
		oauth:        oauth,
	}
}

// RequestCode ставит звонок с кодом верификации на номер гостя.
// Последовательность: гость существует → блокировка → кулдаун → отправка →
// сохранение кода. Блокировка снимается на любом пути выхода, поэтому сбой
// задержит следующий запрос максимум на её TTL.
func (s *SessionService) RequestCode(ctx context.Context, phone string) (string, error) {
	if _, err := s.findGuest(ctx, phone); err != nil {
		return "", err
	}

	acquired, err := s.verification.AcquireLock(ctx, phone)
	if err != nil {
		return "", s.internal(err)
	}
	if !acquired {
		return "", apperror.ErrLockContention
	}

	// Блокировку снимаем всегда, даже если запрос уже отменён.
	defer func() {
		if err := s.verification.ReleaseLock(context.WithoutCancel(ctx), phone); err != nil && logger.Log != nil {
			logger.Log.WithFields(logrus.Fields{
				"phone": phone,
				"error": err.Error(),
			}).Error("session: не удалось освободить блокировку")
		}
	}()

	allowed, secondsRemaining, err := s.verification.CanRequestCode(ctx, phone)
	if err != nil {
		return "", s.internal(err)
	}
	if !allowed {
		return "", apperror.CooldownActive(secondsRemaining)
	}

	// Новый код всегда обесценивает старый: чистим до отправки.
	if err := s.verification.ClearCode(ctx, phone); err != nil {
		return "", s.internal(err)
	}

	code, err := s.dispatcher.Dispatch(ctx, phone)
	if err != nil {
		// Кулдаун не проставлен: после TTL блокировки можно повторить сразу.
		return "", err
	}

	if err := s.verification.StoreCode(ctx, phone, code); err != nil {
		return "", s.internal(err)
	}

	return MsgCallIncoming, nil
}

// ConfirmCode проверяет код и создаёт сессию гостя.
func (s *SessionService) ConfirmCode(ctx context.Context, phone, code string) (*AuthResult, error) {
	message, err := s.verification.VerifyCode(ctx, phone, code)
	if err != nil {
		if _, ok := apperror.AsAppError(err); ok {
			return nil, err
		}
		return nil, s.internal(err)
	}

	guest, err := s.findGuest(ctx, phone)
	if err != nil {
		return nil, err
	}

	pair, err := s.tokens.CreateSession(ctx, phone)
	if err != nil {
		return nil, s.internal(err)
	}

	return &AuthResult{Guest: guest, Tokens: pair, Message: message}, nil
}

// Refresh обменивает refresh токен на новую пару (одноразовое использование).
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	pair, err := s.tokens.Rotate(ctx, refreshToken)
	if err != nil {
		if _, ok := apperror.AsAppError(err); ok {
			return nil, err
		}
		return nil, s.internal(err)
	}
	return pair, nil
}

// Logout отзывает refresh токен. Access токен продолжает действовать до
// истечения своего срока — у него нет списка отзыва.
func (s *SessionService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.tokens.Revoke(ctx, refreshToken); err != nil {
		return s.internal(err)
	}
	return nil
}

// Validate проверяет access токен и возвращает номер и флаг доступа к
// вишлисту.
func (s *SessionService) Validate(ctx context.Context, accessToken string) (*ValidationResult, error) {
	phone, err := s.tokens.VerifyAccess(accessToken)
	if err != nil {
		return nil, err
	}

	guest, err := s.findGuest(ctx, phone)
	if err != nil {
		return nil, err
	}

	return &ValidationResult{Phone: phone, Friend: guest.Friend}, nil
}

// LoginWithOAuth авторизует гостя через OAuth провайдера: получает номер,
// нормализует его и создаёт сессию, если гость есть в списке.
func (s *SessionService) LoginWithOAuth(ctx context.Context, provider, accessToken string) (*AuthResult, error) {
	if s.oauth == nil {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "OAuth авторизация не настроена")
	}

	rawPhone, err := s.oauth.UserPhone(ctx, provider, accessToken)
	if err != nil {
		return nil, err
	}
	if rawPhone == "" {
		return nil, apperror.New(apperror.ErrCodeBadRequest,
			fmt.Sprintf("Не удалось получить номер телефона из %s", provider))
	}

	phone := validation.NormalizePhone(rawPhone)

	guest, err := s.findGuest(ctx, phone)
	if err != nil {
		return nil, err
	}

	pair, err := s.tokens.CreateSession(ctx, phone)
	if err != nil {
		return nil, s.internal(err)
	}

	return &AuthResult{
		Guest:   guest,
		Tokens:  pair,
		Message: fmt.Sprintf("Авторизация через %s успешна", providerTitle(provider)),
	}, nil
}

// findGuest ищет гостя и переводит ошибку хранилища в вариант для клиента.
func (s *SessionService) findGuest(ctx context.Context, phone string) (*models.Guest, error) {
	guest, err := s.guests.GetByPhone(ctx, phone)
	if errors.Is(err, repository.ErrGuestNotFound) {
		return nil, apperror.ErrGuestNotFound
	}
	if err != nil {
		return nil, s.internal(err)
	}
	return guest, nil
}

// internal скрывает неожиданные ошибки хранилищ за общим ответом сервера.
func (s *SessionService) internal(err error) error {
	if logger.Log != nil {
		logger.Log.WithField("error", err.Error()).Error("session: внутренняя ошибка")
	}
	return apperror.Wrap(err, apperror.ErrCodeInternal, "Внутренняя ошибка сервера")
}

func providerTitle(provider string) string {
	switch provider {
	case "vk":
		return "VK"
	case "yandex":
		return "Яндекс"
	default:
		return provider
	}
}
