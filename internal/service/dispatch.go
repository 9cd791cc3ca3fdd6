package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"github.com/ivanzorin/wedding-backend/internal/logger"
	"github.com/ivanzorin/wedding-backend/internal/pkg/apperror"
)

// CallRequest — задача на звонок с кодом, публикуемая воркеру.
type CallRequest struct {
	Phone string `json:"phone"`
}

// CallResult — ответ воркера. Pincode выбирает провайдер звонков
// (последние цифры номера звонящего), не мы.
type CallResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Pincode string `json:"pincode,omitempty"`
}

// Dispatcher отправляет код верификации на номер и возвращает код,
// который в итоге получит пользователь.
type Dispatcher interface {
	Dispatch(ctx context.Context, phone string) (string, error)
}

// natsRequester — минимальный кусок nats.Conn, нужный диспетчеру.
type natsRequester interface {
	RequestWithContext(ctx context.Context, subj string, data []byte) (*nats.Msg, error)
}

// NatsDispatcher отправляет задачу воркеру звонков через request/reply и
// ждёт ответ не дольше timeout. Ретраи вызова провайдера живут на стороне
// воркера; здесь только жёсткий таймаут ожидания.
type NatsDispatcher struct {
	conn    natsRequester
	subject string
	timeout time.Duration
}

// NewNatsDispatcher создаёт диспетчер поверх соединения NATS.
func NewNatsDispatcher(conn natsRequester, subject string, timeout time.Duration) *NatsDispatcher {
	return &NatsDispatcher{
		conn:    conn,
		subject: subject,
		timeout: timeout,
	}
}

// Dispatch публикует задачу и ждёт код от воркера. Любая ошибка провайдера,
// битый ответ, отсутствие кода или таймаут — единый вариант DispatchFailure.
func (d *NatsDispatcher) Dispatch(ctx context.Context, phone string) (string, error) {
	payload, err := json.Marshal(CallRequest{Phone: phone})
	if err != nil {
		return "", apperror.Wrap(err, apperror.ErrCodeDispatchFailure, "Ошибка при отправке кода")
	}

	reqCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	msg, err := d.conn.RequestWithContext(reqCtx, d.subject, payload)
	if err != nil {
		if logger.Log != nil {
			logger.Log.WithFields(logrus.Fields{
				"phone": phone,
				"error": err.Error(),
			}).Error("dispatch: не дождались ответа воркера звонков")
		}
		return "", apperror.Wrap(err, apperror.ErrCodeDispatchFailure, "Не удалось отправить звонок. Попробуйте позже.")
	}

	var result CallResult
	if err := json.Unmarshal(msg.Data, &result); err != nil {
		return "", apperror.Wrap(err, apperror.ErrCodeDispatchFailure, "Не удалось отправить звонок. Попробуйте позже.")
	}

	if !result.Success || result.Pincode == "" {
		if logger.Log != nil {
			logger.Log.WithFields(logrus.Fields{
				"phone":   phone,
				"message": result.Message,
			}).Warn("dispatch: провайдер не отправил звонок")
		}
		return "", apperror.New(apperror.ErrCodeDispatchFailure, "Не удалось отправить звонок. Попробуйте позже.")
	}

	return result.Pincode, nil
}

// DevDispatcher используется в development, когда провайдер звонков не
// настроен: код генерируется локально и пишется в лог вместо звонка.
type DevDispatcher struct {
	codeLength int
}

// NewDevDispatcher создаёт dev-диспетчер.
func NewDevDispatcher(codeLength int) *DevDispatcher {
	return &DevDispatcher{codeLength: codeLength}
}

func (d *DevDispatcher) Dispatch(ctx context.Context, phone string) (string, error) {
	code, err := GenerateCode(d.codeLength)
	if err != nil {
		return "", apperror.Wrap(err, apperror.ErrCodeDispatchFailure, "Ошибка при отправке кода")
	}

	if logger.Log != nil {
		logger.Log.WithFields(logrus.Fields{
			"phone": phone,
			"code":  code,
		}).Info("dispatch: dev-режим, код не отправлен, только сгенерирован")
	}

	return code, nil
}
