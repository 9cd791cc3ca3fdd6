package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"github.com/ivanzorin/wedding-backend/internal/goroutine"
	"github.com/ivanzorin/wedding-backend/internal/logger"
	"github.com/ivanzorin/wedding-backend/internal/service"
	"github.com/ivanzorin/wedding-backend/internal/validation"
)

const (
	maxCallAttempts = 3
	retryDelay      = 60 * time.Second
)

// CallProvider — провайдер флеш-звонков, возвращающий выбранный им код.
type CallProvider interface {
	SendFlashCall(ctx context.Context, phone string) (pincode string, err error)
}

// CallWorker слушает задачи на звонок и отвечает результатом в reply subject.
// Ретраи вызова провайдера живут здесь: издатель ждёт один ответ на задачу.
type CallWorker struct {
	conn     *nats.Conn
	subject  string
	provider CallProvider

	// sleep подменяется в тестах, чтобы не ждать ретраи по минуте.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewCallWorker создаёт воркер звонков.
func NewCallWorker(conn *nats.Conn, subject string, provider CallProvider) *CallWorker {
	return &CallWorker{
		conn:     conn,
		subject:  subject,
		provider: provider,
		sleep:    sleepCtx,
	}
}

// Start подписывается на subject и обрабатывает задачи до отмены контекста.
// Подписка очередная: несколько воркеров делят поток задач, каждая задача
// достаётся одному.
func (w *CallWorker) Start(ctx context.Context) (*nats.Subscription, error) {
	sub, err := w.conn.QueueSubscribe(w.subject, "call-workers", func(msg *nats.Msg) {
		goroutine.SafeGoWithContext(ctx, func(ctx context.Context) {
			w.handle(ctx, msg)
		})
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (w *CallWorker) handle(ctx context.Context, msg *nats.Msg) {
	var req service.CallRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		if logger.Log != nil {
			logger.Log.WithField("error", err.Error()).Error("worker: повреждённая задача на звонок")
		}
		w.reply(msg, service.CallResult{Success: false, Message: "повреждённая задача"})
		return
	}

	phone := validation.NormalizePhone(req.Phone)

	result := w.callWithRetries(ctx, phone)
	w.reply(msg, result)
}

// callWithRetries вызывает провайдера до maxCallAttempts раз с фиксированной
// паузой между попытками.
func (w *CallWorker) callWithRetries(ctx context.Context, phone string) service.CallResult {
	var lastErr error

	for attempt := 1; attempt <= maxCallAttempts; attempt++ {
		pincode, err := w.provider.SendFlashCall(ctx, phone)
		if err == nil {
			if logger.Log != nil {
				logger.Log.WithFields(logrus.Fields{
					"phone":   phone,
					"attempt": attempt,
				}).Info("worker: звонок отправлен")
			}
			return service.CallResult{Success: true, Message: "Звонок отправлен", Pincode: pincode}
		}

		lastErr = err
		if logger.Log != nil {
			logger.Log.WithFields(logrus.Fields{
				"phone":   phone,
				"attempt": attempt,
				"error":   err.Error(),
			}).Warn("worker: попытка звонка не удалась")
		}

		if attempt < maxCallAttempts {
			if err := w.sleep(ctx, retryDelay); err != nil {
				break
			}
		}
	}

	return service.CallResult{
		Success: false,
		Message: "Ошибка отправки звонка: " + lastErr.Error(),
	}
}

func (w *CallWorker) reply(msg *nats.Msg, result service.CallResult) {
	if msg.Reply == "" {
		return
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := msg.Respond(payload); err != nil && logger.Log != nil {
		logger.Log.WithField("error", err.Error()).Error("worker: не удалось ответить издателю")
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
