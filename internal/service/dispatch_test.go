package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanzorin/wedding-backend/internal/pkg/apperror"
)

// fakeRequester подменяет соединение NATS в тестах диспетчера.
type fakeRequester struct {
	reply   *nats.Msg
	err     error
	subject string
	data    []byte
}

func (f *fakeRequester) RequestWithContext(ctx context.Context, subj string, data []byte) (*nats.Msg, error) {
	f.subject = subj
	f.data = data
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

func replyWith(t *testing.T, result CallResult) *nats.Msg {
	t.Helper()
	payload, err := json.Marshal(result)
	require.NoError(t, err)
	return &nats.Msg{Data: payload}
}

func TestNatsDispatcher_Success(t *testing.T) {
	conn := &fakeRequester{reply: replyWith(t, CallResult{Success: true, Message: "Звонок отправлен", Pincode: "4821"})}
	d := NewNatsDispatcher(conn, "calls.verification", 65*time.Second)

	code, err := d.Dispatch(context.Background(), testPhone)
	require.NoError(t, err)
	assert.Equal(t, "4821", code)
	assert.Equal(t, "calls.verification", conn.subject)

	var req CallRequest
	require.NoError(t, json.Unmarshal(conn.data, &req))
	assert.Equal(t, testPhone, req.Phone)
}

func TestNatsDispatcher_Timeout(t *testing.T) {
	conn := &fakeRequester{err: context.DeadlineExceeded}
	d := NewNatsDispatcher(conn, "calls.verification", time.Millisecond)

	_, err := d.Dispatch(context.Background(), testPhone)
	require.True(t, apperror.IsCode(err, apperror.ErrCodeDispatchFailure))
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, "Не удалось отправить звонок. Попробуйте позже.", appErr.Message)
}

func TestNatsDispatcher_ProviderFailure(t *testing.T) {
	conn := &fakeRequester{reply: replyWith(t, CallResult{Success: false, Message: "Ошибка API: 500"})}
	d := NewNatsDispatcher(conn, "calls.verification", 65*time.Second)

	_, err := d.Dispatch(context.Background(), testPhone)
	assert.True(t, apperror.IsCode(err, apperror.ErrCodeDispatchFailure))
}

func TestNatsDispatcher_MissingPincode(t *testing.T) {
	// Провайдер ответил success, но без кода: считается сбоем отправки.
	conn := &fakeRequester{reply: replyWith(t, CallResult{Success: true, Message: "Звонок отправлен"})}
	d := NewNatsDispatcher(conn, "calls.verification", 65*time.Second)

	_, err := d.Dispatch(context.Background(), testPhone)
	assert.True(t, apperror.IsCode(err, apperror.ErrCodeDispatchFailure))
}

func TestNatsDispatcher_MalformedReply(t *testing.T) {
	conn := &fakeRequester{reply: &nats.Msg{Data: []byte("not json")}}
	d := NewNatsDispatcher(conn, "calls.verification", 65*time.Second)

	_, err := d.Dispatch(context.Background(), testPhone)
	assert.True(t, apperror.IsCode(err, apperror.ErrCodeDispatchFailure))
}

func TestNatsDispatcher_ConnectionError(t *testing.T) {
	conn := &fakeRequester{err: errors.New("nats: connection closed")}
	d := NewNatsDispatcher(conn, "calls.verification", 65*time.Second)

	_, err := d.Dispatch(context.Background(), testPhone)
	assert.True(t, apperror.IsCode(err, apperror.ErrCodeDispatchFailure))
}

func TestDevDispatcher_GeneratesCode(t *testing.T) {
	d := NewDevDispatcher(4)

	code, err := d.Dispatch(context.Background(), testPhone)
	require.NoError(t, err)
	assert.Len(t, code, 4)
	for _, r := range code {
		assert.GreaterOrEqual(t, r, '0')
		assert.LessOrEqual(t, r, '9')
	}
}
