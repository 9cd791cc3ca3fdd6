package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider возвращает подготовленную последовательность результатов.
type fakeProvider struct {
	results []fakeCallResult
	calls   int
	phones  []string
}

type fakeCallResult struct {
	pincode string
	err     error
}

func (f *fakeProvider) SendFlashCall(ctx context.Context, phone string) (string, error) {
	f.phones = append(f.phones, phone)
	result := f.results[f.calls]
	f.calls++
	return result.pincode, result.err
}

func newTestWorker(provider *fakeProvider) *CallWorker {
	w := NewCallWorker(nil, "calls.verification", provider)
	w.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return w
}

func TestCallWithRetries_FirstAttemptSucceeds(t *testing.T) {
	provider := &fakeProvider{results: []fakeCallResult{{pincode: "4821"}}}
	w := newTestWorker(provider)

	result := w.callWithRetries(context.Background(), "+79990000000")
	require.True(t, result.Success)
	assert.Equal(t, "4821", result.Pincode)
	assert.Equal(t, 1, provider.calls)
}

func TestCallWithRetries_RecoversAfterFailure(t *testing.T) {
	provider := &fakeProvider{results: []fakeCallResult{
		{err: errors.New("zvonok: API вернул 500")},
		{pincode: "4821"},
	}}
	w := newTestWorker(provider)

	result := w.callWithRetries(context.Background(), "+79990000000")
	require.True(t, result.Success)
	assert.Equal(t, "4821", result.Pincode)
	assert.Equal(t, 2, provider.calls)
}

func TestCallWithRetries_ExhaustsAttempts(t *testing.T) {
	provider := &fakeProvider{results: []fakeCallResult{
		{err: errors.New("timeout")},
		{err: errors.New("timeout")},
		{err: errors.New("timeout")},
	}}
	w := newTestWorker(provider)

	result := w.callWithRetries(context.Background(), "+79990000000")
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "Ошибка отправки звонка")
	assert.Equal(t, maxCallAttempts, provider.calls)
}

func TestCallWithRetries_StopsOnCancelledContext(t *testing.T) {
	provider := &fakeProvider{results: []fakeCallResult{
		{err: errors.New("timeout")},
		{err: errors.New("timeout")},
		{err: errors.New("timeout")},
	}}
	w := newTestWorker(provider)
	w.sleep = func(ctx context.Context, d time.Duration) error { return context.Canceled }

	result := w.callWithRetries(context.Background(), "+79990000000")
	assert.False(t, result.Success)
	// Отменённый контекст прекращает ретраи после первой попытки.
	assert.Equal(t, 1, provider.calls)
}
