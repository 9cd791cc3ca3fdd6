package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(server *httptest.Server) *ZvonokClient {
	return &ZvonokClient{
		client:     &http.Client{Timeout: 5 * time.Second},
		baseURL:    server.URL,
		publicKey:  "test-key",
		campaignID: "42",
	}
}

func TestSendFlashCall_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/phones/flashcall/", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("public_key"))
		assert.Equal(t, "42", r.URL.Query().Get("campaign_id"))
		assert.Equal(t, "+79990000000", r.URL.Query().Get("phone"))
		// pincode в запросе не передаётся: его выбирает провайдер.
		assert.Empty(t, r.URL.Query().Get("pincode"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok","data":{"call_id":123456,"pincode":"4723"}}`))
	}))
	defer server.Close()

	call, err := newTestClient(server).SendFlashCall(context.Background(), "+79990000000")
	require.NoError(t, err)
	assert.Equal(t, "4723", call.Pincode)
	assert.Equal(t, "123456", call.CallID.String())
}

func TestSendFlashCall_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newTestClient(server).SendFlashCall(context.Background(), "+79990000000")
	assert.Error(t, err)
}

func TestSendFlashCall_RejectedByProvider(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"error","message":"Номер в чёрном списке"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server).SendFlashCall(context.Background(), "+79990000000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Номер в чёрном списке")
}

func TestSendFlashCall_MissingPincode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok","data":{"call_id":1}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server).SendFlashCall(context.Background(), "+79990000000")
	assert.ErrorIs(t, err, ErrNoPincode)
}

func TestConfigured(t *testing.T) {
	assert.True(t, NewZvonokClient("key", "42").Configured())
	assert.False(t, NewZvonokClient("", "42").Configured())
	assert.False(t, NewZvonokClient("key", "").Configured())
}
