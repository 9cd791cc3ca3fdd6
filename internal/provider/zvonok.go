package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const zvonokAPIBase = "https://zvonok.com/manager/cabapi_external/api/v1"

// ErrNoPincode возвращается, когда провайдер принял звонок, но не вернул код.
var ErrNoPincode = errors.New("zvonok: провайдер не вернул pincode")

// FlashCall — результат успешной постановки флеш-звонка. Pincode выбирает
// сам провайдер: это последние цифры номера, с которого поступит звонок.
type FlashCall struct {
	CallID  json.Number
	Pincode string
}

// ZvonokClient отправляет флеш-звонки через Zvonok.com.
type ZvonokClient struct {
	client     *http.Client
	baseURL    string
	publicKey  string
	campaignID string
}

// NewZvonokClient создаёт клиента провайдера звонков.
func NewZvonokClient(publicKey, campaignID string) *ZvonokClient {
	return &ZvonokClient{
		client:     &http.Client{Timeout: 30 * time.Second},
		baseURL:    zvonokAPIBase,
		publicKey:  publicKey,
		campaignID: campaignID,
	}
}

// Configured сообщает, заданы ли учётные данные провайдера.
func (c *ZvonokClient) Configured() bool {
	return c.publicKey != "" && c.campaignID != ""
}

// SendFlashCall ставит флеш-звонок на номер. Номер должен быть в формате
// +7XXXXXXXXXX. Pincode не передаём: его генерирует провайдер.
func (c *ZvonokClient) SendFlashCall(ctx context.Context, phone string) (*FlashCall, error) {
	params := url.Values{}
	params.Set("public_key", c.publicKey)
	params.Set("campaign_id", c.campaignID)
	params.Set("phone", phone)

	endpoint := c.baseURL + "/phones/flashcall/?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("zvonok: не удалось создать запрос: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("zvonok: запрос не выполнен: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("zvonok: не удалось прочитать ответ: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("zvonok: API вернул %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		Error   string `json:"error"`
		Data    struct {
			CallID  json.Number `json:"call_id"`
			Pincode string      `json:"pincode"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("zvonok: не удалось разобрать ответ %q: %w", string(body), err)
	}

	if payload.Status != "ok" {
		msg := payload.Message
		if msg == "" {
			msg = payload.Error
		}
		if msg == "" {
			msg = "неизвестная ошибка"
		}
		return nil, fmt.Errorf("zvonok: отправка звонка отклонена: %s", msg)
	}

	if payload.Data.Pincode == "" {
		return nil, ErrNoPincode
	}

	return &FlashCall{CallID: payload.Data.CallID, Pincode: payload.Data.Pincode}, nil
}
