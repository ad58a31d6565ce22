package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// NotifPayload is sent by the worker pool to the external notification
// service, which fans events out to the channels each client configured
// (push, WhatsApp, etc.). The payload JSON is forwarded opaque.
type NotifPayload struct {
	Evento  string          `json:"evento"`
	Payload json.RawMessage `json:"payload"`
}

// NotifResponse is the delivery acknowledgement.
type NotifResponse struct {
	Delivered bool   `json:"delivered"`
	Mensaje   string `json:"mensaje"`
}

// NotifClient is an HTTP client for the notification service. Delivery runs
// through the worker pool, never inline with a request.
type NotifClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewNotifClient(baseURL string) *NotifClient {
	return &NotifClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Enviar posts one event to the notification service.
func (c *NotifClient) Enviar(ctx context.Context, payload NotifPayload) (*NotifResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("notif: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/events", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("notif: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("notif: service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("notif: service returned %d", resp.StatusCode)
	}

	var result NotifResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("notif: decode response: %w", err)
	}
	return &result, nil
}
