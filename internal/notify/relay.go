package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	keepsake_errors "keepsake/pkg/errors"

	"github.com/google/uuid"
)

// RelayClient talks to the notification-dispatch relay, a thin HTTP
// endpoint in front of the push-messaging service.
type RelayClient struct {
	baseURL string
	client  *http.Client
}

type relayRequest struct {
	TargetUserID string            `json:"targetUserId"`
	Title        string            `json:"title"`
	Body         string            `json:"body"`
	Data         map[string]string `json:"data,omitempty"`
}

type relayResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func NewRelayClient(baseURL string) *RelayClient {
	return &RelayClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Send dispatches one push. Callers treat failures as non-fatal; nothing
// here blocks or rolls back the action that triggered the notification.
func (c *RelayClient) Send(ctx context.Context, targetUserID uuid.UUID, title, body string, data map[string]string) error {
	if c.baseURL == "" {
		return keepsake_errors.ErrServiceUnavailable
	}

	payload, err := json.Marshal(relayRequest{
		TargetUserID: targetUserID.String(),
		Title:        title,
		Body:         body,
		Data:         data,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var out relayResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return err
	}
	if !out.Success {
		return fmt.Errorf("relay rejected push: %s", out.Error)
	}
	return nil
}
