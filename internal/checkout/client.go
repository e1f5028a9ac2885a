package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// SubmitResult is the notifier's response status object.
type SubmitResult struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	OrderRef string `json:"order_ref"`
	Error    string `json:"error"`
}

// Notifier delivers the assembled order record to the order notification
// endpoint and reports its outcome.
type Notifier interface {
	SendOrder(ctx context.Context, rec *OrderRecord) (*SubmitResult, error)
}

// NotifierClient posts order records as JSON over HTTP, the same single
// request a browser checkout would make.
type NotifierClient struct {
	endpoint string
	client   *http.Client
}

func NewNotifierClient(endpoint string, timeout time.Duration) *NotifierClient {
	return &NotifierClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (c *NotifierClient) SendOrder(ctx context.Context, rec *OrderRecord) (*SubmitResult, error) {
	body, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach order notifier: %w", err)
	}
	defer resp.Body.Close()

	var result SubmitResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode notifier response: %w", err)
	}

	if !result.Success {
		if result.Error != "" {
			return nil, errors.New(result.Error)
		}
		return nil, errors.New("failed to process order")
	}

	return &result, nil
}
