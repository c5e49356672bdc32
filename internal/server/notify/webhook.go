package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/meridianpress/newsdesk/internal/logging"
)

// envelope is the wire shape of a delivered event.
type envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// WebhookNotifier POSTs signed event payloads to every configured endpoint.
// With no endpoints configured it degrades to logging the event, which
// keeps development setups working without a receiver.
type WebhookNotifier struct {
	endpoints []string
	secret    string
	client    *http.Client
	logger    logging.Logger
}

func NewWebhookNotifier(endpoints []string, secret string, logger logging.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		endpoints: endpoints,
		secret:    secret,
		client:    &http.Client{Timeout: 5 * time.Second},
		logger:    logger.With("module", "notify"),
	}
}

// Push delivers the event to all endpoints, returning the joined errors of
// any failed deliveries.
func (n *WebhookNotifier) Push(ctx context.Context, event string, payload any) error {
	body, err := json.Marshal(envelope{Event: event, Data: payload})
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", event, err)
	}

	if len(n.endpoints) == 0 {
		n.logger.Info(ctx, "event broadcast (no subscribers)", "event", event)
		return nil
	}

	var errs []error
	for _, endpoint := range n.endpoints {
		if err := n.deliver(ctx, endpoint, body); err != nil {
			n.logger.Error(ctx, "webhook delivery failed", "endpoint", endpoint, "event", event, "error", err.Error())
			errs = append(errs, err)
			continue
		}
		n.logger.Debug(ctx, "webhook delivered", "endpoint", endpoint, "event", event)
	}
	return errors.Join(errs...)
}

func (n *WebhookNotifier) deliver(ctx context.Context, endpoint string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(SignatureHeader, SignBody(n.secret, body))

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("endpoint returned %d", resp.StatusCode)
	}
	return nil
}
