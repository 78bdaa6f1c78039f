package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/leadwizard/pkg/domain"
	"github.com/aretw0/leadwizard/pkg/ports"
)

// DefaultWebhookTimeout bounds a single webhook delivery.
const DefaultWebhookTimeout = 5 * time.Second

func nopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Webhook posts captured leads as JSON to an automation endpoint (n8n).
type Webhook struct {
	url    string
	client *http.Client
}

// NewWebhook creates a webhook notifier. A nil client gets DefaultWebhookTimeout.
func NewWebhook(url string, client *http.Client) *Webhook {
	if client == nil {
		client = &http.Client{Timeout: DefaultWebhookTimeout}
	}
	return &Webhook{url: url, client: client}
}

// Notify delivers the lead. The payload carries the display name, so leads
// without a name arrive as "New Inquiry".
func (w *Webhook) Notify(ctx context.Context, lead domain.Lead) error {
	lead.Name = lead.DisplayName()
	body, err := json.Marshal(lead)
	if err != nil {
		return fmt.Errorf("failed to marshal lead: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook delivery failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// Alerts logs the staff alert and the SMS a real integration would send.
// The SMS line is only emitted when the lead has a phone number.
type Alerts struct {
	logger *slog.Logger
}

// NewAlerts creates a log-only notifier.
func NewAlerts(logger *slog.Logger) *Alerts {
	if logger == nil {
		logger = nopLogger()
	}
	return &Alerts{logger: logger}
}

// Notify never fails.
func (a *Alerts) Notify(ctx context.Context, lead domain.Lead) error {
	a.logger.InfoContext(ctx, "slack alert",
		"message", fmt.Sprintf("New lead: %s, Email: %s", lead.DisplayName(), lead.Email),
		"lead_id", lead.ID)

	if lead.Phone != "" {
		a.logger.InfoContext(ctx, "sms alert",
			"phone", lead.Phone,
			"message", "A new lead was created.",
			"lead_id", lead.ID)
	}
	return nil
}

// Multi fans a lead out to every notifier, in order, and joins their errors.
type Multi []ports.Notifier

// Notify calls every notifier even when an earlier one fails.
func (m Multi) Notify(ctx context.Context, lead domain.Lead) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, lead); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
