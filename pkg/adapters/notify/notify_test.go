package notify_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aretw0/leadwizard/pkg/adapters/notify"
	"github.com/aretw0/leadwizard/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhook_Notify(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	hook := notify.NewWebhook(srv.URL, nil)
	err := hook.Notify(context.Background(), domain.Lead{
		ID:         42,
		Email:      "ada@example.com",
		ZipCode:    "39201",
		RawMessage: "quote please",
	})
	require.NoError(t, err)

	assert.EqualValues(t, 42, got["id"])
	assert.Equal(t, domain.DefaultLeadName, got["name"])
	assert.Equal(t, "ada@example.com", got["email"])
	assert.Equal(t, "39201", got["zip_code"])
	assert.Equal(t, "quote please", got["raw_message"])
}

func TestWebhook_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := notify.NewWebhook(srv.URL, nil).Notify(context.Background(), domain.Lead{ID: 1})
	assert.ErrorContains(t, err, "502")
}

func TestWebhook_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	hook := notify.NewWebhook(srv.URL, &http.Client{Timeout: 20 * time.Millisecond})
	assert.Error(t, hook.Notify(context.Background(), domain.Lead{ID: 1}))
}

func TestAlerts_Notify(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	alerts := notify.NewAlerts(logger)

	require.NoError(t, alerts.Notify(context.Background(), domain.Lead{ID: 7, Email: "a@b.co"}))
	assert.Contains(t, buf.String(), "slack alert")
	assert.Contains(t, buf.String(), "New lead: New Inquiry, Email: a@b.co")
	assert.NotContains(t, buf.String(), "sms alert")

	buf.Reset()
	require.NoError(t, alerts.Notify(context.Background(), domain.Lead{ID: 8, Phone: "601-555-0100"}))
	assert.Contains(t, buf.String(), "sms alert")
	assert.Contains(t, buf.String(), "601-555-0100")
}

type notifierFunc func(context.Context, domain.Lead) error

func (f notifierFunc) Notify(ctx context.Context, lead domain.Lead) error { return f(ctx, lead) }

func TestMulti_Notify(t *testing.T) {
	errA := errors.New("a down")
	calls := 0
	multi := notify.Multi{
		notifierFunc(func(context.Context, domain.Lead) error { calls++; return errA }),
		notifierFunc(func(context.Context, domain.Lead) error { calls++; return nil }),
	}

	err := multi.Notify(context.Background(), domain.Lead{})
	assert.ErrorIs(t, err, errA)
	assert.Equal(t, 2, calls, "later notifiers still run")

	assert.NoError(t, notify.Multi{}.Notify(context.Background(), domain.Lead{}))
}
