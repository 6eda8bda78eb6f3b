package webhook_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomdesk/config"
	"roomdesk/infras/otel/mocks"
	"roomdesk/infras/webhook"
	"roomdesk/shared/constant"
)

func webhookConfig(baseURL string) *config.Config {
	cfg := &config.Config{}
	cfg.External.Webhook.BaseURL = baseURL
	cfg.External.Webhook.Secret = "test-secret"
	cfg.External.Webhook.Paths.BookingCreate = "/webhook/booking-form"

	return cfg
}

func TestNotify_SignsPayload(t *testing.T) {
	var (
		gotSignature string
		gotBody      []byte
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSignature = r.Header.Get(constant.RequestHeaderWebhookSignature)
		gotBody, _ = io.ReadAll(r.Body)

		w.Header().Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)
		_, _ = w.Write([]byte(`{"success": true}`))
	}))
	defer server.Close()

	notifier := webhook.New(webhookConfig(server.URL), mocks.NewOtel())

	err := notifier.Notify(context.Background(), webhook.EventBookingCreate, map[string]string{"title": "Sprint Planning"})
	require.NoError(t, err)

	assert.Equal(t, webhook.Sign("test-secret", gotBody), gotSignature)

	payload := map[string]string{}
	require.NoError(t, json.Unmarshal(gotBody, &payload))
	assert.Equal(t, "Sprint Planning", payload["title"])
}

func TestNotify_NotAcknowledged(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)
		_, _ = w.Write([]byte(`{"success": false, "message": "automation disabled"}`))
	}))
	defer server.Close()

	notifier := webhook.New(webhookConfig(server.URL), mocks.NewOtel())

	err := notifier.Notify(context.Background(), webhook.EventBookingCreate, map[string]string{"title": "Sprint Planning"})
	assert.ErrorIs(t, err, webhook.ErrNotAcknowledged)
}

func TestNotify_UnconfiguredEvent(t *testing.T) {
	notifier := webhook.New(webhookConfig("http://localhost"), mocks.NewOtel())

	err := notifier.Notify(context.Background(), webhook.EventSupport, nil)
	assert.Error(t, err)
}
