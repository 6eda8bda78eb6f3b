package webhook

//go:generate go run go.uber.org/mock/mockgen -source=./webhook.go -destination=./mocks/webhook_mock.go -package=mocks

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"roomdesk/config"
	"roomdesk/infras/otel"
	"roomdesk/shared/constant"
)

// Event identifies the workflow automation endpoint to notify.
type Event string

const (
	EventBookingCreate  Event = "booking-create"
	EventBookingEdit    Event = "booking-edit"
	EventBookingDelete  Event = "booking-delete"
	EventBookingApprove Event = "booking-approve"
	EventBookingReject  Event = "booking-reject"
	EventSupport        Event = "support"
)

var ErrNotAcknowledged = errors.New("webhook did not acknowledge the notification")

// Sign computes the base64 HMAC-SHA256 of body under the shared secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)

	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// ackResponse is the automation service's reply envelope.
type ackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Notifier posts booking lifecycle payloads to the external workflow
// automation service. Calls are best-effort: the store is authoritative,
// callers log notification failures instead of rolling back.
type Notifier interface {
	Notify(ctx context.Context, event Event, payload any) error
}

type notifierImpl struct {
	client *resty.Client
	cfg    *config.Config
	otel   otel.Otel
	paths  map[Event]string
}

func New(cfg *config.Config, otl otel.Otel) Notifier {
	timeout := cfg.External.Webhook.TimeoutSeconds
	if timeout <= 0 {
		timeout = 10
	}

	client := resty.New().
		SetBaseURL(cfg.External.Webhook.BaseURL).
		SetTimeout(time.Duration(timeout) * time.Second).
		SetRetryCount(cfg.External.Webhook.RetryCount).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader(constant.RequestHeaderContentType, constant.ContentTypeJSON)

	paths := map[Event]string{
		EventBookingCreate:  cfg.External.Webhook.Paths.BookingCreate,
		EventBookingEdit:    cfg.External.Webhook.Paths.BookingEdit,
		EventBookingDelete:  cfg.External.Webhook.Paths.BookingDelete,
		EventBookingApprove: cfg.External.Webhook.Paths.BookingApprove,
		EventBookingReject:  cfg.External.Webhook.Paths.BookingReject,
		EventSupport:        cfg.External.Webhook.Paths.Support,
	}

	log.Info().Str("baseURL", cfg.External.Webhook.BaseURL).Msg("Webhook notifier initialized")

	return &notifierImpl{
		client: client,
		cfg:    cfg,
		otel:   otl,
		paths:  paths,
	}
}

func (n *notifierImpl) Notify(ctx context.Context, event Event, payload any) (err error) {
	ctx, scope := n.otel.NewScope(ctx, constant.OtelExternalScopeName, fmt.Sprintf("%s.webhook.%s", constant.OtelExternalScopeName, event))
	defer scope.End()
	defer scope.TraceIfError(err)

	path, ok := n.paths[event]
	if !ok || path == constant.Empty {
		return fmt.Errorf("no webhook path configured for event %q", event)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode webhook payload (%s): %w", event, err)
	}

	var ack ackResponse

	request := n.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&ack)

	// The receiver verifies the payload against the shared secret.
	if n.cfg.External.Webhook.Secret != constant.Empty {
		request.SetHeader(constant.RequestHeaderWebhookSignature, Sign(n.cfg.External.Webhook.Secret, body))
	}

	resp, err := request.Post(path)
	if err != nil {
		log.Error().Err(err).Str("event", string(event)).Msg("failed to call webhook")

		return fmt.Errorf("failed to call webhook (%s): %w", event, err)
	}

	scope.SetAttribute("http.status_code", resp.StatusCode())

	if resp.IsError() {
		log.Error().Int("status", resp.StatusCode()).Str("event", string(event)).Msg("webhook returned error status")

		return fmt.Errorf("webhook (%s) returned status %d: %w", event, resp.StatusCode(), ErrNotAcknowledged)
	}

	if !ack.Success {
		log.Warn().Str("event", string(event)).Str("message", ack.Message).Msg("webhook rejected notification")

		return fmt.Errorf("webhook (%s): %w", event, ErrNotAcknowledged)
	}

	return nil
}
