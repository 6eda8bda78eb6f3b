package events

//go:generate go run go.uber.org/mock/mockgen -source=./publisher.go -destination=./mocks/publisher_mock.go -package=mocks

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"roomdesk/config"
	"roomdesk/infras/kafka"
	"roomdesk/infras/otel"
	"roomdesk/shared/constant"
	"roomdesk/shared/timezone"
)

// Publisher emits booking lifecycle events to the message broker.
type Publisher interface {
	Publish(ctx context.Context, event BookingEvent) error
}

type publisherImpl struct {
	client kafka.Client
	config *config.Config
	otel   otel.Otel
}

func NewPublisher(client kafka.Client, cfg *config.Config, otl otel.Otel) Publisher {
	return &publisherImpl{
		client: client,
		config: cfg,
		otel:   otl,
	}
}

func (p *publisherImpl) Publish(ctx context.Context, event BookingEvent) (err error) {
	ctx, scope := p.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".booking.Publish")
	defer scope.End()
	defer scope.TraceIfError(err)

	if event.OccurredAt.IsZero() {
		event.OccurredAt = timezone.Now()
	}

	scope.SetAttribute("event.type", string(event.Type))

	err = p.client.SendMessages(ctx, p.config.Kafka.Topics.BookingEvents, kafka.Message{
		Key:   event.BookingID,
		Value: event,
	})
	if err != nil {
		log.Error().Err(err).
			Str("type", string(event.Type)).
			Str("bookingID", event.BookingID).
			Msg("Failed to publish booking event.")

		return fmt.Errorf("failed to publish booking event: %w", err)
	}

	return nil
}
