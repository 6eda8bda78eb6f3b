package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"roomdesk/infras/otel"
	"roomdesk/infras/webhook"
	"roomdesk/internal/domains/support/model/dto"
	"roomdesk/shared/constant"
)

type Support interface {
	Send(ctx context.Context, req dto.SupportMessageRequest) error
}

type serviceImpl struct {
	notifier webhook.Notifier
	otel     otel.Otel
}

func New(notifier webhook.Notifier, otel otel.Otel) Support {
	return &serviceImpl{
		notifier: notifier,
		otel:     otel,
	}
}

// Send forwards the message to the admin webhook. Unlike booking
// notifications this one is not best-effort: the webhook is the only
// destination, so a failure surfaces to the caller.
func (s *serviceImpl) Send(ctx context.Context, req dto.SupportMessageRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Send")
	defer scope.End()
	defer scope.TraceIfError(err)

	if err = s.notifier.Notify(ctx, webhook.EventSupport, req); err != nil {
		log.Error().Err(err).Msg("failed to forward support message")

		return fmt.Errorf("failed to forward support message: %w", err)
	}

	return nil
}
