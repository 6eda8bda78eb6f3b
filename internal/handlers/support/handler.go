package support

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"roomdesk/infras/otel"
	"roomdesk/internal/domains/support/model/dto"
	"roomdesk/internal/domains/support/service"
	"roomdesk/shared/constant"
	"roomdesk/shared/validator"
	"roomdesk/transport/http/response"
)

type Handler struct {
	service service.Support
	otel    otel.Otel
}

func New(service service.Support, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/support", func(routerGroup chi.Router) {
		routerGroup.Post("/messages", handler.SendMessage)
	})
}

// SendMessage forwards a support message to the administrators.
// @Summary Send a support message
// @Description Forward a support message to the administrator channel.
// @Tags Support
// @Accept json
// @Produce json
// @Param request body dto.SupportMessageRequest true "Support Message Request"
// @Success 200 {object} response.Message "Support message sent successfully"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/support/messages [post]
func (handler *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".SendMessage")
	defer scope.End()

	req := dto.SupportMessageRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	if err := handler.service.Send(ctx, req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to send support message")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Support message sent successfully")

	response.WithMessage(w, http.StatusOK, "Support message sent successfully")
}
