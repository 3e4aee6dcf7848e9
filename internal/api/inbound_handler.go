package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/calfield/brief-api/internal/api/shared"
	"github.com/calfield/brief-api/internal/platform/logger"
	"github.com/calfield/brief-api/internal/service"
)

// InboundEmailRequest represents the webhook payload for a forwarded email
type InboundEmailRequest struct {
	Sender    string `json:"sender"    validate:"required,email"`
	Recipient string `json:"recipient" validate:"required,email"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

// InboundHandler handles the inbound email webhook
type InboundHandler struct {
	inboundService service.InboundService
	validator      *validator.Validate
}

// NewInboundHandler creates a new InboundHandler
func NewInboundHandler(inboundService service.InboundService) *InboundHandler {
	return &InboundHandler{
		inboundService: inboundService,
		validator:      validator.New(),
	}
}

// ReceiveEmail handles POST /api/inbound/email requests. A routable email is
// acknowledged with 202 as soon as its audit record is durable; task
// processing happens asynchronously. Unroutable addresses get a 4xx so the
// forwarding provider stops retrying.
func (h *InboundHandler) ReceiveEmail(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), nil)

	var req InboundEmailRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	if err := h.inboundService.ReceiveEmail(r.Context(), req.Sender, req.Recipient, req.Subject, req.Body); err != nil {
		log.Warn("inbound email not accepted", "error", err, "recipient", req.Recipient)
		HandleAPIError(w, r, err, "Failed to process inbound email")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, map[string]string{"status": "accepted"})
}
