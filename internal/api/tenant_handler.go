package api

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/calfield/brief-api/internal/api/shared"
	"github.com/calfield/brief-api/internal/domain"
	"github.com/calfield/brief-api/internal/platform/logger"
	"github.com/calfield/brief-api/internal/service"
)

// CreateTenantRequest represents the request body for onboarding a tenant
type CreateTenantRequest struct {
	Name         string   `json:"name"          validate:"required,min=1,max=200"`
	ContactEmail string   `json:"contact_email" validate:"omitempty,email"`
	ContactPhone string   `json:"contact_phone" validate:"omitempty,e164"`
	Channels     []string `json:"channels"      validate:"omitempty,dive,min=1"`
}

// UpdateTenantRequest represents the request body for updating a tenant
type UpdateTenantRequest struct {
	Name         string   `json:"name"          validate:"omitempty,min=1,max=200"`
	ContactEmail string   `json:"contact_email" validate:"omitempty,email"`
	ContactPhone string   `json:"contact_phone" validate:"omitempty,e164"`
	ReportOrder  string   `json:"report_order"  validate:"omitempty,oneof=newest_first oldest_first"`
	Channels     []string `json:"channels"      validate:"omitempty,dive,min=1"`
}

// TenantResponse represents the response data for a tenant
type TenantResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	ContactEmail   string    `json:"contact_email,omitempty"`
	ContactPhone   string    `json:"contact_phone,omitempty"`
	InboundAddress string    `json:"inbound_address,omitempty"`
	ReportOrder    string    `json:"report_order"`
	Channels       []string  `json:"channels"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TenantHandler handles tenant-related HTTP requests
type TenantHandler struct {
	tenantService service.TenantService
	validator     *validator.Validate
}

// NewTenantHandler creates a new TenantHandler
func NewTenantHandler(tenantService service.TenantService) *TenantHandler {
	return &TenantHandler{
		tenantService: tenantService,
		validator:     validator.New(),
	}
}

// CreateTenant handles POST /api/tenants requests
func (h *TenantHandler) CreateTenant(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), nil)

	var req CreateTenantRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	tenant, err := h.tenantService.CreateTenant(r.Context(), service.CreateTenantParams{
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		Channels:     toChannels(req.Channels),
	})
	if err != nil {
		log.Error("failed to create tenant", "error", err)
		HandleAPIError(w, r, err, "Failed to create tenant")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, tenantToResponse(tenant))
}

// GetTenant handles GET /api/tenants/{id} requests
func (h *TenantHandler) GetTenant(w http.ResponseWriter, r *http.Request) {
	tenantID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	tenant, err := h.tenantService.GetTenant(r.Context(), tenantID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve tenant")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tenantToResponse(tenant))
}

// UpdateTenant handles PUT /api/tenants/{id} requests
func (h *TenantHandler) UpdateTenant(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), nil)

	tenantID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req UpdateTenantRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	tenant, err := h.tenantService.UpdateTenant(r.Context(), tenantID, service.UpdateTenantParams{
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		ReportOrder:  domain.ReportOrder(req.ReportOrder),
		Channels:     toChannels(req.Channels),
	})
	if err != nil {
		log.Error("failed to update tenant", "error", err, "tenant_id", tenantID)
		HandleAPIError(w, r, err, "Failed to update tenant")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tenantToResponse(tenant))
}

// tenantToResponse converts a domain.Tenant to a TenantResponse
func tenantToResponse(tenant *domain.Tenant) TenantResponse {
	channels := make([]string, len(tenant.Channels))
	for i, ch := range tenant.Channels {
		channels[i] = string(ch)
	}

	return TenantResponse{
		ID:             tenant.ID.String(),
		Name:           tenant.Name,
		ContactEmail:   tenant.ContactEmail,
		ContactPhone:   tenant.ContactPhone,
		InboundAddress: tenant.InboundAddress,
		ReportOrder:    string(tenant.ReportOrder),
		Channels:       channels,
		CreatedAt:      tenant.CreatedAt,
		UpdatedAt:      tenant.UpdatedAt,
	}
}

func toChannels(raw []string) []domain.Channel {
	if len(raw) == 0 {
		return nil
	}
	channels := make([]domain.Channel, len(raw))
	for i, ch := range raw {
		channels[i] = domain.Channel(ch)
	}
	return channels
}
