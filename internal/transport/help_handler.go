package transport

import (
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/repository"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// HelpTicketRequest is the support message payload
type HelpTicketRequest struct {
	UserID  string `json:"user_id" validate:"required"`
	Message string `json:"message" validate:"required,max=2000"`
}

// HelpHandler handles HTTP requests for the help-desk service
type HelpHandler struct {
	tickets repository.HelpTicketRepository
	logger  *zap.Logger
}

// NewHelpHandler creates a new HelpHandler
func NewHelpHandler(tickets repository.HelpTicketRepository, logger *zap.Logger) *HelpHandler {
	return &HelpHandler{tickets: tickets, logger: logger}
}

// RegisterRoutes registers help-desk routes
func (h *HelpHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Liveness)
	r.Post("/help", h.CreateTicket)
}

// Liveness reports that the help-desk service is up
func (h *HelpHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Help desk service is running"})
}

// CreateTicket stores a support message
func (h *HelpHandler) CreateTicket(w http.ResponseWriter, r *http.Request) {
	var req HelpTicketRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ticket := &domain.HelpTicket{
		UserID:  req.UserID,
		Message: req.Message,
	}

	if err := h.tickets.Create(r.Context(), ticket); err != nil {
		h.logger.Error("Failed to create help ticket", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	h.logger.Info("Help ticket received", zap.String("user_id", req.UserID))
	middleware.RespondWithJSON(w, http.StatusCreated, ticket)
}
