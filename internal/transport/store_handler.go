package transport

import (
	"errors"
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/repository"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SettingsRequest is the analytics settings payload
type SettingsRequest struct {
	PixelID     string `json:"pixel_id" validate:"required"`
	AccessToken string `json:"access_token" validate:"required"`
}

// BrandAssetPayload is one toggleable branding element
type BrandAssetPayload struct {
	Value  string `json:"value" validate:"required"`
	Enable bool   `json:"enable"`
}

// ProfileRequest is the brand profile payload
type ProfileRequest struct {
	Logo      BrandAssetPayload `json:"logo" validate:"required"`
	BrandName BrandAssetPayload `json:"brand_name" validate:"required"`
	Cover     BrandAssetPayload `json:"cover" validate:"required"`
	Color     string            `json:"color" validate:"omitempty,oneof=teal blue red green yellow purple pink gray"`
}

// PolicyRequest is the policy page payload
type PolicyRequest struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// ShippingRateRequest is one wilaya's rate payload
type ShippingRateRequest struct {
	Wilaya      string  `json:"wilaya" validate:"required"`
	PriceToDesk float64 `json:"price_to_desk" validate:"gte=0"`
	PriceToHome float64 `json:"price_to_home" validate:"gte=0"`
}

// SeedShippingRequest is the bulk rate-table seed payload
type SeedShippingRequest struct {
	Rates []ShippingRateRequest `json:"rates" validate:"required,min=1,dive"`
}

// StoreHandler handles HTTP requests for store configuration: analytics
// settings, brand profile, policy pages and shipping rates.
type StoreHandler struct {
	settings repository.SettingsRepository
	policies repository.PolicyRepository
	shipping repository.ShippingRepository
	logger   *zap.Logger
}

// NewStoreHandler creates a new StoreHandler
func NewStoreHandler(
	settings repository.SettingsRepository,
	policies repository.PolicyRepository,
	shipping repository.ShippingRepository,
	logger *zap.Logger,
) *StoreHandler {
	return &StoreHandler{
		settings: settings,
		policies: policies,
		shipping: shipping,
		logger:   logger,
	}
}

// RegisterRoutes registers store configuration routes
func (h *StoreHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/settings", func(r chi.Router) {
		r.Get("/", h.GetSettings)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware, adminMiddleware)
			r.Put("/", h.UpdateSettings)
		})
	})

	r.Route("/api/profile", func(r chi.Router) {
		r.Get("/", h.GetProfile)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware, adminMiddleware)
			r.Put("/", h.UpdateProfile)
		})
	})

	r.Route("/api/policies", func(r chi.Router) {
		r.Get("/", h.ListPolicies)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware, adminMiddleware)
			r.Post("/", h.CreatePolicy)
			r.Put("/{id}", h.UpdatePolicy)
			r.Delete("/{id}", h.DeletePolicy)
		})
	})

	r.Route("/api/shipping", func(r chi.Router) {
		r.Get("/", h.ListShippingRates)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware, adminMiddleware)
			r.Post("/", h.SeedShippingRates)
			r.Put("/{wilaya}", h.UpsertShippingRate)
			r.Delete("/{wilaya}", h.DeleteShippingRate)
		})
	})
}

// GetSettings returns the analytics settings document
func (h *StoreHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.GetSettings(r.Context())
	if err != nil {
		if errors.Is(err, repository.ErrSettingsNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "Settings not found")
			return
		}
		h.logger.Error("Failed to get settings", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, settings)
}

// UpdateSettings upserts the analytics settings document
func (h *StoreHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	settings, err := h.settings.UpsertSettings(r.Context(), req.PixelID, req.AccessToken)
	if err != nil {
		h.logger.Error("Failed to save settings", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, settings)
}

// GetProfile returns the brand profile document
func (h *StoreHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.settings.GetProfile(r.Context())
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "Profile not found")
			return
		}
		h.logger.Error("Failed to get brand profile", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, profile)
}

// UpdateProfile upserts the brand profile document
func (h *StoreHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req ProfileRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile := &domain.BrandProfile{
		Logo:      domain.BrandAsset{Value: req.Logo.Value, Enable: req.Logo.Enable},
		BrandName: domain.BrandAsset{Value: req.BrandName.Value, Enable: req.BrandName.Enable},
		Cover:     domain.BrandAsset{Value: req.Cover.Value, Enable: req.Cover.Enable},
		Color:     req.Color,
	}
	if profile.Color == "" {
		profile.Color = "teal"
	}

	updated, err := h.settings.UpsertProfile(r.Context(), profile)
	if err != nil {
		h.logger.Error("Failed to save brand profile", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, updated)
}

// ListPolicies returns all policy pages
func (h *StoreHandler) ListPolicies(w http.ResponseWriter, r *http.Request) {
	policies, err := h.policies.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list policies", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, policies)
}

// CreatePolicy creates a new policy page
func (h *StoreHandler) CreatePolicy(w http.ResponseWriter, r *http.Request) {
	var req PolicyRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	policy := &domain.Policy{Title: req.Title, Content: req.Content}
	if err := h.policies.Create(r.Context(), policy); err != nil {
		h.logger.Error("Failed to create policy", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, policy)
}

// UpdatePolicy replaces a policy page
func (h *StoreHandler) UpdatePolicy(w http.ResponseWriter, r *http.Request) {
	id, ok := parseObjectID(w, r, "id")
	if !ok {
		return
	}

	var req PolicyRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	policy := &domain.Policy{ID: id, Title: req.Title, Content: req.Content}
	if err := h.policies.Update(r.Context(), policy); err != nil {
		if errors.Is(err, repository.ErrPolicyNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "Policy not found")
			return
		}
		h.logger.Error("Failed to update policy", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, policy)
}

// DeletePolicy removes a policy page
func (h *StoreHandler) DeletePolicy(w http.ResponseWriter, r *http.Request) {
	id, ok := parseObjectID(w, r, "id")
	if !ok {
		return
	}

	if err := h.policies.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrPolicyNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "Policy not found")
			return
		}
		h.logger.Error("Failed to delete policy", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Policy deleted"})
}

// ListShippingRates returns the full rate table
func (h *StoreHandler) ListShippingRates(w http.ResponseWriter, r *http.Request) {
	rates, err := h.shipping.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list shipping rates", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, rates)
}

// SeedShippingRates creates the initial rate table
func (h *StoreHandler) SeedShippingRates(w http.ResponseWriter, r *http.Request) {
	var req SeedShippingRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rates := make([]*domain.ShippingRate, 0, len(req.Rates))
	for _, rate := range req.Rates {
		rates = append(rates, &domain.ShippingRate{
			Wilaya:      rate.Wilaya,
			PriceToDesk: rate.PriceToDesk,
			PriceToHome: rate.PriceToHome,
		})
	}

	if err := h.shipping.CreateMany(r.Context(), rates); err != nil {
		h.logger.Error("Failed to seed shipping rates", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, map[string]string{"message": "Initial shipping prices created successfully"})
}

// UpsertShippingRate creates or updates one wilaya's rate
func (h *StoreHandler) UpsertShippingRate(w http.ResponseWriter, r *http.Request) {
	wilaya := chi.URLParam(r, "wilaya")

	var req ShippingRateRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rate := &domain.ShippingRate{
		Wilaya:      wilaya,
		PriceToDesk: req.PriceToDesk,
		PriceToHome: req.PriceToHome,
	}

	if err := h.shipping.Upsert(r.Context(), rate); err != nil {
		h.logger.Error("Failed to upsert shipping rate", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Shipping price updated successfully"})
}

// DeleteShippingRate removes one wilaya's rate
func (h *StoreHandler) DeleteShippingRate(w http.ResponseWriter, r *http.Request) {
	wilaya := chi.URLParam(r, "wilaya")

	if err := h.shipping.DeleteByWilaya(r.Context(), wilaya); err != nil {
		if errors.Is(err, repository.ErrShippingRateNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "Wilaya not found")
			return
		}
		h.logger.Error("Failed to delete shipping rate", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Shipping price deleted successfully"})
}
