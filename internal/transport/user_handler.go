package transport

import (
	"errors"
	"net/http"
	"time"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// RegisterRequest is the registration payload
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	LastName string `json:"lastname" validate:"required"`
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=admin user"`
}

// LoginRequest is the login payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// CartItemRequest is the add-to-cart payload
type CartItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"omitempty,gte=1"`
}

// UserProfile is the public shape of an account
type UserProfile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	LastName string `json:"lastname"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// AuthStatus is the check-auth response
type AuthStatus struct {
	IsAuthenticated bool   `json:"is_authenticated"`
	Role            string `json:"role,omitempty"`
}

// UserHandler handles HTTP requests for accounts, sessions and carts
type UserHandler struct {
	userService  service.UserService
	userRepo     repository.UserRepository
	logger       *zap.Logger
	secureCookie bool
	tokenTTL     time.Duration
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService service.UserService, userRepo repository.UserRepository, logger *zap.Logger, secureCookie bool, tokenTTL time.Duration) *UserHandler {
	return &UserHandler{
		userService:  userService,
		userRepo:     userRepo,
		logger:       logger,
		secureCookie: secureCookie,
		tokenTTL:     tokenTTL,
	}
}

// RegisterRoutes registers auth, user management and cart routes
func (h *UserHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Get("/check", h.CheckAuth)
	})

	r.Route("/api/users", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(adminMiddleware)
		r.Get("/", h.ListUsers)
		r.Get("/{id}", h.GetUser)
		r.Delete("/{id}", h.DeleteUser)
	})

	r.Route("/api/cart", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.GetCart)
		r.Post("/items", h.AddToCart)
		r.Delete("/items/{productID}", h.RemoveFromCart)
	})
}

// Register handles account creation
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, token, err := h.userService.Register(r.Context(), service.RegisterParams{
		Name:     req.Name,
		LastName: req.LastName,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUserAlreadyExists):
			middleware.RespondWithError(w, http.StatusConflict, "username or email already exists")
		case errors.Is(err, service.ErrAdminLimitReached):
			middleware.RespondWithError(w, http.StatusForbidden, "cannot register more admins")
		default:
			h.logger.Error("Registration failed", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		}
		return
	}

	h.setTokenCookie(w, token)

	h.logger.Info("User registered", zap.String("user_id", user.ID.Hex()))
	middleware.RespondWithJSON(w, http.StatusCreated, profileOf(user))
}

// Login handles authentication
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, user, err := h.userService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			middleware.RespondWithError(w, http.StatusUnauthorized, "invalid email or password")
		case errors.Is(err, service.ErrAccountLocked):
			middleware.RespondWithError(w, http.StatusTooManyRequests, "account temporarily locked")
		default:
			h.logger.Error("Login failed", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		}
		return
	}

	h.setTokenCookie(w, token)

	h.logger.Info("User logged in", zap.String("user_id", user.ID.Hex()))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Login successful"})
}

// Logout clears the session cookie
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

// CheckAuth reports whether the request carries a valid session. It never
// fails: an absent or invalid token is an unauthenticated status, not an
// error.
func (h *UserHandler) CheckAuth(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(middleware.TokenCookieName)
	if err != nil {
		middleware.RespondWithJSON(w, http.StatusOK, AuthStatus{IsAuthenticated: false})
		return
	}

	claims, err := h.userService.ValidateToken(cookie.Value)
	if err != nil {
		middleware.RespondWithJSON(w, http.StatusOK, AuthStatus{IsAuthenticated: false})
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, AuthStatus{
		IsAuthenticated: true,
		Role:            claims.Role,
	})
}

// ListUsers returns all accounts (admin only)
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userRepo.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list users", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	profiles := make([]UserProfile, 0, len(users))
	for _, user := range users {
		profiles = append(profiles, profileOf(user))
	}

	middleware.RespondWithJSON(w, http.StatusOK, profiles)
}

// GetUser returns one account (admin only)
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseObjectID(w, r, "id")
	if !ok {
		return
	}

	user, err := h.userRepo.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error("Failed to get user", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, profileOf(user))
}

// DeleteUser removes an account (admin only)
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseObjectID(w, r, "id")
	if !ok {
		return
	}

	if err := h.userRepo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error("Failed to delete user", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
}

// GetCart returns the authenticated user's cart
func (h *UserHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticatedUserID(w, r)
	if !ok {
		return
	}

	user, err := h.userService.GetUserByID(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to load cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"cart": user.Cart})
}

// AddToCart merges a product into the authenticated user's cart
func (h *UserHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticatedUserID(w, r)
	if !ok {
		return
	}

	var req CartItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	user, err := h.userService.AddToCart(r.Context(), userID, productID, req.Quantity)
	if err != nil {
		h.logger.Error("Failed to add to cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Product added to cart",
		"cart":    user.Cart,
	})
}

// RemoveFromCart drops a product from the authenticated user's cart
func (h *UserHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticatedUserID(w, r)
	if !ok {
		return
	}

	productID, ok := parseObjectID(w, r, "productID")
	if !ok {
		return
	}

	user, err := h.userService.RemoveFromCart(r.Context(), userID, productID)
	if err != nil {
		h.logger.Error("Failed to remove from cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Product removed from cart",
		"cart":    user.Cart,
	})
}

func (h *UserHandler) authenticatedUserID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	raw, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "missing credentials")
		return primitive.NilObjectID, false
	}

	userID, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		middleware.RespondWithError(w, http.StatusUnauthorized, "invalid token claims")
		return primitive.NilObjectID, false
	}

	return userID, true
}

func (h *UserHandler) setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func profileOf(user *domain.User) UserProfile {
	return UserProfile{
		ID:       user.ID.Hex(),
		Name:     user.Name,
		LastName: user.LastName,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	}
}
