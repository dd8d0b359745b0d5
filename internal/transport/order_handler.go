package transport

import (
	"errors"
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// OrderItemRequest is one product line of an order payload
type OrderItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=1"`
}

// CreateOrderRequest is the order creation payload. Orders can be placed by
// guests, so no authentication is required; an authenticated session is
// attached when present.
type CreateOrderRequest struct {
	Name        string             `json:"name" validate:"required"`
	Phone       string             `json:"phone" validate:"required"`
	Address     string             `json:"address" validate:"required"`
	Items       []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	TotalAmount float64            `json:"total_amount" validate:"gte=0"`
}

// UpdateOrderStatusRequest is the admin status update payload
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed shipped delivered cancelled"`
}

// OrderHandler handles HTTP requests for orders
type OrderHandler struct {
	orders repository.OrderRepository
	logger *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders repository.OrderRepository, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		logger: logger,
	}
}

// RegisterRoutes registers all order routes
func (h *OrderHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Post("/", h.CreateOrder)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(adminMiddleware)
			r.Get("/", h.ListOrders)
			r.Put("/{id}", h.UpdateOrderStatus)
			r.Delete("/{id}", h.DeleteOrder)
			r.Delete("/", h.DeleteAllOrders)
		})
	})
}

// CreateOrder places a new order
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	items := make([]domain.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := primitive.ObjectIDFromHex(item.ProductID)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
			return
		}
		items = append(items, domain.OrderItem{
			ProductID: productID,
			Quantity:  item.Quantity,
		})
	}

	order := &domain.Order{
		Reference:   uuid.NewString(),
		Name:        req.Name,
		Phone:       req.Phone,
		Address:     req.Address,
		Items:       items,
		TotalAmount: req.TotalAmount,
		Status:      domain.OrderStatusPending,
	}

	// Guest checkout is allowed; attach the account when a session exists.
	if raw, ok := middleware.GetUserID(r.Context()); ok {
		if userID, err := primitive.ObjectIDFromHex(raw); err == nil {
			order.UserID = &userID
		}
	}

	if err := h.orders.Create(r.Context(), order); err != nil {
		h.logger.Error("Failed to create order", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	h.logger.Info("Order placed",
		zap.String("order_id", order.ID.Hex()),
		zap.String("reference", order.Reference),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, order)
}

// ListOrders returns all orders (admin only)
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list orders", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, orders)
}

// UpdateOrderStatus sets an order's status (admin only)
func (h *OrderHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req UpdateOrderStatusRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "Order not found")
			return
		}
		h.logger.Error("Failed to update order status", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// DeleteOrder removes one order (admin only)
func (h *OrderHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.orders.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "Order not found")
			return
		}
		h.logger.Error("Failed to delete order", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Order deleted successfully"})
}

// DeleteAllOrders removes every order (admin only)
func (h *OrderHandler) DeleteAllOrders(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.orders.DeleteAll(r.Context())
	if err != nil {
		h.logger.Error("Failed to delete orders", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	h.logger.Info("All orders deleted", zap.Int64("count", deleted))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "All orders deleted successfully"})
}
