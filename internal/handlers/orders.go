package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/sellerdesk/api/internal/domain"
	"github.com/sellerdesk/api/internal/platform/auth"
	"github.com/sellerdesk/api/internal/platform/httpx"
	"github.com/sellerdesk/api/internal/services"
)

// OrderHandlers exposes the dashboard order endpoints.
type OrderHandlers struct {
	authn  *auth.Authenticator
	orders services.OrderService
}

// NewOrderHandlers constructs the order endpoints.
func NewOrderHandlers(authn *auth.Authenticator, orders services.OrderService) *OrderHandlers {
	return &OrderHandlers{authn: authn, orders: orders}
}

// Routes registers the /orders endpoints.
func (h *OrderHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireFirebaseAuth(auth.RoleSeller, auth.RoleStaff, auth.RoleAdmin))
	}
	r.Get("/", h.listOrders)
	r.Get("/{orderID}", h.getOrder)
	r.Post("/{orderID}/status", h.updateStatus)
	r.Post("/bulk-status", h.bulkUpdateStatus)
}

type orderLinePayload struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type orderPayload struct {
	ID              string             `json:"id"`
	CustomerName    string             `json:"customer_name"`
	CustomerEmail   string             `json:"customer_email"`
	Total           float64            `json:"total"`
	Status          string             `json:"status"`
	PlacedAt        string             `json:"placed_at"`
	ItemCount       int                `json:"item_count"`
	Priority        string             `json:"priority"`
	ShippingAddress string             `json:"shipping_address,omitempty"`
	TrackingNumber  string             `json:"tracking_number,omitempty"`
	Lines           []orderLinePayload `json:"lines,omitempty"`
}

type orderListResponse struct {
	Items         []orderPayload `json:"items"`
	NextPageToken string         `json:"next_page_token,omitempty"`
}

func (h *OrderHandlers) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service unavailable", http.StatusServiceUnavailable))
		return
	}

	pager, err := parsePagination(r)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	query := r.URL.Query()
	filter := services.OrderListFilter{
		Search:     strings.TrimSpace(query.Get("search")),
		Status:     domain.OrderStatus(strings.TrimSpace(query.Get("status"))),
		Priority:   domain.Priority(strings.TrimSpace(query.Get("priority"))),
		Pagination: pager,
	}

	page, err := h.orders.ListOrders(ctx, filter)
	if err != nil {
		writeOrderError(w, r, err)
		return
	}

	items := make([]orderPayload, 0, len(page.Items))
	for _, order := range page.Items {
		items = append(items, buildOrderPayload(order))
	}
	writeJSONResponse(w, http.StatusOK, orderListResponse{
		Items:         items,
		NextPageToken: page.NextPageToken,
	})
}

func (h *OrderHandlers) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service unavailable", http.StatusServiceUnavailable))
		return
	}
	orderID := strings.TrimSpace(chi.URLParam(r, "orderID"))
	if orderID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "order id is required", http.StatusBadRequest))
		return
	}
	order, err := h.orders.GetOrder(ctx, orderID)
	if err != nil {
		writeOrderError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildOrderPayload(order))
}

type orderStatusRequest struct {
	Status string `json:"status"`
}

func (h *OrderHandlers) updateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service unavailable", http.StatusServiceUnavailable))
		return
	}
	orderID := strings.TrimSpace(chi.URLParam(r, "orderID"))
	if orderID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "order id is required", http.StatusBadRequest))
		return
	}
	var req orderStatusRequest
	if err := decodeJSONBody(r, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	order, err := h.orders.UpdateStatus(ctx, services.OrderStatusCommand{
		OrderID: orderID,
		Status:  domain.OrderStatus(strings.TrimSpace(req.Status)),
	})
	if err != nil {
		writeOrderError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildOrderPayload(order))
}

type bulkOrderStatusRequest struct {
	OrderIDs []string `json:"order_ids"`
	Status   string   `json:"status"`
}

func (h *OrderHandlers) bulkUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service unavailable", http.StatusServiceUnavailable))
		return
	}
	var req bulkOrderStatusRequest
	if err := decodeJSONBody(r, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	orders, err := h.orders.BulkUpdateStatus(ctx, services.BulkOrderStatusCommand{
		OrderIDs: req.OrderIDs,
		Status:   domain.OrderStatus(strings.TrimSpace(req.Status)),
	})
	if err != nil {
		writeOrderError(w, r, err)
		return
	}
	items := make([]orderPayload, 0, len(orders))
	for _, order := range orders {
		items = append(items, buildOrderPayload(order))
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"items": items})
}

func writeOrderError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	switch {
	case errors.Is(err, services.ErrOrderNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("order_not_found", "order not found", http.StatusNotFound))
	case errors.Is(err, services.ErrOrderInvalidTransition):
		httpx.WriteError(ctx, w, httpx.NewError("order_invalid_transition", err.Error(), http.StatusConflict))
	case errors.Is(err, services.ErrOrderInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("order_error", "order operation failed", http.StatusInternalServerError))
	}
}

func buildOrderPayload(order domain.Order) orderPayload {
	lines := make([]orderLinePayload, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, orderLinePayload{
			Name:     line.Name,
			Quantity: line.Quantity,
			Price:    line.Price,
		})
	}
	return orderPayload{
		ID:              order.ID,
		CustomerName:    order.CustomerName,
		CustomerEmail:   order.CustomerEmail,
		Total:           order.Total,
		Status:          string(order.Status),
		PlacedAt:        formatTime(order.PlacedAt),
		ItemCount:       order.ItemCount,
		Priority:        string(order.Priority),
		ShippingAddress: order.ShippingAddress,
		TrackingNumber:  order.TrackingNumber,
		Lines:           lines,
	}
}
