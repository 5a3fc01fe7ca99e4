package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/sellerdesk/api/internal/domain"
	"github.com/sellerdesk/api/internal/services"
)

type stubOrderService struct {
	page       domain.CursorPage[domain.Order]
	order      domain.Order
	bulk       []domain.Order
	err        error
	lastFilter services.OrderListFilter
	lastStatus services.OrderStatusCommand
	lastBulk   services.BulkOrderStatusCommand
}

func (s *stubOrderService) ListOrders(_ context.Context, filter services.OrderListFilter) (domain.CursorPage[domain.Order], error) {
	s.lastFilter = filter
	return s.page, s.err
}

func (s *stubOrderService) GetOrder(context.Context, string) (domain.Order, error) {
	return s.order, s.err
}

func (s *stubOrderService) UpdateStatus(_ context.Context, cmd services.OrderStatusCommand) (domain.Order, error) {
	s.lastStatus = cmd
	return s.order, s.err
}

func (s *stubOrderService) BulkUpdateStatus(_ context.Context, cmd services.BulkOrderStatusCommand) ([]domain.Order, error) {
	s.lastBulk = cmd
	return s.bulk, s.err
}

func orderFixture() domain.Order {
	return domain.Order{
		ID:            "order-1",
		CustomerName:  "Ada Lovelace",
		CustomerEmail: "ada@example.com",
		Total:         129.90,
		Status:        domain.OrderStatusProcessing,
		PlacedAt:      time.Date(2026, time.March, 4, 9, 30, 0, 0, time.UTC),
		ItemCount:     2,
		Priority:      domain.PriorityHigh,
		Lines: []domain.OrderLine{
			{Name: "Wireless Mouse", Quantity: 2, Price: 64.95},
		},
	}
}

func newOrderRouter(svc services.OrderService) chi.Router {
	r := chi.NewRouter()
	r.Route("/orders", NewOrderHandlers(nil, svc).Routes)
	return r
}

func TestListOrdersAppliesFilters(t *testing.T) {
	svc := &stubOrderService{page: domain.CursorPage[domain.Order]{
		Items:         []domain.Order{orderFixture()},
		NextPageToken: "tok-2",
	}}
	router := newOrderRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/?search=ada&status=processing&priority=high&page_size=5", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ada", svc.lastFilter.Search)
	assert.Equal(t, domain.OrderStatusProcessing, svc.lastFilter.Status)
	assert.Equal(t, domain.PriorityHigh, svc.lastFilter.Priority)
	assert.Equal(t, 5, svc.lastFilter.Pagination.PageSize)

	body := decodeEnvelope(t, rec)
	assert.Equal(t, "tok-2", body["next_page_token"])
	items, ok := body["items"].([]any)
	require.True(t, ok)
	require.Len(t, items, 1)
	first, ok := items[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "order-1", first["id"])
	assert.Equal(t, "Ada Lovelace", first["customer_name"])
}

func TestGetOrderNotFound(t *testing.T) {
	router := newOrderRouter(&stubOrderService{err: services.ErrOrderNotFound})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/order-9", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, "order_not_found", body["error"])
}

func TestUpdateOrderStatus(t *testing.T) {
	svc := &stubOrderService{order: orderFixture()}
	router := newOrderRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/orders/order-1/status", strings.NewReader(`{"status":"shipped"}`))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "order-1", svc.lastStatus.OrderID)
	assert.Equal(t, domain.OrderStatus("shipped"), svc.lastStatus.Status)
}

func TestUpdateOrderStatusInvalidTransition(t *testing.T) {
	router := newOrderRouter(&stubOrderService{err: services.ErrOrderInvalidTransition})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/orders/order-1/status", strings.NewReader(`{"status":"pending"}`))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, "order_invalid_transition", body["error"])
}

func TestBulkUpdateOrderStatus(t *testing.T) {
	svc := &stubOrderService{bulk: []domain.Order{orderFixture()}}
	router := newOrderRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/orders/bulk-status", strings.NewReader(`{"order_ids":["order-1","order-2"],"status":"shipped"}`))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"order-1", "order-2"}, svc.lastBulk.OrderIDs)
	assert.Equal(t, domain.OrderStatus("shipped"), svc.lastBulk.Status)
}

func TestOrderEndpointsRejectBadJSON(t *testing.T) {
	router := newOrderRouter(&stubOrderService{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/orders/order-1/status", strings.NewReader("{"))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
