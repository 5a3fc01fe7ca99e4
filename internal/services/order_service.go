package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	domain "github.com/sellerdesk/api/internal/domain"
	"github.com/sellerdesk/api/internal/repositories"
)

var (
	// ErrOrderNotFound indicates the requested order does not exist.
	ErrOrderNotFound = errors.New("order service: order not found")
	// ErrOrderInvalidTransition indicates the requested status change is not legal.
	ErrOrderInvalidTransition = errors.New("order service: illegal status transition")
	// ErrOrderInvalidInput indicates the caller supplied invalid data.
	ErrOrderInvalidInput = errors.New("order service: invalid input")
)

// orderTransitions is the legal fulfilment state machine. Terminal states
// (cancelled, returned) have no outgoing edges.
var orderTransitions = map[domain.OrderStatus][]domain.OrderStatus{
	domain.OrderStatusPending:    {domain.OrderStatusProcessing, domain.OrderStatusCancelled},
	domain.OrderStatusProcessing: {domain.OrderStatusShipped, domain.OrderStatusCancelled},
	domain.OrderStatusShipped:    {domain.OrderStatusDelivered, domain.OrderStatusReturned},
	domain.OrderStatusDelivered:  {domain.OrderStatusReturned},
}

// OrderServiceDeps bundles constructor inputs for the order service.
type OrderServiceDeps struct {
	Orders repositories.OrderRepository
	// TrackingGen produces carrier tracking numbers for shipments. Injected in tests.
	TrackingGen func() string
}

type orderService struct {
	repo        repositories.OrderRepository
	trackingGen func() string
}

// NewOrderService constructs the order service with the supplied dependencies.
func NewOrderService(deps OrderServiceDeps) (OrderService, error) {
	if deps.Orders == nil {
		return nil, fmt.Errorf("order service: order repository is required")
	}
	trackingGen := deps.TrackingGen
	if trackingGen == nil {
		trackingGen = defaultTrackingNumber
	}
	return &orderService{repo: deps.Orders, trackingGen: trackingGen}, nil
}

func (s *orderService) ListOrders(ctx context.Context, filter OrderListFilter) (domain.CursorPage[Order], error) {
	page, err := s.repo.List(ctx, repositories.OrderListFilter{
		Filter: domain.OrderFilter{
			Search:   strings.TrimSpace(filter.Search),
			Status:   filter.Status,
			Priority: filter.Priority,
		},
		Pagination: filter.Pagination,
	})
	if err != nil {
		return domain.CursorPage[Order]{}, fmt.Errorf("order service: list orders: %w", err)
	}
	return page, nil
}

func (s *orderService) GetOrder(ctx context.Context, orderID string) (Order, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return Order{}, fmt.Errorf("%w: order id is required", ErrOrderInvalidInput)
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if isNotFound(err) {
			return Order{}, ErrOrderNotFound
		}
		return Order{}, fmt.Errorf("order service: load order: %w", err)
	}
	return order, nil
}

// UpdateStatus applies one legal transition. Moving to shipped assigns a
// tracking number when the order has none yet.
func (s *orderService) UpdateStatus(ctx context.Context, cmd OrderStatusCommand) (Order, error) {
	order, err := s.GetOrder(ctx, cmd.OrderID)
	if err != nil {
		return Order{}, err
	}
	if !transitionAllowed(order.Status, cmd.Status) {
		return Order{}, fmt.Errorf("%w: %s -> %s", ErrOrderInvalidTransition, order.Status, cmd.Status)
	}

	order.Status = cmd.Status
	if cmd.Status == domain.OrderStatusShipped && order.TrackingNumber == "" {
		order.TrackingNumber = s.trackingGen()
	}
	if err := s.repo.Update(ctx, order); err != nil {
		return Order{}, fmt.Errorf("order service: update order: %w", err)
	}
	return order, nil
}

// BulkUpdateStatus applies the transition to every listed order. The whole
// batch is validated first so an illegal transition leaves all orders
// untouched.
func (s *orderService) BulkUpdateStatus(ctx context.Context, cmd BulkOrderStatusCommand) ([]Order, error) {
	if len(cmd.OrderIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one order id is required", ErrOrderInvalidInput)
	}

	orders := make([]Order, 0, len(cmd.OrderIDs))
	for _, orderID := range cmd.OrderIDs {
		order, err := s.GetOrder(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if !transitionAllowed(order.Status, cmd.Status) {
			return nil, fmt.Errorf("%w: %s: %s -> %s", ErrOrderInvalidTransition, order.ID, order.Status, cmd.Status)
		}
		orders = append(orders, order)
	}

	updated := make([]Order, 0, len(orders))
	for _, order := range orders {
		order.Status = cmd.Status
		if cmd.Status == domain.OrderStatusShipped && order.TrackingNumber == "" {
			order.TrackingNumber = s.trackingGen()
		}
		if err := s.repo.Update(ctx, order); err != nil {
			return nil, fmt.Errorf("order service: update order %s: %w", order.ID, err)
		}
		updated = append(updated, order)
	}
	return updated, nil
}

func transitionAllowed(from, to domain.OrderStatus) bool {
	for _, allowed := range orderTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func defaultTrackingNumber() string {
	const digits = "0123456789"
	source := rand.New(rand.NewSource(time.Now().UnixNano()))
	var b strings.Builder
	b.WriteString("1Z999AA")
	for i := 0; i < 10; i++ {
		b.WriteByte(digits[source.Intn(len(digits))])
	}
	return b.String()
}
