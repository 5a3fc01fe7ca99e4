package memory

import (
	"context"
	"strings"
	"sync"

	domain "github.com/sellerdesk/api/internal/domain"
	"github.com/sellerdesk/api/internal/repositories"
)

// OrderRepository is a mutex-guarded in-memory order store.
type OrderRepository struct {
	mu     sync.RWMutex
	orders []domain.Order
}

// NewOrderRepository seeds the store with the provided orders.
func NewOrderRepository(orders []domain.Order) *OrderRepository {
	seeded := make([]domain.Order, len(orders))
	copy(seeded, orders)
	return &OrderRepository{orders: seeded}
}

// List returns orders matching the filter in seed order.
func (r *OrderRepository) List(ctx context.Context, filter repositories.OrderListFilter) (domain.CursorPage[domain.Order], error) {
	if err := ctx.Err(); err != nil {
		return domain.CursorPage[domain.Order]{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filter.Filter.Search))
	matched := make([]domain.Order, 0, len(r.orders))
	for _, order := range r.orders {
		if filter.Filter.Status != "" && order.Status != filter.Filter.Status {
			continue
		}
		if filter.Filter.Priority != "" && order.Priority != filter.Filter.Priority {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(order.CustomerName), search) &&
			!strings.Contains(strings.ToLower(order.ID), search) {
			continue
		}
		matched = append(matched, order)
	}
	return paginate(matched, filter.Pagination)
}

// FindByID returns the order with the given id.
func (r *OrderRepository) FindByID(ctx context.Context, orderID string) (domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return domain.Order{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, order := range r.orders {
		if order.ID == orderID {
			return order, nil
		}
	}
	return domain.Order{}, notFoundError("orders.find_by_id", "order %s not found", orderID)
}

// Update replaces the stored order snapshot.
func (r *OrderRepository) Update(ctx context.Context, order domain.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.orders {
		if r.orders[i].ID == order.ID {
			r.orders[i] = order
			return nil
		}
	}
	return notFoundError("orders.update", "order %s not found", order.ID)
}
