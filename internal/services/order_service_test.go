package services

import (
	"context"
	"errors"
	"testing"

	domain "github.com/sellerdesk/api/internal/domain"
	"github.com/sellerdesk/api/internal/repositories"
)

type stubOrderRepo struct {
	orders  map[string]domain.Order
	updated []domain.Order
}

func newStubOrderRepo(orders ...domain.Order) *stubOrderRepo {
	repo := &stubOrderRepo{orders: map[string]domain.Order{}}
	for _, order := range orders {
		repo.orders[order.ID] = order
	}
	return repo
}

func (r *stubOrderRepo) List(ctx context.Context, filter repositories.OrderListFilter) (domain.CursorPage[domain.Order], error) {
	items := make([]domain.Order, 0, len(r.orders))
	for _, order := range r.orders {
		items = append(items, order)
	}
	return domain.CursorPage[domain.Order]{Items: items}, nil
}

func (r *stubOrderRepo) FindByID(ctx context.Context, orderID string) (domain.Order, error) {
	order, ok := r.orders[orderID]
	if !ok {
		return domain.Order{}, errStubNotFound
	}
	return order, nil
}

func (r *stubOrderRepo) Update(ctx context.Context, order domain.Order) error {
	r.orders[order.ID] = order
	r.updated = append(r.updated, order)
	return nil
}

func TestOrderServiceUpdateStatusLegalTransition(t *testing.T) {
	repo := newStubOrderRepo(domain.Order{ID: "ORD-1", Status: domain.OrderStatusPending})
	svc, err := NewOrderService(OrderServiceDeps{Orders: repo})
	if err != nil {
		t.Fatalf("NewOrderService: %v", err)
	}

	order, err := svc.UpdateStatus(context.Background(), OrderStatusCommand{OrderID: "ORD-1", Status: domain.OrderStatusProcessing})
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if order.Status != domain.OrderStatusProcessing {
		t.Fatalf("expected processing, got %s", order.Status)
	}
	if order.TrackingNumber != "" {
		t.Fatalf("expected no tracking number yet, got %s", order.TrackingNumber)
	}
}

func TestOrderServiceUpdateStatusRejectsIllegalTransition(t *testing.T) {
	repo := newStubOrderRepo(
		domain.Order{ID: "ORD-1", Status: domain.OrderStatusPending},
		domain.Order{ID: "ORD-2", Status: domain.OrderStatusCancelled},
	)
	svc, err := NewOrderService(OrderServiceDeps{Orders: repo})
	if err != nil {
		t.Fatalf("NewOrderService: %v", err)
	}

	if _, err := svc.UpdateStatus(context.Background(), OrderStatusCommand{OrderID: "ORD-1", Status: domain.OrderStatusDelivered}); !errors.Is(err, ErrOrderInvalidTransition) {
		t.Fatalf("expected ErrOrderInvalidTransition, got %v", err)
	}
	if _, err := svc.UpdateStatus(context.Background(), OrderStatusCommand{OrderID: "ORD-2", Status: domain.OrderStatusProcessing}); !errors.Is(err, ErrOrderInvalidTransition) {
		t.Fatalf("expected terminal state to reject transitions, got %v", err)
	}
	if len(repo.updated) != 0 {
		t.Fatalf("expected no writes, got %d", len(repo.updated))
	}
}

func TestOrderServiceShippingAssignsTrackingNumber(t *testing.T) {
	repo := newStubOrderRepo(
		domain.Order{ID: "ORD-1", Status: domain.OrderStatusProcessing},
		domain.Order{ID: "ORD-2", Status: domain.OrderStatusProcessing, TrackingNumber: "1Z999AA0000000001"},
	)
	svc, err := NewOrderService(OrderServiceDeps{
		Orders:      repo,
		TrackingGen: func() string { return "1Z999AA9999999999" },
	})
	if err != nil {
		t.Fatalf("NewOrderService: %v", err)
	}

	order, err := svc.UpdateStatus(context.Background(), OrderStatusCommand{OrderID: "ORD-1", Status: domain.OrderStatusShipped})
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if order.TrackingNumber != "1Z999AA9999999999" {
		t.Fatalf("expected generated tracking number, got %s", order.TrackingNumber)
	}

	order, err = svc.UpdateStatus(context.Background(), OrderStatusCommand{OrderID: "ORD-2", Status: domain.OrderStatusShipped})
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if order.TrackingNumber != "1Z999AA0000000001" {
		t.Fatalf("expected existing tracking number preserved, got %s", order.TrackingNumber)
	}
}

func TestOrderServiceBulkUpdateValidatesWholeBatch(t *testing.T) {
	repo := newStubOrderRepo(
		domain.Order{ID: "ORD-1", Status: domain.OrderStatusPending},
		domain.Order{ID: "ORD-2", Status: domain.OrderStatusShipped},
	)
	svc, err := NewOrderService(OrderServiceDeps{Orders: repo})
	if err != nil {
		t.Fatalf("NewOrderService: %v", err)
	}

	_, err = svc.BulkUpdateStatus(context.Background(), BulkOrderStatusCommand{
		OrderIDs: []string{"ORD-1", "ORD-2"},
		Status:   domain.OrderStatusProcessing,
	})
	if !errors.Is(err, ErrOrderInvalidTransition) {
		t.Fatalf("expected ErrOrderInvalidTransition, got %v", err)
	}
	if len(repo.updated) != 0 {
		t.Fatalf("expected the batch to be rejected before any write, got %d writes", len(repo.updated))
	}

	updated, err := svc.BulkUpdateStatus(context.Background(), BulkOrderStatusCommand{
		OrderIDs: []string{"ORD-1"},
		Status:   domain.OrderStatusProcessing,
	})
	if err != nil {
		t.Fatalf("BulkUpdateStatus: %v", err)
	}
	if len(updated) != 1 || updated[0].Status != domain.OrderStatusProcessing {
		t.Fatalf("unexpected result: %+v", updated)
	}
}

func TestOrderServiceBulkUpdateRequiresIDs(t *testing.T) {
	svc, err := NewOrderService(OrderServiceDeps{Orders: newStubOrderRepo()})
	if err != nil {
		t.Fatalf("NewOrderService: %v", err)
	}
	if _, err := svc.BulkUpdateStatus(context.Background(), BulkOrderStatusCommand{Status: domain.OrderStatusProcessing}); !errors.Is(err, ErrOrderInvalidInput) {
		t.Fatalf("expected ErrOrderInvalidInput, got %v", err)
	}
}

func TestDefaultTrackingNumberFormat(t *testing.T) {
	number := defaultTrackingNumber()
	if len(number) != 17 {
		t.Fatalf("expected 17 characters, got %d (%s)", len(number), number)
	}
	if number[:7] != "1Z999AA" {
		t.Fatalf("expected 1Z999AA prefix, got %s", number)
	}
	for _, r := range number[7:] {
		if r < '0' || r > '9' {
			t.Fatalf("expected digits after prefix, got %s", number)
		}
	}
}
