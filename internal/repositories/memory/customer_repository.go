package memory

import (
	"context"
	"strings"
	"sync"

	domain "github.com/sellerdesk/api/internal/domain"
	"github.com/sellerdesk/api/internal/repositories"
)

// CustomerRepository is a mutex-guarded in-memory customer store.
type CustomerRepository struct {
	mu        sync.RWMutex
	customers []domain.Customer
}

// NewCustomerRepository seeds the store with the provided customers.
func NewCustomerRepository(customers []domain.Customer) *CustomerRepository {
	seeded := make([]domain.Customer, len(customers))
	copy(seeded, customers)
	return &CustomerRepository{customers: seeded}
}

// List returns customers matching the filter in seed order.
func (r *CustomerRepository) List(ctx context.Context, filter repositories.CustomerListFilter) (domain.CursorPage[domain.Customer], error) {
	if err := ctx.Err(); err != nil {
		return domain.CursorPage[domain.Customer]{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filter.Filter.Search))
	matched := make([]domain.Customer, 0, len(r.customers))
	for _, customer := range r.customers {
		if filter.Filter.Status != "" && customer.Status != filter.Filter.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(customer.Name), search) &&
			!strings.Contains(strings.ToLower(customer.Email), search) {
			continue
		}
		matched = append(matched, customer)
	}
	return paginate(matched, filter.Pagination)
}

// FindByID returns the customer with the given id.
func (r *CustomerRepository) FindByID(ctx context.Context, customerID string) (domain.Customer, error) {
	if err := ctx.Err(); err != nil {
		return domain.Customer{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, customer := range r.customers {
		if customer.ID == customerID {
			return customer, nil
		}
	}
	return domain.Customer{}, notFoundError("customers.find_by_id", "customer %s not found", customerID)
}

// MessageRepository is a mutex-guarded in-memory message store.
type MessageRepository struct {
	mu       sync.RWMutex
	messages []domain.CustomerMessage
}

// NewMessageRepository seeds the store with the provided messages.
func NewMessageRepository(messages []domain.CustomerMessage) *MessageRepository {
	seeded := make([]domain.CustomerMessage, len(messages))
	copy(seeded, messages)
	return &MessageRepository{messages: seeded}
}

// List returns all messages in seed order.
func (r *MessageRepository) List(ctx context.Context, pager domain.Pagination) (domain.CursorPage[domain.CustomerMessage], error) {
	if err := ctx.Err(); err != nil {
		return domain.CursorPage[domain.CustomerMessage]{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return paginate(r.messages, pager)
}

// FindByID returns the message with the given id.
func (r *MessageRepository) FindByID(ctx context.Context, messageID string) (domain.CustomerMessage, error) {
	if err := ctx.Err(); err != nil {
		return domain.CustomerMessage{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, message := range r.messages {
		if message.ID == messageID {
			return message, nil
		}
	}
	return domain.CustomerMessage{}, notFoundError("messages.find_by_id", "message %s not found", messageID)
}

// Update replaces the stored message snapshot.
func (r *MessageRepository) Update(ctx context.Context, message domain.CustomerMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.messages {
		if r.messages[i].ID == message.ID {
			r.messages[i] = message
			return nil
		}
	}
	return notFoundError("messages.update", "message %s not found", message.ID)
}

// ReviewRepository is a mutex-guarded in-memory review store.
type ReviewRepository struct {
	mu      sync.RWMutex
	reviews []domain.ProductReview
}

// NewReviewRepository seeds the store with the provided reviews.
func NewReviewRepository(reviews []domain.ProductReview) *ReviewRepository {
	seeded := make([]domain.ProductReview, len(reviews))
	copy(seeded, reviews)
	return &ReviewRepository{reviews: seeded}
}

// List returns all reviews in seed order.
func (r *ReviewRepository) List(ctx context.Context, pager domain.Pagination) (domain.CursorPage[domain.ProductReview], error) {
	if err := ctx.Err(); err != nil {
		return domain.CursorPage[domain.ProductReview]{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return paginate(r.reviews, pager)
}

// FindByID returns the review with the given id.
func (r *ReviewRepository) FindByID(ctx context.Context, reviewID string) (domain.ProductReview, error) {
	if err := ctx.Err(); err != nil {
		return domain.ProductReview{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, review := range r.reviews {
		if review.ID == reviewID {
			return review, nil
		}
	}
	return domain.ProductReview{}, notFoundError("reviews.find_by_id", "review %s not found", reviewID)
}

// Update replaces the stored review snapshot.
func (r *ReviewRepository) Update(ctx context.Context, review domain.ProductReview) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.reviews {
		if r.reviews[i].ID == review.ID {
			r.reviews[i] = review
			return nil
		}
	}
	return notFoundError("reviews.update", "review %s not found", review.ID)
}

// DisputeRepository is a mutex-guarded in-memory dispute store.
type DisputeRepository struct {
	mu       sync.RWMutex
	disputes []domain.Dispute
}

// NewDisputeRepository seeds the store with the provided disputes.
func NewDisputeRepository(disputes []domain.Dispute) *DisputeRepository {
	seeded := make([]domain.Dispute, len(disputes))
	copy(seeded, disputes)
	return &DisputeRepository{disputes: seeded}
}

// List returns all disputes in seed order.
func (r *DisputeRepository) List(ctx context.Context, pager domain.Pagination) (domain.CursorPage[domain.Dispute], error) {
	if err := ctx.Err(); err != nil {
		return domain.CursorPage[domain.Dispute]{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return paginate(r.disputes, pager)
}

// FindByID returns the dispute with the given id.
func (r *DisputeRepository) FindByID(ctx context.Context, disputeID string) (domain.Dispute, error) {
	if err := ctx.Err(); err != nil {
		return domain.Dispute{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, dispute := range r.disputes {
		if dispute.ID == disputeID {
			return dispute, nil
		}
	}
	return domain.Dispute{}, notFoundError("disputes.find_by_id", "dispute %s not found", disputeID)
}

// Update replaces the stored dispute snapshot.
func (r *DisputeRepository) Update(ctx context.Context, dispute domain.Dispute) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.disputes {
		if r.disputes[i].ID == dispute.ID {
			r.disputes[i] = dispute
			return nil
		}
	}
	return notFoundError("disputes.update", "dispute %s not found", dispute.ID)
}
