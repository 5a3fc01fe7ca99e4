package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	domain "github.com/sellerdesk/api/internal/domain"
	"github.com/sellerdesk/api/internal/repositories"
)

var (
	// ErrCustomerNotFound indicates the requested record does not exist.
	ErrCustomerNotFound = errors.New("customer service: not found")
	// ErrCustomerInvalidInput indicates the caller supplied invalid data.
	ErrCustomerInvalidInput = errors.New("customer service: invalid input")
	// ErrReviewInvalidTransition indicates the requested moderation change is not legal.
	ErrReviewInvalidTransition = errors.New("customer service: illegal review transition")
	// ErrDisputeInvalidTransition indicates the requested dispute change is not legal.
	ErrDisputeInvalidTransition = errors.New("customer service: illegal dispute transition")
)

// reviewTransitions is the moderation state machine. Published reviews may be
// flagged later; rejected reviews are terminal.
var reviewTransitions = map[domain.ReviewStatus][]domain.ReviewStatus{
	domain.ReviewStatusPending:   {domain.ReviewStatusPublished, domain.ReviewStatusFlagged, domain.ReviewStatusRejected},
	domain.ReviewStatusFlagged:   {domain.ReviewStatusPublished, domain.ReviewStatusRejected},
	domain.ReviewStatusPublished: {domain.ReviewStatusFlagged},
}

var disputeTransitions = map[domain.DisputeStatus][]domain.DisputeStatus{
	domain.DisputeStatusOpen:       {domain.DisputeStatusInProgress, domain.DisputeStatusResolved, domain.DisputeStatusClosed},
	domain.DisputeStatusInProgress: {domain.DisputeStatusResolved, domain.DisputeStatusClosed},
	domain.DisputeStatusResolved:   {domain.DisputeStatusClosed},
}

// CustomerServiceDeps bundles constructor inputs for the customer service.
type CustomerServiceDeps struct {
	Customers repositories.CustomerRepository
	Messages  repositories.MessageRepository
	Reviews   repositories.ReviewRepository
	Disputes  repositories.DisputeRepository
	Clock     func() time.Time
	IDGen     func() string
}

type customerService struct {
	customers repositories.CustomerRepository
	messages  repositories.MessageRepository
	reviews   repositories.ReviewRepository
	disputes  repositories.DisputeRepository
	clock     func() time.Time
	idGen     func() string
}

// NewCustomerService constructs the customer service with the supplied dependencies.
func NewCustomerService(deps CustomerServiceDeps) (CustomerService, error) {
	if deps.Customers == nil || deps.Messages == nil || deps.Reviews == nil || deps.Disputes == nil {
		return nil, fmt.Errorf("customer service: all repositories are required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGen
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}
	return &customerService{
		customers: deps.Customers,
		messages:  deps.Messages,
		reviews:   deps.Reviews,
		disputes:  deps.Disputes,
		clock:     func() time.Time { return clock().UTC() },
		idGen:     idGen,
	}, nil
}

func (s *customerService) ListCustomers(ctx context.Context, filter CustomerListFilter) (domain.CursorPage[Customer], error) {
	page, err := s.customers.List(ctx, repositories.CustomerListFilter{
		Filter: domain.CustomerFilter{
			Search: strings.TrimSpace(filter.Search),
			Status: filter.Status,
		},
		Pagination: filter.Pagination,
	})
	if err != nil {
		return domain.CursorPage[Customer]{}, fmt.Errorf("customer service: list customers: %w", err)
	}
	return page, nil
}

func (s *customerService) GetCustomer(ctx context.Context, customerID string) (Customer, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return Customer{}, fmt.Errorf("%w: customer id is required", ErrCustomerInvalidInput)
	}
	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		if isNotFound(err) {
			return Customer{}, ErrCustomerNotFound
		}
		return Customer{}, fmt.Errorf("customer service: load customer: %w", err)
	}
	return customer, nil
}

func (s *customerService) ListMessages(ctx context.Context, pager Pagination) (domain.CursorPage[CustomerMessage], error) {
	page, err := s.messages.List(ctx, pager)
	if err != nil {
		return domain.CursorPage[CustomerMessage]{}, fmt.Errorf("customer service: list messages: %w", err)
	}
	return page, nil
}

// ReplyToMessage appends a seller reply to the thread and marks it replied.
func (s *customerService) ReplyToMessage(ctx context.Context, cmd MessageReplyCommand) (CustomerMessage, error) {
	body := strings.TrimSpace(cmd.Body)
	if body == "" {
		return CustomerMessage{}, fmt.Errorf("%w: reply body is required", ErrCustomerInvalidInput)
	}
	message, err := s.loadMessage(ctx, cmd.MessageID)
	if err != nil {
		return CustomerMessage{}, err
	}

	message.Replies = append(message.Replies, domain.MessageReply{
		ID:     s.idGen(),
		Body:   body,
		Sender: domain.SenderSeller,
		SentAt: s.clock(),
	})
	message.Status = domain.MessageStatusReplied

	if err := s.messages.Update(ctx, message); err != nil {
		return CustomerMessage{}, fmt.Errorf("customer service: save reply: %w", err)
	}
	return message, nil
}

func (s *customerService) UpdateMessageStatus(ctx context.Context, cmd MessageStatusCommand) (CustomerMessage, error) {
	switch cmd.Status {
	case domain.MessageStatusUnread, domain.MessageStatusRead, domain.MessageStatusReplied:
	default:
		return CustomerMessage{}, fmt.Errorf("%w: unknown message status %q", ErrCustomerInvalidInput, cmd.Status)
	}
	message, err := s.loadMessage(ctx, cmd.MessageID)
	if err != nil {
		return CustomerMessage{}, err
	}
	message.Status = cmd.Status
	if err := s.messages.Update(ctx, message); err != nil {
		return CustomerMessage{}, fmt.Errorf("customer service: update message: %w", err)
	}
	return message, nil
}

func (s *customerService) ListReviews(ctx context.Context, pager Pagination) (domain.CursorPage[ProductReview], error) {
	page, err := s.reviews.List(ctx, pager)
	if err != nil {
		return domain.CursorPage[ProductReview]{}, fmt.Errorf("customer service: list reviews: %w", err)
	}
	return page, nil
}

func (s *customerService) ModerateReview(ctx context.Context, cmd ReviewModerationCommand) (ProductReview, error) {
	reviewID := strings.TrimSpace(cmd.ReviewID)
	if reviewID == "" {
		return ProductReview{}, fmt.Errorf("%w: review id is required", ErrCustomerInvalidInput)
	}
	review, err := s.reviews.FindByID(ctx, reviewID)
	if err != nil {
		if isNotFound(err) {
			return ProductReview{}, ErrCustomerNotFound
		}
		return ProductReview{}, fmt.Errorf("customer service: load review: %w", err)
	}
	if !reviewTransitionAllowed(review.Status, cmd.Status) {
		return ProductReview{}, fmt.Errorf("%w: %s -> %s", ErrReviewInvalidTransition, review.Status, cmd.Status)
	}
	review.Status = cmd.Status
	if err := s.reviews.Update(ctx, review); err != nil {
		return ProductReview{}, fmt.Errorf("customer service: update review: %w", err)
	}
	return review, nil
}

func (s *customerService) ListDisputes(ctx context.Context, pager Pagination) (domain.CursorPage[Dispute], error) {
	page, err := s.disputes.List(ctx, pager)
	if err != nil {
		return domain.CursorPage[Dispute]{}, fmt.Errorf("customer service: list disputes: %w", err)
	}
	return page, nil
}

func (s *customerService) UpdateDisputeStatus(ctx context.Context, cmd DisputeStatusCommand) (Dispute, error) {
	dispute, err := s.loadDispute(ctx, cmd.DisputeID)
	if err != nil {
		return Dispute{}, err
	}
	if !disputeTransitionAllowed(dispute.Status, cmd.Status) {
		return Dispute{}, fmt.Errorf("%w: %s -> %s", ErrDisputeInvalidTransition, dispute.Status, cmd.Status)
	}
	dispute.Status = cmd.Status
	if err := s.disputes.Update(ctx, dispute); err != nil {
		return Dispute{}, fmt.Errorf("customer service: update dispute: %w", err)
	}
	return dispute, nil
}

// ResolveDispute marks the dispute resolved and records the resolution note.
func (s *customerService) ResolveDispute(ctx context.Context, cmd DisputeResolutionCommand) (Dispute, error) {
	resolution := strings.TrimSpace(cmd.Resolution)
	if resolution == "" {
		return Dispute{}, fmt.Errorf("%w: resolution note is required", ErrCustomerInvalidInput)
	}
	dispute, err := s.loadDispute(ctx, cmd.DisputeID)
	if err != nil {
		return Dispute{}, err
	}
	if !disputeTransitionAllowed(dispute.Status, domain.DisputeStatusResolved) {
		return Dispute{}, fmt.Errorf("%w: %s -> %s", ErrDisputeInvalidTransition, dispute.Status, domain.DisputeStatusResolved)
	}
	dispute.Status = domain.DisputeStatusResolved
	dispute.Resolution = resolution
	if err := s.disputes.Update(ctx, dispute); err != nil {
		return Dispute{}, fmt.Errorf("customer service: resolve dispute: %w", err)
	}
	return dispute, nil
}

func (s *customerService) loadMessage(ctx context.Context, messageID string) (CustomerMessage, error) {
	messageID = strings.TrimSpace(messageID)
	if messageID == "" {
		return CustomerMessage{}, fmt.Errorf("%w: message id is required", ErrCustomerInvalidInput)
	}
	message, err := s.messages.FindByID(ctx, messageID)
	if err != nil {
		if isNotFound(err) {
			return CustomerMessage{}, ErrCustomerNotFound
		}
		return CustomerMessage{}, fmt.Errorf("customer service: load message: %w", err)
	}
	return message, nil
}

func (s *customerService) loadDispute(ctx context.Context, disputeID string) (Dispute, error) {
	disputeID = strings.TrimSpace(disputeID)
	if disputeID == "" {
		return Dispute{}, fmt.Errorf("%w: dispute id is required", ErrCustomerInvalidInput)
	}
	dispute, err := s.disputes.FindByID(ctx, disputeID)
	if err != nil {
		if isNotFound(err) {
			return Dispute{}, ErrCustomerNotFound
		}
		return Dispute{}, fmt.Errorf("customer service: load dispute: %w", err)
	}
	return dispute, nil
}

func reviewTransitionAllowed(from, to domain.ReviewStatus) bool {
	for _, allowed := range reviewTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func disputeTransitionAllowed(from, to domain.DisputeStatus) bool {
	for _, allowed := range disputeTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
