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

type stubCustomerService struct {
	customers domain.CursorPage[domain.Customer]
	customer  domain.Customer
	messages  domain.CursorPage[domain.CustomerMessage]
	message   domain.CustomerMessage
	reviews   domain.CursorPage[domain.ProductReview]
	review    domain.ProductReview
	disputes  domain.CursorPage[domain.Dispute]
	dispute   domain.Dispute
	err       error

	lastFilter     services.CustomerListFilter
	lastReply      services.MessageReplyCommand
	lastModeration services.ReviewModerationCommand
	lastResolution services.DisputeResolutionCommand
}

func (s *stubCustomerService) ListCustomers(_ context.Context, filter services.CustomerListFilter) (domain.CursorPage[domain.Customer], error) {
	s.lastFilter = filter
	return s.customers, s.err
}

func (s *stubCustomerService) GetCustomer(context.Context, string) (domain.Customer, error) {
	return s.customer, s.err
}

func (s *stubCustomerService) ListMessages(context.Context, domain.Pagination) (domain.CursorPage[domain.CustomerMessage], error) {
	return s.messages, s.err
}

func (s *stubCustomerService) ReplyToMessage(_ context.Context, cmd services.MessageReplyCommand) (domain.CustomerMessage, error) {
	s.lastReply = cmd
	return s.message, s.err
}

func (s *stubCustomerService) UpdateMessageStatus(context.Context, services.MessageStatusCommand) (domain.CustomerMessage, error) {
	return s.message, s.err
}

func (s *stubCustomerService) ListReviews(context.Context, domain.Pagination) (domain.CursorPage[domain.ProductReview], error) {
	return s.reviews, s.err
}

func (s *stubCustomerService) ModerateReview(_ context.Context, cmd services.ReviewModerationCommand) (domain.ProductReview, error) {
	s.lastModeration = cmd
	return s.review, s.err
}

func (s *stubCustomerService) ListDisputes(context.Context, domain.Pagination) (domain.CursorPage[domain.Dispute], error) {
	return s.disputes, s.err
}

func (s *stubCustomerService) UpdateDisputeStatus(context.Context, services.DisputeStatusCommand) (domain.Dispute, error) {
	return s.dispute, s.err
}

func (s *stubCustomerService) ResolveDispute(_ context.Context, cmd services.DisputeResolutionCommand) (domain.Dispute, error) {
	s.lastResolution = cmd
	return s.dispute, s.err
}

func newCustomerRouter(svc services.CustomerService) chi.Router {
	r := chi.NewRouter()
	r.Route("/customers", NewCustomerHandlers(nil, svc).Routes)
	return r
}

func TestListCustomersAppliesFilters(t *testing.T) {
	svc := &stubCustomerService{customers: domain.CursorPage[domain.Customer]{
		Items: []domain.Customer{{
			ID:       "cust-1",
			Name:     "Grace Hopper",
			Email:    "grace@example.com",
			Status:   domain.CustomerStatusVIP,
			JoinedAt: time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
		}},
	}}
	router := newCustomerRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/customers/?search=grace&status=vip", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "grace", svc.lastFilter.Search)
	assert.Equal(t, domain.CustomerStatusVIP, svc.lastFilter.Status)

	body := decodeEnvelope(t, rec)
	items, ok := body["items"].([]any)
	require.True(t, ok)
	require.Len(t, items, 1)
	first, ok := items[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "cust-1", first["id"])
	assert.Equal(t, "vip", first["status"])
}

func TestGetCustomerNotFound(t *testing.T) {
	router := newCustomerRouter(&stubCustomerService{err: services.ErrCustomerNotFound})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/customers/cust-404", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, "customer_not_found", body["error"])
}

func TestReplyToMessage(t *testing.T) {
	svc := &stubCustomerService{message: domain.CustomerMessage{
		ID:     "msg-1",
		Status: domain.MessageStatusReplied,
		Replies: []domain.MessageReply{
			{ID: "reply-1", Body: "On its way.", Sender: domain.SenderSeller},
		},
	}}
	router := newCustomerRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/customers/messages/msg-1/reply", strings.NewReader(`{"body":"On its way."}`))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "msg-1", svc.lastReply.MessageID)
	assert.Equal(t, "On its way.", svc.lastReply.Body)

	body := decodeEnvelope(t, rec)
	assert.Equal(t, "replied", body["status"])
	replies, ok := body["replies"].([]any)
	require.True(t, ok)
	require.Len(t, replies, 1)
}

func TestModerateReview(t *testing.T) {
	svc := &stubCustomerService{review: domain.ProductReview{
		ID:     "rev-1",
		Status: domain.ReviewStatusPublished,
	}}
	router := newCustomerRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/customers/reviews/rev-1/moderate", strings.NewReader(`{"status":"published"}`))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "rev-1", svc.lastModeration.ReviewID)
	assert.Equal(t, domain.ReviewStatusPublished, svc.lastModeration.Status)
}

func TestModerateReviewInvalidTransition(t *testing.T) {
	router := newCustomerRouter(&stubCustomerService{err: services.ErrReviewInvalidTransition})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/customers/reviews/rev-1/moderate", strings.NewReader(`{"status":"pending"}`))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, "invalid_transition", body["error"])
}

func TestResolveDispute(t *testing.T) {
	svc := &stubCustomerService{dispute: domain.Dispute{
		ID:         "disp-1",
		Status:     domain.DisputeStatusResolved,
		Resolution: "Refund issued",
	}}
	router := newCustomerRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/customers/disputes/disp-1/resolve", strings.NewReader(`{"resolution":"Refund issued"}`))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "disp-1", svc.lastResolution.DisputeID)
	assert.Equal(t, "Refund issued", svc.lastResolution.Resolution)

	body := decodeEnvelope(t, rec)
	assert.Equal(t, "resolved", body["status"])
	assert.Equal(t, "Refund issued", body["resolution"])
}
