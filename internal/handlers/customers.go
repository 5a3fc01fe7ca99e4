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

// CustomerHandlers exposes the customer dashboard endpoints: customer
// listings, message threads, review moderation and disputes.
type CustomerHandlers struct {
	authn     *auth.Authenticator
	customers services.CustomerService
}

// NewCustomerHandlers constructs the customer endpoints.
func NewCustomerHandlers(authn *auth.Authenticator, customers services.CustomerService) *CustomerHandlers {
	return &CustomerHandlers{authn: authn, customers: customers}
}

// Routes registers the /customers endpoints.
func (h *CustomerHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireFirebaseAuth(auth.RoleSeller, auth.RoleStaff, auth.RoleAdmin))
	}
	r.Get("/", h.listCustomers)
	r.Get("/{customerID}", h.getCustomer)
	r.Get("/messages", h.listMessages)
	r.Post("/messages/{messageID}/reply", h.replyToMessage)
	r.Post("/messages/{messageID}/status", h.updateMessageStatus)
	r.Get("/reviews", h.listReviews)
	r.Post("/reviews/{reviewID}/moderate", h.moderateReview)
	r.Get("/disputes", h.listDisputes)
	r.Post("/disputes/{disputeID}/status", h.updateDisputeStatus)
	r.Post("/disputes/{disputeID}/resolve", h.resolveDispute)
}

func (h *CustomerHandlers) available(w http.ResponseWriter, r *http.Request) bool {
	if h.customers == nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("customer_service_unavailable", "customer service unavailable", http.StatusServiceUnavailable))
		return false
	}
	return true
}

func (h *CustomerHandlers) listCustomers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.available(w, r) {
		return
	}
	pager, err := parsePagination(r)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	query := r.URL.Query()
	page, err := h.customers.ListCustomers(ctx, services.CustomerListFilter{
		Search:     strings.TrimSpace(query.Get("search")),
		Status:     domain.CustomerStatus(strings.TrimSpace(query.Get("status"))),
		Pagination: pager,
	})
	if err != nil {
		writeCustomerError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"items":           buildCustomerPayloads(page.Items),
		"next_page_token": page.NextPageToken,
	})
}

func (h *CustomerHandlers) getCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.available(w, r) {
		return
	}
	customerID := strings.TrimSpace(chi.URLParam(r, "customerID"))
	if customerID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "customer id is required", http.StatusBadRequest))
		return
	}
	customer, err := h.customers.GetCustomer(ctx, customerID)
	if err != nil {
		writeCustomerError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildCustomerPayload(customer))
}

func (h *CustomerHandlers) listMessages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.available(w, r) {
		return
	}
	pager, err := parsePagination(r)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	page, err := h.customers.ListMessages(ctx, pager)
	if err != nil {
		writeCustomerError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"items":           buildMessagePayloads(page.Items),
		"next_page_token": page.NextPageToken,
	})
}

type messageReplyRequest struct {
	Body string `json:"body"`
}

func (h *CustomerHandlers) replyToMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.available(w, r) {
		return
	}
	var req messageReplyRequest
	if err := decodeJSONBody(r, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	message, err := h.customers.ReplyToMessage(ctx, services.MessageReplyCommand{
		MessageID: strings.TrimSpace(chi.URLParam(r, "messageID")),
		Body:      req.Body,
	})
	if err != nil {
		writeCustomerError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildMessagePayload(message))
}

type messageStatusRequest struct {
	Status string `json:"status"`
}

func (h *CustomerHandlers) updateMessageStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.available(w, r) {
		return
	}
	var req messageStatusRequest
	if err := decodeJSONBody(r, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	message, err := h.customers.UpdateMessageStatus(ctx, services.MessageStatusCommand{
		MessageID: strings.TrimSpace(chi.URLParam(r, "messageID")),
		Status:    domain.MessageStatus(strings.TrimSpace(req.Status)),
	})
	if err != nil {
		writeCustomerError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildMessagePayload(message))
}

func (h *CustomerHandlers) listReviews(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.available(w, r) {
		return
	}
	pager, err := parsePagination(r)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	page, err := h.customers.ListReviews(ctx, pager)
	if err != nil {
		writeCustomerError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"items":           buildReviewPayloads(page.Items),
		"next_page_token": page.NextPageToken,
	})
}

type reviewModerationRequest struct {
	Status string `json:"status"`
}

func (h *CustomerHandlers) moderateReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.available(w, r) {
		return
	}
	var req reviewModerationRequest
	if err := decodeJSONBody(r, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	review, err := h.customers.ModerateReview(ctx, services.ReviewModerationCommand{
		ReviewID: strings.TrimSpace(chi.URLParam(r, "reviewID")),
		Status:   domain.ReviewStatus(strings.TrimSpace(req.Status)),
	})
	if err != nil {
		writeCustomerError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildReviewPayload(review))
}

func (h *CustomerHandlers) listDisputes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.available(w, r) {
		return
	}
	pager, err := parsePagination(r)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	page, err := h.customers.ListDisputes(ctx, pager)
	if err != nil {
		writeCustomerError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"items":           buildDisputePayloads(page.Items),
		"next_page_token": page.NextPageToken,
	})
}

type disputeStatusRequest struct {
	Status string `json:"status"`
}

func (h *CustomerHandlers) updateDisputeStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.available(w, r) {
		return
	}
	var req disputeStatusRequest
	if err := decodeJSONBody(r, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	dispute, err := h.customers.UpdateDisputeStatus(ctx, services.DisputeStatusCommand{
		DisputeID: strings.TrimSpace(chi.URLParam(r, "disputeID")),
		Status:    domain.DisputeStatus(strings.TrimSpace(req.Status)),
	})
	if err != nil {
		writeCustomerError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildDisputePayload(dispute))
}

type disputeResolutionRequest struct {
	Resolution string `json:"resolution"`
}

func (h *CustomerHandlers) resolveDispute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.available(w, r) {
		return
	}
	var req disputeResolutionRequest
	if err := decodeJSONBody(r, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	dispute, err := h.customers.ResolveDispute(ctx, services.DisputeResolutionCommand{
		DisputeID:  strings.TrimSpace(chi.URLParam(r, "disputeID")),
		Resolution: req.Resolution,
	})
	if err != nil {
		writeCustomerError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildDisputePayload(dispute))
}

func writeCustomerError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	switch {
	case errors.Is(err, services.ErrCustomerNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("customer_not_found", "record not found", http.StatusNotFound))
	case errors.Is(err, services.ErrReviewInvalidTransition),
		errors.Is(err, services.ErrDisputeInvalidTransition):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_transition", err.Error(), http.StatusConflict))
	case errors.Is(err, services.ErrCustomerInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("customer_error", "customer operation failed", http.StatusInternalServerError))
	}
}

type customerPayload struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	AvatarURL    string  `json:"avatar_url,omitempty"`
	OrderCount   int     `json:"order_count"`
	TotalSpent   float64 `json:"total_spent"`
	Rating       float64 `json:"rating"`
	Status       string  `json:"status"`
	LastOrderAt  string  `json:"last_order_at,omitempty"`
	MessageCount int     `json:"message_count"`
	JoinedAt     string  `json:"joined_at,omitempty"`
}

func buildCustomerPayload(customer domain.Customer) customerPayload {
	return customerPayload{
		ID:           customer.ID,
		Name:         customer.Name,
		Email:        customer.Email,
		AvatarURL:    customer.AvatarURL,
		OrderCount:   customer.OrderCount,
		TotalSpent:   customer.TotalSpent,
		Rating:       customer.Rating,
		Status:       string(customer.Status),
		LastOrderAt:  formatTime(customer.LastOrderAt),
		MessageCount: customer.MessageCount,
		JoinedAt:     formatTime(customer.JoinedAt),
	}
}

func buildCustomerPayloads(customers []domain.Customer) []customerPayload {
	out := make([]customerPayload, 0, len(customers))
	for _, customer := range customers {
		out = append(out, buildCustomerPayload(customer))
	}
	return out
}

type messageReplyPayload struct {
	ID     string `json:"id"`
	Body   string `json:"body"`
	Sender string `json:"sender"`
	SentAt string `json:"sent_at"`
}

type messagePayload struct {
	ID         string                `json:"id"`
	CustomerID string                `json:"customer_id"`
	Customer   string                `json:"customer"`
	Subject    string                `json:"subject"`
	Body       string                `json:"body"`
	Preview    string                `json:"preview,omitempty"`
	ReceivedAt string                `json:"received_at"`
	Status     string                `json:"status"`
	Priority   string                `json:"priority"`
	OrderID    string                `json:"order_id,omitempty"`
	Replies    []messageReplyPayload `json:"replies,omitempty"`
}

func buildMessagePayload(message domain.CustomerMessage) messagePayload {
	replies := make([]messageReplyPayload, 0, len(message.Replies))
	for _, reply := range message.Replies {
		replies = append(replies, messageReplyPayload{
			ID:     reply.ID,
			Body:   reply.Body,
			Sender: string(reply.Sender),
			SentAt: formatTime(reply.SentAt),
		})
	}
	return messagePayload{
		ID:         message.ID,
		CustomerID: message.CustomerID,
		Customer:   message.Customer,
		Subject:    message.Subject,
		Body:       message.Body,
		Preview:    message.Preview,
		ReceivedAt: formatTime(message.ReceivedAt),
		Status:     string(message.Status),
		Priority:   string(message.Priority),
		OrderID:    message.OrderID,
		Replies:    replies,
	}
}

func buildMessagePayloads(messages []domain.CustomerMessage) []messagePayload {
	out := make([]messagePayload, 0, len(messages))
	for _, message := range messages {
		out = append(out, buildMessagePayload(message))
	}
	return out
}

type reviewPayload struct {
	ID           string `json:"id"`
	CustomerID   string `json:"customer_id"`
	Customer     string `json:"customer"`
	ProductID    string `json:"product_id"`
	Product      string `json:"product"`
	Rating       int    `json:"rating"`
	Comment      string `json:"comment"`
	SubmittedAt  string `json:"submitted_at"`
	Status       string `json:"status"`
	HelpfulCount int    `json:"helpful_count"`
}

func buildReviewPayload(review domain.ProductReview) reviewPayload {
	return reviewPayload{
		ID:           review.ID,
		CustomerID:   review.CustomerID,
		Customer:     review.Customer,
		ProductID:    review.ProductID,
		Product:      review.Product,
		Rating:       review.Rating,
		Comment:      review.Comment,
		SubmittedAt:  formatTime(review.SubmittedAt),
		Status:       string(review.Status),
		HelpfulCount: review.HelpfulCount,
	}
}

func buildReviewPayloads(reviews []domain.ProductReview) []reviewPayload {
	out := make([]reviewPayload, 0, len(reviews))
	for _, review := range reviews {
		out = append(out, buildReviewPayload(review))
	}
	return out
}

type disputePayload struct {
	ID          string `json:"id"`
	CustomerID  string `json:"customer_id"`
	Customer    string `json:"customer"`
	OrderID     string `json:"order_id"`
	Issue       string `json:"issue"`
	Description string `json:"description,omitempty"`
	OpenedAt    string `json:"opened_at"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	Resolution  string `json:"resolution,omitempty"`
}

func buildDisputePayload(dispute domain.Dispute) disputePayload {
	return disputePayload{
		ID:          dispute.ID,
		CustomerID:  dispute.CustomerID,
		Customer:    dispute.Customer,
		OrderID:     dispute.OrderID,
		Issue:       dispute.Issue,
		Description: dispute.Description,
		OpenedAt:    formatTime(dispute.OpenedAt),
		Status:      string(dispute.Status),
		Priority:    string(dispute.Priority),
		Resolution:  dispute.Resolution,
	}
}

func buildDisputePayloads(disputes []domain.Dispute) []disputePayload {
	out := make([]disputePayload, 0, len(disputes))
	for _, dispute := range disputes {
		out = append(out, buildDisputePayload(dispute))
	}
	return out
}
