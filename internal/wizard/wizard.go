// Package wizard implements the six-step product creation and editing flow:
// the draft state machine, per-step validators, media upload slots and the
// submission transform feeding the catalog mutations.
package wizard

import (
	"context"
	"errors"

	domain "github.com/sellerdesk/api/internal/domain"
)

var (
	// ErrUnknownField indicates an update for a field the draft does not carry.
	ErrUnknownField = errors.New("wizard: unknown draft field")
	// ErrInvalidFieldValue indicates a value the field cannot hold.
	ErrInvalidFieldValue = errors.New("wizard: invalid field value")
	// ErrInvalidStep indicates a step outside 1..6.
	ErrInvalidStep = errors.New("wizard: step out of range")
	// ErrValidationFailed indicates the draft did not pass step validation.
	ErrValidationFailed = errors.New("wizard: draft validation failed")
	// ErrMalformedDraft indicates a numeric field failed to parse at submit time.
	ErrMalformedDraft = errors.New("wizard: draft contains malformed values")
	// ErrSubmitInFlight indicates a submission is already being dispatched.
	ErrSubmitInFlight = errors.New("wizard: submission already in flight")
	// ErrSubmitFailed indicates the mutation dispatch was rejected; the draft is preserved.
	ErrSubmitFailed = errors.New("wizard: submission failed")
	// ErrSessionClosed indicates the session was submitted or abandoned.
	ErrSessionClosed = errors.New("wizard: session closed")
	// ErrSessionNotFound indicates the session id is unknown or expired.
	ErrSessionNotFound = errors.New("wizard: session not found")
)

// CategoryFetcher supplies the immutable category tree for one form session.
type CategoryFetcher interface {
	FetchCategories(ctx context.Context) ([]domain.CategoryNode, error)
}

// ProductFetcher loads an existing product for the edit flow.
type ProductFetcher interface {
	FetchProduct(ctx context.Context, productID string) (domain.Product, error)
}

// Dispatcher sends the transformed submission to the catalog backend.
type Dispatcher interface {
	AddProduct(ctx context.Context, input domain.CreateProductInput) (string, error)
	UpdateProduct(ctx context.Context, input domain.UpdateProductInput) (string, error)
}

// Uploader transfers one selected file to remote storage and returns the
// resolved media reference.
type Uploader interface {
	Upload(ctx context.Context, target MediaTarget, file FileSelection) (domain.MediaRef, error)
}

// NoticeLevel grades user-visible notices.
type NoticeLevel string

const (
	NoticeInfo  NoticeLevel = "info"
	NoticeError NoticeLevel = "error"
)

// Notice is one user-visible message emitted by the wizard.
type Notice struct {
	Level   NoticeLevel
	Message string
}

// Notifier receives user-visible notices (validation failures, upload errors,
// submission outcomes).
type Notifier interface {
	Notify(notice Notice)
}

// NoopNotifier discards all notices.
type NoopNotifier struct{}

func (NoopNotifier) Notify(Notice) {}
