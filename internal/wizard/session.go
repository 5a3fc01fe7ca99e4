package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/oklog/ulid/v2"

	domain "github.com/sellerdesk/api/internal/domain"
)

// SessionDeps bundles the collaborators of one form session.
type SessionDeps struct {
	Categories CategoryFetcher
	Products   ProductFetcher
	Dispatcher Dispatcher
	Uploader   Uploader
	Notifier   Notifier
	// IDGen keys media slots. Injected in tests.
	IDGen func() string
}

// Session hosts the state machine of one add/edit flow. The mutex is the Go
// rendition of the single-threaded event model: only one operation mutates the
// draft at a time, while uploads and the mutation dispatch run outside it.
type Session struct {
	mu sync.Mutex

	deps        SessionDeps
	tree        []domain.CategoryNode
	productID   string
	currentStep int
	draft       *ProductDraft
	errors      ValidationErrors
	submitting  bool
	closed      bool
}

// NewSession starts an add-flow session with an empty draft.
func NewSession(ctx context.Context, deps SessionDeps) (*Session, error) {
	session, err := newSession(ctx, deps)
	if err != nil {
		return nil, err
	}
	session.draft = NewDraft()
	return session, nil
}

// NewEditSession starts an edit-flow session hydrated from the stored product.
func NewEditSession(ctx context.Context, deps SessionDeps, productID string) (*Session, error) {
	if deps.Products == nil {
		return nil, errors.New("wizard: product fetcher is required for the edit flow")
	}
	session, err := newSession(ctx, deps)
	if err != nil {
		return nil, err
	}
	product, err := deps.Products.FetchProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("wizard: load product: %w", err)
	}
	session.productID = product.ID
	session.draft = NewDraftFromProduct(product, session.tree)
	return session, nil
}

func newSession(ctx context.Context, deps SessionDeps) (*Session, error) {
	if deps.Categories == nil {
		return nil, errors.New("wizard: category fetcher is required")
	}
	if deps.Dispatcher == nil {
		return nil, errors.New("wizard: dispatcher is required")
	}
	if deps.Uploader == nil {
		return nil, errors.New("wizard: uploader is required")
	}
	if deps.Notifier == nil {
		deps.Notifier = NoopNotifier{}
	}
	if deps.IDGen == nil {
		deps.IDGen = func() string { return ulid.Make().String() }
	}
	tree, err := deps.Categories.FetchCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("wizard: load categories: %w", err)
	}
	return &Session{
		deps:        deps,
		tree:        tree,
		currentStep: 1,
		errors:      ValidationErrors{},
	}, nil
}

// Snapshot is a read-only view of the session state.
type Snapshot struct {
	Step       int
	Editing    bool
	ProductID  string
	Draft      ProductDraft
	Errors     ValidationErrors
	Submitting bool
}

// State returns a copy of the current session state.
func (s *Session) State() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Step:       s.currentStep,
		Editing:    s.productID != "",
		ProductID:  s.productID,
		Draft:      s.copyDraft(),
		Errors:     s.copyErrors(),
		Submitting: s.submitting,
	}
}

// Categories returns the read-only category tree fetched for this session.
func (s *Session) Categories() []domain.CategoryNode {
	return s.tree
}

// SpecificationFields returns the active descriptor list for the selected
// subcategory, driving the dynamic specification form fields.
func (s *Session) SpecificationFields() []domain.SpecField {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ResolveSpecFields(s.tree, s.draft.CategoryID, s.draft.SubcategoryID)
}

// UpdateField mutates one draft field. Any validation error recorded for that
// field is cleared; other errors stay until the next validation pass.
func (s *Session) UpdateField(field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if err := s.draft.UpdateField(field, value); err != nil {
		return err
	}
	delete(s.errors, field)
	return nil
}

// AddFeature appends a feature chip.
func (s *Session) AddFeature(feature string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.draft.AddFeature(feature)
	return nil
}

// RemoveFeature drops the feature at index.
func (s *Session) RemoveFeature(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.draft.RemoveFeature(index)
	return nil
}

// SetSpecification stores one dynamic specification value.
func (s *Session) SetSpecification(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.draft.SetSpecification(key, value)
	return nil
}

// RemoveSpecification deletes one dynamic specification value.
func (s *Session) RemoveSpecification(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.draft.RemoveSpecification(key)
	return nil
}

// GoToStep jumps to any step without validating; used by step-indicator clicks.
func (s *Session) GoToStep(step int) error {
	if step < 1 || step > StepCount {
		return fmt.Errorf("%w: %d", ErrInvalidStep, step)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.currentStep = step
	return nil
}

// NextStep validates the current step and advances on success. On failure the
// errors are recorded, the step does not change and the returned mapping is
// non-empty.
func (s *Session) NextStep() (int, ValidationErrors) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.currentStep, nil
	}
	errs := ValidateStep(s.currentStep, s.draft)
	if len(errs) > 0 {
		s.errors = errs
		s.deps.Notifier.Notify(Notice{Level: NoticeError, Message: "Please fix the errors before continuing"})
		return s.currentStep, s.copyErrors()
	}
	if s.currentStep < StepCount {
		s.currentStep++
	}
	s.errors = ValidationErrors{}
	return s.currentStep, nil
}

// PrevStep steps back without validating.
func (s *Session) PrevStep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentStep > 1 {
		s.currentStep--
	}
	return s.currentStep
}

// SelectFiles accepts image/video selections for the target list, up to the
// remaining slot capacity, and starts one concurrent upload per accepted file.
// Each accepted file gets a pending preview slot immediately; completions
// patch the slot by key so out-of-order uploads keep their insertion order.
func (s *Session) SelectFiles(ctx context.Context, target MediaTarget, files []FileSelection) (int, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, ErrSessionClosed
	}

	remaining := slotLimit(target) - len(*s.draft.mediaList(target))
	type pendingUpload struct {
		key  string
		file FileSelection
	}
	var accepted []pendingUpload
	for _, file := range files {
		if remaining <= 0 {
			break
		}
		if _, ok := detectMediaType(file.ContentType); !ok {
			continue
		}
		key := s.deps.IDGen()
		s.draft.appendSlot(target, MediaSlot{
			Key:        key,
			Status:     SlotPending,
			PreviewURL: file.PreviewURL,
			release:    file.Release,
		})
		accepted = append(accepted, pendingUpload{key: key, file: file})
		remaining--
	}
	s.mu.Unlock()

	// Uploads outlive the triggering request; late completions for a closed
	// session are discarded.
	uploadCtx := context.WithoutCancel(ctx)
	for _, pending := range accepted {
		go s.runUpload(uploadCtx, target, pending.key, pending.file)
	}
	return len(accepted), nil
}

func (s *Session) runUpload(ctx context.Context, target MediaTarget, key string, file FileSelection) {
	ref, err := s.deps.Uploader.Upload(ctx, target, file)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		if file.Release != nil {
			file.Release()
		}
		return
	}
	if err != nil {
		s.draft.dropSlot(target, key)
		s.deps.Notifier.Notify(Notice{Level: NoticeError, Message: fmt.Sprintf("Upload failed for %s", file.Name)})
		return
	}
	if ref.MediaType == "" {
		ref.MediaType, _ = detectMediaType(file.ContentType)
	}
	s.draft.completeSlot(target, key, ref)
}

// RemoveMedia deletes the slot at index from the target list.
func (s *Session) RemoveMedia(target MediaTarget, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if !s.draft.removeSlotAt(target, index) {
		return fmt.Errorf("wizard: no media at index %d", index)
	}
	return nil
}

// SubmitResult reports the outcome of one submission attempt.
type SubmitResult struct {
	ProductID string
	// FailedStep and Errors are set when validation aborted the submission.
	FailedStep int
	Errors     ValidationErrors
}

// Submit validates steps 1..6 in order, transforms the draft and dispatches
// the mutation. Validation stops at the first failing step. The draft is
// preserved on any failure so the user can retry.
func (s *Session) Submit(ctx context.Context) (SubmitResult, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return SubmitResult{}, ErrSessionClosed
	}
	if s.submitting {
		s.mu.Unlock()
		return SubmitResult{}, ErrSubmitInFlight
	}

	for step := 1; step <= StepCount; step++ {
		errs := ValidateStep(step, s.draft)
		if len(errs) == 0 {
			continue
		}
		s.errors = errs
		s.deps.Notifier.Notify(Notice{Level: NoticeError, Message: "Please fix all errors before submitting"})
		result := SubmitResult{FailedStep: step, Errors: s.copyErrors()}
		s.mu.Unlock()
		return result, ErrValidationFailed
	}

	specFields := ResolveSpecFields(s.tree, s.draft.CategoryID, s.draft.SubcategoryID)
	input, err := BuildSubmission(s.draft, specFields)
	if err != nil {
		s.deps.Notifier.Notify(Notice{Level: NoticeError, Message: "Could not prepare the product for submission"})
		s.mu.Unlock()
		return SubmitResult{}, err
	}
	productID := s.productID
	s.submitting = true
	s.mu.Unlock()

	var dispatchedID string
	if productID != "" {
		dispatchedID, err = s.deps.Dispatcher.UpdateProduct(ctx, domain.UpdateProductInput{ID: productID, CreateProductInput: input})
	} else {
		dispatchedID, err = s.deps.Dispatcher.AddProduct(ctx, input)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false
	if err != nil {
		s.deps.Notifier.Notify(Notice{Level: NoticeError, Message: "Saving the product failed, please try again"})
		return SubmitResult{}, fmt.Errorf("%w: %v", ErrSubmitFailed, err)
	}

	s.deps.Notifier.Notify(Notice{Level: NoticeInfo, Message: "Product saved"})
	s.closeLocked()
	return SubmitResult{ProductID: dispatchedID}, nil
}

// Close abandons the session and releases outstanding preview resources.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

func (s *Session) closeLocked() {
	if s.closed {
		return
	}
	s.draft.releaseAllMedia()
	s.closed = true
}

func (s *Session) copyErrors() ValidationErrors {
	errs := make(ValidationErrors, len(s.errors))
	for field, message := range s.errors {
		errs[field] = message
	}
	return errs
}

// copyDraft deep-copies the draft for snapshots; release funcs stay with the
// session-owned slots.
func (s *Session) copyDraft() ProductDraft {
	draft := *s.draft
	draft.Features = append([]string(nil), s.draft.Features...)
	draft.specOrder = append([]string(nil), s.draft.specOrder...)
	draft.Specifications = make(map[string]string, len(s.draft.Specifications))
	for key, value := range s.draft.Specifications {
		draft.Specifications[key] = value
	}
	draft.ProductMedia = copySlots(s.draft.ProductMedia)
	draft.PromotionalMedia = copySlots(s.draft.PromotionalMedia)
	return draft
}

func copySlots(slots []MediaSlot) []MediaSlot {
	out := make([]MediaSlot, len(slots))
	copy(out, slots)
	for i := range out {
		out[i].release = nil
	}
	return out
}
