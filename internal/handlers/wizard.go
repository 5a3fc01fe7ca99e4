package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sellerdesk/api/internal/graphql"
	"github.com/sellerdesk/api/internal/platform/auth"
	"github.com/sellerdesk/api/internal/platform/httpx"
	"github.com/sellerdesk/api/internal/wizard"
)

// WizardHandlers hosts the product wizard state machine over HTTP. Each
// session is owned by the manager and addressed by its generated id.
type WizardHandlers struct {
	authn    *auth.Authenticator
	sessions *wizard.Manager
}

// NewWizardHandlers constructs the wizard session endpoints.
func NewWizardHandlers(authn *auth.Authenticator, sessions *wizard.Manager) *WizardHandlers {
	return &WizardHandlers{authn: authn, sessions: sessions}
}

// Routes registers the /wizard endpoints.
func (h *WizardHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireFirebaseAuth(auth.RoleSeller))
	}
	r.Post("/sessions", h.startSession)
	r.Route("/sessions/{sessionID}", func(s chi.Router) {
		s.Get("/", h.getState)
		s.Delete("/", h.abandonSession)
		s.Get("/categories", h.listCategories)
		s.Get("/specification-fields", h.listSpecificationFields)
		s.Post("/fields", h.updateField)
		s.Post("/features", h.addFeature)
		s.Delete("/features/{index}", h.removeFeature)
		s.Put("/specifications", h.setSpecification)
		s.Delete("/specifications/{key}", h.removeSpecification)
		s.Post("/media", h.selectMedia)
		s.Delete("/media/{target}/{index}", h.removeMedia)
		s.Post("/next", h.nextStep)
		s.Post("/prev", h.prevStep)
		s.Post("/step", h.goToStep)
		s.Post("/submit", h.submit)
	})
}

type startSessionRequest struct {
	ProductID string `json:"product_id"`
}

type sessionStatePayload struct {
	SessionID  string            `json:"session_id,omitempty"`
	Step       int               `json:"step"`
	Editing    bool              `json:"editing"`
	ProductID  string            `json:"product_id,omitempty"`
	Submitting bool              `json:"submitting"`
	Errors     map[string]string `json:"errors,omitempty"`
	Draft      draftPayload      `json:"draft"`
}

type draftPayload struct {
	Title          string            `json:"title"`
	BrandID        string            `json:"brand_id,omitempty"`
	CategoryID     string            `json:"category_id,omitempty"`
	SubcategoryID  string            `json:"subcategory_id,omitempty"`
	Description    string            `json:"description,omitempty"`
	Price          string            `json:"price,omitempty"`
	ComparePrice   string            `json:"compare_price,omitempty"`
	CostPrice      string            `json:"cost_price,omitempty"`
	SKU            string            `json:"sku,omitempty"`
	Stock          string            `json:"stock,omitempty"`
	TrackQuantity  bool              `json:"track_quantity"`
	Weight         string            `json:"weight,omitempty"`
	Dimensions     string            `json:"dimensions,omitempty"`
	ShippingClass  string            `json:"shipping_class,omitempty"`
	ReturnPolicy   string            `json:"return_policy,omitempty"`
	Warranty       string            `json:"warranty,omitempty"`
	Features       []string          `json:"features,omitempty"`
	Specifications map[string]string `json:"specifications,omitempty"`
	ProductMedia   []mediaSlotView   `json:"product_media"`
	PromoMedia     []mediaSlotView   `json:"promotional_media"`
}

type mediaSlotView struct {
	Key        string `json:"key"`
	Status     string `json:"status"`
	URL        string `json:"url,omitempty"`
	PreviewURL string `json:"preview_url,omitempty"`
	MediaType  string `json:"media_type,omitempty"`
}

func (h *WizardHandlers) startSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.sessions == nil {
		httpx.WriteError(ctx, w, httpx.NewError("wizard_unavailable", "wizard manager unavailable", http.StatusServiceUnavailable))
		return
	}

	var req startSessionRequest
	if err := decodeJSONBody(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	var (
		id      string
		session *wizard.Session
		err     error
	)
	if productID := strings.TrimSpace(req.ProductID); productID != "" {
		id, session, err = h.sessions.StartEdit(ctx, productID)
	} else {
		id, session, err = h.sessions.StartAdd(ctx)
	}
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("wizard_start_failed", "could not start the wizard session", http.StatusBadGateway))
		return
	}

	writeJSONResponse(w, http.StatusCreated, buildSessionState(id, session.State()))
}

func (h *WizardHandlers) session(w http.ResponseWriter, r *http.Request) (*wizard.Session, string, bool) {
	ctx := r.Context()
	if h.sessions == nil {
		httpx.WriteError(ctx, w, httpx.NewError("wizard_unavailable", "wizard manager unavailable", http.StatusServiceUnavailable))
		return nil, "", false
	}
	sessionID := strings.TrimSpace(chi.URLParam(r, "sessionID"))
	if sessionID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "session id is required", http.StatusBadRequest))
		return nil, "", false
	}
	session, err := h.sessions.Get(sessionID)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("wizard_session_not_found", "wizard session not found", http.StatusNotFound))
		return nil, "", false
	}
	return session, sessionID, true
}

func (h *WizardHandlers) getState(w http.ResponseWriter, r *http.Request) {
	session, id, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSONResponse(w, http.StatusOK, buildSessionState(id, session.State()))
}

func (h *WizardHandlers) abandonSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.sessions == nil {
		httpx.WriteError(ctx, w, httpx.NewError("wizard_unavailable", "wizard manager unavailable", http.StatusServiceUnavailable))
		return
	}
	sessionID := strings.TrimSpace(chi.URLParam(r, "sessionID"))
	if err := h.sessions.Release(sessionID); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("wizard_session_not_found", "wizard session not found", http.StatusNotFound))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *WizardHandlers) listCategories(w http.ResponseWriter, r *http.Request) {
	session, _, ok := h.session(w, r)
	if !ok {
		return
	}
	nodes := session.Categories()
	payloads := make([]graphql.CategoryPayload, 0, len(nodes))
	for _, node := range nodes {
		payloads = append(payloads, graphql.EncodeCategory(node))
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"categories": payloads})
}

func (h *WizardHandlers) listSpecificationFields(w http.ResponseWriter, r *http.Request) {
	session, _, ok := h.session(w, r)
	if !ok {
		return
	}
	fields := session.SpecificationFields()
	payloads := make([]graphql.SpecFieldPayload, 0, len(fields))
	for _, field := range fields {
		payloads = append(payloads, graphql.SpecFieldPayload{
			ID:          field.ID,
			Key:         field.Key,
			Label:       field.Label,
			Placeholder: field.Placeholder,
		})
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"fields": payloads})
}

type updateFieldRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func (h *WizardHandlers) updateField(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session, id, ok := h.session(w, r)
	if !ok {
		return
	}
	var req updateFieldRequest
	if err := decodeJSONBody(r, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	if err := session.UpdateField(req.Field, req.Value); err != nil {
		writeWizardError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildSessionState(id, session.State()))
}

type featureRequest struct {
	Value string `json:"value"`
}

func (h *WizardHandlers) addFeature(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session, id, ok := h.session(w, r)
	if !ok {
		return
	}
	var req featureRequest
	if err := decodeJSONBody(r, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	if err := session.AddFeature(req.Value); err != nil {
		writeWizardError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildSessionState(id, session.State()))
}

func (h *WizardHandlers) removeFeature(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session, id, ok := h.session(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "feature index must be an integer", http.StatusBadRequest))
		return
	}
	if err := session.RemoveFeature(index); err != nil {
		writeWizardError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildSessionState(id, session.State()))
}

type specificationRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (h *WizardHandlers) setSpecification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session, id, ok := h.session(w, r)
	if !ok {
		return
	}
	var req specificationRequest
	if err := decodeJSONBody(r, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	if strings.TrimSpace(req.Key) == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "specification key is required", http.StatusBadRequest))
		return
	}
	if err := session.SetSpecification(req.Key, req.Value); err != nil {
		writeWizardError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildSessionState(id, session.State()))
}

func (h *WizardHandlers) removeSpecification(w http.ResponseWriter, r *http.Request) {
	session, id, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := session.RemoveSpecification(chi.URLParam(r, "key")); err != nil {
		writeWizardError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildSessionState(id, session.State()))
}

type selectMediaRequest struct {
	Target string `json:"target"`
	Files  []struct {
		Name        string `json:"name"`
		ContentType string `json:"content_type"`
		Size        int64  `json:"size"`
		PreviewURL  string `json:"preview_url"`
	} `json:"files"`
}

func (h *WizardHandlers) selectMedia(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session, id, ok := h.session(w, r)
	if !ok {
		return
	}
	var req selectMediaRequest
	if err := decodeJSONBody(r, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	target, ok := parseMediaTarget(req.Target)
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "target must be productMedia or promotionalMedia", http.StatusBadRequest))
		return
	}
	files := make([]wizard.FileSelection, 0, len(req.Files))
	for _, file := range req.Files {
		files = append(files, wizard.FileSelection{
			Name:        file.Name,
			ContentType: file.ContentType,
			Size:        file.Size,
			PreviewURL:  file.PreviewURL,
		})
	}
	accepted, err := session.SelectFiles(ctx, target, files)
	if err != nil {
		writeWizardError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusAccepted, map[string]any{
		"accepted": accepted,
		"state":    buildSessionState(id, session.State()),
	})
}

func (h *WizardHandlers) removeMedia(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session, id, ok := h.session(w, r)
	if !ok {
		return
	}
	target, ok := parseMediaTarget(chi.URLParam(r, "target"))
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "target must be productMedia or promotionalMedia", http.StatusBadRequest))
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "media index must be an integer", http.StatusBadRequest))
		return
	}
	if err := session.RemoveMedia(target, index); err != nil {
		writeWizardError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildSessionState(id, session.State()))
}

func (h *WizardHandlers) nextStep(w http.ResponseWriter, r *http.Request) {
	session, id, ok := h.session(w, r)
	if !ok {
		return
	}
	step, errs := session.NextStep()
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"step":   step,
		"errors": errs,
		"state":  buildSessionState(id, session.State()),
	})
}

func (h *WizardHandlers) prevStep(w http.ResponseWriter, r *http.Request) {
	session, id, ok := h.session(w, r)
	if !ok {
		return
	}
	step := session.PrevStep()
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"step":  step,
		"state": buildSessionState(id, session.State()),
	})
}

type goToStepRequest struct {
	Step int `json:"step"`
}

func (h *WizardHandlers) goToStep(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session, id, ok := h.session(w, r)
	if !ok {
		return
	}
	var req goToStepRequest
	if err := decodeJSONBody(r, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	if err := session.GoToStep(req.Step); err != nil {
		writeWizardError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildSessionState(id, session.State()))
}

func (h *WizardHandlers) submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session, id, ok := h.session(w, r)
	if !ok {
		return
	}
	result, err := session.Submit(ctx)
	switch {
	case err == nil:
		_ = h.sessions.Release(id)
		writeJSONResponse(w, http.StatusOK, map[string]any{"product_id": result.ProductID})
	case errors.Is(err, wizard.ErrValidationFailed):
		writeJSONResponse(w, http.StatusUnprocessableEntity, map[string]any{
			"failed_step": result.FailedStep,
			"errors":      result.Errors,
		})
	case errors.Is(err, wizard.ErrSubmitInFlight):
		httpx.WriteError(ctx, w, httpx.NewError("wizard_submit_in_flight", "a submission is already in progress", http.StatusConflict))
	case errors.Is(err, wizard.ErrSessionClosed):
		httpx.WriteError(ctx, w, httpx.NewError("wizard_session_closed", "wizard session is closed", http.StatusGone))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("wizard_submit_failed", "saving the product failed, please try again", http.StatusBadGateway))
	}
}

func writeWizardError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	switch {
	case errors.Is(err, wizard.ErrSessionClosed):
		httpx.WriteError(ctx, w, httpx.NewError("wizard_session_closed", "wizard session is closed", http.StatusGone))
	case errors.Is(err, wizard.ErrUnknownField):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "unknown draft field", http.StatusBadRequest))
	case errors.Is(err, wizard.ErrInvalidFieldValue):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid field value", http.StatusBadRequest))
	case errors.Is(err, wizard.ErrInvalidStep):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "step out of range", http.StatusBadRequest))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	}
}

func parseMediaTarget(raw string) (wizard.MediaTarget, bool) {
	switch wizard.MediaTarget(strings.TrimSpace(raw)) {
	case wizard.TargetProductMedia:
		return wizard.TargetProductMedia, true
	case wizard.TargetPromotionalMedia:
		return wizard.TargetPromotionalMedia, true
	default:
		return "", false
	}
}

func buildSessionState(sessionID string, snapshot wizard.Snapshot) sessionStatePayload {
	payload := sessionStatePayload{
		SessionID:  sessionID,
		Step:       snapshot.Step,
		Editing:    snapshot.Editing,
		ProductID:  snapshot.ProductID,
		Submitting: snapshot.Submitting,
		Errors:     snapshot.Errors,
		Draft:      buildDraftPayload(snapshot.Draft),
	}
	return payload
}

func buildDraftPayload(draft wizard.ProductDraft) draftPayload {
	return draftPayload{
		Title:          draft.Title,
		BrandID:        draft.BrandID,
		CategoryID:     draft.CategoryID,
		SubcategoryID:  draft.SubcategoryID,
		Description:    draft.Description,
		Price:          draft.Price,
		ComparePrice:   draft.ComparePrice,
		CostPrice:      draft.CostPrice,
		SKU:            draft.SKU,
		Stock:          draft.Stock,
		TrackQuantity:  draft.TrackQuantity,
		Weight:         draft.Weight,
		Dimensions:     draft.Dimensions,
		ShippingClass:  string(draft.ShippingClass),
		ReturnPolicy:   draft.ReturnPolicy,
		Warranty:       draft.Warranty,
		Features:       draft.Features,
		Specifications: draft.Specifications,
		ProductMedia:   buildSlotViews(draft.ProductMedia),
		PromoMedia:     buildSlotViews(draft.PromotionalMedia),
	}
}

func buildSlotViews(slots []wizard.MediaSlot) []mediaSlotView {
	views := make([]mediaSlotView, 0, len(slots))
	for _, slot := range slots {
		views = append(views, mediaSlotView{
			Key:        slot.Key,
			Status:     string(slot.Status),
			URL:        slot.Ref.URL,
			PreviewURL: slot.PreviewURL,
			MediaType:  string(slot.Ref.MediaType),
		})
	}
	return views
}
