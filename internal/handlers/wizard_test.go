package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/sellerdesk/api/internal/domain"
	"github.com/sellerdesk/api/internal/wizard"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

type fixedCategoryFetcher struct {
	tree []domain.CategoryNode
}

func (f fixedCategoryFetcher) FetchCategories(context.Context) ([]domain.CategoryNode, error) {
	return f.tree, nil
}

type fixedProductFetcher struct {
	product domain.Product
}

func (f fixedProductFetcher) FetchProduct(context.Context, string) (domain.Product, error) {
	return f.product, nil
}

type capturingDispatcher struct {
	added   []domain.CreateProductInput
	addErr  error
	assigns string
}

func (d *capturingDispatcher) AddProduct(_ context.Context, input domain.CreateProductInput) (string, error) {
	if d.addErr != nil {
		return "", d.addErr
	}
	d.added = append(d.added, input)
	return d.assigns, nil
}

func (d *capturingDispatcher) UpdateProduct(_ context.Context, input domain.UpdateProductInput) (string, error) {
	return input.ID, nil
}

type instantUploader struct{}

func (instantUploader) Upload(_ context.Context, _ wizard.MediaTarget, file wizard.FileSelection) (domain.MediaRef, error) {
	return domain.MediaRef{
		URL:       "https://cdn.example.com/" + file.Name,
		MediaType: domain.MediaTypeImage,
		PublicID:  "media/" + file.Name,
	}, nil
}

func wizardCategoryTree() []domain.CategoryNode {
	return []domain.CategoryNode{{
		ID:   "cat-1",
		Name: "Electronics",
		Children: []domain.CategoryNode{{
			ID:       "cat-1-1",
			Name:     "Mice",
			ParentID: "cat-1",
			SpecificationFields: []domain.SpecField{
				{ID: "spec-color", Key: "color", Label: "Colour"},
			},
		}},
	}}
}

func newWizardEnv(t *testing.T) (chi.Router, *wizard.Manager, *capturingDispatcher) {
	t.Helper()
	dispatcher := &capturingDispatcher{assigns: "prod-new"}
	slot := 0
	mgr := wizard.NewManager(wizard.SessionDeps{
		Categories: fixedCategoryFetcher{tree: wizardCategoryTree()},
		Products:   fixedProductFetcher{},
		Dispatcher: dispatcher,
		Uploader:   instantUploader{},
		Notifier:   wizard.NoopNotifier{},
		IDGen: func() string {
			slot++
			return fmt.Sprintf("slot-%d", slot)
		},
	})
	r := chi.NewRouter()
	r.Route("/wizard", NewWizardHandlers(nil, mgr).Routes)
	return r, mgr, dispatcher
}

func startWizardSession(t *testing.T, router chi.Router) string {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/wizard/sessions", nil))
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeEnvelope(t, rec)
	id, ok := body["session_id"].(string)
	require.True(t, ok)
	require.NotEmpty(t, id)
	return id
}

func postJSON(router chi.Router, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, strings.NewReader(body)))
	return rec
}

func TestStartSessionReturnsInitialState(t *testing.T) {
	router, _, _ := newWizardEnv(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/wizard/sessions", nil))

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.EqualValues(t, 1, body["step"])
	assert.Equal(t, false, body["editing"])
}

func TestGetStateUnknownSession(t *testing.T) {
	router, _, _ := newWizardEnv(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/wizard/sessions/nope", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, "wizard_session_not_found", body["error"])
}

func TestUpdateFieldReflectsInState(t *testing.T) {
	router, _, _ := newWizardEnv(t)
	id := startWizardSession(t, router)

	rec := postJSON(router, "/wizard/sessions/"+id+"/fields", `{"field":"title","value":"Wireless Mouse"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec)
	draft, ok := body["draft"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Wireless Mouse", draft["title"])
}

func TestUpdateFieldUnknownField(t *testing.T) {
	router, _, _ := newWizardEnv(t)
	id := startWizardSession(t, router)

	rec := postJSON(router, "/wizard/sessions/"+id+"/fields", `{"field":"colourway","value":"red"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListCategoriesForSession(t *testing.T) {
	router, _, _ := newWizardEnv(t)
	id := startWizardSession(t, router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/wizard/sessions/"+id+"/categories", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec)
	categories, ok := body["categories"].([]any)
	require.True(t, ok)
	require.Len(t, categories, 1)
	root, ok := categories[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Electronics", root["name"])
}

func TestNextStepReportsValidationErrors(t *testing.T) {
	router, _, _ := newWizardEnv(t)
	id := startWizardSession(t, router)

	rec := postJSON(router, "/wizard/sessions/"+id+"/next", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.EqualValues(t, 1, body["step"])
	errs, ok := body["errors"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, errs, "title")
}

func TestSubmitIncompleteDraftReturnsFailedStep(t *testing.T) {
	router, _, _ := newWizardEnv(t)
	id := startWizardSession(t, router)

	rec := postJSON(router, "/wizard/sessions/"+id+"/submit", "")

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.EqualValues(t, 1, body["failed_step"])
	errs, ok := body["errors"].(map[string]any)
	require.True(t, ok)
	assert.NotEmpty(t, errs)
}

func TestFullFlowSubmitsAndReleasesSession(t *testing.T) {
	router, mgr, dispatcher := newWizardEnv(t)
	id := startWizardSession(t, router)
	base := "/wizard/sessions/" + id

	// Updating the category clears the subcategory, so the fields must be
	// applied in this order rather than ranged over as a map.
	for _, fv := range []struct{ field, value string }{
		{"title", "Wireless Mouse Pro"},
		{"categoryId", "cat-1"},
		{"subcategoryId", "cat-1-1"},
		{"description", "A long enough description for step one."},
		{"price", "49.90"},
		{"sku", "WM-100"},
		{"stock", "12"},
	} {
		rec := postJSON(router, base+"/fields", fmt.Sprintf(`{"field":%q,"value":%q}`, fv.field, fv.value))
		require.Equal(t, http.StatusOK, rec.Code, fv.field)
	}

	rec := postJSON(router, base+"/media", `{
		"target": "productMedia",
		"files": [{"name": "a.jpg", "content_type": "image/jpeg", "size": 1024, "preview_url": "blob:a"}]
	}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	accepted := decodeEnvelope(t, rec)
	assert.EqualValues(t, 1, accepted["accepted"])

	require.Eventually(t, func() bool {
		state := httptest.NewRecorder()
		router.ServeHTTP(state, httptest.NewRequest(http.MethodGet, base+"/", nil))
		if state.Code != http.StatusOK {
			return false
		}
		body := decodeEnvelope(t, state)
		draft, ok := body["draft"].(map[string]any)
		if !ok {
			return false
		}
		slots, ok := draft["product_media"].([]any)
		if !ok || len(slots) != 1 {
			return false
		}
		slot, ok := slots[0].(map[string]any)
		return ok && slot["status"] == "done"
	}, waitFor, tick)

	rec = postJSON(router, base+"/submit", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, "prod-new", body["product_id"])

	require.Len(t, dispatcher.added, 1)
	assert.Equal(t, "Wireless Mouse Pro", dispatcher.added[0].Name)
	assert.Equal(t, "cat-1-1", dispatcher.added[0].CategoryID)

	assert.Equal(t, 0, mgr.Len())
}

func TestSelectMediaRejectsUnknownTarget(t *testing.T) {
	router, _, _ := newWizardEnv(t)
	id := startWizardSession(t, router)

	rec := postJSON(router, "/wizard/sessions/"+id+"/media", `{"target":"gallery","files":[]}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAbandonSessionRemovesIt(t *testing.T) {
	router, mgr, _ := newWizardEnv(t)
	id := startWizardSession(t, router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/wizard/sessions/"+id+"/", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, mgr.Len())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/wizard/sessions/"+id+"/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGoToStepOutOfRange(t *testing.T) {
	router, _, _ := newWizardEnv(t)
	id := startWizardSession(t, router)

	rec := postJSON(router, "/wizard/sessions/"+id+"/step", `{"step":9}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, "invalid_request", body["error"])
}
