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

	"github.com/sellerdesk/api/internal/platform/auth"
	"github.com/sellerdesk/api/internal/services"
)

type stubMediaService struct {
	signed          services.SignedUpload
	download        services.SignedDownload
	err             error
	lastCmd         services.SignUploadCommand
	lastDownloadCmd services.SignDownloadCommand
}

func (s *stubMediaService) SignUpload(_ context.Context, cmd services.SignUploadCommand) (services.SignedUpload, error) {
	s.lastCmd = cmd
	return s.signed, s.err
}

func (s *stubMediaService) SignDownload(_ context.Context, cmd services.SignDownloadCommand) (services.SignedDownload, error) {
	s.lastDownloadCmd = cmd
	return s.download, s.err
}

func newMediaRouter(svc services.MediaService) chi.Router {
	r := chi.NewRouter()
	r.Route("/media", NewMediaHandlers(nil, svc).Routes)
	return r
}

func signRequest(t *testing.T, router chi.Router, identity *auth.Identity, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/media/sign", strings.NewReader(body))
	if identity != nil {
		req = req.WithContext(auth.WithIdentity(req.Context(), identity))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSignUploadBindsSellerFromIdentity(t *testing.T) {
	svc := &stubMediaService{signed: services.SignedUpload{
		UploadURL: "https://storage.example.com/upload?sig=abc",
		Method:    http.MethodPut,
		Headers:   map[string]string{"Content-Type": "image/jpeg"},
		ExpiresAt: time.Date(2026, time.March, 4, 10, 0, 0, 0, time.UTC),
		PublicURL: "https://cdn.example.com/sellers/seller-1/draft-1/a.jpg",
		PublicID:  "sellers/seller-1/draft-1/a.jpg",
	}}
	router := newMediaRouter(svc)

	body := `{
		"draft_id": "draft-1",
		"upload_id": "upload-1",
		"file_name": "a.jpg",
		"content_type": "image/jpeg",
		"size_bytes": 2048
	}`
	rec := signRequest(t, router, &auth.Identity{UID: "seller-1", Roles: []string{auth.RoleSeller}}, body)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "seller-1", svc.lastCmd.SellerID)
	assert.Equal(t, "draft-1", svc.lastCmd.DraftID)
	assert.Equal(t, "a.jpg", svc.lastCmd.FileName)
	assert.EqualValues(t, 2048, svc.lastCmd.SizeBytes)

	resp := decodeEnvelope(t, rec)
	assert.Equal(t, http.MethodPut, resp["method"])
	assert.Equal(t, "sellers/seller-1/draft-1/a.jpg", resp["public_id"])
}

func TestSignUploadRequiresIdentity(t *testing.T) {
	router := newMediaRouter(&stubMediaService{})

	rec := signRequest(t, router, nil, `{"draft_id":"draft-1"}`)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, "unauthenticated", body["error"])
}

func downloadRequest(t *testing.T, router chi.Router, identity *auth.Identity, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/media/download", strings.NewReader(body))
	if identity != nil {
		req = req.WithContext(auth.WithIdentity(req.Context(), identity))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSignDownloadBindsObjectAndFileName(t *testing.T) {
	svc := &stubMediaService{download: services.SignedDownload{
		DownloadURL: "https://storage.example.com/download?sig=abc",
		Method:      http.MethodGet,
		ExpiresAt:   time.Date(2026, time.March, 4, 10, 5, 0, 0, time.UTC),
	}}
	router := newMediaRouter(svc)

	body := `{"object_id": "media/sellers/seller-1/drafts/draft-1/products/upload-1/a.jpg", "file_name": "a.jpg"}`
	rec := downloadRequest(t, router, &auth.Identity{UID: "seller-1", Roles: []string{auth.RoleSeller}}, body)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "media/sellers/seller-1/drafts/draft-1/products/upload-1/a.jpg", svc.lastDownloadCmd.ObjectID)
	assert.Equal(t, "a.jpg", svc.lastDownloadCmd.FileName)

	resp := decodeEnvelope(t, rec)
	assert.Equal(t, http.MethodGet, resp["method"])
	assert.Equal(t, "https://storage.example.com/download?sig=abc", resp["download_url"])
}

func TestSignDownloadRequiresIdentity(t *testing.T) {
	router := newMediaRouter(&stubMediaService{})

	rec := downloadRequest(t, router, nil, `{"object_id":"media/sellers/seller-1/x.jpg"}`)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, "unauthenticated", body["error"])
}

func TestSignDownloadForbidden(t *testing.T) {
	router := newMediaRouter(&stubMediaService{err: services.ErrMediaForbidden})

	rec := downloadRequest(t, router, &auth.Identity{UID: "seller-2"}, `{"object_id":"media/sellers/seller-1/x.jpg"}`)

	require.Equal(t, http.StatusForbidden, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, "media_forbidden", body["error"])
}

func TestSignUploadUnsupportedType(t *testing.T) {
	router := newMediaRouter(&stubMediaService{err: services.ErrMediaUnsupportedType})

	rec := signRequest(t, router, &auth.Identity{UID: "seller-1"}, `{"draft_id":"d","upload_id":"u","file_name":"a.exe","content_type":"application/octet-stream","size_bytes":10}`)

	require.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, "unsupported_media_type", body["error"])
}

func TestSignUploadTooLarge(t *testing.T) {
	router := newMediaRouter(&stubMediaService{err: services.ErrMediaTooLarge})

	rec := signRequest(t, router, &auth.Identity{UID: "seller-1"}, `{"draft_id":"d","upload_id":"u","file_name":"a.jpg","content_type":"image/jpeg","size_bytes":99999999}`)

	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, "media_too_large", body["error"])
}
