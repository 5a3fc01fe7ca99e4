package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sellerdesk/api/internal/platform/auth"
	"github.com/sellerdesk/api/internal/platform/httpx"
	"github.com/sellerdesk/api/internal/services"
)

// MediaHandlers issues signed upload URLs for client-side media uploads.
type MediaHandlers struct {
	authn *auth.Authenticator
	media services.MediaService
}

// NewMediaHandlers constructs the media endpoints.
func NewMediaHandlers(authn *auth.Authenticator, media services.MediaService) *MediaHandlers {
	return &MediaHandlers{authn: authn, media: media}
}

// Routes registers the /media endpoints.
func (h *MediaHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.With(h.authn.RequireFirebaseAuth(auth.RoleSeller)).Post("/sign", h.signUpload)
		r.With(h.authn.RequireFirebaseAuth(auth.RoleSeller, auth.RoleStaff, auth.RoleAdmin)).Post("/download", h.signDownload)
		return
	}
	r.Post("/sign", h.signUpload)
	r.Post("/download", h.signDownload)
}

type signUploadRequest struct {
	DraftID     string `json:"draft_id"`
	UploadID    string `json:"upload_id"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
	Kind        string `json:"kind,omitempty"`
	Promotional bool   `json:"promotional,omitempty"`
}

type signUploadResponse struct {
	UploadURL string            `json:"upload_url"`
	Method    string            `json:"method"`
	Headers   map[string]string `json:"headers,omitempty"`
	ExpiresAt string            `json:"expires_at"`
	PublicURL string            `json:"public_url"`
	PublicID  string            `json:"public_id"`
}

func (h *MediaHandlers) signUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.media == nil {
		httpx.WriteError(ctx, w, httpx.NewError("media_service_unavailable", "media service unavailable", http.StatusServiceUnavailable))
		return
	}
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok || identity == nil {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return
	}
	var req signUploadRequest
	if err := decodeJSONBody(r, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	signed, err := h.media.SignUpload(ctx, services.SignUploadCommand{
		SellerID:    identity.UID,
		DraftID:     strings.TrimSpace(req.DraftID),
		UploadID:    strings.TrimSpace(req.UploadID),
		FileName:    strings.TrimSpace(req.FileName),
		ContentType: strings.TrimSpace(req.ContentType),
		SizeBytes:   req.SizeBytes,
		Kind:        services.MediaKind(strings.TrimSpace(req.Kind)),
		Promotional: req.Promotional,
	})
	if err != nil {
		writeMediaError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, signUploadResponse{
		UploadURL: signed.UploadURL,
		Method:    signed.Method,
		Headers:   signed.Headers,
		ExpiresAt: formatTime(signed.ExpiresAt),
		PublicURL: signed.PublicURL,
		PublicID:  signed.PublicID,
	})
}

type signDownloadRequest struct {
	ObjectID string `json:"object_id"`
	FileName string `json:"file_name,omitempty"`
}

type signDownloadResponse struct {
	DownloadURL string `json:"download_url"`
	Method      string `json:"method"`
	ExpiresAt   string `json:"expires_at"`
}

func (h *MediaHandlers) signDownload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.media == nil {
		httpx.WriteError(ctx, w, httpx.NewError("media_service_unavailable", "media service unavailable", http.StatusServiceUnavailable))
		return
	}
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok || identity == nil {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return
	}
	var req signDownloadRequest
	if err := decodeJSONBody(r, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	signed, err := h.media.SignDownload(ctx, services.SignDownloadCommand{
		ObjectID: strings.TrimSpace(req.ObjectID),
		FileName: strings.TrimSpace(req.FileName),
	})
	if err != nil {
		writeMediaError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, signDownloadResponse{
		DownloadURL: signed.DownloadURL,
		Method:      signed.Method,
		ExpiresAt:   formatTime(signed.ExpiresAt),
	})
}

func writeMediaError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	switch {
	case errors.Is(err, services.ErrMediaUnsupportedType):
		httpx.WriteError(ctx, w, httpx.NewError("unsupported_media_type", err.Error(), http.StatusUnsupportedMediaType))
	case errors.Is(err, services.ErrMediaTooLarge):
		httpx.WriteError(ctx, w, httpx.NewError("media_too_large", err.Error(), http.StatusRequestEntityTooLarge))
	case errors.Is(err, services.ErrMediaForbidden):
		httpx.WriteError(ctx, w, httpx.NewError("media_forbidden", "access to the media object is denied", http.StatusForbidden))
	case errors.Is(err, services.ErrMediaInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("media_error", "media operation failed", http.StatusInternalServerError))
	}
}
