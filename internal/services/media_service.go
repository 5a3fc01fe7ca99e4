package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/sellerdesk/api/internal/platform/auth"
	"github.com/sellerdesk/api/internal/platform/storage"
)

const (
	maxImageSizeBytes = 10 << 20
	maxVideoSizeBytes = 100 << 20

	publicStorageHost = "https://storage.googleapis.com"
)

var (
	// ErrMediaInvalidInput indicates a malformed upload request.
	ErrMediaInvalidInput = errors.New("media service: invalid input")
	// ErrMediaUnsupportedType indicates the content type is not accepted for the kind.
	ErrMediaUnsupportedType = errors.New("media service: unsupported content type")
	// ErrMediaTooLarge indicates the declared size exceeds the per-kind limit.
	ErrMediaTooLarge = errors.New("media service: file exceeds size limit")
	// ErrMediaForbidden indicates the caller may not access the requested object.
	ErrMediaForbidden = errors.New("media service: access denied")

	imageContentTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}
	videoContentTypes = []string{"video/mp4", "video/webm", "video/quicktime"}

	imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true}
	videoExtensions = map[string]bool{".mp4": true, ".webm": true, ".mov": true}
)

// MediaServiceDeps bundles constructor inputs for the media service.
type MediaServiceDeps struct {
	Storage   *storage.Client
	Bucket    string
	SignedTTL time.Duration
	Clock     func() time.Time
}

type mediaService struct {
	storage   *storage.Client
	bucket    string
	signedTTL time.Duration
	clock     func() time.Time
}

// NewMediaService constructs the media service with the supplied dependencies.
func NewMediaService(deps MediaServiceDeps) (MediaService, error) {
	if deps.Storage == nil {
		return nil, fmt.Errorf("media service: storage client is required")
	}
	bucket := strings.TrimSpace(deps.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("media service: bucket is required")
	}
	ttl := deps.SignedTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &mediaService{
		storage:   deps.Storage,
		bucket:    bucket,
		signedTTL: ttl,
		clock:     clock,
	}, nil
}

// SignUpload validates the request and issues a V4 signed PUT URL for the
// object, returning the public URL the stored file will resolve to.
func (s *mediaService) SignUpload(ctx context.Context, cmd SignUploadCommand) (SignedUpload, error) {
	if err := validateUploadCommand(cmd); err != nil {
		return SignedUpload{}, err
	}

	purpose := storage.PurposeProductImage
	if cmd.Promotional {
		purpose = storage.PurposePromoImage
	}
	objectPath, err := storage.BuildObjectPath(purpose, storage.PathParams{
		SellerID: cmd.SellerID,
		DraftID:  cmd.DraftID,
		UploadID: cmd.UploadID,
		FileName: cmd.FileName,
	})
	if err != nil {
		return SignedUpload{}, fmt.Errorf("%w: %v", ErrMediaInvalidInput, err)
	}

	allowed := imageContentTypes
	maxSize := int64(maxImageSizeBytes)
	if cmd.Kind == MediaKindVideo {
		allowed = videoContentTypes
		maxSize = maxVideoSizeBytes
	}

	result, err := s.storage.SignedURL(ctx, s.bucket, objectPath, storage.SignedURLOptions{
		Upload: &storage.UploadOptions{
			ContentType:         cmd.ContentType,
			AllowedContentTypes: allowed,
			MaxSize:             maxSize,
			ExpiresIn:           s.signedTTL,
		},
	})
	if err != nil {
		return SignedUpload{}, fmt.Errorf("media service: sign upload: %w", err)
	}

	return SignedUpload{
		UploadURL: result.URL,
		Method:    result.Method,
		Headers:   result.Headers,
		ExpiresAt: result.ExpiresAt,
		PublicURL: fmt.Sprintf("%s/%s/%s", publicStorageHost, s.bucket, objectPath),
		PublicID:  objectPath,
	}, nil
}

// SignDownload authorises access to a stored object and issues a short-lived
// signed GET URL. Sellers reach their own objects; staff and admins reach any.
func (s *mediaService) SignDownload(ctx context.Context, cmd SignDownloadCommand) (SignedDownload, error) {
	objectID := strings.TrimSpace(cmd.ObjectID)
	if objectID == "" {
		return SignedDownload{}, fmt.Errorf("%w: object id is required", ErrMediaInvalidInput)
	}
	ownerID, err := ownerFromObjectPath(objectID)
	if err != nil {
		return SignedDownload{}, fmt.Errorf("%w: %v", ErrMediaInvalidInput, err)
	}

	identity, _ := auth.IdentityFromContext(ctx)

	disposition := ""
	if fileName := strings.TrimSpace(cmd.FileName); fileName != "" {
		disposition = fmt.Sprintf("attachment; filename=%q", fileName)
	}

	result, err := s.storage.SignedURL(ctx, s.bucket, objectID, storage.SignedURLOptions{
		Download: &storage.DownloadOptions{
			OwnerID:     ownerID,
			Identity:    identity,
			Disposition: disposition,
		},
	})
	if err != nil {
		if errors.Is(err, storage.ErrPermissionDenied) {
			return SignedDownload{}, ErrMediaForbidden
		}
		return SignedDownload{}, fmt.Errorf("media service: sign download: %w", err)
	}

	return SignedDownload{
		DownloadURL: result.URL,
		Method:      result.Method,
		ExpiresAt:   result.ExpiresAt,
	}, nil
}

// ownerFromObjectPath recovers the owning seller from paths shaped like
// media/sellers/{sellerID}/... as produced by the storage path builders.
func ownerFromObjectPath(objectID string) (string, error) {
	if strings.Contains(objectID, "..") {
		return "", errors.New("object id contains traversal sequence")
	}
	segments := strings.Split(objectID, "/")
	if len(segments) < 4 || segments[0] != "media" || segments[1] != "sellers" || strings.TrimSpace(segments[2]) == "" {
		return "", errors.New("object id is not a seller media path")
	}
	return segments[2], nil
}

func validateUploadCommand(cmd SignUploadCommand) error {
	if strings.TrimSpace(cmd.SellerID) == "" {
		return fmt.Errorf("%w: seller id is required", ErrMediaInvalidInput)
	}
	if strings.TrimSpace(cmd.DraftID) == "" {
		return fmt.Errorf("%w: draft id is required", ErrMediaInvalidInput)
	}
	if strings.TrimSpace(cmd.UploadID) == "" {
		return fmt.Errorf("%w: upload id is required", ErrMediaInvalidInput)
	}
	fileName := strings.TrimSpace(cmd.FileName)
	if fileName == "" {
		return fmt.Errorf("%w: file name is required", ErrMediaInvalidInput)
	}

	kind := cmd.Kind
	if kind == "" {
		kind = MediaKindImage
	}

	ext := strings.ToLower(path.Ext(fileName))
	contentType := strings.ToLower(strings.TrimSpace(cmd.ContentType))
	switch kind {
	case MediaKindImage:
		if !imageExtensions[ext] {
			return fmt.Errorf("%w: extension %q is not an image", ErrMediaUnsupportedType, ext)
		}
		if contentType != "" && !containsString(imageContentTypes, contentType) {
			return fmt.Errorf("%w: %s", ErrMediaUnsupportedType, contentType)
		}
		if cmd.SizeBytes > maxImageSizeBytes {
			return ErrMediaTooLarge
		}
	case MediaKindVideo:
		if !videoExtensions[ext] {
			return fmt.Errorf("%w: extension %q is not a video", ErrMediaUnsupportedType, ext)
		}
		if contentType != "" && !containsString(videoContentTypes, contentType) {
			return fmt.Errorf("%w: %s", ErrMediaUnsupportedType, contentType)
		}
		if cmd.SizeBytes > maxVideoSizeBytes {
			return ErrMediaTooLarge
		}
	default:
		return fmt.Errorf("%w: unknown media kind %q", ErrMediaInvalidInput, kind)
	}
	return nil
}

func containsString(values []string, candidate string) bool {
	for _, value := range values {
		if value == candidate {
			return true
		}
	}
	return false
}
