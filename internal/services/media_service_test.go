package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sellerdesk/api/internal/platform/auth"
	"github.com/sellerdesk/api/internal/platform/storage"
)

type fakeSigner struct{}

func (fakeSigner) Email() string { return "uploads@sellerdesk-test.iam.gserviceaccount.com" }

func (fakeSigner) SignBytes(ctx context.Context, payload []byte) ([]byte, error) {
	return []byte("signature"), nil
}

func newMediaServiceForTest(t *testing.T, now time.Time) MediaService {
	t.Helper()
	client, err := storage.NewClient(fakeSigner{}, storage.WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("storage.NewClient: %v", err)
	}
	svc, err := NewMediaService(MediaServiceDeps{
		Storage:   client,
		Bucket:    "sellerdesk-media",
		SignedTTL: 10 * time.Minute,
		Clock:     func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("NewMediaService: %v", err)
	}
	return svc
}

func validUploadCommand() SignUploadCommand {
	return SignUploadCommand{
		SellerID:    "seller-1",
		DraftID:     "draft-1",
		UploadID:    "upload-1",
		FileName:    "mouse.jpg",
		ContentType: "image/jpeg",
		SizeBytes:   1 << 20,
		Kind:        MediaKindImage,
	}
}

func TestMediaServiceSignUpload(t *testing.T) {
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	svc := newMediaServiceForTest(t, now)

	signed, err := svc.SignUpload(context.Background(), validUploadCommand())
	if err != nil {
		t.Fatalf("SignUpload: %v", err)
	}
	if signed.Method != "PUT" {
		t.Fatalf("expected PUT, got %s", signed.Method)
	}
	if signed.ExpiresAt != now.Add(10*time.Minute) {
		t.Fatalf("expected expiry %s, got %s", now.Add(10*time.Minute), signed.ExpiresAt)
	}
	if signed.UploadURL == "" {
		t.Fatalf("expected a signed url")
	}
	if signed.PublicID == "" || !strings.Contains(signed.PublicID, "seller-1") {
		t.Fatalf("expected object path scoped to the seller, got %s", signed.PublicID)
	}
	if !strings.HasPrefix(signed.PublicURL, "https://storage.googleapis.com/sellerdesk-media/") {
		t.Fatalf("unexpected public url %s", signed.PublicURL)
	}
	if !strings.HasSuffix(signed.PublicURL, signed.PublicID) {
		t.Fatalf("expected public url to end with the object path, got %s", signed.PublicURL)
	}
	if signed.Headers["Content-Type"] != "image/jpeg" {
		t.Fatalf("expected content type header, got %v", signed.Headers)
	}
	if signed.Headers["x-goog-content-length-range"] != "0,10485760" {
		t.Fatalf("expected size cap header, got %v", signed.Headers)
	}
}

func TestMediaServiceSignUploadPromotionalPath(t *testing.T) {
	svc := newMediaServiceForTest(t, time.Now())

	cmd := validUploadCommand()
	cmd.Promotional = true

	signed, err := svc.SignUpload(context.Background(), cmd)
	if err != nil {
		t.Fatalf("SignUpload: %v", err)
	}
	plain, err := svc.SignUpload(context.Background(), validUploadCommand())
	if err != nil {
		t.Fatalf("SignUpload: %v", err)
	}
	if signed.PublicID == plain.PublicID {
		t.Fatalf("expected promotional uploads to live under a separate path, got %s", signed.PublicID)
	}
}

func TestMediaServiceSignUploadValidation(t *testing.T) {
	svc := newMediaServiceForTest(t, time.Now())

	cases := []struct {
		name   string
		mutate func(*SignUploadCommand)
		want   error
	}{
		{"missing seller", func(c *SignUploadCommand) { c.SellerID = " " }, ErrMediaInvalidInput},
		{"missing draft", func(c *SignUploadCommand) { c.DraftID = "" }, ErrMediaInvalidInput},
		{"missing upload id", func(c *SignUploadCommand) { c.UploadID = "" }, ErrMediaInvalidInput},
		{"missing file name", func(c *SignUploadCommand) { c.FileName = "" }, ErrMediaInvalidInput},
		{"wrong extension", func(c *SignUploadCommand) { c.FileName = "mouse.exe" }, ErrMediaUnsupportedType},
		{"video extension for image", func(c *SignUploadCommand) { c.FileName = "mouse.mp4" }, ErrMediaUnsupportedType},
		{"content type mismatch", func(c *SignUploadCommand) { c.ContentType = "application/pdf" }, ErrMediaUnsupportedType},
		{"image too large", func(c *SignUploadCommand) { c.SizeBytes = 11 << 20 }, ErrMediaTooLarge},
		{"unknown kind", func(c *SignUploadCommand) { c.Kind = "audio" }, ErrMediaInvalidInput},
	}
	for _, tc := range cases {
		cmd := validUploadCommand()
		tc.mutate(&cmd)
		if _, err := svc.SignUpload(context.Background(), cmd); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func identityContext(uid string, roles ...string) context.Context {
	return auth.WithIdentity(context.Background(), &auth.Identity{UID: uid, Roles: roles})
}

func TestMediaServiceSignDownloadOwner(t *testing.T) {
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	svc := newMediaServiceForTest(t, now)

	objectID := "media/sellers/seller-1/drafts/draft-1/products/upload-1/mouse.jpg"
	signed, err := svc.SignDownload(identityContext("seller-1"), SignDownloadCommand{
		ObjectID: objectID,
		FileName: "mouse.jpg",
	})
	if err != nil {
		t.Fatalf("SignDownload: %v", err)
	}
	if signed.Method != "GET" {
		t.Fatalf("expected GET, got %s", signed.Method)
	}
	if signed.DownloadURL == "" {
		t.Fatalf("expected a signed url")
	}
	if !strings.Contains(signed.DownloadURL, "response-content-disposition") {
		t.Fatalf("expected disposition query parameter, got %s", signed.DownloadURL)
	}
	if signed.ExpiresAt != now.Add(5*time.Minute) {
		t.Fatalf("expected short-lived expiry %s, got %s", now.Add(5*time.Minute), signed.ExpiresAt)
	}
}

func TestMediaServiceSignDownloadStaffAccess(t *testing.T) {
	svc := newMediaServiceForTest(t, time.Now())

	objectID := "media/sellers/seller-1/drafts/draft-1/products/upload-1/mouse.jpg"
	if _, err := svc.SignDownload(identityContext("staff-1", auth.RoleStaff), SignDownloadCommand{ObjectID: objectID}); err != nil {
		t.Fatalf("SignDownload for staff: %v", err)
	}
}

func TestMediaServiceSignDownloadDenied(t *testing.T) {
	svc := newMediaServiceForTest(t, time.Now())

	objectID := "media/sellers/seller-1/drafts/draft-1/products/upload-1/mouse.jpg"
	if _, err := svc.SignDownload(identityContext("seller-2"), SignDownloadCommand{ObjectID: objectID}); !errors.Is(err, ErrMediaForbidden) {
		t.Fatalf("expected ErrMediaForbidden for a foreign seller, got %v", err)
	}
	if _, err := svc.SignDownload(context.Background(), SignDownloadCommand{ObjectID: objectID}); !errors.Is(err, ErrMediaForbidden) {
		t.Fatalf("expected ErrMediaForbidden without identity, got %v", err)
	}
}

func TestMediaServiceSignDownloadValidation(t *testing.T) {
	svc := newMediaServiceForTest(t, time.Now())

	cases := []string{
		"",
		"uploads/mouse.jpg",
		"media/sellers//mouse.jpg",
		"media/sellers/../secrets/mouse.jpg",
	}
	for _, objectID := range cases {
		if _, err := svc.SignDownload(identityContext("seller-1"), SignDownloadCommand{ObjectID: objectID}); !errors.Is(err, ErrMediaInvalidInput) {
			t.Fatalf("object id %q: expected ErrMediaInvalidInput, got %v", objectID, err)
		}
	}
}

func TestMediaServiceSignUploadVideoLimits(t *testing.T) {
	svc := newMediaServiceForTest(t, time.Now())

	cmd := validUploadCommand()
	cmd.Kind = MediaKindVideo
	cmd.FileName = "demo.mp4"
	cmd.ContentType = "video/mp4"
	cmd.SizeBytes = 50 << 20

	if _, err := svc.SignUpload(context.Background(), cmd); err != nil {
		t.Fatalf("SignUpload: %v", err)
	}

	cmd.SizeBytes = 101 << 20
	if _, err := svc.SignUpload(context.Background(), cmd); !errors.Is(err, ErrMediaTooLarge) {
		t.Fatalf("expected ErrMediaTooLarge, got %v", err)
	}
}
