package services

import (
	"context"
	"errors"
	"testing"

	domain "github.com/sellerdesk/api/internal/domain"
	"github.com/sellerdesk/api/internal/platform/auth"
	"github.com/sellerdesk/api/internal/wizard"
)

type adapterCatalogStub struct {
	CatalogService
	created CreateProductCommand
	updated UpdateProductCommand
	product domain.Product
	err     error
}

func (s *adapterCatalogStub) CreateProduct(_ context.Context, cmd CreateProductCommand) (domain.Product, error) {
	s.created = cmd
	return s.product, s.err
}

func (s *adapterCatalogStub) UpdateProduct(_ context.Context, cmd UpdateProductCommand) (domain.Product, error) {
	s.updated = cmd
	return s.product, s.err
}

func (s *adapterCatalogStub) GetProduct(_ context.Context, _ string) (domain.Product, error) {
	return s.product, s.err
}

type adapterMediaStub struct {
	signed  SignedUpload
	lastCmd SignUploadCommand
	err     error
}

func (s *adapterMediaStub) SignUpload(_ context.Context, cmd SignUploadCommand) (SignedUpload, error) {
	s.lastCmd = cmd
	return s.signed, s.err
}

func (s *adapterMediaStub) SignDownload(_ context.Context, _ SignDownloadCommand) (SignedDownload, error) {
	return SignedDownload{}, s.err
}

func sellerContext(uid string) context.Context {
	return auth.WithIdentity(context.Background(), &auth.Identity{UID: uid, Roles: []string{auth.RoleSeller}})
}

func TestWizardCatalogAdapterAddProduct(t *testing.T) {
	catalog := &adapterCatalogStub{product: domain.Product{ID: "prod-1"}}
	adapter, err := NewWizardCatalogAdapter(catalog)
	if err != nil {
		t.Fatalf("NewWizardCatalogAdapter: %v", err)
	}

	id, err := adapter.AddProduct(sellerContext("seller-9"), domain.CreateProductInput{Name: "Mouse"})
	if err != nil {
		t.Fatalf("AddProduct: %v", err)
	}
	if id != "prod-1" {
		t.Fatalf("id = %q, want prod-1", id)
	}
	if catalog.created.SellerID != "seller-9" {
		t.Fatalf("SellerID = %q, want seller-9", catalog.created.SellerID)
	}
	if catalog.created.Input.Name != "Mouse" {
		t.Fatalf("Input.Name = %q, want Mouse", catalog.created.Input.Name)
	}
}

func TestWizardCatalogAdapterRequiresIdentity(t *testing.T) {
	adapter, err := NewWizardCatalogAdapter(&adapterCatalogStub{})
	if err != nil {
		t.Fatalf("NewWizardCatalogAdapter: %v", err)
	}

	if _, err := adapter.AddProduct(context.Background(), domain.CreateProductInput{}); !errors.Is(err, ErrNoIdentity) {
		t.Fatalf("err = %v, want ErrNoIdentity", err)
	}
	if _, err := adapter.UpdateProduct(context.Background(), domain.UpdateProductInput{}); !errors.Is(err, ErrNoIdentity) {
		t.Fatalf("err = %v, want ErrNoIdentity", err)
	}
}

func TestWizardCatalogAdapterUpdateBindsSeller(t *testing.T) {
	catalog := &adapterCatalogStub{product: domain.Product{ID: "prod-2"}}
	adapter, _ := NewWizardCatalogAdapter(catalog)

	input := domain.UpdateProductInput{ID: "prod-2"}
	input.Name = "Renamed"
	if _, err := adapter.UpdateProduct(sellerContext("seller-3"), input); err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}
	if catalog.updated.SellerID != "seller-3" {
		t.Fatalf("SellerID = %q, want seller-3", catalog.updated.SellerID)
	}
	if catalog.updated.Input.ID != "prod-2" {
		t.Fatalf("Input.ID = %q, want prod-2", catalog.updated.Input.ID)
	}
}

func TestWizardUploadAdapterSignsAndResolvesRef(t *testing.T) {
	media := &adapterMediaStub{signed: SignedUpload{
		PublicURL: "https://cdn.example.com/sellers/seller-1/draft-1/a.jpg",
		PublicID:  "sellers/seller-1/draft-1/a.jpg",
	}}
	adapter, err := NewWizardUploadAdapter(media, "draft-1", func() string { return "upload-1" })
	if err != nil {
		t.Fatalf("NewWizardUploadAdapter: %v", err)
	}

	ref, err := adapter.Upload(sellerContext("seller-1"), wizard.TargetProductMedia, wizard.FileSelection{
		Name:        "a.jpg",
		ContentType: "image/jpeg",
		Size:        2048,
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if ref.URL != media.signed.PublicURL {
		t.Fatalf("URL = %q, want %q", ref.URL, media.signed.PublicURL)
	}
	if ref.MediaType != domain.MediaTypeImage {
		t.Fatalf("MediaType = %q, want image", ref.MediaType)
	}
	if media.lastCmd.SellerID != "seller-1" || media.lastCmd.DraftID != "draft-1" || media.lastCmd.UploadID != "upload-1" {
		t.Fatalf("unexpected sign command: %+v", media.lastCmd)
	}
	if media.lastCmd.Promotional {
		t.Fatal("Promotional = true for product media")
	}
}

func TestWizardUploadAdapterVideoKind(t *testing.T) {
	media := &adapterMediaStub{signed: SignedUpload{PublicURL: "https://cdn.example.com/v.mp4"}}
	adapter, _ := NewWizardUploadAdapter(media, "draft-1", func() string { return "upload-2" })

	ref, err := adapter.Upload(sellerContext("seller-1"), wizard.TargetPromotionalMedia, wizard.FileSelection{
		Name:        "v.mp4",
		ContentType: "video/mp4",
		Size:        1 << 20,
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if ref.MediaType != domain.MediaTypeVideo {
		t.Fatalf("MediaType = %q, want video", ref.MediaType)
	}
	if media.lastCmd.Kind != MediaKindVideo {
		t.Fatalf("Kind = %q, want video", media.lastCmd.Kind)
	}
	if !media.lastCmd.Promotional {
		t.Fatal("Promotional = false for promotional media")
	}
}

func TestWizardUploadAdapterPropagatesErrors(t *testing.T) {
	media := &adapterMediaStub{err: ErrMediaTooLarge}
	adapter, _ := NewWizardUploadAdapter(media, "draft-1", func() string { return "upload-3" })

	_, err := adapter.Upload(sellerContext("seller-1"), wizard.TargetProductMedia, wizard.FileSelection{
		Name:        "huge.jpg",
		ContentType: "image/jpeg",
		Size:        1 << 30,
	})
	if !errors.Is(err, ErrMediaTooLarge) {
		t.Fatalf("err = %v, want ErrMediaTooLarge", err)
	}
}

func TestWizardCategoryAdapter(t *testing.T) {
	if _, err := NewWizardCategoryAdapter(nil); err == nil {
		t.Fatal("expected error for nil category service")
	}
}
