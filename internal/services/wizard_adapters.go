package services

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/sellerdesk/api/internal/domain"
	"github.com/sellerdesk/api/internal/platform/auth"
	"github.com/sellerdesk/api/internal/wizard"
)

// ErrNoIdentity indicates a wizard collaborator was invoked without an
// authenticated seller on the context.
var ErrNoIdentity = errors.New("wizard adapter: no authenticated identity")

func sellerFromContext(ctx context.Context) (string, error) {
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok || identity == nil || identity.UID == "" {
		return "", ErrNoIdentity
	}
	return identity.UID, nil
}

// WizardCatalogAdapter routes wizard submissions and edit lookups to the
// in-process catalog service. The seller is recovered from the request
// identity, which survives into upload and dispatch goroutines because the
// session detaches deadlines without dropping context values.
type WizardCatalogAdapter struct {
	catalog CatalogService
}

// NewWizardCatalogAdapter wires the catalog service behind the wizard's
// dispatcher and product fetcher ports.
func NewWizardCatalogAdapter(catalog CatalogService) (*WizardCatalogAdapter, error) {
	if catalog == nil {
		return nil, errors.New("wizard adapter: catalog service is required")
	}
	return &WizardCatalogAdapter{catalog: catalog}, nil
}

// AddProduct submits a creation mutation on behalf of the seller in context.
func (a *WizardCatalogAdapter) AddProduct(ctx context.Context, input domain.CreateProductInput) (string, error) {
	sellerID, err := sellerFromContext(ctx)
	if err != nil {
		return "", err
	}
	product, err := a.catalog.CreateProduct(ctx, CreateProductCommand{SellerID: sellerID, Input: input})
	if err != nil {
		return "", fmt.Errorf("wizard adapter: create product: %w", err)
	}
	return product.ID, nil
}

// UpdateProduct submits an update mutation on behalf of the seller in context.
func (a *WizardCatalogAdapter) UpdateProduct(ctx context.Context, input domain.UpdateProductInput) (string, error) {
	sellerID, err := sellerFromContext(ctx)
	if err != nil {
		return "", err
	}
	product, err := a.catalog.UpdateProduct(ctx, UpdateProductCommand{SellerID: sellerID, Input: input})
	if err != nil {
		return "", fmt.Errorf("wizard adapter: update product: %w", err)
	}
	return product.ID, nil
}

// FetchProduct loads an existing product for the edit flow.
func (a *WizardCatalogAdapter) FetchProduct(ctx context.Context, productID string) (domain.Product, error) {
	return a.catalog.GetProduct(ctx, productID)
}

// WizardCategoryAdapter serves the immutable category tree to new sessions.
type WizardCategoryAdapter struct {
	categories CategoryService
}

// NewWizardCategoryAdapter wires the category service behind the wizard's
// category fetcher port.
func NewWizardCategoryAdapter(categories CategoryService) (*WizardCategoryAdapter, error) {
	if categories == nil {
		return nil, errors.New("wizard adapter: category service is required")
	}
	return &WizardCategoryAdapter{categories: categories}, nil
}

// FetchCategories returns the root category nodes with children and
// specification descriptors populated.
func (a *WizardCategoryAdapter) FetchCategories(ctx context.Context) ([]domain.CategoryNode, error) {
	return a.categories.ListCategories(ctx)
}

// WizardUploadAdapter authorises wizard media uploads through the media
// service. Signing validates the file and reserves the public location; the
// returned reference points at the object the client-side PUT will create.
type WizardUploadAdapter struct {
	media MediaService
	// draftID namespaces object paths for every upload this adapter signs.
	draftID string
	idGen   func() string
}

// NewWizardUploadAdapter wires the media service behind the wizard's uploader
// port. idGen keys individual uploads and must not return duplicates.
func NewWizardUploadAdapter(media MediaService, draftID string, idGen func() string) (*WizardUploadAdapter, error) {
	if media == nil {
		return nil, errors.New("wizard adapter: media service is required")
	}
	if draftID == "" {
		return nil, errors.New("wizard adapter: draft id is required")
	}
	if idGen == nil {
		return nil, errors.New("wizard adapter: id generator is required")
	}
	return &WizardUploadAdapter{media: media, draftID: draftID, idGen: idGen}, nil
}

// Upload signs the file against the media service and returns the resolved
// public reference.
func (a *WizardUploadAdapter) Upload(ctx context.Context, target wizard.MediaTarget, file wizard.FileSelection) (domain.MediaRef, error) {
	sellerID, err := sellerFromContext(ctx)
	if err != nil {
		return domain.MediaRef{}, err
	}
	kind := MediaKindImage
	if isVideoContentType(file.ContentType) {
		kind = MediaKindVideo
	}
	signed, err := a.media.SignUpload(ctx, SignUploadCommand{
		SellerID:    sellerID,
		DraftID:     a.draftID,
		UploadID:    a.idGen(),
		FileName:    file.Name,
		ContentType: file.ContentType,
		SizeBytes:   file.Size,
		Kind:        kind,
		Promotional: target == wizard.TargetPromotionalMedia,
	})
	if err != nil {
		return domain.MediaRef{}, fmt.Errorf("wizard adapter: sign upload: %w", err)
	}
	mediaType := domain.MediaTypeImage
	if kind == MediaKindVideo {
		mediaType = domain.MediaTypeVideo
	}
	return domain.MediaRef{
		URL:       signed.PublicURL,
		MediaType: mediaType,
		PublicID:  signed.PublicID,
	}, nil
}

func isVideoContentType(contentType string) bool {
	return len(contentType) > 6 && contentType[:6] == "video/"
}
