package firestore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/sellerdesk/api/internal/domain"
	"github.com/sellerdesk/api/internal/platform/config"
	pfirestore "github.com/sellerdesk/api/internal/platform/firestore"
)

func newCatalogRepositoryForTest(t *testing.T) *CatalogRepository {
	t.Helper()
	provider := pfirestore.NewProvider(config.FirestoreConfig{ProjectID: "catalog-test"})
	repo, err := NewCatalogRepository(provider)
	require.NoError(t, err)
	return repo
}

func TestNewCatalogRepositoryRequiresProvider(t *testing.T) {
	_, err := NewCatalogRepository(nil)
	require.Error(t, err)
}

func TestCatalogRepositoryInsertValidation(t *testing.T) {
	repo := newCatalogRepositoryForTest(t)

	err := repo.Insert(context.Background(), domain.Product{Slug: "wireless-mouse"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "product id")

	err = repo.Insert(context.Background(), domain.Product{ID: "prod-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slug")
}

func TestCatalogRepositoryUpdateValidation(t *testing.T) {
	repo := newCatalogRepositoryForTest(t)

	err := repo.Update(context.Background(), domain.Product{Slug: "wireless-mouse"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "product id")

	err = repo.Update(context.Background(), domain.Product{ID: "prod-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slug")
}

func TestCatalogRepositoryDeleteValidation(t *testing.T) {
	repo := newCatalogRepositoryForTest(t)

	err := repo.Delete(context.Background(), "  ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "product id")
}

func TestProductDocumentRoundTrip(t *testing.T) {
	compare := 59.90
	created := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)
	product := domain.Product{
		ID:          "prod-1",
		SellerID:    "seller-1",
		Name:        "Wireless Mouse Pro",
		Slug:        "wireless-mouse-pro",
		Description: "Low latency wireless mouse.",
		Status:      domain.ProductStatusActive,
		CategoryID:  "cat-1-1",
		Features:    []string{"2.4GHz", "USB-C"},
		Variants: []domain.ProductVariant{{
			ID:        "var-1",
			SKU:       "WM-100",
			Price:     49.90,
			Stock:     12,
			IsDefault: true,
			Attributes: domain.VariantAttributes{
				ComparePrice:  &compare,
				TrackQuantity: true,
				ShippingClass: domain.ShippingClassStandard,
			},
			Specifications: []domain.ProductSpecification{{ID: "spec-1", Key: "color", Value: "black"}},
		}},
		Images: []domain.ProductImage{{
			ID:        "img-1",
			URL:       "https://cdn.example.com/a.jpg",
			AltText:   "Front view",
			SortOrder: 0,
			Type:      domain.ImageTypePrimary,
		}},
		CreatedAt: created,
		UpdatedAt: updated,
	}

	doc := encodeProductDocument(product)
	decoded := decodeProductDocument(product.ID, doc, created, updated)

	assert.Equal(t, product, decoded)
}
