package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/sellerdesk/api/internal/domain"
)

func TestDraftUpdateFieldCategoryChangeResetsSelection(t *testing.T) {
	draft := NewDraft()
	require.NoError(t, draft.UpdateField(FieldCategoryID, "cat-x"))
	require.NoError(t, draft.UpdateField(FieldSubcategoryID, "cat-x-1"))
	draft.SetSpecification("color", "black")
	draft.SetSpecification("size", "M")

	require.NoError(t, draft.UpdateField(FieldCategoryID, "cat-y"))

	assert.Equal(t, "cat-y", draft.CategoryID)
	assert.Empty(t, draft.SubcategoryID)
	assert.Empty(t, draft.Specifications)
	assert.Empty(t, draft.SpecificationEntries())
}

func TestDraftUpdateFieldIsIdempotent(t *testing.T) {
	draft := NewDraft()
	require.NoError(t, draft.UpdateField(FieldTitle, "Wireless Mouse"))
	first := *draft
	require.NoError(t, draft.UpdateField(FieldTitle, "Wireless Mouse"))
	assert.Equal(t, first.Title, draft.Title)
}

func TestDraftUpdateFieldRejectsUnknownField(t *testing.T) {
	draft := NewDraft()
	err := draft.UpdateField("nonsense", "x")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestDraftUpdateFieldParsesTypedValues(t *testing.T) {
	draft := NewDraft()
	require.NoError(t, draft.UpdateField(FieldTrackQuantity, "true"))
	assert.True(t, draft.TrackQuantity)

	assert.ErrorIs(t, draft.UpdateField(FieldTrackQuantity, "yes please"), ErrInvalidFieldValue)

	require.NoError(t, draft.UpdateField(FieldShippingClass, "express"))
	assert.Equal(t, domain.ShippingClassExpress, draft.ShippingClass)

	assert.ErrorIs(t, draft.UpdateField(FieldShippingClass, "teleport"), ErrInvalidFieldValue)
}

func TestDraftFeatureOrdering(t *testing.T) {
	draft := NewDraft()
	draft.AddFeature("2.4GHz receiver")
	draft.AddFeature("  Silent clicks  ")
	draft.AddFeature("")

	require.Equal(t, []string{"2.4GHz receiver", "Silent clicks"}, draft.Features)

	draft.RemoveFeature(0)
	assert.Equal(t, []string{"Silent clicks"}, draft.Features)

	draft.RemoveFeature(5)
	assert.Equal(t, []string{"Silent clicks"}, draft.Features)
}

func TestDraftSpecificationInsertionOrder(t *testing.T) {
	draft := NewDraft()
	draft.SetSpecification("color", "black")
	draft.SetSpecification("size", "M")
	draft.SetSpecification("color", "red")

	entries := draft.SpecificationEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, domain.SpecificationInput{Key: "color", Value: "red"}, entries[0])
	assert.Equal(t, domain.SpecificationInput{Key: "size", Value: "M"}, entries[1])

	draft.RemoveSpecification("color")
	entries = draft.SpecificationEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, "size", entries[0].Key)
}

func TestNewDraftFromProduct(t *testing.T) {
	compare := 59.99
	product := domain.Product{
		ID:          "prod-1",
		Name:        "Wireless Mouse",
		Description: "A quiet wireless mouse.",
		CategoryID:  "cat-1-1",
		BrandID:     "brand-1",
		Features:    []string{"Silent clicks"},
		Variants: []domain.ProductVariant{{
			SKU:       "WM-100",
			Price:     49.9,
			Stock:     12,
			IsDefault: true,
			Attributes: domain.VariantAttributes{
				ComparePrice:  &compare,
				TrackQuantity: true,
				Weight:        "0.1kg",
				ShippingClass: domain.ShippingClassExpress,
			},
			Specifications: []domain.ProductSpecification{
				{Key: "color", Value: "black"},
				{Key: "dpi", Value: "1600"},
			},
		}},
		Images: []domain.ProductImage{
			{ID: "img-2", URL: "https://cdn.example.com/b.jpg", SortOrder: 1, Type: domain.ImageTypePrimary},
			{ID: "img-1", URL: "https://cdn.example.com/a.jpg", SortOrder: 0, Type: domain.ImageTypePrimary},
			{ID: "img-3", URL: "https://cdn.example.com/promo.jpg", SortOrder: 0, Type: domain.ImageTypePromotional},
		},
	}
	roots := []domain.CategoryNode{
		{ID: "cat-2", Name: "Audio"},
		{ID: "cat-1", Name: "Electronics", Children: []domain.CategoryNode{{ID: "cat-1-1", Name: "Mice"}}},
	}

	draft := NewDraftFromProduct(product, roots)

	assert.Equal(t, "Wireless Mouse", draft.Title)
	assert.Equal(t, "cat-1", draft.CategoryID)
	assert.Equal(t, "cat-1-1", draft.SubcategoryID)
	assert.Equal(t, "brand-1", draft.BrandID)
	assert.Equal(t, "WM-100", draft.SKU)
	assert.Equal(t, "49.9", draft.Price)
	assert.Equal(t, "59.99", draft.ComparePrice)
	assert.Equal(t, "12", draft.Stock)
	assert.True(t, draft.TrackQuantity)
	assert.Equal(t, domain.ShippingClassExpress, draft.ShippingClass)
	assert.Equal(t, "black", draft.Specifications["color"])
	assert.Equal(t, "1600", draft.Specifications["dpi"])

	require.Len(t, draft.ProductMedia, 2)
	assert.Equal(t, "https://cdn.example.com/a.jpg", draft.ProductMedia[0].Ref.URL)
	assert.Equal(t, "https://cdn.example.com/b.jpg", draft.ProductMedia[1].Ref.URL)
	require.Len(t, draft.PromotionalMedia, 1)
	assert.Equal(t, SlotDone, draft.PromotionalMedia[0].Status)
}
