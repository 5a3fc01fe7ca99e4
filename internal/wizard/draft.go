package wizard

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	domain "github.com/sellerdesk/api/internal/domain"
)

// Draft field names. They double as the keys of ValidationErrors.
const (
	FieldTitle         = "title"
	FieldBrandID       = "brandId"
	FieldCategoryID    = "categoryId"
	FieldSubcategoryID = "subcategoryId"
	FieldDescription   = "description"
	FieldPrice         = "price"
	FieldComparePrice  = "comparePrice"
	FieldCostPrice     = "costPrice"
	FieldSKU           = "sku"
	FieldStock         = "stock"
	FieldTrackQuantity = "trackQuantity"
	FieldWeight        = "weight"
	FieldDimensions    = "dimensions"
	FieldShippingClass = "shippingClass"
	FieldReturnPolicy  = "returnPolicy"
	FieldWarranty      = "warranty"

	// FieldProductMedia is not settable through UpdateField; it is the error
	// key used by the step-4 validator.
	FieldProductMedia = "productMedia"
)

// ProductDraft is the in-progress product record owned by one form session.
// Numeric fields stay strings until the submission transform parses them.
type ProductDraft struct {
	Title         string
	BrandID       string
	CategoryID    string
	SubcategoryID string
	Description   string

	Features       []string
	Specifications map[string]string
	specOrder      []string

	Price        string
	ComparePrice string
	CostPrice    string

	SKU           string
	Stock         string
	TrackQuantity bool

	ProductMedia     []MediaSlot
	PromotionalMedia []MediaSlot

	Weight        string
	Dimensions    string
	ShippingClass domain.ShippingClass

	ReturnPolicy string
	Warranty     string
}

// NewDraft returns an empty draft for the add flow.
func NewDraft() *ProductDraft {
	return &ProductDraft{
		Specifications: map[string]string{},
		ShippingClass:  domain.ShippingClassStandard,
	}
}

// UpdateField replaces one named field with the given value. Updating
// categoryId resets the subcategory selection and clears all specification
// values, since the prior descriptor set no longer applies.
func (d *ProductDraft) UpdateField(field, value string) error {
	switch field {
	case FieldTitle:
		d.Title = value
	case FieldBrandID:
		d.BrandID = value
	case FieldCategoryID:
		d.CategoryID = value
		d.SubcategoryID = ""
		d.Specifications = map[string]string{}
		d.specOrder = nil
	case FieldSubcategoryID:
		d.SubcategoryID = value
	case FieldDescription:
		d.Description = value
	case FieldPrice:
		d.Price = value
	case FieldComparePrice:
		d.ComparePrice = value
	case FieldCostPrice:
		d.CostPrice = value
	case FieldSKU:
		d.SKU = value
	case FieldStock:
		d.Stock = value
	case FieldTrackQuantity:
		parsed, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: trackQuantity must be a boolean, got %q", ErrInvalidFieldValue, value)
		}
		d.TrackQuantity = parsed
	case FieldWeight:
		d.Weight = value
	case FieldDimensions:
		d.Dimensions = value
	case FieldShippingClass:
		class := domain.ShippingClass(strings.TrimSpace(value))
		switch class {
		case domain.ShippingClassStandard, domain.ShippingClassExpress, domain.ShippingClassOvernight, domain.ShippingClassFree:
			d.ShippingClass = class
		default:
			return fmt.Errorf("%w: unknown shipping class %q", ErrInvalidFieldValue, value)
		}
	case FieldReturnPolicy:
		d.ReturnPolicy = value
	case FieldWarranty:
		d.Warranty = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// AddFeature appends one feature chip, preserving entry order.
func (d *ProductDraft) AddFeature(feature string) {
	feature = strings.TrimSpace(feature)
	if feature == "" {
		return
	}
	d.Features = append(d.Features, feature)
}

// RemoveFeature drops the feature at index; out-of-range indexes are ignored.
func (d *ProductDraft) RemoveFeature(index int) {
	if index < 0 || index >= len(d.Features) {
		return
	}
	d.Features = append(d.Features[:index], d.Features[index+1:]...)
}

// SetSpecification stores one specification value, remembering first-set order
// for keys outside the active descriptor list.
func (d *ProductDraft) SetSpecification(key, value string) {
	key = strings.TrimSpace(key)
	if key == "" {
		return
	}
	if d.Specifications == nil {
		d.Specifications = map[string]string{}
	}
	if _, exists := d.Specifications[key]; !exists {
		d.specOrder = append(d.specOrder, key)
	}
	d.Specifications[key] = value
}

// RemoveSpecification deletes one specification value.
func (d *ProductDraft) RemoveSpecification(key string) {
	if _, exists := d.Specifications[key]; !exists {
		return
	}
	delete(d.Specifications, key)
	for i, existing := range d.specOrder {
		if existing == key {
			d.specOrder = append(d.specOrder[:i], d.specOrder[i+1:]...)
			break
		}
	}
}

// SpecificationEntries returns the specification pairs in insertion order.
func (d *ProductDraft) SpecificationEntries() []domain.SpecificationInput {
	entries := make([]domain.SpecificationInput, 0, len(d.specOrder))
	for _, key := range d.specOrder {
		entries = append(entries, domain.SpecificationInput{Key: key, Value: d.Specifications[key]})
	}
	return entries
}

// NewDraftFromProduct hydrates a draft for the edit flow. The persisted
// categoryId is the leaf node; the parent selection is recovered from the tree.
func NewDraftFromProduct(product domain.Product, roots []domain.CategoryNode) *ProductDraft {
	draft := NewDraft()
	draft.Title = product.Name
	draft.Description = product.Description
	draft.BrandID = product.BrandID
	draft.SubcategoryID = product.CategoryID
	draft.Features = append([]string(nil), product.Features...)

	for _, root := range roots {
		if _, ok := root.FindChild(product.CategoryID); ok {
			draft.CategoryID = root.ID
			break
		}
	}

	if variant, ok := product.DefaultVariant(); ok {
		draft.SKU = variant.SKU
		draft.Price = formatDecimal(variant.Price)
		draft.Stock = strconv.Itoa(variant.Stock)
		draft.TrackQuantity = variant.Attributes.TrackQuantity
		if variant.Attributes.ComparePrice != nil {
			draft.ComparePrice = formatDecimal(*variant.Attributes.ComparePrice)
		}
		if variant.Attributes.CostPrice != nil {
			draft.CostPrice = formatDecimal(*variant.Attributes.CostPrice)
		}
		draft.Weight = variant.Attributes.Weight
		draft.Dimensions = variant.Attributes.Dimensions
		if variant.Attributes.ShippingClass != "" {
			draft.ShippingClass = variant.Attributes.ShippingClass
		}
		draft.ReturnPolicy = variant.Attributes.ReturnPolicy
		draft.Warranty = variant.Attributes.Warranty
		for _, spec := range variant.Specifications {
			draft.SetSpecification(spec.Key, spec.Value)
		}
	}

	draft.ProductMedia = slotsFromImages(product.ImagesOfType(domain.ImageTypePrimary))
	draft.PromotionalMedia = slotsFromImages(product.ImagesOfType(domain.ImageTypePromotional))
	return draft
}

func slotsFromImages(images []domain.ProductImage) []MediaSlot {
	sort.SliceStable(images, func(i, j int) bool { return images[i].SortOrder < images[j].SortOrder })
	slots := make([]MediaSlot, 0, len(images))
	for _, image := range images {
		slots = append(slots, MediaSlot{
			Key:    image.ID,
			Status: SlotDone,
			Ref: domain.MediaRef{
				URL:       image.URL,
				MediaType: domain.MediaTypeImage,
				AltText:   image.AltText,
			},
		})
	}
	return slots
}

func formatDecimal(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
