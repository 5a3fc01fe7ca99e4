package domain

import (
	"sort"
	"time"
)

// Pagination defines standard cursor-based paging inputs for list operations.
type Pagination struct {
	PageSize  int
	PageToken string
}

// SortOrder indicates ascending or descending ordering for list queries.
type SortOrder string

const (
	// SortAsc sorts results in ascending order.
	SortAsc SortOrder = "asc"
	// SortDesc sorts results in descending order.
	SortDesc SortOrder = "desc"
)

// CursorPage wraps a page of results with the token for the next page.
type CursorPage[T any] struct {
	Items         []T
	NextPageToken string
}

// SpecField describes one dynamic specification form field declared by a category.
// Key is unique within one category's specification list.
type SpecField struct {
	ID          string
	Key         string
	Label       string
	Placeholder string
}

// CategoryNode is an immutable taxonomy node. The catalog reads it to populate
// category dropdowns and to resolve the active specification descriptor set;
// it is never mutated after load.
type CategoryNode struct {
	ID                  string
	Name                string
	Slug                string
	ParentID            string
	IsActive            bool
	Children            []CategoryNode
	SpecificationFields []SpecField
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// FindChild returns the direct child with the given id.
func (c CategoryNode) FindChild(id string) (CategoryNode, bool) {
	for _, child := range c.Children {
		if child.ID == id {
			return child, true
		}
	}
	return CategoryNode{}, false
}

// ProductStatus describes the catalog lifecycle state of a product.
type ProductStatus string

const (
	// ProductStatusDraft marks a product that is not yet published.
	ProductStatusDraft ProductStatus = "DRAFT"
	// ProductStatusActive marks a purchasable product.
	ProductStatusActive ProductStatus = "ACTIVE"
	// ProductStatusInactive marks a temporarily hidden product.
	ProductStatusInactive ProductStatus = "INACTIVE"
	// ProductStatusDiscontinued marks a permanently retired product.
	ProductStatusDiscontinued ProductStatus = "DISCONTINUED"
)

// ImageType distinguishes catalog images from promotional ones.
type ImageType string

const (
	// ImageTypePrimary marks a product gallery image; the first by sort order is the main image.
	ImageTypePrimary ImageType = "PRIMARY"
	// ImageTypePromotional marks a marketing banner image.
	ImageTypePromotional ImageType = "PROMOTIONAL"
)

// MediaType distinguishes the supported media kinds for uploads.
type MediaType string

const (
	// MediaTypeImage marks still images.
	MediaTypeImage MediaType = "image"
	// MediaTypeVideo marks video clips.
	MediaTypeVideo MediaType = "video"
)

// MediaRef is a resolved uploaded media reference with remote URL and metadata.
type MediaRef struct {
	URL       string
	MediaType MediaType
	AltText   string
	Caption   string
	PublicID  string
}

// ProductImage is a persisted catalog image attached to a product.
type ProductImage struct {
	ID        string
	URL       string
	AltText   string
	SortOrder int
	Type      ImageType
}

// ProductSpecification is one key/value pair on a variant, ordered by the
// category's specification descriptors.
type ProductSpecification struct {
	ID    string
	Key   string
	Value string
}

// VariantAttributes carries the optional commerce attributes of a variant.
type VariantAttributes struct {
	ComparePrice  *float64
	CostPrice     *float64
	TrackQuantity bool
	Weight        string
	Dimensions    string
	ShippingClass ShippingClass
	ReturnPolicy  string
	Warranty      string
}

// ProductVariant is one sellable variation of a product. Every product carries
// exactly one default variant in the current scope.
type ProductVariant struct {
	ID             string
	SKU            string
	Price          float64
	Stock          int
	IsDefault      bool
	Attributes     VariantAttributes
	Specifications []ProductSpecification
}

// ShippingClass enumerates the supported delivery tiers.
type ShippingClass string

const (
	ShippingClassStandard  ShippingClass = "standard"
	ShippingClassExpress   ShippingClass = "express"
	ShippingClassOvernight ShippingClass = "overnight"
	ShippingClassFree      ShippingClass = "free"
)

// Brand identifies a product brand.
type Brand struct {
	ID      string
	Name    string
	Slug    string
	LogoURL string
}

// Product is the persisted catalog record. CategoryID references the leaf
// subcategory node; the parent category is derivable from the tree.
type Product struct {
	ID          string
	SellerID    string
	Name        string
	Slug        string
	Description string
	Status      ProductStatus
	CategoryID  string
	BrandID     string
	Features    []string
	Variants    []ProductVariant
	Images      []ProductImage
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DefaultVariant returns the default variant, falling back to the first one.
func (p Product) DefaultVariant() (ProductVariant, bool) {
	for _, v := range p.Variants {
		if v.IsDefault {
			return v, true
		}
	}
	if len(p.Variants) > 0 {
		return p.Variants[0], true
	}
	return ProductVariant{}, false
}

// ImagesOfType returns the product images of the given type ordered by SortOrder.
func (p Product) ImagesOfType(t ImageType) []ProductImage {
	out := make([]ProductImage, 0, len(p.Images))
	for _, img := range p.Images {
		if img.Type == t {
			out = append(out, img)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out
}

// ProductSummary is the lightweight listing projection of a product.
type ProductSummary struct {
	ID         string
	Name       string
	Slug       string
	Status     ProductStatus
	CategoryID string
	Price      float64
	Stock      int
	ImageURL   string
	UpdatedAt  time.Time
}

// CreateProductInput is the mutation input shape produced by the wizard's
// submission transformer and accepted by the catalog service.
type CreateProductInput struct {
	Name              string
	Description       string
	CategoryID        string
	BrandID           *string
	Status            ProductStatus
	Features          []string
	Variants          []VariantInput
	Images            []ImageInput
	PromotionalImages []ImageInput
}

// UpdateProductInput is CreateProductInput plus the identifier of the product
// being modified.
type UpdateProductInput struct {
	ID string
	CreateProductInput
}

// VariantInput carries one variant of a create/update mutation.
type VariantInput struct {
	SKU            string
	Price          float64
	Stock          int
	IsDefault      bool
	Attributes     VariantAttributes
	Specifications []SpecificationInput
}

// SpecificationInput is one ordered key/value pair of a variant input.
type SpecificationInput struct {
	Key   string
	Value string
}

// ImageInput carries one image of a create/update mutation.
type ImageInput struct {
	URL       string
	AltText   string
	SortOrder int
	Type      ImageType
}
