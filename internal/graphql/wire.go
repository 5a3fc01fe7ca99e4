// Package graphql carries the seller commerce GraphQL surface: the HTTP
// client used to dispatch product mutations downstream and the thin endpoint
// executor serving the same operations to first-party callers.
package graphql

import (
	"encoding/json"

	domain "github.com/sellerdesk/api/internal/domain"
)

// Request is the GraphQL HTTP request envelope.
type Request struct {
	Query         string          `json:"query"`
	OperationName string          `json:"operationName,omitempty"`
	Variables     json.RawMessage `json:"variables,omitempty"`
}

// Response is the GraphQL HTTP response envelope.
type Response struct {
	Data   json.RawMessage `json:"data,omitempty"`
	Errors []ResponseError `json:"errors,omitempty"`
}

// ResponseError is one entry of the errors array.
type ResponseError struct {
	Message    string          `json:"message"`
	Path       []any           `json:"path,omitempty"`
	Extensions map[string]any  `json:"extensions,omitempty"`
	Locations  []ErrorLocation `json:"locations,omitempty"`
}

// ErrorLocation points at the query position an error refers to.
type ErrorLocation struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Error codes carried in the extensions.code field.
const (
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeForbidden       = "FORBIDDEN"
	CodeBadUserInput    = "BAD_USER_INPUT"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeInternal        = "INTERNAL_SERVER_ERROR"
)

// SpecFieldPayload is the categorySpecification wire shape.
type SpecFieldPayload struct {
	ID          string `json:"id,omitempty"`
	Key         string `json:"key"`
	Label       string `json:"label"`
	Placeholder string `json:"placeholder,omitempty"`
}

// CategoryPayload is the category wire shape with one level of children.
type CategoryPayload struct {
	ID                    string             `json:"id"`
	Name                  string             `json:"name"`
	Slug                  string             `json:"slug,omitempty"`
	ParentID              string             `json:"parentId,omitempty"`
	IsActive              bool               `json:"isActive"`
	Parent                *CategoryPayload   `json:"parent,omitempty"`
	Children              []CategoryPayload  `json:"children,omitempty"`
	CategorySpecification []SpecFieldPayload `json:"categorySpecification,omitempty"`
}

// SpecificationPayload is one key/value pair of a variant.
type SpecificationPayload struct {
	ID    string `json:"id,omitempty"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

// AttributesPayload carries the optional commerce attributes of a variant.
type AttributesPayload struct {
	ComparePrice  *float64 `json:"comparePrice,omitempty"`
	CostPrice     *float64 `json:"costPrice,omitempty"`
	TrackQuantity bool     `json:"trackQuantity,omitempty"`
	Weight        string   `json:"weight,omitempty"`
	Dimensions    string   `json:"dimensions,omitempty"`
	ShippingClass string   `json:"shippingClass,omitempty"`
	ReturnPolicy  string   `json:"returnPolicy,omitempty"`
	Warranty      string   `json:"warranty,omitempty"`
}

// VariantPayload is the productVariant wire shape.
type VariantPayload struct {
	ID             string                 `json:"id,omitempty"`
	SKU            string                 `json:"sku"`
	Price          float64                `json:"price"`
	Stock          int                    `json:"stock"`
	IsDefault      bool                   `json:"isDefault"`
	Attributes     *AttributesPayload     `json:"attributes,omitempty"`
	Specifications []SpecificationPayload `json:"specifications,omitempty"`
}

// ImagePayload is the productImage wire shape.
type ImagePayload struct {
	ID        string `json:"id,omitempty"`
	URL       string `json:"url"`
	AltText   string `json:"altText,omitempty"`
	SortOrder int    `json:"sortOrder"`
	Type      string `json:"type,omitempty"`
}

// ProductPayload is the product wire shape.
type ProductPayload struct {
	ID          string           `json:"id"`
	SellerID    string           `json:"sellerId,omitempty"`
	Name        string           `json:"name"`
	Slug        string           `json:"slug,omitempty"`
	Description string           `json:"description,omitempty"`
	Status      string           `json:"status,omitempty"`
	CategoryID  string           `json:"categoryId,omitempty"`
	BrandID     string           `json:"brandId,omitempty"`
	Features    []string         `json:"features,omitempty"`
	Variants    []VariantPayload `json:"variants,omitempty"`
	Images      []ImagePayload   `json:"images,omitempty"`
	Category    *CategoryPayload `json:"Category,omitempty"`
}

// ProductInputPayload is the CreateProductInput wire shape.
type ProductInputPayload struct {
	Name              string                `json:"name"`
	Description       string                `json:"description,omitempty"`
	Status            string                `json:"status,omitempty"`
	CategoryID        string                `json:"categoryId,omitempty"`
	BrandID           *string               `json:"brandId,omitempty"`
	Features          []string              `json:"features,omitempty"`
	Variants          []VariantInputPayload `json:"variants"`
	Images            []ImageInputPayload   `json:"images"`
	PromotionalImages []ImageInputPayload   `json:"promotionalImages"`
}

// VariantInputPayload is the CreateProductVariantInput wire shape.
type VariantInputPayload struct {
	SKU            string                 `json:"sku"`
	Price          float64                `json:"price"`
	Stock          int                    `json:"stock"`
	IsDefault      bool                   `json:"isDefault"`
	Attributes     *AttributesPayload     `json:"attributes,omitempty"`
	Specifications []SpecificationPayload `json:"specifications"`
}

// ImageInputPayload is the CreateProductImageInput wire shape.
type ImageInputPayload struct {
	URL       string `json:"url"`
	AltText   string `json:"altText,omitempty"`
	SortOrder int    `json:"sortOrder"`
}

// EncodeProductInput converts the domain mutation input to its wire shape.
func EncodeProductInput(input domain.CreateProductInput) ProductInputPayload {
	payload := ProductInputPayload{
		Name:              input.Name,
		Description:       input.Description,
		Status:            string(input.Status),
		CategoryID:        input.CategoryID,
		BrandID:           input.BrandID,
		Features:          input.Features,
		Variants:          make([]VariantInputPayload, 0, len(input.Variants)),
		Images:            encodeImageInputs(input.Images),
		PromotionalImages: encodeImageInputs(input.PromotionalImages),
	}
	for _, variant := range input.Variants {
		payload.Variants = append(payload.Variants, VariantInputPayload{
			SKU:            variant.SKU,
			Price:          variant.Price,
			Stock:          variant.Stock,
			IsDefault:      variant.IsDefault,
			Attributes:     encodeAttributes(variant.Attributes),
			Specifications: encodeSpecInputs(variant.Specifications),
		})
	}
	return payload
}

// DecodeProductInput converts the wire shape back into the domain input.
func DecodeProductInput(payload ProductInputPayload) domain.CreateProductInput {
	input := domain.CreateProductInput{
		Name:              payload.Name,
		Description:       payload.Description,
		Status:            domain.ProductStatus(payload.Status),
		CategoryID:        payload.CategoryID,
		BrandID:           payload.BrandID,
		Features:          payload.Features,
		Variants:          make([]domain.VariantInput, 0, len(payload.Variants)),
		Images:            decodeImageInputs(payload.Images, domain.ImageTypePrimary),
		PromotionalImages: decodeImageInputs(payload.PromotionalImages, domain.ImageTypePromotional),
	}
	for _, variant := range payload.Variants {
		input.Variants = append(input.Variants, domain.VariantInput{
			SKU:            variant.SKU,
			Price:          variant.Price,
			Stock:          variant.Stock,
			IsDefault:      variant.IsDefault,
			Attributes:     decodeAttributes(variant.Attributes),
			Specifications: decodeSpecInputs(variant.Specifications),
		})
	}
	return input
}

// EncodeProduct converts a domain product to its wire shape.
func EncodeProduct(product domain.Product) ProductPayload {
	payload := ProductPayload{
		ID:          product.ID,
		SellerID:    product.SellerID,
		Name:        product.Name,
		Slug:        product.Slug,
		Description: product.Description,
		Status:      string(product.Status),
		CategoryID:  product.CategoryID,
		BrandID:     product.BrandID,
		Features:    product.Features,
	}
	for _, variant := range product.Variants {
		payload.Variants = append(payload.Variants, VariantPayload{
			ID:             variant.ID,
			SKU:            variant.SKU,
			Price:          variant.Price,
			Stock:          variant.Stock,
			IsDefault:      variant.IsDefault,
			Attributes:     encodeAttributes(variant.Attributes),
			Specifications: encodeSpecifications(variant.Specifications),
		})
	}
	for _, image := range product.Images {
		payload.Images = append(payload.Images, ImagePayload{
			ID:        image.ID,
			URL:       image.URL,
			AltText:   image.AltText,
			SortOrder: image.SortOrder,
			Type:      string(image.Type),
		})
	}
	return payload
}

// DecodeProduct converts a product wire payload into the domain record.
func DecodeProduct(payload ProductPayload) domain.Product {
	product := domain.Product{
		ID:          payload.ID,
		SellerID:    payload.SellerID,
		Name:        payload.Name,
		Slug:        payload.Slug,
		Description: payload.Description,
		Status:      domain.ProductStatus(payload.Status),
		CategoryID:  payload.CategoryID,
		BrandID:     payload.BrandID,
		Features:    payload.Features,
	}
	if product.CategoryID == "" && payload.Category != nil {
		product.CategoryID = payload.Category.ID
	}
	for _, variant := range payload.Variants {
		product.Variants = append(product.Variants, domain.ProductVariant{
			ID:             variant.ID,
			SKU:            variant.SKU,
			Price:          variant.Price,
			Stock:          variant.Stock,
			IsDefault:      variant.IsDefault,
			Attributes:     decodeAttributes(variant.Attributes),
			Specifications: decodeSpecifications(variant.Specifications),
		})
	}
	for _, image := range payload.Images {
		product.Images = append(product.Images, domain.ProductImage{
			ID:        image.ID,
			URL:       image.URL,
			AltText:   image.AltText,
			SortOrder: image.SortOrder,
			Type:      domain.ImageType(image.Type),
		})
	}
	return product
}

// EncodeCategory converts a taxonomy node, including its direct children, to
// the wire shape.
func EncodeCategory(node domain.CategoryNode) CategoryPayload {
	payload := CategoryPayload{
		ID:                    node.ID,
		Name:                  node.Name,
		Slug:                  node.Slug,
		ParentID:              node.ParentID,
		IsActive:              node.IsActive,
		CategorySpecification: encodeSpecFields(node.SpecificationFields),
	}
	for _, child := range node.Children {
		payload.Children = append(payload.Children, EncodeCategory(child))
	}
	return payload
}

// DecodeCategory converts a category wire payload into the domain node.
func DecodeCategory(payload CategoryPayload) domain.CategoryNode {
	node := domain.CategoryNode{
		ID:                  payload.ID,
		Name:                payload.Name,
		Slug:                payload.Slug,
		ParentID:            payload.ParentID,
		IsActive:            payload.IsActive,
		SpecificationFields: decodeSpecFields(payload.CategorySpecification),
	}
	for _, child := range payload.Children {
		node.Children = append(node.Children, DecodeCategory(child))
	}
	return node
}

func encodeSpecFields(fields []domain.SpecField) []SpecFieldPayload {
	out := make([]SpecFieldPayload, 0, len(fields))
	for _, field := range fields {
		out = append(out, SpecFieldPayload{
			ID:          field.ID,
			Key:         field.Key,
			Label:       field.Label,
			Placeholder: field.Placeholder,
		})
	}
	return out
}

func decodeSpecFields(fields []SpecFieldPayload) []domain.SpecField {
	if len(fields) == 0 {
		return nil
	}
	out := make([]domain.SpecField, 0, len(fields))
	for _, field := range fields {
		out = append(out, domain.SpecField{
			ID:          field.ID,
			Key:         field.Key,
			Label:       field.Label,
			Placeholder: field.Placeholder,
		})
	}
	return out
}

func encodeAttributes(attrs domain.VariantAttributes) *AttributesPayload {
	payload := AttributesPayload{
		ComparePrice:  attrs.ComparePrice,
		CostPrice:     attrs.CostPrice,
		TrackQuantity: attrs.TrackQuantity,
		Weight:        attrs.Weight,
		Dimensions:    attrs.Dimensions,
		ShippingClass: string(attrs.ShippingClass),
		ReturnPolicy:  attrs.ReturnPolicy,
		Warranty:      attrs.Warranty,
	}
	if payload == (AttributesPayload{}) {
		return nil
	}
	return &payload
}

func decodeAttributes(payload *AttributesPayload) domain.VariantAttributes {
	if payload == nil {
		return domain.VariantAttributes{}
	}
	return domain.VariantAttributes{
		ComparePrice:  payload.ComparePrice,
		CostPrice:     payload.CostPrice,
		TrackQuantity: payload.TrackQuantity,
		Weight:        payload.Weight,
		Dimensions:    payload.Dimensions,
		ShippingClass: domain.ShippingClass(payload.ShippingClass),
		ReturnPolicy:  payload.ReturnPolicy,
		Warranty:      payload.Warranty,
	}
}

func encodeSpecifications(specs []domain.ProductSpecification) []SpecificationPayload {
	out := make([]SpecificationPayload, 0, len(specs))
	for _, spec := range specs {
		out = append(out, SpecificationPayload{ID: spec.ID, Key: spec.Key, Value: spec.Value})
	}
	return out
}

func decodeSpecifications(specs []SpecificationPayload) []domain.ProductSpecification {
	if len(specs) == 0 {
		return nil
	}
	out := make([]domain.ProductSpecification, 0, len(specs))
	for _, spec := range specs {
		out = append(out, domain.ProductSpecification{ID: spec.ID, Key: spec.Key, Value: spec.Value})
	}
	return out
}

func encodeSpecInputs(specs []domain.SpecificationInput) []SpecificationPayload {
	out := make([]SpecificationPayload, 0, len(specs))
	for _, spec := range specs {
		out = append(out, SpecificationPayload{Key: spec.Key, Value: spec.Value})
	}
	return out
}

func decodeSpecInputs(specs []SpecificationPayload) []domain.SpecificationInput {
	out := make([]domain.SpecificationInput, 0, len(specs))
	for _, spec := range specs {
		out = append(out, domain.SpecificationInput{Key: spec.Key, Value: spec.Value})
	}
	return out
}

func encodeImageInputs(images []domain.ImageInput) []ImageInputPayload {
	out := make([]ImageInputPayload, 0, len(images))
	for _, image := range images {
		out = append(out, ImageInputPayload{URL: image.URL, AltText: image.AltText, SortOrder: image.SortOrder})
	}
	return out
}

func decodeImageInputs(images []ImageInputPayload, imageType domain.ImageType) []domain.ImageInput {
	out := make([]domain.ImageInput, 0, len(images))
	for _, image := range images {
		out = append(out, domain.ImageInput{
			URL:       image.URL,
			AltText:   image.AltText,
			SortOrder: image.SortOrder,
			Type:      imageType,
		})
	}
	return out
}
