package wizard

import (
	"fmt"
	"strings"

	domain "github.com/sellerdesk/api/internal/domain"
)

// BuildSubmission maps a validated draft to the create/update mutation input.
// The persisted categoryId is the leaf subcategory; exactly one default
// variant is produced. Numeric parse failures should be unreachable after
// step validation but abort the submission rather than send malformed data.
func BuildSubmission(draft *ProductDraft, specFields []domain.SpecField) (domain.CreateProductInput, error) {
	price, err := parseDecimal(draft.Price)
	if err != nil {
		return domain.CreateProductInput{}, fmt.Errorf("%w: price %q", ErrMalformedDraft, draft.Price)
	}
	stock, err := parseWholeNumber(draft.Stock)
	if err != nil {
		return domain.CreateProductInput{}, fmt.Errorf("%w: stock %q", ErrMalformedDraft, draft.Stock)
	}

	attributes := domain.VariantAttributes{
		TrackQuantity: draft.TrackQuantity,
		Weight:        strings.TrimSpace(draft.Weight),
		Dimensions:    strings.TrimSpace(draft.Dimensions),
		ShippingClass: draft.ShippingClass,
		ReturnPolicy:  strings.TrimSpace(draft.ReturnPolicy),
		Warranty:      strings.TrimSpace(draft.Warranty),
	}
	if attributes.ShippingClass == "" {
		attributes.ShippingClass = domain.ShippingClassStandard
	}
	if strings.TrimSpace(draft.ComparePrice) != "" {
		compare, err := parseDecimal(draft.ComparePrice)
		if err != nil {
			return domain.CreateProductInput{}, fmt.Errorf("%w: comparePrice %q", ErrMalformedDraft, draft.ComparePrice)
		}
		attributes.ComparePrice = &compare
	}
	if strings.TrimSpace(draft.CostPrice) != "" {
		cost, err := parseDecimal(draft.CostPrice)
		if err != nil {
			return domain.CreateProductInput{}, fmt.Errorf("%w: costPrice %q", ErrMalformedDraft, draft.CostPrice)
		}
		attributes.CostPrice = &cost
	}

	input := domain.CreateProductInput{
		Name:        strings.TrimSpace(draft.Title),
		Description: draft.Description,
		CategoryID:  draft.SubcategoryID,
		Features:    append([]string(nil), draft.Features...),
		Variants: []domain.VariantInput{{
			SKU:            strings.TrimSpace(draft.SKU),
			Price:          price,
			Stock:          stock,
			IsDefault:      true,
			Attributes:     attributes,
			Specifications: orderedSpecifications(draft, specFields),
		}},
		Images:            imageInputs(draft.UploadedMedia(TargetProductMedia), domain.ImageTypePrimary),
		PromotionalImages: imageInputs(draft.UploadedMedia(TargetPromotionalMedia), domain.ImageTypePromotional),
	}
	if brandID := strings.TrimSpace(draft.BrandID); brandID != "" {
		input.BrandID = &brandID
	}
	return input, nil
}

// orderedSpecifications emits non-empty specification values: first the keys
// the active descriptor list declares, in descriptor order, then any leftover
// free-form keys in first-set order.
func orderedSpecifications(draft *ProductDraft, specFields []domain.SpecField) []domain.SpecificationInput {
	specs := make([]domain.SpecificationInput, 0, len(draft.Specifications))
	covered := make(map[string]bool, len(specFields))
	for _, field := range specFields {
		covered[field.Key] = true
		value, ok := draft.Specifications[field.Key]
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		specs = append(specs, domain.SpecificationInput{Key: field.Key, Value: value})
	}
	for _, key := range draft.specOrder {
		if covered[key] {
			continue
		}
		value := draft.Specifications[key]
		if strings.TrimSpace(value) == "" {
			continue
		}
		specs = append(specs, domain.SpecificationInput{Key: key, Value: value})
	}
	return specs
}

func imageInputs(refs []domain.MediaRef, imageType domain.ImageType) []domain.ImageInput {
	images := make([]domain.ImageInput, 0, len(refs))
	for i, ref := range refs {
		altText := ref.AltText
		if altText == "" {
			altText = ref.Caption
		}
		images = append(images, domain.ImageInput{
			URL:       ref.URL,
			AltText:   altText,
			SortOrder: i,
			Type:      imageType,
		})
	}
	return images
}
