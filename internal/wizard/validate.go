package wizard

import (
	"strconv"
	"strings"
)

// StepCount is the number of wizard steps.
const StepCount = 6

const (
	maxTitleLength       = 100
	minDescriptionLength = 10
)

// ValidationErrors maps a field name to its error message. A step validator
// recomputes the whole mapping on every pass.
type ValidationErrors map[string]string

// ValidateStep runs the validator for one step. Steps 2, 5 and 6 carry no
// required fields.
func ValidateStep(step int, draft *ProductDraft) ValidationErrors {
	switch step {
	case 1:
		return validateBasics(draft)
	case 3:
		return validatePricing(draft)
	case 4:
		return validateMedia(draft)
	default:
		return ValidationErrors{}
	}
}

func validateBasics(draft *ProductDraft) ValidationErrors {
	errs := ValidationErrors{}
	title := strings.TrimSpace(draft.Title)
	if title == "" {
		errs[FieldTitle] = "product title is required"
	} else if len(title) > maxTitleLength {
		errs[FieldTitle] = "product title must be 100 characters or fewer"
	}
	if strings.TrimSpace(draft.CategoryID) == "" {
		errs[FieldCategoryID] = "category is required"
	}
	if strings.TrimSpace(draft.SubcategoryID) == "" {
		errs[FieldSubcategoryID] = "subcategory is required"
	}
	description := strings.TrimSpace(draft.Description)
	if description == "" {
		errs[FieldDescription] = "description is required"
	} else if len(description) < minDescriptionLength {
		errs[FieldDescription] = "description must be at least 10 characters"
	}
	return errs
}

func validatePricing(draft *ProductDraft) ValidationErrors {
	errs := ValidationErrors{}

	price, err := parseDecimal(draft.Price)
	switch {
	case strings.TrimSpace(draft.Price) == "":
		errs[FieldPrice] = "price is required"
	case err != nil:
		errs[FieldPrice] = "price must be a valid number"
	case price <= 0:
		errs[FieldPrice] = "price must be greater than 0"
	}

	if strings.TrimSpace(draft.SKU) == "" {
		errs[FieldSKU] = "sku is required"
	}

	stock, err := parseWholeNumber(draft.Stock)
	switch {
	case strings.TrimSpace(draft.Stock) == "":
		errs[FieldStock] = "stock is required"
	case err != nil:
		errs[FieldStock] = "stock must be a whole number"
	case stock < 0:
		errs[FieldStock] = "stock must be 0 or more"
	}

	if strings.TrimSpace(draft.ComparePrice) != "" {
		compare, err := parseDecimal(draft.ComparePrice)
		if err != nil {
			errs[FieldComparePrice] = "compare price must be a valid number"
		} else if _, hasPriceErr := errs[FieldPrice]; !hasPriceErr && compare <= price {
			errs[FieldComparePrice] = "compare price should be higher than selling price"
		}
	}
	return errs
}

func validateMedia(draft *ProductDraft) ValidationErrors {
	errs := ValidationErrors{}
	if len(draft.UploadedMedia(TargetProductMedia)) == 0 {
		errs[FieldProductMedia] = "at least one product image is required"
	}
	return errs
}

func parseDecimal(value string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(value), 64)
}

func parseWholeNumber(value string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(value))
}
