package wizard

import (
	domain "github.com/sellerdesk/api/internal/domain"
)

// ResolveSpecFields returns the specification descriptors of the selected
// subcategory, located by id within the fetched category tree. An empty list
// is returned when no subcategory is selected or the node declares none.
// The list also fixes the order of submitted specification pairs.
func ResolveSpecFields(roots []domain.CategoryNode, categoryID, subcategoryID string) []domain.SpecField {
	if categoryID == "" || subcategoryID == "" {
		return nil
	}
	for _, root := range roots {
		if root.ID != categoryID {
			continue
		}
		child, ok := root.FindChild(subcategoryID)
		if !ok {
			return nil
		}
		fields := make([]domain.SpecField, len(child.SpecificationFields))
		copy(fields, child.SpecificationFields)
		return fields
	}
	return nil
}
