package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	domain "github.com/sellerdesk/api/internal/domain"
	pfirestore "github.com/sellerdesk/api/internal/platform/firestore"
)

const categoriesCollection = "categories"

// CategoryRepository serves the category taxonomy. Each root category is one
// document embedding its subcategory array and the per-node specification
// descriptors; the tree is shallow (two levels) so whole-document reads stay
// cheap.
type CategoryRepository struct {
	base *pfirestore.BaseRepository[categoryDocument]
}

// NewCategoryRepository constructs a Firestore-backed category repository.
func NewCategoryRepository(provider *pfirestore.Provider) (*CategoryRepository, error) {
	if provider == nil {
		return nil, errors.New("category repository: firestore provider is required")
	}
	base := pfirestore.NewBaseRepository[categoryDocument](provider, categoriesCollection, nil, nil)
	return &CategoryRepository{base: base}, nil
}

// ListRoots returns all root categories with their subtrees, ordered by name.
func (r *CategoryRepository) ListRoots(ctx context.Context) ([]domain.CategoryNode, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("category repository not initialised")
	}
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.OrderBy("name", firestore.Asc)
	})
	if err != nil {
		return nil, err
	}
	roots := make([]domain.CategoryNode, 0, len(docs))
	for _, doc := range docs {
		roots = append(roots, decodeCategoryDocument(doc.ID, doc.Data))
	}
	return roots, nil
}

// FindByID resolves a category or subcategory node anywhere in the tree.
func (r *CategoryRepository) FindByID(ctx context.Context, categoryID string) (domain.CategoryNode, error) {
	if r == nil || r.base == nil {
		return domain.CategoryNode{}, errors.New("category repository not initialised")
	}
	categoryID = strings.TrimSpace(categoryID)
	if categoryID == "" {
		return domain.CategoryNode{}, errors.New("category repository: category id is required")
	}

	doc, err := r.base.Get(ctx, categoryID)
	if err == nil {
		return decodeCategoryDocument(doc.ID, doc.Data), nil
	}
	var repoErr *pfirestore.Error
	if !errors.As(err, &repoErr) || !repoErr.IsNotFound() {
		return domain.CategoryNode{}, err
	}

	// Not a root document; walk the trees for a nested node.
	roots, err := r.ListRoots(ctx)
	if err != nil {
		return domain.CategoryNode{}, err
	}
	for _, root := range roots {
		if node, ok := findNode(root, categoryID); ok {
			return node, nil
		}
	}
	return domain.CategoryNode{}, pfirestore.NewNotFoundError("categories.find_by_id", errCategoryNotFound)
}

// Insert stores a new root category.
func (r *CategoryRepository) Insert(ctx context.Context, category domain.CategoryNode) error {
	if r == nil || r.base == nil {
		return errors.New("category repository not initialised")
	}
	categoryID := strings.TrimSpace(category.ID)
	if categoryID == "" {
		return errors.New("category repository: category id is required")
	}
	if _, err := r.base.Create(ctx, categoryID, encodeCategoryDocument(category)); err != nil {
		return err
	}
	return nil
}

// InsertChild appends a subcategory under the given root category.
func (r *CategoryRepository) InsertChild(ctx context.Context, parentID string, category domain.CategoryNode) error {
	if r == nil || r.base == nil {
		return errors.New("category repository not initialised")
	}
	parentID = strings.TrimSpace(parentID)
	if parentID == "" {
		return errors.New("category repository: parent id is required")
	}
	if strings.TrimSpace(category.ID) == "" {
		return errors.New("category repository: category id is required")
	}

	doc, err := r.base.Get(ctx, parentID)
	if err != nil {
		return err
	}
	parent := doc.Data
	for _, child := range parent.Children {
		if child.ID == category.ID {
			return pfirestore.NewConflictError("categories.insert_child", errChildExists)
		}
	}
	category.ParentID = parentID
	parent.Children = append(parent.Children, encodeCategoryChild(category))
	parent.UpdatedAt = time.Now().UTC()
	if _, err := r.base.Set(ctx, parentID, parent); err != nil {
		return err
	}
	return nil
}

// AppendSpecField adds a specification descriptor to a category or subcategory
// node. Keys are unique within one node's descriptor list.
func (r *CategoryRepository) AppendSpecField(ctx context.Context, categoryID string, field domain.SpecField) error {
	if r == nil || r.base == nil {
		return errors.New("category repository not initialised")
	}
	categoryID = strings.TrimSpace(categoryID)
	if categoryID == "" {
		return errors.New("category repository: category id is required")
	}
	if strings.TrimSpace(field.Key) == "" {
		return errors.New("category repository: spec field key is required")
	}

	doc, err := r.base.Get(ctx, categoryID)
	if err == nil {
		root := doc.Data
		for _, existing := range root.SpecificationFields {
			if existing.Key == field.Key {
				return pfirestore.NewConflictError("categories.append_spec_field", errSpecKeyExists)
			}
		}
		root.SpecificationFields = append(root.SpecificationFields, encodeSpecField(field))
		root.UpdatedAt = time.Now().UTC()
		if _, err := r.base.Set(ctx, categoryID, root); err != nil {
			return err
		}
		return nil
	}
	var repoErr *pfirestore.Error
	if !errors.As(err, &repoErr) || !repoErr.IsNotFound() {
		return err
	}

	// Nested node: locate the owning root and rewrite it.
	roots, err := r.base.Query(ctx, nil)
	if err != nil {
		return err
	}
	for _, rootDoc := range roots {
		root := rootDoc.Data
		updated := false
		for i := range root.Children {
			if root.Children[i].ID == categoryID {
				for _, existing := range root.Children[i].SpecificationFields {
					if existing.Key == field.Key {
						return pfirestore.NewConflictError("categories.append_spec_field", errSpecKeyExists)
					}
				}
				root.Children[i].SpecificationFields = append(root.Children[i].SpecificationFields, encodeSpecField(field))
				updated = true
				break
			}
		}
		if updated {
			root.UpdatedAt = time.Now().UTC()
			if _, err := r.base.Set(ctx, rootDoc.ID, root); err != nil {
				return err
			}
			return nil
		}
	}
	return pfirestore.NewNotFoundError("categories.append_spec_field", errCategoryNotFound)
}

var (
	errCategoryNotFound = errors.New("category not found")
	errChildExists      = errors.New("subcategory already exists")
	errSpecKeyExists    = errors.New("specification key already exists")
)

type categoryDocument struct {
	Name                string                  `firestore:"name"`
	Slug                string                  `firestore:"slug"`
	IsActive            bool                    `firestore:"isActive"`
	Children            []categoryChildDocument `firestore:"children"`
	SpecificationFields []specFieldDocument     `firestore:"specificationFields"`
	CreatedAt           time.Time               `firestore:"createdAt"`
	UpdatedAt           time.Time               `firestore:"updatedAt"`
}

type categoryChildDocument struct {
	ID                  string              `firestore:"id"`
	Name                string              `firestore:"name"`
	Slug                string              `firestore:"slug"`
	IsActive            bool                `firestore:"isActive"`
	SpecificationFields []specFieldDocument `firestore:"specificationFields"`
}

type specFieldDocument struct {
	ID          string `firestore:"id,omitempty"`
	Key         string `firestore:"key"`
	Label       string `firestore:"label"`
	Placeholder string `firestore:"placeholder,omitempty"`
}

func encodeCategoryDocument(category domain.CategoryNode) categoryDocument {
	doc := categoryDocument{
		Name:      strings.TrimSpace(category.Name),
		Slug:      strings.TrimSpace(category.Slug),
		IsActive:  category.IsActive,
		CreatedAt: category.CreatedAt.UTC(),
		UpdatedAt: category.UpdatedAt.UTC(),
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = doc.CreatedAt
	}
	doc.Children = make([]categoryChildDocument, 0, len(category.Children))
	for _, child := range category.Children {
		doc.Children = append(doc.Children, encodeCategoryChild(child))
	}
	doc.SpecificationFields = encodeSpecFields(category.SpecificationFields)
	return doc
}

func encodeCategoryChild(child domain.CategoryNode) categoryChildDocument {
	return categoryChildDocument{
		ID:                  strings.TrimSpace(child.ID),
		Name:                strings.TrimSpace(child.Name),
		Slug:                strings.TrimSpace(child.Slug),
		IsActive:            child.IsActive,
		SpecificationFields: encodeSpecFields(child.SpecificationFields),
	}
}

func encodeSpecFields(fields []domain.SpecField) []specFieldDocument {
	out := make([]specFieldDocument, 0, len(fields))
	for _, field := range fields {
		out = append(out, encodeSpecField(field))
	}
	return out
}

func encodeSpecField(field domain.SpecField) specFieldDocument {
	return specFieldDocument{
		ID:          strings.TrimSpace(field.ID),
		Key:         strings.TrimSpace(field.Key),
		Label:       strings.TrimSpace(field.Label),
		Placeholder: field.Placeholder,
	}
}

func decodeCategoryDocument(id string, doc categoryDocument) domain.CategoryNode {
	node := domain.CategoryNode{
		ID:        id,
		Name:      doc.Name,
		Slug:      doc.Slug,
		IsActive:  doc.IsActive,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
	node.SpecificationFields = decodeSpecFields(doc.SpecificationFields)
	node.Children = make([]domain.CategoryNode, 0, len(doc.Children))
	for _, child := range doc.Children {
		node.Children = append(node.Children, domain.CategoryNode{
			ID:                  child.ID,
			Name:                child.Name,
			Slug:                child.Slug,
			ParentID:            id,
			IsActive:            child.IsActive,
			SpecificationFields: decodeSpecFields(child.SpecificationFields),
		})
	}
	return node
}

func decodeSpecFields(fields []specFieldDocument) []domain.SpecField {
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

func findNode(root domain.CategoryNode, id string) (domain.CategoryNode, bool) {
	if root.ID == id {
		return root, true
	}
	for _, child := range root.Children {
		if node, ok := findNode(child, id); ok {
			return node, true
		}
	}
	return domain.CategoryNode{}, false
}
