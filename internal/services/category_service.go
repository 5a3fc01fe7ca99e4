package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	domain "github.com/sellerdesk/api/internal/domain"
	"github.com/sellerdesk/api/internal/repositories"
)

var (
	// ErrCategoryInvalidInput indicates the caller supplied invalid data to a category mutation.
	ErrCategoryInvalidInput = errors.New("category service: invalid input")
	// ErrCategoryNotFound indicates the requested category does not exist.
	ErrCategoryNotFound = errors.New("category service: category not found")
	// ErrCategoryConflict indicates a duplicate subcategory or specification key.
	ErrCategoryConflict = errors.New("category service: conflict")
)

// CategoryServiceDeps bundles constructor inputs for the category service.
type CategoryServiceDeps struct {
	Categories repositories.CategoryRepository
	Clock      func() time.Time
	IDGen      func() string
}

type categoryService struct {
	repo  repositories.CategoryRepository
	clock func() time.Time
	idGen func() string
}

// NewCategoryService constructs the category service with the supplied dependencies.
func NewCategoryService(deps CategoryServiceDeps) (CategoryService, error) {
	if deps.Categories == nil {
		return nil, fmt.Errorf("category service: category repository is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGen
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}
	return &categoryService{
		repo:  deps.Categories,
		clock: func() time.Time { return clock().UTC() },
		idGen: idGen,
	}, nil
}

// ListCategories returns root categories that carry at least one subcategory;
// childless roots cannot hold products and are hidden from the wizard.
func (s *categoryService) ListCategories(ctx context.Context) ([]CategoryNode, error) {
	roots, err := s.repo.ListRoots(ctx)
	if err != nil {
		return nil, fmt.Errorf("category service: list categories: %w", err)
	}
	withChildren := make([]CategoryNode, 0, len(roots))
	for _, root := range roots {
		if len(root.Children) == 0 {
			continue
		}
		withChildren = append(withChildren, root)
	}
	return withChildren, nil
}

func (s *categoryService) GetCategory(ctx context.Context, categoryID string) (CategoryNode, error) {
	categoryID = strings.TrimSpace(categoryID)
	if categoryID == "" {
		return CategoryNode{}, fmt.Errorf("%w: category id is required", ErrCategoryInvalidInput)
	}
	node, err := s.repo.FindByID(ctx, categoryID)
	if err != nil {
		if isNotFound(err) {
			return CategoryNode{}, ErrCategoryNotFound
		}
		return CategoryNode{}, fmt.Errorf("category service: load category: %w", err)
	}
	return node, nil
}

// ListSpecifications returns the ordered specification descriptors of the node.
func (s *categoryService) ListSpecifications(ctx context.Context, categoryID string) ([]SpecField, error) {
	node, err := s.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	fields := make([]SpecField, len(node.SpecificationFields))
	copy(fields, node.SpecificationFields)
	return fields, nil
}

func (s *categoryService) CreateCategory(ctx context.Context, cmd CreateCategoryCommand) (CategoryNode, error) {
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return CategoryNode{}, fmt.Errorf("%w: category name is required", ErrCategoryInvalidInput)
	}

	now := s.clock()
	node := CategoryNode{
		ID:        s.idGen(),
		Name:      name,
		Slug:      Slugify(name),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if cmd.IsActive != nil {
		node.IsActive = *cmd.IsActive
	}

	if err := s.repo.Insert(ctx, node); err != nil {
		if isConflict(err) {
			return CategoryNode{}, ErrCategoryConflict
		}
		return CategoryNode{}, fmt.Errorf("category service: create category: %w", err)
	}
	return node, nil
}

func (s *categoryService) CreateSubCategory(ctx context.Context, cmd CreateSubCategoryCommand) (CategoryNode, error) {
	parentID := strings.TrimSpace(cmd.ParentID)
	if parentID == "" {
		return CategoryNode{}, fmt.Errorf("%w: parent id is required", ErrCategoryInvalidInput)
	}
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return CategoryNode{}, fmt.Errorf("%w: category name is required", ErrCategoryInvalidInput)
	}

	node := CategoryNode{
		ID:       s.idGen(),
		Name:     name,
		Slug:     Slugify(name),
		ParentID: parentID,
		IsActive: true,
	}
	if cmd.IsActive != nil {
		node.IsActive = *cmd.IsActive
	}

	if err := s.repo.InsertChild(ctx, parentID, node); err != nil {
		if isNotFound(err) {
			return CategoryNode{}, ErrCategoryNotFound
		}
		if isConflict(err) {
			return CategoryNode{}, ErrCategoryConflict
		}
		return CategoryNode{}, fmt.Errorf("category service: create subcategory: %w", err)
	}
	return node, nil
}

func (s *categoryService) CreateSpecification(ctx context.Context, cmd CreateSpecificationCommand) (SpecField, error) {
	categoryID := strings.TrimSpace(cmd.CategoryID)
	if categoryID == "" {
		return SpecField{}, fmt.Errorf("%w: category id is required", ErrCategoryInvalidInput)
	}
	key := strings.TrimSpace(cmd.Key)
	if key == "" {
		return SpecField{}, fmt.Errorf("%w: specification key is required", ErrCategoryInvalidInput)
	}
	label := strings.TrimSpace(cmd.Label)
	if label == "" {
		return SpecField{}, fmt.Errorf("%w: specification label is required", ErrCategoryInvalidInput)
	}

	field := domain.SpecField{
		ID:          s.idGen(),
		Key:         key,
		Label:       label,
		Placeholder: strings.TrimSpace(cmd.Placeholder),
	}
	if err := s.repo.AppendSpecField(ctx, categoryID, field); err != nil {
		if isNotFound(err) {
			return SpecField{}, ErrCategoryNotFound
		}
		if isConflict(err) {
			return SpecField{}, ErrCategoryConflict
		}
		return SpecField{}, fmt.Errorf("category service: create specification: %w", err)
	}
	return field, nil
}
