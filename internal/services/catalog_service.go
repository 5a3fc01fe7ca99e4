package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/oklog/ulid/v2"

	domain "github.com/sellerdesk/api/internal/domain"
	"github.com/sellerdesk/api/internal/repositories"
)

const maxSlugProbes = 50

var slugSanitizer = regexp.MustCompile(`[^a-z0-9]+`)

var (
	// ErrCatalogInvalidInput indicates the caller supplied invalid data to a catalog mutation.
	ErrCatalogInvalidInput = errors.New("catalog service: invalid input")
	// ErrCatalogNotFound indicates the requested product does not exist.
	ErrCatalogNotFound = errors.New("catalog service: product not found")
	// ErrCatalogForbidden indicates the product belongs to a different seller.
	ErrCatalogForbidden = errors.New("catalog service: product owned by another seller")
	// ErrCatalogCategoryNotLeaf indicates the chosen category has children and cannot hold products.
	ErrCatalogCategoryNotLeaf = errors.New("catalog service: category is not a leaf node")
)

// CatalogServiceDeps bundles constructor inputs for the catalog service.
type CatalogServiceDeps struct {
	Catalog    repositories.CatalogRepository
	Categories repositories.CategoryRepository
	Clock      func() time.Time
	IDGen      func() string
}

type catalogService struct {
	repo       repositories.CatalogRepository
	categories repositories.CategoryRepository
	sanitizer  *bluemonday.Policy
	clock      func() time.Time
	idGen      func() string
}

// NewCatalogService constructs the catalog service with the supplied dependencies.
func NewCatalogService(deps CatalogServiceDeps) (CatalogService, error) {
	if deps.Catalog == nil {
		return nil, fmt.Errorf("catalog service: catalog repository is required")
	}
	if deps.Categories == nil {
		return nil, fmt.Errorf("catalog service: category repository is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGen
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}
	return &catalogService{
		repo:       deps.Catalog,
		categories: deps.Categories,
		sanitizer:  bluemonday.UGCPolicy(),
		clock:      func() time.Time { return clock().UTC() },
		idGen:      idGen,
	}, nil
}

func (s *catalogService) CreateProduct(ctx context.Context, cmd CreateProductCommand) (Product, error) {
	sellerID := strings.TrimSpace(cmd.SellerID)
	if sellerID == "" {
		return Product{}, fmt.Errorf("%w: seller id is required", ErrCatalogInvalidInput)
	}
	if err := s.validateInput(cmd.Input); err != nil {
		return Product{}, err
	}
	if err := s.validateLeafCategory(ctx, cmd.Input.CategoryID); err != nil {
		return Product{}, err
	}

	slug, err := s.uniqueSlug(ctx, cmd.Input.Name)
	if err != nil {
		return Product{}, err
	}

	now := s.clock()
	product := s.buildProduct(cmd.Input, sellerID, slug)
	product.ID = s.idGen()
	product.CreatedAt = now
	product.UpdatedAt = now

	if err := s.repo.Insert(ctx, product); err != nil {
		return Product{}, fmt.Errorf("catalog service: create product: %w", err)
	}
	return product, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, cmd UpdateProductCommand) (Product, error) {
	sellerID := strings.TrimSpace(cmd.SellerID)
	if sellerID == "" {
		return Product{}, fmt.Errorf("%w: seller id is required", ErrCatalogInvalidInput)
	}
	productID := strings.TrimSpace(cmd.Input.ID)
	if productID == "" {
		return Product{}, fmt.Errorf("%w: product id is required", ErrCatalogInvalidInput)
	}
	if err := s.validateInput(cmd.Input.CreateProductInput); err != nil {
		return Product{}, err
	}
	if err := s.validateLeafCategory(ctx, cmd.Input.CategoryID); err != nil {
		return Product{}, err
	}

	existing, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if isNotFound(err) {
			return Product{}, ErrCatalogNotFound
		}
		return Product{}, fmt.Errorf("catalog service: load product: %w", err)
	}
	if existing.SellerID != sellerID {
		return Product{}, ErrCatalogForbidden
	}

	slug := existing.Slug
	if !strings.EqualFold(strings.TrimSpace(cmd.Input.Name), existing.Name) {
		slug, err = s.uniqueSlug(ctx, cmd.Input.Name)
		if err != nil {
			return Product{}, err
		}
	}

	product := s.buildProduct(cmd.Input.CreateProductInput, sellerID, slug)
	product.ID = productID
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = s.clock()

	if err := s.repo.Update(ctx, product); err != nil {
		return Product{}, fmt.Errorf("catalog service: update product: %w", err)
	}
	return product, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, cmd DeleteProductCommand) error {
	productID := strings.TrimSpace(cmd.ProductID)
	if productID == "" {
		return fmt.Errorf("%w: product id is required", ErrCatalogInvalidInput)
	}
	existing, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if isNotFound(err) {
			return ErrCatalogNotFound
		}
		return fmt.Errorf("catalog service: load product: %w", err)
	}
	if sellerID := strings.TrimSpace(cmd.SellerID); sellerID != "" && existing.SellerID != sellerID {
		return ErrCatalogForbidden
	}
	if err := s.repo.Delete(ctx, productID); err != nil {
		return fmt.Errorf("catalog service: delete product: %w", err)
	}
	return nil
}

func (s *catalogService) GetProduct(ctx context.Context, productID string) (Product, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return Product{}, fmt.Errorf("%w: product id is required", ErrCatalogInvalidInput)
	}
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if isNotFound(err) {
			return Product{}, ErrCatalogNotFound
		}
		return Product{}, fmt.Errorf("catalog service: load product: %w", err)
	}
	return product, nil
}

func (s *catalogService) ListProducts(ctx context.Context, sellerID string, filter ProductListFilter) (domain.CursorPage[ProductSummary], error) {
	sellerID = strings.TrimSpace(sellerID)
	if sellerID == "" {
		return domain.CursorPage[ProductSummary]{}, fmt.Errorf("%w: seller id is required", ErrCatalogInvalidInput)
	}

	page, err := s.repo.ListBySeller(ctx, sellerID, repositories.ProductListFilter{
		Status:     filter.Status,
		CategoryID: strings.TrimSpace(filter.CategoryID),
		Search:     strings.TrimSpace(filter.Search),
		Sort:       filter.Sort,
		Pagination: Pagination{
			PageSize:  filter.Pagination.PageSize,
			PageToken: strings.TrimSpace(filter.Pagination.PageToken),
		},
	})
	if err != nil {
		return domain.CursorPage[ProductSummary]{}, fmt.Errorf("catalog service: list products: %w", err)
	}

	summaries := make([]ProductSummary, 0, len(page.Items))
	for _, product := range page.Items {
		summaries = append(summaries, summariseProduct(product))
	}
	return domain.CursorPage[ProductSummary]{Items: summaries, NextPageToken: page.NextPageToken}, nil
}

func (s *catalogService) validateInput(input domain.CreateProductInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return fmt.Errorf("%w: product name is required", ErrCatalogInvalidInput)
	}
	if len(input.Variants) == 0 {
		return fmt.Errorf("%w: at least one variant is required", ErrCatalogInvalidInput)
	}
	if len(input.Images) == 0 {
		return fmt.Errorf("%w: at least one primary image is required", ErrCatalogInvalidInput)
	}
	for i, variant := range input.Variants {
		if strings.TrimSpace(variant.SKU) == "" {
			return fmt.Errorf("%w: sku is required for variant %d", ErrCatalogInvalidInput, i)
		}
		if variant.Price < 0 {
			return fmt.Errorf("%w: price must not be negative for variant %d", ErrCatalogInvalidInput, i)
		}
		if variant.Stock < 0 {
			return fmt.Errorf("%w: stock must not be negative for variant %d", ErrCatalogInvalidInput, i)
		}
	}
	return nil
}

func (s *catalogService) validateLeafCategory(ctx context.Context, categoryID string) error {
	categoryID = strings.TrimSpace(categoryID)
	if categoryID == "" {
		return nil
	}
	node, err := s.categories.FindByID(ctx, categoryID)
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%w: category %s does not exist", ErrCatalogInvalidInput, categoryID)
		}
		return fmt.Errorf("catalog service: resolve category: %w", err)
	}
	if len(node.Children) > 0 {
		return ErrCatalogCategoryNotLeaf
	}
	return nil
}

// buildProduct assembles the persisted product from a validated input,
// merging primary and promotional images into one ordered list.
func (s *catalogService) buildProduct(input domain.CreateProductInput, sellerID, slug string) Product {
	status := input.Status
	if status == "" {
		status = domain.ProductStatusDraft
	}

	product := Product{
		SellerID:    sellerID,
		Name:        strings.TrimSpace(input.Name),
		Slug:        slug,
		Description: s.sanitizer.Sanitize(input.Description),
		Status:      status,
		CategoryID:  strings.TrimSpace(input.CategoryID),
		Features:    append([]string(nil), input.Features...),
	}
	if input.BrandID != nil {
		product.BrandID = strings.TrimSpace(*input.BrandID)
	}

	defaultSeen := false
	product.Variants = make([]ProductVariant, 0, len(input.Variants))
	for _, variant := range input.Variants {
		built := ProductVariant{
			ID:         s.idGen(),
			SKU:        strings.TrimSpace(variant.SKU),
			Price:      variant.Price,
			Stock:      variant.Stock,
			IsDefault:  variant.IsDefault && !defaultSeen,
			Attributes: variant.Attributes,
		}
		if built.IsDefault {
			defaultSeen = true
		}
		built.Specifications = make([]domain.ProductSpecification, 0, len(variant.Specifications))
		for _, spec := range variant.Specifications {
			built.Specifications = append(built.Specifications, domain.ProductSpecification{
				ID:    s.idGen(),
				Key:   spec.Key,
				Value: spec.Value,
			})
		}
		product.Variants = append(product.Variants, built)
	}
	if !defaultSeen && len(product.Variants) > 0 {
		product.Variants[0].IsDefault = true
	}

	product.Images = make([]ProductImage, 0, len(input.Images)+len(input.PromotionalImages))
	for _, image := range input.Images {
		product.Images = append(product.Images, s.buildImage(image, domain.ImageTypePrimary))
	}
	for _, image := range input.PromotionalImages {
		product.Images = append(product.Images, s.buildImage(image, domain.ImageTypePromotional))
	}
	return product
}

func (s *catalogService) buildImage(input domain.ImageInput, imageType domain.ImageType) ProductImage {
	return ProductImage{
		ID:        s.idGen(),
		URL:       strings.TrimSpace(input.URL),
		AltText:   strings.TrimSpace(input.AltText),
		SortOrder: input.SortOrder,
		Type:      imageType,
	}
}

// uniqueSlug derives a URL slug from the name and probes the repository with
// numeric suffixes until an unused one is found.
func (s *catalogService) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := Slugify(name)
	if base == "" {
		return "", fmt.Errorf("%w: product name produces an empty slug", ErrCatalogInvalidInput)
	}

	candidate := base
	for counter := 1; counter <= maxSlugProbes; counter++ {
		_, err := s.repo.FindBySlug(ctx, candidate)
		if err != nil {
			if isNotFound(err) {
				return candidate, nil
			}
			return "", fmt.Errorf("catalog service: probe slug: %w", err)
		}
		candidate = fmt.Sprintf("%s-%d", base, counter)
	}
	return "", fmt.Errorf("catalog service: could not find a free slug for %q", base)
}

// Slugify lowercases the name and collapses every non-alphanumeric run into a
// single hyphen.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugSanitizer.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

func summariseProduct(product Product) ProductSummary {
	summary := ProductSummary{
		ID:         product.ID,
		Name:       product.Name,
		Slug:       product.Slug,
		Status:     product.Status,
		CategoryID: product.CategoryID,
		UpdatedAt:  product.UpdatedAt,
	}
	if variant, ok := product.DefaultVariant(); ok {
		summary.Price = variant.Price
		summary.Stock = variant.Stock
	}
	for _, image := range product.ImagesOfType(domain.ImageTypePrimary) {
		if summary.ImageURL == "" || image.SortOrder == 0 {
			summary.ImageURL = image.URL
		}
		if image.SortOrder == 0 {
			break
		}
	}
	return summary
}
