package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	domain "github.com/sellerdesk/api/internal/domain"
	"github.com/sellerdesk/api/internal/repositories"
)

type stubRepoError struct {
	notFound bool
	conflict bool
}

func (e *stubRepoError) Error() string       { return "stub repository error" }
func (e *stubRepoError) IsNotFound() bool    { return e.notFound }
func (e *stubRepoError) IsConflict() bool    { return e.conflict }
func (e *stubRepoError) IsUnavailable() bool { return false }

var errStubNotFound = &stubRepoError{notFound: true}

type stubCatalogRepo struct {
	products map[string]domain.Product
	slugs    map[string]domain.Product
	inserted []domain.Product
	updated  []domain.Product
	deleted  []string
	listPage domain.CursorPage[domain.Product]
}

func newStubCatalogRepo() *stubCatalogRepo {
	return &stubCatalogRepo{
		products: map[string]domain.Product{},
		slugs:    map[string]domain.Product{},
	}
}

func (r *stubCatalogRepo) Insert(ctx context.Context, product domain.Product) error {
	r.inserted = append(r.inserted, product)
	return nil
}

func (r *stubCatalogRepo) Update(ctx context.Context, product domain.Product) error {
	r.updated = append(r.updated, product)
	return nil
}

func (r *stubCatalogRepo) Delete(ctx context.Context, productID string) error {
	r.deleted = append(r.deleted, productID)
	return nil
}

func (r *stubCatalogRepo) FindByID(ctx context.Context, productID string) (domain.Product, error) {
	product, ok := r.products[productID]
	if !ok {
		return domain.Product{}, errStubNotFound
	}
	return product, nil
}

func (r *stubCatalogRepo) FindBySlug(ctx context.Context, slug string) (domain.Product, error) {
	product, ok := r.slugs[slug]
	if !ok {
		return domain.Product{}, errStubNotFound
	}
	return product, nil
}

func (r *stubCatalogRepo) ListBySeller(ctx context.Context, sellerID string, filter repositories.ProductListFilter) (domain.CursorPage[domain.Product], error) {
	return r.listPage, nil
}

type stubCategoryRepo struct {
	nodes map[string]domain.CategoryNode
}

func (r *stubCategoryRepo) ListRoots(ctx context.Context) ([]domain.CategoryNode, error) {
	roots := make([]domain.CategoryNode, 0, len(r.nodes))
	for _, node := range r.nodes {
		if node.ParentID == "" {
			roots = append(roots, node)
		}
	}
	return roots, nil
}

func (r *stubCategoryRepo) FindByID(ctx context.Context, categoryID string) (domain.CategoryNode, error) {
	node, ok := r.nodes[categoryID]
	if !ok {
		return domain.CategoryNode{}, errStubNotFound
	}
	return node, nil
}

func (r *stubCategoryRepo) Insert(ctx context.Context, category domain.CategoryNode) error {
	r.nodes[category.ID] = category
	return nil
}

func (r *stubCategoryRepo) InsertChild(ctx context.Context, parentID string, category domain.CategoryNode) error {
	parent, ok := r.nodes[parentID]
	if !ok {
		return errStubNotFound
	}
	parent.Children = append(parent.Children, category)
	r.nodes[parentID] = parent
	return nil
}

func (r *stubCategoryRepo) AppendSpecField(ctx context.Context, categoryID string, field domain.SpecField) error {
	node, ok := r.nodes[categoryID]
	if !ok {
		return errStubNotFound
	}
	node.SpecificationFields = append(node.SpecificationFields, field)
	r.nodes[categoryID] = node
	return nil
}

func sequentialIDs(prefix string) func() string {
	counter := 0
	return func() string {
		counter++
		return fmt.Sprintf("%s-%d", prefix, counter)
	}
}

func leafCategories() *stubCategoryRepo {
	return &stubCategoryRepo{nodes: map[string]domain.CategoryNode{
		"cat-leaf": {ID: "cat-leaf", Name: "Mice", Slug: "mice", ParentID: "cat-root", IsActive: true},
		"cat-root": {ID: "cat-root", Name: "Electronics", Slug: "electronics", Children: []domain.CategoryNode{{ID: "cat-leaf"}}},
	}}
}

func validProductInput() domain.CreateProductInput {
	return domain.CreateProductInput{
		Name:        "Wireless Mouse",
		Description: "Quiet clicks.",
		CategoryID:  "cat-leaf",
		Variants: []domain.VariantInput{
			{SKU: "WM-100", Price: 29.99, Stock: 10},
		},
		Images: []domain.ImageInput{
			{URL: "https://cdn.example.com/mouse.jpg", AltText: "Mouse", SortOrder: 0},
		},
	}
}

func TestCatalogServiceCreateProductBuildsRecord(t *testing.T) {
	repo := newStubCatalogRepo()
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

	svc, err := NewCatalogService(CatalogServiceDeps{
		Catalog:    repo,
		Categories: leafCategories(),
		Clock:      func() time.Time { return now },
		IDGen:      sequentialIDs("id"),
	})
	if err != nil {
		t.Fatalf("NewCatalogService: %v", err)
	}

	input := validProductInput()
	input.Description = `<p>Quiet clicks.</p><script>alert("x")</script>`
	input.PromotionalImages = []domain.ImageInput{
		{URL: "https://cdn.example.com/banner.jpg", AltText: "Banner"},
	}

	product, err := svc.CreateProduct(context.Background(), CreateProductCommand{SellerID: "seller-1", Input: input})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	if product.Slug != "wireless-mouse" {
		t.Fatalf("expected slug wireless-mouse, got %s", product.Slug)
	}
	if product.Status != domain.ProductStatusDraft {
		t.Fatalf("expected draft status, got %s", product.Status)
	}
	if strings.Contains(product.Description, "<script>") {
		t.Fatalf("expected description to be sanitised, got %q", product.Description)
	}
	if product.CreatedAt != now || product.UpdatedAt != now {
		t.Fatalf("expected timestamps %s, got %s / %s", now, product.CreatedAt, product.UpdatedAt)
	}
	if len(product.Variants) != 1 || !product.Variants[0].IsDefault {
		t.Fatalf("expected the single variant to become the default: %+v", product.Variants)
	}
	if len(product.Images) != 2 {
		t.Fatalf("expected primary and promotional images merged, got %d", len(product.Images))
	}
	if product.Images[0].Type != domain.ImageTypePrimary || product.Images[1].Type != domain.ImageTypePromotional {
		t.Fatalf("expected primary before promotional, got %s / %s", product.Images[0].Type, product.Images[1].Type)
	}
	if len(repo.inserted) != 1 {
		t.Fatalf("expected 1 insert, got %d", len(repo.inserted))
	}
}

func TestCatalogServiceCreateProductProbesSlugSuffixes(t *testing.T) {
	repo := newStubCatalogRepo()
	repo.slugs["wireless-mouse"] = domain.Product{ID: "other", Slug: "wireless-mouse"}
	repo.slugs["wireless-mouse-1"] = domain.Product{ID: "other-2", Slug: "wireless-mouse-1"}

	svc, err := NewCatalogService(CatalogServiceDeps{Catalog: repo, Categories: leafCategories()})
	if err != nil {
		t.Fatalf("NewCatalogService: %v", err)
	}

	product, err := svc.CreateProduct(context.Background(), CreateProductCommand{SellerID: "seller-1", Input: validProductInput()})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if product.Slug != "wireless-mouse-2" {
		t.Fatalf("expected slug wireless-mouse-2, got %s", product.Slug)
	}
}

func TestCatalogServiceCreateProductSingleDefaultVariant(t *testing.T) {
	repo := newStubCatalogRepo()
	svc, err := NewCatalogService(CatalogServiceDeps{Catalog: repo, Categories: leafCategories()})
	if err != nil {
		t.Fatalf("NewCatalogService: %v", err)
	}

	input := validProductInput()
	input.Variants = []domain.VariantInput{
		{SKU: "WM-100", Price: 29.99, Stock: 10, IsDefault: true},
		{SKU: "WM-200", Price: 39.99, Stock: 5, IsDefault: true},
	}

	product, err := svc.CreateProduct(context.Background(), CreateProductCommand{SellerID: "seller-1", Input: input})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	defaults := 0
	for _, variant := range product.Variants {
		if variant.IsDefault {
			defaults++
		}
	}
	if defaults != 1 {
		t.Fatalf("expected exactly one default variant, got %d", defaults)
	}
	if !product.Variants[0].IsDefault {
		t.Fatalf("expected the first flagged variant to win")
	}
}

func TestCatalogServiceCreateProductValidation(t *testing.T) {
	repo := newStubCatalogRepo()
	svc, err := NewCatalogService(CatalogServiceDeps{Catalog: repo, Categories: leafCategories()})
	if err != nil {
		t.Fatalf("NewCatalogService: %v", err)
	}

	cases := map[string]func(*domain.CreateProductInput){
		"missing name":   func(in *domain.CreateProductInput) { in.Name = "  " },
		"no variants":    func(in *domain.CreateProductInput) { in.Variants = nil },
		"no images":      func(in *domain.CreateProductInput) { in.Images = nil },
		"blank sku":      func(in *domain.CreateProductInput) { in.Variants[0].SKU = "" },
		"negative price": func(in *domain.CreateProductInput) { in.Variants[0].Price = -1 },
		"negative stock": func(in *domain.CreateProductInput) { in.Variants[0].Stock = -1 },
	}

	for name, mutate := range cases {
		input := validProductInput()
		mutate(&input)
		_, err := svc.CreateProduct(context.Background(), CreateProductCommand{SellerID: "seller-1", Input: input})
		if !errors.Is(err, ErrCatalogInvalidInput) {
			t.Fatalf("%s: expected ErrCatalogInvalidInput, got %v", name, err)
		}
	}
	if len(repo.inserted) != 0 {
		t.Fatalf("expected no inserts, got %d", len(repo.inserted))
	}
}

func TestCatalogServiceCreateProductRejectsNonLeafCategory(t *testing.T) {
	repo := newStubCatalogRepo()
	svc, err := NewCatalogService(CatalogServiceDeps{Catalog: repo, Categories: leafCategories()})
	if err != nil {
		t.Fatalf("NewCatalogService: %v", err)
	}

	input := validProductInput()
	input.CategoryID = "cat-root"

	_, err = svc.CreateProduct(context.Background(), CreateProductCommand{SellerID: "seller-1", Input: input})
	if !errors.Is(err, ErrCatalogCategoryNotLeaf) {
		t.Fatalf("expected ErrCatalogCategoryNotLeaf, got %v", err)
	}
}

func TestCatalogServiceUpdateProductKeepsSlugWhenNameUnchanged(t *testing.T) {
	repo := newStubCatalogRepo()
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.products["prod-1"] = domain.Product{
		ID:        "prod-1",
		SellerID:  "seller-1",
		Name:      "Wireless Mouse",
		Slug:      "wireless-mouse",
		CreatedAt: created,
	}
	repo.slugs["wireless-mouse"] = repo.products["prod-1"]

	now := created.Add(48 * time.Hour)
	svc, err := NewCatalogService(CatalogServiceDeps{
		Catalog:    repo,
		Categories: leafCategories(),
		Clock:      func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("NewCatalogService: %v", err)
	}

	input := validProductInput()
	updated, err := svc.UpdateProduct(context.Background(), UpdateProductCommand{
		SellerID: "seller-1",
		Input:    domain.UpdateProductInput{ID: "prod-1", CreateProductInput: input},
	})
	if err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}
	if updated.Slug != "wireless-mouse" {
		t.Fatalf("expected slug preserved, got %s", updated.Slug)
	}
	if updated.CreatedAt != created {
		t.Fatalf("expected createdAt preserved, got %s", updated.CreatedAt)
	}
	if updated.UpdatedAt != now {
		t.Fatalf("expected updatedAt %s, got %s", now, updated.UpdatedAt)
	}
}

func TestCatalogServiceUpdateProductRejectsOtherSeller(t *testing.T) {
	repo := newStubCatalogRepo()
	repo.products["prod-1"] = domain.Product{ID: "prod-1", SellerID: "seller-1", Name: "Wireless Mouse"}

	svc, err := NewCatalogService(CatalogServiceDeps{Catalog: repo, Categories: leafCategories()})
	if err != nil {
		t.Fatalf("NewCatalogService: %v", err)
	}

	_, err = svc.UpdateProduct(context.Background(), UpdateProductCommand{
		SellerID: "seller-2",
		Input:    domain.UpdateProductInput{ID: "prod-1", CreateProductInput: validProductInput()},
	})
	if !errors.Is(err, ErrCatalogForbidden) {
		t.Fatalf("expected ErrCatalogForbidden, got %v", err)
	}
	if len(repo.updated) != 0 {
		t.Fatalf("expected no updates, got %d", len(repo.updated))
	}
}

func TestCatalogServiceDeleteProduct(t *testing.T) {
	repo := newStubCatalogRepo()
	repo.products["prod-1"] = domain.Product{ID: "prod-1", SellerID: "seller-1"}

	svc, err := NewCatalogService(CatalogServiceDeps{Catalog: repo, Categories: leafCategories()})
	if err != nil {
		t.Fatalf("NewCatalogService: %v", err)
	}

	if err := svc.DeleteProduct(context.Background(), DeleteProductCommand{SellerID: "seller-2", ProductID: "prod-1"}); !errors.Is(err, ErrCatalogForbidden) {
		t.Fatalf("expected ErrCatalogForbidden, got %v", err)
	}
	if err := svc.DeleteProduct(context.Background(), DeleteProductCommand{SellerID: "seller-1", ProductID: "prod-1"}); err != nil {
		t.Fatalf("DeleteProduct: %v", err)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != "prod-1" {
		t.Fatalf("expected prod-1 deleted, got %v", repo.deleted)
	}
	if err := svc.DeleteProduct(context.Background(), DeleteProductCommand{ProductID: "missing"}); !errors.Is(err, ErrCatalogNotFound) {
		t.Fatalf("expected ErrCatalogNotFound, got %v", err)
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Wireless Mouse":        "wireless-mouse",
		"  Café & Co.  ":        "caf-co",
		"ALL CAPS!!":            "all-caps",
		"already-a-slug":        "already-a-slug",
		"--leading--trailing--": "leading-trailing",
	}
	for input, want := range cases {
		if got := Slugify(input); got != want {
			t.Fatalf("Slugify(%q) = %q, want %q", input, got, want)
		}
	}
}
