package firestore

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	domain "github.com/sellerdesk/api/internal/domain"
	pfirestore "github.com/sellerdesk/api/internal/platform/firestore"
	"github.com/sellerdesk/api/internal/repositories"
)

const (
	productsCollection = "products"
	// productSlugsCollection indexes slug ownership so concurrent creates
	// cannot race the service-level uniqueness probe.
	productSlugsCollection = "productSlugs"
)

var errSlugTaken = errors.New("slug already reserved")

// CatalogRepository persists seller product documents in Firestore. Slug
// uniqueness is enforced through reservation documents written in the same
// transaction as the product.
type CatalogRepository struct {
	provider *pfirestore.Provider
	base     *pfirestore.BaseRepository[productDocument]
}

// NewCatalogRepository constructs a Firestore-backed catalog repository.
func NewCatalogRepository(provider *pfirestore.Provider) (*CatalogRepository, error) {
	if provider == nil {
		return nil, errors.New("catalog repository: firestore provider is required")
	}
	base := pfirestore.NewBaseRepository[productDocument](provider, productsCollection, nil, nil)
	return &CatalogRepository{provider: provider, base: base}, nil
}

type slugReservation struct {
	ProductID string `firestore:"productId"`
	SellerID  string `firestore:"sellerId"`
}

// Insert stores a new product document and reserves its slug atomically. A
// concurrent insert of the same slug loses with a conflict error.
func (r *CatalogRepository) Insert(ctx context.Context, product domain.Product) error {
	if r == nil || r.base == nil || r.provider == nil {
		return errors.New("catalog repository not initialised")
	}
	productID := strings.TrimSpace(product.ID)
	if productID == "" {
		return errors.New("catalog repository: product id is required")
	}
	slug := strings.TrimSpace(product.Slug)
	if slug == "" {
		return errors.New("catalog repository: product slug is required")
	}

	productRef, err := r.base.DocumentRef(ctx, productID)
	if err != nil {
		return err
	}

	return r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		reservationRef, err := r.slugRef(ctx, slug)
		if err != nil {
			return err
		}
		if _, err := tx.Get(reservationRef); err == nil {
			return pfirestore.NewConflictError("products.insert", errSlugTaken)
		} else if status.Code(err) != codes.NotFound {
			return pfirestore.WrapError("products.insert", err)
		}
		if err := tx.Create(reservationRef, slugReservation{ProductID: productID, SellerID: product.SellerID}); err != nil {
			return pfirestore.WrapError("products.insert", err)
		}
		if err := tx.Create(productRef, encodeProductDocument(product)); err != nil {
			return pfirestore.WrapError("products.insert", err)
		}
		return nil
	}, pfirestore.WithTxAttempts(3))
}

// Update replaces the persisted product state with the provided snapshot,
// moving the slug reservation when the slug changed.
func (r *CatalogRepository) Update(ctx context.Context, product domain.Product) error {
	if r == nil || r.base == nil || r.provider == nil {
		return errors.New("catalog repository not initialised")
	}
	productID := strings.TrimSpace(product.ID)
	if productID == "" {
		return errors.New("catalog repository: product id is required")
	}
	slug := strings.TrimSpace(product.Slug)
	if slug == "" {
		return errors.New("catalog repository: product slug is required")
	}

	productRef, err := r.base.DocumentRef(ctx, productID)
	if err != nil {
		return err
	}

	return r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(productRef)
		if err != nil {
			return pfirestore.WrapError("products.update", err)
		}
		var current productDocument
		if err := snap.DataTo(&current); err != nil {
			return pfirestore.WrapError("products.update", err)
		}

		previousSlug := strings.TrimSpace(current.Slug)
		if previousSlug != slug {
			reservationRef, err := r.slugRef(ctx, slug)
			if err != nil {
				return err
			}
			if _, err := tx.Get(reservationRef); err == nil {
				return pfirestore.NewConflictError("products.update", errSlugTaken)
			} else if status.Code(err) != codes.NotFound {
				return pfirestore.WrapError("products.update", err)
			}
			if previousSlug != "" {
				previousRef, err := r.slugRef(ctx, previousSlug)
				if err != nil {
					return err
				}
				if err := tx.Delete(previousRef); err != nil {
					return pfirestore.WrapError("products.update", err)
				}
			}
			if err := tx.Create(reservationRef, slugReservation{ProductID: productID, SellerID: product.SellerID}); err != nil {
				return pfirestore.WrapError("products.update", err)
			}
		}

		if err := tx.Set(productRef, encodeProductDocument(product)); err != nil {
			return pfirestore.WrapError("products.update", err)
		}
		return nil
	}, pfirestore.WithTxAttempts(3))
}

// Delete removes the product document and releases its slug reservation.
func (r *CatalogRepository) Delete(ctx context.Context, productID string) error {
	if r == nil || r.base == nil || r.provider == nil {
		return errors.New("catalog repository not initialised")
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return errors.New("catalog repository: product id is required")
	}

	productRef, err := r.base.DocumentRef(ctx, productID)
	if err != nil {
		return err
	}

	return r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(productRef)
		if err != nil {
			return pfirestore.WrapError("products.delete", err)
		}
		var current productDocument
		if err := snap.DataTo(&current); err != nil {
			return pfirestore.WrapError("products.delete", err)
		}
		if slug := strings.TrimSpace(current.Slug); slug != "" {
			reservationRef, err := r.slugRef(ctx, slug)
			if err != nil {
				return err
			}
			if err := tx.Delete(reservationRef); err != nil {
				return pfirestore.WrapError("products.delete", err)
			}
		}
		if err := tx.Delete(productRef); err != nil {
			return pfirestore.WrapError("products.delete", err)
		}
		return nil
	})
}

func (r *CatalogRepository) slugRef(ctx context.Context, slug string) (*firestore.DocumentRef, error) {
	client, err := r.provider.Client(ctx)
	if err != nil {
		return nil, err
	}
	return client.Collection(productSlugsCollection).Doc(slug), nil
}

// FindByID fetches a single product.
func (r *CatalogRepository) FindByID(ctx context.Context, productID string) (domain.Product, error) {
	if r == nil || r.base == nil {
		return domain.Product{}, errors.New("catalog repository not initialised")
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return domain.Product{}, errors.New("catalog repository: product id is required")
	}
	doc, err := r.base.Get(ctx, productID)
	if err != nil {
		return domain.Product{}, err
	}
	return decodeProductDocument(productID, doc.Data, doc.CreateTime, doc.UpdateTime), nil
}

// FindBySlug fetches the product carrying the given slug. Slugs are unique
// across the catalog; the first match wins when the index is inconsistent.
func (r *CatalogRepository) FindBySlug(ctx context.Context, slug string) (domain.Product, error) {
	if r == nil || r.base == nil {
		return domain.Product{}, errors.New("catalog repository not initialised")
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return domain.Product{}, errors.New("catalog repository: slug is required")
	}
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("slug", "==", slug).Limit(1)
	})
	if err != nil {
		return domain.Product{}, err
	}
	if len(docs) == 0 {
		return domain.Product{}, pfirestore.NewNotFoundError("products.find_by_slug", errSlugNotFound)
	}
	doc := docs[0]
	return decodeProductDocument(doc.ID, doc.Data, doc.CreateTime, doc.UpdateTime), nil
}

// ListBySeller returns a seller's products ordered by most recent update.
// Search filtering happens client-side after the indexed query because
// Firestore has no substring predicate.
func (r *CatalogRepository) ListBySeller(ctx context.Context, sellerID string, filter repositories.ProductListFilter) (domain.CursorPage[domain.Product], error) {
	if r == nil || r.base == nil {
		return domain.CursorPage[domain.Product]{}, errors.New("catalog repository not initialised")
	}
	sellerID = strings.TrimSpace(sellerID)
	if sellerID == "" {
		return domain.CursorPage[domain.Product]{}, errors.New("catalog repository: seller id is required")
	}

	limit := filter.Pagination.PageSize
	if limit < 0 {
		limit = 0
	}
	fetchLimit := limit
	if limit > 0 {
		fetchLimit = limit + 1
	}

	var startAfter []any
	if token := strings.TrimSpace(filter.Pagination.PageToken); token != "" {
		tokenTime, tokenID, err := decodeProductListToken(token)
		if err != nil {
			return domain.CursorPage[domain.Product]{}, fmt.Errorf("catalog repository: invalid page token: %w", err)
		}
		startAfter = []any{tokenTime, tokenID}
	}

	status := strings.TrimSpace(string(filter.Status))
	categoryID := strings.TrimSpace(filter.CategoryID)
	direction := firestore.Desc
	if filter.Sort == domain.SortAsc {
		direction = firestore.Asc
	}

	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		q = q.Where("sellerId", "==", sellerID)
		if status != "" {
			q = q.Where("status", "==", status)
		}
		if categoryID != "" {
			q = q.Where("categoryId", "==", categoryID)
		}
		q = q.OrderBy("updatedAt", direction).OrderBy(firestore.DocumentID, direction)
		if len(startAfter) == 2 {
			q = q.StartAfter(startAfter...)
		}
		if fetchLimit > 0 {
			q = q.Limit(fetchLimit)
		}
		return q
	})
	if err != nil {
		return domain.CursorPage[domain.Product]{}, err
	}

	valueDocs := docs
	nextToken := ""
	if limit > 0 && len(valueDocs) == fetchLimit {
		last := valueDocs[len(valueDocs)-1]
		tokenTime := last.Data.UpdatedAt
		if tokenTime.IsZero() {
			tokenTime = last.UpdateTime
		}
		nextToken = encodeProductListToken(tokenTime, last.ID)
		valueDocs = valueDocs[:len(valueDocs)-1]
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	items := make([]domain.Product, 0, len(valueDocs))
	for _, doc := range valueDocs {
		product := decodeProductDocument(doc.ID, doc.Data, doc.CreateTime, doc.UpdateTime)
		if search != "" && !strings.Contains(strings.ToLower(product.Name), search) && !strings.Contains(strings.ToLower(product.Slug), search) {
			continue
		}
		items = append(items, product)
	}

	return domain.CursorPage[domain.Product]{
		Items:         items,
		NextPageToken: nextToken,
	}, nil
}

var errSlugNotFound = errors.New("slug not found")

type productDocument struct {
	SellerID    string              `firestore:"sellerId"`
	Name        string              `firestore:"name"`
	Slug        string              `firestore:"slug"`
	Description string              `firestore:"description"`
	Status      string              `firestore:"status"`
	CategoryID  string              `firestore:"categoryId"`
	BrandID     string              `firestore:"brandId,omitempty"`
	Features    []string            `firestore:"features"`
	Variants    []variantDocument   `firestore:"variants"`
	Images      []imageDocument     `firestore:"images"`
	CreatedAt   time.Time           `firestore:"createdAt"`
	UpdatedAt   time.Time           `firestore:"updatedAt"`
}

type variantDocument struct {
	ID             string                  `firestore:"id"`
	SKU            string                  `firestore:"sku"`
	Price          float64                 `firestore:"price"`
	Stock          int                     `firestore:"stock"`
	IsDefault      bool                    `firestore:"isDefault"`
	ComparePrice   *float64                `firestore:"comparePrice,omitempty"`
	CostPrice      *float64                `firestore:"costPrice,omitempty"`
	TrackQuantity  bool                    `firestore:"trackQuantity"`
	Weight         string                  `firestore:"weight,omitempty"`
	Dimensions     string                  `firestore:"dimensions,omitempty"`
	ShippingClass  string                  `firestore:"shippingClass,omitempty"`
	ReturnPolicy   string                  `firestore:"returnPolicy,omitempty"`
	Warranty       string                  `firestore:"warranty,omitempty"`
	Specifications []specificationDocument `firestore:"specifications"`
}

type specificationDocument struct {
	ID    string `firestore:"id,omitempty"`
	Key   string `firestore:"key"`
	Value string `firestore:"value"`
}

type imageDocument struct {
	ID        string `firestore:"id,omitempty"`
	URL       string `firestore:"url"`
	AltText   string `firestore:"altText"`
	SortOrder int    `firestore:"sortOrder"`
	Type      string `firestore:"type"`
}

func encodeProductDocument(product domain.Product) productDocument {
	doc := productDocument{
		SellerID:    strings.TrimSpace(product.SellerID),
		Name:        strings.TrimSpace(product.Name),
		Slug:        strings.TrimSpace(product.Slug),
		Description: product.Description,
		Status:      string(product.Status),
		CategoryID:  strings.TrimSpace(product.CategoryID),
		BrandID:     strings.TrimSpace(product.BrandID),
		Features:    append([]string(nil), product.Features...),
		CreatedAt:   product.CreatedAt.UTC(),
		UpdatedAt:   product.UpdatedAt.UTC(),
	}
	doc.Variants = make([]variantDocument, 0, len(product.Variants))
	for _, variant := range product.Variants {
		doc.Variants = append(doc.Variants, encodeVariantDocument(variant))
	}
	doc.Images = make([]imageDocument, 0, len(product.Images))
	for _, image := range product.Images {
		doc.Images = append(doc.Images, imageDocument{
			ID:        image.ID,
			URL:       image.URL,
			AltText:   image.AltText,
			SortOrder: image.SortOrder,
			Type:      string(image.Type),
		})
	}
	return doc
}

func encodeVariantDocument(variant domain.ProductVariant) variantDocument {
	doc := variantDocument{
		ID:            variant.ID,
		SKU:           variant.SKU,
		Price:         variant.Price,
		Stock:         variant.Stock,
		IsDefault:     variant.IsDefault,
		ComparePrice:  variant.Attributes.ComparePrice,
		CostPrice:     variant.Attributes.CostPrice,
		TrackQuantity: variant.Attributes.TrackQuantity,
		Weight:        variant.Attributes.Weight,
		Dimensions:    variant.Attributes.Dimensions,
		ShippingClass: string(variant.Attributes.ShippingClass),
		ReturnPolicy:  variant.Attributes.ReturnPolicy,
		Warranty:      variant.Attributes.Warranty,
	}
	doc.Specifications = make([]specificationDocument, 0, len(variant.Specifications))
	for _, spec := range variant.Specifications {
		doc.Specifications = append(doc.Specifications, specificationDocument{ID: spec.ID, Key: spec.Key, Value: spec.Value})
	}
	return doc
}

func decodeProductDocument(id string, doc productDocument, createTime, updateTime time.Time) domain.Product {
	product := domain.Product{
		ID:          id,
		SellerID:    doc.SellerID,
		Name:        doc.Name,
		Slug:        doc.Slug,
		Description: doc.Description,
		Status:      domain.ProductStatus(doc.Status),
		CategoryID:  doc.CategoryID,
		BrandID:     doc.BrandID,
		Features:    append([]string(nil), doc.Features...),
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = createTime
	}
	if product.UpdatedAt.IsZero() {
		product.UpdatedAt = updateTime
	}
	product.Variants = make([]domain.ProductVariant, 0, len(doc.Variants))
	for _, variant := range doc.Variants {
		product.Variants = append(product.Variants, decodeVariantDocument(variant))
	}
	product.Images = make([]domain.ProductImage, 0, len(doc.Images))
	for _, image := range doc.Images {
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

func decodeVariantDocument(doc variantDocument) domain.ProductVariant {
	variant := domain.ProductVariant{
		ID:        doc.ID,
		SKU:       doc.SKU,
		Price:     doc.Price,
		Stock:     doc.Stock,
		IsDefault: doc.IsDefault,
		Attributes: domain.VariantAttributes{
			ComparePrice:  doc.ComparePrice,
			CostPrice:     doc.CostPrice,
			TrackQuantity: doc.TrackQuantity,
			Weight:        doc.Weight,
			Dimensions:    doc.Dimensions,
			ShippingClass: domain.ShippingClass(doc.ShippingClass),
			ReturnPolicy:  doc.ReturnPolicy,
			Warranty:      doc.Warranty,
		},
	}
	variant.Specifications = make([]domain.ProductSpecification, 0, len(doc.Specifications))
	for _, spec := range doc.Specifications {
		variant.Specifications = append(variant.Specifications, domain.ProductSpecification{ID: spec.ID, Key: spec.Key, Value: spec.Value})
	}
	return variant
}

func encodeProductListToken(updatedAt time.Time, docID string) string {
	payload := fmt.Sprintf("%s|%s", updatedAt.UTC().Format(time.RFC3339Nano), docID)
	return base64.RawURLEncoding.EncodeToString([]byte(payload))
}

func decodeProductListToken(token string) (time.Time, string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return time.Time{}, "", err
	}
	parts := strings.SplitN(string(raw), "|", 2)
	if len(parts) != 2 {
		return time.Time{}, "", errors.New("malformed token")
	}
	tokenTime, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return time.Time{}, "", err
	}
	if strings.TrimSpace(parts[1]) == "" {
		return time.Time{}, "", errors.New("malformed token")
	}
	return tokenTime, parts[1], nil
}
