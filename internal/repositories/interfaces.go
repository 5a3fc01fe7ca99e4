package repositories

import (
	"context"

	domain "github.com/sellerdesk/api/internal/domain"
)

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// ProductListFilter narrows product listings for one seller.
type ProductListFilter struct {
	Status     domain.ProductStatus
	CategoryID string
	Search     string
	Sort       domain.SortOrder
	Pagination domain.Pagination
}

// CatalogRepository persists seller product records.
type CatalogRepository interface {
	Insert(ctx context.Context, product domain.Product) error
	Update(ctx context.Context, product domain.Product) error
	Delete(ctx context.Context, productID string) error
	FindByID(ctx context.Context, productID string) (domain.Product, error)
	FindBySlug(ctx context.Context, slug string) (domain.Product, error)
	ListBySeller(ctx context.Context, sellerID string, filter ProductListFilter) (domain.CursorPage[domain.Product], error)
}

// CategoryRepository serves the read-mostly category taxonomy and its
// specification descriptors.
type CategoryRepository interface {
	ListRoots(ctx context.Context) ([]domain.CategoryNode, error)
	FindByID(ctx context.Context, categoryID string) (domain.CategoryNode, error)
	Insert(ctx context.Context, category domain.CategoryNode) error
	InsertChild(ctx context.Context, parentID string, category domain.CategoryNode) error
	AppendSpecField(ctx context.Context, categoryID string, field domain.SpecField) error
}

// OrderListFilter narrows order listings.
type OrderListFilter struct {
	Filter     domain.OrderFilter
	Pagination domain.Pagination
}

// OrderRepository persists dashboard order records.
type OrderRepository interface {
	List(ctx context.Context, filter OrderListFilter) (domain.CursorPage[domain.Order], error)
	FindByID(ctx context.Context, orderID string) (domain.Order, error)
	Update(ctx context.Context, order domain.Order) error
}

// CustomerListFilter narrows customer listings.
type CustomerListFilter struct {
	Filter     domain.CustomerFilter
	Pagination domain.Pagination
}

// CustomerRepository persists aggregated customer records.
type CustomerRepository interface {
	List(ctx context.Context, filter CustomerListFilter) (domain.CursorPage[domain.Customer], error)
	FindByID(ctx context.Context, customerID string) (domain.Customer, error)
}

// MessageRepository persists customer message threads.
type MessageRepository interface {
	List(ctx context.Context, pager domain.Pagination) (domain.CursorPage[domain.CustomerMessage], error)
	FindByID(ctx context.Context, messageID string) (domain.CustomerMessage, error)
	Update(ctx context.Context, message domain.CustomerMessage) error
}

// ReviewRepository persists product reviews pending moderation.
type ReviewRepository interface {
	List(ctx context.Context, pager domain.Pagination) (domain.CursorPage[domain.ProductReview], error)
	FindByID(ctx context.Context, reviewID string) (domain.ProductReview, error)
	Update(ctx context.Context, review domain.ProductReview) error
}

// DisputeRepository persists customer disputes.
type DisputeRepository interface {
	List(ctx context.Context, pager domain.Pagination) (domain.CursorPage[domain.Dispute], error)
	FindByID(ctx context.Context, disputeID string) (domain.Dispute, error)
	Update(ctx context.Context, dispute domain.Dispute) error
}

// CampaignRepository persists marketing campaigns.
type CampaignRepository interface {
	List(ctx context.Context, pager domain.Pagination) (domain.CursorPage[domain.Campaign], error)
	FindByID(ctx context.Context, campaignID string) (domain.Campaign, error)
	Insert(ctx context.Context, campaign domain.Campaign) error
	Update(ctx context.Context, campaign domain.Campaign) error
}

// DiscountRepository persists discount codes.
type DiscountRepository interface {
	List(ctx context.Context, pager domain.Pagination) (domain.CursorPage[domain.Discount], error)
	FindByID(ctx context.Context, discountID string) (domain.Discount, error)
	Insert(ctx context.Context, discount domain.Discount) error
	Update(ctx context.Context, discount domain.Discount) error
}

// PromotionRepository persists product placement promotions.
type PromotionRepository interface {
	List(ctx context.Context, pager domain.Pagination) (domain.CursorPage[domain.Promotion], error)
	FindByID(ctx context.Context, promotionID string) (domain.Promotion, error)
	Insert(ctx context.Context, promotion domain.Promotion) error
	Update(ctx context.Context, promotion domain.Promotion) error
}

// AdvertisementRepository persists external ad placements.
type AdvertisementRepository interface {
	List(ctx context.Context, pager domain.Pagination) (domain.CursorPage[domain.Advertisement], error)
	FindByID(ctx context.Context, adID string) (domain.Advertisement, error)
	Insert(ctx context.Context, ad domain.Advertisement) error
	Update(ctx context.Context, ad domain.Advertisement) error
}

// HealthRepository evaluates backing dependency probes for readiness checks.
type HealthRepository interface {
	Collect(ctx context.Context) (domain.HealthReport, error)
}
