package services

import (
	"context"
	"errors"
	"time"

	domain "github.com/sellerdesk/api/internal/domain"
	"github.com/sellerdesk/api/internal/repositories"
)

// Type aliases expose domain models to the services package without reversing dependency direction.
type (
	Pagination      = domain.Pagination
	SortOrder       = domain.SortOrder
	CategoryNode    = domain.CategoryNode
	SpecField       = domain.SpecField
	Product         = domain.Product
	ProductSummary  = domain.ProductSummary
	ProductVariant  = domain.ProductVariant
	ProductImage    = domain.ProductImage
	MediaRef        = domain.MediaRef
	Order           = domain.Order
	OrderStatus     = domain.OrderStatus
	Customer        = domain.Customer
	CustomerMessage = domain.CustomerMessage
	ProductReview   = domain.ProductReview
	ReviewStatus    = domain.ReviewStatus
	Dispute         = domain.Dispute
	DisputeStatus   = domain.DisputeStatus
	Campaign        = domain.Campaign
	Discount        = domain.Discount
	Promotion       = domain.Promotion
	Advertisement   = domain.Advertisement
	MarketingStats  = domain.MarketingStats
)

// CatalogService manages the seller product catalog backing the wizard's
// submissions and the product listing screens.
type CatalogService interface {
	CreateProduct(ctx context.Context, cmd CreateProductCommand) (Product, error)
	UpdateProduct(ctx context.Context, cmd UpdateProductCommand) (Product, error)
	DeleteProduct(ctx context.Context, cmd DeleteProductCommand) error
	GetProduct(ctx context.Context, productID string) (Product, error)
	ListProducts(ctx context.Context, sellerID string, filter ProductListFilter) (domain.CursorPage[ProductSummary], error)
}

// CreateProductCommand carries one product creation request.
type CreateProductCommand struct {
	SellerID string
	Input    domain.CreateProductInput
}

// UpdateProductCommand carries one product update request.
type UpdateProductCommand struct {
	SellerID string
	Input    domain.UpdateProductInput
}

// DeleteProductCommand identifies the product to remove.
type DeleteProductCommand struct {
	SellerID  string
	ProductID string
}

// ProductListFilter narrows seller product listings.
type ProductListFilter struct {
	Status     domain.ProductStatus
	CategoryID string
	Search     string
	Sort       SortOrder
	Pagination Pagination
}

// CategoryService serves the category taxonomy and its specification
// descriptors, plus the admin-side category mutations.
type CategoryService interface {
	ListCategories(ctx context.Context) ([]CategoryNode, error)
	GetCategory(ctx context.Context, categoryID string) (CategoryNode, error)
	ListSpecifications(ctx context.Context, categoryID string) ([]SpecField, error)
	CreateCategory(ctx context.Context, cmd CreateCategoryCommand) (CategoryNode, error)
	CreateSubCategory(ctx context.Context, cmd CreateSubCategoryCommand) (CategoryNode, error)
	CreateSpecification(ctx context.Context, cmd CreateSpecificationCommand) (SpecField, error)
}

// CreateCategoryCommand carries a root category creation request.
type CreateCategoryCommand struct {
	Name     string
	IsActive *bool
}

// CreateSubCategoryCommand carries a subcategory creation request.
type CreateSubCategoryCommand struct {
	ParentID string
	Name     string
	IsActive *bool
}

// CreateSpecificationCommand carries a specification descriptor creation request.
type CreateSpecificationCommand struct {
	CategoryID  string
	Key         string
	Label       string
	Placeholder string
}

// MediaKind distinguishes validation profiles for uploaded files.
type MediaKind string

const (
	MediaKindImage MediaKind = "image"
	MediaKindVideo MediaKind = "video"
)

// MediaService validates upload requests, issues signed upload and download
// URLs and resolves public media URLs.
type MediaService interface {
	SignUpload(ctx context.Context, cmd SignUploadCommand) (SignedUpload, error)
	SignDownload(ctx context.Context, cmd SignDownloadCommand) (SignedDownload, error)
}

// SignUploadCommand describes one file upload the caller wants authorised.
type SignUploadCommand struct {
	SellerID    string
	DraftID     string
	UploadID    string
	FileName    string
	ContentType string
	SizeBytes   int64
	Kind        MediaKind
	Promotional bool
}

// SignedUpload is the signed URL bundle returned for one authorised upload.
type SignedUpload struct {
	UploadURL string
	Method    string
	Headers   map[string]string
	ExpiresAt time.Time
	PublicURL string
	PublicID  string
}

// SignDownloadCommand requests a short-lived download URL for a stored object.
// The caller identity travels on the context; owner checks happen against the
// seller segment of the object path.
type SignDownloadCommand struct {
	ObjectID string
	FileName string
}

// SignedDownload is the signed URL bundle returned for one authorised download.
type SignedDownload struct {
	DownloadURL string
	Method      string
	ExpiresAt   time.Time
}

// OrderService exposes dashboard order listings and status transitions.
type OrderService interface {
	ListOrders(ctx context.Context, filter OrderListFilter) (domain.CursorPage[Order], error)
	GetOrder(ctx context.Context, orderID string) (Order, error)
	UpdateStatus(ctx context.Context, cmd OrderStatusCommand) (Order, error)
	BulkUpdateStatus(ctx context.Context, cmd BulkOrderStatusCommand) ([]Order, error)
}

// OrderListFilter narrows dashboard order listings.
type OrderListFilter struct {
	Search     string
	Status     OrderStatus
	Priority   domain.Priority
	Pagination Pagination
}

// OrderStatusCommand requests one order status transition.
type OrderStatusCommand struct {
	OrderID string
	Status  OrderStatus
}

// BulkOrderStatusCommand requests the same transition on several orders.
type BulkOrderStatusCommand struct {
	OrderIDs []string
	Status   OrderStatus
}

// CustomerService exposes customer listings, message threads, review
// moderation and dispute handling.
type CustomerService interface {
	ListCustomers(ctx context.Context, filter CustomerListFilter) (domain.CursorPage[Customer], error)
	GetCustomer(ctx context.Context, customerID string) (Customer, error)
	ListMessages(ctx context.Context, pager Pagination) (domain.CursorPage[CustomerMessage], error)
	ReplyToMessage(ctx context.Context, cmd MessageReplyCommand) (CustomerMessage, error)
	UpdateMessageStatus(ctx context.Context, cmd MessageStatusCommand) (CustomerMessage, error)
	ListReviews(ctx context.Context, pager Pagination) (domain.CursorPage[ProductReview], error)
	ModerateReview(ctx context.Context, cmd ReviewModerationCommand) (ProductReview, error)
	ListDisputes(ctx context.Context, pager Pagination) (domain.CursorPage[Dispute], error)
	UpdateDisputeStatus(ctx context.Context, cmd DisputeStatusCommand) (Dispute, error)
	ResolveDispute(ctx context.Context, cmd DisputeResolutionCommand) (Dispute, error)
}

// CustomerListFilter narrows customer listings.
type CustomerListFilter struct {
	Search     string
	Status     domain.CustomerStatus
	Pagination Pagination
}

// MessageReplyCommand appends a seller reply to a message thread.
type MessageReplyCommand struct {
	MessageID string
	Body      string
}

// MessageStatusCommand sets the read state of a message.
type MessageStatusCommand struct {
	MessageID string
	Status    domain.MessageStatus
}

// ReviewModerationCommand requests one review moderation transition.
type ReviewModerationCommand struct {
	ReviewID string
	Status   ReviewStatus
}

// DisputeStatusCommand requests one dispute status transition.
type DisputeStatusCommand struct {
	DisputeID string
	Status    DisputeStatus
}

// DisputeResolutionCommand closes out a dispute with a resolution note.
type DisputeResolutionCommand struct {
	DisputeID  string
	Resolution string
}

// MarketingService exposes campaign, discount, promotion and advertisement
// management plus the aggregate dashboard stats.
type MarketingService interface {
	ListCampaigns(ctx context.Context, pager Pagination) (domain.CursorPage[Campaign], error)
	CreateCampaign(ctx context.Context, campaign Campaign) (Campaign, error)
	UpdateCampaign(ctx context.Context, campaign Campaign) (Campaign, error)
	ListDiscounts(ctx context.Context, pager Pagination) (domain.CursorPage[Discount], error)
	CreateDiscount(ctx context.Context, discount Discount) (Discount, error)
	UpdateDiscount(ctx context.Context, discount Discount) (Discount, error)
	ListPromotions(ctx context.Context, pager Pagination) (domain.CursorPage[Promotion], error)
	CreatePromotion(ctx context.Context, promotion Promotion) (Promotion, error)
	UpdatePromotion(ctx context.Context, promotion Promotion) (Promotion, error)
	ListAdvertisements(ctx context.Context, pager Pagination) (domain.CursorPage[Advertisement], error)
	CreateAdvertisement(ctx context.Context, ad Advertisement) (Advertisement, error)
	UpdateAdvertisement(ctx context.Context, ad Advertisement) (Advertisement, error)
	Stats(ctx context.Context) (MarketingStats, error)
}

// HealthReport aggregates dependency check outcomes for the health endpoints.
type HealthReport = domain.HealthReport

// SystemService reports service health for liveness and readiness probes.
type SystemService interface {
	Health(ctx context.Context) HealthReport
	Ready(ctx context.Context) (HealthReport, error)
}

func isNotFound(err error) bool {
	var repoErr repositories.RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsNotFound()
}

func isConflict(err error) bool {
	var repoErr repositories.RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsConflict()
}
