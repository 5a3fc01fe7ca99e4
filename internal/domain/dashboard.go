package domain

import (
	"time"
)

// OrderStatus describes the fulfilment lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusReturned   OrderStatus = "returned"
)

// Priority ranks orders, messages and disputes for triage.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// OrderLine is one purchased product within an order.
type OrderLine struct {
	Name     string  `yaml:"name"`
	Quantity int     `yaml:"quantity"`
	Price    float64 `yaml:"price"`
}

// Order is a customer purchase visible on the seller dashboard.
type Order struct {
	ID              string      `yaml:"id"`
	CustomerName    string      `yaml:"customerName"`
	CustomerEmail   string      `yaml:"customerEmail"`
	Total           float64     `yaml:"total"`
	Status          OrderStatus `yaml:"status"`
	PlacedAt        time.Time   `yaml:"placedAt"`
	ItemCount       int         `yaml:"itemCount"`
	Priority        Priority    `yaml:"priority"`
	ShippingAddress string      `yaml:"shippingAddress"`
	TrackingNumber  string      `yaml:"trackingNumber,omitempty"`
	Lines           []OrderLine `yaml:"lines"`
}

// CustomerStatus describes a customer's standing with the seller.
type CustomerStatus string

const (
	CustomerStatusActive   CustomerStatus = "active"
	CustomerStatusVIP      CustomerStatus = "vip"
	CustomerStatusInactive CustomerStatus = "inactive"
)

// Customer is an aggregated customer record for the dashboard.
type Customer struct {
	ID           string         `yaml:"id"`
	Name         string         `yaml:"name"`
	Email        string         `yaml:"email"`
	AvatarURL    string         `yaml:"avatarUrl,omitempty"`
	OrderCount   int            `yaml:"orderCount"`
	TotalSpent   float64        `yaml:"totalSpent"`
	Rating       float64        `yaml:"rating"`
	Status       CustomerStatus `yaml:"status"`
	LastOrderAt  time.Time      `yaml:"lastOrderAt"`
	MessageCount int            `yaml:"messageCount"`
	JoinedAt     time.Time      `yaml:"joinedAt"`
}

// MessageStatus tracks the read/reply state of a customer message.
type MessageStatus string

const (
	MessageStatusUnread  MessageStatus = "unread"
	MessageStatusRead    MessageStatus = "read"
	MessageStatusReplied MessageStatus = "replied"
)

// MessageSender identifies which party authored a message reply.
type MessageSender string

const (
	SenderCustomer MessageSender = "customer"
	SenderSeller   MessageSender = "seller"
)

// MessageReply is one entry in a message thread.
type MessageReply struct {
	ID     string        `yaml:"id"`
	Body   string        `yaml:"body"`
	Sender MessageSender `yaml:"sender"`
	SentAt time.Time     `yaml:"sentAt"`
}

// CustomerMessage is an inbound customer inquiry with its reply thread.
type CustomerMessage struct {
	ID         string         `yaml:"id"`
	CustomerID string         `yaml:"customerId"`
	Customer   string         `yaml:"customer"`
	Subject    string         `yaml:"subject"`
	Body       string         `yaml:"body"`
	Preview    string         `yaml:"preview"`
	ReceivedAt time.Time      `yaml:"receivedAt"`
	Status     MessageStatus  `yaml:"status"`
	Priority   Priority       `yaml:"priority"`
	OrderID    string         `yaml:"orderId,omitempty"`
	Replies    []MessageReply `yaml:"replies,omitempty"`
}

// ReviewStatus tracks the moderation state of a product review.
type ReviewStatus string

const (
	ReviewStatusPending   ReviewStatus = "pending"
	ReviewStatusPublished ReviewStatus = "published"
	ReviewStatusFlagged   ReviewStatus = "flagged"
	ReviewStatusRejected  ReviewStatus = "rejected"
)

// ProductReview is a customer review awaiting or past moderation.
type ProductReview struct {
	ID           string       `yaml:"id"`
	CustomerID   string       `yaml:"customerId"`
	Customer     string       `yaml:"customer"`
	ProductID    string       `yaml:"productId"`
	Product      string       `yaml:"product"`
	Rating       int          `yaml:"rating"`
	Comment      string       `yaml:"comment"`
	SubmittedAt  time.Time    `yaml:"submittedAt"`
	Status       ReviewStatus `yaml:"status"`
	HelpfulCount int          `yaml:"helpfulCount"`
}

// DisputeStatus tracks the handling state of a customer dispute.
type DisputeStatus string

const (
	DisputeStatusOpen       DisputeStatus = "open"
	DisputeStatusInProgress DisputeStatus = "in_progress"
	DisputeStatusResolved   DisputeStatus = "resolved"
	DisputeStatusClosed     DisputeStatus = "closed"
)

// Dispute is a customer complaint tied to an order.
type Dispute struct {
	ID          string        `yaml:"id"`
	CustomerID  string        `yaml:"customerId"`
	Customer    string        `yaml:"customer"`
	OrderID     string        `yaml:"orderId"`
	Issue       string        `yaml:"issue"`
	Description string        `yaml:"description"`
	OpenedAt    time.Time     `yaml:"openedAt"`
	Status      DisputeStatus `yaml:"status"`
	Priority    Priority      `yaml:"priority"`
	Resolution  string        `yaml:"resolution,omitempty"`
}

// CampaignType enumerates the supported marketing campaign kinds.
type CampaignType string

const (
	CampaignTypeDiscount      CampaignType = "discount"
	CampaignTypePromotion     CampaignType = "promotion"
	CampaignTypeAdvertisement CampaignType = "advertisement"
	CampaignTypeSocialMedia   CampaignType = "social_media"
)

// CampaignStatus tracks a campaign's lifecycle.
type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "draft"
	CampaignStatusActive    CampaignStatus = "active"
	CampaignStatusPaused    CampaignStatus = "paused"
	CampaignStatusCompleted CampaignStatus = "completed"
)

// Campaign is a seller marketing campaign with performance counters.
type Campaign struct {
	ID             string         `yaml:"id"`
	Name           string         `yaml:"name"`
	Type           CampaignType   `yaml:"type"`
	Status         CampaignStatus `yaml:"status"`
	Budget         float64        `yaml:"budget"`
	Spent          float64        `yaml:"spent"`
	Impressions    int64          `yaml:"impressions"`
	Clicks         int64          `yaml:"clicks"`
	Conversions    int64          `yaml:"conversions"`
	StartDate      time.Time      `yaml:"startDate"`
	EndDate        time.Time      `yaml:"endDate"`
	Description    string         `yaml:"description"`
	TargetAudience string         `yaml:"targetAudience,omitempty"`
	Platforms      []string       `yaml:"platforms,omitempty"`
}

// DiscountType enumerates how a discount code reduces the order total.
type DiscountType string

const (
	DiscountTypePercentage   DiscountType = "percentage"
	DiscountTypeFixed        DiscountType = "fixed"
	DiscountTypeFreeShipping DiscountType = "free_shipping"
)

// DiscountStatus tracks whether a discount code is redeemable.
type DiscountStatus string

const (
	DiscountStatusActive   DiscountStatus = "active"
	DiscountStatusInactive DiscountStatus = "inactive"
	DiscountStatusExpired  DiscountStatus = "expired"
)

// DiscountConditions restrict when a discount code applies.
type DiscountConditions struct {
	MinOrderValue      float64  `yaml:"minOrderValue,omitempty"`
	ApplicableProducts []string `yaml:"applicableProducts,omitempty"`
	FirstTimeCustomers bool     `yaml:"firstTimeCustomers,omitempty"`
}

// Discount is a redeemable discount code.
type Discount struct {
	ID          string              `yaml:"id"`
	Code        string              `yaml:"code"`
	Type        DiscountType        `yaml:"type"`
	Value       float64             `yaml:"value"`
	UsageCount  int                 `yaml:"usageCount"`
	UsageLimit  int                 `yaml:"usageLimit"`
	Status      DiscountStatus      `yaml:"status"`
	ExpiresAt   time.Time           `yaml:"expiresAt"`
	Description string              `yaml:"description"`
	Conditions  *DiscountConditions `yaml:"conditions,omitempty"`
}

// PromotionType enumerates product placement promotion kinds.
type PromotionType string

const (
	PromotionTypeFeaturedListing   PromotionType = "featured_listing"
	PromotionTypeBanner            PromotionType = "banner"
	PromotionTypeCategoryFeature   PromotionType = "category_feature"
	PromotionTypeHomepageSpotlight PromotionType = "homepage_spotlight"
)

// PromotionStatus tracks a promotion's scheduling lifecycle.
type PromotionStatus string

const (
	PromotionStatusActive    PromotionStatus = "active"
	PromotionStatusScheduled PromotionStatus = "scheduled"
	PromotionStatusCompleted PromotionStatus = "completed"
	PromotionStatusPaused    PromotionStatus = "paused"
)

// Promotion is a product placement promotion with performance counters.
type Promotion struct {
	ID          string          `yaml:"id"`
	Name        string          `yaml:"name"`
	Type        PromotionType   `yaml:"type"`
	ProductIDs  []string        `yaml:"productIds"`
	Status      PromotionStatus `yaml:"status"`
	StartDate   time.Time       `yaml:"startDate"`
	EndDate     time.Time       `yaml:"endDate"`
	Views       int64           `yaml:"views"`
	Clicks      int64           `yaml:"clicks"`
	Conversions int64           `yaml:"conversions"`
	Budget      float64         `yaml:"budget,omitempty"`
}

// AdPlatform enumerates supported external advertising platforms.
type AdPlatform string

const (
	AdPlatformGoogle    AdPlatform = "google"
	AdPlatformFacebook  AdPlatform = "facebook"
	AdPlatformInstagram AdPlatform = "instagram"
	AdPlatformTwitter   AdPlatform = "twitter"
	AdPlatformLinkedIn  AdPlatform = "linkedin"
)

// AdObjective enumerates the optimisation goal of an advertisement.
type AdObjective string

const (
	AdObjectiveBrandAwareness AdObjective = "brand_awareness"
	AdObjectiveTraffic        AdObjective = "traffic"
	AdObjectiveConversions    AdObjective = "conversions"
	AdObjectiveLeadGeneration AdObjective = "lead_generation"
)

// AdStatus tracks an advertisement's delivery state.
type AdStatus string

const (
	AdStatusActive    AdStatus = "active"
	AdStatusPaused    AdStatus = "paused"
	AdStatusCompleted AdStatus = "completed"
)

// Advertisement is an external paid placement with delivery metrics.
type Advertisement struct {
	ID             string      `yaml:"id"`
	Name           string      `yaml:"name"`
	Platform       AdPlatform  `yaml:"platform"`
	Budget         float64     `yaml:"budget"`
	Spent          float64     `yaml:"spent"`
	Impressions    int64       `yaml:"impressions"`
	Clicks         int64       `yaml:"clicks"`
	Status         AdStatus    `yaml:"status"`
	StartDate      time.Time   `yaml:"startDate"`
	EndDate        time.Time   `yaml:"endDate"`
	Objective      AdObjective `yaml:"objective"`
	TargetAudience string      `yaml:"targetAudience"`
	CTR            float64     `yaml:"ctr"`
	CPC            float64     `yaml:"cpc"`
}

// MarketingStats is the aggregate summary shown on the marketing dashboard.
type MarketingStats struct {
	TotalCampaigns   int
	ActiveCampaigns  int
	TotalImpressions int64
	ClickRate        float64
	ConversionRate   float64
}

// OrderFilter narrows order listings.
type OrderFilter struct {
	Search   string
	Status   OrderStatus
	Priority Priority
}

// CustomerFilter narrows customer listings.
type CustomerFilter struct {
	Search string
	Status CustomerStatus
}
