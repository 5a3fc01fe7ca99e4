package memory

import (
	"context"
	"strings"
	"sync"

	domain "github.com/sellerdesk/api/internal/domain"
)

// CampaignRepository is a mutex-guarded in-memory campaign store.
type CampaignRepository struct {
	mu        sync.RWMutex
	campaigns []domain.Campaign
}

// NewCampaignRepository seeds the store with the provided campaigns.
func NewCampaignRepository(campaigns []domain.Campaign) *CampaignRepository {
	seeded := make([]domain.Campaign, len(campaigns))
	copy(seeded, campaigns)
	return &CampaignRepository{campaigns: seeded}
}

// List returns all campaigns in seed order.
func (r *CampaignRepository) List(ctx context.Context, pager domain.Pagination) (domain.CursorPage[domain.Campaign], error) {
	if err := ctx.Err(); err != nil {
		return domain.CursorPage[domain.Campaign]{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return paginate(r.campaigns, pager)
}

// FindByID returns the campaign with the given id.
func (r *CampaignRepository) FindByID(ctx context.Context, campaignID string) (domain.Campaign, error) {
	if err := ctx.Err(); err != nil {
		return domain.Campaign{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, campaign := range r.campaigns {
		if campaign.ID == campaignID {
			return campaign, nil
		}
	}
	return domain.Campaign{}, notFoundError("campaigns.find_by_id", "campaign %s not found", campaignID)
}

// Insert appends a new campaign. The ID must be unique.
func (r *CampaignRepository) Insert(ctx context.Context, campaign domain.Campaign) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(campaign.ID) == "" {
		return conflictError("campaigns.insert", "campaign id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.campaigns {
		if existing.ID == campaign.ID {
			return conflictError("campaigns.insert", "campaign %s already exists", campaign.ID)
		}
	}
	r.campaigns = append(r.campaigns, campaign)
	return nil
}

// Update replaces the stored campaign snapshot.
func (r *CampaignRepository) Update(ctx context.Context, campaign domain.Campaign) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.campaigns {
		if r.campaigns[i].ID == campaign.ID {
			r.campaigns[i] = campaign
			return nil
		}
	}
	return notFoundError("campaigns.update", "campaign %s not found", campaign.ID)
}

// DiscountRepository is a mutex-guarded in-memory discount store.
type DiscountRepository struct {
	mu        sync.RWMutex
	discounts []domain.Discount
}

// NewDiscountRepository seeds the store with the provided discounts.
func NewDiscountRepository(discounts []domain.Discount) *DiscountRepository {
	seeded := make([]domain.Discount, len(discounts))
	copy(seeded, discounts)
	return &DiscountRepository{discounts: seeded}
}

// List returns all discounts in seed order.
func (r *DiscountRepository) List(ctx context.Context, pager domain.Pagination) (domain.CursorPage[domain.Discount], error) {
	if err := ctx.Err(); err != nil {
		return domain.CursorPage[domain.Discount]{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return paginate(r.discounts, pager)
}

// FindByID returns the discount with the given id.
func (r *DiscountRepository) FindByID(ctx context.Context, discountID string) (domain.Discount, error) {
	if err := ctx.Err(); err != nil {
		return domain.Discount{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, discount := range r.discounts {
		if discount.ID == discountID {
			return discount, nil
		}
	}
	return domain.Discount{}, notFoundError("discounts.find_by_id", "discount %s not found", discountID)
}

// Insert appends a new discount. Both the ID and the code must be unique.
func (r *DiscountRepository) Insert(ctx context.Context, discount domain.Discount) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(discount.ID) == "" {
		return conflictError("discounts.insert", "discount id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.discounts {
		if existing.ID == discount.ID {
			return conflictError("discounts.insert", "discount %s already exists", discount.ID)
		}
		if strings.EqualFold(existing.Code, discount.Code) {
			return conflictError("discounts.insert", "discount code %s already exists", discount.Code)
		}
	}
	r.discounts = append(r.discounts, discount)
	return nil
}

// Update replaces the stored discount snapshot.
func (r *DiscountRepository) Update(ctx context.Context, discount domain.Discount) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.discounts {
		if r.discounts[i].ID == discount.ID {
			r.discounts[i] = discount
			return nil
		}
	}
	return notFoundError("discounts.update", "discount %s not found", discount.ID)
}

// PromotionRepository is a mutex-guarded in-memory promotion store.
type PromotionRepository struct {
	mu         sync.RWMutex
	promotions []domain.Promotion
}

// NewPromotionRepository seeds the store with the provided promotions.
func NewPromotionRepository(promotions []domain.Promotion) *PromotionRepository {
	seeded := make([]domain.Promotion, len(promotions))
	copy(seeded, promotions)
	return &PromotionRepository{promotions: seeded}
}

// List returns all promotions in seed order.
func (r *PromotionRepository) List(ctx context.Context, pager domain.Pagination) (domain.CursorPage[domain.Promotion], error) {
	if err := ctx.Err(); err != nil {
		return domain.CursorPage[domain.Promotion]{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return paginate(r.promotions, pager)
}

// FindByID returns the promotion with the given id.
func (r *PromotionRepository) FindByID(ctx context.Context, promotionID string) (domain.Promotion, error) {
	if err := ctx.Err(); err != nil {
		return domain.Promotion{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, promotion := range r.promotions {
		if promotion.ID == promotionID {
			return promotion, nil
		}
	}
	return domain.Promotion{}, notFoundError("promotions.find_by_id", "promotion %s not found", promotionID)
}

// Insert appends a new promotion. The ID must be unique.
func (r *PromotionRepository) Insert(ctx context.Context, promotion domain.Promotion) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(promotion.ID) == "" {
		return conflictError("promotions.insert", "promotion id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.promotions {
		if existing.ID == promotion.ID {
			return conflictError("promotions.insert", "promotion %s already exists", promotion.ID)
		}
	}
	r.promotions = append(r.promotions, promotion)
	return nil
}

// Update replaces the stored promotion snapshot.
func (r *PromotionRepository) Update(ctx context.Context, promotion domain.Promotion) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.promotions {
		if r.promotions[i].ID == promotion.ID {
			r.promotions[i] = promotion
			return nil
		}
	}
	return notFoundError("promotions.update", "promotion %s not found", promotion.ID)
}

// AdvertisementRepository is a mutex-guarded in-memory advertisement store.
type AdvertisementRepository struct {
	mu  sync.RWMutex
	ads []domain.Advertisement
}

// NewAdvertisementRepository seeds the store with the provided advertisements.
func NewAdvertisementRepository(ads []domain.Advertisement) *AdvertisementRepository {
	seeded := make([]domain.Advertisement, len(ads))
	copy(seeded, ads)
	return &AdvertisementRepository{ads: seeded}
}

// List returns all advertisements in seed order.
func (r *AdvertisementRepository) List(ctx context.Context, pager domain.Pagination) (domain.CursorPage[domain.Advertisement], error) {
	if err := ctx.Err(); err != nil {
		return domain.CursorPage[domain.Advertisement]{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return paginate(r.ads, pager)
}

// FindByID returns the advertisement with the given id.
func (r *AdvertisementRepository) FindByID(ctx context.Context, adID string) (domain.Advertisement, error) {
	if err := ctx.Err(); err != nil {
		return domain.Advertisement{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, ad := range r.ads {
		if ad.ID == adID {
			return ad, nil
		}
	}
	return domain.Advertisement{}, notFoundError("advertisements.find_by_id", "advertisement %s not found", adID)
}

// Insert appends a new advertisement. The ID must be unique.
func (r *AdvertisementRepository) Insert(ctx context.Context, ad domain.Advertisement) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(ad.ID) == "" {
		return conflictError("advertisements.insert", "advertisement id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.ads {
		if existing.ID == ad.ID {
			return conflictError("advertisements.insert", "advertisement %s already exists", ad.ID)
		}
	}
	r.ads = append(r.ads, ad)
	return nil
}

// Update replaces the stored advertisement snapshot.
func (r *AdvertisementRepository) Update(ctx context.Context, ad domain.Advertisement) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.ads {
		if r.ads[i].ID == ad.ID {
			r.ads[i] = ad
			return nil
		}
	}
	return notFoundError("advertisements.update", "advertisement %s not found", ad.ID)
}
