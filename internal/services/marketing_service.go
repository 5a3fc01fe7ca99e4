package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"

	domain "github.com/sellerdesk/api/internal/domain"
	"github.com/sellerdesk/api/internal/repositories"
)

var (
	// ErrMarketingNotFound indicates the requested record does not exist.
	ErrMarketingNotFound = errors.New("marketing service: not found")
	// ErrMarketingInvalidInput indicates the caller supplied invalid data.
	ErrMarketingInvalidInput = errors.New("marketing service: invalid input")
	// ErrMarketingConflict indicates a duplicate id or discount code.
	ErrMarketingConflict = errors.New("marketing service: conflict")
)

// MarketingServiceDeps bundles constructor inputs for the marketing service.
type MarketingServiceDeps struct {
	Campaigns      repositories.CampaignRepository
	Discounts      repositories.DiscountRepository
	Promotions     repositories.PromotionRepository
	Advertisements repositories.AdvertisementRepository
	IDGen          func() string
}

type marketingService struct {
	campaigns  repositories.CampaignRepository
	discounts  repositories.DiscountRepository
	promotions repositories.PromotionRepository
	ads        repositories.AdvertisementRepository
	idGen      func() string
}

// NewMarketingService constructs the marketing service with the supplied dependencies.
func NewMarketingService(deps MarketingServiceDeps) (MarketingService, error) {
	if deps.Campaigns == nil || deps.Discounts == nil || deps.Promotions == nil || deps.Advertisements == nil {
		return nil, fmt.Errorf("marketing service: all repositories are required")
	}
	idGen := deps.IDGen
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}
	return &marketingService{
		campaigns:  deps.Campaigns,
		discounts:  deps.Discounts,
		promotions: deps.Promotions,
		ads:        deps.Advertisements,
		idGen:      idGen,
	}, nil
}

func (s *marketingService) ListCampaigns(ctx context.Context, pager Pagination) (domain.CursorPage[Campaign], error) {
	page, err := s.campaigns.List(ctx, pager)
	if err != nil {
		return domain.CursorPage[Campaign]{}, fmt.Errorf("marketing service: list campaigns: %w", err)
	}
	return page, nil
}

func (s *marketingService) CreateCampaign(ctx context.Context, campaign Campaign) (Campaign, error) {
	if strings.TrimSpace(campaign.Name) == "" {
		return Campaign{}, fmt.Errorf("%w: campaign name is required", ErrMarketingInvalidInput)
	}
	campaign.ID = s.idGen()
	if campaign.Status == "" {
		campaign.Status = domain.CampaignStatusDraft
	}
	if err := s.campaigns.Insert(ctx, campaign); err != nil {
		if isConflict(err) {
			return Campaign{}, ErrMarketingConflict
		}
		return Campaign{}, fmt.Errorf("marketing service: create campaign: %w", err)
	}
	return campaign, nil
}

func (s *marketingService) UpdateCampaign(ctx context.Context, campaign Campaign) (Campaign, error) {
	if strings.TrimSpace(campaign.ID) == "" {
		return Campaign{}, fmt.Errorf("%w: campaign id is required", ErrMarketingInvalidInput)
	}
	if err := s.campaigns.Update(ctx, campaign); err != nil {
		if isNotFound(err) {
			return Campaign{}, ErrMarketingNotFound
		}
		return Campaign{}, fmt.Errorf("marketing service: update campaign: %w", err)
	}
	return campaign, nil
}

func (s *marketingService) ListDiscounts(ctx context.Context, pager Pagination) (domain.CursorPage[Discount], error) {
	page, err := s.discounts.List(ctx, pager)
	if err != nil {
		return domain.CursorPage[Discount]{}, fmt.Errorf("marketing service: list discounts: %w", err)
	}
	return page, nil
}

func (s *marketingService) CreateDiscount(ctx context.Context, discount Discount) (Discount, error) {
	if strings.TrimSpace(discount.Code) == "" {
		return Discount{}, fmt.Errorf("%w: discount code is required", ErrMarketingInvalidInput)
	}
	discount.ID = s.idGen()
	discount.Code = strings.ToUpper(strings.TrimSpace(discount.Code))
	if discount.Status == "" {
		discount.Status = domain.DiscountStatusActive
	}
	if err := s.discounts.Insert(ctx, discount); err != nil {
		if isConflict(err) {
			return Discount{}, ErrMarketingConflict
		}
		return Discount{}, fmt.Errorf("marketing service: create discount: %w", err)
	}
	return discount, nil
}

func (s *marketingService) UpdateDiscount(ctx context.Context, discount Discount) (Discount, error) {
	if strings.TrimSpace(discount.ID) == "" {
		return Discount{}, fmt.Errorf("%w: discount id is required", ErrMarketingInvalidInput)
	}
	if err := s.discounts.Update(ctx, discount); err != nil {
		if isNotFound(err) {
			return Discount{}, ErrMarketingNotFound
		}
		return Discount{}, fmt.Errorf("marketing service: update discount: %w", err)
	}
	return discount, nil
}

func (s *marketingService) ListPromotions(ctx context.Context, pager Pagination) (domain.CursorPage[Promotion], error) {
	page, err := s.promotions.List(ctx, pager)
	if err != nil {
		return domain.CursorPage[Promotion]{}, fmt.Errorf("marketing service: list promotions: %w", err)
	}
	return page, nil
}

func (s *marketingService) CreatePromotion(ctx context.Context, promotion Promotion) (Promotion, error) {
	if strings.TrimSpace(promotion.Name) == "" {
		return Promotion{}, fmt.Errorf("%w: promotion name is required", ErrMarketingInvalidInput)
	}
	promotion.ID = s.idGen()
	if promotion.Status == "" {
		promotion.Status = domain.PromotionStatusScheduled
	}
	if err := s.promotions.Insert(ctx, promotion); err != nil {
		if isConflict(err) {
			return Promotion{}, ErrMarketingConflict
		}
		return Promotion{}, fmt.Errorf("marketing service: create promotion: %w", err)
	}
	return promotion, nil
}

func (s *marketingService) UpdatePromotion(ctx context.Context, promotion Promotion) (Promotion, error) {
	if strings.TrimSpace(promotion.ID) == "" {
		return Promotion{}, fmt.Errorf("%w: promotion id is required", ErrMarketingInvalidInput)
	}
	if err := s.promotions.Update(ctx, promotion); err != nil {
		if isNotFound(err) {
			return Promotion{}, ErrMarketingNotFound
		}
		return Promotion{}, fmt.Errorf("marketing service: update promotion: %w", err)
	}
	return promotion, nil
}

func (s *marketingService) ListAdvertisements(ctx context.Context, pager Pagination) (domain.CursorPage[Advertisement], error) {
	page, err := s.ads.List(ctx, pager)
	if err != nil {
		return domain.CursorPage[Advertisement]{}, fmt.Errorf("marketing service: list advertisements: %w", err)
	}
	return page, nil
}

func (s *marketingService) CreateAdvertisement(ctx context.Context, ad Advertisement) (Advertisement, error) {
	if strings.TrimSpace(ad.Name) == "" {
		return Advertisement{}, fmt.Errorf("%w: advertisement name is required", ErrMarketingInvalidInput)
	}
	ad.ID = s.idGen()
	if ad.Status == "" {
		ad.Status = domain.AdStatusPaused
	}
	if err := s.ads.Insert(ctx, ad); err != nil {
		if isConflict(err) {
			return Advertisement{}, ErrMarketingConflict
		}
		return Advertisement{}, fmt.Errorf("marketing service: create advertisement: %w", err)
	}
	return ad, nil
}

func (s *marketingService) UpdateAdvertisement(ctx context.Context, ad Advertisement) (Advertisement, error) {
	if strings.TrimSpace(ad.ID) == "" {
		return Advertisement{}, fmt.Errorf("%w: advertisement id is required", ErrMarketingInvalidInput)
	}
	if err := s.ads.Update(ctx, ad); err != nil {
		if isNotFound(err) {
			return Advertisement{}, ErrMarketingNotFound
		}
		return Advertisement{}, fmt.Errorf("marketing service: update advertisement: %w", err)
	}
	return ad, nil
}

// Stats aggregates campaign counters into the dashboard summary. Rates are
// percentages rounded to one decimal place by the handler layer.
func (s *marketingService) Stats(ctx context.Context) (MarketingStats, error) {
	page, err := s.campaigns.List(ctx, Pagination{})
	if err != nil {
		return MarketingStats{}, fmt.Errorf("marketing service: load campaigns: %w", err)
	}

	stats := MarketingStats{TotalCampaigns: len(page.Items)}
	var clicks, conversions int64
	for _, campaign := range page.Items {
		if campaign.Status == domain.CampaignStatusActive {
			stats.ActiveCampaigns++
		}
		stats.TotalImpressions += campaign.Impressions
		clicks += campaign.Clicks
		conversions += campaign.Conversions
	}
	if stats.TotalImpressions > 0 {
		stats.ClickRate = float64(clicks) / float64(stats.TotalImpressions) * 100
	}
	if clicks > 0 {
		stats.ConversionRate = float64(conversions) / float64(clicks) * 100
	}
	return stats, nil
}
