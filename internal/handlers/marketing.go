package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	domain "github.com/sellerdesk/api/internal/domain"
	"github.com/sellerdesk/api/internal/platform/auth"
	"github.com/sellerdesk/api/internal/platform/httpx"
	"github.com/sellerdesk/api/internal/services"
)

// MarketingHandlers exposes campaign, discount, promotion and advertisement
// management plus the aggregate stats endpoint.
type MarketingHandlers struct {
	authn     *auth.Authenticator
	marketing services.MarketingService
}

// NewMarketingHandlers constructs the marketing endpoints.
func NewMarketingHandlers(authn *auth.Authenticator, marketing services.MarketingService) *MarketingHandlers {
	return &MarketingHandlers{authn: authn, marketing: marketing}
}

// Routes registers the /marketing endpoints.
func (h *MarketingHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireFirebaseAuth(auth.RoleSeller, auth.RoleStaff, auth.RoleAdmin))
	}
	r.Get("/stats", h.stats)
	r.Get("/campaigns", h.listCampaigns)
	r.Post("/campaigns", h.createCampaign)
	r.Put("/campaigns/{campaignID}", h.updateCampaign)
	r.Get("/discounts", h.listDiscounts)
	r.Post("/discounts", h.createDiscount)
	r.Put("/discounts/{discountID}", h.updateDiscount)
	r.Get("/promotions", h.listPromotions)
	r.Post("/promotions", h.createPromotion)
	r.Put("/promotions/{promotionID}", h.updatePromotion)
	r.Get("/advertisements", h.listAdvertisements)
	r.Post("/advertisements", h.createAdvertisement)
	r.Put("/advertisements/{adID}", h.updateAdvertisement)
}

func (h *MarketingHandlers) available(w http.ResponseWriter, r *http.Request) bool {
	if h.marketing == nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("marketing_service_unavailable", "marketing service unavailable", http.StatusServiceUnavailable))
		return false
	}
	return true
}

func (h *MarketingHandlers) stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.available(w, r) {
		return
	}
	stats, err := h.marketing.Stats(ctx)
	if err != nil {
		writeMarketingError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"total_campaigns":   stats.TotalCampaigns,
		"active_campaigns":  stats.ActiveCampaigns,
		"total_impressions": stats.TotalImpressions,
		"click_rate":        stats.ClickRate,
		"conversion_rate":   stats.ConversionRate,
	})
}

func (h *MarketingHandlers) listCampaigns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.available(w, r) {
		return
	}
	pager, err := parsePagination(r)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	page, err := h.marketing.ListCampaigns(ctx, pager)
	if err != nil {
		writeMarketingError(w, r, err)
		return
	}
	items := make([]campaignPayload, 0, len(page.Items))
	for _, campaign := range page.Items {
		items = append(items, buildCampaignPayload(campaign))
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"items": items, "next_page_token": page.NextPageToken})
}

func (h *MarketingHandlers) createCampaign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.available(w, r) {
		return
	}
	campaign, err := decodeCampaignRequest(r, "")
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	created, err := h.marketing.CreateCampaign(ctx, campaign)
	if err != nil {
		writeMarketingError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, buildCampaignPayload(created))
}

func (h *MarketingHandlers) updateCampaign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.available(w, r) {
		return
	}
	campaign, err := decodeCampaignRequest(r, chi.URLParam(r, "campaignID"))
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	updated, err := h.marketing.UpdateCampaign(ctx, campaign)
	if err != nil {
		writeMarketingError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildCampaignPayload(updated))
}

func (h *MarketingHandlers) listDiscounts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.available(w, r) {
		return
	}
	pager, err := parsePagination(r)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	page, err := h.marketing.ListDiscounts(ctx, pager)
	if err != nil {
		writeMarketingError(w, r, err)
		return
	}
	items := make([]discountPayload, 0, len(page.Items))
	for _, discount := range page.Items {
		items = append(items, buildDiscountPayload(discount))
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"items": items, "next_page_token": page.NextPageToken})
}

func (h *MarketingHandlers) createDiscount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.available(w, r) {
		return
	}
	discount, err := decodeDiscountRequest(r, "")
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	created, err := h.marketing.CreateDiscount(ctx, discount)
	if err != nil {
		writeMarketingError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, buildDiscountPayload(created))
}

func (h *MarketingHandlers) updateDiscount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.available(w, r) {
		return
	}
	discount, err := decodeDiscountRequest(r, chi.URLParam(r, "discountID"))
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	updated, err := h.marketing.UpdateDiscount(ctx, discount)
	if err != nil {
		writeMarketingError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildDiscountPayload(updated))
}

func (h *MarketingHandlers) listPromotions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.available(w, r) {
		return
	}
	pager, err := parsePagination(r)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	page, err := h.marketing.ListPromotions(ctx, pager)
	if err != nil {
		writeMarketingError(w, r, err)
		return
	}
	items := make([]promotionPayload, 0, len(page.Items))
	for _, promotion := range page.Items {
		items = append(items, buildPromotionPayload(promotion))
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"items": items, "next_page_token": page.NextPageToken})
}

func (h *MarketingHandlers) createPromotion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.available(w, r) {
		return
	}
	promotion, err := decodePromotionRequest(r, "")
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	created, err := h.marketing.CreatePromotion(ctx, promotion)
	if err != nil {
		writeMarketingError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, buildPromotionPayload(created))
}

func (h *MarketingHandlers) updatePromotion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.available(w, r) {
		return
	}
	promotion, err := decodePromotionRequest(r, chi.URLParam(r, "promotionID"))
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	updated, err := h.marketing.UpdatePromotion(ctx, promotion)
	if err != nil {
		writeMarketingError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildPromotionPayload(updated))
}

func (h *MarketingHandlers) listAdvertisements(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.available(w, r) {
		return
	}
	pager, err := parsePagination(r)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	page, err := h.marketing.ListAdvertisements(ctx, pager)
	if err != nil {
		writeMarketingError(w, r, err)
		return
	}
	items := make([]advertisementPayload, 0, len(page.Items))
	for _, ad := range page.Items {
		items = append(items, buildAdvertisementPayload(ad))
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"items": items, "next_page_token": page.NextPageToken})
}

func (h *MarketingHandlers) createAdvertisement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.available(w, r) {
		return
	}
	ad, err := decodeAdvertisementRequest(r, "")
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	created, err := h.marketing.CreateAdvertisement(ctx, ad)
	if err != nil {
		writeMarketingError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, buildAdvertisementPayload(created))
}

func (h *MarketingHandlers) updateAdvertisement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.available(w, r) {
		return
	}
	ad, err := decodeAdvertisementRequest(r, chi.URLParam(r, "adID"))
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	updated, err := h.marketing.UpdateAdvertisement(ctx, ad)
	if err != nil {
		writeMarketingError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildAdvertisementPayload(updated))
}

func writeMarketingError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	switch {
	case errors.Is(err, services.ErrMarketingNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("marketing_not_found", "record not found", http.StatusNotFound))
	case errors.Is(err, services.ErrMarketingConflict):
		httpx.WriteError(ctx, w, httpx.NewError("marketing_conflict", err.Error(), http.StatusConflict))
	case errors.Is(err, services.ErrMarketingInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("marketing_error", "marketing operation failed", http.StatusInternalServerError))
	}
}

func parseOptionalTime(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be RFC3339: %w", field, err)
	}
	return parsed, nil
}

type campaignPayload struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Type           string   `json:"type"`
	Status         string   `json:"status"`
	Budget         float64  `json:"budget"`
	Spent          float64  `json:"spent"`
	Impressions    int64    `json:"impressions"`
	Clicks         int64    `json:"clicks"`
	Conversions    int64    `json:"conversions"`
	StartDate      string   `json:"start_date,omitempty"`
	EndDate        string   `json:"end_date,omitempty"`
	Description    string   `json:"description,omitempty"`
	TargetAudience string   `json:"target_audience,omitempty"`
	Platforms      []string `json:"platforms,omitempty"`
}

func buildCampaignPayload(campaign domain.Campaign) campaignPayload {
	return campaignPayload{
		ID:             campaign.ID,
		Name:           campaign.Name,
		Type:           string(campaign.Type),
		Status:         string(campaign.Status),
		Budget:         campaign.Budget,
		Spent:          campaign.Spent,
		Impressions:    campaign.Impressions,
		Clicks:         campaign.Clicks,
		Conversions:    campaign.Conversions,
		StartDate:      formatTime(campaign.StartDate),
		EndDate:        formatTime(campaign.EndDate),
		Description:    campaign.Description,
		TargetAudience: campaign.TargetAudience,
		Platforms:      campaign.Platforms,
	}
}

func decodeCampaignRequest(r *http.Request, id string) (domain.Campaign, error) {
	var req campaignPayload
	if err := decodeJSONBody(r, &req); err != nil {
		return domain.Campaign{}, err
	}
	start, err := parseOptionalTime("start_date", req.StartDate)
	if err != nil {
		return domain.Campaign{}, err
	}
	end, err := parseOptionalTime("end_date", req.EndDate)
	if err != nil {
		return domain.Campaign{}, err
	}
	return domain.Campaign{
		ID:             strings.TrimSpace(id),
		Name:           req.Name,
		Type:           domain.CampaignType(req.Type),
		Status:         domain.CampaignStatus(req.Status),
		Budget:         req.Budget,
		StartDate:      start,
		EndDate:        end,
		Description:    req.Description,
		TargetAudience: req.TargetAudience,
		Platforms:      req.Platforms,
	}, nil
}

type discountConditionsPayload struct {
	MinOrderValue      float64  `json:"min_order_value,omitempty"`
	ApplicableProducts []string `json:"applicable_products,omitempty"`
	FirstTimeCustomers bool     `json:"first_time_customers,omitempty"`
}

type discountPayload struct {
	ID          string                     `json:"id"`
	Code        string                     `json:"code"`
	Type        string                     `json:"type"`
	Value       float64                    `json:"value"`
	UsageCount  int                        `json:"usage_count"`
	UsageLimit  int                        `json:"usage_limit"`
	Status      string                     `json:"status"`
	ExpiresAt   string                     `json:"expires_at,omitempty"`
	Description string                     `json:"description,omitempty"`
	Conditions  *discountConditionsPayload `json:"conditions,omitempty"`
}

func buildDiscountPayload(discount domain.Discount) discountPayload {
	payload := discountPayload{
		ID:          discount.ID,
		Code:        discount.Code,
		Type:        string(discount.Type),
		Value:       discount.Value,
		UsageCount:  discount.UsageCount,
		UsageLimit:  discount.UsageLimit,
		Status:      string(discount.Status),
		ExpiresAt:   formatTime(discount.ExpiresAt),
		Description: discount.Description,
	}
	if discount.Conditions != nil {
		payload.Conditions = &discountConditionsPayload{
			MinOrderValue:      discount.Conditions.MinOrderValue,
			ApplicableProducts: discount.Conditions.ApplicableProducts,
			FirstTimeCustomers: discount.Conditions.FirstTimeCustomers,
		}
	}
	return payload
}

func decodeDiscountRequest(r *http.Request, id string) (domain.Discount, error) {
	var req discountPayload
	if err := decodeJSONBody(r, &req); err != nil {
		return domain.Discount{}, err
	}
	expires, err := parseOptionalTime("expires_at", req.ExpiresAt)
	if err != nil {
		return domain.Discount{}, err
	}
	discount := domain.Discount{
		ID:          strings.TrimSpace(id),
		Code:        req.Code,
		Type:        domain.DiscountType(req.Type),
		Value:       req.Value,
		UsageLimit:  req.UsageLimit,
		Status:      domain.DiscountStatus(req.Status),
		ExpiresAt:   expires,
		Description: req.Description,
	}
	if req.Conditions != nil {
		discount.Conditions = &domain.DiscountConditions{
			MinOrderValue:      req.Conditions.MinOrderValue,
			ApplicableProducts: req.Conditions.ApplicableProducts,
			FirstTimeCustomers: req.Conditions.FirstTimeCustomers,
		}
	}
	return discount, nil
}

type promotionPayload struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	ProductIDs  []string `json:"product_ids"`
	Status      string   `json:"status"`
	StartDate   string   `json:"start_date,omitempty"`
	EndDate     string   `json:"end_date,omitempty"`
	Views       int64    `json:"views"`
	Clicks      int64    `json:"clicks"`
	Conversions int64    `json:"conversions"`
	Budget      float64  `json:"budget,omitempty"`
}

func buildPromotionPayload(promotion domain.Promotion) promotionPayload {
	return promotionPayload{
		ID:          promotion.ID,
		Name:        promotion.Name,
		Type:        string(promotion.Type),
		ProductIDs:  promotion.ProductIDs,
		Status:      string(promotion.Status),
		StartDate:   formatTime(promotion.StartDate),
		EndDate:     formatTime(promotion.EndDate),
		Views:       promotion.Views,
		Clicks:      promotion.Clicks,
		Conversions: promotion.Conversions,
		Budget:      promotion.Budget,
	}
}

func decodePromotionRequest(r *http.Request, id string) (domain.Promotion, error) {
	var req promotionPayload
	if err := decodeJSONBody(r, &req); err != nil {
		return domain.Promotion{}, err
	}
	start, err := parseOptionalTime("start_date", req.StartDate)
	if err != nil {
		return domain.Promotion{}, err
	}
	end, err := parseOptionalTime("end_date", req.EndDate)
	if err != nil {
		return domain.Promotion{}, err
	}
	return domain.Promotion{
		ID:         strings.TrimSpace(id),
		Name:       req.Name,
		Type:       domain.PromotionType(req.Type),
		ProductIDs: req.ProductIDs,
		Status:     domain.PromotionStatus(req.Status),
		StartDate:  start,
		EndDate:    end,
		Budget:     req.Budget,
	}, nil
}

type advertisementPayload struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Platform       string  `json:"platform"`
	Budget         float64 `json:"budget"`
	Spent          float64 `json:"spent"`
	Impressions    int64   `json:"impressions"`
	Clicks         int64   `json:"clicks"`
	Status         string  `json:"status"`
	StartDate      string  `json:"start_date,omitempty"`
	EndDate        string  `json:"end_date,omitempty"`
	Objective      string  `json:"objective"`
	TargetAudience string  `json:"target_audience,omitempty"`
	CTR            float64 `json:"ctr"`
	CPC            float64 `json:"cpc"`
}

func buildAdvertisementPayload(ad domain.Advertisement) advertisementPayload {
	return advertisementPayload{
		ID:             ad.ID,
		Name:           ad.Name,
		Platform:       string(ad.Platform),
		Budget:         ad.Budget,
		Spent:          ad.Spent,
		Impressions:    ad.Impressions,
		Clicks:         ad.Clicks,
		Status:         string(ad.Status),
		StartDate:      formatTime(ad.StartDate),
		EndDate:        formatTime(ad.EndDate),
		Objective:      string(ad.Objective),
		TargetAudience: ad.TargetAudience,
		CTR:            ad.CTR,
		CPC:            ad.CPC,
	}
}

func decodeAdvertisementRequest(r *http.Request, id string) (domain.Advertisement, error) {
	var req advertisementPayload
	if err := decodeJSONBody(r, &req); err != nil {
		return domain.Advertisement{}, err
	}
	start, err := parseOptionalTime("start_date", req.StartDate)
	if err != nil {
		return domain.Advertisement{}, err
	}
	end, err := parseOptionalTime("end_date", req.EndDate)
	if err != nil {
		return domain.Advertisement{}, err
	}
	return domain.Advertisement{
		ID:             strings.TrimSpace(id),
		Name:           req.Name,
		Platform:       domain.AdPlatform(req.Platform),
		Budget:         req.Budget,
		Status:         domain.AdStatus(req.Status),
		StartDate:      start,
		EndDate:        end,
		Objective:      domain.AdObjective(req.Objective),
		TargetAudience: req.TargetAudience,
	}, nil
}
