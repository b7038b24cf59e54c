package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/servicioshogar/ServiciosHogarBack/internal/models"
	"github.com/servicioshogar/ServiciosHogarBack/internal/repository"
	"github.com/servicioshogar/ServiciosHogarBack/internal/services"
)

type providerDiscoveryRepository interface {
	List(ctx context.Context, filter repository.ProviderListFilter) ([]models.ProviderProfile, int, error)
	GetByUserID(ctx context.Context, userID int64) (*models.ProviderProfile, error)
}

type customerDiscoveryRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*models.CustomerProfile, error)
}

type providerMatchmaker interface {
	GetMatchedProviders(ctx context.Context, customerProfile *models.CustomerProfile, category string, limit int) ([]models.ProviderWithScore, error)
}

type providerReviewLister interface {
	ListProviderReviews(ctx context.Context, providerID int64) ([]models.Review, error)
}

type ProviderDiscoveryHandler struct {
	providerRepo        providerDiscoveryRepository
	customerProfileRepo customerDiscoveryRepository
	matchingService     providerMatchmaker
	reviewService       providerReviewLister
}

func NewProviderDiscoveryHandler(
	providerRepo providerDiscoveryRepository,
	customerProfileRepo customerDiscoveryRepository,
	matchingService providerMatchmaker,
	reviewService providerReviewLister,
) *ProviderDiscoveryHandler {
	return &ProviderDiscoveryHandler{
		providerRepo:        providerRepo,
		customerProfileRepo: customerProfileRepo,
		matchingService:     matchingService,
		reviewService:       reviewService,
	}
}

func (h *ProviderDiscoveryHandler) ListProviders(c *fiber.Ctx) error {
	page := parsePositiveInt(c.Query("page"), 1)
	limit := parsePositiveInt(c.Query("limit"), defaultPageLimit)
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	minRating, err := parseNonNegativeFloat(c.Query("min_rating"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "min_rating must be a valid non-negative number"})
	}
	maxRate, err := parseNonNegativeFloat(c.Query("max_rate"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "max_rate must be a valid non-negative number"})
	}

	providers, total, err := h.providerRepo.List(c.Context(), repository.ProviderListFilter{
		Category:  strings.TrimSpace(c.Query("category")),
		Zone:      strings.TrimSpace(c.Query("zone")),
		MinRating: minRating,
		MaxRate:   maxRate,
		Offset:    (page - 1) * limit,
		Limit:     limit,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch providers"})
	}

	response := make([]models.ProviderListResponse, 0, len(providers))
	for _, provider := range providers {
		response = append(response, buildProviderListResponse(provider, 0))
	}

	return c.JSON(fiber.Map{
		"providers":  response,
		"pagination": buildPaginationMeta(page, limit, total),
	})
}

func (h *ProviderDiscoveryHandler) GetRecommendedProviders(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != "customer" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	limit := parsePositiveInt(c.Query("limit"), defaultPageLimit)
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	customerProfile, err := h.customerProfileRepo.GetByUserID(c.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch customer profile"})
	}

	providers, err := h.matchingService.GetMatchedProviders(
		c.Context(),
		customerProfile,
		strings.TrimSpace(c.Query("category")),
		limit,
	)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch recommended providers"})
	}

	response := make([]models.ProviderListResponse, 0, len(providers))
	for _, provider := range providers {
		response = append(response, buildProviderListResponse(provider.ProviderProfile, provider.MatchScore))
	}

	return c.JSON(fiber.Map{"providers": response})
}

func (h *ProviderDiscoveryHandler) GetProviderDetail(c *fiber.Ctx) error {
	providerID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || providerID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid provider id"})
	}

	provider, err := h.providerRepo.GetByUserID(c.Context(), providerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Provider not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch provider"})
	}

	reviews, err := h.reviewService.ListProviderReviews(c.Context(), providerID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch provider reviews"})
	}

	return c.JSON(fiber.Map{
		"provider": buildProviderDetailResponse(*provider),
		"reviews":  reviews,
	})
}

func buildProviderListResponse(provider models.ProviderProfile, matchScore int) models.ProviderListResponse {
	response := models.ProviderListResponse{
		ID:              strconv.FormatInt(provider.UserID, 10),
		FullName:        stringValue(provider.FullName),
		Categories:      stringSliceValue(provider.Categories),
		Zones:           stringSliceValue(provider.Zones),
		ExperienceYears: intValueResponse(provider.ExperienceYears),
		HourlyRate:      floatValueResponse(provider.HourlyRate),
		Rating:          floatValueResponse(provider.Rating),
		TotalReviews:    provider.TotalReviews,
	}
	if matchScore > 0 {
		response.MatchScore = matchScore
	}
	return response
}

func buildProviderDetailResponse(provider models.ProviderProfile) models.ProviderDetailResponse {
	return models.ProviderDetailResponse{
		ProviderListResponse: buildProviderListResponse(provider, 0),
		Bio:                  stringValue(provider.Bio),
		IsVerified:           boolValue(provider.IsVerified),
		OnboardingComplete:   provider.OnboardingComplete,
	}
}

func parsePositiveInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func parseNonNegativeFloat(raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || value < 0 {
		return 0, errInvalidNumber
	}
	return value, nil
}

var errInvalidNumber = errors.New("invalid number")

func stringValue(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func stringSliceValue(value *[]string) []string {
	if value == nil {
		return []string{}
	}
	return *value
}

func floatValueResponse(value *float64) float64 {
	if value == nil {
		return 0
	}
	return *value
}

func intValueResponse(value *int) int {
	if value == nil {
		return 0
	}
	return *value
}

func boolValue(value *bool) bool {
	if value == nil {
		return false
	}
	return *value
}

var _ services.ProviderMatcher = (*repository.ProviderProfileRepository)(nil)
