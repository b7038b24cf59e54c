package handlers

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/servicioshogar/ServiciosHogarBack/internal/models"
	"github.com/servicioshogar/ServiciosHogarBack/internal/repository"
)

type customerOnboardingProfileStore interface {
	UpdateOnboarding(ctx context.Context, userID int64, req repository.CustomerOnboardingInput) (*models.CustomerProfile, error)
}

type providerOnboardingProfileStore interface {
	UpdateOnboarding(ctx context.Context, userID int64, req repository.ProviderOnboardingInput) (*models.ProviderProfile, error)
}

type OnboardingHandler struct {
	customerProfileRepo customerOnboardingProfileStore
	providerProfileRepo providerOnboardingProfileStore
}

func NewOnboardingHandler(customerProfileRepo customerOnboardingProfileStore, providerProfileRepo providerOnboardingProfileStore) *OnboardingHandler {
	return &OnboardingHandler{
		customerProfileRepo: customerProfileRepo,
		providerProfileRepo: providerProfileRepo,
	}
}

type customerOnboardingRequest struct {
	FullName      string   `json:"full_name"`
	Zone          string   `json:"zone"`
	Address       *string  `json:"address"`
	Phone         string   `json:"phone"`
	MaxHourlyRate *float64 `json:"max_hourly_rate"`
}

type providerOnboardingRequest struct {
	FullName        string   `json:"full_name"`
	Bio             string   `json:"bio"`
	Categories      []string `json:"categories"`
	Zones           []string `json:"zones"`
	ExperienceYears int      `json:"experience_years"`
	HourlyRate      float64  `json:"hourly_rate"`
}

func (h *OnboardingHandler) CustomerOnboarding(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != "customer" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req customerOnboardingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if validationErr := validateCustomerOnboardingRequest(req); validationErr != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr})
	}

	profile, err := h.customerProfileRepo.UpdateOnboarding(c.Context(), userID, repository.CustomerOnboardingInput{
		FullName:      req.FullName,
		Zone:          req.Zone,
		Address:       req.Address,
		Phone:         req.Phone,
		MaxHourlyRate: req.MaxHourlyRate,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update profile"})
	}

	return c.JSON(fiber.Map{
		"profile":             profile,
		"onboarding_complete": profile.OnboardingComplete,
	})
}

func (h *OnboardingHandler) ProviderOnboarding(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != "provider" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req providerOnboardingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if validationErr := validateProviderOnboardingRequest(req); validationErr != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr})
	}

	profile, err := h.providerProfileRepo.UpdateOnboarding(c.Context(), userID, repository.ProviderOnboardingInput{
		FullName:        req.FullName,
		Bio:             req.Bio,
		Categories:      req.Categories,
		Zones:           req.Zones,
		ExperienceYears: req.ExperienceYears,
		HourlyRate:      req.HourlyRate,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update profile"})
	}

	return c.JSON(fiber.Map{
		"profile":             profile,
		"onboarding_complete": profile.OnboardingComplete,
	})
}

func parseAuthUserID(c *fiber.Ctx) (int64, error) {
	userIDValue := c.Locals("user_id")
	userIDStr, ok := userIDValue.(string)
	if !ok {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseInt(userIDStr, 10, 64)
}
