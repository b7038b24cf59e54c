package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/servicioshogar/ServiciosHogarBack/internal/models"
	"github.com/servicioshogar/ServiciosHogarBack/internal/repository"
	"github.com/servicioshogar/ServiciosHogarBack/internal/services"
)

type ProfileHandler struct {
	profileService      *services.ProfileService
	customerProfileRepo customerProfileStore
	providerProfileRepo providerProfileStore
}

type customerProfileStore interface {
	GetByUserID(ctx context.Context, userID int64) (*models.CustomerProfile, error)
}

type providerProfileStore interface {
	GetByUserID(ctx context.Context, userID int64) (*models.ProviderProfile, error)
}

func NewProfileHandler(
	profileService *services.ProfileService,
	customerProfileRepo customerProfileStore,
	providerProfileRepo providerProfileStore,
) *ProfileHandler {
	return &ProfileHandler{
		profileService:      profileService,
		customerProfileRepo: customerProfileRepo,
		providerProfileRepo: providerProfileRepo,
	}
}

type updateCustomerProfileRequest struct {
	FullName      *string  `json:"full_name"`
	Zone          *string  `json:"zone"`
	Address       *string  `json:"address"`
	Phone         *string  `json:"phone"`
	MaxHourlyRate *float64 `json:"max_hourly_rate"`
}

type updateProviderProfileRequest struct {
	FullName        *string   `json:"full_name"`
	Bio             *string   `json:"bio"`
	Categories      *[]string `json:"categories"`
	Zones           *[]string `json:"zones"`
	ExperienceYears *int      `json:"experience_years"`
	HourlyRate      *float64  `json:"hourly_rate"`
}

func (h *ProfileHandler) UpdateCustomerProfile(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != "customer" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req updateCustomerProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if validationErr := validateCustomerProfileUpdateRequest(req); validationErr != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr})
	}

	profile, err := h.profileService.UpdateCustomerProfile(c.Context(), userID, repository.UpdateCustomerProfileInput{
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

func (h *ProfileHandler) UpdateProviderProfile(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != "provider" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req updateProviderProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if validationErr := validateProviderProfileUpdateRequest(req); validationErr != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr})
	}

	profile, err := h.profileService.UpdateProviderProfile(c.Context(), userID, repository.UpdateProviderProfileInput{
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

func (h *ProfileHandler) GetCustomerProfile(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != "customer" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	profile, err := h.customerProfileRepo.GetByUserID(c.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch profile"})
	}

	return c.JSON(fiber.Map{
		"profile":             profile,
		"onboarding_complete": profile.OnboardingComplete,
	})
}

func (h *ProfileHandler) GetProviderProfile(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != "provider" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	profile, err := h.providerProfileRepo.GetByUserID(c.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch profile"})
	}

	return c.JSON(fiber.Map{
		"profile":             profile,
		"onboarding_complete": profile.OnboardingComplete,
	})
}
