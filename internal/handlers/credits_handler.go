package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/servicioshogar/ServiciosHogarBack/internal/services"
)

type CreditsHandler struct {
	service *services.CreditService
}

func NewCreditsHandler(service *services.CreditService) *CreditsHandler {
	return &CreditsHandler{service: service}
}

func (h *CreditsHandler) GetBalance(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != "provider" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	credits, err := h.service.GetBalance(c.Context(), userID, role)
	if err != nil {
		if errors.Is(err, services.ErrForbidden) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch balance"})
	}

	return c.JSON(fiber.Map{"credits": credits})
}

func (h *CreditsHandler) ListPackages(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"packages": h.service.ListPackages()})
}
