package handlers

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/servicioshogar/ServiciosHogarBack/internal/services"
)

type PaymentHandler struct {
	service *services.PaymentService
}

func NewPaymentHandler(service *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

type createPurchaseRequest struct {
	PackageID string `json:"package_id"`
}

func (h *PaymentHandler) CreatePurchase(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != "provider" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req createPurchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	checkout, err := h.service.CreatePurchase(c.Context(), userID, role, req.PackageID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrForbidden):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
		case errors.Is(err, services.ErrUnknownPackage):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown credit package"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create purchase"})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"purchase":   checkout.Purchase,
		"init_point": checkout.InitPoint,
	})
}

func (h *PaymentHandler) ListPurchases(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != "provider" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	purchases, err := h.service.ListPurchases(c.Context(), userID, role)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch purchases"})
	}

	return c.JSON(fiber.Map{"purchases": purchases})
}

type webhookBody struct {
	Type string `json:"type"`
	Data struct {
		ID json.Number `json:"id"`
	} `json:"data"`
}

// Webhook always answers HTTP 200. Anything else makes Mercado Pago retry
// the notification; failures are reported in the body instead.
func (h *PaymentHandler) Webhook(c *fiber.Ctx) error {
	var body webhookBody
	if err := c.BodyParser(&body); err != nil {
		return c.JSON(services.WebhookResult{
			Received:  true,
			Processed: false,
			Reason:    "Cuerpo del webhook inválido",
		})
	}

	result := h.service.ProcessWebhook(c.Context(), services.WebhookNotification{
		SignatureHeader: c.Get("x-signature"),
		RequestID:       c.Get("x-request-id"),
		EventType:       body.Type,
		DataID:          body.Data.ID.String(),
	})

	return c.JSON(result)
}
