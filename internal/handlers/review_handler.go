package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/servicioshogar/ServiciosHogarBack/internal/services"
)

type ReviewHandler struct {
	service *services.ReviewService
}

func NewReviewHandler(service *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

type createReviewRequest struct {
	Rating  int     `json:"rating"`
	Comment *string `json:"comment"`
}

func (h *ReviewHandler) CreateReview(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != "customer" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	requestID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || requestID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request id"})
	}

	var req createReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	review, err := h.service.CreateReview(c.Context(), userID, role, requestID, req.Rating, req.Comment)
	if err != nil {
		return mapReviewError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"review": review})
}

func (h *ReviewHandler) GetRequestReview(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || (role != "customer" && role != "provider") {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	requestID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || requestID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request id"})
	}

	review, err := h.service.GetRequestReview(c.Context(), userID, role, requestID)
	if err != nil {
		return mapReviewError(c, err)
	}

	return c.JSON(fiber.Map{"review": review})
}

func (h *ReviewHandler) ListProviderReviews(c *fiber.Ctx) error {
	providerID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || providerID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid provider id"})
	}

	reviews, err := h.service.ListProviderReviews(c.Context(), providerID)
	if err != nil {
		return mapReviewError(c, err)
	}

	return c.JSON(fiber.Map{"reviews": reviews})
}

func mapReviewError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid review"})
	case errors.Is(err, services.ErrInvalidStatus):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Request is not completed"})
	case errors.Is(err, services.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Request already reviewed"})
	case errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Review not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process review"})
	}
}
