package handlers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/servicioshogar/ServiciosHogarBack/internal/repository"
	"github.com/servicioshogar/ServiciosHogarBack/internal/services"
)

type RequestHandler struct {
	service *services.RequestService
}

func NewRequestHandler(service *services.RequestService) *RequestHandler {
	return &RequestHandler{service: service}
}

type createRequestRequest struct {
	ProviderID  int64   `json:"provider_id"`
	Category    string  `json:"category"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	ScheduledAt string  `json:"scheduled_at"`
}

type updateRequestStatusRequest struct {
	Status string `json:"status"`
}

func (h *RequestHandler) CreateRequest(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != "customer" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req createRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	scheduledAt, err := time.Parse(time.RFC3339, strings.TrimSpace(req.ScheduledAt))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"error": "scheduled_at must be a valid RFC3339 timestamp"})
	}

	request, err := h.service.CreateRequest(c.Context(), userID, services.CreateRequestInput{
		ProviderID:  req.ProviderID,
		Category:    req.Category,
		Title:       req.Title,
		Description: req.Description,
		ScheduledAt: scheduledAt,
	})
	if err != nil {
		return mapRequestError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"request": request})
}

func (h *RequestHandler) ListRequests(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || (role != "customer" && role != "provider") {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	requests, err := h.service.ListRequests(c.Context(), userID, role, repository.ServiceRequestListFilter{
		Status:    strings.TrimSpace(c.Query("status")),
		Timeframe: strings.TrimSpace(c.Query("timeframe")),
	})
	if err != nil {
		return mapRequestError(c, err)
	}

	return c.JSON(fiber.Map{"requests": requests})
}

func (h *RequestHandler) GetRequest(c *fiber.Ctx) error {
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

	request, err := h.service.GetRequest(c.Context(), userID, role, requestID)
	if err != nil {
		return mapRequestError(c, err)
	}

	return c.JSON(fiber.Map{"request": request})
}

func (h *RequestHandler) UpdateStatus(c *fiber.Ctx) error {
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

	var req updateRequestStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	request, err := h.service.UpdateStatus(c.Context(), userID, role, requestID, req.Status)
	if err != nil {
		return mapRequestError(c, err)
	}

	return c.JSON(fiber.Map{"request": request})
}

func (h *RequestHandler) UnlockContact(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != "provider" {
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

	request, conversation, err := h.service.UnlockContact(c.Context(), userID, role, requestID)
	if err != nil {
		return mapRequestError(c, err)
	}

	return c.JSON(fiber.Map{
		"request":      request,
		"conversation": conversation,
	})
}

func mapRequestError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	case errors.Is(err, services.ErrInvalidStatus):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid status"})
	case errors.Is(err, services.ErrInvalidStateTransition):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Invalid state transition"})
	case errors.Is(err, services.ErrProviderNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Provider not found"})
	case errors.Is(err, services.ErrInsufficientCredits):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Créditos insuficientes"})
	case errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Request not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process request"})
	}
}
