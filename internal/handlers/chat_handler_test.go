package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/servicioshogar/ServiciosHogarBack/internal/models"
	"github.com/servicioshogar/ServiciosHogarBack/internal/services"
	chatws "github.com/servicioshogar/ServiciosHogarBack/internal/websocket"
)

type stubChatService struct {
	conversationsResult []models.ConversationSummary
	conversationsErr    error
	createResult        *models.Conversation
	createErr           error
	messagesResult      []models.ChatMessage
	messagesTotal       int
	messagesErr         error
	receiptResult       *services.ChatReadReceipt
	receiptErr          error
	lastActorID         int64
	lastRole            string
	lastProviderID      int64
	lastRequestID       *int64
	lastConversationID  int64
	lastMessageIDs      []int64
	lastPage            int
	lastLimit           int
}

func (s *stubChatService) ListConversations(_ context.Context, actorID int64, role string) ([]models.ConversationSummary, error) {
	s.lastActorID = actorID
	s.lastRole = role
	return s.conversationsResult, s.conversationsErr
}

func (s *stubChatService) CreateConversation(_ context.Context, actorID int64, role string, providerID int64, serviceRequestID *int64) (*models.Conversation, error) {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastProviderID = providerID
	s.lastRequestID = serviceRequestID
	return s.createResult, s.createErr
}

func (s *stubChatService) GetConversationForParticipant(_ context.Context, actorID int64, conversationID int64) (*models.Conversation, error) {
	s.lastActorID = actorID
	s.lastConversationID = conversationID
	return s.createResult, s.createErr
}

func (s *stubChatService) ListMessages(_ context.Context, actorID int64, role string, conversationID int64, page int, limit int) ([]models.ChatMessage, int, error) {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastConversationID = conversationID
	s.lastPage = page
	s.lastLimit = limit
	return s.messagesResult, s.messagesTotal, s.messagesErr
}

func (s *stubChatService) SendMessage(_ context.Context, _ int64, _ string, _ int64, _ string, _ string) (*services.ChatDelivery, error) {
	return nil, nil
}

func (s *stubChatService) MarkMessagesRead(_ context.Context, actorID int64, role string, conversationID int64, messageIDs []int64) (*services.ChatReadReceipt, error) {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastConversationID = conversationID
	s.lastMessageIDs = messageIDs
	return s.receiptResult, s.receiptErr
}

func newChatTestApp(handler *ChatHandler, role, userID string) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("role", role)
		c.Locals("user_id", userID)
		return c.Next()
	})
	return app
}

func TestListConversationsReturnsConversationSummaries(t *testing.T) {
	service := &stubChatService{
		conversationsResult: []models.ConversationSummary{
			{
				Conversation: models.Conversation{ID: 17, CustomerID: 42, ProviderID: 8},
				LastMessage: &models.ChatMessage{
					ID:             3,
					ConversationID: 17,
					SenderID:       8,
					Content:        "Llego mañana a las 9",
					CreatedAt:      time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
				},
				UnreadCount: 2,
			},
		},
	}
	handler := NewChatHandler(service, chatws.NewHub(), "secret")

	app := newChatTestApp(handler, "customer", "42")
	app.Get("/api/v1/conversations", handler.ListConversations)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/conversations", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastActorID != 42 || service.lastRole != "customer" {
		t.Fatalf("unexpected actor context: %d %q", service.lastActorID, service.lastRole)
	}

	var body struct {
		Conversations []models.ConversationSummary `json:"conversations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(body.Conversations) != 1 || body.Conversations[0].UnreadCount != 2 {
		t.Fatalf("unexpected response: %+v", body.Conversations)
	}
}

func TestCreateConversationReturnsCreatedConversation(t *testing.T) {
	service := &stubChatService{
		createResult: &models.Conversation{ID: 9, CustomerID: 42, ProviderID: 7},
	}
	handler := NewChatHandler(service, chatws.NewHub(), "secret")

	app := newChatTestApp(handler, "customer", "42")
	app.Post("/api/v1/conversations", handler.CreateConversation)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/conversations",
		strings.NewReader(`{"provider_id":7,"service_request_id":12}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastProviderID != 7 {
		t.Fatalf("expected provider id 7, got %d", service.lastProviderID)
	}
	if service.lastRequestID == nil || *service.lastRequestID != 12 {
		t.Fatalf("expected service request id 12, got %v", service.lastRequestID)
	}
}

func TestCreateConversationRejectsProviderRole(t *testing.T) {
	service := &stubChatService{}
	handler := NewChatHandler(service, chatws.NewHub(), "secret")

	app := newChatTestApp(handler, "provider", "7")
	app.Post("/api/v1/conversations", handler.CreateConversation)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/conversations", strings.NewReader(`{"provider_id":9}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestGetMessagesReturnsPagination(t *testing.T) {
	service := &stubChatService{
		messagesResult: []models.ChatMessage{
			{ID: 5, ConversationID: 11, SenderID: 7, Content: "Hola", CreatedAt: time.Now().UTC()},
		},
		messagesTotal: 12,
	}
	handler := NewChatHandler(service, chatws.NewHub(), "secret")

	app := newChatTestApp(handler, "provider", "7")
	app.Get("/api/v1/conversations/:id/messages", handler.GetMessages)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/conversations/11/messages?page=2&limit=5", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastConversationID != 11 || service.lastPage != 2 || service.lastLimit != 5 {
		t.Fatalf("unexpected query context: %d %d %d", service.lastConversationID, service.lastPage, service.lastLimit)
	}

	var body struct {
		Pagination models.PaginationMeta `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if body.Pagination.Total != 12 || body.Pagination.TotalPages != 3 {
		t.Fatalf("unexpected pagination: %+v", body.Pagination)
	}
}

func TestMarkReadReportsMarkedCount(t *testing.T) {
	service := &stubChatService{
		receiptResult: &services.ChatReadReceipt{
			ConversationID: 11,
			MessageIDs:     []int64{4, 5},
			Marked:         2,
			ReaderID:       7,
			OtherPartyID:   42,
		},
	}
	hub := chatws.NewHub()
	go hub.Run()
	handler := NewChatHandler(service, hub, "secret")

	app := newChatTestApp(handler, "provider", "7")
	app.Put("/api/v1/conversations/:id/read", handler.MarkRead)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/conversations/11/read",
		strings.NewReader(`{"message_ids":[4,5]}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if len(service.lastMessageIDs) != 2 {
		t.Fatalf("expected two message ids, got %v", service.lastMessageIDs)
	}

	var body struct {
		Marked int `json:"marked"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if body.Marked != 2 {
		t.Fatalf("expected marked 2, got %d", body.Marked)
	}
}

func TestMarkReadWithoutIDsMarksWholeConversation(t *testing.T) {
	service := &stubChatService{
		receiptResult: &services.ChatReadReceipt{
			ConversationID: 11,
			Marked:         5,
			ReaderID:       7,
			OtherPartyID:   42,
		},
	}
	hub := chatws.NewHub()
	go hub.Run()
	handler := NewChatHandler(service, hub, "secret")

	app := newChatTestApp(handler, "provider", "7")
	app.Put("/api/v1/conversations/:id/read", handler.MarkRead)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/conversations/11/read", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if len(service.lastMessageIDs) != 0 {
		t.Fatalf("expected no explicit ids, got %v", service.lastMessageIDs)
	}

	var body struct {
		Marked int64 `json:"marked"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if body.Marked != 5 {
		t.Fatalf("expected marked 5, got %d", body.Marked)
	}
}

func TestWebSocketAuthRejectsMissingToken(t *testing.T) {
	handler := NewChatHandler(&stubChatService{}, chatws.NewHub(), "secret")

	app := fiber.New()
	app.Use("/api/v1/ws", handler.WebSocketAuth)
	app.Get("/api/v1/ws", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ws", nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	req.Header.Set("Sec-WebSocket-Version", "13")
	req.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if body.Error != "Authentication error" {
		t.Fatalf("unexpected error message: %q", body.Error)
	}
}
