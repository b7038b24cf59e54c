package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/servicioshogar/ServiciosHogarBack/internal/models"
	"github.com/servicioshogar/ServiciosHogarBack/internal/repository"
)

const DefaultMessageType = "text"

var allowedMessageTypes = map[string]struct{}{
	"text":   {},
	"image":  {},
	"system": {},
}

type ChatService struct {
	db               *pgxpool.Pool
	conversationRepo *repository.ConversationRepository
	messageRepo      *repository.MessageRepository
	userRepo         userReader
}

type ChatDelivery struct {
	Conversation *models.Conversation
	Message      *models.ChatMessage
	RecipientID  int64
}

type ChatReadReceipt struct {
	ConversationID int64
	MessageIDs     []int64
	Marked         int64
	ReaderID       int64
	OtherPartyID   int64
}

func NewChatService(
	db *pgxpool.Pool,
	conversationRepo *repository.ConversationRepository,
	messageRepo *repository.MessageRepository,
	userRepo userReader,
) *ChatService {
	return &ChatService{
		db:               db,
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		userRepo:         userRepo,
	}
}

func (s *ChatService) ListConversations(
	ctx context.Context,
	actorID int64,
	role string,
) ([]models.ConversationSummary, error) {
	if role != "customer" && role != "provider" {
		return nil, ErrForbidden
	}

	return s.conversationRepo.ListForParticipant(ctx, actorID)
}

func (s *ChatService) CreateConversation(
	ctx context.Context,
	actorID int64,
	role string,
	providerID int64,
	serviceRequestID *int64,
) (*models.Conversation, error) {
	if role != "customer" {
		return nil, ErrForbidden
	}
	if providerID <= 0 || providerID == actorID {
		return nil, ErrInvalidInput
	}
	if serviceRequestID != nil && *serviceRequestID <= 0 {
		return nil, ErrInvalidInput
	}

	provider, err := s.userRepo.GetByID(ctx, providerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProviderNotFound
		}
		return nil, err
	}
	if provider.Role != "provider" {
		return nil, ErrInvalidInput
	}

	return s.conversationRepo.CreateOrGet(ctx, actorID, providerID, serviceRequestID)
}

func (s *ChatService) GetConversationForParticipant(
	ctx context.Context,
	actorID int64,
	conversationID int64,
) (*models.Conversation, error) {
	if conversationID <= 0 {
		return nil, ErrInvalidInput
	}

	conversation, err := s.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conversation.CustomerID != actorID && conversation.ProviderID != actorID {
		return nil, ErrForbidden
	}
	return conversation, nil
}

func (s *ChatService) ListMessages(
	ctx context.Context,
	actorID int64,
	role string,
	conversationID int64,
	page int,
	limit int,
) ([]models.ChatMessage, int, error) {
	if role != "customer" && role != "provider" {
		return nil, 0, ErrForbidden
	}
	if conversationID <= 0 || page <= 0 || limit <= 0 {
		return nil, 0, ErrInvalidInput
	}

	_, err := s.conversationRepo.GetByIDForParticipant(ctx, conversationID, actorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, pgx.ErrNoRows
		}
		return nil, 0, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txMessageRepo := repository.NewMessageRepository(tx)
	txConversationRepo := repository.NewConversationRepository(tx)

	messages, total, err := txMessageRepo.ListByConversation(
		ctx,
		conversationID,
		limit,
		(page-1)*limit,
	)
	if err != nil {
		return nil, 0, err
	}

	messageIDs := make([]int64, 0, len(messages))
	for _, message := range messages {
		messageIDs = append(messageIDs, message.ID)
	}

	if _, err := txMessageRepo.MarkMessagesRead(ctx, conversationID, messageIDs, actorID); err != nil {
		return nil, 0, err
	}
	if err := txConversationRepo.ResetUnread(ctx, conversationID, actorID); err != nil {
		return nil, 0, err
	}

	now := time.Now().UTC()
	for i := range messages {
		if messages[i].SenderID != actorID && !messages[i].IsRead {
			messages[i].IsRead = true
			messages[i].ReadAt = &now
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, err
	}

	return messages, total, nil
}

// SendMessage persists the message and bumps the recipient's unread counter
// in one transaction; callers broadcast only after it returns.
func (s *ChatService) SendMessage(
	ctx context.Context,
	actorID int64,
	role string,
	conversationID int64,
	content string,
	messageType string,
) (*ChatDelivery, error) {
	if role != "customer" && role != "provider" {
		return nil, ErrForbidden
	}
	if conversationID <= 0 {
		return nil, ErrInvalidInput
	}

	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, ErrInvalidInput
	}

	if messageType == "" {
		messageType = DefaultMessageType
	}
	if _, ok := allowedMessageTypes[messageType]; !ok {
		return nil, ErrInvalidInput
	}

	conversation, err := s.conversationRepo.GetByIDForParticipant(ctx, conversationID, actorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrForbidden
		}
		return nil, err
	}

	recipientID := conversation.CustomerID
	if actorID == conversation.CustomerID {
		recipientID = conversation.ProviderID
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txMessageRepo := repository.NewMessageRepository(tx)
	txConversationRepo := repository.NewConversationRepository(tx)

	message, err := txMessageRepo.Create(ctx, conversationID, actorID, trimmed, messageType)
	if err != nil {
		return nil, err
	}

	if err := txConversationRepo.RecordMessage(ctx, conversationID, actorID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &ChatDelivery{
		Conversation: conversation,
		Message:      message,
		RecipientID:  recipientID,
	}, nil
}

func (s *ChatService) MarkMessagesRead(
	ctx context.Context,
	actorID int64,
	role string,
	conversationID int64,
	messageIDs []int64,
) (*ChatReadReceipt, error) {
	if role != "customer" && role != "provider" {
		return nil, ErrForbidden
	}
	if conversationID <= 0 {
		return nil, ErrInvalidInput
	}

	conversation, err := s.conversationRepo.GetByIDForParticipant(ctx, conversationID, actorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrForbidden
		}
		return nil, err
	}

	otherPartyID := conversation.CustomerID
	if actorID == conversation.CustomerID {
		otherPartyID = conversation.ProviderID
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txMessageRepo := repository.NewMessageRepository(tx)
	txConversationRepo := repository.NewConversationRepository(tx)

	// Empty id list means the reader caught up on the whole thread.
	var marked int64
	if len(messageIDs) == 0 {
		marked, err = txMessageRepo.MarkConversationRead(ctx, conversationID, actorID)
	} else {
		marked, err = txMessageRepo.MarkMessagesRead(ctx, conversationID, messageIDs, actorID)
	}
	if err != nil {
		return nil, err
	}
	if err := txConversationRepo.ResetUnread(ctx, conversationID, actorID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &ChatReadReceipt{
		ConversationID: conversationID,
		MessageIDs:     messageIDs,
		Marked:         marked,
		ReaderID:       actorID,
		OtherPartyID:   otherPartyID,
	}, nil
}

func FormatChatTimestamp(ts time.Time) string {
	return ts.UTC().Format(time.RFC3339)
}
