package repository

import (
	"context"
	"database/sql"

	"github.com/servicioshogar/ServiciosHogarBack/internal/models"
)

type ConversationRepository struct {
	db DBTX
}

func NewConversationRepository(db DBTX) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// CreateOrGet relies on the unique index over
// (customer_id, provider_id, COALESCE(service_request_id, 0)) so repeated
// "start conversation" calls always land on the same row.
func (r *ConversationRepository) CreateOrGet(
	ctx context.Context,
	customerID int64,
	providerID int64,
	serviceRequestID *int64,
) (*models.Conversation, error) {
	query := `
		INSERT INTO conversations (customer_id, provider_id, service_request_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (customer_id, provider_id, COALESCE(service_request_id, 0))
		DO UPDATE SET customer_id = conversations.customer_id
		RETURNING id, customer_id, provider_id, service_request_id, last_message_at,
				  customer_unread_count, provider_unread_count, created_at
	`

	var conversation models.Conversation
	err := r.db.QueryRow(ctx, query, customerID, providerID, serviceRequestID).Scan(
		&conversation.ID,
		&conversation.CustomerID,
		&conversation.ProviderID,
		&conversation.ServiceRequestID,
		&conversation.LastMessageAt,
		&conversation.CustomerUnreadCount,
		&conversation.ProviderUnreadCount,
		&conversation.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &conversation, nil
}

func (r *ConversationRepository) GetByID(ctx context.Context, conversationID int64) (*models.Conversation, error) {
	query := `
		SELECT id, customer_id, provider_id, service_request_id, last_message_at,
			   customer_unread_count, provider_unread_count, created_at
		FROM conversations
		WHERE id = $1
	`

	var conversation models.Conversation
	err := r.db.QueryRow(ctx, query, conversationID).Scan(
		&conversation.ID,
		&conversation.CustomerID,
		&conversation.ProviderID,
		&conversation.ServiceRequestID,
		&conversation.LastMessageAt,
		&conversation.CustomerUnreadCount,
		&conversation.ProviderUnreadCount,
		&conversation.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &conversation, nil
}

func (r *ConversationRepository) GetByIDForParticipant(
	ctx context.Context,
	conversationID int64,
	participantID int64,
) (*models.Conversation, error) {
	query := `
		SELECT id, customer_id, provider_id, service_request_id, last_message_at,
			   customer_unread_count, provider_unread_count, created_at
		FROM conversations
		WHERE id = $1 AND (customer_id = $2 OR provider_id = $2)
	`

	var conversation models.Conversation
	err := r.db.QueryRow(ctx, query, conversationID, participantID).Scan(
		&conversation.ID,
		&conversation.CustomerID,
		&conversation.ProviderID,
		&conversation.ServiceRequestID,
		&conversation.LastMessageAt,
		&conversation.CustomerUnreadCount,
		&conversation.ProviderUnreadCount,
		&conversation.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &conversation, nil
}

func (r *ConversationRepository) ListForParticipant(
	ctx context.Context,
	participantID int64,
) ([]models.ConversationSummary, error) {
	query := `
		SELECT
			c.id,
			c.customer_id,
			c.provider_id,
			c.service_request_id,
			c.last_message_at,
			c.customer_unread_count,
			c.provider_unread_count,
			c.created_at,
			lm.id,
			lm.conversation_id,
			lm.sender_id,
			lm.content,
			lm.message_type,
			lm.is_read,
			lm.read_at,
			lm.created_at,
			CASE WHEN c.customer_id = $1 THEN c.customer_unread_count ELSE c.provider_unread_count END
		FROM conversations c
		LEFT JOIN LATERAL (
			SELECT id, conversation_id, sender_id, content, message_type, is_read, read_at, created_at
			FROM messages
			WHERE conversation_id = c.id
			ORDER BY created_at DESC, id DESC
			LIMIT 1
		) lm ON TRUE
		WHERE c.customer_id = $1 OR c.provider_id = $1
		ORDER BY COALESCE(c.last_message_at, c.created_at) DESC, c.id DESC
	`

	rows, err := r.db.Query(ctx, query, participantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := make([]models.ConversationSummary, 0)
	for rows.Next() {
		var summary models.ConversationSummary
		var messageID sql.NullInt64
		var messageConversationID sql.NullInt64
		var messageSenderID sql.NullInt64
		var messageContent sql.NullString
		var messageType sql.NullString
		var messageIsRead sql.NullBool
		var messageReadAt sql.NullTime
		var messageCreatedAt sql.NullTime

		if err := rows.Scan(
			&summary.ID,
			&summary.CustomerID,
			&summary.ProviderID,
			&summary.ServiceRequestID,
			&summary.LastMessageAt,
			&summary.CustomerUnreadCount,
			&summary.ProviderUnreadCount,
			&summary.CreatedAt,
			&messageID,
			&messageConversationID,
			&messageSenderID,
			&messageContent,
			&messageType,
			&messageIsRead,
			&messageReadAt,
			&messageCreatedAt,
			&summary.UnreadCount,
		); err != nil {
			return nil, err
		}

		if messageID.Valid {
			lastMessage := &models.ChatMessage{
				ID:             messageID.Int64,
				ConversationID: messageConversationID.Int64,
				SenderID:       messageSenderID.Int64,
				Content:        messageContent.String,
				MessageType:    messageType.String,
				IsRead:         messageIsRead.Bool,
				CreatedAt:      messageCreatedAt.Time,
			}
			if messageReadAt.Valid {
				readAt := messageReadAt.Time
				lastMessage.ReadAt = &readAt
			}
			summary.LastMessage = lastMessage
		}

		summaries = append(summaries, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return summaries, nil
}

// RecordMessage bumps last_message_at and the recipient's unread counter in
// one statement so the counters can never drift from message history.
func (r *ConversationRepository) RecordMessage(
	ctx context.Context,
	conversationID int64,
	senderID int64,
) error {
	_, err := r.db.Exec(ctx, `
		UPDATE conversations
		SET last_message_at = NOW(),
			customer_unread_count = customer_unread_count + CASE WHEN provider_id = $2 THEN 1 ELSE 0 END,
			provider_unread_count = provider_unread_count + CASE WHEN customer_id = $2 THEN 1 ELSE 0 END
		WHERE id = $1
	`, conversationID, senderID)
	return err
}

func (r *ConversationRepository) ResetUnread(
	ctx context.Context,
	conversationID int64,
	readerID int64,
) error {
	_, err := r.db.Exec(ctx, `
		UPDATE conversations
		SET customer_unread_count = CASE WHEN customer_id = $2 THEN 0 ELSE customer_unread_count END,
			provider_unread_count = CASE WHEN provider_id = $2 THEN 0 ELSE provider_unread_count END
		WHERE id = $1
	`, conversationID, readerID)
	return err
}
