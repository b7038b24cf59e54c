package repository

import (
	"context"

	"github.com/servicioshogar/ServiciosHogarBack/internal/models"
)

type WebhookEventRepository struct {
	db DBTX
}

func NewWebhookEventRepository(db DBTX) *WebhookEventRepository {
	return &WebhookEventRepository{db: db}
}

// Insert records a processed payment notification. The payment_id column
// carries a unique constraint, so a duplicate delivery surfaces as a
// 23505 unique violation instead of a second crediting pass.
func (r *WebhookEventRepository) Insert(
	ctx context.Context,
	paymentID string,
	requestID string,
	eventType string,
) (*models.WebhookEvent, error) {
	query := `
		INSERT INTO webhook_events (payment_id, request_id, event_type)
		VALUES ($1, $2, $3)
		RETURNING id, payment_id, request_id, event_type, processed_at
	`

	var event models.WebhookEvent
	err := r.db.QueryRow(ctx, query, paymentID, requestID, eventType).Scan(
		&event.ID,
		&event.PaymentID,
		&event.RequestID,
		&event.EventType,
		&event.ProcessedAt,
	)
	if err != nil {
		return nil, err
	}
	return &event, nil
}
