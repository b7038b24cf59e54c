package repository

import (
	"context"

	"github.com/servicioshogar/ServiciosHogarBack/internal/models"
)

type CreditsRepository struct {
	db DBTX
}

func NewCreditsRepository(db DBTX) *CreditsRepository {
	return &CreditsRepository{db: db}
}

func (r *CreditsRepository) GetByProviderID(ctx context.Context, providerID int64) (*models.ProviderCredits, error) {
	query := `
		SELECT id, provider_id, current_credits, total_purchased, total_used, last_purchase_at, updated_at
		FROM provider_credits
		WHERE provider_id = $1
	`

	var credits models.ProviderCredits
	err := r.db.QueryRow(ctx, query, providerID).Scan(
		&credits.ID,
		&credits.ProviderID,
		&credits.CurrentCredits,
		&credits.TotalPurchased,
		&credits.TotalUsed,
		&credits.LastPurchaseAt,
		&credits.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &credits, nil
}

// Add upserts the balance row in a single statement so concurrent webhook
// deliveries for the same provider cannot lose an update.
func (r *CreditsRepository) Add(ctx context.Context, providerID int64, amount int) (*models.ProviderCredits, error) {
	query := `
		INSERT INTO provider_credits (provider_id, current_credits, total_purchased, total_used, last_purchase_at)
		VALUES ($1, $2, $2, 0, NOW())
		ON CONFLICT (provider_id)
		DO UPDATE SET current_credits = provider_credits.current_credits + EXCLUDED.current_credits,
					  total_purchased = provider_credits.total_purchased + EXCLUDED.total_purchased,
					  last_purchase_at = NOW(),
					  updated_at = NOW()
		RETURNING id, provider_id, current_credits, total_purchased, total_used, last_purchase_at, updated_at
	`

	var credits models.ProviderCredits
	err := r.db.QueryRow(ctx, query, providerID, amount).Scan(
		&credits.ID,
		&credits.ProviderID,
		&credits.CurrentCredits,
		&credits.TotalPurchased,
		&credits.TotalUsed,
		&credits.LastPurchaseAt,
		&credits.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &credits, nil
}

// Consume decrements the balance only while it stays non-negative. No row
// matched means the provider has fewer credits than requested; the caller
// reads that as pgx.ErrNoRows and the balance is left untouched.
func (r *CreditsRepository) Consume(ctx context.Context, providerID int64, amount int) (*models.ProviderCredits, error) {
	query := `
		UPDATE provider_credits
		SET current_credits = current_credits - $2,
			total_used = total_used + $2,
			updated_at = NOW()
		WHERE provider_id = $1 AND current_credits >= $2
		RETURNING id, provider_id, current_credits, total_purchased, total_used, last_purchase_at, updated_at
	`

	var credits models.ProviderCredits
	err := r.db.QueryRow(ctx, query, providerID, amount).Scan(
		&credits.ID,
		&credits.ProviderID,
		&credits.CurrentCredits,
		&credits.TotalPurchased,
		&credits.TotalUsed,
		&credits.LastPurchaseAt,
		&credits.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &credits, nil
}
