package repository

import (
	"context"

	"github.com/servicioshogar/ServiciosHogarBack/internal/models"
)

type CreatePurchaseInput struct {
	ProviderID        int64
	PackageID         string
	Credits           int
	Amount            float64
	ExternalReference string
}

type PurchaseRepository struct {
	db DBTX
}

func NewPurchaseRepository(db DBTX) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

const purchaseColumns = `id, provider_id, package_id, credits, amount, status,
		external_reference, mp_payment_id, created_at, updated_at`

func (r *PurchaseRepository) Create(ctx context.Context, input CreatePurchaseInput) (*models.CreditPurchase, error) {
	query := `
		INSERT INTO credit_purchases (provider_id, package_id, credits, amount, status, external_reference)
		VALUES ($1, $2, $3, $4, 'pending', $5)
		RETURNING ` + purchaseColumns

	var purchase models.CreditPurchase
	err := r.db.QueryRow(ctx, query,
		input.ProviderID,
		input.PackageID,
		input.Credits,
		input.Amount,
		input.ExternalReference,
	).Scan(scanPurchase(&purchase)...)
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *PurchaseRepository) GetByExternalReferenceForUpdate(
	ctx context.Context,
	externalReference string,
) (*models.CreditPurchase, error) {
	query := `
		SELECT ` + purchaseColumns + `
		FROM credit_purchases
		WHERE external_reference = $1
		FOR UPDATE
	`

	var purchase models.CreditPurchase
	err := r.db.QueryRow(ctx, query, externalReference).Scan(scanPurchase(&purchase)...)
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *PurchaseRepository) ListByProviderID(ctx context.Context, providerID int64) ([]models.CreditPurchase, error) {
	query := `
		SELECT ` + purchaseColumns + `
		FROM credit_purchases
		WHERE provider_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.Query(ctx, query, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	purchases := make([]models.CreditPurchase, 0)
	for rows.Next() {
		var purchase models.CreditPurchase
		if err := rows.Scan(scanPurchase(&purchase)...); err != nil {
			return nil, err
		}
		purchases = append(purchases, purchase)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return purchases, nil
}

func (r *PurchaseRepository) UpdateStatusIfCurrent(
	ctx context.Context,
	purchaseID int64,
	currentStatus string,
	nextStatus string,
) (*models.CreditPurchase, error) {
	query := `
		UPDATE credit_purchases
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + purchaseColumns

	var purchase models.CreditPurchase
	err := r.db.QueryRow(ctx, query, purchaseID, currentStatus, nextStatus).
		Scan(scanPurchase(&purchase)...)
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *PurchaseRepository) SetPaymentID(
	ctx context.Context,
	purchaseID int64,
	mpPaymentID string,
) error {
	_, err := r.db.Exec(ctx, `
		UPDATE credit_purchases
		SET mp_payment_id = $2, updated_at = NOW()
		WHERE id = $1
	`, purchaseID, mpPaymentID)
	return err
}

func scanPurchase(purchase *models.CreditPurchase) []any {
	return []any{
		&purchase.ID,
		&purchase.ProviderID,
		&purchase.PackageID,
		&purchase.Credits,
		&purchase.Amount,
		&purchase.Status,
		&purchase.ExternalReference,
		&purchase.MPPaymentID,
		&purchase.CreatedAt,
		&purchase.UpdatedAt,
	}
}
