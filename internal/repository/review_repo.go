package repository

import (
	"context"

	"github.com/servicioshogar/ServiciosHogarBack/internal/models"
)

type CreateReviewInput struct {
	ServiceRequestID int64
	CustomerID       int64
	ProviderID       int64
	Rating           int
	Comment          *string
}

type ReviewRepository struct {
	db DBTX
}

func NewReviewRepository(db DBTX) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) Create(
	ctx context.Context,
	input CreateReviewInput,
) (*models.Review, error) {
	query := `
		INSERT INTO reviews (service_request_id, customer_id, provider_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, service_request_id, customer_id, provider_id, rating, comment, created_at
	`

	var review models.Review
	err := r.db.QueryRow(
		ctx,
		query,
		input.ServiceRequestID,
		input.CustomerID,
		input.ProviderID,
		input.Rating,
		input.Comment,
	).Scan(
		&review.ID,
		&review.ServiceRequestID,
		&review.CustomerID,
		&review.ProviderID,
		&review.Rating,
		&review.Comment,
		&review.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &review, nil
}

func (r *ReviewRepository) GetByServiceRequestID(ctx context.Context, requestID int64) (*models.Review, error) {
	query := `
		SELECT id, service_request_id, customer_id, provider_id, rating, comment, created_at
		FROM reviews
		WHERE service_request_id = $1
	`

	var review models.Review
	err := r.db.QueryRow(ctx, query, requestID).Scan(
		&review.ID,
		&review.ServiceRequestID,
		&review.CustomerID,
		&review.ProviderID,
		&review.Rating,
		&review.Comment,
		&review.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &review, nil
}

func (r *ReviewRepository) ListByProviderID(ctx context.Context, providerID int64) ([]models.Review, error) {
	query := `
		SELECT id, service_request_id, customer_id, provider_id, rating, comment, created_at
		FROM reviews
		WHERE provider_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.Query(ctx, query, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := make([]models.Review, 0)
	for rows.Next() {
		var review models.Review
		if err := rows.Scan(
			&review.ID,
			&review.ServiceRequestID,
			&review.CustomerID,
			&review.ProviderID,
			&review.Rating,
			&review.Comment,
			&review.CreatedAt,
		); err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return reviews, nil
}
