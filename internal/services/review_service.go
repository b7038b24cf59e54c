package services

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/servicioshogar/ServiciosHogarBack/internal/models"
	"github.com/servicioshogar/ServiciosHogarBack/internal/repository"
)

type ReviewService struct {
	db          *pgxpool.Pool
	reviewRepo  *repository.ReviewRepository
	requestRepo *repository.ServiceRequestRepository
}

func NewReviewService(
	db *pgxpool.Pool,
	reviewRepo *repository.ReviewRepository,
	requestRepo *repository.ServiceRequestRepository,
) *ReviewService {
	return &ReviewService{
		db:          db,
		reviewRepo:  reviewRepo,
		requestRepo: requestRepo,
	}
}

// CreateReview lets the customer rate a completed request once. The insert
// and the provider rating refresh commit together so listings never show an
// aggregate that excludes a stored review.
func (s *ReviewService) CreateReview(
	ctx context.Context,
	actorID int64,
	role string,
	requestID int64,
	rating int,
	comment *string,
) (*models.Review, error) {
	if role != "customer" {
		return nil, ErrForbidden
	}
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidInput
	}

	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.CustomerID != actorID {
		return nil, ErrForbidden
	}
	if request.Status != "completed" {
		return nil, ErrInvalidStatus
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txReviewRepo := repository.NewReviewRepository(tx)
	txProviderRepo := repository.NewProviderProfileRepository(tx)

	review, err := txReviewRepo.Create(ctx, repository.CreateReviewInput{
		ServiceRequestID: requestID,
		CustomerID:       actorID,
		ProviderID:       request.ProviderID,
		Rating:           rating,
		Comment:          comment,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrConflict
		}
		return nil, err
	}

	if err := txProviderRepo.RefreshRatingAggregate(ctx, request.ProviderID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return review, nil
}

func (s *ReviewService) ListProviderReviews(ctx context.Context, providerID int64) ([]models.Review, error) {
	return s.reviewRepo.ListByProviderID(ctx, providerID)
}

func (s *ReviewService) GetRequestReview(
	ctx context.Context,
	actorID int64,
	role string,
	requestID int64,
) (*models.Review, error) {
	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !canAccessRequest(role, actorID, request) {
		return nil, ErrForbidden
	}
	return s.reviewRepo.GetByServiceRequestID(ctx, requestID)
}
