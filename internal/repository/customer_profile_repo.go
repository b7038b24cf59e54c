package repository

import (
	"context"

	"github.com/servicioshogar/ServiciosHogarBack/internal/models"
)

type CustomerProfileRepository struct {
	db DBTX
}

func NewCustomerProfileRepository(db DBTX) *CustomerProfileRepository {
	return &CustomerProfileRepository{db: db}
}

func (r *CustomerProfileRepository) CreateEmpty(ctx context.Context, userID int64) error {
	query := `INSERT INTO customer_profiles (user_id) VALUES ($1)`
	_, err := r.db.Exec(ctx, query, userID)
	return err
}

func (r *CustomerProfileRepository) GetByUserID(ctx context.Context, userID int64) (*models.CustomerProfile, error) {
	query := `
		SELECT id, user_id, full_name, zone, address, phone, max_hourly_rate,
			   onboarding_complete, created_at, updated_at
		FROM customer_profiles
		WHERE user_id = $1
	`
	var profile models.CustomerProfile
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.FullName,
		&profile.Zone,
		&profile.Address,
		&profile.Phone,
		&profile.MaxHourlyRate,
		&profile.OnboardingComplete,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *CustomerProfileRepository) UpdateOnboarding(ctx context.Context, userID int64, req CustomerOnboardingInput) (*models.CustomerProfile, error) {
	query := `
		UPDATE customer_profiles
		SET full_name = $1,
			zone = $2,
			address = $3,
			phone = $4,
			max_hourly_rate = $5,
			onboarding_complete = TRUE,
			updated_at = NOW()
		WHERE user_id = $6
		RETURNING id, user_id, full_name, zone, address, phone, max_hourly_rate,
				  onboarding_complete, created_at, updated_at
	`
	var profile models.CustomerProfile
	err := r.db.QueryRow(ctx, query,
		req.FullName,
		req.Zone,
		req.Address,
		req.Phone,
		req.MaxHourlyRate,
		userID,
	).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.FullName,
		&profile.Zone,
		&profile.Address,
		&profile.Phone,
		&profile.MaxHourlyRate,
		&profile.OnboardingComplete,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *CustomerProfileRepository) UpdatePartial(ctx context.Context, userID int64, req UpdateCustomerProfileInput) (*models.CustomerProfile, error) {
	query := `
		UPDATE customer_profiles
		SET full_name = COALESCE($1, full_name),
			zone = COALESCE($2, zone),
			address = COALESCE($3, address),
			phone = COALESCE($4, phone),
			max_hourly_rate = COALESCE($5, max_hourly_rate),
			updated_at = NOW()
		WHERE user_id = $6
		RETURNING id, user_id, full_name, zone, address, phone, max_hourly_rate,
				  onboarding_complete, created_at, updated_at
	`
	var profile models.CustomerProfile
	err := r.db.QueryRow(ctx, query,
		req.FullName,
		req.Zone,
		req.Address,
		req.Phone,
		req.MaxHourlyRate,
		userID,
	).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.FullName,
		&profile.Zone,
		&profile.Address,
		&profile.Phone,
		&profile.MaxHourlyRate,
		&profile.OnboardingComplete,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

type CustomerOnboardingInput struct {
	FullName      string
	Zone          string
	Address       *string
	Phone         string
	MaxHourlyRate *float64
}

type UpdateCustomerProfileInput struct {
	FullName      *string
	Zone          *string
	Address       *string
	Phone         *string
	MaxHourlyRate *float64
}
