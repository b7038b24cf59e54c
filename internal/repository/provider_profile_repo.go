package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/servicioshogar/ServiciosHogarBack/internal/models"
)

type ProviderProfileRepository struct {
	db DBTX
}

func NewProviderProfileRepository(db DBTX) *ProviderProfileRepository {
	return &ProviderProfileRepository{db: db}
}

const providerProfileColumns = `id, user_id, full_name, bio, categories, zones,
		   experience_years, hourly_rate, rating, total_reviews, is_verified,
		   onboarding_complete, created_at, updated_at`

func (r *ProviderProfileRepository) CreateEmpty(ctx context.Context, userID int64) error {
	query := `INSERT INTO provider_profiles (user_id) VALUES ($1)`
	_, err := r.db.Exec(ctx, query, userID)
	return err
}

func (r *ProviderProfileRepository) GetByUserID(ctx context.Context, userID int64) (*models.ProviderProfile, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM provider_profiles
		WHERE user_id = $1
	`, providerProfileColumns)

	var profile models.ProviderProfile
	err := r.db.QueryRow(ctx, query, userID).Scan(scanProviderProfile(&profile)...)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *ProviderProfileRepository) UpdateOnboarding(ctx context.Context, userID int64, req ProviderOnboardingInput) (*models.ProviderProfile, error) {
	query := fmt.Sprintf(`
		UPDATE provider_profiles
		SET full_name = $1,
			bio = $2,
			categories = $3,
			zones = $4,
			experience_years = $5,
			hourly_rate = $6,
			onboarding_complete = TRUE,
			updated_at = NOW()
		WHERE user_id = $7
		RETURNING %s
	`, providerProfileColumns)

	var profile models.ProviderProfile
	err := r.db.QueryRow(ctx, query,
		req.FullName,
		req.Bio,
		req.Categories,
		req.Zones,
		req.ExperienceYears,
		req.HourlyRate,
		userID,
	).Scan(scanProviderProfile(&profile)...)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *ProviderProfileRepository) UpdatePartial(ctx context.Context, userID int64, req UpdateProviderProfileInput) (*models.ProviderProfile, error) {
	query := fmt.Sprintf(`
		UPDATE provider_profiles
		SET full_name = COALESCE($1, full_name),
			bio = COALESCE($2, bio),
			categories = COALESCE($3, categories),
			zones = COALESCE($4, zones),
			experience_years = COALESCE($5, experience_years),
			hourly_rate = COALESCE($6, hourly_rate),
			updated_at = NOW()
		WHERE user_id = $7
		RETURNING %s
	`, providerProfileColumns)

	var profile models.ProviderProfile
	err := r.db.QueryRow(ctx, query,
		req.FullName,
		req.Bio,
		req.Categories,
		req.Zones,
		req.ExperienceYears,
		req.HourlyRate,
		userID,
	).Scan(scanProviderProfile(&profile)...)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

type ProviderListFilter struct {
	Category  string
	Zone      string
	MinRating float64
	MaxRate   float64
	Offset    int
	Limit     int
}

func (r *ProviderProfileRepository) List(ctx context.Context, filter ProviderListFilter) ([]models.ProviderProfile, int, error) {
	args := []any{}
	whereParts := []string{"onboarding_complete = TRUE"}

	if category := strings.TrimSpace(filter.Category); category != "" {
		args = append(args, category)
		whereParts = append(whereParts, fmt.Sprintf("$%d = ANY(categories)", len(args)))
	}
	if zone := strings.TrimSpace(filter.Zone); zone != "" {
		args = append(args, zone)
		whereParts = append(whereParts, fmt.Sprintf("$%d = ANY(zones)", len(args)))
	}
	if filter.MinRating > 0 {
		args = append(args, filter.MinRating)
		whereParts = append(whereParts, fmt.Sprintf("rating >= $%d", len(args)))
	}
	if filter.MaxRate > 0 {
		args = append(args, filter.MaxRate)
		whereParts = append(whereParts, fmt.Sprintf("hourly_rate <= $%d", len(args)))
	}

	where := strings.Join(whereParts, " AND ")

	totalQuery := fmt.Sprintf(`SELECT COUNT(*) FROM provider_profiles WHERE %s`, where)
	var total int
	if err := r.db.QueryRow(ctx, totalQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`
		SELECT %s
		FROM provider_profiles
		WHERE %s
		ORDER BY rating DESC NULLS LAST, total_reviews DESC, id ASC
		LIMIT $%d OFFSET $%d
	`, providerProfileColumns, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	profiles := make([]models.ProviderProfile, 0)
	for rows.Next() {
		var profile models.ProviderProfile
		if err := rows.Scan(scanProviderProfile(&profile)...); err != nil {
			return nil, 0, err
		}
		profiles = append(profiles, profile)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return profiles, total, nil
}

func (r *ProviderProfileRepository) ListAll(ctx context.Context) ([]models.ProviderProfile, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM provider_profiles
		WHERE onboarding_complete = TRUE
	`, providerProfileColumns)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := make([]models.ProviderProfile, 0)
	for rows.Next() {
		var profile models.ProviderProfile
		if err := rows.Scan(scanProviderProfile(&profile)...); err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return profiles, nil
}

// RefreshRatingAggregate recomputes the provider's rating and review count
// from the reviews table in a single statement.
func (r *ProviderProfileRepository) RefreshRatingAggregate(ctx context.Context, providerID int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE provider_profiles
		SET rating = (SELECT AVG(rating)::numeric(3,2) FROM reviews WHERE provider_id = $1),
			total_reviews = (SELECT COUNT(*) FROM reviews WHERE provider_id = $1),
			updated_at = NOW()
		WHERE user_id = $1
	`, providerID)
	return err
}

func scanProviderProfile(profile *models.ProviderProfile) []any {
	return []any{
		&profile.ID,
		&profile.UserID,
		&profile.FullName,
		&profile.Bio,
		&profile.Categories,
		&profile.Zones,
		&profile.ExperienceYears,
		&profile.HourlyRate,
		&profile.Rating,
		&profile.TotalReviews,
		&profile.IsVerified,
		&profile.OnboardingComplete,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	}
}

type ProviderOnboardingInput struct {
	FullName        string
	Bio             string
	Categories      []string
	Zones           []string
	ExperienceYears int
	HourlyRate      float64
}

type UpdateProviderProfileInput struct {
	FullName        *string
	Bio             *string
	Categories      *[]string
	Zones           *[]string
	ExperienceYears *int
	HourlyRate      *float64
}
