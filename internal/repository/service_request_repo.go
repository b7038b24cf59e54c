package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/servicioshogar/ServiciosHogarBack/internal/models"
)

type CreateServiceRequestInput struct {
	CustomerID  int64
	ProviderID  int64
	Category    string
	Title       string
	Description *string
	ScheduledAt time.Time
}

type ServiceRequestListFilter struct {
	ActorID   int64
	Role      string
	Status    string
	Timeframe string
}

type ServiceRequestRepository struct {
	db DBTX
}

func NewServiceRequestRepository(db DBTX) *ServiceRequestRepository {
	return &ServiceRequestRepository{db: db}
}

const serviceRequestColumns = `id, customer_id, provider_id, category, title, description,
		scheduled_at, status, contact_unlocked, created_at, updated_at`

func (r *ServiceRequestRepository) Create(
	ctx context.Context,
	input CreateServiceRequestInput,
) (*models.ServiceRequest, error) {
	query := fmt.Sprintf(`
		INSERT INTO service_requests (customer_id, provider_id, category, title, description, scheduled_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'pending')
		RETURNING %s
	`, serviceRequestColumns)

	var request models.ServiceRequest
	err := r.db.QueryRow(
		ctx,
		query,
		input.CustomerID,
		input.ProviderID,
		input.Category,
		input.Title,
		input.Description,
		input.ScheduledAt,
	).Scan(scanServiceRequest(&request)...)
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *ServiceRequestRepository) GetByID(ctx context.Context, requestID int64) (*models.ServiceRequest, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM service_requests
		WHERE id = $1
	`, serviceRequestColumns)

	var request models.ServiceRequest
	err := r.db.QueryRow(ctx, query, requestID).Scan(scanServiceRequest(&request)...)
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *ServiceRequestRepository) GetByIDForUpdate(
	ctx context.Context,
	requestID int64,
) (*models.ServiceRequest, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM service_requests
		WHERE id = $1
		FOR UPDATE
	`, serviceRequestColumns)

	var request models.ServiceRequest
	err := r.db.QueryRow(ctx, query, requestID).Scan(scanServiceRequest(&request)...)
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *ServiceRequestRepository) List(
	ctx context.Context,
	filter ServiceRequestListFilter,
) ([]models.ServiceRequest, error) {
	actorColumn := "customer_id"
	if filter.Role == "provider" {
		actorColumn = "provider_id"
	}

	args := []any{filter.ActorID}
	whereParts := []string{fmt.Sprintf("%s = $1", actorColumn)}

	if status := strings.TrimSpace(filter.Status); status != "" {
		args = append(args, status)
		whereParts = append(whereParts, fmt.Sprintf("status = $%d", len(args)))
	}

	switch strings.TrimSpace(filter.Timeframe) {
	case "upcoming":
		whereParts = append(whereParts, "scheduled_at > NOW()")
	case "past":
		whereParts = append(whereParts, "scheduled_at <= NOW()")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM service_requests
		WHERE %s
		ORDER BY scheduled_at ASC, id ASC
	`, serviceRequestColumns, strings.Join(whereParts, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]models.ServiceRequest, 0)
	for rows.Next() {
		var request models.ServiceRequest
		if err := rows.Scan(scanServiceRequest(&request)...); err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return requests, nil
}

func (r *ServiceRequestRepository) UpdateStatusIfCurrent(
	ctx context.Context,
	requestID int64,
	currentStatus string,
	nextStatus string,
) (*models.ServiceRequest, error) {
	query := fmt.Sprintf(`
		UPDATE service_requests
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING %s
	`, serviceRequestColumns)

	var request models.ServiceRequest
	err := r.db.QueryRow(ctx, query, requestID, currentStatus, nextStatus).
		Scan(scanServiceRequest(&request)...)
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// MarkContactUnlocked only flips the flag when it was still locked, so the
// affected row count doubles as the duplicate-unlock signal.
func (r *ServiceRequestRepository) MarkContactUnlocked(
	ctx context.Context,
	requestID int64,
) (*models.ServiceRequest, error) {
	query := fmt.Sprintf(`
		UPDATE service_requests
		SET contact_unlocked = TRUE, updated_at = NOW()
		WHERE id = $1 AND contact_unlocked = FALSE
		RETURNING %s
	`, serviceRequestColumns)

	var request models.ServiceRequest
	err := r.db.QueryRow(ctx, query, requestID).Scan(scanServiceRequest(&request)...)
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func scanServiceRequest(request *models.ServiceRequest) []any {
	return []any{
		&request.ID,
		&request.CustomerID,
		&request.ProviderID,
		&request.Category,
		&request.Title,
		&request.Description,
		&request.ScheduledAt,
		&request.Status,
		&request.ContactUnlocked,
		&request.CreatedAt,
		&request.UpdatedAt,
	}
}
