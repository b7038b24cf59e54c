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

var (
	ErrForbidden              = errors.New("forbidden")
	ErrConflict               = errors.New("conflict")
	ErrInvalidStatus          = errors.New("invalid status")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrInvalidInput           = errors.New("invalid input")
	ErrProviderNotFound       = errors.New("provider not found")
	ErrInsufficientCredits    = errors.New("insufficient credits")
)

type providerProfileReader interface {
	GetByUserID(ctx context.Context, userID int64) (*models.ProviderProfile, error)
}

type customerProfileReader interface {
	GetByUserID(ctx context.Context, userID int64) (*models.CustomerProfile, error)
}

type userReader interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

type RequestService struct {
	db                  *pgxpool.Pool
	requestRepo         *repository.ServiceRequestRepository
	conversationRepo    *repository.ConversationRepository
	creditsRepo         *repository.CreditsRepository
	userRepo            userReader
	providerProfileRepo providerProfileReader
	customerProfileRepo customerProfileReader
}

func NewRequestService(
	db *pgxpool.Pool,
	requestRepo *repository.ServiceRequestRepository,
	conversationRepo *repository.ConversationRepository,
	creditsRepo *repository.CreditsRepository,
	userRepo userReader,
	providerProfileRepo providerProfileReader,
	customerProfileRepo customerProfileReader,
) *RequestService {
	return &RequestService{
		db:                  db,
		requestRepo:         requestRepo,
		conversationRepo:    conversationRepo,
		creditsRepo:         creditsRepo,
		userRepo:            userRepo,
		providerProfileRepo: providerProfileRepo,
		customerProfileRepo: customerProfileRepo,
	}
}

type CreateRequestInput struct {
	ProviderID  int64
	Category    string
	Title       string
	Description *string
	ScheduledAt time.Time
}

func (s *RequestService) CreateRequest(
	ctx context.Context,
	customerID int64,
	input CreateRequestInput,
) (*models.ServiceRequest, error) {
	if input.ProviderID <= 0 {
		return nil, ErrInvalidInput
	}
	if strings.TrimSpace(input.Category) == "" || strings.TrimSpace(input.Title) == "" {
		return nil, ErrInvalidInput
	}
	if input.ScheduledAt.Before(time.Now().Add(-1 * time.Minute)) {
		return nil, ErrInvalidInput
	}
	if customerID == input.ProviderID {
		return nil, ErrInvalidInput
	}

	provider, err := s.userRepo.GetByID(ctx, input.ProviderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProviderNotFound
		}
		return nil, err
	}
	if provider.Role != "provider" {
		return nil, ErrInvalidInput
	}

	profile, err := s.providerProfileRepo.GetByUserID(ctx, input.ProviderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProviderNotFound
		}
		return nil, err
	}
	if !profile.OnboardingComplete {
		return nil, ErrInvalidInput
	}

	return s.requestRepo.Create(ctx, repository.CreateServiceRequestInput{
		CustomerID:  customerID,
		ProviderID:  input.ProviderID,
		Category:    strings.TrimSpace(input.Category),
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		ScheduledAt: input.ScheduledAt.UTC(),
	})
}

func (s *RequestService) ListRequests(
	ctx context.Context,
	actorID int64,
	role string,
	filter repository.ServiceRequestListFilter,
) ([]models.ServiceRequest, error) {
	return s.requestRepo.List(ctx, repository.ServiceRequestListFilter{
		ActorID:   actorID,
		Role:      role,
		Status:    filter.Status,
		Timeframe: filter.Timeframe,
	})
}

func (s *RequestService) GetRequest(
	ctx context.Context,
	actorID int64,
	role string,
	requestID int64,
) (*models.ServiceRequestDetail, error) {
	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !canAccessRequest(role, actorID, request) {
		return nil, ErrForbidden
	}

	detail := &models.ServiceRequestDetail{ServiceRequest: *request}
	if role == "provider" && request.ContactUnlocked {
		contact, err := s.customerContact(ctx, request.CustomerID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		detail.CustomerContact = contact
	}
	return detail, nil
}

func (s *RequestService) UpdateStatus(
	ctx context.Context,
	actorID int64,
	role string,
	requestID int64,
	requestedStatus string,
) (*models.ServiceRequestDetail, error) {
	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !canAccessRequest(role, actorID, request) {
		return nil, ErrForbidden
	}

	nextStatus, err := normalizeRequestedStatus(requestedStatus)
	if err != nil {
		return nil, err
	}
	if err := validateStatusTransition(role, actorID, request, nextStatus); err != nil {
		return nil, err
	}

	updated, err := s.requestRepo.UpdateStatusIfCurrent(ctx, requestID, request.Status, nextStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}
	return s.GetRequest(ctx, actorID, role, updated.ID)
}

// UnlockContact spends one credit to reveal the customer's contact details
// and opens the conversation tied to the request. Credit consumption and the
// unlock flag are committed together, so a failed consume leaves the request
// locked and an insufficient balance never half-unlocks.
func (s *RequestService) UnlockContact(
	ctx context.Context,
	actorID int64,
	role string,
	requestID int64,
) (*models.ServiceRequestDetail, *models.Conversation, error) {
	if role != "provider" {
		return nil, nil, ErrForbidden
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txRequestRepo := repository.NewServiceRequestRepository(tx)
	txCreditsRepo := repository.NewCreditsRepository(tx)
	txConversationRepo := repository.NewConversationRepository(tx)

	request, err := txRequestRepo.GetByIDForUpdate(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}
	if request.ProviderID != actorID {
		return nil, nil, ErrForbidden
	}
	if request.Status == "cancelled" {
		return nil, nil, ErrInvalidStateTransition
	}

	if !request.ContactUnlocked {
		if _, err := txCreditsRepo.Consume(ctx, actorID, 1); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, nil, ErrInsufficientCredits
			}
			return nil, nil, err
		}
		request, err = txRequestRepo.MarkContactUnlocked(ctx, requestID)
		if err != nil {
			return nil, nil, err
		}
	}

	serviceRequestID := request.ID
	conversation, err := txConversationRepo.CreateOrGet(
		ctx,
		request.CustomerID,
		request.ProviderID,
		&serviceRequestID,
	)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}

	detail := &models.ServiceRequestDetail{ServiceRequest: *request}
	contact, err := s.customerContact(ctx, request.CustomerID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, err
	}
	detail.CustomerContact = contact

	return detail, conversation, nil
}

func (s *RequestService) customerContact(ctx context.Context, customerID int64) (*models.CustomerContact, error) {
	profile, err := s.customerProfileRepo.GetByUserID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	contact := &models.CustomerContact{}
	if profile.FullName != nil {
		contact.FullName = *profile.FullName
	}
	if profile.Phone != nil {
		contact.Phone = *profile.Phone
	}
	if profile.Address != nil {
		contact.Address = *profile.Address
	}
	return contact, nil
}

func canAccessRequest(role string, actorID int64, request *models.ServiceRequest) bool {
	if role == "customer" {
		return request.CustomerID == actorID
	}
	if role == "provider" {
		return request.ProviderID == actorID
	}
	return false
}

func normalizeRequestedStatus(status string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "accept", "accepted":
		return "accepted", nil
	case "complete", "completed":
		return "completed", nil
	case "cancel", "cancelled", "canceled":
		return "cancelled", nil
	default:
		return "", ErrInvalidStatus
	}
}

func validateStatusTransition(
	role string,
	actorID int64,
	request *models.ServiceRequest,
	nextStatus string,
) error {
	switch role {
	case "customer":
		if request.CustomerID != actorID || nextStatus != "cancelled" {
			return ErrForbidden
		}
		if request.Status == "completed" || request.Status == "cancelled" {
			return ErrInvalidStateTransition
		}
		return nil
	case "provider":
		if request.ProviderID != actorID {
			return ErrForbidden
		}
		switch nextStatus {
		case "accepted":
			if request.Status != "pending" {
				return ErrInvalidStateTransition
			}
		case "completed":
			if request.Status != "accepted" {
				return ErrInvalidStateTransition
			}
			if request.ScheduledAt.UTC().After(time.Now().UTC()) {
				return ErrInvalidStateTransition
			}
		case "cancelled":
			if request.Status == "completed" || request.Status == "cancelled" {
				return ErrInvalidStateTransition
			}
		default:
			return ErrInvalidStatus
		}
		return nil
	default:
		return ErrForbidden
	}
}
