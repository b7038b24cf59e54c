package services

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/servicioshogar/ServiciosHogarBack/internal/models"
	"github.com/servicioshogar/ServiciosHogarBack/internal/repository"
)

// CreditPackages is the fixed catalog offered at checkout. Prices are ARS.
var CreditPackages = []models.CreditPackage{
	{ID: "starter", Name: "Paquete Inicial", Credits: 5, PriceARS: 2500},
	{ID: "standard", Name: "Paquete Estándar", Credits: 15, PriceARS: 6000},
	{ID: "pro", Name: "Paquete Profesional", Credits: 40, PriceARS: 14000},
}

type CreditService struct {
	creditsRepo *repository.CreditsRepository
}

func NewCreditService(creditsRepo *repository.CreditsRepository) *CreditService {
	return &CreditService{creditsRepo: creditsRepo}
}

// GetBalance returns a zeroed balance for providers that never purchased,
// so callers never have to treat a missing row as an error.
func (s *CreditService) GetBalance(ctx context.Context, actorID int64, role string) (*models.ProviderCredits, error) {
	if role != "provider" {
		return nil, ErrForbidden
	}

	credits, err := s.creditsRepo.GetByProviderID(ctx, actorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &models.ProviderCredits{ProviderID: actorID}, nil
		}
		return nil, err
	}
	return credits, nil
}

func (s *CreditService) ListPackages() []models.CreditPackage {
	return CreditPackages
}

func (s *CreditService) AddCredits(ctx context.Context, providerID int64, amount int) (*models.ProviderCredits, error) {
	if amount <= 0 {
		return nil, ErrInvalidInput
	}
	return s.creditsRepo.Add(ctx, providerID, amount)
}

func (s *CreditService) ConsumeCredit(ctx context.Context, providerID int64, amount int) (*models.ProviderCredits, error) {
	if amount <= 0 {
		return nil, ErrInvalidInput
	}

	credits, err := s.creditsRepo.Consume(ctx, providerID, amount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInsufficientCredits
		}
		return nil, err
	}
	return credits, nil
}

func PackageByID(packageID string) (*models.CreditPackage, bool) {
	for i := range CreditPackages {
		if CreditPackages[i].ID == packageID {
			return &CreditPackages[i], true
		}
	}
	return nil, false
}
