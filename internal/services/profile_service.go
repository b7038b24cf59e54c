package services

import (
	"context"

	"github.com/servicioshogar/ServiciosHogarBack/internal/models"
	"github.com/servicioshogar/ServiciosHogarBack/internal/repository"
)

type CustomerProfileUpdater interface {
	UpdatePartial(ctx context.Context, userID int64, req repository.UpdateCustomerProfileInput) (*models.CustomerProfile, error)
}

type ProviderProfileUpdater interface {
	UpdatePartial(ctx context.Context, userID int64, req repository.UpdateProviderProfileInput) (*models.ProviderProfile, error)
}

type ProfileService struct {
	customerProfileRepo CustomerProfileUpdater
	providerProfileRepo ProviderProfileUpdater
}

func NewProfileService(customerProfileRepo CustomerProfileUpdater, providerProfileRepo ProviderProfileUpdater) *ProfileService {
	return &ProfileService{
		customerProfileRepo: customerProfileRepo,
		providerProfileRepo: providerProfileRepo,
	}
}

func (s *ProfileService) UpdateCustomerProfile(ctx context.Context, userID int64, req repository.UpdateCustomerProfileInput) (*models.CustomerProfile, error) {
	return s.customerProfileRepo.UpdatePartial(ctx, userID, req)
}

func (s *ProfileService) UpdateProviderProfile(ctx context.Context, userID int64, req repository.UpdateProviderProfileInput) (*models.ProviderProfile, error) {
	return s.providerProfileRepo.UpdatePartial(ctx, userID, req)
}
