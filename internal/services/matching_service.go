package services

import (
	"context"
	"sort"
	"strings"

	"github.com/servicioshogar/ServiciosHogarBack/internal/models"
)

type ProviderMatcher interface {
	ListAll(ctx context.Context) ([]models.ProviderProfile, error)
}

type MatchingService struct {
	providerRepo ProviderMatcher
}

func NewMatchingService(providerRepo ProviderMatcher) *MatchingService {
	return &MatchingService{providerRepo: providerRepo}
}

func (s *MatchingService) GetMatchedProviders(
	ctx context.Context,
	customerProfile *models.CustomerProfile,
	category string,
	limit int,
) ([]models.ProviderWithScore, error) {
	providers, err := s.providerRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]models.ProviderWithScore, 0, len(providers))
	for _, provider := range providers {
		matched = append(matched, models.ProviderWithScore{
			ProviderProfile: provider,
			MatchScore:      calculateMatchScore(customerProfile, category, &provider),
		})
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].MatchScore == matched[j].MatchScore {
			return floatValue(matched[i].Rating) > floatValue(matched[j].Rating)
		}
		return matched[i].MatchScore > matched[j].MatchScore
	})

	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	return matched, nil
}

func calculateMatchScore(customerProfile *models.CustomerProfile, category string, provider *models.ProviderProfile) int {
	score := 0

	if key := normalize(category); key != "" {
		if _, ok := normalizeValues(provider.Categories)[key]; ok {
			score += 40
		}
	}

	if customerProfile != nil && customerProfile.Zone != nil {
		if _, ok := normalizeValues(provider.Zones)[normalize(*customerProfile.Zone)]; ok {
			score += 25
		}
	}

	if floatValue(provider.Rating) > 4.0 {
		score += 15
	}
	if intValue(provider.ExperienceYears) > 3 {
		score += 10
	}
	if provider.IsVerified != nil && *provider.IsVerified {
		score += 10
	}
	if budget := customerBudget(customerProfile); budget > 0 && floatValue(provider.HourlyRate) <= budget {
		score += 15
	}

	return score
}

func normalizeValues(values *[]string) map[string]struct{} {
	normalized := make(map[string]struct{})
	for _, value := range sliceValue(values) {
		if key := normalize(value); key != "" {
			normalized[key] = struct{}{}
		}
	}
	return normalized
}

func normalize(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	value = strings.ReplaceAll(value, " ", "_")
	value = strings.ReplaceAll(value, "-", "_")
	return value
}

func sliceValue(values *[]string) []string {
	if values == nil {
		return nil
	}
	return *values
}

func floatValue(value *float64) float64 {
	if value == nil {
		return 0
	}
	return *value
}

func intValue(value *int) int {
	if value == nil {
		return 0
	}
	return *value
}

func customerBudget(customerProfile *models.CustomerProfile) float64 {
	if customerProfile == nil {
		return 0
	}
	return floatValue(customerProfile.MaxHourlyRate)
}
