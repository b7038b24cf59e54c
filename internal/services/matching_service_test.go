package services

import (
	"context"
	"testing"

	"github.com/servicioshogar/ServiciosHogarBack/internal/models"
)

type stubProviderMatcher struct {
	providers []models.ProviderProfile
}

func (s *stubProviderMatcher) ListAll(_ context.Context) ([]models.ProviderProfile, error) {
	return s.providers, nil
}

func strPtr(v string) *string       { return &v }
func intPtr(v int) *int             { return &v }
func floatPtr(v float64) *float64   { return &v }
func slicePtr(v []string) *[]string { return &v }
func boolPtr(v bool) *bool          { return &v }

func TestGetMatchedProvidersPrefersCategoryAndZone(t *testing.T) {
	matcher := &stubProviderMatcher{
		providers: []models.ProviderProfile{
			{
				UserID:     1,
				FullName:   strPtr("Plomero Palermo"),
				Categories: slicePtr([]string{"plomeria"}),
				Zones:      slicePtr([]string{"palermo"}),
				Rating:     floatPtr(4.8),
			},
			{
				UserID:     2,
				FullName:   strPtr("Electricista Caballito"),
				Categories: slicePtr([]string{"electricidad"}),
				Zones:      slicePtr([]string{"caballito"}),
				Rating:     floatPtr(5.0),
			},
		},
	}
	service := NewMatchingService(matcher)

	customer := &models.CustomerProfile{Zone: strPtr("Palermo")}
	matched, err := service.GetMatchedProviders(context.Background(), customer, "Plomeria", 10)
	if err != nil {
		t.Fatalf("GetMatchedProviders: %v", err)
	}

	if len(matched) != 2 {
		t.Fatalf("expected 2 providers, got %d", len(matched))
	}
	if matched[0].UserID != 1 {
		t.Fatalf("expected category+zone match first, got provider %d", matched[0].UserID)
	}
	if matched[0].MatchScore <= matched[1].MatchScore {
		t.Fatalf("expected strictly higher score for the matching provider: %d vs %d",
			matched[0].MatchScore, matched[1].MatchScore)
	}
}

func TestGetMatchedProvidersBreaksTiesByRating(t *testing.T) {
	matcher := &stubProviderMatcher{
		providers: []models.ProviderProfile{
			{UserID: 1, Rating: floatPtr(3.5)},
			{UserID: 2, Rating: floatPtr(4.9)},
		},
	}
	service := NewMatchingService(matcher)

	matched, err := service.GetMatchedProviders(context.Background(), nil, "", 10)
	if err != nil {
		t.Fatalf("GetMatchedProviders: %v", err)
	}

	if matched[0].UserID != 2 {
		t.Fatalf("expected higher rated provider first, got %d", matched[0].UserID)
	}
}

func TestGetMatchedProvidersRespectsLimit(t *testing.T) {
	matcher := &stubProviderMatcher{
		providers: []models.ProviderProfile{
			{UserID: 1}, {UserID: 2}, {UserID: 3},
		},
	}
	service := NewMatchingService(matcher)

	matched, err := service.GetMatchedProviders(context.Background(), nil, "", 2)
	if err != nil {
		t.Fatalf("GetMatchedProviders: %v", err)
	}
	if len(matched) != 2 {
		t.Fatalf("expected limit of 2, got %d", len(matched))
	}
}

func TestCalculateMatchScoreRewardsVerifiedAndBudget(t *testing.T) {
	provider := &models.ProviderProfile{
		Categories:      slicePtr([]string{"limpieza"}),
		Zones:           slicePtr([]string{"belgrano"}),
		Rating:          floatPtr(4.5),
		ExperienceYears: intPtr(5),
		HourlyRate:      floatPtr(3000),
		IsVerified:      boolPtr(true),
	}
	customer := &models.CustomerProfile{
		Zone:          strPtr("Belgrano"),
		MaxHourlyRate: floatPtr(4000),
	}

	score := calculateMatchScore(customer, "Limpieza", provider)
	// category 40 + zone 25 + rating 15 + experience 10 + verified 10 + budget 15
	if score != 115 {
		t.Fatalf("expected full score 115, got %d", score)
	}

	over := &models.CustomerProfile{Zone: strPtr("Belgrano"), MaxHourlyRate: floatPtr(2000)}
	if s := calculateMatchScore(over, "Limpieza", provider); s != 100 {
		t.Fatalf("expected budget bonus dropped, got %d", s)
	}
}
