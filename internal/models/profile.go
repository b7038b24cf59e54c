package models

import "time"

type ProviderProfile struct {
	ID                 int64     `json:"id"`
	UserID             int64     `json:"user_id"`
	FullName           *string   `json:"full_name"`
	Bio                *string   `json:"bio"`
	Categories         *[]string `json:"categories"`
	Zones              *[]string `json:"zones"`
	ExperienceYears    *int      `json:"experience_years"`
	HourlyRate         *float64  `json:"hourly_rate"`
	Rating             *float64  `json:"rating"`
	TotalReviews       int       `json:"total_reviews"`
	IsVerified         *bool     `json:"is_verified"`
	OnboardingComplete bool      `json:"onboarding_complete"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type CustomerProfile struct {
	ID                 int64     `json:"id"`
	UserID             int64     `json:"user_id"`
	FullName           *string   `json:"full_name"`
	Zone               *string   `json:"zone"`
	Address            *string   `json:"address"`
	Phone              *string   `json:"phone"`
	MaxHourlyRate      *float64  `json:"max_hourly_rate"`
	OnboardingComplete bool      `json:"onboarding_complete"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type ProviderWithScore struct {
	ProviderProfile
	MatchScore int `json:"match_score"`
}

type ProviderListResponse struct {
	ID              string   `json:"id"`
	FullName        string   `json:"full_name"`
	Categories      []string `json:"categories"`
	Zones           []string `json:"zones"`
	ExperienceYears int      `json:"experience_years"`
	HourlyRate      float64  `json:"hourly_rate"`
	Rating          float64  `json:"rating"`
	TotalReviews    int      `json:"total_reviews"`
	MatchScore      int      `json:"match_score,omitempty"`
}

type ProviderDetailResponse struct {
	ProviderListResponse
	Bio                string `json:"bio"`
	IsVerified         bool   `json:"is_verified"`
	OnboardingComplete bool   `json:"onboarding_complete"`
}
