package handlers

import (
	"strings"
)

func validateCustomerOnboardingRequest(req customerOnboardingRequest) string {
	if strings.TrimSpace(req.FullName) == "" {
		return "full_name is required"
	}
	if strings.TrimSpace(req.Zone) == "" {
		return "zone is required"
	}
	if strings.TrimSpace(req.Phone) == "" {
		return "phone is required"
	}
	if req.MaxHourlyRate != nil && *req.MaxHourlyRate < 0 {
		return "max_hourly_rate must be 0 or greater"
	}
	return ""
}

func validateProviderOnboardingRequest(req providerOnboardingRequest) string {
	if strings.TrimSpace(req.FullName) == "" {
		return "full_name is required"
	}
	if strings.TrimSpace(req.Bio) == "" {
		return "bio is required"
	}
	if len(req.Categories) == 0 {
		return "categories must contain at least one item"
	}
	for _, category := range req.Categories {
		if strings.TrimSpace(category) == "" {
			return "categories must not contain empty values"
		}
	}
	if len(req.Zones) == 0 {
		return "zones must contain at least one item"
	}
	for _, zone := range req.Zones {
		if strings.TrimSpace(zone) == "" {
			return "zones must not contain empty values"
		}
	}
	if req.ExperienceYears < 0 {
		return "experience_years must be 0 or greater"
	}
	if req.HourlyRate < 0 {
		return "hourly_rate must be 0 or greater"
	}
	return ""
}

func validateCustomerProfileUpdateRequest(req updateCustomerProfileRequest) string {
	if req.FullName != nil && strings.TrimSpace(*req.FullName) == "" {
		return "full_name must not be empty"
	}
	if req.Zone != nil && strings.TrimSpace(*req.Zone) == "" {
		return "zone must not be empty"
	}
	if req.Phone != nil && strings.TrimSpace(*req.Phone) == "" {
		return "phone must not be empty"
	}
	if req.MaxHourlyRate != nil && *req.MaxHourlyRate < 0 {
		return "max_hourly_rate must be 0 or greater"
	}
	return ""
}

func validateProviderProfileUpdateRequest(req updateProviderProfileRequest) string {
	if req.FullName != nil && strings.TrimSpace(*req.FullName) == "" {
		return "full_name must not be empty"
	}
	if req.Bio != nil && strings.TrimSpace(*req.Bio) == "" {
		return "bio must not be empty"
	}
	if req.Categories != nil {
		for _, category := range *req.Categories {
			if strings.TrimSpace(category) == "" {
				return "categories must not contain empty values"
			}
		}
	}
	if req.Zones != nil {
		for _, zone := range *req.Zones {
			if strings.TrimSpace(zone) == "" {
				return "zones must not contain empty values"
			}
		}
	}
	if req.ExperienceYears != nil && *req.ExperienceYears < 0 {
		return "experience_years must be 0 or greater"
	}
	if req.HourlyRate != nil && *req.HourlyRate < 0 {
		return "hourly_rate must be 0 or greater"
	}
	return ""
}
