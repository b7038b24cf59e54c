package models

import "time"

type ServiceRequest struct {
	ID              int64     `json:"id"`
	CustomerID      int64     `json:"customer_id"`
	ProviderID      int64     `json:"provider_id"`
	Category        string    `json:"category"`
	Title           string    `json:"title"`
	Description     *string   `json:"description"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	Status          string    `json:"status"`
	ContactUnlocked bool      `json:"contact_unlocked"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type ServiceRequestDetail struct {
	ServiceRequest
	CustomerContact *CustomerContact `json:"customer_contact,omitempty"`
}

// CustomerContact is only populated once the provider has unlocked the
// request by spending a credit.
type CustomerContact struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Address  string `json:"address,omitempty"`
}

type Review struct {
	ID               int64     `json:"id"`
	ServiceRequestID int64     `json:"service_request_id"`
	CustomerID       int64     `json:"customer_id"`
	ProviderID       int64     `json:"provider_id"`
	Rating           int       `json:"rating"`
	Comment          *string   `json:"comment,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}
