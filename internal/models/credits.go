package models

import "time"

type ProviderCredits struct {
	ID             int64      `json:"id"`
	ProviderID     int64      `json:"provider_id"`
	CurrentCredits int        `json:"current_credits"`
	TotalPurchased int        `json:"total_purchased"`
	TotalUsed      int        `json:"total_used"`
	LastPurchaseAt *time.Time `json:"last_purchase_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type CreditPurchase struct {
	ID                int64     `json:"id"`
	ProviderID        int64     `json:"provider_id"`
	PackageID         string    `json:"package_id"`
	Credits           int       `json:"credits"`
	Amount            float64   `json:"amount"`
	Status            string    `json:"status"`
	ExternalReference string    `json:"external_reference"`
	MPPaymentID       *string   `json:"mp_payment_id"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// WebhookEvent is the audit row for a processed payment notification.
// The unique payment id is what makes webhook processing idempotent.
type WebhookEvent struct {
	ID          int64     `json:"id"`
	PaymentID   string    `json:"payment_id"`
	RequestID   string    `json:"request_id"`
	EventType   string    `json:"event_type"`
	ProcessedAt time.Time `json:"processed_at"`
}

type CreditPackage struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Credits  int     `json:"credits"`
	PriceARS float64 `json:"price_ars"`
}
