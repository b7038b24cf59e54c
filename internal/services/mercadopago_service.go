package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// PaymentGateway is the slice of the Mercado Pago API the payment flow needs.
type PaymentGateway interface {
	CreatePreference(ctx context.Context, input PreferenceInput) (*Preference, error)
	GetPayment(ctx context.Context, paymentID string) (*Payment, error)
}

type PreferenceInput struct {
	Title             string
	Quantity          int
	UnitPrice         float64
	ExternalReference string
	NotificationURL   string
}

type Preference struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

type Payment struct {
	ID                int64   `json:"id"`
	Status            string  `json:"status"`
	ExternalReference string  `json:"external_reference"`
	TransactionAmount float64 `json:"transaction_amount"`
}

type MercadoPagoService struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

func NewMercadoPagoService(accessToken string) *MercadoPagoService {
	return &MercadoPagoService{
		baseURL:     "https://api.mercadopago.com",
		accessToken: accessToken,
		httpClient:  http.DefaultClient,
	}
}

func (s *MercadoPagoService) CreatePreference(ctx context.Context, input PreferenceInput) (*Preference, error) {
	payload := map[string]any{
		"items": []map[string]any{
			{
				"title":       input.Title,
				"quantity":    input.Quantity,
				"unit_price":  input.UnitPrice,
				"currency_id": "ARS",
			},
		},
		"external_reference": input.ExternalReference,
	}
	if input.NotificationURL != "" {
		payload["notification_url"] = input.NotificationURL
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal preference payload: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/checkout/preferences",
		bytes.NewReader(body),
	)
	if err != nil {
		return nil, fmt.Errorf("build preference request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("create preference: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		responseBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("create preference: status %d: %s", resp.StatusCode, strings.TrimSpace(string(responseBody)))
	}

	var preference Preference
	if err := json.NewDecoder(resp.Body).Decode(&preference); err != nil {
		return nil, fmt.Errorf("decode preference response: %w", err)
	}

	return &preference, nil
}

func (s *MercadoPagoService) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		s.baseURL+"/v1/payments/"+paymentID,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("build payment request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.accessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		responseBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("get payment: status %d: %s", resp.StatusCode, strings.TrimSpace(string(responseBody)))
	}

	var payment Payment
	if err := json.NewDecoder(resp.Body).Decode(&payment); err != nil {
		return nil, fmt.Errorf("decode payment response: %w", err)
	}

	return &payment, nil
}
