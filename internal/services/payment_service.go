package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/servicioshogar/ServiciosHogarBack/internal/models"
	"github.com/servicioshogar/ServiciosHogarBack/internal/repository"
)

var ErrUnknownPackage = errors.New("unknown package")

type PaymentService struct {
	db            *pgxpool.Pool
	purchaseRepo  *repository.PurchaseRepository
	gateway       PaymentGateway
	webhookSecret string
}

func NewPaymentService(
	db *pgxpool.Pool,
	purchaseRepo *repository.PurchaseRepository,
	gateway PaymentGateway,
	webhookSecret string,
) *PaymentService {
	return &PaymentService{
		db:            db,
		purchaseRepo:  purchaseRepo,
		gateway:       gateway,
		webhookSecret: webhookSecret,
	}
}

type PurchaseCheckout struct {
	Purchase  *models.CreditPurchase
	InitPoint string
}

// CreatePurchase registers a pending purchase and opens a Mercado Pago
// checkout preference for it. The generated external reference is what ties
// the eventual webhook back to this purchase.
func (s *PaymentService) CreatePurchase(
	ctx context.Context,
	actorID int64,
	role string,
	packageID string,
) (*PurchaseCheckout, error) {
	if role != "provider" {
		return nil, ErrForbidden
	}

	pkg, ok := PackageByID(packageID)
	if !ok {
		return nil, ErrUnknownPackage
	}

	externalReference := uuid.NewString()
	purchase, err := s.purchaseRepo.Create(ctx, repository.CreatePurchaseInput{
		ProviderID:        actorID,
		PackageID:         pkg.ID,
		Credits:           pkg.Credits,
		Amount:            pkg.PriceARS,
		ExternalReference: externalReference,
	})
	if err != nil {
		return nil, err
	}

	preference, err := s.gateway.CreatePreference(ctx, PreferenceInput{
		Title:             fmt.Sprintf("%s (%d créditos)", pkg.Name, pkg.Credits),
		Quantity:          1,
		UnitPrice:         pkg.PriceARS,
		ExternalReference: externalReference,
	})
	if err != nil {
		return nil, err
	}

	return &PurchaseCheckout{Purchase: purchase, InitPoint: preference.InitPoint}, nil
}

func (s *PaymentService) ListPurchases(ctx context.Context, actorID int64, role string) ([]models.CreditPurchase, error) {
	if role != "provider" {
		return nil, ErrForbidden
	}
	return s.purchaseRepo.ListByProviderID(ctx, actorID)
}

type WebhookNotification struct {
	SignatureHeader string
	RequestID       string
	EventType       string
	DataID          string
}

// WebhookResult mirrors what the webhook route reports back to the provider.
// Received is always true; the route answers HTTP 200 no matter what so
// Mercado Pago stops retrying.
type WebhookResult struct {
	Received  bool   `json:"received"`
	Processed bool   `json:"processed"`
	Reason    string `json:"reason,omitempty"`
}

// ProcessWebhook verifies the notification signature, looks up the payment,
// and on approval credits the purchase. The audit insert, the purchase status
// flip and the balance upsert share one transaction; the unique payment id on
// webhook_events makes redelivery a no-op instead of a double credit.
func (s *PaymentService) ProcessWebhook(ctx context.Context, notification WebhookNotification) WebhookResult {
	validation := ValidateWebhookSignature(WebhookSignatureInput{
		SignatureHeader: notification.SignatureHeader,
		RequestID:       notification.RequestID,
		DataID:          notification.DataID,
	}, s.webhookSecret, time.Now())
	if !validation.IsValid {
		return WebhookResult{Received: true, Processed: false, Reason: validation.Reason}
	}

	if notification.EventType != "payment" {
		return WebhookResult{Received: true, Processed: false, Reason: "Tipo de evento ignorado"}
	}

	payment, err := s.gateway.GetPayment(ctx, notification.DataID)
	if err != nil {
		return WebhookResult{Received: true, Processed: false, Reason: "No se pudo consultar el pago"}
	}
	nextStatus := purchaseStatusForPayment(payment.Status)
	if nextStatus == "" {
		return WebhookResult{Received: true, Processed: false, Reason: "Estado de pago ignorado: " + payment.Status}
	}
	if payment.ExternalReference == "" {
		return WebhookResult{Received: true, Processed: false, Reason: "Pago sin referencia externa"}
	}

	paymentID := strconv.FormatInt(payment.ID, 10)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return WebhookResult{Received: true, Processed: false, Reason: "Error interno"}
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txWebhookRepo := repository.NewWebhookEventRepository(tx)
	txPurchaseRepo := repository.NewPurchaseRepository(tx)
	txCreditsRepo := repository.NewCreditsRepository(tx)

	if _, err := txWebhookRepo.Insert(ctx, paymentID, notification.RequestID, notification.EventType); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return WebhookResult{Received: true, Processed: false, Reason: "Pago ya procesado"}
		}
		return WebhookResult{Received: true, Processed: false, Reason: "Error interno"}
	}

	purchase, err := txPurchaseRepo.GetByExternalReferenceForUpdate(ctx, payment.ExternalReference)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return WebhookResult{Received: true, Processed: false, Reason: "Compra no encontrada"}
		}
		return WebhookResult{Received: true, Processed: false, Reason: "Error interno"}
	}
	if purchase.Status != "pending" {
		return WebhookResult{Received: true, Processed: false, Reason: "Compra ya procesada"}
	}

	if _, err := txPurchaseRepo.UpdateStatusIfCurrent(ctx, purchase.ID, "pending", nextStatus); err != nil {
		return WebhookResult{Received: true, Processed: false, Reason: "Error interno"}
	}
	if err := txPurchaseRepo.SetPaymentID(ctx, purchase.ID, paymentID); err != nil {
		return WebhookResult{Received: true, Processed: false, Reason: "Error interno"}
	}
	if nextStatus == "completed" {
		if _, err := txCreditsRepo.Add(ctx, purchase.ProviderID, purchase.Credits); err != nil {
			return WebhookResult{Received: true, Processed: false, Reason: "Error interno"}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return WebhookResult{Received: true, Processed: false, Reason: "Error interno"}
	}

	if nextStatus == "failed" {
		return WebhookResult{Received: true, Processed: true, Reason: "Pago no aprobado, compra marcada como fallida"}
	}
	return WebhookResult{Received: true, Processed: true}
}

// purchaseStatusForPayment maps a Mercado Pago payment status to the purchase
// status it settles. Empty means the notification carries no final outcome
// yet and should be left for a later delivery.
func purchaseStatusForPayment(paymentStatus string) string {
	switch paymentStatus {
	case "approved":
		return "completed"
	case "rejected", "cancelled", "refunded", "charged_back":
		return "failed"
	default:
		return ""
	}
}
