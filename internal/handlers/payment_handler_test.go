package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/servicioshogar/ServiciosHogarBack/internal/services"
)

func newWebhookApp(secret string) *fiber.App {
	service := services.NewPaymentService(nil, nil, nil, secret)
	handler := NewPaymentHandler(service)

	app := fiber.New()
	app.Post("/api/payments/mp/webhook", handler.Webhook)
	return app
}

func postWebhook(t *testing.T, app *fiber.App, body string, headers map[string]string) (*http.Response, services.WebhookResult) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/payments/mp/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}

	var result services.WebhookResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	resp.Body.Close()
	return resp, result
}

func TestWebhookReturns200OnInvalidSignature(t *testing.T) {
	app := newWebhookApp("mp-secret")

	resp, result := postWebhook(t, app,
		`{"type":"payment","data":{"id":"12345"}}`,
		map[string]string{
			"x-signature":  fmt.Sprintf("ts=%d,v1=deadbeef", time.Now().Unix()),
			"x-request-id": "req-abc",
		})

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("webhook must always answer 200, got %d", resp.StatusCode)
	}
	if !result.Received || result.Processed {
		t.Fatalf("expected received but unprocessed, got %+v", result)
	}
	if !strings.HasPrefix(result.Reason, "Firma HMAC inválida") {
		t.Fatalf("unexpected reason: %q", result.Reason)
	}
}

func TestWebhookReturns200OnMissingHeaders(t *testing.T) {
	app := newWebhookApp("mp-secret")

	resp, result := postWebhook(t, app, `{"type":"payment","data":{"id":"12345"}}`, nil)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("webhook must always answer 200, got %d", resp.StatusCode)
	}
	if result.Processed {
		t.Fatalf("expected unprocessed result, got %+v", result)
	}
	if result.Reason == "" {
		t.Fatal("expected a rejection reason")
	}
}

func TestWebhookIgnoresNonPaymentEvents(t *testing.T) {
	secret := "mp-secret"
	app := newWebhookApp(secret)

	ts := time.Now().Unix()
	manifest := fmt.Sprintf("id:%s;request-id:%s;ts:%d;", "12345", "req-abc", ts)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(manifest))
	digest := hex.EncodeToString(mac.Sum(nil))

	resp, result := postWebhook(t, app,
		`{"type":"plan","data":{"id":"12345"}}`,
		map[string]string{
			"x-signature":  fmt.Sprintf("ts=%d,v1=%s", ts, digest),
			"x-request-id": "req-abc",
		})

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("webhook must always answer 200, got %d", resp.StatusCode)
	}
	if result.Processed {
		t.Fatalf("expected non-payment event to be skipped, got %+v", result)
	}
	if result.Reason != "Tipo de evento ignorado" {
		t.Fatalf("unexpected reason: %q", result.Reason)
	}
}

func TestWebhookReturns200OnMalformedBody(t *testing.T) {
	app := newWebhookApp("mp-secret")

	resp, result := postWebhook(t, app, `{not json`, nil)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("webhook must always answer 200, got %d", resp.StatusCode)
	}
	if result.Processed {
		t.Fatalf("expected unprocessed result, got %+v", result)
	}
}

func TestCreatePurchaseRejectsCustomerRole(t *testing.T) {
	service := services.NewPaymentService(nil, nil, nil, "mp-secret")
	handler := NewPaymentHandler(service)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("role", "customer")
		c.Locals("user_id", "42")
		return c.Next()
	})
	app.Post("/api/v1/payments/mp/create", handler.CreatePurchase)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/mp/create",
		strings.NewReader(`{"package_id":"starter"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}
