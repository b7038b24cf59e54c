package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Notifications older than this are rejected even when the digest matches.
const webhookFreshnessWindow = 300 * time.Second

// WebhookValidation is the fail-closed outcome of signature verification.
// The webhook route always answers HTTP 200; this struct decides whether the
// notification is actually processed.
type WebhookValidation struct {
	IsValid bool
	Reason  string
}

type WebhookSignatureInput struct {
	SignatureHeader string
	RequestID       string
	DataID          string
}

// ValidateWebhookSignature checks that a payment notification was signed by
// Mercado Pago. The signed manifest is `id:<data.id>;request-id:<x-request-id>;ts:<ts>;`
// and the digest arrives in the x-signature header as `ts=<unix>,v1=<hex>`.
func ValidateWebhookSignature(input WebhookSignatureInput, secret string, now time.Time) WebhookValidation {
	if secret == "" {
		return invalidSignature("Webhook secret no configurado")
	}
	if input.SignatureHeader == "" {
		return invalidSignature("Falta el header x-signature")
	}
	if input.RequestID == "" {
		return invalidSignature("Falta el header x-request-id")
	}
	if input.DataID == "" {
		return invalidSignature("Falta data.id en el cuerpo del webhook")
	}

	ts, v1, ok := parseSignatureHeader(input.SignatureHeader)
	if !ok {
		return invalidSignature("Header x-signature mal formado")
	}

	tsSeconds, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return invalidSignature("Header x-signature mal formado")
	}
	if now.UTC().Sub(time.Unix(tsSeconds, 0).UTC()) > webhookFreshnessWindow {
		return invalidSignature("Firma expirada")
	}

	manifest := fmt.Sprintf("id:%s;request-id:%s;ts:%s;", input.DataID, input.RequestID, ts)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(manifest))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(v1))) {
		return invalidSignature("Firma HMAC inválida: el webhook no proviene de Mercado Pago")
	}

	return WebhookValidation{IsValid: true}
}

func parseSignatureHeader(header string) (ts string, v1 string, ok bool) {
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch strings.TrimSpace(key) {
		case "ts":
			ts = strings.TrimSpace(value)
		case "v1":
			v1 = strings.TrimSpace(value)
		}
	}
	if ts == "" || v1 == "" {
		return "", "", false
	}
	return ts, v1, true
}

func invalidSignature(reason string) WebhookValidation {
	return WebhookValidation{IsValid: false, Reason: reason}
}
