package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"testing"
	"time"
)

func signManifest(t *testing.T, secret, dataID, requestID string, ts int64) string {
	t.Helper()
	manifest := fmt.Sprintf("id:%s;request-id:%s;ts:%d;", dataID, requestID, ts)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(manifest))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestValidateWebhookSignatureAcceptsValidSignature(t *testing.T) {
	secret := "mp-secret"
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	ts := now.Unix() - 30
	digest := signManifest(t, secret, "12345", "req-abc", ts)

	result := ValidateWebhookSignature(WebhookSignatureInput{
		SignatureHeader: fmt.Sprintf("ts=%d,v1=%s", ts, digest),
		RequestID:       "req-abc",
		DataID:          "12345",
	}, secret, now)

	if !result.IsValid {
		t.Fatalf("expected valid signature, got reason %q", result.Reason)
	}
}

func TestValidateWebhookSignatureRejectsTamperedDigest(t *testing.T) {
	secret := "mp-secret"
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	ts := now.Unix() - 30
	digest := signManifest(t, secret, "12345", "req-abc", ts)

	// Flip a single hex character.
	flipped := []byte(digest)
	if flipped[0] == 'a' {
		flipped[0] = 'b'
	} else {
		flipped[0] = 'a'
	}

	result := ValidateWebhookSignature(WebhookSignatureInput{
		SignatureHeader: fmt.Sprintf("ts=%d,v1=%s", ts, string(flipped)),
		RequestID:       "req-abc",
		DataID:          "12345",
	}, secret, now)

	if result.IsValid {
		t.Fatal("expected tampered digest to be rejected")
	}
	if result.Reason != "Firma HMAC inválida: el webhook no proviene de Mercado Pago" {
		t.Fatalf("unexpected reason: %q", result.Reason)
	}
}

func TestValidateWebhookSignatureRejectsTamperedDataID(t *testing.T) {
	secret := "mp-secret"
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	ts := now.Unix() - 30
	digest := signManifest(t, secret, "12345", "req-abc", ts)

	result := ValidateWebhookSignature(WebhookSignatureInput{
		SignatureHeader: fmt.Sprintf("ts=%d,v1=%s", ts, digest),
		RequestID:       "req-abc",
		DataID:          "12346",
	}, secret, now)

	if result.IsValid {
		t.Fatal("expected mismatched data id to be rejected")
	}
}

func TestValidateWebhookSignatureRejectsExpiredTimestamp(t *testing.T) {
	secret := "mp-secret"
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	ts := now.Unix() - 301
	digest := signManifest(t, secret, "12345", "req-abc", ts)

	result := ValidateWebhookSignature(WebhookSignatureInput{
		SignatureHeader: fmt.Sprintf("ts=%d,v1=%s", ts, digest),
		RequestID:       "req-abc",
		DataID:          "12345",
	}, secret, now)

	if result.IsValid {
		t.Fatal("expected expired signature to be rejected")
	}
	if result.Reason != "Firma expirada" {
		t.Fatalf("unexpected reason: %q", result.Reason)
	}
}

func TestValidateWebhookSignatureAcceptsBoundaryTimestamp(t *testing.T) {
	secret := "mp-secret"
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	ts := now.Unix() - 300
	digest := signManifest(t, secret, "12345", "req-abc", ts)

	result := ValidateWebhookSignature(WebhookSignatureInput{
		SignatureHeader: "ts=" + strconv.FormatInt(ts, 10) + ",v1=" + digest,
		RequestID:       "req-abc",
		DataID:          "12345",
	}, secret, now)

	if !result.IsValid {
		t.Fatalf("expected signature exactly at the freshness window to pass, got %q", result.Reason)
	}
}

func TestValidateWebhookSignatureFailsClosed(t *testing.T) {
	secret := "mp-secret"
	now := time.Now()
	ts := now.Unix()
	digest := signManifest(t, secret, "12345", "req-abc", ts)
	validHeader := fmt.Sprintf("ts=%d,v1=%s", ts, digest)

	cases := []struct {
		name  string
		input WebhookSignatureInput
		key   string
	}{
		{"missing header", WebhookSignatureInput{RequestID: "req-abc", DataID: "12345"}, secret},
		{"missing request id", WebhookSignatureInput{SignatureHeader: validHeader, DataID: "12345"}, secret},
		{"missing data id", WebhookSignatureInput{SignatureHeader: validHeader, RequestID: "req-abc"}, secret},
		{"unparseable header", WebhookSignatureInput{SignatureHeader: "not-a-signature", RequestID: "req-abc", DataID: "12345"}, secret},
		{"non-numeric ts", WebhookSignatureInput{SignatureHeader: "ts=abc,v1=" + digest, RequestID: "req-abc", DataID: "12345"}, secret},
		{"unconfigured secret", WebhookSignatureInput{SignatureHeader: validHeader, RequestID: "req-abc", DataID: "12345"}, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := ValidateWebhookSignature(tc.input, tc.key, now)
			if result.IsValid {
				t.Fatal("expected validation to fail closed")
			}
			if result.Reason == "" {
				t.Fatal("expected a reason for the failure")
			}
		})
	}
}
