package services

import "testing"

func TestPurchaseStatusForPayment(t *testing.T) {
	cases := map[string]string{
		"approved":     "completed",
		"rejected":     "failed",
		"cancelled":    "failed",
		"refunded":     "failed",
		"charged_back": "failed",
		"pending":      "",
		"in_process":   "",
		"":             "",
	}

	for paymentStatus, want := range cases {
		if got := purchaseStatusForPayment(paymentStatus); got != want {
			t.Fatalf("purchaseStatusForPayment(%q) = %q, want %q", paymentStatus, got, want)
		}
	}
}
