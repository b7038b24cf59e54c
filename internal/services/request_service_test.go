package services

import (
	"errors"
	"testing"
	"time"

	"github.com/servicioshogar/ServiciosHogarBack/internal/models"
)

func TestNormalizeRequestedStatus(t *testing.T) {
	cases := map[string]string{
		"accept":      "accepted",
		"Accepted":    "accepted",
		"complete":    "completed",
		"COMPLETED":   "completed",
		"cancel":      "cancelled",
		"canceled":    "cancelled",
		" cancelled ": "cancelled",
	}
	for input, want := range cases {
		got, err := normalizeRequestedStatus(input)
		if err != nil {
			t.Fatalf("normalizeRequestedStatus(%q): %v", input, err)
		}
		if got != want {
			t.Fatalf("normalizeRequestedStatus(%q) = %q, want %q", input, got, want)
		}
	}

	if _, err := normalizeRequestedStatus("archived"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestValidateStatusTransitionProvider(t *testing.T) {
	past := time.Now().Add(-2 * time.Hour)
	future := time.Now().Add(2 * time.Hour)

	cases := []struct {
		name    string
		request models.ServiceRequest
		next    string
		wantErr error
	}{
		{"accept pending", models.ServiceRequest{ProviderID: 7, Status: "pending"}, "accepted", nil},
		{"accept accepted", models.ServiceRequest{ProviderID: 7, Status: "accepted"}, "accepted", ErrInvalidStateTransition},
		{"complete accepted past", models.ServiceRequest{ProviderID: 7, Status: "accepted", ScheduledAt: past}, "completed", nil},
		{"complete accepted future", models.ServiceRequest{ProviderID: 7, Status: "accepted", ScheduledAt: future}, "completed", ErrInvalidStateTransition},
		{"complete pending", models.ServiceRequest{ProviderID: 7, Status: "pending", ScheduledAt: past}, "completed", ErrInvalidStateTransition},
		{"cancel pending", models.ServiceRequest{ProviderID: 7, Status: "pending"}, "cancelled", nil},
		{"cancel completed", models.ServiceRequest{ProviderID: 7, Status: "completed"}, "cancelled", ErrInvalidStateTransition},
		{"not the provider", models.ServiceRequest{ProviderID: 9, Status: "pending"}, "accepted", ErrForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateStatusTransition("provider", 7, &tc.request, tc.next)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestValidateStatusTransitionCustomer(t *testing.T) {
	request := models.ServiceRequest{CustomerID: 42, ProviderID: 7, Status: "pending"}

	if err := validateStatusTransition("customer", 42, &request, "cancelled"); err != nil {
		t.Fatalf("customer cancel pending: %v", err)
	}
	if err := validateStatusTransition("customer", 42, &request, "accepted"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("customers cannot accept: got %v", err)
	}

	done := models.ServiceRequest{CustomerID: 42, Status: "completed"}
	if err := validateStatusTransition("customer", 42, &done, "cancelled"); !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("cancel after completion: got %v", err)
	}

	if err := validateStatusTransition("customer", 99, &request, "cancelled"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("other customers are forbidden: got %v", err)
	}
}

func TestCanAccessRequest(t *testing.T) {
	request := &models.ServiceRequest{CustomerID: 42, ProviderID: 7}

	if !canAccessRequest("customer", 42, request) {
		t.Fatal("owning customer must access the request")
	}
	if !canAccessRequest("provider", 7, request) {
		t.Fatal("assigned provider must access the request")
	}
	if canAccessRequest("customer", 7, request) {
		t.Fatal("provider id must not pass as customer")
	}
	if canAccessRequest("admin", 42, request) {
		t.Fatal("unknown roles must be rejected")
	}
}
