package models

import (
	"errors"
	"testing"
)

func TestNewContactEmailValidation(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"valid address", "sarah@cloudscale.io", false},
		{"empty email allowed", "", false},
		{"plain string", "not-an-email", true},
		{"missing domain", "sarah@", true},
		{"display name form rejected", "Sarah Chen <sarah@cloudscale.io>", true},
		{"spaces", "sarah chen@cloudscale.io", true},
		{"subdomain", "vp.sales@mail.cloudscale.io", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, err := NewContact("Sarah", "Chen", tc.email, "VP Engineering", "CloudScale")
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected validation error for %q, got contact %+v", tc.email, c)
				}
				var vErr *ValidationError
				if !errors.As(err, &vErr) {
					t.Errorf("expected *ValidationError, got %T", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error for %q: %v", tc.email, err)
			}
			if c.Email != tc.email {
				t.Errorf("email did not round-trip: stored %q, want %q", c.Email, tc.email)
			}
		})
	}
}

func TestNewIdealCustomerProfileSizeRange(t *testing.T) {
	tests := []struct {
		name     string
		min, max int
		wantErr  bool
	}{
		{"valid range", 50, 500, false},
		{"equal bounds", 100, 100, false},
		{"min only", 50, 0, false},
		{"max only", 0, 500, false},
		{"inverted range", 500, 50, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewIdealCustomerProfile("SaaS", tc.min, tc.max, []string{"CTO"})
			if tc.wantErr && err == nil {
				t.Errorf("expected error for min=%d max=%d", tc.min, tc.max)
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestNewIdealCustomerProfileRequiresIndustry(t *testing.T) {
	if _, err := NewIdealCustomerProfile("", 0, 0, nil); err == nil {
		t.Error("expected error for empty industry")
	}
}

func TestContactFullName(t *testing.T) {
	c := &Contact{FirstName: "Sarah", LastName: "Chen"}
	if got := c.FullName(); got != "Sarah Chen" {
		t.Errorf("FullName() = %q, want %q", got, "Sarah Chen")
	}
	solo := &Contact{FirstName: "Madonna"}
	if got := solo.FullName(); got != "Madonna" {
		t.Errorf("FullName() = %q, want %q", got, "Madonna")
	}
}

func TestNewCRMActivityStampsIDAndTime(t *testing.T) {
	a := NewCRMActivity(ActivityEmailSent, "sarah@cloudscale.io", "Intro", "Sent cold email")
	if a.ID == "" {
		t.Error("expected non-empty activity ID")
	}
	if a.Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}
	if a.ActivityType != ActivityEmailSent {
		t.Errorf("activity type = %q, want %q", a.ActivityType, ActivityEmailSent)
	}
}
