package integrations

import (
	"strings"
	"testing"
)

func TestSanitizeSOQLIdempotent(t *testing.T) {
	inputs := []string{
		"sarah@cloudscale.io",
		"Robert'); DROP TABLE Leads;--",
		`back\slash`,
		`quoted "value" here`,
		"plain text",
		"",
	}
	for _, in := range inputs {
		once := SanitizeSOQL(in)
		twice := SanitizeSOQL(once)
		if once != twice {
			t.Errorf("sanitize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestSanitizeSOQLRemovesInjectionCharacters(t *testing.T) {
	inputs := []string{
		"evil'; DELETE FROM Lead; --",
		`a\'b`,
		`"; DROP`,
		"semi;colon",
	}
	for _, in := range inputs {
		out := SanitizeSOQL(in)
		for _, forbidden := range []string{"'", ";", `\`, `"`} {
			if strings.Contains(out, forbidden) {
				t.Errorf("sanitized output %q still contains %q", out, forbidden)
			}
		}
	}
}

func TestSanitizeEmailForQuery(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		want    string
		wantErr bool
	}{
		{"clean address", "sarah@cloudscale.io", "sarah@cloudscale.io", false},
		{"injection attempt", "x' OR Email != '@a.com", "", true},
		{"quotes stripped to valid address", `"sarah"@cloudscale.io`, "sarah@cloudscale.io", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := SanitizeEmailForQuery(tc.email)
			if tc.wantErr {
				if err == nil {
					t.Errorf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}
