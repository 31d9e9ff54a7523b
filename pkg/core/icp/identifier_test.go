package icp

import (
	"context"
	"fmt"
	"testing"

	"sdr_agent/pkg/core/llm"
	"sdr_agent/pkg/models"
)

func testProfile(t *testing.T) *models.IdealCustomerProfile {
	t.Helper()
	profile, err := models.NewIdealCustomerProfile("Cloud Infrastructure", 50, 500, []string{"CTO", "VP Engineering"})
	if err != nil {
		t.Fatalf("fixture profile: %v", err)
	}
	return profile
}

func testCompany() *models.Company {
	return &models.Company{
		Name:          "CloudScale",
		Industry:      "Cloud Infrastructure",
		EmployeeCount: 250,
		Location:      "Austin, TX",
		Description:   "Cloud cost optimization built on Kubernetes.",
	}
}

func TestScoreFitRange(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"json score", `{"fit_score": 85, "reasoning": "strong industry match"}`},
		{"over range json", `{"fit_score": 400, "reasoning": "overflow"}`},
		{"negative json", `{"fit_score": -20, "reasoning": "underflow"}`},
		{"prose with integer", "I would rate this company 73 out of 100."},
		{"no usable content", "excellent fit, no numbers though"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			id := NewIdentifier(&llm.StaticProvider{Responses: []string{tc.response}})
			score, _ := id.ScoreFit(context.Background(), testCompany(), testProfile(t))
			if score < 0 || score > 100 {
				t.Errorf("score %d outside [0,100]", score)
			}
		})
	}
}

func TestScoreFitParsesJSON(t *testing.T) {
	id := NewIdentifier(&llm.StaticProvider{Responses: []string{
		`{"fit_score": 85, "reasoning": "strong industry match"}`,
	}})
	score, reasoning := id.ScoreFit(context.Background(), testCompany(), testProfile(t))
	if score != 85 {
		t.Errorf("score = %d, want 85", score)
	}
	if reasoning != "strong industry match" {
		t.Errorf("reasoning = %q", reasoning)
	}
}

func TestScoreFitFirstIntegerFallback(t *testing.T) {
	id := NewIdentifier(&llm.StaticProvider{Responses: []string{
		"Fit is strong. Score: 73. Size and industry both align.",
	}})
	score, _ := id.ScoreFit(context.Background(), testCompany(), testProfile(t))
	if score != 73 {
		t.Errorf("score = %d, want 73 from first-integer fallback", score)
	}
}

func TestScoreFitGenerationFailureUsesRule(t *testing.T) {
	id := NewIdentifier(&llm.StaticProvider{Err: fmt.Errorf("api down")})
	score, _ := id.ScoreFit(context.Background(), testCompany(), testProfile(t))
	want := RuleScore(testCompany(), testProfile(t))
	if score != want {
		t.Errorf("score = %d, want rule score %d", score, want)
	}
}

func TestRuleScore(t *testing.T) {
	profile := testProfile(t)
	profile.Geography = "Austin"
	profile.Technologies = []string{"Kubernetes"}

	tests := []struct {
		name    string
		company *models.Company
		want    int
	}{
		{"full match", testCompany(), 100},
		{"industry only", &models.Company{Name: "X", Industry: "Cloud Infrastructure"}, 50},
		{"size only", &models.Company{Name: "X", Industry: "Retail", EmployeeCount: 100}, 30},
		{"no match", &models.Company{Name: "X", Industry: "Retail", EmployeeCount: 5000}, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := RuleScore(tc.company, profile); got != tc.want {
				t.Errorf("RuleScore = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestIdentifyContactsFiltersByTitle(t *testing.T) {
	id := NewIdentifier(&llm.StaticProvider{Responses: []string{
		`{"contacts": [
			{"first_name": "Sarah", "last_name": "Chen", "job_title": "VP Engineering"},
			{"first_name": "Raj", "last_name": "Patel", "job_title": "CTO"},
			{"first_name": "Ana", "last_name": "Silva", "job_title": "Office Manager"}
		]}`,
	}})

	contacts, err := id.IdentifyContacts(context.Background(), testCompany(), []string{"CTO", "VP Engineering"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(contacts) != 2 {
		t.Fatalf("got %d contacts, want 2 (office manager filtered out)", len(contacts))
	}
	for _, c := range contacts {
		if c.Company != "CloudScale" {
			t.Errorf("contact %s has company %q, want CloudScale", c.FullName(), c.Company)
		}
	}
}

func TestIdentifyContactsDropsBadEmailNotContact(t *testing.T) {
	id := NewIdentifier(&llm.StaticProvider{Responses: []string{
		`{"contacts": [{"first_name": "Sarah", "last_name": "Chen", "job_title": "CTO", "email": "not-an-email"}]}`,
	}})

	contacts, err := id.IdentifyContacts(context.Background(), testCompany(), []string{"CTO"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(contacts) != 1 {
		t.Fatalf("got %d contacts, want 1", len(contacts))
	}
	if contacts[0].Email != "" {
		t.Errorf("invalid email should be dropped, got %q", contacts[0].Email)
	}
}

func TestIdentifyContactsNoProvider(t *testing.T) {
	id := NewIdentifier(nil)
	contacts, err := id.IdentifyContacts(context.Background(), testCompany(), []string{"CTO"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if contacts != nil {
		t.Errorf("expected nil contacts without a provider, got %v", contacts)
	}
}
