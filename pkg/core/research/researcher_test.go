package research

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"sdr_agent/pkg/core/llm"
	"sdr_agent/pkg/models"
)

func TestResearchCompanyWithProvider(t *testing.T) {
	provider := &llm.StaticProvider{Responses: []string{
		`{"industry": "Cloud Infrastructure", "employee_count": 250, "location": "Austin, TX", "description": "Cloud cost optimization platform."}`,
	}}
	r := NewCompanyResearcher(provider)

	company, err := r.ResearchCompany(context.Background(), "CloudScale", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if company.Industry != "Cloud Infrastructure" {
		t.Errorf("industry = %q, want Cloud Infrastructure", company.Industry)
	}
	if company.EmployeeCount != 250 {
		t.Errorf("employee_count = %d, want 250", company.EmployeeCount)
	}
}

func TestResearchCompanyPlaceholderWithoutProvider(t *testing.T) {
	r := NewCompanyResearcher(nil)
	company, err := r.ResearchCompany(context.Background(), "CloudScale", "cloudscale.io")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if company.Name != "CloudScale" || company.Website != "cloudscale.io" {
		t.Errorf("placeholder company mangled: %+v", company)
	}
	if len(company.TriggerEvents) != 0 || len(company.NewsItems) != 0 {
		t.Error("placeholder company must have empty trigger/news lists")
	}
}

func TestResearchCompanySurvivesGenerationFailure(t *testing.T) {
	provider := &llm.StaticProvider{Err: fmt.Errorf("rate limited")}
	r := NewCompanyResearcher(provider)

	company, err := r.ResearchCompany(context.Background(), "CloudScale", "")
	if err != nil {
		t.Fatalf("research must not fail on generation error, got: %v", err)
	}
	if company.Name != "CloudScale" {
		t.Errorf("company name = %q, want CloudScale", company.Name)
	}
}

func TestScrapeHomepage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprint(w, `<html><head><title>CloudScale</title><meta name="description" content="Cut your cloud bill in half."></head><body></body></html>`)
	}))
	defer srv.Close()

	r := NewCompanyResearcher(nil)
	r.SetHTTPClient(srv.Client())

	company, err := r.ResearchCompany(context.Background(), "CloudScale", srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if company.Description != "Cut your cloud bill in half." {
		t.Errorf("description = %q, want meta description", company.Description)
	}
}

func TestIdentifyTriggerEvents(t *testing.T) {
	provider := &llm.StaticProvider{Responses: []string{
		`{"trigger_events": ["Raised $40M Series B", "Opened London office"]}`,
	}}
	r := NewCompanyResearcher(provider)

	events, err := r.IdentifyTriggerEvents(context.Background(), companyFixture())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0] != "Raised $40M Series B" {
		t.Errorf("events[0] = %q", events[0])
	}
}

func TestGatherNewsParseFailure(t *testing.T) {
	provider := &llm.StaticProvider{Responses: []string{"no json here, just vibes"}}
	r := NewCompanyResearcher(provider)

	if _, err := r.GatherNews(context.Background(), companyFixture()); err == nil {
		t.Error("expected parse error for non-JSON output")
	}
}

func companyFixture() *models.Company {
	return &models.Company{
		Name:        "CloudScale",
		Industry:    "Cloud Infrastructure",
		Description: "Cloud cost optimization platform.",
	}
}
