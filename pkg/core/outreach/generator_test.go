package outreach

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"sdr_agent/pkg/core/llm"
	"sdr_agent/pkg/models"
)

func fixtures(t *testing.T) (*models.Contact, *models.Company) {
	t.Helper()
	contact, err := models.NewContact("Sarah", "Chen", "sarah@cloudscale.io", "VP Engineering", "CloudScale")
	if err != nil {
		t.Fatalf("fixture contact: %v", err)
	}
	company := &models.Company{
		Name:        "CloudScale",
		Industry:    "Cloud Infrastructure",
		Description: "Cloud cost optimization platform.",
	}
	return contact, company
}

func TestGenerateColdEmailFromJSON(t *testing.T) {
	provider := &llm.StaticProvider{Responses: []string{
		`{"subject": "Congrats on the Series B", "body": "Hi Sarah,\n\nSaw the funding news..."}`,
	}}
	g := NewGenerator(provider, "Alex Doe", "Acme")
	contact, company := fixtures(t)

	msg, err := g.GenerateColdEmail(context.Background(), contact, company, "We cut cloud spend by 40%", []string{"Raised $40M Series B"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Channel != models.ChannelEmail {
		t.Errorf("channel = %q, want email", msg.Channel)
	}
	if msg.Subject != "Congrats on the Series B" {
		t.Errorf("subject = %q", msg.Subject)
	}
	if msg.Body == "" || msg.GeneratedAt.IsZero() {
		t.Error("expected populated body and timestamp")
	}
}

func TestGenerateColdEmailPlainTextFallback(t *testing.T) {
	provider := &llm.StaticProvider{Responses: []string{
		"Subject: Quick question about cloud costs\nHi Sarah,\n\nNoticed CloudScale is growing fast...",
	}}
	g := NewGenerator(provider, "Alex Doe", "Acme")
	contact, company := fixtures(t)

	msg, err := g.GenerateColdEmail(context.Background(), contact, company, "We cut cloud spend by 40%", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Subject != "Quick question about cloud costs" {
		t.Errorf("subject = %q, want first line", msg.Subject)
	}
	if msg.Body == "" {
		t.Error("expected body from remaining lines")
	}
}

func TestGenerateLinkedInMessageHasNoSubject(t *testing.T) {
	provider := &llm.StaticProvider{Responses: []string{
		`{"subject": "Connecting", "body": "Hi Sarah, impressed by CloudScale's growth."}`,
	}}
	g := NewGenerator(provider, "Alex Doe", "Acme")
	contact, company := fixtures(t)

	msg, err := g.GenerateLinkedInMessage(context.Background(), contact, company, "We cut cloud spend by 40%")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Channel != models.ChannelLinkedIn {
		t.Errorf("channel = %q, want linkedin", msg.Channel)
	}
	if msg.Subject != "" {
		t.Errorf("linkedin message carries subject %q, want none", msg.Subject)
	}
}

func TestGenerateFollowUpChannel(t *testing.T) {
	provider := &llm.StaticProvider{Responses: []string{
		`{"subject": "Following up", "body": "Hi Sarah, circling back on my last note."}`,
	}}
	g := NewGenerator(provider, "Alex Doe", "Acme")
	contact, _ := fixtures(t)

	msg, err := g.GenerateFollowUp(context.Background(), contact, "previous email body", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Channel != models.ChannelFollowUp {
		t.Errorf("channel = %q, want follow_up", msg.Channel)
	}
}

func TestGenerationErrorCarriesPrompt(t *testing.T) {
	provider := &llm.StaticProvider{Err: fmt.Errorf("rate limited")}
	g := NewGenerator(provider, "Alex Doe", "Acme")
	contact, company := fixtures(t)

	_, err := g.GenerateColdEmail(context.Background(), contact, company, "value prop", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected *GenerationError, got %T", err)
	}
	if genErr.Prompt == "" {
		t.Error("GenerationError should carry the prompt")
	}
	if !errors.Is(err, genErr.Err) {
		t.Error("GenerationError should unwrap to the cause")
	}
}

func TestGenerateWithoutProvider(t *testing.T) {
	g := NewGenerator(nil, "Alex Doe", "Acme")
	contact, company := fixtures(t)

	_, err := g.GenerateColdEmail(context.Background(), contact, company, "value prop", nil)
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected *GenerationError without provider, got %v", err)
	}
}

func TestColdEmailBodyStripsCodeFence(t *testing.T) {
	provider := &llm.StaticProvider{Responses: []string{
		`{"subject": "Hello", "body": "` + "```" + `\nHi Sarah\n` + "```" + `"}`,
	}}
	g := NewGenerator(provider, "Alex Doe", "Acme")
	contact, company := fixtures(t)

	msg, err := g.GenerateColdEmail(context.Background(), contact, company, "value prop", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Body != "Hi Sarah" {
		t.Errorf("body = %q, want fences stripped", msg.Body)
	}
}
