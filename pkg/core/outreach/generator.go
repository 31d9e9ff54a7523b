package outreach

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sdr_agent/pkg/core/llm"
	"sdr_agent/pkg/core/utils"
	"sdr_agent/pkg/models"
)

// GenerationError surfaces a failed or unusable text-generation call,
// carrying the prompt so callers can retry or skip the contact.
type GenerationError struct {
	Prompt string
	Err    error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("message generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Generator produces personalized outreach messages, one provider call
// per message.
type Generator struct {
	provider  llm.Provider
	agentName string
	company   string
}

func NewGenerator(provider llm.Provider, agentName, agentCompany string) *Generator {
	return &Generator{provider: provider, agentName: agentName, company: agentCompany}
}

type messagePayload struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// GenerateColdEmail writes a personalized cold email referencing trigger
// events when available.
func (g *Generator) GenerateColdEmail(ctx context.Context, contact *models.Contact, company *models.Company, valueProposition string, triggerEvents []string) (*models.OutreachMessage, error) {
	triggerContext := ""
	if len(triggerEvents) > 0 {
		var b strings.Builder
		b.WriteString("\nRecent company developments:\n")
		for _, event := range triggerEvents {
			b.WriteString("- " + event + "\n")
		}
		triggerContext = b.String()
	}

	prompt := fmt.Sprintf(`You are an expert sales development representative. Write a highly personalized cold email.

Contact Information:
- Name: %s
- Title: %s
- Company: %s

Company Information:
- Industry: %s
- Description: %s
%s
Value Proposition:
%s

Sign off as %s from %s.

Requirements:
1. Keep it concise (150-200 words max)
2. Reference specific trigger events or company context if available
3. Focus on value, not features
4. Include a clear, low-friction call-to-action
5. Professional but conversational tone
6. Avoid hype or overselling

Provide your response as JSON with keys:
- "subject": email subject line (compelling, under 50 characters)
- "body": email body (personalized, value-focused)`,
		contact.FullName(), titleOr(contact.JobTitle, "Decision Maker"), contact.Company,
		valueOr(company.Industry, "Unknown"), valueOr(company.Description, "N/A"),
		triggerContext, valueProposition, g.agentName, g.company)

	subject, body, err := g.generate(ctx, prompt,
		"You are an expert B2B sales development representative. Respond in valid JSON format.")
	if err != nil {
		return nil, err
	}
	return g.wrap(contact, models.ChannelEmail, subject, body), nil
}

// GenerateLinkedInMessage writes a brief connection request or InMail.
func (g *Generator) GenerateLinkedInMessage(ctx context.Context, contact *models.Contact, company *models.Company, valueProposition string) (*models.OutreachMessage, error) {
	prompt := fmt.Sprintf(`You are an expert at LinkedIn networking. Write a brief, personalized LinkedIn connection message.

Contact Information:
- Name: %s
- Title: %s
- Company: %s

Company Information:
- Industry: %s

Value Proposition:
%s

Requirements:
1. Keep it very brief (under 300 characters for a connection request)
2. Be genuine and professional
3. Reference their role or company
4. Soft value mention without being salesy
5. Create curiosity

Provide your response as JSON with keys:
- "subject": message subject (under 40 characters)
- "body": message body (brief and personalized)`,
		contact.FullName(), titleOr(contact.JobTitle, "Professional"), contact.Company,
		valueOr(company.Industry, "Unknown"), valueProposition)

	subject, body, err := g.generate(ctx, prompt,
		"You are a LinkedIn networking expert. Respond in valid JSON format.")
	if err != nil {
		return nil, err
	}
	msg := g.wrap(contact, models.ChannelLinkedIn, subject, body)
	return msg, nil
}

// GenerateFollowUp writes a short follow-up to an unanswered message.
func (g *Generator) GenerateFollowUp(ctx context.Context, contact *models.Contact, previousMessage string, daysSinceLastContact int) (*models.OutreachMessage, error) {
	prompt := fmt.Sprintf(`Generate a brief follow-up email for a cold outreach that received no response.

Contact: %s
Days since last contact: %d

Previous message:
%s

Requirements:
1. Keep it very brief (under 100 words)
2. Add new value or insight
3. Make it easy to respond
4. Don't be pushy
5. Adjust tone based on days passed

Provide JSON with keys: "subject", "body"`,
		contact.FullName(), daysSinceLastContact, previousMessage)

	subject, body, err := g.generate(ctx, prompt,
		"You are a sales follow-up expert. Respond in valid JSON format.")
	if err != nil {
		return nil, err
	}
	return g.wrap(contact, models.ChannelFollowUp, subject, body), nil
}

// generate runs one provider call and extracts subject/body. JSON first;
// if the model answered in plain text, the first line is the subject.
func (g *Generator) generate(ctx context.Context, prompt, systemPrompt string) (subject, body string, err error) {
	if g.provider == nil {
		return "", "", &GenerationError{Prompt: prompt, Err: fmt.Errorf("no text-generation provider configured")}
	}

	raw, err := g.provider.GenerateResponse(ctx, prompt, systemPrompt, llm.JSONMode())
	if err != nil {
		return "", "", &GenerationError{Prompt: prompt, Err: err}
	}

	var payload messagePayload
	if parseErr := utils.SmartParse(raw, &payload); parseErr == nil && payload.Body != "" {
		return strings.TrimSpace(payload.Subject), utils.CleanMarkdown(payload.Body), nil
	}

	// Plain-text fallback: first line is the subject, the rest the body.
	cleaned := utils.CleanMarkdown(raw)
	if cleaned == "" {
		return "", "", &GenerationError{Prompt: prompt, Err: fmt.Errorf("model returned empty content")}
	}
	lines := strings.SplitN(cleaned, "\n", 2)
	subject = strings.TrimSpace(strings.TrimPrefix(lines[0], "Subject:"))
	if len(lines) > 1 {
		body = strings.TrimSpace(lines[1])
	}
	if body == "" {
		body = cleaned
	}
	return subject, body, nil
}

func (g *Generator) wrap(contact *models.Contact, channel models.Channel, subject, body string) *models.OutreachMessage {
	msg := &models.OutreachMessage{
		Contact:     contact,
		Channel:     channel,
		Body:        body,
		GeneratedAt: time.Now(),
	}
	if channel != models.ChannelLinkedIn {
		msg.Subject = subject
	}
	return msg
}

func titleOr(title, fallback string) string {
	if title == "" {
		return fallback
	}
	return title
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
