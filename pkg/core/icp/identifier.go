package icp

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"sdr_agent/pkg/core/llm"
	"sdr_agent/pkg/core/utils"
	"sdr_agent/pkg/models"
)

// Identifier scores company fit against an ICP and surfaces likely
// decision-makers.
type Identifier struct {
	provider llm.Provider
}

func NewIdentifier(provider llm.Provider) *Identifier {
	return &Identifier{provider: provider}
}

type fitAnalysis struct {
	FitScore       int    `json:"fit_score"`
	Reasoning      string `json:"reasoning"`
	Recommendation string `json:"recommendation"`
}

var firstInteger = regexp.MustCompile(`\d+`)

// ScoreFit returns a 0-100 fit score and the model's reasoning. Parsing
// failures fall back to the first integer in the raw text, then to the
// deterministic rule, so a score is always produced.
func (i *Identifier) ScoreFit(ctx context.Context, company *models.Company, profile *models.IdealCustomerProfile) (int, string) {
	if i.provider == nil {
		score := RuleScore(company, profile)
		return score, "rule-based score (no text-generation provider configured)"
	}

	prompt := fmt.Sprintf(`You are an expert sales analyst. Analyze if the following company matches the ideal customer profile.

Company Information:
- Name: %s
- Industry: %s
- Size: %s employees
- Location: %s
- Description: %s

Ideal Customer Profile:
- Target Industry: %s
- Company Size: %s - %s employees
- Geography: %s
- Technologies: %s

Provide a fit score (0-100) and brief reasoning for the score.
Format your response as JSON with keys: "fit_score" (integer), "reasoning" (string), "recommendation" (string).`,
		company.Name, orAny(company.Industry), countOrUnknown(company.EmployeeCount),
		orAny(company.Location), orAny(company.Description),
		profile.Industry, boundOrAny(profile.CompanySizeMin), boundOrAny(profile.CompanySizeMax),
		orAny(profile.Geography), listOrAny(profile.Technologies))

	raw, err := i.provider.GenerateResponse(ctx, prompt,
		"You are a sales analyst expert. Always respond in valid JSON format.", llm.JSONMode())
	if err != nil {
		log.Printf("icp: fit analysis failed for %s, using rule fallback: %v", company.Name, err)
		return RuleScore(company, profile), "rule-based score (generation failed)"
	}

	var analysis fitAnalysis
	if err := utils.SmartParse(raw, &analysis); err == nil && (analysis.FitScore > 0 || analysis.Reasoning != "") {
		return clamp(analysis.FitScore), analysis.Reasoning
	}

	// The model answered but not in JSON. Take the first integer in the
	// text as the score before giving up on the response entirely.
	if m := firstInteger.FindString(raw); m != "" {
		if n, err := strconv.Atoi(m); err == nil {
			return clamp(n), strings.TrimSpace(raw)
		}
	}

	return RuleScore(company, profile), "rule-based score (unparseable model output)"
}

// RuleScore is the deterministic fallback: industry match and size-range
// membership carry most of the weight, geography and technology overlap
// the rest. Capped at 100.
func RuleScore(company *models.Company, profile *models.IdealCustomerProfile) int {
	score := 0
	if company.Industry != "" && strings.EqualFold(strings.TrimSpace(company.Industry), strings.TrimSpace(profile.Industry)) {
		score += 50
	}
	if inSizeRange(company.EmployeeCount, profile.CompanySizeMin, profile.CompanySizeMax) {
		score += 30
	}
	if profile.Geography != "" && company.Location != "" &&
		strings.Contains(strings.ToLower(company.Location), strings.ToLower(profile.Geography)) {
		score += 10
	}
	if len(profile.Technologies) > 0 && company.Description != "" {
		desc := strings.ToLower(company.Description)
		for _, tech := range profile.Technologies {
			if strings.Contains(desc, strings.ToLower(tech)) {
				score += 10
				break
			}
		}
	}
	return clamp(score)
}

type contactPayload struct {
	Contacts []struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		JobTitle  string `json:"job_title"`
		Email     string `json:"email"`
	} `json:"contacts"`
}

// IdentifyContacts surfaces likely decision-makers whose titles match
// the configured job titles (case-insensitive substring). Contacts are
// model-suggested; wiring a people-data provider would replace this.
func (i *Identifier) IdentifyContacts(ctx context.Context, company *models.Company, jobTitles []string) ([]*models.Contact, error) {
	if i.provider == nil || len(jobTitles) == 0 {
		return nil, nil
	}

	prompt := fmt.Sprintf(`Based on the company '%s' in the %s industry,
suggest 3 typical decision-maker contacts with the following job titles: %s.

Provide realistic example names and titles. Format as a JSON object with a
"contacts" array; each entry has keys "first_name", "last_name", "job_title".`,
		company.Name, orAny(company.Industry), strings.Join(jobTitles, ", "))

	raw, err := i.provider.GenerateResponse(ctx, prompt,
		"You are a B2B sales expert. Respond in valid JSON format.", llm.JSONMode())
	if err != nil {
		return nil, fmt.Errorf("contact identification failed: %w", err)
	}

	var payload contactPayload
	if err := utils.SmartParse(raw, &payload); err != nil {
		return nil, fmt.Errorf("contact parse failed: %w", err)
	}

	var contacts []*models.Contact
	for _, entry := range payload.Contacts {
		if !titleMatches(entry.JobTitle, jobTitles) {
			continue
		}
		contact, err := models.NewContact(entry.FirstName, entry.LastName, entry.Email, entry.JobTitle, company.Name)
		if err != nil {
			// Drop the bad email rather than the whole contact.
			contact, err = models.NewContact(entry.FirstName, entry.LastName, "", entry.JobTitle, company.Name)
			if err != nil {
				continue
			}
		}
		contacts = append(contacts, contact)
	}
	return contacts, nil
}

func titleMatches(title string, wanted []string) bool {
	lower := strings.ToLower(strings.TrimSpace(title))
	if lower == "" {
		return false
	}
	for _, w := range wanted {
		if w == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(w)) || strings.Contains(strings.ToLower(w), lower) {
			return true
		}
	}
	return false
}

func inSizeRange(count, min, max int) bool {
	if count <= 0 {
		return false
	}
	if min > 0 && count < min {
		return false
	}
	if max > 0 && count > max {
		return false
	}
	return min > 0 || max > 0
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func orAny(s string) string {
	if s == "" {
		return "Any"
	}
	return s
}

func boundOrAny(n int) string {
	if n <= 0 {
		return "Any"
	}
	return strconv.Itoa(n)
}

func countOrUnknown(n int) string {
	if n <= 0 {
		return "Unknown"
	}
	return strconv.Itoa(n)
}

func listOrAny(items []string) string {
	if len(items) == 0 {
		return "Any"
	}
	return strings.Join(items, ", ")
}
