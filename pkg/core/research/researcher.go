package research

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"sdr_agent/pkg/core/llm"
	"sdr_agent/pkg/core/utils"
	"sdr_agent/pkg/models"
)

// CompanyResearcher builds Company records from a name/website. With no
// provider configured it degrades to a deterministic placeholder.
type CompanyResearcher struct {
	provider llm.Provider
	client   *http.Client
}

func NewCompanyResearcher(provider llm.Provider) *CompanyResearcher {
	return &CompanyResearcher{
		provider: provider,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// SetHTTPClient overrides the scrape client, used in tests.
func (r *CompanyResearcher) SetHTTPClient(c *http.Client) {
	r.client = c
}

type companyProfile struct {
	Industry      string `json:"industry"`
	EmployeeCount int    `json:"employee_count"`
	Location      string `json:"location"`
	Description   string `json:"description"`
}

// ResearchCompany gathers company attributes. It always returns a usable
// Company: scrape and generation failures fall back to whatever was
// collected so far, down to a bare name/website record.
func (r *CompanyResearcher) ResearchCompany(ctx context.Context, name, website string) (*models.Company, error) {
	company := &models.Company{Name: name, Website: website}

	if website != "" {
		title, description := r.scrapeHomepage(ctx, website)
		if description != "" {
			company.Description = description
		} else if title != "" {
			company.Description = title
		}
	}

	if r.provider == nil {
		return company, nil
	}

	prompt := fmt.Sprintf(`Research and provide information about the company: %s
%s%s
Provide the following information in JSON format:
- industry: industry sector
- employee_count: approximate number of employees (integer)
- location: headquarters location
- description: brief company description (1-2 sentences)

Be realistic; if unsure, use your best judgment based on the company name.`,
		name, optionalLine("Website", website), optionalLine("Homepage summary", company.Description))

	raw, err := r.provider.GenerateResponse(ctx, prompt,
		"You are a business research analyst. Respond in valid JSON format.", llm.JSONMode())
	if err != nil {
		log.Printf("research: profile generation failed for %s: %v", name, err)
		return company, nil
	}

	var profile companyProfile
	if err := utils.SmartParse(raw, &profile); err != nil {
		log.Printf("research: unparseable profile for %s: %v", name, err)
		return company, nil
	}

	company.Industry = profile.Industry
	company.EmployeeCount = profile.EmployeeCount
	company.Location = profile.Location
	if profile.Description != "" {
		company.Description = profile.Description
	}
	return company, nil
}

// IdentifyTriggerEvents suggests 2-3 sales-relevant events (funding,
// launches, expansions). Empty on failure, never fatal.
func (r *CompanyResearcher) IdentifyTriggerEvents(ctx context.Context, company *models.Company) ([]string, error) {
	if r.provider == nil {
		return nil, nil
	}

	prompt := fmt.Sprintf(`Based on the company information below, suggest 2-3 realistic trigger events
that would be good sales opportunities (funding rounds, product launches,
expansions, leadership changes, acquisitions).

Company: %s
Industry: %s
Description: %s

Provide a JSON object with a "trigger_events" array of strings.
Each event should be a brief, realistic statement.`,
		company.Name, orUnknown(company.Industry), orUnknown(company.Description))

	raw, err := r.provider.GenerateResponse(ctx, prompt,
		"You are a business intelligence analyst. Respond in valid JSON format.", llm.JSONMode())
	if err != nil {
		return nil, fmt.Errorf("trigger event detection failed: %w", err)
	}

	var result struct {
		TriggerEvents []string `json:"trigger_events"`
	}
	if err := utils.SmartParse(raw, &result); err != nil {
		return nil, fmt.Errorf("trigger event parse failed: %w", err)
	}
	return result.TriggerEvents, nil
}

// GatherNews collects recent headlines about the company.
func (r *CompanyResearcher) GatherNews(ctx context.Context, company *models.Company) ([]string, error) {
	if r.provider == nil {
		return nil, nil
	}

	industry := company.Industry
	if industry == "" {
		industry = "technology"
	}
	prompt := fmt.Sprintf(`Generate 2-3 realistic recent news headlines about %s,
a company in the %s industry.

Provide a JSON object with a "news" array of strings.
Each headline should be professional and realistic.`, company.Name, industry)

	raw, err := r.provider.GenerateResponse(ctx, prompt,
		"You are a business news analyst. Respond in valid JSON format.", llm.JSONMode())
	if err != nil {
		return nil, fmt.Errorf("news gathering failed: %w", err)
	}

	var result struct {
		News []string `json:"news"`
	}
	if err := utils.SmartParse(raw, &result); err != nil {
		return nil, fmt.Errorf("news parse failed: %w", err)
	}
	return result.News, nil
}

// scrapeHomepage pulls the page title and meta description as a light
// research signal. Best effort only.
func (r *CompanyResearcher) scrapeHomepage(ctx context.Context, website string) (title, description string) {
	url := website
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "https://" + url
	}

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", ""
	}
	res, err := r.client.Do(req)
	if err != nil {
		return "", ""
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return "", ""
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return "", ""
	}

	title = strings.TrimSpace(doc.Find("title").First().Text())
	doc.Find(`meta[name="description"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if content, ok := s.Attr("content"); ok {
			description = strings.TrimSpace(content)
			return false
		}
		return true
	})
	return title, description
}

func optionalLine(label, value string) string {
	if value == "" {
		return ""
	}
	return fmt.Sprintf("%s: %s\n", label, value)
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
