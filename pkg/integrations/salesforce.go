package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"sdr_agent/pkg/config"
	"sdr_agent/pkg/models"
)

const salesforceAPIVersion = "v59.0"

// SalesforceClient maps internal records onto Salesforce Lead and Task
// objects over the REST API.
type SalesforceClient struct {
	cfg         config.SalesforceConfig
	client      *http.Client
	accessToken string
}

var _ CRMSink = (*SalesforceClient)(nil)

func NewSalesforceClient(cfg config.SalesforceConfig) *SalesforceClient {
	return &SalesforceClient{cfg: cfg, client: http.DefaultClient}
}

// SetHTTPClient overrides the transport, used in tests.
func (s *SalesforceClient) SetHTTPClient(c *http.Client) { s.client = c }

func (s *SalesforceClient) Name() string { return "salesforce" }

// Connect performs the username-password token exchange. Missing
// credentials put the client in demo mode.
func (s *SalesforceClient) Connect(ctx context.Context) bool {
	if !s.cfg.Configured() || s.cfg.InstanceURL == "" {
		log.Println("salesforce: credentials not configured, running in demo mode")
		return false
	}

	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", s.cfg.Username)
	form.Set("password", s.cfg.Password+s.cfg.SecurityToken)

	req, err := http.NewRequestWithContext(ctx, "POST", s.cfg.InstanceURL+"/services/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		log.Printf("salesforce: connect failed: %v", err)
		return false
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := s.client.Do(req)
	if err != nil {
		log.Printf("salesforce: connect failed: %v", err)
		return false
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(res.Body)
	if res.StatusCode != http.StatusOK {
		log.Printf("salesforce: auth rejected: status=%d body=%s", res.StatusCode, string(body))
		return false
	}

	var token struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &token); err != nil || token.AccessToken == "" {
		log.Printf("salesforce: unusable token response: %v", err)
		return false
	}
	s.accessToken = token.AccessToken
	return true
}

// UpsertLead creates a Lead from the contact and company records.
func (s *SalesforceClient) UpsertLead(ctx context.Context, contact *models.Contact, company *models.Company) (*models.CRMActivity, error) {
	activity := models.NewCRMActivity(models.ActivityLeadCreated, contact.Email,
		"Lead created", fmt.Sprintf("Created lead for %s (%s) at %s", contact.FullName(), contact.JobTitle, contact.Company))
	activity.Metadata = map[string]string{"vendor": s.Name()}

	if s.accessToken == "" {
		log.Printf("salesforce: demo mode, would create lead for %s", contact.FullName())
		activity.Metadata["lead_id"] = "demo_lead_" + emailOr(contact.Email, "noemail")
		return activity, nil
	}

	lead := map[string]string{
		"FirstName":  SanitizeSOQL(contact.FirstName),
		"LastName":   SanitizeSOQL(contact.LastName),
		"Company":    SanitizeSOQL(contact.Company),
		"Title":      SanitizeSOQL(contact.JobTitle),
		"Email":      contact.Email,
		"Phone":      contact.Phone,
		"LeadSource": "AI SDR Agent",
	}
	if company != nil {
		if company.Industry != "" {
			lead["Industry"] = SanitizeSOQL(company.Industry)
		}
		if company.Website != "" {
			lead["Website"] = company.Website
		}
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := s.post(ctx, "/services/data/"+salesforceAPIVersion+"/sobjects/Lead", lead, &created); err != nil {
		return nil, &CRMError{Vendor: s.Name(), Op: "upsert_lead", Err: err}
	}
	activity.Metadata["lead_id"] = created.ID
	return activity, nil
}

// LogActivity records the activity as a Salesforce Task.
func (s *SalesforceClient) LogActivity(ctx context.Context, activity *models.CRMActivity) error {
	if s.accessToken == "" {
		log.Printf("salesforce: demo mode, would log %s activity for %s", activity.ActivityType, activity.ContactEmail)
		return nil
	}

	task := map[string]string{
		"Subject":      activity.Subject,
		"Description":  activity.Description,
		"Status":       "Completed",
		"ActivityDate": activity.Timestamp.Format("2006-01-02"),
		"Type":         string(activity.ActivityType),
	}
	if leadID := activity.Metadata["lead_id"]; leadID != "" {
		task["WhoId"] = leadID
	}

	if err := s.post(ctx, "/services/data/"+salesforceAPIVersion+"/sobjects/Task", task, nil); err != nil {
		return &CRMError{Vendor: s.Name(), Op: "log_activity", Err: err}
	}
	return nil
}

// UpdateLeadStatus moves a lead through the pipeline.
func (s *SalesforceClient) UpdateLeadStatus(ctx context.Context, leadID, status string) error {
	if s.accessToken == "" {
		log.Printf("salesforce: demo mode, would set lead %s status to %s", leadID, status)
		return nil
	}
	path := "/services/data/" + salesforceAPIVersion + "/sobjects/Lead/" + url.PathEscape(leadID)
	if err := s.patch(ctx, path, map[string]string{"Status": SanitizeSOQL(status)}); err != nil {
		return &CRMError{Vendor: s.Name(), Op: "update_lead_status", Err: err}
	}
	return nil
}

// SearchContact looks up an existing lead by email through SOQL. The email
// is sanitized and re-validated before it reaches the query string.
func (s *SalesforceClient) SearchContact(ctx context.Context, email string) (map[string]interface{}, error) {
	if s.accessToken == "" {
		log.Printf("salesforce: demo mode, would search for %s", email)
		return nil, nil
	}

	sanitized, err := SanitizeEmailForQuery(email)
	if err != nil {
		return nil, &CRMError{Vendor: s.Name(), Op: "search_contact", Err: err}
	}

	soql := fmt.Sprintf("SELECT Id, FirstName, LastName, Company, Email FROM Lead WHERE Email = '%s' LIMIT 1", sanitized)
	endpoint := s.cfg.InstanceURL + "/services/data/" + salesforceAPIVersion + "/query?q=" + url.QueryEscape(soql)

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, &CRMError{Vendor: s.Name(), Op: "search_contact", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+s.accessToken)

	res, err := s.client.Do(req)
	if err != nil {
		return nil, &CRMError{Vendor: s.Name(), Op: "search_contact", Err: err}
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(res.Body)
	if res.StatusCode != http.StatusOK {
		return nil, &CRMError{Vendor: s.Name(), Op: "search_contact",
			Err: fmt.Errorf("status=%d body=%s", res.StatusCode, string(body))}
	}

	var result struct {
		TotalSize int                      `json:"totalSize"`
		Records   []map[string]interface{} `json:"records"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &CRMError{Vendor: s.Name(), Op: "search_contact", Err: err}
	}
	if result.TotalSize == 0 || len(result.Records) == 0 {
		return nil, nil
	}
	return result.Records[0], nil
}

func (s *SalesforceClient) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	return s.send(ctx, "POST", path, payload, out)
}

func (s *SalesforceClient) patch(ctx context.Context, path string, payload interface{}) error {
	return s.send(ctx, "PATCH", path, payload, nil)
}

func (s *SalesforceClient) send(ctx context.Context, method, path string, payload interface{}, out interface{}) error {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.cfg.InstanceURL+path, bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.accessToken)

	res, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(res.Body)
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("status=%d body=%s", res.StatusCode, string(body))
	}
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}
	return nil
}

func emailOr(email, fallback string) string {
	if email == "" {
		return fallback
	}
	return email
}
