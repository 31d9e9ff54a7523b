package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"sdr_agent/pkg/config"
	"sdr_agent/pkg/models"
)

const defaultHubSpotBaseURL = "https://api.hubapi.com"

// HubSpotClient maps internal records onto HubSpot contact and engagement
// objects.
type HubSpotClient struct {
	cfg       config.HubSpotConfig
	baseURL   string
	client    *http.Client
	connected bool
}

var _ CRMSink = (*HubSpotClient)(nil)

// Engagement types HubSpot recognizes for activity notes.
var hubspotEngagementTypes = map[models.ActivityType]string{
	models.ActivityEmailSent:      "EMAIL",
	models.ActivityMessageLogged:  "NOTE",
	models.ActivityLeadCreated:    "NOTE",
	models.ActivityContactCreated: "NOTE",
}

func NewHubSpotClient(cfg config.HubSpotConfig) *HubSpotClient {
	return &HubSpotClient{cfg: cfg, baseURL: defaultHubSpotBaseURL, client: http.DefaultClient}
}

// SetBaseURL points the client at a test server.
func (h *HubSpotClient) SetBaseURL(u string) { h.baseURL = u }

func (h *HubSpotClient) SetHTTPClient(c *http.Client) { h.client = c }

func (h *HubSpotClient) Name() string { return "hubspot" }

func (h *HubSpotClient) Connect(ctx context.Context) bool {
	if h.cfg.APIKey == "" {
		log.Println("hubspot: API key not configured, running in demo mode")
		h.connected = false
		return false
	}
	h.connected = true
	return true
}

// UpsertLead creates a HubSpot contact for the decision-maker.
func (h *HubSpotClient) UpsertLead(ctx context.Context, contact *models.Contact, company *models.Company) (*models.CRMActivity, error) {
	activity := models.NewCRMActivity(models.ActivityContactCreated, contact.Email,
		"Contact created", fmt.Sprintf("Created contact for %s (%s) at %s", contact.FullName(), contact.JobTitle, contact.Company))
	activity.Metadata = map[string]string{"vendor": h.Name()}

	if !h.connected {
		log.Printf("hubspot: demo mode, would create contact for %s", contact.FullName())
		activity.Metadata["contact_id"] = "demo_contact_" + emailOr(contact.Email, "noemail")
		return activity, nil
	}

	properties := map[string]string{
		"firstname":      contact.FirstName,
		"lastname":       contact.LastName,
		"email":          contact.Email,
		"company":        contact.Company,
		"jobtitle":       contact.JobTitle,
		"phone":          contact.Phone,
		"hs_lead_status": "NEW",
	}
	if contact.LinkedInURL != "" {
		properties["linkedin_url"] = contact.LinkedInURL
	}

	var created struct {
		ID string `json:"id"`
	}
	err := h.post(ctx, "/crm/v3/objects/contacts", map[string]interface{}{"properties": properties}, &created)
	if err != nil {
		return nil, &CRMError{Vendor: h.Name(), Op: "upsert_lead", Err: err}
	}
	activity.Metadata["contact_id"] = created.ID
	return activity, nil
}

// LogActivity records the activity as a HubSpot note engagement.
func (h *HubSpotClient) LogActivity(ctx context.Context, activity *models.CRMActivity) error {
	if !h.connected {
		log.Printf("hubspot: demo mode, would log %s activity for %s", activity.ActivityType, activity.ContactEmail)
		return nil
	}

	engagementType := hubspotEngagementTypes[activity.ActivityType]
	if engagementType == "" {
		engagementType = "NOTE"
	}

	payload := map[string]interface{}{
		"properties": map[string]string{
			"hs_timestamp":       activity.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z"),
			"hs_note_body":       activity.Subject + "\n\n" + activity.Description,
			"hs_engagement_type": engagementType,
		},
	}
	if err := h.post(ctx, "/crm/v3/objects/notes", payload, nil); err != nil {
		return &CRMError{Vendor: h.Name(), Op: "log_activity", Err: err}
	}
	return nil
}

// UpdateContactProperty patches a single property on a contact.
func (h *HubSpotClient) UpdateContactProperty(ctx context.Context, contactID, property, value string) error {
	if !h.connected {
		log.Printf("hubspot: demo mode, would set %s=%s on contact %s", property, value, contactID)
		return nil
	}
	payload := map[string]interface{}{
		"properties": map[string]string{property: value},
	}
	if err := h.send(ctx, "PATCH", "/crm/v3/objects/contacts/"+contactID, payload, nil); err != nil {
		return &CRMError{Vendor: h.Name(), Op: "update_contact_property", Err: err}
	}
	return nil
}

// SearchContact looks up an existing contact by email.
func (h *HubSpotClient) SearchContact(ctx context.Context, email string) (map[string]interface{}, error) {
	if !h.connected {
		log.Printf("hubspot: demo mode, would search for %s", email)
		return nil, nil
	}

	if err := models.ValidateEmail(email); err != nil {
		return nil, &CRMError{Vendor: h.Name(), Op: "search_contact", Err: err}
	}

	payload := map[string]interface{}{
		"filterGroups": []map[string]interface{}{
			{
				"filters": []map[string]string{
					{"propertyName": "email", "operator": "EQ", "value": email},
				},
			},
		},
	}

	var result struct {
		Total   int                      `json:"total"`
		Results []map[string]interface{} `json:"results"`
	}
	if err := h.post(ctx, "/crm/v3/objects/contacts/search", payload, &result); err != nil {
		return nil, &CRMError{Vendor: h.Name(), Op: "search_contact", Err: err}
	}
	if result.Total == 0 || len(result.Results) == 0 {
		return nil, nil
	}
	return result.Results[0], nil
}

func (h *HubSpotClient) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	return h.send(ctx, "POST", path, payload, out)
}

func (h *HubSpotClient) send(ctx context.Context, method, path string, payload interface{}, out interface{}) error {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+h.cfg.APIKey)

	res, err := h.client.Do(req)
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
