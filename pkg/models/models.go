package models

import (
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
)

// ValidationError reports malformed data entering a model. Construction
// fails fast; values are never silently coerced.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
}

// IdealCustomerProfile defines the campaign targeting criteria.
// Immutable once constructed.
type IdealCustomerProfile struct {
	Industry       string   `json:"industry"`
	CompanySizeMin int      `json:"company_size_min,omitempty"`
	CompanySizeMax int      `json:"company_size_max,omitempty"`
	JobTitles      []string `json:"job_titles"`
	Geography      string   `json:"geography,omitempty"`
	Technologies   []string `json:"technologies,omitempty"`
	RevenueRange   string   `json:"revenue_range,omitempty"`
}

// NewIdealCustomerProfile validates the size range. Zero means "any".
func NewIdealCustomerProfile(industry string, sizeMin, sizeMax int, jobTitles []string) (*IdealCustomerProfile, error) {
	if industry == "" {
		return nil, &ValidationError{Field: "industry", Reason: "must not be empty"}
	}
	if sizeMin > 0 && sizeMax > 0 && sizeMin > sizeMax {
		return nil, &ValidationError{
			Field:  "company_size_min",
			Reason: fmt.Sprintf("min %d exceeds max %d", sizeMin, sizeMax),
		}
	}
	return &IdealCustomerProfile{
		Industry:       industry,
		CompanySizeMin: sizeMin,
		CompanySizeMax: sizeMax,
		JobTitles:      jobTitles,
	}, nil
}

// Company holds researched company information. Built by the researcher,
// read-only downstream.
type Company struct {
	Name          string   `json:"name"`
	Website       string   `json:"website,omitempty"`
	Industry      string   `json:"industry,omitempty"`
	EmployeeCount int      `json:"employee_count,omitempty"`
	Location      string   `json:"location,omitempty"`
	Description   string   `json:"description,omitempty"`
	TriggerEvents []string `json:"trigger_events,omitempty"`
	NewsItems     []string `json:"news_items,omitempty"`
}

// Contact is a decision-maker at a target company. Company is a name
// back-reference, not ownership.
type Contact struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email,omitempty"`
	JobTitle    string `json:"job_title,omitempty"`
	Company     string `json:"company"`
	LinkedInURL string `json:"linkedin_url,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

// NewContact validates the email syntax when one is supplied.
func NewContact(firstName, lastName, email, jobTitle, company string) (*Contact, error) {
	if email != "" {
		if err := ValidateEmail(email); err != nil {
			return nil, err
		}
	}
	return &Contact{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		JobTitle:  jobTitle,
		Company:   company,
	}, nil
}

// FullName joins first and last name for display and prompts.
func (c *Contact) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// ValidateEmail checks address syntax. mail.ParseAddress accepts the
// "Name <addr>" form, so reject anything that does not round-trip to the
// bare address.
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return &ValidationError{Field: "email", Reason: fmt.Sprintf("%q is not a valid address", email)}
	}
	return nil
}

// Channel identifies the outreach medium.
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelLinkedIn Channel = "linkedin"
	ChannelFollowUp Channel = "follow_up"
)

// OutreachMessage is a generated message for one contact. Immutable once
// produced; consumed by the mailer and CRM logging.
type OutreachMessage struct {
	Contact     *Contact  `json:"contact"`
	Channel     Channel   `json:"channel"`
	Subject     string    `json:"subject,omitempty"` // email channels only
	Body        string    `json:"body"`
	GeneratedAt time.Time `json:"generated_at"`
}

// ActivityType classifies a CRM activity record.
type ActivityType string

const (
	ActivityLeadCreated    ActivityType = "lead_created"
	ActivityContactCreated ActivityType = "contact_created"
	ActivityMessageLogged  ActivityType = "message_logged"
	ActivityEmailSent      ActivityType = "email_sent"
)

// CRMActivity is a side-effect record forwarded to the CRM vendor.
// Never persisted locally.
type CRMActivity struct {
	ID           string            `json:"id"`
	ActivityType ActivityType      `json:"activity_type"`
	ContactEmail string            `json:"contact_email"`
	Subject      string            `json:"subject"`
	Description  string            `json:"description"`
	Timestamp    time.Time         `json:"timestamp"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// NewCRMActivity stamps the record with a fresh ID and timestamp.
func NewCRMActivity(activityType ActivityType, contactEmail, subject, description string) *CRMActivity {
	return &CRMActivity{
		ID:           uuid.NewString(),
		ActivityType: activityType,
		ContactEmail: contactEmail,
		Subject:      subject,
		Description:  description,
		Timestamp:    time.Now(),
	}
}
