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
	"sdr_agent/pkg/core/utils"
	"sdr_agent/pkg/models"
)

const defaultSendGridBaseURL = "https://api.sendgrid.com"

// Mailer sends OutreachMessages through a SendGrid-style mail API.
// Without an API key it runs in demo mode: sends are logged, not
// dispatched.
type Mailer struct {
	cfg     config.EmailConfig
	baseURL string
	client  *http.Client
}

func NewMailer(cfg config.EmailConfig) *Mailer {
	return &Mailer{cfg: cfg, baseURL: defaultSendGridBaseURL, client: http.DefaultClient}
}

// SetBaseURL points the mailer at a test server.
func (m *Mailer) SetBaseURL(u string) { m.baseURL = u }

func (m *Mailer) SetHTTPClient(c *http.Client) { m.client = c }

// Configured reports whether real sends are possible.
func (m *Mailer) Configured() bool { return m.cfg.Configured() }

// SendResult pairs a message with its send outcome.
type SendResult struct {
	Message *models.OutreachMessage
	Sent    bool
}

type sgPersonalization struct {
	To []map[string]string `json:"to"`
}

type sendGridMail struct {
	Personalizations []sgPersonalization `json:"personalizations"`
	From             map[string]string   `json:"from"`
	Subject          string              `json:"subject"`
	Content          []map[string]string `json:"content"`
}

// Send validates sender and recipient, then dispatches one message.
// A send failure returns false rather than an error so bulk sending can
// continue; only configuration problems raise an error.
func (m *Mailer) Send(ctx context.Context, message *models.OutreachMessage) (bool, error) {
	if !m.cfg.Configured() {
		return false, fmt.Errorf("sendgrid not configured: missing SENDGRID_API_KEY or SENDGRID_FROM_EMAIL")
	}
	if err := models.ValidateEmail(m.cfg.FromEmail); err != nil {
		return false, fmt.Errorf("invalid sender address: %w", err)
	}
	if message.Contact == nil || message.Contact.Email == "" {
		log.Println("mailer: message has no recipient address, skipping")
		return false, nil
	}
	if err := models.ValidateEmail(message.Contact.Email); err != nil {
		log.Printf("mailer: invalid recipient %q, skipping", message.Contact.Email)
		return false, nil
	}

	content := []map[string]string{
		{"type": "text/plain", "value": message.Body},
	}
	if html, err := utils.RenderHTML(message.Body); err == nil {
		content = append(content, map[string]string{"type": "text/html", "value": html})
	}

	mail := sendGridMail{
		From:    map[string]string{"email": m.cfg.FromEmail},
		Subject: message.Subject,
		Content: content,
	}
	mail.Personalizations = []sgPersonalization{
		{To: []map[string]string{{"email": message.Contact.Email}}},
	}

	jsonBody, err := json.Marshal(mail)
	if err != nil {
		log.Printf("mailer: marshal failed: %v", err)
		return false, nil
	}

	req, err := http.NewRequestWithContext(ctx, "POST", m.baseURL+"/v3/mail/send", bytes.NewBuffer(jsonBody))
	if err != nil {
		log.Printf("mailer: request build failed: %v", err)
		return false, nil
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.cfg.SendGridAPIKey)

	res, err := m.client.Do(req)
	if err != nil {
		log.Printf("mailer: send failed for %s: %v", message.Contact.Email, err)
		return false, nil
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK || res.StatusCode == http.StatusCreated || res.StatusCode == http.StatusAccepted {
		return true, nil
	}

	body, _ := io.ReadAll(res.Body)
	log.Printf("mailer: send rejected for %s: status=%d body=%s", message.Contact.Email, res.StatusCode, string(body))
	return false, nil
}

// SendBulk iterates over messages, continuing past individual failures.
func (m *Mailer) SendBulk(ctx context.Context, messages []*models.OutreachMessage) ([]SendResult, error) {
	results := make([]SendResult, 0, len(messages))
	for _, message := range messages {
		sent, err := m.Send(ctx, message)
		if err != nil {
			// Configuration errors abort: every remaining send would fail
			// the same way.
			return results, err
		}
		results = append(results, SendResult{Message: message, Sent: sent})
	}
	return results, nil
}

// ActivityFromMessage builds the email_sent CRM record for a dispatched
// message.
func ActivityFromMessage(message *models.OutreachMessage, status string) *models.CRMActivity {
	email := "unknown"
	name := "unknown contact"
	if message.Contact != nil {
		email = emailOr(message.Contact.Email, "unknown")
		name = message.Contact.FullName()
	}
	activity := models.NewCRMActivity(models.ActivityEmailSent, email, message.Subject,
		fmt.Sprintf("Sent cold email to %s\n\nSubject: %s\n\nBody:\n%s", name, message.Subject, message.Body))
	activity.Metadata = map[string]string{
		"channel": string(message.Channel),
		"status":  status,
	}
	return activity
}
