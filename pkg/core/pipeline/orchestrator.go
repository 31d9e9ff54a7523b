package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"sdr_agent/pkg/config"
	"sdr_agent/pkg/core/icp"
	"sdr_agent/pkg/core/llm"
	"sdr_agent/pkg/core/outreach"
	"sdr_agent/pkg/core/research"
	"sdr_agent/pkg/integrations"
	"sdr_agent/pkg/models"
)

// DefaultSkipThreshold is the fit score below which a prospect is not
// worth outreach.
const DefaultSkipThreshold = 50

// Researcher gathers company attributes, trigger events and news.
type Researcher interface {
	ResearchCompany(ctx context.Context, name, website string) (*models.Company, error)
	IdentifyTriggerEvents(ctx context.Context, company *models.Company) ([]string, error)
	GatherNews(ctx context.Context, company *models.Company) ([]string, error)
}

// FitScorer scores ICP fit and surfaces decision-makers.
type FitScorer interface {
	ScoreFit(ctx context.Context, company *models.Company, profile *models.IdealCustomerProfile) (int, string)
	IdentifyContacts(ctx context.Context, company *models.Company, jobTitles []string) ([]*models.Contact, error)
}

// MessageWriter produces outreach copy per contact and channel.
type MessageWriter interface {
	GenerateColdEmail(ctx context.Context, contact *models.Contact, company *models.Company, valueProposition string, triggerEvents []string) (*models.OutreachMessage, error)
	GenerateLinkedInMessage(ctx context.Context, contact *models.Contact, company *models.Company, valueProposition string) (*models.OutreachMessage, error)
}

// EmailSender dispatches generated messages.
type EmailSender interface {
	Configured() bool
	SendBulk(ctx context.Context, messages []*models.OutreachMessage) ([]integrations.SendResult, error)
}

// Prospect names a target company for processing.
type Prospect struct {
	Name    string `yaml:"name" json:"name"`
	Website string `yaml:"website,omitempty" json:"website,omitempty"`
}

// Options controls per-run behavior.
type Options struct {
	SendEmail     bool
	SkipThreshold int // fit score below which the prospect is skipped; 0 means DefaultSkipThreshold
}

// ProspectResult is the per-prospect outcome record. One prospect's
// failure never aborts the batch; errors land in Errors instead.
type ProspectResult struct {
	Company            string    `json:"company"`
	RunID              string    `json:"run_id"`
	Timestamp          time.Time `json:"timestamp"`
	StepsCompleted     []string  `json:"steps_completed"`
	FitScore           int       `json:"fit_score"`
	FitReasoning       string    `json:"fit_reasoning,omitempty"`
	TriggerEvents      []string  `json:"trigger_events,omitempty"`
	NewsItems          []string  `json:"news_items,omitempty"`
	ContactsIdentified int       `json:"contacts_identified"`
	MessagesGenerated  int       `json:"messages_generated"`
	EmailsSent         int       `json:"emails_sent"`
	EmailDispatched    bool      `json:"email_dispatched"`
	CRMLogged          bool      `json:"crm_logged"`
	Skipped            bool      `json:"skipped,omitempty"`
	SkipReason         string    `json:"skip_reason,omitempty"`
	Errors             []string  `json:"errors"`
}

// SDRAgent sequences the sales-outreach workflow per prospect:
// research -> score -> triggers -> contacts -> messages -> send -> CRM.
type SDRAgent struct {
	researcher Researcher
	scorer     FitScorer
	writer     MessageWriter
	mailer     EmailSender
	crm        integrations.CRMSink
}

// New builds the agent from configuration. The text-generation key is the
// one mandatory dependency: without it no useful work is possible and
// construction fails with a ConfigurationError. Missing CRM or email keys
// degrade those integrations to demo mode with a visible warning.
func New(cfg *config.Config, crmType string) (*SDRAgent, error) {
	if missing := cfg.MissingRequired(); len(missing) > 0 {
		return nil, &config.ConfigurationError{Missing: missing}
	}

	var provider llm.Provider
	if cfg.OpenAI.APIKey != "" {
		provider = &llm.OpenAIProvider{
			APIKey:  cfg.OpenAI.APIKey,
			Model:   cfg.OpenAI.Model,
			BaseURL: cfg.OpenAI.BaseURL,
		}
	} else {
		provider = &llm.GeminiProvider{}
	}

	var crm integrations.CRMSink
	switch crmType {
	case "salesforce", "":
		crm = integrations.NewSalesforceClient(cfg.Salesforce)
	case "hubspot":
		crm = integrations.NewHubSpotClient(cfg.HubSpot)
	default:
		return nil, fmt.Errorf("unsupported CRM type: %s", crmType)
	}
	if !crm.Connect(context.Background()) {
		log.Printf("pipeline: %s running in demo mode", crm.Name())
	}

	if !cfg.Email.Configured() {
		log.Println("pipeline: sendgrid not configured, emails will not be dispatched")
	}

	return NewWithDeps(
		research.NewCompanyResearcher(provider),
		icp.NewIdentifier(provider),
		outreach.NewGenerator(provider, cfg.Agent.AgentName, cfg.Agent.CompanyName),
		integrations.NewMailer(cfg.Email),
		crm,
	), nil
}

// NewWithDeps wires explicit collaborators, used by tests and callers
// composing their own stack.
func NewWithDeps(researcher Researcher, scorer FitScorer, writer MessageWriter, mailer EmailSender, crm integrations.CRMSink) *SDRAgent {
	return &SDRAgent{
		researcher: researcher,
		scorer:     scorer,
		writer:     writer,
		mailer:     mailer,
		crm:        crm,
	}
}

// ProcessProspect runs the full workflow for one company. Stage failures
// are recorded in the result; CRM and email failures are non-fatal.
func (a *SDRAgent) ProcessProspect(ctx context.Context, companyName, website string, profile *models.IdealCustomerProfile, valueProposition string, opts Options) *ProspectResult {
	result := &ProspectResult{
		Company:   companyName,
		RunID:     uuid.NewString(),
		Timestamp: time.Now(),
		Errors:    []string{},
	}
	log.Printf("pipeline: processing prospect %s", companyName)

	if companyName == "" {
		result.Errors = append(result.Errors, "prospect has no company name")
		return result
	}

	// 1. Research
	company, err := a.researcher.ResearchCompany(ctx, companyName, website)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("research: %v", err))
		return result
	}
	result.StepsCompleted = append(result.StepsCompleted, "research_company")

	// 2. ICP fit
	score, reasoning := a.scorer.ScoreFit(ctx, company, profile)
	result.FitScore = score
	result.FitReasoning = reasoning
	result.StepsCompleted = append(result.StepsCompleted, "score_fit")

	threshold := opts.SkipThreshold
	if threshold == 0 {
		threshold = DefaultSkipThreshold
	}
	if score < threshold {
		log.Printf("pipeline: %s below fit threshold (%d < %d), skipping", companyName, score, threshold)
		result.Skipped = true
		result.SkipReason = "low ICP fit score"
		return result
	}

	// 3. Trigger events
	triggers, err := a.researcher.IdentifyTriggerEvents(ctx, company)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("detect_triggers: %v", err))
	} else {
		result.TriggerEvents = triggers
		company.TriggerEvents = triggers
		result.StepsCompleted = append(result.StepsCompleted, "detect_triggers")
	}

	// 4. News
	news, err := a.researcher.GatherNews(ctx, company)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("gather_news: %v", err))
	} else {
		result.NewsItems = news
		company.NewsItems = news
		result.StepsCompleted = append(result.StepsCompleted, "gather_news")
	}

	// 5. Decision makers
	contacts, err := a.scorer.IdentifyContacts(ctx, company, profile.JobTitles)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("identify_contacts: %v", err))
		return result
	}
	result.ContactsIdentified = len(contacts)
	result.StepsCompleted = append(result.StepsCompleted, "identify_contacts")
	if len(contacts) == 0 {
		result.Errors = append(result.Errors, "no contacts identified")
		return result
	}

	// 6. Messages: cold email + LinkedIn per contact. A generation failure
	// skips that message, not the prospect.
	topTriggers := triggers
	if len(topTriggers) > 2 {
		topTriggers = topTriggers[:2]
	}
	var messages []*models.OutreachMessage
	for _, contact := range contacts {
		email, err := a.writer.GenerateColdEmail(ctx, contact, company, valueProposition, topTriggers)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("generate cold email for %s: %v", contact.FullName(), err))
		} else {
			messages = append(messages, email)
		}

		li, err := a.writer.GenerateLinkedInMessage(ctx, contact, company, valueProposition)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("generate linkedin message for %s: %v", contact.FullName(), err))
		} else {
			messages = append(messages, li)
		}
	}
	result.MessagesGenerated = len(messages)
	if len(messages) > 0 {
		result.StepsCompleted = append(result.StepsCompleted, "generate_messages")
	}

	// 7. Send
	emailMessages := filterByChannel(messages, models.ChannelEmail)
	if opts.SendEmail {
		if a.mailer != nil && a.mailer.Configured() {
			sendResults, err := a.mailer.SendBulk(ctx, emailMessages)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("send_emails: %v", err))
			} else {
				for _, sr := range sendResults {
					if sr.Sent {
						result.EmailsSent++
					}
				}
				result.EmailDispatched = result.EmailsSent > 0
				result.StepsCompleted = append(result.StepsCompleted, "send_emails")
			}
		} else {
			log.Println("pipeline: email send requested but sendgrid not configured, skipping dispatch")
		}
	}

	// 8. CRM logging. Failures are recorded and processing continues.
	a.logToCRM(ctx, result, contacts, company, emailMessages)

	log.Printf("pipeline: prospect %s complete (score=%d contacts=%d messages=%d)",
		companyName, result.FitScore, result.ContactsIdentified, result.MessagesGenerated)
	return result
}

func (a *SDRAgent) logToCRM(ctx context.Context, result *ProspectResult, contacts []*models.Contact, company *models.Company, emailMessages []*models.OutreachMessage) {
	if a.crm == nil {
		return
	}

	logged := false
	for _, contact := range contacts {
		activity, err := a.crm.UpsertLead(ctx, contact, company)
		if err != nil {
			result.Errors = append(result.Errors, crmErrorString(err))
			continue
		}
		if err := a.crm.LogActivity(ctx, activity); err != nil {
			result.Errors = append(result.Errors, crmErrorString(err))
			continue
		}
		logged = true

		for _, msg := range emailMessages {
			// Match by contact identity, not email: contacts whose bad
			// address was dropped share the empty string.
			if msg.Contact != contact {
				continue
			}
			status := "generated"
			if result.EmailDispatched {
				status = "sent"
			}
			msgActivity := integrations.ActivityFromMessage(msg, status)
			if activity.Metadata != nil {
				msgActivity.Metadata["lead_id"] = activity.Metadata["lead_id"]
			}
			if err := a.crm.LogActivity(ctx, msgActivity); err != nil {
				result.Errors = append(result.Errors, crmErrorString(err))
			}
		}
	}

	if logged {
		result.CRMLogged = true
		result.StepsCompleted = append(result.StepsCompleted, "log_crm")
	}
}

// ProcessProspectList processes prospects strictly in input order, one at
// a time. Always returns one result per prospect.
func (a *SDRAgent) ProcessProspectList(ctx context.Context, prospects []Prospect, profile *models.IdealCustomerProfile, valueProposition string, opts Options) []*ProspectResult {
	log.Printf("pipeline: processing %d prospects", len(prospects))
	start := time.Now()

	results := make([]*ProspectResult, 0, len(prospects))
	for _, prospect := range prospects {
		results = append(results, a.ProcessProspect(ctx, prospect.Name, prospect.Website, profile, valueProposition, opts))
	}

	log.Printf("pipeline: prospect list complete in %v", time.Since(start))
	return results
}

func filterByChannel(messages []*models.OutreachMessage, channel models.Channel) []*models.OutreachMessage {
	var out []*models.OutreachMessage
	for _, m := range messages {
		if m.Channel == channel {
			out = append(out, m)
		}
	}
	return out
}

func crmErrorString(err error) string {
	var crmErr *integrations.CRMError
	if errors.As(err, &crmErr) {
		return crmErr.Error()
	}
	return fmt.Sprintf("crm: %v", err)
}
