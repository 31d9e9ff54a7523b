package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"sdr_agent/pkg/config"
	"sdr_agent/pkg/core/agent"
	"sdr_agent/pkg/core/icp"
	"sdr_agent/pkg/core/llm"
	"sdr_agent/pkg/core/outreach"
	"sdr_agent/pkg/core/pipeline"
	"sdr_agent/pkg/core/research"
	"sdr_agent/pkg/integrations"
	"sdr_agent/pkg/models"
)

// campaignFile is the on-disk campaign definition: targeting profile,
// value proposition and the prospect list.
type campaignFile struct {
	ValueProposition string `yaml:"value_proposition"`
	ICP              struct {
		Industry     string   `yaml:"industry"`
		MinEmployees int      `yaml:"min_employees"`
		MaxEmployees int      `yaml:"max_employees"`
		JobTitles    []string `yaml:"job_titles"`
		Geography    string   `yaml:"geography"`
		Technologies []string `yaml:"technologies"`
	} `yaml:"icp"`
	Prospects []pipeline.Prospect `yaml:"prospects"`
}

func loadCampaign(path string) (*campaignFile, *models.IdealCustomerProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read campaign file: %w", err)
	}
	var campaign campaignFile
	if err := yaml.Unmarshal(data, &campaign); err != nil {
		return nil, nil, fmt.Errorf("failed to parse campaign file: %w", err)
	}

	profile, err := models.NewIdealCustomerProfile(
		campaign.ICP.Industry,
		campaign.ICP.MinEmployees,
		campaign.ICP.MaxEmployees,
		campaign.ICP.JobTitles,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid ICP in campaign file: %w", err)
	}
	profile.Geography = campaign.ICP.Geography
	profile.Technologies = campaign.ICP.Technologies
	return &campaign, profile, nil
}

func main() {
	campaignPath := flag.String("campaign", "campaign.yaml", "campaign definition (ICP, value proposition, prospects)")
	agentsPath := flag.String("agents", "agents.yaml", "agent-to-provider routing file (optional)")
	crmType := flag.String("crm", "salesforce", "CRM backend: salesforce or hubspot")
	sendEmail := flag.Bool("send", false, "dispatch generated emails via SendGrid")
	jsonOut := flag.Bool("json", false, "print raw per-prospect results as JSON instead of the report")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, assuming environment variables are set.")
	}

	cfg := config.Load()
	if missing := cfg.MissingRequired(); len(missing) > 0 {
		log.Fatalf("Error: %v", &config.ConfigurationError{Missing: missing})
	}

	routing, err := agent.LoadConfig(*agentsPath)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	mgr := agent.NewManager(routing)
	mgr.Register("openai", &llm.OpenAIProvider{
		APIKey:  cfg.OpenAI.APIKey,
		Model:   cfg.OpenAI.Model,
		BaseURL: cfg.OpenAI.BaseURL,
	})

	campaign, profile, err := loadCampaign(*campaignPath)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	if len(campaign.Prospects) == 0 {
		log.Fatal("Error: campaign file lists no prospects")
	}

	var crm integrations.CRMSink
	switch *crmType {
	case "salesforce":
		crm = integrations.NewSalesforceClient(cfg.Salesforce)
	case "hubspot":
		crm = integrations.NewHubSpotClient(cfg.HubSpot)
	default:
		log.Fatalf("Error: unsupported CRM type %q", *crmType)
	}
	if !crm.Connect(context.Background()) {
		log.Printf("Warning: %s credentials missing, running in demo mode", crm.Name())
	}

	sdr := pipeline.NewWithDeps(
		research.NewCompanyResearcher(mgr.GetProvider("researcher")),
		icp.NewIdentifier(mgr.GetProvider("scorer")),
		outreach.NewGenerator(mgr.GetProvider("writer"), cfg.Agent.AgentName, cfg.Agent.CompanyName),
		integrations.NewMailer(cfg.Email),
		crm,
	)

	fmt.Printf("SDR Agent starting: %d prospects, provider=%s, crm=%s\n",
		len(campaign.Prospects), mgr.ActiveProvider(), crm.Name())

	results := sdr.ProcessProspectList(context.Background(), campaign.Prospects, profile, campaign.ValueProposition, pipeline.Options{
		SendEmail: *sendEmail,
	})

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			log.Fatalf("Error: %v", err)
		}
		return
	}
	fmt.Println(pipeline.GenerateCampaignReport(results))
}
