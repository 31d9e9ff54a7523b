package pipeline

import (
	"fmt"
	"strings"
	"time"
)

// GenerateCampaignReport is a pure aggregation over prospect results:
// counts, average fit score, and a per-prospect summary block.
func GenerateCampaignReport(results []*ProspectResult) string {
	totalProspects := len(results)
	processed := 0
	skipped := 0
	totalContacts := 0
	totalMessages := 0
	totalSent := 0
	scoreSum := 0

	for _, r := range results {
		if r.Skipped {
			skipped++
		} else {
			processed++
		}
		totalContacts += r.ContactsIdentified
		totalMessages += r.MessagesGenerated
		totalSent += r.EmailsSent
		scoreSum += r.FitScore
	}

	avgScore := 0.0
	if totalProspects > 0 {
		avgScore = float64(scoreSum) / float64(totalProspects)
	}

	var b strings.Builder
	b.WriteString("SDR Campaign Report\n")
	b.WriteString("===================\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", time.Now().Format("2006-01-02 15:04:05"))

	b.WriteString("Summary:\n")
	b.WriteString("--------\n")
	fmt.Fprintf(&b, "Total Prospects: %d\n", totalProspects)
	fmt.Fprintf(&b, "Processed: %d\n", processed)
	fmt.Fprintf(&b, "Skipped (Low ICP Fit): %d\n", skipped)
	fmt.Fprintf(&b, "Average Fit Score: %.2f\n", avgScore)
	fmt.Fprintf(&b, "Total Contacts Identified: %d\n", totalContacts)
	fmt.Fprintf(&b, "Total Messages Generated: %d\n", totalMessages)
	fmt.Fprintf(&b, "Total Emails Sent: %d\n", totalSent)

	b.WriteString("\nProspect Details:\n")
	b.WriteString("-----------------\n")
	for _, r := range results {
		fmt.Fprintf(&b, "\n%s:\n", r.Company)
		fmt.Fprintf(&b, "  Fit Score: %d\n", r.FitScore)
		fmt.Fprintf(&b, "  Contacts: %d\n", r.ContactsIdentified)
		fmt.Fprintf(&b, "  Messages: %d\n", r.MessagesGenerated)
		switch {
		case r.Skipped:
			fmt.Fprintf(&b, "  Status: SKIPPED - %s\n", r.SkipReason)
		case len(r.Errors) > 0:
			fmt.Fprintf(&b, "  Status: COMPLETED WITH ERRORS (%s)\n", strings.Join(r.Errors, "; "))
		default:
			b.WriteString("  Status: PROCESSED\n")
		}
	}

	return b.String()
}
