package integrations

import (
	"context"
	"fmt"

	"sdr_agent/pkg/models"
)

// CRMError wraps a vendor auth/network/logic failure with the vendor name
// attached. Recoverable per prospect: the orchestrator records it and
// continues the batch.
type CRMError struct {
	Vendor string
	Op     string
	Err    error
}

func (e *CRMError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Vendor, e.Op, e.Err)
}

func (e *CRMError) Unwrap() error { return e.Err }

// CRMSink is the capability a CRM vendor must provide. One implementation
// per vendor, selected by configuration at construction time, so the
// orchestrator never branches on vendor name.
type CRMSink interface {
	Name() string
	// Connect prepares the vendor session. False means demo mode: calls
	// log what they would do and return demo identifiers.
	Connect(ctx context.Context) bool
	UpsertLead(ctx context.Context, contact *models.Contact, company *models.Company) (*models.CRMActivity, error)
	LogActivity(ctx context.Context, activity *models.CRMActivity) error
	SearchContact(ctx context.Context, email string) (map[string]interface{}, error)
}
