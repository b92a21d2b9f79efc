// Package store persists valuation records, captured leads, and page views
// behind a driver-agnostic interface with SQLite and Postgres backends.
package store

import (
	"context"
	"time"

	"github.com/sells-group/valuation-api/internal/model"
	"github.com/sells-group/valuation-api/internal/valuation"
)

// LeadFilter specifies criteria for listing leads.
type LeadFilter struct {
	Status model.LeadStatus `json:"status,omitempty"`
	Limit  int              `json:"limit,omitempty"`
	Offset int              `json:"offset,omitempty"`
}

// ValuationFilter specifies criteria for listing valuation records.
type ValuationFilter struct {
	Category string `json:"category,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}

// Store defines the persistence interface for the valuation service.
type Store interface {
	// Valuations
	CreateValuation(ctx context.Context, in valuation.Input, res valuation.Result) (*model.ValuationRecord, error)
	GetValuation(ctx context.Context, id string) (*model.ValuationRecord, error)
	ListValuations(ctx context.Context, filter ValuationFilter) ([]model.ValuationRecord, error)
	UpdateValuationResult(ctx context.Context, id string, res valuation.Result) error
	CountValuations(ctx context.Context, since time.Time) (int, error)

	// Leads
	CreateLead(ctx context.Context, email, name, valuationID string) (*model.Lead, error)
	ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error)
	MarkLeadSynced(ctx context.Context, id, salesforceID string) error
	MarkLeadSyncFailed(ctx context.Context, id string) error
	CountLeads(ctx context.Context, since time.Time) (int, error)

	// Page views
	RecordPageView(ctx context.Context, path, referrer, sessionID string) (*model.PageView, error)
	CountPageViews(ctx context.Context, since time.Time) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
