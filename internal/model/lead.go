// Package model holds the persisted entities: captured leads, page views,
// and stored valuation records.
package model

import "time"

// LeadStatus tracks CRM sync progress for a captured lead.
type LeadStatus string

const (
	LeadStatusNew    LeadStatus = "new"
	LeadStatusSynced LeadStatus = "synced"
	LeadStatusFailed LeadStatus = "failed"
)

// Lead is one email capture from the detailed-analysis gate.
type Lead struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name,omitempty"`
	ValuationID  string     `json:"valuation_id,omitempty"`
	Status       LeadStatus `json:"status"`
	SalesforceID string     `json:"salesforce_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
