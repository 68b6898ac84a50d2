// Package leads implements lead tracking: the lead records themselves,
// dashboard queries, and stale-lead notifications.
package leads

import (
	"errors"
	"time"

	"github.com/leadflow/leadflow/pkg/stages"
)

// ErrNotFound indicates no lead exists with the given ID.
var ErrNotFound = errors.New("lead not found")

// Lead is a tracked sales contact. The stage is always embedded in API
// responses.
type Lead struct {
	ID               string       `json:"id"`
	UserName         string       `json:"userName"`
	CompanyName      string       `json:"companyName"`
	ContactNumber    string       `json:"contactNumber"`
	Email            string       `json:"email"`
	FirstContactedAt time.Time    `json:"firstContactedAt"`
	LastContactedAt  time.Time    `json:"lastContactedAt"`
	Comments         string       `json:"comments,omitempty"`
	Stage            stages.Stage `json:"stage"`
	CreatedAt        time.Time    `json:"createdAt"`
	UpdatedAt        time.Time    `json:"updatedAt"`
}

// Stats summarizes the pipeline for the dashboard.
type Stats struct {
	Total   int          `json:"total"`
	ByStage []StageCount `json:"byStage"`
}

// StageCount is the number of leads sitting in one stage.
type StageCount struct {
	Stage string `json:"stage"`
	Count int    `json:"count"`
}

// Notification flags a lead that has gone quiet for too long.
type Notification struct {
	ID        string    `json:"id"`
	LeadID    string    `json:"leadId"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}
