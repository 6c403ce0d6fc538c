// internal/model/campaign_job.go
package model

import "time"

type JobStatus string

const (
	JobStatusProcessing          JobStatus = "PROCESSING"
	JobStatusCompletedSuccess    JobStatus = "COMPLETED_SUCCESS"
	JobStatusCompletedWithErrors JobStatus = "COMPLETED_WITH_ERRORS"
	JobStatusFailed              JobStatus = "FAILED"
)

// CampaignJob is the ledger row recording that a lead was attempted for a
// campaign. One row per (campaign, lead), enforced by a unique constraint;
// the set of lead ids with a job row defines the "already attempted" set.
type CampaignJob struct {
	ID          string     `db:"id" json:"id"`
	CampaignID  string     `db:"campaign_id" json:"campaign_id"`
	LeadID      int        `db:"lead_id" json:"lead_id"`
	Status      JobStatus  `db:"status" json:"status"`
	StartedAt   time.Time  `db:"started_at" json:"started_at"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	Error       string     `db:"error" json:"error,omitempty"`
}
