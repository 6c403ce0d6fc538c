// internal/model/campaign.go
package model

import "time"

type CampaignStatus string

const (
	CampaignStatusDraft                CampaignStatus = "DRAFT"
	CampaignStatusScheduled            CampaignStatus = "SCHEDULED"
	CampaignStatusActive               CampaignStatus = "ACTIVE"
	CampaignStatusAwaitingConfirmation CampaignStatus = "AWAITING_CONFIRMATION"
	CampaignStatusPaused               CampaignStatus = "PAUSED"
	CampaignStatusStopping             CampaignStatus = "STOPPING"
	CampaignStatusStopped              CampaignStatus = "STOPPED"
	CampaignStatusCompleted            CampaignStatus = "COMPLETED"
	CampaignStatusFailed               CampaignStatus = "FAILED"
)

// IsTerminal reports whether no engine run will pick the campaign up again
// without an operator restarting it.
func (s CampaignStatus) IsTerminal() bool {
	switch s {
	case CampaignStatusStopped, CampaignStatusCompleted, CampaignStatusFailed:
		return true
	}
	return false
}

// Startable statuses are the ones an operator may flip to ACTIVE.
func (s CampaignStatus) Startable() bool {
	switch s {
	case CampaignStatusDraft, CampaignStatusScheduled, CampaignStatusPaused, CampaignStatusStopped:
		return true
	}
	return false
}

type Campaign struct {
	ID                 string         `db:"id" json:"id"`
	Name               string         `db:"name" json:"name"`
	Status             CampaignStatus `db:"status" json:"status"`
	MarketRegion       string         `db:"market_region" json:"market_region,omitempty"`
	Quota              int            `db:"quota" json:"quota"` // max successful jobs, 0 = unbounded
	MinIntervalSeconds int            `db:"min_interval_seconds" json:"min_interval_seconds"`
	MaxIntervalSeconds int            `db:"max_interval_seconds" json:"max_interval_seconds"`
	DryRun             bool           `db:"dry_run" json:"dry_run"`
	EmailTemplateID    string         `db:"email_template_id" json:"email_template_id"`
	DocumentTemplateID string         `db:"document_template_id" json:"document_template_id,omitempty"`
	CreatedAt          time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt          *time.Time     `db:"updated_at" json:"updated_at,omitempty"`
}
