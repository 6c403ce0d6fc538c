// internal/errors/errors.go
package appErrors

import (
	"errors"
	"fmt"
)

// ErrNoSenderAvailable signals that every sender is over quota or cooling
// down. Transient: callers back off and retry, they do not fail the run.
var ErrNoSenderAvailable = errors.New("no eligible sender available")

// ErrCampaignNotFound is a sentinel error
type ErrCampaignNotFound struct {
	CampaignID string
}

func (e *ErrCampaignNotFound) Error() string {
	return fmt.Sprintf("campaign %s not found", e.CampaignID)
}

// Helper constructor
func NewCampaignNotFound(id string) error {
	return &ErrCampaignNotFound{CampaignID: id}
}

// ErrTemplateNotFound covers a campaign pointing at a missing template.
type ErrTemplateNotFound struct {
	TemplateID string
}

func (e *ErrTemplateNotFound) Error() string {
	return fmt.Sprintf("template %s not found", e.TemplateID)
}

func NewTemplateNotFound(id string) error {
	return &ErrTemplateNotFound{TemplateID: id}
}

// ErrDuplicateJob is raised when a second job row for the same
// (campaign, lead) pair is attempted. The unique constraint on
// campaign_jobs backs this.
type ErrDuplicateJob struct {
	CampaignID string
	LeadID     int
}

func (e *ErrDuplicateJob) Error() string {
	return fmt.Sprintf("job already exists for campaign %s lead %d", e.CampaignID, e.LeadID)
}

func NewDuplicateJob(campaignID string, leadID int) error {
	return &ErrDuplicateJob{CampaignID: campaignID, LeadID: leadID}
}

// ErrInvalidStatus is returned by control-surface transitions the campaign's
// current status does not allow.
type ErrInvalidStatus struct {
	CampaignID string
	Status     string
	Action     string
}

func (e *ErrInvalidStatus) Error() string {
	return fmt.Sprintf("cannot %s campaign %s in status %s", e.Action, e.CampaignID, e.Status)
}

func NewInvalidStatus(campaignID, status, action string) error {
	return &ErrInvalidStatus{CampaignID: campaignID, Status: status, Action: action}
}
