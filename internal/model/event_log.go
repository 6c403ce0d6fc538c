// internal/model/event_log.go
package model

import (
	"encoding/json"
	"time"
)

const (
	EventTypeCampaignStatus = "CAMPAIGN_STATUS"
	EventTypeEmailSent      = "EMAIL_SENT"
	EventTypeEngine         = "ENGINE"
	EventTypeError          = "ERROR"
)

// SystemEventLog is a row in the durable operator audit trail.
type SystemEventLog struct {
	ID         string          `db:"id" json:"id"`
	EventType  string          `db:"event_type" json:"event_type"`
	Message    string          `db:"message" json:"message"`
	Details    json.RawMessage `db:"details" json:"details,omitempty"`
	CampaignID string          `db:"campaign_id" json:"campaign_id,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}
