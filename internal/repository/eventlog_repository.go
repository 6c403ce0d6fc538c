// internal/repository/eventlog_repository.go
package repository

import (
	"database/sql"
	"encoding/json"
	"log"

	"github.com/google/uuid"

	"github.com/truesoulcoder/crm-admin-sub000/internal/model"
)

type EventLogRepositoryInterface interface {
	Log(eventType, message string, details map[string]any, campaignID string)
	ListByCampaign(campaignID string, limit int) ([]*model.SystemEventLog, error)
}

type EventLogRepository struct {
	DB *sql.DB
}

// Log writes a system event row. The audit trail is best-effort: a failed
// insert is logged and swallowed so observability problems never abort a
// campaign run.
func (r *EventLogRepository) Log(eventType, message string, details map[string]any, campaignID string) {
	var detailsJSON any
	if len(details) > 0 {
		b, err := json.Marshal(details)
		if err == nil {
			detailsJSON = b
		}
	}
	var campaign any
	if campaignID != "" {
		campaign = campaignID
	}

	_, err := r.DB.Exec(`
        INSERT INTO system_event_logs (id, event_type, message, details, campaign_id)
        VALUES ($1, $2, $3, $4, $5)
    `, uuid.NewString(), eventType, message, detailsJSON, campaign)
	if err != nil {
		log.Println("⚠️ failed to write system event log:", err)
	}
}

func (r *EventLogRepository) ListByCampaign(campaignID string, limit int) ([]*model.SystemEventLog, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
        SELECT id, event_type, message, COALESCE(details, 'null'::jsonb),
               COALESCE(campaign_id::text, ''), created_at
        FROM system_event_logs
        WHERE ($1 = '' OR campaign_id::text = $1)
        ORDER BY created_at DESC
        LIMIT $2
    `
	rows, err := r.DB.Query(query, campaignID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []*model.SystemEventLog{}
	for rows.Next() {
		e := &model.SystemEventLog{}
		if err := rows.Scan(&e.ID, &e.EventType, &e.Message, &e.Details, &e.CampaignID, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

var _ EventLogRepositoryInterface = (*EventLogRepository)(nil)
