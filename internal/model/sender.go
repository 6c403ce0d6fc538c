// internal/model/sender.go
package model

import "time"

// Sender is a sending identity (an impersonated mailbox) with its quota
// bookkeeping. sent_today is reset by the external daily rollover; the
// engine only moves it between 0 and daily_quota through the conditional
// reserve in the sender repository.
type Sender struct {
	ID           string     `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	Email        string     `db:"email" json:"email"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	DailyQuota   int        `db:"daily_quota" json:"daily_quota"`
	SentToday    int        `db:"sent_today" json:"sent_today"`
	TotalSent    int        `db:"total_sent" json:"total_sent"`
	CanSendAfter *time.Time `db:"can_send_after" json:"can_send_after,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}
