// internal/model/email_task.go
package model

import "time"

type TaskStatus string

const (
	TaskStatusSending      TaskStatus = "SENDING"
	TaskStatusSent         TaskStatus = "SENT"
	TaskStatusFailedToSend TaskStatus = "FAILED_TO_SEND"
)

// EmailTask records one contact-level send attempt inside a job. The row is
// inserted in SENDING state before the mailer is called so a crash mid-send
// still leaves an auditable trace.
type EmailTask struct {
	ID            string     `db:"id" json:"id"`
	CampaignJobID string     `db:"campaign_job_id" json:"campaign_job_id"`
	SenderID      string     `db:"sender_id" json:"sender_id"`
	ContactName   string     `db:"contact_name" json:"contact_name"`
	ContactEmail  string     `db:"contact_email" json:"contact_email"`
	Subject       string     `db:"subject" json:"subject"`
	Body          string     `db:"body" json:"body"`
	Status        TaskStatus `db:"status" json:"status"`
	MessageID     string     `db:"message_id" json:"message_id,omitempty"`
	Error         string     `db:"error" json:"error,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}
