// internal/repository/task_repository.go
package repository

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/truesoulcoder/crm-admin-sub000/internal/model"
)

type TaskRepositoryInterface interface {
	Create(t *model.EmailTask) error
	Update(taskID string, status model.TaskStatus, messageID, errMsg string) error
	ListByJob(jobID string) ([]*model.EmailTask, error)
}

type TaskRepository struct {
	DB *sql.DB
}

// Create inserts the task row in SENDING state before the send attempt.
func (r *TaskRepository) Create(t *model.EmailTask) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = model.TaskStatusSending
	}
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now

	query := `
        INSERT INTO email_tasks
            (id, campaign_job_id, sender_id, contact_name, contact_email,
             subject, body, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `
	_, err := r.DB.Exec(query,
		t.ID, t.CampaignJobID, t.SenderID, t.ContactName, t.ContactEmail,
		t.Subject, t.Body, t.Status, t.CreatedAt, t.UpdatedAt,
	)
	return err
}

func (r *TaskRepository) Update(taskID string, status model.TaskStatus, messageID, errMsg string) error {
	query := `
        UPDATE email_tasks
        SET status = $1, message_id = $2, error = $3, updated_at = NOW()
        WHERE id = $4
    `
	_, err := r.DB.Exec(query, status, messageID, errMsg, taskID)
	return err
}

func (r *TaskRepository) ListByJob(jobID string) ([]*model.EmailTask, error) {
	query := `
        SELECT id, campaign_job_id, sender_id, contact_name, contact_email,
               subject, body, status, message_id, error, created_at, updated_at
        FROM email_tasks
        WHERE campaign_job_id = $1
        ORDER BY created_at ASC
    `
	rows, err := r.DB.Query(query, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []*model.EmailTask{}
	for rows.Next() {
		t := &model.EmailTask{}
		if err := rows.Scan(
			&t.ID, &t.CampaignJobID, &t.SenderID, &t.ContactName, &t.ContactEmail,
			&t.Subject, &t.Body, &t.Status, &t.MessageID, &t.Error,
			&t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

var _ TaskRepositoryInterface = (*TaskRepository)(nil)
