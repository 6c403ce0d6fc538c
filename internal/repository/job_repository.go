// internal/repository/job_repository.go
package repository

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	appErrors "github.com/truesoulcoder/crm-admin-sub000/internal/errors"
	"github.com/truesoulcoder/crm-admin-sub000/internal/model"
)

type JobRepositoryInterface interface {
	Create(campaignID string, leadID int) (*model.CampaignJob, error)
	Complete(jobID string, status model.JobStatus, errMsg string) error
	CountSuccessful(campaignID string) (int, error)
	ListByCampaign(campaignID string) ([]*model.CampaignJob, error)
	Stats(campaignID string) (map[string]int, error)
	ReclaimStalled(campaignID string, olderThan time.Duration) (int, error)
}

type JobRepository struct {
	DB *sql.DB
}

// Create inserts the PROCESSING ledger row for (campaign, lead) before any
// send attempt. The unique constraint makes a second row for the same pair
// impossible; that case surfaces as ErrDuplicateJob.
func (r *JobRepository) Create(campaignID string, leadID int) (*model.CampaignJob, error) {
	job := &model.CampaignJob{
		ID:         uuid.NewString(),
		CampaignID: campaignID,
		LeadID:     leadID,
		Status:     model.JobStatusProcessing,
		StartedAt:  time.Now(),
	}

	query := `
        INSERT INTO campaign_jobs (id, campaign_id, lead_id, status, started_at)
        VALUES ($1, $2, $3, $4, $5)
    `
	_, err := r.DB.Exec(query, job.ID, job.CampaignID, job.LeadID, job.Status, job.StartedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, appErrors.NewDuplicateJob(campaignID, leadID)
		}
		return nil, err
	}
	return job, nil
}

func (r *JobRepository) Complete(jobID string, status model.JobStatus, errMsg string) error {
	query := `
        UPDATE campaign_jobs
        SET status = $1, error = $2, completed_at = NOW()
        WHERE id = $3
    `
	_, err := r.DB.Exec(query, status, errMsg, jobID)
	return err
}

// CountSuccessful counts COMPLETED_SUCCESS jobs only; partial and failed
// attempts do not consume campaign quota.
func (r *JobRepository) CountSuccessful(campaignID string) (int, error) {
	var count int
	err := r.DB.QueryRow(`
        SELECT COUNT(*) FROM campaign_jobs
        WHERE campaign_id = $1 AND status = $2
    `, campaignID, model.JobStatusCompletedSuccess).Scan(&count)
	return count, err
}

func (r *JobRepository) ListByCampaign(campaignID string) ([]*model.CampaignJob, error) {
	query := `
        SELECT id, campaign_id, lead_id, status, started_at, completed_at, error
        FROM campaign_jobs
        WHERE campaign_id = $1
        ORDER BY started_at ASC
    `
	rows, err := r.DB.Query(query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := []*model.CampaignJob{}
	for rows.Next() {
		j := &model.CampaignJob{}
		if err := rows.Scan(&j.ID, &j.CampaignID, &j.LeadID, &j.Status, &j.StartedAt, &j.CompletedAt, &j.Error); err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (r *JobRepository) Stats(campaignID string) (map[string]int, error) {
	query := `SELECT status, COUNT(*) FROM campaign_jobs WHERE campaign_id=$1 GROUP BY status`
	rows, err := r.DB.Query(query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := map[string]int{
		"total":                 0,
		"processing":            0,
		"completed_success":     0,
		"completed_with_errors": 0,
		"failed":                0,
	}
	keys := map[model.JobStatus]string{
		model.JobStatusProcessing:          "processing",
		model.JobStatusCompletedSuccess:    "completed_success",
		model.JobStatusCompletedWithErrors: "completed_with_errors",
		model.JobStatusFailed:              "failed",
	}

	for rows.Next() {
		var status model.JobStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		if key, ok := keys[status]; ok {
			stats[key] = count
		}
		stats["total"] += count
	}
	return stats, rows.Err()
}

// ReclaimStalled marks PROCESSING jobs older than the threshold as FAILED.
// A crashed run leaves such rows behind; marking them terminal keeps the
// audit trail and keeps the leads burned (at-most-once). Operators who want
// a lead retried delete its job row explicitly.
func (r *JobRepository) ReclaimStalled(campaignID string, olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)
	res, err := r.DB.Exec(`
        UPDATE campaign_jobs
        SET status = $1, error = 'reclaimed: run did not complete this job', completed_at = NOW()
        WHERE campaign_id = $2 AND status = $3 AND started_at < $4
    `, model.JobStatusFailed, campaignID, model.JobStatusProcessing, cutoff)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

var _ JobRepositoryInterface = (*JobRepository)(nil)
