// internal/repository/campaign_repository.go
package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/truesoulcoder/crm-admin-sub000/internal/errors"
	"github.com/truesoulcoder/crm-admin-sub000/internal/model"
)

type CampaignRepositoryInterface interface {
	Create(c *model.Campaign) error
	GetByID(id string) (*model.Campaign, error)
	GetStatus(id string) (model.CampaignStatus, error)
	UpdateStatus(id string, status model.CampaignStatus) error
	List(offset, limit int, status string) ([]*model.Campaign, int, error)
}

type CampaignRepository struct {
	DB *sql.DB
}

const campaignColumns = `id, name, status, market_region, quota,
    min_interval_seconds, max_interval_seconds, dry_run,
    email_template_id, COALESCE(document_template_id::text, ''),
    created_at, updated_at`

func (r *CampaignRepository) Create(c *model.Campaign) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = model.CampaignStatusDraft
	}
	c.CreatedAt = time.Now()

	var docTemplate any
	if c.DocumentTemplateID != "" {
		docTemplate = c.DocumentTemplateID
	}

	query := `
        INSERT INTO campaigns
            (id, name, status, market_region, quota, min_interval_seconds,
             max_interval_seconds, dry_run, email_template_id,
             document_template_id, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `
	_, err := r.DB.Exec(query,
		c.ID, c.Name, c.Status, c.MarketRegion, c.Quota,
		c.MinIntervalSeconds, c.MaxIntervalSeconds, c.DryRun,
		c.EmailTemplateID, docTemplate, c.CreatedAt,
	)
	return err
}

func (r *CampaignRepository) GetByID(id string) (*model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1`
	var c model.Campaign
	err := r.DB.QueryRow(query, id).Scan(
		&c.ID, &c.Name, &c.Status, &c.MarketRegion, &c.Quota,
		&c.MinIntervalSeconds, &c.MaxIntervalSeconds, &c.DryRun,
		&c.EmailTemplateID, &c.DocumentTemplateID,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewCampaignNotFound(id)
		}
		return nil, err
	}
	return &c, nil
}

// GetStatus reads only the status column; the engine polls this at the top
// of every loop iteration.
func (r *CampaignRepository) GetStatus(id string) (model.CampaignStatus, error) {
	var status model.CampaignStatus
	err := r.DB.QueryRow(`SELECT status FROM campaigns WHERE id = $1`, id).Scan(&status)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", appErrors.NewCampaignNotFound(id)
		}
		return "", err
	}
	return status, nil
}

func (r *CampaignRepository) UpdateStatus(id string, status model.CampaignStatus) error {
	query := `UPDATE campaigns SET status = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.DB.Exec(query, status, id)
	return err
}

func (r *CampaignRepository) List(offset, limit int, status string) ([]*model.Campaign, int, error) {
	campaigns := []*model.Campaign{}
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if status != "" {
		query += fmt.Sprintf(" AND status=$%d", argPos)
		args = append(args, status)
		argPos++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	for rows.Next() {
		c := &model.Campaign{}
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Status, &c.MarketRegion, &c.Quota,
			&c.MinIntervalSeconds, &c.MaxIntervalSeconds, &c.DryRun,
			&c.EmailTemplateID, &c.DocumentTemplateID,
			&c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		campaigns = append(campaigns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	countQuery := `SELECT COUNT(*) FROM campaigns WHERE 1=1`
	argsCount := []interface{}{}
	if status != "" {
		countQuery += " AND status=$1"
		argsCount = append(argsCount, status)
	}

	var total int
	if err := r.DB.QueryRow(countQuery, argsCount...).Scan(&total); err != nil {
		return nil, 0, err
	}

	return campaigns, total, nil
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
