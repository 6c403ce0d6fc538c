// internal/repository/sender_repository.go
package repository

import (
	"database/sql"
	"time"

	"github.com/truesoulcoder/crm-admin-sub000/internal/model"
)

type SenderRepositoryInterface interface {
	NextEligible(now time.Time) (*model.Sender, error)
	Reserve(id string) (bool, error)
	Release(id string) error
	SetCooldown(id string, until time.Time) error
	ListActive() ([]*model.Sender, error)
}

type SenderRepository struct {
	DB *sql.DB
}

const senderColumns = `id, name, email, is_active, daily_quota, sent_today,
    total_sent, can_send_after, created_at, updated_at`

func scanSender(row *sql.Row) (*model.Sender, error) {
	var s model.Sender
	err := row.Scan(
		&s.ID, &s.Name, &s.Email, &s.IsActive, &s.DailyQuota,
		&s.SentToday, &s.TotalSent, &s.CanSendAfter,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// NextEligible returns the active sender with the lowest total_sent that is
// under its daily quota and out of cooldown, or nil when none qualifies.
// The email tiebreak keeps the selection deterministic.
func (r *SenderRepository) NextEligible(now time.Time) (*model.Sender, error) {
	query := `
        SELECT ` + senderColumns + `
        FROM senders
        WHERE is_active
          AND sent_today < daily_quota
          AND (can_send_after IS NULL OR can_send_after <= $1)
        ORDER BY total_sent ASC, email ASC
        LIMIT 1
    `
	return scanSender(r.DB.QueryRow(query, now))
}

// Reserve atomically takes one unit of the sender's daily quota. The
// conditional WHERE makes two racing reservations for the last unit resolve
// to exactly one winner; the loser sees false and reselects.
func (r *SenderRepository) Reserve(id string) (bool, error) {
	res, err := r.DB.Exec(`
        UPDATE senders
        SET sent_today = sent_today + 1, total_sent = total_sent + 1, updated_at = NOW()
        WHERE id = $1 AND sent_today < daily_quota
    `, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Release gives a reserved unit back after a send that did not go through,
// so failed sends do not consume quota.
func (r *SenderRepository) Release(id string) error {
	_, err := r.DB.Exec(`
        UPDATE senders
        SET sent_today = GREATEST(sent_today - 1, 0),
            total_sent = GREATEST(total_sent - 1, 0),
            updated_at = NOW()
        WHERE id = $1
    `, id)
	return err
}

func (r *SenderRepository) SetCooldown(id string, until time.Time) error {
	_, err := r.DB.Exec(`
        UPDATE senders SET can_send_after = $1, updated_at = NOW() WHERE id = $2
    `, until, id)
	return err
}

func (r *SenderRepository) ListActive() ([]*model.Sender, error) {
	query := `SELECT ` + senderColumns + ` FROM senders WHERE is_active ORDER BY email ASC`
	rows, err := r.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	senders := []*model.Sender{}
	for rows.Next() {
		s := &model.Sender{}
		if err := rows.Scan(
			&s.ID, &s.Name, &s.Email, &s.IsActive, &s.DailyQuota,
			&s.SentToday, &s.TotalSent, &s.CanSendAfter,
			&s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		senders = append(senders, s)
	}
	return senders, rows.Err()
}

var _ SenderRepositoryInterface = (*SenderRepository)(nil)
