// internal/repository/lead_repository.go
package repository

import (
	"database/sql"

	"github.com/truesoulcoder/crm-admin-sub000/internal/model"
)

// LeadRepositoryInterface defines the lead reads the engine and CRM need.
type LeadRepositoryInterface interface {
	GetByID(id int) (*model.Lead, error)
	NextUnprocessed(campaignID, marketRegion string) (*model.Lead, error)
	ListByMarketRegion(marketRegion string, offset, limit int) ([]*model.Lead, int, error)
}

type LeadRepository struct {
	DB *sql.DB
}

const leadColumns = `id, market_region, property_address, property_city,
    property_state, property_postal_code, property_type, beds, baths,
    square_footage, year_built, assessed_total, mls_curr_list_price,
    mls_curr_list_agent_name, mls_curr_list_agent_email,
    contact1_name, contact1_email, contact2_name, contact2_email,
    contact3_name, contact3_email, created_at`

func scanLead(row *sql.Row) (*model.Lead, error) {
	var l model.Lead
	err := row.Scan(
		&l.ID, &l.MarketRegion, &l.PropertyAddress, &l.PropertyCity,
		&l.PropertyState, &l.PropertyPostalCode, &l.PropertyType,
		&l.Beds, &l.Baths, &l.SquareFootage, &l.YearBuilt,
		&l.AssessedTotal, &l.MLSCurrListPrice,
		&l.MLSCurrListAgentName, &l.MLSCurrListAgentEmail,
		&l.Contact1Name, &l.Contact1Email,
		&l.Contact2Name, &l.Contact2Email,
		&l.Contact3Name, &l.Contact3Email,
		&l.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

func (r *LeadRepository) GetByID(id int) (*model.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM normalized_leads WHERE id = $1`
	return scanLead(r.DB.QueryRow(query, id))
}

// NextUnprocessed returns the lowest-id lead in the campaign's market region
// that has no campaign_jobs row yet, or nil when the backlog is exhausted.
// The already-attempted set is filtered server-side, and the ascending id
// order makes the next-lead choice deterministic across restarts.
func (r *LeadRepository) NextUnprocessed(campaignID, marketRegion string) (*model.Lead, error) {
	query := `
        SELECT ` + leadColumns + `
        FROM normalized_leads
        WHERE ($2 = '' OR market_region = $2)
          AND id NOT IN (SELECT lead_id FROM campaign_jobs WHERE campaign_id = $1)
        ORDER BY id ASC
        LIMIT 1
    `
	return scanLead(r.DB.QueryRow(query, campaignID, marketRegion))
}

// ListByMarketRegion pages through the lead backlog for the CRM view. An
// empty region lists every lead.
func (r *LeadRepository) ListByMarketRegion(marketRegion string, offset, limit int) ([]*model.Lead, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM normalized_leads WHERE ($1 = '' OR market_region = $1)`
	if err := r.DB.QueryRow(countQuery, marketRegion).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
        SELECT ` + leadColumns + `
        FROM normalized_leads
        WHERE ($1 = '' OR market_region = $1)
        ORDER BY id ASC
        OFFSET $2 LIMIT $3
    `
	rows, err := r.DB.Query(query, marketRegion, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	leads := []*model.Lead{}
	for rows.Next() {
		var l model.Lead
		err := rows.Scan(
			&l.ID, &l.MarketRegion, &l.PropertyAddress, &l.PropertyCity,
			&l.PropertyState, &l.PropertyPostalCode, &l.PropertyType,
			&l.Beds, &l.Baths, &l.SquareFootage, &l.YearBuilt,
			&l.AssessedTotal, &l.MLSCurrListPrice,
			&l.MLSCurrListAgentName, &l.MLSCurrListAgentEmail,
			&l.Contact1Name, &l.Contact1Email,
			&l.Contact2Name, &l.Contact2Email,
			&l.Contact3Name, &l.Contact3Email,
			&l.CreatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		leads = append(leads, &l)
	}
	return leads, total, rows.Err()
}

var _ LeadRepositoryInterface = (*LeadRepository)(nil)
