// internal/model/lead.go
package model

import "time"

// Lead is a normalized_leads row. Rows are immutable once ingested; the
// engine only reads them.
type Lead struct {
	ID                    int       `db:"id" json:"id"`
	MarketRegion          string    `db:"market_region" json:"market_region"`
	PropertyAddress       string    `db:"property_address" json:"property_address"`
	PropertyCity          string    `db:"property_city" json:"property_city"`
	PropertyState         string    `db:"property_state" json:"property_state"`
	PropertyPostalCode    string    `db:"property_postal_code" json:"property_postal_code"`
	PropertyType          string    `db:"property_type" json:"property_type"`
	Beds                  int       `db:"beds" json:"beds"`
	Baths                 int       `db:"baths" json:"baths"`
	SquareFootage         int       `db:"square_footage" json:"square_footage"`
	YearBuilt             int       `db:"year_built" json:"year_built"`
	AssessedTotal         float64   `db:"assessed_total" json:"assessed_total"`
	MLSCurrListPrice      float64   `db:"mls_curr_list_price" json:"mls_curr_list_price"`
	MLSCurrListAgentName  string    `db:"mls_curr_list_agent_name" json:"mls_curr_list_agent_name"`
	MLSCurrListAgentEmail string    `db:"mls_curr_list_agent_email" json:"mls_curr_list_agent_email"`
	Contact1Name          string    `db:"contact1_name" json:"contact1_name"`
	Contact1Email         string    `db:"contact1_email" json:"contact1_email"`
	Contact2Name          string    `db:"contact2_name" json:"contact2_name"`
	Contact2Email         string    `db:"contact2_email" json:"contact2_email"`
	Contact3Name          string    `db:"contact3_name" json:"contact3_name"`
	Contact3Email         string    `db:"contact3_email" json:"contact3_email"`
	CreatedAt             time.Time `db:"created_at" json:"created_at"`
}

// LeadContact is one name/email pair on a lead.
type LeadContact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Contacts returns the lead's contact pairs that carry a non-empty email,
// in slot order. At most three.
func (l *Lead) Contacts() []LeadContact {
	contacts := []LeadContact{}
	pairs := []LeadContact{
		{Name: l.Contact1Name, Email: l.Contact1Email},
		{Name: l.Contact2Name, Email: l.Contact2Email},
		{Name: l.Contact3Name, Email: l.Contact3Email},
	}
	for _, p := range pairs {
		if p.Email != "" {
			contacts = append(contacts, p)
		}
	}
	return contacts
}
