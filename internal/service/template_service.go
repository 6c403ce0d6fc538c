// internal/service/template_service.go
package service

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/truesoulcoder/crm-admin-sub000/internal/model"
)

var placeholderRe = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}`)

// RenderTemplate replaces every {{key}} placeholder with the stringified
// value from context. Absent or nil keys render as the empty string. The
// function is pure: identical inputs always produce identical output, which
// the at-most-once retry model relies on.
func RenderTemplate(template string, context map[string]any) string {
	return placeholderRe.ReplaceAllStringFunc(template, func(match string) string {
		key := placeholderRe.FindStringSubmatch(match)[1]
		value, ok := context[key]
		if !ok || value == nil {
			return ""
		}
		switch v := value.(type) {
		case time.Time:
			return v.Format("1/2/2006")
		case string:
			return v
		case float64:
			// Whole-dollar figures render without a trailing .000000.
			return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
		default:
			return fmt.Sprint(v)
		}
	})
}

// LeadContext builds the personalization context from a lead's fields. The
// engine adds contact_name/contact_email per fan-out target on top of this.
func LeadContext(l *model.Lead) map[string]any {
	return map[string]any{
		"lead_id":                   l.ID,
		"market_region":             l.MarketRegion,
		"property_address":          l.PropertyAddress,
		"property_city":             l.PropertyCity,
		"property_state":            l.PropertyState,
		"property_postal_code":      l.PropertyPostalCode,
		"property_type":             l.PropertyType,
		"beds":                      l.Beds,
		"baths":                     l.Baths,
		"square_footage":            l.SquareFootage,
		"year_built":                l.YearBuilt,
		"assessed_total":            l.AssessedTotal,
		"mls_curr_list_price":       l.MLSCurrListPrice,
		"mls_curr_list_agent_name":  l.MLSCurrListAgentName,
		"mls_curr_list_agent_email": l.MLSCurrListAgentEmail,
		"current_date":              time.Now(),
	}
}
