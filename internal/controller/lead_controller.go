// internal/controller/lead_controller.go
package controller

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/truesoulcoder/crm-admin-sub000/internal/repository"
)

// LeadController exposes the ingested lead backlog to the CRM, read-only.
type LeadController struct {
	Leads repository.LeadRepositoryInterface
}

func (c *LeadController) ListLeads(w http.ResponseWriter, r *http.Request) {
	page := 1
	pageSize := 20

	if v := r.URL.Query().Get("page"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			page = p
		}
	}
	if v := r.URL.Query().Get("page_size"); v != "" {
		if ps, err := strconv.Atoi(v); err == nil && ps > 0 {
			pageSize = ps
		}
	}
	if pageSize > 100 {
		pageSize = 100
	}
	marketRegion := r.URL.Query().Get("market_region")

	leads, total, err := c.Leads.ListByMarketRegion(marketRegion, (page-1)*pageSize, pageSize)
	if err != nil {
		http.Error(w, "failed to fetch leads: "+err.Error(), http.StatusInternalServerError)
		return
	}

	totalPages := (total + pageSize - 1) / pageSize
	response := map[string]interface{}{
		"data": leads,
		"pagination": map[string]int{
			"page":        page,
			"page_size":   pageSize,
			"total_count": total,
			"total_pages": totalPages,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (c *LeadController) GetLead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid lead id", http.StatusBadRequest)
		return
	}

	lead, err := c.Leads.GetByID(id)
	if err != nil {
		http.Error(w, "failed to fetch lead: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if lead == nil {
		http.Error(w, "lead not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(lead)
}
