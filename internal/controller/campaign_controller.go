// internal/controller/campaign_controller.go
package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/truesoulcoder/crm-admin-sub000/internal/errors"
	"github.com/truesoulcoder/crm-admin-sub000/internal/model"
	"github.com/truesoulcoder/crm-admin-sub000/internal/repository"
)

// CampaignController holds the CRM-facing campaign CRUD handlers.
type CampaignController struct {
	Campaigns repository.CampaignRepositoryInterface
	Jobs      repository.JobRepositoryInterface
}

func (c *CampaignController) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name               string `json:"name"`
		MarketRegion       string `json:"market_region"`
		Quota              int    `json:"quota"`
		MinIntervalSeconds int    `json:"min_interval_seconds"`
		MaxIntervalSeconds int    `json:"max_interval_seconds"`
		DryRun             bool   `json:"dry_run"`
		EmailTemplateID    string `json:"email_template_id"`
		DocumentTemplateID string `json:"document_template_id"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if payload.Name == "" || payload.EmailTemplateID == "" {
		http.Error(w, "name and email_template_id are required", http.StatusBadRequest)
		return
	}
	if payload.MaxIntervalSeconds < payload.MinIntervalSeconds {
		http.Error(w, "max_interval_seconds must be >= min_interval_seconds", http.StatusBadRequest)
		return
	}

	campaign := &model.Campaign{
		Name:               payload.Name,
		Status:             model.CampaignStatusDraft,
		MarketRegion:       payload.MarketRegion,
		Quota:              payload.Quota,
		MinIntervalSeconds: payload.MinIntervalSeconds,
		MaxIntervalSeconds: payload.MaxIntervalSeconds,
		DryRun:             payload.DryRun,
		EmailTemplateID:    payload.EmailTemplateID,
		DocumentTemplateID: payload.DocumentTemplateID,
	}

	if err := c.Campaigns.Create(campaign); err != nil {
		http.Error(w, "failed to create campaign: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(campaign)
}

func (c *CampaignController) ListCampaigns(w http.ResponseWriter, r *http.Request) {
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
	status := r.URL.Query().Get("status")

	campaigns, total, err := c.Campaigns.List((page-1)*pageSize, pageSize, status)
	if err != nil {
		http.Error(w, "failed to fetch campaigns: "+err.Error(), http.StatusInternalServerError)
		return
	}

	totalPages := (total + pageSize - 1) / pageSize
	response := map[string]interface{}{
		"data": campaigns,
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

// GetCampaign returns a campaign with its job ledger stats.
func (c *CampaignController) GetCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	campaign, err := c.Campaigns.GetByID(id)
	if err != nil {
		var notFound *appErrors.ErrCampaignNotFound
		if errors.As(err, &notFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, "failed to fetch campaign: "+err.Error(), http.StatusInternalServerError)
		return
	}

	stats, err := c.Jobs.Stats(id)
	if err != nil {
		http.Error(w, "failed to fetch campaign stats: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"campaign": campaign,
		"stats":    stats,
	})
}
