// internal/handler/engine_handler.go
package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/truesoulcoder/crm-admin-sub000/internal/errors"
	"github.com/truesoulcoder/crm-admin-sub000/internal/model"
	"github.com/truesoulcoder/crm-admin-sub000/internal/queue"
	"github.com/truesoulcoder/crm-admin-sub000/internal/repository"
)

// EngineHandler is the campaign control surface. Start and stop only flip
// the campaign status (and publish a run job); the long-running loop lives
// in the worker process, never inside a request handler.
type EngineHandler struct {
	Campaigns repository.CampaignRepositoryInterface
	Jobs      repository.JobRepositoryInterface
	Tasks     repository.TaskRepositoryInterface
	Senders   repository.SenderRepositoryInterface
	Events    repository.EventLogRepositoryInterface
	Queue     queue.Queue

	// StalledJobAge is the threshold for the reclaim endpoint.
	StalledJobAge time.Duration
}

func (h *EngineHandler) StartCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	campaign, err := h.Campaigns.GetByID(id)
	if err != nil {
		writeRepoError(w, err)
		return
	}

	if !campaign.Status.Startable() {
		http.Error(w, appErrors.NewInvalidStatus(id, string(campaign.Status), "start").Error(), http.StatusConflict)
		return
	}

	if err := h.Campaigns.UpdateStatus(id, model.CampaignStatusActive); err != nil {
		http.Error(w, "failed to update campaign status: "+err.Error(), http.StatusInternalServerError)
		return
	}
	h.Events.Log(model.EventTypeCampaignStatus, "Campaign started", nil, id)

	if err := h.Queue.Publish(queue.TopicCampaignRuns, queue.RunJob{CampaignID: id}); err != nil {
		// The status already says ACTIVE; surface the stuck state instead
		// of pretending the run is underway.
		log.Println("⚠️ failed to enqueue campaign run:", err)
		h.Events.Log(model.EventTypeError, "failed to enqueue campaign run",
			map[string]any{"error": err.Error()}, id)
		http.Error(w, "campaign marked ACTIVE but run could not be enqueued", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"id": id, "status": model.CampaignStatusActive})
}

func (h *EngineHandler) StopCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	campaign, err := h.Campaigns.GetByID(id)
	if err != nil {
		writeRepoError(w, err)
		return
	}

	if campaign.Status != model.CampaignStatusActive && campaign.Status != model.CampaignStatusAwaitingConfirmation {
		http.Error(w, appErrors.NewInvalidStatus(id, string(campaign.Status), "stop").Error(), http.StatusConflict)
		return
	}

	if err := h.Campaigns.UpdateStatus(id, model.CampaignStatusStopping); err != nil {
		http.Error(w, "failed to update campaign status: "+err.Error(), http.StatusInternalServerError)
		return
	}
	h.Events.Log(model.EventTypeCampaignStatus, "Campaign stopping", nil, id)

	writeJSON(w, http.StatusAccepted, map[string]any{"id": id, "status": model.CampaignStatusStopping})
}

// ReclaimStalledJobs marks PROCESSING jobs abandoned by a crashed run as
// FAILED. The leads stay burned; retrying one is an explicit operator
// action on the job row.
func (h *EngineHandler) ReclaimStalledJobs(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	olderThan := h.StalledJobAge
	if olderThan <= 0 {
		olderThan = 30 * time.Minute
	}
	if v := r.URL.Query().Get("older_than_minutes"); v != "" {
		if minutes, err := strconv.Atoi(v); err == nil && minutes > 0 {
			olderThan = time.Duration(minutes) * time.Minute
		}
	}

	n, err := h.Jobs.ReclaimStalled(id, olderThan)
	if err != nil {
		http.Error(w, "failed to reclaim jobs: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if n > 0 {
		h.Events.Log(model.EventTypeEngine, "stalled jobs reclaimed", map[string]any{"count": n}, id)
	}

	writeJSON(w, http.StatusOK, map[string]any{"campaign_id": id, "reclaimed": n})
}

func (h *EngineHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	jobs, err := h.Jobs.ListByCampaign(id)
	if err != nil {
		http.Error(w, "failed to fetch jobs: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": jobs})
}

func (h *EngineHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	tasks, err := h.Tasks.ListByJob(jobID)
	if err != nil {
		http.Error(w, "failed to fetch tasks: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": tasks})
}

// ListSenders shows the active pool with its quota and cooldown state, so
// an operator can see why a run is waiting.
func (h *EngineHandler) ListSenders(w http.ResponseWriter, r *http.Request) {
	senders, err := h.Senders.ListActive()
	if err != nil {
		http.Error(w, "failed to fetch senders: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": senders})
}

func (h *EngineHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	campaignID := r.URL.Query().Get("campaign_id")
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	events, err := h.Events.ListByCampaign(campaignID, limit)
	if err != nil {
		http.Error(w, "failed to fetch events: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": events})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeRepoError(w http.ResponseWriter, err error) {
	var notFound *appErrors.ErrCampaignNotFound
	if errors.As(err, &notFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
