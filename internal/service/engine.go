// internal/service/engine.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	appErrors "github.com/truesoulcoder/crm-admin-sub000/internal/errors"
	"github.com/truesoulcoder/crm-admin-sub000/internal/mailer"
	"github.com/truesoulcoder/crm-admin-sub000/internal/model"
	"github.com/truesoulcoder/crm-admin-sub000/internal/pdf"
)

// Narrow store interfaces the engine consumes. The repository package
// satisfies all of them; tests supply in-memory fakes.

type CampaignStore interface {
	GetByID(id string) (*model.Campaign, error)
	GetStatus(id string) (model.CampaignStatus, error)
	UpdateStatus(id string, status model.CampaignStatus) error
}

type TemplateStore interface {
	GetByID(id string) (*model.Template, error)
}

type LeadStore interface {
	NextUnprocessed(campaignID, marketRegion string) (*model.Lead, error)
}

type JobStore interface {
	Create(campaignID string, leadID int) (*model.CampaignJob, error)
	Complete(jobID string, status model.JobStatus, errMsg string) error
	CountSuccessful(campaignID string) (int, error)
}

type TaskStore interface {
	Create(t *model.EmailTask) error
	Update(taskID string, status model.TaskStatus, messageID, errMsg string) error
}

type EventLogger interface {
	Log(eventType, message string, details map[string]any, campaignID string)
}

// Engine runs one campaign at a time: a single sequential loop that picks
// the next unattempted lead, writes the ledger row, fans out to the lead's
// contacts through the sender pool, and records the outcome. Stop requests
// and quota are re-checked at the top of every iteration.
type Engine struct {
	Campaigns CampaignStore
	Templates TemplateStore
	Leads     LeadStore
	Jobs      JobStore
	Tasks     TaskStore
	Pool      *SenderPool
	PDF       pdf.Generator
	Mailer    mailer.Mailer
	Events    EventLogger

	// SafetyMode reroutes every real recipient to SafetyEmail.
	SafetyMode  bool
	SafetyEmail string

	// NoSenderBackoff is the sleep between pool re-checks when every sender
	// is over quota or cooling down; NoSenderStall bounds the total wait.
	NoSenderBackoff time.Duration
	NoSenderStall   time.Duration

	// Sleep is time.Sleep unless a test swaps it out.
	Sleep func(time.Duration)
}

func (e *Engine) applyDefaults() {
	if e.Sleep == nil {
		e.Sleep = time.Sleep
	}
	if e.NoSenderBackoff <= 0 {
		e.NoSenderBackoff = time.Second
	}
	if e.NoSenderStall <= 0 {
		e.NoSenderStall = 15 * time.Minute
	}
}

// Run processes the campaign until a terminal condition: operator stop,
// quota reached, or lead exhaustion. Infrastructure errors propagate out
// with the campaign left ACTIVE so a restarted run can resume; the ledger
// guarantees no lead is attempted twice.
func (e *Engine) Run(ctx context.Context, campaignID string) error {
	e.applyDefaults()

	campaign, err := e.Campaigns.GetByID(campaignID)
	if err != nil {
		var notFound *appErrors.ErrCampaignNotFound
		if errors.As(err, &notFound) {
			e.Events.Log(model.EventTypeError, "campaign not found", nil, campaignID)
		}
		return err
	}

	emailTpl, err := e.Templates.GetByID(campaign.EmailTemplateID)
	if err != nil {
		e.fail(campaignID, "email template unavailable", err)
		return err
	}
	var docTpl *model.Template
	if campaign.DocumentTemplateID != "" {
		docTpl, err = e.Templates.GetByID(campaign.DocumentTemplateID)
		if err != nil {
			e.fail(campaignID, "document template unavailable", err)
			return err
		}
	}

	e.Events.Log(model.EventTypeEngine, "campaign run started",
		map[string]any{"name": campaign.Name, "quota": campaign.Quota}, campaignID)

	var stalled time.Duration

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		// Stop check first: an operator stop takes effect within one
		// lead-processing unit.
		status, err := e.Campaigns.GetStatus(campaignID)
		if err != nil {
			return err
		}
		if status == model.CampaignStatusStopping {
			return e.transition(campaignID, model.CampaignStatusStopped, "Campaign stopped")
		}

		if campaign.Quota > 0 {
			n, err := e.Jobs.CountSuccessful(campaignID)
			if err != nil {
				return err
			}
			if n >= campaign.Quota {
				return e.transition(campaignID, model.CampaignStatusCompleted, "Campaign completed (quota reached)")
			}
		}

		// Availability gate before the ledger write: a lead must not be
		// burned while the whole pool is over quota or cooling down. The
		// backoff is bounded sleep, never a hot spin, and the stop check
		// runs again after each sleep.
		available, err := e.Pool.HasEligible()
		if err != nil {
			return err
		}
		if !available {
			stalled += e.NoSenderBackoff
			if stalled >= e.NoSenderStall {
				e.Events.Log(model.EventTypeError, "no eligible sender within stall limit",
					map[string]any{"waited": stalled.String()}, campaignID)
				return e.transition(campaignID, model.CampaignStatusStopped, "Campaign stopped (sender pool exhausted)")
			}
			e.Sleep(e.NoSenderBackoff)
			continue
		}
		stalled = 0

		lead, err := e.Leads.NextUnprocessed(campaignID, campaign.MarketRegion)
		if err != nil {
			return err
		}
		if lead == nil {
			return e.transition(campaignID, model.CampaignStatusCompleted, "Campaign completed (no leads left)")
		}

		// The ledger row goes in before any send attempt: a crash from here
		// on leaves a visible PROCESSING job, and a restarted run skips the
		// lead instead of double-sending.
		job, err := e.Jobs.Create(campaignID, lead.ID)
		if err != nil {
			var dup *appErrors.ErrDuplicateJob
			if errors.As(err, &dup) {
				// Another run raced us to this lead; it is accounted for.
				continue
			}
			return err
		}

		if err := e.processJob(ctx, campaign, emailTpl, docTpl, job, lead); err != nil {
			return err
		}
	}
}

// processJob fans out to each contact email on the lead. Per-contact send
// failures are recorded on the task and do not abort the job; pool
// exhaustion mid-job stops the fan-out and whatever was sent stands.
func (e *Engine) processJob(ctx context.Context, campaign *model.Campaign, emailTpl, docTpl *model.Template, job *model.CampaignJob, lead *model.Lead) error {
	baseCtx := LeadContext(lead)
	jobErrors := false
	attempted := 0

	for _, contact := range lead.Contacts() {
		sender, err := e.Pool.Acquire()
		if err != nil {
			if errors.Is(err, appErrors.ErrNoSenderAvailable) {
				break
			}
			return err
		}
		attempted++

		renderCtx := make(map[string]any, len(baseCtx)+2)
		for k, v := range baseCtx {
			renderCtx[k] = v
		}
		renderCtx["contact_name"] = contact.Name
		renderCtx["contact_email"] = contact.Email

		subject := RenderTemplate(emailTpl.Subject, renderCtx)
		body := RenderTemplate(emailTpl.Content, renderCtx)

		task := &model.EmailTask{
			CampaignJobID: job.ID,
			SenderID:      sender.ID,
			ContactName:   contact.Name,
			ContactEmail:  contact.Email,
			Subject:       subject,
			Body:          body,
			Status:        model.TaskStatusSending,
		}
		if err := e.Tasks.Create(task); err != nil {
			if relErr := e.Pool.Release(sender.ID); relErr != nil {
				log.Println("⚠️ failed to release sender after task error:", relErr)
			}
			return err
		}

		res := e.send(ctx, campaign, docTpl, renderCtx, sender, contact.Email, subject, body)
		if res.Success {
			if err := e.Tasks.Update(task.ID, model.TaskStatusSent, res.MessageID, ""); err != nil {
				return err
			}
			if err := e.Pool.Cooldown(sender.ID, campaign.MinIntervalSeconds, campaign.MaxIntervalSeconds); err != nil {
				return err
			}
			e.Events.Log(model.EventTypeEmailSent, "email sent",
				map[string]any{"job_id": job.ID, "sender": sender.Email, "to": contact.Email}, campaign.ID)
		} else {
			jobErrors = true
			if err := e.Tasks.Update(task.ID, model.TaskStatusFailedToSend, "", res.Error); err != nil {
				return err
			}
			if err := e.Pool.Release(sender.ID); err != nil {
				return err
			}
			log.Printf("send failed for job %s contact %s: %s", job.ID, contact.Email, res.Error)
		}
	}

	status := model.JobStatusCompletedSuccess
	errMsg := ""
	if jobErrors {
		status = model.JobStatusCompletedWithErrors
		errMsg = "one or more sends failed"
	}
	// A zero-task job means the pool drained between the availability gate
	// and the first acquire. The lead stays burned, but the job must not
	// read as a success or count toward quota.
	if attempted == 0 && len(lead.Contacts()) > 0 {
		status = model.JobStatusCompletedWithErrors
		errMsg = "no sender available for any contact"
		e.Events.Log(model.EventTypeError, "job completed without any send attempt",
			map[string]any{"job_id": job.ID, "lead_id": lead.ID}, campaign.ID)
	}
	return e.Jobs.Complete(job.ID, status, errMsg)
}

// send performs one delivery: optional PDF generation, safety rerouting,
// then the mailer call. All failure modes come back as a Result so the
// caller records them on the task and moves on.
func (e *Engine) send(ctx context.Context, campaign *model.Campaign, docTpl *model.Template, renderCtx map[string]any, sender *model.Sender, to, subject, body string) mailer.Result {
	if campaign.DryRun {
		return mailer.Result{Success: true, MessageID: "dry-run"}
	}

	var attachments []mailer.Attachment
	if docTpl != nil {
		html := RenderTemplate(docTpl.Content, renderCtx)
		content, err := e.PDF.Generate(ctx, html)
		if err != nil {
			return mailer.Result{Error: fmt.Sprintf("pdf generation: %v", err)}
		}
		attachments = append(attachments, mailer.Attachment{Filename: "letter-of-intent.pdf", Content: content})
	}

	recipient := to
	if e.SafetyMode && e.SafetyEmail != "" {
		recipient = e.SafetyEmail
	}

	res, err := e.Mailer.Send(ctx, mailer.Identity{Name: sender.Name, Email: sender.Email}, recipient, subject, body, attachments)
	if err != nil {
		return mailer.Result{Error: err.Error()}
	}
	return res
}

func (e *Engine) transition(campaignID string, to model.CampaignStatus, message string) error {
	if err := e.Campaigns.UpdateStatus(campaignID, to); err != nil {
		return err
	}
	log.Printf("campaign %s -> %s", campaignID, to)
	e.Events.Log(model.EventTypeCampaignStatus, message, nil, campaignID)
	return nil
}

// fail marks the campaign FAILED after a configuration or data error, so
// the run never looks COMPLETED when it aborted.
func (e *Engine) fail(campaignID, message string, cause error) {
	if err := e.Campaigns.UpdateStatus(campaignID, model.CampaignStatusFailed); err != nil {
		log.Println("⚠️ failed to mark campaign FAILED:", err)
	}
	e.Events.Log(model.EventTypeError, message, map[string]any{"error": cause.Error()}, campaignID)
}
