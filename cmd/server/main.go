// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/truesoulcoder/crm-admin-sub000/internal/config"
	"github.com/truesoulcoder/crm-admin-sub000/internal/controller"
	"github.com/truesoulcoder/crm-admin-sub000/internal/db"
	"github.com/truesoulcoder/crm-admin-sub000/internal/handler"
	"github.com/truesoulcoder/crm-admin-sub000/internal/mailer"
	"github.com/truesoulcoder/crm-admin-sub000/internal/pdf"
	"github.com/truesoulcoder/crm-admin-sub000/internal/queue"
	"github.com/truesoulcoder/crm-admin-sub000/internal/repository"
	"github.com/truesoulcoder/crm-admin-sub000/internal/service"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config:", err)
	}

	if cfg.DB.RunMigrations {
		if err := db.Migrate(cfg.DB.DSN()); err != nil {
			log.Fatal("failed to run migrations:", err)
		}
		log.Println("✅ Migrations applied")
	}

	conn, err := db.Connect(cfg.DB)
	if err != nil {
		log.Fatal("failed to connect to DB:", err)
	}
	defer conn.Close()

	campaignRepo := &repository.CampaignRepository{DB: conn}
	templateRepo := &repository.TemplateRepository{DB: conn}
	leadRepo := &repository.LeadRepository{DB: conn}
	jobRepo := &repository.JobRepository{DB: conn}
	taskRepo := &repository.TaskRepository{DB: conn}
	senderRepo := &repository.SenderRepository{DB: conn}
	eventRepo := &repository.EventLogRepository{DB: conn}

	// With an AMQP URL the worker process owns the engine; without one the
	// server runs campaigns itself on the in-memory bus.
	var bus queue.Queue
	if cfg.AMQP.URL != "" {
		amqpQueue, err := queue.DialAMQP(cfg.AMQP.URL)
		if err != nil {
			log.Fatal("failed to connect to RabbitMQ:", err)
		}
		defer amqpQueue.Close()
		bus = amqpQueue
	} else {
		log.Println("⚠️ No AMQP URL configured, running campaigns in-process")
		memQueue := queue.NewInMemoryQueue()

		engine := &service.Engine{
			Campaigns:       campaignRepo,
			Templates:       templateRepo,
			Leads:           leadRepo,
			Jobs:            jobRepo,
			Tasks:           taskRepo,
			Pool:            service.NewSenderPool(senderRepo),
			PDF:             pdf.NewChromeGenerator(cfg.PDF.ExecPath, cfg.PDF.Timeout()),
			Mailer:          buildMailer(cfg.Gmail),
			Events:          eventRepo,
			SafetyMode:      cfg.Engine.SafetyMode,
			SafetyEmail:     cfg.Engine.SafetyEmail,
			NoSenderBackoff: cfg.Engine.NoSenderBackoff(),
			NoSenderStall:   cfg.Engine.NoSenderStall(),
		}

		memQueue.Subscribe(queue.TopicCampaignRuns, func(payload any) error {
			job, err := queue.DecodeRunJob(payload)
			if err != nil {
				log.Println("⚠️ invalid run job:", err)
				return nil
			}
			if err := engine.Run(context.Background(), job.CampaignID); err != nil {
				log.Println("⚠️ campaign run error:", err)
				eventRepo.Log("ERROR", "campaign run error",
					map[string]any{"error": err.Error()}, job.CampaignID)
				return err
			}
			return nil
		})
		bus = memQueue
	}

	campaignController := &controller.CampaignController{
		Campaigns: campaignRepo,
		Jobs:      jobRepo,
	}
	leadController := &controller.LeadController{Leads: leadRepo}
	engineHandler := &handler.EngineHandler{
		Campaigns:     campaignRepo,
		Jobs:          jobRepo,
		Tasks:         taskRepo,
		Senders:       senderRepo,
		Events:        eventRepo,
		Queue:         bus,
		StalledJobAge: cfg.Engine.StalledJobAge(),
	}

	r := chi.NewRouter()

	// Campaign CRUD
	r.Post("/campaigns", campaignController.CreateCampaign)
	r.Get("/campaigns", campaignController.ListCampaigns)
	r.Get("/campaigns/{id}", campaignController.GetCampaign)

	// Lead backlog (read-only)
	r.Get("/leads", leadController.ListLeads)
	r.Get("/leads/{id}", leadController.GetLead)

	// Engine control surface
	r.Post("/engine/campaigns/{id}/start", engineHandler.StartCampaign)
	r.Post("/engine/campaigns/{id}/stop", engineHandler.StopCampaign)
	r.Post("/engine/campaigns/{id}/reclaim", engineHandler.ReclaimStalledJobs)
	r.Get("/engine/campaigns/{id}/jobs", engineHandler.ListJobs)
	r.Get("/engine/jobs/{jobID}/tasks", engineHandler.ListTasks)
	r.Get("/engine/senders", engineHandler.ListSenders)
	r.Get("/engine/events", engineHandler.ListEvents)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	log.Println("🚀 Server running on", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}

func buildMailer(cfg config.Gmail) mailer.Mailer {
	credentials, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		log.Println("⚠️ Gmail credentials unavailable, sends will fail:", err)
		return mailer.DisabledMailer{}
	}
	return mailer.NewGmailMailer(credentials, cfg.SendTimeout())
}
