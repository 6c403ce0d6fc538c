// cmd/worker/main.go
package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/truesoulcoder/crm-admin-sub000/internal/config"
	"github.com/truesoulcoder/crm-admin-sub000/internal/db"
	"github.com/truesoulcoder/crm-admin-sub000/internal/mailer"
	"github.com/truesoulcoder/crm-admin-sub000/internal/model"
	"github.com/truesoulcoder/crm-admin-sub000/internal/pdf"
	"github.com/truesoulcoder/crm-admin-sub000/internal/queue"
	"github.com/truesoulcoder/crm-admin-sub000/internal/repository"
	"github.com/truesoulcoder/crm-admin-sub000/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config:", err)
	}
	if cfg.AMQP.URL == "" {
		log.Fatal("AMQP_URL is required for the worker")
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

	credentials, err := os.ReadFile(cfg.Gmail.CredentialsFile)
	if err != nil {
		log.Fatal("failed to read gmail credentials:", err)
	}

	engine := &service.Engine{
		Campaigns:       campaignRepo,
		Templates:       templateRepo,
		Leads:           leadRepo,
		Jobs:            jobRepo,
		Tasks:           taskRepo,
		Pool:            service.NewSenderPool(senderRepo),
		PDF:             pdf.NewChromeGenerator(cfg.PDF.ExecPath, cfg.PDF.Timeout()),
		Mailer:          mailer.NewGmailMailer(credentials, cfg.Gmail.SendTimeout()),
		Events:          eventRepo,
		SafetyMode:      cfg.Engine.SafetyMode,
		SafetyEmail:     cfg.Engine.SafetyEmail,
		NoSenderBackoff: cfg.Engine.NoSenderBackoff(),
		NoSenderStall:   cfg.Engine.NoSenderStall(),
	}

	amqpQueue, err := queue.DialAMQP(cfg.AMQP.URL)
	if err != nil {
		log.Fatal("failed to connect to RabbitMQ:", err)
	}
	defer amqpQueue.Close()

	err = amqpQueue.Subscribe(queue.TopicCampaignRuns, func(payload any) error {
		job, err := queue.DecodeRunJob(payload)
		if err != nil {
			log.Println("⚠️ invalid run job:", err)
			return nil // malformed, do not retry
		}

		log.Println("📩 Running campaign", job.CampaignID)
		if err := engine.Run(context.Background(), job.CampaignID); err != nil {
			// The ledger makes reruns safe: leads already attempted are
			// skipped, so a requeued run resumes where this one died.
			log.Println("⚠️ campaign run error:", err)
			eventRepo.Log(model.EventTypeError, "campaign run error",
				map[string]any{"error": err.Error()}, job.CampaignID)
			return err
		}
		log.Println("✅ Campaign run finished:", job.CampaignID)
		return nil
	})
	if err != nil {
		log.Fatal("failed to subscribe to campaign runs:", err)
	}

	log.Println("Worker running, waiting for campaign runs...")
	forever := make(chan bool)
	<-forever
}
