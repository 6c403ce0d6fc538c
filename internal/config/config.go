// internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config aggregates all configuration sections. Fields are populated from
// environment variables; each cmd loads a .env file first (godotenv) so the
// same variables work in development.
type Config struct {
	Env string `env:"ENV" envDefault:"dev"`

	HTTP   HTTP   `envPrefix:"HTTP_"`
	DB     DB     `envPrefix:"DB_"`
	AMQP   AMQP   `envPrefix:"AMQP_"`
	Engine Engine `envPrefix:"ENGINE_"`
	Gmail  Gmail  `envPrefix:"GMAIL_"`
	PDF    PDF    `envPrefix:"PDF_"`
}

type HTTP struct {
	Port uint16 `env:"PORT" envDefault:"8080"`
}

type DB struct {
	User          string `env:"USER" envDefault:"postgres"`
	Password      string `env:"PASSWORD" envDefault:"postgres"`
	Host          string `env:"HOST" envDefault:"localhost"`
	Port          string `env:"PORT" envDefault:"5432"`
	Name          string `env:"NAME" envDefault:"crm"`
	SSLMode       string `env:"SSLMODE" envDefault:"disable"`
	RunMigrations bool   `env:"RUN_MIGRATIONS" envDefault:"false"`
}

// DSN builds the lib/pq connection string.
func (d DB) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// AMQP configures the RabbitMQ transport between the API and the worker.
// An empty URL means in-process mode: the server runs the engine itself on
// the in-memory bus instead of publishing to RabbitMQ.
type AMQP struct {
	URL string `env:"URL"`
}

type Engine struct {
	// SafetyMode reroutes every outgoing email to SafetyEmail so a full run
	// can be inspected without contacting real leads.
	SafetyMode  bool   `env:"SAFETY_MODE" envDefault:"false"`
	SafetyEmail string `env:"SAFETY_EMAIL"`

	// NoSenderBackoffSeconds is how long the loop sleeps when every sender
	// is over quota or cooling down, before re-checking. The stop check runs
	// again after each sleep.
	NoSenderBackoffSeconds int `env:"NO_SENDER_BACKOFF_SECONDS" envDefault:"1"`

	// NoSenderStallMinutes bounds the total time a run may spend waiting for
	// a sender before it gives up and stops the campaign.
	NoSenderStallMinutes int `env:"NO_SENDER_STALL_MINUTES" envDefault:"15"`

	// StalledJobMinutes is the age at which a PROCESSING job counts as
	// abandoned by a crashed run, for the reclaim endpoint.
	StalledJobMinutes int `env:"STALLED_JOB_MINUTES" envDefault:"30"`
}

func (e Engine) NoSenderBackoff() time.Duration {
	return time.Duration(e.NoSenderBackoffSeconds) * time.Second
}

func (e Engine) NoSenderStall() time.Duration {
	return time.Duration(e.NoSenderStallMinutes) * time.Minute
}

func (e Engine) StalledJobAge() time.Duration {
	return time.Duration(e.StalledJobMinutes) * time.Minute
}

type Gmail struct {
	// CredentialsFile is the Google service-account key with domain-wide
	// delegation for the gmail.send scope.
	CredentialsFile    string `env:"CREDENTIALS_FILE" envDefault:"service-account.json"`
	SendTimeoutSeconds int    `env:"SEND_TIMEOUT_SECONDS" envDefault:"30"`
}

func (g Gmail) SendTimeout() time.Duration {
	return time.Duration(g.SendTimeoutSeconds) * time.Second
}

type PDF struct {
	// ExecPath points at the Chrome/Chromium binary. Empty lets chromedp
	// find one on PATH.
	ExecPath       string `env:"EXEC_PATH"`
	TimeoutSeconds int    `env:"TIMEOUT_SECONDS" envDefault:"45"`
}

func (p PDF) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// Load reads configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
