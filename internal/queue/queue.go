// internal/queue/queue.go
package queue

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// RunJob is the payload published when an operator starts a campaign. The
// worker consumes it and drives the engine for that campaign.
type RunJob struct {
	CampaignID string `json:"campaign_id"`
}

// TopicCampaignRuns carries RunJob payloads between the API and the worker.
const TopicCampaignRuns = "campaign_runs"

// DecodeRunJob normalizes a subscriber payload into a RunJob. In-memory
// subscribers receive the struct directly; AMQP subscribers receive the
// decoded JSON map.
func DecodeRunJob(payload any) (RunJob, error) {
	switch v := payload.(type) {
	case RunJob:
		return v, nil
	case map[string]any:
		id, _ := v["campaign_id"].(string)
		if id == "" {
			return RunJob{}, fmt.Errorf("run job payload missing campaign_id")
		}
		return RunJob{CampaignID: id}, nil
	}
	return RunJob{}, fmt.Errorf("unexpected run job payload type %T", payload)
}

// Queue interface
type Queue interface {
	Publish(topic string, payload any) error
	Subscribe(topic string, handler func(payload any) error) error
}

// InMemoryQueue is the in-process bus used by tests and single-binary mode,
// with bounded retry per job.
type InMemoryQueue struct {
	mu       sync.Mutex
	handlers map[string][]func(payload any) error
}

func NewInMemoryQueue() *InMemoryQueue {
	return &InMemoryQueue{
		handlers: make(map[string][]func(payload any) error),
	}
}

// JobPayload wraps a payload with retry info
type JobPayload struct {
	Payload    any
	RetryCount int
	MaxRetries int
}

// Publish sends a message to all subscribers
func (q *InMemoryQueue) Publish(topic string, payload any) error {
	q.mu.Lock()
	handlers := q.handlers[topic]
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}

	job := JobPayload{
		Payload:    payload,
		RetryCount: 0,
		MaxRetries: 3,
	}

	for _, handler := range handlers {
		go q.processJob(handler, job)
	}

	return nil
}

// processJob handles retries and errors
func (q *InMemoryQueue) processJob(handler func(payload any) error, job JobPayload) {
	for job.RetryCount <= job.MaxRetries {
		err := handler(job.Payload)
		if err == nil {
			return // ACK
		}

		job.RetryCount++
		log.Printf("Job failed (attempt %d/%d): %+v, error: %v\n", job.RetryCount, job.MaxRetries, job.Payload, err)

		if job.RetryCount > job.MaxRetries {
			log.Printf("Job permanently failed after %d attempts: %+v\n", job.MaxRetries, job.Payload)
			return // No requeue
		}

		// Exponential backoff before retry
		time.Sleep(time.Duration(job.RetryCount*500) * time.Millisecond)
	}
}

// Subscribe adds a handler for a topic
func (q *InMemoryQueue) Subscribe(topic string, handler func(payload any) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}
