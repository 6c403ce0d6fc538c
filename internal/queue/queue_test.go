package queue_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/truesoulcoder/crm-admin-sub000/internal/queue"
)

func TestDecodeRunJob(t *testing.T) {
	// In-memory subscribers get the struct straight through.
	job, err := queue.DecodeRunJob(queue.RunJob{CampaignID: "cmp-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.CampaignID != "cmp-1" {
		t.Errorf("expected cmp-1, got %s", job.CampaignID)
	}

	// AMQP subscribers get decoded JSON.
	job, err = queue.DecodeRunJob(map[string]any{"campaign_id": "cmp-2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.CampaignID != "cmp-2" {
		t.Errorf("expected cmp-2, got %s", job.CampaignID)
	}

	if _, err := queue.DecodeRunJob(map[string]any{}); err == nil {
		t.Error("expected error for payload without campaign_id")
	}
	if _, err := queue.DecodeRunJob(42); err == nil {
		t.Error("expected error for unknown payload type")
	}
}

func TestInMemoryQueueDelivers(t *testing.T) {
	q := queue.NewInMemoryQueue()

	got := make(chan any, 1)
	if err := q.Subscribe(queue.TopicCampaignRuns, func(payload any) error {
		got <- payload
		return nil
	}); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	if err := q.Publish(queue.TopicCampaignRuns, queue.RunJob{CampaignID: "cmp-1"}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case payload := <-got:
		job, err := queue.DecodeRunJob(payload)
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if job.CampaignID != "cmp-1" {
			t.Errorf("expected cmp-1, got %s", job.CampaignID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("payload never delivered")
	}
}

func TestInMemoryQueueNoSubscribers(t *testing.T) {
	q := queue.NewInMemoryQueue()
	if err := q.Publish("nobody-home", queue.RunJob{CampaignID: "cmp-1"}); err == nil {
		t.Error("expected error publishing to a topic with no subscribers")
	}
}

func TestInMemoryQueueRetriesFailedHandler(t *testing.T) {
	q := queue.NewInMemoryQueue()

	var mu sync.Mutex
	attempts := 0
	done := make(chan struct{})

	err := q.Subscribe(queue.TopicCampaignRuns, func(payload any) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts < 2 {
			return errAttempt
		}
		close(done)
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	if err := q.Publish(queue.TopicCampaignRuns, queue.RunJob{CampaignID: "cmp-1"}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("handler was not retried")
	}

	mu.Lock()
	defer mu.Unlock()
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
}

var errAttempt = errors.New("transient failure")
