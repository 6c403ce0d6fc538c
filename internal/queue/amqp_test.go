package queue

import (
	"errors"
	"testing"

	"github.com/streadway/amqp"
)

// fakeAcknowledger records how a delivery was settled.
type fakeAcknowledger struct {
	acks         int
	nacks        int
	nackRequeued bool
}

func (a *fakeAcknowledger) Ack(tag uint64, multiple bool) error { a.acks++; return nil }

func (a *fakeAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	a.nacks++
	a.nackRequeued = requeue
	return nil
}

func (a *fakeAcknowledger) Reject(tag uint64, requeue bool) error { return nil }

func delivery(body string, retryCount int) (amqp.Delivery, *fakeAcknowledger) {
	ack := &fakeAcknowledger{}
	d := amqp.Delivery{Acknowledger: ack, Body: []byte(body)}
	if retryCount > 0 {
		d.Headers = amqp.Table{"x-retry-count": int32(retryCount)}
	}
	return d, ack
}

func TestDispatchAcksOnSuccess(t *testing.T) {
	d, ack := delivery(`{"campaign_id":"cmp-1"}`, 0)

	republished := 0
	dispatch("campaign_runs", d, func(payload any) error { return nil },
		func(body []byte, retryCount int) error { republished++; return nil })

	if ack.acks != 1 || ack.nacks != 0 {
		t.Errorf("expected 1 ack and 0 nacks, got %d/%d", ack.acks, ack.nacks)
	}
	if republished != 0 {
		t.Errorf("successful handler must not republish, got %d", republished)
	}
}

func TestDispatchRepublishesWithBumpedCounter(t *testing.T) {
	d, ack := delivery(`{"campaign_id":"cmp-1"}`, 1)

	var gotRetry int
	dispatch("campaign_runs", d, func(payload any) error { return errors.New("run failed") },
		func(body []byte, retryCount int) error { gotRetry = retryCount; return nil })

	if gotRetry != 2 {
		t.Errorf("expected republish with retry count 2, got %d", gotRetry)
	}
	// The original delivery is settled once the copy is safely requeued.
	if ack.acks != 1 || ack.nacks != 0 {
		t.Errorf("expected 1 ack and 0 nacks, got %d/%d", ack.acks, ack.nacks)
	}
}

func TestDispatchDropsAfterMaxAttempts(t *testing.T) {
	d, ack := delivery(`{"campaign_id":"cmp-1"}`, maxDeliveryAttempts)

	republished := 0
	dispatch("campaign_runs", d, func(payload any) error { return errors.New("run failed") },
		func(body []byte, retryCount int) error { republished++; return nil })

	if republished != 0 {
		t.Errorf("exhausted message must not be republished, got %d", republished)
	}
	if ack.acks != 1 {
		t.Errorf("dropped message must still be acked, got %d acks", ack.acks)
	}
}

func TestDispatchNacksWhenRepublishFails(t *testing.T) {
	d, ack := delivery(`{"campaign_id":"cmp-1"}`, 0)

	dispatch("campaign_runs", d, func(payload any) error { return errors.New("run failed") },
		func(body []byte, retryCount int) error { return errors.New("broker unavailable") })

	// The message must stay on the broker: nack with requeue, never ack.
	if ack.acks != 0 {
		t.Errorf("delivery must not be acked when the requeue failed, got %d acks", ack.acks)
	}
	if ack.nacks != 1 || !ack.nackRequeued {
		t.Errorf("expected 1 nack with requeue, got %d (requeue=%v)", ack.nacks, ack.nackRequeued)
	}
}

func TestDispatchAcksMalformedPayload(t *testing.T) {
	d, ack := delivery(`not json`, 0)

	handled := false
	dispatch("campaign_runs", d, func(payload any) error { handled = true; return nil },
		func(body []byte, retryCount int) error { return nil })

	if handled {
		t.Error("handler must not run for a malformed payload")
	}
	if ack.acks != 1 {
		t.Errorf("malformed payload must be acked away, got %d acks", ack.acks)
	}
}
