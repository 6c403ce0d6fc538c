// internal/service/sender_pool.go
package service

import (
	"math/rand"
	"time"

	appErrors "github.com/truesoulcoder/crm-admin-sub000/internal/errors"
	"github.com/truesoulcoder/crm-admin-sub000/internal/model"
)

// SenderStore is the slice of the sender repository the pool needs.
type SenderStore interface {
	NextEligible(now time.Time) (*model.Sender, error)
	Reserve(id string) (bool, error)
	Release(id string) error
	SetCooldown(id string, until time.Time) error
}

// SenderPool allocates sending identities for a campaign run. Eligibility
// means under daily quota and out of cooldown; ties go to the sender with
// the lowest total_sent so load spreads across mailboxes. Reservation is a
// conditional increment at the store, so two workers racing for a sender's
// last quota unit cannot both win.
type SenderPool struct {
	Store SenderStore
	Now   func() time.Time
	Rand  *rand.Rand
}

func NewSenderPool(store SenderStore) *SenderPool {
	return &SenderPool{
		Store: store,
		Now:   time.Now,
		Rand:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Acquire selects an eligible sender and reserves one unit of its quota.
// Returns ErrNoSenderAvailable when every sender is over quota or cooling
// down. A lost reservation race reselects rather than failing.
func (p *SenderPool) Acquire() (*model.Sender, error) {
	for {
		sender, err := p.Store.NextEligible(p.Now())
		if err != nil {
			return nil, err
		}
		if sender == nil {
			return nil, appErrors.ErrNoSenderAvailable
		}

		reserved, err := p.Store.Reserve(sender.ID)
		if err != nil {
			return nil, err
		}
		if reserved {
			sender.SentToday++
			sender.TotalSent++
			return sender, nil
		}
		// Lost the race for this sender's last unit; pick again.
	}
}

// Release returns an acquired unit after a send that did not go through.
func (p *SenderPool) Release(senderID string) error {
	return p.Store.Release(senderID)
}

// Cooldown stamps the sender's next eligible send time at now plus a random
// interval in [minSeconds, maxSeconds]. This is the pacing control that
// keeps any one mailbox from bursting.
func (p *SenderPool) Cooldown(senderID string, minSeconds, maxSeconds int) error {
	if maxSeconds < minSeconds {
		maxSeconds = minSeconds
	}
	interval := minSeconds
	if maxSeconds > minSeconds {
		interval += p.Rand.Intn(maxSeconds - minSeconds + 1)
	}
	until := p.Now().Add(time.Duration(interval) * time.Second)
	return p.Store.SetCooldown(senderID, until)
}

// HasEligible reports whether any sender could be acquired right now,
// without reserving quota. The engine gates job creation on this so a lead
// is never burned while the whole pool is unavailable.
func (p *SenderPool) HasEligible() (bool, error) {
	sender, err := p.Store.NextEligible(p.Now())
	if err != nil {
		return false, err
	}
	return sender != nil, nil
}
