package service_test

import (
	"errors"
	"math/rand"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/truesoulcoder/crm-admin-sub000/internal/errors"
	"github.com/truesoulcoder/crm-admin-sub000/internal/model"
	"github.com/truesoulcoder/crm-admin-sub000/internal/service"
)

// MemSenderStore behaves like the senders table: eligibility ordered by
// total_sent then email, and Reserve is a conditional increment guarded by
// a mutex, so concurrent acquires contend the same way they would in the
// database.
type MemSenderStore struct {
	mu      sync.Mutex
	senders []*model.Sender
}

func (s *MemSenderStore) NextEligible(now time.Time) (*model.Sender, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var eligible []*model.Sender
	for _, sd := range s.senders {
		if !sd.IsActive || sd.SentToday >= sd.DailyQuota {
			continue
		}
		if sd.CanSendAfter != nil && sd.CanSendAfter.After(now) {
			continue
		}
		eligible = append(eligible, sd)
	}
	if len(eligible) == 0 {
		return nil, nil
	}
	sort.Slice(eligible, func(i, j int) bool {
		if eligible[i].TotalSent != eligible[j].TotalSent {
			return eligible[i].TotalSent < eligible[j].TotalSent
		}
		return eligible[i].Email < eligible[j].Email
	})
	copied := *eligible[0]
	return &copied, nil
}

func (s *MemSenderStore) Reserve(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sd := range s.senders {
		if sd.ID == id {
			if sd.SentToday >= sd.DailyQuota {
				return false, nil
			}
			sd.SentToday++
			sd.TotalSent++
			return true, nil
		}
	}
	return false, nil
}

func (s *MemSenderStore) Release(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sd := range s.senders {
		if sd.ID == id && sd.SentToday > 0 {
			sd.SentToday--
		}
	}
	return nil
}

func (s *MemSenderStore) SetCooldown(id string, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sd := range s.senders {
		if sd.ID == id {
			u := until
			sd.CanSendAfter = &u
		}
	}
	return nil
}

func (s *MemSenderStore) get(id string) *model.Sender {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sd := range s.senders {
		if sd.ID == id {
			return sd
		}
	}
	return nil
}

func newPool(store *MemSenderStore) *service.SenderPool {
	return &service.SenderPool{
		Store: store,
		Now:   time.Now,
		Rand:  rand.New(rand.NewSource(1)),
	}
}

func TestAcquirePrefersLowestTotalSent(t *testing.T) {
	store := &MemSenderStore{senders: []*model.Sender{
		{ID: "s1", Email: "busy@truesoulpartners.com", IsActive: true, DailyQuota: 10, TotalSent: 50},
		{ID: "s2", Email: "fresh@truesoulpartners.com", IsActive: true, DailyQuota: 10, TotalSent: 2},
	}}
	pool := newPool(store)

	sender, err := pool.Acquire()
	require.NoError(t, err)
	assert.Equal(t, "s2", sender.ID)
	assert.Equal(t, 1, sender.SentToday)
}

func TestAcquireSkipsCoolingDownSender(t *testing.T) {
	later := time.Now().Add(time.Hour)
	store := &MemSenderStore{senders: []*model.Sender{
		{ID: "s1", Email: "a@truesoulpartners.com", IsActive: true, DailyQuota: 10, CanSendAfter: &later},
		{ID: "s2", Email: "b@truesoulpartners.com", IsActive: true, DailyQuota: 10, TotalSent: 99},
	}}
	pool := newPool(store)

	sender, err := pool.Acquire()
	require.NoError(t, err)
	assert.Equal(t, "s2", sender.ID)
}

func TestAcquireExpiredCooldownIsEligibleAgain(t *testing.T) {
	past := time.Now().Add(-time.Minute)
	store := &MemSenderStore{senders: []*model.Sender{
		{ID: "s1", Email: "a@truesoulpartners.com", IsActive: true, DailyQuota: 10, CanSendAfter: &past},
	}}
	pool := newPool(store)

	sender, err := pool.Acquire()
	require.NoError(t, err)
	assert.Equal(t, "s1", sender.ID)
}

func TestAcquireNoSenderAvailable(t *testing.T) {
	store := &MemSenderStore{senders: []*model.Sender{
		{ID: "s1", Email: "a@truesoulpartners.com", IsActive: true, DailyQuota: 1, SentToday: 1},
		{ID: "s2", Email: "b@truesoulpartners.com", IsActive: false, DailyQuota: 10},
	}}
	pool := newPool(store)

	_, err := pool.Acquire()
	assert.True(t, errors.Is(err, appErrors.ErrNoSenderAvailable))

	ok, err := pool.HasEligible()
	require.NoError(t, err)
	assert.False(t, ok)
}

// Two goroutines race for a sender's last quota unit: exactly one wins,
// the other walks away with ErrNoSenderAvailable, and sent_today never
// exceeds the quota.
func TestAcquireConcurrentLastUnit(t *testing.T) {
	store := &MemSenderStore{senders: []*model.Sender{
		{ID: "s1", Email: "a@truesoulpartners.com", IsActive: true, DailyQuota: 1},
	}}
	pool := newPool(store)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := pool.Acquire()
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins, misses int
	for err := range results {
		if err == nil {
			wins++
		} else if errors.Is(err, appErrors.ErrNoSenderAvailable) {
			misses++
		} else {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, misses)
	assert.Equal(t, 1, store.get("s1").SentToday)
}

func TestReleaseReturnsQuotaUnit(t *testing.T) {
	store := &MemSenderStore{senders: []*model.Sender{
		{ID: "s1", Email: "a@truesoulpartners.com", IsActive: true, DailyQuota: 1},
	}}
	pool := newPool(store)

	sender, err := pool.Acquire()
	require.NoError(t, err)

	_, err = pool.Acquire()
	require.Error(t, err)

	require.NoError(t, pool.Release(sender.ID))
	assert.Equal(t, 0, store.get("s1").SentToday)

	// The unit is available again after release.
	_, err = pool.Acquire()
	assert.NoError(t, err)
}

func TestCooldownWithinInterval(t *testing.T) {
	store := &MemSenderStore{senders: []*model.Sender{
		{ID: "s1", Email: "a@truesoulpartners.com", IsActive: true, DailyQuota: 10},
	}}
	now := time.Date(2026, time.January, 5, 12, 0, 0, 0, time.UTC)
	pool := &service.SenderPool{
		Store: store,
		Now:   func() time.Time { return now },
		Rand:  rand.New(rand.NewSource(7)),
	}

	for i := 0; i < 20; i++ {
		require.NoError(t, pool.Cooldown("s1", 30, 120))
		until := store.get("s1").CanSendAfter
		require.NotNil(t, until)
		gap := until.Sub(now)
		assert.GreaterOrEqual(t, gap, 30*time.Second)
		assert.LessOrEqual(t, gap, 120*time.Second)
	}
}

func TestCooldownZeroInterval(t *testing.T) {
	store := &MemSenderStore{senders: []*model.Sender{
		{ID: "s1", Email: "a@truesoulpartners.com", IsActive: true, DailyQuota: 10},
	}}
	now := time.Now()
	pool := &service.SenderPool{
		Store: store,
		Now:   func() time.Time { return now },
		Rand:  rand.New(rand.NewSource(7)),
	}

	require.NoError(t, pool.Cooldown("s1", 0, 0))
	assert.True(t, store.get("s1").CanSendAfter.Equal(now))
}
