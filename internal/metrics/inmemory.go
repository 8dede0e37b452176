package metrics

import (
	"sort"
	"sync"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	Signups                  map[string]uint64
	Logins                   map[string]uint64
	SessionResolves          map[string]uint64
	PasswordHashCount        uint64
	PasswordHashDurationNsum int64
}

// Outcomes returns the keys of counts in a stable order.
func Outcomes(counts map[string]uint64) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// InMemoryRecorder stores metrics in memory.
type InMemoryRecorder struct {
	mu                sync.Mutex
	signups           map[string]uint64
	logins            map[string]uint64
	sessionResolves   map[string]uint64
	hashCount         uint64
	hashDurationTotal int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		signups:         make(map[string]uint64),
		logins:          make(map[string]uint64),
		sessionResolves: make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		Signups:                  copyCounts(m.signups),
		Logins:                   copyCounts(m.logins),
		SessionResolves:          copyCounts(m.sessionResolves),
		PasswordHashCount:        m.hashCount,
		PasswordHashDurationNsum: m.hashDurationTotal,
	}
}

// IncSignup counts a signup attempt by outcome.
func (m *InMemoryRecorder) IncSignup(outcome string) {
	m.mu.Lock()
	m.signups[outcome]++
	m.mu.Unlock()
}

// IncLogin counts a login attempt by outcome.
func (m *InMemoryRecorder) IncLogin(outcome string) {
	m.mu.Lock()
	m.logins[outcome]++
	m.mu.Unlock()
}

// IncSessionResolve counts a bearer-token resolution by outcome.
func (m *InMemoryRecorder) IncSessionResolve(outcome string) {
	m.mu.Lock()
	m.sessionResolves[outcome]++
	m.mu.Unlock()
}

// ObservePasswordHash records how long a hash or verify took.
func (m *InMemoryRecorder) ObservePasswordHash(duration time.Duration) {
	m.mu.Lock()
	m.hashCount++
	m.hashDurationTotal += duration.Nanoseconds()
	m.mu.Unlock()
}

func copyCounts(src map[string]uint64) map[string]uint64 {
	dst := make(map[string]uint64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
