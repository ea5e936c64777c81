package metrics

import (
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type Counter struct {
	value uint64
}

func (c *Counter) Inc() {
	atomic.AddUint64(&c.value, 1)
}

func (c *Counter) Add(n uint64) {
	atomic.AddUint64(&c.value, n)
}

func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}

// CounterVec is a family of counters keyed by label values.
type CounterVec struct {
	labels []string

	mu       sync.RWMutex
	counters map[string]*Counter
}

func NewCounterVec(labels ...string) *CounterVec {
	return &CounterVec{labels: labels, counters: make(map[string]*Counter)}
}

// With returns the counter for the given label values, creating it on first use.
// Missing values are recorded as empty strings.
func (v *CounterVec) With(values ...string) *Counter {
	key := v.key(values)

	v.mu.RLock()
	c, ok := v.counters[key]
	v.mu.RUnlock()
	if ok {
		return c
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if c, ok = v.counters[key]; ok {
		return c
	}
	c = &Counter{}
	v.counters[key] = c
	return c
}

func (v *CounterVec) key(values []string) string {
	parts := make([]string, len(v.labels))
	for i, l := range v.labels {
		val := ""
		if i < len(values) {
			val = values[i]
		}
		parts[i] = l + "=" + val
	}
	return strings.Join(parts, ",")
}

// Snapshot returns the current value of every series, keyed by "label=value,...".
func (v *CounterVec) Snapshot() map[string]uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()

	out := make(map[string]uint64, len(v.counters))
	for k, c := range v.counters {
		out[k] = c.Load()
	}
	return out
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// Auth failure reasons.
const (
	ReasonUserNotFound    = "user_not_found"
	ReasonInvalidPassword = "invalid_password"
	ReasonInvalidToken    = "invalid_token"
	ReasonForbidden       = "forbidden"
)

// Registry holds the process-wide counters. It is created once at startup and
// passed to the services that record into it.
type Registry struct {
	UsersRegistered *Counter
	OrdersCreated   *Counter
	AuthFailures    *CounterVec // reason
	HTTPRequests    *CounterVec // method, route, status
	HTTPDurationMs  *CounterVec // method, route
	InFlight        atomic.Int64
}

func NewRegistry() *Registry {
	return &Registry{
		UsersRegistered: &Counter{},
		OrdersCreated:   &Counter{},
		AuthFailures:    NewCounterVec("reason"),
		HTTPRequests:    NewCounterVec("method", "route", "status"),
		HTTPDurationMs:  NewCounterVec("method", "route"),
	}
}

type Series struct {
	Labels string `json:"labels"`
	Value  uint64 `json:"value"`
}

type Snapshot struct {
	UsersRegisteredTotal uint64   `json:"users_registered_total"`
	OrdersCreatedTotal   uint64   `json:"orders_created_total"`
	RequestsInProgress   int64    `json:"http_requests_in_progress"`
	AuthFailuresTotal    []Series `json:"auth_failures_total"`
	HTTPRequestsTotal    []Series `json:"http_requests_total"`
	HTTPDurationMsTotal  []Series `json:"http_request_duration_ms_total"`
}

func (r *Registry) Snapshot() Snapshot {
	return Snapshot{
		UsersRegisteredTotal: r.UsersRegistered.Load(),
		OrdersCreatedTotal:   r.OrdersCreated.Load(),
		RequestsInProgress:   r.InFlight.Load(),
		AuthFailuresTotal:    toSeries(r.AuthFailures.Snapshot()),
		HTTPRequestsTotal:    toSeries(r.HTTPRequests.Snapshot()),
		HTTPDurationMsTotal:  toSeries(r.HTTPDurationMs.Snapshot()),
	}
}

func toSeries(m map[string]uint64) []Series {
	out := make([]Series, 0, len(m))
	for k, v := range m {
		out = append(out, Series{Labels: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Labels < out[j].Labels })
	return out
}
