// Package query tracks per-query generations so stale fetch results
// can never clobber newer ones.
package query

import (
	"sync"

	"github.com/repstats/repstats/pkg/metrics"
)

// State is the lifecycle of one logical query.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateSuccess
	StateError
)

// String renders the state for the read API.
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return "idle"
	}
}

// Status is the externally visible condition of a query.
type Status struct {
	State State
	Err   string
}

// Controller issues monotonic generation tokens per logical query key.
// There is no transport-level abort: an in-flight fetch simply loses
// the right to commit once a newer generation exists.
type Controller struct {
	mu       sync.Mutex
	gens     map[string]uint64
	statuses map[string]Status
}

// NewController creates an empty controller.
func NewController() *Controller {
	return &Controller{
		gens:     map[string]uint64{},
		statuses: map[string]Status{},
	}
}

// Begin starts a new generation for key and marks it loading. Earlier
// in-flight generations for the same key become stale immediately;
// re-entrant calls never block.
func (c *Controller) Begin(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[key]++
	c.statuses[key] = Status{State: StateLoading}
	return c.gens[key]
}

// Current returns the newest generation issued for key.
func (c *Controller) Current(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[key]
}

// Commit finishes a generation. It reports whether gen was still
// current; superseded results and their errors are dropped silently.
// Writers must call this immediately before publishing a result.
func (c *Controller) Commit(key string, gen uint64, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gens[key] {
		metrics.RecordSupersededResult()
		return false
	}
	if err != nil {
		c.statuses[key] = Status{State: StateError, Err: err.Error()}
	} else {
		c.statuses[key] = Status{State: StateSuccess}
	}
	return true
}

// Status returns the visible condition of a query key.
func (c *Controller) Status(key string) Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statuses[key]
}

// Reset clears all generations and statuses. Tests use this.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens = map[string]uint64{}
	c.statuses = map[string]Status{}
}
