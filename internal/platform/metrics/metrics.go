package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

const (
	OutcomeOK        = "ok"
	OutcomeFailed    = "failed"
	OutcomeRecovered = "recovered"
	OutcomeSkipped   = "skipped"
)

type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	rateLimited     uint64
	totalDurationMs uint64

	mu    sync.Mutex
	steps map[string]map[string]uint64
}

func New() *Collector {
	return &Collector{steps: map[string]map[string]uint64{}}
}

func (c *Collector) Record(status int, duration time.Duration) {
	if c == nil {
		return
	}
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	if status == 429 {
		atomic.AddUint64(&c.rateLimited, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

// RecordStep counts one onboarding workflow step outcome.
func (c *Collector) RecordStep(step, outcome string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	byOutcome, ok := c.steps[step]
	if !ok {
		byOutcome = map[string]uint64{}
		c.steps[step] = byOutcome
	}
	byOutcome[outcome]++
}

func (c *Collector) StepCount(step, outcome string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.steps[step][outcome]
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	errs := atomic.LoadUint64(&c.errorRequests)
	limited := atomic.LoadUint64(&c.rateLimited)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}

	c.mu.Lock()
	steps := make(map[string]map[string]uint64, len(c.steps))
	for step, byOutcome := range c.steps {
		copied := make(map[string]uint64, len(byOutcome))
		for outcome, count := range byOutcome {
			copied[outcome] = count
		}
		steps[step] = copied
	}
	c.mu.Unlock()

	return map[string]any{
		"requestsTotal":    total,
		"errorsTotal":      errs,
		"rateLimitedTotal": limited,
		"avgDurationMs":    avg,
		"totalDurationMs":  totalMs,
		"onboardingSteps":  steps,
	}
}
