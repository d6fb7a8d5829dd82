package metrics

import (
	"context"
	"ipfee/internal/global"
	"ipfee/internal/logctx"
	"runtime/debug"
	"sync"
	"time"
)

// Anything that can report its own metrics for an interval
type Collector interface {
	CollectMetrics(interval time.Duration) []Metric
}

// Periodically gathers metrics from registered collectors into a registry
type Gatherer struct {
	Interval  time.Duration // Polling interval to gather metrics at
	Retention time.Duration // Maximum time to maintain metrics for
	Registry  *Registry     // Storage for metric data

	mu      sync.Mutex
	sources []Collector
}

func NewGatherer(interval time.Duration, maximumMetricAge time.Duration, sources ...Collector) (new *Gatherer) {
	if interval <= 0 {
		interval = global.DefaultMetricInterval
	}
	if maximumMetricAge <= 0 {
		maximumMetricAge = global.DefaultMetricMaxAge
	}
	new = &Gatherer{
		Registry:  New(),
		Interval:  interval,
		Retention: maximumMetricAge,
		sources:   sources,
	}
	return
}

// Registers another collector, picked up on the next interval
func (gatherer *Gatherer) AddSource(source Collector) {
	gatherer.mu.Lock()
	defer gatherer.mu.Unlock()
	gatherer.sources = append(gatherer.sources, source)
}

func (gatherer *Gatherer) Run(ctx context.Context) {
	ctx = logctx.AppendCtxTag(ctx, global.NSMetric)

	// Tracking last interval run time
	lastRun := time.Now()

	ticker := time.NewTicker(gatherer.Interval / 2) // Use polling interval half of desired record interval
	defer ticker.Stop()

	// Counter to track how many ticks have passed (for retention)
	var tickCount int

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if now.Sub(lastRun) >= gatherer.Interval {
				lastRun = now
				gatherer.Gather(ctx, now)
			}

			// Conduct old metric evaluations and cleanup
			tickCount++
			if tickCount >= 30 {
				gatherer.Registry.Prune(now, gatherer.Retention)
				tickCount = 0
			}
		}
	}
}

// Collects one interval from every source into the time slice for now
func (gatherer *Gatherer) Gather(ctx context.Context, now time.Time) {
	// Record panics and continue on next interval
	defer func() {
		if fatalError := recover(); fatalError != nil {
			stack := debug.Stack()
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
				"panic in metric collector thread: %v\n%s", fatalError, stack)
		}
	}()

	timeSlice := gatherer.Registry.NewTimeSlice(now, gatherer.Interval)

	gatherer.mu.Lock()
	sources := append([]Collector(nil), gatherer.sources...)
	gatherer.mu.Unlock()

	for _, source := range sources {
		if source == nil {
			continue
		}
		gatherer.Registry.Add(timeSlice, source.CollectMetrics(gatherer.Interval))
	}
}
