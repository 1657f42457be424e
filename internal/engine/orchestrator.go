package engine

import (
	"context"
	"log"

	"vigil/internal/geometry"
)

// Notifier delivers approved alerts to an external channel. Enabled
// reports whether a channel is actually configured; the gate never
// approves when it is not, but rule evaluation and occurrence counting
// continue regardless.
type Notifier interface {
	Enabled() bool
	Send(ctx context.Context, camName, ruleName string, timestamp int64) error
}

// Metrics receives orchestrator counters. A nil-safe no-op
// implementation is used when metrics are not wired.
type Metrics interface {
	FrameProcessed()
	DetectionSeen(class string)
	RulePositive(ruleName string)
	// AlertApproved counts gate approvals; delivery failures are
	// reported separately via NotifyError.
	AlertApproved(ruleName string)
	NotifyError()
}

type ruleInstance struct {
	rule Rule
	gate *AlertGate
}

// Orchestrator drives the per-frame loop: resolve each detection to a
// region, mark presence, evaluate rules, consult the per-rule debounce
// gate, dispatch the notifier, and reset presence at frame end.
// It is single-writer and strictly sequential; no internal locking.
type Orchestrator struct {
	camName  string
	regions  *RegionSet
	rules    []ruleInstance
	notifier Notifier
	bus      *Bus
	metrics  Metrics
	logger   *log.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithBus attaches a result bus; every processed frame is published on it.
func WithBus(bus *Bus) Option {
	return func(o *Orchestrator) { o.bus = bus }
}

// WithMetrics attaches engine counters.
func WithMetrics(m Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithLogger replaces the default logger.
func WithLogger(l *log.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// NewOrchestrator wires the engine. Each rule gets its own debounce
// gate over maxAllowedDiff; gates share nothing across rule instances.
func NewOrchestrator(camName string, regions *RegionSet, notifier Notifier, maxAllowedDiff int, rules []Rule, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		camName:  camName,
		regions:  regions,
		notifier: notifier,
		logger:   log.Default(),
	}
	for _, r := range rules {
		o.rules = append(o.rules, ruleInstance{
			rule: r,
			gate: NewAlertGate(notifier.Enabled(), maxAllowedDiff),
		})
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ProcessFrame evaluates one batch of detections and returns the frame
// result. Detections are processed in batch order. Presence is reset
// before returning, so no observation leaks into the next frame.
//
// Geometry failures skip the offending detection and continue; notifier
// failures are logged and continue. A presence-marking failure is an
// invariant violation and aborts processing.
func (o *Orchestrator) ProcessFrame(ctx context.Context, batch *FrameBatch) (*FrameResult, error) {
	result := &FrameResult{
		CamName:      o.camName,
		FrameNum:     batch.FrameNum,
		Timestamp:    batch.Timestamp,
		Width:        batch.Width,
		Height:       batch.Height,
		AlertRegions: make(map[int]bool),
	}

	for _, det := range batch.Detections {
		outline, err := geometry.BBoxPolygon(det.BBox, batch.Width, batch.Height)
		if err != nil {
			o.logger.Printf("[Engine] frame %d: skipping %s detection: %v", batch.FrameNum, det.Class, err)
			continue
		}
		centroid := outline.Centroid()
		result.Objects = append(result.Objects, ObjectShape{
			Class:    det.Class,
			Outline:  outline,
			Centroid: centroid,
		})
		if o.metrics != nil {
			o.metrics.DetectionSeen(det.Class)
		}

		idx, inRegion := o.regions.Resolve(centroid)
		if !inRegion {
			continue
		}
		if err := o.regions.Mark(idx, det.Class); err != nil {
			o.regions.Reset()
			return nil, err
		}

		presence := o.regions.Presence(idx)
		for i := range o.rules {
			ri := &o.rules[i]
			if !ri.rule.Evaluate(presence) {
				continue
			}
			result.Positives++
			if o.metrics != nil {
				o.metrics.RulePositive(ri.rule.Name())
			}

			if !ri.gate.ShouldNotify(batch.FrameNum) {
				continue
			}

			alert := Alert{
				RegionIndex: idx,
				RuleName:    ri.rule.Name(),
				FrameNum:    batch.FrameNum,
				Timestamp:   batch.Timestamp,
				CamName:     o.camName,
			}
			result.Alerts = append(result.Alerts, alert)
			result.AlertRegions[idx] = true
			if o.metrics != nil {
				o.metrics.AlertApproved(ri.rule.Name())
			}

			// Delivery failure must not roll back rule state or stop
			// the frame loop.
			if err := o.notifier.Send(ctx, o.camName, ri.rule.Name(), batch.Timestamp); err != nil {
				o.logger.Printf("[Engine] frame %d: notify failed for rule %q: %v", batch.FrameNum, ri.rule.Name(), err)
				if o.metrics != nil {
					o.metrics.NotifyError()
				}
			}
		}
	}

	o.regions.Reset()
	if o.metrics != nil {
		o.metrics.FrameProcessed()
	}

	if o.bus != nil {
		o.bus.Publish(result)
	}
	return result, nil
}

// Run processes an ordered sequence of frame batches, stopping early on
// context cancellation or a fatal error.
func (o *Orchestrator) Run(ctx context.Context, frames []FrameBatch) error {
	for i := range frames {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if _, err := o.ProcessFrame(ctx, &frames[i]); err != nil {
			return err
		}
	}
	return nil
}

// Rules exposes the configured rules, e.g. for reporting occurrence
// totals at shutdown.
func (o *Orchestrator) Rules() []Rule {
	out := make([]Rule, 0, len(o.rules))
	for i := range o.rules {
		out = append(out, o.rules[i].rule)
	}
	return out
}
