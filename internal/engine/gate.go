package engine

// AlertGate debounces notifications for one rule instance. A
// notification is allowed only when the current rule-positive frame is
// more than maxAllowedDiff frames past the last rule-positive frame.
//
// The reference point is updated on every call, whether or not the call
// returned true. The gap is therefore measured between consecutive
// rule-positive evaluations, not since the last notification actually
// sent: a run of positive frames each within the threshold keeps the
// gate closed for its whole duration, because each evaluation resets
// the reference.
type AlertGate struct {
	configured     bool
	maxAllowedDiff int
	lastPositive   int
}

// NewAlertGate builds a gate. configured reflects whether a
// notification channel exists; an unconfigured gate never approves but
// still tracks positive frames. maxAllowedDiff below zero is clamped
// to the default of 1.
func NewAlertGate(configured bool, maxAllowedDiff int) *AlertGate {
	if maxAllowedDiff < 0 {
		maxAllowedDiff = 1
	}
	return &AlertGate{
		configured:     configured,
		maxAllowedDiff: maxAllowedDiff,
	}
}

// ShouldNotify reports whether a notification should be sent for a
// rule-positive evaluation at currentFrame, and unconditionally records
// currentFrame as the new reference point.
func (g *AlertGate) ShouldNotify(currentFrame int) bool {
	ok := g.configured && currentFrame-g.lastPositive > g.maxAllowedDiff
	g.lastPositive = currentFrame
	return ok
}

// LastPositiveFrame returns the gate's current reference point; zero
// means no positive evaluation has been seen yet.
func (g *AlertGate) LastPositiveFrame() int { return g.lastPositive }
