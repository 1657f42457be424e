package engine

// Rule decides whether its condition holds for a region's current
// presence state. Implementations own their occurrence counters; no
// state is shared between rule instances. New rule variants are added
// as new implementations, not by changing existing ones.
type Rule interface {
	// Name identifies the rule in alerts and notifications.
	Name() string

	// Evaluate reports whether the condition holds for the given
	// presence state and, when it does, increments the rule's
	// occurrence counter by exactly one. Presence flags are sticky for
	// the frame, so a second qualifying detection in the same frame
	// evaluates positive again; suppression is the gate's job.
	Evaluate(p Presence) bool

	// Occurrences returns the number of positive evaluations so far,
	// independent of whether notifications were sent.
	Occurrences() uint64
}

// CoOccurrenceRule is positive when both of its classes have been
// observed in the same region within one frame. The canonical instance
// is "Car and Person": a car and a person must never share a region.
type CoOccurrenceRule struct {
	name   string
	classA string
	classB string
	count  uint64
}

// NewCoOccurrenceRule builds a co-occurrence rule over two classes.
func NewCoOccurrenceRule(name, classA, classB string) *CoOccurrenceRule {
	return &CoOccurrenceRule{name: name, classA: classA, classB: classB}
}

// NewCarAndPerson returns the stock "Car and Person" rule.
func NewCarAndPerson() *CoOccurrenceRule {
	return NewCoOccurrenceRule("Car and Person", "car", "person")
}

// Name implements Rule.
func (r *CoOccurrenceRule) Name() string { return r.name }

// Classes returns the two classes the rule requires.
func (r *CoOccurrenceRule) Classes() (string, string) { return r.classA, r.classB }

// Evaluate implements Rule.
func (r *CoOccurrenceRule) Evaluate(p Presence) bool {
	if p[r.classA] && p[r.classB] {
		r.count++
		return true
	}
	return false
}

// Occurrences implements Rule.
func (r *CoOccurrenceRule) Occurrences() uint64 { return r.count }

var _ Rule = (*CoOccurrenceRule)(nil)
