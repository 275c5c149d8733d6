package types

// Outcome tags which upstream source satisfied a gateway request.
type Outcome string

const (
	OutcomePrimary   Outcome = "primary"   // Direct GitHub API
	OutcomeSecondary Outcome = "secondary" // Alternate aggregation API
	OutcomePartial   Outcome = "partial"   // Some independent lookups fell back
	OutcomeFallback  Outcome = "fallback"  // Static fallback dataset
)

// Degraded reports whether the UI should show the offline/fallback indicator.
func (o Outcome) Degraded() bool {
	return o == OutcomeFallback || o == OutcomePartial
}

// Valid reports whether o is one of the known outcomes.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomePrimary, OutcomeSecondary, OutcomePartial, OutcomeFallback:
		return true
	}
	return false
}

func (o Outcome) String() string {
	return string(o)
}
