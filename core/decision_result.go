package core

// DecisionResult represents the outcome of a business decision in a decide function.
//
// IMPORTANT: DecisionResult should only be constructed using the provided factory methods:
// SuccessDecision(event) or ErrorDecision(event, err).
type DecisionResult struct {
	Outcome string      // "success" or "error"
	Event   DomainEvent // the success event to apply, or the failure event describing the rejection
	Err     error
}

const (
	successOutcome = "success"
	errorOutcome   = "error"
)

// SuccessDecision creates a DecisionResult indicating a state change described by the event.
func SuccessDecision(event DomainEvent) DecisionResult {
	return DecisionResult{
		Outcome: successOutcome,
		Event:   event,
	}
}

// ErrorDecision creates a DecisionResult indicating a business rule violation.
// The event describes the failure, it must never be applied to the stores.
func ErrorDecision(event DomainEvent, err error) DecisionResult {
	return DecisionResult{
		Outcome: errorOutcome,
		Event:   event,
		Err:     err,
	}
}

// HasEventToApply returns true if the decision produced a state change.
func (r DecisionResult) HasEventToApply() bool {
	return r.Outcome == successOutcome
}

// HasError returns the error if there is one, otherwise nil.
func (r DecisionResult) HasError() error {
	if r.Outcome == errorOutcome {
		return r.Err
	}

	return nil
}
