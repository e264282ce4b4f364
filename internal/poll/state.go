package poll

// State is the engine's position in the per-question lifecycle.
type State int

const (
	StateIdle State = iota
	StateDetected
	StateClassifying
	StateAutoAnswering
	StateEscalating
	StateAnswered
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDetected:
		return "detected"
	case StateClassifying:
		return "classifying"
	case StateAutoAnswering:
		return "auto_answering"
	case StateEscalating:
		return "escalating"
	case StateAnswered:
		return "answered"
	default:
		return "unknown"
	}
}

// Outcome is the terminal disposition of one question within a session run.
// Once a question has an outcome it is never acted on again.
type Outcome int

const (
	// OutcomeSubmitted means an option was successfully submitted.
	OutcomeSubmitted Outcome = iota
	// OutcomeUnresolved means the engine gave up without submitting
	// (escalation timeout, terminal submission failure, or failed send).
	OutcomeUnresolved
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSubmitted:
		return "submitted"
	case OutcomeUnresolved:
		return "unresolved"
	default:
		return "unknown"
	}
}
