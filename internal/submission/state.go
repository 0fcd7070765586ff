package submission

// State is a step of the submission write sequence.
type State int

const (
	StateStarted State = iota
	StateFormCreated
	StateFieldsCreated
	StateSubmissionCreated
	StateValuesWritten
	StateCommitted
	StateRolledBack
)

var stateNames = map[State]string{
	StateStarted:           "started",
	StateFormCreated:       "form_created",
	StateFieldsCreated:     "fields_created",
	StateSubmissionCreated: "submission_created",
	StateValuesWritten:     "values_written",
	StateCommitted:         "committed",
	StateRolledBack:        "rolled_back",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// step names the write that moves the sequence out of s.
func (s State) step() string {
	switch s {
	case StateStarted:
		return "insert form configuration"
	case StateFormCreated:
		return "insert form fields"
	case StateFieldsCreated:
		return "insert form submission"
	case StateSubmissionCreated:
		return "insert submission values"
	case StateValuesWritten:
		return "commit"
	default:
		return s.String()
	}
}
