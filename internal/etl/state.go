package etl

// State is the progress of one pipeline run.
type State int

const (
	StateInit State = iota
	StateFetched
	StateParsed
	StateNormalized
	StateSchemaWritten
	StateAppending
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateFetched:
		return "FETCHED"
	case StateParsed:
		return "PARSED"
	case StateNormalized:
		return "NORMALIZED"
	case StateSchemaWritten:
		return "SCHEMA_WRITTEN"
	case StateAppending:
		return "APPENDING"
	case StateDone:
		return "DONE"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}
