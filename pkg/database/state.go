package database

// State is a DB's position in its lifecycle. Archive operations move it
// opened -> dirty -> flushed (possibly several times); Close requires it
// to reach closed exactly once.
type State int

const (
	StateUnopened State = iota
	StateOpened
	StateDirty
	StateFlushed
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnopened:
		return "unopened"
	case StateOpened:
		return "opened"
	case StateDirty:
		return "dirty"
	case StateFlushed:
		return "flushed"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
