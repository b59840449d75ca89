package storage

// Area selects where state is kept
type Area int

const (
	// Local state outlives the process
	Local Area = iota
	// Session state lives as long as the session that wrote it
	Session
)

func (a Area) String() string {
	switch a {
	case Local:
		return "local"
	case Session:
		return "session"
	default:
		return "unknown"
	}
}
