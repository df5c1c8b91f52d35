package chat

// EventKind classifies front end notifications
type EventKind int

const (
	// EventMessages means the message log changed
	EventMessages EventKind = iota
	// EventScrollToLatest asks the view to show the newest entry
	EventScrollToLatest
	// EventConnectivity reports a change of the online indicator
	EventConnectivity
	// EventAlert is a user visible error
	EventAlert
	// EventNotice is a user visible informational message
	EventNotice
)

// Event is a notification for the front end
type Event struct {
	Kind   EventKind
	Title  string
	Text   string
	Online bool
}
