package chat

// ConnState is the state of a session's socket connection
type ConnState int

const (
	Disconnected ConnState = iota
	Connecting
	Connected
	ReconnectPending
	Closed
)

func (s ConnState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case ReconnectPending:
		return "reconnect_pending"
	case Closed:
		return "closed"
	}
	return "unknown"
}

// ConnEvent drives connection state transitions
type ConnEvent int

const (
	OpenRequested ConnEvent = iota
	SocketOpened
	SocketClosed
	RetryTimerFired
	SessionClosed
	// DialAborted means no dial was attempted, e.g. no access token was stored
	DialAborted
)

func (e ConnEvent) String() string {
	switch e {
	case OpenRequested:
		return "open_requested"
	case SocketOpened:
		return "socket_opened"
	case SocketClosed:
		return "socket_closed"
	case RetryTimerFired:
		return "retry_timer_fired"
	case SessionClosed:
		return "session_closed"
	case DialAborted:
		return "dial_aborted"
	}
	return "unknown"
}

// ConnAction is the side effect a transition asks for
type ConnAction int

const (
	ActionNone ConnAction = iota
	ActionDial
	ActionStartKeepAlive
	ActionScheduleRetry
	ActionTeardown
)

// NextConnState is the reconnection policy. Every close or error while
// connecting or connected schedules exactly one retry; retries repeat
// without backoff or limit until the session closes.
func NextConnState(s ConnState, e ConnEvent) (ConnState, ConnAction) {
	if s == Closed {
		return Closed, ActionNone
	}
	if e == SessionClosed {
		return Closed, ActionTeardown
	}

	switch s {
	case Disconnected:
		if e == OpenRequested {
			return Connecting, ActionDial
		}
	case Connecting:
		switch e {
		case SocketOpened:
			return Connected, ActionStartKeepAlive
		case SocketClosed:
			return ReconnectPending, ActionScheduleRetry
		case DialAborted:
			return Disconnected, ActionNone
		}
	case Connected:
		if e == SocketClosed {
			return ReconnectPending, ActionScheduleRetry
		}
	case ReconnectPending:
		if e == RetryTimerFired {
			return Connecting, ActionDial
		}
	}
	return s, ActionNone
}
