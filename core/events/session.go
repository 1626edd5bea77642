package events

const (
	// KindSessionConfigured identifies the transport's session-parameter acknowledgement.
	KindSessionConfigured Kind = "session.configured"
	// KindSessionError identifies a transport-reported failure.
	KindSessionError Kind = "session.error"
)

// SessionConfigured marks the transport accepting the session parameters.
type SessionConfigured struct {
	Base
	SessionID string
}

// NewSessionConfigured creates a session configured event.
func NewSessionConfigured(sessionID string) SessionConfigured {
	return SessionConfigured{Base: NewBase(KindSessionConfigured), SessionID: sessionID}
}

// SessionError carries a transport failure. Code is the transport's own
// error identifier when it has one.
type SessionError struct {
	Base
	Code    string
	Message string
}

// NewSessionError creates a session error event.
func NewSessionError(code, message string) SessionError {
	return SessionError{Base: NewBase(KindSessionError), Code: code, Message: message}
}
