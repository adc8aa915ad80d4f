package core

// Reasons a command is dropped. Dropped commands are logged, never answered.
const (
	ErrCodeNotAuthenticated = "not_authenticated"
	ErrCodeEmptyMessage     = "empty_message"
	ErrCodeMissingUserID    = "missing_user_id"
	ErrCodeUnknownCommand   = "unknown_command"
	ErrCodeConnectionClosed = "connection_closed"
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
