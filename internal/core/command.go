package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandLogin binds an identity to the connection and announces it online.
	CommandLogin CommandKind = iota
	// CommandChat broadcasts a chat message to every connection.
	CommandChat
	// CommandLogout drops the identity but keeps the connection open.
	CommandLogout
)

func (k CommandKind) String() string {
	switch k {
	case CommandLogin:
		return "login"
	case CommandChat:
		return "chat"
	case CommandLogout:
		return "logout"
	default:
		return "unknown"
	}
}

// Command represents an action requested by a client.
// UserID and Username are whatever the client claimed on the frame.
type Command struct {
	Kind     CommandKind
	UserID   string
	Username string
	Text     string
}
