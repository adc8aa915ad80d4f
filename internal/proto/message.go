package proto

// Frame types. Every frame is one JSON object with a "type" field.
const (
	InboundTypeLogin  = "login"
	InboundTypeChat   = "chat"
	InboundTypeLogout = "logout"

	OutboundTypeChat       = "chat"
	OutboundTypeUserStatus = "userStatus"

	StatusOnline  = "online"
	StatusOffline = "offline"
)

// TimestampLayout formats server timestamps as ISO-8601 UTC with milliseconds.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Inbound is a frame coming from the client. Fields irrelevant to Type are ignored.
type Inbound struct {
	Type     string `json:"type"`
	UserID   string `json:"userId,omitempty"`
	Username string `json:"username,omitempty"`
	Text     string `json:"text,omitempty"`
	// Token is an optional session token from register/login.
	Token string `json:"token,omitempty"`
}

// Chat is broadcast to every connection for each accepted chat frame.
type Chat struct {
	Type      string `json:"type"`
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// UserStatus is broadcast when a user goes online or offline.
type UserStatus struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
	Status string `json:"status"`
}
