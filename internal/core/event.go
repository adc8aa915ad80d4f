package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventChat carries a chat message.
	EventChat EventKind = iota
	// EventPresence notifies that a user went online or offline.
	EventPresence
)

// PresenceStatus is the status carried by presence events.
type PresenceStatus string

const (
	StatusOnline  PresenceStatus = "online"
	StatusOffline PresenceStatus = "offline"
)

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind    EventKind
	Message ChatMessage // EventChat

	UserID string         // EventPresence
	Status PresenceStatus // EventPresence
}

func presenceEvent(userID string, status PresenceStatus) *Event {
	return &Event{Kind: EventPresence, UserID: userID, Status: status}
}
