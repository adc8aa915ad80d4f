package core

import "github.com/rs/zerolog"

// Broadcaster delivers events to every live connection, the sender included.
// Delivery is best effort: no retry, no backlog.
type Broadcaster struct {
	registry *Registry
	onDead   func(*Client)
	log      *zerolog.Logger
}

// NewBroadcaster builds a broadcaster over registry. onDead is called, after
// the fan-out, for each connection that could not take the event; it must
// treat the connection as disconnected.
func NewBroadcaster(registry *Registry, onDead func(*Client), logger *zerolog.Logger) *Broadcaster {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Broadcaster{registry: registry, onDead: onDead, log: logger}
}

// BroadcastAll enqueues ev on a snapshot of the live connections. A full or
// closed queue marks that connection dead; the rest still receive ev.
func (b *Broadcaster) BroadcastAll(ev *Event) {
	clients := b.registry.Snapshot()

	var dead []*Client
	for _, c := range clients {
		if !c.enqueue(ev) {
			dead = append(dead, c)
		}
	}

	for _, c := range dead {
		b.log.Warn().Str("client_id", c.ID).Msg("send failed, evicting connection")
		if b.onDead != nil {
			b.onDead(c)
		}
	}
}
