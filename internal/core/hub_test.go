package core

import (
	"context"
	"testing"
	"time"
)

func login(h Hub, c *Client, userID, username string) {
	h.Dispatch(c, &Command{Kind: CommandLogin, UserID: userID, Username: username})
}

func TestHubLoginChatAndDisconnect(t *testing.T) {
	h := startHub(t, HubConfig{Now: fixedClock()})

	x := NewClient("x", 8)
	y := NewClient("y", 8)
	h.RegisterClient(x)
	h.RegisterClient(y)

	login(h, x, "u1", "alice")

	for _, c := range []*Client{x, y} {
		ev := mustEvent(t, c.Events, EventPresence)
		if ev.UserID != "u1" || ev.Status != StatusOnline {
			t.Fatalf("unexpected presence event on %s: %+v", c.ID, ev)
		}
	}

	h.Dispatch(x, &Command{Kind: CommandChat, UserID: "u1", Username: "alice", Text: "hi"})

	for _, c := range []*Client{x, y} {
		ev := mustEvent(t, c.Events, EventChat)
		msg := ev.Message
		if msg.SenderUserID != "u1" || msg.SenderUsername != "alice" || msg.Text != "hi" {
			t.Fatalf("unexpected chat on %s: %+v", c.ID, msg)
		}
		if !msg.Timestamp.Equal(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)) {
			t.Fatalf("timestamp not assigned by server clock: %v", msg.Timestamp)
		}
	}

	h.UnregisterClient(x)

	ev := mustEvent(t, y.Events, EventPresence)
	if ev.UserID != "u1" || ev.Status != StatusOffline {
		t.Fatalf("unexpected offline event: %+v", ev)
	}
	mustClose(t, x)
	if h.IsOnline("u1") {
		t.Fatalf("u1 should be offline")
	}
}

func TestHubWhitespaceChatIsIgnored(t *testing.T) {
	h := startHub(t, HubConfig{})

	x := NewClient("x", 8)
	h.RegisterClient(x)
	login(h, x, "u1", "alice")
	mustEvent(t, x.Events, EventPresence)

	h.Dispatch(x, &Command{Kind: CommandChat, UserID: "u1", Username: "alice", Text: "   "})
	h.Dispatch(x, &Command{Kind: CommandChat, UserID: "u1", Username: "alice", Text: "after"})

	ev := nextEvent(t, x.Events)
	if ev.Kind != EventChat || ev.Message.Text != "after" {
		t.Fatalf("whitespace chat should not be broadcast, got %+v", ev)
	}
}

func TestHubChatBeforeLoginIsIgnored(t *testing.T) {
	h := startHub(t, HubConfig{})

	anon := NewClient("anon", 8)
	h.RegisterClient(anon)

	h.Dispatch(anon, &Command{Kind: CommandChat, UserID: "u9", Username: "mallory", Text: "sneaky"})
	login(h, anon, "u1", "alice")

	ev := nextEvent(t, anon.Events)
	if ev.Kind != EventPresence || ev.UserID != "u1" {
		t.Fatalf("expected presence as first event, got %+v", ev)
	}
}

func TestHubDisconnectWithoutLoginEmitsNothing(t *testing.T) {
	h := startHub(t, HubConfig{})

	watcher := NewClient("w", 8)
	anon := NewClient("anon", 8)
	h.RegisterClient(watcher)
	h.RegisterClient(anon)

	h.UnregisterClient(anon)
	login(h, watcher, "u1", "alice")

	ev := nextEvent(t, watcher.Events)
	if ev.Kind != EventPresence || ev.UserID != "u1" || ev.Status != StatusOnline {
		t.Fatalf("expected only the watcher's own online event, got %+v", ev)
	}
}

func TestHubDoubleUnregisterAnnouncesOnce(t *testing.T) {
	h := startHub(t, HubConfig{})

	x := NewClient("x", 8)
	y := NewClient("y", 8)
	h.RegisterClient(x)
	h.RegisterClient(y)
	login(h, x, "u1", "alice")
	login(h, y, "u2", "bob")
	mustEvent(t, y.Events, EventPresence)
	mustEvent(t, y.Events, EventPresence)

	h.UnregisterClient(x)
	h.UnregisterClient(x)
	h.Dispatch(y, &Command{Kind: CommandChat, Text: "still here"})

	first := nextEvent(t, y.Events)
	if first.Kind != EventPresence || first.Status != StatusOffline || first.UserID != "u1" {
		t.Fatalf("expected offline for u1, got %+v", first)
	}
	second := nextEvent(t, y.Events)
	if second.Kind != EventChat {
		t.Fatalf("expected chat after single offline, got %+v", second)
	}
	// Chat frames without ids fall back to the identity bound at login.
	if second.Message.SenderUserID != "u2" || second.Message.SenderUsername != "bob" {
		t.Fatalf("expected bound identity, got %+v", second.Message)
	}
}

func TestHubEvictsConnectionWithFullQueue(t *testing.T) {
	h := startHub(t, HubConfig{})

	c1 := NewClient("c1", 8)
	c2 := NewClient("c2", 1)
	c3 := NewClient("c3", 8)
	h.RegisterClient(c1)
	h.RegisterClient(c2)
	h.RegisterClient(c3)

	// c2's single slot is taken by its own online event and never drained.
	login(h, c2, "u2", "bob")
	mustEvent(t, c1.Events, EventPresence)
	mustEvent(t, c3.Events, EventPresence)

	login(h, c1, "u1", "alice")

	for _, c := range []*Client{c1, c3} {
		ev := mustEvent(t, c.Events, EventPresence)
		if ev.UserID != "u1" || ev.Status != StatusOnline {
			t.Fatalf("expected u1 online on %s, got %+v", c.ID, ev)
		}
		off := mustEvent(t, c.Events, EventPresence)
		if off.UserID != "u2" || off.Status != StatusOffline {
			t.Fatalf("expected u2 offline on %s, got %+v", c.ID, off)
		}
	}

	for _, id := range h.OnlineUsers() {
		if id == "u2" {
			t.Fatalf("evicted user u2 still listed online")
		}
	}
	if !h.IsOnline("u1") {
		t.Fatalf("u1 should be online")
	}
	mustClose(t, c2)
}

func TestHubMultipleConnectionsSameUser(t *testing.T) {
	h := startHub(t, HubConfig{})

	tab1 := NewClient("tab1", 8)
	tab2 := NewClient("tab2", 8)
	h.RegisterClient(tab1)
	h.RegisterClient(tab2)
	login(h, tab1, "u1", "alice")
	login(h, tab2, "u1", "alice")
	mustEvent(t, tab2.Events, EventPresence)
	mustEvent(t, tab2.Events, EventPresence)

	h.UnregisterClient(tab1)
	mustEvent(t, tab2.Events, EventPresence)

	if !h.IsOnline("u1") {
		t.Fatalf("u1 should stay online through tab2")
	}
	if ids := h.OnlineUsers(); len(ids) != 1 || ids[0] != "u1" {
		t.Fatalf("expected [u1], got %v", ids)
	}
}

func TestHubBindIdentityOverridesClaims(t *testing.T) {
	h := startHub(t, HubConfig{BindIdentity: true})

	x := NewClient("x", 8)
	h.RegisterClient(x)
	login(h, x, "u1", "alice")
	mustEvent(t, x.Events, EventPresence)

	h.Dispatch(x, &Command{Kind: CommandChat, UserID: "u2", Username: "bob", Text: "spoof"})

	ev := mustEvent(t, x.Events, EventChat)
	if ev.Message.SenderUserID != "u1" || ev.Message.SenderUsername != "alice" {
		t.Fatalf("expected bound identity, got %+v", ev.Message)
	}
}

func TestHubLogoutKeepsConnectionOpen(t *testing.T) {
	h := startHub(t, HubConfig{})

	x := NewClient("x", 8)
	h.RegisterClient(x)
	login(h, x, "u1", "alice")
	mustEvent(t, x.Events, EventPresence)

	h.Dispatch(x, &Command{Kind: CommandLogout})
	ev := mustEvent(t, x.Events, EventPresence)
	if ev.Status != StatusOffline || ev.UserID != "u1" {
		t.Fatalf("expected offline after logout, got %+v", ev)
	}

	// Still connected: a new login on the same connection works.
	login(h, x, "u1", "alice")
	ev = mustEvent(t, x.Events, EventPresence)
	if ev.Status != StatusOnline {
		t.Fatalf("expected online after re-login, got %+v", ev)
	}
}

func TestHubBroadcastOrderPreserved(t *testing.T) {
	h := startHub(t, HubConfig{})

	x := NewClient("x", 64)
	y := NewClient("y", 64)
	h.RegisterClient(x)
	h.RegisterClient(y)
	login(h, x, "u1", "alice")
	mustEvent(t, y.Events, EventPresence)

	texts := []string{"one", "two", "three", "four", "five"}
	for _, text := range texts {
		h.Dispatch(x, &Command{Kind: CommandChat, Text: text})
	}

	for _, want := range texts {
		ev := mustEvent(t, y.Events, EventChat)
		if ev.Message.Text != want {
			t.Fatalf("out of order: got %q, want %q", ev.Message.Text, want)
		}
	}
}

func TestHubShutdownClosesClients(t *testing.T) {
	h := NewHub(HubConfig{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()

	x := NewClient("x", 8)
	h.RegisterClient(x)
	login(h, x, "u1", "alice")
	mustEvent(t, x.Events, EventPresence)

	cancel()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatalf("hub did not stop")
	}

	mustClose(t, x)
	if h.IsOnline("u1") || len(h.OnlineUsers()) != 0 {
		t.Fatalf("registry not cleared on shutdown: %v", h.OnlineUsers())
	}

	late := NewClient("late", 8)
	h.RegisterClient(late)
	if !late.Closed() {
		t.Fatalf("client registered after shutdown should be closed")
	}
}
