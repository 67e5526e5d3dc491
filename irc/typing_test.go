package irc

import (
	"testing"
	"time"
)

func TestShouldSendActiveTypingUpdateRequiresMessageTagsCap(t *testing.T) {
	c := NewClient("irc.example.org", Config{Nick: "dan"})
	ch := c.state.CreateChannel("#chan")
	c.state.EnsureMember(ch, "dan")

	if c.ShouldSendActiveTypingUpdate("#chan") {
		t.Fatalf("expected no typing update without message-tags capability")
	}

	c.state.Capabilities["message-tags"] = ""
	if !c.ShouldSendActiveTypingUpdate("#chan") {
		t.Fatalf("expected typing update to be due once message-tags is present")
	}
}

func TestActiveTypingThrottledWithinWindow(t *testing.T) {
	c := NewClient("irc.example.org", Config{Nick: "dan"})
	c.state.Capabilities["message-tags"] = ""
	ch := c.state.CreateChannel("#chan")
	c.state.EnsureMember(ch, "dan")

	if !c.ShouldSendActiveTypingUpdate("#chan") {
		t.Fatalf("expected the first active update to be due")
	}
	c.MarkSentActiveTypingUpdate("#chan")

	if c.ShouldSendActiveTypingUpdate("#chan") {
		t.Fatalf("expected a second active update within the 3s window to be suppressed")
	}
}

func TestDoneTypingUpdateOnlyWhenCurrentlyTyping(t *testing.T) {
	c := NewClient("irc.example.org", Config{Nick: "dan"})
	c.state.Capabilities["message-tags"] = ""
	ch := c.state.CreateChannel("#chan")
	c.state.EnsureMember(ch, "dan")

	if c.ShouldSendDoneTypingUpdate("#chan") {
		t.Fatalf("expected no done update when not typing")
	}
	c.MarkSentActiveTypingUpdate("#chan")
	if !c.ShouldSendDoneTypingUpdate("#chan") {
		t.Fatalf("expected a done update to be due after marking active")
	}
	c.MarkSentDoneTypingUpdate("#chan")
	if c.ShouldSendDoneTypingUpdate("#chan") {
		t.Fatalf("expected done update to clear typing state")
	}
}

func TestClearTypingOnDeparture(t *testing.T) {
	m := &Member{IsTyping: true, LastTypingUpdateAt: time.Now()}
	if !clearTypingOnDeparture(m) {
		t.Fatalf("expected clearTypingOnDeparture to report a change for a typing member")
	}
	if m.IsTyping {
		t.Fatalf("expected IsTyping to be cleared")
	}
	if clearTypingOnDeparture(m) {
		t.Fatalf("expected a second call on a non-typing member to report no change")
	}
}

func TestExpireTypingHonors6SecondWindow(t *testing.T) {
	now := time.Now()
	m := &Member{IsTyping: true, LastTypingUpdateAt: now.Add(-5 * time.Second)}
	if expireTyping(m, now) {
		t.Fatalf("expected typing to still be valid within the 6s window")
	}
	m.LastTypingUpdateAt = now.Add(-7 * time.Second)
	if !expireTyping(m, now) {
		t.Fatalf("expected typing older than 6s to expire")
	}
	if m.IsTyping {
		t.Fatalf("expected expireTyping to clear IsTyping")
	}
}

func TestClientExpireTypingSweepsAllChannels(t *testing.T) {
	c := NewClient("irc.example.org", Config{Nick: "self"})
	now := time.Now()

	chA := c.state.CreateChannel("#a")
	stale := c.state.EnsureMember(chA, "dan")
	stale.IsTyping = true
	stale.LastTypingUpdateAt = now.Add(-7 * time.Second)

	chB := c.state.CreateChannel("#b")
	fresh := c.state.EnsureMember(chB, "bob")
	fresh.IsTyping = true
	fresh.LastTypingUpdateAt = now.Add(-1 * time.Second)

	events := c.ExpireTyping(now)
	if len(events) != 1 {
		t.Fatalf("expected exactly one ChannelTypingEvent, got %v", events)
	}
	ev, ok := events[0].(ChannelTypingEvent)
	if !ok || ev.Channel != "#a" {
		t.Fatalf("expected the stale channel's typing to expire, got %v", events[0])
	}
	if stale.IsTyping {
		t.Fatalf("expected dan's typing state to be cleared")
	}
	if !fresh.IsTyping {
		t.Fatalf("expected bob's fresh typing state to remain set")
	}
}

func TestClientExpireTypingNoChangesNoEvents(t *testing.T) {
	c := NewClient("irc.example.org", Config{Nick: "self"})
	ch := c.state.CreateChannel("#chan")
	c.state.EnsureMember(ch, "dan")

	if events := c.ExpireTyping(time.Now()); events != nil {
		t.Fatalf("expected no events when nothing is typing, got %v", events)
	}
}

func TestTagmsgTypingTransitions(t *testing.T) {
	c := NewClient("irc.example.org", Config{Nick: "self"})
	ch := c.state.CreateChannel("#chan")
	c.state.EnsureMember(ch, "dan")

	events, _ := c.dispatchMessage(ParseMessage([]byte("@+typing=active :dan!d@h TAGMSG #chan")))
	if len(events) != 1 {
		t.Fatalf("expected a ChannelTypingEvent on active transition, got %v", events)
	}
	m := ch.Members[c.state.cf("dan")]
	if !m.IsTyping {
		t.Fatalf("expected dan to be marked typing")
	}

	events, _ = c.dispatchMessage(ParseMessage([]byte("@+typing=active :dan!d@h TAGMSG #chan")))
	if len(events) != 0 {
		t.Fatalf("expected a repeated active tag to not re-emit an event, got %v", events)
	}

	events, _ = c.dispatchMessage(ParseMessage([]byte("@+typing=done :dan!d@h TAGMSG #chan")))
	if len(events) != 1 {
		t.Fatalf("expected a ChannelTypingEvent on done transition, got %v", events)
	}
	if m.IsTyping {
		t.Fatalf("expected dan to no longer be marked typing")
	}
}
