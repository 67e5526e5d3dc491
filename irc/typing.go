package irc

import (
	"sort"
	"time"

	"golang.org/x/time/rate"
)

// typingActiveWindow is the minimum gap between two outbound "active"
// typing tags, per spec.md §4.8.
const typingActiveWindow = 3 * time.Second

// typingExpiry is how long an unrefreshed "active" typing mark is honored
// before being treated as implicitly done. Grounded on the teacher's
// Typings goroutine (irc/typing.go); resolves the 6-second TODO spec.md §9
// flags as an open question.
const typingExpiry = 6 * time.Second

// ShouldSendActiveTypingUpdate reports whether the host should send an
// "active" typing TAGMSG for channel now, per spec.md §4.8.
func (c *Client) ShouldSendActiveTypingUpdate(channel string) bool {
	if _, ok := c.state.Capabilities["message-tags"]; !ok {
		return false
	}
	ch, ok := c.state.GetChannel(channel)
	if !ok {
		return false
	}
	self, ok := ch.Members[c.state.cf(c.state.SelfNick)]
	if !ok {
		return false
	}
	due := !self.IsTyping || time.Since(self.LastTypingUpdateAt) > typingActiveWindow
	if !due {
		return false
	}
	return c.typingLimits.Allow(c.state.cf(channel))
}

// ShouldSendDoneTypingUpdate reports whether the host should send a "done"
// typing TAGMSG for channel now, per spec.md §4.8.
func (c *Client) ShouldSendDoneTypingUpdate(channel string) bool {
	if _, ok := c.state.Capabilities["message-tags"]; !ok {
		return false
	}
	ch, ok := c.state.GetChannel(channel)
	if !ok {
		return false
	}
	self, ok := ch.Members[c.state.cf(c.state.SelfNick)]
	if !ok {
		return false
	}
	return self.IsTyping
}

// MarkSentActiveTypingUpdate records that an "active" typing tag was just
// sent for channel.
func (c *Client) MarkSentActiveTypingUpdate(channel string) {
	ch, ok := c.state.GetChannel(channel)
	if !ok {
		return
	}
	self, ok := ch.Members[c.state.cf(c.state.SelfNick)]
	if !ok {
		return
	}
	self.IsTyping = true
	self.LastTypingUpdateAt = time.Now()
}

// MarkSentDoneTypingUpdate records that a "done" typing tag was just sent
// for channel.
func (c *Client) MarkSentDoneTypingUpdate(channel string) {
	ch, ok := c.state.GetChannel(channel)
	if !ok {
		return
	}
	self, ok := ch.Members[c.state.cf(c.state.SelfNick)]
	if !ok {
		return
	}
	self.IsTyping = false
	self.LastTypingUpdateAt = time.Time{}
}

// typingLimiter throttles a host's outbound +typing=active tags beyond the
// bare 3-second window, a server-friendly refinement grounded on the
// teacher's Session.Typing rate.Limiter (irc/session.go).
type typingLimiter struct {
	limiters map[string]*rate.Limiter
}

func newTypingLimiter() *typingLimiter {
	return &typingLimiter{limiters: map[string]*rate.Limiter{}}
}

// Allow reports whether another outbound typing tag for channel may be sent
// right now, consuming a token if so.
func (tl *typingLimiter) Allow(channel string) bool {
	l, ok := tl.limiters[channel]
	if !ok {
		// A fresh bucket starts full, so the first call for a channel
		// always succeeds.
		l = rate.NewLimiter(rate.Every(typingActiveWindow), 1)
		tl.limiters[channel] = l
	}
	return l.Allow()
}

// clearTypingOnDeparture clears a departing member's typing state and
// reports whether a ChannelTyping event should be emitted for it, per
// spec.md §3's invariant that a ChannelTypingEvent precedes the departure
// event whenever the departing member was typing.
func clearTypingOnDeparture(m *Member) (shouldEmit bool) {
	if !m.IsTyping {
		return false
	}
	m.IsTyping = false
	m.LastTypingUpdateAt = time.Time{}
	return true
}

// expireTyping clears typing state older than typingExpiry and reports
// whether it changed.
func expireTyping(m *Member, now time.Time) bool {
	if !m.IsTyping {
		return false
	}
	if now.Sub(m.LastTypingUpdateAt) <= typingExpiry {
		return false
	}
	m.IsTyping = false
	m.LastTypingUpdateAt = time.Time{}
	return true
}

// ExpireTyping sweeps every known channel for typing marks older than
// typingExpiry, clearing them and returning one ChannelTyping event per
// affected channel, in name order. Per spec.md §5's synchronous dispatch
// model, Client runs no timer of its own; the host calls this on whatever
// schedule it likes (e.g. a time.Ticker in its own event loop) and handles
// the returned events exactly like those from OnBytesReceived.
func (c *Client) ExpireTyping(now time.Time) []Event {
	s := c.state

	names := make([]string, 0, len(s.Channels))
	for name := range s.Channels {
		names = append(names, name)
	}
	sort.Strings(names)

	var events []Event
	for _, key := range names {
		ch := s.Channels[key]
		changed := false
		for _, m := range ch.OrderedMembers() {
			if expireTyping(m, now) {
				changed = true
			}
		}
		if changed {
			events = append(events, ChannelTypingEvent{baseEvent{Envelope{Time: now}}, ch.Name})
		}
	}
	return events
}
