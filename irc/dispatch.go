package irc

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

var channelPrefixes = "#&"

func looksLikeChannel(name string) bool {
	return len(name) > 0 && strings.IndexByte(channelPrefixes, name[0]) >= 0
}

func hasCap(s *State, name string) bool {
	_, ok := s.Capabilities[name]
	return ok
}

// dispatchMessage is the central command dispatcher of spec.md §4.4: it
// turns one parsed Message into zero or more semantic events (in emission
// order) and zero or more outbound lines, mutating the state store along
// the way. Dispatch is a static table keyed on command string, per the
// restructuring spec.md §9 Design Notes calls for (replacing the source's
// dynamic per-command method dispatch).
func (c *Client) dispatchMessage(msg Message) (events []Event, outbound []Message) {
	s := c.state

	// Pre-dispatch: batches (spec.md §4.4/§4.6).
	if msg.Command == "BATCH" && len(msg.Params) > 0 && len(msg.Params[0]) > 1 {
		id := msg.Params[0][1:]
		switch msg.Params[0][0] {
		case '+':
			c.batches.open(id)
			return nil, nil
		case '-':
			buffered := c.batches.close(id)
			for _, bm := range buffered {
				ev, out := c.dispatchMessage(bm)
				events = append(events, ev...)
				outbound = append(outbound, out...)
			}
			return events, outbound
		}
	}
	if id, ok := msg.Tags["batch"]; ok && c.batches.isOpen(id) {
		c.batches.append(id, msg)
		return nil, nil
	}

	env := envelopeOf(msg)

	switch msg.Command {
	case "PING":
		outbound = append(outbound, NewMessage("PONG", msg.Params...))

	case "JOIN":
		if len(msg.Params) < 1 {
			break
		}
		channelName := msg.Params[0]
		ch, known := s.GetChannel(channelName)
		if s.IsSelf(msg.Source.Nick) {
			if !known {
				ch = s.CreateChannel(channelName)
				outbound = append(outbound, NewMessage("MODE", channelName))
				if hasCap(s, "away-notify") {
					outbound = append(outbound, NewMessage("WHO", channelName))
				}
			}
		} else if !known {
			c.warnf("JOIN for unknown channel %s", channelName)
			break
		}
		s.EnsureMember(ch, msg.Source.Nick)
		events = append(events, ChannelJoinedEvent{baseEvent{env}, ch.Name, msg.Source})

	case "PART":
		if len(msg.Params) < 1 {
			break
		}
		channelName := msg.Params[0]
		ch, known := s.GetChannel(channelName)
		if !known {
			c.warnf("PART for unknown channel %s", channelName)
			break
		}
		if s.IsSelf(msg.Source.Nick) {
			s.DeleteChannel(channelName)
		} else if m, ok := ch.Members[s.cf(msg.Source.Nick)]; ok {
			if clearTypingOnDeparture(m) {
				events = append(events, ChannelTypingEvent{baseEvent{env}, ch.Name})
			}
			ch.removeMember(m.Nick)
		} else {
			c.warnf("PART from unknown member %s of %s", msg.Source.Nick, channelName)
		}
		events = append(events, ChannelPartEvent{baseEvent{env}, ch.Name, msg.Source})

	case "KICK":
		if len(msg.Params) < 2 {
			break
		}
		channelName, kickedNick := msg.Params[0], msg.Params[1]
		reason := ""
		if len(msg.Params) > 2 {
			reason = msg.Params[2]
		}
		ch, known := s.GetChannel(channelName)
		if !known {
			c.warnf("KICK for unknown channel %s", channelName)
			break
		}
		if s.IsSelf(kickedNick) {
			for _, m := range ch.OrderedMembers() {
				if clearTypingOnDeparture(m) {
					events = append(events, ChannelTypingEvent{baseEvent{env}, ch.Name})
				}
			}
			s.DeleteChannel(channelName)
		} else if m, ok := ch.Members[s.cf(kickedNick)]; ok {
			if clearTypingOnDeparture(m) {
				events = append(events, ChannelTypingEvent{baseEvent{env}, ch.Name})
			}
			ch.removeMember(m.Nick)
		}
		events = append(events, ChannelKickEvent{baseEvent{env}, channelName, msg.Source, kickedNick, reason})

	case "QUIT":
		reason := ""
		if len(msg.Params) > 0 {
			reason = msg.Params[0]
		}
		u, ok := s.GetUser(msg.Source.Nick)
		if !ok {
			break
		}
		u.IsAway = false
		for _, ch := range channelsOf(s, u) {
			if m, ok := ch.Members[s.cf(msg.Source.Nick)]; ok {
				if clearTypingOnDeparture(m) {
					events = append(events, ChannelTypingEvent{baseEvent{env}, ch.Name})
				}
				ch.removeMember(m.Nick)
			}
			events = append(events, QuitEvent{baseEvent{env}, ch.Name, msg.Source, reason})
		}

	case "NICK":
		if len(msg.Params) < 1 {
			break
		}
		oldNick := msg.Source.Nick
		newNick := msg.Params[0]
		isSelf := s.IsSelf(oldNick)
		u, touched := s.relocateUser(oldNick, newNick)
		if u == nil {
			break
		}
		if isSelf {
			s.SelfNick = newNick
		}
		for _, ch := range touched {
			events = append(events, NickChangedEvent{baseEvent{env}, ch.Name, u.Source, oldNick, newNick})
		}

	case "PRIVMSG", "NOTICE":
		if len(msg.Params) < 2 {
			break
		}
		target, text := msg.Params[0], msg.Params[1]
		if s.IsSelf(target) {
			if msg.Source.Nick != "" {
				target = msg.Source.Nick
			} else {
				target = msg.Source.Host
			}
		}
		u := s.GetOrCreateUser(msg.Source.Nick)
		u.LastMessageAt = msg.Time
		events = append(events, NewMessageEvent{baseEvent{env}, target, text})
		if ch, ok := s.GetChannel(target); ok {
			if m, ok := ch.Members[s.cf(msg.Source.Nick)]; ok && clearTypingOnDeparture(m) {
				events = append(events, ChannelTypingEvent{baseEvent{env}, ch.Name})
			}
		}

	case "AWAY":
		message := ""
		if len(msg.Params) > 0 {
			message = msg.Params[0]
		}
		events = append(events, c.applyAwayChange(env, msg.Source.Nick, message != "", message)...)

	case rplUnaway:
		events = append(events, c.applyAwayChange(env, s.SelfNick, false, "")...)

	case rplNowaway:
		events = append(events, c.applyAwayChange(env, s.SelfNick, true, "")...)

	case "MODE":
		events = append(events, c.applyMode(env, msg)...)

	case rplUmodeis:
		if len(msg.Params) >= 2 {
			u := s.GetOrCreateUser(msg.Params[0])
			u.Modes = strings.TrimPrefix(msg.Params[1], "+")
		}

	case rplChanmodeis:
		if len(msg.Params) >= 3 {
			if ch, ok := s.GetChannel(msg.Params[1]); ok {
				ch.Modes = addSideLetters(msg.Params[2])
				events = append(events, ChannelModeEvent{baseEvent{env}, ch.Name, ch.Modes})
			}
		}

	case rplNotopic:
		if len(msg.Params) >= 2 {
			if ch, ok := s.GetChannel(msg.Params[1]); ok {
				ch.Topic = ""
				events = append(events, ChannelTopicEvent{baseEvent{env}, ch.Name, ""})
			}
		}

	case rplTopic:
		if len(msg.Params) >= 3 {
			if ch, ok := s.GetChannel(msg.Params[1]); ok {
				ch.Topic = msg.Params[2]
				events = append(events, ChannelTopicEvent{baseEvent{env}, ch.Name, ch.Topic})
			}
		}

	case rplTopicwho:
		if len(msg.Params) >= 4 {
			if ch, ok := s.GetChannel(msg.Params[1]); ok {
				who := ParseSource(msg.Params[2])
				unix, _ := strconv.ParseInt(msg.Params[3], 10, 64)
				ch.TopicSetBy = who
				ch.TopicSetAt = time.Unix(unix, 0).UTC()
				events = append(events, ChannelTopicWhoTimeEvent{baseEvent{env}, ch.Name, who, ch.TopicSetAt})
			}
		}

	case rplWhoreply:
		if len(msg.Params) >= 7 && hasCap(s, "away-notify") {
			channelName, nick, flags := msg.Params[1], msg.Params[5], msg.Params[6]
			if _, known := s.GetChannel(channelName); known {
				u := s.GetOrCreateUser(nick)
				if strings.HasPrefix(flags, "G") {
					u.IsAway = true
				} else if strings.HasPrefix(flags, "H") {
					u.IsAway = false
				}
				break
			}
		}
		events = append(events, MessageEvent{baseEvent{env}, msg})

	case rplEndofwho:
		if len(msg.Params) >= 2 && hasCap(s, "away-notify") {
			if ch, ok := s.GetChannel(msg.Params[1]); ok {
				events = append(events, ChannelNamesEvent{baseEvent{env}, ch.Name, nil})
				break
			}
		}
		events = append(events, MessageEvent{baseEvent{env}, msg})

	case rplNamreply:
		if len(msg.Params) >= 4 {
			s.bufferNames(msg.Params[2], strings.Fields(msg.Params[3]))
		}

	case rplEndofnames:
		if len(msg.Params) >= 2 {
			if nicks, ok := s.flushNames(msg.Params[1]); ok {
				if ch, ok := s.GetChannel(msg.Params[1]); ok {
					events = append(events, ChannelNamesEvent{baseEvent{env}, ch.Name, nicks})
				}
			}
		}

	case "TAGMSG":
		events = append(events, c.applyTyping(env, msg)...)

	case rplWelcome, rplYourhost, rplCreated, rplMyinfo:
		if len(msg.Params) >= 1 {
			events = append(events, NewMessageFromServerEvent{baseEvent{env}, strings.Join(msg.Params[1:], " ")})
		}

	case rplIsupport:
		if len(msg.Params) >= 2 {
			s.updateISupport(msg.Params[1 : len(msg.Params)-1])
		}

	case rplMotdstart:
		c.motdPending = nil

	case rplMotd:
		if len(msg.Params) >= 2 {
			c.motdPending = append(c.motdPending, NewMessageFromServerEvent{baseEvent{env}, msg.Params[1]})
		}

	case rplEndofmotd:
		events = append(events, c.motdPending...)
		c.motdPending = nil

	case rplLoggedin, rplLoggedout:
		if len(msg.Params) >= 1 {
			events = append(events, NewMessageFromServerEvent{baseEvent{env}, msg.Params[len(msg.Params)-1]})
		}

	case rplSaslmechs:
		if len(msg.Params) >= 2 {
			c.trace(TraceIn, "server supports SASL mechanisms: "+msg.Params[1])
		}

	case "CAP":
		if len(msg.Params) >= 2 && msg.Params[1] == "LS" {
			for _, cp := range ParseCaps(msg.Params[len(msg.Params)-1]) {
				s.Capabilities[cp.Name] = cp.Value
			}
		} else {
			events = append(events, MessageEvent{baseEvent{env}, msg})
		}

	default:
		events = append(events, MessageEvent{baseEvent{env}, msg})
	}

	return events, outbound
}

// channelsOf returns, in a deterministic (name-sorted) order, every channel
// in which u is currently a member.
func channelsOf(s *State, u *User) []*Channel {
	var out []*Channel
	key := s.cf(u.Source.Nick)
	for _, ch := range s.Channels {
		if _, ok := ch.Members[key]; ok {
			out = append(out, ch)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (c *Client) applyAwayChange(env Envelope, nick string, away bool, message string) []Event {
	s := c.state
	u, ok := s.GetUser(nick)
	if !ok {
		u = s.GetOrCreateUser(nick)
	}
	if u.IsAway == away {
		return nil
	}
	u.IsAway = away
	u.AwayMessage = message

	var events []Event
	for _, ch := range channelsOf(s, u) {
		if away {
			events = append(events, GoneAwayEvent{baseEvent{env}, ch.Name, u.Source, message})
		} else {
			events = append(events, BackFromAwayEvent{baseEvent{env}, ch.Name, u.Source})
		}
	}
	return events
}

func (c *Client) applyMode(env Envelope, msg Message) []Event {
	s := c.state
	if len(msg.Params) < 2 {
		return nil
	}
	target, modestring, args := msg.Params[0], msg.Params[1], msg.Params[2:]

	if looksLikeChannel(target) {
		ch, ok := s.GetChannel(target)
		if !ok {
			c.warnf("MODE for unknown channel %s", target)
			return nil
		}
		var events []Event
		for _, change := range IterModestring(modestring, args, true, s.MemberPrefixModes, s.ChannelModeCats) {
			if symbol, isPrefix := s.MemberPrefixModes[change.Letter]; isPrefix {
				if change.HasArg {
					s.applyPrefixChange(ch, change.Arg, symbol, change.Add)
					events = append(events, ChannelNamesEvent{baseEvent{env}, ch.Name, nil})
				}
			} else {
				updateChannelModes(ch, change.Letter, change.Add)
				events = append(events, ChannelModeEvent{baseEvent{env}, ch.Name, ch.Modes})
			}
		}
		return events
	}

	u := s.GetOrCreateUser(target)
	for _, change := range IterModestring(modestring, nil, false, nil, nil) {
		applyUserModeChange(u, change.Letter, change.Add)
	}
	return nil
}

// addSideLetters extracts the add-side mode letters of a modestring,
// ignoring arguments entirely, per spec.md §4.4's RPL_CHANNELMODEIS handling.
func addSideLetters(modestring string) string {
	var sb strings.Builder
	add := true
	for i := 0; i < len(modestring); i++ {
		switch modestring[i] {
		case '+':
			add = true
		case '-':
			add = false
		default:
			if add {
				sb.WriteByte(modestring[i])
			}
		}
	}
	return sb.String()
}

func (c *Client) applyTyping(env Envelope, msg Message) []Event {
	s := c.state
	if len(msg.Params) < 1 {
		return nil
	}
	channelName := msg.Params[0]
	value, ok := msg.Tags["+typing"]
	if !ok {
		return nil
	}
	ch, ok := s.GetChannel(channelName)
	if !ok {
		return nil
	}
	m, ok := ch.Members[s.cf(msg.Source.Nick)]
	if !ok {
		return nil
	}

	wasTyping := m.IsTyping
	switch value {
	case "active":
		m.IsTyping = true
		m.LastTypingUpdateAt = msg.Time
	case "paused", "done":
		m.IsTyping = false
		m.LastTypingUpdateAt = time.Time{}
	default:
		return nil
	}

	if wasTyping != m.IsTyping {
		return []Event{ChannelTypingEvent{baseEvent{env}, ch.Name}}
	}
	return nil
}
