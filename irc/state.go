package irc

import (
	"sort"
	"strings"
	"time"
)

// recentlyActiveWindow is the window within which a user's last message
// marks them as recently active, per spec.md §3.
const recentlyActiveWindow = 15 * time.Minute

// User is a known IRC user, keyed by current nick in the State's user
// arena. Per spec.md §9 Design Notes, Member does not hold a pointer cycle
// back to Channel; it holds the nick key, and lookups go through the arena.
type User struct {
	Source        Source
	Modes         string
	IsAway        bool
	AwayMessage   string
	LastMessageAt time.Time
}

// IsRecentlyActive reports whether the user has sent a message within the
// last 15 minutes.
func (u *User) IsRecentlyActive(now time.Time) bool {
	if u.LastMessageAt.IsZero() {
		return false
	}
	return now.Sub(u.LastMessageAt) <= recentlyActiveWindow
}

// Member is a user's presence in one channel.
type Member struct {
	Nick               string // arena key into State.Users
	Prefixes           map[byte]bool
	HighestPrefix      byte // 0 if none
	IsTyping           bool
	LastTypingUpdateAt time.Time
}

// Channel is a joined channel and its membership.
type Channel struct {
	Name         string
	Modes        string
	Topic        string
	TopicSetBy   Source
	TopicSetAt   time.Time
	memberOrder  []string // nick keys, in NAMES-arrival/insertion order
	Members      map[string]*Member
}

// OrderedMembers returns channel members in their tracked order (NAMES
// arrival order, or JOIN order for members added since).
func (c *Channel) OrderedMembers() []*Member {
	out := make([]*Member, 0, len(c.memberOrder))
	for _, nick := range c.memberOrder {
		if m, ok := c.Members[nick]; ok {
			out = append(out, m)
		}
	}
	return out
}

func (c *Channel) addMember(m *Member) {
	if _, exists := c.Members[m.Nick]; !exists {
		c.memberOrder = append(c.memberOrder, m.Nick)
	}
	c.Members[m.Nick] = m
}

func (c *Channel) removeMember(nick string) {
	delete(c.Members, nick)
	for i, n := range c.memberOrder {
		if n == nick {
			c.memberOrder = append(c.memberOrder[:i], c.memberOrder[i+1:]...)
			break
		}
	}
}

func (c *Channel) replaceMembers(order []string, members map[string]*Member) {
	c.memberOrder = order
	c.Members = members
}

// State is the authoritative in-memory model of the network: self identity,
// negotiated capabilities, ISUPPORT, channels, users, and members, per
// spec.md §3/§4.3.
type State struct {
	SelfNick   string
	ServerName string

	Capabilities map[string]string // value is "" for boolean caps, per spec.md §3
	Supported    map[string]string

	// MemberPrefixModes maps a mode letter to its display symbol, ordered
	// highest-privilege first via PrefixOrder.
	MemberPrefixModes map[byte]byte
	PrefixOrder       []byte // prefix symbols, highest privilege first
	ChannelModeCats   map[byte]ChanmodeCategory

	Casemap CasemapFunc

	Users    map[string]*User
	Channels map[string]*Channel

	// nameBuffers accumulates 353 tokens per channel until 366 flushes them.
	nameBuffers map[string][]string
}

// NewState creates an empty State for the given configured server host and
// self nickname (overridable by ISUPPORT NETWORK once connected).
func NewState(serverHost, selfNick string) *State {
	return &State{
		SelfNick:          selfNick,
		ServerName:        serverHost,
		Capabilities:      map[string]string{},
		Supported:         map[string]string{},
		MemberPrefixModes: map[byte]byte{'o': '@', 'v': '+'},
		PrefixOrder:       []byte{'@', '+'},
		ChannelModeCats:   map[byte]ChanmodeCategory{},
		Casemap:           CasemapRFC1459,
		Users:             map[string]*User{},
		Channels:          map[string]*Channel{},
		nameBuffers:       map[string][]string{},
	}
}

func (s *State) cf(name string) string {
	return s.Casemap(name)
}

// IsSelf reports whether nick refers to the local client, casemap-aware.
func (s *State) IsSelf(nick string) bool {
	return s.cf(nick) == s.cf(s.SelfNick)
}

// GetOrCreateUser returns the User for nick, creating a lazily-populated
// entry (whose Source holds only the nick, as Nick and Raw) if this is the
// first reference, per spec.md §3 lifecycles.
func (s *State) GetOrCreateUser(nick string) *User {
	key := s.cf(nick)
	if u, ok := s.Users[key]; ok {
		return u
	}
	u := &User{Source: Source{Nick: nick, Raw: nick}}
	s.Users[key] = u
	return u
}

// GetUser looks up a known user by nick.
func (s *State) GetUser(nick string) (*User, bool) {
	u, ok := s.Users[s.cf(nick)]
	return u, ok
}

// GetChannel looks up a known channel by name.
func (s *State) GetChannel(name string) (*Channel, bool) {
	c, ok := s.Channels[s.cf(name)]
	return c, ok
}

// CreateChannel creates an empty channel entry, replacing any existing one.
func (s *State) CreateChannel(name string) *Channel {
	c := &Channel{Name: name, Members: map[string]*Member{}}
	s.Channels[s.cf(name)] = c
	return c
}

// DeleteChannel removes a channel entirely.
func (s *State) DeleteChannel(name string) {
	delete(s.Channels, s.cf(name))
}

// highestPrefix returns the most-privileged symbol present in prefixes,
// according to s.PrefixOrder, or 0 if prefixes is empty.
func (s *State) highestPrefix(prefixes map[byte]bool) byte {
	for _, sym := range s.PrefixOrder {
		if prefixes[sym] {
			return sym
		}
	}
	return 0
}

// EnsureMember makes nick a member of channel, creating the Member if
// necessary, and returns it.
func (s *State) EnsureMember(c *Channel, nick string) *Member {
	key := s.cf(nick)
	if m, ok := c.Members[key]; ok {
		return m
	}
	s.GetOrCreateUser(nick)
	m := &Member{Nick: key, Prefixes: map[byte]bool{}}
	c.addMember(m)
	return m
}

// applyPrefixChange adds or removes a membership prefix symbol on the named
// member and recomputes HighestPrefix, per spec.md §4.4 MODE handling.
func (s *State) applyPrefixChange(c *Channel, nick string, symbol byte, add bool) {
	key := s.cf(nick)
	m, ok := c.Members[key]
	if !ok {
		return
	}
	if add {
		m.Prefixes[symbol] = true
	} else {
		delete(m.Prefixes, symbol)
	}
	m.HighestPrefix = s.highestPrefix(m.Prefixes)
}

// updateChannelModes idempotently adds or removes a letter in channel.Modes.
func updateChannelModes(c *Channel, letter byte, add bool) {
	has := strings.IndexByte(c.Modes, letter) >= 0
	if add && !has {
		c.Modes += string(letter)
	} else if !add && has {
		c.Modes = strings.Replace(c.Modes, string(letter), "", 1)
	}
}

// applyUserModeChange mutates user.Modes in place. Per SPEC_FULL.md §4, this
// actually removes the letter (the original source's str.replace without
// reassignment was a no-op).
func applyUserModeChange(u *User, letter byte, add bool) {
	has := strings.IndexByte(u.Modes, letter) >= 0
	if add && !has {
		u.Modes += string(letter)
	} else if !add && has {
		u.Modes = strings.Replace(u.Modes, string(letter), "", 1)
	}
}

// relocateUser moves a user's arena entry from oldNick to newNick, rebuilding
// Source.Raw so it reflects the new nick (SPEC_FULL.md §4 fixes the
// original's stale-raw bug), and re-keys the user's membership in every
// channel, returning the channels it was re-keyed in.
func (s *State) relocateUser(oldNick, newNick string) (*User, []*Channel) {
	oldKey := s.cf(oldNick)
	newKey := s.cf(newNick)

	u, ok := s.Users[oldKey]
	if !ok {
		return nil, nil
	}
	delete(s.Users, oldKey)
	u.Source.Nick = newNick
	u.Source.Raw = Source{Nick: newNick, User: u.Source.User, Host: u.Source.Host}.String()
	s.Users[newKey] = u

	var touched []*Channel
	for _, c := range s.Channels {
		if m, ok := c.Members[oldKey]; ok {
			m.Nick = newKey
			delete(c.Members, oldKey)
			c.Members[newKey] = m
			for i, n := range c.memberOrder {
				if n == oldKey {
					c.memberOrder[i] = newKey
					break
				}
			}
			touched = append(touched, c)
		}
	}

	return u, touched
}

// updateISupport applies the tokens of a 005 line, per spec.md §4.3.
func (s *State) updateISupport(tokens []string) {
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		if strings.HasPrefix(tok, "-") {
			key := strings.ToUpper(tok[1:])
			delete(s.Supported, key)
			continue
		}

		kv := strings.SplitN(tok, "=", 2)
		key := strings.ToUpper(kv[0])
		value := ""
		if len(kv) > 1 {
			value = kv[1]
		}
		s.Supported[key] = value

		switch key {
		case "PREFIX":
			if modes, symbols, ok := parsePrefix(value); ok {
				s.MemberPrefixModes = map[byte]byte{}
				s.PrefixOrder = s.PrefixOrder[:0]
				for i := range modes {
					s.MemberPrefixModes[modes[i]] = symbols[i]
					s.PrefixOrder = append(s.PrefixOrder, symbols[i])
				}
			}
		case "CHANMODES":
			s.ChannelModeCats = parseChanmodes(value)
		case "NETWORK":
			if value != "" {
				s.ServerName = value
			}
		case "CASEMAPPING":
			s.Casemap = casemapFromToken(value)
		}
	}
}

// bufferNames accumulates one 353 line's tokens for channel.
func (s *State) bufferNames(channel string, tokens []string) {
	key := s.cf(channel)
	s.nameBuffers[key] = append(s.nameBuffers[key], tokens...)
}

// flushNames replaces channel.Members with the buffered NAMES list,
// computing prefixes and highest-prefix per member, per spec.md §4.4 366
// handling.
func (s *State) flushNames(channel string) (nicks []string, ok bool) {
	key := s.cf(channel)
	tokens := s.nameBuffers[key]
	delete(s.nameBuffers, key)

	c, exists := s.Channels[key]
	if !exists {
		return nil, false
	}

	order := make([]string, 0, len(tokens))
	members := map[string]*Member{}

	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		prefixStr, rest := splitMemberPrefixes(tok, s.PrefixOrder)
		nick := rest
		s.GetOrCreateUser(nick)

		prefixes := map[byte]bool{}
		for i := 0; i < len(prefixStr); i++ {
			prefixes[prefixStr[i]] = true
		}

		m := &Member{
			Nick:          s.cf(nick),
			Prefixes:      prefixes,
			HighestPrefix: s.highestPrefix(prefixes),
		}
		if _, dup := members[m.Nick]; !dup {
			order = append(order, m.Nick)
		}
		members[m.Nick] = m
		nicks = append(nicks, tok)
	}

	c.replaceMembers(order, members)
	return nicks, true
}

// SortMembersByPrefix orders members by the privilege index of their highest
// prefix (unprefixed members last), breaking ties by lowercased nick, per
// spec.md §4.9.
func (s *State) SortMembersByPrefix(members []*Member) {
	rank := func(m *Member) int {
		for i, sym := range s.PrefixOrder {
			if m.HighestPrefix == sym {
				return i
			}
		}
		return len(s.PrefixOrder)
	}
	sort.SliceStable(members, func(i, j int) bool {
		ri, rj := rank(members[i]), rank(members[j])
		if ri != rj {
			return ri < rj
		}
		return strings.ToLower(members[i].Nick) < strings.ToLower(members[j].Nick)
	})
}
