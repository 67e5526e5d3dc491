package irc

import "strings"

// Numeric replies handled by the dispatcher. Grounded on the teacher's
// irc/rpl.go, trimmed to the set spec.md §6 actually requires plus the
// SASL failure numerics SPEC_FULL.md §4 adds.
const (
	rplWelcome  = "001"
	rplYourhost = "002"
	rplCreated  = "003"
	rplMyinfo   = "004"
	rplIsupport = "005"

	rplUmodeis = "221"

	rplUnaway  = "305"
	rplNowaway = "306"

	rplEndofwho   = "315"
	rplChanmodeis = "324"
	rplNotopic    = "331"
	rplTopic      = "332"
	rplTopicwho   = "333"
	rplWhoreply   = "352"
	rplNamreply   = "353"
	rplEndofnames = "366"

	rplMotdstart = "375"
	rplMotd      = "372"
	rplEndofmotd = "376"

	errNicknameinuse = "433"

	errNicklocked  = "902"
	rplLoggedin    = "900"
	rplLoggedout   = "901"
	rplSaslsuccess = "903"
	errSaslfail    = "904"
	errSasltoolong = "905"
	errSaslaborted = "906"
	errSaslalready = "907"
	rplSaslmechs   = "908"
)

// saslTerminalFailures are the numerics that end a SASL exchange without
// success. SPEC_FULL.md §4 resolves spec.md §9's open question: any of
// these unblocks the handshake via CAP END, exactly as 903 does.
var saslTerminalFailures = map[string]bool{
	errNicklocked:  true,
	errSaslfail:    true,
	errSasltoolong: true,
	errSaslaborted: true,
	errSaslalready: true,
}

// Cap is one token of a CAP LS/NEW/ACK/DEL list.
type Cap struct {
	Name  string
	Value string
}

// ParseCaps parses the space-separated "cap" or "cap=value" list that is the
// trailing parameter of CAP subcommands, per spec.md §4.3.
func ParseCaps(raw string) []Cap {
	var caps []Cap
	for _, tok := range strings.Fields(raw) {
		kv := strings.SplitN(tok, "=", 2)
		c := Cap{Name: kv[0]}
		if len(kv) > 1 {
			c.Value = kv[1]
		}
		caps = append(caps, c)
	}
	return caps
}

// ChanmodeCategory classifies a CHANMODES letter per spec.md GLOSSARY.
type ChanmodeCategory byte

const (
	ChanmodeA ChanmodeCategory = 'A'
	ChanmodeB ChanmodeCategory = 'B'
	ChanmodeC ChanmodeCategory = 'C'
	ChanmodeD ChanmodeCategory = 'D'
)

// parseChanmodes parses a CHANMODES=A,B,C,D ISUPPORT value into a
// letter→category map.
func parseChanmodes(value string) map[byte]ChanmodeCategory {
	groups := strings.Split(value, ",")
	cats := []ChanmodeCategory{ChanmodeA, ChanmodeB, ChanmodeC, ChanmodeD}
	out := map[byte]ChanmodeCategory{}
	for i, g := range groups {
		if i >= len(cats) {
			break
		}
		for j := 0; j < len(g); j++ {
			out[g[j]] = cats[i]
		}
	}
	return out
}

// parsePrefix parses a PREFIX=(modes)symbols ISUPPORT value into an ordered
// mode-letter → symbol map, highest privilege first.
func parsePrefix(value string) (modes []byte, symbols []byte, ok bool) {
	if len(value) == 0 || value[0] != '(' {
		return nil, nil, false
	}
	close := strings.IndexByte(value, ')')
	if close < 0 {
		return nil, nil, false
	}
	modeStr := value[1:close]
	symStr := value[close+1:]
	if len(modeStr) != len(symStr) {
		return nil, nil, false
	}
	return []byte(modeStr), []byte(symStr), true
}

// splitMemberPrefixes separates the leading prefix symbols of a NAMES token
// from the bare nick, per spec.md §4.4's handling of 353/366.
func splitMemberPrefixes(token string, symbols []byte) (prefixes string, rest string) {
	i := 0
	for i < len(token) {
		found := false
		for _, s := range symbols {
			if token[i] == s {
				found = true
				break
			}
		}
		if !found {
			break
		}
		i++
	}
	return token[:i], token[i:]
}

// ModeChange is one step of a modestring iteration, per spec.md §4.7.
type ModeChange struct {
	Add    bool
	Letter byte
	Arg    string
	HasArg bool
}

// IterModestring walks a "+xy-z" modestring against its argument list and
// yields one ModeChange per letter, consuming arguments per the rules in
// spec.md §4.7. memberPrefixModes and chanmodes classify a letter for a
// channel target; for a user target (isChannel == false) no arguments are
// ever consumed.
func IterModestring(modestring string, args []string, isChannel bool, memberPrefixModes map[byte]byte, chanmodes map[byte]ChanmodeCategory) []ModeChange {
	var changes []ModeChange
	add := true
	argIdx := 0

	nextArg := func() (string, bool) {
		if argIdx < len(args) {
			a := args[argIdx]
			argIdx++
			return a, true
		}
		return "", false
	}

	for i := 0; i < len(modestring); i++ {
		c := modestring[i]
		switch c {
		case '+':
			add = true
			continue
		case '-':
			add = false
			continue
		}

		change := ModeChange{Add: add, Letter: c}

		if !isChannel {
			changes = append(changes, change)
			continue
		}

		if _, isPrefix := memberPrefixModes[c]; isPrefix {
			if a, ok := nextArg(); ok {
				change.Arg = a
				change.HasArg = true
			}
		} else if cat, known := chanmodes[c]; known {
			switch cat {
			case ChanmodeA, ChanmodeB:
				if a, ok := nextArg(); ok {
					change.Arg = a
					change.HasArg = true
				}
			case ChanmodeC:
				if add {
					if a, ok := nextArg(); ok {
						change.Arg = a
						change.HasArg = true
					}
				}
			case ChanmodeD:
				// no argument
			}
		}

		changes = append(changes, change)
	}

	return changes
}
