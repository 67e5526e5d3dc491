package irc

import (
	"reflect"
	"testing"
)

func TestParseCaps(t *testing.T) {
	caps := ParseCaps("sasl=PLAIN,EXTERNAL message-tags server-time=")
	want := []Cap{
		{Name: "sasl", Value: "PLAIN,EXTERNAL"},
		{Name: "message-tags"},
		{Name: "server-time", Value: ""},
	}
	if !reflect.DeepEqual(caps, want) {
		t.Fatalf("unexpected caps: %+v", caps)
	}
}

func TestParsePrefix(t *testing.T) {
	modes, symbols, ok := parsePrefix("(ov)@+")
	if !ok {
		t.Fatalf("expected parsePrefix to succeed")
	}
	if string(modes) != "ov" || string(symbols) != "@+" {
		t.Fatalf("unexpected modes/symbols: %q/%q", modes, symbols)
	}
}

func TestParsePrefixRejectsMismatchedLengths(t *testing.T) {
	if _, _, ok := parsePrefix("(ov)@"); ok {
		t.Fatalf("expected mismatched mode/symbol lengths to be rejected")
	}
}

func TestParseChanmodes(t *testing.T) {
	cats := parseChanmodes("beI,k,l,imnpst")
	if cats['b'] != ChanmodeA || cats['e'] != ChanmodeA || cats['I'] != ChanmodeA {
		t.Fatalf("expected b/e/I in category A, got %+v", cats)
	}
	if cats['k'] != ChanmodeB {
		t.Fatalf("expected k in category B")
	}
	if cats['l'] != ChanmodeC {
		t.Fatalf("expected l in category C")
	}
	if cats['m'] != ChanmodeD || cats['t'] != ChanmodeD {
		t.Fatalf("expected m/t in category D")
	}
}

func TestSplitMemberPrefixes(t *testing.T) {
	prefixes, rest := splitMemberPrefixes("@+dan", []byte{'@', '+'})
	if prefixes != "@+" || rest != "dan" {
		t.Fatalf("unexpected split: %q / %q", prefixes, rest)
	}

	prefixes, rest = splitMemberPrefixes("dan", []byte{'@', '+'})
	if prefixes != "" || rest != "dan" {
		t.Fatalf("unexpected split for unprefixed nick: %q / %q", prefixes, rest)
	}
}

func TestIterModestringChannelConsumesArgsByCategory(t *testing.T) {
	memberPrefixModes := map[byte]byte{'o': '@', 'v': '+'}
	chanmodes := map[byte]ChanmodeCategory{'b': ChanmodeA, 'k': ChanmodeB, 'l': ChanmodeC, 'n': ChanmodeD}

	changes := IterModestring("+o-l+bk", []string{"dan", "oldkey", "*!*@host"}, true, memberPrefixModes, chanmodes)
	if len(changes) != 4 {
		t.Fatalf("expected 4 changes, got %+v", changes)
	}
	if changes[0].Letter != 'o' || !changes[0].Add || changes[0].Arg != "dan" {
		t.Fatalf("unexpected change[0]: %+v", changes[0])
	}
	if changes[1].Letter != 'l' || changes[1].Add {
		t.Fatalf("unexpected change[1]: %+v", changes[1])
	}
	if changes[1].HasArg {
		t.Fatalf("expected -l to consume no argument (category C removal)")
	}
	if changes[2].Letter != 'b' || !changes[2].Add || changes[2].Arg != "oldkey" {
		t.Fatalf("unexpected change[2]: %+v", changes[2])
	}
	if changes[3].Letter != 'k' || !changes[3].Add || changes[3].Arg != "*!*@host" {
		t.Fatalf("unexpected change[3]: %+v", changes[3])
	}
}

func TestIterModestringUserTargetConsumesNoArgs(t *testing.T) {
	changes := IterModestring("+iw", nil, false, nil, nil)
	if len(changes) != 2 || changes[0].HasArg || changes[1].HasArg {
		t.Fatalf("expected no arguments consumed for user target, got %+v", changes)
	}
}
