package irc

import (
	"testing"
	"time"
)

func TestParseMessageBasic(t *testing.T) {
	msg := ParseMessage([]byte(":dan!d@localhost PRIVMSG Foo bar"))
	if msg.Source.Raw != "dan!d@localhost" {
		t.Errorf("expected raw source, got %q", msg.Source.Raw)
	}
	if msg.Source.Nick != "dan" || msg.Source.User != "d" || msg.Source.Host != "localhost" {
		t.Errorf("unexpected source: %+v", msg.Source)
	}
	if msg.Command != "PRIVMSG" {
		t.Errorf("expected command PRIVMSG, got %q", msg.Command)
	}
	if len(msg.Params) != 2 || msg.Params[0] != "Foo" || msg.Params[1] != "bar" {
		t.Errorf("unexpected params: %v", msg.Params)
	}
}

func TestParseMessageTrailing(t *testing.T) {
	msg := ParseMessage([]byte("PRIVMSG #chan :hello there friend"))
	if len(msg.Params) != 2 || msg.Params[1] != "hello there friend" {
		t.Errorf("unexpected params: %v", msg.Params)
	}
}

func TestParseMessageTags(t *testing.T) {
	msg := ParseMessage([]byte("@time=2021-01-01T00:00:00.000Z;id=123 :serv NOTICE * :hi"))
	if msg.Tags["id"] != "123" {
		t.Errorf("expected id tag 123, got %q", msg.Tags["id"])
	}
	if msg.Time.Year() != 2021 {
		t.Errorf("expected time tag to resolve to 2021, got %v", msg.Time)
	}
}

func TestParseMessageTagColonlessZoneOffset(t *testing.T) {
	msg := ParseMessage([]byte("@time=2021-06-01T12:30:00.000+0200 :serv NOTICE * :hi"))
	if msg.Time.Year() != 2021 || msg.Time.Hour() != 10 {
		t.Errorf("expected colon-less zone offset to resolve to 10:30 UTC, got %v", msg.Time)
	}
}

func TestParseMessageTagUnparsableFallsBackToNow(t *testing.T) {
	before := time.Now().UTC()
	msg := ParseMessage([]byte("@time=not-a-time :serv NOTICE * :hi"))
	if msg.Time.Before(before) {
		t.Errorf("expected an unparsable time tag to fall back to now, got %v", msg.Time)
	}
}

func TestParseMessageTagEscapes(t *testing.T) {
	msg := ParseMessage([]byte(`@note=a\sb\:c\\d :serv NOTICE * :hi`))
	if msg.Tags["note"] != `a b;c\d` {
		t.Errorf("expected unescaped tag value %q, got %q", `a b;c\d`, msg.Tags["note"])
	}
}

func TestMessageStringRoundTrip(t *testing.T) {
	m := NewMessage("PRIVMSG", "#chan", "hello world")
	s := m.String()
	if s != "PRIVMSG #chan :hello world" {
		t.Errorf("unexpected serialization: %q", s)
	}
	reparsed := ParseMessage([]byte(s))
	if reparsed.Command != "PRIVMSG" || len(reparsed.Params) != 2 || reparsed.Params[1] != "hello world" {
		t.Errorf("round-trip mismatch: %+v", reparsed)
	}
}

func TestMessageWithTagEscapesValue(t *testing.T) {
	m := NewMessage("TAGMSG", "#chan").WithTag("+note", "a;b c")
	s := m.String()
	if s != `@+note=a\:b\sc TAGMSG #chan` {
		t.Errorf("unexpected tag serialization: %q", s)
	}
}

func TestIsNumeric(t *testing.T) {
	if !ParseMessage([]byte(":server 001 nick :hi")).IsNumeric() {
		t.Errorf("expected 001 to be numeric")
	}
	if ParseMessage([]byte("PRIVMSG #c :hi")).IsNumeric() {
		t.Errorf("expected PRIVMSG to not be numeric")
	}
}
