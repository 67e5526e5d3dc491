package config

import "testing"

func TestParseRequiresAddr(t *testing.T) {
	_, err := Parse([]byte("nick: gopher\n"))
	if err == nil {
		t.Errorf("expected an error for a missing addr")
	}
}

func TestParseRequiresNick(t *testing.T) {
	_, err := Parse([]byte("addr: irc.example.org:6697\n"))
	if err == nil {
		t.Errorf("expected an error for a missing nick")
	}
}

func TestParseDefaultsUserAndReal(t *testing.T) {
	cfg, err := Parse([]byte("addr: irc.example.org:6697\nnick: gopher\n"))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if cfg.User != "gopher" {
		t.Errorf("expected user to default to nick, got %q", cfg.User)
	}
	if cfg.Real != "gopher" {
		t.Errorf("expected real to default to nick, got %q", cfg.Real)
	}
}

func TestParseSASL(t *testing.T) {
	cfg, err := Parse([]byte(`
addr: irc.example.org:6697
nick: gopher
sasl:
  user: gopher
  password: hunter2
`))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if cfg.SASL == nil {
		t.Fatalf("expected SASL config to be set")
	}
	if cfg.SASL.Password == nil || *cfg.SASL.Password != "hunter2" {
		t.Errorf("expected SASL password hunter2, got %v", cfg.SASL.Password)
	}
}

func TestLoadUnreadableFile(t *testing.T) {
	_, err := Load("/nonexistent/path/to/config.yaml")
	if err == nil {
		t.Errorf("expected an error for an unreadable file")
	}
}
