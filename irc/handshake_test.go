package irc

import "testing"

func capLS(tokens string) Message {
	return ParseMessage([]byte(":server CAP * LS :" + tokens))
}

func TestHandshakeNoSASLGoesStraightToCapReqEnd(t *testing.T) {
	c := NewClient("irc.example.org", Config{Nick: "dan"})
	out := c.stepHandshake(capLS("server-time batch"))
	if len(out) == 0 || out[len(out)-1].Command != "CAP" || out[len(out)-1].Params[0] != "END" {
		t.Fatalf("expected CAP negotiation to end with CAP END, got %v", out)
	}
	if c.handshake != handshakeAwaitWelcome {
		t.Fatalf("expected handshake state to advance to AwaitWelcome, got %v", c.handshake)
	}
}

func TestHandshakeCapLsMultilineWaitsForFinal(t *testing.T) {
	c := NewClient("irc.example.org", Config{Nick: "dan"})
	out := c.stepHandshake(ParseMessage([]byte(":server CAP * LS * :server-time")))
	if out != nil {
		t.Fatalf("expected no outbound lines for a non-final CAP LS continuation, got %v", out)
	}
	if c.handshake != handshakeAwaitCaps {
		t.Fatalf("expected handshake to remain AwaitCaps during continuation")
	}
}

func TestHandshakeSASLSuccessPath(t *testing.T) {
	c := NewClient("irc.example.org", Config{Nick: "dan", SASL: &SASLConfig{User: "dan", Password: "hunter2"}})

	ls := capLS("sasl server-time")
	c.dispatchMessage(ls)
	out := c.stepHandshake(ls)
	if len(out) != 2 || out[0].Command != "CAP" || out[1].Command != "AUTHENTICATE" {
		t.Fatalf("expected CAP REQ sasl then AUTHENTICATE PLAIN, got %v", out)
	}
	if c.handshake != handshakeAwaitSaslPlus {
		t.Fatalf("expected AwaitSaslPlus state, got %v", c.handshake)
	}

	out = c.stepHandshake(ParseMessage([]byte("AUTHENTICATE +")))
	if len(out) != 1 || out[0].Command != "AUTHENTICATE" || out[0].Params[0] == "PLAIN" {
		t.Fatalf("expected base64 payload response to +, got %v", out)
	}
	if c.handshake != handshakeAwaitSasl903 {
		t.Fatalf("expected AwaitSasl903 state, got %v", c.handshake)
	}

	out = c.stepHandshake(ParseMessage([]byte(":server 903 dan :SASL authentication successful")))
	if len(out) == 0 || out[len(out)-1].Command != "CAP" {
		t.Fatalf("expected 903 success to resume capability negotiation, got %v", out)
	}
	if c.handshake != handshakeAwaitWelcome {
		t.Fatalf("expected AwaitWelcome state after SASL success, got %v", c.handshake)
	}
}

func TestHandshakeSASLFailureNumericsUnblock(t *testing.T) {
	for _, numeric := range []string{"902", "904", "905", "906", "907"} {
		c := NewClient("irc.example.org", Config{Nick: "dan", SASL: &SASLConfig{User: "dan", Password: "x"}})
		ls := capLS("sasl")
		c.dispatchMessage(ls)
		c.stepHandshake(ls)
		c.stepHandshake(ParseMessage([]byte("AUTHENTICATE +")))

		out := c.stepHandshake(ParseMessage([]byte(":server " + numeric + " dan :nope")))
		if c.handshake != handshakeAwaitWelcome {
			t.Fatalf("numeric %s: expected handshake to unblock to AwaitWelcome, stuck at %v", numeric, c.handshake)
		}
		if len(out) == 0 || out[len(out)-1].Command != "CAP" {
			t.Fatalf("numeric %s: expected CAP negotiation to resume, got %v", numeric, out)
		}
	}
}

func TestHandshakeWelcomeTriggersJoin(t *testing.T) {
	c := NewClient("irc.example.org", Config{Nick: "dan", Channels: []string{"#a", "#b"}})
	c.handshake = handshakeAwaitWelcome

	out := c.stepHandshake(ParseMessage([]byte(":server 001 dan :Welcome")))
	if len(out) != 1 || out[0].Command != "JOIN" || out[0].Params[0] != "#a,#b" {
		t.Fatalf("expected a single comma-joined JOIN line, got %v", out)
	}
	if c.handshake != handshakeRunning {
		t.Fatalf("expected handshake to reach Running, got %v", c.handshake)
	}
}

func TestHandshakeNicknameInUseRetries(t *testing.T) {
	c := NewClient("irc.example.org", Config{Nick: "dan"})
	out := c.stepHandshake(ParseMessage([]byte(":server 433 * dan :Nickname is already in use.")))
	if len(out) != 1 || out[0].Command != "NICK" || out[0].Params[0] != "dan_" {
		t.Fatalf("expected retried NICK with suffix, got %v", out)
	}
}
