package irc

// handshakeState models the registration sequence of spec.md §4.5 as an
// explicit state machine, replacing the source's predicate/continuation
// queue (spec.md §9 Design Notes).
type handshakeState int

const (
	handshakeAwaitCaps handshakeState = iota
	handshakeAwaitSaslPlus
	handshakeAwaitSasl903
	handshakeAwaitWelcome
	handshakeRunning
)

// saslClient builds the SASLClient for the handshake's configured mechanism.
// PLAIN is the only mechanism spec.md §6/§8 requires; this is the one place
// that decision is made, so adding a mechanism later only touches here.
func (c *Client) saslClient() SASLClient {
	return &SASLPlain{Username: c.config.SASL.User, Password: c.config.SASL.Password}
}

func isCapLsFinal(msg Message) bool {
	if msg.Command != "CAP" || len(msg.Params) < 3 || msg.Params[1] != "LS" {
		return false
	}
	if len(msg.Params) == 4 && msg.Params[2] == "*" {
		return false
	}
	return true
}

// stepHandshake advances the registration state machine for one incoming
// message and returns any outbound lines it triggers. Capability merging
// itself happens in dispatchMessage; this only drives the sequence.
func (c *Client) stepHandshake(msg Message) []Message {
	if c.handshake != handshakeRunning && msg.Command == errNicknameinuse {
		c.nickTries++
		newNick := c.config.Nick + "_"
		c.config.Nick = newNick
		c.state.SelfNick = newNick
		return []Message{NewMessage("NICK", newNick)}
	}

	switch c.handshake {
	case handshakeAwaitCaps:
		if !isCapLsFinal(msg) {
			return nil
		}
		if c.config.SASL != nil && hasSASLCap(c.state.Capabilities) {
			c.handshake = handshakeAwaitSaslPlus
			return []Message{
				NewMessage("CAP", "REQ", "sasl"),
				NewMessage("AUTHENTICATE", c.saslClient().Mechanism()),
			}
		}
		c.handshake = handshakeAwaitWelcome
		return c.negotiateCapabilities()

	case handshakeAwaitSaslPlus:
		if msg.Command != "AUTHENTICATE" || len(msg.Params) < 1 {
			return nil
		}
		payload, err := c.saslClient().Respond(msg.Params[0])
		if err != nil {
			c.warnf("SASL response error: %s", err)
			return nil
		}
		c.handshake = handshakeAwaitSasl903
		return []Message{NewMessage("AUTHENTICATE", payload)}

	case handshakeAwaitSasl903:
		if msg.Command != rplSaslsuccess && !saslTerminalFailures[msg.Command] {
			return nil
		}
		c.handshake = handshakeAwaitWelcome
		return c.negotiateCapabilities()

	case handshakeAwaitWelcome:
		if msg.Command != rplWelcome {
			return nil
		}
		c.handshake = handshakeRunning
		return c.joinLines()
	}

	return nil
}
