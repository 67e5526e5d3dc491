package irc

import "strings"

// clientCaps is the set of capabilities the client itself requests during
// negotiation, beyond sasl (which is requested separately when configured),
// per spec.md §4.5.
var clientCaps = []string{
	"message-tags",
	"echo-message",
	"server-time",
	"batch",
	"away-notify",
	"multi-prefix",
}

// SASLConfig holds the credentials for a SASL PLAIN handshake.
type SASLConfig struct {
	User     string
	Password string
}

// Config is the set of connection parameters a host supplies to NewClient,
// grounded on the teacher's Session config struct (irc/session.go).
type Config struct {
	Nick     string
	User     string
	RealName string
	Channels []string
	SASL     *SASLConfig
}

// Client is the protocol engine of spec.md §2: it owns the framer, the
// state store, the batch buffer, the typing limiter and the handshake
// driver, and exposes the three host-facing entry points of spec.md §5 —
// OnConnectionEstablished, OnBytesReceived, OnConnectionClosed — plus
// outbound helpers. It performs no I/O itself; the host owns the socket.
type Client struct {
	config Config
	state  *State

	framer  *Framer
	batches *batchBuffer

	typingLimits *typingLimiter

	onTrace TraceFunc

	motdPending []Event

	handshake handshakeState
	nickTries int
}

// NewClient builds a Client for the given server host and configuration.
// serverHost seeds State.ServerName until an ISUPPORT NETWORK token (if
// any) overrides it.
func NewClient(serverHost string, config Config) *Client {
	return &Client{
		config:       config,
		state:        NewState(serverHost, config.Nick),
		framer:       &Framer{},
		batches:      newBatchBuffer(),
		typingLimits: newTypingLimiter(),
		handshake:    handshakeAwaitCaps,
	}
}

// State exposes the client's state store for read-only host inspection.
func (c *Client) State() *State {
	return c.state
}

// SetTrace installs (or clears, with nil) the trace sink, per spec.md §9.
func (c *Client) SetTrace(fn TraceFunc) {
	c.onTrace = fn
}

// OnConnectionEstablished returns the registration lines to send the moment
// the transport connects, per spec.md §4.5: capability discovery followed
// by NICK/USER.
func (c *Client) OnConnectionEstablished() [][]byte {
	var out []Message
	out = append(out, NewMessage("CAP", "LS", "302"))
	out = append(out, NewMessage("NICK", c.config.Nick))
	realName := c.config.RealName
	if realName == "" {
		realName = c.config.Nick
	}
	out = append(out, NewMessage("USER", c.config.User, "0", "*", realName))
	return c.render(out)
}

// OnBytesReceived feeds newly-arrived bytes through the framer, dispatching
// each complete line, per spec.md §5's synchronous on_bytes_received model.
// It returns every semantic event produced, in arrival order, and every
// outbound line the host should write back, in send order.
func (c *Client) OnBytesReceived(data []byte) (events []Event, outbound [][]byte) {
	for _, line := range c.framer.Push(data) {
		msg := ParseMessage(line)
		c.trace(TraceIn, string(line))

		ev, out := c.dispatchMessage(msg)
		events = append(events, ev...)

		hsOut := c.stepHandshake(msg)
		out = append(out, hsOut...)

		outbound = append(outbound, c.render(out)...)
	}
	return events, outbound
}

// OnConnectionClosed reports connection loss as a single event, per
// spec.md §4.4.
func (c *Client) OnConnectionClosed() Event {
	return ConnectionClosedEvent{baseEvent{Envelope{}}}
}

// SendMessage serializes and traces a host-originated message.
func (c *Client) SendMessage(m Message) []byte {
	line := c.render([]Message{m})
	return line[0]
}

func (c *Client) render(msgs []Message) [][]byte {
	out := make([][]byte, 0, len(msgs))
	for _, m := range msgs {
		c.trace(TraceOut, m.String())
		out = append(out, m.Line())
	}
	return out
}

// supportedCapsIn returns the subset of clientCaps present in advertised,
// in clientCaps order.
func supportedCapsIn(advertised map[string]string) []string {
	var out []string
	for _, name := range clientCaps {
		if _, ok := advertised[name]; ok {
			out = append(out, name)
		}
	}
	return out
}

// negotiateCapabilities builds the CAP REQ/CAP END sequence that ends
// capability negotiation, per spec.md §4.5 step 3.
func (c *Client) negotiateCapabilities() []Message {
	var out []Message
	for _, name := range supportedCapsIn(c.state.Capabilities) {
		out = append(out, NewMessage("CAP", "REQ", name))
	}
	out = append(out, NewMessage("CAP", "END"))
	return out
}

func hasSASLCap(advertised map[string]string) bool {
	_, ok := advertised["sasl"]
	return ok
}

// joinLines builds the JOIN lines for the configured channels.
func (c *Client) joinLines() []Message {
	var out []Message
	if len(c.config.Channels) == 0 {
		return out
	}
	out = append(out, NewMessage("JOIN", strings.Join(c.config.Channels, ",")))
	return out
}
