package irc

import "fmt"

// TraceDirection distinguishes inbound traffic, outbound traffic, and
// internal state-inconsistency warnings on the trace sink.
type TraceDirection int

const (
	TraceIn TraceDirection = iota
	TraceOut
	TraceWarn
)

// TraceFunc is an injectable hook receiving every framed inbound line, every
// serialized outbound line, and every state-inconsistency warning (spec.md
// §7: malformed MODE target, PART of an unknown member, and the like).
// Grounded on the teacher's Debug/RawMessageEvent machinery (irc/states.go);
// replaces the source's stray /tmp/received.log writes per spec.md §9
// Design Notes. The zero value is a no-op.
type TraceFunc func(direction TraceDirection, line string)

func (c *Client) trace(direction TraceDirection, line string) {
	if c.onTrace != nil {
		c.onTrace(direction, line)
	}
}

func (c *Client) warnf(format string, args ...interface{}) {
	c.trace(TraceWarn, fmt.Sprintf(format, args...))
}
