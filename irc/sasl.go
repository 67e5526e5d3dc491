package irc

import (
	"bytes"
	"encoding/base64"
)

// SASLClient performs one SASL mechanism's client side of the exchange.
// Grounded on the teacher's SASLClient interface (irc/session.go).
type SASLClient interface {
	Mechanism() string
	Respond(challenge string) (response string, err error)
}

// SASLPlain implements SASL PLAIN, per spec.md §6/§8.
type SASLPlain struct {
	Username string
	Password string
}

func (a *SASLPlain) Mechanism() string { return "PLAIN" }

// Respond builds the base64 "authzid\0authcid\0password" payload in
// response to the server's "+" challenge.
func (a *SASLPlain) Respond(challenge string) (string, error) {
	payload := SASLPlainPayload(a.Username, a.Password)
	return payload, nil
}

// SASLPlainPayload constructs the base64 SASL PLAIN payload for the given
// username/password, using the username as both authzid and authcid, per
// spec.md §8 scenario 5.
func SASLPlainPayload(username, password string) string {
	user := []byte(username)
	pass := []byte(password)
	payload := bytes.Join([][]byte{user, user, pass}, []byte{0})
	return base64.StdEncoding.EncodeToString(payload)
}
