// Command wireclient is a minimal terminal IRC client wiring the irc core
// engine to a TLS socket and the termui front-end. Grounded on the
// teacher's cmd/irc/main.go event loop.
package main

import (
	"bufio"
	"crypto/tls"
	"fmt"
	"log"
	"net"
	"os"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/term"

	"git.sr.ht/~kalium/wireclient/config"
	"git.sr.ht/~kalium/wireclient/irc"
	"git.sr.ht/~kalium/wireclient/termui"
)

func main() {
	configPath := os.Getenv("WIRECLIENT_CONFIG")
	if configPath == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			log.Fatalln(err)
		}
		configPath = configDir + "/wireclient/wireclient.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalln(err)
	}

	clientConfig := irc.Config{
		Nick:     cfg.Nick,
		User:     cfg.User,
		RealName: cfg.Real,
		Channels: cfg.Channels,
	}
	if cfg.SASL != nil {
		password := ""
		if cfg.SASL.Password != nil {
			password = *cfg.SASL.Password
		} else {
			password = promptPassword()
		}
		clientConfig.SASL = &irc.SASLConfig{User: cfg.SASL.User, Password: password}
	}

	app, err := termui.New()
	if err != nil {
		log.Fatalln(err)
	}
	defer app.Close()

	serverHost, _, _ := net.SplitHostPort(cfg.Addr)
	client := irc.NewClient(serverHost, clientConfig)
	if cfg.Trace {
		client.SetTrace(func(dir irc.TraceDirection, line string) {
			app.AddLine(termui.PlainString(traceLabel(dir)+line), time.Now())
		})
	}

	app.AddLine(termui.PlainString(fmt.Sprintf("Connecting to %s...", cfg.Addr)), time.Now())

	conn, err := dial(cfg)
	if err != nil {
		log.Fatalln(err)
	}
	defer conn.Close()

	incoming := make(chan []byte, 64)
	closed := make(chan struct{})
	go readLoop(conn, incoming, closed)

	for _, line := range client.OnConnectionEstablished() {
		if _, err := conn.Write(line); err != nil {
			log.Fatalln(err)
		}
	}

	sess := &session{app: app, client: client, conn: conn}
	if len(cfg.Channels) > 0 {
		sess.current = cfg.Channels[0]
	}

	typingTicker := time.NewTicker(time.Second)
	defer typingTicker.Stop()

	for !app.ShouldExit() {
		select {
		case data, ok := <-incoming:
			if !ok {
				app.AddLine(termui.PlainString("Connection closed"), time.Now())
				return
			}
			events, outbound := client.OnBytesReceived(data)
			for _, ev := range events {
				handleEvent(app, ev)
			}
			for _, line := range outbound {
				if _, err := conn.Write(line); err != nil {
					log.Fatalln(err)
				}
			}
		case now := <-typingTicker.C:
			for _, ev := range client.ExpireTyping(now) {
				handleEvent(app, ev)
			}
		case ev := <-app.Events:
			sess.handleUIEvent(ev)
		case <-closed:
			return
		}
	}
}

// session holds the small bit of per-connection state the host needs that
// the core irc.Client does not track for it: which channel the input line
// currently addresses.
type session struct {
	app     *termui.UI
	client  *irc.Client
	conn    net.Conn
	current string
}

func (s *session) send(m irc.Message) {
	if _, err := s.conn.Write(s.client.SendMessage(m)); err != nil {
		log.Fatalln(err)
	}
}

func (s *session) handleUIEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		s.app.Resize()
	case *tcell.EventKey:
		s.handleKey(ev)
	}
}

func (s *session) handleKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyCtrlC:
		s.app.Exit()
	case tcell.KeyCtrlL:
		s.app.Resize()
	case tcell.KeyPgUp:
		s.app.ScrollUp()
	case tcell.KeyPgDn:
		s.app.ScrollDown()
	case tcell.KeyLeft:
		s.app.InputLeft()
	case tcell.KeyRight:
		s.app.InputRight()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		s.app.InputBackspace()
	case tcell.KeyEnter:
		s.handleInput(s.app.InputEnter())
	case tcell.KeyRune:
		s.app.InputRune(ev.Rune())
		if s.current != "" && !s.app.InputIsCommand() && s.client.ShouldSendActiveTypingUpdate(s.current) {
			s.send(irc.NewMessage("TAGMSG", s.current).WithTag("+typing", "active"))
			s.client.MarkSentActiveTypingUpdate(s.current)
		}
	}
}

func (s *session) handleInput(content string) {
	cmd, args := parseCommand(content)
	switch cmd {
	case "":
		if args == "" || s.current == "" {
			return
		}
		s.send(irc.NewMessage("PRIVMSG", s.current, args))
		if s.client.ShouldSendDoneTypingUpdate(s.current) {
			s.send(irc.NewMessage("TAGMSG", s.current).WithTag("+typing", "done"))
			s.client.MarkSentDoneTypingUpdate(s.current)
		}
	case "J", "JOIN":
		s.send(irc.NewMessage("JOIN", args))
		s.current = args
	case "PART":
		target := args
		if target == "" {
			target = s.current
		}
		if target != "" {
			s.send(irc.NewMessage("PART", target))
		}
	case "MSG":
		split := strings.SplitN(args, " ", 2)
		if len(split) < 2 {
			return
		}
		s.send(irc.NewMessage("PRIVMSG", split[0], split[1]))
	}
}

func dial(cfg config.Config) (net.Conn, error) {
	if cfg.NoTLS {
		return net.Dial("tcp", cfg.Addr)
	}
	return tls.Dial("tcp", cfg.Addr, nil)
}

func promptPassword() string {
	fmt.Fprint(os.Stderr, "SASL password: ")
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		log.Fatalln(err)
	}
	return string(b)
}

func traceLabel(dir irc.TraceDirection) string {
	switch dir {
	case irc.TraceIn:
		return "\x0314< "
	case irc.TraceOut:
		return "\x0314> "
	default:
		return "\x034! "
	}
}

func readLoop(conn net.Conn, out chan<- []byte, closed chan<- struct{}) {
	r := bufio.NewReaderSize(conn, 4096)
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			out <- chunk
		}
		if err != nil {
			close(out)
			close(closed)
			return
		}
	}
}

func handleEvent(app *termui.UI, ev irc.Event) {
	now := time.Now()
	switch ev := ev.(type) {
	case irc.NewMessageEvent:
		line := termui.RenderMessage(ev.Channel+" ", ev.Message, irc.ExtractURLs(ev.Message))
		app.AddLine(line, now)
	case irc.NewMessageFromServerEvent:
		line := termui.RenderMessage("", ev.Message, irc.ExtractURLs(ev.Message))
		app.AddLine(line, now)
	case irc.ChannelJoinedEvent:
		app.AddLine(termui.PlainString(fmt.Sprintf("\x033+\x0314%s has joined %s", ev.User.Nick, ev.Channel)), now)
	case irc.ChannelPartEvent:
		app.AddLine(termui.PlainString(fmt.Sprintf("\x034-\x0314%s has left %s", ev.User.Nick, ev.Channel)), now)
	case irc.ChannelKickEvent:
		app.AddLine(termui.PlainString(fmt.Sprintf("\x034%s was kicked from %s by %s (%s)", ev.KickedNick, ev.Channel, ev.User.Nick, ev.Reason)), now)
	case irc.QuitEvent:
		app.AddLine(termui.PlainString(fmt.Sprintf("\x034%s has quit (%s)", ev.User.Nick, ev.Reason)), now)
	case irc.NickChangedEvent:
		app.AddLine(termui.PlainString(fmt.Sprintf("%s is now known as %s", ev.OldNick, ev.NewNick)), now)
	case irc.ChannelTopicEvent:
		app.AddLine(termui.PlainString(fmt.Sprintf("Topic for %s: %s", ev.Channel, ev.Topic)), now)
	case irc.ConnectionClosedEvent:
		app.AddLine(termui.PlainString("Connection closed"), now)
	case irc.MessageEvent:
		// unrecognized command; nothing to render
	}
}

func parseCommand(s string) (command, args string) {
	if s == "" {
		return
	}
	if s[0] != '/' {
		args = s
		return
	}
	i := strings.IndexByte(s, ' ')
	if i < 0 {
		i = len(s)
	}
	command = strings.ToUpper(s[1:i])
	args = strings.TrimLeft(s[i:], " ")
	return
}
