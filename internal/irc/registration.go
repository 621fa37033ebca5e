package irc

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/rs/zerolog"
)

// Phase is the registration state of a connection.
type Phase int

const (
	PhaseConnecting Phase = iota
	PhaseAwaitingWelcome
	PhaseRegistered
)

func (p Phase) String() string {
	switch p {
	case PhaseConnecting:
		return "connecting"
	case PhaseAwaitingWelcome:
		return "awaiting-welcome"
	case PhaseRegistered:
		return "registered"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Identity is what the bot registers with.
type Identity struct {
	Nick     string
	Ident    string
	RealName string
}

const randomNickLength = 8

// registration drives USER/NICK until the server welcomes us.
type registration struct {
	phase   Phase
	pending string
	nick    string

	send       func(string) error
	log        zerolog.Logger
	randomNick func() string
}

func newRegistration(send func(string) error, log zerolog.Logger) *registration {
	return &registration{
		send:       send,
		log:        log,
		randomNick: randomLowerNick,
	}
}

func (r *registration) start(host string, id Identity) error {
	r.phase = PhaseConnecting
	if err := r.send(fmt.Sprintf("USER %s %s %s :%s", id.Ident, host, host, id.RealName)); err != nil {
		return err
	}
	if err := r.send("NICK " + id.Nick); err != nil {
		return err
	}
	r.pending = id.Nick
	r.phase = PhaseAwaitingWelcome
	return nil
}

// handle inspects one message while awaiting the welcome numeric and
// reports whether registration completed.
func (r *registration) handle(msg *Message) (bool, error) {
	switch msg.Command {
	case RplWelcome:
		// the server may have altered the nick we asked for
		r.nick = msg.Param(0)
		if r.nick == "" {
			r.nick = r.pending
		}
		r.phase = PhaseRegistered
		r.log.Info().Str("nick", r.nick).Msg("registered")
		return true, nil

	case ErrErroneusNickname:
		rejected := r.rejected(msg)
		candidate := alphaNick(rejected)
		if candidate == "" || candidate == rejected {
			candidate = r.randomNick()
		}
		r.log.Warn().Str("rejected", rejected).Str("next", candidate).Msg("erroneous nickname")
		return false, r.retry(candidate)

	case ErrNicknameInUse:
		rejected := r.rejected(msg)
		r.log.Warn().Str("rejected", rejected).Msg("nickname already in use")
		return false, r.retry(rejected + "_")

	case "PING":
		return false, r.send("PONG :" + pingToken(msg))

	case "NOTICE":
		r.log.Info().Str("from", msg.Prefix).Msg(msg.Trail)

	default:
		r.log.Debug().Str("command", msg.Command).Msg(msg.Raw())
	}
	return false, nil
}

func (r *registration) rejected(msg *Message) string {
	if nick := msg.Param(1); nick != "" {
		return nick
	}
	return r.pending
}

func (r *registration) retry(nick string) error {
	r.pending = nick
	return r.send("NICK " + nick)
}

// alphaNick strips trailing underscores and then every non-letter.
func alphaNick(nick string) string {
	nick = strings.TrimRight(nick, "_")
	return strings.Map(func(r rune) rune {
		if ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') {
			return r
		}
		return -1
	}, nick)
}

func randomLowerNick() string {
	b := make([]byte, randomNickLength)
	for i := range b {
		b[i] = byte('a' + rand.Intn(26))
	}
	return string(b)
}

// pingToken is the value a PONG should echo back.
func pingToken(msg *Message) string {
	if msg.Trail != "" {
		return msg.Trail
	}
	if tok := msg.Param(0); tok != "" {
		return tok
	}
	return "Pong"
}
