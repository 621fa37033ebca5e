// Package extensions holds the bot's bundled plug-ins.
//
// Pipeline order, as wired by cmd/knob2:
//
//	Admin          private !login / !logout / !help and admin-only commands
//	CTCPVersion    CTCP VERSION requests
//	Sundry         welcome, server info, stats, MOTD and LINKS numerics
//	Hype           !hype and hype-like lines in channels
//	Karma          name++ / name--
//	QuoteRetriever !quote
//	Echo           repeats everything back (testing only)
//	QuoteRecorder  records every PRIVMSG for !quote
//
// An extension halts a message once it has answered it. Observers like the
// quote recorder only fall through, which is why they sit last.
package extensions

import (
	"strings"

	"github.com/aosdict/knob2/internal/irc"
)

// Session is the part of an IRC session extensions talk through.
// *irc.Client implements it.
type Session interface {
	Nick() string
	Send(line string) error
	Say(text, recipient string) error
	JoinChannel(name string) error
	SetNick(nick string) error
	Quit(reason string)
}

// replyTarget is where an answer to msg goes: the channel it was said in,
// or the sender for a private message.
func replyTarget(s Session, msg *irc.Message) string {
	if msg.IsChannel() {
		return msg.Target()
	}
	if strings.EqualFold(msg.Target(), s.Nick()) {
		return msg.Sender()
	}
	return msg.Target()
}

// isPrivate reports whether msg was addressed to us rather than a channel.
func isPrivate(s Session, msg *irc.Message) bool {
	return !msg.IsChannel() && strings.EqualFold(msg.Target(), s.Nick())
}
