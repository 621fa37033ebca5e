package extensions

import (
	"regexp"
	"strings"

	"github.com/ergochat/irc-go/ircfmt"

	"github.com/aosdict/knob2/internal/irc"
)

var hypePattern = regexp.MustCompile(`^([gG][eE][tT] +)?[hH]+[yY]+[pP]+[eE]+!*`)

// Hype answers !hype, and anything that starts out sounding hyped, with HYPE.
// Channels only.
type Hype struct {
	irc.Handlers
	session Session
}

func NewHype(s Session) *Hype {
	h := &Hype{session: s}
	h.Handlers = irc.Handlers{"PRIVMSG": h.privmsg}
	return h
}

func (h *Hype) Name() string { return "Hype" }

func (h *Hype) privmsg(msg *irc.Message) (irc.Outcome, error) {
	if !msg.IsChannel() {
		return irc.Abstain, nil
	}
	text := ircfmt.Strip(msg.Trail)
	if !strings.HasPrefix(text, "!hype") && !hypePattern.MatchString(text) {
		return irc.Abstain, nil
	}
	return irc.Halt, h.session.Say("HYPE", msg.Target())
}
