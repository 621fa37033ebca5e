package extensions

import "github.com/aosdict/knob2/internal/irc"

// Echo repeats every PRIVMSG back where it came from.
type Echo struct {
	irc.Handlers
	session Session
}

func NewEcho(s Session) *Echo {
	e := &Echo{session: s}
	e.Handlers = irc.Handlers{"PRIVMSG": e.privmsg}
	return e
}

func (e *Echo) Name() string { return "Echo" }

func (e *Echo) privmsg(msg *irc.Message) (irc.Outcome, error) {
	if msg.Trail == "" {
		return irc.Abstain, nil
	}
	return irc.Handled, e.session.Say(msg.Trail, replyTarget(e.session, msg))
}
