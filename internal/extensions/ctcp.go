package extensions

import (
	"fmt"

	"github.com/aosdict/knob2/internal/irc"
)

const ctcpVersionRequest = ctcpDelim + "VERSION" + ctcpDelim

// CTCPVersion answers CTCP VERSION requests with build information.
type CTCPVersion struct {
	irc.Handlers
	session Session
}

func NewCTCPVersion(s Session) *CTCPVersion {
	c := &CTCPVersion{session: s}
	c.Handlers = irc.Handlers{"PRIVMSG": c.privmsg}
	return c
}

func (c *CTCPVersion) Name() string { return "CTCPVersion" }

func (c *CTCPVersion) privmsg(msg *irc.Message) (irc.Outcome, error) {
	if msg.Trail != ctcpVersionRequest {
		return irc.Abstain, nil
	}
	sender := msg.Sender()
	if sender == "" {
		return irc.Abstain, nil
	}
	reply := fmt.Sprintf("NOTICE %s :%sVERSION knob2 %s (built %s, commit %s)%s",
		sender, ctcpDelim, irc.Version, irc.BuildDate, irc.GitCommit, ctcpDelim)
	return irc.Halt, c.session.Send(reply)
}
