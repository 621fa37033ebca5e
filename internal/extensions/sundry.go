package extensions

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aosdict/knob2/internal/irc"
)

// SundryOptions chooses which of the claimed numerics are logged.
type SundryOptions struct {
	ShowServerInfo  bool
	ShowServerStats bool
	ShowMOTD        bool
}

// Sundry claims the connection-time chatter servers send (welcome, server
// info, statistics and MOTD) and LINKS replies, so they don't clutter the
// output. Everything it claims halts.
type Sundry struct {
	irc.Handlers
	session Session
	log     zerolog.Logger
	opts    SundryOptions

	// LINKS collection in progress; only touched on the dispatch goroutine
	links    *LinkTree
	linksFor string
}

func NewSundry(session Session, log zerolog.Logger, opts SundryOptions) *Sundry {
	s := &Sundry{session: session, log: log, opts: opts}

	info := s.show(opts.ShowServerInfo, "server info")
	stats := s.show(opts.ShowServerStats, "server stats")
	motd := s.show(opts.ShowMOTD, "motd")
	s.Handlers = irc.Handlers{
		irc.RplWelcome:       s.show(opts.ShowServerInfo, "welcome"),
		irc.RplYourHost:      info,
		irc.RplCreated:       info,
		irc.RplMyInfo:        s.myInfo,
		irc.RplISupport:      s.iSupport,
		irc.RplStatsConn:     stats,
		irc.RplLuserClient:   stats,
		irc.RplLuserOp:       stats,
		irc.RplLuserUnknown:  stats,
		irc.RplLuserChannels: stats,
		irc.RplLuserMe:       stats,
		irc.RplLocalUsers:    stats,
		irc.RplGlobalUsers:   stats,
		irc.RplMOTDStart:     motd,
		irc.RplMOTD:          motd,
		irc.RplEndOfMOTD:     motd,
		irc.RplLinks:         s.linksEntry,
		irc.RplEndOfLinks:    s.linksEnd,
	}
	return s
}

func (s *Sundry) Name() string { return "Sundry" }

// show returns a handler that logs the trail under kind when enabled.
func (s *Sundry) show(enabled bool, kind string) irc.HandlerFunc {
	return func(msg *irc.Message) (irc.Outcome, error) {
		if enabled {
			s.log.Info().Str("kind", kind).Msg(s.text(msg))
		}
		return irc.Halt, nil
	}
}

// text is the human part of a numeric: the trail, or for numerics with
// only middle parameters, those after our nick.
func (s *Sundry) text(msg *irc.Message) string {
	if msg.Trail != "" {
		return msg.Trail
	}
	if len(msg.Params) > 1 {
		return strings.Join(msg.Params[1:], " ")
	}
	return ""
}

// 004 <nick> <server> <version> <user modes> <channel modes> [...]
func (s *Sundry) myInfo(msg *irc.Message) (irc.Outcome, error) {
	if !s.opts.ShowServerInfo {
		return irc.Halt, nil
	}
	s.log.Info().
		Str("kind", "server info").
		Str("server", msg.Param(1)).
		Str("version", msg.Param(2)).
		Str("user_modes", msg.Param(3)).
		Str("channel_modes", msg.Param(4)).
		Strs("extra", tail(msg.Params, 5)).
		Msg("server version")
	return irc.Halt, nil
}

// 005 <nick> <token>... :are supported by this server
func (s *Sundry) iSupport(msg *irc.Message) (irc.Outcome, error) {
	if !s.opts.ShowServerInfo {
		return irc.Halt, nil
	}
	for _, token := range tail(msg.Params, 1) {
		s.log.Info().Str("kind", "server info").Msg("server supports " + token)
	}
	return irc.Halt, nil
}

// RequestLinks asks the server for LINKS and sends the rendered tree to
// replyTo when the reply ends. Only call it from a handler.
func (s *Sundry) RequestLinks(replyTo string) error {
	s.links = NewLinkTree()
	s.linksFor = replyTo
	return s.session.Send("LINKS")
}

// 364 <nick> <server> <hub> :<hops> <description>
func (s *Sundry) linksEntry(msg *irc.Message) (irc.Outcome, error) {
	if len(msg.Params) < 3 {
		return irc.Halt, nil
	}
	hopField, description, _ := strings.Cut(msg.Trail, " ")
	hops, err := strconv.Atoi(hopField)
	if err != nil {
		s.log.Warn().Str("line", msg.Raw()).Msg("bad hop count in LINKS reply")
		return irc.Halt, nil
	}
	if s.links == nil {
		// someone sent LINKS by hand
		s.links = NewLinkTree()
	}
	s.links.Add(msg.Param(1), msg.Param(2), hops, description)
	return irc.Halt, nil
}

// 365 <nick> <mask> :End of /LINKS list
func (s *Sundry) linksEnd(msg *irc.Message) (irc.Outcome, error) {
	tree, replyTo := s.links, s.linksFor
	s.links, s.linksFor = nil, ""
	if tree == nil {
		return irc.Halt, nil
	}

	lines := tree.Lines()
	if replyTo == "" {
		for _, line := range lines {
			s.log.Info().Str("kind", "links").Msg(line)
		}
		return irc.Halt, nil
	}
	if len(lines) == 0 {
		return irc.Halt, s.session.Say("No servers to show.", replyTo)
	}
	for _, line := range lines {
		if err := s.session.Say(line, replyTo); err != nil {
			return irc.Halt, err
		}
	}
	return irc.Halt, s.session.Say("End of server list, as seen from "+msg.Prefix+".", replyTo)
}

func tail(params []string, from int) []string {
	if from >= len(params) {
		return nil
	}
	return params[from:]
}
