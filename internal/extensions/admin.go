package extensions

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aosdict/knob2/internal/irc"
	"github.com/aosdict/knob2/internal/storage"
)

// LinksRequester starts a LINKS query whose rendered reply goes to replyTo.
type LinksRequester interface {
	RequestLinks(replyTo string) error
}

// Admin answers commands sent to the bot in private. Anyone may use
// !login, !logout, !help and !version; the rest need a prior !login.
type Admin struct {
	irc.Handlers
	session  Session
	log      zerolog.Logger
	password string
	links    LinksRequester

	// logged-in nicks, casefolded
	admins map[string]bool
}

// NewAdmin returns the admin extension. links may be nil, which disables !links.
func NewAdmin(s Session, log zerolog.Logger, password string, links LinksRequester) *Admin {
	a := &Admin{
		session:  s,
		log:      log,
		password: password,
		links:    links,
		admins:   make(map[string]bool),
	}
	a.Handlers = irc.Handlers{
		"PRIVMSG": a.privmsg,
		"NICK":    a.forget,
		"QUIT":    a.forget,
	}
	return a
}

func (a *Admin) Name() string { return "Admin" }

// IsAdmin reports whether nick is logged in.
func (a *Admin) IsAdmin(nick string) bool {
	return a.admins[storage.Casefold(nick)]
}

// forget logs an admin out when they change nick or leave.
func (a *Admin) forget(msg *irc.Message) (irc.Outcome, error) {
	key := storage.Casefold(msg.Sender())
	if a.admins[key] {
		delete(a.admins, key)
		a.log.Info().Str("nick", msg.Sender()).Str("command", msg.Command).Msg("admin logged out")
	}
	return irc.Abstain, nil
}

func (a *Admin) privmsg(msg *irc.Message) (irc.Outcome, error) {
	if !isPrivate(a.session, msg) || !strings.HasPrefix(msg.Trail, "!") {
		return irc.Abstain, nil
	}
	nick := msg.Sender()
	cmd, args, _ := strings.Cut(strings.TrimSpace(msg.Trail), " ")
	args = strings.TrimSpace(args)

	var err error
	switch strings.ToLower(cmd) {
	case "!help":
		err = a.cmdHelp(nick)
	case "!version":
		err = a.cmdVersion(nick)
	case "!login":
		err = a.cmdLogin(nick, msg.Prefix, args)
	case "!logout":
		err = a.cmdLogout(nick)
	case "!join", "!nick", "!say", "!quit", "!links":
		if !a.IsAdmin(nick) {
			a.log.Warn().Str("from", msg.Prefix).Str("command", cmd).Msg("admin command refused")
			err = a.session.Say("Sorry, only my admins can issue that command", nick)
			break
		}
		a.log.Info().Str("from", msg.Prefix).Str("command", cmd).Str("args", args).Msg("admin command")
		err = a.adminCommand(nick, strings.ToLower(cmd), args)
	default:
		return irc.Abstain, nil
	}
	return irc.Halt, err
}

func (a *Admin) adminCommand(nick, cmd, args string) error {
	switch cmd {
	case "!join":
		if args == "" {
			return a.session.Say("Usage: !join <#channel>", nick)
		}
		return a.session.JoinChannel(args)
	case "!nick":
		if args == "" {
			return a.session.Say("Usage: !nick <newnick>", nick)
		}
		return a.session.SetNick(args)
	case "!say":
		target, text, ok := strings.Cut(args, " ")
		if !ok || strings.TrimSpace(text) == "" {
			return a.session.Say("Usage: !say <target> <text>", nick)
		}
		return a.session.Say(strings.TrimSpace(text), target)
	case "!quit":
		reason := args
		if reason == "" {
			reason = "Requested by " + nick
		}
		a.session.Quit(reason)
		return nil
	case "!links":
		if a.links == nil {
			return a.session.Say("LINKS is not available", nick)
		}
		return a.links.RequestLinks(nick)
	}
	return nil
}

func (a *Admin) cmdHelp(nick string) error {
	lines := []string{
		"Available commands:",
		"!login <password> - log in as an admin",
		"!logout - log out",
		"!version - displays bot version information",
		"!quote - says something someone once said",
	}
	if a.IsAdmin(nick) {
		lines = append(lines,
			" ",
			"Admin commands:",
			"!join <#channel>",
			"!nick <newnick>",
			"!say <target> <text>",
			"!links - shows the servers currently linked",
			"!quit [reason]",
		)
	}
	return a.sayAll(nick, lines)
}

func (a *Admin) cmdVersion(nick string) error {
	return a.sayAll(nick, []string{
		fmt.Sprintf("knob2 version %s", irc.Version),
		fmt.Sprintf("Built: %s", irc.BuildDate),
		fmt.Sprintf("Commit: %s", irc.GitCommit),
	})
}

func (a *Admin) cmdLogin(nick, prefix, password string) error {
	if password == "" {
		return a.session.Say("Usage: !login <password>", nick)
	}
	if a.password == "" || subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) != 1 {
		a.log.Warn().Str("from", prefix).Msg("incorrect login attempt")
		return a.session.Say("Password incorrect", nick)
	}
	a.admins[storage.Casefold(nick)] = true
	a.log.Info().Str("from", prefix).Msg("successful login")
	return a.session.Say("Password accepted, you are now an admin. Type !help for a list of admin-only commands", nick)
}

func (a *Admin) cmdLogout(nick string) error {
	key := storage.Casefold(nick)
	if !a.admins[key] {
		return a.session.Say("You're not logged in!", nick)
	}
	delete(a.admins, key)
	a.log.Info().Str("nick", nick).Msg("logged out")
	return a.session.Say("You have been logged out", nick)
}

func (a *Admin) sayAll(recipient string, lines []string) error {
	for _, line := range lines {
		if err := a.session.Say(line, recipient); err != nil {
			return err
		}
	}
	return nil
}
