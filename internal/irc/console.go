package irc

import (
	"bufio"
	"io"
	"strings"
)

// readConsole delivers operator input lines until the reader is exhausted,
// then closes the channel.
func readConsole(r io.Reader, done <-chan struct{}) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case ch <- scanner.Text():
			case <-done:
				return
			}
		}
	}()
	return ch
}

// handleConsole runs one operator command:
//
//	/quit [reason]
//	/join <#channel>
//	/msg <target> <text>
//	/nick <nick>
//	/raw <line>
func (c *Client) handleConsole(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	var err error
	switch strings.ToLower(cmd) {
	case "/quit":
		if rest == "" {
			rest = "Quit"
		}
		c.Quit(rest)
	case "/join":
		if rest == "" {
			c.log.Warn().Msg("usage: /join <#channel>")
			return
		}
		err = c.JoinChannel(rest)
	case "/msg":
		target, text, ok := strings.Cut(rest, " ")
		if !ok || text == "" {
			c.log.Warn().Msg("usage: /msg <target> <text>")
			return
		}
		err = c.Say(text, target)
	case "/nick":
		if rest == "" {
			c.log.Warn().Msg("usage: /nick <nick>")
			return
		}
		err = c.SetNick(rest)
	case "/raw":
		err = c.Send(rest)
	default:
		c.log.Warn().Str("input", line).Msg("unknown console command")
		return
	}
	if err != nil {
		c.log.Error().Err(err).Str("input", line).Msg("console command failed")
	}
}
