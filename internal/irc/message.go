package irc

import (
	"fmt"
	"strings"

	"github.com/ergochat/irc-go/ircmsg"
)

// Message is one parsed IRC line:
//
//	[":" prefix " "] command *(" " middle) [" :" trail]
//
// Numeric replies keep their three digits as the command string.
type Message struct {
	Prefix  string
	Command string
	Params  []string
	Trail   string

	raw string
}

// ParseMessage parses a line that has already been stripped of its terminator.
// Failures wrap ErrMalformedLine.
func ParseMessage(line string) (*Message, error) {
	if line == "" {
		return nil, fmt.Errorf("%w: empty line", ErrMalformedLine)
	}

	var prefix string
	start := 0
	if line[0] == ':' {
		end := strings.IndexByte(line, ' ')
		if end == -1 {
			return nil, fmt.Errorf("%w: prefix without command", ErrMalformedLine)
		}
		prefix = line[1:end]
		start = end + 1
		if start < len(line) && line[start] == ' ' {
			return nil, fmt.Errorf("%w: space after prefix", ErrMalformedLine)
		}
	}

	body := line[start:]
	var trail string
	if i := strings.Index(body, " :"); i != -1 {
		trail = body[i+2:]
		body = body[:i]
	}

	fields := strings.Fields(body)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no command", ErrMalformedLine)
	}

	return &Message{
		Prefix:  prefix,
		Command: fields[0],
		Params:  fields[1:],
		Trail:   trail,
		raw:     line,
	}, nil
}

// Sender returns the nick (or server name) part of the prefix.
func (m *Message) Sender() string {
	nuh, err := ircmsg.ParseNUH(m.Prefix)
	if err != nil {
		return ""
	}
	return nuh.Name
}

// Param returns the i'th middle parameter, or "" if there is none.
func (m *Message) Param(i int) string {
	if i < 0 || i >= len(m.Params) {
		return ""
	}
	return m.Params[i]
}

// Target is the first middle parameter: the channel or nick a PRIVMSG,
// NOTICE, MODE or TOPIC is addressed to.
func (m *Message) Target() string {
	return m.Param(0)
}

// IsChannel reports whether the target names a channel.
func (m *Message) IsChannel() bool {
	t := m.Target()
	return t != "" && strings.ContainsRune("#&+!", rune(t[0]))
}

// Raw returns the line the message was parsed from, or a serialization
// of its fields for messages built in code.
func (m *Message) Raw() string {
	if m.raw != "" {
		return m.raw
	}
	var b strings.Builder
	if m.Prefix != "" {
		b.WriteByte(':')
		b.WriteString(m.Prefix)
		b.WriteByte(' ')
	}
	b.WriteString(m.Command)
	for _, p := range m.Params {
		b.WriteByte(' ')
		b.WriteString(p)
	}
	if m.Trail != "" {
		b.WriteString(" :")
		b.WriteString(m.Trail)
	}
	return b.String()
}

func (m *Message) String() string {
	return m.Raw()
}
