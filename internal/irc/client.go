package irc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Version information (set at build time or here)
var (
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

const defaultTickInterval = 5 * time.Second

// Options configures a Client.
type Options struct {
	Logger zerolog.Logger
	// PrintLevel is the threshold for printing dispatched messages.
	PrintLevel PrintLevel
	// TickInterval is how often extensions implementing Ticker are ticked.
	TickInterval time.Duration
	// Console, if set, is read for operator commands while Run is active.
	Console io.Reader
}

// Client is one session with one IRC server.
type Client struct {
	opts Options
	log  zerolog.Logger

	writeMu sync.Mutex
	conn    io.ReadWriteCloser
	reader  *LineReader

	stateMu sync.RWMutex
	nick    string
	phase   Phase
	running bool

	hooks    *HookTable
	pipeline *Pipeline

	quit        chan struct{}
	quitOnce    sync.Once
	cleanupOnce sync.Once
}

// NewClient creates a client with the built-in PING hook registered.
func NewClient(opts Options) *Client {
	if opts.TickInterval <= 0 {
		opts.TickInterval = defaultTickInterval
	}
	c := &Client{
		opts:  opts,
		log:   opts.Logger,
		hooks: NewHookTable(),
		quit:  make(chan struct{}),
	}
	c.pipeline = NewPipeline(c.log)
	c.hooks.Register("PING", pong)
	return c
}

// Logger returns the client's logger, for extensions.
func (c *Client) Logger() zerolog.Logger {
	return c.log
}

// Nick returns the server-confirmed nickname, or "" before registration.
func (c *Client) Nick() string {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.nick
}

func (c *Client) setNick(nick string) {
	c.stateMu.Lock()
	c.nick = nick
	c.stateMu.Unlock()
}

func (c *Client) Phase() Phase {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.phase
}

func (c *Client) setPhase(p Phase) {
	c.stateMu.Lock()
	c.phase = p
	c.stateMu.Unlock()
}

// RegisterHook binds fn to command, replacing any earlier hook for it,
// including the built-in PING hook.
func (c *Client) RegisterHook(command string, fn HookFunc) {
	c.hooks.Register(command, fn)
}

// SetExtensions fixes the ordered extension list for the session.
func (c *Client) SetExtensions(extensions ...Extension) error {
	c.stateMu.RLock()
	running := c.running
	c.stateMu.RUnlock()
	if running {
		return ErrSessionStarted
	}
	c.pipeline = NewPipeline(c.log, extensions...)
	return nil
}

// Connect dials server:port and blocks until the server welcomes us.
func (c *Client) Connect(ctx context.Context, server string, port int, id Identity) error {
	addr := net.JoinHostPort(server, strconv.Itoa(port))
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("%w: dial %s: %w", ErrRegistrationFailed, addr, err)
	}
	c.log.Info().Str("server", addr).Msg("connected, registering")
	return c.Handshake(ctx, conn, server, id)
}

// Handshake registers over an already open stream. On failure the stream
// is closed and the error wraps ErrRegistrationFailed.
func (c *Client) Handshake(ctx context.Context, conn io.ReadWriteCloser, host string, id Identity) error {
	if id.Ident == "" {
		id.Ident = "x"
	}
	if id.RealName == "" {
		id.RealName = "x"
	}

	c.writeMu.Lock()
	c.conn = conn
	c.reader = NewLineReader(conn)
	c.writeMu.Unlock()

	// unblock the read below if the caller gives up
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	reg := newRegistration(c.Send, c.log.With().Str("phase", "registration").Logger())
	err := c.register(ctx, reg, host, id)
	c.setPhase(reg.phase)
	if err != nil {
		conn.Close()
		return err
	}
	c.setNick(reg.nick)
	return nil
}

func (c *Client) register(ctx context.Context, reg *registration, host string, id Identity) error {
	if err := reg.start(host, id); err != nil {
		return fmt.Errorf("%w: %w", ErrRegistrationFailed, err)
	}
	for {
		line, err := c.reader.ReadLine()
		if err != nil {
			if errors.Is(err, ErrMalformedLine) {
				c.log.Warn().Err(err).Msg("skipping line during registration")
				continue
			}
			if ctx.Err() != nil {
				err = ctx.Err()
			}
			return fmt.Errorf("%w: %w", ErrRegistrationFailed, err)
		}
		msg, err := ParseMessage(line)
		if err != nil {
			c.log.Warn().Err(err).Str("line", line).Msg("skipping malformed line")
			continue
		}
		done, err := reg.handle(msg)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrRegistrationFailed, err)
		}
		if done {
			return nil
		}
	}
}

// Send writes one protocol line, adding the terminator. Lines are written
// whole; concurrent senders never interleave.
func (c *Client) Send(line string) error {
	if strings.ContainsAny(line, "\r\n\x00") {
		return fmt.Errorf("%w: %q", ErrInvalidLine, line)
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.conn == nil {
		return ErrNotConnected
	}
	c.log.Debug().Str("line", line).Msg("-->")
	if _, err := io.WriteString(c.conn, line+"\r\n"); err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionFault, err)
	}
	return nil
}

func (c *Client) Sendf(format string, args ...interface{}) error {
	return c.Send(fmt.Sprintf(format, args...))
}

// Say sends text to recipient as a PRIVMSG. Messages addressed to our own
// nick are dropped so the bot never talks to itself.
func (c *Client) Say(text, recipient string) error {
	if strings.EqualFold(recipient, c.Nick()) {
		c.log.Debug().Str("recipient", recipient).Msg("refusing to message myself")
		return nil
	}
	return c.Sendf("PRIVMSG %s :%s", recipient, text)
}

func (c *Client) JoinChannel(name string) error {
	return c.Send("JOIN " + name)
}

// SetNick requests a nick change; the confirmed nick updates when the server
// echoes the NICK back.
func (c *Client) SetNick(nick string) error {
	return c.Send("NICK " + nick)
}

// Quit sends QUIT and makes Run return. Safe to call more than once.
func (c *Client) Quit(reason string) {
	c.quitOnce.Do(func() {
		if err := c.Send("QUIT :" + reason); err != nil {
			c.log.Debug().Err(err).Msg("could not send QUIT")
		}
		close(c.quit)
	})
}

// Cleanup closes the stream and tears down every extension. Only the first
// call does anything.
func (c *Client) Cleanup() {
	c.cleanupOnce.Do(func() {
		c.writeMu.Lock()
		conn := c.conn
		c.writeMu.Unlock()
		if conn != nil {
			if err := conn.Close(); err != nil {
				c.log.Debug().Err(err).Msg("close failed")
			}
		}
		c.pipeline.teardown()
		c.log.Info().Msg("session cleaned up")
	})
}
