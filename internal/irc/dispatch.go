package irc

import (
	"context"
	"errors"
	"strings"
	"time"
)

// PrintLevel is the threshold for printing dispatched messages. A message
// is printed when the threshold is at least its outcome's level.
type PrintLevel int

const (
	PrintNone PrintLevel = iota
	PrintUnhandled
	PrintFallThrough
	PrintAll
)

func levelFor(o Outcome) PrintLevel {
	switch o {
	case Halt:
		return PrintAll
	case Handled:
		return PrintFallThrough
	}
	return PrintUnhandled
}

type inbound struct {
	line string
	err  error
}

// Run processes messages until the stream ends, Quit is called or ctx is
// cancelled. Each message is dispatched to completion before the next one
// is read. Cleanup always runs before Run returns.
func (c *Client) Run(ctx context.Context) error {
	defer c.Cleanup()

	c.writeMu.Lock()
	connected := c.reader != nil
	c.writeMu.Unlock()
	if !connected {
		return ErrNotConnected
	}

	c.stateMu.Lock()
	c.running = true
	c.stateMu.Unlock()

	done := make(chan struct{})
	defer close(done)

	lines := c.readLines(done)
	var console <-chan string
	if c.opts.Console != nil {
		console = readConsole(c.opts.Console, done)
	}
	ticker := time.NewTicker(c.opts.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.quit:
			return nil
		default:
		}

		select {
		case <-ctx.Done():
			c.Quit("Shutting down")
			return ctx.Err()
		case <-c.quit:
			return nil
		case in := <-lines:
			if in.err != nil {
				if errors.Is(in.err, ErrMalformedLine) {
					c.log.Warn().Err(in.err).Msg("skipping unreadable line")
					continue
				}
				c.log.Warn().Err(in.err).Msg("stream ended")
				return in.err
			}
			c.handleLine(in.line)
		case line, ok := <-console:
			if !ok {
				console = nil
				continue
			}
			c.handleConsole(line)
		case now := <-ticker.C:
			c.pipeline.tick(now)
		}
	}
}

// readLines feeds lines to the dispatch loop until a fatal read error.
func (c *Client) readLines(done <-chan struct{}) <-chan inbound {
	ch := make(chan inbound)
	go func() {
		for {
			line, err := c.reader.ReadLine()
			select {
			case ch <- inbound{line: line, err: err}:
			case <-done:
				return
			}
			if err != nil && !errors.Is(err, ErrMalformedLine) {
				return
			}
		}
	}()
	return ch
}

func (c *Client) handleLine(line string) {
	msg, err := ParseMessage(line)
	if err != nil {
		c.log.Warn().Err(err).Str("line", line).Msg("skipping malformed line")
		return
	}
	c.dispatch(msg)
}

// dispatch runs msg through the pipeline, then the hook table, and prints
// it according to the outcome.
func (c *Client) dispatch(msg *Message) Outcome {
	c.trackNick(msg)

	outcome := c.pipeline.Dispatch(msg).Outcome
	if outcome != Halt {
		if hook, ok := c.hooks.Lookup(msg.Command); ok {
			if fault := c.hooks.invoke(hook, c, msg); fault != nil {
				c.log.Error().Err(fault.Err).
					Str("command", fault.Command).
					Str("line", msg.Raw()).
					Msg("hook fault")
			}
			outcome = Halt
		}
	}

	c.report(msg, outcome)
	return outcome
}

func (c *Client) report(msg *Message, outcome Outcome) {
	if c.opts.PrintLevel < levelFor(outcome) {
		return
	}
	c.log.Info().
		Str("outcome", outcome.String()).
		Str("command", msg.Command).
		Msg(msg.Raw())
}

// trackNick follows server-acknowledged changes of our own nick.
func (c *Client) trackNick(msg *Message) {
	if msg.Command != "NICK" {
		return
	}
	current := c.Nick()
	if current == "" || !strings.EqualFold(msg.Sender(), current) {
		return
	}
	next := msg.Trail
	if next == "" {
		next = msg.Param(0)
	}
	if next == "" {
		return
	}
	c.setNick(next)
	c.log.Info().Str("old", current).Str("new", next).Msg("nick changed")
}
