package irc

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Outcome is what an extension reports for one message.
type Outcome int

const (
	// Abstain means the extension did not act; same as having no handler.
	Abstain Outcome = iota
	// Handled means the extension acted but later extensions still run.
	Handled
	// Halt means the message is fully handled: no further extension or hook runs.
	Halt
)

func (o Outcome) String() string {
	switch o {
	case Abstain:
		return "unhandled"
	case Handled:
		return "fall-through"
	case Halt:
		return "halted"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Extension is a pluggable participant in dispatch.
type Extension interface {
	// Name identifies the extension in diagnostics.
	Name() string
	// Handles reports whether the extension has a handler for command.
	Handles(command string) bool
	Handle(msg *Message) (Outcome, error)
}

// Teardowner is implemented by extensions that release resources at the end
// of a session. Teardown is called exactly once.
type Teardowner interface {
	Teardown() error
}

// Ticker is implemented by extensions with periodic housekeeping. Tick runs
// on the dispatch goroutine, never concurrently with Handle.
type Ticker interface {
	Tick(now time.Time)
}

// HandlerFunc handles one command for an extension.
type HandlerFunc func(msg *Message) (Outcome, error)

// Handlers is a per-command handler set. Extensions embed it to get Handles
// and Handle for free.
type Handlers map[string]HandlerFunc

func (h Handlers) Handles(command string) bool {
	_, ok := h[command]
	return ok
}

func (h Handlers) Handle(msg *Message) (Outcome, error) {
	if fn, ok := h[msg.Command]; ok && fn != nil {
		return fn(msg)
	}
	return Abstain, nil
}

// Result aggregates one message's pass through the pipeline.
type Result struct {
	Outcome Outcome
	Faults  []*ExtensionFault
}

// Pipeline runs extensions in their fixed order.
type Pipeline struct {
	extensions []Extension
	log        zerolog.Logger
}

func NewPipeline(log zerolog.Logger, extensions ...Extension) *Pipeline {
	return &Pipeline{
		extensions: append([]Extension(nil), extensions...),
		log:        log,
	}
}

func (p *Pipeline) Extensions() []Extension {
	return p.extensions
}

// Dispatch offers msg to each extension in order, stopping at the first Halt.
// A failing extension is reported and treated as abstaining.
func (p *Pipeline) Dispatch(msg *Message) Result {
	var res Result
	for _, ext := range p.extensions {
		if !ext.Handles(msg.Command) {
			continue
		}
		out, err := invokeExtension(ext, msg)
		if err != nil {
			fault := &ExtensionFault{Extension: ext.Name(), Message: msg, Err: err}
			res.Faults = append(res.Faults, fault)
			p.log.Error().Err(err).
				Str("extension", ext.Name()).
				Str("line", msg.Raw()).
				Msg("extension fault")
			continue
		}
		switch out {
		case Halt:
			res.Outcome = Halt
			return res
		case Handled:
			res.Outcome = Handled
		}
	}
	return res
}

func invokeExtension(ext Extension, msg *Message) (out Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = Abstain, panicError(r)
		}
	}()
	return ext.Handle(msg)
}

// tick forwards a housekeeping tick to every Ticker.
func (p *Pipeline) tick(now time.Time) {
	for _, ext := range p.extensions {
		t, ok := ext.(Ticker)
		if !ok {
			continue
		}
		func() {
			defer func() {
				if r := recover(); r != nil {
					p.log.Error().Err(panicError(r)).Str("extension", ext.Name()).Msg("tick fault")
				}
			}()
			t.Tick(now)
		}()
	}
}

// teardown calls Teardown on every Teardowner, in order.
func (p *Pipeline) teardown() {
	for _, ext := range p.extensions {
		td, ok := ext.(Teardowner)
		if !ok {
			continue
		}
		err := func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = panicError(r)
				}
			}()
			return td.Teardown()
		}()
		if err != nil {
			p.log.Error().Err(err).Str("extension", ext.Name()).Msg("teardown failed")
		}
	}
}
