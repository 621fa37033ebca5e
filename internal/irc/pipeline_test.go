package irc

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

// stubExtension records calls and answers with canned outcomes.
type stubExtension struct {
	name      string
	outcomes  map[string]Outcome
	err       error
	panicWith interface{}

	calls     []string
	teardowns int
}

func newStub(name string, outcomes map[string]Outcome) *stubExtension {
	return &stubExtension{name: name, outcomes: outcomes}
}

func (s *stubExtension) Name() string { return s.name }

func (s *stubExtension) Handles(command string) bool {
	_, ok := s.outcomes[command]
	return ok
}

func (s *stubExtension) Handle(msg *Message) (Outcome, error) {
	s.calls = append(s.calls, msg.Command)
	if s.panicWith != nil {
		panic(s.panicWith)
	}
	if s.err != nil {
		return Handled, s.err
	}
	return s.outcomes[msg.Command], nil
}

func (s *stubExtension) Teardown() error {
	s.teardowns++
	return nil
}

func mustParse(t *testing.T, line string) *Message {
	t.Helper()
	msg, err := ParseMessage(line)
	if err != nil {
		t.Fatalf("ParseMessage(%q) failed: %v", line, err)
	}
	return msg
}

func TestPipelineShortCircuit(t *testing.T) {
	first := newStub("first", map[string]Outcome{"PRIVMSG": Handled})
	second := newStub("second", map[string]Outcome{"PRIVMSG": Halt})
	third := newStub("third", map[string]Outcome{"PRIVMSG": Handled})
	p := NewPipeline(zerolog.Nop(), first, second, third)

	res := p.Dispatch(mustParse(t, ":a!b@c PRIVMSG #x :hi"))

	if res.Outcome != Halt {
		t.Errorf("Outcome = %v, want halted", res.Outcome)
	}
	if len(first.calls) != 1 || len(second.calls) != 1 {
		t.Errorf("first/second calls = %d/%d, want 1/1", len(first.calls), len(second.calls))
	}
	if len(third.calls) != 0 {
		t.Errorf("third extension ran after a halt")
	}
}

func TestPipelineAggregation(t *testing.T) {
	abstainer := newStub("abstainer", map[string]Outcome{"PRIVMSG": Abstain})
	handler := newStub("handler", map[string]Outcome{"PRIVMSG": Handled})
	other := newStub("other", map[string]Outcome{"JOIN": Halt})

	p := NewPipeline(zerolog.Nop(), abstainer, other)
	if res := p.Dispatch(mustParse(t, ":a!b@c PRIVMSG #x :hi")); res.Outcome != Abstain {
		t.Errorf("Outcome = %v, want unhandled", res.Outcome)
	}
	if len(other.calls) != 0 {
		t.Errorf("extension without a PRIVMSG handler was called")
	}

	p = NewPipeline(zerolog.Nop(), abstainer, handler, other)
	if res := p.Dispatch(mustParse(t, ":a!b@c PRIVMSG #x :hi")); res.Outcome != Handled {
		t.Errorf("Outcome = %v, want fall-through", res.Outcome)
	}
}

func TestPipelineFaultIsolation(t *testing.T) {
	failing := newStub("failing", map[string]Outcome{"X": Halt})
	failing.err = errors.New("boom")
	later := newStub("later", map[string]Outcome{"X": Handled})
	p := NewPipeline(zerolog.Nop(), failing, later)

	res := p.Dispatch(mustParse(t, "X arg"))

	if len(later.calls) != 1 {
		t.Fatalf("later extension did not run after a fault")
	}
	if res.Outcome != Handled {
		t.Errorf("Outcome = %v, want fall-through (fault counts as abstain)", res.Outcome)
	}
	if len(res.Faults) != 1 {
		t.Fatalf("Faults = %v, want one", res.Faults)
	}
	fault := res.Faults[0]
	if fault.Extension != "failing" || fault.Message.Command != "X" {
		t.Errorf("fault = %+v", fault)
	}
	if !errors.Is(fault, failing.err) {
		t.Errorf("fault does not wrap the handler error")
	}
}

func TestPipelinePanicIsolation(t *testing.T) {
	panicky := newStub("panicky", map[string]Outcome{"X": Halt})
	panicky.panicWith = "nil map"
	later := newStub("later", map[string]Outcome{"X": Halt})
	p := NewPipeline(zerolog.Nop(), panicky, later)

	res := p.Dispatch(mustParse(t, "X"))

	if len(later.calls) != 1 || res.Outcome != Halt {
		t.Errorf("later calls = %d, outcome = %v", len(later.calls), res.Outcome)
	}
	if len(res.Faults) != 1 {
		t.Errorf("panic not reported as a fault")
	}
}

func TestHandlers(t *testing.T) {
	var got string
	h := Handlers{
		"PRIVMSG": func(msg *Message) (Outcome, error) {
			got = msg.Trail
			return Halt, nil
		},
	}

	if !h.Handles("PRIVMSG") || h.Handles("JOIN") {
		t.Errorf("Handles is wrong")
	}
	out, err := h.Handle(mustParse(t, ":a!b@c PRIVMSG #x :hi"))
	if err != nil || out != Halt || got != "hi" {
		t.Errorf("Handle = %v, %v (got %q)", out, err, got)
	}
	if out, _ := h.Handle(mustParse(t, ":a!b@c JOIN #x")); out != Abstain {
		t.Errorf("missing handler should abstain, got %v", out)
	}
}

func TestOutcomeLevels(t *testing.T) {
	if levelFor(Halt) != PrintAll || levelFor(Handled) != PrintFallThrough || levelFor(Abstain) != PrintUnhandled {
		t.Errorf("outcome levels are wrong")
	}
}
