package irc

import (
	"testing"

	"github.com/rs/zerolog"
)

type sentLines struct {
	lines []string
}

func (s *sentLines) send(line string) error {
	s.lines = append(s.lines, line)
	return nil
}

func newTestRegistration(t *testing.T) (*registration, *sentLines) {
	t.Helper()
	sent := &sentLines{}
	reg := newRegistration(sent.send, zerolog.Nop())
	reg.randomNick = func() string { return "qwertyui" }
	if err := reg.start("irc.example.net", Identity{Nick: "oldnick", Ident: "bot", RealName: "Knob Bot"}); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	return reg, sent
}

func feed(t *testing.T, reg *registration, line string) bool {
	t.Helper()
	msg, err := ParseMessage(line)
	if err != nil {
		t.Fatalf("ParseMessage(%q) failed: %v", line, err)
	}
	done, err := reg.handle(msg)
	if err != nil {
		t.Fatalf("handle(%q) failed: %v", line, err)
	}
	return done
}

func TestRegistrationStart(t *testing.T) {
	reg, sent := newTestRegistration(t)

	want := []string{
		"USER bot irc.example.net irc.example.net :Knob Bot",
		"NICK oldnick",
	}
	if len(sent.lines) != len(want) {
		t.Fatalf("sent %q, want %q", sent.lines, want)
	}
	for i := range want {
		if sent.lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, sent.lines[i], want[i])
		}
	}
	if reg.phase != PhaseAwaitingWelcome {
		t.Errorf("phase = %v, want %v", reg.phase, PhaseAwaitingWelcome)
	}
}

func TestRegistrationErroneousThenWelcome(t *testing.T) {
	reg, sent := newTestRegistration(t)

	if feed(t, reg, "432 * oldnick :Erroneous Nickname") {
		t.Fatal("432 must not complete registration")
	}
	if reg.phase != PhaseAwaitingWelcome {
		t.Errorf("phase after 432 = %v", reg.phase)
	}
	if !feed(t, reg, "001 newnick :Welcome") {
		t.Fatal("001 must complete registration")
	}

	if reg.phase != PhaseRegistered {
		t.Errorf("phase = %v, want registered", reg.phase)
	}
	if reg.nick != "newnick" {
		t.Errorf("confirmed nick = %q, want newnick", reg.nick)
	}
	corrective := sent.lines[2:]
	if len(corrective) != 1 || corrective[0] != "NICK qwertyui" {
		t.Errorf("corrective lines = %q, want exactly one NICK", corrective)
	}
}

func TestRegistrationErroneousStripsNick(t *testing.T) {
	reg, sent := newTestRegistration(t)

	feed(t, reg, ":srv 432 * b0t_1__ :Erroneous Nickname")
	if got := sent.lines[len(sent.lines)-1]; got != "NICK bt" {
		t.Errorf("sent %q, want NICK bt", got)
	}

	feed(t, reg, ":srv 432 * 1234 :Erroneous Nickname")
	if got := sent.lines[len(sent.lines)-1]; got != "NICK qwertyui" {
		t.Errorf("sent %q, want random nick", got)
	}
}

func TestRegistrationNickInUse(t *testing.T) {
	reg, sent := newTestRegistration(t)

	feed(t, reg, ":srv 433 * oldnick :Nickname is already in use")
	feed(t, reg, ":srv 433 * oldnick_ :Nickname is already in use")

	if got := sent.lines[2:]; len(got) != 2 || got[0] != "NICK oldnick_" || got[1] != "NICK oldnick__" {
		t.Errorf("sent %q", got)
	}
	if reg.pending != "oldnick__" {
		t.Errorf("pending = %q", reg.pending)
	}
}

func TestRegistrationIgnoresOtherTraffic(t *testing.T) {
	reg, sent := newTestRegistration(t)

	for _, line := range []string{
		":srv NOTICE * :*** Looking up your hostname...",
		":srv 020 * :Please wait while we process your connection.",
		":srv 439 * :Target change too fast",
	} {
		if feed(t, reg, line) {
			t.Fatalf("%q completed registration", line)
		}
	}
	if len(sent.lines) != 2 {
		t.Errorf("unexpected lines sent: %q", sent.lines[2:])
	}
	if reg.phase != PhaseAwaitingWelcome {
		t.Errorf("phase = %v", reg.phase)
	}
}

func TestRegistrationAnswersPing(t *testing.T) {
	reg, sent := newTestRegistration(t)

	feed(t, reg, "PING :12345")
	if got := sent.lines[len(sent.lines)-1]; got != "PONG :12345" {
		t.Errorf("sent %q, want PONG :12345", got)
	}
}

func TestAlphaNick(t *testing.T) {
	tests := map[string]string{
		"knob":    "knob",
		"knob__":  "knob",
		"kn0b_x_": "knbx",
		"123":     "",
		"__":      "",
		"Zed[m]":  "Zedm",
	}
	for in, want := range tests {
		if got := alphaNick(in); got != want {
			t.Errorf("alphaNick(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRandomLowerNick(t *testing.T) {
	nick := randomLowerNick()
	if len(nick) != randomNickLength {
		t.Fatalf("random nick %q has length %d", nick, len(nick))
	}
	for _, r := range nick {
		if r < 'a' || r > 'z' {
			t.Errorf("random nick %q contains %q", nick, r)
		}
	}
}
