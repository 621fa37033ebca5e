package extensions

import (
	"testing"

	"github.com/aosdict/knob2/internal/irc"
)

func TestHype(t *testing.T) {
	tests := []struct {
		line string
		hype bool
	}{
		{":al!a@h PRIVMSG #c :!hype", true},
		{":al!a@h PRIVMSG #c :!hype train", true},
		{":al!a@h PRIVMSG #c :hype", true},
		{":al!a@h PRIVMSG #c :HHYYPPEE!!!", true},
		{":al!a@h PRIVMSG #c :get   hype", true},
		{":al!a@h PRIVMSG #c :GeT hYpE!", true},
		{":al!a@h PRIVMSG #c :so much hype", false},
		{":al!a@h PRIVMSG #c :hyper", true},
		{":al!a@h PRIVMSG #c :hip", false},
		{":al!a@h PRIVMSG #c :\x02HYPE\x02", true},
		{":al!a@h PRIVMSG knob :!hype", false},
	}

	for _, tt := range tests {
		s := newFakeSession()
		out := handle(t, NewHype(s), tt.line)
		if tt.hype {
			if out != irc.Halt {
				t.Errorf("%q: outcome = %v, want halted", tt.line, out)
			}
			expectSent(t, s, "PRIVMSG #c :HYPE")
		} else if out != irc.Abstain || len(s.sent) != 0 {
			t.Errorf("%q: outcome = %v, sent %q; want nothing", tt.line, out, s.sent)
		}
	}
}
