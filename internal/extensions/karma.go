package extensions

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aosdict/knob2/internal/irc"
	"github.com/aosdict/knob2/internal/storage"
)

var (
	karmaPattern     = regexp.MustCompile(`[^ ]+(?:\+\+|--)`)
	karmaPlusPattern = regexp.MustCompile(`[^ ]+\+\+`)
)

// KarmaOptions tunes the karma tracker.
type KarmaOptions struct {
	AllowMinus  bool
	PreventSpam bool
	// Timeout is how long one sender must wait before changing the same
	// name's karma again.
	Timeout time.Duration
	// FlushPeriod is how often expired spam entries are swept.
	FlushPeriod time.Duration
}

type spamKey struct {
	sender string
	name   string
}

// Karma tracks name++ and name-- and reports the new totals.
type Karma struct {
	irc.Handlers
	session Session
	store   *storage.Store
	log     zerolog.Logger
	opts    KarmaOptions
	pattern *regexp.Regexp

	// recent is only touched from Handle and Tick, which never run concurrently.
	recent    map[spamKey]time.Time
	lastFlush time.Time
	now       func() time.Time
}

func NewKarma(s Session, store *storage.Store, log zerolog.Logger, opts KarmaOptions) *Karma {
	k := &Karma{
		session: s,
		store:   store,
		log:     log,
		opts:    opts,
		pattern: karmaPlusPattern,
		recent:  make(map[spamKey]time.Time),
		now:     time.Now,
	}
	if opts.AllowMinus {
		k.pattern = karmaPattern
	}
	k.Handlers = irc.Handlers{"PRIVMSG": k.privmsg}
	return k
}

func (k *Karma) Name() string { return "Karma" }

func (k *Karma) privmsg(msg *irc.Message) (irc.Outcome, error) {
	tokens := k.pattern.FindAllString(msg.Trail, -1)
	if len(tokens) == 0 {
		return irc.Abstain, nil
	}
	sender := msg.Sender()
	target := replyTarget(k.session, msg)
	now := k.now()

	for _, tok := range tokens {
		// no voting for yourself, or for anything that starts with your nick
		if sender == "" || strings.HasPrefix(tok, sender) {
			continue
		}

		plus := strings.Contains(tok, "++")
		minus := strings.Contains(tok, "--")
		if plus && minus {
			if len(tokens) == 1 {
				return irc.Halt, k.session.Say("Don't try to break me.", target)
			}
			continue
		}
		delta := 1
		if minus {
			delta = -1
		}

		name := strings.TrimRight(tok, "+-")
		if name == "" {
			continue
		}
		key := spamKey{sender: storage.Casefold(sender), name: storage.Casefold(name)}
		if k.opts.PreventSpam {
			if last, ok := k.recent[key]; ok && now.Sub(last) <= k.opts.Timeout {
				k.log.Debug().Str("sender", sender).Str("name", name).Msg("karma change suppressed")
				continue
			}
		}

		karma, err := k.store.AdjustKarma(name, delta)
		if err != nil {
			return irc.Halt, err
		}
		if k.opts.PreventSpam {
			k.recent[key] = now
		}

		plural := "s"
		if karma == 1 || karma == -1 {
			plural = ""
		}
		reply := fmt.Sprintf("%s now has %d point%s of karma", name, karma, plural)
		k.log.Info().Str("sender", sender).Str("name", name).Int("karma", karma).Msg("karma changed")
		if err := k.session.Say(reply, target); err != nil {
			return irc.Halt, err
		}
	}
	return irc.Halt, nil
}

// Tick drops spam entries older than the timeout, at most once per flush period.
func (k *Karma) Tick(now time.Time) {
	if !k.opts.PreventSpam || now.Sub(k.lastFlush) < k.opts.FlushPeriod {
		return
	}
	k.lastFlush = now
	for key, at := range k.recent {
		if now.Sub(at) > k.opts.Timeout {
			delete(k.recent, key)
		}
	}
}
