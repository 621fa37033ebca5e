package extensions

import (
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/ergochat/irc-go/ircfmt"
	"github.com/rs/zerolog"

	"github.com/aosdict/knob2/internal/irc"
	"github.com/aosdict/knob2/internal/storage"
)

const ctcpDelim = "\x01"

var isArePattern = regexp.MustCompile(`(\S+)\s+(?:is|are)`)

// QuoteRecorder stores everything said to the bot or in its channels.
// It never answers, so it always falls through.
type QuoteRecorder struct {
	irc.Handlers
	store       *storage.Store
	log         zerolog.Logger
	recordIsAre bool
	now         func() time.Time
}

func NewQuoteRecorder(store *storage.Store, log zerolog.Logger, recordIsAre bool) *QuoteRecorder {
	r := &QuoteRecorder{
		store:       store,
		log:         log,
		recordIsAre: recordIsAre,
		now:         time.Now,
	}
	r.Handlers = irc.Handlers{"PRIVMSG": r.privmsg}
	return r
}

func (r *QuoteRecorder) Name() string { return "QuoteRecorder" }

func (r *QuoteRecorder) privmsg(msg *irc.Message) (irc.Outcome, error) {
	sender := msg.Sender()
	text, ok := quoteText(sender, msg.Trail)
	if !ok {
		return irc.Abstain, nil
	}

	q := storage.Quote{
		Author: sender,
		Text:   text,
		Time:   r.now().UTC(),
	}
	if r.recordIsAre {
		q.IsAre = isAreSubjects(text)
	}
	q, err := r.store.AddQuote(q)
	if err != nil {
		return irc.Abstain, err
	}
	r.log.Debug().Int("index", q.Index).Str("author", sender).Msg("quote recorded")
	return irc.Handled, nil
}

// quoteText turns a PRIVMSG body into quotable text. A CTCP ACTION becomes
// "<sender> <action>"; any other CTCP is not quotable.
func quoteText(sender, trail string) (string, bool) {
	if strings.HasPrefix(trail, ctcpDelim) {
		body := strings.TrimSuffix(strings.TrimPrefix(trail, ctcpDelim), ctcpDelim)
		action, ok := strings.CutPrefix(body, "ACTION")
		if !ok {
			return "", false
		}
		trail = sender + action
	}
	text := strings.TrimSpace(ircfmt.Strip(trail))
	return text, text != ""
}

func isAreSubjects(text string) []string {
	var subjects []string
	for _, m := range isArePattern.FindAllStringSubmatch(text, -1) {
		subjects = append(subjects, strings.ToLower(m[1]))
	}
	return subjects
}

// QuoteRetriever answers !quote with a random recorded quote.
type QuoteRetriever struct {
	irc.Handlers
	session Session
	store   *storage.Store
	pick    func(n int) int
}

func NewQuoteRetriever(s Session, store *storage.Store) *QuoteRetriever {
	r := &QuoteRetriever{
		session: s,
		store:   store,
		pick:    rand.Intn,
	}
	r.Handlers = irc.Handlers{"PRIVMSG": r.privmsg}
	return r
}

func (r *QuoteRetriever) Name() string { return "QuoteRetriever" }

func (r *QuoteRetriever) privmsg(msg *irc.Message) (irc.Outcome, error) {
	if !strings.HasPrefix(msg.Trail, "!quote") {
		return irc.Abstain, nil
	}
	target := replyTarget(r.session, msg)

	q, err := r.store.RandomQuote(r.pick)
	if errors.Is(err, storage.ErrNoQuotes) {
		return irc.Halt, r.session.Say("I don't know any quotes yet.", target)
	} else if err != nil {
		return irc.Halt, err
	}
	return irc.Halt, r.session.Say(fmt.Sprintf(`"%s" -- %s`, q.Text, q.Author), target)
}
