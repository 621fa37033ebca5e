package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/buntdb"
	"golang.org/x/text/secure/precis"
)

const (
	dbFile = "knob2.db"

	keyKarmaPrefix = "karma:"
	keyQuotePrefix = "quote:"
	keyQuoteCount  = "quotes.count"
)

// ErrNoQuotes is returned when a quote is requested before any were recorded.
var ErrNoQuotes = errors.New("no quotes recorded")

// Quote is something someone said, kept for !quote.
type Quote struct {
	Index  int       `json:"index"`
	Author string    `json:"author"`
	Text   string    `json:"quote"`
	Time   time.Time `json:"tstamp"`
	// IsAre holds the lowercased words that preceded "is" or "are".
	IsAre []string `json:"is,omitempty"`
}

// Store persists karma counters and quotes.
type Store struct {
	db *buntdb.DB
}

// Open opens (or creates) the database in dataDir.
func Open(dataDir string) (*Store, error) {
	return open(filepath.Join(dataDir, dbFile))
}

// OpenMemory opens a store that lives only as long as the process.
func OpenMemory() (*Store, error) {
	return open(":memory:")
}

func open(path string) (*Store, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open datastore %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Casefold maps names that differ only by case to the same key.
func Casefold(name string) string {
	folded, err := precis.UsernameCaseMapped.CompareKey(name)
	if err != nil {
		// karma targets are free text, not all of them are valid usernames
		return strings.ToLower(name)
	}
	return folded
}

func karmaKey(name string) string {
	return keyKarmaPrefix + Casefold(name)
}

// Karma returns the current karma of name; unknown names have zero.
func (s *Store) Karma(name string) (karma int, err error) {
	err = s.db.View(func(tx *buntdb.Tx) error {
		karma, err = getInt(tx, karmaKey(name))
		return err
	})
	return
}

// AdjustKarma adds delta to name's karma and returns the new value.
func (s *Store) AdjustKarma(name string, delta int) (karma int, err error) {
	err = s.db.Update(func(tx *buntdb.Tx) error {
		key := karmaKey(name)
		karma, err = getInt(tx, key)
		if err != nil {
			return err
		}
		karma += delta
		_, _, err = tx.Set(key, strconv.Itoa(karma), nil)
		return err
	})
	return
}

// AddQuote stores q under the next free index and returns it as stored.
func (s *Store) AddQuote(q Quote) (Quote, error) {
	err := s.db.Update(func(tx *buntdb.Tx) error {
		count, err := getInt(tx, keyQuoteCount)
		if err != nil {
			return err
		}
		q.Index = count
		data, err := json.Marshal(q)
		if err != nil {
			return err
		}
		if _, _, err := tx.Set(quoteKey(count), string(data), nil); err != nil {
			return err
		}
		_, _, err = tx.Set(keyQuoteCount, strconv.Itoa(count+1), nil)
		return err
	})
	if err != nil {
		return Quote{}, fmt.Errorf("failed to save quote: %w", err)
	}
	return q, nil
}

func (s *Store) QuoteCount() (count int, err error) {
	err = s.db.View(func(tx *buntdb.Tx) error {
		count, err = getInt(tx, keyQuoteCount)
		return err
	})
	return
}

// Quote returns the quote with the given index.
func (s *Store) Quote(index int) (q Quote, err error) {
	err = s.db.View(func(tx *buntdb.Tx) error {
		raw, err := tx.Get(quoteKey(index))
		if err == buntdb.ErrNotFound {
			return fmt.Errorf("quote %d: %w", index, ErrNoQuotes)
		} else if err != nil {
			return err
		}
		return json.Unmarshal([]byte(raw), &q)
	})
	return
}

// RandomQuote returns the quote whose index pick chooses in [0, count).
func (s *Store) RandomQuote(pick func(n int) int) (Quote, error) {
	count, err := s.QuoteCount()
	if err != nil {
		return Quote{}, err
	}
	if count == 0 {
		return Quote{}, ErrNoQuotes
	}
	return s.Quote(pick(count))
}

func quoteKey(index int) string {
	return keyQuotePrefix + strconv.Itoa(index)
}

func getInt(tx *buntdb.Tx, key string) (int, error) {
	raw, err := tx.Get(key)
	if err == buntdb.ErrNotFound {
		return 0, nil
	} else if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("corrupt value for %s: %w", key, err)
	}
	return n, nil
}
