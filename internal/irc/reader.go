package irc

import (
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/ergochat/irc-go/ircreader"
)

const (
	initialReadBuffer = 512
	// 512 bytes of message plus room for servers that send tags anyway
	maxReadBuffer = 8192 + 1024
)

// LineReader frames a byte stream into lines terminated by \n or \r\n.
type LineReader struct {
	r ircreader.Reader
}

// NewLineReader wraps the stream. Lines can only be restarted by reconnecting.
func NewLineReader(stream io.Reader) *LineReader {
	lr := &LineReader{}
	lr.r.Initialize(stream, initialReadBuffer, maxReadBuffer)
	return lr
}

// ReadLine blocks until a full line is available and returns it without its
// terminator. An orderly close yields ErrConnectionClosed, other stream errors
// ErrConnectionFault. A line that is not valid UTF-8 yields ErrMalformedLine
// and the reader remains usable.
func (lr *LineReader) ReadLine() (string, error) {
	line, err := lr.r.ReadLine()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", ErrConnectionClosed
		}
		return "", fmt.Errorf("%w: %w", ErrConnectionFault, err)
	}
	if !utf8.Valid(line) {
		return "", fmt.Errorf("%w: invalid UTF-8", ErrMalformedLine)
	}
	return string(line), nil
}
