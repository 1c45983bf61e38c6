package markov

import (
	"bufio"
	"io"
	"strings"
)

// CharStream is a stateful source of characters for training. The model
// consumes a stream once, in order.
type CharStream interface {
	// Next returns the next character from the stream. It returns io.EOF as
	// the error when the stream is fully consumed.
	Next() (rune, error)
}

// ReaderStream is the default CharStream. It decodes UTF-8 from an
// io.Reader through a bufio.Reader.
type ReaderStream struct {
	reader *bufio.Reader
}

// NewReaderStream returns a CharStream reading UTF-8 characters from r.
// Invalid bytes are decoded as utf8.RuneError, one per byte.
func NewReaderStream(r io.Reader) *ReaderStream {
	if br, ok := r.(*bufio.Reader); ok {
		return &ReaderStream{reader: br}
	}
	return &ReaderStream{reader: bufio.NewReader(r)}
}

// NewStringStream returns a CharStream over the characters of s.
func NewStringStream(s string) *ReaderStream {
	return NewReaderStream(strings.NewReader(s))
}

// Next returns the next character. When the stream is exhausted it returns
// io.EOF; any other error comes from the underlying reader.
func (s *ReaderStream) Next() (rune, error) {
	ch, _, err := s.reader.ReadRune()
	if err != nil {
		return 0, err
	}
	return ch, nil
}
