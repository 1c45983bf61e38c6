package markov

import (
	"bufio"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

func readAll(t *testing.T, s CharStream) []rune {
	t.Helper()
	var out []rune
	for {
		ch, err := s.Next()
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		out = append(out, ch)
	}
}

func TestReaderStream(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected []rune
	}{
		{name: "ASCII", input: "ab c\n", expected: []rune{'a', 'b', ' ', 'c', '\n'}},
		{name: "Multibyte", input: "né語", expected: []rune{'n', 'é', '語'}},
		{name: "Empty", input: "", expected: nil},
		{name: "Invalid UTF-8", input: "a\xffb", expected: []rune{'a', utf8.RuneError, 'b'}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := readAll(t, NewStringStream(tc.input))
			if !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("got %q, want %q", got, tc.expected)
			}
		})
	}
}

func TestReaderStreamReusesBufioReader(t *testing.T) {
	br := bufio.NewReader(strings.NewReader("xy"))
	s := NewReaderStream(br)
	if s.reader != br {
		t.Error("expected an existing *bufio.Reader to be used directly")
	}
	if got := string(readAll(t, s)); got != "xy" {
		t.Errorf("got %q, want \"xy\"", got)
	}
}

// sliceStream is a CharStream that is not backed by an io.Reader.
type sliceStream struct {
	chars []rune
}

func (s *sliceStream) Next() (rune, error) {
	if len(s.chars) == 0 {
		return 0, io.EOF
	}
	ch := s.chars[0]
	s.chars = s.chars[1:]
	return ch, nil
}

func TestTrainStreamCustomStream(t *testing.T) {
	m, err := NewModel(2, WithSeed(1))
	if err != nil {
		t.Fatal(err)
	}
	if err := m.TrainStream(&sliceStream{chars: []rune("abcabcabcabc")}); err != nil {
		t.Fatalf("TrainStream() error = %v", err)
	}
	if got := m.Generate("ab", 4); got != "abcabc" {
		t.Errorf("Generate() = %q, want \"abcabc\"", got)
	}
}
