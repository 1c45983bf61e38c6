package markov

import (
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"strings"
)

// ErrInvalidWindowLength is returned by NewModel when the window length is
// smaller than one character.
var ErrInvalidWindowLength = errors.New("markov: window length must be at least 1")

// Model is a fixed-order character-level Markov chain. It maps every window
// of WindowLength characters seen during training to the Distribution of the
// characters that followed it.
//
// A Model is not safe for concurrent use.
type Model struct {
	windowLength int
	windows      map[string]*Distribution
	order        []string // windows in first-seen order
	rng          Source
	logger       *slog.Logger
}

// Option configures a Model at construction.
type Option func(*Model)

// WithSeed makes generation reproducible: two models built with the same seed
// and trained on the same data generate identical text for identical calls.
func WithSeed(seed int64) Option {
	return func(m *Model) {
		m.rng = rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
	}
}

// WithSource sets the random source used for sampling. A nil source is
// ignored.
func WithSource(src Source) Option {
	return func(m *Model) {
		if src != nil {
			m.rng = src
		}
	}
}

// NewModel creates an untrained model with the given window length. Without
// WithSeed or WithSource the model samples from a source seeded differently on
// every run.
func NewModel(windowLength int, opts ...Option) (*Model, error) {
	if windowLength < 1 {
		return nil, ErrInvalidWindowLength
	}
	m := &Model{
		windowLength: windowLength,
		windows:      make(map[string]*Distribution),
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.rng == nil {
		m.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return m, nil
}

// SetLogger sets the logger for the Model. By default, all logs are discarded.
func (m *Model) SetLogger(logger *slog.Logger) {
	if logger != nil {
		m.logger = logger
	}
}

// WindowLength returns the number of characters in every window.
func (m *Model) WindowLength() int {
	return m.windowLength
}

// Len returns the number of distinct windows the model has seen.
func (m *Model) Len() int {
	return len(m.order)
}

// Windows returns the known windows in the order they were first seen.
func (m *Model) Windows() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Distribution returns the distribution recorded for window.
func (m *Model) Distribution(window string) (*Distribution, bool) {
	d, ok := m.windows[window]
	return d, ok
}

// distributionFor is the get-or-create lookup used by training.
func (m *Model) distributionFor(window string) *Distribution {
	d, ok := m.windows[window]
	if !ok {
		d = NewDistribution()
		m.windows[window] = d
		m.order = append(m.order, window)
	}
	return d
}

// String lists every window with its distribution, one per line, in the order
// the windows were first seen. Windows are quoted so that newlines in the
// corpus do not break the listing.
func (m *Model) String() string {
	var sb strings.Builder
	for _, w := range m.order {
		sb.WriteString(strconv.Quote(w))
		sb.WriteString(" : ")
		sb.WriteString(m.windows[w].String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
