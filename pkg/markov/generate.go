package markov

import (
	"log/slog"
	"strings"
)

// Generate continues seed by up to length characters sampled from the model
// and returns the seed followed by the generated text.
//
// The last WindowLength characters of seed form the first window. The seed is
// returned unchanged when it is shorter than a window, when that window was
// never seen during training, or when length is not positive. Generation
// stops early, returning what has been produced so far, if it reaches a
// window that has no recorded distribution.
func (m *Model) Generate(seed string, length int) string {
	window, ok := m.seedWindow(seed)
	if !ok || length <= 0 {
		return seed
	}

	var builder strings.Builder
	builder.Grow(len(seed) + min(length, 4096))
	builder.WriteString(seed)

	generated := 0
	for generated < length {
		ch, ok := m.next(window)
		if !ok {
			m.logger.Debug("Generation terminated due to dead-end",
				slog.String("last_window", string(window)),
				slog.Int("generated_length", generated),
			)
			break
		}
		builder.WriteRune(ch)
		advance(window, ch)
		generated++
	}

	return builder.String()
}

// seedWindow returns the starting window for seed, or false when generation
// cannot start from it.
func (m *Model) seedWindow(seed string) ([]rune, bool) {
	runes := []rune(seed)
	if len(runes) < m.windowLength {
		return nil, false
	}
	window := runes[len(runes)-m.windowLength:]
	if _, ok := m.windows[string(window)]; !ok {
		return nil, false
	}
	return window, true
}

// next samples the character following window.
func (m *Model) next(window []rune) (rune, bool) {
	d, ok := m.windows[string(window)]
	if !ok {
		return 0, false
	}
	return d.Sample(m.rng)
}

// advance slides window forward by one character in place.
func advance(window []rune, ch rune) {
	copy(window, window[1:])
	window[len(window)-1] = ch
}
