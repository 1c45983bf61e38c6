package markov

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// Train reads the UTF-8 text from r and trains the model on it. See
// TrainStream for the details.
func (m *Model) Train(r io.Reader) error {
	return m.TrainStream(NewReaderStream(r))
}

// TrainString trains the model on the characters of s.
func (m *Model) TrainString(s string) {
	// A string stream cannot fail with anything but io.EOF.
	_ = m.TrainStream(NewStringStream(s))
}

// TrainStream performs a single pass over the stream. The first WindowLength
// characters form the initial window; every following character is recorded
// in the distribution of the current window, which then slides forward by one
// character. Afterwards every distribution in the model is normalized.
//
// Training again supplements the existing counts. A stream shorter than one
// window plus one character records nothing and leaves the model as it was.
// If the stream fails, the counts recorded so far are kept and normalized and
// the error is returned.
func (m *Model) TrainStream(stream CharStream) error {
	window := make([]rune, 0, m.windowLength)
	var processed int64
	var readErr error

	for len(window) < m.windowLength {
		ch, err := stream.Next()
		if err != nil {
			readErr = err
			break
		}
		window = append(window, ch)
		processed++
	}

	if readErr == nil {
		for {
			ch, err := stream.Next()
			if err != nil {
				readErr = err
				break
			}
			m.distributionFor(string(window)).Record(ch)
			copy(window, window[1:])
			window[len(window)-1] = ch
			processed++
		}
	}

	m.normalize()

	if readErr != nil && !errors.Is(readErr, io.EOF) {
		return fmt.Errorf("markov: reading training stream: %w", readErr)
	}

	if processed <= int64(m.windowLength) {
		m.logger.Debug("Training stream shorter than a full window",
			slog.Int("window_length", m.windowLength),
			slog.Int64("chars_processed", processed),
		)
	}

	m.logger.Info("Training completed",
		slog.Int("window_length", m.windowLength),
		slog.Int64("chars_processed", processed),
		slog.Int("windows", len(m.order)),
	)
	return nil
}

// normalize recomputes the probabilities of every distribution.
func (m *Model) normalize() {
	for _, w := range m.order {
		m.windows[w].Normalize()
	}
}
