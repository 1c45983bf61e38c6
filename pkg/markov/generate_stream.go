package markov

import (
	"context"
	"log/slog"
)

// GenerateStream performs the same walk as Generate but delivers characters on
// a channel as they are produced: first the characters of seed, then up to
// length generated characters. The channel is closed when generation
// completes, reaches a dead end, or ctx is cancelled. When generation cannot
// start, only the seed is sent.
//
// The walk runs on its own goroutine and uses the model's random source, so
// the model must not be used by anyone else until the channel is closed.
// Draining the channel yields exactly what Generate would have returned from
// the same random state.
func (m *Model) GenerateStream(ctx context.Context, seed string, length int) <-chan rune {
	out := make(chan rune)

	go func() {
		defer close(out)

		for _, ch := range seed {
			select {
			case <-ctx.Done():
				return
			case out <- ch:
			}
		}

		window, ok := m.seedWindow(seed)
		if !ok {
			return
		}

		for generated := 0; generated < length; generated++ {
			select {
			case <-ctx.Done():
				m.logger.DebugContext(ctx, "Generation stream cancelled by context",
					slog.Int("generated_length", generated),
				)
				return
			default:
			}

			ch, ok := m.next(window)
			if !ok {
				m.logger.DebugContext(ctx, "Generation stream terminated due to dead-end",
					slog.String("last_window", string(window)),
					slog.Int("generated_length", generated),
				)
				return
			}

			select {
			case <-ctx.Done():
				return
			case out <- ch:
			}
			advance(window, ch)
		}
	}()

	return out
}
