package markov

import "log/slog"

// Prune removes every recorded transition observed minCount times or fewer.
// Windows left without any transition are dropped, and the remaining
// distributions are normalized again. It returns the number of transitions
// removed. This is useful for reducing the size of a model by removing rare,
// and often noisy, transitions.
func (m *Model) Prune(minCount int) int {
	removed := 0
	windowsRemoved := 0
	kept := m.order[:0]

	for _, w := range m.order {
		d := m.windows[w]
		for _, e := range d.Entries() {
			if e.Count <= minCount {
				d.Remove(e.Char)
				removed++
			}
		}
		if d.Len() == 0 {
			delete(m.windows, w)
			windowsRemoved++
			continue
		}
		d.Normalize()
		kept = append(kept, w)
	}
	clear(m.order[len(kept):])
	m.order = kept

	m.logger.Info("Model pruned",
		slog.Int("min_count", minCount),
		slog.Int("transitions_removed", removed),
		slog.Int("windows_removed", windowsRemoved),
	)
	return removed
}
