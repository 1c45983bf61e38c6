package markov

// ModelStats holds aggregated statistics for a Model.
type ModelStats struct {
	WindowLength int `json:"window_length"` // The number of characters per window
	Windows      int `json:"windows"`       // The number of distinct windows
	Transitions  int `json:"transitions"`   // The number of unique window->character links
	Observations int `json:"observations"`  // The sum of all counts; the number of trained transitions
	MaxBranching int `json:"max_branching"` // The largest number of distinct successors of one window
}

// Stats returns a snapshot of statistics for the model.
func (m *Model) Stats() ModelStats {
	stats := ModelStats{
		WindowLength: m.windowLength,
		Windows:      len(m.order),
	}
	for _, w := range m.order {
		d := m.windows[w]
		stats.Transitions += d.Len()
		stats.Observations += d.Total()
		if d.Len() > stats.MaxBranching {
			stats.MaxBranching = d.Len()
		}
	}
	return stats
}
