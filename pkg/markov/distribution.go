package markov

import (
	"fmt"
	"strings"
)

// CharData is a single entry of a Distribution: a character observed after a
// window, how often it was observed, and its derived probabilities.
type CharData struct {
	Char                  rune
	Count                 int
	Probability           float64
	CumulativeProbability float64
}

// String renders the entry as (c count p cp).
func (c CharData) String() string {
	return fmt.Sprintf("(%q %d %.4f %.4f)", c.Char, c.Count, c.Probability, c.CumulativeProbability)
}

// Source is the random source used for sampling. *rand.Rand from math/rand/v2
// satisfies it.
type Source interface {
	// Float64 returns a pseudo-random number in [0.0, 1.0).
	Float64() float64
}

// Distribution is an ordered multiset of the characters that followed one
// window. Entries keep the order in which their characters were first
// observed, and both Normalize and Sample walk them in that order.
type Distribution struct {
	entries []CharData
}

// NewDistribution returns an empty distribution.
func NewDistribution() *Distribution {
	return &Distribution{}
}

// Record increments the count for ch, adding a new entry with a count of 1 if
// ch has not been observed before. Probabilities are stale until the next
// call to Normalize.
func (d *Distribution) Record(ch rune) {
	if i := d.IndexOf(ch); i >= 0 {
		d.entries[i].Count++
		return
	}
	d.entries = append(d.entries, CharData{Char: ch, Count: 1})
}

// Normalize recomputes the probability and cumulative probability of every
// entry from the current counts. It does nothing on an empty distribution.
func (d *Distribution) Normalize() {
	total := d.Total()
	if total == 0 {
		return
	}
	var cumulative float64
	for i := range d.entries {
		p := float64(d.entries[i].Count) / float64(total)
		cumulative += p
		d.entries[i].Probability = p
		d.entries[i].CumulativeProbability = cumulative
	}
}

// Sample draws a character using a single uniform value from src. It returns
// the first entry whose cumulative probability exceeds the draw. If rounding
// leaves the final cumulative probability below the draw, the last entry is
// returned. The boolean is false only when the distribution is empty.
func (d *Distribution) Sample(src Source) (rune, bool) {
	if len(d.entries) == 0 {
		return 0, false
	}
	r := src.Float64()
	for _, e := range d.entries {
		if e.CumulativeProbability > r {
			return e.Char, true
		}
	}
	return d.entries[len(d.entries)-1].Char, true
}

// IndexOf returns the position of ch in the distribution, or -1 if ch has not
// been observed.
func (d *Distribution) IndexOf(ch rune) int {
	for i := range d.entries {
		if d.entries[i].Char == ch {
			return i
		}
	}
	return -1
}

// Find returns the entry for ch.
func (d *Distribution) Find(ch rune) (CharData, bool) {
	i := d.IndexOf(ch)
	if i < 0 {
		return CharData{}, false
	}
	return d.entries[i], true
}

// At returns the entry at index i. It panics if i is out of range.
func (d *Distribution) At(i int) CharData {
	if i < 0 || i >= len(d.entries) {
		panic(fmt.Sprintf("markov: distribution index %d out of range [0:%d]", i, len(d.entries)))
	}
	return d.entries[i]
}

// Remove deletes the entry for ch, keeping the order of the others. It
// reports whether an entry was removed. Probabilities are stale until the
// next call to Normalize.
func (d *Distribution) Remove(ch rune) bool {
	i := d.IndexOf(ch)
	if i < 0 {
		return false
	}
	d.entries = append(d.entries[:i], d.entries[i+1:]...)
	return true
}

// Len returns the number of distinct characters in the distribution.
func (d *Distribution) Len() int {
	return len(d.entries)
}

// Total returns the sum of all counts.
func (d *Distribution) Total() int {
	var total int
	for _, e := range d.entries {
		total += e.Count
	}
	return total
}

// Entries returns a copy of the entries in order.
func (d *Distribution) Entries() []CharData {
	out := make([]CharData, len(d.entries))
	copy(out, d.entries)
	return out
}

func (d *Distribution) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, e := range d.entries {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(e.String())
	}
	sb.WriteByte(')')
	return sb.String()
}
