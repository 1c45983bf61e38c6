package markov

import (
	"go/build"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

const floatTolerance = 1e-9

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

// fixedSource replays a fixed sequence of draws, repeating the last one once
// the sequence is exhausted.
type fixedSource struct {
	values []float64
	index  int
}

func (f *fixedSource) Float64() float64 {
	v := f.values[f.index]
	if f.index < len(f.values)-1 {
		f.index++
	}
	return v
}

// newTestModel creates a seeded model and trains it on corpus.
func newTestModel(t *testing.T, windowLength int, seed int64, corpus string) *Model {
	t.Helper()
	m, err := NewModel(windowLength, WithSeed(seed))
	if err != nil {
		t.Fatalf("NewModel(%d) error = %v", windowLength, err)
	}
	if err := m.Train(strings.NewReader(corpus)); err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	return m
}

// assertNormalized checks the probability invariants of every distribution.
func assertNormalized(t *testing.T, m *Model) {
	t.Helper()
	for _, w := range m.Windows() {
		d, ok := m.Distribution(w)
		if !ok {
			t.Fatalf("window %q listed but has no distribution", w)
		}
		var sum, prev float64
		for i, e := range d.Entries() {
			if e.Count < 1 {
				t.Errorf("window %q entry %q has count %d", w, e.Char, e.Count)
			}
			if e.CumulativeProbability < prev {
				t.Errorf("window %q cumulative probability decreases at index %d", w, i)
			}
			prev = e.CumulativeProbability
			sum += e.Probability
		}
		if !floatEquals(sum, 1.0) {
			t.Errorf("window %q probabilities sum to %v, want 1.0", w, sum)
		}
		if !floatEquals(prev, 1.0) {
			t.Errorf("window %q final cumulative probability = %v, want 1.0", w, prev)
		}
	}
}

var (
	benchmarkCorpus string
	corpusOnce      sync.Once
)

// createBenchmarkCorpus reads Go source files to create a corpus for benchmarking.
func createBenchmarkCorpus() string {
	corpusOnce.Do(func() {
		var sb strings.Builder
		goRoot := build.Default.GOROOT
		filesToRead := []string{
			filepath.Join(goRoot, "src/net/http/server.go"),
			filepath.Join(goRoot, "src/go/parser/parser.go"),
			filepath.Join(goRoot, "src/encoding/json/encode.go"),
		}

		for _, file := range filesToRead {
			content, err := os.ReadFile(file)
			if err != nil {
				benchmarkCorpus = strings.Repeat("this is a fallback corpus for benchmarking. it is not very long but will prevent a crash. ", 64)
				return
			}
			sb.Write(content)
			sb.WriteString("\n")
		}
		benchmarkCorpus = sb.String()
	})
	return benchmarkCorpus
}
