package markov

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestNewModel(t *testing.T) {
	m, err := NewModel(3)
	if err != nil {
		t.Fatalf("NewModel(3) error = %v", err)
	}
	if m.WindowLength() != 3 {
		t.Errorf("expected window length 3, got %d", m.WindowLength())
	}
	if m.Len() != 0 || len(m.Windows()) != 0 {
		t.Error("expected a new model to have no windows")
	}
	if m.String() != "" {
		t.Errorf("expected empty dump for a new model, got %q", m.String())
	}

	for _, bad := range []int{0, -1} {
		if _, err := NewModel(bad); !errors.Is(err, ErrInvalidWindowLength) {
			t.Errorf("NewModel(%d) error = %v, want ErrInvalidWindowLength", bad, err)
		}
	}
}

func TestModelWindowsOrderAndDump(t *testing.T) {
	m := newTestModel(t, 2, 1, "abcabcabcabc")

	want := []string{"ab", "bc", "ca"}
	got := m.Windows()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("Windows() = %q, want %q", got, want)
	}

	dump := m.String()
	lines := strings.Split(strings.TrimSuffix(dump, "\n"), "\n")
	if len(lines) != len(want) {
		t.Fatalf("expected %d dump lines, got %d:\n%s", len(want), len(lines), dump)
	}
	for i, w := range want {
		if !strings.HasPrefix(lines[i], `"`+w+`" : `) {
			t.Errorf("dump line %d = %q, want it to start with window %q", i, lines[i], w)
		}
	}
	if lines[0] != `"ab" : (('c' 4 1.0000 1.0000))` {
		t.Errorf("unexpected dump line for \"ab\": %q", lines[0])
	}

	// The dump is reproducible.
	if again := m.String(); again != dump {
		t.Error("String() is not stable across calls")
	}
}

func TestModelWindowsReturnsCopy(t *testing.T) {
	m := newTestModel(t, 1, 1, "abc")
	windows := m.Windows()
	windows[0] = "zzz"
	if m.Windows()[0] != "a" {
		t.Error("mutating the result of Windows() changed the model")
	}
}

func TestModelSetLogger(t *testing.T) {
	var buf bytes.Buffer
	m, err := NewModel(2)
	if err != nil {
		t.Fatal(err)
	}
	m.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	m.SetLogger(nil) // ignored

	m.TrainString("hello there")
	if !strings.Contains(buf.String(), "Training completed") {
		t.Errorf("expected training log line, got %q", buf.String())
	}
}

func TestModelStats(t *testing.T) {
	m := newTestModel(t, 1, 1, "abacad")
	// a -> b, c, d ; b -> a ; c -> a
	stats := m.Stats()
	want := ModelStats{WindowLength: 1, Windows: 3, Transitions: 5, Observations: 5, MaxBranching: 3}
	if stats != want {
		t.Errorf("Stats() = %+v, want %+v", stats, want)
	}
}
