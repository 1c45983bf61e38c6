package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/CTAG07/charkov/pkg/corpus"
)

func TestGenerateCommand(t *testing.T) {
	h := newCLIHarness(t)
	file := h.file(t, "abc.txt", cyclicCorpus)
	base := []string{"generate", "-window", "2", "-seed", "1", "-length", "5"}

	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{"explicit text", "", []string{"-text", "ab", file}, "abcabca\n"},
		{"first window as text", "", []string{file}, "abcabca\n"},
		{"stream", "", []string{"-stream", "-text", "ab", file}, "abcabca\n"},
		{"standard input", cyclicCorpus, []string{"-text", "ca"}, "cabcabc\n"},
		{"unseen text is returned unchanged", "", []string{"-text", "zz", file}, "zz\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append(append([]string{}, base...), tt.args...)
			out, err := h.run(t, tt.stdin, args...)
			if err != nil {
				t.Fatalf("run() error = %v", err)
			}
			if out != tt.want {
				t.Errorf("output = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestGenerateCommandOutputs(t *testing.T) {
	h := newCLIHarness(t)
	file := h.file(t, "abc.txt", cyclicCorpus)

	dump, err := h.run(t, "", "generate", "-window", "2", "-dump", file)
	if err != nil {
		t.Fatalf("dump error = %v", err)
	}
	if lines := strings.Split(strings.TrimSpace(dump), "\n"); len(lines) != 3 || !strings.HasPrefix(lines[0], `"ab" : (`) {
		t.Errorf("unexpected dump:\n%s", dump)
	}

	outPath := filepath.Join(h.dir, "out", "result.txt")
	if err = os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		t.Fatal(err)
	}
	out, err := h.run(t, "", "generate", "-window", "2", "-length", "3", "-text", "bc", "-out", outPath, file)
	if err != nil {
		t.Fatalf("generate -out error = %v", err)
	}
	if out != "" {
		t.Errorf("expected nothing on stdout, got %q", out)
	}
	written, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(written) != "bcabc\n" {
		t.Errorf("written file = %q", written)
	}
}

func TestGenerateCommandErrors(t *testing.T) {
	h := newCLIHarness(t)
	short := h.file(t, "short.txt", "a")

	if _, err := h.run(t, "", "generate", "-window", "2", short); !errors.Is(err, errEmptyModel) {
		t.Errorf("expected errEmptyModel, got %v", err)
	}
	if _, err := h.run(t, "", "generate", "-window", "0", short); err == nil {
		t.Error("expected an error for a zero window")
	}
	if _, err := h.run(t, "", "generate", filepath.Join(h.dir, "missing.txt")); err == nil {
		t.Error("expected an error for a missing file")
	}
	if _, err := h.run(t, "", "generate", "-corpus", "missing"); !errors.Is(err, corpus.ErrCorpusNotFound) {
		t.Errorf("expected ErrCorpusNotFound, got %v", err)
	}
}

func TestCorpusCommands(t *testing.T) {
	h := newCLIHarness(t)
	one := h.file(t, "one.txt", "one fish two fish")

	out, err := h.run(t, "red fish blue fish", "corpus", "add", "-name", "fish", one, "-")
	if err != nil {
		t.Fatalf("corpus add error = %v", err)
	}
	if strings.Count(out, "added ") != 2 {
		t.Errorf("expected two documents to be added, got %q", out)
	}

	out, err = h.run(t, "", "corpus", "list")
	if err != nil || !strings.HasPrefix(out, "fish ") || !strings.Contains(out, "35 chars") {
		t.Errorf("corpus list = %q, %v", out, err)
	}

	out, err = h.run(t, "", "corpus", "list", "-name", "fish")
	if err != nil || strings.Count(out, "\n") != 2 {
		t.Errorf("corpus list -name = %q, %v", out, err)
	}

	out, err = h.run(t, "", "corpus", "stats")
	if err != nil || !strings.Contains(out, "documents: 2") || !strings.Contains(out, "size:      35 B") {
		t.Errorf("corpus stats = %q, %v", out, err)
	}

	out, err = h.run(t, "", "generate", "-corpus", "fish", "-window", "4", "-seed", "3", "-length", "20", "-text", "one ")
	if err != nil || !strings.HasPrefix(out, "one f") {
		t.Errorf("generate from corpus = %q, %v", out, err)
	}

	if out, err = h.run(t, "", "corpus", "remove", "-name", "fish"); err != nil || out != "removed corpus fish\n" {
		t.Errorf("corpus remove = %q, %v", out, err)
	}
	if _, err = h.run(t, "", "corpus", "list", "-name", "fish"); !errors.Is(err, corpus.ErrCorpusNotFound) {
		t.Errorf("expected ErrCorpusNotFound after removal, got %v", err)
	}

	if _, err = h.run(t, "", "corpus", "add", one); err == nil {
		t.Error("expected corpus add without -name to fail")
	}
	if _, err = h.run(t, "", "corpus", "remove"); err == nil {
		t.Error("expected corpus remove without a target to fail")
	}
	if _, err = h.run(t, "", "corpus", "rename"); err == nil {
		t.Error("expected an unknown corpus command to fail")
	}
}

func TestREPLScanLoop(t *testing.T) {
	h := newCLIHarness(t)
	file := h.file(t, "abc.txt", cyclicCorpus)
	input := strings.Join([]string{"ab", "", ":stats", ":length 2", "ab", ":prune 2", ":bogus", ":quit", "ab"}, "\n")

	out, err := h.run(t, input, "repl", "-window", "2", "-length", "5", file)
	if err != nil {
		t.Fatalf("repl error = %v", err)
	}
	want := "abcabca\n" +
		"window length 2, 3 windows, 3 transitions, 7 observations, max branching 1\n" +
		"abca\n" +
		"removed 2 transitions\n" +
		"unknown command :bogus, try :help\n"
	if out != want {
		t.Errorf("repl output = %q, want %q", out, want)
	}
}

func TestREPLNeedsTrainingSource(t *testing.T) {
	h := newCLIHarness(t)
	if _, err := h.run(t, "", "repl"); err == nil {
		t.Error("expected repl without a training source to fail")
	}
}

func TestRunCommands(t *testing.T) {
	h := newCLIHarness(t)

	out, err := h.run(t, "", "version")
	if err != nil || !strings.HasPrefix(out, "charkov dev") {
		t.Errorf("version = %q, %v", out, err)
	}
	if _, err = h.run(t, ""); err == nil {
		t.Error("expected an error without a command")
	}
	if _, err = h.run(t, "", "frobnicate"); err == nil {
		t.Error("expected an error for an unknown command")
	}
}
