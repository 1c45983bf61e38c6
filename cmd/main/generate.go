package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/CTAG07/charkov/pkg/markov"
	"github.com/natefinch/atomic"
)

// errEmptyModel is returned when generation needs a starting window and the
// training text was too short to produce any.
var errEmptyModel = errors.New("model is empty: the training text is shorter than one window")

// startText returns text, or the first trained window when text is empty.
func startText(m *markov.Model, text string) (string, error) {
	if text != "" {
		return text, nil
	}
	windows := m.Windows()
	if len(windows) == 0 {
		return "", errEmptyModel
	}
	return windows[0], nil
}

func (a *app) runGenerate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	mf := a.bindModelFlags(fs)
	text := fs.String("text", "", "text to continue; defaults to the first trained window")
	out := fs.String("out", "", "write the result to this file instead of standard output")
	stream := fs.Bool("stream", false, "print characters as they are generated")
	dump := fs.Bool("dump", false, "print the trained model instead of generating")
	if err := fs.Parse(args); err != nil {
		return err
	}

	m, err := a.buildModel(ctx, fs, mf, fs.Args())
	if err != nil {
		return err
	}

	if *dump {
		return a.emit(*out, m.String())
	}

	seed, err := startText(m, *text)
	if err != nil {
		return err
	}

	if *stream && *out == "" {
		return a.streamGeneration(ctx, m, seed, *mf.length)
	}

	result := m.Generate(seed, *mf.length)
	a.logger.Debug("Generation complete",
		"seed_chars", utf8.RuneCountInString(seed),
		"generated", utf8.RuneCountInString(result)-utf8.RuneCountInString(seed),
	)
	return a.emit(*out, result+"\n")
}

// emit writes s to standard output, or atomically replaces the file at path.
func (a *app) emit(path, s string) error {
	if path == "" {
		_, err := fmt.Fprint(a.stdout, s)
		return err
	}
	if err := atomic.WriteFile(path, strings.NewReader(s)); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	a.logger.Info("Output written", "path", path, "chars", utf8.RuneCountInString(s))
	return nil
}

// streamGeneration prints characters as the model produces them until the
// generation ends or ctx is cancelled.
func (a *app) streamGeneration(ctx context.Context, m *markov.Model, seed string, length int) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := bufio.NewWriter(a.stdout)
	for ch := range m.GenerateStream(ctx, seed, length) {
		if _, err := w.WriteRune(ch); err != nil {
			return err
		}
		if ch == '\n' {
			if err := w.Flush(); err != nil {
				return err
			}
		}
	}
	if err := w.WriteByte('\n'); err != nil {
		return err
	}
	return w.Flush()
}
