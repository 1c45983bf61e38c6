package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/CTAG07/charkov/pkg/markov"
	"github.com/chzyer/readline"
	"golang.org/x/term"
)

const replHelp = `Type a seed to continue it. Commands:
  :length N   set the number of characters to generate
  :prune N    drop transitions seen at most N times
  :stats      show model statistics
  :dump       print every window and its distribution
  :help       show this help
  :quit       leave
`

// replSession holds the state of one interactive session.
type replSession struct {
	model  *markov.Model
	length int
	out    io.Writer
}

func (a *app) runREPL(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("repl", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	mf := a.bindModelFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *mf.corpus == "" && fs.NArg() == 0 {
		return errors.New("repl: give a -corpus or at least one training file")
	}

	m, err := a.buildModel(ctx, fs, mf, fs.Args())
	if err != nil {
		return err
	}
	stats := m.Stats()
	a.logger.Info("Model ready", "windows", stats.Windows, "transitions", stats.Transitions)

	if f, ok := a.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return a.readlineLoop(ctx, m, *mf.length)
	}
	return a.scanLoop(ctx, m, *mf.length)
}

// readlineLoop runs the session on an interactive terminal with line editing
// and history.
func (a *app) readlineLoop(ctx context.Context, m *markov.Model, length int) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "charkov> ",
		HistoryFile:     a.cfg.HistoryFile,
		InterruptPrompt: "^C",
		EOFPrompt:       ":quit",
	})
	if err != nil {
		return fmt.Errorf("failed to start line editor: %w", err)
	}
	defer func() {
		_ = rl.Close()
	}()

	s := &replSession{model: m, length: length, out: rl.Stdout()}
	fmt.Fprint(s.out, replHelp)
	for ctx.Err() == nil {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if !s.handle(line) {
			return nil
		}
	}
	return nil
}

// scanLoop runs the session on piped input: one seed or command per line, no
// prompt.
func (a *app) scanLoop(ctx context.Context, m *markov.Model, length int) error {
	s := &replSession{model: m, length: length, out: a.stdout}
	scanner := bufio.NewScanner(a.stdin)
	for ctx.Err() == nil && scanner.Scan() {
		if !s.handle(scanner.Text()) {
			return nil
		}
	}
	return scanner.Err()
}

// handle processes one line of input and reports whether the session should
// continue.
func (s *replSession) handle(line string) bool {
	if !strings.HasPrefix(line, ":") {
		if line == "" {
			return true
		}
		fmt.Fprintln(s.out, s.model.Generate(line, s.length))
		return true
	}

	command, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)
	switch command {
	case ":quit", ":q", ":exit":
		return false
	case ":help":
		fmt.Fprint(s.out, replHelp)
	case ":dump":
		fmt.Fprint(s.out, s.model.String())
	case ":stats":
		st := s.model.Stats()
		fmt.Fprintf(s.out, "window length %d, %d windows, %d transitions, %d observations, max branching %d\n",
			st.WindowLength, st.Windows, st.Transitions, st.Observations, st.MaxBranching)
	case ":length":
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 {
			fmt.Fprintln(s.out, "usage: :length N (N >= 1)")
			break
		}
		s.length = n
	case ":prune":
		n, err := strconv.Atoi(arg)
		if err != nil {
			fmt.Fprintln(s.out, "usage: :prune N")
			break
		}
		fmt.Fprintf(s.out, "removed %d transitions\n", s.model.Prune(n))
	default:
		fmt.Fprintf(s.out, "unknown command %s, try :help\n", command)
	}
	return true
}
