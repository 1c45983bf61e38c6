package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/CTAG07/charkov/pkg/corpus"
	"github.com/CTAG07/charkov/pkg/markov"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

const usage = `usage: charkov [-config path] <command> [flags] [args]

commands:
  generate   train a model from files or a stored corpus and print a generation
  corpus     manage stored corpora (add, list, remove, stats)
  repl       train a model and generate from seeds typed interactively
  serve      host models over the HTTP API
  version    print build information
`

// app carries what every subcommand needs.
type app struct {
	cfg    *Config
	logger *slog.Logger
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "charkov: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}

// run parses the global flags, loads the configuration and dispatches to a
// subcommand.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("charkov", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	configPath := fs.String("config", "./charkov.json", "path to the JSON or YAML config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return errors.New("no command given")
	}
	command, args := rest[0], rest[1:]

	if command == "version" {
		_, err := fmt.Fprintf(stdout, "charkov %s (commit %s, built %s)\n", Version, Commit, BuildDate)
		return err
	}

	config, err := LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Logs go to stderr so generated text on stdout stays clean.
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: parseLogLevel(config.LogLevel)}))

	a := &app{
		cfg:    config,
		logger: logger,
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
	}

	switch command {
	case "generate":
		return a.runGenerate(ctx, args)
	case "corpus":
		return a.runCorpus(ctx, args)
	case "repl":
		return a.runREPL(ctx, args)
	case "serve":
		return a.runServe(ctx, args)
	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

// initDB opens the SQLite database at path, creating its directory, and
// sets up every schema the binary uses.
func initDB(path string) (*sql.DB, error) {
	file, _, _ := strings.Cut(path, "?")
	if dir := filepath.Dir(file); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err = corpus.SetupSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to setup corpus schema: %w", err)
	}
	if err = setupAuthSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to setup auth schema: %w", err)
	}
	return db, nil
}

// openStore opens the configured database and a corpus store on it. The
// caller closes both.
func (a *app) openStore() (*sql.DB, *corpus.Store, error) {
	db, err := initDB(a.cfg.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	store, err := corpus.NewStore(db)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to prepare corpus store: %w", err)
	}
	store.SetLogger(a.logger)
	return db, store, nil
}

// modelFlags are the flags shared by the commands that build a model.
type modelFlags struct {
	window *int
	seed   *int64
	length *int
	corpus *string
	prune  *int
}

func (a *app) bindModelFlags(fs *flag.FlagSet) *modelFlags {
	var seed int64
	if a.cfg.Model.Seed != nil {
		seed = *a.cfg.Model.Seed
	}
	return &modelFlags{
		window: fs.Int("window", a.cfg.Model.WindowLength, "number of characters per window"),
		seed:   fs.Int64("seed", seed, "random seed for reproducible generation"),
		length: fs.Int("length", a.cfg.Model.Length, "number of characters to generate"),
		corpus: fs.String("corpus", a.cfg.Model.Corpus, "stored corpus to train on"),
		prune:  fs.Int("prune", 0, "drop transitions seen at most this many times"),
	}
}

// seeded reports whether a fixed seed was given by flag or config.
func (a *app) seeded(fs *flag.FlagSet) bool {
	set := a.cfg.Model.Seed != nil
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			set = true
		}
	})
	return set
}

// buildModel trains a model on the stored corpus and the given files. A file
// named "-" is standard input, which is also used when there is no other
// source.
func (a *app) buildModel(ctx context.Context, fs *flag.FlagSet, mf *modelFlags, files []string) (*markov.Model, error) {
	var opts []markov.Option
	if a.seeded(fs) {
		opts = append(opts, markov.WithSeed(*mf.seed))
	}
	m, err := markov.NewModel(*mf.window, opts...)
	if err != nil {
		return nil, err
	}
	m.SetLogger(a.logger)

	if *mf.corpus != "" {
		db, store, err := a.openStore()
		if err != nil {
			return nil, err
		}
		err = store.TrainModel(ctx, *mf.corpus, m)
		store.Close()
		_ = db.Close()
		if err != nil {
			return nil, err
		}
	}

	if len(files) == 0 && *mf.corpus == "" {
		files = []string{"-"}
	}
	for _, name := range files {
		if err = a.trainFile(m, name); err != nil {
			return nil, err
		}
	}

	if *mf.prune > 0 {
		m.Prune(*mf.prune)
	}
	return m, nil
}

func (a *app) trainFile(m *markov.Model, name string) error {
	if name == "-" {
		if err := m.Train(a.stdin); err != nil {
			return fmt.Errorf("failed to train on standard input: %w", err)
		}
		return nil
	}
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()
	if err = m.Train(f); err != nil {
		return fmt.Errorf("failed to train on %s: %w", name, err)
	}
	return nil
}
