package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/CTAG07/charkov/pkg/corpus"
	"github.com/dustin/go-humanize"
)

const corpusUsage = `usage: charkov corpus <add|list|remove|stats> [flags]

  add -name NAME [file...]      store files (or standard input) as documents
  list [-name NAME]             list corpora, or the documents of one corpus
  remove -name NAME | -doc ID   delete a corpus or a single document
  stats                         show totals for the whole store
`

func (a *app) runCorpus(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.stderr, corpusUsage)
		return errors.New("no corpus command given")
	}
	command, args := args[0], args[1:]

	fs := flag.NewFlagSet("corpus "+command, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	name := fs.String("name", "", "corpus name")
	docID := fs.String("doc", "", "document id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	db, store, err := a.openStore()
	if err != nil {
		return err
	}
	defer func() {
		store.Close()
		_ = db.Close()
	}()

	switch command {
	case "add":
		if *name == "" {
			return errors.New("corpus add: -name is required")
		}
		files := fs.Args()
		if len(files) == 0 {
			files = []string{"-"}
		}
		for _, file := range files {
			if err = a.addFile(ctx, store, *name, file); err != nil {
				return err
			}
		}
		return nil

	case "list":
		if *name == "" {
			stats, err := store.GetStats(ctx)
			if err != nil {
				return err
			}
			for _, info := range stats.Corpora {
				fmt.Fprintf(a.stdout, "%-24s %8s docs %12s chars\n",
					info.Name, humanize.Comma(int64(info.Documents)), humanize.Comma(int64(info.Chars)))
			}
			return nil
		}
		docs, err := store.Documents(ctx, *name)
		if err != nil {
			return err
		}
		for _, doc := range docs {
			fmt.Fprintf(a.stdout, "%s %12s chars  added %s\n",
				doc.ID, humanize.Comma(int64(doc.Chars)), humanize.Time(doc.AddedAt))
		}
		return nil

	case "remove":
		switch {
		case *docID != "":
			if err = store.RemoveDocument(ctx, *docID); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "removed document %s\n", *docID)
		case *name != "":
			if err = store.RemoveCorpus(ctx, *name); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "removed corpus %s\n", *name)
		default:
			return errors.New("corpus remove: -name or -doc is required")
		}
		return nil

	case "stats":
		stats, err := store.GetStats(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "corpora:   %s\n", humanize.Comma(int64(len(stats.Corpora))))
		fmt.Fprintf(a.stdout, "documents: %s\n", humanize.Comma(int64(stats.Documents)))
		fmt.Fprintf(a.stdout, "chars:     %s\n", humanize.Comma(int64(stats.Chars)))
		fmt.Fprintf(a.stdout, "size:      %s\n", humanize.Bytes(uint64(stats.Bytes)))
		return nil

	default:
		fmt.Fprint(a.stderr, corpusUsage)
		return fmt.Errorf("unknown corpus command %q", command)
	}
}

// addFile stores one file, or standard input for "-", as a document.
func (a *app) addFile(ctx context.Context, store *corpus.Store, name, file string) error {
	in := a.stdin
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		defer func() {
			_ = f.Close()
		}()
		in = f
	}
	doc, err := store.AddDocument(ctx, name, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "added %s to %s (%s chars)\n", doc.ID, doc.Corpus, humanize.Comma(int64(doc.Chars)))
	return nil
}
