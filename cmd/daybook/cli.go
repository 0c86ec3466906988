package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"daybook/internal/analyze"
	"daybook/internal/config"
	"daybook/internal/errors"
	"daybook/internal/identity"
	"daybook/internal/importer"
	"daybook/internal/journal"
	"daybook/internal/store"
	"daybook/internal/weather"
	"daybook/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(st *store.Store, imp *importer.Importer, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "daybook",
		Usage:   "Personal journal with import pipelines",
		Version: Version,
		Commands: []*cli.Command{
			addCmd(st, cfg),
			showCmd(st),
			importCmd(imp),
			analyzeCmd(st, cfg),
			serveCmd(st, cfg),
			watchCmd(imp, cfg),
			historyCmd(imp),
			configCmd(cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// addCmd creates the add command.
func addCmd(st *store.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Add an entry (argument or stdin)",
		ArgsUsage: "[text]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Entry title"},
			&cli.Int64Flag{Name: "notebook", Aliases: []string{"b"}, Value: journal.DefaultNotebook, Usage: "Notebook id"},
		},
		Action: func(c *cli.Context) error {
			text := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if text == "" && stdinHasData() {
				var err error
				text, err = readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
			}
			if text == "" {
				return outputError(errors.NewInvalidRequest("entry text is required"))
			}

			now := time.Now()
			rec := journal.Prepare(journal.RawTextInput(text), identity.HashOf(text), now)
			if rec.Date.IsZero() {
				rec.Date = now
				rec.ID = identity.ZettelkastenID(now)
			}

			entry := rec.Entry()
			entry.Title = c.String("title")
			entry.Notebook = c.Int64("notebook")

			if conditions := weather.NewClient(cfg.Weather).Current(c.Context); conditions != nil {
				if entry.Metadata == nil {
					entry.Metadata = map[string]any{}
				}
				entry.Metadata["weather"] = conditions
			}

			stored, _, err := st.Upsert(journal.EntrySchema, entry.Doc())
			if err != nil {
				return outputError(err)
			}
			return outputJSON(stored)
		},
	}
}

// showCmd creates the show command.
func showCmd(st *store.Store) *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "Show recent entries, newest first",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "number", Aliases: []string{"n"}, Value: 5, Usage: "Number of entries"},
			&cli.Int64Flag{Name: "notebook", Aliases: []string{"b"}, Usage: "Restrict to one notebook"},
			&cli.BoolFlag{Name: "oldest", Usage: "Oldest first"},
		},
		Action: func(c *cli.Context) error {
			filter := store.Filter{}
			if nb := c.Int64("notebook"); nb != 0 {
				filter["notebook"] = nb
			}

			docs, err := st.FindWith(journal.EntrySchema.Collection, filter, store.FindOptions{
				SortBy:     "id",
				Descending: !c.Bool("oldest"),
				Limit:      c.Int("number"),
			})
			if err != nil {
				return outputError(err)
			}

			for _, doc := range docs {
				entry, err := journal.EntryFromDoc(doc)
				if err != nil {
					return outputError(err)
				}
				fmt.Println(displayEntry(entry))
			}
			return nil
		},
	}
}

// importCmd creates the import command. The import kind is chosen by the
// path: directories walk recursively, .csv/.json/.zip use their batch
// importers, everything else is a single file.
func importCmd(imp *importer.Importer) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import entries from a file, directory, CSV, JSON export or zip archive",
		ArgsUsage: "<path>",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewInvalidRequest("a path to import is required"))
			}
			path := c.Args().First()

			result, err := runImport(imp, path)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(result)
		},
	}
}

// runImport dispatches a path to the matching importer.
func runImport(imp *importer.Importer, path string) (importer.Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return importer.Result{}, errors.NewNotFound(path)
	}
	if info.IsDir() {
		return imp.ImportDirectory(path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return imp.ImportCSV(path)
	case ".json":
		return imp.ImportJSON(path)
	case ".zip":
		return imp.ImportZip(path)
	default:
		return imp.ImportFile(path)
	}
}

// analyzeCmd creates the analyze command.
func analyzeCmd(st *store.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "Run the classifier over unanalyzed entries",
		Action: func(c *cli.Context) error {
			if cfg.Classifier.Endpoint == "" {
				return outputError(errors.NewNotConfigured("classifier endpoint"))
			}

			analyzer := analyze.New(st,
				analyze.NewClient(cfg.Classifier, "emotion"),
				analyze.NewClient(cfg.Classifier, "context"),
			).WithSummaryDepths(cfg.Classifier.EmotionK, cfg.Classifier.ContextK)

			analyzed, skipped, err := analyzer.AnalyzeAll(c.Context)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(map[string]int{"analyzed": analyzed, "skipped": skipped})
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(st *store.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the journal HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "Bind host (overrides config)"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Bind port (overrides config)"},
		},
		Action: func(c *cli.Context) error {
			serveCfg := *cfg
			if host := c.String("host"); host != "" {
				serveCfg.HTTP.Host = host
			}
			if port := c.Int("port"); port != 0 {
				serveCfg.HTTP.Port = port
			}
			return web.Run(web.NewServer(st, &serveCfg))
		},
	}
}

// watchCmd creates the watch command.
func watchCmd(imp *importer.Importer, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Watch the drop directory and import new files",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Usage: "Directory to watch (overrides config)"},
		},
		Action: func(c *cli.Context) error {
			dir := c.String("dir")
			if dir == "" {
				dir = cfg.Watch.Dir
			}
			if dir == "" {
				return outputError(errors.NewNotConfigured("watch directory"))
			}

			w := importer.NewWatcher(imp, dir)
			if err := w.Start(); err != nil {
				return outputError(errors.NewInternal(err))
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			<-sigCh

			w.Stop()
			return nil
		},
	}
}

// historyCmd creates the history command.
func historyCmd(imp *importer.Importer) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recent import runs",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "number", Aliases: []string{"n"}, Value: 20, Usage: "Number of rows"},
		},
		Action: func(c *cli.Context) error {
			entries, err := imp.History().Recent(c.Int("number"))
			if err != nil {
				return outputError(err)
			}
			return outputJSON(entries)
		},
	}
}

// configCmd creates the config command.
func configCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Print the resolved configuration",
		Action: func(c *cli.Context) error {
			return outputJSON(cfg)
		},
	}
}

// displayEntry renders one entry for terminal output.
func displayEntry(entry journal.Entry) string {
	var b strings.Builder

	fmt.Fprintf(&b, "=== %d  %s\n", entry.ID, journal.DateString(entry.Created))
	if entry.Title != "" {
		fmt.Fprintf(&b, "%s\n", entry.Title)
	}
	b.WriteString("\n")
	b.WriteString(entry.Text)
	b.WriteString("\n")

	if entry.Analysis != nil {
		if len(entry.Analysis.Emotion) > 0 {
			fmt.Fprintf(&b, "[mood: %s]", strings.Join(entry.Analysis.Emotion, ", "))
		}
		if len(entry.Analysis.Context) > 0 {
			fmt.Fprintf(&b, "[context: %s]", strings.Join(entry.Analysis.Context, ", "))
		}
		if len(entry.Analysis.Emotion) > 0 || len(entry.Analysis.Context) > 0 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// outputJSON writes data as indented JSON to stdout.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if dErr, ok := err.(*errors.Error); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", dErr.Code, dErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
