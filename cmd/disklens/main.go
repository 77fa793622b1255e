package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/sadopc/disklens/internal/cache"
	"github.com/sadopc/disklens/internal/config"
	"github.com/sadopc/disklens/internal/engine"
	"github.com/sadopc/disklens/internal/events"
	"github.com/sadopc/disklens/internal/logging"
	"github.com/sadopc/disklens/internal/model"
	"github.com/sadopc/disklens/internal/ops"
	"github.com/sadopc/disklens/internal/ui"
	"github.com/sadopc/disklens/internal/ui/components"
	"github.com/sadopc/disklens/internal/ui/style"
	"github.com/sadopc/disklens/internal/util"
)

var (
	version = "dev"
)

const defaultWidth = 100

type reportOptions struct {
	cached     bool
	sort       model.SortField
	top        int
	find       string
	showErrors bool
	width      int
}

func main() {
	// Flags
	maxDepth := flag.Int("d", -1, "Max directory depth (-1 = unlimited, 0 = root not listed, 1 = root entries only)")
	concurrency := flag.Int("j", 0, "Max concurrent directory reads (0 = from config or storage type)")
	followSymlinks := flag.Bool("follow-symlinks", false, "Follow symbolic links during scan")
	configPath := flag.String("config", "", "Path to the YAML settings file")
	noCache := flag.Bool("no-cache", false, "Neither read nor write the scan cache")
	clearCache := flag.Bool("clear-cache", false, "Remove every cached scan and exit")
	pruneCache := flag.Bool("prune-cache", false, "Evict old cache entries down to the configured bounds and exit")
	exportPath := flag.String("export", "", "Export the scan result as JSON (use '-' for stdout)")
	exportNcdu := flag.String("export-ncdu", "", "Export the tree in ncdu's JSON format (use '-' for stdout)")
	exportMd := flag.String("export-md", "", "Write a Markdown report (use '-' for stdout)")
	exportHTML := flag.String("export-html", "", "Write a standalone HTML report (use '-' for stdout)")
	importPath := flag.String("import", "", "Load a result from a JSON or ncdu export instead of scanning")
	top := flag.Int("top", 0, "List the N largest entries")
	find := flag.String("find", "", "List paths containing PATTERN (case-insensitive)")
	showErrors := flag.Bool("errors", false, "List every scan error")
	noBrowse := flag.Bool("no-browse", false, "Print the summary even when attached to a terminal")
	sortBy := flag.String("sort", "size", "Initial order: size, name, count, mtime")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error, silent")
	showVersion := flag.Bool("version", false, "Show version")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "disklens - Disk usage analyzer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: disklens [options] [path]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  disklens .                        Scan and browse the current directory\n")
		fmt.Fprintf(os.Stderr, "  disklens --no-browse .            Print the summary instead\n")
		fmt.Fprintf(os.Stderr, "  disklens -d 2 /home               Scan /home two levels deep\n")
		fmt.Fprintf(os.Stderr, "  disklens --top 20 /var            Show the 20 largest entries\n")
		fmt.Fprintf(os.Stderr, "  disklens --export scan.json .     Export scan to JSON\n")
		fmt.Fprintf(os.Stderr, "  disklens --export-ncdu - . | ncdu -f -\n")
		fmt.Fprintf(os.Stderr, "  disklens --export-html du.html .  Write an HTML report\n")
		fmt.Fprintf(os.Stderr, "  disklens --import scan.json       Summarize an exported scan\n")
		fmt.Fprintf(os.Stderr, "  disklens --prune-cache            Trim the scan cache\n")
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("disklens %s\n", version)
		os.Exit(0)
	}

	settings, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Flags given on the command line override the settings file.
	var flagErr error
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "d":
			if *maxDepth < -1 {
				flagErr = fmt.Errorf("depth (-d) must be >= -1")
				return
			}
			settings.MaxDepth = nil
			if *maxDepth >= 0 {
				d := *maxDepth
				settings.MaxDepth = &d
			}
		case "j":
			if *concurrency < 0 {
				flagErr = fmt.Errorf("concurrency (-j) must be >= 0")
				return
			}
			if *concurrency > 0 {
				settings.MaxConcurrentIO = *concurrency
			}
		case "follow-symlinks":
			settings.FollowSymlinks = *followSymlinks
		case "log-level":
			settings.Log.Level = *logLevel
		}
	})
	if flagErr == nil {
		flagErr = settings.Validate()
	}
	if flagErr == nil && *top < 0 {
		flagErr = fmt.Errorf("--top must be >= 0")
	}
	sortField, ok := model.ParseSortField(*sortBy)
	if flagErr == nil && !ok {
		flagErr = fmt.Errorf("unknown sort field %q", *sortBy)
	}
	if flagErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", flagErr)
		os.Exit(1)
	}

	logger, err := logging.New(settings.Log.Level, settings.Log.Format, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Cache maintenance
	if *clearCache || *pruneCache {
		if flag.NArg() > 0 || *importPath != "" {
			fmt.Fprintf(os.Stderr, "Error: cache maintenance flags cannot be combined with a scan\n")
			os.Exit(1)
		}
		if err := maintainCache(settings, *clearCache, *pruneCache, logger); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	var (
		result *model.ScanResult
		cached bool
	)

	if *importPath != "" {
		if flag.NArg() > 0 {
			fmt.Fprintf(os.Stderr, "Error: --import cannot be used with a scan path\n")
			os.Exit(1)
		}
		result, err = ops.Import(*importPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error importing: %v\n", err)
			os.Exit(1)
		}
	} else {
		if flag.NArg() > 1 {
			fmt.Fprintf(os.Stderr, "Error: too many positional arguments\n")
			os.Exit(1)
		}
		path := "."
		if flag.NArg() == 1 {
			path = flag.Arg(0)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		eng := engine.NewFromSettings(settings, *noCache, logger)
		toStdout := *exportPath == ops.Stdout || *exportNcdu == ops.Stdout ||
			*exportMd == ops.Stdout || *exportHTML == ops.Stdout
		live := !toStdout && term.IsTerminal(int(os.Stderr.Fd()))

		result, cached, err = analyze(ctx, eng, path, live)
		stop()
		if err != nil {
			if errors.Is(err, context.Canceled) {
				fmt.Fprintf(os.Stderr, "Scan canceled\n")
				os.Exit(130)
			}
			fmt.Fprintf(os.Stderr, "Scan error: %v\n", err)
			os.Exit(1)
		}
	}

	// Headless export mode
	exports := []struct {
		path  string
		write func(*model.ScanResult, string) error
	}{
		{*exportPath, ops.ExportJSON},
		{*exportNcdu, func(r *model.ScanResult, p string) error { return ops.ExportNcdu(r, p, version) }},
		{*exportMd, ops.ExportMarkdown},
		{*exportHTML, ops.ExportHTML},
	}
	exported := false
	for _, e := range exports {
		if e.path == "" {
			continue
		}
		exported = true
		if err := e.write(result, e.path); err != nil {
			fmt.Fprintf(os.Stderr, "Export error: %v\n", err)
			os.Exit(1)
		}
		if e.path != ops.Stdout {
			fmt.Printf("Exported to %s\n", e.path)
		}
	}
	if exported {
		return
	}

	// Summary flags ask for a printed report; otherwise a terminal gets the
	// browser.
	interactive := !*noBrowse && *top == 0 && *find == "" && !*showErrors &&
		term.IsTerminal(int(os.Stdout.Fd())) && term.IsTerminal(int(os.Stdin.Fd()))
	if interactive {
		if err := browse(result, cached, settings, sortField); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	printReport(os.Stdout, result, settings, reportOptions{
		cached:     cached,
		sort:       sortField,
		top:        *top,
		find:       *find,
		showErrors: *showErrors,
		width:      outputWidth(),
	})
}

// analyze runs the engine. With live set, a progress view on stderr
// consumes the scan's events until the engine returns.
func analyze(ctx context.Context, eng *engine.Engine, path string, live bool) (*model.ScanResult, bool, error) {
	if !live {
		return eng.Analyze(ctx, path, events.Discard)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	queue := events.NewQueue()
	view := ui.NewProgressModel(path, queue.Events(), cancel)
	p := tea.NewProgram(view, tea.WithOutput(os.Stderr))

	var (
		result *model.ScanResult
		cached bool
		err    error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		result, cached, err = eng.Analyze(ctx, path, queue)
		queue.Close()
	}()

	if _, runErr := p.Run(); runErr != nil {
		cancel()
		<-done
		return nil, false, runErr
	}
	<-done
	return result, cached, err
}

func maintainCache(settings config.Settings, doClear, doPrune bool, logger zerolog.Logger) error {
	if doClear {
		if err := cache.New(settings.CacheDir, logger).Clear(); err != nil {
			return err
		}
		fmt.Printf("Cleared cache in %s\n", settings.CacheDir)
	}
	if doPrune {
		stats, err := cache.Prune(settings.CacheDir, settings.CacheMaxSizeMB, settings.CacheMaxAgeDays, logger)
		if err != nil {
			return err
		}
		fmt.Printf("Pruned %d entries and %d temp files, freed %s, kept %s\n",
			stats.EntriesRemoved, stats.TempRemoved,
			humanize.IBytes(uint64(stats.BytesFreed)), humanize.IBytes(uint64(stats.BytesKept)))
	}
	return nil
}

func printReport(w io.Writer, result *model.ScanResult, settings config.Settings, opts reportOptions) {
	theme := style.DefaultTheme()

	fmt.Fprintln(w, components.RenderHeader(theme, result, opts.cached, opts.width))
	if indicator := components.RenderErrorIndicator(theme, result); indicator != "" {
		fmt.Fprintln(w, indicator)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, components.RenderSummary(theme, visibleItems(result.Root, settings, opts.sort), opts.width))

	if opts.top > 0 {
		idx := model.NewSizeIndex(result.Root)
		entries := idx.TopN(opts.top)
		fmt.Fprintf(w, "\nLargest %d of %s entries:\n", len(entries), humanize.Comma(int64(idx.Len())))
		for _, e := range entries {
			name := e.Path
			if e.Type == model.TypeDirectory {
				name += "/"
			}
			fmt.Fprintf(w, "%12s  %s\n", util.FormatSize(e.Size), name)
		}
	}

	if opts.find != "" {
		matches := model.NewPathIndex(result.Root).Search(opts.find)
		fmt.Fprintf(w, "\n%s paths match %q:\n", humanize.Comma(int64(len(matches))), opts.find)
		for _, p := range matches {
			fmt.Fprintf(w, "  %s\n", p)
		}
	}

	if opts.showErrors && len(result.Errors) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, components.RenderErrors(theme, result.Errors, opts.width))
	}
}

// visibleItems sorts a copy of the root's children by field and lists them
// through ui.VisibleItems, so ignored names drop out and small entries merge.
func visibleItems(root *model.Node, settings config.Settings, field model.SortField) []model.MergedItem {
	view := *root
	view.Children = append([]*model.Node(nil), root.Children...)
	model.SortChildren(view.Children, sortConfig(field))
	return ui.VisibleItems(&view, settings.Ignored, settings.MergeThreshold)
}

func sortConfig(field model.SortField) model.SortConfig {
	cfg := model.DefaultSort()
	cfg.Field = field
	if field == model.SortByName {
		cfg.Order = model.SortAsc
	}
	return cfg
}

// browse opens the interactive browser over result on the alternate screen.
func browse(result *model.ScanResult, cached bool, settings config.Settings, field model.SortField) error {
	b := ui.NewBrowser(result, cached, ui.BrowserOptions{
		Sort:           sortConfig(field),
		MergeThreshold: settings.MergeThreshold,
		Ignored:        settings.Ignored,
	})
	_, err := tea.NewProgram(b, tea.WithAltScreen()).Run()
	return err
}

func outputWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	if cols := strings.TrimSpace(os.Getenv("COLUMNS")); cols != "" {
		var w int
		if _, err := fmt.Sscanf(cols, "%d", &w); err == nil && w > 0 {
			return w
		}
	}
	return defaultWidth
}
