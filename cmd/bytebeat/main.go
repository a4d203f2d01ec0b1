package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/goccy/go-json"
	"github.com/jessevdk/go-flags"
	"github.com/mattn/go-isatty"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/soracane/bytebeat/internal/beat"
	"github.com/soracane/bytebeat/internal/library"
	"github.com/soracane/bytebeat/internal/server"
	"github.com/soracane/bytebeat/internal/stream"
	"github.com/soracane/bytebeat/internal/watch"
)

type Option struct {
	Expr    string `short:"e" long:"expr" description:"[OPTIONAL] Expression to compile" required:"false"`
	File    string `short:"f" long:"file" description:"[OPTIONAL] Expression file (first line is the expression)" required:"false"`
	Song    string `long:"song" description:"[OPTIONAL] Play a song from the catalog by name" required:"false"`
	Catalog string `long:"catalog" description:"[OPTIONAL] Extra song catalog (JSON or YAML)" required:"false"`
	List    bool   `long:"list-songs" description:"[OPTIONAL] List catalog songs and exit" required:"false"`

	Watch  bool   `short:"w" long:"watch" description:"[OPTIONAL] Recompile the expression file on change (requires --file)" required:"false"`
	Listen string `short:"l" long:"listen" description:"[OPTIONAL] Listen host and port for the HTTP API" required:"false"`

	Output  string  `short:"o" long:"output" description:"[OPTIONAL] Output file, - for stdout (default: -)" default:"-"`
	Samples int     `long:"samples" description:"[OPTIONAL] Number of samples to render" default:"65536"`
	From    int32   `long:"from" description:"[OPTIONAL] Starting value of t" default:"0"`
	Rate    int     `long:"rate" description:"[OPTIONAL] Sample rate for the WAV header" default:"8000"`
	Volume  float64 `long:"volume" description:"[OPTIONAL] Volume from 0.0 to 1.0" default:"1.0"`
	Format  string  `long:"format" description:"[OPTIONAL] Output format" choice:"wav" choice:"raw" default:"wav"`

	JSON bool `long:"json" description:"[OPTIONAL] Report diagnostics as JSON" required:"false"`
}

// diagnosticJSON mirrors the HTTP API's diagnostic shape.
type diagnosticJSON struct {
	Column   int    `json:"column"`
	End      int    `json:"end"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var opt Option
	parser := flags.NewParser(&opt, flags.Default)
	_, err := parser.ParseArgs(args)
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return 0
		} else {
			parser.WriteHelp(os.Stdout)
			return 1
		}
	}

	songs, err := loadSongs(opt.Catalog)
	if err != nil {
		log.Printf("failed to load catalog: %v", err)
		return 1
	}
	if opt.List {
		listSongs(os.Stdout, songs)
		return 0
	}

	source, err := resolveSource(opt, songs)
	if err != nil {
		log.Print(err)
		parser.WriteHelp(os.Stdout)
		return 1
	}

	program, err := beat.Compile(source)
	if err != nil {
		diags, _ := err.(beat.Diagnostics)
		reportDiagnostics(os.Stderr, source, diags, opt.JSON)
		if !opt.Watch {
			return 1
		}
		// Watch mode starts silent and waits for a good save.
		program = nil
	} else {
		reportDiagnostics(os.Stderr, source, program.Warnings(), opt.JSON)
	}

	renderer := stream.NewRenderer(program)
	renderer.SetVolume(stream.Volume(opt.Volume))

	if opt.Watch || opt.Listen != "" {
		return runLive(opt, renderer)
	}

	if err := render(opt, renderer); err != nil {
		log.Printf("failed to render: %v", err)
		return 1
	}
	return 0
}

func loadSongs(catalogPath string) ([]library.Song, error) {
	songs := library.Builtin()
	if catalogPath == "" {
		return songs, nil
	}
	extra, err := library.LoadCatalog(catalogPath)
	if err != nil {
		return nil, err
	}
	return append(songs, extra...), nil
}

func listSongs(w io.Writer, songs []library.Song) {
	for _, song := range songs {
		author := song.Author
		if author == "" {
			author = "unknown"
		}
		fmt.Fprintf(w, "%-24s %-12s %s\n", song.Name, author, song.Code)
	}
}

// resolveSource picks the expression from exactly one of --expr, --file and
// --song.
func resolveSource(opt Option, songs []library.Song) (string, error) {
	given := 0
	for _, set := range []bool{opt.Expr != "", opt.File != "", opt.Song != ""} {
		if set {
			given++
		}
	}
	if given != 1 {
		return "", errors.New("exactly one of --expr, --file or --song is required")
	}
	if opt.Watch && opt.File == "" {
		return "", errors.New("--watch requires --file")
	}

	switch {
	case opt.Expr != "":
		return opt.Expr, nil

	case opt.File != "":
		return watch.ReadExpression(opt.File)

	default:
		song, ok := library.Find(songs, opt.Song)
		if !ok {
			return "", fmt.Errorf("unknown song: %q", opt.Song)
		}
		return song.Code, nil
	}
}

// runLive runs the watcher and the HTTP server, whichever are enabled,
// until interrupted.
func runLive(opt Option, renderer *stream.Renderer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eg, ctx := errgroup.WithContext(ctx)

	if opt.Watch {
		watcher, err := watch.New(opt.File, nil)
		if err != nil {
			log.Printf("failed to create watcher: %v", err)
			return 1
		}
		eg.Go(func() error {
			return watcher.Watch(ctx, func(u watch.Update) {
				if u.Program == nil {
					reportDiagnostics(os.Stderr, u.Source, u.Diagnostics, opt.JSON)
					return
				}
				reportDiagnostics(os.Stderr, u.Source, u.Program.Warnings(), opt.JSON)
				renderer.Swap(u.Program)
				log.Printf("now playing: %s", u.Program)
			})
		})
	}

	if opt.Listen != "" {
		srv := http.Server{
			Handler: server.NewHTTPHandler(renderer),
			Addr:    opt.Listen,
		}
		eg.Go(func() error {
			log.Printf("Listen HTTP on %s", opt.Listen)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		eg.Go(func() error {
			<-ctx.Done()
			return srv.Shutdown(context.Background())
		})
	}

	if err := eg.Wait(); err != nil {
		log.Printf("failed to serve: %v", err)
		return 1
	}
	return 0
}

func render(opt Option, renderer *stream.Renderer) error {
	out := os.Stdout
	if opt.Output != "-" {
		f, err := os.Create(opt.Output)
		if err != nil {
			return fmt.Errorf("os.Create(%q): %w", opt.Output, err)
		}
		defer f.Close()
		out = f
	}

	opts := stream.RenderOptions{From: opt.From, Samples: opt.Samples, Rate: opt.Rate}
	if opt.Format == "raw" {
		return renderer.WriteRaw(out, opts)
	}
	return renderer.WriteWAV(out, opts)
}

func reportDiagnostics(w io.Writer, source string, diags beat.Diagnostics, asJSON bool) {
	if len(diags) == 0 {
		return
	}
	if asJSON {
		dtos := lo.Map(diags, func(d beat.Diagnostic, _ int) diagnosticJSON {
			return diagnosticJSON{
				Column:   d.Pos,
				End:      d.End,
				Message:  d.Message,
				Severity: d.Severity.String(),
			}
		})
		if err := dumpJSON(w, dtos); err != nil {
			log.Printf("failed to dump diagnostics as JSON: %v", err)
		}
		return
	}

	tty := false
	if f, ok := w.(interface{ Fd() uintptr }); ok {
		tty = isatty.IsTerminal(f.Fd())
	}

	fmt.Fprintln(w, source)
	for _, d := range diags {
		fmt.Fprintln(w, underline(source, d, tty))
		label := color.New(color.FgRed)
		if d.Severity == beat.SeverityWarning {
			label = color.New(color.FgYellow)
		}
		if !tty {
			label.DisableColor()
		}
		fmt.Fprintf(w, "%s at column %d: %s\n", label.Sprint(d.Severity), d.Pos+1, d.Message)
	}
}

// underline draws a caret at the diagnostic's column with tildes through the
// rest of its span.
func underline(source string, d beat.Diagnostic, tty bool) string {
	var b strings.Builder
	for i := 0; i < d.Pos && i < len(source); i++ {
		if source[i] == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}

	span := d.End - d.Pos
	if span < 1 {
		span = 1
	}
	marker := "^" + strings.Repeat("~", span-1)

	c := color.New(color.FgRed)
	if d.Severity == beat.SeverityWarning {
		c = color.New(color.FgYellow)
	}
	if !tty {
		c.DisableColor()
	}
	return b.String() + c.Sprint(marker)
}

func dumpJSON(w io.Writer, v any) error {
	opts := []json.EncodeOptionFunc{json.DisableHTMLEscape()}
	if f, ok := w.(interface{ Fd() uintptr }); ok {
		if isatty.IsTerminal(f.Fd()) {
			opts = append(opts, json.Colorize(json.DefaultColorScheme))
		}
	}

	b, err := json.MarshalIndentWithOption(v, "", "\t", opts...)
	if err != nil {
		return fmt.Errorf("json.MarshalIndentWithOption: %w", err)
	}

	if _, err = w.Write(b); err != nil {
		return fmt.Errorf("w.Write: %w", err)
	}
	if _, err = io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("io.WriteString: %w", err)
	}
	return nil
}
