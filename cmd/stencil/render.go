package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/natefinch/atomic"

	"github.com/randalmurphal/stencil/pkg/stencil"
	"github.com/randalmurphal/stencil/pkg/stencil/config"
	"github.com/randalmurphal/stencil/pkg/stencil/document"
	"github.com/randalmurphal/stencil/pkg/stencil/observability"
)

// defaultExtension is appended to document names given without it.
const defaultExtension = ".stencil.html"

// renderOptions holds the parsed render flags.
type renderOptions struct {
	input     string
	options   string
	dir       string
	ext       string
	engine    string
	output    string
	vars      varFlag
	filters   multiFlag
	minify    bool
	debug     bool
	watch     bool
	logger    *slog.Logger
	logFormat string
	verbose   bool
}

// renderCmd renders a manifest or document and returns the exit code.
func renderCmd(args []string) int {
	var o renderOptions
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	fs.StringVar(&o.options, "config", "", "YAML or JSON file of template options for a single document")
	fs.StringVar(&o.dir, "dir", "", "Directory documents are resolved in")
	fs.StringVar(&o.ext, "ext", defaultExtension, "Extension appended to document names without it")
	fs.StringVar(&o.engine, "engine", "pongo2", "Document engine: pongo2 or expand")
	fs.StringVar(&o.output, "o", "", "Write output to this file instead of stdout")
	fs.Var(&o.vars, "var", "Bind a variable, name=value (repeatable)")
	fs.Var(&o.filters, "filter", "Attach a named filter (repeatable or comma separated)")
	fs.BoolVar(&o.minify, "minify", false, "Collapse whitespace in the output")
	fs.BoolVar(&o.debug, "debug", false, "Wrap each template's output in debug comments")
	fs.BoolVar(&o.watch, "watch", false, "Re-render when documents change")
	fs.StringVar(&o.logFormat, "log-format", "auto", "Log format: auto, text or json")
	fs.BoolVar(&o.verbose, "v", false, "Log each render stage")

	fs.Usage = func() {
		fmt.Println(`Usage: stencil render [options] <manifest.yaml | document>

Render a template tree described by a manifest, or a single document.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: no manifest or document specified")
		fs.Usage()
		return 2
	}
	o.input = fs.Arg(0)
	// Allow options after the input as well.
	if err := fs.Parse(fs.Args()[1:]); err != nil {
		return 2
	}

	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	o.logger = newLogger(o.logFormat, level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watched, err := o.run(ctx)
	if !o.watch {
		return exitCode(o.logger, err)
	}
	if err != nil {
		// Keep watching so the next edit can fix the problem.
		exitCode(o.logger, err)
	}
	return exitCode(o.logger, o.watchLoop(ctx, watched))
}

// run builds the template tree, renders it and writes the output.
// It returns the files worth watching for changes.
func (o *renderOptions) run(ctx context.Context) ([]string, error) {
	done := observability.TimedOperation()

	tpl, watched, err := o.build()
	if err != nil {
		return watched, err
	}
	out, err := tpl.Render(ctx)
	if err != nil {
		return watched, err
	}

	if o.output == "" {
		_, err = fmt.Fprint(os.Stdout, out)
		return watched, err
	}
	if err := atomic.WriteFile(o.output, strings.NewReader(out)); err != nil {
		return watched, fmt.Errorf("write %s: %w", o.output, err)
	}
	o.logger.Info("wrote output",
		slog.String("file", o.output),
		slog.String("size", humanize.Bytes(uint64(len(out)))),
		slog.Float64("duration_ms", done()),
	)
	return watched, nil
}

// build creates the template tree for the input.
func (o *renderOptions) build() (*stencil.Template, []string, error) {
	src := document.OSSource{}
	var exec document.Executor
	switch o.engine {
	case "pongo2":
		exec = document.NewPongo2Executor(src)
	case "expand":
		exec = document.NewExpandExecutor(src)
	default:
		return nil, nil, fmt.Errorf("unknown engine %q", o.engine)
	}
	opts := []stencil.Option{
		stencil.WithSource(src),
		stencil.WithExecutor(exec),
		stencil.WithLogger(o.logger),
	}

	var (
		tpl     *stencil.Template
		watched []string
		err     error
	)
	switch strings.ToLower(filepath.Ext(o.input)) {
	case ".yaml", ".yml":
		watched = append(watched, o.input)
		tpl, err = stencil.LoadManifest(o.input, opts...)
	default:
		var cfg *config.Config
		cfg, err = o.documentConfig(src)
		if err != nil {
			return nil, watched, err
		}
		if o.options != "" {
			watched = append(watched, o.options)
		}
		tpl, err = stencil.New(identifierFor(o.input), cfg, opts...)
	}
	if err != nil {
		return nil, watched, err
	}

	for _, name := range o.vars.names {
		tpl.Set(name, o.vars.values[name])
	}
	filters := append([]string(nil), o.filters...)
	if o.debug {
		filters = append(filters, "debug")
	}
	if o.minify {
		filters = append(filters, "minify")
	}
	if err := tpl.Use(filters...); err != nil {
		return nil, watched, err
	}
	return tpl, append(watched, documents(tpl, map[*stencil.Template]bool{})...), nil
}

// documentConfig configures a single-document render on top of the
// --config file. A path naming an existing file is used as is; anything
// else is resolved against --dir and --ext, where the flags win over the
// file only when given.
func (o *renderOptions) documentConfig(src document.Source) (*config.Config, error) {
	cfg := config.Empty()
	if o.options != "" {
		base, err := config.FromFile(o.options)
		if err != nil {
			return nil, err
		}
		cfg = base
	}
	cfg.Set(stencil.OptionPath, o.input)
	if src.Exists(o.input) {
		cfg.Delete(stencil.OptionDirectory)
		cfg.Delete(stencil.OptionExtension)
		return cfg, nil
	}
	if o.dir != "" || !cfg.Has(stencil.OptionDirectory) {
		cfg.Set(stencil.OptionDirectory, o.dir)
	}
	if !cfg.Has(stencil.OptionExtension) {
		cfg.Set(stencil.OptionExtension, o.ext)
	}
	return cfg, nil
}

// identifierFor derives a template identifier from a document name.
func identifierFor(name string) string {
	base := filepath.Base(name)
	if i := strings.IndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return base
}

// documents lists the resolved documents of a template tree.
func documents(t *stencil.Template, seen map[*stencil.Template]bool) []string {
	if seen[t] {
		return nil
	}
	seen[t] = true
	var out []string
	if name, err := t.Document(); err == nil {
		out = append(out, name)
	}
	for _, child := range t.Children() {
		out = append(out, documents(child, seen)...)
	}
	return out
}

// watchLoop re-renders whenever a watched file changes.
func (o *renderOptions) watchLoop(ctx context.Context, watched []string) error {
	if len(watched) == 0 {
		return errors.New("nothing to watch")
	}
	w, err := document.NewWatcher(watched, document.WithWatchLogger(o.logger))
	if err != nil {
		return err
	}
	o.logger.Info("watching for changes", slog.Int("files", len(watched)))

	return w.Run(ctx, func(changed []string) {
		o.logger.Info("change detected, re-rendering", slog.Any("files", changed))
		if _, err := o.run(ctx); err != nil {
			exitCode(o.logger, err)
		}
	})
}

// exitCode logs err and maps it to a process exit code.
func exitCode(logger *slog.Logger, err error) int {
	switch stencil.Categorize(err) {
	case stencil.CategoryIgnored:
		return 0
	case stencil.CategoryContained:
		logger.Warn("render completed with errors", slog.String("error", err.Error()))
		return 0
	default:
		logger.Error("render failed", slog.String("error", err.Error()))
		return 1
	}
}
