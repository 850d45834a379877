// Package main provides the stencil CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/randalmurphal/stencil/pkg/stencil/filter"
)

var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "render":
		os.Exit(renderCmd(args))
	case "filters":
		for _, name := range filter.Names() {
			spec, _ := filter.Lookup(name)
			fmt.Printf("%-10s %-22s priority %d\n", name, spec.Event, spec.Priority)
		}
	case "version":
		fmt.Printf("stencil %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(2)
	}
}

func printUsage() {
	fmt.Println(`Stencil - template rendering

Usage:
  stencil <command> [options]

Commands:
  render    Render a manifest (.yaml) or a single document
  filters   List the filters available to --filter and manifests
  version   Print version information
  help      Show this help message

Examples:
  stencil render site.yaml -o public/index.html
  stencil render --dir views --var title=Home --filter escape,minify page
  stencil render --watch site.yaml

Run 'stencil <command> --help' for more information on a command.`)
}

// newLogger picks a text handler for terminals and JSON otherwise.
func newLogger(format string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == "auto" {
		format = "json"
		if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
			format = "text"
		}
	}
	if format == "text" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

// multiFlag collects a repeatable flag. Values may also be comma separated.
type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ",") }

func (m *multiFlag) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*m = append(*m, part)
		}
	}
	return nil
}

// varFlag collects repeatable name=value pairs in order.
type varFlag struct {
	names  []string
	values map[string]string
}

func (v *varFlag) String() string { return strings.Join(v.names, ",") }

func (v *varFlag) Set(s string) error {
	name, value, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return fmt.Errorf("expected name=value, got %q", s)
	}
	if v.values == nil {
		v.values = make(map[string]string)
	}
	if _, seen := v.values[name]; !seen {
		v.names = append(v.names, name)
	}
	v.values[name] = value
	return nil
}
