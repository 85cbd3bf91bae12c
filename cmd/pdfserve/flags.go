package main

import (
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// serveFlags holds the command-line settings for the server. Anything
// left at its zero value defers to the config file, the environment, or
// the built-in defaults, in that order.
type serveFlags struct {
	addr        string
	config      string
	storageDir  string
	templates   string
	workers     int
	verbose     bool
	showVersion bool
	showHelp    bool

	// set records which flags were explicitly passed, so unset flags
	// never clobber config-file or environment values.
	set map[string]bool
}

func newFlagSet(out io.Writer) (*flag.FlagSet, *serveFlags) {
	fs := flag.NewFlagSet("pdfserve", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.SortFlags = false

	f := &serveFlags{}
	fs.StringVar(&f.addr, "addr", "", "listen address (default :8080)")
	fs.StringVarP(&f.config, "config", "c", "", "path to YAML config file")
	fs.StringVar(&f.storageDir, "storage-dir", "", "directory for stored PDF artifacts")
	fs.StringVar(&f.templates, "templates", "", "directory with HTML templates (default: embedded)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "render worker pool size (default: auto)")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "enable debug logging")
	fs.BoolVar(&f.showVersion, "version", false, "print version and exit")
	fs.BoolVarP(&f.showHelp, "help", "h", false, "show this help")

	fs.Usage = func() {
		fmt.Fprintf(out, "Usage: pdfserve [flags]\n\nRender HTML templates to PDF over HTTP.\n\nFlags:\n%s", fs.FlagUsages())
	}

	return fs, f
}

// parseFlags parses args (excluding the program name).
func parseFlags(args []string, out io.Writer) (*serveFlags, error) {
	fs, f := newFlagSet(out)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	f.set = make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })

	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}
	return f, nil
}
