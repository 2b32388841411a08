package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/bobmcallan/valuescout/internal/app"
	"github.com/bobmcallan/valuescout/internal/common"
)

const usage = `valuescout - hidden value stock screener

Usage:
  valuescout [-config file] <command> [flags] [args]

Commands:
  scan        screen, enrich and display candidates
  history     list recorded scans, or delete them (history delete <id>...)
  show        re-display a recorded scan without refetching
  watch       manage the watchlist (add, remove, list)
  portfolio   watchlist with live prices and returns
  compare     score two tickers head to head
  presets     list strategy presets
  filters     list screener filters, or the options for one filter
  schedule    run the configured preset on its cron schedule
  version     print version information
`

// newApp is replaced in tests.
var newApp = app.NewApp

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run parses global flags and dispatches a subcommand. It returns the exit code.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("valuescout", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "config file (default: VALUESCOUT_CONFIG, then valuescout.toml)")
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	if err := fs.Parse(args); err != nil {
		return 2
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}
	name, cmdArgs := rest[0], rest[1:]

	// Commands that need no app.
	switch name {
	case "version":
		fmt.Fprintln(stdout, common.GetFullVersion())
		return 0
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return 0
	case "filters":
		return exitCode(stderr, cmdFilters(cmdArgs, stdout))
	}

	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", name, usage)
		return 2
	}

	a, err := newApp(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to initialize app: %v\n", err)
		return 1
	}
	defer a.Close()

	return exitCode(stderr, cmd(a, cmdArgs, stdout))
}

func exitCode(stderr io.Writer, err error) int {
	if err == nil {
		return 0
	}
	if err == flag.ErrHelp {
		return 0
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return 1
}
