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
	"syscall"
	"time"

	"github.com/bobmcallan/valuescout/internal/app"
	"github.com/bobmcallan/valuescout/internal/clients/finviz"
	"github.com/bobmcallan/valuescout/internal/common"
	"github.com/bobmcallan/valuescout/internal/interfaces"
	"github.com/bobmcallan/valuescout/internal/models"
	"github.com/bobmcallan/valuescout/internal/services/screener"
	"github.com/bobmcallan/valuescout/internal/services/watchlist"
	"github.com/bobmcallan/valuescout/internal/storage"
)

type command func(a *app.App, args []string, out io.Writer) error

var commands = map[string]command{
	"scan":      cmdScan,
	"history":   cmdHistory,
	"show":      cmdShow,
	"watch":     cmdWatch,
	"portfolio": cmdPortfolio,
	"compare":   cmdCompare,
	"presets":   cmdPresets,
	"schedule":  cmdSchedule,
}

// filterFlags collects repeated --filter "Name=Option" values.
type filterFlags models.FilterSet

func (f filterFlags) String() string {
	return models.FilterSet(f).Key()
}

func (f filterFlags) Set(v string) error {
	name, option, ok := strings.Cut(v, "=")
	name, option = strings.TrimSpace(name), strings.TrimSpace(option)
	if !ok || name == "" || option == "" {
		return fmt.Errorf("filter must be Name=Option, got %q", v)
	}
	f[name] = option
	return nil
}

// parseArgs parses flags that may appear before, between or after
// positional arguments, returning the positionals in order.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

func cmdScan(a *app.App, args []string, out io.Writer) error {
	fs := newFlagSet("scan", out)
	preset := fs.String("preset", "", "strategy preset (\"custom\" for filters only)")
	filters := filterFlags{}
	fs.Var(filters, "filter", "screener filter Name=Option; repeatable; Option \"Any\" drops a preset filter")
	limit := fs.Int("cap", 0, "max candidates to enrich (default from config)")
	sortBy := fs.String("sort", "", "sort key: "+strings.Join(screener.SortKeys, ", "))
	maxAge := fs.Duration("max-age", 0, "reuse a recorded scan with the same filters younger than this")
	export := fs.Bool("export", false, "write results to CSV in the export directory")
	exportPath := fs.String("export-path", "", "write results to this CSV file")
	add := fs.Bool("add", false, "add every result to the watchlist")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}

	ctx := context.Background()
	rec, err := a.ScreenerService.Scan(ctx, interfaces.ScanOptions{
		Preset:  *preset,
		Filters: models.FilterSet(filters),
		Cap:     *limit,
		SortBy:  *sortBy,
		MaxAge:  *maxAge,
	})
	if errors.Is(err, screener.ErrNoCandidates) {
		fmt.Fprintf(out, "No candidates found: %v\n", err)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprint(out, formatScan(rec))

	if *export || *exportPath != "" {
		path, err := storage.ExportScan(a.Storage.ExportDir(), *exportPath, rec)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\nExported to %s\n", path)
	}

	if *add {
		_, n, err := a.WatchlistService.AddRecords(ctx, rec.Results)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\nAdded %d ticker(s) to the watchlist\n", n)
	}
	return nil
}

func cmdHistory(a *app.App, args []string, out io.Writer) error {
	if len(args) > 0 && args[0] == "delete" {
		return cmdHistoryDelete(a, args[1:], out)
	}

	fs := newFlagSet("history", out)
	limit := fs.Int("limit", 20, "max scans to list")
	preset := fs.String("preset", "", "only scans of this preset")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}

	records, err := a.ScreenerService.ListScans(context.Background(), interfaces.ScanListOptions{Preset: *preset, Limit: *limit})
	if err != nil {
		return err
	}
	fmt.Fprint(out, formatHistory(records))
	return nil
}

func cmdHistoryDelete(a *app.App, ids []string, out io.Writer) error {
	if len(ids) == 0 {
		return fmt.Errorf("usage: history delete <scan-id>...")
	}
	for _, id := range ids {
		if err := a.ScreenerService.DeleteScan(context.Background(), id); err != nil {
			return err
		}
		fmt.Fprintf(out, "Deleted %s\n", id)
	}
	return nil
}

func cmdShow(a *app.App, args []string, out io.Writer) error {
	fs := newFlagSet("show", out)
	sortBy := fs.String("sort", "", "re-sort for display: "+strings.Join(screener.SortKeys, ", "))
	exportPath := fs.String("export-path", "", "also write the scan to this CSV file")
	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return fmt.Errorf("usage: show <scan-id>")
	}
	if !screener.ValidSortKey(*sortBy) {
		return fmt.Errorf("%w: '%s'", screener.ErrInvalidSortKey, *sortBy)
	}

	rec, err := a.ScreenerService.GetScan(context.Background(), positional[0])
	if err != nil {
		return err
	}
	if *sortBy != "" {
		screener.SortRecords(rec.Results, *sortBy)
		rec.SortBy = *sortBy
	}
	fmt.Fprint(out, formatScan(rec))

	if *exportPath != "" {
		path, err := storage.ExportScan(a.Storage.ExportDir(), *exportPath, rec)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\nExported to %s\n", path)
	}
	return nil
}

func cmdWatch(a *app.App, args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: watch add <TICKER>... | watch remove <TICKER>... | watch list [--plain]")
	}
	ctx := context.Background()
	sub, args := args[0], args[1:]

	switch sub {
	case "list":
		fs := newFlagSet("watch list", out)
		plain := fs.Bool("plain", false, "print tickers only, one per line")
		if _, err := parseArgs(fs, args); err != nil {
			return err
		}
		wl, err := a.WatchlistService.GetWatchlist(ctx)
		if err != nil {
			return err
		}
		if *plain {
			for _, t := range wl.Tickers() {
				fmt.Fprintln(out, t)
			}
			return nil
		}
		fmt.Fprint(out, formatWatchlist(wl, a.Storage.WatchlistStorage().Location()))
		return nil

	case "add":
		fs := newFlagSet("watch add", out)
		price := fs.Float64("price", 0, "price added (default: live price)")
		tickers, err := parseArgs(fs, args)
		if err != nil {
			return err
		}
		if len(tickers) == 0 {
			return fmt.Errorf("usage: watch add [--price N] <TICKER>...")
		}
		for _, t := range tickers {
			_, added, err := a.WatchlistService.AddItem(ctx, t, *price)
			if err != nil {
				return err
			}
			if added {
				fmt.Fprintf(out, "Added %s\n", models.NormalizeTicker(t))
			} else {
				fmt.Fprintf(out, "%s is already in the watchlist\n", models.NormalizeTicker(t))
			}
		}
		return nil

	case "remove", "rm":
		if len(args) == 0 {
			return fmt.Errorf("usage: watch remove <TICKER>...")
		}
		for _, t := range args {
			_, err := a.WatchlistService.RemoveItem(ctx, t)
			switch {
			case errors.Is(err, watchlist.ErrTickerNotFound):
				fmt.Fprintf(out, "%s is not in the watchlist\n", models.NormalizeTicker(t))
			case err != nil:
				return err
			default:
				fmt.Fprintf(out, "Removed %s\n", models.NormalizeTicker(t))
			}
		}
		return nil
	}
	return fmt.Errorf("unknown watch command %q", sub)
}

func cmdPortfolio(a *app.App, args []string, out io.Writer) error {
	rows, err := a.WatchlistService.Portfolio(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprint(out, formatPortfolio(rows))
	return nil
}

func cmdCompare(a *app.App, args []string, out io.Writer) error {
	fs := newFlagSet("compare", out)
	chartPath := fs.String("chart", "", "write a one-year relative price chart PNG here")
	tickers, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(tickers) != 2 {
		return fmt.Errorf("usage: compare <TICKER_A> <TICKER_B> [--chart file.png]")
	}

	ctx := context.Background()
	cmp, err := a.CompareService.Compare(ctx, tickers[0], tickers[1])
	if err != nil {
		return err
	}
	fmt.Fprint(out, formatComparison(cmp))

	if *chartPath != "" {
		png, err := a.CompareService.RenderPriceChart(ctx, tickers[0], tickers[1])
		if err != nil {
			return err
		}
		if err := os.WriteFile(*chartPath, png, 0644); err != nil {
			return fmt.Errorf("failed to write chart: %w", err)
		}
		fmt.Fprintf(out, "\nChart written to %s\n", *chartPath)
	}
	return nil
}

func cmdPresets(a *app.App, _ []string, out io.Writer) error {
	fmt.Fprint(out, formatPresets(a.ScreenerService.Presets()))
	return nil
}

// cmdFilters lists screener filter names, or the options of one filter.
func cmdFilters(args []string, out io.Writer) error {
	if len(args) == 0 {
		fmt.Fprintln(out, "# Screener Filters")
		fmt.Fprintln(out)
		for _, name := range finviz.FilterNames() {
			fmt.Fprintf(out, "- %s\n", name)
		}
		return nil
	}

	name := strings.Join(args, " ")
	labels := finviz.FilterLabels(name)
	if len(labels) == 0 {
		return fmt.Errorf("%w: %q", finviz.ErrUnknownFilter, name)
	}
	fmt.Fprintf(out, "# %s\n\n", name)
	for _, l := range labels {
		fmt.Fprintf(out, "- %s\n", l)
	}
	return nil
}

func cmdSchedule(a *app.App, args []string, out io.Writer) error {
	fs := newFlagSet("schedule", out)
	expr := fs.String("cron", a.Config.Schedule.Cron, "cron expression (5 fields or @descriptor)")
	preset := fs.String("preset", a.Config.Schedule.Preset, "preset to run")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}
	a.Config.Schedule.Cron = *expr
	a.Config.Schedule.Preset = *preset

	common.PrintBanner(out, a.Config, a.StartupTime, a.Logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := app.NewScheduler(a.ScreenerService, *preset, a.Logger)
	if err := s.Start(ctx, *expr); err != nil {
		return err
	}

	<-ctx.Done()

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(30 * time.Second):
		a.Logger.Warn().Msg("Timed out waiting for a running scan")
	}

	common.PrintShutdownBanner(out, a.Logger)
	return nil
}
