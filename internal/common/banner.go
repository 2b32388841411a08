package common

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ternarybob/banner"
)

// PrintBanner writes the startup banner for long-running modes (schedule).
func PrintBanner(w io.Writer, config *Config, startedAt time.Time, logger *Logger) {
	lineColor := banner.ColorCyan
	textColor := banner.ColorBold + banner.ColorWhite
	hr := lineColor + strings.Repeat("═", 60) + banner.ColorReset

	fmt.Fprintf(w, "\n%s\n\n", hr)
	fmt.Fprintf(w, "%s  VALUESCOUT  ·  hidden value stock screener%s\n\n", textColor, banner.ColorReset)
	fmt.Fprintf(w, "%s\n\n", hr)

	kvLines := [][2]string{
		{"Version", GetVersion()},
		{"Build", GetBuild()},
		{"Commit", GetGitCommit()},
		{"Environment", config.Environment},
		{"Preset", config.Schedule.Preset},
		{"Schedule", config.Schedule.Cron},
		{"Watchlist", config.Storage.WatchlistFile},
		{"History", config.Storage.HistoryPath},
		{"Started", startedAt.Format(time.RFC3339)},
	}
	for _, kv := range kvLines {
		fmt.Fprintf(w, "%s  %-14s %s%s\n", textColor, kv[0], kv[1], banner.ColorReset)
	}
	fmt.Fprintf(w, "\n%s\n\n", hr)

	logger.Info().
		Str("version", GetVersion()).
		Str("environment", config.Environment).
		Str("schedule", config.Schedule.Cron).
		Str("started", startedAt.Format(time.RFC3339)).
		Msg("Application started")
}

// PrintShutdownBanner writes the shutdown banner.
func PrintShutdownBanner(w io.Writer, logger *Logger) {
	hr := banner.ColorCyan + strings.Repeat("═", 42) + banner.ColorReset
	fmt.Fprintf(w, "\n%s\n%s  VALUESCOUT - SHUTTING DOWN%s\n%s\n\n", hr, banner.ColorBold+banner.ColorWhite, banner.ColorReset, hr)
	logger.Info().Msg("Application shutting down")
}
