package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"opendaoc/internal/metrics"
	"opendaoc/internal/population"
	"opendaoc/internal/registry"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type Fetcher interface {
	Fetch(ctx context.Context, url string) (population.Snapshot, error)
}

// Renderer returns nil when the snapshot has nothing to draw
type Renderer func(snapshot population.Snapshot) ([]byte, error)

// What one server produced. chart is nil when the server is empty or offline
type serverResult struct {
	entry    registry.Entry
	snapshot population.Snapshot
	chart    []byte
}

func (bot *Bot) online(ctx context.Context, parsed ParseResult) []Response {

	logger := log.With().Str("request", uuid.NewString()).Logger()

	// Take the servers to query up front, so changes to the
	// registry while we wait don't affect this command
	var entries []registry.Entry
	if parsed.name != "" {
		entry, ok := bot.registry.Get(parsed.name)
		if !ok {
			name := registry.Normalize(parsed.name)
			logger.Info().Msg(fmt.Sprintf("Server %s requested but not registered", name))
			suggestion, _ := bot.registry.Suggest(name)
			return ServerDoesNotExist(name, suggestion)
		}
		entries = []registry.Entry{entry}
	} else {
		entries = bot.registry.List()
	}
	logger.Info().Msg(fmt.Sprintf("Fetching population for %d servers", len(entries)))

	charts := make([]serverResult, 0, len(entries))
	for _, result := range bot.snapshots(ctx, logger, entries) {
		if result.chart != nil {
			charts = append(charts, result)
		}
	}

	if len(charts) == 0 {
		if parsed.name == "" {
			return AllServersOffline()
		}
		return ServerOffline(entries[0].Name)
	}
	return PopulationCharts(charts)
}

// Run the pipeline for every entry. Results keep the order of the entries.
// A failing server only affects its own result
func (bot *Bot) snapshots(ctx context.Context, logger zerolog.Logger, entries []registry.Entry) []serverResult {

	results := make([]serverResult, len(entries))
	var g errgroup.Group
	g.SetLimit(bot.concurrency)
	for i, entry := range entries {
		i, entry := i, entry
		g.Go(func() error {
			results[i] = bot.snapshot(ctx, logger, entry)
			return nil
		})
	}
	g.Wait()
	return results
}

func (bot *Bot) snapshot(ctx context.Context, logger zerolog.Logger, entry registry.Entry) serverResult {

	result := serverResult{entry: entry}
	start := time.Now()

	snapshot, err := bot.fetcher.Fetch(ctx, entry.URL)
	if err != nil {
		var parseErr *population.ParseError
		outcome := metrics.ResultFetchError
		if errors.As(err, &parseErr) {
			outcome = metrics.ResultParseError
		}
		bot.metrics.Fetch(entry.Name, outcome, time.Since(start))
		logger.Warn().Err(err).Str("server", entry.Name).Msg("Could not get population")
		return result
	}
	result.snapshot = snapshot

	if snapshot.Empty() {
		bot.metrics.Fetch(entry.Name, metrics.ResultEmpty, time.Since(start))
		logger.Info().Str("server", entry.Name).Msg("Server is empty")
		return result
	}
	bot.metrics.Fetch(entry.Name, metrics.ResultOK, time.Since(start))

	chart, err := bot.render(snapshot)
	if err != nil {
		logger.Error().Err(err).Str("server", entry.Name).Msg("Could not render chart")
		return result
	}
	if chart != nil {
		bot.metrics.ChartRendered()
	}
	result.chart = chart
	return result
}
