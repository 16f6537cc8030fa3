package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/peopledex/peopledex/internal/config"
	"github.com/peopledex/peopledex/internal/index"
	"github.com/peopledex/peopledex/internal/mentions"
	"github.com/peopledex/peopledex/internal/parser"
	"github.com/peopledex/peopledex/internal/person"
	"github.com/peopledex/peopledex/internal/scanner"
	"github.com/peopledex/peopledex/internal/telemetry"
	"github.com/peopledex/peopledex/internal/vault"
)

// app wires the full component graph for one CLI invocation: store, parser,
// registry, index, scanner, and mention counter, all constructed from the
// loaded configuration.
type app struct {
	cfg      *config.Config
	store    vault.Store
	registry *vault.Registry
	index    *index.Index
	scanner  *scanner.Scanner
	counter  *mentions.Counter
	metrics  *telemetry.ScanMetrics
	records  []*person.Record
}

// newApp loads configuration, opens the vault, parses every definition
// document and builds the search indexes.
func newApp(ctx context.Context) (*app, error) {
	dir := vaultFlag
	if dir == "" {
		dir = "."
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}
	if vaultFlag != "" {
		cfg.Vault.Path = vaultFlag
	}

	store, err := vault.NewDirStore(cfg.Vault.Path)
	if err != nil {
		return nil, err
	}

	dividers := parser.DividerConfig{
		Dash:       cfg.Parser.DashEnabled(),
		Underscore: cfg.Parser.UnderscoreEnabled(),
	}
	registry := vault.NewRegistry(store, parser.New(dividers))

	start := time.Now()
	records, err := registry.LoadPeople(ctx)
	if err != nil {
		return nil, err
	}

	idx, err := index.New(cfg.Index.CacheSize)
	if err != nil {
		return nil, err
	}
	idx.BuildIndexes(records)

	metrics := telemetry.NewScanMetrics(1000)
	lineScanner, err := scanner.New(idx, scanner.Options{
		Thresholds: scanner.Thresholds{
			ShortMax:  cfg.Scanner.ShortMax,
			MediumMax: cfg.Scanner.MediumMax,
		},
		CacheSize: cfg.Scanner.CacheSize,
		Metrics:   metrics,
	})
	if err != nil {
		return nil, err
	}

	queueDelay, err := cfg.QueueDelay()
	if err != nil {
		return nil, err
	}
	counter := mentions.NewCounter(store, lineScanner, mentions.Options{
		BatchSize:     cfg.Mentions.BatchSize,
		QueueDelay:    queueDelay,
		QueueCapacity: cfg.Mentions.QueueCapacity,
	})

	slog.Info("vault loaded",
		slog.String("path", cfg.Vault.Path),
		slog.Int("people", len(records)),
		slog.Duration("duration", time.Since(start)))

	return &app{
		cfg:      cfg,
		store:    store,
		registry: registry,
		index:    idx,
		scanner:  lineScanner,
		counter:  counter,
		metrics:  metrics,
		records:  records,
	}, nil
}
