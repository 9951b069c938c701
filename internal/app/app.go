// internal/app/app.go
package app

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"time"

	"webblast/internal/blast"
	"webblast/internal/cli"
	"webblast/internal/config"
	"webblast/internal/fasta"
	"webblast/internal/report"
	"webblast/internal/store"
	"webblast/internal/version"
)

// Exit codes: 0 success, 1 pipeline failure, 2 usage error, 130 interrupted.

// RunContext runs the full submit→poll→fetch→parse→persist pipeline.
func RunContext(parent context.Context, argv []string, stdout, stderr io.Writer) int {
	fs := cli.NewFlagSet("webblast")
	fs.SetOutput(io.Discard)

	if len(argv) == 0 {
		// Register flags so Usage can print them.
		_, _ = cli.ParseArgs(fs, []string{"-h"})
		fs.SetOutput(stdout)
		fs.Usage()
		return 0
	}

	opts, err := cli.ParseArgs(fs, argv)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fs.SetOutput(stdout)
			fs.Usage()
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 2
	}
	if opts.Version {
		fmt.Fprintf(stdout, "webblast version %s\n", version.Version)
		return 0
	}

	logger := newLogger(stderr, opts.LogLevel)

	cfg := config.Default()
	if opts.ConfigFile != "" {
		cfg, err = config.Load(opts.ConfigFile)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 2
		}
	}
	applyFlags(cfg, opts)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	return run(parent, cfg, opts, logger, stdout)
}

// Run is RunContext with a background context, for tests and callers that
// handle signals themselves.
func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}

func run(ctx context.Context, cfg *config.Config, opts cli.Options, logger *slog.Logger, stdout io.Writer) int {
	started := time.Now()
	client := blast.NewClient(cfg.Endpoint, logger)

	rid := opts.RID
	if rid == "" {
		q, err := fasta.Load(opts.FastaFile)
		if err != nil {
			logger.Error("could not read query file", "error", err)
			return 2
		}
		logger.Info("submitting search",
			"program", cfg.Program, "database", cfg.Database,
			"file", opts.FastaFile, "records", len(q.IDs))

		sub, err := client.Submit(ctx, cfg.Program, cfg.Database, q.Raw)
		if err != nil {
			if interrupted(ctx, err) {
				return 130
			}
			if errors.Is(err, blast.ErrNoRID) {
				logger.Error("submission returned no RID; please try the search again", "error", err)
			} else {
				logger.Error("submission failed", "error", err)
			}
			return 1
		}
		rid = sub.RID

		// The provider's completion estimate is only a hint; sleep at
		// most the configured cap before the first status check.
		if naptime := min(sub.RTOE, cfg.Poll.MaxRTOESleep()); naptime > 0 {
			logger.Info("sleeping until estimated completion", "rid", rid, "duration", naptime)
			if err := sleepCtx(ctx, naptime); err != nil {
				return 130
			}
		}
	}

	poller := &blast.Poller{
		Checker:  client,
		MaxDelay: cfg.Poll.MaxDelay(),
		MaxWait:  pollBudget(cfg, opts),
		Logger:   logger,
	}
	status, err := poller.Wait(ctx, rid)
	if err != nil {
		if interrupted(ctx, err) {
			return 130
		}
		if errors.Is(err, blast.ErrPollTimeout) {
			logger.Error("gave up waiting for the search; retry later with --rid",
				"rid", rid, "max_wait", pollBudget(cfg, opts))
		} else {
			logger.Error("status check failed", "rid", rid, "error", err)
		}
		return 1
	}
	switch status {
	case blast.StatusReady:
		logger.Info("search complete, retrieving results", "rid", rid)
	case blast.StatusFailed:
		logger.Error("search failed; report the error at https://support.nlm.nih.gov/support/create-case/", "rid", rid)
		return 1
	default: // UNKNOWN
		logger.Error("search expired or was not found; submit a new search", "rid", rid)
		return 1
	}

	body, err := client.FetchReport(ctx, rid)
	if err != nil {
		if interrupted(ctx, err) {
			return 130
		}
		logger.Error("could not fetch results", "rid", rid, "error", err)
		return 1
	}
	recs, err := report.Parse(bytes.NewReader(body))
	if err != nil {
		logger.Error("could not parse the result report", "rid", rid, "error", err)
		return 1
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		logger.Error("could not open the results database", "db", cfg.DBPath, "error", err)
		return 1
	}
	defer st.Close()
	if err := st.EnsureSchema(ctx); err != nil {
		logger.Error("could not initialize the results database", "db", cfg.DBPath, "error", err)
		return 1
	}
	if err := st.InsertAll(ctx, recs); err != nil {
		logger.Error("could not insert results", "db", cfg.DBPath, "error", err)
		return 1
	}

	runRow := store.Run{
		ID:         store.NewRunID(),
		RID:        rid,
		Program:    cfg.Program,
		SearchDB:   cfg.Database,
		QueryCount: len(recs.Queries),
		HitCount:   len(recs.Hits),
		HSPCount:   len(recs.HSPs),
		Status:     "loaded",
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	if err := st.RecordRun(ctx, runRow); err != nil {
		logger.Warn("could not record run bookkeeping", "error", err)
	}

	fmt.Fprintf(stdout, "Loaded %d queries, %d hits, %d HSPs into %s\n",
		len(recs.Queries), len(recs.Hits), len(recs.HSPs), cfg.DBPath)
	return 0
}

// applyFlags lets command-line flags override config-file values.
func applyFlags(cfg *config.Config, opts cli.Options) {
	if opts.Endpoint != "" {
		cfg.Endpoint = opts.Endpoint
	}
	if opts.Database != "" {
		cfg.Database = opts.Database
	}
	if opts.Program != "" {
		cfg.Program = opts.Program
	}
	if opts.DBPath != "" {
		cfg.DBPath = opts.DBPath
	}
}

func pollBudget(cfg *config.Config, opts cli.Options) time.Duration {
	if opts.MaxWait > 0 {
		return opts.MaxWait
	}
	return cfg.Poll.MaxWait()
}

func interrupted(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.Canceled)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var lv slog.Level
	switch level {
	case "debug":
		lv = slog.LevelDebug
	case "warn":
		lv = slog.LevelWarn
	case "error":
		lv = slog.LevelError
	default:
		lv = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lv}))
}
