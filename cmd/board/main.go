package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/uhyunpark/orderboard/params"
	"github.com/uhyunpark/orderboard/pkg/api"
	"github.com/uhyunpark/orderboard/pkg/app/market"
	"github.com/uhyunpark/orderboard/pkg/feed"
	"github.com/uhyunpark/orderboard/pkg/storage"
	"github.com/uhyunpark/orderboard/pkg/util"
)

func main() {
	// Load config from .env file and environment variables
	cfg := params.LoadFromEnv("")

	logger, err := util.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	sugar := logger.Sugar()
	sugar.Infow("logger_initialized", "log_file", cfg.Log.File, "level", cfg.Log.Level)

	err = run(cfg, sugar)
	if err != nil {
		sugar.Errorw("board_failed", "err", err)
	}
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

// run owns every resource it opens; deferred closes always execute.
func run(cfg params.Config, sugar *zap.SugaredLogger) error {
	var opts []market.Option

	// ---- Audit journal (optional) ----
	var journal api.JournalReader
	if cfg.Journal.Path != "" {
		j, err := storage.NewPebbleJournal(cfg.Journal.Path)
		if err != nil {
			return fmt.Errorf("open journal %s: %w", cfg.Journal.Path, err)
		}
		defer j.Close()

		last, err := j.LastSeq()
		if err != nil {
			return fmt.Errorf("read journal: %w", err)
		}
		// the board always starts empty; only numbering carries over
		sugar.Infow("journal_opened", "path", cfg.Journal.Path, "last_seq", last)

		opts = append(opts, market.WithJournal(j), market.WithStartSeq(last))
		journal = j
	} else {
		sugar.Info("journal_disabled")
	}

	// ---- Summary feed (optional) ----
	pub, err := feed.New(cfg.Feed)
	if err != nil {
		return fmt.Errorf("feed %s: %w", cfg.Feed.Driver, err)
	}
	if pub != nil {
		defer pub.Close()
		opts = append(opts, market.WithPublisher(pub))
		sugar.Infow("feed_enabled", "driver", cfg.Feed.Driver, "brokers", cfg.Feed.Brokers, "topic", cfg.Feed.Topic)
	}

	m := market.New(sugar.Named("market"), opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- API Server ----
	apiServer := api.NewServer(m, journal, cfg.API.CORSOrigins, sugar.Named("api"))
	m.OnChange = apiServer.BroadcastSummary

	errCh := make(chan error, 1)
	go func() {
		errCh <- apiServer.Start(ctx, cfg.API.Addr)
	}()

	select {
	case <-ctx.Done():
		sugar.Info("shutdown_requested")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	}

	select {
	case <-errCh:
	case <-time.After(10 * time.Second):
		sugar.Warn("api_server_shutdown_timeout")
	}
	sugar.Infow("board_stopped", "orders", m.Len())
	return nil
}
