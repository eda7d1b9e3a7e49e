package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zakazai/tinysql/internal/engine"
	"github.com/zakazai/tinysql/internal/planner"
	"github.com/zakazai/tinysql/internal/server"
	"github.com/zakazai/tinysql/internal/storage"
	"github.com/zakazai/tinysql/internal/types"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg := storage.DefaultConfig()
	addr := flag.String("addr", ":8080", "listen address")
	flag.StringVar(&cfg.DataDir, "data", cfg.DataDir, "directory holding table files")
	flag.StringVar(&cfg.MirrorDir, "mirror", "", "directory for parquet mirrors (disabled when empty)")
	strict := flag.Bool("strict", false, "reject table files with malformed rows instead of nulling them")
	logLevel := flag.String("log-level", "info", "debug, info, warning, error or none")
	flag.Parse()

	level, err := types.ParseLogLevel(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := types.InitLogger(level, os.Stderr)
	cfg.Logger = logger
	if *strict {
		cfg.DecodeMode = storage.DecodeStrict
	}

	if err := serve(*addr, cfg, logger); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

func serve(addr string, cfg storage.Config, logger *types.Logger) error {
	persister, err := storage.NewPersister(cfg)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	var catalog planner.TableLister
	if l, ok := persister.(planner.TableLister); ok {
		catalog = l
	}
	exec := engine.New(persister, logger)
	api := server.New(exec, planner.NewPlanner(exec, catalog), logger)
	if m, ok := persister.(server.MirrorSource); ok {
		api.WithMirror(m)
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening on %s (data %s, mirror %q, %s decode)", addr, cfg.DataDir, cfg.MirrorDir, cfg.DecodeMode)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
