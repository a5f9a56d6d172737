package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"tokenledger/config"
	"tokenledger/core"
	"tokenledger/observability/logging"
	"tokenledger/storage"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	env := strings.TrimSpace(os.Getenv("LEDGER_ENV"))
	if env == "" {
		env = cfg.Environment
	}
	var logOpts []logging.Option
	if cfg.LogPath != "" {
		logOpts = append(logOpts, logging.WithRotatingFile(cfg.LogPath))
	}
	logger := logging.Setup("ledgerd", env, logOpts...)

	runID := uuid.NewString()
	logger.Info("Starting ledger daemon",
		slog.String("run_id", runID),
		slog.String("data_dir", cfg.DataDir),
		slog.String("listen", cfg.ListenAddress))

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		panic(fmt.Sprintf("Failed to open database: %v", err))
	}
	defer db.Close()

	params, err := cfg.LedgerParams()
	if err != nil {
		logger.Error("Invalid ledger parameters", slog.Any("error", err))
		os.Exit(1)
	}
	ledger, err := core.NewLedger(db, params)
	if err != nil {
		logger.Error("Failed to open ledger", slog.Any("error", err))
		os.Exit(1)
	}

	allocations, err := cfg.GenesisAllocations()
	if err != nil {
		logger.Error("Invalid genesis allocations", slog.Any("error", err))
		os.Exit(1)
	}
	if len(allocations) > 0 {
		if err := ledger.ApplyGenesis(allocations); err != nil {
			logger.Error("Failed to apply genesis allocations", slog.Any("error", err))
			os.Exit(1)
		}
	}

	supply, err := ledger.TotalSupply()
	if err != nil {
		logger.Error("Failed to read supply", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Ledger ready",
		slog.String("token", ledger.Symbol()),
		slog.Uint64("log_length", ledger.LogLength()),
		slog.String("total_supply", supply.String()))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	server := &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("Shutting down", slog.String("signal", sig.String()))
	case err := <-errCh:
		logger.Error("Telemetry server failed", slog.Any("error", err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Telemetry server shutdown failed", slog.Any("error", err))
	}
	logger.Info("Ledger daemon stopped", slog.String("run_id", runID))
}
