package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"marketd/config"
	"marketd/core/events"
	"marketd/core/state"
	coretypes "marketd/core/types"
	"marketd/native/market"
	"marketd/native/token"
	"marketd/observability/logging"
	"marketd/rpc"
	"marketd/storage"
)

func main() {
	configPath := flag.String("config", "./config.toml", "path to the marketd config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	var sink io.Writer = os.Stdout
	if cfg.LogFile != "" {
		sink = io.MultiWriter(os.Stdout, logging.RotatingWriter(cfg.LogFile))
	}
	logger := logging.SetupWriter("marketd", cfg.Environment, sink)

	authority, err := cfg.Authority()
	if err != nil {
		logger.Error("invalid authority", "error", err)
		os.Exit(1)
	}

	var db storage.Database
	if cfg.DataDir == "" {
		db = storage.NewMemDB()
	} else {
		ldb, err := storage.NewLevelDB(filepath.Join(cfg.DataDir, "market"))
		if err != nil {
			logger.Error("open database", "error", err)
			os.Exit(1)
		}
		db = ldb
	}
	defer db.Close()

	tokenLedger := token.NewNativeLedger()
	genesis, err := cfg.ParseGenesisBalances()
	if err != nil {
		logger.Error("invalid genesis balances", "error", err)
		os.Exit(1)
	}
	for addr, amount := range genesis {
		if err := tokenLedger.Mint(addr, amount); err != nil {
			logger.Error("seed genesis balance", "error", err)
			os.Exit(1)
		}
	}

	manager := state.NewManager(db)
	ledger := market.NewLedger(manager, tokenLedger, market.ModuleVaultAddress())
	engine := market.NewEngine(ledger)
	engine.SetState(manager)
	engine.SetAuthority(authority)
	engine.SetEmitter(eventLogger{log: logger})

	server := rpc.NewServer(engine, logger)
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(cfg.RPCAddress)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		logger.Error("rpc server stopped", "error", err)
		os.Exit(1)
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("shutdown", "error", err)
		}
		<-errCh
	}
}

// eventLogger forwards engine notifications to the structured log. Events are
// informational; correctness never depends on them.
type eventLogger struct {
	log *slog.Logger
}

func (l eventLogger) Emit(evt events.Event) {
	payload, ok := evt.(interface{ Event() *coretypes.Event })
	if !ok || payload.Event() == nil {
		l.log.Info("market event", "type", evt.EventType())
		return
	}
	l.log.Info("market event", "type", evt.EventType(), "attributes", payload.Event().Attributes)
}
