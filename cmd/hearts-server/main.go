package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/hearts/internal/hearts"
	"github.com/lox/hearts/internal/server"
)

var CLI struct {
	Config   string `short:"c" long:"config" default:"hearts-server.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" long:"addr" help:"Server address to bind to (overrides config)"`
	LogLevel string `short:"l" long:"log-level" help:"Log level (overrides config)"`
	EndScore int    `long:"end-score" help:"Score at which the game ends (overrides config)"`
	Seed     int64  `long:"seed" help:"Deterministic shuffle seed, 0 for entropy (overrides config)"`
}

func main() {
	kctx := kong.Parse(&CLI)

	cfg, err := server.LoadServerConfig(CLI.Config)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		kctx.Exit(1)
	}

	if CLI.LogLevel != "" {
		cfg.Server.LogLevel = CLI.LogLevel
	}
	if CLI.EndScore > 0 {
		cfg.Game.EndScore = CLI.EndScore
	}
	if CLI.Seed != 0 {
		cfg.Game.Seed = CLI.Seed
	}

	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		kctx.Exit(1)
	}

	// The -a flag takes the full host:port form and bypasses the
	// address/port pair in the config file
	addr := cfg.ListenAddress()
	if CLI.Addr != "" {
		addr = CLI.Addr
	}

	logger := log.New(os.Stderr)
	switch cfg.Server.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "info":
		logger.SetLevel(log.InfoLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	logger.Info("starting hearts server",
		"addr", addr,
		"endScore", cfg.Game.EndScore,
		"idleTimeout", cfg.IdleTimeout())

	manager := server.NewManager(
		hearts.Config{EndScore: cfg.Game.EndScore},
		cfg.IdleTimeout(),
		cfg.Game.Seed,
		quartz.NewReal(),
		logger,
	)
	srv := server.NewServer(addr, manager, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Start(ctx) })
	g.Go(func() error { return manager.RunReaper(ctx) })

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		logger.Error("server failed", "error", err)
		kctx.Exit(1)
	}
	logger.Info("server shut down")
}
