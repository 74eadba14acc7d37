package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/mcpgate/mcpgate/internal/cli/ui"
	"github.com/mcpgate/mcpgate/internal/core/config"
	"github.com/mcpgate/mcpgate/internal/core/launcher"
	"github.com/mcpgate/mcpgate/internal/core/logger"
	"github.com/mcpgate/mcpgate/internal/core/session"
	"github.com/mcpgate/mcpgate/internal/gateway"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gateway",
	Long:  "Start the streaming gateway that spawns one tool server process per connection",
	RunE:  runServe,
}

var (
	serveConfigPath string
	serveHost       string
	servePort       int
)

func init() {
	serveCmd.Flags().StringVarP(&serveConfigPath, "config", "c", "mcpgate.yaml", "Path to the configuration file")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Override the listen host")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Override the listen port")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(serveConfigPath)
	if err != nil {
		return err
	}
	if serveHost != "" {
		cfg.Listen.Host = serveHost
	}
	if servePort != 0 {
		cfg.Listen.Port = servePort
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}

	// A second gateway on the same config would fight over the port
	// and confuse operators about which process owns which session.
	lock := flock.New(serveConfigPath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock file: %w", err)
	}
	if !locked {
		return fmt.Errorf("another gateway is already running with %s", serveConfigPath)
	}
	defer func() { _ = lock.Unlock() }()

	logStartupSummary(log, cfg)

	registry := session.NewRegistry(cfg.Limits.MaxSessions)
	launch := launcher.New(launcher.Spec{
		Command:  cfg.Server.Command,
		Args:     cfg.Server.Args,
		Env:      cfg.Server.Env,
		TokenVar: cfg.Server.TokenVar,
	}, log)

	server := gateway.New(cfg, registry, launch, log)
	if err := server.Start(); err != nil {
		return err
	}

	// Hot-reload the tool server spec; new sessions pick it up, the
	// listen address and limits need a restart.
	watcher, err := config.NewWatcher(serveConfigPath, log, func(next *config.Config) {
		launch.SetSpec(launcher.Spec{
			Command:  next.Server.Command,
			Args:     next.Server.Args,
			Env:      next.Server.Env,
			TokenVar: next.Server.TokenVar,
		})
		log.Info("tool server spec reloaded", "command", next.Server.Command)
	})
	if err != nil {
		ui.Warning("Config watching disabled: %v", err)
	} else {
		defer func() { _ = watcher.Close() }()
	}

	ui.Info("Gateway listening on %s", server.Addr())
	ui.Info("Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	ui.Info("Shutting down gateway...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.GracePeriod.Std()+5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	ui.Success("Gateway stopped")
	return nil
}

func newLogger(cfg *config.Config) (logger.Logger, error) {
	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return logger.New(
		logger.WithLevel(level),
		logger.WithFormat(logger.Format(cfg.Log.Format)),
		logger.WithOutput(os.Stderr),
	), nil
}

// logStartupSummary records what each child will inherit, with values
// truncated so secrets placed in the base environment stay out of the
// logs.
func logStartupSummary(log logger.Logger, cfg *config.Config) {
	log.Info("gateway configuration",
		"listen", cfg.Addr(),
		"command", cfg.Server.Command,
		"args", cfg.Server.Args,
		"token_var", cfg.Server.TokenVar,
		"max_sessions", cfg.Limits.MaxSessions,
		"grace_period", cfg.Shutdown.GracePeriod.Std(),
	)

	keys := make([]string, 0, len(cfg.Server.Env))
	for key := range cfg.Server.Env {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		log.Info("base environment", "key", key, "value", logger.Redact(cfg.Server.Env[key]))
	}
}
