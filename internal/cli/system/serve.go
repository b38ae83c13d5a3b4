package system

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ktrou69-commits/energy-coins/internal/backup"
	"github.com/ktrou69-commits/energy-coins/internal/cli"
	"github.com/ktrou69-commits/energy-coins/internal/config"
	"github.com/ktrou69-commits/energy-coins/internal/ledger"
	"github.com/ktrou69-commits/energy-coins/internal/logger"
	"github.com/ktrou69-commits/energy-coins/internal/notifier"
	"github.com/ktrou69-commits/energy-coins/internal/server"
)

// ServeCmd runs the HTTP API together with reminders and periodic backups
type ServeCmd struct {
	Addr        string `help:"Listen address. Overrides the config file."`
	NoReminders bool   `help:"Do not schedule reminders."`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	cfg := ctx.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	addr := cfg.Listen
	if c.Addr != "" {
		addr = c.Addr
	}

	store, err := ctx.Ledger()
	if err != nil {
		return err
	}
	srv := server.New(store, server.Config{
		Addr:           addr,
		AllowedOrigins: cfg.CORSOrigins,
	})

	var reminders interface{ Stop(context.Context) }
	if !c.NoReminders {
		r, err := newReminders(ctx, notifier.New())
		if err != nil {
			return err
		}
		if err := r.Start(); err != nil {
			return err
		}
		// sleep settings may change over the API
		unsub := store.Subscribe(func(ch ledger.Change) {
			if ch.Kind != ledger.ChangeSettingsUpdated {
				return
			}
			if err := r.Reschedule(); err != nil {
				logger.Warn("Failed to reschedule reminders", "error", err)
			}
		})
		defer unsub()
		reminders = r
	}

	backups := cron.New(cron.WithLocation(ctx.Location()))
	if backup.Supported(ctx.Provider.GetConfigPath()) && cfg.BackupInterval != "" {
		if _, err := backups.AddFunc(cfg.BackupInterval, func() {
			if err := store.Flush(); err != nil {
				logger.Warn("Flush before backup failed", "error", err)
			}
			ctx.PerformAutomaticBackup()
		}); err != nil {
			return fmt.Errorf("invalid backup_interval %q: %w", cfg.BackupInterval, err)
		}
		backups.Start()
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("Serving coins API on http://%s\n", addr)
		errCh <- srv.ListenAndServe()
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	var serveErr error
	select {
	case serveErr = <-errCh:
	case s := <-sig:
		logger.Info("Shutting down", "signal", s.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Server shutdown failed", "error", err)
	}
	if reminders != nil {
		reminders.Stop(shutdownCtx)
	}
	<-backups.Stop().Done()

	if err := store.Flush(); err != nil {
		return fmt.Errorf("failed to flush data: %w", err)
	}
	if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		return serveErr
	}
	return nil
}
