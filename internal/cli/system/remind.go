package system

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/ktrou69-commits/energy-coins/internal/cli"
	"github.com/ktrou69-commits/energy-coins/internal/config"
	"github.com/ktrou69-commits/energy-coins/internal/notifier"
	"github.com/ktrou69-commits/energy-coins/internal/reminder"
)

type RemindCmd struct {
	Watch bool   `short:"w" help:"Keep running and send reminders on schedule."`
	Send  string `enum:",morning,sleep" default:"" help:"Send one reminder now (morning or sleep)."`
}

func newReminders(ctx *cli.Context, sender notifier.Sender) (*reminder.Scheduler, error) {
	store, err := ctx.Ledger()
	if err != nil {
		return nil, err
	}
	cfg := ctx.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return reminder.New(store, sender, reminder.Config{
		MorningSpec:  cfg.Reminders.MorningCron,
		SleepLeadMin: cfg.Reminders.SleepLeadMin,
		Location:     ctx.Location(),
	}), nil
}

func (c *RemindCmd) Run(ctx *cli.Context) error {
	r, err := newReminders(ctx, notifier.New())
	if err != nil {
		return err
	}

	if c.Send != "" {
		kind := reminder.Kind(c.Send)
		if !r.Enabled(kind) {
			fmt.Printf("⊘ %s reminder is disabled in settings\n", kind)
			return nil
		}
		sendCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := r.Fire(sendCtx, kind); err != nil {
			return err
		}
		fmt.Printf("✓ Sent %s reminder\n", kind)
		return nil
	}

	if !c.Watch {
		if err := r.Reschedule(); err != nil {
			return err
		}
		printReminders(r)
		return nil
	}

	if err := r.Start(); err != nil {
		return err
	}
	printReminders(r)
	fmt.Println("\nWaiting for reminders. Press Ctrl+C to stop.")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	r.Stop(stopCtx)
	return nil
}

func printReminders(r *reminder.Scheduler) {
	next := r.Next()
	kinds := make([]reminder.Kind, 0, len(next))
	for k := range next {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	for _, k := range kinds {
		state := "on"
		if !r.Enabled(k) {
			state = "off"
		}
		fmt.Printf("%-8s %-3s next %s\n", k, state, next[k].Format("2006-01-02 15:04"))
		fmt.Printf("         %s\n", r.Message(k))
	}
}
