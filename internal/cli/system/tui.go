package system

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ktrou69-commits/energy-coins/internal/cli"
	"github.com/ktrou69-commits/energy-coins/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	store, err := ctx.Ledger()
	if err != nil {
		return err
	}

	// Perform automatic backup on TUI startup (after successful load)
	ctx.PerformAutomaticBackup()

	model := tui.NewModel(store, ctx.Scheduler, tui.Options{
		Location:        ctx.Location(),
		DefaultDuration: ctx.DefaultDuration(),
		Now:             ctx.Now,
	})
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return store.Flush()
}
