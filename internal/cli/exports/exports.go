package exports

import (
	"fmt"
	"io"
	"os"

	"github.com/ktrou69-commits/energy-coins/internal/cli"
	"github.com/ktrou69-commits/energy-coins/internal/transfer"
)

type ExportCmd struct {
	Csv  ExportCSVCmd  `cmd:"" name:"csv" help:"Export every action as CSV."`
	Json ExportJSONCmd `cmd:"" name:"json" help:"Export the full document as JSON."`
	Ics  ExportICSCmd  `cmd:"" name:"ics" help:"Export every action as an iCalendar file."`
}

type ImportCmd struct {
	Csv  ImportCSVCmd  `cmd:"" name:"csv" help:"Import actions from a CSV export."`
	Json ImportJSONCmd `cmd:"" name:"json" help:"Import a JSON export, replacing the days it contains."`
}

// output opens path for writing, or stdout for "" and "-"
func output(path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, f.Close, nil
}

// report prints to stderr when the export itself went to stdout
func report(path, format string, args ...interface{}) {
	if path == "" || path == "-" {
		fmt.Fprintf(os.Stderr, format, args...)
		return
	}
	fmt.Printf(format, args...)
}

type ExportCSVCmd struct {
	Output string `short:"o" help:"Output file. Defaults to stdout."`
}

func (c *ExportCSVCmd) Run(ctx *cli.Context) error {
	store, err := ctx.Ledger()
	if err != nil {
		return err
	}
	w, closeFn, err := output(c.Output)
	if err != nil {
		return err
	}
	n, err := transfer.WriteCSV(w, store.Snapshot())
	if cerr := closeFn(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("csv export failed: %w", err)
	}
	report(c.Output, "✓ Exported %d actions\n", n)
	return nil
}

type ExportJSONCmd struct {
	Output string `short:"o" help:"Output file. Defaults to stdout."`
}

func (c *ExportJSONCmd) Run(ctx *cli.Context) error {
	store, err := ctx.Ledger()
	if err != nil {
		return err
	}
	w, closeFn, err := output(c.Output)
	if err != nil {
		return err
	}
	data := store.Snapshot()
	err = transfer.WriteJSON(w, data, ctx.LocalNow())
	if cerr := closeFn(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("json export failed: %w", err)
	}
	report(c.Output, "✓ Exported %d days\n", len(data.Days))
	return nil
}

type ExportICSCmd struct {
	Output string `short:"o" help:"Output file. Defaults to stdout."`
}

func (c *ExportICSCmd) Run(ctx *cli.Context) error {
	store, err := ctx.Ledger()
	if err != nil {
		return err
	}
	w, closeFn, err := output(c.Output)
	if err != nil {
		return err
	}
	n, err := transfer.WriteICS(w, store.Snapshot(), ctx.Location(), ctx.LocalNow())
	if cerr := closeFn(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("ics export failed: %w", err)
	}
	report(c.Output, "✓ Exported %d events\n", n)
	return nil
}

type ImportCSVCmd struct {
	File string `arg:"" type:"existingfile" help:"CSV file to import."`
}

func (c *ImportCSVCmd) Run(ctx *cli.Context) error {
	store, err := ctx.Ledger()
	if err != nil {
		return err
	}
	f, err := os.Open(c.File)
	if err != nil {
		return err
	}
	defer f.Close()

	batch, skipped, err := transfer.ReadCSV(f)
	if err != nil {
		return fmt.Errorf("csv import failed: %w", err)
	}

	ctx.PerformAutomaticBackup()
	result, err := store.AddActions(batch)
	if err != nil {
		return fmt.Errorf("csv import failed: %w", err)
	}
	result.Skipped += skipped
	fmt.Printf("✓ Import finished: %s\n", result)
	return nil
}

type ImportJSONCmd struct {
	File string `arg:"" type:"existingfile" help:"JSON export to import."`
}

func (c *ImportJSONCmd) Run(ctx *cli.Context) error {
	store, err := ctx.Ledger()
	if err != nil {
		return err
	}
	f, err := os.Open(c.File)
	if err != nil {
		return err
	}
	defer f.Close()

	env, err := transfer.ReadJSON(f)
	if err != nil {
		return fmt.Errorf("json import failed: %w", err)
	}

	ctx.PerformAutomaticBackup()
	result, err := store.Merge(env.Data)
	if err != nil {
		return fmt.Errorf("json import failed: %w", err)
	}
	fmt.Printf("✓ Import finished: %s (%d days)\n", result, result.Days)
	return nil
}
