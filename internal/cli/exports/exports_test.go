package exports

import (
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/ktrou69-commits/energy-coins/internal/cli"
	"github.com/ktrou69-commits/energy-coins/internal/config"
	"github.com/ktrou69-commits/energy-coins/internal/ledger"
	"github.com/ktrou69-commits/energy-coins/internal/models"
	"github.com/ktrou69-commits/energy-coins/internal/scheduler"
	"github.com/ktrou69-commits/energy-coins/internal/storage"
)

func newContext(t *testing.T, dir string) (*cli.Context, *ledger.Store) {
	t.Helper()
	store := storage.NewJSONStore(filepath.Join(dir, "coins.json"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	cfg := config.DefaultConfig()
	cfg.Timezone = "UTC"
	ctx := &cli.Context{
		Provider:  store,
		Config:    cfg,
		Scheduler: scheduler.New(),
		Now:       func() time.Time { return time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC) },
	}
	l, err := ctx.Ledger()
	if err != nil {
		t.Fatalf("ledger: %v", err)
	}
	return ctx, l
}

func seed(t *testing.T, l *ledger.Store) {
	t.Helper()
	rows := []struct {
		date, title, start, end, note string
		cat                           models.Category
		pri                           models.Priority
	}{
		{"2025-01-15", "Code", "09:00", "12:00", "", models.CategoryWork, models.PriorityHigh},
		{"2025-01-15", "Lunch, outside", "12:00", "13:00", `with "Ann"`, models.CategoryRest, models.PriorityMedium},
		{"2025-01-15", "Code", "14:00", "15:15", "review", models.CategoryWork, models.PriorityHigh},
		{"2025-01-16", "Gym", "18:00", "19:30", "legs", models.CategorySport, models.PriorityLow},
	}
	for _, r := range rows {
		title, cat, pri, start, end, note := r.title, r.cat, r.pri, r.start, r.end, r.note
		patch := models.ActionPatch{Title: &title, Category: &cat, Priority: &pri, StartTime: &start, EndTime: &end, Note: &note}
		if _, err := l.SaveAction(r.date, patch); err != nil {
			t.Fatalf("save %s: %v", r.title, err)
		}
	}
}

// actionTuples flattens every stored action into a sorted list of comparable rows
func actionTuples(l *ledger.Store) []string {
	var out []string
	for _, date := range l.Dates() {
		for _, a := range l.Day(date).Actions {
			out = append(out, strings.Join([]string{
				date, a.Title, string(a.Category), string(a.Priority), a.StartTime, a.EndTime, a.Note,
			}, "|"))
		}
	}
	sort.Strings(out)
	return out
}

func TestCSVRoundTrip(t *testing.T) {
	srcDir := t.TempDir()
	src, srcStore := newContext(t, srcDir)
	seed(t, srcStore)

	out := filepath.Join(srcDir, "actions.csv")
	if err := (&ExportCSVCmd{Output: out}).Run(src); err != nil {
		t.Fatalf("export: %v", err)
	}

	dst, dstStore := newContext(t, t.TempDir())
	if err := (&ImportCSVCmd{File: out}).Run(dst); err != nil {
		t.Fatalf("import: %v", err)
	}

	want, got := actionTuples(srcStore), actionTuples(dstStore)
	if len(want) != 4 {
		t.Fatalf("seeded %d actions, want 4", len(want))
	}
	if !slices.Equal(got, want) {
		t.Errorf("re-imported actions differ\n got: %q\nwant: %q", got, want)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	srcDir := t.TempDir()
	src, srcStore := newContext(t, srcDir)
	seed(t, srcStore)
	if err := srcStore.SetNotes("2025-01-15", "good day"); err != nil {
		t.Fatalf("notes: %v", err)
	}

	out := filepath.Join(srcDir, "export.json")
	if err := (&ExportJSONCmd{Output: out}).Run(src); err != nil {
		t.Fatalf("export: %v", err)
	}

	dst, dstStore := newContext(t, t.TempDir())
	// a day not in the export survives the import
	title, cat, start, end := "Keep me", models.CategoryOther, "07:00", "07:30"
	if _, err := dstStore.SaveAction("2025-02-01", models.ActionPatch{Title: &title, Category: &cat, StartTime: &start, EndTime: &end}); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := (&ImportJSONCmd{File: out}).Run(dst); err != nil {
		t.Fatalf("import: %v", err)
	}
	if got := dstStore.Day("2025-01-15").Notes; got != "good day" {
		t.Errorf("notes = %q", got)
	}
	if n := len(dstStore.Day("2025-02-01").Actions); n != 1 {
		t.Errorf("unrelated day lost, got %d actions", n)
	}
	if src := srcStore.Day("2025-01-16").Actions[0].ID; dstStore.Day("2025-01-16").Actions[0].ID != src {
		t.Error("ids should be preserved by a JSON import")
	}
}

func TestImportJSON_Invalid(t *testing.T) {
	dir := t.TempDir()
	ctx, _ := newContext(t, dir)

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"days":{}}`), 0600); err != nil {
		t.Fatal(err)
	}
	if err := (&ImportJSONCmd{File: bad}).Run(ctx); err == nil {
		t.Error("expected error for a file without version and data")
	}
}

func TestExportICS(t *testing.T) {
	dir := t.TempDir()
	ctx, l := newContext(t, dir)
	seed(t, l)

	out := filepath.Join(dir, "coins.ics")
	if err := (&ExportICSCmd{Output: out}).Run(ctx); err != nil {
		t.Fatalf("export: %v", err)
	}
	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(raw), "BEGIN:VEVENT"); n != 4 {
		t.Errorf("expected 4 events, got %d", n)
	}
}
