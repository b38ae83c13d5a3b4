package actions

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ktrou69-commits/energy-coins/internal/cli"
	"github.com/ktrou69-commits/energy-coins/internal/config"
	coinerrors "github.com/ktrou69-commits/energy-coins/internal/errors"
	"github.com/ktrou69-commits/energy-coins/internal/ledger"
	"github.com/ktrou69-commits/energy-coins/internal/scheduler"
	"github.com/ktrou69-commits/energy-coins/internal/storage"
)

const today = "2025-01-15"

func setupTest(t *testing.T) (*cli.Context, *ledger.Store) {
	t.Helper()

	store := storage.NewJSONStore(filepath.Join(t.TempDir(), "coins.json"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	now := func() time.Time { return time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC) }
	cfg := config.DefaultConfig()
	cfg.Timezone = "UTC"

	ctx := &cli.Context{
		Provider:  store,
		Config:    cfg,
		Scheduler: scheduler.New(scheduler.WithClock(now)),
		Now:       now,
	}
	l, err := ctx.Ledger()
	if err != nil {
		t.Fatalf("failed to open ledger: %v", err)
	}
	return ctx, l
}

func ptr[T any](v T) *T { return &v }

func TestAddCmd(t *testing.T) {
	tests := []struct {
		name      string
		cmd       AddCmd
		wantStart string
		wantEnd   string
		wantErr   bool
	}{
		{"explicit range", AddCmd{Title: "Write", Start: "9:00", End: "10:30", Category: "work", Priority: "high"}, "09:00", "10:30", false},
		{"duration", AddCmd{Title: "Run", Start: "07:00", Duration: 45, Category: "sport", Priority: "medium"}, "07:00", "07:45", false},
		{"next free slot", AddCmd{Title: "Read", Category: "Learning", Priority: "low"}, "08:00", "09:00", false},
		{"display name category", AddCmd{Title: "Dishes", Start: "20:00", End: "20:30", Category: "Chores", Priority: "Low"}, "20:00", "20:30", false},
		{"unknown category", AddCmd{Title: "x", Start: "09:00", End: "10:00", Category: "nap", Priority: "medium"}, "", "", true},
		{"end before start", AddCmd{Title: "x", Start: "11:00", End: "10:00", Category: "work", Priority: "medium"}, "", "", true},
		{"bad time", AddCmd{Title: "x", Start: "9am", End: "10:00", Category: "work", Priority: "medium"}, "", "", true},
		{"past midnight", AddCmd{Title: "x", Start: "23:30", Duration: 60, Category: "work", Priority: "medium"}, "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, store := setupTest(t)
			tt.cmd.Date = "today"

			err := tt.cmd.Run(ctx)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Run() error = %v, wantErr %v", err, tt.wantErr)
			}
			actions := store.Day(today).Actions
			if tt.wantErr {
				if len(actions) != 0 {
					t.Errorf("expected no actions, got %d", len(actions))
				}
				return
			}
			if len(actions) != 1 {
				t.Fatalf("expected 1 action, got %d", len(actions))
			}
			if actions[0].StartTime != tt.wantStart || actions[0].EndTime != tt.wantEnd {
				t.Errorf("range = %s-%s, want %s-%s", actions[0].StartTime, actions[0].EndTime, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestAddCmd_Validate(t *testing.T) {
	cmd := AddCmd{Title: "x", End: "10:00", Duration: 30}
	if err := cmd.Validate(); err == nil {
		t.Error("expected error for --end with --duration")
	}
	cmd = AddCmd{Title: "x", Until: "2025-02-01"}
	if err := cmd.Validate(); err == nil {
		t.Error("expected error for --until without --repeat")
	}
}

func TestAddCmd_Recurring(t *testing.T) {
	ctx, store := setupTest(t)

	cmd := AddCmd{
		Title:    "Gym",
		Date:     today,
		Start:    "18:00",
		End:      "19:00",
		Category: "sport",
		Priority: "high",
		Repeat:   "FREQ=WEEKLY;BYDAY=MO,WE,FR",
		Until:    "2025-01-26",
	}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// Wed 15, Fri 17, Mon 20, Wed 22, Fri 24
	want := []string{"2025-01-15", "2025-01-17", "2025-01-20", "2025-01-22", "2025-01-24"}
	for _, d := range want {
		if n := len(store.Day(d).Actions); n != 1 {
			t.Errorf("%s: expected 1 action, got %d", d, n)
		}
	}
	if n := len(store.Dates()); n != len(want) {
		t.Errorf("expected %d dates, got %d", len(want), n)
	}

	// ids are unique across the batch
	seen := map[string]bool{}
	for _, d := range want {
		id := store.Day(d).Actions[0].ID
		if seen[id] {
			t.Errorf("duplicate id %s", id)
		}
		seen[id] = true
	}
}

func TestEditMoveDelete(t *testing.T) {
	ctx, store := setupTest(t)
	add := AddCmd{Title: "Study", Date: today, Start: "09:00", End: "10:30", Category: "learn", Priority: "medium"}
	if err := add.Run(ctx); err != nil {
		t.Fatalf("add: %v", err)
	}
	id := store.Day(today).Actions[0].ID

	edit := EditCmd{ID: id, Title: ptr("Study Go"), Priority: ptr("high"), Note: ptr("chapter 4")}
	if err := edit.Run(ctx); err != nil {
		t.Fatalf("edit: %v", err)
	}
	a, _ := store.GetAction(today, id)
	if a.Title != "Study Go" || a.Priority != "high" || a.Note != "chapter 4" || a.StartTime != "09:00" {
		t.Errorf("after edit = %+v", a)
	}

	bad := EditCmd{ID: id, End: "08:00"}
	if err := bad.Run(ctx); !errors.Is(err, coinerrors.ErrInvalidAction) {
		t.Errorf("edit with end before start: error = %v", err)
	}

	move := MoveCmd{ID: id, Hour: 14}
	if err := move.Run(ctx); err != nil {
		t.Fatalf("move: %v", err)
	}
	a, _ = store.GetAction(today, id)
	if a.StartTime != "14:00" || a.EndTime != "15:30" {
		t.Errorf("after move = %s-%s", a.StartTime, a.EndTime)
	}

	del := DeleteCmd{ID: id}
	if err := del.Run(ctx); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n := len(store.Day(today).Actions); n != 0 {
		t.Errorf("expected no actions after delete, got %d", n)
	}

	if err := del.Run(ctx); !errors.Is(err, coinerrors.ErrActionNotFound) {
		t.Errorf("second delete error = %v, want ErrActionNotFound", err)
	}
}

func TestNotesAndSuggest(t *testing.T) {
	ctx, store := setupTest(t)

	notes := NotesCmd{Text: "tired", Date: "today"}
	if err := notes.Run(ctx); err != nil {
		t.Fatalf("notes: %v", err)
	}
	if got := store.Day(today).Notes; got != "tired" {
		t.Errorf("notes = %q", got)
	}

	for _, title := range []string{"Lunch", "Lunch", "Launch prep"} {
		add := AddCmd{Title: title, Date: today, Category: "rest", Priority: "medium", Duration: 30}
		if err := add.Run(ctx); err != nil {
			t.Fatalf("add %s: %v", title, err)
		}
	}
	got := store.Suggestions("lun")
	if len(got) != 1 || got[0].Count != 2 {
		t.Errorf("suggestions = %+v", got)
	}
	if err := (&SuggestCmd{Query: "la"}).Run(ctx); err != nil {
		t.Errorf("suggest: %v", err)
	}
}

func TestDayAndNextCmd(t *testing.T) {
	ctx, _ := setupTest(t)

	if err := (&DayCmd{Timeline: true, ShowIDs: true}).Run(ctx); err != nil {
		t.Errorf("day: %v", err)
	}
	if err := (&DayCmd{Date: "not-a-date"}).Run(ctx); err == nil {
		t.Error("expected error for invalid date")
	}
	if err := (&NextCmd{Date: "tomorrow", Duration: 90}).Run(ctx); err != nil {
		t.Errorf("next: %v", err)
	}
}

func TestLogCmd(t *testing.T) {
	// the clock reads 10:30
	tests := []struct {
		name      string
		cmd       LogCmd
		wantStart string
		wantNote  string
		wantErr   bool
	}{
		{"default session", LogCmd{Duration: 25, Title: "Focus session", Category: "work", Priority: "medium"}, "10:05", "25 minute session", false},
		{"custom note", LogCmd{Duration: 90, Title: "Ride", Category: "Sport", Priority: "high", Note: "hills"}, "09:00", "hills", false},
		{"started before midnight", LogCmd{Duration: 700, Title: "Night", Category: "work", Priority: "medium"}, "", "", true},
		{"unknown category", LogCmd{Duration: 25, Title: "x", Category: "nap", Priority: "medium"}, "", "", true},
		{"blank title", LogCmd{Duration: 25, Title: " ", Category: "work", Priority: "medium"}, "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, store := setupTest(t)
			err := tt.cmd.Run(ctx)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Run() error = %v, wantErr %v", err, tt.wantErr)
			}
			actions := store.Day(today).Actions
			if tt.wantErr {
				if len(actions) != 0 {
					t.Errorf("expected no actions, got %d", len(actions))
				}
				return
			}
			if len(actions) != 1 {
				t.Fatalf("expected 1 action, got %d", len(actions))
			}
			a := actions[0]
			if a.StartTime != tt.wantStart || a.EndTime != "10:30" || a.Note != tt.wantNote {
				t.Errorf("logged %s-%s note %q, want %s-10:30 note %q", a.StartTime, a.EndTime, a.Note, tt.wantStart, tt.wantNote)
			}
		})
	}

	if err := (&LogCmd{Duration: 0}).Validate(); err == nil {
		t.Error("Validate() accepted a zero duration")
	}
}
