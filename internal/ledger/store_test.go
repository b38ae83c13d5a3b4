package ledger

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	coinerrors "github.com/ktrou69-commits/energy-coins/internal/errors"
	"github.com/ktrou69-commits/energy-coins/internal/models"
)

type memProvider struct {
	mu    sync.Mutex
	data  *models.Data
	saves int
	fail  bool
}

func (m *memProvider) Init() error           { return nil }
func (m *memProvider) Load() error           { return nil }
func (m *memProvider) Close() error          { return nil }
func (m *memProvider) GetConfigPath() string { return "memory" }

func (m *memProvider) LoadData() (*models.Data, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return models.NewData(), nil
	}
	return m.data.Clone(), nil
}

func (m *memProvider) SaveData(d *models.Data) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.fail {
		return errors.New("disk full")
	}
	m.data = d.Clone()
	return nil
}

func newTestStore(t *testing.T, p *memProvider) *Store {
	t.Helper()
	n := 0
	s, err := New(p,
		WithClock(func() time.Time { return time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC) }),
		WithIDGenerator(func() string { n++; return fmt.Sprintf("id-%d", n) }),
		WithRetry(3, 0),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func ptr[T any](v T) *T { return &v }

func newPatch(title string, cat models.Category, start, end string) models.ActionPatch {
	return models.ActionPatch{Title: ptr(title), Category: ptr(cat), StartTime: ptr(start), EndTime: ptr(end)}
}

const day = "2025-01-15"

func TestGetDayCreatesEmptyDay(t *testing.T) {
	s := newTestStore(t, &memProvider{})
	d, err := s.GetDay(day)
	if err != nil {
		t.Fatalf("GetDay() error = %v", err)
	}
	if d.Actions == nil || len(d.Actions) != 0 || d.Notes != "" {
		t.Errorf("GetDay() = %+v, want empty day", d)
	}
	if got := s.Dates(); len(got) != 1 || got[0] != day {
		t.Errorf("Dates() = %v", got)
	}

	if _, err := s.GetDay("15/01/2025"); !errors.Is(err, coinerrors.ErrInvalidDateFormat) {
		t.Errorf("GetDay(bad) error = %v", err)
	}
}

func TestDayDoesNotCreate(t *testing.T) {
	s := newTestStore(t, &memProvider{})
	if d := s.Day(day); len(d.Actions) != 0 {
		t.Errorf("Day() = %+v", d)
	}
	if len(s.Dates()) != 0 {
		t.Error("Day() must not create the day")
	}
}

func TestSaveActionCreates(t *testing.T) {
	p := &memProvider{}
	s := newTestStore(t, p)

	a, err := s.SaveAction(day, newPatch("  Deep work ", models.CategoryWork, "09:00", "11:00"))
	if err != nil {
		t.Fatalf("SaveAction() error = %v", err)
	}
	if a.ID != "id-1" || a.Title != "Deep work" || a.Priority != models.PriorityMedium {
		t.Errorf("SaveAction() = %+v", a)
	}
	if !a.CreatedAt.Equal(time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC)) {
		t.Errorf("CreatedAt = %v", a.CreatedAt)
	}
	if p.saves != 1 {
		t.Errorf("saves = %d, want 1", p.saves)
	}
	if got := p.data.Days[day].Actions; len(got) != 1 || got[0].ID != "id-1" {
		t.Errorf("persisted actions = %+v", got)
	}
}

func TestSaveActionValidation(t *testing.T) {
	s := newTestStore(t, &memProvider{})

	tests := []struct {
		name  string
		patch models.ActionPatch
		want  error
	}{
		{"empty title", newPatch("  ", models.CategoryWork, "09:00", "10:00"), coinerrors.ErrInvalidAction},
		{"unknown category", newPatch("x", "gaming", "09:00", "10:00"), coinerrors.ErrUnknownCategory},
		{"bad time", newPatch("x", models.CategoryWork, "9am", "10:00"), coinerrors.ErrInvalidTimeFormat},
		{"end before start", newPatch("x", models.CategoryWork, "10:00", "09:00"), coinerrors.ErrInvalidAction},
		{"equal times", newPatch("x", models.CategoryWork, "10:00", "10:00"), coinerrors.ErrInvalidAction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.SaveAction(day, tt.patch); !errors.Is(err, tt.want) {
				t.Errorf("SaveAction() error = %v, want %v", err, tt.want)
			}
		})
	}

	p := newPatch("x", models.CategoryWork, "09:00", "10:00")
	p.Priority = ptr(models.Priority("urgent"))
	if _, err := s.SaveAction(day, p); !errors.Is(err, coinerrors.ErrUnknownPriority) {
		t.Errorf("unknown priority error = %v", err)
	}
	if len(s.Day(day).Actions) != 0 {
		t.Error("rejected saves must not change the day")
	}
}

func TestSaveActionMerge(t *testing.T) {
	s := newTestStore(t, &memProvider{})
	orig, err := s.SaveAction(day, newPatch("Gym", models.CategorySport, "07:00", "08:00"))
	if err != nil {
		t.Fatal(err)
	}

	updated, err := s.SaveAction(day, models.ActionPatch{ID: orig.ID, EndTime: ptr("08:30"), Note: ptr("legs")})
	if err != nil {
		t.Fatalf("SaveAction(update) error = %v", err)
	}
	if updated.Title != "Gym" || updated.EndTime != "08:30" || updated.Note != "legs" {
		t.Errorf("merged action = %+v", updated)
	}
	if !updated.CreatedAt.Equal(orig.CreatedAt) || updated.ID != orig.ID {
		t.Errorf("ID/CreatedAt changed: %+v vs %+v", updated, orig)
	}
	if n := len(s.Day(day).Actions); n != 1 {
		t.Errorf("actions = %d, want 1", n)
	}
}

func TestSaveActionSelfSaveIsIdempotent(t *testing.T) {
	s := newTestStore(t, &memProvider{})
	a, err := s.SaveAction(day, newPatch("Read", models.CategoryLearn, "20:00", "21:00"))
	if err != nil {
		t.Fatal(err)
	}
	before := s.Day(day)

	again, err := s.SaveAction(day, models.PatchFromAction(a))
	if err != nil {
		t.Fatal(err)
	}
	after := s.Day(day)
	if again != a || len(after.Actions) != len(before.Actions) || after.Actions[0] != before.Actions[0] {
		t.Errorf("self save changed the day: %+v -> %+v", before, after)
	}
}

func TestSaveActionUnknownID(t *testing.T) {
	s := newTestStore(t, &memProvider{})
	_, err := s.SaveAction(day, models.ActionPatch{ID: "missing", Title: ptr("x")})
	if !errors.Is(err, coinerrors.ErrActionNotFound) {
		t.Errorf("error = %v, want ErrActionNotFound", err)
	}
}

func TestDeleteAction(t *testing.T) {
	p := &memProvider{}
	s := newTestStore(t, p)
	a, _ := s.SaveAction(day, newPatch("A", models.CategoryWork, "09:00", "10:00"))
	b, _ := s.SaveAction(day, newPatch("B", models.CategoryWork, "10:00", "11:00"))

	saves := p.saves
	if err := s.DeleteAction(day, "nope"); err != nil {
		t.Errorf("DeleteAction(unknown) error = %v", err)
	}
	if p.saves != saves {
		t.Error("deleting an unknown id must not write")
	}

	if err := s.DeleteAction(day, a.ID); err != nil {
		t.Fatal(err)
	}
	got := s.Day(day).Actions
	if len(got) != 1 || got[0].ID != b.ID {
		t.Errorf("remaining = %+v", got)
	}
}

func TestMoveAction(t *testing.T) {
	s := newTestStore(t, &memProvider{})
	a, _ := s.SaveAction(day, newPatch("Call", models.CategoryCommunication, "09:15", "10:45"))

	moved, err := s.MoveAction(day, a.ID, 14)
	if err != nil {
		t.Fatalf("MoveAction() error = %v", err)
	}
	if moved.StartTime != "14:00" || moved.EndTime != "15:30" {
		t.Errorf("moved = %s-%s, want 14:00-15:30", moved.StartTime, moved.EndTime)
	}

	if _, err := s.MoveAction(day, a.ID, 23); !errors.Is(err, coinerrors.ErrInvalidAction) {
		t.Errorf("move past midnight error = %v", err)
	}
	if _, err := s.MoveAction(day, "missing", 10); !errors.Is(err, coinerrors.ErrActionNotFound) {
		t.Errorf("move missing error = %v", err)
	}
	if _, err := s.MoveAction(day, a.ID, 24); !errors.Is(err, coinerrors.ErrInvalidAction) {
		t.Errorf("move to hour 24 error = %v", err)
	}
}

func TestSetNotes(t *testing.T) {
	s := newTestStore(t, &memProvider{})
	if err := s.SetNotes(day, "focus"); err != nil {
		t.Fatal(err)
	}
	if got := s.Day(day).Notes; got != "focus" {
		t.Errorf("Notes = %q", got)
	}
}

func TestUpdateSettings(t *testing.T) {
	s := newTestStore(t, &memProvider{})
	got, err := s.UpdateSettings(models.SettingsPatch{SleepStart: ptr("23:00"), NotifySleep: ptr(false)})
	if err != nil {
		t.Fatal(err)
	}
	if got.SleepStart != "23:00" || got.Notifications.Sleep || got.SleepEnd != "08:30" {
		t.Errorf("settings = %+v", got)
	}

	if _, err := s.UpdateSettings(models.SettingsPatch{SleepEnd: ptr("25:00")}); err == nil {
		t.Error("invalid sleep end should be rejected")
	}
	if s.Settings().SleepEnd != "08:30" {
		t.Error("rejected patch must not change settings")
	}
}

func TestHistoryAndSuggestions(t *testing.T) {
	s := newTestStore(t, &memProvider{})
	for i, title := range []string{"Work", "work", "Workout", "Walk", "WORK"} {
		start := fmt.Sprintf("%02d:00", 8+i)
		end := fmt.Sprintf("%02d:00", 9+i)
		if _, err := s.SaveAction(day, newPatch(title, models.CategoryWork, start, end)); err != nil {
			t.Fatal(err)
		}
	}

	h := s.History()
	if len(h) != 3 || h[0].Title != "Work" || h[0].Count != 3 {
		t.Errorf("History() = %+v", h)
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"", nil},
		{"  ", nil},
		{"WOR", []string{"Work", "Workout"}},
		{"al", []string{"Walk"}},
		{"zzz", nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := s.Suggestions(tt.query)
			if got == nil {
				t.Fatal("Suggestions() must not return nil")
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Suggestions(%q) = %+v", tt.query, got)
			}
			for i := range got {
				if got[i].Title != tt.want[i] {
					t.Errorf("Suggestions(%q)[%d] = %q, want %q", tt.query, i, got[i].Title, tt.want[i])
				}
			}
		})
	}
}

func TestSuggestionsLimit(t *testing.T) {
	s := newTestStore(t, &memProvider{})
	for i := 0; i < 8; i++ {
		title := fmt.Sprintf("Task %d", i)
		if _, err := s.SaveAction(day, newPatch(title, models.CategoryTasks, "09:00", "10:00")); err != nil {
			t.Fatal(err)
		}
	}
	if got := s.Suggestions("task"); len(got) != 5 {
		t.Errorf("len(Suggestions) = %d, want 5", len(got))
	}
}

func TestRecordHistoryTruncates(t *testing.T) {
	var h []models.HistoryEntry
	for i := 0; i < 60; i++ {
		h = recordHistory(h, fmt.Sprintf("t%d", i), models.CategoryOther)
	}
	h = recordHistory(h, "T5", models.CategoryOther)
	if len(h) != 50 {
		t.Fatalf("len = %d, want 50", len(h))
	}
	if h[0].Title != "t5" || h[0].Count != 2 {
		t.Errorf("head = %+v", h[0])
	}
	// stable sort keeps insertion order among equal counts
	if h[1].Title != "t0" {
		t.Errorf("h[1] = %+v", h[1])
	}
}

func TestPersistenceFailureKeepsChange(t *testing.T) {
	p := &memProvider{fail: true}
	s := newTestStore(t, p)

	a, err := s.SaveAction(day, newPatch("Offline", models.CategoryOther, "09:00", "10:00"))
	if !errors.Is(err, coinerrors.ErrPersistence) {
		t.Fatalf("error = %v, want ErrPersistence", err)
	}
	if p.saves != 3 {
		t.Errorf("attempts = %d, want 3", p.saves)
	}
	if _, ok := s.GetAction(day, a.ID); !ok {
		t.Error("in-memory change should stand after a failed write")
	}

	p.fail = false
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if len(p.data.Days[day].Actions) != 1 {
		t.Error("Flush() should persist the pending change")
	}
}

func TestConcurrentSavesSameDate(t *testing.T) {
	p := &memProvider{}
	s, err := New(p, WithRetry(1, 0))
	if err != nil {
		t.Fatal(err)
	}

	const n = 40
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h := i % 23
			_, err := s.SaveAction(day, newPatch(fmt.Sprintf("t%d", i), models.CategoryWork,
				fmt.Sprintf("%02d:00", h), fmt.Sprintf("%02d:30", h)))
			if err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()

	if got := len(s.Day(day).Actions); got != n {
		t.Errorf("actions = %d, want %d", got, n)
	}
	loaded, _ := p.LoadData()
	if got := len(loaded.Days[day].Actions); got != n {
		t.Errorf("persisted actions = %d, want %d", got, n)
	}
}

func TestSubscribe(t *testing.T) {
	s := newTestStore(t, &memProvider{})
	var got []Change
	cancel := s.Subscribe(func(c Change) { got = append(got, c) })

	a, _ := s.SaveAction(day, newPatch("A", models.CategoryWork, "09:00", "10:00"))
	_ = s.DeleteAction(day, a.ID)
	cancel()
	_ = s.SetNotes(day, "after cancel")

	want := []Change{
		{Kind: ChangeActionCreated, Date: day, ActionID: a.ID},
		{Kind: ChangeActionDeleted, Date: day, ActionID: a.ID},
	}
	if len(got) != len(want) {
		t.Fatalf("changes = %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("change[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestUnsubscribeReleasesSlots(t *testing.T) {
	s := newTestStore(t, &memProvider{})
	var order []int
	keep := s.Subscribe(func(Change) { order = append(order, 1) })
	defer keep()

	for i := 0; i < 100; i++ {
		cancel := s.Subscribe(func(Change) { t.Error("cancelled subscriber called") })
		cancel()
		cancel() // second call is a no-op
	}
	last := s.Subscribe(func(Change) { order = append(order, 2) })
	defer last()

	if n := len(s.subs); n != 2 {
		t.Errorf("subscriptions = %d, want 2", n)
	}
	_ = s.SetNotes(day, "ping")
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("delivery order = %v, want [1 2]", order)
	}
}

func TestNewLoadsExistingData(t *testing.T) {
	data := models.NewData()
	data.Days[day] = models.Day{Actions: []models.Action{{
		ID: "x", Title: "Existing", Category: models.CategoryRest, Priority: models.PriorityLow,
		StartTime: "13:00", EndTime: "14:00",
	}}}
	s := newTestStore(t, &memProvider{data: data})
	if _, ok := s.GetAction(day, "x"); !ok {
		t.Error("existing action not loaded")
	}
}
