package reminder

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ktrou69-commits/energy-coins/internal/models"
)

type fakeSource struct {
	settings models.Settings
	days     map[string]models.Day
}

func (f *fakeSource) Settings() models.Settings { return f.settings }
func (f *fakeSource) Day(date string) models.Day { return f.days[date] }

type fakeSender struct {
	sent []string
	err  error
}

func (f *fakeSender) Notify(_ context.Context, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, text)
	return nil
}

func TestSleepSpec(t *testing.T) {
	tests := []struct {
		start string
		lead  int
		want  string
	}{
		{"22:30", 30, "0 22 * * *"},
		{"22:30", 0, "30 22 * * *"},
		{"00:15", 30, "45 23 * * *"},
		{"23:00", 90, "30 21 * * *"},
	}
	for _, tt := range tests {
		s := models.DefaultSettings()
		s.SleepStart = tt.start
		got, err := SleepSpec(s, tt.lead)
		if err != nil || got != tt.want {
			t.Errorf("SleepSpec(%s, %d) = %q, %v; want %q", tt.start, tt.lead, got, err, tt.want)
		}
	}

	s := models.DefaultSettings()
	s.SleepStart = "late"
	if _, err := SleepSpec(s, 30); err == nil {
		t.Error("invalid sleep start should fail")
	}
}

func TestMorningMessage(t *testing.T) {
	s := models.DefaultSettings()
	if got := MorningMessage(s, models.Day{}); !strings.Contains(got, "14 energy coins") {
		t.Errorf("empty day message = %q", got)
	}
	day := models.Day{Actions: []models.Action{{StartTime: "09:00", EndTime: "11:00"}}}
	if got := MorningMessage(s, day); !strings.Contains(got, "2 of 14") {
		t.Errorf("planned day message = %q", got)
	}
}

func newTestScheduler(src *fakeSource, sender *fakeSender) *Scheduler {
	s := New(src, sender, Config{MorningSpec: "0 9 * * *", SleepLeadMin: 30, Location: time.UTC})
	s.now = func() time.Time { return time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestFire(t *testing.T) {
	src := &fakeSource{settings: models.DefaultSettings(), days: map[string]models.Day{
		"2025-01-15": {Actions: []models.Action{{StartTime: "09:00", EndTime: "10:00"}}},
	}}
	sender := &fakeSender{}
	s := newTestScheduler(src, sender)

	if err := s.Fire(context.Background(), KindMorning); err != nil {
		t.Fatal(err)
	}
	if err := s.Fire(context.Background(), KindSleep); err != nil {
		t.Fatal(err)
	}
	if len(sender.sent) != 2 || !strings.Contains(sender.sent[0], "1 of 14") || !strings.Contains(sender.sent[1], "22:30") {
		t.Errorf("sent = %q", sender.sent)
	}

	src.settings.Notifications.Sleep = false
	if err := s.Fire(context.Background(), KindSleep); err != nil {
		t.Fatal(err)
	}
	if len(sender.sent) != 2 {
		t.Error("disabled reminder must not be sent")
	}

	sender.err = errors.New("tray down")
	if err := s.Fire(context.Background(), KindMorning); err == nil {
		t.Error("sender failure should be returned")
	}
}

func TestRescheduleAndNext(t *testing.T) {
	src := &fakeSource{settings: models.DefaultSettings()}
	s := newTestScheduler(src, &fakeSender{})

	if err := s.Reschedule(); err != nil {
		t.Fatal(err)
	}
	next := s.Next()
	if want := time.Date(2025, 1, 16, 9, 0, 0, 0, time.UTC); !next[KindMorning].Equal(want) {
		t.Errorf("next morning = %v, want %v", next[KindMorning], want)
	}
	if want := time.Date(2025, 1, 15, 22, 0, 0, 0, time.UTC); !next[KindSleep].Equal(want) {
		t.Errorf("next sleep = %v, want %v", next[KindSleep], want)
	}

	src.settings.SleepStart = "23:45"
	if err := s.Reschedule(); err != nil {
		t.Fatal(err)
	}
	next = s.Next()
	if len(next) != 2 {
		t.Fatalf("entries = %d, want 2 after reschedule", len(next))
	}
	if want := time.Date(2025, 1, 15, 23, 15, 0, 0, time.UTC); !next[KindSleep].Equal(want) {
		t.Errorf("next sleep = %v, want %v", next[KindSleep], want)
	}
}

func TestRescheduleInvalidSpec(t *testing.T) {
	s := New(&fakeSource{settings: models.DefaultSettings()}, &fakeSender{}, Config{MorningSpec: "every morning"})
	if err := s.Reschedule(); err == nil {
		t.Error("invalid cron spec should fail")
	}
}

func TestRescheduleFailureKeepsEntries(t *testing.T) {
	src := &fakeSource{settings: models.DefaultSettings()}
	s := newTestScheduler(src, &fakeSender{})
	if err := s.Reschedule(); err != nil {
		t.Fatal(err)
	}
	before := s.Next()

	src.settings.SleepStart = "late"
	if err := s.Reschedule(); err == nil {
		t.Fatal("Reschedule() with a bad sleep start should fail")
	}
	after := s.Next()
	if len(after) != 2 {
		t.Fatalf("entries = %d after failed reschedule, want 2", len(after))
	}
	for _, kind := range []Kind{KindMorning, KindSleep} {
		if !after[kind].Equal(before[kind]) {
			t.Errorf("%s next = %v, want unchanged %v", kind, after[kind], before[kind])
		}
	}
}

func TestStartStop(t *testing.T) {
	s := newTestScheduler(&fakeSource{settings: models.DefaultSettings()}, &fakeSender{})
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
