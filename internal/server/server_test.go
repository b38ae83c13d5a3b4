package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ktrou69-commits/energy-coins/internal/ledger"
	"github.com/ktrou69-commits/energy-coins/internal/models"
	"github.com/ktrou69-commits/energy-coins/internal/stats"
	"github.com/ktrou69-commits/energy-coins/internal/storage"
)

const day = "2025-01-15"

var fixedNow = time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

// testServer creates a server over a JSON store in a temp directory
func testServer(t *testing.T) (*Server, *ledger.Store) {
	t.Helper()

	provider := storage.NewJSONStore(filepath.Join(t.TempDir(), "coins.json"))
	if err := provider.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	store, err := ledger.New(provider, ledger.WithClock(func() time.Time { return fixedNow }))
	if err != nil {
		t.Fatalf("ledger.New() error = %v", err)
	}

	srv := New(store, Config{Addr: "127.0.0.1:0", Now: func() time.Time { return fixedNow }})
	t.Cleanup(func() {
		srv.unsub()
		srv.hub.Close()
	})
	return srv, store
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func createAction(t *testing.T, srv *Server, body string) models.Action {
	t.Helper()
	rr := do(t, srv, http.MethodPost, "/api/v1/days/"+day+"/actions", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	return decode[models.Action](t, rr)
}

func TestAPI_Health(t *testing.T) {
	srv, _ := testServer(t)

	rr := do(t, srv, http.MethodGet, "/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if got := decode[map[string]interface{}](t, rr)["status"]; got != "ok" {
		t.Errorf("status = %v, want ok", got)
	}
}

func TestAPI_CreateAndGetDay(t *testing.T) {
	srv, _ := testServer(t)

	a := createAction(t, srv, `{"title":"Deep work","category":"work","startTime":"09:00","endTime":"10:30"}`)
	if a.ID == "" {
		t.Fatal("expected an id to be assigned")
	}
	if a.Priority != models.PriorityMedium {
		t.Errorf("priority = %q, want medium", a.Priority)
	}

	rr := do(t, srv, http.MethodGet, "/api/v1/days/"+day, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	resp := decode[DayResponse](t, rr)
	if len(resp.Actions) != 1 || resp.Actions[0].ID != a.ID {
		t.Fatalf("actions = %+v", resp.Actions)
	}
	if resp.UsedCoins != 2 {
		t.Errorf("usedCoins = %d, want 2", resp.UsedCoins)
	}
	if resp.AvailableCoins != 14 {
		t.Errorf("availableCoins = %d, want 14", resp.AvailableCoins)
	}
}

func TestAPI_CreateIgnoresClientID(t *testing.T) {
	srv, _ := testServer(t)

	a := createAction(t, srv, `{"id":"mine","title":"Run","category":"sport","startTime":"07:00","endTime":"08:00"}`)
	if a.ID == "mine" {
		t.Error("client supplied id must not be used on create")
	}
}

func TestAPI_Errors(t *testing.T) {
	srv, _ := testServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"bad date", http.MethodGet, "/api/v1/days/2025-13-01", "", http.StatusBadRequest},
		{"invalid json", http.MethodPost, "/api/v1/days/" + day + "/actions", "nope", http.StatusBadRequest},
		{"missing title", http.MethodPost, "/api/v1/days/" + day + "/actions",
			`{"category":"work","startTime":"09:00","endTime":"10:00"}`, http.StatusBadRequest},
		{"unknown category", http.MethodPost, "/api/v1/days/" + day + "/actions",
			`{"title":"x","category":"nap","startTime":"09:00","endTime":"10:00"}`, http.StatusBadRequest},
		{"end before start", http.MethodPost, "/api/v1/days/" + day + "/actions",
			`{"title":"x","category":"work","startTime":"11:00","endTime":"10:00"}`, http.StatusBadRequest},
		{"update unknown id", http.MethodPatch, "/api/v1/days/" + day + "/actions/missing",
			`{"title":"x"}`, http.StatusNotFound},
		{"move without hour", http.MethodPost, "/api/v1/days/" + day + "/actions/missing/move",
			`{}`, http.StatusBadRequest},
		{"bad duration", http.MethodGet, "/api/v1/days/" + day + "/next-slot?duration=abc", "", http.StatusBadRequest},
		{"bad month", http.MethodGet, "/api/v1/stats/month/2025/13", "", http.StatusBadRequest},
		{"bad theme", http.MethodPatch, "/api/v1/settings", `{"theme":"blue"}`, http.StatusBadRequest},
		{"bad sleep time", http.MethodPatch, "/api/v1/settings", `{"sleepStart":"25:00"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, srv, tt.method, tt.path, tt.body)
			if rr.Code != tt.want {
				t.Errorf("expected status %d, got %d: %s", tt.want, rr.Code, rr.Body.String())
			}
			if !strings.Contains(rr.Body.String(), "error") {
				t.Errorf("expected an error body, got %s", rr.Body.String())
			}
		})
	}
}

func TestAPI_UpdateMoveDelete(t *testing.T) {
	srv, store := testServer(t)
	a := createAction(t, srv, `{"title":"Read","category":"learn","startTime":"09:00","endTime":"10:30"}`)

	rr := do(t, srv, http.MethodPatch, "/api/v1/days/"+day+"/actions/"+a.ID, `{"note":"chapter 3"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if got := decode[models.Action](t, rr); got.Note != "chapter 3" || got.Title != "Read" {
		t.Errorf("update result = %+v", got)
	}

	rr = do(t, srv, http.MethodPost, "/api/v1/days/"+day+"/actions/"+a.ID+"/move", `{"hour":14}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("move: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	moved := decode[models.Action](t, rr)
	if moved.StartTime != "14:00" || moved.EndTime != "15:30" {
		t.Errorf("moved to %s-%s, want 14:00-15:30", moved.StartTime, moved.EndTime)
	}

	rr = do(t, srv, http.MethodPost, "/api/v1/days/"+day+"/actions/"+a.ID+"/move", `{"hour":24}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("move to 24: expected 400, got %d", rr.Code)
	}

	rr = do(t, srv, http.MethodDelete, "/api/v1/days/"+day+"/actions/"+a.ID, "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rr.Code)
	}
	if n := len(store.Day(day).Actions); n != 0 {
		t.Errorf("expected empty day after delete, got %d actions", n)
	}

	// deleting again is a no-op
	rr = do(t, srv, http.MethodDelete, "/api/v1/days/"+day+"/actions/"+a.ID, "")
	if rr.Code != http.StatusNoContent {
		t.Errorf("second delete: expected 204, got %d", rr.Code)
	}
}

func TestAPI_CoinsAndNextSlot(t *testing.T) {
	srv, _ := testServer(t)
	createAction(t, srv, `{"title":"Standup","category":"work","startTime":"08:30","endTime":"09:15"}`)

	rr := do(t, srv, http.MethodGet, "/api/v1/days/"+day+"/coins", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	coins := decode[CoinsResponse](t, rr)
	if coins.CurrentHour == nil || *coins.CurrentHour != 10 {
		t.Errorf("currentHour = %v, want 10", coins.CurrentHour)
	}
	if len(coins.Coins) == 0 || coins.Coins[0].Hour != 8 || !coins.Coins[0].Occupied {
		t.Errorf("first coin = %+v, want occupied hour 8", coins.Coins)
	}
	if coins.UsedCoins != 1 {
		t.Errorf("usedCoins = %d, want 1", coins.UsedCoins)
	}

	rr = do(t, srv, http.MethodGet, "/api/v1/days/"+day+"/next-slot?duration=60", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	slot := decode[models.Slot](t, rr)
	if slot.StartTime != "10:00" || slot.EndTime != "11:00" {
		t.Errorf("slot = %+v, want 10:00-11:00", slot)
	}
}

func TestAPI_Stats(t *testing.T) {
	srv, _ := testServer(t)
	createAction(t, srv, `{"title":"Code","category":"work","startTime":"09:00","endTime":"12:00"}`)
	createAction(t, srv, `{"title":"Gym","category":"sport","startTime":"18:00","endTime":"19:00"}`)

	rr := do(t, srv, http.MethodGet, "/api/v1/stats/day/"+day, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	dayStats := decode[struct {
		TotalHours float64            `json:"totalHours"`
		Categories map[string]float64 `json:"categories"`
		Productive bool               `json:"productive"`
	}](t, rr)
	if dayStats.TotalHours != 4 || dayStats.Categories["work"] != 3 || !dayStats.Productive {
		t.Errorf("day stats = %+v", dayStats)
	}

	rr = do(t, srv, http.MethodGet, "/api/v1/stats/week/2025-01-13", "")
	week := decode[struct {
		Days []struct {
			Date       string  `json:"date"`
			TotalHours float64 `json:"totalHours"`
		} `json:"days"`
	}](t, rr)
	if len(week.Days) != 7 || week.Days[2].Date != day || week.Days[2].TotalHours != 4 {
		t.Errorf("week stats = %+v", week.Days)
	}

	rr = do(t, srv, http.MethodGet, "/api/v1/stats/month/2025/1", "")
	month := decode[struct {
		TotalHours float64 `json:"totalHours"`
	}](t, rr)
	if month.TotalHours != 4 {
		t.Errorf("month total = %v, want 4", month.TotalHours)
	}

	rr = do(t, srv, http.MethodGet, "/api/v1/stats/hourly/"+day, "")
	hourly := decode[struct {
		Hours []int `json:"hours"`
	}](t, rr)
	if len(hourly.Hours) != 24 || hourly.Hours[9] != 1 || hourly.Hours[18] != 1 || hourly.Hours[12] != 0 {
		t.Errorf("hourly = %v", hourly.Hours)
	}

	rr = do(t, srv, http.MethodGet, "/api/v1/stats/report/"+day, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("report: expected 200, got %d", rr.Code)
	}
	if got := decode[map[string]interface{}](t, rr)["topCategory"]; got != "work" {
		t.Errorf("topCategory = %v, want work", got)
	}
}

func TestAPI_LifeStats(t *testing.T) {
	srv, _ := testServer(t)

	rr := do(t, srv, http.MethodGet, "/api/v1/stats/life", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if got := decode[LifeResponse](t, rr); got.Stats != (stats.LifeStats{}) || got.LifeExpectancy != 80 {
		t.Errorf("life without birth date = %+v", got)
	}

	rr = do(t, srv, http.MethodPatch, "/api/v1/settings", `{"birthDate":"2000-01-15","lifeExpectancy":80}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("settings: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	rr = do(t, srv, http.MethodPatch, "/api/v1/settings", `{"birthDate":"15.01.2000"}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("bad birth date: expected 400, got %d", rr.Code)
	}
	rr = do(t, srv, http.MethodPatch, "/api/v1/settings", `{"lifeExpectancy":200}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("bad expectancy: expected 400, got %d", rr.Code)
	}

	rr = do(t, srv, http.MethodGet, "/api/v1/stats/life?year=2024", "")
	got := decode[LifeResponse](t, rr)
	if got.Stats.DaysLived != 9132 || got.Stats.CoinsRemaining != 20088*14 {
		t.Errorf("life stats = %+v", got.Stats)
	}
	if got.Week != 1304 || got.Year != 2024 || got.WeekProductive || got.YearProductive {
		t.Errorf("life response = %+v", got)
	}

	for _, q := range []string{"?week=-1", "?week=x", "?year=0"} {
		if rr := do(t, srv, http.MethodGet, "/api/v1/stats/life"+q, ""); rr.Code != http.StatusBadRequest {
			t.Errorf("GET /stats/life%s: expected 400, got %d", q, rr.Code)
		}
	}
}

func TestAPI_SettingsAndSuggestions(t *testing.T) {
	srv, _ := testServer(t)

	rr := do(t, srv, http.MethodPatch, "/api/v1/settings", `{"sleepStart":"23:00","sleepEnd":"07:00"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decode[struct {
		Settings       models.Settings `json:"settings"`
		AvailableCoins int             `json:"availableCoins"`
	}](t, rr)
	if resp.AvailableCoins != 16 || resp.Settings.SleepStart != "23:00" {
		t.Errorf("settings = %+v", resp)
	}

	createAction(t, srv, `{"title":"Morning run","category":"sport","startTime":"07:00","endTime":"08:00"}`)
	createAction(t, srv, `{"title":"Evening run","category":"sport","startTime":"19:00","endTime":"20:00"}`)

	rr = do(t, srv, http.MethodGet, "/api/v1/suggestions?q=RUN", "")
	got := decode[[]models.HistoryEntry](t, rr)
	if len(got) != 2 {
		t.Errorf("suggestions = %+v, want 2 entries", got)
	}

	rr = do(t, srv, http.MethodGet, "/api/v1/suggestions", "")
	if body := strings.TrimSpace(rr.Body.String()); body != "[]" {
		t.Errorf("empty query body = %s, want []", body)
	}
}

func TestAPI_CheckDay(t *testing.T) {
	srv, _ := testServer(t)
	createAction(t, srv, `{"title":"A","category":"work","startTime":"09:00","endTime":"10:00"}`)
	createAction(t, srv, `{"title":"B","category":"work","startTime":"09:30","endTime":"11:00"}`)

	rr := do(t, srv, http.MethodGet, "/api/v1/days/"+day+"/check", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "overlapping_actions") {
		t.Errorf("expected an overlap conflict, got %s", rr.Body.String())
	}
}

func TestAPI_Notes(t *testing.T) {
	srv, store := testServer(t)

	rr := do(t, srv, http.MethodPut, "/api/v1/days/"+day+"/notes", `{"notes":"slept badly"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if got := store.Day(day).Notes; got != "slept badly" {
		t.Errorf("notes = %q", got)
	}
}

func TestStatusFor(t *testing.T) {
	_, store := testServer(t)

	_, err := store.SaveAction(day, models.ActionPatch{ID: "nope"})
	if got := statusFor(err); got != http.StatusNotFound {
		t.Errorf("statusFor(not found) = %d", got)
	}
	_, err = store.GetDay("15-01-2025")
	if got := statusFor(err); got != http.StatusBadRequest {
		t.Errorf("statusFor(bad date) = %d", got)
	}
}

func TestHub_BroadcastsLedgerChanges(t *testing.T) {
	srv, _ := testServer(t)
	go srv.hub.Run()

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for srv.hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	a := createAction(t, srv, `{"title":"Call mom","category":"communication","startTime":"18:00","endTime":"18:30"}`)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev struct {
		ID   string        `json:"id"`
		Type string        `json:"type"`
		Data ledger.Change `json:"data"`
	}
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if ev.Type != string(ledger.ChangeActionCreated) || ev.Data.ActionID != a.ID || ev.Data.Date != day {
		t.Errorf("event = %+v", ev)
	}
	if len(ev.ID) != 26 {
		t.Errorf("event id %q is not a ULID", ev.ID)
	}
}

func TestHub_BroadcastWithoutClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Close()

	// should not block or panic
	for i := 0; i < 100; i++ {
		hub.Broadcast(NewEvent("test", i, fixedNow))
	}
	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d", hub.ClientCount())
	}
}
