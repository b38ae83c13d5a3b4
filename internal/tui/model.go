package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/ktrou69-commits/energy-coins/internal/budget"
	"github.com/ktrou69-commits/energy-coins/internal/constants"
	"github.com/ktrou69-commits/energy-coins/internal/ledger"
	"github.com/ktrou69-commits/energy-coins/internal/models"
	"github.com/ktrou69-commits/energy-coins/internal/occupancy"
	"github.com/ktrou69-commits/energy-coins/internal/scheduler"
	"github.com/ktrou69-commits/energy-coins/internal/stats"
	"github.com/ktrou69-commits/energy-coins/internal/tui/components/actionlist"
	"github.com/ktrou69-commits/energy-coins/internal/tui/components/timeline"
	"github.com/ktrou69-commits/energy-coins/internal/utils"
	"github.com/ktrou69-commits/energy-coins/internal/validation"
)

type SessionState int

const (
	StateDay SessionState = iota
	StateActions
	StateStats
	StateEditing
	StateMoving
	StateConfirmDelete
)

// tabCount is the number of states reachable with tab
const tabCount = 3

type ActionFormModel struct {
	Title    string
	Start    string
	End      string
	Category models.Category
	Priority models.Priority
	Note     string
}

type MoveFormModel struct {
	Hour string
}

type Options struct {
	Location        *time.Location
	DefaultDuration int
	Now             func() time.Time
}

type tickMsg time.Time

type Model struct {
	store     *ledger.Store
	scheduler *scheduler.Scheduler
	stats     *stats.Aggregator
	validator *validation.Validator
	loc       *time.Location
	now       func() time.Time
	duration  int

	date          string
	day           models.Day
	state         SessionState
	previousState SessionState
	keys          KeyMap
	help          help.Model
	timeline      timeline.Model
	actionList    actionlist.Model

	form       *huh.Form
	actionForm *ActionFormModel
	moveForm   *MoveFormModel
	editingID  string
	targetID   string

	status            string
	validationWarning string
	quitting          bool
	width             int
	height            int
}

func NewModel(store *ledger.Store, sched *scheduler.Scheduler, opts Options) Model {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.DefaultDuration <= 0 {
		opts.DefaultDuration = constants.DefaultSlotDurationMin
	}

	m := Model{
		store:      store,
		scheduler:  sched,
		stats:      stats.New(store),
		validator:  validation.New(),
		loc:        opts.Location,
		now:        opts.Now,
		duration:   opts.DefaultDuration,
		state:      StateDay,
		keys:       DefaultKeyMap(),
		help:       help.New(),
		timeline:   timeline.New(0, 0),
		actionList: actionlist.New(nil, 0, 0),
	}
	m.date = m.today()
	m.reload()
	return m
}

func (m Model) localNow() time.Time {
	return m.now().In(m.loc)
}

func (m Model) today() string {
	return utils.Today(m.localNow())
}

// reload rereads the selected day and refreshes every view of it
func (m *Model) reload() {
	day, err := m.store.GetDay(m.date)
	if err != nil {
		m.status = dangerStyle.Render(err.Error())
		return
	}
	m.day = day

	settings := m.store.Settings()
	coins := occupancy.Timeline(day.Actions, scheduler.ActiveHoursFor(settings))
	current := -1
	now := m.localNow()
	for _, c := range coins {
		if budget.IsCurrentHour(m.date, c.Hour, now) {
			current = c.Hour
		}
	}
	m.timeline.SetDay(m.date, coins, current)
	m.actionList.SetActions(day.Actions)
	m.updateValidationStatus()
}

// updateValidationStatus runs validation for the selected day
func (m *Model) updateValidationStatus() {
	result := m.validator.ValidateDay(m.date, m.day, m.store.Settings())
	if result.HasConflicts() {
		m.validationWarning = fmt.Sprintf("⚠ %d conflict(s)", len(result.Conflicts))
	} else {
		m.validationWarning = ""
	}
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.PrevDay, m.keys.NextDay, m.keys.Add}
	if m.state == StateActions {
		k := actionlist.DefaultKeyMap()
		keys = append(keys, k.Edit, k.Delete, k.Move)
	}
	return append(keys, m.keys.Quit, m.keys.Help)
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}
	days := []key.Binding{m.keys.PrevDay, m.keys.NextDay, m.keys.Today, m.keys.Check}
	k := actionlist.DefaultKeyMap()
	actions := []key.Binding{m.keys.Add, k.Edit, k.Delete, k.Move}
	return [][]key.Binding{global, days, actions}
}

func tick() tea.Cmd {
	return tea.Tick(time.Minute, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}
