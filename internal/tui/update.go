package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/ktrou69-commits/energy-coins/internal/models"
	"github.com/ktrou69-commits/energy-coins/internal/tui/components/actionlist"
	"github.com/ktrou69-commits/energy-coins/internal/utils"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		h, v := docStyle.GetFrameSize()
		// tabs, header, status and help
		m.timeline.SetSize(msg.Width-h, msg.Height-v-6)
		m.actionList.SetSize(msg.Width-h, msg.Height-v-6)
		return m, nil

	case tickMsg:
		m.reload()
		return m, tick()

	case actionlist.AddActionMsg:
		return m, m.openActionForm(nil)
	case actionlist.EditActionMsg:
		a := msg.Action
		return m, m.openActionForm(&a)
	case actionlist.DeleteActionMsg:
		m.targetID = msg.ID
		m.previousState = m.state
		m.state = StateConfirmDelete
		return m, nil
	case actionlist.MoveActionMsg:
		return m, m.openMoveForm(msg.Action)
	}

	switch m.state {
	case StateEditing:
		return m, m.handleEditing(msg)
	case StateMoving:
		return m, m.handleMoving(msg)
	case StateConfirmDelete:
		m.handleConfirmDelete(msg)
		return m, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok && !m.filtering() {
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state - 1 + tabCount) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.PrevDay):
			m.shiftDay(-1)
			return m, nil
		case key.Matches(msg, m.keys.NextDay):
			m.shiftDay(1)
			return m, nil
		case key.Matches(msg, m.keys.Today):
			m.date = m.today()
			m.reload()
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Check):
			m.status = m.checkStatus()
			return m, nil
		case key.Matches(msg, m.keys.Add) && m.state != StateActions:
			return m, m.openActionForm(nil)
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case StateDay:
		m.timeline, cmd = m.timeline.Update(msg)
	case StateActions:
		m.actionList, cmd = m.actionList.Update(msg)
	}
	return m, cmd
}

func (m Model) filtering() bool {
	return m.state == StateActions && m.actionList.Filtering()
}

func (m *Model) shiftDay(n int) {
	date, err := utils.AddDays(m.date, n)
	if err != nil {
		m.status = dangerStyle.Render(err.Error())
		return
	}
	m.date = date
	m.status = ""
	m.reload()
}

func (m *Model) checkStatus() string {
	result := m.validator.ValidateDay(m.date, m.day, m.store.Settings())
	if !result.HasConflicts() {
		return "✓ No conflicts"
	}
	lines := make([]string, 0, len(result.Conflicts))
	for _, c := range result.Conflicts {
		lines = append(lines, c.Description)
	}
	return warningStyle.Render(strings.Join(lines, "\n"))
}

// openActionForm starts the add form, or the edit form when a is set
func (m *Model) openActionForm(a *models.Action) tea.Cmd {
	fm := &ActionFormModel{Category: models.CategoryOther, Priority: models.PriorityMedium}
	m.editingID = ""
	if a != nil {
		m.editingID = a.ID
		fm.Title, fm.Start, fm.End = a.Title, a.StartTime, a.EndTime
		fm.Category, fm.Priority, fm.Note = a.Category, a.Priority, a.Note
	} else {
		slot := m.scheduler.NextAvailableSlot(m.day.Actions, m.store.Settings(), m.duration)
		fm.Start, fm.End = slot.StartTime, slot.EndTime
	}
	m.actionForm = fm
	m.form = NewActionForm(fm)
	m.previousState = m.state
	m.state = StateEditing
	return m.form.Init()
}

func (m *Model) openMoveForm(a models.Action) tea.Cmd {
	m.targetID = a.ID
	m.moveForm = &MoveFormModel{Hour: strconv.Itoa(utils.HourOf(a.StartTime))}
	m.form = NewMoveForm(m.moveForm)
	m.previousState = m.state
	m.state = StateMoving
	return m.form.Init()
}

// updateForm feeds msg to the open form and reports its state
func (m *Model) updateForm(msg tea.Msg) (huh.FormState, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		return huh.StateAborted, nil
	}
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	return m.form.State, cmd
}

func (m *Model) closeForm() {
	m.form = nil
	m.state = m.previousState
}

func (m *Model) handleEditing(msg tea.Msg) tea.Cmd {
	state, cmd := m.updateForm(msg)
	switch state {
	case huh.StateCompleted:
		m.saveActionForm()
		m.closeForm()
	case huh.StateAborted:
		m.closeForm()
		return nil
	}
	return cmd
}

func (m *Model) saveActionForm() {
	patch, err := m.actionForm.patch(m.editingID)
	if err != nil {
		m.status = dangerStyle.Render(err.Error())
		return
	}
	saved, err := m.store.SaveAction(m.date, patch)
	if err != nil {
		m.status = dangerStyle.Render(err.Error())
		return
	}
	m.status = "✓ Saved " + saved.Title
	m.reload()
}

func (m *Model) handleMoving(msg tea.Msg) tea.Cmd {
	state, cmd := m.updateForm(msg)
	switch state {
	case huh.StateCompleted:
		m.moveTarget()
		m.closeForm()
	case huh.StateAborted:
		m.closeForm()
		return nil
	}
	return cmd
}

func (m *Model) moveTarget() {
	hour, err := strconv.Atoi(strings.TrimSpace(m.moveForm.Hour))
	if err != nil {
		m.status = dangerStyle.Render(err.Error())
		return
	}
	moved, err := m.store.MoveAction(m.date, m.targetID, hour)
	if err != nil {
		m.status = dangerStyle.Render(err.Error())
		return
	}
	m.status = "✓ Moved " + moved.Title + " to " + moved.StartTime
	m.reload()
}

func (m *Model) handleConfirmDelete(msg tea.Msg) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return
	}
	switch km.String() {
	case "y", "Y":
		if err := m.store.DeleteAction(m.date, m.targetID); err != nil {
			m.status = dangerStyle.Render(err.Error())
		} else {
			m.status = "✓ Deleted"
		}
		m.targetID = ""
		m.state = m.previousState
		m.reload()
	case "n", "N", "esc":
		m.targetID = ""
		m.state = m.previousState
	}
}
