package actionlist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ktrou69-commits/energy-coins/internal/models"
)

type AddActionMsg struct{}

type EditActionMsg struct {
	Action models.Action
}

type DeleteActionMsg struct {
	ID string
}

type MoveActionMsg struct {
	Action models.Action
}

type Item struct {
	Action models.Action
}

func (i Item) Title() string { return i.Action.Title }
func (i Item) Description() string {
	desc := fmt.Sprintf("%s-%s | %s | %s", i.Action.StartTime, i.Action.EndTime,
		i.Action.Category.DisplayName(), i.Action.Priority.DisplayName())
	if i.Action.Note != "" {
		desc += " | " + i.Action.Note
	}
	return desc
}
func (i Item) FilterValue() string { return i.Action.Title }

type KeyMap struct {
	Add    key.Binding
	Edit   key.Binding
	Delete key.Binding
	Move   key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e", "enter"),
			key.WithHelp("e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Move: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "move"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func items(actions []models.Action) []list.Item {
	out := make([]list.Item, len(actions))
	for i, a := range actions {
		out[i] = Item{Action: a}
	}
	return out
}

func New(actions []models.Action, width, height int) Model {
	l := list.New(items(actions), list.NewDefaultDelegate(), width, height)
	l.Title = "Actions"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Edit, keys.Delete, keys.Move}
	}
	l.AdditionalFullHelpKeys = l.AdditionalShortHelpKeys

	return Model{list: l, keys: keys}
}

func (m *Model) SetActions(actions []models.Action) {
	m.list.SetItems(items(actions))
}

// Selected returns the highlighted action
func (m Model) Selected() (models.Action, bool) {
	i, ok := m.list.SelectedItem().(Item)
	return i.Action, ok
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddActionMsg{} }
		case key.Matches(msg, m.keys.Edit):
			if a, ok := m.Selected(); ok {
				return m, func() tea.Msg { return EditActionMsg{Action: a} }
			}
		case key.Matches(msg, m.keys.Delete):
			if a, ok := m.Selected(); ok {
				return m, func() tea.Msg { return DeleteActionMsg{ID: a.ID} }
			}
		case key.Matches(msg, m.keys.Move):
			if a, ok := m.Selected(); ok {
				return m, func() tea.Msg { return MoveActionMsg{Action: a} }
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  Nothing planned for this day.\n  Press 'a' to add an action."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}

// Filtering reports whether the filter input has focus
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}
