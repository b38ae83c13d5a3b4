package timeline

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ktrou69-commits/energy-coins/internal/models"
)

var (
	hourStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(7)

	currentHourStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("205")).
				Bold(true).
				Width(7)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	freeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// Model renders one coin per active hour
type Model struct {
	viewport viewport.Model
	date     string
	coins    []models.CoinStatus
	current  int
}

func New(width, height int) Model {
	return Model{viewport: viewport.New(width, height), current: -1}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.coins) == 0 {
		return "No active hours. Check your sleep settings."
	}
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = height
	m.Render()
}

// SetDay replaces the coins shown. current is the hour to highlight, or -1.
func (m *Model) SetDay(date string, coins []models.CoinStatus, current int) {
	m.date = date
	m.coins = coins
	m.current = current
	m.Render()
}

func (m *Model) Render() {
	var b strings.Builder
	for _, c := range m.coins {
		b.WriteString(Line(c, c.Hour == m.current))
		b.WriteByte('\n')
	}
	m.viewport.SetContent(b.String())
}

// Line renders a single coin
func Line(c models.CoinStatus, current bool) string {
	hs := hourStyle
	marker := " "
	if current {
		hs = currentHourStyle
		marker = ">"
	}
	hour := hs.Render(fmt.Sprintf("%s%02d:00", marker, c.Hour))

	if !c.Occupied || c.Action == nil {
		return hour + " ○ " + freeStyle.Render("free")
	}
	coin := lipgloss.NewStyle().Foreground(lipgloss.Color(c.Category.Color())).Render("●")
	span := fmt.Sprintf("%s-%s", c.Action.StartTime, c.Action.EndTime)
	return fmt.Sprintf("%s %s %s %s", hour, coin, titleStyle.Render(c.Action.Title), freeStyle.Render(span+" "+c.Category.DisplayName()))
}
