package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ktrou69-commits/energy-coins/internal/budget"
	"github.com/ktrou69-commits/energy-coins/internal/models"
	"github.com/ktrou69-commits/energy-coins/internal/occupancy"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateDay:
		content = docStyle.Render(m.timeline.View())
	case StateActions:
		content = docStyle.Render(m.actionList.View())
	case StateStats:
		content = docStyle.Render(m.viewStats())
	case StateEditing, StateMoving:
		content = docStyle.Render(m.form.View())
	case StateConfirmDelete:
		content = m.viewConfirmDelete()
	}

	parts := []string{m.viewTabs(), m.viewHeader(), content}
	if m.status != "" {
		parts = append(parts, docStyle.Render(m.status))
	}
	parts = append(parts, m.help.View(m))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, title := range []string{"Day", "Actions", "Stats"} {
		if m.state == SessionState(i) || (m.state >= tabCount && m.previousState == SessionState(i)) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// viewHeader shows the date and the coin balance
func (m Model) viewHeader() string {
	settings := m.store.Settings()
	available := budget.AvailableCoins(settings)
	used := occupancy.UsedCoins(m.day.Actions)

	line := fmt.Sprintf("%s  %d/%d coins used", m.date, used, available)
	if m.date == m.today() {
		left := budget.SleepCountdown(settings, m.localNow())
		line += fmt.Sprintf("  %dh%02dm until sleep", int(left.Hours()), int(left.Minutes())%60)
	}
	out := headerStyle.Render(line)
	if m.validationWarning != "" {
		out += " " + warningStyle.Render(m.validationWarning)
	}
	if m.day.Notes != "" {
		out += "\n" + mutedStyle.Render("  "+m.day.Notes)
	}
	return out
}

func (m Model) viewStats() string {
	hours := m.stats.CategoryStats(m.date)
	total := hours.Total()
	if total == 0 {
		return "No time tracked on this day."
	}

	var b strings.Builder
	for _, c := range models.Categories {
		h := hours[c]
		if h == 0 {
			continue
		}
		bar := strings.Repeat("█", int(h*2+0.5))
		fmt.Fprintf(&b, "%-14s %s %.1fh (%.0f%%)\n", c.DisplayName(), categoryStyle(c).Render(bar), h, h/total*100)
	}

	report := m.stats.SummaryReport(m.date)
	fmt.Fprintf(&b, "\nTotal %.1fh, %.0f%% of available coins\n", total, report.Utilization)
	for _, in := range report.Insights {
		fmt.Fprintf(&b, "• %s: %s\n", in.Title, in.Message)
	}
	return b.String()
}

func (m Model) viewConfirmDelete() string {
	title := "this action"
	for _, a := range m.day.Actions {
		if a.ID == m.targetID {
			title = fmt.Sprintf("%q", a.Title)
		}
	}
	return lipgloss.Place(m.width, m.height-6,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(fmt.Sprintf("Delete %s?", title)),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
