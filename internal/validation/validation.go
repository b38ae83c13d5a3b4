package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ktrou69-commits/energy-coins/internal/budget"
	"github.com/ktrou69-commits/energy-coins/internal/constants"
	"github.com/ktrou69-commits/energy-coins/internal/models"
	"github.com/ktrou69-commits/energy-coins/internal/occupancy"
	"github.com/ktrou69-commits/energy-coins/internal/utils"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictOverlappingActions ConflictType = "overlapping_actions"
	ConflictExceedsBudget      ConflictType = "exceeds_budget"
	ConflictOvercommitted      ConflictType = "overcommitted"
	ConflictDuringSleep        ConflictType = "during_sleep"
	ConflictDuplicateID        ConflictType = "duplicate_id"
	ConflictInvalidAction      ConflictType = "invalid_action"
	ConflictInvalidDateTime    ConflictType = "invalid_datetime"
)

// overcommitRatio is the share of the coin budget above which a day is flagged
const overcommitRatio = 0.8

// Conflict represents a detected problem in a day
type Conflict struct {
	Type        ConflictType `json:"type"`
	Description string       `json:"description"`
	Date        string       `json:"date,omitempty"`
	Items       []string     `json:"items,omitempty"`     // Action titles involved
	TimeRange   string       `json:"timeRange,omitempty"` // Human-readable time range (if applicable)
	ActionIDs   []string     `json:"actionIds,omitempty"`
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict `json:"conflicts"`
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// Merge appends the conflicts of other
func (vr *ValidationResult) Merge(other ValidationResult) {
	vr.Conflicts = append(vr.Conflicts, other.Conflicts...)
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, conflict := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", conflict.Description)
	}
	return b.String()
}

// Validator checks days for conflicts
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// ValidateDay checks one day against its own actions and the coin budget of settings
func (v *Validator) ValidateDay(date string, day models.Day, settings models.Settings) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	t, err := utils.ParseDate(date)
	if err != nil {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictInvalidDateTime,
			Description: fmt.Sprintf("Invalid date: %s", date),
			Date:        date,
		})
		return result // Can't continue validation without valid date
	}
	label := fmt.Sprintf("%s (%s)", date, t.Format("Mon"))

	// Duplicate IDs break updates and deletes, which address the first match only
	ids := make(map[string][]string)
	var idOrder []string
	for _, a := range day.Actions {
		if _, ok := ids[a.ID]; !ok {
			idOrder = append(idOrder, a.ID)
		}
		ids[a.ID] = append(ids[a.ID], a.Title)
	}
	for _, id := range idOrder {
		if titles := ids[id]; len(titles) > 1 {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDuplicateID,
				Description: fmt.Sprintf("%s: %d actions share ID %q", label, len(titles), id),
				Date:        date,
				Items:       titles,
				ActionIDs:   []string{id},
			})
		}
	}

	var valid []models.Action
	for _, a := range day.Actions {
		if err := a.Validate(); err != nil {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidAction,
				Description: fmt.Sprintf("%s: %q %v", label, a.Title, err),
				Date:        date,
				Items:       []string{a.Title},
				TimeRange:   fmt.Sprintf("%s-%s", a.StartTime, a.EndTime),
				ActionIDs:   []string{a.ID},
			})
			continue
		}
		valid = append(valid, a)
	}

	// O(n²) complexity - acceptable for the handful of actions in a day
	sorted := make([]models.Action, len(valid))
	copy(sorted, valid)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartMinutes() < sorted[j].StartMinutes()
	})
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			a1, a2 := sorted[i], sorted[j]
			if !a1.Overlaps(a2.StartMinutes(), a2.EndMinutes()) {
				continue
			}
			result.Conflicts = append(result.Conflicts, Conflict{
				Type: ConflictOverlappingActions,
				Description: fmt.Sprintf("%s: %s-%s %q overlaps %s-%s %q",
					label, a1.StartTime, a1.EndTime, a1.Title, a2.StartTime, a2.EndTime, a2.Title),
				Date:      date,
				Items:     []string{a1.Title, a2.Title},
				TimeRange: fmt.Sprintf("%s-%s", a1.StartTime, a1.EndTime),
				ActionIDs: []string{a1.ID, a2.ID},
			})
		}
	}

	if err := settings.Validate(); err != nil {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictInvalidDateTime,
			Description: fmt.Sprintf("Invalid sleep settings: %v", err),
		})
		return result // Can't check the budget
	}

	for _, a := range valid {
		if duringSleep(a, settings) {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type: ConflictDuringSleep,
				Description: fmt.Sprintf("%s: %q (%s-%s) falls in the sleep window %s-%s",
					label, a.Title, a.StartTime, a.EndTime, settings.SleepStart, settings.SleepEnd),
				Date:      date,
				Items:     []string{a.Title},
				TimeRange: fmt.Sprintf("%s-%s", a.StartTime, a.EndTime),
				ActionIDs: []string{a.ID},
			})
		}
	}

	used := occupancy.UsedCoins(valid)
	available := budget.AvailableCoins(settings)
	switch {
	case used > available:
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictExceedsBudget,
			Description: fmt.Sprintf("%s: %d coins used exceeds the budget of %d", label, used, available),
			Date:        date,
		})
	case float64(used) > float64(available)*overcommitRatio:
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictOvercommitted,
			Description: fmt.Sprintf("%s: %d of %d coins used (>80%% capacity)", label, used, available),
			Date:        date,
		})
	}

	return result
}

// ValidateData checks every stored day in date order
func (v *Validator) ValidateData(data *models.Data) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}
	dates := make([]string, 0, len(data.Days))
	for d := range data.Days {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	for _, d := range dates {
		result.Merge(v.ValidateDay(d, data.Days[d], data.Settings))
	}
	return result
}

// duringSleep reports whether a overlaps the sleep window, which may wrap past midnight
func duringSleep(a models.Action, settings models.Settings) bool {
	start := utils.TimeToMinutes(settings.SleepStart)
	end := utils.TimeToMinutes(settings.SleepEnd)
	if start == end {
		return false
	}
	if start < end {
		return a.Overlaps(start, end)
	}
	return a.Overlaps(start, constants.MinutesPerDay) || a.Overlaps(0, end)
}
