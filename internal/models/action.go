package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/ktrou69-commits/energy-coins/internal/errors"
	"github.com/ktrou69-commits/energy-coins/internal/utils"
)

// Action is a titled time block within a single day
type Action struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Category  Category  `json:"category"`
	Priority  Priority  `json:"priority"`
	StartTime string    `json:"startTime"` // HH:MM
	EndTime   string    `json:"endTime"`   // HH:MM
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// StartMinutes returns the start as minutes after midnight
func (a Action) StartMinutes() int { return utils.TimeToMinutes(a.StartTime) }

// EndMinutes returns the end as minutes after midnight
func (a Action) EndMinutes() int { return utils.TimeToMinutes(a.EndTime) }

// DurationMinutes returns end - start
func (a Action) DurationMinutes() int { return a.EndMinutes() - a.StartMinutes() }

// Hours returns the duration in fractional hours
func (a Action) Hours() float64 { return float64(a.DurationMinutes()) / 60 }

// Overlaps reports whether the half-open interval [start, end) intersects [from, to)
func (a Action) Overlaps(from, to int) bool {
	return a.StartMinutes() < to && a.EndMinutes() > from
}

// Validate checks the fields every stored action must satisfy
func (a Action) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return fmt.Errorf("%w: title is required", errors.ErrInvalidAction)
	}
	if !a.Category.Valid() {
		return fmt.Errorf("%w: %q: %w", errors.ErrInvalidAction, a.Category, errors.ErrUnknownCategory)
	}
	if !a.Priority.Valid() {
		return fmt.Errorf("%w: %q: %w", errors.ErrInvalidAction, a.Priority, errors.ErrUnknownPriority)
	}
	start, err := utils.ParseTimeOfDay(a.StartTime)
	if err != nil {
		return fmt.Errorf("%w: start time: %w", errors.ErrInvalidAction, err)
	}
	end, err := utils.ParseTimeOfDay(a.EndTime)
	if err != nil {
		return fmt.Errorf("%w: end time: %w", errors.ErrInvalidAction, err)
	}
	if start >= end {
		return fmt.Errorf("%w: start %s must be before end %s", errors.ErrInvalidAction, a.StartTime, a.EndTime)
	}
	return nil
}

// ActionPatch is a partial update. Nil fields are left untouched.
type ActionPatch struct {
	ID        string    `json:"id,omitempty"`
	Title     *string   `json:"title,omitempty"`
	Category  *Category `json:"category,omitempty"`
	Priority  *Priority `json:"priority,omitempty"`
	StartTime *string   `json:"startTime,omitempty"`
	EndTime   *string   `json:"endTime,omitempty"`
	Note      *string   `json:"note,omitempty"`
}

// PatchFromAction builds a patch that carries every field of a
func PatchFromAction(a Action) ActionPatch {
	return ActionPatch{
		ID:        a.ID,
		Title:     &a.Title,
		Category:  &a.Category,
		Priority:  &a.Priority,
		StartTime: &a.StartTime,
		EndTime:   &a.EndTime,
		Note:      &a.Note,
	}
}

// Apply shallow-merges the patch over a. ID and CreatedAt are never changed.
func (p ActionPatch) Apply(a *Action) {
	if p.Title != nil {
		a.Title = strings.TrimSpace(*p.Title)
	}
	if p.Category != nil {
		a.Category = *p.Category
	}
	if p.Priority != nil {
		a.Priority = *p.Priority
	}
	if p.StartTime != nil {
		a.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		a.EndTime = *p.EndTime
	}
	if p.Note != nil {
		a.Note = *p.Note
	}
}

// Day holds the actions of one calendar date in insertion order
type Day struct {
	Actions []Action `json:"actions"`
	Notes   string   `json:"notes"`
}

// Find returns the index of the action with id, or -1
func (d *Day) Find(id string) int {
	for i := range d.Actions {
		if d.Actions[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the day
func (d Day) Clone() Day {
	out := Day{Notes: d.Notes, Actions: make([]Action, len(d.Actions))}
	copy(out.Actions, d.Actions)
	return out
}

// Slot is a proposed time range
type Slot struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// CoinStatus describes the occupancy of one hour
type CoinStatus struct {
	Hour     int      `json:"hour"`
	Occupied bool     `json:"occupied"`
	Action   *Action  `json:"action,omitempty"`
	Category Category `json:"category,omitempty"`
}
