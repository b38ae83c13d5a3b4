package models

import (
	"fmt"
	"strings"

	"github.com/ktrou69-commits/energy-coins/internal/errors"
)

type Category string

const (
	CategoryWork          Category = "work"
	CategoryRest          Category = "rest"
	CategorySport         Category = "sport"
	CategoryCommunication Category = "communication"
	CategoryLearn         Category = "learn"
	CategoryEntertainment Category = "entertainment"
	CategoryTasks         Category = "tasks"
	CategoryOther         Category = "other"
)

// Categories lists every category in display order
var Categories = []Category{
	CategoryWork,
	CategoryRest,
	CategorySport,
	CategoryCommunication,
	CategoryLearn,
	CategoryEntertainment,
	CategoryTasks,
	CategoryOther,
}

// CategoryInfo is the presentation metadata of a category
type CategoryInfo struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

var categoryInfo = map[Category]CategoryInfo{
	CategoryWork:          {Name: "Work", Color: "#3b82f6"},
	CategoryRest:          {Name: "Rest", Color: "#fbbf24"},
	CategorySport:         {Name: "Sport", Color: "#10b981"},
	CategoryCommunication: {Name: "Communication", Color: "#ec4899"},
	CategoryLearn:         {Name: "Learning", Color: "#8b5cf6"},
	CategoryEntertainment: {Name: "Entertainment", Color: "#f59e0b"},
	CategoryTasks:         {Name: "Chores", Color: "#ef4444"},
	CategoryOther:         {Name: "Other", Color: "#6b7280"},
}

// CategoryCatalog returns the key to metadata map written into JSON exports
func CategoryCatalog() map[Category]CategoryInfo {
	out := make(map[Category]CategoryInfo, len(categoryInfo))
	for k, v := range categoryInfo {
		out[k] = v
	}
	return out
}

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	_, ok := categoryInfo[c]
	return ok
}

// DisplayName returns the human readable name, or the raw key for unknown values
func (c Category) DisplayName() string {
	if info, ok := categoryInfo[c]; ok {
		return info.Name
	}
	return string(c)
}

// Color returns the hex color used by the renderers
func (c Category) Color() string {
	if info, ok := categoryInfo[c]; ok {
		return info.Color
	}
	return categoryInfo[CategoryOther].Color
}

// ParseCategory resolves a display name or a key to a Category.
// Display names are tried first, then keys.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(categoryInfo[c].Name, s) {
			return c, nil
		}
	}
	for _, c := range Categories {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%q: %w", s, errors.ErrUnknownCategory)
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists every priority from lowest to highest
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

var priorityNames = map[Priority]string{
	PriorityLow:    "Low",
	PriorityMedium: "Medium",
	PriorityHigh:   "High",
}

func (p Priority) Valid() bool {
	_, ok := priorityNames[p]
	return ok
}

func (p Priority) DisplayName() string {
	if name, ok := priorityNames[p]; ok {
		return name
	}
	return string(p)
}

// ParsePriority resolves a display name or a key to a Priority
func ParsePriority(s string) (Priority, error) {
	s = strings.TrimSpace(s)
	for _, p := range Priorities {
		if strings.EqualFold(priorityNames[p], s) || strings.EqualFold(string(p), s) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%q: %w", s, errors.ErrUnknownPriority)
}
