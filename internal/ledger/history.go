package ledger

import (
	"sort"
	"strings"

	"github.com/ktrou69-commits/energy-coins/internal/constants"
	"github.com/ktrou69-commits/energy-coins/internal/models"
)

// recordHistory bumps the entry matching title case-insensitively or appends a new one,
// then keeps the most used entries. The stored title and category of an existing entry
// are not changed.
func recordHistory(history []models.HistoryEntry, title string, category models.Category) []models.HistoryEntry {
	title = strings.TrimSpace(title)
	if title == "" {
		return history
	}

	out := make([]models.HistoryEntry, len(history), len(history)+1)
	copy(out, history)

	found := false
	for i := range out {
		if strings.EqualFold(out[i].Title, title) {
			out[i].Count++
			found = true
			break
		}
	}
	if !found {
		out = append(out, models.HistoryEntry{Title: title, Category: category, Count: 1})
	}
	return trimHistory(out)
}

func trimHistory(history []models.HistoryEntry) []models.HistoryEntry {
	sort.SliceStable(history, func(i, j int) bool { return history[i].Count > history[j].Count })
	if len(history) > constants.MaxHistoryEntries {
		history = history[:constants.MaxHistoryEntries]
	}
	return history
}

// mergeHistory folds the counts of incoming into existing, matching titles case-insensitively
func mergeHistory(existing, incoming []models.HistoryEntry) []models.HistoryEntry {
	out := make([]models.HistoryEntry, len(existing), len(existing)+len(incoming))
	copy(out, existing)

	for _, in := range incoming {
		if strings.TrimSpace(in.Title) == "" || in.Count <= 0 {
			continue
		}
		merged := false
		for i := range out {
			if strings.EqualFold(out[i].Title, in.Title) {
				out[i].Count += in.Count
				merged = true
				break
			}
		}
		if !merged {
			out = append(out, in)
		}
	}
	return trimHistory(out)
}
