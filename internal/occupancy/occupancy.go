// Package occupancy answers which hours of a day are taken by actions.
// Every function is a pure read over a day's actions in store order.
package occupancy

import (
	"github.com/ktrou69-commits/energy-coins/internal/constants"
	"github.com/ktrou69-commits/energy-coins/internal/models"
)

// CoinStatus reports whether hour is covered by any action. When several actions
// overlap the hour, the first one in insertion order wins.
func CoinStatus(actions []models.Action, hour int) models.CoinStatus {
	hourStart := hour * constants.MinutesPerHour
	hourEnd := hourStart + constants.MinutesPerHour

	for i := range actions {
		if actions[i].Overlaps(hourStart, hourEnd) {
			a := actions[i]
			return models.CoinStatus{Hour: hour, Occupied: true, Action: &a, Category: a.Category}
		}
	}
	return models.CoinStatus{Hour: hour}
}

// TouchedHours walks each action in 60 minute strides from its start and returns
// the hours visited, in visit order, one entry per stride
func TouchedHours(a models.Action) []int {
	var hours []int
	end := a.EndMinutes()
	for m := a.StartMinutes(); m < end; m += constants.MinutesPerHour {
		hours = append(hours, m/constants.MinutesPerHour)
	}
	return hours
}

// UsedCoins counts the distinct hours touched by any action. Overlapping actions
// share a coin, and a 90 minute action spanning two hours costs two.
func UsedCoins(actions []models.Action) int {
	used := make(map[int]struct{})
	for _, a := range actions {
		for _, h := range TouchedHours(a) {
			used[h] = struct{}{}
		}
	}
	return len(used)
}

// OccupiedMinutes returns the set of minutes covered by any action
func OccupiedMinutes(actions []models.Action) map[int]bool {
	occupied := make(map[int]bool)
	for _, a := range actions {
		for m := a.StartMinutes(); m < a.EndMinutes(); m++ {
			occupied[m] = true
		}
	}
	return occupied
}

// Timeline returns the status of each hour in hours, in the same order
func Timeline(actions []models.Action, hours []int) []models.CoinStatus {
	out := make([]models.CoinStatus, 0, len(hours))
	for _, h := range hours {
		out = append(out, CoinStatus(actions, h))
	}
	return out
}
