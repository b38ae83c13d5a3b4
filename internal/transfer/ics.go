package transfer

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/ktrou69-commits/energy-coins/internal/constants"
	"github.com/ktrou69-commits/energy-coins/internal/models"
	"github.com/ktrou69-commits/energy-coins/internal/utils"
)

// icsPriority maps priorities onto the RFC 5545 1 (highest) to 9 (lowest) scale
var icsPriority = map[models.Priority]int{
	models.PriorityHigh:   1,
	models.PriorityMedium: 5,
	models.PriorityLow:    9,
}

// WriteICS writes every action as a VEVENT. Times are interpreted in loc.
// Actions whose date or times do not parse are left out; the number written is returned.
func WriteICS(w io.Writer, data *models.Data, loc *time.Location, now time.Time) (int, error) {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(fmt.Sprintf("-//%s//%s//EN", constants.AppName, constants.Version))
	cal.SetXWRCalName("Energy coins")

	dates := make([]string, 0, len(data.Days))
	for d := range data.Days {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	n := 0
	for _, date := range dates {
		for _, a := range data.Days[date].Actions {
			start, err := utils.CombineDateAndTime(date, a.StartTime, loc)
			if err != nil {
				continue
			}
			end, err := utils.CombineDateAndTime(date, a.EndTime, loc)
			if err != nil || !end.After(start) {
				continue
			}

			ev := cal.AddEvent(fmt.Sprintf("%s@%s", a.ID, constants.AppName))
			ev.SetDtStampTime(now.UTC())
			if !a.CreatedAt.IsZero() {
				ev.SetCreatedTime(a.CreatedAt.UTC())
			}
			ev.SetStartAt(start.UTC())
			ev.SetEndAt(end.UTC())
			ev.SetSummary(a.Title)
			if a.Note != "" {
				ev.SetDescription(a.Note)
			}
			ev.SetProperty(ical.ComponentPropertyCategories, a.Category.DisplayName())
			if p, ok := icsPriority[a.Priority]; ok {
				ev.SetProperty(ical.ComponentPropertyPriority, strconv.Itoa(p))
			}
			n++
		}
	}

	if err := cal.SerializeTo(w); err != nil {
		return n, fmt.Errorf("failed to write calendar: %w", err)
	}
	return n, nil
}
