// Package recurrence expands RFC 5545 recurrence rules into plan dates.
package recurrence

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/ktrou69-commits/energy-coins/internal/utils"
)

const (
	// DefaultHorizonDays bounds open-ended rules
	DefaultHorizonDays = 90
	// MaxOccurrences caps a single expansion
	MaxOccurrences = 366
)

var ErrEmptyRule = errors.New("recurrence rule is empty")

// Options controls an expansion
type Options struct {
	// Until is the last date (inclusive) considered. Zero means start + DefaultHorizonDays.
	Until time.Time
	// Max caps the number of dates. Zero means MaxOccurrences.
	Max int
}

// Result is the outcome of an expansion
type Result struct {
	Dates     []string
	Truncated bool
}

// Parse parses rule with DTSTART set to the given start date. The RRULE: prefix is optional.
func Parse(rule string, start time.Time) (*rrule.RRule, error) {
	rule = strings.TrimSpace(rule)
	rule = strings.TrimPrefix(strings.TrimPrefix(rule, "RRULE:"), "rrule:")
	if rule == "" {
		return nil, ErrEmptyRule
	}
	r, err := rrule.StrToRRule(rule)
	if err != nil {
		return nil, fmt.Errorf("invalid recurrence rule %q: %w", rule, err)
	}
	r.DTStart(start)
	return r, nil
}

// Expand returns the dates, from start on, on which rule occurs
func Expand(rule string, start string, opts Options) (Result, error) {
	var res Result

	from, err := utils.ParseDate(start)
	if err != nil {
		return res, err
	}
	r, err := Parse(rule, from)
	if err != nil {
		return res, err
	}

	until := opts.Until
	if until.IsZero() {
		until = from.AddDate(0, 0, DefaultHorizonDays)
	}
	if until.Before(from) {
		return res, fmt.Errorf("until %s is before start %s", utils.FormatDate(until), start)
	}
	limit := opts.Max
	if limit <= 0 {
		limit = MaxOccurrences
	}

	// End of the until day so that inclusive Between keeps it
	end := time.Date(until.Year(), until.Month(), until.Day(), 23, 59, 59, 0, from.Location())
	occ := r.Between(from, end, true)
	if len(occ) > limit {
		occ = occ[:limit]
		res.Truncated = true
	}

	res.Dates = make([]string, 0, len(occ))
	for _, t := range occ {
		res.Dates = append(res.Dates, utils.FormatDate(t))
	}
	return res, nil
}
