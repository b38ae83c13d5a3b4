// Package transfer moves the document in and out of CSV, JSON and iCalendar files.
package transfer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	apperrors "github.com/ktrou69-commits/energy-coins/internal/errors"
	"github.com/ktrou69-commits/energy-coins/internal/ledger"
	"github.com/ktrou69-commits/energy-coins/internal/logger"
	"github.com/ktrou69-commits/energy-coins/internal/models"
	"github.com/ktrou69-commits/energy-coins/internal/utils"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVHeader is the first row of every export
var CSVHeader = []string{"Date", "Title", "Category", "Start", "End", "Duration (hours)", "Priority", "Note"}

// minCSVFields is the number of leading columns a row needs to be importable
const minCSVFields = 6

// ErrEmptyCSV is returned when an import holds no data rows
var ErrEmptyCSV = errors.New("CSV file is empty or only holds a header")

// WriteCSV writes every action of data, dates ascending, and returns how many rows were written
func WriteCSV(w io.Writer, data *models.Data) (int, error) {
	if _, err := w.Write(utf8BOM); err != nil {
		return 0, err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return 0, err
	}

	dates := make([]string, 0, len(data.Days))
	for d := range data.Days {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	n := 0
	for _, date := range dates {
		for _, a := range data.Days[date].Actions {
			row := []string{
				date,
				a.Title,
				a.Category.DisplayName(),
				a.StartTime,
				a.EndTime,
				strconv.FormatFloat(a.Hours(), 'f', 2, 64),
				a.Priority.DisplayName(),
				a.Note,
			}
			if err := cw.Write(row); err != nil {
				return n, err
			}
			n++
		}
	}
	cw.Flush()
	return n, cw.Error()
}

// ReadCSV parses an export back into dated actions. Rows that cannot be mapped are
// skipped and counted; the duration column is ignored in favour of start and end.
func ReadCSV(r io.Reader) ([]ledger.DatedAction, int, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	var (
		out     []ledger.DatedAction
		skipped int
		line    int
	)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				logger.Debug("Skipping malformed CSV row", "line", perr.Line, "error", perr.Err)
				skipped++
				continue
			}
			return nil, skipped, fmt.Errorf("failed to read CSV: %w", err)
		}
		if line == 1 {
			continue // header
		}
		if blankRecord(rec) {
			continue
		}

		da, err := parseRecord(rec)
		if err != nil {
			logger.Debug("Skipping CSV row", "line", line, "error", err)
			skipped++
			continue
		}
		out = append(out, da)
	}

	if line <= 1 {
		return nil, 0, ErrEmptyCSV
	}
	return out, skipped, nil
}

func blankRecord(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func parseRecord(rec []string) (ledger.DatedAction, error) {
	if len(rec) < minCSVFields {
		return ledger.DatedAction{}, fmt.Errorf("expected at least %d fields, got %d", minCSVFields, len(rec))
	}
	field := func(i int) string {
		if i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}

	date := field(0)
	if !utils.IsValidDate(date) {
		return ledger.DatedAction{}, fmt.Errorf("date %q: %w", date, apperrors.ErrInvalidDateFormat)
	}
	category, err := models.ParseCategory(field(2))
	if err != nil {
		return ledger.DatedAction{}, err
	}
	priority := models.PriorityMedium
	if p := field(6); p != "" {
		if priority, err = models.ParsePriority(p); err != nil {
			return ledger.DatedAction{}, err
		}
	}

	a := models.Action{
		Title:     field(1),
		Category:  category,
		Priority:  priority,
		StartTime: field(3),
		EndTime:   field(4),
		Note:      field(7),
	}
	if err := a.Validate(); err != nil {
		return ledger.DatedAction{}, err
	}
	return ledger.DatedAction{Date: date, Action: a}, nil
}
