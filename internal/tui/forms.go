package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/ktrou69-commits/energy-coins/internal/constants"
	"github.com/ktrou69-commits/energy-coins/internal/models"
	"github.com/ktrou69-commits/energy-coins/internal/utils"
)

func validateTime(s string) error {
	if _, err := utils.NormalizeTime(s); err != nil {
		return fmt.Errorf("invalid time format, use HH:MM")
	}
	return nil
}

// NewActionForm creates the add/edit form
func NewActionForm(fm *ActionFormModel) *huh.Form {
	categories := make([]huh.Option[models.Category], len(models.Categories))
	for i, c := range models.Categories {
		categories[i] = huh.NewOption(c.DisplayName(), c)
	}
	priorities := make([]huh.Option[models.Priority], len(models.Priorities))
	for i, p := range models.Priorities {
		priorities[i] = huh.NewOption(p.DisplayName(), p)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(&fm.Title).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("title cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Start (HH:MM)").
				Value(&fm.Start).
				Validate(validateTime),
			huh.NewInput().
				Title("End (HH:MM)").
				Value(&fm.End).
				Validate(func(s string) error {
					if err := validateTime(s); err != nil {
						return err
					}
					if utils.TimeToMinutes(s) <= utils.TimeToMinutes(fm.Start) {
						return fmt.Errorf("end must be after start")
					}
					return nil
				}),
			huh.NewSelect[models.Category]().
				Title("Category").
				Options(categories...).
				Value(&fm.Category),
			huh.NewSelect[models.Priority]().
				Title("Priority").
				Options(priorities...).
				Value(&fm.Priority),
			huh.NewText().
				Title("Note (optional)").
				Value(&fm.Note),
		),
	).WithTheme(huh.ThemeDracula())
}

// NewMoveForm asks for the hour an action should start at
func NewMoveForm(fm *MoveFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Start hour (0-23)").
				Value(&fm.Hour).
				Validate(func(s string) error {
					h, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil {
						return err
					}
					if h < 0 || h >= constants.HoursPerDay {
						return fmt.Errorf("hour must be 0-23")
					}
					return nil
				}),
		),
	).WithTheme(huh.ThemeDracula())
}

// patch turns the filled form into a ledger update
func (fm *ActionFormModel) patch(id string) (models.ActionPatch, error) {
	start, err := utils.NormalizeTime(fm.Start)
	if err != nil {
		return models.ActionPatch{}, err
	}
	end, err := utils.NormalizeTime(fm.End)
	if err != nil {
		return models.ActionPatch{}, err
	}
	title := strings.TrimSpace(fm.Title)
	note := strings.TrimSpace(fm.Note)
	cat, prio := fm.Category, fm.Priority
	return models.ActionPatch{
		ID:        id,
		Title:     &title,
		Category:  &cat,
		Priority:  &prio,
		StartTime: &start,
		EndTime:   &end,
		Note:      &note,
	}, nil
}
