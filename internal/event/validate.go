package event

import (
	"errors"
	"strings"

	"meetings-backend/internal/models"
	"meetings-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func fieldError(field, msg string) *fiber.Error {
	return fiber.NewError(fiber.StatusBadRequest, field+": "+msg)
}

func requireField(field, value string) *fiber.Error {
	if strings.TrimSpace(value) == "" {
		return fieldError(field, validation.MandatoryMsg)
	}
	return nil
}

func normalizeEvent(ev *models.Event) {
	ev.Title = validation.NormalizeText(ev.Title)
	ev.Headquarters = validation.NormalizeText(ev.Headquarters)
	ev.Description = validation.NormalizeText(ev.Description)
	ev.Date = strings.TrimSpace(ev.Date)
	ev.Time = strings.TrimSpace(ev.Time)
	ev.Poster = strings.TrimSpace(ev.Poster)
}

// validateEvent ejecuta las comprobaciones en orden; el primer fallo aborta
// la escritura completa.
func validateEvent(db *gorm.DB, ev *models.Event, minYear int) *fiber.Error {
	checks := []func() *fiber.Error{
		func() *fiber.Error { return requireField("title", ev.Title) },
		func() *fiber.Error { return requireField("date", ev.Date) },
		func() *fiber.Error { return requireField("time", ev.Time) },
		func() *fiber.Error { return requireField("headquarters", ev.Headquarters) },
		func() *fiber.Error { return requireField("description", ev.Description) },
		func() *fiber.Error {
			if !validation.IsFormattedDate(ev.Date) {
				return fieldError("date", validation.DateFormatMsg)
			}
			return nil
		},
		func() *fiber.Error {
			if !validation.IsValidDateYear(ev.Date, minYear) {
				return fieldError("date", validation.InvalidYearMsg(minYear))
			}
			return nil
		},
		func() *fiber.Error {
			if !validation.IsValidDate(ev.Date) {
				return fieldError("date", validation.InvalidDateMsg)
			}
			return nil
		},
		func() *fiber.Error {
			if !validation.IsFormattedTime(ev.Time) {
				return fieldError("time", validation.TimeFormatMsg)
			}
			return nil
		},
		func() *fiber.Error {
			if !validation.IsValidTime(ev.Time) {
				return fieldError("time", validation.InvalidTimeMsg)
			}
			return nil
		},
		func() *fiber.Error { return uniqueEventField(db, ev, "title", ev.Title) },
		func() *fiber.Error {
			if ev.Poster == "" {
				return nil
			}
			return uniqueEventField(db, ev, "poster", ev.Poster)
		},
	}

	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func uniqueEventField(db *gorm.DB, ev *models.Event, field, value string) *fiber.Error {
	var existing models.Event
	err := db.Where(field+" = ? AND id <> ?", value, ev.ID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError,
			"Se ha producido un error al comprobar la unicidad del campo "+field)
	}
	return fieldError(field, validation.UniqueMsg)
}
