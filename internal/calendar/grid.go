// Package calendar builds the month grid backing the appointment view.
package calendar

import (
	"strings"
	"time"

	"console-gateway/internal/models"
)

const isoDate = "2006-01-02"

// Day is one cell of the month grid.
type Day struct {
	Date         time.Time            `json:"date"`
	InMonth      bool                 `json:"isCurrentMonth"`
	Today        bool                 `json:"isToday"`
	Appointments []models.Appointment `json:"appointments"`
}

// Week is a Sunday-through-Saturday row.
type Week []Day

// MonthGrid lays out the month containing ref as complete weeks: from the
// Sunday on or before the 1st through the Saturday on or after the last day,
// padding cells drawn from the adjacent months. Appointments are bucketed by
// exact date match, preserving input order; today is compared against now.
func MonthGrid(ref time.Time, appointments []models.Appointment, now time.Time) []Week {
	year, month, _ := ref.Date()
	first := time.Date(year, month, 1, 0, 0, 0, 0, ref.Location())
	last := first.AddDate(0, 1, -1)

	start := first.AddDate(0, 0, -int(first.Weekday()))
	end := last.AddDate(0, 0, int(time.Saturday-last.Weekday()))

	byDate := make(map[string][]models.Appointment)
	for _, a := range appointments {
		byDate[a.Date] = append(byDate[a.Date], a)
	}

	today := now.Format(isoDate)

	var weeks []Week
	var week Week
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := d.Format(isoDate)
		week = append(week, Day{
			Date:         d,
			InMonth:      d.Month() == month,
			Today:        key == today,
			Appointments: byDate[key],
		})
		if len(week) == 7 {
			weeks = append(weeks, week)
			week = nil
		}
	}

	return weeks
}

// FilterAppointments keeps appointments matching the given status (empty
// matches all) and whose client name or notes contain the query,
// case-insensitively.
func FilterAppointments(appointments []models.Appointment, status models.AppointmentStatus, query string) []models.Appointment {
	query = strings.ToLower(strings.TrimSpace(query))

	filtered := make([]models.Appointment, 0, len(appointments))
	for _, a := range appointments {
		if status != "" && a.Status != status {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(a.UserName), query) &&
			!strings.Contains(strings.ToLower(a.Notes), query) {
			continue
		}
		filtered = append(filtered, a)
	}
	return filtered
}
