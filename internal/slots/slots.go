// Package slots generates the 7-day grid of bookable consultation slots for a
// doctor. Times are produced in the clinic's local day, formatted exactly the
// way the booking API stores reserved slots, so membership checks against a
// doctor's booked-slot map are byte-for-byte string comparisons.
package slots

import (
	"fmt"
	"slices"
	"time"
)

const (
	// Interval between consecutive slots.
	Interval = 30 * time.Minute

	// Clinic operating hours. Slots run [OpeningHour:00, ClosingHour:00).
	OpeningHour = 10
	ClosingHour = 21

	// HorizonDays is the rolling booking window, today included.
	HorizonDays = 7
)

// Slot is a single bookable time: the instant itself plus the display string
// the backend uses as the reservation key ("10:00 AM", "2:30 PM").
type Slot struct {
	Time  time.Time
	Label string
}

// DateKey formats t's calendar date as the wire key used by the backend's
// booked-slot map: day_month_year, 1-indexed month, no zero padding.
func DateKey(t time.Time) string {
	return fmt.Sprintf("%d_%d_%d", t.Day(), int(t.Month()), t.Year())
}

// Label formats t as a reservation key: 12-hour clock, unpadded hour,
// two-digit minute, AM/PM.
func Label(t time.Time) string {
	return t.Format("3:04 PM")
}

// Generate returns exactly HorizonDays day lists, ordered today first. Each
// list holds the free slots for that calendar date, strictly increasing,
// excluding any time whose label appears in booked under the date's key. A day
// with nothing left (e.g. the clinic already closed today) yields an empty
// list. A nil map or missing key means no reservations for that date.
//
// Day 0 starts at the hour after now when the clinic is already open, on the
// half hour if now's minute is past 30; every later day starts at opening.
// The minute rule applies before opening too: at 8:45 the first slot is 10:30.
// The backend's conflict checks assume this exact rounding, so it must not be
// "corrected" here.
func Generate(booked map[string][]string, now time.Time) [][]Slot {
	days := make([][]Slot, 0, HorizonDays)

	for offset := 0; offset < HorizonDays; offset++ {
		day := now.AddDate(0, 0, offset)

		start := dayStart(day, now, offset == 0)
		end := time.Date(day.Year(), day.Month(), day.Day(), ClosingHour, 0, 0, 0, day.Location())
		reserved := booked[DateKey(day)]

		daySlots := []Slot{}
		for t := start; t.Before(end); t = t.Add(Interval) {
			label := Label(t)
			if !slices.Contains(reserved, label) {
				daySlots = append(daySlots, Slot{Time: t, Label: label})
			}
		}
		days = append(days, daySlots)
	}
	return days
}

func dayStart(day, now time.Time, today bool) time.Time {
	if !today {
		return time.Date(day.Year(), day.Month(), day.Day(), OpeningHour, 0, 0, 0, day.Location())
	}

	hour := OpeningHour
	if now.Hour() >= OpeningHour {
		hour = now.Hour() + 1
	}
	minute := 0
	if now.Minute() > 30 {
		minute = 30
	}
	// time.Date normalizes hour 24 into the next day, which lands past end
	// and correctly yields an empty list.
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}
