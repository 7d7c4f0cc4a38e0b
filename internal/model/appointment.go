package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Appointment is one booking row from the appointments endpoint. DocData is a
// denormalized copy of the doctor at booking time; the flags drive which
// actions the list offers.
type Appointment struct {
	ID          string  `json:"_id"`
	UserID      string  `json:"userId"`
	DocID       string  `json:"docId"`
	SlotDate    string  `json:"slotDate"`
	SlotTime    string  `json:"slotTime"`
	DocData     Doctor  `json:"docData"`
	Amount      float64 `json:"amount"`
	Date        int64   `json:"date"`
	Cancelled   bool    `json:"cancelled"`
	Payment     bool    `json:"payment"`
	IsCompleted bool    `json:"isCompleted"`
}

var shortMonths = []string{"", "Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// FormatSlotDate renders a day_month_year key as "9 Mar 2026" for display.
// Malformed keys are returned unchanged.
func FormatSlotDate(slotDate string) string {
	parts := strings.Split(slotDate, "_")
	if len(parts) != 3 {
		return slotDate
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return slotDate
	}
	return fmt.Sprintf("%s %s %s", parts[0], shortMonths[month], parts[2])
}
