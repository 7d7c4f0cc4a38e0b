package model

// Specialities is the fixed set offered by the platform, in menu order.
var Specialities = []string{
	"General physician",
	"Gynecologist",
	"Dermatologist",
	"Pediatricians",
	"Neurologist",
	"Gastroenterologist",
}

// Doctor is the directory entry served by the booking API. The client keeps a
// read-only cached copy; SlotsBooked maps a date key (day_month_year) to the
// display times already reserved on that date.
type Doctor struct {
	ID          string              `json:"_id"`
	Name        string              `json:"name"`
	Image       string              `json:"image"`
	Speciality  string              `json:"speciality"`
	Degree      string              `json:"degree"`
	Experience  string              `json:"experience"`
	About       string              `json:"about"`
	Fees        float64             `json:"fees"`
	Address     Address             `json:"address"`
	Available   bool                `json:"available"`
	SlotsBooked map[string][]string `json:"slots_booked"`
}

// Address is the two-line postal address shape shared by doctors and users.
type Address struct {
	Line1 string `json:"line1"`
	Line2 string `json:"line2"`
}
