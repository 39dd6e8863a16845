package types

import "strings"

// Room as served by the booking API
type Room struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Booking occupies exactly one (room, date, time) triple
type Booking struct {
	ID     int    `json:"id"`
	RoomID int    `json:"room"`
	Date   string `json:"date"` // YYYY-MM-DD
	Time   string `json:"time"` // server may send HH:MM or HH:MM:SS
}

// Clock returns the booking time truncated to "HH:MM"
func (b Booking) Clock() string {
	return NormalizeClock(b.Time)
}

// Day returns the calendar-day part of the booking date
func (b Booking) Day() string {
	if len(b.Date) > 10 {
		return b.Date[:10]
	}
	return b.Date
}

// Slot is one cell of the daily grid, derived and never persisted
type Slot struct {
	Time    string   // HH:MM
	Booking *Booking // nil when the slot is free
}

// Available reports whether the slot can be booked
func (s Slot) Available() bool {
	return s.Booking == nil
}

// NormalizeClock brings a time-of-day string to "HH:MM"
// "14:00:00" -> "14:00", "8:5" -> "08:05"
func NormalizeClock(t string) string {
	parts := strings.Split(t, ":")
	if len(parts) < 2 {
		return t
	}

	hour := parts[0]
	minute := parts[1]

	if len(hour) == 1 {
		hour = "0" + hour
	}
	if len(minute) == 1 {
		minute = "0" + minute
	}

	return hour + ":" + minute
}
