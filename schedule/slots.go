package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"room-bot/types"
)

// ParseClock converts "HH:MM" to minutes from midnight.
func ParseClock(clock string) (int, error) {
	parts := strings.Split(clock, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q", clock)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q", clock)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q", clock)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("time %q out of range", clock)
	}
	return hour*60 + minute, nil
}

// MinutesToClock converts minutes from midnight to "HH:MM".
func MinutesToClock(mins int) string {
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60)
}

// NormalizeDate renders t as its local calendar day in YYYY-MM-DD, the format
// the booking API expects on the wire. The day is taken in t's own location,
// so a late-evening local time never flips to the next UTC day.
func NormalizeDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// ComputeSlots builds the ordered daily grid between windowStart and
// windowEnd at stepMinutes intervals. Generation is inclusive: any value
// <= windowEnd is emitted, so the final slot may land exactly on the end of
// the window. Each slot is matched against the bookings for date's calendar
// day by exact "HH:MM" comparison; a booking at an off-grid time (09:05 on a
// 30-minute grid) occupies nothing. Bookings for other days are ignored.
//
// Pure: identical inputs always produce an identical grid.
func ComputeSlots(windowStart, windowEnd string, stepMinutes int, bookings []types.Booking, date time.Time) []types.Slot {
	start, err := ParseClock(windowStart)
	if err != nil {
		return nil
	}
	end, err := ParseClock(windowEnd)
	if err != nil || end < start || stepMinutes <= 0 {
		return nil
	}

	day := NormalizeDate(date)

	slots := make([]types.Slot, 0, (end-start)/stepMinutes+1)
	for current := start; current <= end; current += stepMinutes {
		clock := MinutesToClock(current)

		var occupied *types.Booking
		for i := range bookings {
			b := &bookings[i]
			if b.Day() == day && b.Clock() == clock {
				occupied = b
				break
			}
		}

		slots = append(slots, types.Slot{Time: clock, Booking: occupied})
	}

	return slots
}

// FreeTimes returns the times of the available slots, in grid order.
func FreeTimes(slots []types.Slot) []string {
	free := make([]string, 0, len(slots))
	for _, s := range slots {
		if s.Available() {
			free = append(free, s.Time)
		}
	}
	return free
}
