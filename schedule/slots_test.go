package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"room-bot/types"
)

func day(t *testing.T, date string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", date)
	require.NoError(t, err)
	return d
}

func TestComputeSlotsEmptyScheduleFullWindow(t *testing.T) {
	slots := ComputeSlots("06:00", "22:00", 30, nil, day(t, "2024-03-15"))

	// 06:00 through 22:00 inclusive at 30-minute steps is 33 slots.
	require.Len(t, slots, 33)
	assert.Equal(t, "06:00", slots[0].Time)
	assert.Equal(t, "22:00", slots[32].Time)
	for _, s := range slots {
		assert.True(t, s.Available(), "slot %s should be free", s.Time)
	}
}

func TestComputeSlotsStrictlyAscendingNoDuplicates(t *testing.T) {
	slots := ComputeSlots("08:00", "21:45", 25, nil, day(t, "2024-03-15"))
	require.NotEmpty(t, slots)

	prev := -1
	for _, s := range slots {
		mins, err := ParseClock(s.Time)
		require.NoError(t, err)
		assert.Greater(t, mins, prev, "grid must be strictly ascending")
		prev = mins
	}

	start, _ := ParseClock("08:00")
	end, _ := ParseClock("21:45")
	first, _ := ParseClock(slots[0].Time)
	last, _ := ParseClock(slots[len(slots)-1].Time)
	assert.Equal(t, start, first)
	assert.LessOrEqual(t, last, end)
}

func TestComputeSlotsUnevenStepKeepsInclusiveEnd(t *testing.T) {
	// 75-minute window, 30-minute step: the last value inside the window is
	// 07:00, which does not land on the end boundary but is still emitted.
	slots := ComputeSlots("06:00", "07:15", 30, nil, day(t, "2024-03-15"))

	times := make([]string, len(slots))
	for i, s := range slots {
		times[i] = s.Time
	}
	assert.Equal(t, []string{"06:00", "06:30", "07:00"}, times)
}

func TestComputeSlotsMarksMatchingBookingOnly(t *testing.T) {
	bookings := []types.Booking{
		{ID: 1, RoomID: 7, Date: "2024-03-15", Time: "14:00:00"},
		{ID: 2, RoomID: 7, Date: "2024-03-16", Time: "10:00:00"},
	}

	slots := ComputeSlots("06:00", "22:00", 30, bookings, day(t, "2024-03-15"))

	var occupied []string
	for _, s := range slots {
		if !s.Available() {
			occupied = append(occupied, s.Time)
			require.NotNil(t, s.Booking)
			assert.Equal(t, 1, s.Booking.ID, "the other-day booking must never occupy a slot")
		}
	}
	assert.Equal(t, []string{"14:00"}, occupied)
}

func TestComputeSlotsOffGridBookingOccupiesNothing(t *testing.T) {
	// Exact-string matching: 09:05 is not a 30-minute grid point, so it does
	// not shadow 09:00 or 09:30.
	bookings := []types.Booking{
		{ID: 3, RoomID: 7, Date: "2024-03-15", Time: "09:05:00"},
	}

	slots := ComputeSlots("06:00", "22:00", 30, bookings, day(t, "2024-03-15"))
	for _, s := range slots {
		assert.True(t, s.Available(), "slot %s should stay free", s.Time)
	}
}

func TestComputeSlotsPure(t *testing.T) {
	bookings := []types.Booking{
		{ID: 1, RoomID: 7, Date: "2024-03-15", Time: "14:00"},
	}
	d := day(t, "2024-03-15")

	first := ComputeSlots("06:00", "22:00", 30, bookings, d)
	second := ComputeSlots("06:00", "22:00", 30, bookings, d)
	assert.Equal(t, first, second)
}

func TestComputeSlotsRejectsBadWindow(t *testing.T) {
	assert.Nil(t, ComputeSlots("22:00", "06:00", 30, nil, day(t, "2024-03-15")))
	assert.Nil(t, ComputeSlots("06:00", "22:00", 0, nil, day(t, "2024-03-15")))
	assert.Nil(t, ComputeSlots("bogus", "22:00", 30, nil, day(t, "2024-03-15")))
}

func TestNormalizeDateUsesLocalCalendarDay(t *testing.T) {
	// 23:30 on March 15th in UTC+2 is March 15th locally even though it is
	// already the 15th 21:30 in UTC; the wire format must say the local day.
	loc := time.FixedZone("UTC+2", 2*60*60)
	late := time.Date(2024, 3, 15, 23, 30, 0, 0, loc)
	assert.Equal(t, "2024-03-15", NormalizeDate(late))

	// And 00:30 local in UTC-5 is still the local day, not the UTC day after.
	west := time.FixedZone("UTC-5", -5*60*60)
	early := time.Date(2024, 3, 15, 0, 30, 0, 0, west)
	assert.Equal(t, "2024-03-15", NormalizeDate(early))
}

func TestNormalizeDateRoundTripsThroughBooking(t *testing.T) {
	loc := time.FixedZone("UTC+13", 13*60*60)
	picked := time.Date(2024, 3, 15, 22, 0, 0, 0, loc)

	wire := NormalizeDate(picked)
	booking := types.Booking{ID: 1, RoomID: 7, Date: wire, Time: "14:00:00"}

	slots := ComputeSlots("06:00", "22:00", 30, []types.Booking{booking}, picked)
	var occupied int
	for _, s := range slots {
		if !s.Available() {
			occupied++
			assert.Equal(t, "14:00", s.Time)
		}
	}
	assert.Equal(t, 1, occupied)
}

func TestParseClock(t *testing.T) {
	mins, err := ParseClock("06:30")
	require.NoError(t, err)
	assert.Equal(t, 390, mins)

	_, err = ParseClock("25:00")
	assert.Error(t, err)
	_, err = ParseClock("0630")
	assert.Error(t, err)
}

func TestFreeTimes(t *testing.T) {
	b := types.Booking{ID: 1, RoomID: 7, Date: "2024-03-15", Time: "06:30"}
	slots := ComputeSlots("06:00", "07:00", 30, []types.Booking{b}, day(t, "2024-03-15"))
	assert.Equal(t, []string{"06:00", "07:00"}, FreeTimes(slots))
}
