package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeClock(t *testing.T) {
	assert.Equal(t, "14:00", NormalizeClock("14:00:00"))
	assert.Equal(t, "14:00", NormalizeClock("14:00"))
	assert.Equal(t, "08:05", NormalizeClock("8:5"))
	assert.Equal(t, "garbage", NormalizeClock("garbage"))
}

func TestBookingClockAndDay(t *testing.T) {
	b := Booking{ID: 1, RoomID: 7, Date: "2024-03-15T00:00:00", Time: "09:30:00"}
	assert.Equal(t, "09:30", b.Clock())
	assert.Equal(t, "2024-03-15", b.Day())
}

func TestSlotAvailable(t *testing.T) {
	free := Slot{Time: "10:00"}
	assert.True(t, free.Available())

	taken := Slot{Time: "10:00", Booking: &Booking{ID: 1}}
	assert.False(t, taken.Available())
}
