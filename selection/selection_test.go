package selection

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"room-bot/gateway"
	"room-bot/types"
)

type fakeGateway struct {
	failBook   bool
	failCancel bool

	bookedDate  string
	bookedTime  string
	bookedRoom  *int
	cancelCalls int
}

func (f *fakeGateway) BookRoom(date, clock string, roomID *int) (*gateway.BookResult, error) {
	if f.failBook {
		return nil, errors.New("No available room for the selected date and time")
	}
	f.bookedDate = date
	f.bookedTime = clock
	f.bookedRoom = roomID
	return &gateway.BookResult{ID: 42, Message: "Room booked"}, nil
}

func (f *fakeGateway) CancelBooking(roomID, bookingID int) (string, error) {
	if f.failCancel {
		return "", errors.New("Booking not found")
	}
	f.cancelCalls++
	return "Booking cancelled", nil
}

func freeSlot(clock string) types.Slot {
	return types.Slot{Time: clock}
}

func bookedSlot(clock string, id int) types.Slot {
	return types.Slot{Time: clock, Booking: &types.Booking{ID: id, RoomID: 7, Date: "2024-03-15", Time: clock}}
}

func TestChoicesAreMutuallyExclusive(t *testing.T) {
	m := NewMachine()
	assert.Equal(t, Idle, m.State())

	m.ChooseSlot(freeSlot("10:00"))
	assert.Equal(t, SlotChosen, m.State())
	assert.Equal(t, "10:00", m.SlotTime)
	assert.Nil(t, m.Booking)

	m.ChooseBooking(types.Booking{ID: 5, Time: "14:00"})
	assert.Equal(t, BookingChosen, m.State())
	assert.Empty(t, m.SlotTime, "choosing a booking must clear the slot choice")
	require.NotNil(t, m.Booking)
	assert.Equal(t, 5, m.Booking.ID)

	m.ChooseSlot(freeSlot("11:30"))
	assert.Equal(t, SlotChosen, m.State())
	assert.Nil(t, m.Booking, "choosing a slot must clear the booking choice")
}

func TestChooseSlotRoutesOccupiedToBooking(t *testing.T) {
	m := NewMachine()
	m.ChooseSlot(bookedSlot("14:00", 9))

	assert.Equal(t, BookingChosen, m.State())
	require.NotNil(t, m.Booking)
	assert.Equal(t, 9, m.Booking.ID)
	assert.Empty(t, m.SlotTime)
}

func TestReset(t *testing.T) {
	m := NewMachine()
	m.ChooseSlot(freeSlot("10:00"))
	m.Reset()

	assert.Equal(t, Idle, m.State())
	assert.Empty(t, m.SlotTime)
	assert.Nil(t, m.Booking)
}

func TestCommitBookingSuccess(t *testing.T) {
	gw := &fakeGateway{}
	m := NewMachine()
	m.ChooseSlot(freeSlot("10:00"))

	refreshes := 0
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	msg, err := m.CommitBooking(gw, 7, date, func() { refreshes++ })

	require.NoError(t, err)
	assert.Equal(t, "Room booked", msg)
	assert.Equal(t, Idle, m.State(), "successful commit must return to Idle")
	assert.Equal(t, 1, refreshes, "exactly one schedule refresh")
	assert.Equal(t, "2024-03-15", gw.bookedDate)
	assert.Equal(t, "10:00", gw.bookedTime)
	require.NotNil(t, gw.bookedRoom)
	assert.Equal(t, 7, *gw.bookedRoom)
}

func TestCommitBookingFailureLeavesStateUnchanged(t *testing.T) {
	gw := &fakeGateway{failBook: true}
	m := NewMachine()
	m.ChooseSlot(freeSlot("10:00"))

	refreshes := 0
	_, err := m.CommitBooking(gw, 7, time.Now(), func() { refreshes++ })

	require.Error(t, err)
	assert.Equal(t, SlotChosen, m.State(), "failed commit must not mutate state")
	assert.Equal(t, "10:00", m.SlotTime)
	assert.Zero(t, refreshes, "no refresh on failure")
}

func TestCommitBookingIllegalFromIdleAndBookingChosen(t *testing.T) {
	gw := &fakeGateway{}

	m := NewMachine()
	_, err := m.CommitBooking(gw, 7, time.Now(), nil)
	assert.ErrorIs(t, err, ErrNoSlot)

	m.ChooseBooking(types.Booking{ID: 5})
	_, err = m.CommitBooking(gw, 7, time.Now(), nil)
	assert.ErrorIs(t, err, ErrNoSlot)
	assert.Equal(t, BookingChosen, m.State())
}

func TestCommitCancelSuccess(t *testing.T) {
	gw := &fakeGateway{}
	m := NewMachine()
	m.ChooseBooking(types.Booking{ID: 5, RoomID: 7})

	refreshes := 0
	msg, err := m.CommitCancel(gw, 7, func() { refreshes++ })

	require.NoError(t, err)
	assert.Equal(t, "Booking cancelled", msg)
	assert.Equal(t, Idle, m.State())
	assert.Equal(t, 1, refreshes)
	assert.Equal(t, 1, gw.cancelCalls)
}

func TestCommitCancelFailureLeavesStateUnchanged(t *testing.T) {
	gw := &fakeGateway{failCancel: true}
	m := NewMachine()
	m.ChooseBooking(types.Booking{ID: 5, RoomID: 7})

	_, err := m.CommitCancel(gw, 7, nil)

	require.Error(t, err)
	assert.Equal(t, BookingChosen, m.State())
	require.NotNil(t, m.Booking)
	assert.Equal(t, 5, m.Booking.ID)
}

func TestCommitCancelIllegalFromSlotChosen(t *testing.T) {
	gw := &fakeGateway{}
	m := NewMachine()
	m.ChooseSlot(freeSlot("10:00"))

	_, err := m.CommitCancel(gw, 7, nil)
	assert.ErrorIs(t, err, ErrNoBooking)
	assert.Equal(t, SlotChosen, m.State())
}

func TestZeroValueMachineIsIdle(t *testing.T) {
	var m Machine
	assert.Equal(t, Idle, m.State())
}
