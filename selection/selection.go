package selection

import (
	"errors"
	"time"

	"room-bot/gateway"
	"room-bot/schedule"
	"room-bot/types"
)

// State of the user's in-progress choice.
type State string

const (
	Idle          State = "idle"    // nothing chosen
	SlotChosen    State = "slot"    // a free time is picked, booking is legal
	BookingChosen State = "booking" // an existing booking is picked, cancel is legal
)

var (
	ErrNoSlot    = errors.New("no time slot selected")
	ErrNoBooking = errors.New("no booking selected")
)

// Gateway is the subset of the booking client the machine commits through.
// Declared here so tests can drop in a double.
type Gateway interface {
	BookRoom(date, clock string, roomID *int) (*gateway.BookResult, error)
	CancelBooking(roomID, bookingID int) (string, error)
}

// Machine tracks the mutually exclusive slot/booking choice. Choosing one
// side always clears the other; a failed commit leaves the machine untouched.
// Fields are exported so a session snapshot round-trips through JSON.
type Machine struct {
	Current  State          `json:"state"`
	SlotTime string         `json:"slot_time,omitempty"`
	Booking  *types.Booking `json:"booking,omitempty"`
}

func NewMachine() Machine {
	return Machine{Current: Idle}
}

// State returns Idle for a zero-value machine so sessions deserialized from
// older payloads behave.
func (m *Machine) State() State {
	if m.Current == "" {
		return Idle
	}
	return m.Current
}

// ChooseSlot picks a slot from the grid. A free slot moves the machine to
// SlotChosen; an occupied one is routed to ChooseBooking, since the only
// action on it is cancelling the booking it carries.
func (m *Machine) ChooseSlot(s types.Slot) {
	if !s.Available() {
		m.ChooseBooking(*s.Booking)
		return
	}
	m.Current = SlotChosen
	m.SlotTime = s.Time
	m.Booking = nil
}

// ChooseBooking picks an existing booking to cancel.
func (m *Machine) ChooseBooking(b types.Booking) {
	m.Current = BookingChosen
	m.Booking = &b
	m.SlotTime = ""
}

// Reset drops any choice, used on every date or room change.
func (m *Machine) Reset() {
	m.Current = Idle
	m.SlotTime = ""
	m.Booking = nil
}

// CommitBooking books the chosen slot in the given room. On success the
// machine resets and refresh fires exactly once; on failure nothing changes.
func (m *Machine) CommitBooking(gw Gateway, roomID int, date time.Time, refresh func()) (string, error) {
	if m.State() != SlotChosen {
		return "", ErrNoSlot
	}

	result, err := gw.BookRoom(schedule.NormalizeDate(date), m.SlotTime, &roomID)
	if err != nil {
		return "", err
	}

	m.Reset()
	if refresh != nil {
		refresh()
	}

	if result.Message != "" {
		return result.Message, nil
	}
	return "Room booked successfully", nil
}

// CommitCancel cancels the chosen booking. Same success/failure contract as
// CommitBooking.
func (m *Machine) CommitCancel(gw Gateway, roomID int, refresh func()) (string, error) {
	if m.State() != BookingChosen {
		return "", ErrNoBooking
	}

	msg, err := gw.CancelBooking(roomID, m.Booking.ID)
	if err != nil {
		return "", err
	}

	m.Reset()
	if refresh != nil {
		refresh()
	}

	if msg != "" {
		return msg, nil
	}
	return "Booking canceled successfully", nil
}
