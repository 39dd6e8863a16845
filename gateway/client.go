package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"room-bot/logging"
	"room-bot/types"
)

const userAgent = "RoomBot/1.0"

// Client talks to the remote booking store. The base URL is injected so tests
// can point it at a local double.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// BookResult is what the store returns for a successful booking. A booking
// for a specific room carries the new id; a random-room booking carries only
// the confirmation message.
type BookResult struct {
	ID      int    `json:"id"`
	Message string `json:"message"`
}

// AddResult is the response to a room creation.
type AddResult struct {
	ID      int    `json:"id"`
	Message string `json:"message"`
}

// Rooms fetches the full room roster.
func (c *Client) Rooms() ([]types.Room, error) {
	resp, err := c.get("/rooms", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("error: %s", resp.Status)
	}

	var rooms []types.Room
	if err := json.NewDecoder(resp.Body).Decode(&rooms); err != nil {
		return nil, fmt.Errorf("parsing rooms response: %w", err)
	}
	return rooms, nil
}

// RoomSchedule fetches all bookings of a room. The store answers an empty
// schedule with a JSON object instead of an array; any such non-array 2xx
// body is degraded to an empty schedule with a logged warning rather than an
// error, so the slot grid still renders.
func (c *Client) RoomSchedule(roomID int) ([]types.Booking, error) {
	resp, err := c.get("/room_schedule", url.Values{"room_id": {fmt.Sprint(roomID)}})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("error: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading schedule response: %w", err)
	}

	var bookings []types.Booking
	if err := json.Unmarshal(body, &bookings); err != nil {
		logging.L().Warnf("⚠️ Schedule for room %d is not an array, treating as empty: %s", roomID, truncate(body, 120))
		return []types.Booking{}, nil
	}
	return bookings, nil
}

// BookRoom creates a booking for date (YYYY-MM-DD) at clock (HH:MM). A nil
// roomID asks the store to pick any free room for that date and time.
func (c *Client) BookRoom(date, clock string, roomID *int) (*BookResult, error) {
	payload := map[string]interface{}{
		"room_id": roomID,
		"date":    date,
		"time":    clock,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Post(c.baseURL+"/book_room", "application/json", bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, remoteError(resp, "Failed to book room")
	}

	var result BookResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("parsing booking response: %w", err)
	}
	return &result, nil
}

// CancelBooking removes one booking from a room's schedule.
func (c *Client) CancelBooking(roomID, bookingID int) (string, error) {
	v := url.Values{
		"room_id":    {fmt.Sprint(roomID)},
		"booking_id": {fmt.Sprint(bookingID)},
	}
	resp, err := c.delete("/cancel_booking", v)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", remoteError(resp, "Failed to cancel booking")
	}
	return message(resp.Body, "Booking cancelled"), nil
}

// AddRoom creates a room with the given display name.
func (c *Client) AddRoom(name string) (*AddResult, error) {
	body, err := json.Marshal(map[string]string{"name": name})
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Post(c.baseURL+"/add_room", "application/json", bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, remoteError(resp, "Failed to add room")
	}

	var result AddResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("parsing add room response: %w", err)
	}
	return &result, nil
}

// DeleteRoom removes a room and, through the store, all its bookings.
func (c *Client) DeleteRoom(roomID int) (string, error) {
	resp, err := c.delete("/delete_room", url.Values{"room_id": {fmt.Sprint(roomID)}})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", remoteError(resp, "Failed to delete room")
	}
	return message(resp.Body, "Room deleted"), nil
}

func (c *Client) get(path string, query url.Values) (*http.Response, error) {
	return c.do(http.MethodGet, path, query)
}

func (c *Client) delete(path string, query url.Values) (*http.Response, error) {
	return c.do(http.MethodDelete, path, query)
}

func (c *Client) do(method, path string, query url.Values) (*http.Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequest(method, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	return c.http.Do(req)
}

// remoteError extracts the server's error field from the body, falling back
// to the given default.
func remoteError(resp *http.Response, fallback string) error {
	body, err := io.ReadAll(resp.Body)
	if err == nil {
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
			return fmt.Errorf("%s", payload.Error)
		}
	}
	return fmt.Errorf("%s (%s)", fallback, resp.Status)
}

// message pulls the confirmation text out of a 2xx body.
func message(r io.Reader, fallback string) string {
	var payload struct {
		Message string `json:"message"`
	}
	if json.NewDecoder(r).Decode(&payload) == nil && payload.Message != "" {
		return payload.Message
	}
	return fallback
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
