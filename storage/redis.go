package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"room-bot/selection"
	"room-bot/types"
)

var ctx = context.Background()

// Session is the per-chat UI state: the chosen date, room and selection.
// Everything authoritative lives in the remote store; this is only what the
// user is currently looking at.
type Session struct {
	ChatID   int64             `json:"chat_id"`
	Date     string            `json:"date,omitempty"` // YYYY-MM-DD
	RoomID   int               `json:"room_id,omitempty"`
	RoomName string            `json:"room_name,omitempty"`
	Selected selection.Machine `json:"selected"`

	// Seq increments on every date/room/selection change. A schedule fetch
	// started under an older Seq is stale and must not be rendered.
	Seq uint64 `json:"seq"`
}

// HasRoom reports whether a room is currently picked.
func (s *Session) HasRoom() bool {
	return s.RoomID != 0
}

// Touch bumps the sequence, invalidating any in-flight fetch.
func (s *Session) Touch() {
	s.Seq++
}

// Watch subscribes a chat to newly freed slots of one room on one day.
type Watch struct {
	ChatID   int64  `json:"chat_id"`
	RoomID   int    `json:"room_id"`
	RoomName string `json:"room_name"`
	Date     string `json:"date"` // YYYY-MM-DD
}

type Storage struct {
	client *redis.Client
}

func New(addr, password string, db int) *Storage {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Storage{client: rdb}
}

func (s *Storage) Ping() error {
	return s.client.Ping(ctx).Err()
}

// ===== Per-chat sessions =====

// SaveSession stores the session with a day of TTL; abandoned chats clean
// themselves up.
func (s *Storage) SaveSession(sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, fmt.Sprintf("sess:%d", sess.ChatID), data, 24*time.Hour).Err()
}

// GetSession returns nil, nil when the chat has no session yet.
func (s *Storage) GetSession(chatID int64) (*Session, error) {
	val, err := s.client.Get(ctx, fmt.Sprintf("sess:%d", chatID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *Storage) DeleteSession(chatID int64) error {
	return s.client.Del(ctx, fmt.Sprintf("sess:%d", chatID)).Err()
}

// ===== Availability watches =====

func (s *Storage) SaveWatch(w *Watch) error {
	data, err := json.Marshal(w)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, fmt.Sprintf("watch:%d", w.ChatID), data, 0).Err()
}

func (s *Storage) GetWatch(chatID int64) (*Watch, error) {
	val, err := s.client.Get(ctx, fmt.Sprintf("watch:%d", chatID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var w Watch
	if err := json.Unmarshal([]byte(val), &w); err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *Storage) ListWatches() ([]*Watch, error) {
	keys, err := s.client.Keys(ctx, "watch:*").Result()
	if err != nil {
		return nil, err
	}

	var watches []*Watch
	for _, key := range keys {
		val, err := s.client.Get(ctx, key).Result()
		if err != nil {
			continue
		}
		var w Watch
		if json.Unmarshal([]byte(val), &w) == nil {
			watches = append(watches, &w)
		}
	}
	return watches, nil
}

func (s *Storage) DeleteWatch(chatID int64) error {
	return s.client.Del(ctx, fmt.Sprintf("watch:%d", chatID)).Err()
}

// ===== Last seen free slots per watch =====

// SaveLastFree remembers which times were free at the last check so the next
// one only reports newly freed slots (TTL: 24 hours).
func (s *Storage) SaveLastFree(chatID int64, times []string) error {
	data, err := json.Marshal(times)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, fmt.Sprintf("free:%d", chatID), data, 24*time.Hour).Err()
}

func (s *Storage) GetLastFree(chatID int64) ([]string, error) {
	val, err := s.client.Get(ctx, fmt.Sprintf("free:%d", chatID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var times []string
	if err := json.Unmarshal([]byte(val), &times); err != nil {
		return nil, err
	}
	return times, nil
}

// ===== Room roster cache =====

// CacheRooms keeps the roster for a minute so keyboard rebuilds between taps
// don't hammer the store. Mutations must call InvalidateRooms.
func (s *Storage) CacheRooms(rooms []types.Room) error {
	data, err := json.Marshal(rooms)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, "cache:rooms", data, time.Minute).Err()
}

func (s *Storage) CachedRooms() ([]types.Room, error) {
	val, err := s.client.Get(ctx, "cache:rooms").Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rooms []types.Room
	if err := json.Unmarshal([]byte(val), &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

func (s *Storage) InvalidateRooms() error {
	return s.client.Del(ctx, "cache:rooms").Err()
}
