package handlers

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"room-bot/schedule"
	"room-bot/storage"
	"room-bot/types"
)

// HandleWatch starts the watch setup: room first, then date.
func (h *Handler) HandleWatch(msg *tgbotapi.Message) {
	rooms, err := h.rooms()
	if err != nil {
		h.send(msg.Chat.ID, fmt.Sprintf("⚠️ %v", err))
		return
	}
	if len(rooms) == 0 {
		h.send(msg.Chat.ID, "No rooms to watch. Use /manage to add one.")
		return
	}

	delete(h.watchSetup, msg.Chat.ID)

	m := tgbotapi.NewMessage(msg.Chat.ID, "🔔 I'll ping you when a slot frees up.\n\nStep 1/2: Pick a room to watch")
	m.ReplyMarkup = buildRoomsKeyboard(rooms, 0, "w_")
	h.Bot.Send(m)
}

func (h *Handler) HandleWatchRoom(cq *tgbotapi.CallbackQuery, roomID int) {
	chatID := cq.Message.Chat.ID

	rooms, err := h.rooms()
	if err != nil {
		h.answer(cq, "Error")
		h.send(chatID, fmt.Sprintf("⚠️ %v", err))
		return
	}

	var picked *types.Room
	for i := range rooms {
		if rooms[i].ID == roomID {
			picked = &rooms[i]
			break
		}
	}
	if picked == nil {
		h.answer(cq, "⚠️ Room not found")
		return
	}

	h.watchSetup[chatID] = &storage.Watch{ChatID: chatID, RoomID: picked.ID, RoomName: picked.Name}
	h.answer(cq, "✅ Room: "+picked.Name)

	now := time.Now()
	m := tgbotapi.NewMessage(chatID, "📅 Step 2/2: Pick the day to watch")
	m.ReplyMarkup = buildCalendarKeyboard(now.Year(), now.Month(), "w_")
	h.Bot.Send(m)
}

func (h *Handler) HandleWatchDay(cq *tgbotapi.CallbackQuery, date string) {
	chatID := cq.Message.Chat.ID

	w, ok := h.watchSetup[chatID]
	if !ok {
		h.answer(cq, "⚠️ Pick a room first — use /watch")
		return
	}

	day, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		h.answer(cq, "⚠️ Bad date")
		return
	}
	if schedule.NormalizeDate(day) < schedule.NormalizeDate(time.Now()) {
		h.answer(cq, "⚠️ That day is already over")
		return
	}

	w.Date = date
	if err := h.Store.SaveWatch(w); err != nil {
		h.answer(cq, "Error")
		h.send(chatID, "⚠️ Failed to save the watch.")
		return
	}
	delete(h.watchSetup, chatID)

	h.answer(cq, "✅ Watching")
	h.send(chatID, fmt.Sprintf("🔔 Watching %s on %s.\n\nI'll message you when a slot frees up. Stop with /unwatch.", w.RoomName, w.Date))

	if h.Watcher != nil {
		h.Watcher.CheckWatchNow(chatID)
	}
}
