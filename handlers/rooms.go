package handlers

import (
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"room-bot/types"
)

func (h *Handler) sendRoomSelection(chatID int64) {
	rooms, err := h.rooms()
	if err != nil {
		h.send(chatID, fmt.Sprintf("⚠️ %v", err))
		return
	}
	if len(rooms) == 0 {
		h.send(chatID, "No rooms yet. Use /manage to add one.")
		return
	}

	sess, err := h.session(chatID)
	if err != nil {
		h.send(chatID, "⚠️ Failed to load your session.")
		return
	}

	m := tgbotapi.NewMessage(chatID, "🚪 Step 2: Pick a room")
	m.ReplyMarkup = buildRoomsKeyboard(rooms, sess.RoomID, "")
	h.Bot.Send(m)
}

// buildRoomsKeyboard lists one room per row, marking the current pick.
// prefix follows the calendar convention ("" main flow, "w_" watch flow).
func buildRoomsKeyboard(rooms []types.Room, selectedID int, prefix string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, r := range rooms {
		label := r.Name
		if r.ID == selectedID {
			label = "✅ " + label
		}
		btn := tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("%sroom:%d", prefix, r.ID))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// ParseRoomID decodes the numeric part of a room callback.
func ParseRoomID(payload string) (int, error) {
	return strconv.Atoi(payload)
}
