package handlers

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"room-bot/types"
)

func (h *Handler) HandleManage(msg *tgbotapi.Message) {
	rooms, err := h.rooms()
	if err != nil {
		h.send(msg.Chat.ID, fmt.Sprintf("⚠️ %v", err))
		return
	}

	m := tgbotapi.NewMessage(msg.Chat.ID, manageText(rooms))
	if len(rooms) > 0 {
		m.ReplyMarkup = buildManageKeyboard(rooms)
	}
	h.Bot.Send(m)
}

func manageText(rooms []types.Room) string {
	if len(rooms) == 0 {
		return "🛠 Room management\n\nNo rooms yet. Add one with /addroom <name>."
	}
	return fmt.Sprintf("🛠 Room management\n\n%d rooms. Tap one to delete it, or add with /addroom <name>.", len(rooms))
}

func buildManageKeyboard(rooms []types.Room) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, r := range rooms {
		btn := tgbotapi.NewInlineKeyboardButtonData("🗑 "+r.Name, fmt.Sprintf("mng_del:%d", r.ID))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// HandleRoomDelete removes a room from the roster and re-fetches it. If the
// deleted room was the one the user was looking at, the session drops it and
// the selection with it.
func (h *Handler) HandleRoomDelete(cq *tgbotapi.CallbackQuery, roomID int) {
	chatID := cq.Message.Chat.ID

	result, err := h.API.DeleteRoom(roomID)
	if err != nil {
		h.answer(cq, "Error")
		h.send(chatID, fmt.Sprintf("⚠️ %v", err))
		return
	}

	h.Store.InvalidateRooms()

	rooms, err := h.rooms()
	if err != nil {
		h.answer(cq, "✅ Deleted")
		h.send(chatID, "✅ "+result)
		return
	}

	// Clear the session's room if it no longer exists.
	sess, err := h.session(chatID)
	if err == nil && sess.HasRoom() {
		still := false
		for _, r := range rooms {
			if r.ID == sess.RoomID {
				still = true
				break
			}
		}
		if !still {
			sess.RoomID = 0
			sess.RoomName = ""
			sess.Selected.Reset()
			sess.Touch()
			h.Store.SaveSession(sess)
		}
	}

	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, cq.Message.MessageID, manageText(rooms), buildManageKeyboard(rooms))
	if len(rooms) == 0 {
		plain := tgbotapi.NewEditMessageText(chatID, cq.Message.MessageID, manageText(rooms))
		h.Bot.Send(plain)
	} else {
		h.Bot.Send(edit)
	}

	h.answer(cq, "✅ Deleted")
	h.send(chatID, "✅ "+result)
}
