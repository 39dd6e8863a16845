package handlers

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (h *Handler) HandleStart(msg *tgbotapi.Message) {
	text := "👋 Hi! I help you book operation rooms.\n\n" +
		"Available commands:\n" +
		"/calendar — pick a date\n" +
		"/rooms — pick a room\n" +
		"/schedule — show the slot grid for your current date and room\n" +
		"/quickbook — book any free room for a date and time\n" +
		"/manage — add or delete rooms\n" +
		"/watch — get notified when a slot frees up\n" +
		"/unwatch — stop watching"
	h.send(msg.Chat.ID, text)
}

func (h *Handler) HandleCalendar(msg *tgbotapi.Message) {
	now := time.Now()
	m := tgbotapi.NewMessage(msg.Chat.ID, "📅 Step 1: Pick a date")
	m.ReplyMarkup = buildCalendarKeyboard(now.Year(), now.Month(), "")
	h.Bot.Send(m)
}

func (h *Handler) HandleRooms(msg *tgbotapi.Message) {
	h.sendRoomSelection(msg.Chat.ID)
}

func (h *Handler) HandleSchedule(msg *tgbotapi.Message) {
	sess, err := h.session(msg.Chat.ID)
	if err != nil {
		h.send(msg.Chat.ID, "⚠️ Failed to load your session.")
		return
	}

	if sess.Date == "" {
		h.send(msg.Chat.ID, "You haven't picked a date yet. Use /calendar first.")
		return
	}
	if !sess.HasRoom() {
		h.send(msg.Chat.ID, "You haven't picked a room yet. Use /rooms first.")
		return
	}

	h.sendGrid(msg.Chat.ID, sess)
}

func (h *Handler) HandleQuickBook(msg *tgbotapi.Message) {
	delete(h.quick, msg.Chat.ID)

	now := time.Now()
	m := tgbotapi.NewMessage(msg.Chat.ID, "⚡ Quick booking: I'll pick any free room for you.\n\nStep 1/2: Pick a date")
	m.ReplyMarkup = buildCalendarKeyboard(now.Year(), now.Month(), "qb_")
	h.Bot.Send(m)
}

func (h *Handler) HandleAddRoom(msg *tgbotapi.Message) {
	name := strings.TrimSpace(msg.CommandArguments())
	if name == "" {
		h.send(msg.Chat.ID, "Usage: /addroom <room name>")
		return
	}

	result, err := h.API.AddRoom(name)
	if err != nil {
		h.send(msg.Chat.ID, fmt.Sprintf("⚠️ %v", err))
		return
	}

	h.Store.InvalidateRooms()
	if result.Message != "" {
		h.send(msg.Chat.ID, "✅ "+result.Message)
	} else {
		h.send(msg.Chat.ID, fmt.Sprintf("✅ Room %s added successfully.", name))
	}
}

func (h *Handler) HandleUnwatch(msg *tgbotapi.Message) {
	w, err := h.Store.GetWatch(msg.Chat.ID)
	if err != nil {
		h.send(msg.Chat.ID, "⚠️ Failed to check your watch.")
		return
	}
	if w == nil {
		h.send(msg.Chat.ID, "You are not watching anything.\n\nUse /watch to set one up.")
		return
	}

	if err := h.Store.DeleteWatch(msg.Chat.ID); err != nil {
		h.send(msg.Chat.ID, "⚠️ Failed to remove the watch.")
		return
	}

	h.send(msg.Chat.ID, fmt.Sprintf("✅ Stopped watching %s on %s.", w.RoomName, w.Date))
}

func (h *Handler) HandleUnknown(msg *tgbotapi.Message) {
	h.send(msg.Chat.ID, "Unknown command. Try /start")
}
