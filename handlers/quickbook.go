package handlers

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"room-bot/schedule"
)

const timesPerPage = 6

// HandleQuickDay stores the chosen date and moves to the time step.
func (h *Handler) HandleQuickDay(cq *tgbotapi.CallbackQuery, date string) {
	chatID := cq.Message.Chat.ID

	if _, err := time.Parse("2006-01-02", date); err != nil {
		h.answer(cq, "⚠️ Bad date")
		return
	}

	h.quick[chatID] = date
	h.answer(cq, "✅ Date: "+date)

	m := tgbotapi.NewMessage(chatID, fmt.Sprintf("⏰ Step 2/2: Pick a time for *%s*", date))
	m.ParseMode = "Markdown"
	m.ReplyMarkup = h.buildTimeKeyboard(0)
	h.Bot.Send(m)
}

// buildTimeKeyboard pages through the grid times two per row, with nav
// arrows when there is more.
func (h *Handler) buildTimeKeyboard(offset int) tgbotapi.InlineKeyboardMarkup {
	times := h.gridTimes()

	if offset < 0 {
		offset = 0
	}
	end := offset + timesPerPage
	if end > len(times) {
		end = len(times)
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for i := offset; i < end; i += 2 {
		row := []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(times[i], "qb_time:"+times[i]),
		}
		if i+1 < end {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(times[i+1], "qb_time:"+times[i+1]))
		}
		rows = append(rows, row)
	}

	var nav []tgbotapi.InlineKeyboardButton
	if offset > 0 {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("◀️ Back", fmt.Sprintf("qb_nav:%d", offset-timesPerPage)))
	}
	if end < len(times) {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("Next ▶️", fmt.Sprintf("qb_nav:%d", offset+timesPerPage)))
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// gridTimes is the configured daily grid with no occupancy applied.
func (h *Handler) gridTimes() []string {
	slots := schedule.ComputeSlots(h.Cfg.WindowStart, h.Cfg.WindowEnd, h.Cfg.StepMinutes, nil, time.Now())
	times := make([]string, len(slots))
	for i, s := range slots {
		times[i] = s.Time
	}
	return times
}

func (h *Handler) HandleQuickTimeNav(cq *tgbotapi.CallbackQuery, offset int) {
	edit := tgbotapi.NewEditMessageReplyMarkup(cq.Message.Chat.ID, cq.Message.MessageID, h.buildTimeKeyboard(offset))
	h.Bot.Send(edit)
	h.answer(cq, "")
}

// HandleQuickTime books any free room for the stored date at the tapped
// time. A missing date is caught locally before any network call.
func (h *Handler) HandleQuickTime(cq *tgbotapi.CallbackQuery, clock string) {
	chatID := cq.Message.Chat.ID

	date, ok := h.quick[chatID]
	if !ok || date == "" {
		h.answer(cq, "⚠️ Please select a date first")
		return
	}
	if clock == "" {
		h.answer(cq, "⚠️ Please select a time")
		return
	}

	// room_id = null: the store picks any available room.
	result, err := h.API.BookRoom(date, clock, nil)
	if err != nil {
		h.answer(cq, "Error")
		h.send(chatID, fmt.Sprintf("⚠️ %v", err))
		return
	}

	delete(h.quick, chatID)
	h.answer(cq, "✅ Booked")
	if result.Message != "" {
		h.send(chatID, "✅ "+result.Message)
	} else {
		h.send(chatID, fmt.Sprintf("✅ Room booked for %s at %s.", date, clock))
	}
}
