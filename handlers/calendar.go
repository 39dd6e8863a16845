package handlers

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// buildCalendarKeyboard renders one month as an inline keyboard. prefix
// distinguishes the flow the calendar belongs to ("" for the main grid,
// "qb_" for quick booking, "w_" for watches); day buttons carry
// "<prefix>day:YYYY-MM-DD" and the nav arrows "<prefix>cal:YYYY-MM".
func buildCalendarKeyboard(year int, month time.Month, prefix string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)

	header := tgbotapi.NewInlineKeyboardButtonData(first.Format("January 2006"), "noop")
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(header))

	var weekdays []tgbotapi.InlineKeyboardButton
	for _, wd := range []string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"} {
		weekdays = append(weekdays, tgbotapi.NewInlineKeyboardButtonData(wd, "noop"))
	}
	rows = append(rows, weekdays)

	// Monday-first offset of the 1st, then the day cells.
	offset := (int(first.Weekday()) + 6) % 7
	daysInMonth := time.Date(year, month+1, 0, 0, 0, 0, 0, time.Local).Day()

	var week []tgbotapi.InlineKeyboardButton
	for i := 0; i < offset; i++ {
		week = append(week, tgbotapi.NewInlineKeyboardButtonData(" ", "noop"))
	}
	for day := 1; day <= daysInMonth; day++ {
		date := time.Date(year, month, day, 0, 0, 0, 0, time.Local)
		btn := tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("%d", day),
			fmt.Sprintf("%sday:%s", prefix, date.Format("2006-01-02")),
		)
		week = append(week, btn)
		if len(week) == 7 {
			rows = append(rows, week)
			week = nil
		}
	}
	if len(week) > 0 {
		for len(week) < 7 {
			week = append(week, tgbotapi.NewInlineKeyboardButtonData(" ", "noop"))
		}
		rows = append(rows, week)
	}

	prev := first.AddDate(0, -1, 0)
	next := first.AddDate(0, 1, 0)
	nav := tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("◀️", fmt.Sprintf("%scal:%s", prefix, prev.Format("2006-01"))),
		tgbotapi.NewInlineKeyboardButtonData("▶️", fmt.Sprintf("%scal:%s", prefix, next.Format("2006-01"))),
	)
	rows = append(rows, nav)

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// HandleCalendarNav flips the calendar to another month in place.
func (h *Handler) HandleCalendarNav(cq *tgbotapi.CallbackQuery, yearMonth, prefix string) {
	target, err := time.Parse("2006-01", yearMonth)
	if err != nil {
		h.answer(cq, "⚠️ Bad month")
		return
	}

	edit := tgbotapi.NewEditMessageReplyMarkup(
		cq.Message.Chat.ID,
		cq.Message.MessageID,
		buildCalendarKeyboard(target.Year(), target.Month(), prefix),
	)
	h.Bot.Send(edit)
	h.answer(cq, "")
}
