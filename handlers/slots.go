package handlers

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"room-bot/logging"
	"room-bot/schedule"
	"room-bot/selection"
	"room-bot/storage"
	"room-bot/types"
)

const slotsPerRow = 4

// HandleDayPick sets the session date. Any previous selection is dropped and
// in-flight fetches for the old date are invalidated.
func (h *Handler) HandleDayPick(cq *tgbotapi.CallbackQuery, date string) {
	chatID := cq.Message.Chat.ID

	if _, err := time.Parse("2006-01-02", date); err != nil {
		h.answer(cq, "⚠️ Bad date")
		return
	}

	sess, err := h.session(chatID)
	if err != nil {
		h.answer(cq, "Error")
		h.send(chatID, "⚠️ Failed to load your session.")
		return
	}

	sess.Date = date
	sess.Selected.Reset()
	sess.Touch()
	if err := h.Store.SaveSession(sess); err != nil {
		h.answer(cq, "Error")
		h.send(chatID, "⚠️ Failed to save your selection.")
		return
	}

	h.answer(cq, "✅ Date: "+date)

	if sess.HasRoom() {
		h.sendGrid(chatID, sess)
	} else {
		h.sendRoomSelection(chatID)
	}
}

// HandleRoomPick sets the session room, mirroring HandleDayPick.
func (h *Handler) HandleRoomPick(cq *tgbotapi.CallbackQuery, roomID int) {
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

	sess, err := h.session(chatID)
	if err != nil {
		h.answer(cq, "Error")
		h.send(chatID, "⚠️ Failed to load your session.")
		return
	}

	sess.RoomID = picked.ID
	sess.RoomName = picked.Name
	sess.Selected.Reset()
	sess.Touch()
	if err := h.Store.SaveSession(sess); err != nil {
		h.answer(cq, "Error")
		h.send(chatID, "⚠️ Failed to save your selection.")
		return
	}

	h.answer(cq, "✅ Room: "+picked.Name)

	if sess.Date != "" {
		h.sendGrid(chatID, sess)
	} else {
		now := time.Now()
		m := tgbotapi.NewMessage(chatID, "📅 Now pick a date")
		m.ReplyMarkup = buildCalendarKeyboard(now.Year(), now.Month(), "")
		h.Bot.Send(m)
	}
}

// HandleSlotPick toggles the selection on one grid cell. The schedule is
// re-fetched first so the decision (free slot vs existing booking) is made on
// fresh data, then the machine routes it.
func (h *Handler) HandleSlotPick(cq *tgbotapi.CallbackQuery, clock string) {
	chatID := cq.Message.Chat.ID

	sess, err := h.session(chatID)
	if err != nil || sess.Date == "" || !sess.HasRoom() {
		h.answer(cq, "⚠️ Pick a date and a room first")
		return
	}

	slots, ok := h.fetchSlots(cq, sess)
	if !ok {
		return
	}

	var picked *types.Slot
	for i := range slots {
		if slots[i].Time == clock {
			picked = &slots[i]
			break
		}
	}
	if picked == nil {
		h.answer(cq, "⚠️ That time is not on the grid")
		return
	}

	sess.Selected.ChooseSlot(*picked)
	sess.Touch()
	if err := h.Store.SaveSession(sess); err != nil {
		h.answer(cq, "Error")
		return
	}

	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, cq.Message.MessageID, buildSlotKeyboard(slots, sess))
	h.Bot.Send(edit)

	if picked.Available() {
		h.answer(cq, "✅ Slot "+clock+" selected")
	} else {
		h.answer(cq, "🔒 Booking at "+clock+" selected for cancelling")
	}
}

// HandleBook commits the chosen free slot. On failure the selection stays as
// it was; on success the machine resets and the grid refreshes once.
func (h *Handler) HandleBook(cq *tgbotapi.CallbackQuery) {
	chatID := cq.Message.Chat.ID

	sess, err := h.session(chatID)
	if err != nil || !sess.HasRoom() || sess.Date == "" {
		h.answer(cq, "⚠️ Pick a date and a room first")
		return
	}

	date, err := time.ParseInLocation("2006-01-02", sess.Date, time.Local)
	if err != nil {
		h.answer(cq, "⚠️ Bad date in session")
		return
	}

	refresh := func() {
		sess.Touch()
		if err := h.Store.SaveSession(sess); err != nil {
			logging.L().Warnf("⚠️ Failed to save session for chat %d: %v", chatID, err)
		}
		h.updateGrid(cq, sess)
	}

	msg, err := sess.Selected.CommitBooking(h.API, sess.RoomID, date, refresh)
	if err != nil {
		if err == selection.ErrNoSlot {
			h.answer(cq, "⚠️ Pick a free slot first")
		} else {
			h.answer(cq, "Error")
			h.send(chatID, fmt.Sprintf("⚠️ %v", err))
		}
		return
	}

	h.answer(cq, "✅ Booked")
	h.send(chatID, "✅ "+msg)
}

// HandleCancel commits the cancellation of the chosen booking.
func (h *Handler) HandleCancel(cq *tgbotapi.CallbackQuery) {
	chatID := cq.Message.Chat.ID

	sess, err := h.session(chatID)
	if err != nil || !sess.HasRoom() {
		h.answer(cq, "⚠️ Pick a date and a room first")
		return
	}

	refresh := func() {
		sess.Touch()
		if err := h.Store.SaveSession(sess); err != nil {
			logging.L().Warnf("⚠️ Failed to save session for chat %d: %v", chatID, err)
		}
		h.updateGrid(cq, sess)
	}

	msg, err := sess.Selected.CommitCancel(h.API, sess.RoomID, refresh)
	if err != nil {
		if err == selection.ErrNoBooking {
			h.answer(cq, "⚠️ Pick an existing booking first")
		} else {
			h.answer(cq, "Error")
			h.send(chatID, fmt.Sprintf("⚠️ %v", err))
		}
		return
	}

	h.answer(cq, "✅ Cancelled")
	h.send(chatID, "✅ "+msg)
}

// fetchSlots pulls the room's schedule and computes the grid, enforcing the
// stale-response guard: if the session moved on (new date, room or selection)
// while the request was in flight, the result is discarded.
func (h *Handler) fetchSlots(cq *tgbotapi.CallbackQuery, sess *storage.Session) ([]types.Slot, bool) {
	seq := sess.Seq

	bookings, err := h.API.RoomSchedule(sess.RoomID)
	if err != nil {
		h.answer(cq, "Error")
		h.send(sess.ChatID, fmt.Sprintf("⚠️ %v", err))
		return nil, false
	}

	current, err := h.Store.GetSession(sess.ChatID)
	if err == nil && current != nil && current.Seq != seq {
		logging.L().Debugf("🕰 Dropping stale schedule for chat %d (seq %d != %d)", sess.ChatID, seq, current.Seq)
		h.answer(cq, "")
		return nil, false
	}

	date, err := time.ParseInLocation("2006-01-02", sess.Date, time.Local)
	if err != nil {
		h.answer(cq, "⚠️ Bad date in session")
		return nil, false
	}

	return schedule.ComputeSlots(h.Cfg.WindowStart, h.Cfg.WindowEnd, h.Cfg.StepMinutes, bookings, date), true
}

func gridText(sess *storage.Session) string {
	return fmt.Sprintf("🗓 %s — %s\n\nTap a free slot to book it, or a 🔒 one to cancel its booking.", sess.Date, sess.RoomName)
}

// sendGrid fetches the schedule and posts a fresh slot grid.
func (h *Handler) sendGrid(chatID int64, sess *storage.Session) {
	seq := sess.Seq

	bookings, err := h.API.RoomSchedule(sess.RoomID)
	if err != nil {
		h.send(chatID, fmt.Sprintf("⚠️ %v", err))
		return
	}

	current, err := h.Store.GetSession(chatID)
	if err == nil && current != nil && current.Seq != seq {
		logging.L().Debugf("🕰 Dropping stale schedule for chat %d (seq %d != %d)", chatID, seq, current.Seq)
		return
	}

	date, err := time.ParseInLocation("2006-01-02", sess.Date, time.Local)
	if err != nil {
		h.send(chatID, "⚠️ Bad date in session.")
		return
	}

	slots := schedule.ComputeSlots(h.Cfg.WindowStart, h.Cfg.WindowEnd, h.Cfg.StepMinutes, bookings, date)

	m := tgbotapi.NewMessage(chatID, gridText(sess))
	m.ReplyMarkup = buildSlotKeyboard(slots, sess)
	h.Bot.Send(m)
}

// updateGrid re-fetches the schedule and rewrites the grid message in place.
func (h *Handler) updateGrid(cq *tgbotapi.CallbackQuery, sess *storage.Session) {
	slots, ok := h.fetchSlots(cq, sess)
	if !ok {
		return
	}

	edit := tgbotapi.NewEditMessageTextAndMarkup(
		cq.Message.Chat.ID,
		cq.Message.MessageID,
		gridText(sess),
		buildSlotKeyboard(slots, sess),
	)
	h.Bot.Send(edit)
}

// buildSlotKeyboard renders the daily grid. Free slots show their time,
// booked ones a lock; the current selection is marked and an action button
// appears only when the matching commit is legal.
func buildSlotKeyboard(slots []types.Slot, sess *storage.Session) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton

	for _, s := range slots {
		label := s.Time
		switch {
		case !s.Available():
			label = "🔒 " + s.Time
			if b := sess.Selected.Booking; b != nil && b.Clock() == s.Time {
				label = "❌ " + s.Time
			}
		case sess.Selected.SlotTime == s.Time:
			label = "✅ " + s.Time
		}

		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, "pick:"+s.Time))
		if len(row) == slotsPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	switch sess.Selected.State() {
	case selection.SlotChosen:
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📒 Book "+sess.Selected.SlotTime, "book"),
		))
	case selection.BookingChosen:
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Cancel booking at "+sess.Selected.Booking.Clock(), "cancel"),
		))
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
