package watcher

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"room-bot/config"
	"room-bot/gateway"
	"room-bot/logging"
	"room-bot/schedule"
	"room-bot/storage"
)

// Watcher periodically recomputes the free slots of every watched room/day
// and tells the chat about slots that were occupied last time but are free
// now.
type Watcher struct {
	Bot   *tgbotapi.BotAPI
	Store *storage.Storage
	API   *gateway.Client
	Cfg   *config.Config
}

func New(bot *tgbotapi.BotAPI, store *storage.Storage, api *gateway.Client, cfg *config.Config) *Watcher {
	return &Watcher{
		Bot:   bot,
		Store: store,
		API:   api,
		Cfg:   cfg,
	}
}

// Start seeds the last-seen cache for existing watches without notifying,
// then runs the adaptive check loop.
func (w *Watcher) Start() {
	logging.L().Info("🔍 Watcher service started")

	w.initializeExistingWatches()

	go w.adaptiveCheckLoop()
}

func (w *Watcher) initializeExistingWatches() {
	watches, err := w.Store.ListWatches()
	if err != nil {
		logging.L().Warnf("⚠️ Error fetching watches: %v", err)
		return
	}

	logging.L().Infof("📋 Found %d existing watches to initialize", len(watches))

	for _, watch := range watches {
		free, err := w.freeTimes(watch)
		if err != nil {
			logging.L().Warnf("⚠️ Error initializing watch for chat %d: %v", watch.ChatID, err)
			continue
		}
		if err := w.Store.SaveLastFree(watch.ChatID, free); err != nil {
			logging.L().Warnf("⚠️ Failed to cache free slots for chat %d: %v", watch.ChatID, err)
		}
	}
}

// adaptiveCheckLoop checks every 20 minutes during the day and backs off to
// 3 hours at night.
func (w *Watcher) adaptiveCheckLoop() {
	for {
		hour := time.Now().Hour()

		var sleepDuration time.Duration
		if hour >= 1 && hour < 8 {
			sleepDuration = 3 * time.Hour
			logging.L().Info("😴 Night mode: next check in 3 hours")
		} else {
			sleepDuration = 20 * time.Minute
			logging.L().Info("🔍 Day mode: next check in 20 minutes")
		}

		time.Sleep(sleepDuration)
		w.checkAll()
	}
}

func (w *Watcher) checkAll() {
	watches, err := w.Store.ListWatches()
	if err != nil {
		logging.L().Warnf("⚠️ Error fetching watches: %v", err)
		return
	}

	logging.L().Infof("📋 Checking %d watches", len(watches))

	for _, watch := range watches {
		w.checkWatch(watch, false)
	}
}

// CheckWatchNow runs one watch immediately, used right after /watch so the
// diff baseline reflects the moment the watch was created.
func (w *Watcher) CheckWatchNow(chatID int64) {
	watch, err := w.Store.GetWatch(chatID)
	if err != nil || watch == nil {
		logging.L().Warnf("⚠️ Error fetching watch for chat %d: %v", chatID, err)
		return
	}

	// Do not block the handler that triggered us.
	go w.checkWatch(watch, true)
}

// checkWatch diffs the current free slots against the last seen set. initial
// runs only refresh the baseline and stay silent.
func (w *Watcher) checkWatch(watch *storage.Watch, initial bool) {
	// Watches for days that have passed clean themselves up.
	if watch.Date < schedule.NormalizeDate(time.Now()) {
		logging.L().Infof("🗑 Watch for chat %d expired (%s), removing", watch.ChatID, watch.Date)
		w.Store.DeleteWatch(watch.ChatID)
		w.send(watch.ChatID, fmt.Sprintf("🔕 Your watch on %s for %s has expired.", watch.RoomName, watch.Date))
		return
	}

	free, err := w.freeTimes(watch)
	if err != nil {
		logging.L().Warnf("⚠️ Error checking watch for chat %d: %v", watch.ChatID, err)
		return
	}

	if initial {
		if err := w.Store.SaveLastFree(watch.ChatID, free); err != nil {
			logging.L().Warnf("⚠️ Failed to cache free slots for chat %d: %v", watch.ChatID, err)
		}
		return
	}

	last, err := w.Store.GetLastFree(watch.ChatID)
	if err != nil {
		logging.L().Warnf("⚠️ Error loading last free slots for chat %d: %v", watch.ChatID, err)
		return
	}

	newlyFree := diff(free, last)
	if len(newlyFree) > 0 {
		w.notify(watch, newlyFree)
	}

	if err := w.Store.SaveLastFree(watch.ChatID, free); err != nil {
		logging.L().Warnf("⚠️ Failed to cache free slots for chat %d: %v", watch.ChatID, err)
	}
}

// freeTimes computes the currently free grid times of the watched room/day.
func (w *Watcher) freeTimes(watch *storage.Watch) ([]string, error) {
	bookings, err := w.API.RoomSchedule(watch.RoomID)
	if err != nil {
		return nil, err
	}

	day, err := time.ParseInLocation("2006-01-02", watch.Date, time.Local)
	if err != nil {
		return nil, fmt.Errorf("bad watch date %q: %w", watch.Date, err)
	}

	slots := schedule.ComputeSlots(w.Cfg.WindowStart, w.Cfg.WindowEnd, w.Cfg.StepMinutes, bookings, day)
	return schedule.FreeTimes(slots), nil
}

// diff returns the entries of current that are missing from last, keeping
// grid order.
func diff(current, last []string) []string {
	seen := make(map[string]bool, len(last))
	for _, t := range last {
		seen[t] = true
	}

	var fresh []string
	for _, t := range current {
		if !seen[t] {
			fresh = append(fresh, t)
		}
	}
	return fresh
}

func (w *Watcher) notify(watch *storage.Watch, times []string) {
	var message strings.Builder
	message.WriteString(fmt.Sprintf("🆕 Slots freed up in *%s* on %s:\n\n", watch.RoomName, watch.Date))
	for _, t := range times {
		message.WriteString(fmt.Sprintf("• %s\n", t))
	}
	message.WriteString("\nUse /calendar to book one.")

	msg := tgbotapi.NewMessage(watch.ChatID, message.String())
	msg.ParseMode = "Markdown"
	if _, err := w.Bot.Send(msg); err != nil {
		logging.L().Warnf("⚠️ Failed to notify chat %d: %v", watch.ChatID, err)
		return
	}

	logging.L().Infof("✅ Notification sent to chat %d (%d slots)", watch.ChatID, len(times))
}

func (w *Watcher) send(chatID int64, text string) {
	if _, err := w.Bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		logging.L().Warnf("⚠️ Failed to send message to chat %d: %v", chatID, err)
	}
}
