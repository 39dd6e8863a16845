package handlers

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"room-bot/config"
	"room-bot/gateway"
	"room-bot/logging"
	"room-bot/selection"
	"room-bot/storage"
	"room-bot/types"
)

// WatcherInterface lets handlers trigger an immediate availability check
// right after a watch is created.
type WatcherInterface interface {
	CheckWatchNow(chatID int64)
}

type Handler struct {
	Bot     *tgbotapi.BotAPI
	Store   *storage.Storage
	API     *gateway.Client
	Cfg     *config.Config
	Watcher WatcherInterface

	// In-flight multi-step flows, keyed by chat. A bot restart simply asks
	// the user to start the flow again.
	quick      map[int64]string         // chatID -> chosen date for random-room booking
	watchSetup map[int64]*storage.Watch // chatID -> watch under construction
}

func New(bot *tgbotapi.BotAPI, store *storage.Storage, api *gateway.Client, cfg *config.Config, watcher WatcherInterface) *Handler {
	return &Handler{
		Bot:        bot,
		Store:      store,
		API:        api,
		Cfg:        cfg,
		Watcher:    watcher,
		quick:      make(map[int64]string),
		watchSetup: make(map[int64]*storage.Watch),
	}
}

// session loads the chat's session, creating a fresh one the first time.
func (h *Handler) session(chatID int64) (*storage.Session, error) {
	sess, err := h.Store.GetSession(chatID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		sess = &storage.Session{ChatID: chatID, Selected: selection.NewMachine()}
	}
	return sess, nil
}

// rooms returns the roster, served from the short-lived cache when possible.
// The cache is invalidated on every add/delete, so mutations always re-fetch.
func (h *Handler) rooms() ([]types.Room, error) {
	cached, err := h.Store.CachedRooms()
	if err == nil && cached != nil {
		return cached, nil
	}

	rooms, err := h.API.Rooms()
	if err != nil {
		return nil, err
	}
	if err := h.Store.CacheRooms(rooms); err != nil {
		logging.L().Warnf("⚠️ Failed to cache rooms: %v", err)
	}
	return rooms, nil
}

func (h *Handler) send(chatID int64, text string) {
	if _, err := h.Bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		logging.L().Warnf("⚠️ Failed to send message to chat %d: %v", chatID, err)
	}
}

// answer shows a transient popup on the button that was tapped; Telegram
// dismisses it on its own after a few seconds.
func (h *Handler) answer(cq *tgbotapi.CallbackQuery, text string) {
	if _, err := h.Bot.Request(tgbotapi.NewCallback(cq.ID, text)); err != nil {
		logging.L().Warnf("⚠️ Failed to answer callback: %v", err)
	}
}
