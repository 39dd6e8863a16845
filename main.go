package main

import (
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"room-bot/config"
	"room-bot/gateway"
	"room-bot/handlers"
	"room-bot/logging"
	"room-bot/storage"
	"room-bot/watcher"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.L().Fatalf("❌ Config error: %v", err)
	}

	logging.Init(cfg.Env, cfg.LogLevel)
	log := logging.L()

	if loc, err := time.LoadLocation(cfg.Timezone); err != nil {
		log.Warnf("⚠️ Failed to load timezone %s: %v (using UTC)", cfg.Timezone, err)
	} else {
		time.Local = loc
		log.Infof("🌍 Timezone set to %s (current time: %s)", cfg.Timezone, time.Now().Format("2006-01-02 15:04:05 MST"))
	}

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		log.Fatalf("❌ Telegram init failed: %v", err)
	}
	log.Infof("🤖 Authorized on account %s", bot.Self.UserName)

	store := storage.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err := store.Ping(); err != nil {
		log.Fatalf("❌ Redis connection failed: %v", err)
	}

	api := gateway.New(cfg.APIBaseURL)

	watchService := watcher.New(bot, store, api, cfg)
	go watchService.Start()

	handler := handlers.New(bot, store, api, cfg, watchService)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := bot.GetUpdatesChan(u)

	log.Info("✅ Bot is running...")

	for update := range updates {
		if update.Message != nil {
			handleMessage(handler, update.Message)
		} else if update.CallbackQuery != nil {
			handleCallback(handler, update.CallbackQuery)
		}
	}
}

func handleMessage(h *handlers.Handler, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		h.HandleStart(msg)

	case "calendar":
		h.HandleCalendar(msg)

	case "rooms":
		h.HandleRooms(msg)

	case "schedule":
		h.HandleSchedule(msg)

	case "quickbook":
		h.HandleQuickBook(msg)

	case "manage":
		h.HandleManage(msg)

	case "addroom":
		h.HandleAddRoom(msg)

	case "watch":
		h.HandleWatch(msg)

	case "unwatch":
		h.HandleUnwatch(msg)

	default:
		h.HandleUnknown(msg)
	}
}

func handleCallback(h *handlers.Handler, cq *tgbotapi.CallbackQuery) {
	if cq == nil || cq.Message == nil {
		return
	}

	data := cq.Data

	switch {
	// Main flow: date, room, slot grid.
	case strings.HasPrefix(data, "cal:"):
		h.HandleCalendarNav(cq, strings.TrimPrefix(data, "cal:"), "")

	case strings.HasPrefix(data, "day:"):
		h.HandleDayPick(cq, strings.TrimPrefix(data, "day:"))

	case strings.HasPrefix(data, "room:"):
		if id, err := handlers.ParseRoomID(strings.TrimPrefix(data, "room:")); err == nil {
			h.HandleRoomPick(cq, id)
		}

	case strings.HasPrefix(data, "pick:"):
		h.HandleSlotPick(cq, strings.TrimPrefix(data, "pick:"))

	case data == "book":
		h.HandleBook(cq)

	case data == "cancel":
		h.HandleCancel(cq)

	// Room administration.
	case strings.HasPrefix(data, "mng_del:"):
		if id, err := handlers.ParseRoomID(strings.TrimPrefix(data, "mng_del:")); err == nil {
			h.HandleRoomDelete(cq, id)
		}

	// Quick booking (random room).
	case strings.HasPrefix(data, "qb_cal:"):
		h.HandleCalendarNav(cq, strings.TrimPrefix(data, "qb_cal:"), "qb_")

	case strings.HasPrefix(data, "qb_day:"):
		h.HandleQuickDay(cq, strings.TrimPrefix(data, "qb_day:"))

	case strings.HasPrefix(data, "qb_nav:"):
		if off, err := strconv.Atoi(strings.TrimPrefix(data, "qb_nav:")); err == nil {
			h.HandleQuickTimeNav(cq, off)
		}

	case strings.HasPrefix(data, "qb_time:"):
		h.HandleQuickTime(cq, strings.TrimPrefix(data, "qb_time:"))

	// Availability watches.
	case strings.HasPrefix(data, "w_cal:"):
		h.HandleCalendarNav(cq, strings.TrimPrefix(data, "w_cal:"), "w_")

	case strings.HasPrefix(data, "w_room:"):
		if id, err := handlers.ParseRoomID(strings.TrimPrefix(data, "w_room:")); err == nil {
			h.HandleWatchRoom(cq, id)
		}

	case strings.HasPrefix(data, "w_day:"):
		h.HandleWatchDay(cq, strings.TrimPrefix(data, "w_day:"))

	case data == "noop":
		h.Bot.Request(tgbotapi.NewCallback(cq.ID, ""))

	default:
		h.Bot.Request(tgbotapi.NewCallback(cq.ID, "Unknown action"))
	}
}
