package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/jessevdk/go-flags"
	"nuclight.org/repeater-tg-bot/app/repeater"
	"nuclight.org/repeater-tg-bot/app/storage"
	"nuclight.org/repeater-tg-bot/app/telegram"
	"nuclight.org/repeater-tg-bot/pkg/logger"
)

var opts struct {
	TelegramAPIToken   string `long:"telegram-api-token" env:"TELEGRAM_API_TOKEN" required:"true" description:"telegram api token"`
	TelegramWorkersNum int    `long:"telegram-workers-num" env:"TELEGRAM_WORKERS_NUM" default:"5" description:"number of workers for telegram bot"`
	DBPath             string `long:"db-path" env:"DB_PATH" default:"./db/repeater.sqlite" description:"path to the sqlite echo journal"`
	SentryDSN          string `long:"sentry-dsn" env:"SENTRY_DSN" description:"sentry dsn, empty disables error reporting"`
	Debug              bool   `long:"debug" env:"DEBUG" description:"enable debug logging"`

	Disable            bool  `long:"disable" env:"REPEATER_DISABLE" description:"disable the repeater, every message becomes a no-op"`
	DisableInGroup     bool  `long:"disable-in-group" env:"REPEATER_DISABLE_IN_GROUP" description:"do not echo in group chats"`
	EnableInPrivate    bool  `long:"enable-in-private" env:"REPEATER_ENABLE_IN_PRIVATE" description:"also echo in private chats"`
	CacheTimeout       int64 `long:"cache-timeout" env:"REPEATER_CACHE_TIMEOUT" default:"3600" description:"chat inactivity timeout in seconds before session eviction"`
	MaxHistory         int   `long:"max-history" env:"REPEATER_MAX_HISTORY" default:"50" description:"messages kept per chat session"`
	MinRepeatCount     int   `long:"min-repeat-count" env:"REPEATER_MIN_REPEAT_COUNT" default:"2" description:"occurrences of a content required for an echo"`
	MinDistinctSenders int   `long:"min-distinct-senders" env:"REPEATER_MIN_DISTINCT_SENDERS" default:"2" description:"distinct senders required for an echo"`
	RetryFailedEchoes  bool  `long:"retry-failed-echoes" env:"REPEATER_RETRY_FAILED_ECHOES" description:"allow another echo attempt after a failed send instead of suppressing the content"`
}

var Revision = "dev"

func main() {
	_, err := flags.Parse(&opts)
	if err != nil {
		os.Exit(1)
	}

	log := logger.NewLogger(opts.Debug)
	log.Info("starting bot", "revision", Revision)

	if opts.SentryDSN != "" {
		err = sentry.Init(sentry.ClientOptions{
			Dsn:     opts.SentryDSN,
			Release: Revision,
		})
		if err != nil {
			log.Error("initializing sentry", "error", err)
			os.Exit(1)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := storage.NewSQLite(ctx, opts.DBPath)
	if err != nil {
		log.Error("creating sqlite3 database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("closing sqlite3 database", "error", err)
		}
	}()

	bot := &telegram.Client{
		Log:        log,
		APIToken:   opts.TelegramAPIToken,
		WorkersNum: opts.TelegramWorkersNum,
	}

	err = bot.Connect(ctx)
	if err != nil {
		log.Error("connecting bot", "error", err)
		os.Exit(1)
	}

	cfg := repeater.Config{
		Enable:               !opts.Disable,
		EnableInGroup:        !opts.DisableInGroup,
		EnableInPrivate:      opts.EnableInPrivate,
		CacheTimeout:         opts.CacheTimeout,
		MaxHistory:           opts.MaxHistory,
		MinRepeatCount:       opts.MinRepeatCount,
		MinDistinctSenders:   opts.MinDistinctSenders,
		BotID:                bot.BotID(),
		SuppressFailedEchoes: !opts.RetryFailedEchoes,
	}

	if err := cfg.Validate(); err != nil {
		log.Error("repeater config invalid, repeater disabled", "error", err)
		cfg.Enable = false
	}

	bot.Handler = &repeater.Handler{
		Log:       log,
		Config:    cfg,
		Store:     repeater.NewStore(cfg.MaxHistory, cfg.CacheTimeout),
		Transport: bot,
		Journal:   db,
	}

	err = bot.Start(ctx)
	if err != nil {
		log.Error("starting bot", "error", err)
		os.Exit(1)
	}

	<-ctx.Done()
	log.Info("stopping bot")

	bot.Wait()
	sentry.Flush(2 * time.Second)

	os.Exit(0)
}
