package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
	"nuclight.org/repeater-tg-bot/app/storage"
	"nuclight.org/repeater-tg-bot/pkg/logger"
)

var opts struct {
	DBPath string `long:"db-path" env:"DB_PATH" required:"true" description:"path to the sqlite echo journal"`
	Count  int    `short:"c" long:"count" default:"50" description:"number of journal rows to show"`
}

func main() {
	_, err := flags.Parse(&opts)
	if err != nil {
		os.Exit(1)
	}

	log := logger.NewLogger(false)

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

	records, err := db.ListEchoes(ctx, opts.Count)
	if err != nil {
		log.Error("listing echoes from database", "error", err)
		os.Exit(1)
	}

	log.Info("echoes loaded from journal", "count", len(records))

	for _, rec := range records {
		retracted := rec.RetractedAt != nil

		log.Info("echo",
			"id", rec.ID,
			"chat_id", rec.ChatID,
			"content", rec.Content,
			"is_sticker", rec.IsSticker,
			"outbound_id", rec.OutboundID,
			"sent_at", rec.CreatedAt,
			"retracted", retracted,
		)
	}

	os.Exit(0)
}
