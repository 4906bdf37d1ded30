package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	e "nuclight.org/repeater-tg-bot/pkg/entities"
)

// SQLite is the echo journal: one row per echo the bot sent, updated in
// place when the echo is retracted.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(ctx context.Context, filePath string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", filePath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite3 database: %w", err)
	}

	client := &SQLite{
		db: db,
	}

	err = client.init(ctx)
	if err != nil {
		return nil, fmt.Errorf("initializing sqlite3 database: %w", err)
	}

	return client, nil
}

func (c *SQLite) Close() error {
	return c.db.Close()
}

func (c *SQLite) SaveEcho(ctx context.Context, msg e.Message, receipt e.EchoReceipt) (int64, error) {
	result, err := c.db.ExecContext(
		ctx,
		`INSERT INTO echoes (
			chat_id, content, is_sticker, trigger_message_id, trigger_sender_id,
			outbound_id, create_time, transport_msg_id, created_at
		) VALUES (
			?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP
		)`,
		msg.ChatID, msg.Content, msg.IsSticker, msg.ID, msg.Sender.ID,
		receipt.OutboundID, receipt.CreateTime, receipt.TransportMsgID,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting echo: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return id, nil
}

func (c *SQLite) MarkRetracted(ctx context.Context, chatID string, receipt e.EchoReceipt) error {
	_, err := c.db.ExecContext(
		ctx,
		`UPDATE echoes SET retracted_at = CURRENT_TIMESTAMP
			WHERE chat_id = ? AND outbound_id = ? AND transport_msg_id = ?`,
		chatID, receipt.OutboundID, receipt.TransportMsgID,
	)
	return err
}

type EchoRecord struct {
	ID          int64
	ChatID      string
	Content     string
	IsSticker   bool
	OutboundID  string
	CreatedAt   time.Time
	RetractedAt *time.Time
}

// ListEchoes returns the most recent journal rows, newest first.
func (c *SQLite) ListEchoes(ctx context.Context, limit int) ([]EchoRecord, error) {
	rows, err := c.db.QueryContext(
		ctx,
		`SELECT id, chat_id, content, is_sticker, outbound_id, created_at, retracted_at
			FROM echoes ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying echoes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []EchoRecord
	for rows.Next() {
		var rec EchoRecord
		err = rows.Scan(
			&rec.ID, &rec.ChatID, &rec.Content, &rec.IsSticker,
			&rec.OutboundID, &rec.CreatedAt, &rec.RetractedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning echo row: %w", err)
		}
		records = append(records, rec)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating echo rows: %w", err)
	}

	return records, nil
}

//go:embed init.sql
var initQuery string

func (c *SQLite) init(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, initQuery)
	return err
}
