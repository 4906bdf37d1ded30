package repeater

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	e "nuclight.org/repeater-tg-bot/pkg/entities"
	"nuclight.org/repeater-tg-bot/pkg/logger"
	"nuclight.org/repeater-tg-bot/pkg/mutex"
)

// Transport is the outbound surface the handler needs from the chat
// transport.
type Transport interface {
	SendText(ctx context.Context, chatID, text string) (e.EchoReceipt, error)
	SendSticker(ctx context.Context, chatID, fileID string, size int) (e.EchoReceipt, error)
	Retract(ctx context.Context, chatID string, receipt e.EchoReceipt) (bool, error)
}

// EchoJournal records sent echoes and their retractions for later
// inspection. It is an audit trail only and is never read back into session
// state.
type EchoJournal interface {
	SaveEcho(ctx context.Context, msg e.Message, receipt e.EchoReceipt) (int64, error)
	MarkRetracted(ctx context.Context, chatID string, receipt e.EchoReceipt) error
}

// Handler is the echo coordinator. For each inbound message it sweeps stale
// sessions, appends the message to its chat's window and echoes the content
// once multiple distinct senders have repeated it. A content is echoed at
// most once per session; if the triggering message is later retracted, the
// echo is retracted too.
//
// Transport failures are absorbed and logged so the host pipeline always
// keeps processing. All mutation of one chat's session happens under that
// chat's lock.
type Handler struct {
	// Log is a logger
	Log logger.Logger

	// Config is the parsed repeater configuration
	Config Config

	// Store holds the per-chat sessions
	Store *Store

	// Transport sends and retracts outbound messages
	Transport Transport

	// Journal is an optional audit log of echoes, may be nil
	Journal EchoJournal

	// Now overrides the clock when set, used in tests
	Now func() int64

	chatLocks mutex.KeyedMutex
}

// HandleMessage runs the full inbound path for one message. The returned
// error reports journaling problems only; detection and transport outcomes
// never surface as errors.
func (h *Handler) HandleMessage(ctx context.Context, msg e.Message) error {
	if !h.enabledFor(msg) {
		return nil
	}

	h.sweep()

	h.chatLocks.Lock(msg.ChatID)
	defer h.chatLocks.Unlock(msg.ChatID)

	session := h.Store.GetOrCreate(msg.ChatID)
	session.Append(msg)

	if session.HasBeenEchoed(msg.Content) {
		h.Log.Debug("content already echoed, skipping", "chat_id", msg.ChatID, "content", msg.Content)
		return nil
	}

	if !ShouldEcho(session, msg.Content, h.Config.BotID, h.Config.MinRepeatCount, h.Config.MinDistinctSenders) {
		return nil
	}

	h.Log.Info("echoing repeated content",
		"chat_id", msg.ChatID,
		"content", msg.Content,
		"is_sticker", msg.IsSticker,
	)

	receipt, err := h.send(ctx, msg)
	if err != nil {
		h.Log.Error("sending echo", "chat_id", msg.ChatID, "content", msg.Content, "error", err)
		sentry.CaptureException(err)

		if h.Config.SuppressFailedEchoes {
			session.MarkSuppressed(msg.Content)
		}
		return nil
	}

	session.MarkEchoed(msg.Content, receipt)

	if h.Journal != nil {
		if _, err := h.Journal.SaveEcho(ctx, msg, receipt); err != nil {
			return fmt.Errorf("journaling echo: %w", err)
		}
	}

	return nil
}

// HandleRetraction retracts the bot's echo when the message that carried the
// echoed content is withdrawn. Missing session, unknown message id or absent
// receipt are expected steady-state outcomes, not failures.
func (h *Handler) HandleRetraction(ctx context.Context, r e.Retraction) error {
	if !h.Config.Enable {
		return nil
	}

	h.chatLocks.Lock(r.ChatID)
	defer h.chatLocks.Unlock(r.ChatID)

	session, ok := h.Store.Get(r.ChatID)
	if !ok {
		return nil
	}

	msg, ok := session.FindByMessageID(r.MessageID)
	if !ok {
		return nil
	}

	receipt, ok := session.ReceiptFor(msg.Content)
	if !ok {
		return nil
	}

	h.Log.Info("retracting echo", "chat_id", r.ChatID, "content", msg.Content)

	retracted, err := h.Transport.Retract(ctx, r.ChatID, receipt)
	if err != nil {
		h.Log.Error("retracting echo", "chat_id", r.ChatID, "error", err)
		sentry.CaptureException(err)
		return nil
	}
	if !retracted {
		h.Log.Error("echo retraction rejected by transport", "chat_id", r.ChatID)
		return nil
	}

	if h.Journal != nil {
		if err := h.Journal.MarkRetracted(ctx, r.ChatID, receipt); err != nil {
			return fmt.Errorf("journaling retraction: %w", err)
		}
	}

	return nil
}

func (h *Handler) enabledFor(msg e.Message) bool {
	if !h.Config.Enable {
		return false
	}
	if msg.FromGroup {
		return h.Config.EnableInGroup
	}
	return h.Config.EnableInPrivate
}

// sweep evicts stale sessions. Cleanup piggybacks on every inbound message
// instead of running on its own schedule. Each eviction happens under the
// chat's lock so a session is never dropped mid-append.
func (h *Handler) sweep() {
	now := h.now()

	for _, chatID := range h.Store.ExpiredChats(now) {
		h.chatLocks.Lock(chatID)
		if h.Store.DropIfExpired(chatID, now) {
			h.Log.Debug("expired session removed", "chat_id", chatID)
		}
		h.chatLocks.Unlock(chatID)
	}
}

func (h *Handler) send(ctx context.Context, msg e.Message) (e.EchoReceipt, error) {
	if msg.IsSticker {
		return h.Transport.SendSticker(ctx, msg.ChatID, msg.StickerFileID, msg.StickerSize)
	}
	return h.Transport.SendText(ctx, msg.ChatID, msg.Content)
}

func (h *Handler) now() int64 {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().Unix()
}
