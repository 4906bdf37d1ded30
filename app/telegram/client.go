package telegram

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	e "nuclight.org/repeater-tg-bot/pkg/entities"
	"nuclight.org/repeater-tg-bot/pkg/logger"
)

type MessageHandler interface {
	HandleMessage(ctx context.Context, msg e.Message) error
	HandleRetraction(ctx context.Context, r e.Retraction) error
}

// Client consumes Telegram updates, normalizes them into the handler's event
// model and exposes the outbound send/retract primitives. The Bot API has no
// deleted-message updates, so an edited message is treated as a retraction
// of its original content followed by a fresh inbound message with the new
// text.
type Client struct {
	Log        logger.Logger
	APIToken   string
	WorkersNum int
	Handler    MessageHandler

	bot *tgbotapi.BotAPI
	wg  sync.WaitGroup
}

// Connect creates the Bot API client. It must be called before Start; after
// it returns, BotID reports the bot's own user id.
func (c *Client) Connect(_ context.Context) (err error) {
	c.bot, err = tgbotapi.NewBotAPI(c.APIToken)
	if err != nil {
		return fmt.Errorf("creating bot api: %w", err)
	}

	c.Log.Info("bot api created", "username", c.bot.Self.UserName)
	return nil
}

// BotID returns the bot's own user id in the same form inbound sender ids
// use.
func (c *Client) BotID() string {
	return strconv.FormatInt(c.bot.Self.ID, 10)
}

func (c *Client) Start(ctx context.Context) error {
	if c.bot == nil {
		return fmt.Errorf("client is not connected")
	}
	if c.WorkersNum == 0 {
		return fmt.Errorf("workers number must be greater than 0")
	}
	if c.Handler == nil {
		return fmt.Errorf("handler is not set")
	}

	updatesConf := tgbotapi.NewUpdate(0)
	updatesConf.Timeout = 60

	updatesChan := c.bot.GetUpdatesChan(updatesConf)

	for i := 0; i < c.WorkersNum; i++ {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			c.handleUpdatesFromChan(ctx, updatesChan)
		}()
	}

	return nil
}

func (c *Client) Wait() {
	c.wg.Wait()
}

func (c *Client) handleUpdatesFromChan(ctx context.Context, updatesChan tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case update := <-updatesChan:
			err := c.handleUpdate(ctx, update)
			if err != nil {
				c.Log.Error("handling update", "tg_update_id", update.UpdateID, "error", err)
			}
		}
	}
}

func (c *Client) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	log := c.Log.With("tg_update_id", update.UpdateID)

	defer func() {
		if err := recover(); err != nil {
			log.Error("panic", "error", err)
		}
	}()

	switch {
	case update.EditedMessage != nil:
		return c.handleEdited(ctx, update.EditedMessage)
	case update.Message != nil:
		return c.handleMessage(ctx, update.Message)
	default:
		return nil
	}
}

func (c *Client) handleMessage(ctx context.Context, message *tgbotapi.Message) error {
	log := c.Log

	if message.From == nil {
		log.Warn("message from is nil")
		return nil
	}

	if message.Chat == nil {
		log.Warn("message chat is nil")
		return nil
	}

	msg, ok := c.decodeMessage(message)
	if !ok {
		return nil
	}

	log.Info(
		"new message",
		"tg_message_id", message.MessageID,
		"tg_user_id", message.From.ID,
		"tg_chat_id", message.Chat.ID,
		"content", msg.Content,
		"is_sticker", msg.IsSticker,
	)

	err := c.Handler.HandleMessage(ctx, msg)
	if err != nil {
		return fmt.Errorf("handling message: %w", err)
	}

	return nil
}

func (c *Client) handleEdited(ctx context.Context, message *tgbotapi.Message) error {
	if message.From == nil || message.Chat == nil {
		return nil
	}

	r := e.Retraction{
		ChatID:    takeChatID(message.Chat),
		MessageID: takeMessageID(message),
		Timestamp: int64(message.EditDate),
	}

	err := c.Handler.HandleRetraction(ctx, r)
	if err != nil {
		return fmt.Errorf("handling retraction: %w", err)
	}

	// The edited text is an utterance of its own. It reuses the original
	// message id, so the window now holds two records with that id; the
	// newest-first lookup resolves later retractions to the edited content,
	// while the stale record keeps counting toward repeats of the old text
	// until it scrolls out.
	msg, ok := c.decodeMessage(message)
	if !ok {
		return nil
	}
	msg.Timestamp = int64(message.EditDate)

	err = c.Handler.HandleMessage(ctx, msg)
	if err != nil {
		return fmt.Errorf("handling edited message: %w", err)
	}

	return nil
}

// decodeMessage normalizes a Telegram message into the handler's record.
// Quotes and mentions are plain text messages here, so they flow through the
// text path on their own. Updates without matchable content are dropped.
func (c *Client) decodeMessage(message *tgbotapi.Message) (e.Message, bool) {
	sender := e.User{
		ID:   takeUserID(message.From),
		Name: takeUserName(message.From),
	}
	chatID := takeChatID(message.Chat)
	fromGroup := !message.Chat.IsPrivate()
	timestamp := int64(message.Date)

	if message.Sticker != nil {
		return e.NewStickerMessage(
			chatID, takeMessageID(message), sender,
			message.Sticker.FileUniqueID, message.Sticker.FileID, message.Sticker.FileSize,
			timestamp, fromGroup,
		), true
	}

	msg := e.NewTextMessage(chatID, takeMessageID(message), sender, message.Text, timestamp, fromGroup)
	if !msg.HasContent() {
		return e.Message{}, false
	}

	return msg, true
}

func (c *Client) SendText(_ context.Context, chatID, text string) (e.EchoReceipt, error) {
	id, err := parseChatID(chatID)
	if err != nil {
		return e.EchoReceipt{}, err
	}

	sent, err := c.bot.Send(tgbotapi.NewMessage(id, text))
	if err != nil {
		return e.EchoReceipt{}, fmt.Errorf("sending message: %w", err)
	}

	return takeReceipt(sent), nil
}

func (c *Client) SendSticker(_ context.Context, chatID, fileID string, _ int) (e.EchoReceipt, error) {
	id, err := parseChatID(chatID)
	if err != nil {
		return e.EchoReceipt{}, err
	}

	sent, err := c.bot.Send(tgbotapi.NewSticker(id, tgbotapi.FileID(fileID)))
	if err != nil {
		return e.EchoReceipt{}, fmt.Errorf("sending sticker: %w", err)
	}

	return takeReceipt(sent), nil
}

func (c *Client) Retract(_ context.Context, chatID string, receipt e.EchoReceipt) (bool, error) {
	id, err := parseChatID(chatID)
	if err != nil {
		return false, err
	}

	messageID, err := strconv.Atoi(receipt.TransportMsgID)
	if err != nil {
		return false, fmt.Errorf("parsing transport message id: %w", err)
	}

	_, err = c.bot.Request(tgbotapi.NewDeleteMessage(id, messageID))
	if err != nil {
		return false, fmt.Errorf("deleting message: %w", err)
	}

	return true, nil
}

// takeReceipt builds the retraction triple for a sent message. Telegram has
// a single message id, so it fills both the outbound and the transport slot.
func takeReceipt(message tgbotapi.Message) e.EchoReceipt {
	id := strconv.Itoa(message.MessageID)
	return e.EchoReceipt{
		OutboundID:     id,
		CreateTime:     int64(message.Date),
		TransportMsgID: id,
	}
}

func parseChatID(chatID string) (int64, error) {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing chat id: %w", err)
	}
	return id, nil
}

func takeMessageID(message *tgbotapi.Message) string {
	return strconv.Itoa(message.MessageID)
}

func takeChatID(chat *tgbotapi.Chat) string {
	return strconv.FormatInt(chat.ID, 10)
}

func takeUserID(user *tgbotapi.User) string {
	return strconv.FormatInt(user.ID, 10)
}

func takeUserName(user *tgbotapi.User) string {
	if user.UserName != "" {
		return "@" + user.UserName
	}

	name := user.FirstName
	if user.LastName != "" {
		name += " " + user.LastName
	}

	if name == "" {
		return takeUserID(user)
	}

	return name
}
