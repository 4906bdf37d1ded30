package entities

import "strings"

type User struct {
	ID   string
	Name string
}

// Message is a normalized inbound chat message. Content is the identity used
// for repeat matching: the trimmed text, or a synthetic "sticker:<id>" key
// for stickers.
type Message struct {
	Sender        User
	ChatID        string
	ID            string // transport message id, unique within the chat stream
	Content       string
	IsSticker     bool
	StickerFileID string
	StickerSize   int
	Timestamp     int64 // unix seconds of receipt
	FromGroup     bool
}

func NewTextMessage(chatID, messageID string, sender User, text string, timestamp int64, fromGroup bool) Message {
	return Message{
		Sender:    sender,
		ChatID:    chatID,
		ID:        messageID,
		Content:   strings.TrimSpace(text),
		Timestamp: timestamp,
		FromGroup: fromGroup,
	}
}

func NewStickerMessage(chatID, messageID string, sender User, uniqueID, fileID string, size int, timestamp int64, fromGroup bool) Message {
	return Message{
		Sender:        sender,
		ChatID:        chatID,
		ID:            messageID,
		Content:       "sticker:" + uniqueID,
		IsSticker:     true,
		StickerFileID: fileID,
		StickerSize:   size,
		Timestamp:     timestamp,
		FromGroup:     fromGroup,
	}
}

func (m *Message) HasContent() bool {
	return m.Content != ""
}
