package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTextMessageTrimsContent(t *testing.T) {
	msg := NewTextMessage("g1", "m1", User{ID: "a"}, "  hi \n", 100, true)

	assert.Equal(t, "hi", msg.Content)
	assert.True(t, msg.HasContent())
	assert.False(t, msg.IsSticker)
}

func TestNewTextMessageEmpty(t *testing.T) {
	msg := NewTextMessage("g1", "m1", User{ID: "a"}, "   ", 100, true)

	assert.False(t, msg.HasContent())
}

func TestNewStickerMessageSyntheticKey(t *testing.T) {
	msg := NewStickerMessage("g1", "m1", User{ID: "a"}, "abc123", "file-1", 256, 100, true)

	assert.Equal(t, "sticker:abc123", msg.Content)
	assert.True(t, msg.IsSticker)
	assert.Equal(t, "file-1", msg.StickerFileID)
	assert.Equal(t, 256, msg.StickerSize)
}
