package repeater

import "fmt"

// Config is the parsed settings surface of the repeater. The host process
// owns loading; the handler only consumes the values.
type Config struct {
	Enable          bool
	EnableInGroup   bool
	EnableInPrivate bool

	// CacheTimeout is the chat inactivity timeout in seconds after which a
	// session is evicted.
	CacheTimeout int64

	// MaxHistory bounds the per-chat message window.
	MaxHistory int

	MinRepeatCount     int
	MinDistinctSenders int

	// BotID is the bot's own sender id, excluded from repeat counting so the
	// bot never triggers off its own echo.
	BotID string

	// SuppressFailedEchoes keeps a content marked as echoed even when the
	// outbound send failed, matching the legacy plugin. When false, a failed
	// echo may be retried on the next repeat of the same content.
	SuppressFailedEchoes bool
}

func (c Config) Validate() error {
	if c.CacheTimeout <= 0 {
		return fmt.Errorf("cache timeout must be positive, got %d", c.CacheTimeout)
	}
	if c.MaxHistory <= 0 {
		return fmt.Errorf("max history must be positive, got %d", c.MaxHistory)
	}
	if c.MinRepeatCount < 1 {
		return fmt.Errorf("min repeat count must be at least 1, got %d", c.MinRepeatCount)
	}
	if c.MinDistinctSenders < 1 {
		return fmt.Errorf("min distinct senders must be at least 1, got %d", c.MinDistinctSenders)
	}
	if c.BotID == "" {
		return fmt.Errorf("bot id must not be empty")
	}
	return nil
}
