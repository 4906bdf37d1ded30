package repeater

import (
	e "nuclight.org/repeater-tg-bot/pkg/entities"
)

// Session tracks the recent messages of one chat together with the contents
// the bot has already echoed there. The message window is a FIFO bounded by
// maxHistory; the echoed set never shrinks, so a content stays suppressed for
// the life of the session even after its messages scroll out of the window.
// Receipts likewise survive window eviction.
//
// Session is not safe for concurrent use. The coordinator serializes all
// access per chat id.
type Session struct {
	maxHistory int
	window     []e.Message
	echoed     map[string]struct{}
	receipts   map[string]e.EchoReceipt
}

func NewSession(maxHistory int) *Session {
	return &Session{
		maxHistory: maxHistory,
		echoed:     make(map[string]struct{}),
		receipts:   make(map[string]e.EchoReceipt),
	}
}

// Append pushes a message to the end of the window, evicting the oldest one
// when the window is full. It never rejects a message.
func (s *Session) Append(msg e.Message) {
	s.window = append(s.window, msg)
	if len(s.window) > s.maxHistory {
		s.window = s.window[1:]
	}
}

func (s *Session) Len() int {
	return len(s.window)
}

func (s *Session) HasBeenEchoed(content string) bool {
	_, ok := s.echoed[content]
	return ok
}

// MarkEchoed records content as echoed and stores the receipt needed to
// retract the echo later. Calling it again overwrites the receipt.
func (s *Session) MarkEchoed(content string, receipt e.EchoReceipt) {
	s.echoed[content] = struct{}{}
	s.receipts[content] = receipt
}

// MarkSuppressed records content as echoed without a receipt. Used when a
// send failed but the content must stay suppressed anyway; a receipt is only
// ever stored for an echo that was actually sent.
func (s *Session) MarkSuppressed(content string) {
	s.echoed[content] = struct{}{}
}

// FindByMessageID scans the window from the most recent message to the
// oldest and returns the first one with the given transport id. A message
// that has scrolled out of the window is unrecoverable.
func (s *Session) FindByMessageID(messageID string) (e.Message, bool) {
	for i := len(s.window) - 1; i >= 0; i-- {
		if s.window[i].ID == messageID {
			return s.window[i], true
		}
	}
	return e.Message{}, false
}

func (s *Session) ReceiptFor(content string) (e.EchoReceipt, bool) {
	receipt, ok := s.receipts[content]
	return receipt, ok
}

// LatestTimestamp returns the timestamp of the newest message in the window.
// ok is false for an empty window.
func (s *Session) LatestTimestamp() (int64, bool) {
	if len(s.window) == 0 {
		return 0, false
	}

	latest := s.window[0].Timestamp
	for _, msg := range s.window[1:] {
		if msg.Timestamp > latest {
			latest = msg.Timestamp
		}
	}
	return latest, true
}
