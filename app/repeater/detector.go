package repeater

// ShouldEcho reports whether content qualifies for an echo given the current
// session window. It is true iff the content has not been echoed before, at
// least minRepeatCount messages in the window carry it, they come from at
// least minDistinctSenders distinct senders, and the bot itself is not among
// those senders. Counting both occurrences and senders picks convergent
// repetition over one user spamming the same line.
func ShouldEcho(s *Session, content, botID string, minRepeatCount, minDistinctSenders int) bool {
	if s.HasBeenEchoed(content) {
		return false
	}

	count := 0
	senders := make(map[string]struct{})

	for _, msg := range s.window {
		if msg.Content != content {
			continue
		}
		count++
		senders[msg.Sender.ID] = struct{}{}
	}

	if _, fromBot := senders[botID]; fromBot {
		return false
	}

	return count >= minRepeatCount && len(senders) >= minDistinctSenders
}
