package repeater

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	e "nuclight.org/repeater-tg-bot/pkg/entities"
)

func testMessage(chatID, msgID, senderID, content string, ts int64) e.Message {
	return e.NewTextMessage(chatID, msgID, e.User{ID: senderID, Name: senderID}, content, ts, true)
}

func TestSessionWindowBound(t *testing.T) {
	s := NewSession(5)

	for i := 0; i < 12; i++ {
		s.Append(testMessage("g1", fmt.Sprintf("m%d", i), "a", "hi", int64(i)))
	}

	assert.Equal(t, 5, s.Len())

	// the earliest records are gone, the newest survive
	for i := 0; i < 7; i++ {
		_, ok := s.FindByMessageID(fmt.Sprintf("m%d", i))
		assert.False(t, ok, "m%d should have been evicted", i)
	}
	for i := 7; i < 12; i++ {
		_, ok := s.FindByMessageID(fmt.Sprintf("m%d", i))
		assert.True(t, ok, "m%d should still be in the window", i)
	}
}

func TestSessionFindByMessageIDNewestFirst(t *testing.T) {
	// A transport may re-ingest edited messages under the original id, so
	// duplicate ids in the window are a supported case: the lookup must
	// always resolve to the newest record for an id.
	s := NewSession(10)
	s.Append(testMessage("g1", "m1", "a", "original content", 1))
	s.Append(testMessage("g1", "m2", "b", "unrelated", 2))
	s.Append(testMessage("g1", "m1", "a", "edited content", 3))

	msg, ok := s.FindByMessageID("m1")
	require.True(t, ok)
	assert.Equal(t, "edited content", msg.Content)

	// a second edit wins over the first
	s.Append(testMessage("g1", "m1", "a", "edited twice", 4))
	msg, ok = s.FindByMessageID("m1")
	require.True(t, ok)
	assert.Equal(t, "edited twice", msg.Content)

	_, ok = s.FindByMessageID("missing")
	assert.False(t, ok)
}

func TestSessionMarkEchoed(t *testing.T) {
	s := NewSession(10)
	receipt := e.EchoReceipt{OutboundID: "100", CreateTime: 42, TransportMsgID: "100"}

	assert.False(t, s.HasBeenEchoed("hi"))

	s.MarkEchoed("hi", receipt)

	assert.True(t, s.HasBeenEchoed("hi"))
	got, ok := s.ReceiptFor("hi")
	require.True(t, ok)
	assert.Equal(t, receipt, got)

	// marking again overwrites the receipt
	other := e.EchoReceipt{OutboundID: "200", CreateTime: 43, TransportMsgID: "200"}
	s.MarkEchoed("hi", other)
	got, ok = s.ReceiptFor("hi")
	require.True(t, ok)
	assert.Equal(t, other, got)
}

func TestSessionMarkSuppressedStoresNoReceipt(t *testing.T) {
	s := NewSession(10)

	s.MarkSuppressed("hi")

	assert.True(t, s.HasBeenEchoed("hi"))
	_, ok := s.ReceiptFor("hi")
	assert.False(t, ok)
}

func TestSessionEchoStateSurvivesWindowEviction(t *testing.T) {
	s := NewSession(3)
	receipt := e.EchoReceipt{OutboundID: "100", CreateTime: 42, TransportMsgID: "100"}

	s.Append(testMessage("g1", "m1", "a", "hi", 1))
	s.MarkEchoed("hi", receipt)

	// scroll the triggering message out of the window
	for i := 2; i <= 5; i++ {
		s.Append(testMessage("g1", fmt.Sprintf("m%d", i), "a", "other", int64(i)))
	}
	_, ok := s.FindByMessageID("m1")
	require.False(t, ok)

	assert.True(t, s.HasBeenEchoed("hi"))
	got, ok := s.ReceiptFor("hi")
	require.True(t, ok)
	assert.Equal(t, receipt, got)
}

func TestSessionLatestTimestamp(t *testing.T) {
	s := NewSession(10)

	_, ok := s.LatestTimestamp()
	assert.False(t, ok)

	s.Append(testMessage("g1", "m1", "a", "hi", 10))
	s.Append(testMessage("g1", "m2", "b", "hi", 30))
	s.Append(testMessage("g1", "m3", "c", "hi", 20))

	latest, ok := s.LatestTimestamp()
	require.True(t, ok)
	assert.Equal(t, int64(30), latest)
}
