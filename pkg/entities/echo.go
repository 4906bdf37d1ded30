package entities

// EchoReceipt holds the identifiers returned by the transport for a sent
// echo. All three are required to retract the message later.
type EchoReceipt struct {
	OutboundID     string
	CreateTime     int64
	TransportMsgID string
}

// Retraction is an inbound event indicating an earlier message was withdrawn.
type Retraction struct {
	ChatID    string
	MessageID string
	Timestamp int64
}
