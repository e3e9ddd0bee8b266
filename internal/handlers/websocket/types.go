package websocket

// MessageType defines the type of an inbound WebSocket message
type MessageType string

const (
	MessageTypeAudio             MessageType = "audio"
	MessageTypeEndTurn           MessageType = "end_turn"
	MessageTypeInterrupt         MessageType = "interrupt"
	MessageTypeStatus            MessageType = "status"
	MessageTypeBotSpeechComplete MessageType = "bot_speech_complete"
)

// WSMessage is the envelope of every inbound message. Only audio messages
// carry a payload.
type WSMessage struct {
	Type        MessageType `json:"type"`
	AudioBase64 string      `json:"audio_base64,omitempty"`
	Format      string      `json:"format,omitempty"`
}
