package router

// HostEvent is a fully-formed notification the router hands to whatever
// owns the UI/API surface (a desktop shell, a CLI, an HTTP handler). Name
// mirrors the event names a host would subscribe to.
type HostEvent struct {
	Name string
	Data interface{}
}

// NewMessage is emitted after a decrypted, persisted inbound envelope.
type NewMessage struct {
	ID             string      `json:"id"`
	ThreadID       string      `json:"thread_id"`
	FromPublicKey  string      `json:"from_public_key"`
	FromHandle     string      `json:"from_handle,omitempty"`
	PayloadType    string      `json:"payload_type"`
	Payload        interface{} `json:"payload"`
	TimestampMs    int64       `json:"timestamp"`
	SignatureValid bool        `json:"signature_valid"`
}

// MessageSyncedEvent mirrors a message across devices of the same owner.
type MessageSyncedEvent struct {
	ID               string `json:"id"`
	ConversationWith string `json:"conversationWith"`
	Text             string `json:"text"`
	Direction        string `json:"direction"`
	TimestampMs      int64  `json:"timestamp"`
	FromHandle       string `json:"fromHandle,omitempty"`
}

// MessageRead is emitted after a read receipt is applied locally.
type MessageRead struct {
	ID string `json:"id"`
}

// ConnectionStatusEvent mirrors relay.ConnectionStatus for the host.
type ConnectionStatusEvent struct {
	MobilePresent bool `json:"mobile"`
	BrowserCount  int  `json:"browsers"`
}

// WelcomeEvent mirrors relay.Welcome for the host.
type WelcomeEvent struct {
	PublicKey string `json:"public_key"`
}

// Emitter delivers host events. A host implements this with whatever
// transport it actually has (window events, SSE, a channel); Sink is the
// trivial channel-backed implementation used by tests and simple hosts.
type Emitter interface {
	Emit(event HostEvent)
}

// Sink is an Emitter that buffers events on a channel.
type Sink struct {
	events chan HostEvent
}

// NewSink creates a Sink with the given buffer size.
func NewSink(buffer int) *Sink {
	return &Sink{events: make(chan HostEvent, buffer)}
}

func (s *Sink) Emit(event HostEvent) {
	s.events <- event
}

// Events returns the channel a host should range over.
func (s *Sink) Events() <-chan HostEvent {
	return s.events
}
