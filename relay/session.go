// Package relay implements the persistent duplex WebSocket session that
// carries envelopes and device-sync frames between a client and the relay
// server (C6).
package relay

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cayerbe/gns-core/gnserr"
	"github.com/cayerbe/gns-core/gnslog"
	"github.com/cayerbe/gns-core/metrics"
)

// State is the session's connection lifecycle state.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
	Reconnecting
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Reconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}

// Device identifies which kind of client is dialing the relay.
type Device string

const (
	DeviceDesktop Device = "desktop"
	DeviceMobile  Device = "mobile"
)

const (
	outboundQueueSize = 64
	dialTimeout       = 30 * time.Second
	baseBackoffMs     = 1000
	maxBackoffMs      = 30000
)

// Session is a long-lived duplex WebSocket connection to the relay.
// Inbound frames are decoded and delivered to Inbound(); outbound frames
// are queued on a bounded channel drained by a single writer goroutine.
type Session struct {
	baseURL string
	dialer  *websocket.Dialer

	mu       sync.Mutex
	conn     *websocket.Conn
	state    State
	attempts int

	lastActivity time.Time

	outbound chan []byte
	inbound  chan Inbound

	log gnslog.Logger
}

// New creates a Session that will dial baseURL (a ws:// or wss:// URL
// without query parameters; Connect appends pk/device).
func New(baseURL string, log gnslog.Logger) *Session {
	if log == nil {
		log = gnslog.NewDefaultLogger()
	}
	return &Session{
		baseURL:  baseURL,
		dialer:   &websocket.Dialer{HandshakeTimeout: dialTimeout},
		state:    Disconnected,
		outbound: make(chan []byte, outboundQueueSize),
		inbound:  make(chan Inbound, outboundQueueSize),
		log:      log,
	}
}

// State returns the current connection state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Inbound returns the channel the host should range over to receive
// demultiplexed frames.
func (s *Session) Inbound() <-chan Inbound {
	return s.inbound
}

// LastActivity returns the time of the most recently received frame.
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// Connect dials the relay with the given signer public key and device
// kind, then starts the reader and writer goroutines.
func (s *Session) Connect(ctx context.Context, signerPubHex string, device Device) error {
	s.mu.Lock()
	if s.conn != nil {
		s.mu.Unlock()
		return nil
	}
	s.state = Connecting
	s.mu.Unlock()

	u, err := url.Parse(s.baseURL)
	if err != nil {
		return gnserr.Wrap(gnserr.KindConnectionError, "parse relay url", err)
	}
	q := u.Query()
	q.Set("pk", signerPubHex)
	q.Set("device", string(device))
	u.RawQuery = q.Encode()

	conn, resp, err := s.dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		s.mu.Lock()
		s.state = Disconnected
		s.attempts++
		s.mu.Unlock()
		metrics.ReconnectAttempts.Inc()
		if resp != nil {
			return gnserr.Wrap(gnserr.KindConnectionError, fmt.Sprintf("relay dial failed (HTTP %d)", resp.StatusCode), err)
		}
		return gnserr.Wrap(gnserr.KindConnectionError, "relay dial failed", err)
	}

	s.mu.Lock()
	s.conn = conn
	s.state = Connected
	s.attempts = 0
	s.mu.Unlock()

	metrics.ConnectionState.Set(float64(Connected))

	go s.readLoop()
	go s.writeLoop()

	return nil
}

// Reconnect sleeps according to the backoff formula (min(1000*2^attempts,
// 30000)ms) and then reconnects. The caller is expected to invoke this
// after observing Disconnected following a read/write failure.
func (s *Session) Reconnect(ctx context.Context, signerPubHex string, device Device) error {
	s.mu.Lock()
	s.state = Reconnecting
	attempts := s.attempts
	s.mu.Unlock()

	backoff := backoffMs(attempts)

	select {
	case <-time.After(time.Duration(backoff) * time.Millisecond):
	case <-ctx.Done():
		return ctx.Err()
	}

	return s.Connect(ctx, signerPubHex, device)
}

// backoffMs computes the reconnect delay: min(1000*2^attempts, 30000)ms.
func backoffMs(attempts int) int {
	if attempts > 20 {
		return maxBackoffMs
	}
	backoff := baseBackoffMs * (1 << attempts)
	if backoff > maxBackoffMs {
		return maxBackoffMs
	}
	return backoff
}

// SendEnvelopeFrame queues an outbound envelope. Overflow of the bounded
// queue blocks the caller per the spec's "overflow blocks" invariant.
func (s *Session) SendEnvelopeFrame(frame []byte) {
	s.outbound <- frame
}

// SendRaw queues an arbitrary pre-encoded JSON frame.
func (s *Session) SendRaw(raw []byte) {
	s.outbound <- raw
}

func (s *Session) readLoop() {
	defer s.markDisconnected()

	for {
		s.mu.Lock()
		conn := s.conn
		s.mu.Unlock()
		if conn == nil {
			return
		}

		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Error("relay read error", gnslog.Error(err))
			}
			return
		}

		s.mu.Lock()
		s.lastActivity = time.Now()
		s.mu.Unlock()

		metrics.FramesProcessed.WithLabelValues("inbound", "ok").Inc()
		s.inbound <- DecodeFrame(raw)
	}
}

func (s *Session) writeLoop() {
	for raw := range s.outbound {
		s.mu.Lock()
		conn := s.conn
		s.mu.Unlock()
		if conn == nil {
			return
		}
		if err := conn.WriteMessage(websocket.TextMessage, raw); err != nil {
			s.log.Error("relay write error", gnslog.Error(err))
			s.markDisconnected()
			return
		}
		metrics.FramesProcessed.WithLabelValues("outbound", "ok").Inc()
	}
}

func (s *Session) markDisconnected() {
	s.mu.Lock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	s.state = Disconnected
	s.attempts++
	s.mu.Unlock()
	metrics.ConnectionState.Set(0)
	metrics.ReconnectAttempts.Inc()
}

// Close shuts the session down without scheduling a reconnect.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	err := s.conn.Close()
	s.conn = nil
	s.state = Disconnected
	return err
}
