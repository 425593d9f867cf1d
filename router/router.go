// Package router wires the relay session to the local store and to
// whatever host surface is listening: the single long-running dispatch
// loop named "message router" (C8). It is the sole consumer of a
// relay.Session's inbound channel.
package router

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"github.com/cayerbe/gns-core/envelope"
	"github.com/cayerbe/gns-core/gnslog"
	"github.com/cayerbe/gns-core/identity"
	"github.com/cayerbe/gns-core/relay"
	"github.com/cayerbe/gns-core/store"
)

const (
	directionIn  = "in"
	directionOut = "out"
)

// Router consumes demultiplexed relay frames, persists them via store,
// and emits host events. It holds the identity behind a mutex since
// signing/decryption calls are also made from the send path.
type Router struct {
	identityMu *sync.Mutex
	identity   *identity.Identity

	session *relay.Session
	store   store.Store
	emitter Emitter
	log     gnslog.Logger
}

// New creates a Router. identityMu must be the same mutex guarding
// identity elsewhere in the process (send path, host API).
func New(session *relay.Session, identityMu *sync.Mutex, id *identity.Identity, st store.Store, emitter Emitter, log gnslog.Logger) *Router {
	if log == nil {
		log = gnslog.NewDefaultLogger()
	}
	return &Router{
		identityMu: identityMu,
		identity:   id,
		session:    session,
		store:      st,
		emitter:    emitter,
		log:        log,
	}
}

// Run drains session.Inbound() until ctx is done or the channel closes.
func (r *Router) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-r.session.Inbound():
			if !ok {
				return
			}
			r.dispatch(ctx, frame)
		}
	}
}

func (r *Router) dispatch(ctx context.Context, frame relay.Inbound) {
	switch f := frame.(type) {
	case relay.EnvelopeFrame:
		r.handleEnvelope(ctx, f.Envelope)
	case relay.MessageSentFromBrowser:
		r.handleMessageSentFromBrowser(ctx, f)
	case relay.MessageSynced:
		r.handleMessageSynced(ctx, f)
	case relay.ReadReceipt:
		r.handleReadReceipt(ctx, f)
	case relay.RequestSync:
		r.handleRequestSync(ctx, f)
	case relay.RequestDecryption:
		r.handleRequestDecryption(ctx, f)
	case relay.ConnectionStatus:
		r.emitter.Emit(HostEvent{Name: "connection_status", Data: ConnectionStatusEvent{
			MobilePresent: f.MobilePresent,
			BrowserCount:  f.BrowserCount,
		}})
	case relay.Welcome:
		r.emitter.Emit(HostEvent{Name: "welcome", Data: WelcomeEvent{PublicKey: f.PublicKey}})
	case relay.Unknown:
		r.log.Debug("unknown relay frame", gnslog.String("raw", f.Raw))
	default:
		r.log.Debug("unhandled relay frame type")
	}
}

func (r *Router) handleEnvelope(ctx context.Context, env *envelope.Envelope) {
	r.identityMu.Lock()
	opened, err := envelope.Open(r.identity, env)
	myPub := r.identity.PublicHex()
	r.identityMu.Unlock()
	if err != nil {
		r.log.Error("failed to open envelope", gnslog.String("envelope_id", env.ID), gnslog.Error(err))
		return
	}

	var payload interface{}
	if err := json.Unmarshal(opened.Payload, &payload); err != nil {
		payload = map[string]interface{}{"text": string(opened.Payload)}
	}

	threadID := deriveInboundThreadID(opened.PayloadType, opened.ThreadID, payload, myPub, opened.FromPublicKey)

	msg := &store.Message{
		ID:             opened.EnvelopeID,
		ThreadID:       threadID,
		FromPublicKey:  opened.FromPublicKey,
		FromHandle:     opened.FromHandle,
		PayloadType:    opened.PayloadType,
		TimestampMs:    opened.TimestampMs,
		Direction:      store.DirectionIn,
		Status:         store.StatusReceived,
		SignatureValid: opened.SignatureValid,
		ReplyToID:      opened.ReplyToID,
	}
	if raw, err := json.Marshal(payload); err == nil {
		msg.PayloadJSON = string(raw)
	}

	if err := r.store.Threads().GetOrCreate(ctx, threadID, opened.FromPublicKey, opened.FromHandle, "", opened.TimestampMs); err != nil {
		r.log.Error("failed to upsert thread", gnslog.Error(err))
	}
	if err := r.store.Messages().Upsert(ctx, msg); err != nil {
		r.log.Error("failed to save received message", gnslog.Error(err))
		return
	}
	if err := r.store.Threads().UpdateForMessage(ctx, threadID, opened.TimestampMs, true); err != nil {
		r.log.Error("failed to update thread for message", gnslog.Error(err))
	}

	r.emitter.Emit(HostEvent{Name: "new_message", Data: NewMessage{
		ID:             opened.EnvelopeID,
		ThreadID:       threadID,
		FromPublicKey:  opened.FromPublicKey,
		FromHandle:     opened.FromHandle,
		PayloadType:    opened.PayloadType,
		Payload:        payload,
		TimestampMs:    opened.TimestampMs,
		SignatureValid: opened.SignatureValid,
	}})

	text := extractText(payload)
	out, err := relay.EncodeMessageSyncedFrame(relay.MessageSyncedOut{
		To:               []string{myPub},
		MessageID:        opened.EnvelopeID,
		ConversationWith: opened.FromPublicKey,
		Plaintext:        text,
		Direction:        directionIn,
		TimestampMs:      opened.TimestampMs,
		FromHandle:       opened.FromHandle,
	})
	if err != nil {
		r.log.Error("failed to encode mirror frame", gnslog.Error(err))
		return
	}
	r.session.SendRaw(out)
}

// deriveInboundThreadID implements the priority order: email payloads
// thread by subject hash (ignoring any server-supplied thread id, since
// the relay groups by participant but mail clients group by subject);
// otherwise an explicit thread id wins; otherwise fall back to the
// deterministic direct-conversation id.
func deriveInboundThreadID(payloadType, envelopeThreadID string, payload interface{}, myPub, fromPub string) string {
	if store.IsEmailPayloadType(payloadType) {
		subject := ""
		if obj, ok := payload.(map[string]interface{}); ok {
			if s, ok := obj["subject"].(string); ok {
				subject = s
			}
		}
		normalized := store.NormalizeSubject(subject)
		if normalized == "" {
			if envelopeThreadID != "" {
				return envelopeThreadID
			}
			return uuid.NewString()
		}
		return store.SubjectThreadID(subject)
	}
	if envelopeThreadID != "" {
		return envelopeThreadID
	}
	return store.DirectThreadID(myPub, fromPub)
}

func (r *Router) handleMessageSentFromBrowser(ctx context.Context, f relay.MessageSentFromBrowser) {
	r.identityMu.Lock()
	myPub := r.identity.PublicHex()
	r.identityMu.Unlock()

	threadID := store.DirectThreadID(myPub, f.ToPublicKey)
	if err := r.store.Threads().GetOrCreate(ctx, threadID, f.ToPublicKey, "", "", f.TimestampMs); err != nil {
		r.log.Error("failed to upsert thread", gnslog.Error(err))
	}
	msg := &store.Message{
		ID:          f.ID,
		ThreadID:    threadID,
		FromPublicKey: myPub,
		PayloadType: "text/plain",
		PayloadJSON: textPayloadJSON(f.Plaintext),
		TimestampMs: f.TimestampMs,
		Direction:   store.DirectionOut,
		Status:      store.StatusSent,
	}
	if err := r.store.Messages().Upsert(ctx, msg); err != nil {
		r.log.Error("failed to save browser-sent message", gnslog.Error(err))
		return
	}
	if err := r.store.Threads().UpdateForMessage(ctx, threadID, f.TimestampMs, false); err != nil {
		r.log.Error("failed to update thread for message", gnslog.Error(err))
	}

	r.emitter.Emit(HostEvent{Name: "message_synced", Data: MessageSyncedEvent{
		ID:               f.ID,
		ConversationWith: f.ToPublicKey,
		Text:             f.Plaintext,
		Direction:        directionOut,
		TimestampMs:      f.TimestampMs,
	}})
}

func (r *Router) handleMessageSynced(ctx context.Context, f relay.MessageSynced) {
	r.identityMu.Lock()
	myPub := r.identity.PublicHex()
	r.identityMu.Unlock()

	threadID := store.DirectThreadID(myPub, f.ConversationWith)
	if err := r.store.Threads().GetOrCreate(ctx, threadID, f.ConversationWith, f.FromHandle, "", f.TimestampMs); err != nil {
		r.log.Error("failed to upsert thread", gnslog.Error(err))
	}

	incoming := f.Direction != directionOut
	msg := &store.Message{
		ID:          f.ID,
		ThreadID:    threadID,
		PayloadType: "text/plain",
		PayloadJSON: textPayloadJSON(f.Plaintext),
		TimestampMs: f.TimestampMs,
	}
	if incoming {
		msg.FromPublicKey = f.ConversationWith
		msg.FromHandle = f.FromHandle
		msg.Direction = store.DirectionIn
		msg.Status = store.StatusReceived
		msg.SignatureValid = true
	} else {
		msg.FromPublicKey = myPub
		msg.Direction = store.DirectionOut
		msg.Status = store.StatusSent
	}
	if err := r.store.Messages().Upsert(ctx, msg); err != nil {
		r.log.Error("failed to save synced message", gnslog.Error(err))
		return
	}
	if err := r.store.Threads().UpdateForMessage(ctx, threadID, f.TimestampMs, incoming); err != nil {
		r.log.Error("failed to update thread for message", gnslog.Error(err))
	}

	r.emitter.Emit(HostEvent{Name: "message_synced", Data: MessageSyncedEvent{
		ID:               f.ID,
		ConversationWith: f.ConversationWith,
		Text:             f.Plaintext,
		Direction:        f.Direction,
		TimestampMs:      f.TimestampMs,
		FromHandle:       f.FromHandle,
	}})
	r.emitter.Emit(HostEvent{Name: "new_message", Data: NewMessage{
		ID:          f.ID,
		PayloadType: msg.PayloadType,
		TimestampMs: f.TimestampMs,
	}})
}

func (r *Router) handleReadReceipt(ctx context.Context, f relay.ReadReceipt) {
	if err := r.store.Messages().MarkRead(ctx, f.MessageID); err != nil {
		r.log.Error("failed to mark message read", gnslog.Error(err))
		return
	}
	r.emitter.Emit(HostEvent{Name: "message_read", Data: MessageRead{ID: f.MessageID}})
}

func (r *Router) handleRequestSync(ctx context.Context, f relay.RequestSync) {
	r.identityMu.Lock()
	myPub := r.identity.PublicHex()
	r.identityMu.Unlock()

	threadID := store.DirectThreadID(myPub, f.ConversationWith)
	messages, err := r.store.Messages().ListByThread(ctx, threadID, f.Limit)
	if err != nil {
		r.log.Error("failed to fetch messages for sync", gnslog.Error(err))
		return
	}

	synced := 0
	for _, msg := range messages {
		text := textFromPayloadJSON(msg.PayloadJSON)
		if text == "" {
			continue
		}
		direction := directionIn
		if msg.Direction == store.DirectionOut {
			direction = directionOut
		}
		out, err := relay.EncodeMessageSyncedFrame(relay.MessageSyncedOut{
			To:               []string{myPub},
			MessageID:        msg.ID,
			ConversationWith: f.ConversationWith,
			Plaintext:        text,
			Direction:        direction,
			TimestampMs:      msg.TimestampMs,
			FromHandle:       msg.FromHandle,
		})
		if err != nil {
			r.log.Error("failed to encode sync frame", gnslog.Error(err))
			break
		}
		r.session.SendRaw(out)
		synced++
	}
	r.log.Info("synced messages to browser", gnslog.Int("count", synced))
}

func (r *Router) handleRequestDecryption(ctx context.Context, f relay.RequestDecryption) {
	for _, id := range f.MessageIDs {
		msg, err := r.store.Messages().Get(ctx, id)
		if err != nil || msg == nil {
			continue
		}
		text := textFromPayloadJSON(msg.PayloadJSON)
		if text == "" {
			continue
		}
		direction := directionIn
		if msg.Direction == store.DirectionOut {
			direction = directionOut
		}
		out, err := relay.EncodeMessageSyncedFrame(relay.MessageSyncedOut{
			To:               []string{f.RequesterPub},
			MessageID:        msg.ID,
			ConversationWith: f.ConversationWith,
			Plaintext:        text,
			Direction:        direction,
			TimestampMs:      msg.TimestampMs,
			FromHandle:       msg.FromHandle,
		})
		if err != nil {
			r.log.Error("failed to encode decryption-response frame", gnslog.String("message_id", id), gnslog.Error(err))
			continue
		}
		r.session.SendRaw(out)
	}
}

func extractText(payload interface{}) string {
	if obj, ok := payload.(map[string]interface{}); ok {
		if s, ok := obj["text"].(string); ok {
			return s
		}
	}
	return ""
}

func textPayloadJSON(text string) string {
	raw, _ := json.Marshal(map[string]string{"text": text})
	return string(raw)
}

func textFromPayloadJSON(payloadJSON string) string {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(payloadJSON), &obj); err != nil {
		return ""
	}
	return extractText(obj)
}
