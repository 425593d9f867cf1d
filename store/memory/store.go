// Package memory implements store.Store with mutex-guarded maps, suitable
// for tests and single-process hosts that don't need durability.
package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/cayerbe/gns-core/store"
)

// Store implements store.Store entirely in memory.
type Store struct {
	threadsMu sync.RWMutex
	threads   map[string]*store.Thread

	messagesMu sync.RWMutex
	messages   map[string]*store.Message

	breadcrumbsMu sync.RWMutex
	breadcrumbs   map[string]*store.StoredBreadcrumb // key: cellID+"|"+timestamp

	pendingMu sync.RWMutex
	pending   map[string]*store.PendingMessage

	syncMu    sync.RWMutex
	syncState map[string]string

	reactionsMu sync.RWMutex
	reactions   map[string][]store.Reaction // key: messageID

	threadStore     *threadStore
	messageStore    *messageStore
	breadcrumbStore *breadcrumbStore
	pendingStore    *pendingStore
	syncStateStore  *syncStateStore
	reactionStore   *reactionStore
}

// New creates an empty in-memory store.
func New() *Store {
	s := &Store{
		threads:     make(map[string]*store.Thread),
		messages:    make(map[string]*store.Message),
		breadcrumbs: make(map[string]*store.StoredBreadcrumb),
		pending:     make(map[string]*store.PendingMessage),
		syncState:   make(map[string]string),
		reactions:   make(map[string][]store.Reaction),
	}
	s.threadStore = &threadStore{s: s}
	s.messageStore = &messageStore{s: s}
	s.breadcrumbStore = &breadcrumbStore{s: s}
	s.pendingStore = &pendingStore{s: s}
	s.syncStateStore = &syncStateStore{s: s}
	s.reactionStore = &reactionStore{s: s}
	return s
}

func (s *Store) Threads() store.ThreadStore         { return s.threadStore }
func (s *Store) Messages() store.MessageStore       { return s.messageStore }
func (s *Store) Breadcrumbs() store.BreadcrumbStore { return s.breadcrumbStore }
func (s *Store) Pending() store.PendingStore        { return s.pendingStore }
func (s *Store) Sync() store.SyncStateStore         { return s.syncStateStore }
func (s *Store) Reactions() store.ReactionStore     { return s.reactionStore }

func (s *Store) Close() error { return nil }

func (s *Store) Ping(ctx context.Context) error { return nil }

type threadStore struct{ s *Store }

func (t *threadStore) GetOrCreate(ctx context.Context, threadID, participantPublicKey, participantHandle, subject string, nowMs int64) error {
	t.s.threadsMu.Lock()
	defer t.s.threadsMu.Unlock()

	existing, ok := t.s.threads[threadID]
	if !ok {
		t.s.threads[threadID] = &store.Thread{
			ID:                    threadID,
			ParticipantPublicKey:  participantPublicKey,
			ParticipantHandle:     participantHandle,
			Subject:               subject,
			LastMessageAtMs:       nowMs,
		}
		return nil
	}

	// participant_handle: new value wins when non-empty.
	if participantHandle != "" {
		existing.ParticipantHandle = participantHandle
	}
	// subject: existing value wins; only fill in if currently empty.
	if existing.Subject == "" {
		existing.Subject = subject
	}
	if participantPublicKey != "" {
		existing.ParticipantPublicKey = participantPublicKey
	}
	return nil
}

func (t *threadStore) Get(ctx context.Context, threadID string) (*store.Thread, error) {
	t.s.threadsMu.RLock()
	defer t.s.threadsMu.RUnlock()
	th, ok := t.s.threads[threadID]
	if !ok {
		return nil, nil
	}
	copy := *th
	return &copy, nil
}

func (t *threadStore) List(ctx context.Context, includeArchived bool, limit int) ([]*store.Thread, error) {
	t.s.threadsMu.RLock()
	defer t.s.threadsMu.RUnlock()

	out := make([]*store.Thread, 0, len(t.s.threads))
	for _, th := range t.s.threads {
		if th.IsArchived && !includeArchived {
			continue
		}
		copy := *th
		out = append(out, &copy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastMessageAtMs > out[j].LastMessageAtMs })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (t *threadStore) MarkRead(ctx context.Context, threadID string) error {
	t.s.threadsMu.Lock()
	defer t.s.threadsMu.Unlock()
	if th, ok := t.s.threads[threadID]; ok {
		th.UnreadCount = 0
	}
	return nil
}

func (t *threadStore) Delete(ctx context.Context, threadID string) error {
	t.s.threadsMu.Lock()
	defer t.s.threadsMu.Unlock()
	delete(t.s.threads, threadID)
	return nil
}

func (t *threadStore) UpdateForMessage(ctx context.Context, threadID string, timestampMs int64, incoming bool) error {
	t.s.threadsMu.Lock()
	defer t.s.threadsMu.Unlock()
	th, ok := t.s.threads[threadID]
	if !ok {
		return nil
	}
	th.LastMessageAtMs = timestampMs
	if incoming {
		th.UnreadCount++
	}
	return nil
}

type messageStore struct{ s *Store }

func (m *messageStore) Upsert(ctx context.Context, msg *store.Message) error {
	m.s.messagesMu.Lock()
	defer m.s.messagesMu.Unlock()
	copy := *msg
	m.s.messages[msg.ID] = &copy
	return nil
}

func (m *messageStore) Get(ctx context.Context, id string) (*store.Message, error) {
	m.s.messagesMu.RLock()
	defer m.s.messagesMu.RUnlock()
	msg, ok := m.s.messages[id]
	if !ok {
		return nil, nil
	}
	copy := *msg
	return &copy, nil
}

func (m *messageStore) ListByThread(ctx context.Context, threadID string, limit int) ([]*store.Message, error) {
	m.s.messagesMu.RLock()
	defer m.s.messagesMu.RUnlock()

	out := make([]*store.Message, 0)
	for _, msg := range m.s.messages {
		if msg.ThreadID != threadID {
			continue
		}
		copy := *msg
		out = append(out, &copy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TimestampMs < out[j].TimestampMs })
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (m *messageStore) MarkRead(ctx context.Context, id string) error {
	m.s.messagesMu.Lock()
	defer m.s.messagesMu.Unlock()
	if msg, ok := m.s.messages[id]; ok {
		msg.Status = store.StatusRead
	}
	return nil
}

func (m *messageStore) Delete(ctx context.Context, id string) error {
	m.s.messagesMu.Lock()
	defer m.s.messagesMu.Unlock()
	delete(m.s.messages, id)
	return nil
}

type breadcrumbStore struct{ s *Store }

func breadcrumbKey(cellID string, timestampS int64) string {
	return cellID + "|" + strconv.FormatInt(timestampS, 10)
}

func (b *breadcrumbStore) Save(ctx context.Context, bc *store.StoredBreadcrumb) error {
	b.s.breadcrumbsMu.Lock()
	defer b.s.breadcrumbsMu.Unlock()
	key := breadcrumbKey(bc.CellID, bc.TimestampS)
	if _, exists := b.s.breadcrumbs[key]; exists {
		return nil // INSERT OR IGNORE semantics
	}
	copy := *bc
	b.s.breadcrumbs[key] = &copy
	return nil
}

func (b *breadcrumbStore) Count(ctx context.Context) (int, error) {
	b.s.breadcrumbsMu.RLock()
	defer b.s.breadcrumbsMu.RUnlock()
	return len(b.s.breadcrumbs), nil
}

func (b *breadcrumbStore) CountUniqueCells(ctx context.Context) (int, error) {
	b.s.breadcrumbsMu.RLock()
	defer b.s.breadcrumbsMu.RUnlock()
	cells := make(map[string]struct{})
	for _, bc := range b.s.breadcrumbs {
		cells[bc.CellID] = struct{}{}
	}
	return len(cells), nil
}

func (b *breadcrumbStore) FirstTimestamp(ctx context.Context) (int64, bool, error) {
	b.s.breadcrumbsMu.RLock()
	defer b.s.breadcrumbsMu.RUnlock()
	if len(b.s.breadcrumbs) == 0 {
		return 0, false, nil
	}
	min := int64(0)
	first := true
	for _, bc := range b.s.breadcrumbs {
		if first || bc.TimestampS < min {
			min = bc.TimestampS
			first = false
		}
	}
	return min, true, nil
}

func (b *breadcrumbStore) LastTimestamp(ctx context.Context) (int64, bool, error) {
	b.s.breadcrumbsMu.RLock()
	defer b.s.breadcrumbsMu.RUnlock()
	if len(b.s.breadcrumbs) == 0 {
		return 0, false, nil
	}
	max := int64(0)
	first := true
	for _, bc := range b.s.breadcrumbs {
		if first || bc.TimestampS > max {
			max = bc.TimestampS
			first = false
		}
	}
	return max, true, nil
}

func (b *breadcrumbStore) List(ctx context.Context, limit, offset int) ([]*store.StoredBreadcrumb, error) {
	b.s.breadcrumbsMu.RLock()
	defer b.s.breadcrumbsMu.RUnlock()

	out := make([]*store.StoredBreadcrumb, 0, len(b.s.breadcrumbs))
	for _, bc := range b.s.breadcrumbs {
		copy := *bc
		out = append(out, &copy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TimestampS < out[j].TimestampS })
	if offset > len(out) {
		return []*store.StoredBreadcrumb{}, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type pendingStore struct{ s *Store }

func (p *pendingStore) Enqueue(ctx context.Context, pm *store.PendingMessage) error {
	p.s.pendingMu.Lock()
	defer p.s.pendingMu.Unlock()
	copy := *pm
	p.s.pending[pm.ID] = &copy
	return nil
}

func (p *pendingStore) Count(ctx context.Context) (int, error) {
	p.s.pendingMu.RLock()
	defer p.s.pendingMu.RUnlock()
	return len(p.s.pending), nil
}

func (p *pendingStore) List(ctx context.Context, limit int) ([]*store.PendingMessage, error) {
	p.s.pendingMu.RLock()
	defer p.s.pendingMu.RUnlock()

	out := make([]*store.PendingMessage, 0, len(p.s.pending))
	for _, pm := range p.s.pending {
		copy := *pm
		out = append(out, &copy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAtMs < out[j].CreatedAtMs })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (p *pendingStore) Remove(ctx context.Context, id string) error {
	p.s.pendingMu.Lock()
	defer p.s.pendingMu.Unlock()
	delete(p.s.pending, id)
	return nil
}

type syncStateStore struct{ s *Store }

func (y *syncStateStore) Get(ctx context.Context, key string) (string, bool, error) {
	y.s.syncMu.RLock()
	defer y.s.syncMu.RUnlock()
	v, ok := y.s.syncState[key]
	return v, ok, nil
}

func (y *syncStateStore) Set(ctx context.Context, key, value string) error {
	y.s.syncMu.Lock()
	defer y.s.syncMu.Unlock()
	y.s.syncState[key] = value
	return nil
}

type reactionStore struct{ s *Store }

func (r *reactionStore) Save(ctx context.Context, rx *store.Reaction) error {
	r.s.reactionsMu.Lock()
	defer r.s.reactionsMu.Unlock()
	r.s.reactions[rx.MessageID] = append(r.s.reactions[rx.MessageID], *rx)
	return nil
}

func (r *reactionStore) ListByMessage(ctx context.Context, messageID string) ([]store.Reaction, error) {
	r.s.reactionsMu.RLock()
	defer r.s.reactionsMu.RUnlock()
	out := make([]store.Reaction, len(r.s.reactions[messageID]))
	copy(out, r.s.reactions[messageID])
	return out, nil
}
