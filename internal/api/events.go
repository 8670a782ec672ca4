package api

import (
	"container/list"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/SelJom/ClarityAI/internal/domain"
	"github.com/SelJom/ClarityAI/internal/state"
)

// Event types published on the events feed.
const (
	EventJournal    = "journal"
	EventMoods      = "moods"
	EventChat       = "chat"
	EventOnboarding = "onboarding"
	EventPlan       = "plan"
)

const (
	defaultHistorySize       = 100
	defaultRetryDelay        = 5 * time.Second
	defaultKeepaliveInterval = 10 * time.Second
	subscriberBuffer         = 64
)

// Event is one state snapshot on the feed.
type Event struct {
	ID   int64
	Type string
	Data json.RawMessage
}

// Broker fans state snapshots out to SSE subscribers and keeps a bounded
// history so reconnecting clients can catch up from Last-Event-ID.
type Broker struct {
	mu      sync.Mutex
	lastID  int64
	history *list.List
	maxSize int
	subs    map[int64]chan Event
	nextSub int64

	RetryDelay        time.Duration
	KeepaliveInterval time.Duration
}

// NewBroker creates a Broker keeping the last historySize events.
func NewBroker(historySize int) *Broker {
	if historySize <= 0 {
		historySize = defaultHistorySize
	}
	return &Broker{
		history:           list.New(),
		maxSize:           historySize,
		subs:              make(map[int64]chan Event),
		RetryDelay:        defaultRetryDelay,
		KeepaliveInterval: defaultKeepaliveInterval,
	}
}

// Publish records v as the next event of type typ and delivers it to every
// subscriber. Slow subscribers miss the event and recover it on reconnect.
func (b *Broker) Publish(typ string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("Failed to marshal event", "type", typ, "error", err)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.lastID++
	ev := Event{ID: b.lastID, Type: typ, Data: data}
	b.history.PushBack(ev)
	for b.history.Len() > b.maxSize {
		b.history.Remove(b.history.Front())
	}

	for id, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			slog.Warn("Event subscriber is behind, dropping event", "sub_id", id, "event_id", ev.ID)
		}
	}
}

// subscribe registers a subscriber and returns the events after afterID
// still held in history. Registration and replay happen under one lock so
// nothing published in between is lost.
func (b *Broker) subscribe(afterID int64) (<-chan Event, []Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var missed []Event
	if afterID > 0 {
		for e := b.history.Front(); e != nil; e = e.Next() {
			if ev := e.Value.(Event); ev.ID > afterID {
				missed = append(missed, ev)
			}
		}
	}

	b.nextSub++
	id := b.nextSub
	ch := make(chan Event, subscriberBuffer)
	b.subs[id] = ch

	return ch, missed, func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// LastID returns the id of the newest event.
func (b *Broker) LastID() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastID
}

// WatchStores publishes every store change on b. The returned func stops
// watching.
func WatchStores(b *Broker, stores state.Stores) func() {
	unsubs := []func(){
		stores.Journal.SubscribeJournal(func(v []domain.JournalEntry) { b.Publish(EventJournal, v) }),
		stores.Journal.SubscribeMoods(func(v []domain.MoodEntry) { b.Publish(EventMoods, v) }),
		stores.Journal.SubscribeChat(func(v []domain.ChatMessage) { b.Publish(EventChat, v) }),
		stores.Onboarding.Subscribe(func(v domain.OnboardingState) { b.Publish(EventOnboarding, v) }),
		stores.Plan.Subscribe(func(v domain.PlanState) { b.Publish(EventPlan, v) }),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

// HandleEvents streams store changes over SSE. Clients reconnecting with
// Last-Event-ID (header or lastEventId query) receive the events they missed.
//
//nolint:gocognit // SSE lifecycle handling intentionally keeps branches together.
func (h *Handler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	if h.events == nil {
		Error(w, http.StatusServiceUnavailable, "events not available")
		return
	}

	lastEventID := int64(0)
	idHeader := r.Header.Get("Last-Event-ID")
	if idHeader == "" {
		idHeader = r.URL.Query().Get("lastEventId")
	}
	if idHeader != "" {
		if parsed, err := strconv.ParseInt(idHeader, 10, 64); err == nil {
			lastEventID = parsed
			slog.Info("SSE client reconnecting with Last-Event-ID", "last_event_id", lastEventID)
		}
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		Error(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	if _, err := io.WriteString(w, fmt.Sprintf("retry: %d\n\n", h.events.RetryDelay.Milliseconds())); err != nil {
		slog.Warn("failed to write SSE retry header", "error", err)
		return
	}

	events, missed, cancel := h.events.subscribe(lastEventID)
	defer cancel()

	for _, ev := range missed {
		if err := writeSSEWithID(w, ev.ID, ev.Type, string(ev.Data)); err != nil {
			slog.Warn("failed to replay SSE event", "error", err, "event_id", ev.ID)
			return
		}
	}
	if len(missed) > 0 {
		slog.Info("Sent missed events", "count", len(missed))
	}

	connected := fmt.Sprintf(`{"status":"connected","user_id":%q,"event_id":%d}`, h.userID(), h.events.LastID())
	if err := writeSSE(w, "connected", connected); err != nil {
		slog.Warn("failed to write SSE connected event", "error", err)
		return
	}
	flusher.Flush()

	keepalive := time.NewTicker(h.events.KeepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			slog.Debug("SSE client disconnected")
			return
		case ev := <-events:
			if err := writeSSEWithID(w, ev.ID, ev.Type, string(ev.Data)); err != nil {
				slog.Warn("failed to write SSE event", "error", err, "event_id", ev.ID)
				return
			}
			flusher.Flush()
		case <-keepalive.C:
			if err := writeSSE(w, "ping", `{"status":"alive"}`); err != nil {
				slog.Warn("failed to write SSE keepalive ping", "error", err)
				return
			}
			flusher.Flush()
		}
	}
}

func (h *Handler) userID() string {
	if h.id == nil {
		return ""
	}
	return h.id.UserID()
}

func writeSSE(w io.Writer, event, data string) error {
	_, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}

func writeSSEWithID(w io.Writer, id int64, event, data string) error {
	_, err := fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", id, event, data)
	return err
}
