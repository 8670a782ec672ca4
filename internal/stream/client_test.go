package stream

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/SelJom/ClarityAI/internal/domain"
	"github.com/SelJom/ClarityAI/internal/state"
)

// fakeAgent accepts streaming connections and answers every NEW_ENTRY with
// the frames returned by reply. A nil frame closes the connection.
type fakeAgent struct {
	srv      *httptest.Server
	conns    atomic.Int32
	paths    chan string
	received chan string
}

func newFakeAgent(t *testing.T, reply func(text string) []*string) *fakeAgent {
	t.Helper()
	a := &fakeAgent{paths: make(chan string, 8), received: make(chan string, 8)}
	a.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			t.Errorf("accept: %v", err)
			return
		}
		defer conn.CloseNow()
		a.conns.Add(1)
		a.paths <- r.URL.Path

		ctx := r.Context()
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				return
			}
			var in struct {
				Type    string `json:"type"`
				Payload struct {
					RawText string `json:"raw_text"`
				} `json:"payload"`
			}
			if err := json.Unmarshal(data, &in); err != nil || in.Type != TypeNewEntry {
				t.Errorf("unexpected outbound frame %s", data)
				return
			}
			a.received <- in.Payload.RawText

			for _, f := range reply(in.Payload.RawText) {
				if f == nil {
					_ = conn.Close(websocket.StatusNormalClosure, "done")
					return
				}
				if err := conn.Write(ctx, websocket.MessageText, []byte(*f)); err != nil {
					return
				}
			}
		}
	}))
	t.Cleanup(a.srv.Close)
	return a
}

func (a *fakeAgent) url() string {
	return "ws" + strings.TrimPrefix(a.srv.URL, "http")
}

func frame(s string) *string { return &s }

func token(s string) *string {
	raw, _ := json.Marshal(map[string]string{"type": TypeToken, "payload": s})
	return frame(string(raw))
}

func audio(b []byte) *string {
	raw, _ := json.Marshal(map[string]string{"type": TypeAudio, "payload": base64.StdEncoding.EncodeToString(b)})
	return frame(string(raw))
}

type recordingSink struct {
	got chan []byte
}

func (s *recordingSink) Play(_ context.Context, data []byte) error {
	s.got <- data
	return nil
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func newTestClient(t *testing.T, baseURL string, sink AudioSink) (*Client, *state.JournalStore) {
	t.Helper()
	chat := state.NewJournalStore(context.Background(), nil, nil)
	c := New(Config{BaseURL: baseURL, SessionID: "user-1"}, chat, sink, nil)
	t.Cleanup(c.Close)
	return c, chat
}

func TestSendAppendsBeforeNetwork(t *testing.T) {
	t.Parallel()
	agent := newFakeAgent(t, func(string) []*string { return nil })
	c, chat := newTestClient(t, agent.url(), nil)

	var first []domain.ChatMessage
	chat.SubscribeChat(func(m []domain.ChatMessage) {
		if first == nil {
			first = m
		}
	})

	if err := c.SendUserMessage(context.Background(), "hi"); err != nil {
		t.Fatalf("SendUserMessage() error = %v", err)
	}

	if len(first) != 2 || first[0].Role != domain.RoleUser || first[0].Text != "hi" ||
		first[1].Role != domain.RoleAssistant || first[1].Text != "" {
		t.Errorf("first published transcript = %+v", first)
	}
	if got := <-agent.received; got != "hi" {
		t.Errorf("agent received %q, want hi", got)
	}
	if got := <-agent.paths; got != "/ws/user-1" {
		t.Errorf("path = %q, want /ws/user-1", got)
	}
	if c.State() != Connected {
		t.Errorf("State() = %v, want connected", c.State())
	}
}

func TestTokenAccumulation(t *testing.T) {
	t.Parallel()
	agent := newFakeAgent(t, func(string) []*string {
		return []*string{frame(`{"type":"ACK","status":"ok"}`), token("Hel"), token("lo "), token("there")}
	})
	c, chat := newTestClient(t, agent.url(), nil)

	if err := c.SendUserMessage(context.Background(), "hi"); err != nil {
		t.Fatalf("SendUserMessage() error = %v", err)
	}
	waitFor(t, "tokens", func() bool {
		m := chat.Chat()
		return len(m) == 2 && m[1].Text == "Hello there"
	})
	if m, ok := chat.InFlight(); !ok || m.Text != "Hello there" {
		t.Errorf("InFlight() = %+v, %v", m, ok)
	}
}

func TestAudioSealsReplyAndLateTokenStartsNewMessage(t *testing.T) {
	t.Parallel()
	agent := newFakeAgent(t, func(string) []*string {
		return []*string{token("Hi"), audio([]byte("mp3")), token("late")}
	})
	sink := &recordingSink{got: make(chan []byte, 1)}
	c, chat := newTestClient(t, agent.url(), sink)

	if err := c.SendUserMessage(context.Background(), "hello"); err != nil {
		t.Fatalf("SendUserMessage() error = %v", err)
	}

	select {
	case data := <-sink.got:
		if string(data) != "mp3" {
			t.Errorf("audio = %q", data)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("audio never reached the sink")
	}
	waitFor(t, "late token", func() bool { return len(chat.Chat()) == 3 })

	m := chat.Chat()
	if m[1].Text != "Hi" {
		t.Errorf("sealed reply = %q, want Hi", m[1].Text)
	}
	if m[2].Role != domain.RoleAssistant || m[2].Text != "late" {
		t.Errorf("late token message = %+v", m[2])
	}
}

func TestMalformedFramesAreDropped(t *testing.T) {
	t.Parallel()
	agent := newFakeAgent(t, func(string) []*string {
		return []*string{frame("garbage"), frame(`{"type":"PING"}`), frame(`{"type":"TOKEN","payload":7}`), token("ok")}
	})
	c, chat := newTestClient(t, agent.url(), nil)

	if err := c.SendUserMessage(context.Background(), "hi"); err != nil {
		t.Fatalf("SendUserMessage() error = %v", err)
	}
	waitFor(t, "token after bad frames", func() bool {
		m := chat.Chat()
		return len(m) == 2 && m[1].Text == "ok"
	})
	if c.State() != Connected {
		t.Errorf("State() = %v, bad frames must not drop the connection", c.State())
	}
}

func TestDisconnectSealsPartialReplyAndNextSendRedials(t *testing.T) {
	t.Parallel()
	agent := newFakeAgent(t, func(text string) []*string {
		if text == "first" {
			return []*string{token("part"), nil}
		}
		return nil
	})
	c, chat := newTestClient(t, agent.url(), nil)

	if err := c.SendUserMessage(context.Background(), "first"); err != nil {
		t.Fatalf("SendUserMessage() error = %v", err)
	}
	waitFor(t, "disconnect", func() bool {
		_, inFlight := chat.InFlight()
		return c.State() == Disconnected && !inFlight
	})
	if m := chat.Chat(); m[1].Text != "part" {
		t.Errorf("partial reply = %q, want part", m[1].Text)
	}

	if err := c.SendUserMessage(context.Background(), "second"); err != nil {
		t.Fatalf("second SendUserMessage() error = %v", err)
	}
	if got := agent.conns.Load(); got != 2 {
		t.Errorf("connections = %d, want 2", got)
	}
	if m := chat.Chat(); len(m) != 4 || m[1].Text != "part" {
		t.Errorf("transcript = %+v", m)
	}
}

func TestConnectIsIdempotent(t *testing.T) {
	t.Parallel()
	agent := newFakeAgent(t, func(string) []*string { return nil })
	c, _ := newTestClient(t, agent.url(), nil)

	for i := 0; i < 3; i++ {
		if err := c.Connect(context.Background(), "user-1"); err != nil {
			t.Fatalf("Connect() error = %v", err)
		}
	}
	if got := agent.conns.Load(); got != 1 {
		t.Errorf("connections = %d, want 1", got)
	}

	c.Close()
	waitFor(t, "close", func() bool { return c.State() == Disconnected })
}

func TestUnconfiguredEndpointFailsFast(t *testing.T) {
	t.Parallel()
	c, chat := newTestClient(t, "", nil)

	if err := c.Connect(context.Background(), "user-1"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Connect() error = %v, want ErrNotConfigured", err)
	}
	err := c.SendUserMessage(context.Background(), "hi")
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("SendUserMessage() error = %v, want ErrNotConfigured", err)
	}

	// The optimistic append is kept; nothing is rolled back.
	m := chat.Chat()
	if len(m) != 2 || m[0].Text != "hi" {
		t.Errorf("transcript = %+v", m)
	}
	if _, ok := chat.InFlight(); ok {
		t.Error("failed send should leave nothing in flight")
	}
	if c.State() != Disconnected {
		t.Errorf("State() = %v", c.State())
	}
}

func TestSendRejectsEmptyText(t *testing.T) {
	t.Parallel()
	c, chat := newTestClient(t, "", nil)

	if err := c.SendUserMessage(context.Background(), "  "); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("error = %v, want ErrEmptyMessage", err)
	}
	if len(chat.Chat()) != 0 {
		t.Error("empty message reached the transcript")
	}
}

func TestStaleDisconnectLeavesNewerTurnInFlight(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	agent := newFakeAgent(t, func(string) []*string {
		<-release
		return []*string{token("Hel"), token("lo")}
	})
	c, chat := newTestClient(t, agent.url(), nil)
	ctx := context.Background()

	if err := c.Connect(ctx, "user-1"); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	c.mu.Lock()
	stale := c.gen
	c.mu.Unlock()
	c.Close()
	waitFor(t, "disconnect", func() bool { return c.State() == Disconnected })

	if err := c.SendUserMessage(ctx, "hi"); err != nil {
		close(release)
		t.Fatalf("SendUserMessage() error = %v", err)
	}
	// The reader of the dropped connection finishes its cleanup late.
	c.sealTurn(stale)

	if _, ok := chat.InFlight(); !ok {
		t.Error("placeholder of the new turn was sealed by the old connection")
	}
	close(release)

	waitFor(t, "reply", func() bool {
		m := chat.Chat()
		return len(m) > 0 && m[len(m)-1].Text == "Hello"
	})
	if m := chat.Chat(); len(m) != 2 || m[0].Text != "hi" || m[1].Role != domain.RoleAssistant {
		t.Errorf("transcript = %+v, want user turn followed by one reply", m)
	}
}

func TestResendAfterFailedDialIsNotDeduplicated(t *testing.T) {
	t.Parallel()
	var attempts atomic.Int32
	received := make(chan string, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			http.Error(w, "warming up", http.StatusServiceUnavailable)
			return
		}
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			t.Errorf("accept: %v", err)
			return
		}
		defer conn.CloseNow()
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				return
			}
			received <- string(data)
		}
	}))
	t.Cleanup(srv.Close)
	c, chat := newTestClient(t, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)

	if err := c.SendUserMessage(context.Background(), "hi"); err == nil {
		t.Fatal("first SendUserMessage() succeeded, want dial failure")
	}
	if err := c.SendUserMessage(context.Background(), "hi"); err != nil {
		t.Fatalf("retried SendUserMessage() error = %v", err)
	}
	select {
	case <-received:
	case <-time.After(5 * time.Second):
		t.Fatal("retried entry never reached the agent")
	}

	m := chat.Chat()
	if len(m) != 4 {
		t.Fatalf("transcript has %d messages, want 4: %+v", len(m), m)
	}
	for i, want := range []domain.Role{domain.RoleUser, domain.RoleAssistant, domain.RoleUser, domain.RoleAssistant} {
		if m[i].Role != want {
			t.Errorf("m[%d].Role = %q, want %q", i, m[i].Role, want)
		}
	}
	if m[0].Text != "hi" || m[2].Text != "hi" || m[0].ID == m[2].ID {
		t.Errorf("user messages = %+v, %+v, want two distinct copies", m[0], m[2])
	}
	if got, ok := chat.InFlight(); !ok || got.ID != m[3].ID {
		t.Errorf("InFlight() = %+v, %v, want the second placeholder", got, ok)
	}
}
