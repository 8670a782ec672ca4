package stream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/coder/websocket"

	"github.com/SelJom/ClarityAI/internal/domain"
	"github.com/SelJom/ClarityAI/internal/metrics"
)

// DefaultReadLimit bounds a single inbound frame. Audio replies are large.
const DefaultReadLimit int64 = 16 << 20

var (
	ErrNotConfigured = errors.New("streaming endpoint not configured")
	ErrNotConnected  = errors.New("stream not connected")
	ErrNoSession     = errors.New("no session id")
	ErrEmptyMessage  = errors.New("message is empty")
)

// State is the connection state.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// ChatSink is the transcript the stream writes into.
type ChatSink interface {
	BeginTurn(text string) (user, assistant domain.ChatMessage)
	AppendToken(token string) (msg domain.ChatMessage, created bool)
	CompleteInFlight() (msg domain.ChatMessage, ok bool)
}

// Config configures a Client.
type Config struct {
	// BaseURL is the ws:// or wss:// endpoint root; the connection path is
	// <BaseURL>/ws/<session id>.
	BaseURL   string
	SessionID string
	ReadLimit int64
}

// Client owns the streaming connection of one session. It never reconnects
// on its own: after a disconnect the next send dials again, and a reply that
// was interrupted keeps whatever text had arrived.
type Client struct {
	baseURL   string
	readLimit int64
	chat      ChatSink
	audio     AudioSink
	logger    *slog.Logger

	dialMu sync.Mutex // serializes Connect

	mu        sync.Mutex
	state     State
	sessionID string
	conn      *websocket.Conn
	gen       uint64
	cancel    context.CancelFunc
	done      chan struct{}

	// turnMu orders turn bookkeeping against disconnect sealing. turnGen is
	// the connection generation the in-flight reply belongs to.
	turnMu  sync.Mutex
	turnGen uint64
}

// New creates a disconnected client. A nil audio sink discards audio.
func New(cfg Config, chat ChatSink, audio AudioSink, logger *slog.Logger) *Client {
	if audio == nil {
		audio = Discard{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	limit := cfg.ReadLimit
	if limit <= 0 {
		limit = DefaultReadLimit
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		readLimit: limit,
		sessionID: cfg.SessionID,
		chat:      chat,
		audio:     audio,
		logger:    logger,
	}
}

// State returns the current connection state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SessionID returns the session the client connects as.
func (c *Client) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Connect opens the connection for sessionID. It is a no-op when already
// connected to that session; a connection for another session is closed
// first.
func (c *Client) Connect(ctx context.Context, sessionID string) error {
	if c.baseURL == "" {
		c.logger.Error("streaming endpoint not configured, cannot connect", "session_id", sessionID)
		return ErrNotConfigured
	}
	if sessionID == "" {
		return ErrNoSession
	}

	c.dialMu.Lock()
	defer c.dialMu.Unlock()

	c.mu.Lock()
	if c.state == Connected && c.sessionID == sessionID {
		c.mu.Unlock()
		return nil
	}
	switching := c.state == Connected
	c.mu.Unlock()
	if switching {
		c.Close()
	}

	c.mu.Lock()
	c.state = Connecting
	c.sessionID = sessionID
	c.mu.Unlock()

	endpoint := c.baseURL + "/ws/" + url.PathEscape(sessionID)
	conn, _, err := websocket.Dial(ctx, endpoint, nil)
	metrics.RecordConnect(err)
	if err != nil {
		c.mu.Lock()
		c.state = Disconnected
		c.mu.Unlock()
		c.logger.Warn("stream dial failed", "url", endpoint, "error", err)
		return fmt.Errorf("dial %s: %w", endpoint, err)
	}
	conn.SetReadLimit(c.readLimit)

	readCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.conn = conn
	c.state = Connected
	c.cancel = cancel
	c.done = done
	c.mu.Unlock()

	c.logger.Info("stream connected", "session_id", sessionID)
	go c.readLoop(readCtx, conn, gen, done)
	return nil
}

// SendUserMessage connects if needed, appends the user message and an
// empty assistant placeholder to the transcript, then sends the text. The
// append happens before the send and is kept even when connecting or
// sending fails; in that case the placeholder is sealed empty.
func (c *Client) SendUserMessage(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}
	frame, err := EncodeNewEntry(text)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}

	if c.State() != Connected {
		if err := c.Connect(ctx, c.SessionID()); err != nil {
			c.failTurn(text)
			return err
		}
	}

	c.mu.Lock()
	conn, gen := c.conn, c.gen
	c.mu.Unlock()
	if conn == nil {
		c.failTurn(text)
		return ErrNotConnected
	}

	c.turnMu.Lock()
	c.chat.BeginTurn(text)
	c.turnGen = gen
	c.turnMu.Unlock()

	if err := conn.Write(ctx, websocket.MessageText, frame); err != nil {
		c.chat.CompleteInFlight()
		c.logger.Warn("stream send failed", "error", err)
		return fmt.Errorf("send entry: %w", err)
	}
	c.logger.Debug("entry sent", "bytes", len(frame))
	return nil
}

// failTurn records a turn that never reached the wire.
func (c *Client) failTurn(text string) {
	c.turnMu.Lock()
	defer c.turnMu.Unlock()
	c.chat.BeginTurn(text)
	c.chat.CompleteInFlight()
}

// Close shuts the connection down and waits for the reader to finish. The
// in-flight reply, if any, is sealed.
func (c *Client) Close() {
	c.mu.Lock()
	conn, cancel, done := c.conn, c.cancel, c.done
	c.mu.Unlock()
	if conn == nil {
		return
	}

	if err := conn.Close(websocket.StatusNormalClosure, "client closing"); err != nil {
		c.logger.Debug("stream close handshake failed", "error", err)
	}
	cancel()
	<-done
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn, gen uint64, done chan struct{}) {
	defer close(done)
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			c.disconnected(gen, err)
			return
		}

		frame, err := DecodeFrame(data)
		if err != nil {
			metrics.RecordViolation("malformed_frame")
			c.logger.Warn("dropping inbound frame", "error", err, "bytes", len(data))
			continue
		}
		c.dispatch(ctx, gen, frame)
	}
}

func (c *Client) dispatch(ctx context.Context, gen uint64, frame Frame) {
	metrics.RecordFrame(frame.frameType())
	switch f := frame.(type) {
	case Ack:
		c.logger.Debug("stream ack", "status", f.Status)
	case Token:
		c.turnMu.Lock()
		msg, created := c.chat.AppendToken(f.Text)
		if created {
			c.turnGen = gen
		}
		c.turnMu.Unlock()
		if created {
			metrics.RecordViolation("stray_token")
			c.logger.Warn("protocol violation: token without in-flight reply, started a new one", "message_id", msg.ID)
		}
	case Audio:
		if _, ok := c.chat.CompleteInFlight(); !ok {
			metrics.RecordViolation("stray_audio")
			c.logger.Warn("protocol violation: audio without in-flight reply")
		}
		if err := c.audio.Play(ctx, f.Data); err != nil {
			c.logger.Warn("audio playback failed", "error", err)
		}
	}
}

// disconnected records the loss of the connection from generation gen. A
// newer connection is left alone.
func (c *Client) disconnected(gen uint64, err error) {
	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return
	}
	c.state = Disconnected
	c.conn = nil
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}

	c.sealTurn(gen)
	if status := websocket.CloseStatus(err); status == websocket.StatusNormalClosure || errors.Is(err, context.Canceled) {
		c.logger.Info("stream disconnected", "status", status)
	} else {
		c.logger.Warn("stream read error", "error", err)
	}
}

// sealTurn seals the in-flight reply if it belongs to generation gen. A turn
// already started on a newer connection keeps receiving tokens.
func (c *Client) sealTurn(gen uint64) {
	c.turnMu.Lock()
	defer c.turnMu.Unlock()
	if c.turnGen != gen {
		return
	}
	if msg, ok := c.chat.CompleteInFlight(); ok {
		c.logger.Warn("stream ended mid-reply, keeping partial text", "message_id", msg.ID, "chars", len(msg.Text))
	}
}
