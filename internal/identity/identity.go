// Package identity resolves who the local client acts as: a configured user
// id, a logged-in user, or a persisted anonymous device id.
package identity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/SelJom/ClarityAI/internal/remote"
	"github.com/SelJom/ClarityAI/internal/store"
)

const (
	// DeviceKey is the persisted key of the device record.
	DeviceKey = "clarity_device_v1"

	SessionHeaderName     = "X-Clarity-Session-ID"
	DefaultSessionIDValue = "default"
)

type contextKey int

const (
	userIDKey contextKey = iota
	sessionIDKey
)

// ErrMissingCredentials is returned by Login when email or password is empty.
var ErrMissingCredentials = errors.New("email and password are required")

var (
	anonIDPattern    = regexp.MustCompile(`^anon_[a-f0-9]{32}$`)
	sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)
)

// Device is the persisted identity record. AnonID is created once per
// device; UserID and Token are set by a login.
type Device struct {
	AnonID    string    `json:"anonId"`
	UserID    string    `json:"userId,omitempty"`
	Token     string    `json:"token,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Authenticator performs a login. remote.ProfileService implements it.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (remote.Session, error)
}

// Identity holds the resolved user of this process.
type Identity struct {
	s          store.Store
	configured string

	mu     sync.RWMutex
	device Device
}

// Resolve loads (or creates and persists) the device record. A non-empty
// configured id overrides every other source.
func Resolve(ctx context.Context, s store.Store, configured string) (*Identity, error) {
	dev := store.Load(ctx, s, DeviceKey, Device{})
	if !isValidAnonID(dev.AnonID) {
		id, err := generateAnonID()
		if err != nil {
			return nil, err
		}
		dev = Device{AnonID: id, CreatedAt: time.Now().UTC()}
		store.Save(ctx, s, DeviceKey, dev)
	}
	return &Identity{s: s, configured: strings.TrimSpace(configured), device: dev}, nil
}

// UserID returns the id the client acts as.
func (i *Identity) UserID() string {
	if i.configured != "" {
		return i.configured
	}
	i.mu.RLock()
	defer i.mu.RUnlock()
	if i.device.UserID != "" {
		return i.device.UserID
	}
	return i.device.AnonID
}

// Anonymous reports whether the client acts as its anonymous device id.
func (i *Identity) Anonymous() bool {
	return i.UserID() == i.Device().AnonID
}

// Device returns a copy of the device record.
func (i *Identity) Device() Device {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.device
}

// Username is a short display handle derived from the user id.
func (i *Identity) Username() string {
	return deriveUsername(i.UserID())
}

// Login exchanges credentials for a session and persists it. Credentials are
// not stored.
func (i *Identity) Login(ctx context.Context, auth Authenticator, email, password string) (remote.Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return remote.Session{}, ErrMissingCredentials
	}
	sess, err := auth.Login(ctx, email, password)
	if err != nil {
		return remote.Session{}, err
	}

	i.mu.Lock()
	i.device.UserID = sess.UserID
	i.device.Token = sess.Token
	dev := i.device
	i.mu.Unlock()

	store.Save(ctx, i.s, DeviceKey, dev)
	return sess, nil
}

// Logout forgets the logged-in user; the anonymous id is kept.
func (i *Identity) Logout(ctx context.Context) {
	i.mu.Lock()
	i.device.UserID = ""
	i.device.Token = ""
	dev := i.device
	i.mu.Unlock()

	store.Save(ctx, i.s, DeviceKey, dev)
}

// UserIDFromContext extracts the user ID from the request context.
func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(userIDKey).(string); ok {
		return v
	}
	return ""
}

// SessionIDFromContext extracts the client session ID from the request context.
func SessionIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(sessionIDKey).(string); ok {
		return v
	}
	return DefaultSessionIDValue
}

// WithUserID returns ctx carrying userID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func generateAnonID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate anonymous id: %w", err)
	}
	return "anon_" + hex.EncodeToString(buf), nil
}

func isValidAnonID(id string) bool {
	return anonIDPattern.MatchString(id)
}

func sanitizeSessionID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" || !sessionIDPattern.MatchString(id) {
		return DefaultSessionIDValue
	}
	return id
}

func deriveUsername(userID string) string {
	if strings.HasPrefix(userID, "anon_") && len(userID) > 13 {
		return "anon-" + userID[len(userID)-8:]
	}
	if userID == "" {
		return "anon-user"
	}
	return userID
}

func sessionIDFromRequest(r *http.Request) string {
	sid := r.Header.Get(SessionHeaderName)
	if sid == "" {
		sid = r.URL.Query().Get("session_id")
	}
	return sanitizeSessionID(sid)
}

// Middleware injects the resolved user id and the caller's session ID.
func Middleware(id *Identity) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithUserID(r.Context(), id.UserID())
			ctx = context.WithValue(ctx, sessionIDKey, sessionIDFromRequest(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
