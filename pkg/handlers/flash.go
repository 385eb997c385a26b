package handlers

import (
	"crypto/sha256"
	"net/http"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

// flashSessionName is the cookie holding one-shot upload messages.
const flashSessionName = "adlens-flash"

// FlashStore wraps a cookie-based session store used for the one-shot
// success/error messages shown after an upload redirect.
type FlashStore struct {
	store  *sessions.CookieStore
	logger *zap.Logger
}

// NewFlashStore creates a FlashStore. The secret signs the session cookie and
// can be any passphrase; it is SHA-256 hashed to derive the signing key.
func NewFlashStore(secret string, logger *zap.Logger) *FlashStore {
	key := sha256.Sum256([]byte(secret))

	store := sessions.NewCookieStore(key[:])
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   300, // flashes only need to survive one redirect
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &FlashStore{store: store, logger: logger}
}

// Add stores a one-shot message under the given kind ("success" or "error").
func (f *FlashStore) Add(w http.ResponseWriter, r *http.Request, kind, message string) {
	session, err := f.store.Get(r, flashSessionName)
	if err != nil {
		// A stale or tampered cookie yields a fresh session; keep going.
		f.logger.Debug("Recreating flash session", zap.Error(err))
	}
	session.AddFlash(message, kind)
	if err := session.Save(r, w); err != nil {
		f.logger.Warn("Failed to save flash session", zap.Error(err))
	}
}

// Pop returns and clears all messages of the given kind.
func (f *FlashStore) Pop(w http.ResponseWriter, r *http.Request, kind string) []string {
	session, err := f.store.Get(r, flashSessionName)
	if err != nil {
		f.logger.Debug("Recreating flash session", zap.Error(err))
	}
	raw := session.Flashes(kind)
	if len(raw) > 0 {
		if err := session.Save(r, w); err != nil {
			f.logger.Warn("Failed to save flash session", zap.Error(err))
		}
	}
	messages := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			messages = append(messages, s)
		}
	}
	return messages
}
