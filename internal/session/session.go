// Package session keeps the backend token in the browser. The cookie's
// presence is the sole signed-in signal: writing it is login, removing it is
// logout, and nothing else is persisted client-side.
package session

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// TokenCookie is the fixed storage key for the session token.
	TokenCookie = "token"

	flashCookie = "flash"

	// DefaultMaxAge bounds the cookie lifetime when the token carries no
	// readable expiry.
	DefaultMaxAge = 30 * 24 * time.Hour
)

type Manager struct {
	secure bool
}

func NewManager(secure bool) *Manager {
	return &Manager{secure: secure}
}

// Token returns the stored session token, or "" when signed out.
func (m *Manager) Token(c *gin.Context) string {
	token, err := c.Cookie(TokenCookie)
	if err != nil {
		return ""
	}
	return token
}

// Save stores the token. The token is opaque to this client, but when it
// happens to be a JWT with a readable exp claim the cookie lifetime is capped
// to it so the browser and the backend expire together. No signature check:
// validity stays the backend's call. An already-expired exp still gets a
// short-lived cookie rather than the default, long enough for the backend to
// reject it and trigger the forced-logout path.
func (m *Manager) Save(c *gin.Context, token string) {
	maxAge := DefaultMaxAge
	if exp := tokenExpiry(token); !exp.IsZero() {
		until := time.Until(exp)
		switch {
		case until <= 0:
			maxAge = time.Minute
		case until < maxAge:
			maxAge = until
		}
	}
	c.SetCookie(TokenCookie, token, int(maxAge.Seconds()), "/", "", m.secure, true)
}

// Clear removes the token. This is the only logout mechanism.
func (m *Manager) Clear(c *gin.Context) {
	c.SetCookie(TokenCookie, "", -1, "/", "", m.secure, true)
}

func tokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

// Flash is a one-shot notification rendered on the next page load and
// cleared as it is read.
type Flash struct {
	Kind    string `json:"kind"` // success, error, info, warn
	Message string `json:"message"`
}

// SetFlash queues a notification for the next rendered page.
func (m *Manager) SetFlash(c *gin.Context, kind, message string) {
	payload, err := json.Marshal(Flash{Kind: kind, Message: message})
	if err != nil {
		return
	}
	encoded := base64.URLEncoding.EncodeToString(payload)
	c.SetCookie(flashCookie, encoded, 60, "/", "", m.secure, true)
}

// PopFlash returns the pending notification, if any, and clears it.
func (m *Manager) PopFlash(c *gin.Context) *Flash {
	encoded, err := c.Cookie(flashCookie)
	if err != nil || encoded == "" {
		return nil
	}
	c.SetCookie(flashCookie, "", -1, "/", "", m.secure, true)

	payload, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil
	}
	var f Flash
	if err := json.Unmarshal(payload, &f); err != nil {
		return nil
	}
	return &f
}

// SameSite configures gin's cookie defaults for the whole engine.
func SameSite(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.Next()
}
