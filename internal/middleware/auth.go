package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/prescripto/patient-portal/internal/backend"
	"github.com/prescripto/patient-portal/internal/model"
	"github.com/prescripto/patient-portal/internal/session"
)

const (
	// ContextToken holds the session token for the current request.
	ContextToken = "session_token"
	// ContextUser holds the *model.User profile when signed in.
	ContextUser = "session_user"
)

// ProfileLoader is the slice of the backend client the middleware needs.
type ProfileLoader interface {
	GetProfile(ctx context.Context, token string) (*model.User, error)
}

type AuthMiddleware struct {
	sessions *session.Manager
	backend  ProfileLoader
}

func NewAuthMiddleware(sessions *session.Manager, backend ProfileLoader) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions, backend: backend}
}

// LoadSession resolves the token cookie into a profile for every request.
// Absent token means signed-out: no network call, no profile. A rejected
// token clears the cookie, which is the forced-logout path. Any other fetch
// failure leaves the request signed-out but keeps the cookie so the user can
// retry.
func (m *AuthMiddleware) LoadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := m.sessions.Token(c)
		if token == "" {
			c.Next()
			return
		}
		c.Set(ContextToken, token)

		user, err := m.backend.GetProfile(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, backend.ErrUnauthorized) {
				log.Info().Str("path", c.Request.URL.Path).Msg("session token rejected, logging out")
				m.sessions.Clear(c)
				c.Set(ContextToken, "")
			} else {
				log.Warn().Err(err).Msg("profile fetch failed")
			}
			c.Next()
			return
		}

		c.Set(ContextUser, user)
		c.Next()
	}
}

// RequireAuth redirects signed-out users to the login page with a prompt.
func (m *AuthMiddleware) RequireAuth(prompt string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextToken) == "" {
			m.sessions.SetFlash(c, "warn", prompt)
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// Token returns the session token set by LoadSession, or "".
func Token(c *gin.Context) string {
	return c.GetString(ContextToken)
}

// User returns the signed-in profile, or nil.
func User(c *gin.Context) *model.User {
	if v, exists := c.Get(ContextUser); exists {
		if user, ok := v.(*model.User); ok {
			return user
		}
	}
	return nil
}
