package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prescripto/patient-portal/internal/backend"
	"github.com/prescripto/patient-portal/internal/model"
	"github.com/prescripto/patient-portal/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeProfileLoader struct {
	user  *model.User
	err   error
	calls int
}

func (f *fakeProfileLoader) GetProfile(ctx context.Context, token string) (*model.User, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func newSessionEngine(loader *fakeProfileLoader) (*gin.Engine, *AuthMiddleware) {
	sessions := session.NewManager(false)
	auth := NewAuthMiddleware(sessions, loader)
	engine := gin.New()
	engine.Use(auth.LoadSession())
	return engine, auth
}

func TestLoadSessionWithoutTokenSkipsNetwork(t *testing.T) {
	loader := &fakeProfileLoader{user: &model.User{Name: "Jane"}}
	engine, _ := newSessionEngine(loader)
	engine.GET("/", func(c *gin.Context) {
		assert.Empty(t, Token(c))
		assert.Nil(t, User(c))
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, loader.calls)
}

func TestLoadSessionPopulatesProfile(t *testing.T) {
	loader := &fakeProfileLoader{user: &model.User{ID: "u1", Name: "Jane"}}
	engine, _ := newSessionEngine(loader)
	engine.GET("/", func(c *gin.Context) {
		assert.Equal(t, "tok123", Token(c))
		require.NotNil(t, User(c))
		assert.Equal(t, "Jane", User(c).Name)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: session.TokenCookie, Value: "tok123"})
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, 1, loader.calls)
}

func TestLoadSessionClearsRejectedToken(t *testing.T) {
	loader := &fakeProfileLoader{err: fmt.Errorf("%w: token expired", backend.ErrUnauthorized)}
	engine, _ := newSessionEngine(loader)
	engine.GET("/", func(c *gin.Context) {
		assert.Empty(t, Token(c))
		assert.Nil(t, User(c))
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: session.TokenCookie, Value: "stale"})
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var cleared bool
	for _, ck := range w.Result().Cookies() {
		if ck.Name == session.TokenCookie && ck.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "token cookie should be expired")
}

func TestLoadSessionToleratesFetchFailure(t *testing.T) {
	loader := &fakeProfileLoader{err: errors.New("backend down")}
	engine, _ := newSessionEngine(loader)
	engine.GET("/", func(c *gin.Context) {
		// Token survives so a later request can retry.
		assert.Equal(t, "tok123", Token(c))
		assert.Nil(t, User(c))
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: session.TokenCookie, Value: "tok123"})
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAuthRedirectsSignedOut(t *testing.T) {
	loader := &fakeProfileLoader{}
	engine, auth := newSessionEngine(loader)
	var reached bool
	engine.GET("/protected", auth.RequireAuth("Please login to continue"), func(c *gin.Context) {
		reached = true
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.False(t, reached)
}

func TestRequireAuthPassesSignedIn(t *testing.T) {
	loader := &fakeProfileLoader{user: &model.User{Name: "Jane"}}
	engine, auth := newSessionEngine(loader)
	engine.GET("/protected", auth.RequireAuth("Please login to continue"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: session.TokenCookie, Value: "tok123"})
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
