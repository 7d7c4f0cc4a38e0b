// Package auth serves the combined sign-up/login page and the session
// endpoints. Credentials never stay here: they are forwarded to the backend,
// which answers with the session token this portal stores in a cookie.
package auth

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/prescripto/patient-portal/internal/backend"
	"github.com/prescripto/patient-portal/internal/handler"
	"github.com/prescripto/patient-portal/internal/middleware"
	"github.com/prescripto/patient-portal/internal/session"
)

// Service is the slice of the backend client the auth pages need.
type Service interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, name, email, password string) (string, error)
	GoogleAuth(ctx context.Context, idToken string) (string, error)
}

type Handler struct {
	render         *handler.Renderer
	sessions       *session.Manager
	svc            Service
	googleClientID string
}

func NewHandler(render *handler.Renderer, sessions *session.Manager, svc Service, googleClientID string) *Handler {
	return &Handler{
		render:         render,
		sessions:       sessions,
		svc:            svc,
		googleClientID: googleClientID,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/login", h.LoginPage)
	r.POST("/login", h.Login)
	r.POST("/register", h.Register)
	r.POST("/login/google", h.GoogleSignIn)
	r.POST("/logout", h.Logout)
}

func (h *Handler) LoginPage(c *gin.Context) {
	// Already signed in: nothing to do here.
	if middleware.Token(c) != "" {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	h.render.HTML(c, http.StatusOK, "login.html", gin.H{
		"Title":          "Login",
		"GoogleClientID": h.googleClientID,
		"Mode":           c.Query("mode"), // "signup" switches the form
	})
}

type loginForm struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		h.sessions.SetFlash(c, "error", "Please enter a valid email and password")
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}

	token, err := h.svc.Login(c.Request.Context(), form.Email, form.Password)
	if err != nil {
		h.sessions.SetFlash(c, "error", backend.UserMessage(err))
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}

	h.sessions.Save(c, token)
	h.sessions.SetFlash(c, "success", "Welcome back!")
	c.Redirect(http.StatusSeeOther, "/")
}

type registerForm struct {
	Name     string `form:"name" binding:"required"`
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required,min=8"`
}

func (h *Handler) Register(c *gin.Context) {
	var form registerForm
	if err := c.ShouldBind(&form); err != nil {
		h.sessions.SetFlash(c, "error", "Please fill in all fields; passwords need at least 8 characters")
		c.Redirect(http.StatusSeeOther, "/login?mode=signup")
		return
	}

	token, err := h.svc.Register(c.Request.Context(), form.Name, form.Email, form.Password)
	if err != nil {
		h.sessions.SetFlash(c, "error", backend.UserMessage(err))
		c.Redirect(http.StatusSeeOther, "/login?mode=signup")
		return
	}

	h.sessions.Save(c, token)
	h.sessions.SetFlash(c, "success", "Account created successfully!")
	c.Redirect(http.StatusSeeOther, "/")
}

// GoogleSignIn receives the credential the Google identity widget posts to
// its login_uri and trades it for a backend session token.
func (h *Handler) GoogleSignIn(c *gin.Context) {
	credential := c.PostForm("credential")
	if credential == "" {
		h.sessions.SetFlash(c, "error", "Google Login Failed")
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}

	token, err := h.svc.GoogleAuth(c.Request.Context(), credential)
	if err != nil {
		log.Warn().Err(err).Msg("google sign-in failed")
		h.sessions.SetFlash(c, "error", "Google Login Failed")
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}

	h.sessions.Save(c, token)
	h.sessions.SetFlash(c, "success", "Welcome back! Login successful.")
	c.Redirect(http.StatusSeeOther, "/")
}

// Logout clears the token cookie. The doctor cache is untouched.
func (h *Handler) Logout(c *gin.Context) {
	h.sessions.Clear(c)
	c.Redirect(http.StatusSeeOther, "/login")
}
