// Package profile serves the profile page and its multipart update.
package profile

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prescripto/patient-portal/internal/backend"
	"github.com/prescripto/patient-portal/internal/handler"
	"github.com/prescripto/patient-portal/internal/middleware"
	"github.com/prescripto/patient-portal/internal/model"
	"github.com/prescripto/patient-portal/internal/session"
)

// Avatars above this size are rejected before reaching the backend.
const maxImageBytes = 5 << 20

// Service is the slice of the backend client the profile page needs.
type Service interface {
	UpdateProfile(ctx context.Context, token string, update model.ProfileUpdate) (string, error)
}

type Handler struct {
	render   *handler.Renderer
	sessions *session.Manager
	svc      Service
}

func NewHandler(render *handler.Renderer, sessions *session.Manager, svc Service) *Handler {
	return &Handler{render: render, sessions: sessions, svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	my := r.Group("/my-profile", auth.RequireAuth("Please login to view your profile"))
	{
		my.GET("", h.Show)
		my.POST("", h.Update)
	}
}

func (h *Handler) Show(c *gin.Context) {
	user := middleware.User(c)
	if user == nil {
		// Token present but the profile fetch failed this request.
		h.sessions.SetFlash(c, "error", "Could not load your profile")
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	h.render.HTML(c, http.StatusOK, "my_profile.html", gin.H{
		"Title": "My Profile",
		"Edit":  c.Query("edit") == "1",
	})
}

type updateForm struct {
	Name   string `form:"name" binding:"required"`
	Phone  string `form:"phone"`
	Line1  string `form:"line1"`
	Line2  string `form:"line2"`
	Gender string `form:"gender"`
	DOB    string `form:"dob"`
}

// Update forwards the edited fields to the backend. Email never travels: it
// is immutable from this client. The page re-renders from a fresh profile
// fetch on the follow-up GET.
func (h *Handler) Update(c *gin.Context) {
	var form updateForm
	if err := c.ShouldBind(&form); err != nil {
		h.sessions.SetFlash(c, "error", "Name is required")
		c.Redirect(http.StatusSeeOther, "/my-profile?edit=1")
		return
	}

	update := model.ProfileUpdate{
		Name:    form.Name,
		Phone:   form.Phone,
		Address: model.Address{Line1: form.Line1, Line2: form.Line2},
		Gender:  form.Gender,
		DOB:     form.DOB,
	}

	if file, err := c.FormFile("image"); err == nil && file.Size > 0 {
		if file.Size > maxImageBytes {
			h.sessions.SetFlash(c, "error", "Image too large (5 MB max)")
			c.Redirect(http.StatusSeeOther, "/my-profile?edit=1")
			return
		}
		opened, err := file.Open()
		if err == nil {
			data, readErr := io.ReadAll(io.LimitReader(opened, maxImageBytes))
			opened.Close()
			if readErr == nil {
				update.ImageName = file.Filename
				update.Image = data
			}
		}
	}

	message, err := h.svc.UpdateProfile(c.Request.Context(), middleware.Token(c), update)
	if err != nil {
		if errors.Is(err, backend.ErrUnauthorized) {
			h.sessions.Clear(c)
			h.sessions.SetFlash(c, "warn", "Session expired, please login again")
			c.Redirect(http.StatusSeeOther, "/login")
			return
		}
		h.sessions.SetFlash(c, "error", backend.UserMessage(err))
		c.Redirect(http.StatusSeeOther, "/my-profile?edit=1")
		return
	}

	if message == "" {
		message = "Profile Updated"
	}
	h.sessions.SetFlash(c, "success", message)
	c.Redirect(http.StatusSeeOther, "/my-profile")
}
