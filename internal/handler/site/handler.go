// Package site serves the informational pages: home, about and contact.
package site

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prescripto/patient-portal/internal/handler"
	"github.com/prescripto/patient-portal/internal/model"
	"github.com/prescripto/patient-portal/internal/session"
	"github.com/prescripto/patient-portal/internal/store"
)

const topDoctorsLimit = 10

type Handler struct {
	render  *handler.Renderer
	doctors *store.DoctorStore
}

func NewHandler(render *handler.Renderer, doctors *store.DoctorStore) *Handler {
	return &Handler{render: render, doctors: doctors}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/", h.Home)
	r.GET("/about", h.About)
	r.GET("/contact", h.Contact)
}

func (h *Handler) Home(c *gin.Context) {
	data := gin.H{
		"Title":        "Book Appointment With Trusted Doctors",
		"Specialities": model.Specialities,
	}
	top, err := h.doctors.Top(c.Request.Context(), topDoctorsLimit)
	if err != nil {
		data["Flash"] = &session.Flash{Kind: "error", Message: "Could not fetch doctors data"}
	}
	data["TopDoctors"] = top
	h.render.HTML(c, http.StatusOK, "home.html", data)
}

func (h *Handler) About(c *gin.Context) {
	h.render.HTML(c, http.StatusOK, "about.html", gin.H{"Title": "About Us"})
}

func (h *Handler) Contact(c *gin.Context) {
	h.render.HTML(c, http.StatusOK, "contact.html", gin.H{"Title": "Contact Us"})
}
