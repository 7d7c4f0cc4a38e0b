// Package doctor serves the directory with its specialty filter.
package doctor

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prescripto/patient-portal/internal/handler"
	"github.com/prescripto/patient-portal/internal/model"
	"github.com/prescripto/patient-portal/internal/session"
	"github.com/prescripto/patient-portal/internal/store"
)

type Handler struct {
	render  *handler.Renderer
	doctors *store.DoctorStore
}

func NewHandler(render *handler.Renderer, doctors *store.DoctorStore) *Handler {
	return &Handler{render: render, doctors: doctors}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/doctors", h.List)
	r.GET("/doctors/:speciality", h.List)
}

// List renders the directory, optionally narrowed to one specialty. An
// unknown specialty simply matches nothing, same as the filter it replaces.
func (h *Handler) List(c *gin.Context) {
	speciality := c.Param("speciality")

	data := gin.H{
		"Title":        "All Doctors",
		"Specialities": model.Specialities,
		"Selected":     speciality,
	}
	doctors, err := h.doctors.BySpeciality(c.Request.Context(), speciality)
	if err != nil {
		data["Flash"] = &session.Flash{Kind: "error", Message: "Could not fetch doctors data"}
	}
	data["Doctors"] = doctors
	h.render.HTML(c, http.StatusOK, "doctors.html", data)
}
