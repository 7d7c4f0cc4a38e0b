// Package handler holds what every page handler shares: the HTML renderer
// that decorates views with session state and flash notifications.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prescripto/patient-portal/internal/middleware"
	"github.com/prescripto/patient-portal/internal/session"
)

type Renderer struct {
	sessions *session.Manager
}

func NewRenderer(sessions *session.Manager) *Renderer {
	return &Renderer{sessions: sessions}
}

// HTML renders a template with the shared view context merged in: the
// signed-in user (for the navbar), any pending flash, and the specialty menu
// consumers pull from the model package.
func (r *Renderer) HTML(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if _, ok := data["User"]; !ok {
		data["User"] = middleware.User(c)
	}
	// A handler that renders an error in the same request passes Flash
	// inline; otherwise the pending cookie flash is consumed.
	if _, ok := data["Flash"]; !ok {
		data["Flash"] = r.sessions.PopFlash(c)
	}
	c.HTML(status, name, data)
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data": gin.H{
			"status": "healthy",
		},
	})
}
