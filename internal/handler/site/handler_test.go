package site

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prescripto/patient-portal/internal/handler"
	"github.com/prescripto/patient-portal/internal/model"
	"github.com/prescripto/patient-portal/internal/session"
	"github.com/prescripto/patient-portal/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeLister struct {
	doctors []model.Doctor
	err     error
}

func (f *fakeLister) ListDoctors(ctx context.Context) ([]model.Doctor, error) {
	return f.doctors, f.err
}

func newTestRig(lister *fakeLister) *gin.Engine {
	sessions := session.NewManager(false)
	h := NewHandler(handler.NewRenderer(sessions), store.NewDoctorStore(lister, time.Minute))

	engine := gin.New()
	engine.LoadHTMLGlob("../../../web/templates/*.html")
	h.RegisterRoutes(engine.Group(""))
	return engine
}

func TestHomeShowsAvailableDoctors(t *testing.T) {
	engine := newTestRig(&fakeLister{doctors: []model.Doctor{
		{ID: "doc1", Name: "Dr. Richard James", Speciality: "General physician", Available: true},
		{ID: "doc2", Name: "Dr. Emily Larson", Speciality: "Gynecologist", Available: false},
	}})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Dr. Richard James")
	assert.NotContains(t, body, "Dr. Emily Larson")
	assert.Contains(t, body, "General physician")
}

func TestHomeFetchFailureFlashesSamePage(t *testing.T) {
	engine := newTestRig(&fakeLister{err: errors.New("connection refused")})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	// The error must show on this response, not after another navigation.
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Could not fetch doctors data")
}
