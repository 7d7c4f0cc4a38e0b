// Package booking serves the appointment page with its 7-day slot grid, the
// booking submission, and the appointments list with its cancel, delete and
// payment actions.
package booking

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/prescripto/patient-portal/internal/backend"
	"github.com/prescripto/patient-portal/internal/handler"
	"github.com/prescripto/patient-portal/internal/middleware"
	"github.com/prescripto/patient-portal/internal/model"
	"github.com/prescripto/patient-portal/internal/session"
	"github.com/prescripto/patient-portal/internal/slots"
	"github.com/prescripto/patient-portal/internal/store"
)

const relatedDoctorsLimit = 5

// Service is the slice of the backend client the booking flows need.
type Service interface {
	BookAppointment(ctx context.Context, token, docID, slotDate, slotTime string) (string, error)
	ListAppointments(ctx context.Context, token string) ([]model.Appointment, error)
	CancelAppointment(ctx context.Context, token, appointmentID string) (string, error)
	DeleteAppointment(ctx context.Context, token, appointmentID string) (string, error)
	CreatePaymentSession(ctx context.Context, token, appointmentID string) (string, error)
	VerifyPayment(ctx context.Context, token, success, appointmentID string) error
}

type Handler struct {
	render   *handler.Renderer
	sessions *session.Manager
	doctors  *store.DoctorStore
	svc      Service

	// now is swappable so the slot grid is deterministic under test.
	now func() time.Time
}

func NewHandler(render *handler.Renderer, sessions *session.Manager, doctors *store.DoctorStore, svc Service) *Handler {
	return &Handler{
		render:   render,
		sessions: sessions,
		doctors:  doctors,
		svc:      svc,
		now:      time.Now,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	r.GET("/appointment/:docId", h.AppointmentPage)
	r.POST("/appointment/:docId/book",
		auth.RequireAuth("Please login to book an appointment"), h.Book)

	my := r.Group("/my-appointments", auth.RequireAuth("Please login to view your appointments"))
	{
		my.GET("", h.MyAppointments)
		my.POST("/cancel", h.Cancel)
		my.POST("/delete", h.Delete)
		my.POST("/pay", h.Pay)
	}
}

// dayView is one tab of the slot grid.
type dayView struct {
	Index   int
	Weekday string
	Day     int
	Slots   []slots.Slot
}

// AppointmentPage renders the doctor profile with the bookable grid. The
// selected day rides the ?day query; slot choice is a radio in the form.
func (h *Handler) AppointmentPage(c *gin.Context) {
	doc, err := h.doctors.ByID(c.Request.Context(), c.Param("docId"))
	if err != nil {
		h.sessions.SetFlash(c, "error", "Could not fetch doctors data")
		c.Redirect(http.StatusSeeOther, "/doctors")
		return
	}
	if doc == nil {
		h.sessions.SetFlash(c, "error", "Doctor not found")
		c.Redirect(http.StatusSeeOther, "/doctors")
		return
	}

	now := h.now()
	grid := slots.Generate(doc.SlotsBooked, now)

	selected, err := strconv.Atoi(c.DefaultQuery("day", "0"))
	if err != nil || selected < 0 || selected >= len(grid) {
		selected = 0
	}

	days := make([]dayView, 0, len(grid))
	for i, daySlots := range grid {
		date := now.AddDate(0, 0, i)
		days = append(days, dayView{
			Index:   i,
			Weekday: strings.ToUpper(date.Format("Mon")),
			Day:     date.Day(),
			Slots:   daySlots,
		})
	}

	related, err := h.doctors.Related(c.Request.Context(), doc.Speciality, doc.ID, relatedDoctorsLimit)
	if err != nil {
		related = nil
	}

	h.render.HTML(c, http.StatusOK, "appointment.html", gin.H{
		"Title":    doc.Name,
		"Doctor":   doc,
		"Days":     days,
		"Selected": selected,
		"Related":  related,
	})
}

// Book submits the chosen slot. Without a selected time no request is sent;
// the user is prompted instead. On success the doctor cache is refreshed so
// the reserved slot disappears, and the user lands on the appointments list.
func (h *Handler) Book(c *gin.Context) {
	docID := c.Param("docId")
	slotTime := c.PostForm("time")
	day, err := strconv.Atoi(c.DefaultPostForm("day", "0"))
	if err != nil || day < 0 || day >= slots.HorizonDays {
		day = 0
	}

	if slotTime == "" {
		h.sessions.SetFlash(c, "info", "Please select a time slot")
		c.Redirect(http.StatusSeeOther, "/appointment/"+docID+"?day="+strconv.Itoa(day))
		return
	}

	slotDate := slots.DateKey(h.now().AddDate(0, 0, day))
	message, err := h.svc.BookAppointment(c.Request.Context(), middleware.Token(c), docID, slotDate, slotTime)
	if err != nil {
		h.fail(c, err, "/appointment/"+docID+"?day="+strconv.Itoa(day))
		return
	}

	if _, err := h.doctors.Refresh(c.Request.Context()); err != nil {
		log.Warn().Err(err).Msg("doctor refresh after booking failed")
	}
	if message == "" {
		message = "Appointment Booked"
	}
	h.sessions.SetFlash(c, "success", message)
	c.Redirect(http.StatusSeeOther, "/my-appointments")
}

// MyAppointments lists bookings newest first. Returning from a completed
// Stripe checkout with ?success=true&appointmentId first reports the outcome
// to the backend, then reloads the clean URL. A cancelled checkout comes back
// with success=false and just gets the list.
func (h *Handler) MyAppointments(c *gin.Context) {
	token := middleware.Token(c)

	if appointmentID := c.Query("appointmentId"); appointmentID != "" && c.Query("success") == "true" {
		h.verifyPayment(c, token, appointmentID)
		return
	}

	appointments, err := h.svc.ListAppointments(c.Request.Context(), token)
	if err != nil {
		h.fail(c, err, "/")
		return
	}

	// Newest first.
	for i, j := 0, len(appointments)-1; i < j; i, j = i+1, j-1 {
		appointments[i], appointments[j] = appointments[j], appointments[i]
	}

	views := make([]gin.H, 0, len(appointments))
	for _, a := range appointments {
		views = append(views, gin.H{
			"Appointment": a,
			"SlotDate":    model.FormatSlotDate(a.SlotDate),
		})
	}

	h.render.HTML(c, http.StatusOK, "my_appointments.html", gin.H{
		"Title":        "My Appointments",
		"Appointments": views,
	})
}

func (h *Handler) verifyPayment(c *gin.Context, token, appointmentID string) {
	err := h.svc.VerifyPayment(c.Request.Context(), token, "true", appointmentID)
	if err != nil {
		if h.forcedLogout(c, err) {
			return
		}
		h.sessions.SetFlash(c, "error", "Verification failed")
	} else {
		h.sessions.SetFlash(c, "success", "Payment Successful")
	}
	c.Redirect(http.StatusSeeOther, "/my-appointments")
}

func (h *Handler) Cancel(c *gin.Context) {
	message, err := h.svc.CancelAppointment(c.Request.Context(), middleware.Token(c), c.PostForm("appointmentId"))
	if err != nil {
		h.fail(c, err, "/my-appointments")
		return
	}
	if message == "" {
		message = "Appointment Cancelled"
	}
	h.sessions.SetFlash(c, "success", message)
	c.Redirect(http.StatusSeeOther, "/my-appointments")
}

func (h *Handler) Delete(c *gin.Context) {
	message, err := h.svc.DeleteAppointment(c.Request.Context(), middleware.Token(c), c.PostForm("appointmentId"))
	if err != nil {
		h.fail(c, err, "/my-appointments")
		return
	}
	if message == "" {
		message = "Appointment Removed"
	}
	h.sessions.SetFlash(c, "success", message)
	c.Redirect(http.StatusSeeOther, "/my-appointments")
}

// Pay creates a Stripe checkout session and sends the browser there.
func (h *Handler) Pay(c *gin.Context) {
	sessionURL, err := h.svc.CreatePaymentSession(c.Request.Context(), middleware.Token(c), c.PostForm("appointmentId"))
	if err != nil {
		h.fail(c, err, "/my-appointments")
		return
	}
	c.Redirect(http.StatusSeeOther, sessionURL)
}

// fail converts a backend error into a flash and redirect; a rejected token
// additionally clears the session.
func (h *Handler) fail(c *gin.Context, err error, redirect string) {
	if h.forcedLogout(c, err) {
		return
	}
	h.sessions.SetFlash(c, "error", backend.UserMessage(err))
	c.Redirect(http.StatusSeeOther, redirect)
}

func (h *Handler) forcedLogout(c *gin.Context, err error) bool {
	if !errors.Is(err, backend.ErrUnauthorized) {
		return false
	}
	h.sessions.Clear(c)
	h.sessions.SetFlash(c, "warn", "Session expired, please login again")
	c.Redirect(http.StatusSeeOther, "/login")
	return true
}
