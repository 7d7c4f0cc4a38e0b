// Package backend is the typed HTTP client for the booking platform API. The
// portal owns no business logic: every operation here is a single
// request/response exchange, authenticated by passing the raw session token in
// a custom "token" header.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/prescripto/patient-portal/internal/model"
	"github.com/prescripto/patient-portal/pkg/circuitbreaker"
	"github.com/prescripto/patient-portal/pkg/metrics"
)

const defaultTimeout = 15 * time.Second

type Config struct {
	// BaseURL of the booking API, without trailing slash.
	BaseURL string

	// HTTPClient is optional and defaults to a client with a 15s timeout.
	HTTPClient *http.Client

	// Breaker guards the upstream; a default one is created when nil.
	Breaker *circuitbreaker.CircuitBreaker

	// Metrics is optional; nil disables instrumentation.
	Metrics *metrics.Metrics
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *circuitbreaker.CircuitBreaker
	metrics    *metrics.Metrics
}

func NewClient(cfg Config) *Client {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: defaultTimeout}
	}
	if cfg.Breaker == nil {
		cfg.Breaker = circuitbreaker.New(circuitbreaker.Settings{Name: "booking-api"})
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: cfg.HTTPClient,
		breaker:    cfg.Breaker,
		metrics:    cfg.Metrics,
	}
}

// envelope is the {success, message} core every response shares.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (e *envelope) status() (bool, string) { return e.Success, e.Message }

type apiResponse interface{ status() (bool, string) }

type tokenResponse struct {
	envelope
	Token string `json:"token"`
}

type doctorListResponse struct {
	envelope
	Doctors []model.Doctor `json:"doctors"`
}

type profileResponse struct {
	envelope
	UserData model.User `json:"userData"`
}

type appointmentsResponse struct {
	envelope
	Appointments []model.Appointment `json:"appointments"`
}

type paymentSessionResponse struct {
	envelope
	SessionURL string `json:"session_url"`
}

// ListDoctors fetches the doctor directory. No authentication required.
func (c *Client) ListDoctors(ctx context.Context) ([]model.Doctor, error) {
	var resp doctorListResponse
	if err := c.do(ctx, http.MethodGet, "/api/doctor/list", "", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Doctors, nil
}

// Register creates an account and returns the session token.
func (c *Client) Register(ctx context.Context, name, email, password string) (string, error) {
	body := map[string]string{"name": name, "email": email, "password": password}
	var resp tokenResponse
	if err := c.do(ctx, http.MethodPost, "/api/user/register", "", body, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body := map[string]string{"email": email, "password": password}
	var resp tokenResponse
	if err := c.do(ctx, http.MethodPost, "/api/user/login", "", body, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

// GoogleAuth exchanges a Google ID token for a session token.
func (c *Client) GoogleAuth(ctx context.Context, idToken string) (string, error) {
	body := map[string]string{"idToken": idToken}
	var resp tokenResponse
	if err := c.do(ctx, http.MethodPost, "/api/user/google-auth", "", body, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

// GetProfile loads the signed-in user's profile.
func (c *Client) GetProfile(ctx context.Context, token string) (*model.User, error) {
	var resp profileResponse
	if err := c.do(ctx, http.MethodGet, "/api/user/get-profile", token, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.UserData, nil
}

// UpdateProfile submits the editable profile fields as multipart form data,
// with the address nested as a JSON string and the image attached when set.
// Returns the backend's confirmation message.
func (c *Client) UpdateProfile(ctx context.Context, token string, update model.ProfileUpdate) (string, error) {
	address, err := json.Marshal(update.Address)
	if err != nil {
		return "", fmt.Errorf("encode address: %w", err)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := map[string]string{
		"name":    update.Name,
		"phone":   update.Phone,
		"address": string(address),
		"gender":  update.Gender,
		"dob":     update.DOB,
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return "", fmt.Errorf("write field %s: %w", k, err)
		}
	}
	if len(update.Image) > 0 {
		part, err := w.CreateFormFile("image", update.ImageName)
		if err != nil {
			return "", fmt.Errorf("attach image: %w", err)
		}
		if _, err := part.Write(update.Image); err != nil {
			return "", fmt.Errorf("attach image: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize form: %w", err)
	}

	const path = "/api/user/update-profile"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("token", token)

	var resp envelope
	if err := c.send(req, path, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// BookAppointment reserves a slot with the given doctor. slotDate uses the
// day_month_year key format and slotTime the display string of the slot.
// Returns the backend's confirmation message.
func (c *Client) BookAppointment(ctx context.Context, token, docID, slotDate, slotTime string) (string, error) {
	body := map[string]string{"docId": docID, "slotDate": slotDate, "slotTime": slotTime}
	var resp envelope
	if err := c.do(ctx, http.MethodPost, "/api/user/book-appointment", token, body, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// ListAppointments returns the user's appointments, oldest first as served.
func (c *Client) ListAppointments(ctx context.Context, token string) ([]model.Appointment, error) {
	var resp appointmentsResponse
	if err := c.do(ctx, http.MethodGet, "/api/user/appointments", token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Appointments, nil
}

// CancelAppointment cancels a booking; the slot becomes available again.
// Returns the backend's confirmation message.
func (c *Client) CancelAppointment(ctx context.Context, token, appointmentID string) (string, error) {
	var resp envelope
	err := c.do(ctx, http.MethodPost, "/api/user/cancel-appointment", token,
		map[string]string{"appointmentId": appointmentID}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

// DeleteAppointment removes a cancelled booking from the user's history.
// Returns the backend's confirmation message.
func (c *Client) DeleteAppointment(ctx context.Context, token, appointmentID string) (string, error) {
	var resp envelope
	err := c.do(ctx, http.MethodPost, "/api/user/delete-appointment", token,
		map[string]string{"appointmentId": appointmentID}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

// CreatePaymentSession asks the backend for a Stripe checkout URL.
func (c *Client) CreatePaymentSession(ctx context.Context, token, appointmentID string) (string, error) {
	var resp paymentSessionResponse
	err := c.do(ctx, http.MethodPost, "/api/user/payment-stripe", token,
		map[string]string{"appointmentId": appointmentID}, &resp)
	if err != nil {
		return "", err
	}
	return resp.SessionURL, nil
}

// VerifyPayment reports the checkout outcome back after the Stripe redirect.
// success is the raw query value from the return URL.
func (c *Client) VerifyPayment(ctx context.Context, token, success, appointmentID string) error {
	var resp envelope
	return c.do(ctx, http.MethodPost, "/api/user/verify-stripe", token,
		map[string]string{"success": success, "appointmentId": appointmentID}, &resp)
}

func (c *Client) do(ctx context.Context, method, path, token string, body any, out apiResponse) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", path, err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("token", token)
	}
	return c.send(req, path, out)
}

func (c *Client) send(req *http.Request, path string, out apiResponse) error {
	start := time.Now()
	err := c.exchange(req, path, out)
	c.metrics.ObserveUpstream(path, outcome(err), time.Since(start))
	return err
}

func (c *Client) exchange(req *http.Request, path string, out apiResponse) error {
	// Only connectivity failures feed the breaker; a success:false answer
	// means the upstream is alive.
	var resp *http.Response
	err := c.breaker.Execute(func() error {
		r, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", path, err)
	}
	if ok, message := out.status(); !ok {
		return apiError(path, message)
	}
	return nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, circuitbreaker.ErrOpen):
		return "rejected"
	default:
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return "api_error"
		}
		return "transport_error"
	}
}
