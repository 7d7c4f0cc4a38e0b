// Package store holds the process-wide cached copy of the doctor directory.
// The backend owns the data; the cache only saves a round trip per page and is
// force-refreshed after a booking so newly reserved slots show up immediately.
package store

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"github.com/prescripto/patient-portal/internal/model"
)

const doctorsKey = "doctors:list"

// Lister is the slice of the backend client the store needs.
type Lister interface {
	ListDoctors(ctx context.Context) ([]model.Doctor, error)
}

type DoctorStore struct {
	backend Lister
	cache   *cache.Cache
}

func NewDoctorStore(backend Lister, ttl time.Duration) *DoctorStore {
	return &DoctorStore{
		backend: backend,
		cache:   cache.New(ttl, 2*ttl),
	}
}

// Doctors returns the cached directory, fetching it when the cache is cold.
// On fetch failure the error propagates and nothing is cached; a later call
// simply tries again.
func (s *DoctorStore) Doctors(ctx context.Context) ([]model.Doctor, error) {
	if cached, ok := s.cache.Get(doctorsKey); ok {
		return cached.([]model.Doctor), nil
	}
	return s.Refresh(ctx)
}

// Refresh bypasses the cache and refetches the directory.
func (s *DoctorStore) Refresh(ctx context.Context) ([]model.Doctor, error) {
	doctors, err := s.backend.ListDoctors(ctx)
	if err != nil {
		log.Error().Err(err).Msg("doctor list fetch failed")
		return nil, err
	}
	s.cache.Set(doctorsKey, doctors, cache.DefaultExpiration)
	log.Debug().Int("count", len(doctors)).Msg("doctor list refreshed")
	return doctors, nil
}

// ByID finds a doctor in the cached directory.
func (s *DoctorStore) ByID(ctx context.Context, id string) (*model.Doctor, error) {
	doctors, err := s.Doctors(ctx)
	if err != nil {
		return nil, err
	}
	for i := range doctors {
		if doctors[i].ID == id {
			return &doctors[i], nil
		}
	}
	return nil, nil
}

// BySpeciality filters the directory; an empty speciality returns everyone.
func (s *DoctorStore) BySpeciality(ctx context.Context, speciality string) ([]model.Doctor, error) {
	doctors, err := s.Doctors(ctx)
	if err != nil {
		return nil, err
	}
	if speciality == "" {
		return doctors, nil
	}
	filtered := make([]model.Doctor, 0, len(doctors))
	for _, d := range doctors {
		if d.Speciality == speciality {
			filtered = append(filtered, d)
		}
	}
	return filtered, nil
}

// Related returns up to limit other doctors sharing a speciality, for the
// strip under the booking page.
func (s *DoctorStore) Related(ctx context.Context, speciality, excludeID string, limit int) ([]model.Doctor, error) {
	doctors, err := s.BySpeciality(ctx, speciality)
	if err != nil {
		return nil, err
	}
	related := make([]model.Doctor, 0, limit)
	for _, d := range doctors {
		if d.ID == excludeID {
			continue
		}
		related = append(related, d)
		if len(related) == limit {
			break
		}
	}
	return related, nil
}

// Top returns up to limit available doctors for the home page strip.
func (s *DoctorStore) Top(ctx context.Context, limit int) ([]model.Doctor, error) {
	doctors, err := s.Doctors(ctx)
	if err != nil {
		return nil, err
	}
	top := make([]model.Doctor, 0, limit)
	for _, d := range doctors {
		if !d.Available {
			continue
		}
		top = append(top, d)
		if len(top) == limit {
			break
		}
	}
	return top, nil
}
