package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prescripto/patient-portal/internal/model"
)

type fakeLister struct {
	doctors []model.Doctor
	err     error
	calls   int
}

func (f *fakeLister) ListDoctors(ctx context.Context) ([]model.Doctor, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.doctors, nil
}

func sampleDoctors() []model.Doctor {
	return []model.Doctor{
		{ID: "d1", Name: "Dr. Richard James", Speciality: "General physician", Available: true},
		{ID: "d2", Name: "Dr. Emily Larson", Speciality: "Gynecologist", Available: true},
		{ID: "d3", Name: "Dr. Sarah Patel", Speciality: "General physician", Available: false},
	}
}

func TestDoctorsFetchesOnceThenCaches(t *testing.T) {
	lister := &fakeLister{doctors: sampleDoctors()}
	s := NewDoctorStore(lister, time.Minute)

	first, err := s.Doctors(context.Background())
	require.NoError(t, err)
	second, err := s.Doctors(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, lister.calls)
}

func TestRefreshBypassesCache(t *testing.T) {
	lister := &fakeLister{doctors: sampleDoctors()}
	s := NewDoctorStore(lister, time.Minute)

	_, err := s.Doctors(context.Background())
	require.NoError(t, err)
	_, err = s.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, lister.calls)
}

func TestFetchFailurePropagatesAndCachesNothing(t *testing.T) {
	lister := &fakeLister{err: errors.New("boom")}
	s := NewDoctorStore(lister, time.Minute)

	_, err := s.Doctors(context.Background())
	require.Error(t, err)

	// Next call retries instead of serving a cached failure.
	lister.err = nil
	lister.doctors = sampleDoctors()
	doctors, err := s.Doctors(context.Background())
	require.NoError(t, err)
	assert.Len(t, doctors, 3)
}

func TestByID(t *testing.T) {
	s := NewDoctorStore(&fakeLister{doctors: sampleDoctors()}, time.Minute)

	doc, err := s.ByID(context.Background(), "d2")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "Dr. Emily Larson", doc.Name)

	missing, err := s.ByID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestBySpeciality(t *testing.T) {
	s := NewDoctorStore(&fakeLister{doctors: sampleDoctors()}, time.Minute)

	general, err := s.BySpeciality(context.Background(), "General physician")
	require.NoError(t, err)
	assert.Len(t, general, 2)

	all, err := s.BySpeciality(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRelatedExcludesCurrentDoctor(t *testing.T) {
	s := NewDoctorStore(&fakeLister{doctors: sampleDoctors()}, time.Minute)

	related, err := s.Related(context.Background(), "General physician", "d1", 5)
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, "d3", related[0].ID)
}

func TestTopSkipsUnavailable(t *testing.T) {
	s := NewDoctorStore(&fakeLister{doctors: sampleDoctors()}, time.Minute)

	top, err := s.Top(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	for _, d := range top {
		assert.True(t, d.Available)
	}
}
