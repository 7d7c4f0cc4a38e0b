package slots

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, min int) time.Time {
	return time.Date(2026, time.March, 9, hour, min, 0, 0, time.UTC)
}

func TestDateKey(t *testing.T) {
	assert.Equal(t, "9_3_2026", DateKey(at(12, 0)))
	assert.Equal(t, "1_1_2030", DateKey(time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC)))
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "10:00 AM", Label(at(10, 0)))
	assert.Equal(t, "2:30 PM", Label(at(14, 30)))
	assert.Equal(t, "12:00 PM", Label(at(12, 0)))
}

func TestGenerateFullDayBeforeOpening(t *testing.T) {
	days := Generate(nil, at(9, 0))

	require.Len(t, days, HorizonDays)
	today := days[0]
	require.NotEmpty(t, today)
	assert.Equal(t, "10:00 AM", today[0].Label)
	assert.Equal(t, "8:30 PM", today[len(today)-1].Label)
	assert.Len(t, today, 22)
}

func TestGenerateDayZeroRounding(t *testing.T) {
	cases := []struct {
		hour, min int
		first     string
	}{
		{14, 10, "3:00 PM"},
		{14, 45, "3:30 PM"},
		{14, 30, "3:00 PM"}, // boundary minute does not round forward
		{9, 59, "10:30 AM"},
	}
	for _, tc := range cases {
		t.Run(tc.first, func(t *testing.T) {
			days := Generate(nil, at(tc.hour, tc.min))
			require.NotEmpty(t, days[0])
			assert.Equal(t, tc.first, days[0][0].Label)
		})
	}
}

func TestGenerateAfterClosingYieldsEmptyToday(t *testing.T) {
	days := Generate(nil, at(21, 15))

	require.Len(t, days, HorizonDays)
	assert.Empty(t, days[0])
	require.NotEmpty(t, days[1])
	assert.Equal(t, "10:00 AM", days[1][0].Label)
}

func TestGenerateLateNightRollover(t *testing.T) {
	days := Generate(nil, at(23, 40))
	assert.Empty(t, days[0])
}

func TestGenerateExcludesReserved(t *testing.T) {
	now := at(9, 0)
	booked := map[string][]string{
		DateKey(now): {"11:00 AM"},
	}

	days := Generate(booked, now)

	labels := make([]string, 0, len(days[0]))
	for _, s := range days[0] {
		labels = append(labels, s.Label)
	}
	assert.NotContains(t, labels, "11:00 AM")
	assert.Contains(t, labels, "10:30 AM")
	assert.Contains(t, labels, "11:30 AM")
	assert.Len(t, days[0], 21)
}

func TestGenerateNeverEmitsReservedAnyDay(t *testing.T) {
	now := at(13, 20)
	booked := map[string][]string{}
	for offset := 0; offset < HorizonDays; offset++ {
		d := now.AddDate(0, 0, offset)
		booked[DateKey(d)] = []string{"10:00 AM", "4:30 PM", "8:30 PM"}
	}

	for _, day := range Generate(booked, now) {
		for _, s := range day {
			assert.NotContains(t, booked[DateKey(s.Time)], s.Label)
		}
	}
}

func TestGenerateOrderingAndBounds(t *testing.T) {
	days := Generate(nil, at(16, 42))

	require.Len(t, days, HorizonDays)
	for i, day := range days {
		for j, s := range day {
			if j > 0 {
				assert.True(t, day[j-1].Time.Before(s.Time),
					fmt.Sprintf("day %d slot %d not increasing", i, j))
			}
			assert.GreaterOrEqual(t, s.Time.Hour(), OpeningHour)
			assert.Less(t, s.Time.Hour(), ClosingHour)
		}
	}
}

func TestGenerateDayZeroStartsAfterNow(t *testing.T) {
	for _, min := range []int{0, 15, 30, 31, 59} {
		now := at(12, min)
		days := Generate(nil, now)
		require.NotEmpty(t, days[0])
		assert.True(t, days[0][0].Time.After(now))
	}
}

func TestGenerateIsPure(t *testing.T) {
	now := at(11, 11)
	booked := map[string][]string{DateKey(now): {"12:00 PM"}}

	first := Generate(booked, now)
	second := Generate(booked, now)

	assert.Equal(t, first, second)
}
