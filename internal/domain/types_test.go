package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-11-14")

	require.NoError(t, err)
	assert.Equal(t, "2025-11-14", d.String())
	assert.Equal(t, time.Friday, d.Weekday())
	assert.Equal(t, 2025, d.Year())
	assert.Equal(t, time.November, d.Month())
}

func TestParseDateRejectsBadInput(t *testing.T) {
	for _, raw := range []string{"", "14-11-2025", "2025/11/14", "2025-13-01", "not a date"} {
		_, err := ParseDate(raw)

		require.Error(t, err, "input %q should be rejected", raw)
		assert.ErrorIs(t, err, ErrInvalidDate)
	}
}

func TestDateComparisons(t *testing.T) {
	earlier := NewDate(2025, time.November, 13)
	later := NewDate(2025, time.November, 14)

	assert.True(t, earlier.Before(later))
	assert.False(t, later.Before(earlier))
	assert.True(t, later.Equal(NewDate(2025, time.November, 14)))
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2025, time.November, 14, 16, 45, 0, 0, time.UTC)))
	assert.Equal(t, "2025-11-14", d.String())

	require.NoError(t, d.Scan("2025-01-02"))
	assert.Equal(t, "2025-01-02", d.String())

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan(42))
}

func TestParseTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("14:30")

	require.NoError(t, err)
	assert.Equal(t, 14, tod.Hour())
	assert.Equal(t, 30, tod.Minute())
	assert.Equal(t, "14:30", tod.String())
}

func TestParseTimeOfDayRejectsBadInput(t *testing.T) {
	for _, raw := range []string{"", "2:3", "25:00", "14:60", "14-30"} {
		_, err := ParseTimeOfDay(raw)

		require.Error(t, err, "input %q should be rejected", raw)
		assert.ErrorIs(t, err, ErrInvalidTime)
	}
}

func TestTimeOfDayMinutesApart(t *testing.T) {
	ten := TimeOfDay(10 * 60)
	eleven := TimeOfDay(11 * 60)

	assert.Equal(t, 60, ten.MinutesApart(eleven))
	assert.Equal(t, 60, eleven.MinutesApart(ten))
	assert.Equal(t, 0, ten.MinutesApart(ten))
}

func TestTimeOfDayScanTruncatesSeconds(t *testing.T) {
	var tod TimeOfDay
	require.NoError(t, tod.Scan("10:30:00"))
	assert.Equal(t, "10:30", tod.String())

	require.NoError(t, tod.Scan([]byte("09:15:27.5")))
	assert.Equal(t, "09:15", tod.String())

	require.NoError(t, tod.Scan(time.Date(2000, 1, 1, 17, 5, 0, 0, time.UTC)))
	assert.Equal(t, "17:05", tod.String())
}

func TestTimeOfDayJSONRoundTrip(t *testing.T) {
	raw, err := json.Marshal(TimeOfDay(9*60 + 5))
	require.NoError(t, err)
	assert.Equal(t, `"09:05"`, string(raw))

	var tod TimeOfDay
	require.NoError(t, json.Unmarshal([]byte(`"16:45"`), &tod))
	assert.Equal(t, TimeOfDay(16*60+45), tod)

	assert.Error(t, json.Unmarshal([]byte(`"wat"`), &tod))
}

func TestDateJSONRoundTrip(t *testing.T) {
	raw, err := json.Marshal(NewDate(2025, time.November, 14))
	require.NoError(t, err)
	assert.Equal(t, `"2025-11-14"`, string(raw))

	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2026-02-28"`), &d))
	assert.Equal(t, "2026-02-28", d.String())
}
