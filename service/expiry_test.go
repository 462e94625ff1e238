package service

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration_Std(t *testing.T) {
	tests := []struct {
		name    string
		in      Duration
		want    time.Duration
		wantErr bool
	}{
		{"minutes", Minutes(10), 10 * time.Minute, false},
		{"hours", Hours(2), 2 * time.Hour, false},
		{"days", Days(7), 7 * 24 * time.Hour, false},
		{"zero magnitude", Minutes(0), 0, true},
		{"zero days", Days(0), 0, true},
		{"unspecified falls back to one hour", Duration{}, time.Hour, false},
		{"negative magnitude", Hours(-1), 0, true},
		{"unknown unit", Duration{Magnitude: 3, Unit: DurationUnit(9)}, 0, true},
		{"magnitude without unit", Duration{Magnitude: 3}, 0, true},
		{"longest whole day", Days(106751), 106751 * 24 * time.Hour, false},
		{"overflowing days", Days(200000), 0, true},
		{"overflowing minutes", Minutes(math.MaxInt64/int(time.Minute) + 1), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.in.Std()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDuration)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpiresAt(t *testing.T) {
	now := time.Date(2025, 1, 31, 23, 55, 0, 0, time.UTC)

	got, err := ExpiresAt(Minutes(10), now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 5, 0, 0, time.UTC), got)

	got, err = ExpiresAt(Days(1), now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(24*time.Hour), got)

	_, err = ExpiresAt(Duration{Magnitude: 1, Unit: DurationUnit(99)}, now)
	assert.ErrorIs(t, err, ErrInvalidDuration)

	// Every accepted lifetime ends after now.
	for _, d := range []Duration{Minutes(1), Hours(1), Days(106751)} {
		got, err := ExpiresAt(d, now)
		require.NoError(t, err)
		assert.True(t, got.After(now), d.String())
	}
	_, err = ExpiresAt(Days(200000), now)
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    Duration
		wantErr bool
	}{
		{"10m", Minutes(10), false},
		{"1h", Hours(1), false},
		{"7d", Days(7), false},
		{" 30m ", Minutes(30), false},
		{"", Duration{}, false},
		{"10", Duration{}, true},
		{"10s", Duration{}, true},
		{"m", Duration{}, true},
		{"-5m", Duration{}, true},
		{"1.5h", Duration{}, true},
		{"0m", Duration{}, true},
		{"0d", Duration{}, true},
		{"200000d", Duration{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDuration(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDuration)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDuration_String(t *testing.T) {
	assert.Equal(t, "10m", Minutes(10).String())
	assert.Equal(t, "7d", Days(7).String())
	assert.Equal(t, "10 minutes", lifetimeText(Minutes(10)))
	assert.Equal(t, "1 hour", lifetimeText(Duration{}))
	assert.Equal(t, "2 days", lifetimeText(Days(2)))
}
