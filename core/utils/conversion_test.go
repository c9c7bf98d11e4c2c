package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToBool(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want bool
	}{
		{"Bool", true, true},
		{"SQLiteOne", int64(1), true},
		{"SQLiteZero", int64(0), false},
		{"SQLiteNumericTrue", float64(1), true},
		{"SQLiteNumericFalse", float64(0), false},
		{"Float32", float32(1), true},
		{"StringTrue", "TRUE", true},
		{"StringT", "t", true},
		{"Bytes", []byte("1"), true},
		{"Nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToBool(tt.in))
		})
	}
}

func TestToString(t *testing.T) {
	assert.Equal(t, "", ToString(nil))
	assert.Equal(t, "abc", ToString([]byte("abc")))
	assert.Equal(t, "12", ToString(int64(12)))
}

func TestToTime(t *testing.T) {
	want := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("SQLiteCurrentTimestamp", func(t *testing.T) {
		got, ok := ToTime("2024-01-02 03:04:05")
		assert.True(t, ok)
		assert.True(t, want.Equal(got))
	})

	t.Run("RFC3339", func(t *testing.T) {
		got, ok := ToTime("2024-01-02T04:04:05+01:00")
		assert.True(t, ok)
		assert.True(t, want.Equal(got))
	})

	t.Run("TimeValue", func(t *testing.T) {
		got, ok := ToTime(want.In(time.FixedZone("x", 3600)))
		assert.True(t, ok)
		assert.Equal(t, time.UTC, got.Location())
	})

	t.Run("EpochSeconds", func(t *testing.T) {
		got, ok := ToTime(want.Unix())
		assert.True(t, ok)
		assert.True(t, want.Equal(got))

		got, ok = ToTime(float64(want.Unix()))
		assert.True(t, ok)
		assert.True(t, want.Equal(got))
	})

	t.Run("EpochMillis", func(t *testing.T) {
		ms := want.Add(250 * time.Millisecond)
		got, ok := ToTime(ms.UnixMilli())
		assert.True(t, ok)
		assert.True(t, ms.Equal(got), got)
	})

	t.Run("Missing", func(t *testing.T) {
		_, ok := ToTime(nil)
		assert.False(t, ok)
		_, ok = ToTime("")
		assert.False(t, ok)
		_, ok = ToTime("not a date")
		assert.False(t, ok)
	})
}
