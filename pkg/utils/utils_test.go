package utils

import (
	"math"
	"testing"
	"time"
)

func TestTruncate(t *testing.T) {
	cases := []struct {
		name   string
		in     string
		maxLen int
		want   string
	}{
		{"shorter than limit", "hello", 10, "hello"},
		{"exact limit", "hello", 5, "hello"},
		{"over limit", "hello world", 5, "hello..."},
		{"zero limit returns all", "hello", 0, "hello"},
		{"negative limit returns all", "hello", -1, "hello"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Truncate(tc.in, tc.maxLen); got != tc.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tc.in, tc.maxLen, got, tc.want)
			}
		})
	}
}

func TestTruncate_RuneBoundary(t *testing.T) {
	// "héllo" is 6 bytes; cutting at 2 would split the é sequence.
	got := Truncate("héllo", 2)
	if got != "h..." {
		t.Errorf("got %q", got)
	}
}

func TestNormalizeL2(t *testing.T) {
	v := []float32{3, 4}
	NormalizeL2(v)
	if math.Abs(float64(v[0])-0.6) > 1e-6 || math.Abs(float64(v[1])-0.8) > 1e-6 {
		t.Errorf("normalized to %v", v)
	}

	zero := []float32{0, 0}
	NormalizeL2(zero)
	if zero[0] != 0 || zero[1] != 0 {
		t.Errorf("zero vector changed: %v", zero)
	}
}

func TestHalfLifeDecay(t *testing.T) {
	hl := 72 * time.Hour
	cases := []struct {
		age  time.Duration
		want float64
	}{
		{0, 1.0},
		{72 * time.Hour, 0.5},
		{144 * time.Hour, 0.25},
		{-time.Hour, 1.0},
	}
	for _, tc := range cases {
		if got := HalfLifeDecay(tc.age, hl); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("HalfLifeDecay(%v) = %f, want %f", tc.age, got, tc.want)
		}
	}
	if got := HalfLifeDecay(time.Hour, 0); got != 0 {
		t.Errorf("zero half-life should score 0, got %f", got)
	}
}
