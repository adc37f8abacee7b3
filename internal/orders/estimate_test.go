package orders

import (
	"testing"
	"time"
)

func TestEstimatedReadyAt(t *testing.T) {
	now := time.Date(2026, 3, 1, 18, 30, 0, 0, time.UTC)

	cases := []struct {
		quantity    int
		wantMinutes int
	}{
		{1, 15 + 2 + 15},   // below cap
		{2, 15 + 4 + 15},   // below cap
		{7, 15 + 14 + 15},  // just below cap
		{8, 30 + 15},       // hits cap exactly (15 + 16 -> 30)
		{20, 30 + 15},      // well past cap
	}

	for _, tc := range cases {
		got := estimatedReadyAt(now, tc.quantity)
		want := now.Add(time.Duration(tc.wantMinutes) * time.Minute)
		if !got.Equal(want) {
			t.Errorf("quantity %d: expected %v, got %v", tc.quantity, want, got)
		}
	}
}
