package testutil

import (
	"time"

	"github.com/roach88/fractalreg/internal/clock"
)

// Epoch is the fixed "now" tests start from.
var Epoch = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// At returns Epoch shifted by d, in Unix nanoseconds.
func At(d time.Duration) uint64 {
	return clock.FromTime(Epoch.Add(d))
}
