// Package reproducible pins the timestamps that end up inside generated
// archives, so that two builds of identical input produce byte-identical
// output.
package reproducible

import (
	"os"
	"strconv"
	"sync"
	"time"
)

var (
	nowOnce sync.Once
	now     time.Time
)

// Now returns the timestamp to stamp on generated archive members.  It
// honors the SOURCE_DATE_EPOCH convention, and is latched on first use so
// that a single build never straddles a clock tick.
func Now() time.Time {
	nowOnce.Do(func() {
		secs, err := strconv.ParseInt(os.Getenv("SOURCE_DATE_EPOCH"), 10, 64)
		if err == nil {
			now = time.Unix(secs, 0)
		} else {
			now = time.Now()
		}
	})
	return now
}

// Clamp limits t to be no later than Now().  Files freshly written by an
// earlier pipeline step would otherwise leak wall-clock mtimes into the
// artifact.
func Clamp(t time.Time) time.Time {
	if n := Now(); t.After(n) {
		return n
	}
	return t
}
