package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrInadmissibleWindow is returned for a time window that cannot be proposed.
var ErrInadmissibleWindow = errors.New("inadmissible time window")

// IsAdmissible reports whether [start, end) may be proposed at instant now:
// the window must not be inverted or empty, and both ends must lie strictly
// in the future.
func IsAdmissible(start, end, now time.Time) bool {
	return start.Before(end) && start.After(now) && end.After(now)
}

// CheckWindow returns nil for an admissible window, otherwise an error
// wrapping ErrInadmissibleWindow that names the broken rule.
func CheckWindow(start, end, now time.Time) error {
	switch {
	case !start.Before(end):
		return fmt.Errorf("%w: start must be before end", ErrInadmissibleWindow)
	case !start.After(now):
		return fmt.Errorf("%w: start must be in the future", ErrInadmissibleWindow)
	case !end.After(now):
		return fmt.Errorf("%w: end must be in the future", ErrInadmissibleWindow)
	}
	return nil
}
