package views

import "time"

// BoardUpdated is posted from the scheduler goroutine after every refresh
// cycle, successful or not, to trigger a redraw.
type BoardUpdated struct {
	Duration  time.Duration
	Err       error
	Committed bool
}
