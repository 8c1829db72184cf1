package utils

import (
	"time"
)

// BatchMute limits how many events get reported within a window. Events past
// the limit are counted so the caller can report how many were muted.
type BatchMute struct {
	window time.Duration
	limit  int

	start time.Time
	seen  int
}

func (b *BatchMute) allow(t time.Time) (ok bool, muted int) {
	if b.limit <= 0 || b.window <= 0 {
		return true, 0
	}

	if t.Sub(b.start) > b.window {
		muted = b.overflow()
		b.start = t
		b.seen = 0
	}
	b.seen++
	return b.seen <= b.limit, muted
}

func (b *BatchMute) overflow() int {
	if b.seen > b.limit {
		return b.seen - b.limit
	}
	return 0
}

// Allow records one event and reports whether it may be logged. When a new
// window opens, muted holds the count of events dropped in the previous one.
func (b *BatchMute) Allow() (ok bool, muted int) {
	return b.allow(time.Now().UTC())
}

// Flush returns the events muted in the current window and starts a new one.
func (b *BatchMute) Flush() int {
	muted := b.overflow()
	b.start = time.Now().UTC()
	b.seen = 0
	return muted
}

// NewBatchMute allows up to limit events per window. A zero limit or window
// disables muting.
func NewBatchMute(window time.Duration, limit int) *BatchMute {
	return &BatchMute{
		window: window,
		limit:  limit,
		start:  time.Now().UTC(),
	}
}
