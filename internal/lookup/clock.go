package lookup

import "time"

// Clock schedules callbacks. The session uses it for the debounce and blur-grace timers.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is the part of *time.Timer the session needs.
type Timer interface {
	Stop() bool
}

type systemClock struct{}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemClock is backed by time.AfterFunc.
var SystemClock Clock = systemClock{}

// timerHandle owns one restartable timer. Each arm gets a new sequence number,
// and a fire is only honoured if claim sees the sequence that is still armed.
// Not safe for concurrent use; the session goroutine owns it.
type timerHandle struct {
	clock Clock
	timer Timer
	seq   uint64
	armed bool
}

func (h *timerHandle) arm(d time.Duration, fire func(seq uint64)) {
	h.stop()
	h.seq++
	seq := h.seq
	h.armed = true
	h.timer = h.clock.AfterFunc(d, func() { fire(seq) })
}

func (h *timerHandle) stop() {
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
	h.armed = false
}

func (h *timerHandle) claim(seq uint64) bool {
	if !h.armed || seq != h.seq {
		return false
	}
	h.armed = false
	h.timer = nil
	return true
}
