package lookup

import (
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// GateTimer names one of the two gate timers.
type GateTimer int

const (
	DebounceTimer GateTimer = iota
	BlurTimer
)

func (t GateTimer) String() string {
	if t == BlurTimer {
		return "blur"
	}
	return "debounce"
}

// QueryGate turns raw keystrokes into committed queries.
// Input below the minimum length is rejected at once; longer input is committed
// after a quiet period. It also runs the blur grace timer.
//
// Timer expiries are reported through fire and must be claimed back on the
// owning goroutine, so a superseded timer can never commit anything.
type QueryGate struct {
	minLength int
	debounce  time.Duration
	grace     time.Duration
	fire      func(GateTimer, uint64)

	text           string
	debounceHandle timerHandle
	blurHandle     timerHandle
}

// NewQueryGate builds a gate. fire is called from the clock's goroutine.
func NewQueryGate(clock Clock, minLength int, debounce, grace time.Duration, fire func(GateTimer, uint64)) *QueryGate {
	return &QueryGate{
		minLength:      minLength,
		debounce:       debounce,
		grace:          grace,
		fire:           fire,
		debounceHandle: timerHandle{clock: clock},
		blurHandle:     timerHandle{clock: clock},
	}
}

// Normalize trims and NFC-normalises raw input.
func Normalize(raw string) string {
	return norm.NFC.String(strings.TrimSpace(raw))
}

// Submit records new input. It returns false when the text is too short, in
// which case the pending debounce is dropped and the caller clears suggestions.
func (g *QueryGate) Submit(raw string) bool {
	g.text = Normalize(raw)
	if !g.accepts(g.text) {
		g.debounceHandle.stop()
		return false
	}
	g.debounceHandle.arm(g.debounce, func(seq uint64) { g.fire(DebounceTimer, seq) })
	return true
}

// Focus returns the text to commit immediately, if the current input qualifies.
// A non-blank raw value replaces the remembered input first.
func (g *QueryGate) Focus(raw string) (string, bool) {
	if text := Normalize(raw); text != "" {
		g.text = text
	}
	if !g.accepts(g.text) {
		return "", false
	}
	g.debounceHandle.stop()
	return g.text, true
}

// Blur arms the grace timer.
func (g *QueryGate) Blur() {
	g.blurHandle.arm(g.grace, func(seq uint64) { g.fire(BlurTimer, seq) })
}

// CancelBlur drops a pending blur grace.
func (g *QueryGate) CancelBlur() {
	g.blurHandle.stop()
}

// CancelDebounce drops a pending commit.
func (g *QueryGate) CancelDebounce() {
	g.debounceHandle.stop()
}

// Echo replaces the remembered input without scheduling anything.
func (g *QueryGate) Echo(text string) {
	g.text = Normalize(text)
}

// Claim reports whether a fired timer is still current. For the debounce
// timer it also returns the text to commit.
func (g *QueryGate) Claim(which GateTimer, seq uint64) (string, bool) {
	switch which {
	case DebounceTimer:
		if !g.debounceHandle.claim(seq) {
			return "", false
		}
		return g.text, true
	case BlurTimer:
		return "", g.blurHandle.claim(seq)
	default:
		return "", false
	}
}

// Stop cancels both timers.
func (g *QueryGate) Stop() {
	g.debounceHandle.stop()
	g.blurHandle.stop()
}

func (g *QueryGate) accepts(text string) bool {
	return utf8.RuneCountInString(text) >= g.minLength
}
