package lookup

import "context"

// Token identifies one operation started on a RequestSlot.
type Token uint64

// Result is the outcome of one slot operation.
type Result[R any] struct {
	Token Token
	Value R
	Err   error
}

// RequestSlot holds at most one outstanding operation. Starting a new one
// cancels the previous context, and only the latest token can settle.
// Not safe for concurrent use; the session goroutine owns it.
type RequestSlot[R any] struct {
	generation uint64
	cancel     context.CancelFunc
	inFlight   bool
}

// Start runs produce on its own goroutine and hands the outcome to deliver.
// deliver is called from that goroutine and must not touch session state.
func (s *RequestSlot[R]) Start(parent context.Context, produce func(context.Context) (R, error), deliver func(Result[R])) Token {
	s.Cancel()

	s.generation++
	token := Token(s.generation)
	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	s.inFlight = true

	go func() {
		value, err := produce(ctx)
		deliver(Result[R]{Token: token, Value: value, Err: err})
	}()

	return token
}

// Settle accepts res only if it belongs to the current, still outstanding operation.
// Stale outcomes, successful or not, return false and must be dropped.
func (s *RequestSlot[R]) Settle(res Result[R]) bool {
	if !s.inFlight || res.Token != Token(s.generation) {
		return false
	}
	s.inFlight = false
	s.release()
	return true
}

// Cancel aborts the outstanding operation. Its late outcome will not settle.
func (s *RequestSlot[R]) Cancel() {
	s.inFlight = false
	s.release()
}

// Pending reports whether an operation is outstanding.
func (s *RequestSlot[R]) Pending() bool {
	return s.inFlight
}

func (s *RequestSlot[R]) release() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
