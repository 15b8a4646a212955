// Package lookup runs one GSR lookup session: debounced place search, suggestion
// pick and office resolve, exposed as a stream of UiState values.
//
// Each Controller owns a single goroutine. User events, timer expiries and
// resolver outcomes all arrive as messages on its inbox, so session state is
// never touched concurrently and needs no locks.
package lookup

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"gsr_locator/internal/domain"
	"gsr_locator/platform/logger"
	"gsr_locator/platform/metrics"
)

var (
	// ErrSessionClosed is returned by every call after Close.
	ErrSessionClosed = errors.New("lookup session closed")
	// ErrUnknownPlace is returned when a pick names no suggestion of the last search.
	ErrUnknownPlace = errors.New("unknown place")
	// ErrUnknownEvent is returned for an unsupported event type.
	ErrUnknownEvent = errors.New("unknown event type")
)

// EventType names a user interface event.
type EventType string

const (
	EventInput        EventType = "input"
	EventFocus        EventType = "focus"
	EventBlur         EventType = "blur"
	EventOutsideClick EventType = "outside_click"
	EventPick         EventType = "pick"
)

// Event is one input from the host UI. Text is used by input and focus,
// PlaceID by pick.
type Event struct {
	Type    EventType `json:"type"`
	Text    string    `json:"text,omitempty"`
	PlaceID string    `json:"placeId,omitempty"`
}

// PlaceResolver turns a committed query into ranked suggestions.
type PlaceResolver interface {
	Resolve(ctx context.Context, query string) ([]domain.Place, error)
}

// OfficeResolver finds the office covering a picked place.
type OfficeResolver interface {
	Resolve(ctx context.Context, place domain.Place) (domain.OfficeInfo, error)
}

// Observer receives every new UiState on the session goroutine. It must not block.
type Observer func(UiState)

// Options tune a Controller. Zero values fall back to the defaults below.
type Options struct {
	MinLength    int
	Debounce     time.Duration
	BlurGrace    time.Duration
	SupportPhone string
	Clock        Clock
	Logger       *logger.Logger
	Metrics      *metrics.Metrics
}

const (
	defaultMinLength = 3
	defaultDebounce  = 300 * time.Millisecond
	defaultBlurGrace = 200 * time.Millisecond
	inboxSize        = 32
)

func (o Options) withDefaults() Options {
	if o.MinLength <= 0 {
		o.MinLength = defaultMinLength
	}
	if o.Debounce <= 0 {
		o.Debounce = defaultDebounce
	}
	if o.BlurGrace <= 0 {
		o.BlurGrace = defaultBlurGrace
	}
	if o.Clock == nil {
		o.Clock = SystemClock
	}
	if o.Logger == nil {
		o.Logger = logger.Discard()
	}
	return o
}

// Controller is the state machine of one lookup session.
type Controller struct {
	places  PlaceResolver
	offices OfficeResolver
	opts    Options
	log     *logger.Logger

	inbox     chan message
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
	snapshot  atomic.Pointer[UiState]

	// Owned by run.
	ctx          context.Context
	cancel       context.CancelFunc
	state        UiState
	gate         *QueryGate
	search       RequestSlot[[]domain.Place]
	office       RequestSlot[domain.OfficeInfo]
	picks        []domain.Place
	observers    map[uint64]Observer
	nextObserver uint64
}

// NewController starts a session in the idle state.
func NewController(places PlaceResolver, offices OfficeResolver, opts Options) *Controller {
	opts = opts.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())

	c := &Controller{
		places:    places,
		offices:   offices,
		opts:      opts,
		log:       opts.Logger,
		inbox:     make(chan message, inboxSize),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
		ctx:       ctx,
		cancel:    cancel,
		state:     idleState(),
		observers: make(map[uint64]Observer),
	}
	c.gate = NewQueryGate(opts.Clock, opts.MinLength, opts.Debounce, opts.BlurGrace, func(which GateTimer, seq uint64) {
		c.post(timerMsg{timer: which, seq: seq})
	})

	initial := c.state
	c.snapshot.Store(&initial)

	go c.run()
	return c
}

// Dispatch feeds one event to the session and returns the state right after it.
// Asynchronous outcomes it triggers show up later through State and observers.
func (c *Controller) Dispatch(ctx context.Context, event Event) (UiState, error) {
	if c.closed() {
		return c.last(), ErrSessionClosed
	}

	reply := make(chan eventReply, 1)
	select {
	case c.inbox <- eventMsg{event: event, reply: reply}:
	case <-c.done:
		return c.last(), ErrSessionClosed
	case <-ctx.Done():
		return c.last(), ctx.Err()
	}

	select {
	case r := <-reply:
		return r.state, r.err
	case <-c.stopped:
		return c.last(), ErrSessionClosed
	case <-ctx.Done():
		return c.last(), ctx.Err()
	}
}

// State returns the current UiState. After Close it returns the final state.
func (c *Controller) State() UiState {
	reply := make(chan UiState, 1)
	select {
	case c.inbox <- stateMsg{reply: reply}:
	case <-c.done:
		return c.last()
	}

	select {
	case s := <-reply:
		return s
	case <-c.stopped:
		return c.last()
	}
}

// Subscribe registers obs and calls it at once with the current state.
// The returned func removes the observer.
func (c *Controller) Subscribe(obs Observer) (func(), error) {
	reply := make(chan uint64, 1)
	select {
	case c.inbox <- subscribeMsg{observer: obs, reply: reply}:
	case <-c.done:
		return nil, ErrSessionClosed
	}

	var id uint64
	select {
	case id = <-reply:
	case <-c.stopped:
		return nil, ErrSessionClosed
	}

	return func() { c.post(unsubscribeMsg{id: id}) }, nil
}

// Close tears the session down: both requests are cancelled, both timers
// stopped, and the goroutine exits. It is safe to call more than once.
func (c *Controller) Close() {
	c.closeOnce.Do(func() { close(c.done) })
	<-c.stopped
}

// Done is closed once the session goroutine has exited.
func (c *Controller) Done() <-chan struct{} {
	return c.stopped
}

func (c *Controller) closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *Controller) last() UiState {
	return *c.snapshot.Load()
}

// post delivers a message from a timer or resolver goroutine. Once the
// session is closing the message is dropped.
func (c *Controller) post(msg message) {
	select {
	case c.inbox <- msg:
	case <-c.done:
	}
}

func (c *Controller) run() {
	defer close(c.stopped)

	for {
		select {
		case <-c.done:
			c.teardown()
			return
		case msg := <-c.inbox:
			if c.closed() {
				c.teardown()
				return
			}
			c.handle(msg)
		}
	}
}

func (c *Controller) teardown() {
	c.gate.Stop()
	c.search.Cancel()
	c.office.Cancel()
	c.cancel()
	c.observers = nil
	c.log.Debug("lookup session stopped", "state", c.state.Label(), "version", c.state.Version)
}

func (c *Controller) handle(msg message) {
	switch m := msg.(type) {
	case eventMsg:
		err := c.handleEvent(m.event)
		m.reply <- eventReply{state: c.state, err: err}
	case timerMsg:
		c.handleTimer(m)
	case searchMsg:
		c.handleSearch(m)
	case officeMsg:
		c.handleOffice(m)
	case stateMsg:
		m.reply <- c.state
	case subscribeMsg:
		c.nextObserver++
		c.observers[c.nextObserver] = m.observer
		m.observer(c.state)
		m.reply <- c.nextObserver
	case unsubscribeMsg:
		delete(c.observers, m.id)
	}
}

func (c *Controller) handleEvent(event Event) error {
	switch event.Type {
	case EventInput:
		c.onInput(event.Text)
	case EventFocus:
		c.onFocus(event.Text)
	case EventBlur:
		c.gate.Blur()
	case EventOutsideClick:
		c.gate.CancelBlur()
		c.closeDropdown()
	case EventPick:
		return c.onPick(event.PlaceID)
	default:
		return ErrUnknownEvent
	}
	return nil
}

// onInput handles a keystroke. Short input clears the dropdown at once; longer
// input clears any office result at once and waits for the debounce.
func (c *Controller) onInput(raw string) {
	c.gate.CancelBlur()

	next := c.state
	if !c.gate.Submit(raw) {
		c.search.Cancel()
		c.picks = nil
		if next.ShowsDropdown() || next.Loading(domain.StagePlaces) {
			next = idleState()
		}
	} else if next.ShowsResult() || next.Loading(domain.StageOffice) {
		c.office.Cancel()
		next = idleState()
	}

	next.Query = raw
	c.transition(next)
}

// onFocus reopens suggestions without waiting for the debounce, unless an
// office card is shown or being fetched.
func (c *Controller) onFocus(raw string) {
	c.gate.CancelBlur()

	if c.state.Kind == KindOfficeFound || c.state.Kind == KindOfficeNotFound || c.state.Loading(domain.StageOffice) {
		return
	}

	text, ok := c.gate.Focus(raw)
	if !ok {
		return
	}

	query := c.state.Query
	if strings.TrimSpace(raw) != "" {
		query = raw
	}
	c.startSearch(text, query)
}

func (c *Controller) onPick(placeID string) error {
	place, ok := c.findPick(placeID)
	if !ok {
		return ErrUnknownPlace
	}

	c.gate.CancelBlur()
	c.gate.CancelDebounce()
	c.search.Cancel()
	c.gate.Echo(place.Label)

	c.office.Start(c.ctx, func(ctx context.Context) (domain.OfficeInfo, error) {
		return c.offices.Resolve(ctx, place)
	}, func(res Result[domain.OfficeInfo]) {
		c.post(officeMsg{place: place, result: res})
	})

	next := loadingState(domain.StageOffice)
	next.Query = place.Label
	c.transition(next)
	return nil
}

func (c *Controller) handleTimer(m timerMsg) {
	text, ok := c.gate.Claim(m.timer, m.seq)
	if !ok {
		return
	}

	switch m.timer {
	case DebounceTimer:
		c.startSearch(text, c.state.Query)
	case BlurTimer:
		c.closeDropdown()
	}
}

func (c *Controller) startSearch(text, query string) {
	c.office.Cancel()
	c.picks = nil

	c.search.Start(c.ctx, func(ctx context.Context) ([]domain.Place, error) {
		return c.places.Resolve(ctx, text)
	}, func(res Result[[]domain.Place]) {
		c.post(searchMsg{query: text, result: res})
	})

	next := loadingState(domain.StagePlaces)
	next.Query = query
	c.transition(next)
}

// closeDropdown closes suggestions and drops any search that would reopen them.
// Office cards and errors stay.
func (c *Controller) closeDropdown() {
	c.gate.CancelDebounce()
	if !c.state.ShowsDropdown() && !c.state.Loading(domain.StagePlaces) {
		return
	}

	c.search.Cancel()
	next := idleState()
	next.Query = c.state.Query
	c.transition(next)
}

func (c *Controller) handleSearch(m searchMsg) {
	if !c.search.Settle(m.result) {
		c.opts.Metrics.IncrementStale(string(domain.StagePlaces))
		c.log.Debug("dropped stale search outcome", "query", m.query)
		return
	}
	if c.ctx.Err() != nil {
		return
	}

	var next UiState
	switch places := m.result.Value; {
	case m.result.Err != nil:
		c.log.Warn("place search failed", "query", m.query, "error", m.result.Err)
		next = errorState(domain.TransportMessage(c.opts.SupportPhone))
	case len(places) == 0:
		next = noResultsState()
	default:
		c.picks = places
		next = suggestionsState(places)
	}

	next.Query = c.state.Query
	c.transition(next)
}

func (c *Controller) handleOffice(m officeMsg) {
	if !c.office.Settle(m.result) {
		c.opts.Metrics.IncrementStale(string(domain.StageOffice))
		c.log.Debug("dropped stale office outcome", "place", m.place.ID)
		return
	}
	if c.ctx.Err() != nil {
		return
	}

	var next UiState
	err := m.result.Err
	switch {
	case err == nil:
		next = officeFoundState(m.result.Value)
	case errors.Is(err, domain.ErrOfficeNotFound):
		coordinates := m.place.Coordinates()
		var notFound *domain.OfficeNotFoundError
		if errors.As(err, &notFound) && notFound.Coordinates != "" {
			coordinates = notFound.Coordinates
		}
		next = officeNotFoundState(coordinates)
	default:
		c.log.Warn("office lookup failed", "place", m.place.ID, "error", err)
		next = errorState(domain.TransportMessage(c.opts.SupportPhone))
	}

	next.Query = c.state.Query
	c.transition(next)
}

func (c *Controller) findPick(placeID string) (domain.Place, bool) {
	for _, place := range c.picks {
		if place.ID == placeID {
			return place, true
		}
	}
	return domain.Place{}, false
}

func (c *Controller) transition(next UiState) {
	prev := c.state
	if next.same(prev) {
		return
	}

	next.Version = prev.Version + 1
	c.state = next
	snapshot := next
	c.snapshot.Store(&snapshot)

	if prev.Label() != next.Label() {
		c.opts.Metrics.IncrementTransition(string(next.Kind))
		c.log.StateTransition(prev.Label(), next.Label(), next.Version)
	}

	for _, obs := range c.observers {
		obs(next)
	}
}
