package lookup

import "gsr_locator/internal/domain"

// message is anything the session goroutine consumes from its inbox.
type message interface {
	sessionMessage()
}

type eventMsg struct {
	event Event
	reply chan eventReply
}

type eventReply struct {
	state UiState
	err   error
}

type timerMsg struct {
	timer GateTimer
	seq   uint64
}

type searchMsg struct {
	query  string
	result Result[[]domain.Place]
}

type officeMsg struct {
	place  domain.Place
	result Result[domain.OfficeInfo]
}

type stateMsg struct {
	reply chan UiState
}

type subscribeMsg struct {
	observer Observer
	reply    chan uint64
}

type unsubscribeMsg struct {
	id uint64
}

func (eventMsg) sessionMessage()       {}
func (timerMsg) sessionMessage()       {}
func (searchMsg) sessionMessage()      {}
func (officeMsg) sessionMessage()      {}
func (stateMsg) sessionMessage()       {}
func (subscribeMsg) sessionMessage()   {}
func (unsubscribeMsg) sessionMessage() {}
