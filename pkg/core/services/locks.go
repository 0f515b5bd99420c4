package services

import "sync"

// EventLocks serializes mutating operations per event id. Two concurrent
// signups on the same show would otherwise interleave their store write
// and card re-render and drop one of them from the display.
type EventLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewEventLocks() *EventLocks {
	return &EventLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the event's lock and returns its unlock function
func (l *EventLocks) Lock(eventID string) func() {
	l.mu.Lock()
	lock, ok := l.locks[eventID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[eventID] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
