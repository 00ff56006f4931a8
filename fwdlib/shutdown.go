package fwdlib

import "sync"

// Shutdown is a one-shot broadcaster. Send notifies every receiver
// subscribed so far exactly once. Receivers subscribed after Send are not
// notified.
type Shutdown struct {
	mutex       sync.Mutex
	subscribers []chan struct{}
}

// Subscribe returns a channel which is closed on the next Send.
func (s *Shutdown) Subscribe() <-chan struct{} {
	ch := make(chan struct{})

	s.mutex.Lock()
	s.subscribers = append(s.subscribers, ch)
	s.mutex.Unlock()

	return ch
}

// Send notifies all current subscribers. It never blocks.
func (s *Shutdown) Send() {
	s.mutex.Lock()
	subscribers := s.subscribers
	s.subscribers = nil
	s.mutex.Unlock()

	for _, ch := range subscribers {
		close(ch)
	}
}

// NewShutdown makes a new broadcaster.
func NewShutdown() *Shutdown {
	return &Shutdown{}
}
