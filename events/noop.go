package events

import (
	"context"

	"github.com/portseal/portseal/fwdlib"
)

type noop struct{}

func (n noop) Send(ctx context.Context, evt fwdlib.Event) {}

// NewNoopStream creates a stream which drops every event.
func NewNoopStream() fwdlib.EventStream {
	return noop{}
}

type noopObserver struct{}

func (n noopObserver) EventStart(_ fwdlib.EventStart)                           {}
func (n noopObserver) EventConnectedToRemote(_ fwdlib.EventConnectedToRemote)   {}
func (n noopObserver) EventTraffic(_ fwdlib.EventTraffic)                       {}
func (n noopObserver) EventFinish(_ fwdlib.EventFinish)                         {}
func (n noopObserver) EventDialFailed(_ fwdlib.EventDialFailed)                 {}
func (n noopObserver) EventFrameError(_ fwdlib.EventFrameError)                 {}
func (n noopObserver) EventConcurrencyLimited(_ fwdlib.EventConcurrencyLimited) {}
func (n noopObserver) EventIPRejected(_ fwdlib.EventIPRejected)                 {}
func (n noopObserver) EventRateLimited(_ fwdlib.EventRateLimited)               {}
func (n noopObserver) EventListenerStarted(_ fwdlib.EventListenerStarted)       {}
func (n noopObserver) EventListenerStopped(_ fwdlib.EventListenerStopped)       {}
func (n noopObserver) Shutdown()                                                {}

// NewNoopObserver creates an observer which ignores all events.
func NewNoopObserver() Observer {
	return noopObserver{}
}
