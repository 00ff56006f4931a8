// Package events has a default implementation of [fwdlib.EventStream]
// which routes events to observers.
//
// Each observer works with events of its own subset of streams: events of
// a single stream always go to the same observer instance, in order. So an
// observer can keep a per-stream state without locks.
package events

import "github.com/portseal/portseal/fwdlib"

// Observer is an instance that listens for the incoming events.
//
// Observer instance is not shared between goroutines of the event stream:
// each goroutine owns its own instance produced by ObserverFactory.
type Observer interface {
	EventStart(fwdlib.EventStart)
	EventConnectedToRemote(fwdlib.EventConnectedToRemote)
	EventTraffic(fwdlib.EventTraffic)
	EventFinish(fwdlib.EventFinish)
	EventDialFailed(fwdlib.EventDialFailed)
	EventFrameError(fwdlib.EventFrameError)
	EventConcurrencyLimited(fwdlib.EventConcurrencyLimited)
	EventIPRejected(fwdlib.EventIPRejected)
	EventRateLimited(fwdlib.EventRateLimited)
	EventListenerStarted(fwdlib.EventListenerStarted)
	EventListenerStopped(fwdlib.EventListenerStopped)

	Shutdown()
}

// ObserverFactory creates a new instance of the observer.
type ObserverFactory func() Observer
