package events

import (
	"context"
	"math/rand"
	"runtime"
	"sync/atomic"

	"github.com/OneOfOne/xxhash"
	"github.com/portseal/portseal/fwdlib"
)

const eventChannelSize = 64

// EventStream is a default implementation of the [fwdlib.EventStream]
// interface.
//
// EventStream runs a goroutine per CPU, each with its own observer. An
// event is routed by xxhash of its stream id, so all events of a
// connection are processed by one observer in order. Events which do not
// belong to a connection (listener lifecycle, rejects) go to a random
// goroutine.
type EventStream struct {
	ctx       context.Context
	ctxCancel context.CancelFunc
	chans     []chan fwdlib.Event

	// Указатель: EventStream передаётся по значению.
	dropped *atomic.Uint64
}

// Send delivers event to observer.
//
// EventTraffic is dropped if a channel is full: it is sent from relay
// pumps and must not slow down forwarding. Other events are delivered
// always.
func (e EventStream) Send(ctx context.Context, evt fwdlib.Event) {
	var chanNo uint32

	if streamID := evt.StreamID(); streamID != "" {
		chanNo = xxhash.ChecksumString32(streamID)
	} else {
		chanNo = rand.Uint32()
	}

	ch := e.chans[int(chanNo)%len(e.chans)]

	if _, isTraffic := evt.(fwdlib.EventTraffic); isTraffic {
		select {
		case <-ctx.Done():
		case <-e.ctx.Done():
		case ch <- evt:
		default:
			// наблюдатель не успевает: счётчики трафика станут чуть неточнее
			e.dropped.Add(1)
		}

		return
	}

	select {
	case <-ctx.Done():
	case <-e.ctx.Done():
	case ch <- evt:
	}
}

// Dropped returns a number of traffic events lost because of overflow.
func (e EventStream) Dropped() uint64 {
	return e.dropped.Load()
}

// Shutdown stops an event stream pipeline.
func (e EventStream) Shutdown() {
	e.ctxCancel()
}

// NewEventStream builds a new default event stream.
//
// If you give an empty array of observers, then NoopObserver is going
// to be used. If you give many observers, then they will process a
// message concurrently.
func NewEventStream(observerFactories []ObserverFactory) EventStream {
	if len(observerFactories) == 0 {
		observerFactories = append(observerFactories, NewNoopObserver)
	}

	ctx, cancel := context.WithCancel(context.Background())
	rv := EventStream{
		ctx:       ctx,
		ctxCancel: cancel,
		chans:     make([]chan fwdlib.Event, runtime.NumCPU()),
		dropped:   &atomic.Uint64{},
	}

	for i := range rv.chans {
		rv.chans[i] = make(chan fwdlib.Event, eventChannelSize)

		if len(observerFactories) == 1 {
			go eventStreamProcessor(ctx, rv.chans[i], observerFactories[0]())
		} else {
			go eventStreamProcessor(ctx, rv.chans[i], newMultiObserver(observerFactories))
		}
	}

	return rv
}

func eventStreamProcessor(ctx context.Context, eventChan <-chan fwdlib.Event, observer Observer) { //nolint: cyclop
	defer observer.Shutdown()

	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-eventChan:
			switch typedEvt := evt.(type) {
			case fwdlib.EventTraffic:
				observer.EventTraffic(typedEvt)
			case fwdlib.EventStart:
				observer.EventStart(typedEvt)
			case fwdlib.EventFinish:
				observer.EventFinish(typedEvt)
			case fwdlib.EventConnectedToRemote:
				observer.EventConnectedToRemote(typedEvt)
			case fwdlib.EventDialFailed:
				observer.EventDialFailed(typedEvt)
			case fwdlib.EventFrameError:
				observer.EventFrameError(typedEvt)
			case fwdlib.EventConcurrencyLimited:
				observer.EventConcurrencyLimited(typedEvt)
			case fwdlib.EventIPRejected:
				observer.EventIPRejected(typedEvt)
			case fwdlib.EventRateLimited:
				observer.EventRateLimited(typedEvt)
			case fwdlib.EventListenerStarted:
				observer.EventListenerStarted(typedEvt)
			case fwdlib.EventListenerStopped:
				observer.EventListenerStopped(typedEvt)
			}
		}
	}
}
