package events

import (
	"sync"

	"github.com/portseal/portseal/fwdlib"
)

// multiObserver отдаёт каждое событие всем наблюдателям параллельно и
// дожидается их всех, чтобы сохранить порядок событий одного потока.
type multiObserver struct {
	observers []Observer
}

func (m multiObserver) EventStart(evt fwdlib.EventStart) {
	m.each(func(o Observer) { o.EventStart(evt) })
}

func (m multiObserver) EventConnectedToRemote(evt fwdlib.EventConnectedToRemote) {
	m.each(func(o Observer) { o.EventConnectedToRemote(evt) })
}

func (m multiObserver) EventTraffic(evt fwdlib.EventTraffic) {
	m.each(func(o Observer) { o.EventTraffic(evt) })
}

func (m multiObserver) EventFinish(evt fwdlib.EventFinish) {
	m.each(func(o Observer) { o.EventFinish(evt) })
}

func (m multiObserver) EventDialFailed(evt fwdlib.EventDialFailed) {
	m.each(func(o Observer) { o.EventDialFailed(evt) })
}

func (m multiObserver) EventFrameError(evt fwdlib.EventFrameError) {
	m.each(func(o Observer) { o.EventFrameError(evt) })
}

func (m multiObserver) EventConcurrencyLimited(evt fwdlib.EventConcurrencyLimited) {
	m.each(func(o Observer) { o.EventConcurrencyLimited(evt) })
}

func (m multiObserver) EventIPRejected(evt fwdlib.EventIPRejected) {
	m.each(func(o Observer) { o.EventIPRejected(evt) })
}

func (m multiObserver) EventRateLimited(evt fwdlib.EventRateLimited) {
	m.each(func(o Observer) { o.EventRateLimited(evt) })
}

func (m multiObserver) EventListenerStarted(evt fwdlib.EventListenerStarted) {
	m.each(func(o Observer) { o.EventListenerStarted(evt) })
}

func (m multiObserver) EventListenerStopped(evt fwdlib.EventListenerStopped) {
	m.each(func(o Observer) { o.EventListenerStopped(evt) })
}

func (m multiObserver) Shutdown() {
	for _, v := range m.observers {
		v.Shutdown()
	}
}

func (m multiObserver) each(callback func(Observer)) {
	wg := &sync.WaitGroup{}
	wg.Add(len(m.observers))

	for _, v := range m.observers {
		go func(obs Observer) {
			defer wg.Done()

			callback(obs)
		}(v)
	}

	wg.Wait()
}

func newMultiObserver(factories []ObserverFactory) Observer {
	observers := make([]Observer, 0, len(factories))

	for _, v := range factories {
		observers = append(observers, v())
	}

	return multiObserver{
		observers: observers,
	}
}
