package fwdlib

import (
	"net"
	"time"
)

type eventBase struct {
	streamID  string
	timestamp time.Time
}

// StreamID returns a ID of the stream this event belongs to.
func (e eventBase) StreamID() string {
	return e.streamID
}

// Timestamp return a time when this event was generated.
func (e eventBase) Timestamp() time.Time {
	return e.timestamp
}

// EventStart is emitted when forwarder starts to process a new connection.
type EventStart struct {
	eventBase

	// Rule is a name of the rule which accepted a connection.
	Rule string

	// RemoteIP is an IP address of the client.
	RemoteIP net.IP
}

// EventConnectedToRemote is emitted when forwarder has connected to a
// remote address of the rule.
type EventConnectedToRemote struct {
	eventBase

	Rule string

	// RemoteAddr is an address forwarder has been connected to.
	RemoteAddr string
}

// EventTraffic is emitted when we read/write some bytes on a connection.
type EventTraffic struct {
	eventBase

	// Traffic is a count of bytes which were transmitted.
	Traffic uint

	// IsRead defines if we _read_ or _write_ to connection. EventTraffic
	// is bound to a remote connection: IsRead means that we've fetched some
	// bytes from a remote side to send them to a client.
	IsRead bool
}

// EventFinish is emitted when we stop to manage a connection.
type EventFinish struct {
	eventBase
}

// EventDialFailed is emitted when remote address of the rule cannot be
// dialed.
type EventDialFailed struct {
	eventBase

	Rule string
}

// EventFrameError is emitted when encrypted side sent a frame which cannot
// be processed.
type EventFrameError struct {
	eventBase

	Rule string
}

// EventConcurrencyLimited is emitted when connection was declined because of
// the concurrency limit of the worker pool.
type EventConcurrencyLimited struct {
	eventBase

	Rule string
}

// EventIPRejected is emitted when connection was declined because client
// IP is not in allowed networks of the rule.
type EventIPRejected struct {
	eventBase

	Rule     string
	RemoteIP net.IP
}

// EventRateLimited is emitted when connection was declined because client
// IP exceeded a rate limit of the rule.
type EventRateLimited struct {
	eventBase

	Rule     string
	RemoteIP net.IP
}

// EventListenerStarted is emitted when a rule has bound its local address.
type EventListenerStarted struct {
	eventBase

	Rule string
}

// EventListenerStopped is emitted when a rule stops accepting connections.
type EventListenerStopped struct {
	eventBase

	Rule string

	// Failed is true if listener stopped because of an accept error.
	Failed bool
}

func newEventBase(streamID string) eventBase {
	return eventBase{
		timestamp: time.Now(),
		streamID:  streamID,
	}
}

// NewEventStart creates a new EventStart event.
func NewEventStart(streamID, rule string, remoteIP net.IP) EventStart {
	return EventStart{
		eventBase: newEventBase(streamID),
		Rule:      rule,
		RemoteIP:  remoteIP,
	}
}

// NewEventConnectedToRemote creates a new EventConnectedToRemote event.
func NewEventConnectedToRemote(streamID, rule, remoteAddr string) EventConnectedToRemote {
	return EventConnectedToRemote{
		eventBase:  newEventBase(streamID),
		Rule:       rule,
		RemoteAddr: remoteAddr,
	}
}

// NewEventTraffic creates a new EventTraffic event.
func NewEventTraffic(streamID string, traffic uint, isRead bool) EventTraffic {
	return EventTraffic{
		eventBase: newEventBase(streamID),
		Traffic:   traffic,
		IsRead:    isRead,
	}
}

// NewEventFinish creates a new EventFinish event.
func NewEventFinish(streamID string) EventFinish {
	return EventFinish{
		eventBase: newEventBase(streamID),
	}
}

// NewEventDialFailed creates a new EventDialFailed event.
func NewEventDialFailed(streamID, rule string) EventDialFailed {
	return EventDialFailed{
		eventBase: newEventBase(streamID),
		Rule:      rule,
	}
}

// NewEventFrameError creates a new EventFrameError event.
func NewEventFrameError(streamID, rule string) EventFrameError {
	return EventFrameError{
		eventBase: newEventBase(streamID),
		Rule:      rule,
	}
}

// NewEventConcurrencyLimited creates a new EventConcurrencyLimited event.
func NewEventConcurrencyLimited(rule string) EventConcurrencyLimited {
	return EventConcurrencyLimited{
		eventBase: newEventBase(""),
		Rule:      rule,
	}
}

// NewEventIPRejected creates a new EventIPRejected event.
func NewEventIPRejected(rule string, remoteIP net.IP) EventIPRejected {
	return EventIPRejected{
		eventBase: newEventBase(""),
		Rule:      rule,
		RemoteIP:  remoteIP,
	}
}

// NewEventRateLimited creates a new EventRateLimited event.
func NewEventRateLimited(rule string, remoteIP net.IP) EventRateLimited {
	return EventRateLimited{
		eventBase: newEventBase(""),
		Rule:      rule,
		RemoteIP:  remoteIP,
	}
}

// NewEventListenerStarted creates a new EventListenerStarted event.
func NewEventListenerStarted(rule string) EventListenerStarted {
	return EventListenerStarted{
		eventBase: newEventBase(""),
		Rule:      rule,
	}
}

// NewEventListenerStopped creates a new EventListenerStopped event.
func NewEventListenerStopped(rule string, failed bool) EventListenerStopped {
	return EventListenerStopped{
		eventBase: newEventBase(""),
		Rule:      rule,
		Failed:    failed,
	}
}
