package events_test

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/portseal/portseal/events"
	"github.com/portseal/portseal/fwdlib"
	"github.com/stretchr/testify/suite"
)

type recordingObserver struct {
	events.Observer

	mutex    *sync.Mutex
	received *[]string
}

func (r recordingObserver) record(name string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	*r.received = append(*r.received, name)
}

func (r recordingObserver) EventStart(evt fwdlib.EventStart) {
	r.record("start:" + evt.StreamID())
}

func (r recordingObserver) EventTraffic(evt fwdlib.EventTraffic) {
	r.record("traffic:" + evt.StreamID())
}

func (r recordingObserver) EventFinish(evt fwdlib.EventFinish) {
	r.record("finish:" + evt.StreamID())
}

func (r recordingObserver) EventListenerStarted(evt fwdlib.EventListenerStarted) {
	r.record("listener:" + evt.Rule)
}

func (r recordingObserver) Shutdown() {}

type EventStreamTestSuite struct {
	suite.Suite

	mutex    *sync.Mutex
	received *[]string
	ctx      context.Context
	cancel   context.CancelFunc
}

func (suite *EventStreamTestSuite) SetupTest() {
	suite.mutex = &sync.Mutex{}
	suite.received = &[]string{}
	suite.ctx, suite.cancel = context.WithCancel(context.Background())
}

func (suite *EventStreamTestSuite) TearDownTest() {
	suite.cancel()
}

func (suite *EventStreamTestSuite) factory() events.Observer {
	return recordingObserver{
		Observer: events.NewNoopObserver(),
		mutex:    suite.mutex,
		received: suite.received,
	}
}

func (suite *EventStreamTestSuite) snapshot() []string {
	suite.mutex.Lock()
	defer suite.mutex.Unlock()

	return append([]string(nil), *suite.received...)
}

func (suite *EventStreamTestSuite) TestStreamOrder() {
	stream := events.NewEventStream([]events.ObserverFactory{suite.factory})
	defer stream.Shutdown()

	stream.Send(suite.ctx, fwdlib.NewEventStart("s1", "ssh", net.ParseIP("127.0.0.1")))
	stream.Send(suite.ctx, fwdlib.NewEventTraffic("s1", 10, true))
	stream.Send(suite.ctx, fwdlib.NewEventFinish("s1"))

	suite.Eventually(func() bool {
		return len(suite.snapshot()) == 3
	}, time.Second, 10*time.Millisecond)

	suite.Equal([]string{"start:s1", "traffic:s1", "finish:s1"}, suite.snapshot())
}

func (suite *EventStreamTestSuite) TestEventWithoutStream() {
	stream := events.NewEventStream([]events.ObserverFactory{suite.factory})
	defer stream.Shutdown()

	stream.Send(suite.ctx, fwdlib.NewEventListenerStarted("ssh"))

	suite.Eventually(func() bool {
		return len(suite.snapshot()) == 1
	}, time.Second, 10*time.Millisecond)

	suite.Equal("listener:ssh", suite.snapshot()[0])
}

func (suite *EventStreamTestSuite) TestMultipleObservers() {
	stream := events.NewEventStream([]events.ObserverFactory{suite.factory, suite.factory})
	defer stream.Shutdown()

	stream.Send(suite.ctx, fwdlib.NewEventStart("s2", "ssh", net.ParseIP("127.0.0.1")))

	suite.Eventually(func() bool {
		return len(suite.snapshot()) == 2
	}, time.Second, 10*time.Millisecond)

	suite.Equal([]string{"start:s2", "start:s2"}, suite.snapshot())
}

func (suite *EventStreamTestSuite) TestSendAfterShutdownDoesNotBlock() {
	stream := events.NewEventStream(nil)
	stream.Shutdown()

	done := make(chan struct{})

	go func() {
		for i := 0; i < 1000; i++ {
			stream.Send(suite.ctx, fwdlib.NewEventFinish("s3"))
		}

		close(done)
	}()

	suite.Eventually(func() bool {
		select {
		case <-done:
			return true
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}

func (suite *EventStreamTestSuite) TestTrafficIsDroppedOnOverflow() {
	release := make(chan struct{})
	factory := func() events.Observer {
		return blockingObserver{
			Observer: events.NewNoopObserver(),
			release:  release,
		}
	}

	stream := events.NewEventStream([]events.ObserverFactory{factory})
	defer stream.Shutdown()
	defer close(release)

	for i := 0; i < 1000; i++ {
		stream.Send(suite.ctx, fwdlib.NewEventTraffic("s4", 1, true))
	}

	suite.Positive(stream.Dropped())
}

type blockingObserver struct {
	events.Observer

	release <-chan struct{}
}

func (b blockingObserver) EventTraffic(_ fwdlib.EventTraffic) {
	<-b.release
}

func TestEventStream(t *testing.T) {
	t.Parallel()
	suite.Run(t, &EventStreamTestSuite{})
}

func TestNoopStream(t *testing.T) {
	t.Parallel()

	events.NewNoopStream().Send(context.Background(), fwdlib.NewEventFinish("s"))
}
