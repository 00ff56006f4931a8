package fwdlib

import (
	"context"
	"net"
	"sync"
	"testing"

	"github.com/portseal/portseal/internal/testlib"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type trafficRecorder struct {
	mutex  sync.Mutex
	events []EventTraffic
}

func (t *trafficRecorder) Send(_ context.Context, evt Event) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.events = append(t.events, evt.(EventTraffic)) //nolint: forcetypeassert
}

type ConnTrafficTestSuite struct {
	suite.Suite

	connMock *testlib.EssentialsConnMock
	recorder *trafficRecorder
	conn     connTraffic
}

func (suite *ConnTrafficTestSuite) SetupTest() {
	suite.connMock = &testlib.EssentialsConnMock{}
	suite.recorder = &trafficRecorder{}
	suite.conn = newConnTraffic(context.Background(), suite.connMock, "stream", suite.recorder)
}

func (suite *ConnTrafficTestSuite) TearDownTest() {
	suite.connMock.AssertExpectations(suite.T())
}

func (suite *ConnTrafficTestSuite) TestBatching() {
	suite.connMock.On("Read", mock.Anything).Return(1024, nil)

	buf := make([]byte, 1024)

	for i := 0; i < 31; i++ {
		suite.conn.Read(buf) //nolint: errcheck
	}

	suite.Empty(suite.recorder.events)

	suite.conn.Read(buf) //nolint: errcheck
	suite.Len(suite.recorder.events, 1)
	suite.EqualValues(32*1024, suite.recorder.events[0].Traffic)
	suite.True(suite.recorder.events[0].IsRead)
}

func (suite *ConnTrafficTestSuite) TestFlushOnClose() {
	suite.connMock.On("Write", mock.Anything).Return(10, nil)
	suite.connMock.On("Close").Return(nil).Twice()

	suite.conn.Write(make([]byte, 10)) //nolint: errcheck

	suite.NoError(suite.conn.Close())
	suite.NoError(suite.conn.Close())

	suite.Len(suite.recorder.events, 1)
	suite.EqualValues(10, suite.recorder.events[0].Traffic)
	suite.False(suite.recorder.events[0].IsRead)
}

func (suite *ConnTrafficTestSuite) TestNetConn() {
	suite.Equal(net.Conn(suite.connMock), suite.conn.NetConn())
}

func TestConnTraffic(t *testing.T) {
	t.Parallel()
	suite.Run(t, &ConnTrafficTestSuite{})
}
