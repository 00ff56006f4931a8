package network

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"

	"github.com/portseal/portseal/internal/testlib"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type NetworkTestSuite struct {
	suite.Suite

	dialerMock   *DialerMock
	resolverMock *resolverMock
	connMock     *testlib.EssentialsConnMock
	network      *Network
}

func (suite *NetworkTestSuite) SetupTest() {
	suite.dialerMock = &DialerMock{}
	suite.resolverMock = &resolverMock{}
	suite.connMock = &testlib.EssentialsConnMock{}
	suite.network = &Network{
		dialer: suite.dialerMock,
		dns:    suite.resolverMock,
	}
}

func (suite *NetworkTestSuite) TearDownTest() {
	suite.dialerMock.AssertExpectations(suite.T())
	suite.resolverMock.AssertExpectations(suite.T())
	suite.connMock.AssertExpectations(suite.T())
}

func (suite *NetworkTestSuite) TestIncorrectAddress() {
	_, err := suite.network.DialContext(context.Background(), "tcp", "remote.example")

	suite.Error(err)
}

func (suite *NetworkTestSuite) TestLiteralIP() {
	suite.dialerMock.On("DialContext", mock.Anything, "tcp", "10.0.0.1:22").
		Once().
		Return(suite.connMock, nil)

	conn, err := suite.network.DialContext(context.Background(), "tcp", "10.0.0.1:22")

	suite.NoError(err)
	suite.Equal(suite.connMock, conn)
}

func (suite *NetworkTestSuite) TestLiteralIPv6() {
	suite.dialerMock.On("DialContext", mock.Anything, "tcp", "[fd00::1]:22").
		Once().
		Return(suite.connMock, nil)

	_, err := suite.network.DialContext(context.Background(), "tcp", "[fd00::1]:22")

	suite.NoError(err)
}

func (suite *NetworkTestSuite) TestResolvedAddressesAreTried() {
	suite.resolverMock.On("LookupA", mock.Anything, "remote.example").
		Once().
		Return([]string{"10.0.0.1"}, nil)
	suite.resolverMock.On("LookupAAAA", mock.Anything, "remote.example").
		Once().
		Return([]string{"fd00::1"}, nil)
	suite.dialerMock.On("DialContext", mock.Anything, "tcp", "10.0.0.1:22").
		Maybe().
		Return(nil, io.EOF)
	suite.dialerMock.On("DialContext", mock.Anything, "tcp", "[fd00::1]:22").
		Maybe().
		Return(suite.connMock, nil)

	conn, err := suite.network.DialContext(context.Background(), "tcp", "remote.example:22")

	suite.NoError(err)
	suite.Equal(suite.connMock, conn)
}

func (suite *NetworkTestSuite) TestAllAddressesFail() {
	suite.resolverMock.On("LookupA", mock.Anything, "remote.example").
		Once().
		Return([]string{"10.0.0.1", "10.0.0.2"}, nil)
	suite.resolverMock.On("LookupAAAA", mock.Anything, "remote.example").
		Once().
		Return([]string{}, errors.New("no records"))
	suite.dialerMock.On("DialContext", mock.Anything, "tcp", "10.0.0.1:22").
		Once().
		Return(nil, io.EOF)
	suite.dialerMock.On("DialContext", mock.Anything, "tcp", "10.0.0.2:22").
		Once().
		Return(nil, io.ErrUnexpectedEOF)

	_, err := suite.network.DialContext(context.Background(), "tcp", "remote.example:22")

	suite.ErrorIs(err, io.EOF)
	suite.ErrorIs(err, io.ErrUnexpectedEOF)
}

func (suite *NetworkTestSuite) TestTCP4UsesOnlyA() {
	suite.resolverMock.On("LookupA", mock.Anything, "remote.example").
		Once().
		Return([]string{"10.0.0.1"}, nil)
	suite.dialerMock.On("DialContext", mock.Anything, "tcp4", "10.0.0.1:22").
		Once().
		Return(suite.connMock, nil)

	_, err := suite.network.DialContext(context.Background(), "tcp4", "remote.example:22")

	suite.NoError(err)
}

func (suite *NetworkTestSuite) TestCannotResolve() {
	suite.resolverMock.On("LookupAAAA", mock.Anything, "remote.example").
		Once().
		Return([]string{}, nil)

	_, err := suite.network.DialContext(context.Background(), "tcp6", "remote.example:22")

	suite.ErrorIs(err, ErrCannotResolve)
}

func (suite *NetworkTestSuite) TestStop() {
	suite.resolverMock.On("Stop").Once()

	suite.network.Stop()
}

func TestNetwork(t *testing.T) {
	t.Parallel()
	suite.Run(t, &NetworkTestSuite{})
}

type NewNetworkTestSuite struct {
	suite.Suite
}

func (suite *NewNetworkTestSuite) TestSystem() {
	ntw, err := NewNetwork(&DialerMock{}, Options{DNSMode: DNSModeSystem})

	suite.NoError(err)
	suite.IsType(&systemResolver{}, ntw.dns)
	ntw.Stop()
}

func (suite *NewNetworkTestSuite) TestDOH() {
	ntw, err := NewNetwork(&DialerMock{}, Options{
		DNSMode:     DNSModeDOH,
		DOHHostname: "1.1.1.1",
	})

	suite.NoError(err)
	suite.IsType(&dohResolver{}, ntw.dns)
	suite.Equal("1.1.1.1", ntw.dns.(*dohResolver).dohServer) //nolint: forcetypeassert
	ntw.Stop()
}

func (suite *NewNetworkTestSuite) TestDOHHostnameIsNotIP() {
	_, err := NewNetwork(&DialerMock{}, Options{
		DNSMode:     DNSModeDOH,
		DOHHostname: "dns.quad9.net",
	})

	suite.Error(err)
}

func (suite *NewNetworkTestSuite) TestNegativeTimeout() {
	_, err := NewNetwork(&DialerMock{}, Options{HTTPTimeout: -1})

	suite.Error(err)
}

func (suite *NewNetworkTestSuite) TestUnknownMode() {
	_, err := NewNetwork(&DialerMock{}, Options{DNSMode: DNSMode(42)})

	suite.Error(err)
}

func TestNewNetwork(t *testing.T) {
	t.Parallel()
	suite.Run(t, &NewNetworkTestSuite{})
}

func TestDefaultDialer(t *testing.T) {
	t.Parallel()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	defer listener.Close()

	go func() {
		conn, err := listener.Accept()
		if err == nil {
			conn.Close()
		}
	}()

	dialer, err := NewDefaultDialer(0)
	if err != nil {
		t.Fatal(err)
	}

	conn, err := dialer.DialContext(context.Background(), "tcp", listener.Addr().String())
	if err != nil {
		t.Fatal(err)
	}

	conn.Close()

	if _, err := dialer.DialContext(context.Background(), "udp", listener.Addr().String()); err == nil {
		t.Error("udp should be rejected")
	}

	if _, err := NewDefaultDialer(-1); err == nil {
		t.Error("negative timeout should be rejected")
	}
}
