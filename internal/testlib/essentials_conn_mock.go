package testlib

import (
	"net"
	"time"

	"github.com/stretchr/testify/mock"
)

type EssentialsConnMock struct {
	mock.Mock
}

func (m *EssentialsConnMock) Read(b []byte) (int, error) {
	args := m.Called(b)

	return args.Int(0), args.Error(1) //nolint: wrapcheck
}

func (m *EssentialsConnMock) Write(b []byte) (int, error) {
	args := m.Called(b)

	return args.Int(0), args.Error(1) //nolint: wrapcheck
}

func (m *EssentialsConnMock) Close() error {
	return m.Called().Error(0) //nolint: wrapcheck
}

func (m *EssentialsConnMock) CloseRead() error {
	return m.Called().Error(0) //nolint: wrapcheck
}

func (m *EssentialsConnMock) CloseWrite() error {
	return m.Called().Error(0) //nolint: wrapcheck
}

func (m *EssentialsConnMock) LocalAddr() net.Addr {
	return m.Called().Get(0).(net.Addr) //nolint: forcetypeassert
}

func (m *EssentialsConnMock) RemoteAddr() net.Addr {
	return m.Called().Get(0).(net.Addr) //nolint: forcetypeassert
}

func (m *EssentialsConnMock) SetDeadline(t time.Time) error {
	return m.Called(t).Error(0) //nolint: wrapcheck
}

func (m *EssentialsConnMock) SetReadDeadline(t time.Time) error {
	return m.Called(t).Error(0) //nolint: wrapcheck
}

func (m *EssentialsConnMock) SetWriteDeadline(t time.Time) error {
	return m.Called(t).Error(0) //nolint: wrapcheck
}
