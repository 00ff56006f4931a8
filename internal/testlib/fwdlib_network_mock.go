package testlib

import (
	"context"

	"github.com/portseal/portseal/essentials"
	"github.com/stretchr/testify/mock"
)

type FwdlibNetworkMock struct {
	mock.Mock
}

func (m *FwdlibNetworkMock) DialContext(ctx context.Context, network, address string) (essentials.Conn, error) {
	args := m.Called(ctx, network, address)

	if conn, ok := args.Get(0).(essentials.Conn); ok {
		return conn, args.Error(1) //nolint: wrapcheck
	}

	return nil, args.Error(1) //nolint: wrapcheck
}
