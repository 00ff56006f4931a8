package network

import (
	"context"

	"github.com/portseal/portseal/essentials"
	"github.com/stretchr/testify/mock"
)

type DialerMock struct {
	mock.Mock
}

func (d *DialerMock) DialContext(ctx context.Context, network, address string) (essentials.Conn, error) {
	args := d.Called(ctx, network, address)

	if conn, ok := args.Get(0).(essentials.Conn); ok {
		return conn, args.Error(1) //nolint: wrapcheck
	}

	return nil, args.Error(1) //nolint: wrapcheck
}

type resolverMock struct {
	mock.Mock
}

func (r *resolverMock) LookupA(ctx context.Context, hostname string) ([]string, error) {
	args := r.Called(ctx, hostname)

	return args.Get(0).([]string), args.Error(1) //nolint: forcetypeassert,wrapcheck
}

func (r *resolverMock) LookupAAAA(ctx context.Context, hostname string) ([]string, error) {
	args := r.Called(ctx, hostname)

	return args.Get(0).([]string), args.Error(1) //nolint: forcetypeassert,wrapcheck
}

func (r *resolverMock) Stop() {
	r.Called()
}
