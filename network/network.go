package network

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"net/http"
	"time"

	"github.com/portseal/portseal/essentials"
)

type networkHTTPTransport struct {
	userAgent string
	next      http.RoundTripper
}

func (n networkHTTPTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", n.userAgent)

	return n.next.RoundTrip(req) //nolint: wrapcheck
}

// Options defines how hostnames are resolved.
type Options struct {
	// DNSMode selects a resolver.
	DNSMode DNSMode

	// DOHHostname is an IP address of DNS-over-HTTPS server. It is used
	// only if DNSMode is DNSModeDOH.
	DOHHostname string

	// HTTPTimeout is a timeout of DNS-over-HTTPS requests.
	HTTPTimeout time.Duration

	// UserAgent is sent with DNS-over-HTTPS requests.
	UserAgent string
}

func (o Options) getDOHHostname() string {
	if o.DOHHostname == "" {
		return DefaultDOHHostname
	}

	return o.DOHHostname
}

func (o Options) getHTTPTimeout() time.Duration {
	if o.HTTPTimeout == 0 {
		return DefaultHTTPTimeout
	}

	return o.HTTPTimeout
}

func (o Options) getUserAgent() string {
	if o.UserAgent == "" {
		return DefaultUserAgent
	}

	return o.UserAgent
}

// Network resolves hostnames of remote addresses and dials them. It
// implements [fwdlib.Network].
type Network struct {
	dialer Dialer
	dns    resolver
}

// DialContext dials to host:port. If host is a name, it is resolved and
// resolved addresses are tried in random order until one of them
// succeeds.
func (n *Network) DialContext(ctx context.Context, protocol, address string) (essentials.Conn, error) {
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		return nil, fmt.Errorf("incorrect address %s: %w", address, err)
	}

	ips, err := n.resolve(ctx, protocol, host)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve dns names: %w", err)
	}

	rand.Shuffle(len(ips), func(i, j int) {
		ips[i], ips[j] = ips[j], ips[i]
	})

	errs := make([]error, 0, len(ips))

	for _, v := range ips {
		conn, err := n.dialer.DialContext(ctx, protocol, net.JoinHostPort(v, port))
		if err == nil {
			return conn, nil
		}

		errs = append(errs, err)

		if ctx.Err() != nil {
			break
		}
	}

	return nil, fmt.Errorf("cannot dial to %s: %w", address, errors.Join(errs...))
}

// Stop releases resources of resolvers.
func (n *Network) Stop() {
	n.dns.Stop()
}

func (n *Network) resolve(ctx context.Context, protocol, host string) ([]string, error) {
	if net.ParseIP(host) != nil {
		return []string{host}, nil
	}

	var (
		ips []string
		err error
	)

	switch protocol {
	case "tcp4":
		ips, err = n.dns.LookupA(ctx, host)
	case "tcp6":
		ips, err = n.dns.LookupAAAA(ctx, host)
	default:
		ips, err = lookupBoth(ctx, n.dns, host)
	}

	switch {
	case err != nil:
		return nil, err
	case len(ips) == 0:
		return nil, fmt.Errorf("%w: %s", ErrCannotResolve, host)
	}

	// копия: кэш резолвера делится между вызовами, а мы будем её перемешивать
	return append([]string(nil), ips...), nil
}

// NewNetwork assembles a network based on a dialer and given options.
func NewNetwork(dialer Dialer, opts Options) (*Network, error) {
	if opts.HTTPTimeout < 0 {
		return nil, fmt.Errorf("timeout should be positive number %s", opts.HTTPTimeout)
	}

	var dns resolver

	switch opts.DNSMode {
	case DNSModeSystem:
		dns = newSystemResolver()
	case DNSModeDOH:
		dohHostname := opts.getDOHHostname()
		if net.ParseIP(dohHostname) == nil {
			return nil, fmt.Errorf("hostname %s should be IP address", dohHostname)
		}

		dns = newDOHResolver(dohHostname,
			makeHTTPClient(opts.getUserAgent(), opts.getHTTPTimeout(), dialer.DialContext))
	default:
		return nil, fmt.Errorf("unknown dns mode %d", opts.DNSMode)
	}

	return &Network{
		dialer: dialer,
		dns:    dns,
	}, nil
}

func makeHTTPClient(userAgent string,
	timeout time.Duration,
	dialFunc func(ctx context.Context, network, address string) (essentials.Conn, error),
) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: networkHTTPTransport{
			userAgent: userAgent,
			next: &http.Transport{
				DialContext: func(ctx context.Context, network, address string) (net.Conn, error) {
					return dialFunc(ctx, network, address)
				},
			},
		},
	}
}
