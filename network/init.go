// Package network has implementations of [fwdlib.Network] which are used
// to dial remote addresses of forwarding rules.
//
// A chain is simple: network resolves a hostname (with a system resolver
// or DNS-over-HTTPS) and dials resolved IPs with a dialer. A dialer can be
// wrapped into cooldown dialer which stops hammering remote addresses that
// keep failing.
package network

import (
	"context"
	"errors"
	"time"

	"github.com/portseal/portseal/essentials"
)

const (
	// DefaultTimeout is a default timeout to establish TCP connection.
	DefaultTimeout = 10 * time.Second

	// DefaultHTTPTimeout is a default timeout of DNS-over-HTTPS requests.
	DefaultHTTPTimeout = 10 * time.Second

	// DNSTimeout is a timeout of a single DNS query.
	DNSTimeout = 5 * time.Second

	// DefaultTCPKeepAlivePeriod is a period between TCP keepalive probes.
	DefaultTCPKeepAlivePeriod = 10 * time.Second

	// DefaultDOHHostname is an IP address of DNS-over-HTTPS server.
	DefaultDOHHostname = "9.9.9.9"

	// DefaultCooldownThreshold is a number of consecutive failures after
	// which remote address is put on cooldown.
	DefaultCooldownThreshold = 5

	// DefaultCooldownTimeout is a duration of cooldown.
	DefaultCooldownTimeout = 10 * time.Second

	// DefaultUserAgent is sent with DNS-over-HTTPS requests.
	DefaultUserAgent = "portseal"

	defaultDNSCacheSize = 1024
	defaultDNSTTL       = 300
	dnsCacheCleanup     = 5 * time.Minute
)

var (
	// ErrCooldown is returned when remote address is on cooldown after
	// too many failed attempts.
	ErrCooldown = errors.New("remote address is on cooldown")

	// ErrCannotResolve is returned when hostname has no IP addresses.
	ErrCannotResolve = errors.New("cannot resolve hostname")
)

// Dialer defines an interface which is required to dial to IP:port
// addresses. Hostnames are resolved before they hit a dialer.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (essentials.Conn, error)
}

// DNSMode defines how hostnames of remote addresses are resolved.
type DNSMode int

const (
	// DNSModeSystem uses a resolver of the operating system.
	DNSModeSystem DNSMode = iota

	// DNSModeDOH uses DNS-over-HTTPS.
	DNSModeDOH
)
