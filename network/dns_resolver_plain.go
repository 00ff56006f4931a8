package network

import (
	"context"
	"fmt"
	"net"
)

// systemResolver uses a resolver of the operating system with caching.
// System resolver does not expose TTL, so every record lives for
// defaultDNSTTL.
type systemResolver struct {
	resolver    *net.Resolver
	cache       *LRUDNSCache
	cleanupStop chan struct{}
}

func (s *systemResolver) LookupA(ctx context.Context, hostname string) ([]string, error) {
	return s.lookup(ctx, hostname, false)
}

func (s *systemResolver) LookupAAAA(ctx context.Context, hostname string) ([]string, error) {
	return s.lookup(ctx, hostname, true)
}

func (s *systemResolver) Stop() {
	close(s.cleanupStop)
}

func (s *systemResolver) lookup(ctx context.Context, hostname string, ipv6 bool) ([]string, error) {
	key := cacheKey(hostname, ipv6)

	if cached := s.cache.Get(key); cached != nil {
		return cached.IPs, nil
	}

	ctx, cancel := context.WithTimeout(ctx, DNSTimeout)
	defer cancel()

	network := "ip4"
	if ipv6 {
		network = "ip6"
	}

	addrs, err := s.resolver.LookupIP(ctx, network, hostname)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCannotResolve, hostname, err)
	}

	ips := make([]string, 0, len(addrs))

	for _, addr := range addrs {
		ips = append(ips, addr.String())
	}

	if len(ips) > 0 {
		s.cache.Set(key, ips, defaultDNSTTL)
	}

	return ips, nil
}

func newSystemResolver() *systemResolver {
	cache := NewLRUDNSCache(defaultDNSCacheSize)

	return &systemResolver{
		resolver: &net.Resolver{
			PreferGo: true,
		},
		cache:       cache,
		cleanupStop: cache.StartCleanupLoop(dnsCacheCleanup),
	}
}
