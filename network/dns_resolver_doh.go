package network

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/miekg/dns"
)

// max size of DNS message
const dohMaxResponseSize = 65535

type dohResolver struct {
	dohServer   string
	httpClient  *http.Client
	cache       *LRUDNSCache
	cleanupStop chan struct{}
}

func (d *dohResolver) LookupA(ctx context.Context, hostname string) ([]string, error) {
	return d.lookup(ctx, hostname, dns.TypeA)
}

func (d *dohResolver) LookupAAAA(ctx context.Context, hostname string) ([]string, error) {
	return d.lookup(ctx, hostname, dns.TypeAAAA)
}

func (d *dohResolver) Stop() {
	close(d.cleanupStop)
}

func (d *dohResolver) lookup(ctx context.Context, hostname string, qtype uint16) ([]string, error) {
	key := cacheKey(hostname, qtype == dns.TypeAAAA)

	if cached := d.cache.Get(key); cached != nil {
		return cached.IPs, nil
	}

	answers, err := d.doQuery(ctx, hostname, qtype)
	if err != nil {
		return nil, err
	}

	ips := []string{}
	ttl := uint32(defaultDNSTTL)

	for _, rr := range answers {
		switch record := rr.(type) {
		case *dns.A:
			if qtype != dns.TypeA {
				continue
			}

			ips = append(ips, record.A.String())
		case *dns.AAAA:
			if qtype != dns.TypeAAAA {
				continue
			}

			ips = append(ips, record.AAAA.String())
		default:
			continue
		}

		// кэшируем на минимальный TTL из ответа
		if recTTL := rr.Header().Ttl; recTTL < ttl {
			ttl = recTTL
		}
	}

	if len(ips) == 0 {
		return nil, fmt.Errorf("%w: %s has no %s records",
			ErrCannotResolve, hostname, dns.TypeToString[qtype])
	}

	if ttl > 0 {
		d.cache.Set(key, ips, ttl)
	}

	return ips, nil
}

// doQuery выполняет запрос по RFC 8484: GET с параметром dns.
func (d *dohResolver) doQuery(ctx context.Context, hostname string, qtype uint16) ([]dns.RR, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(hostname), qtype)
	msg.RecursionDesired = true

	packed, err := msg.Pack()
	if err != nil {
		return nil, fmt.Errorf("cannot pack dns message: %w", err)
	}

	url := fmt.Sprintf("https://%s/dns-query?dns=%s",
		d.dohServer,
		base64.RawURLEncoding.EncodeToString(packed))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot create request: %w", err)
	}

	req.Header.Set("Accept", "application/dns-message")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("doh request has failed: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("doh server has returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, dohMaxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("cannot read response: %w", err)
	}

	response := new(dns.Msg)
	if err := response.Unpack(body); err != nil {
		return nil, fmt.Errorf("cannot unpack dns response: %w", err)
	}

	if response.Rcode != dns.RcodeSuccess {
		return nil, fmt.Errorf("%w: %s returned %s",
			ErrCannotResolve, hostname, dns.RcodeToString[response.Rcode])
	}

	return response.Answer, nil
}

func newDOHResolver(hostname string, httpClient *http.Client) *dohResolver {
	if ip := net.ParseIP(hostname); ip != nil && ip.To4() == nil {
		hostname = "[" + hostname + "]"
	}

	cache := NewLRUDNSCache(defaultDNSCacheSize)

	return &dohResolver{
		dohServer:   hostname,
		httpClient:  httpClient,
		cache:       cache,
		cleanupStop: cache.StartCleanupLoop(dnsCacheCleanup),
	}
}
