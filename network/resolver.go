package network

import (
	"context"
	"errors"
	"sync"
)

// resolver looks up IP addresses of a hostname.
type resolver interface {
	LookupA(ctx context.Context, hostname string) ([]string, error)
	LookupAAAA(ctx context.Context, hostname string) ([]string, error)
	Stop()
}

// lookupBoth делает A и AAAA запросы параллельно. IPv4 идут первыми.
// Ошибка возвращается только если ни один запрос не дал адресов.
func lookupBoth(ctx context.Context, res resolver, hostname string) ([]string, error) {
	var (
		ipv4, ipv6       []string
		errIPv4, errIPv6 error
		wg               sync.WaitGroup
	)

	wg.Add(2) //nolint: gomnd

	go func() {
		defer wg.Done()

		ipv4, errIPv4 = res.LookupA(ctx, hostname)
	}()

	go func() {
		defer wg.Done()

		ipv6, errIPv6 = res.LookupAAAA(ctx, hostname)
	}()

	wg.Wait()

	rv := make([]string, 0, len(ipv4)+len(ipv6))
	rv = append(rv, ipv4...)
	rv = append(rv, ipv6...)

	if len(rv) == 0 {
		return nil, errors.Join(errIPv4, errIPv6)
	}

	return rv, nil
}

func cacheKey(hostname string, ipv6 bool) string {
	if ipv6 {
		return "\x01" + hostname
	}

	return "\x00" + hostname
}
