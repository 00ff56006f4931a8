// Package ipfilter has an implementation of [fwdlib.IPFilter] which
// checks client addresses against a list of networks.
package ipfilter

import (
	"fmt"
	"net"

	"github.com/yl2chen/cidranger"
)

// Filter allows IP addresses which belong to at least one of its
// networks. An empty filter allows nothing, so callers should not set it
// for rules without allowed networks.
type Filter struct {
	ranger cidranger.Ranger
	size   int
}

// Contains checks if IP belongs to one of networks of the filter.
func (f *Filter) Contains(ip net.IP) bool {
	// IPv4-mapped IPv6 приводим к IPv4, иначе не совпадёт с v4 сетями
	if ip4 := ip.To4(); ip4 != nil {
		ip = ip4
	}

	ok, err := f.ranger.Contains(ip)

	return err == nil && ok
}

// Size returns a number of networks in the filter.
func (f *Filter) Size() int {
	return f.size
}

// New builds a filter from a list of networks. Single IP addresses are
// accepted as well and treated as /32 or /128 networks.
func New(networks []string) (*Filter, error) {
	ranger := cidranger.NewPCTrieRanger()

	for _, v := range networks {
		ipNet, err := parseNetwork(v)
		if err != nil {
			return nil, err
		}

		if err := ranger.Insert(cidranger.NewBasicRangerEntry(*ipNet)); err != nil {
			return nil, fmt.Errorf("cannot add %s: %w", v, err)
		}
	}

	return &Filter{
		ranger: ranger,
		size:   len(networks),
	}, nil
}

// NewFromNets builds a filter from already parsed networks.
func NewFromNets(networks []net.IPNet) (*Filter, error) {
	ranger := cidranger.NewPCTrieRanger()

	for _, v := range networks {
		if err := ranger.Insert(cidranger.NewBasicRangerEntry(normalize(v))); err != nil {
			return nil, fmt.Errorf("cannot add %s: %w", v.String(), err)
		}
	}

	return &Filter{
		ranger: ranger,
		size:   len(networks),
	}, nil
}

func parseNetwork(value string) (*net.IPNet, error) {
	if _, ipNet, err := net.ParseCIDR(value); err == nil {
		rv := normalize(*ipNet)

		return &rv, nil
	}

	ip := net.ParseIP(value)
	if ip == nil {
		return nil, fmt.Errorf("incorrect network %s", value)
	}

	if ip4 := ip.To4(); ip4 != nil {
		return &net.IPNet{IP: ip4, Mask: net.CIDRMask(32, 32)}, nil //nolint: gomnd
	}

	return &net.IPNet{IP: ip, Mask: net.CIDRMask(128, 128)}, nil //nolint: gomnd
}

func normalize(ipNet net.IPNet) net.IPNet {
	if ip4 := ipNet.IP.To4(); ip4 != nil && len(ipNet.Mask) == net.IPv4len {
		ipNet.IP = ip4
	}

	return ipNet
}
