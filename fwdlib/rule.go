package fwdlib

import (
	"fmt"
	"net"
	"strconv"
)

// Rule is a single forwarding rule: everything accepted on LocalAddr is
// relayed to RemoteAddr.
//
// Rule is immutable after load and copied into every connection it spawns.
type Rule struct {
	// Name is used in logs and metrics. Names have to be unique within a
	// rule set.
	Name string

	// LocalAddr is a host:port pair to bind.
	LocalAddr string

	// RemoteAddr is a host:port pair to dial for each accepted connection.
	RemoteAddr string

	// LocalEncrypted means that clients connected to LocalAddr talk frames.
	LocalEncrypted bool

	// RemoteEncrypted means that RemoteAddr expects frames.
	RemoteEncrypted bool

	// Allowlist restricts client IPs. nil means no restrictions.
	//
	// This is an optional setting.
	Allowlist IPFilter

	// RateLimitPerSecond is a max rate of accepted connections from a
	// single client IP. 0 disables rate limiting.
	//
	// This is an optional setting.
	RateLimitPerSecond float64

	// RateLimitBurst is a burst for RateLimitPerSecond.
	//
	// This is an optional setting. Default: DefaultRateLimitBurst
	RateLimitBurst int
}

func (r Rule) String() string {
	return fmt.Sprintf("%s (%s%s -> %s%s)",
		r.Name,
		r.LocalAddr, encryptionMark(r.LocalEncrypted),
		r.RemoteAddr, encryptionMark(r.RemoteEncrypted))
}

// Valid checks that a rule could be served.
func (r Rule) Valid() error {
	if r.Name == "" {
		return fmt.Errorf("%w: rule name is empty", ErrConfiguration)
	}

	if err := validateHostPort(r.LocalAddr, true); err != nil {
		return fmt.Errorf("%w: rule %s: incorrect local address: %w", ErrConfiguration, r.Name, err)
	}

	if err := validateHostPort(r.RemoteAddr, false); err != nil {
		return fmt.Errorf("%w: rule %s: incorrect remote address: %w", ErrConfiguration, r.Name, err)
	}

	if r.RateLimitPerSecond < 0 {
		return fmt.Errorf("%w: rule %s: rate limit is negative", ErrConfiguration, r.Name)
	}

	if r.RateLimitBurst < 0 {
		return fmt.Errorf("%w: rule %s: rate limit burst is negative", ErrConfiguration, r.Name)
	}

	return nil
}

func (r Rule) getRateLimitBurst() int {
	if r.RateLimitBurst == 0 {
		return DefaultRateLimitBurst
	}

	return r.RateLimitBurst
}

// ValidateRules checks a whole rule set. An empty set is valid: nothing is
// served then.
func ValidateRules(rules []Rule) error {
	names := make(map[string]struct{}, len(rules))

	for _, rule := range rules {
		if err := rule.Valid(); err != nil {
			return err
		}

		if _, ok := names[rule.Name]; ok {
			return fmt.Errorf("%w: duplicate rule name %s", ErrConfiguration, rule.Name)
		}

		names[rule.Name] = struct{}{}
	}

	return nil
}

// validateHostPort checks host:port. Port 0 is allowed only for local
// addresses: an OS picks a free port then.
func validateHostPort(value string, allowZeroPort bool) error {
	_, port, err := net.SplitHostPort(value)
	if err != nil {
		return err //nolint: wrapcheck
	}

	portValue, err := strconv.ParseUint(port, 10, 16)
	if err != nil {
		return fmt.Errorf("incorrect port %s: %w", port, err)
	}

	if portValue == 0 && !allowZeroPort {
		return fmt.Errorf("port %s is not allowed", port)
	}

	return nil
}

func encryptionMark(encrypted bool) string {
	if encrypted {
		return "[enc]"
	}

	return ""
}
