package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/portseal/portseal/fwdlib"
)

type Optional struct {
	Enabled TypeBool `json:"enabled"`
}

// Forward is a single forwarding rule.
type Forward struct {
	Name             string       `json:"name"`
	LocalAddr        TypeHostPort `json:"local_addr"`
	RemoteAddr       TypeHostPort `json:"remote_addr"`
	LocalEncryption  TypeBool     `json:"local_encryption"`
	RemoteEncryption TypeBool     `json:"remote_encryption"`
	// AllowedNetworks: если задан, принимаются только клиенты из этих сетей.
	AllowedNetworks []TypeCIDR `json:"allowed_networks"`
	// RateLimit: новых соединений в секунду с одного IP. 0 = отключено.
	RateLimit      TypeRateLimit   `json:"rate_limit"`
	RateLimitBurst TypeConcurrency `json:"rate_limit_burst"`
}

type Config struct {
	Debug        TypeBool        `json:"debug"`
	Concurrency  TypeConcurrency `json:"concurrency"`
	StrictBind   TypeBool        `json:"strict_bind"`
	DrainTimeout TypeDuration    `json:"drain_timeout"`
	// Encryption: ключ и nonce AES-256-GCM. По умолчанию используются
	// встроенные значения, совместимые со всеми пирами.
	Encryption struct {
		Key    TypeHexBytes `json:"key"`
		Nonce  TypeHexBytes `json:"nonce"`
		Secret string       `json:"secret"`
	} `json:"encryption"`
	Network struct {
		DialTimeout       TypeDuration    `json:"dial_timeout"`
		HTTPTimeout       TypeDuration    `json:"http_timeout"`
		BufferSize        TypeBytes       `json:"buffer_size"`
		MaxFrameSize      TypeBytes       `json:"max_frame_size"`
		DNSMode           TypeDNSMode     `json:"dns_mode"`
		DOHIP             TypeIP          `json:"doh_ip"`
		CooldownThreshold TypeConcurrency `json:"cooldown_threshold"`
		CooldownTimeout   TypeDuration    `json:"cooldown_timeout"`
	} `json:"network"`
	Log struct {
		File       string          `json:"file"`
		MaxSize    TypeBytes       `json:"max_size"`
		MaxBackups TypeConcurrency `json:"max_backups"`
		Console    TypeBool        `json:"console"`
		// HashIPs: в логах вместо IP клиентов пишется их хэш.
		HashIPs TypeBool `json:"hash_ips"`
	} `json:"log"`
	Stats struct {
		StatsD struct {
			Optional

			Address      TypeHostPort        `json:"address"`
			MetricPrefix TypeMetricPrefix    `json:"metric_prefix"`
			TagFormat    TypeStatsdTagFormat `json:"tag_format"`
		} `json:"statsd"`
		Prometheus struct {
			Optional

			BindTo       TypeHostPort     `json:"bind_to"`
			HTTPPath     TypeHTTPPath     `json:"http_path"`
			MetricPrefix TypeMetricPrefix `json:"metric_prefix"`
		} `json:"prometheus"`
	} `json:"stats"`
	Forwards []Forward `json:"forwards"`
}

func (c *Config) Validate() error {
	if len(c.Forwards) == 0 {
		return errors.New("at least one forward rule is required")
	}

	for i, v := range c.Forwards {
		if v.LocalAddr.Get("") == "" {
			return fmt.Errorf("forwards[%d].local_addr is required", i)
		}

		if v.RemoteAddr.Get("") == "" {
			return fmt.Errorf("forwards[%d].remote_addr is required", i)
		}
	}

	if err := fwdlib.ValidateRules(c.Rules()); err != nil {
		return err //nolint: wrapcheck
	}

	if err := c.validateEncryption(); err != nil {
		return err
	}

	// Prometheus: bind_to обязателен если включён
	if c.Stats.Prometheus.Enabled.Get(false) && c.Stats.Prometheus.BindTo.Get("") == "" {
		return errors.New("stats.prometheus.bind_to is required when prometheus is enabled")
	}

	// StatsD: address обязателен если включён
	if c.Stats.StatsD.Enabled.Get(false) && c.Stats.StatsD.Address.Get("") == "" {
		return errors.New("stats.statsd.address is required when statsd is enabled")
	}

	return nil
}

func (c *Config) validateEncryption() error {
	enc := c.Encryption

	switch {
	case enc.Secret != "" && (!enc.Key.Empty() || !enc.Nonce.Empty()):
		return errors.New("encryption.secret cannot be used together with key and nonce")
	case enc.Key.Empty() != enc.Nonce.Empty():
		return errors.New("encryption.key and encryption.nonce should be set together")
	case !enc.Key.Empty() && len(enc.Key.Value) != fwdlib.KeySize:
		return fmt.Errorf("encryption.key should be %d bytes, got %d", fwdlib.KeySize, len(enc.Key.Value))
	case !enc.Nonce.Empty() && len(enc.Nonce.Value) != fwdlib.NonceSize:
		return fmt.Errorf("encryption.nonce should be %d bytes, got %d", fwdlib.NonceSize, len(enc.Nonce.Value))
	}

	return nil
}

// Rules converts forwards into rules of a forwarder. Allowlists are not
// set here: they are built by a caller.
func (c *Config) Rules() []fwdlib.Rule {
	rules := make([]fwdlib.Rule, 0, len(c.Forwards))

	for _, v := range c.Forwards {
		rules = append(rules, fwdlib.Rule{
			Name:               v.Name,
			LocalAddr:          v.LocalAddr.Get(""),
			RemoteAddr:         v.RemoteAddr.Get(""),
			LocalEncrypted:     v.LocalEncryption.Get(false),
			RemoteEncrypted:    v.RemoteEncryption.Get(false),
			RateLimitPerSecond: v.RateLimit.Get(0),
			RateLimitBurst:     int(v.RateLimitBurst.Get(0)),
		})
	}

	return rules
}

// Sealer builds an encryption context of encrypted sides.
func (c *Config) Sealer() (fwdlib.Sealer, error) {
	switch {
	case c.Encryption.Secret != "":
		return fwdlib.NewSealerFromSecret(c.Encryption.Secret) //nolint: wrapcheck
	case !c.Encryption.Key.Empty():
		return fwdlib.NewSealer(c.Encryption.Key.Value, c.Encryption.Nonce.Value) //nolint: wrapcheck
	}

	return fwdlib.NewDefaultSealer(), nil
}

func (c *Config) String() string {
	// Маскируем секрет для безопасного логирования. Key и nonce
	// маскируются своим типом.
	safe := *c
	if safe.Encryption.Secret != "" {
		safe.Encryption.Secret = "***"
	}

	buf := &bytes.Buffer{}
	encoder := json.NewEncoder(buf)

	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(safe); err != nil {
		return "{}"
	}

	return buf.String()
}

// unquote allows numbers to be written both as TOML numbers and strings.
func unquote(data []byte) string {
	if value, err := strconv.Unquote(string(data)); err == nil {
		return value
	}

	return string(data)
}
