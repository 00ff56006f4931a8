// Package stats has implementations of [events.ObserverFactory] which
// export counters of forwarding rules to monitoring systems.
//
// There are 2 of them: Prometheus (an HTTP endpoint with scrape data) and
// StatsD (UDP packets to an aggregator).
package stats

const (
	// DefaultMetricPrefix is a prefix of every metric.
	DefaultMetricPrefix = "portseal"

	// DefaultStatsdTagFormat is a default format of StatsD tags.
	DefaultStatsdTagFormat = "influxdb"

	// DefaultHTTPPath is a default path of Prometheus scrape endpoint.
	DefaultHTTPPath = "/metrics"
)

const (
	// MetricClientConnections is a gauge of client connections which are
	// processed now.
	MetricClientConnections = "client_connections"

	// MetricRemoteConnections is a gauge of established connections to
	// remote addresses.
	MetricRemoteConnections = "remote_connections"

	// MetricTraffic is a counter of bytes relayed between client and remote.
	MetricTraffic = "traffic"

	// MetricDialFailures is a counter of failed attempts to connect to
	// remote addresses.
	MetricDialFailures = "dial_failures"

	// MetricFrameErrors is a counter of connections aborted because of
	// malformed or tampered encrypted frames.
	MetricFrameErrors = "frame_errors"

	// MetricConcurrencyLimited is a counter of connections rejected by a
	// worker pool.
	MetricConcurrencyLimited = "concurrency_limited"

	// MetricIPRejected is a counter of connections from IP addresses out
	// of allowed networks.
	MetricIPRejected = "ip_rejected"

	// MetricRateLimited is a counter of connections rejected by per-IP
	// rate limiter.
	MetricRateLimited = "rate_limited"

	// MetricListeners is a gauge of serving rule listeners.
	MetricListeners = "listeners"

	// MetricListenerFailures is a counter of rule listeners which stopped
	// with error.
	MetricListenerFailures = "listener_failures"

	// MetricSessionDuration is a duration of relayed sessions.
	MetricSessionDuration = "session_duration"

	// MetricTTFB is a time between accepted connection and the first byte
	// received from remote address.
	MetricTTFB = "time_to_first_byte"

	// TagRule is a name of a forwarding rule.
	TagRule = "rule"

	// TagIPFamily is a family of client IP address.
	TagIPFamily = "ip_family"

	// TagIPFamilyIPv4 is a tag value for IPv4 clients.
	TagIPFamilyIPv4 = "ipv4"

	// TagIPFamilyIPv6 is a tag value for IPv6 clients.
	TagIPFamilyIPv6 = "ipv6"

	// TagDirection is a direction of traffic.
	TagDirection = "direction"

	// TagDirectionToClient means traffic from remote address to client.
	TagDirectionToClient = "to_client"

	// TagDirectionFromClient means traffic from client to remote address.
	TagDirectionFromClient = "from_client"
)
