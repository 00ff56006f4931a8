package stats

import (
	"fmt"
	"strings"
	"time"

	"github.com/portseal/portseal/events"
	"github.com/portseal/portseal/fwdlib"
	statsd "github.com/smira/go-statsd"
)

type statsdProcessor struct {
	streams map[string]*streamInfo
	client  *statsd.Client
}

func (s statsdProcessor) EventStart(evt fwdlib.EventStart) {
	info := acquireStreamInfo(evt.Rule, evt.RemoteIP)
	s.streams[evt.StreamID()] = info

	s.client.GaugeDelta(MetricClientConnections, 1, info.T(TagRule), info.T(TagIPFamily))
}

func (s statsdProcessor) EventConnectedToRemote(evt fwdlib.EventConnectedToRemote) {
	info, ok := s.streams[evt.StreamID()]
	if !ok {
		return
	}

	info.isConnected = true

	s.client.GaugeDelta(MetricRemoteConnections, 1, info.T(TagRule))
}

func (s statsdProcessor) EventTraffic(evt fwdlib.EventTraffic) {
	info, ok := s.streams[evt.StreamID()]
	if !ok {
		return
	}

	if info.markTraffic(evt.IsRead, evt.Traffic) {
		s.client.PrecisionTiming(MetricTTFB, info.firstByteTime.Sub(info.startTime), info.T(TagRule))
	}

	s.client.Incr(MetricTraffic, int64(evt.Traffic),
		info.T(TagRule),
		statsd.StringTag(TagDirection, getDirection(evt.IsRead)))
}

func (s statsdProcessor) EventFinish(evt fwdlib.EventFinish) {
	info, ok := s.streams[evt.StreamID()]
	if !ok {
		return
	}

	defer func() {
		delete(s.streams, evt.StreamID())
		releaseStreamInfo(info)
	}()

	s.client.PrecisionTiming(MetricSessionDuration, time.Since(info.startTime), info.T(TagRule))
	s.client.GaugeDelta(MetricClientConnections, -1, info.T(TagRule), info.T(TagIPFamily))

	if info.isConnected {
		s.client.GaugeDelta(MetricRemoteConnections, -1, info.T(TagRule))
	}
}

func (s statsdProcessor) EventDialFailed(evt fwdlib.EventDialFailed) {
	s.client.Incr(MetricDialFailures, 1, statsd.StringTag(TagRule, evt.Rule))
}

func (s statsdProcessor) EventFrameError(evt fwdlib.EventFrameError) {
	s.client.Incr(MetricFrameErrors, 1, statsd.StringTag(TagRule, evt.Rule))
}

func (s statsdProcessor) EventConcurrencyLimited(evt fwdlib.EventConcurrencyLimited) {
	s.client.Incr(MetricConcurrencyLimited, 1, statsd.StringTag(TagRule, evt.Rule))
}

func (s statsdProcessor) EventIPRejected(evt fwdlib.EventIPRejected) {
	s.client.Incr(MetricIPRejected, 1, statsd.StringTag(TagRule, evt.Rule))
}

func (s statsdProcessor) EventRateLimited(evt fwdlib.EventRateLimited) {
	s.client.Incr(MetricRateLimited, 1, statsd.StringTag(TagRule, evt.Rule))
}

func (s statsdProcessor) EventListenerStarted(evt fwdlib.EventListenerStarted) {
	s.client.Gauge(MetricListeners, 1, statsd.StringTag(TagRule, evt.Rule))
}

func (s statsdProcessor) EventListenerStopped(evt fwdlib.EventListenerStopped) {
	s.client.Gauge(MetricListeners, 0, statsd.StringTag(TagRule, evt.Rule))

	if evt.Failed {
		s.client.Incr(MetricListenerFailures, 1, statsd.StringTag(TagRule, evt.Rule))
	}
}

func (s statsdProcessor) Shutdown() {
	for k, v := range s.streams {
		releaseStreamInfo(v)
		delete(s.streams, k)
	}
}

// StatsdFactory is a factory of [events.Observer] which send information
// to StatsD.
//
// StatsD client is shared between observers: it has its own buffer and
// sends data in background.
type StatsdFactory struct {
	client *statsd.Client
}

// Make builds a new observer.
func (s StatsdFactory) Make() events.Observer {
	return statsdProcessor{
		streams: make(map[string]*streamInfo),
		client:  s.client,
	}
}

// Close flushes buffered metrics and stops a client.
func (s StatsdFactory) Close() error {
	return s.client.Close() //nolint: wrapcheck
}

// NewStatsd builds an events.ObserverFactory that sends events to
// StatsD. tagFormat is one of influxdb, datadog or graphite.
func NewStatsd(address string, logger fwdlib.Logger, metricPrefix, tagFormat string) (StatsdFactory, error) {
	options := []statsd.Option{
		statsd.Logger(logger),
	}

	if metricPrefix != "" {
		options = append(options, statsd.MetricPrefix(strings.TrimSuffix(metricPrefix, ".")+"."))
	}

	switch strings.ToLower(tagFormat) {
	case "influxdb":
		options = append(options, statsd.TagStyle(statsd.TagFormatInfluxDB))
	case "datadog":
		options = append(options, statsd.TagStyle(statsd.TagFormatDatadog))
	case "graphite":
		options = append(options, statsd.TagStyle(statsd.TagFormatGraphite))
	default:
		return StatsdFactory{}, fmt.Errorf("unknown tag format %s", tagFormat)
	}

	return StatsdFactory{
		client: statsd.NewClient(address, options...),
	}, nil
}
