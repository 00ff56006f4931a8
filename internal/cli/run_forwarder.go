package cli

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/portseal/portseal/events"
	"github.com/portseal/portseal/fwdlib"
	"github.com/portseal/portseal/internal/config"
	"github.com/portseal/portseal/internal/utils"
	"github.com/portseal/portseal/ipfilter"
	"github.com/portseal/portseal/logger"
	"github.com/portseal/portseal/network"
	"github.com/portseal/portseal/stats"
)

func makeLogger(conf *config.Config) (fwdlib.Logger, func() error, error) {
	log, closer, err := logger.Open(logger.Options{
		Debug:      conf.Debug.Get(false),
		Console:    conf.Log.Console.Get(false),
		File:       conf.Log.File,
		MaxSize:    uint64(conf.Log.MaxSize.Get(0)),
		MaxBackups: int(conf.Log.MaxBackups.Get(0)),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open logger: %w", err)
	}

	return log, closer.Close, nil
}

func makeNetwork(conf *config.Config, version string) (*network.Network, error) {
	baseDialer, err := network.NewDefaultDialer(conf.Network.DialTimeout.Get(network.DefaultTimeout))
	if err != nil {
		return nil, fmt.Errorf("cannot build a default dialer: %w", err)
	}

	dialer := network.NewCooldownDialer(baseDialer,
		conf.Network.CooldownThreshold.Get(network.DefaultCooldownThreshold),
		conf.Network.CooldownTimeout.Get(network.DefaultCooldownTimeout))

	return network.NewNetwork(dialer, network.Options{ //nolint: wrapcheck
		DNSMode:     conf.Network.DNSMode.Get(network.DNSModeSystem),
		DOHHostname: conf.Network.DOHIP.Get(net.ParseIP(network.DefaultDOHHostname)).String(),
		HTTPTimeout: conf.Network.HTTPTimeout.Get(network.DefaultHTTPTimeout),
		UserAgent:   "portseal/" + version,
	})
}

func makeRules(conf *config.Config) ([]fwdlib.Rule, error) {
	rules := conf.Rules()

	for i, forward := range conf.Forwards {
		if len(forward.AllowedNetworks) == 0 {
			continue
		}

		nets := make([]net.IPNet, 0, len(forward.AllowedNetworks))

		for _, v := range forward.AllowedNetworks {
			nets = append(nets, v.Value)
		}

		filter, err := ipfilter.NewFromNets(nets)
		if err != nil {
			return nil, fmt.Errorf("cannot build allowlist of %s: %w", forward.Name, err)
		}

		rules[i].Allowlist = filter
	}

	return rules, nil
}

// makeEventStream returns a stream and a function which stops exporters
// of statistics.
func makeEventStream(conf *config.Config, log fwdlib.Logger, version string) (events.EventStream, func(), error) {
	var (
		factories []events.ObserverFactory
		closers   []func() error
	)

	if conf.Stats.StatsD.Enabled.Get(false) {
		statsdFactory, err := stats.NewStatsd(
			conf.Stats.StatsD.Address.Get(""),
			log.Named("statsd"),
			conf.Stats.StatsD.MetricPrefix.Get(stats.DefaultMetricPrefix),
			conf.Stats.StatsD.TagFormat.Get(stats.DefaultStatsdTagFormat))
		if err != nil {
			return events.EventStream{}, nil, fmt.Errorf("cannot build statsd observer: %w", err)
		}

		factories = append(factories, statsdFactory.Make)
		closers = append(closers, statsdFactory.Close)
	}

	if conf.Stats.Prometheus.Enabled.Get(false) {
		prometheus := stats.NewPrometheus(
			conf.Stats.Prometheus.MetricPrefix.Get(stats.DefaultMetricPrefix),
			conf.Stats.Prometheus.HTTPPath.Get(stats.DefaultHTTPPath),
			version)

		listener, err := net.Listen("tcp", conf.Stats.Prometheus.BindTo.Get(""))
		if err != nil {
			return events.EventStream{}, nil, fmt.Errorf("cannot start a listener for prometheus: %w", err)
		}

		go prometheus.Serve(listener) //nolint: errcheck

		factories = append(factories, prometheus.Make)
		closers = append(closers, prometheus.Close, listener.Close)
	}

	if len(factories) == 0 {
		factories = append(factories, events.NewNoopObserver)
	}

	closeAll := func() {
		for _, v := range closers {
			if err := v(); err != nil {
				log.DebugError("cannot close stats exporter", err)
			}
		}
	}

	return events.NewEventStream(factories), closeAll, nil
}

func runForwarder(conf *config.Config, version string) error { //nolint: funlen,cyclop
	log, closeLog, err := makeLogger(conf)
	if err != nil {
		return err
	}

	defer closeLog() //nolint: errcheck

	log = log.BindStr("version", version)
	log.BindStr("config", conf.String()).Debug("configuration")

	ntw, err := makeNetwork(conf, version)
	if err != nil {
		return fmt.Errorf("cannot build network: %w", err)
	}

	defer ntw.Stop()

	eventStream, closeStats, err := makeEventStream(conf, log, version)
	if err != nil {
		return err
	}

	defer closeStats()
	defer eventStream.Shutdown()

	sealer, err := conf.Sealer()
	if err != nil {
		return fmt.Errorf("cannot build encryption context: %w", err)
	}

	rules, err := makeRules(conf)
	if err != nil {
		return err
	}

	forwarder, err := fwdlib.NewForwarder(fwdlib.ForwarderOpts{
		Network:       ntw,
		EventStream:   eventStream,
		Logger:        log.Named("forwarder"),
		Sealer:        sealer,
		Listen:        utils.NewListener,
		Concurrency:   conf.Concurrency.Get(fwdlib.DefaultConcurrency),
		DialTimeout:   conf.Network.DialTimeout.Get(fwdlib.DefaultDialTimeout),
		BufferSize:    conf.Network.BufferSize.Get(fwdlib.DefaultBufferSize),
		MaxFrameSize:  conf.Network.MaxFrameSize.Get(fwdlib.DefaultMaxFrameSize),
		StrictBind:    conf.StrictBind.Get(false),
		HashClientIPs: conf.Log.HashIPs.Get(false),
	})
	if err != nil {
		return fmt.Errorf("cannot create a forwarder: %w", err)
	}

	defer forwarder.Shutdown()

	shutdown := fwdlib.NewShutdown()
	runDone := make(chan struct{})
	signals := make(chan os.Signal, 1)

	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-signals:
			// повторный сигнал завершит процесс стандартным обработчиком
			signal.Stop(signals)
			log.Info("Shutdown signal has been received")

			// Send до подписки правил никого бы не остановил.
			select {
			case <-forwarder.Subscribed():
				shutdown.Send()
			case <-runDone:
			}
		case <-runDone:
			signal.Stop(signals)
		}
	}()

	log.BindInt("rules", len(rules)).Info("Forwarder has been started")

	runErr := forwarder.Run(rules, shutdown)

	close(runDone)

	if drainTimeout := conf.DrainTimeout.Get(0); drainTimeout > 0 {
		log.BindInt("connections", forwarder.ActiveConnections()).Info("Draining connections")

		drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)

		if err := forwarder.Drain(drainCtx); err != nil {
			log.WarningError("not all connections have been drained", err)
		}

		cancel()
	}

	if dropped := eventStream.Dropped(); dropped > 0 {
		log.BindInt("dropped", int(dropped)).Warning("Some traffic events were dropped, metrics are not exact")
	}

	log.Info("Forwarder has been stopped")

	if runErr != nil {
		return fmt.Errorf("some rules have failed: %w", runErr)
	}

	return nil
}
