package fwdlib

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/portseal/portseal/essentials"
	"github.com/portseal/portseal/fwdlib/internal/relay"
)

// Forwarder serves a set of forwarding rules.
//
// Connections accepted by rule listeners are served by a shared worker
// pool. Stopping listeners does not interrupt connections which are
// already relayed: they are tracked and can be awaited with Drain.
type Forwarder struct {
	ctx             context.Context
	ctxCancel       context.CancelFunc
	streamWaitGroup sync.WaitGroup
	workerPool      *ants.PoolWithFunc

	listenersMutex sync.RWMutex
	listeners      map[string]*RuleListener

	subscribed     chan struct{}
	subscribedOnce sync.Once

	sealer        Sealer
	network       Network
	eventStream   EventStream
	logger        Logger
	listen        ListenFunc
	dialTimeout   time.Duration
	bufferSize    int
	maxFrameSize  int
	strictBind    bool
	hashClientIPs bool
}

type acceptedConn struct {
	listener *RuleListener
	conn     essentials.Conn
}

// Listen binds a local address of the rule. A returned listener does not
// accept connections until Serve is called.
func (f *Forwarder) Listen(rule Rule) (*RuleListener, error) {
	if err := rule.Valid(); err != nil {
		return nil, err
	}

	listener, err := f.listen("tcp", rule.LocalAddr)
	if err != nil {
		return nil, fmt.Errorf("%w %s of rule %s: %w", ErrBind, rule.LocalAddr, rule.Name, err)
	}

	rl := newRuleListener(f, rule, listener)

	f.listenersMutex.Lock()
	f.listeners[rule.Name] = rl
	f.listenersMutex.Unlock()

	f.eventStream.Send(f.ctx, NewEventListenerStarted(rule.Name))
	rl.logger.BindStr("addr", listener.Addr().String()).Info("Listener has been started")

	return rl, nil
}

// ListenAddr returns an address the rule is bound to. It returns nil if a
// rule is not bound.
func (f *Forwarder) ListenAddr(name string) net.Addr {
	f.listenersMutex.RLock()
	defer f.listenersMutex.RUnlock()

	if rl, ok := f.listeners[name]; ok {
		return rl.Addr()
	}

	return nil
}

// Subscribed is closed when Run has subscribed every rule to shutdown.
// Shutdown sent after that reaches all rules, even those which are not
// bound yet.
func (f *Forwarder) Subscribed() <-chan struct{} {
	return f.subscribed
}

// Run serves all rules until shutdown is sent or every listener fails.
//
// A malformed rule set is rejected before anything is bound. Then all
// rules are subscribed to shutdown at once, bound in order and each is
// served by its own goroutine. Failures of a single rule (bind or accept)
// are logged and collected: other rules are not affected. If StrictBind is set, a failure
// to bind any rule is returned immediately and nothing is served.
//
// Returned error joins errors of all failed rules.
func (f *Forwarder) Run(rules []Rule, shutdown *Shutdown) error {
	if err := ValidateRules(rules); err != nil {
		return err
	}

	// Подписка до bind: сигнал, пришедший во время запуска, не потеряется.
	stops := make([]<-chan struct{}, len(rules))
	for idx := range rules {
		stops[idx] = shutdown.Subscribe()
	}

	f.subscribedOnce.Do(func() {
		close(f.subscribed)
	})

	if f.strictBind {
		return f.runStrict(rules, stops)
	}

	results := make([]error, len(rules))
	wg := &sync.WaitGroup{}

	for idx, rule := range rules {
		rl, err := f.Listen(rule)
		if err != nil {
			f.logger.BindStr("rule", rule.Name).WarningError("cannot start listener", err)
			f.eventStream.Send(f.ctx, NewEventListenerStopped(rule.Name, true))

			results[idx] = err

			continue
		}

		f.spawn(wg, rl, stops[idx], &results[idx])
	}

	wg.Wait()

	return errors.Join(results...)
}

func (f *Forwarder) runStrict(rules []Rule, stops []<-chan struct{}) error {
	listeners := make([]*RuleListener, 0, len(rules))

	for _, rule := range rules {
		rl, err := f.Listen(rule)
		if err != nil {
			for _, bound := range listeners {
				bound.Close() //nolint: errcheck
			}

			return err
		}

		listeners = append(listeners, rl)
	}

	results := make([]error, len(listeners))
	wg := &sync.WaitGroup{}

	for idx, rl := range listeners {
		f.spawn(wg, rl, stops[idx], &results[idx])
	}

	wg.Wait()

	return errors.Join(results...)
}

func (f *Forwarder) spawn(wg *sync.WaitGroup, rl *RuleListener, stop <-chan struct{}, result *error) {
	wg.Add(1)

	go func() {
		defer wg.Done()

		err := rl.Serve(stop)
		f.eventStream.Send(f.ctx, NewEventListenerStopped(rl.rule.Name, err != nil))

		if err != nil {
			rl.logger.WarningError("listener has failed", err)
		}

		*result = err
	}()
}

// ActiveConnections returns a number of connections which are relayed
// right now.
func (f *Forwarder) ActiveConnections() int {
	return f.workerPool.Running()
}

// Drain waits until all accepted connections are finished or ctx is
// done. It has to be called after Run returns: new connections must not
// be accepted while draining.
func (f *Forwarder) Drain(ctx context.Context) error {
	done := make(chan struct{})

	go func() {
		f.streamWaitGroup.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("connections are still active: %w", ctx.Err())
	}
}

// Shutdown hard-closes all relayed connections and waits until they are
// finished. Listeners have to be stopped before.
func (f *Forwarder) Shutdown() {
	f.ctxCancel()
	f.streamWaitGroup.Wait()
	f.workerPool.Release()

	f.listenersMutex.Lock()
	defer f.listenersMutex.Unlock()

	for _, rl := range f.listeners {
		rl.Close() //nolint: errcheck
	}
}

func (f *Forwarder) serveConn(accepted acceptedConn) {
	defer f.streamWaitGroup.Done()

	rule := accepted.listener.rule
	ctx := newStreamContext(f.ctx, accepted.listener.logger, rule, accepted.conn)
	defer ctx.Close()

	ctx.logger = ctx.logger.BindStr("client", f.clientIPForLogs(ctx.ClientIP()))

	f.eventStream.Send(ctx, NewEventStart(ctx.streamID, rule.Name, ctx.ClientIP()))
	ctx.logger.Info("Stream has been started")

	defer func() {
		f.eventStream.Send(ctx, NewEventFinish(ctx.streamID))
		ctx.logger.Info("Stream has been finished")
	}()

	remoteConn, err := f.dialRemote(ctx)
	if err != nil {
		accepted.conn.Close()
		f.eventStream.Send(ctx, NewEventDialFailed(ctx.streamID, rule.Name))
		ctx.logger.WarningError("cannot dial to remote address", err)

		return
	}

	f.eventStream.Send(ctx, NewEventConnectedToRemote(ctx.streamID, rule.Name, rule.RemoteAddr))

	err = relay.Relay(
		ctx,
		ctx.logger.Named("relay"),
		relay.Options{
			Sealer:          f.sealer,
			LocalEncrypted:  rule.LocalEncrypted,
			RemoteEncrypted: rule.RemoteEncrypted,
			BufferSize:      f.bufferSize,
			MaxFrameSize:    f.maxFrameSize,
		},
		accepted.conn,
		newConnTraffic(ctx, remoteConn, ctx.streamID, f.eventStream),
	)

	switch {
	case err == nil:
	case errors.Is(err, ErrFrame):
		f.eventStream.Send(ctx, NewEventFrameError(ctx.streamID, rule.Name))
		ctx.logger.WarningError("connection has been aborted", err)
	default:
		ctx.logger.InfoError("connection has been aborted", err)
	}
}

func (f *Forwarder) dialRemote(ctx *streamContext) (essentials.Conn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, f.dialTimeout)
	defer cancel()

	conn, err := f.network.DialContext(dialCtx, "tcp", ctx.rule.RemoteAddr)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrConnect, ctx.rule.RemoteAddr, err)
	}

	return conn, nil
}

// NewForwarder makes a new forwarder instance.
func NewForwarder(opts ForwarderOpts) (*Forwarder, error) {
	if err := opts.valid(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	forwarder := &Forwarder{
		ctx:           ctx,
		ctxCancel:     cancel,
		listeners:     map[string]*RuleListener{},
		subscribed:    make(chan struct{}),
		sealer:        opts.getSealer(),
		network:       opts.Network,
		eventStream:   opts.EventStream,
		logger:        opts.getLogger("forwarder"),
		listen:        opts.getListen(),
		dialTimeout:   opts.getDialTimeout(),
		bufferSize:    opts.getBufferSize(),
		maxFrameSize:  opts.getMaxFrameSize(),
		strictBind:    opts.StrictBind,
		hashClientIPs: opts.HashClientIPs,
	}

	pool, err := ants.NewPoolWithFunc(opts.getConcurrency(),
		func(arg interface{}) {
			forwarder.serveConn(arg.(acceptedConn)) //nolint: forcetypeassert
		},
		ants.WithLogger(opts.getLogger("ants")),
		ants.WithNonblocking(true))
	if err != nil {
		cancel()

		return nil, fmt.Errorf("cannot create worker pool: %w", err)
	}

	forwarder.workerPool = pool

	return forwarder, nil
}
