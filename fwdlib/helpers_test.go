package fwdlib_test

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/portseal/portseal/essentials"
	"github.com/portseal/portseal/fwdlib"
	"github.com/stretchr/testify/require"
)

const testTimeout = 5 * time.Second

type tcpNetwork struct {
	dialer net.Dialer
}

func (t *tcpNetwork) DialContext(ctx context.Context, network, address string) (essentials.Conn, error) {
	conn, err := t.dialer.DialContext(ctx, network, address)
	if err != nil {
		return nil, err //nolint: wrapcheck
	}

	return conn.(*net.TCPConn), nil //nolint: forcetypeassert
}

type ipFilterFunc func(net.IP) bool

func (f ipFilterFunc) Contains(ip net.IP) bool {
	return f(ip)
}

// remoteServer accepts connections of a remote side of a rule.
type remoteServer struct {
	listener net.Listener
	conns    chan net.Conn
}

func (r *remoteServer) Addr() string {
	return r.listener.Addr().String()
}

func (r *remoteServer) Next(t *testing.T) net.Conn {
	t.Helper()

	select {
	case conn := <-r.conns:
		t.Cleanup(func() { conn.Close() })

		return conn
	case <-time.After(testTimeout):
		t.Fatal("remote has not received a connection")
	}

	return nil
}

func (r *remoteServer) Close() {
	r.listener.Close()
}

func newRemoteServer(t *testing.T) *remoteServer {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	rv := &remoteServer{
		listener: listener,
		conns:    make(chan net.Conn, 16),
	}

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}

			rv.conns <- conn
		}
	}()

	t.Cleanup(rv.Close)

	return rv
}

func readFrame(conn net.Conn, sealer fwdlib.Sealer) ([]byte, error) {
	conn.SetReadDeadline(time.Now().Add(testTimeout)) //nolint: errcheck

	header := make([]byte, 4)
	if _, err := io.ReadFull(conn, header); err != nil {
		return nil, fmt.Errorf("cannot read header: %w", err)
	}

	body := make([]byte, binary.BigEndian.Uint32(header))
	if _, err := io.ReadFull(conn, body); err != nil {
		return nil, fmt.Errorf("cannot read body: %w", err)
	}

	return sealer.Decrypt(body) //nolint: wrapcheck
}

func readExactly(conn net.Conn, size int) ([]byte, error) {
	conn.SetReadDeadline(time.Now().Add(testTimeout)) //nolint: errcheck

	buf := make([]byte, size)
	_, err := io.ReadFull(conn, buf)

	return buf, err //nolint: wrapcheck
}

// waitClosed reads until a peer closes a connection.
func waitClosed(conn net.Conn) ([]byte, error) {
	conn.SetReadDeadline(time.Now().Add(testTimeout)) //nolint: errcheck

	data, err := io.ReadAll(conn)
	if isReset(err) {
		err = nil
	}

	return data, err //nolint: wrapcheck
}

func isReset(err error) bool {
	var opErr *net.OpError

	return errors.As(err, &opErr) && !opErr.Timeout()
}

// readPayload reads frames until size bytes of plaintext are collected.
func readPayload(conn net.Conn, sealer fwdlib.Sealer, size int) ([]byte, error) {
	rv := []byte{}

	for len(rv) < size {
		payload, err := readFrame(conn, sealer)
		if err != nil {
			return rv, err
		}

		rv = append(rv, payload...)
	}

	return rv, nil
}

func isEvent[T fwdlib.Event](evt fwdlib.Event) bool {
	_, ok := evt.(T)

	return ok
}

// openFrames decrypts a stream of complete frames.
func openFrames(sealer fwdlib.Sealer, data []byte) ([]byte, error) {
	rv := []byte{}

	for len(data) >= 4 {
		size := int(binary.BigEndian.Uint32(data))
		if len(data) < 4+size {
			return nil, io.ErrUnexpectedEOF
		}

		payload, err := sealer.Decrypt(data[4 : 4+size])
		if err != nil {
			return nil, err //nolint: wrapcheck
		}

		rv = append(rv, payload...)
		data = data[4+size:]
	}

	if len(data) > 0 {
		return nil, io.ErrUnexpectedEOF
	}

	return rv, nil
}

// eventRecorder keeps every event sent to it.
type eventRecorder struct {
	mutex  sync.Mutex
	events []fwdlib.Event
}

func (e *eventRecorder) Send(_ context.Context, evt fwdlib.Event) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	e.events = append(e.events, evt)
}

// Count returns a number of recorded events which match a predicate.
func (e *eventRecorder) Count(match func(fwdlib.Event) bool) int {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	count := 0

	for _, evt := range e.events {
		if match(evt) {
			count++
		}
	}

	return count
}
