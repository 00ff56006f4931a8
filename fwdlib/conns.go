package fwdlib

import (
	"context"
	"net"
	"sync/atomic"

	"github.com/portseal/portseal/essentials"
)

// Порог батчинга EventTraffic: событие отправляется не на каждый Read/Write,
// а после накопления этого количества байт.
const trafficFlushThreshold uint64 = 32 * 1024

type connTraffic struct {
	essentials.Conn

	streamID string
	stream   EventStream
	ctx      context.Context

	// Указатели: все копии connTraffic делят один accumulator.
	readAcc  *atomic.Uint64
	writeAcc *atomic.Uint64
}

func (c connTraffic) Read(b []byte) (int, error) {
	n, err := c.Conn.Read(b)

	if n > 0 {
		if accumulated := c.readAcc.Add(uint64(n)); accumulated >= trafficFlushThreshold {
			c.flush(c.readAcc, true)
		}
	}

	return n, err //nolint: wrapcheck
}

func (c connTraffic) Write(b []byte) (int, error) {
	n, err := c.Conn.Write(b)

	if n > 0 {
		if accumulated := c.writeAcc.Add(uint64(n)); accumulated >= trafficFlushThreshold {
			c.flush(c.writeAcc, false)
		}
	}

	return n, err //nolint: wrapcheck
}

// NetConn returns a wrapped connection.
func (c connTraffic) NetConn() net.Conn {
	return c.Conn
}

// FlushTraffic эмитит оставшийся накопленный трафик.
func (c connTraffic) FlushTraffic() {
	c.flush(c.readAcc, true)
	c.flush(c.writeAcc, false)
}

// Close сбрасывает накопленный трафик перед закрытием соединения.
// Relay может закрыть соединение дважды, второй flush ничего не отправит.
func (c connTraffic) Close() error {
	c.FlushTraffic()

	return c.Conn.Close() //nolint: wrapcheck
}

func (c connTraffic) flush(acc *atomic.Uint64, isRead bool) {
	if value := acc.Swap(0); value > 0 {
		c.stream.Send(c.ctx, NewEventTraffic(c.streamID, uint(value), isRead))
	}
}

func newConnTraffic(ctx context.Context, conn essentials.Conn, streamID string, stream EventStream) connTraffic {
	return connTraffic{
		Conn:     conn,
		streamID: streamID,
		stream:   stream,
		ctx:      ctx,
		readAcc:  &atomic.Uint64{},
		writeAcc: &atomic.Uint64{},
	}
}
