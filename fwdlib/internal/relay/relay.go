package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/portseal/portseal/essentials"
)

// Options defines how a relay treats both sides of a connection.
type Options struct {
	// Sealer is required if any of sides is encrypted.
	Sealer Sealer

	// LocalEncrypted means that a client talks frames to us.
	LocalEncrypted bool

	// RemoteEncrypted means that a remote side expects frames from us.
	RemoteEncrypted bool

	// BufferSize is a size of a chunk read from a source at once.
	BufferSize int

	// MaxFrameSize limits a declared size of incoming frames.
	MaxFrameSize int
}

func (o Options) getBufferSize() int {
	if o.BufferSize <= 0 {
		return DefaultBufferSize
	}

	return o.BufferSize
}

func (o Options) valid() error {
	if (o.LocalEncrypted || o.RemoteEncrypted) && o.Sealer == nil {
		return errors.New("sealer is not defined for encrypted side")
	}

	return nil
}

// Направление передачи данных
type direction struct {
	name         string
	srcEncrypted bool
	dstEncrypted bool
}

// Relay pumps data between local and remote connections until both
// directions are finished or any of them fails. Both connections are
// closed on exit.
//
// End of stream in one direction does not stop another one: it is
// propagated as FIN to the destination. Any error tears down both
// directions: there is no way to recover a connection in the middle.
func Relay(ctx context.Context, log Logger, opts Options, localConn, remoteConn essentials.Conn) error {
	defer localConn.Close()
	defer remoteConn.Close()

	if err := opts.valid(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		<-ctx.Done()
		// Жёсткое закрытие: разблокирует Read в обоих pump.
		localConn.Close()  //nolint: errcheck
		remoteConn.Close() //nolint: errcheck
	}()

	setTCPNoDelay(localConn)
	setTCPNoDelay(remoteConn)
	setTCPUserTimeout(localConn, tcpUserTimeoutMs)
	setTCPUserTimeout(remoteConn, tcpUserTimeoutMs)
	setTCPQuickACK(localConn)
	setTCPQuickACK(remoteConn)

	var (
		relayErr error
		errOnce  sync.Once
		wg       sync.WaitGroup
	)

	fail := func(err error) {
		errOnce.Do(func() {
			relayErr = err

			cancel()
		})
	}

	upload := direction{
		name:         "local -> remote",
		srcEncrypted: opts.LocalEncrypted,
		dstEncrypted: opts.RemoteEncrypted,
	}
	download := direction{
		name:         "remote -> local",
		srcEncrypted: opts.RemoteEncrypted,
		dstEncrypted: opts.LocalEncrypted,
	}

	wg.Add(1)

	go func() {
		defer wg.Done()

		if err := pump(log, opts, remoteConn, localConn, upload); err != nil {
			fail(err)
		}
	}()

	if err := pump(log, opts, localConn, remoteConn, download); err != nil {
		fail(err)
	}

	wg.Wait()

	return relayErr
}

func pump(log Logger, opts Options, dst, src essentials.Conn, dir direction) error {
	defer src.CloseRead() //nolint: errcheck

	stats := NewStreamStats()
	tr := newTransformer(opts, dir.srcEncrypted, dir.dstEncrypted, stats)

	var err error

	if tr == nil {
		err = copyPlain(dst, src, opts.getBufferSize(), stats)
	} else {
		err = copyTransformed(dst, src, tr, opts.getBufferSize())
	}

	if err != nil {
		log.Printf("%s has been finished (written %d bytes, %d frames, %d B/s): %v",
			dir.name, stats.GetTotalBytes(), stats.GetFrames(), stats.GetThroughput(), err)

		return fmt.Errorf("%s: %w", dir.name, err)
	}

	// Graceful: отправляем FIN, второе направление продолжает работать.
	dst.CloseWrite() //nolint: errcheck

	log.Printf("%s has been finished because of EOF. Written %d bytes, %d frames, %d B/s",
		dir.name, stats.GetTotalBytes(), stats.GetFrames(), stats.GetThroughput())

	return nil
}

// copyPlain копирует данные без преобразований через io.CopyBuffer.
func copyPlain(dst, src essentials.Conn, bufferSize int, stats *StreamStats) error {
	buf := acquireCopyBuffer(bufferSize)
	defer releaseCopyBuffer(buf)

	n, err := io.CopyBuffer(dst, src, *buf)
	stats.AddBytes(n)

	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	return nil
}

func copyTransformed(dst, src essentials.Conn, tr transformer, bufferSize int) error {
	buf := acquireCopyBuffer(bufferSize)
	defer releaseCopyBuffer(buf)

	chunk := *buf

	for {
		n, err := src.Read(chunk)
		if n > 0 {
			if werr := tr.Write(dst, chunk[:n]); werr != nil {
				return werr
			}
		}

		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			return tr.Finish()
		default:
			return fmt.Errorf("%w: cannot read: %w", ErrIO, err)
		}
	}
}
