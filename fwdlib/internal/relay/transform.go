package relay

import (
	"fmt"
	"io"

	"github.com/portseal/portseal/fwdlib/internal/frame"
)

// Sealer is an encryption context used by encrypted sides.
type Sealer interface {
	Decrypt(ciphertext []byte) ([]byte, error)
	EncryptAndFrame(plaintext []byte) ([]byte, error)
}

// transformer converts chunks read from a source into bytes written to a
// destination. It is owned by a single pump.
type transformer interface {
	// Write processes a chunk which was read from a source.
	Write(dst io.Writer, chunk []byte) error

	// Finish is called on orderly end of source stream.
	Finish() error
}

// sealTransformer: plaintext source, encrypted destination. Every chunk
// becomes a frame.
type sealTransformer struct {
	sealer Sealer
	stats  *StreamStats
}

func (s sealTransformer) Write(dst io.Writer, chunk []byte) error {
	data, err := s.sealer.EncryptAndFrame(chunk)
	if err != nil {
		return fmt.Errorf("cannot seal chunk: %w", err)
	}

	s.stats.AddFrame()

	return writeAll(dst, data, s.stats)
}

func (s sealTransformer) Finish() error {
	return nil
}

// openTransformer: encrypted source. Frames are reassembled, opened and
// either written as plaintext or sealed again for an encrypted
// destination.
type openTransformer struct {
	sealer   Sealer
	buffer   *frame.PacketBuffer
	stats    *StreamStats
	reframes bool
}

func (o openTransformer) Write(dst io.Writer, chunk []byte) error {
	o.buffer.Push(chunk)

	for {
		payload, ok, err := o.buffer.TryReadFrame(o.sealer)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrFrame, err)
		}

		if !ok {
			return nil
		}

		o.stats.AddFrame()

		if o.reframes {
			if payload, err = o.sealer.EncryptAndFrame(payload); err != nil {
				return fmt.Errorf("cannot seal payload: %w", err)
			}
		}

		if err := writeAll(dst, payload, o.stats); err != nil {
			return err
		}
	}
}

func (o openTransformer) Finish() error {
	if err := o.buffer.Finish(); err != nil {
		return fmt.Errorf("%w: %w", ErrFrame, err)
	}

	return nil
}

func writeAll(dst io.Writer, data []byte, stats *StreamStats) error {
	// net.Conn.Write пишет всё или возвращает ошибку
	n, err := dst.Write(data)
	stats.AddBytes(int64(n))

	if err != nil {
		return fmt.Errorf("%w: cannot write: %w", ErrIO, err)
	}

	return nil
}

func newTransformer(opts Options, srcEncrypted, dstEncrypted bool, stats *StreamStats) transformer {
	switch {
	case srcEncrypted:
		return openTransformer{
			sealer:   opts.Sealer,
			buffer:   frame.NewPacketBuffer(opts.MaxFrameSize),
			stats:    stats,
			reframes: dstEncrypted,
		}
	case dstEncrypted:
		return sealTransformer{
			sealer: opts.Sealer,
			stats:  stats,
		}
	}

	return nil
}
