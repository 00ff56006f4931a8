// Package frame reassembles length-prefixed encrypted frames from a
// stream of bytes.
//
// A byte stream has no message boundaries and a transport delivers data
// in chunks which have nothing in common with frames. PacketBuffer
// accumulates these chunks and hands out complete frames only.
package frame

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/portseal/portseal/fwdlib/internal/sealing"
)

// DefaultMaxFrameSize limits a declared length of a single frame.
const DefaultMaxFrameSize = 16 * 1024 * 1024

var (
	ErrFrameTooLarge  = errors.New("frame is too large")
	ErrFrameTooSmall  = errors.New("frame is smaller than authentication tag")
	ErrFrameTruncated = errors.New("stream ends in the middle of a frame")
)

// Opener is something which can authenticate and decrypt a frame payload.
type Opener interface {
	Decrypt(ciphertext []byte) ([]byte, error)
}

// PacketBuffer holds zero or more complete frames followed by at most one
// partial frame. It is not safe for concurrent use: each direction of a
// relay owns its own buffer.
type PacketBuffer struct {
	data         []byte
	offset       int
	maxFrameSize int
}

// Push appends a chunk read from a stream. It does no parsing.
func (p *PacketBuffer) Push(chunk []byte) {
	if p.offset > 0 && p.offset >= len(p.data)/2 { //nolint: gomnd
		// компактим, чтобы буфер не рос бесконечно на длинных потоках
		p.data = p.data[:copy(p.data, p.data[p.offset:])]
		p.offset = 0
	}

	p.data = append(p.data, chunk...)
}

// Buffered returns a number of bytes which are not consumed yet.
func (p *PacketBuffer) Buffered() int {
	return len(p.data) - p.offset
}

// TryReadFrame extracts the next complete frame and returns its decrypted
// payload. If there is no complete frame yet, ok is false and err is nil.
//
// A caller has to repeat the call until ok is false: a single read may
// bring several frames. Any error is terminal for the stream, there is no
// way to resynchronize because the length field is the only delimiter.
func (p *PacketBuffer) TryReadFrame(opener Opener) (payload []byte, ok bool, err error) {
	pending := p.data[p.offset:]

	if len(pending) < sealing.HeaderSize {
		return nil, false, nil
	}

	size := binary.BigEndian.Uint32(pending[:sealing.HeaderSize])

	switch {
	case uint64(size) > uint64(p.getMaxFrameSize()):
		return nil, false, fmt.Errorf("%w: %d bytes declared, %d allowed", ErrFrameTooLarge, size, p.getMaxFrameSize())
	case size < sealing.TagSize:
		return nil, false, fmt.Errorf("%w: %d bytes declared", ErrFrameTooSmall, size)
	}

	total := sealing.HeaderSize + int(size)
	if len(pending) < total {
		return nil, false, nil
	}

	p.offset += total

	if p.offset == len(p.data) {
		p.data = p.data[:0]
		p.offset = 0
	}

	payload, err = opener.Decrypt(pending[sealing.HeaderSize:total])
	if err != nil {
		return nil, false, err //nolint: wrapcheck
	}

	return payload, true, nil
}

// Finish checks that a stream has ended on a frame boundary.
func (p *PacketBuffer) Finish() error {
	if rest := p.Buffered(); rest > 0 {
		return fmt.Errorf("%w: %d bytes left", ErrFrameTruncated, rest)
	}

	return nil
}

func (p *PacketBuffer) getMaxFrameSize() int {
	if p.maxFrameSize <= 0 {
		return DefaultMaxFrameSize
	}

	return p.maxFrameSize
}

// NewPacketBuffer builds an empty buffer. Frames with a declared length
// larger than maxFrameSize are rejected; 0 means DefaultMaxFrameSize.
func NewPacketBuffer(maxFrameSize int) *PacketBuffer {
	return &PacketBuffer{
		maxFrameSize: maxFrameSize,
	}
}
