package fwdlib

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"net"

	"github.com/portseal/portseal/essentials"
)

const streamIDLength = 16

type streamContext struct {
	context.Context

	ctxCancel  context.CancelFunc
	clientConn essentials.Conn
	rule       Rule
	streamID   string
	logger     Logger
}

func (s *streamContext) Close() {
	s.ctxCancel()
}

func (s *streamContext) ClientIP() net.IP {
	if addr, ok := s.clientConn.RemoteAddr().(*net.TCPAddr); ok {
		return addr.IP
	}

	return nil
}

func newStreamContext(ctx context.Context, logger Logger, rule Rule, clientConn essentials.Conn) *streamContext {
	ctx, cancel := context.WithCancel(ctx)
	streamID := generateStreamID()

	return &streamContext{
		Context:    ctx,
		ctxCancel:  cancel,
		clientConn: clientConn,
		rule:       rule,
		streamID:   streamID,
		logger:     logger.BindStr("stream-id", streamID),
	}
}

func generateStreamID() string {
	buf := make([]byte, streamIDLength)
	rand.Read(buf) //nolint: errcheck

	return base64.RawURLEncoding.EncodeToString(buf)
}
