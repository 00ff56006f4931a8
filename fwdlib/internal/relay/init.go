package relay

import "errors"

const (
	// DefaultBufferSize is a size of a chunk read from a source at once.
	// Маленький буфер: каждый прочитанный кусок шифрованной стороны
	// становится отдельным фреймом, 4KB держит фреймы короткими.
	DefaultBufferSize = 4096

	// maxPooledBufferSize: буферы больше этого размера не возвращаются в пул.
	maxPooledBufferSize = 262144

	// tcpUserTimeoutMs closes a connection if peer does not ACK our data
	// for this time.
	tcpUserTimeoutMs = 30000
)

var (
	// ErrIO is returned when read or write on any of sockets fails.
	ErrIO = errors.New("relay i/o failure")

	// ErrFrame is returned when an encrypted side sends a frame which
	// cannot be parsed or authenticated.
	ErrFrame = errors.New("invalid frame")
)

type Logger interface {
	Printf(msg string, args ...interface{})
}
