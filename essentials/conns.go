// Package essentials contains a set of basic types which are shared
// between all packages of portseal.
package essentials

import "net"

// CloseableReader is a reader half of a connection which can be shut
// down independently.
type CloseableReader interface {
	CloseRead() error
}

// CloseableWriter is a writer half of a connection which can be shut
// down independently. Shutting it down sends FIN to the peer.
type CloseableWriter interface {
	CloseWrite() error
}

// Conn is an extension of net.Conn which allows to close read and write
// halves separately. *net.TCPConn satisfies this interface.
//
// Relay works with both directions of a connection independently so
// each direction has to be able to signal end of stream on its own.
type Conn interface {
	net.Conn
	CloseableReader
	CloseableWriter
}
