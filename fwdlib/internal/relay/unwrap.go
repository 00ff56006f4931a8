package relay

import "net"

// netConner is implemented by wrappers which can expose an underlying
// connection, like *tls.Conn.
type netConner interface {
	NetConn() net.Conn
}

// asTCPConn снимает обёртки до *net.TCPConn, чтобы выставить опции сокета.
func asTCPConn(conn net.Conn) (*net.TCPConn, bool) {
	for {
		switch value := conn.(type) {
		case *net.TCPConn:
			return value, true
		case netConner:
			conn = value.NetConn()
		default:
			return nil, false
		}
	}
}

// setTCPNoDelay отключает алгоритм Nagle: фреймы уходят сразу.
func setTCPNoDelay(conn net.Conn) {
	if tcpConn, ok := asTCPConn(conn); ok {
		_ = tcpConn.SetNoDelay(true)
	}
}
