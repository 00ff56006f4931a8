package stats

import (
	"net"
	"sync"
	"time"

	statsd "github.com/smira/go-statsd"
)

type streamInfo struct {
	tags          map[string]string
	isConnected   bool
	startTime     time.Time // время начала сессии
	firstByteTime time.Time // время получения первого байта (для TTFB)
	hasFirstByte  bool
}

func (s streamInfo) T(key string) statsd.Tag {
	return statsd.StringTag(key, s.tags[key])
}

func (s *streamInfo) Reset() {
	s.isConnected = false
	s.hasFirstByte = false
	s.startTime = time.Time{}
	s.firstByteTime = time.Time{}

	for k := range s.tags {
		delete(s.tags, k)
	}
}

// markTraffic записывает время первого байта от remote. Возвращает true
// только для первого такого события.
func (s *streamInfo) markTraffic(isRead bool, traffic uint) bool {
	if s.hasFirstByte || !isRead || traffic == 0 {
		return false
	}

	s.firstByteTime = time.Now()
	s.hasFirstByte = true

	return true
}

var streamInfoPool = sync.Pool{
	New: func() any {
		return &streamInfo{
			tags: make(map[string]string),
		}
	},
}

func acquireStreamInfo(rule string, remoteIP net.IP) *streamInfo {
	info := streamInfoPool.Get().(*streamInfo) //nolint: forcetypeassert
	info.startTime = time.Now()
	info.tags[TagRule] = rule
	info.tags[TagIPFamily] = getIPFamily(remoteIP)

	return info
}

func releaseStreamInfo(info *streamInfo) {
	info.Reset()
	streamInfoPool.Put(info)
}

func getDirection(isRead bool) string {
	if isRead {
		return TagDirectionToClient
	}

	return TagDirectionFromClient
}

func getIPFamily(ip net.IP) string {
	if ip.To4() != nil {
		return TagIPFamilyIPv4
	}

	return TagIPFamilyIPv6
}
