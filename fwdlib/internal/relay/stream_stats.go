package relay

import (
	"sync/atomic"
	"time"
)

// StreamStats отслеживает статистику одного направления relay.
// Все операции атомарные: безопасно для concurrent использования.
type StreamStats struct {
	bytesTransferred atomic.Int64
	frames           atomic.Int64
	startTime        time.Time
}

// NewStreamStats создаёт новый трекер статистики.
func NewStreamStats() *StreamStats {
	return &StreamStats{
		startTime: time.Now(),
	}
}

// AddBytes accounts bytes written to a destination.
func (s *StreamStats) AddBytes(n int64) {
	s.bytesTransferred.Add(n)
}

// AddFrame accounts a frame which was either opened or sealed.
func (s *StreamStats) AddFrame() {
	s.frames.Add(1)
}

// GetTotalBytes возвращает общее количество переданных байт.
func (s *StreamStats) GetTotalBytes() int64 {
	return s.bytesTransferred.Load()
}

// GetFrames returns a number of processed frames.
func (s *StreamStats) GetFrames() int64 {
	return s.frames.Load()
}

// GetThroughput возвращает средний throughput в bytes/sec.
func (s *StreamStats) GetThroughput() int64 {
	elapsed := time.Since(s.startTime).Seconds()
	if elapsed <= 0 {
		return 0
	}

	return int64(float64(s.bytesTransferred.Load()) / elapsed)
}
