package relay

import (
	"bytes"
	"fmt"
	"io"
	"testing"

	"github.com/portseal/portseal/fwdlib/internal/sealing"
)

func formatSize(bytes int) string {
	switch {
	case bytes >= 1024*1024:
		return fmt.Sprintf("%dMB", bytes/(1024*1024))
	case bytes >= 1024:
		return fmt.Sprintf("%dKB", bytes/1024)
	default:
		return fmt.Sprintf("%dB", bytes)
	}
}

// BenchmarkSealTransformer измеряет стоимость шифрования plaintext -> frames.
func BenchmarkSealTransformer(b *testing.B) {
	sealer := sealing.NewDefault()

	for _, size := range []int{1024, DefaultBufferSize, 64 * 1024} {
		data := bytes.Repeat([]byte{0xaa}, size)

		b.Run(formatSize(size), func(b *testing.B) {
			tr := sealTransformer{sealer: sealer, stats: NewStreamStats()}

			b.SetBytes(int64(size))
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				_ = tr.Write(io.Discard, data)
			}
		})
	}
}

// BenchmarkOpenTransformer измеряет reassemble + decrypt + reframe.
func BenchmarkOpenTransformer(b *testing.B) {
	sealer := sealing.NewDefault()

	for _, size := range []int{1024, DefaultBufferSize, 64 * 1024} {
		framed, _ := sealer.EncryptAndFrame(bytes.Repeat([]byte{0x55}, size))

		b.Run(formatSize(size), func(b *testing.B) {
			tr := newTransformer(Options{Sealer: sealer}, true, true, NewStreamStats())

			b.SetBytes(int64(size))
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				_ = tr.Write(io.Discard, framed)
			}
		})
	}
}
