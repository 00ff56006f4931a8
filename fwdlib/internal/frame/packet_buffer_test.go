package frame_test

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand"
	"testing"

	"github.com/portseal/portseal/fwdlib/internal/frame"
	"github.com/portseal/portseal/fwdlib/internal/sealing"
	"github.com/stretchr/testify/suite"
)

type PacketBufferTestSuite struct {
	suite.Suite

	ctx *sealing.Context
	buf *frame.PacketBuffer
}

func (suite *PacketBufferTestSuite) SetupSuite() {
	suite.ctx = sealing.NewDefault()
}

func (suite *PacketBufferTestSuite) SetupTest() {
	suite.buf = frame.NewPacketBuffer(0)
}

func (suite *PacketBufferTestSuite) makeFrame(payload []byte) []byte {
	data, err := suite.ctx.EncryptAndFrame(payload)
	suite.Require().NoError(err)

	return data
}

func (suite *PacketBufferTestSuite) TestEmpty() {
	payload, ok, err := suite.buf.TryReadFrame(suite.ctx)

	suite.NoError(err)
	suite.False(ok)
	suite.Nil(payload)
	suite.NoError(suite.buf.Finish())
}

func (suite *PacketBufferTestSuite) TestChunkingInvariance() {
	payload := make([]byte, 5000)
	rand.Read(payload) //nolint: errcheck

	data := suite.makeFrame(payload)
	rnd := mrand.New(mrand.NewSource(42)) //nolint: gosec

	for attempt := 0; attempt < 50; attempt++ {
		buf := frame.NewPacketBuffer(0)

		var collected [][]byte

		for rest := data; len(rest) > 0; {
			n := 1 + rnd.Intn(len(rest))
			buf.Push(rest[:n])
			rest = rest[n:]

			for {
				plaintext, ok, err := buf.TryReadFrame(suite.ctx)
				suite.Require().NoError(err)

				if !ok {
					break
				}

				collected = append(collected, plaintext)
			}
		}

		suite.Len(collected, 1)
		suite.Equal(payload, collected[0])
		suite.NoError(buf.Finish())
	}
}

func (suite *PacketBufferTestSuite) TestByteByByte() {
	data := suite.makeFrame([]byte("slow network"))

	for i := range data {
		_, ok, err := suite.buf.TryReadFrame(suite.ctx)
		suite.NoError(err)
		suite.False(ok)

		suite.buf.Push(data[i : i+1])
	}

	payload, ok, err := suite.buf.TryReadFrame(suite.ctx)
	suite.NoError(err)
	suite.True(ok)
	suite.Equal([]byte("slow network"), payload)
}

func (suite *PacketBufferTestSuite) TestManyFramesInOnePush() {
	messages := []string{"one", "two", "three", "", "five"}

	var data []byte
	for _, v := range messages {
		data = append(data, suite.makeFrame([]byte(v))...)
	}

	suite.buf.Push(data)

	for _, v := range messages {
		payload, ok, err := suite.buf.TryReadFrame(suite.ctx)
		suite.NoError(err)
		suite.True(ok)
		suite.Equal(v, string(payload))
	}

	_, ok, err := suite.buf.TryReadFrame(suite.ctx)
	suite.NoError(err)
	suite.False(ok)
	suite.Equal(0, suite.buf.Buffered())
}

func (suite *PacketBufferTestSuite) TestFramePlusFragment() {
	first := suite.makeFrame([]byte("first"))
	second := suite.makeFrame([]byte("second"))

	suite.buf.Push(append(first, second[:7]...))

	payload, ok, err := suite.buf.TryReadFrame(suite.ctx)
	suite.NoError(err)
	suite.True(ok)
	suite.Equal("first", string(payload))

	_, ok, err = suite.buf.TryReadFrame(suite.ctx)
	suite.NoError(err)
	suite.False(ok)
	suite.ErrorIs(suite.buf.Finish(), frame.ErrFrameTruncated)

	suite.buf.Push(second[7:])

	payload, ok, err = suite.buf.TryReadFrame(suite.ctx)
	suite.NoError(err)
	suite.True(ok)
	suite.Equal("second", string(payload))
	suite.NoError(suite.buf.Finish())
}

func (suite *PacketBufferTestSuite) TestTruncatedPayload() {
	data := suite.makeFrame([]byte("truncated frame"))

	suite.buf.Push(data[:len(data)-1])

	_, ok, err := suite.buf.TryReadFrame(suite.ctx)
	suite.NoError(err)
	suite.False(ok)

	suite.buf.Push(data[len(data)-1:])

	payload, ok, err := suite.buf.TryReadFrame(suite.ctx)
	suite.NoError(err)
	suite.True(ok)
	suite.Equal("truncated frame", string(payload))
}

func (suite *PacketBufferTestSuite) TestTamperedFrame() {
	data := suite.makeFrame([]byte("tampered"))
	data[len(data)-1] ^= 0x01

	suite.buf.Push(data)

	payload, ok, err := suite.buf.TryReadFrame(suite.ctx)
	suite.ErrorIs(err, sealing.ErrDecryption)
	suite.False(ok)
	suite.Nil(payload)
}

func (suite *PacketBufferTestSuite) TestTooLarge() {
	buf := frame.NewPacketBuffer(1024)
	header := make([]byte, sealing.HeaderSize)

	binary.BigEndian.PutUint32(header, 1025)
	buf.Push(header)

	_, ok, err := buf.TryReadFrame(suite.ctx)
	suite.ErrorIs(err, frame.ErrFrameTooLarge)
	suite.False(ok)
}

func (suite *PacketBufferTestSuite) TestTooSmall() {
	header := make([]byte, sealing.HeaderSize)

	binary.BigEndian.PutUint32(header, sealing.TagSize-1)
	suite.buf.Push(header)

	_, ok, err := suite.buf.TryReadFrame(suite.ctx)
	suite.ErrorIs(err, frame.ErrFrameTooSmall)
	suite.False(ok)
}

func (suite *PacketBufferTestSuite) TestLongStream() {
	for i := 0; i < 1000; i++ {
		suite.buf.Push(suite.makeFrame([]byte{byte(i)}))

		payload, ok, err := suite.buf.TryReadFrame(suite.ctx)
		suite.Require().NoError(err)
		suite.Require().True(ok)
		suite.Equal([]byte{byte(i)}, payload)
	}

	suite.Equal(0, suite.buf.Buffered())
}

func TestPacketBuffer(t *testing.T) {
	t.Parallel()
	suite.Run(t, &PacketBufferTestSuite{})
}
