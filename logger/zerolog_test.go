package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/portseal/portseal/logger"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
)

type ZeroLoggerTestSuite struct {
	suite.Suite

	buf *bytes.Buffer
}

func (suite *ZeroLoggerTestSuite) SetupTest() {
	suite.buf = &bytes.Buffer{}
}

func (suite *ZeroLoggerTestSuite) lastRecord() map[string]interface{} {
	lines := strings.Split(strings.TrimSpace(suite.buf.String()), "\n")
	suite.NotEmpty(lines)

	record := map[string]interface{}{}
	suite.NoError(json.Unmarshal([]byte(lines[len(lines)-1]), &record))

	return record
}

func (suite *ZeroLoggerTestSuite) TestNamed() {
	log := logger.NewZeroLogger(zerolog.New(suite.buf)).Named("forwarder").Named("relay")

	log.Info("hello")

	record := suite.lastRecord()
	suite.Equal("forwarder.relay", record["logger"])
	suite.Equal("hello", record["message"])
	suite.Equal("info", record["level"])
}

func (suite *ZeroLoggerTestSuite) TestBind() {
	log := logger.NewZeroLogger(zerolog.New(suite.buf)).
		BindStr("rule", "ssh").
		BindInt("port", 2222)

	log.Warning("bound")

	record := suite.lastRecord()
	suite.Equal("ssh", record["rule"])
	suite.EqualValues(2222, record["port"])
	suite.Equal("warn", record["level"])
}

func (suite *ZeroLoggerTestSuite) TestBindDoesNotLeak() {
	base := logger.NewZeroLogger(zerolog.New(suite.buf))
	base.BindStr("rule", "ssh")

	base.Info("plain")

	_, ok := suite.lastRecord()["rule"]
	suite.False(ok)
}

func (suite *ZeroLoggerTestSuite) TestError() {
	log := logger.NewZeroLogger(zerolog.New(suite.buf))

	log.WarningError("failed", errors.New("boom"))

	record := suite.lastRecord()
	suite.Equal("boom", record["error"])
	suite.Equal("failed", record["message"])
}

func (suite *ZeroLoggerTestSuite) TestDebugLevelFilter() {
	log := logger.NewZeroLogger(zerolog.New(suite.buf).Level(zerolog.InfoLevel))

	log.Debug("hidden")
	log.Printf("hidden too %d", 1)

	suite.Empty(suite.buf.String())
}

func (suite *ZeroLoggerTestSuite) TestPrintf() {
	log := logger.NewZeroLogger(zerolog.New(suite.buf).Level(zerolog.DebugLevel))

	log.Printf("worker %d exited\n", 3)

	record := suite.lastRecord()
	suite.Equal("worker 3 exited", record["message"])
	suite.Equal("debug", record["level"])
}

func TestZeroLogger(t *testing.T) {
	t.Parallel()
	suite.Run(t, &ZeroLoggerTestSuite{})
}
