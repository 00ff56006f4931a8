package logger

import (
	"fmt"
	"strings"

	"github.com/portseal/portseal/fwdlib"
	"github.com/rs/zerolog"
)

type zeroLogger struct {
	name string
	log  zerolog.Logger
}

func (z zeroLogger) Named(name string) fwdlib.Logger {
	newName := name
	if z.name != "" {
		newName = z.name + "." + name
	}

	return zeroLogger{
		name: newName,
		log:  z.log,
	}
}

func (z zeroLogger) BindInt(name string, value int) fwdlib.Logger {
	return zeroLogger{
		name: z.name,
		log:  z.log.With().Int(name, value).Logger(),
	}
}

func (z zeroLogger) BindStr(name, value string) fwdlib.Logger {
	return zeroLogger{
		name: z.name,
		log:  z.log.With().Str(name, value).Logger(),
	}
}

// Printf используется внешними библиотеками (ants), пишем на уровне debug.
func (z zeroLogger) Printf(format string, args ...interface{}) {
	z.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (z zeroLogger) Info(msg string) {
	z.InfoError(msg, nil)
}

func (z zeroLogger) Warning(msg string) {
	z.WarningError(msg, nil)
}

func (z zeroLogger) Debug(msg string) {
	z.DebugError(msg, nil)
}

func (z zeroLogger) InfoError(msg string, err error) {
	z.emitLog(z.log.Info(), msg, err)
}

func (z zeroLogger) WarningError(msg string, err error) {
	z.emitLog(z.log.Warn(), msg, err)
}

func (z zeroLogger) DebugError(msg string, err error) {
	z.emitLog(z.log.Debug(), msg, err)
}

func (z zeroLogger) emitLog(evt *zerolog.Event, msg string, err error) {
	if z.name != "" {
		evt = evt.Str("logger", z.name)
	}

	if err != nil {
		evt = evt.Err(err)
	}

	evt.Msg(msg)
}

// NewZeroLogger returns a logger which uses a given zerolog instance.
func NewZeroLogger(log zerolog.Logger) fwdlib.Logger {
	return zeroLogger{
		log: log,
	}
}
