package accesslog

import (
	"io"

	"github.com/gitpulse-io/gitpulse/config"
	"github.com/rs/zerolog"
)

const timeFormat = "2006/01/02 15:04:05.000"

type AccessLogger interface {
	Log(entry *Entry)
}

type logger struct {
	l zerolog.Logger
}

// NewLogger builds an access logger in the given format: json writes one
// object per request, text writes console lines.
func NewLogger(format config.LogFormat, writer io.Writer) AccessLogger {
	zerolog.TimeFieldFormat = timeFormat
	zerolog.TimestampFieldName = "ts"

	if format == config.LogFormatText {
		writer = zerolog.ConsoleWriter{Out: writer, TimeFormat: timeFormat, NoColor: true}
	}
	return &logger{
		l: zerolog.New(writer).With().Str("name", "access").Logger(),
	}
}

func (l *logger) Log(entry *Entry) {
	l.l.Log().Timestamp().EmbedObject(entry).Send()
}
