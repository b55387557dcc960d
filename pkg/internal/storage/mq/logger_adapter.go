package mq

import (
	watermill "github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
)

// zerologAdapter 把应用的 zerolog 桥接到 watermill.LoggerAdapter，
// MQ 层的日志与其余组件走同一个输出.
type zerologAdapter struct {
	l *zerolog.Logger
}

func (z *zerologAdapter) emit(ev *zerolog.Event, msg string, fields watermill.LogFields) {
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}

	ev.Msg(msg)
}

func (z *zerologAdapter) Error(msg string, err error, fields watermill.LogFields) {
	z.emit(z.l.Error().Err(err), msg, fields)
}

func (z *zerologAdapter) Info(msg string, fields watermill.LogFields) {
	z.emit(z.l.Info(), msg, fields)
}

func (z *zerologAdapter) Debug(msg string, fields watermill.LogFields) {
	z.emit(z.l.Debug(), msg, fields)
}

func (z *zerologAdapter) Trace(msg string, fields watermill.LogFields) {
	z.emit(z.l.Trace(), msg, fields)
}

func (z *zerologAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	builder := z.l.With()
	for k, v := range fields {
		builder = builder.Interface(k, v)
	}

	logger := builder.Logger()

	return &zerologAdapter{l: &logger}
}
