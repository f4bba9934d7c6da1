package debug

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level maps a severity to the zap level used when logging it.
func Level(s Severity) zapcore.Level {
	switch s {
	case SeverityHigh:
		return zapcore.ErrorLevel
	case SeverityMedium:
		return zapcore.WarnLevel
	case SeverityLow:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// Fields returns structured zap fields describing msg.
func Fields(msg Message) []zap.Field {
	return []zap.Field{
		zap.Stringer("source", msg.Source),
		zap.Stringer("type", msg.Type),
		zap.Stringer("severity", msg.Severity),
		zap.Uint32("id", msg.ID),
	}
}

// ZapCallback returns a Callback that forwards delivered messages to l.
func ZapCallback(l *zap.Logger) Callback {
	if l == nil {
		l = zap.NewNop()
	}
	return func(msg Message, _ any) {
		if ce := l.Check(Level(msg.Severity), msg.Text); ce != nil {
			ce.Write(Fields(msg)...)
		}
	}
}
