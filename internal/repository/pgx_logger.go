package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
)

// pgxLogger forwards pgx trace events to zerolog under component=pgx.
type pgxLogger struct {
	logger zerolog.Logger
}

func newPgxLogger(logger zerolog.Logger) *pgxLogger {
	return &pgxLogger{logger: logger.With().Str("module", "repository").Str("component", "pgx").Logger()}
}

func (l *pgxLogger) event(level tracelog.LogLevel) *zerolog.Event {
	switch level {
	case tracelog.LogLevelTrace:
		return l.logger.Trace()
	case tracelog.LogLevelDebug:
		return l.logger.Debug()
	case tracelog.LogLevelInfo:
		return l.logger.Info()
	case tracelog.LogLevelWarn:
		return l.logger.Warn()
	case tracelog.LogLevelError:
		return l.logger.Error()
	}
	return l.logger.Info().Str("pgx_log_level", level.String())
}

// Log implements tracelog.Logger. The statement, its arguments and its duration get
// stable field names (sql, args, took); the rest of data is copied as-is.
func (l *pgxLogger) Log(_ context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
	if level == tracelog.LogLevelNone {
		return
	}
	ev := l.event(level)
	rest := make(map[string]any, len(data))
	for k, v := range data {
		switch k {
		case "sql":
			if s, ok := v.(string); ok {
				ev = ev.Str("sql", s)
				continue
			}
		case "args":
			ev = ev.Interface("args", v)
			continue
		case "time":
			if d, ok := v.(time.Duration); ok {
				ev = ev.Dur("took", d)
				continue
			}
		}
		rest[k] = v
	}
	if len(rest) > 0 {
		ev = ev.Fields(rest)
	}
	ev.Msg(msg)
}
