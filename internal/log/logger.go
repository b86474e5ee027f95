package log

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	Log *zap.Logger
}

// New builds a JSON zap logger named after the app, honoring level.
func New(name, level string) *Logger {
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "error", "fatal":
		level = strings.ToLower(level)
	default:
		level = "info"
	}

	stringCfg := fmt.Sprintf(`{
		"level": "%s",
		"encoding": "json",
		"outputPaths": ["stdout"],
		"errorOutputPaths": ["stderr"],
		"initialFields": {"app_name": "%s"},
		"encoderConfig": {
		  "messageKey": "message",
		  "levelKey": "level",
		  "timeKey": "timestamp",
		  "levelEncoder": "lowercase"
		}
	}`, level, name)

	var cfg zap.Config
	if err := json.Unmarshal([]byte(stringCfg), &cfg); err != nil {
		panic(fmt.Sprintf("FATAL ERROR: loading logger %s", err))
	}
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoder(func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.UTC().Format("2006-01-02T15:04:05Z0700"))
	})

	logger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("FATAL ERROR: loading logger %s", err))
	}

	return &Logger{Log: logger}
}

func (l *Logger) Logger() *zap.Logger {
	return l.Log
}
