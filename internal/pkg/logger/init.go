package logger

import (
	"io"
	log "log/slog"
	"os"
	"strings"
)

var LogWriter io.Writer = os.Stdout

// InitLogger 初始化全局 slog，输出 JSON 并自动附带 trace_id
func InitLogger(level string) {
	h := log.NewJSONHandler(LogWriter, &log.HandlerOptions{Level: parseLevel(level)})
	log.SetDefault(log.New(&ContextHandler{h}))
}

func parseLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "debug":
		return log.LevelDebug
	case "warn":
		return log.LevelWarn
	case "error":
		return log.LevelError
	default:
		return log.LevelInfo
	}
}
