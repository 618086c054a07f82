package utils

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	slogmulti "github.com/samber/slog-multi"
)

type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

type Logger struct {
	level      LogLevel
	logger     *slog.Logger
	closeFn    func() error
	RawBodyLog bool
}

// NewLogger writes text to stderr. When logFile is set, records are also
// written to it as JSON.
func NewLogger(level string, rawBodyLog bool, logFile string) *Logger {
	logLevel := parseLogLevel(level)
	opts := &slog.HandlerOptions{Level: toSlogLevel(logLevel)}
	stderrHandler := slog.NewTextHandler(os.Stderr, opts)

	l := &Logger{
		level:      logLevel,
		logger:     slog.New(stderrHandler),
		closeFn:    func() error { return nil },
		RawBodyLog: rawBodyLog,
	}
	if logFile == "" {
		return l
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		l.Error(nil, "Failed to open log file %s, using stderr only: %v", logFile, err)
		return l
	}

	l.logger = slog.New(slogmulti.Fanout(stderrHandler, slog.NewJSONHandler(file, opts)))
	l.closeFn = file.Close

	return l
}

// NewLoggerWithWriters fans out to a text writer and a JSON writer.
func NewLoggerWithWriters(text, json io.Writer, level string) *Logger {
	logLevel := parseLogLevel(level)
	opts := &slog.HandlerOptions{Level: toSlogLevel(logLevel)}

	return &Logger{
		level: logLevel,
		logger: slog.New(slogmulti.Fanout(
			slog.NewTextHandler(text, opts),
			slog.NewJSONHandler(json, opts),
		)),
		closeFn: func() error { return nil },
	}
}

func NewDiscardLogger() *Logger {
	return &Logger{
		level:   LevelInfo,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		closeFn: func() error { return nil },
	}
}

func parseLogLevel(level string) LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func toSlogLevel(level LogLevel) slog.Level {
	switch level {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *Logger) Close() error {
	return l.closeFn()
}

// Slog exposes the underlying structured logger.
func (l *Logger) Slog() *slog.Logger {
	return l.logger
}

func (l *Logger) log(level slog.Level, reqID *string, format string, v ...any) {
	ctx := context.Background()
	if !l.logger.Enabled(ctx, level) {
		return
	}

	msg := fmt.Sprintf(format, v...)
	if reqID != nil {
		l.logger.Log(ctx, level, msg, slog.String("reqid", *reqID))
		return
	}
	l.logger.Log(ctx, level, msg)
}

func (l *Logger) Debug(reqID *string, format string, v ...any) {
	l.log(slog.LevelDebug, reqID, format, v...)
}

func (l *Logger) Info(reqID *string, format string, v ...any) {
	l.log(slog.LevelInfo, reqID, format, v...)
}

func (l *Logger) Warn(reqID *string, format string, v ...any) {
	l.log(slog.LevelWarn, reqID, format, v...)
}

func (l *Logger) Error(reqID *string, format string, v ...any) {
	l.log(slog.LevelError, reqID, format, v...)
}

func (l *Logger) Fatal(reqID *string, format string, v ...any) {
	l.log(slog.LevelError, reqID, format, v...)
	_ = l.Close()
	os.Exit(1)
}
