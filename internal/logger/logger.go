// Copyright 2015 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logger provides the module's structured, leveled, optionally
// file-rotated logger. It wraps log/slog with a severity ladder (TRACE
// below DEBUG, OFF above ERROR) and two wire formats ("text", "json"),
// and rotates its log file through gopkg.in/natefinch/lumberjack.v2 when
// configured with a file path.
package logger

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Severity level strings accepted by Configure/setLoggingLevel.
const (
	Off     = "OFF"
	Error   = "ERROR"
	Warning = "WARNING"
	Info    = "INFO"
	Debug   = "DEBUG"
	Trace   = "TRACE"
)

// Custom slog levels. Standard slog only spans Debug(-4)..Error(8); this
// module additionally needs a Trace level below Debug and an Off level
// above Error to fully silence the logger.
const (
	LevelTrace slog.Level = -8
	LevelDebug slog.Level = slog.LevelDebug
	LevelInfo  slog.Level = slog.LevelInfo
	LevelWarn  slog.Level = slog.LevelWarn
	LevelError slog.Level = slog.LevelError
	LevelOff   slog.Level = 12
)

// RotateConfig configures lumberjack's log-file rotation.
type RotateConfig struct {
	MaxFileSizeMB   int
	BackupFileCount int
	Compress        bool
}

// DefaultRotateConfig is used when Configure is called without rotation
// settings.
func DefaultRotateConfig() RotateConfig {
	return RotateConfig{MaxFileSizeMB: 512, BackupFileCount: 10, Compress: false}
}

// Config selects the logger's destination, wire format, and severity
// threshold.
type Config struct {
	// FilePath is the log file to write to and rotate. Empty means
	// stderr.
	FilePath string

	// Format is "text" or "json"; any other value (including empty)
	// behaves as "json".
	Format string

	// Severity is one of the level constants above.
	Severity string

	// MountName is prefixed to every message so multiple mounts sharing a
	// log sink stay distinguishable.
	MountName string

	Rotation RotateConfig
}

// loggerFactory owns the handler construction state so SetLogFormat can
// rebuild defaultLogger without callers re-supplying every setting.
type loggerFactory struct {
	file            *os.File
	sysWriter       io.Writer
	format          string
	level           string
	logRotateConfig RotateConfig
	prefix          string
	programLevel    *slog.LevelVar
}

func (f *loggerFactory) writer() io.Writer {
	if f.file != nil {
		return &lumberjack.Logger{
			Filename:   f.file.Name(),
			MaxSize:    f.logRotateConfig.MaxFileSizeMB,
			MaxBackups: f.logRotateConfig.BackupFileCount,
			Compress:   f.logRotateConfig.Compress,
		}
	}
	if f.sysWriter != nil {
		return f.sysWriter
	}
	return os.Stderr
}

// createJsonOrTextHandler builds the slog.Handler appropriate for f's
// current format, writing to w and gated at level, with every message
// prefixed by prefix.
func (f *loggerFactory) createJsonOrTextHandler(w io.Writer, level *slog.LevelVar, prefix string) slog.Handler {
	if f.format == "text" {
		return newTextHandler(w, level, prefix)
	}
	return newJSONHandler(w, level, prefix)
}

var (
	defaultLoggerFactory = &loggerFactory{
		format:          "json",
		level:           Info,
		logRotateConfig: DefaultRotateConfig(),
		programLevel:    func() *slog.LevelVar { v := new(slog.LevelVar); v.Set(LevelInfo); return v }(),
	}
	defaultLogger = slog.New(defaultLoggerFactory.createJsonOrTextHandler(os.Stderr, defaultLoggerFactory.programLevel, ""))
)

// setLoggingLevel maps level (one of the severity constants) onto
// programLevel's underlying slog.Level.
func setLoggingLevel(level string, programLevel *slog.LevelVar) {
	switch level {
	case Trace:
		programLevel.Set(LevelTrace)
	case Debug:
		programLevel.Set(LevelDebug)
	case Info:
		programLevel.Set(LevelInfo)
	case Warning:
		programLevel.Set(LevelWarn)
	case Error:
		programLevel.Set(LevelError)
	case Off:
		programLevel.Set(LevelOff)
	default:
		programLevel.Set(LevelInfo)
	}
}

// Configure (re)builds the default logger per cfg: opening/rotating
// cfg.FilePath when set, else writing to stderr.
func Configure(cfg Config) error {
	rotation := cfg.Rotation
	if rotation == (RotateConfig{}) {
		rotation = DefaultRotateConfig()
	}

	factory := &loggerFactory{
		format:          cfg.Format,
		level:           cfg.Severity,
		logRotateConfig: rotation,
		prefix:          prefixFor(cfg.MountName),
		programLevel:    new(slog.LevelVar),
	}

	if cfg.FilePath != "" {
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("logger: opening %q: %w", cfg.FilePath, err)
		}
		factory.file = f
	}

	setLoggingLevel(factory.level, factory.programLevel)
	defaultLoggerFactory = factory
	defaultLogger = slog.New(factory.createJsonOrTextHandler(factory.writer(), factory.programLevel, factory.prefix))
	return nil
}

// SetLogFormat switches the default logger's wire format without
// touching its destination or severity threshold.
func SetLogFormat(format string) {
	defaultLoggerFactory.format = format
	defaultLogger = slog.New(defaultLoggerFactory.createJsonOrTextHandler(
		defaultLoggerFactory.writer(), defaultLoggerFactory.programLevel, defaultLoggerFactory.prefix))
}

func prefixFor(mountName string) string {
	if mountName == "" {
		return ""
	}
	return mountName + ": "
}

func log_(ctx context.Context, level slog.Level, format string, v ...any) {
	if !defaultLogger.Enabled(ctx, level) {
		return
	}
	defaultLogger.Log(ctx, level, fmt.Sprintf(format, v...))
}

// Tracef logs at TRACE severity.
func Tracef(format string, v ...any) { log_(context.Background(), LevelTrace, format, v...) }

// Debugf logs at DEBUG severity.
func Debugf(format string, v ...any) { log_(context.Background(), LevelDebug, format, v...) }

// Infof logs at INFO severity.
func Infof(format string, v ...any) { log_(context.Background(), LevelInfo, format, v...) }

// Warnf logs at WARNING severity.
func Warnf(format string, v ...any) { log_(context.Background(), LevelWarn, format, v...) }

// Errorf logs at ERROR severity.
func Errorf(format string, v ...any) { log_(context.Background(), LevelError, format, v...) }

// legacyWriter adapts the default logger into an io.Writer that logs
// each write at a fixed level, for handing to APIs (like
// jacobsa/fuse.MountConfig's ErrorLogger/DebugLogger) that want a plain
// *log.Logger rather than a slog one.
type legacyWriter struct {
	level slog.Level
}

func (w legacyWriter) Write(p []byte) (int, error) {
	if defaultLogger.Enabled(context.Background(), w.level) {
		defaultLogger.Log(context.Background(), w.level, string(p))
	}
	return len(p), nil
}

// NewLegacyLogger returns a standard *log.Logger that forwards every
// write through the default slog logger at level, tagged with prefix.
func NewLegacyLogger(level slog.Level, prefix string) *log.Logger {
	return log.New(legacyWriter{level: level}, prefix, 0)
}
