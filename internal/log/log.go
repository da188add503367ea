// Package log routes pion/logging output through logrus.
package log

import (
	"io"
	"os"

	"github.com/pion/logging"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Config struct {
	Level  string     `mapstructure:"level"`
	Format string     `mapstructure:"format"` // text | json
	File   FileConfig `mapstructure:"file"`
}

// FileConfig enables a rotated log file next to the console output.
type FileConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// LoggerFactory implements logging.LoggerFactory. Every scope shares one
// logrus logger and is tagged with a "scope" field.
type LoggerFactory struct {
	logger *logrus.Logger
	file   *lumberjack.Logger
}

var _ logging.LoggerFactory = (*LoggerFactory)(nil)

// NewLoggerFactory writes to console, plus the rotated file when enabled.
// A nil console means os.Stderr.
func NewLoggerFactory(cfg Config, console io.Writer) *LoggerFactory {
	if console == nil {
		console = os.Stderr
	}

	l := logrus.New()
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if cfg.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	}

	f := &LoggerFactory{logger: l}
	if cfg.File.Enabled {
		f.file = &lumberjack.Logger{
			Filename:   cfg.File.Path,
			MaxSize:    cfg.File.MaxSizeMB,
			MaxBackups: cfg.File.MaxBackups,
			MaxAge:     cfg.File.MaxAgeDays,
			Compress:   cfg.File.Compress,
		}
		l.SetOutput(io.MultiWriter(console, f.file))
	} else {
		l.SetOutput(console)
	}
	return f
}

func (f *LoggerFactory) NewLogger(scope string) logging.LeveledLogger {
	return &logrusAdapter{entry: f.logger.WithField("scope", scope)}
}

// Close releases the log file, if any.
func (f *LoggerFactory) Close() error {
	if f == nil || f.file == nil {
		return nil
	}
	return f.file.Close()
}

type logrusAdapter struct {
	entry *logrus.Entry
}

func (l *logrusAdapter) Trace(msg string)                          { l.entry.Trace(msg) }
func (l *logrusAdapter) Tracef(format string, args ...interface{}) { l.entry.Tracef(format, args...) }

func (l *logrusAdapter) Debug(msg string)                          { l.entry.Debug(msg) }
func (l *logrusAdapter) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }

func (l *logrusAdapter) Info(msg string)                          { l.entry.Info(msg) }
func (l *logrusAdapter) Infof(format string, args ...interface{}) { l.entry.Infof(format, args...) }

func (l *logrusAdapter) Warn(msg string)                          { l.entry.Warn(msg) }
func (l *logrusAdapter) Warnf(format string, args ...interface{}) { l.entry.Warnf(format, args...) }

func (l *logrusAdapter) Error(msg string)                          { l.entry.Error(msg) }
func (l *logrusAdapter) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }
