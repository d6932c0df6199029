// internal/infra/logger/logger.go
package logger

import (
	"fmt"
	"io"
	"os"
	"visa_slot_watcher/internal/infra/config"

	"github.com/sirupsen/logrus"
)

// Log is the global logger instance
var Log = logrus.New()

// Init configures the global logger from the log section of the config.
// With a log dir set, every line is mirrored to stdout and to the daily file;
// the returned closer releases that file.
func Init(cfg config.LogConfig) (io.Closer, error) {
	var closer io.Closer = nopCloser{}
	Log.SetOutput(os.Stdout) // Default output

	if cfg.Dir != "" {
		daily, err := NewDailyFile(cfg.Dir)
		if err != nil {
			return nil, fmt.Errorf("failed to open daily log file: %w", err)
		}
		Log.SetOutput(io.MultiWriter(os.Stdout, daily))
		closer = daily
	}

	// Set Log Level
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		Log.Warnf("Invalid log level '%s', defaulting to 'info'. Error: %v", cfg.Level, err)
		Log.SetLevel(logrus.InfoLevel)
	} else {
		Log.SetLevel(level)
	}

	// Set Log Formatter
	if cfg.Environment == "production" || cfg.Environment == "staging" {
		Log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00", // ISO8601
		})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
			// colour codes would end up in the log file
			DisableColors: cfg.Dir != "",
		})
	}

	Log.Debugf("Log level set to: %s", Log.GetLevel().String())
	Log.Debugf("Log format set for environment: %s", cfg.Environment)
	return closer, nil
}

// Component returns an entry tagged with the component name.
func Component(name string) *logrus.Entry {
	return Log.WithField("component", name)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
