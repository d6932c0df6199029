// internal/infra/logger/dailyfile.go
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
)

// dailyFilePattern names one file per day, YYYY-MM-DD.log.
const dailyFilePattern = "%Y-%m-%d.log"

// dailyFileRetention is how many day files are kept before the oldest are purged.
const dailyFileRetention = 3650

// clockFunc adapts a time source to rotatelogs.Clock.
type clockFunc func() time.Time

func (f clockFunc) Now() time.Time { return f() }

// NewDailyFile creates dir if needed and returns an append-only writer that
// switches to a new file named after the current local date when the day changes.
func NewDailyFile(dir string) (*rotatelogs.RotateLogs, error) {
	return newDailyFile(dir, rotatelogs.Local)
}

func newDailyFile(dir string, clock rotatelogs.Clock) (*rotatelogs.RotateLogs, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log dir %s: %w", dir, err)
	}
	rl, err := rotatelogs.New(
		filepath.Join(dir, dailyFilePattern),
		rotatelogs.WithClock(clock),
		rotatelogs.WithRotationTime(24*time.Hour),
		rotatelogs.WithRotationCount(dailyFileRetention),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to set up daily log file in %s: %w", dir, err)
	}
	return rl, nil
}
