package common

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const TimestampOutputFormat = "2006-01-02T15:04:05.000Z07:00"

type plainTextFormatter struct {
}

func (f *plainTextFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b strings.Builder
	b.WriteString(entry.Time.UTC().Format(TimestampOutputFormat))
	b.WriteByte(' ')
	if entry.Level <= logrus.WarnLevel {
		b.WriteString(strings.ToUpper(entry.Level.String()))
		b.WriteString("! ")
	}
	if platform, ok := entry.Data["platform"]; ok {
		b.WriteString(fmt.Sprint(platform))
		b.WriteString(": ")
	}
	b.WriteString(entry.Message)
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

// NewLogger builds the console logger used by every command. trace enables debug output,
// which includes the http traffic of the downloader.
func NewLogger(out io.Writer, trace bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(&plainTextFormatter{})
	logger.SetLevel(logrus.InfoLevel)
	if trace {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

// DiscardLogger is used by components that were not given a logger.
func DiscardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// Elapsed logs message together with the time passed since start, it is meant to be deferred.
func Elapsed(logger logrus.FieldLogger, message string, start time.Time) {
	logger.Infof("%s: %v", message, time.Since(start).Round(time.Millisecond))
}
