// Package logger is the logrus setup shared by the ENS client, the exporter
// and ensctl.
//
// Messages take optional key/value pairs:
//
//	log, err := logger.New("info", logger.FormatJSON)
//	if err != nil {
//		return err
//	}
//	log.Info("Scrape finished", "pages", 12)
//	log.WithPageID(112233).Warn("Page has no modification time")
package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Field names used by the context helpers
const (
	FieldRequestID   = "request_id"
	FieldError       = "error"
	FieldMethod      = "method"
	FieldEndpoint    = "endpoint"
	FieldPageID      = "page_id"
	FieldPageType    = "page_type"
	FieldSupporterID = "supporter_id"
)

// Logger is a logrus.Logger with ENS field helpers and key/value level methods.
type Logger struct {
	*logrus.Logger
}

// New creates a logger writing to stderr
func New(level, format string) (*Logger, error) {
	return NewWithWriter(level, format, os.Stderr)
}

// NewWithWriter creates a logger writing to out
func NewWithWriter(level, format string, out io.Writer) (*Logger, error) {
	parsedLevel, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	formatter, err := newFormatter(format)
	if err != nil {
		return nil, err
	}

	base := logrus.New()
	base.SetLevel(parsedLevel)
	base.SetOutput(out)
	base.SetFormatter(formatter)
	return &Logger{Logger: base}, nil
}

func newFormatter(format string) (logrus.Formatter, error) {
	switch format {
	case FormatJSON:
		return &logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"}, nil
	case FormatText:
		return &logrus.TextFormatter{TimestampFormat: "2006-01-02 15:04:05", FullTimestamp: true}, nil
	default:
		return nil, fmt.Errorf("invalid log format: %s (must be '%s' or '%s')", format, FormatJSON, FormatText)
	}
}

// Discard returns a logger that drops everything
func Discard() *Logger {
	base := logrus.New()
	base.SetOutput(io.Discard)
	base.SetLevel(logrus.PanicLevel)
	return &Logger{Logger: base}
}

func (l *Logger) WithRequestID(requestID string) *logrus.Entry {
	return l.WithField(FieldRequestID, requestID)
}

// WithError records the error message rather than the error value
func (l *Logger) WithError(err error) *logrus.Entry {
	return l.WithField(FieldError, err.Error())
}

func (l *Logger) WithPageID(pageID int) *logrus.Entry {
	return l.WithField(FieldPageID, pageID)
}

func (l *Logger) WithPageType(pageType string) *logrus.Entry {
	return l.WithField(FieldPageType, pageType)
}

func (l *Logger) WithSupporterID(supporterID int) *logrus.Entry {
	return l.WithField(FieldSupporterID, supporterID)
}

func (l *Logger) Debug(msg string, kv ...interface{}) { l.log(logrus.DebugLevel, msg, kv) }
func (l *Logger) Info(msg string, kv ...interface{})  { l.log(logrus.InfoLevel, msg, kv) }
func (l *Logger) Warn(msg string, kv ...interface{})  { l.log(logrus.WarnLevel, msg, kv) }
func (l *Logger) Error(msg string, kv ...interface{}) { l.log(logrus.ErrorLevel, msg, kv) }

func (l *Logger) log(level logrus.Level, msg string, kv []interface{}) {
	if !l.IsLevelEnabled(level) {
		return
	}
	if len(kv) == 0 {
		l.Logger.Log(level, msg)
		return
	}
	l.Logger.WithFields(toFields(kv)).Log(level, msg)
}

// toFields pairs up keys and values; a dangling key is dropped
func toFields(kv []interface{}) logrus.Fields {
	fields := make(logrus.Fields, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return fields
}
