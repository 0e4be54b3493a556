package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
)

type Logger interface {
	Debugf(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
	Fatalf(format string, v ...interface{})

	WithModule(module string) Logger
	WithFields(fields map[string]interface{}) Logger
}

const (
	levelDebug = 0
	levelInfo  = 1
	levelWarn  = 2
	levelError = 3
)

// NewLogger creates a leveled logger. If logFile is non-empty the output is
// duplicated to that file in addition to stderr.
func NewLogger(level, logFile string) Logger {
	out := io.Writer(os.Stderr)
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			log.Printf("[WARN] cannot open log file %s: %v", logFile, err)
		} else {
			out = io.MultiWriter(os.Stderr, f)
		}
	}

	return &stdLogger{
		level: parseLevel(level),
		out:   log.New(out, "", log.LstdFlags),
	}
}

type stdLogger struct {
	level  int
	out    *log.Logger
	module string
	fields map[string]interface{}
}

func parseLevel(l string) int {
	switch strings.ToLower(l) {
	case "debug":
		return levelDebug
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

func (l *stdLogger) WithModule(module string) Logger {
	clone := *l
	clone.module = module
	return &clone
}

func (l *stdLogger) WithFields(fields map[string]interface{}) Logger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	clone := *l
	clone.fields = merged
	return &clone
}

func (l *stdLogger) logf(level int, tag, format string, v ...interface{}) {
	if l.level > level {
		return
	}
	var b strings.Builder
	b.WriteString(tag)
	if l.module != "" {
		b.WriteString(" [")
		b.WriteString(l.module)
		b.WriteString("]")
	}
	b.WriteString(" ")
	b.WriteString(fmt.Sprintf(format, v...))
	if len(l.fields) > 0 {
		keys := make([]string, 0, len(l.fields))
		for k := range l.fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString(fmt.Sprintf(" %s=%v", k, l.fields[k]))
		}
	}
	l.out.Print(b.String())
}

func (l *stdLogger) Debugf(format string, v ...interface{}) {
	l.logf(levelDebug, "[DEBUG]", format, v...)
}

func (l *stdLogger) Infof(format string, v ...interface{}) {
	l.logf(levelInfo, "[INFO]", format, v...)
}

func (l *stdLogger) Warnf(format string, v ...interface{}) {
	l.logf(levelWarn, "[WARN]", format, v...)
}

func (l *stdLogger) Errorf(format string, v ...interface{}) {
	l.logf(levelError, "[ERROR]", format, v...)
}

func (l *stdLogger) Fatalf(format string, v ...interface{}) {
	l.out.Print("[FATAL] " + fmt.Sprintf(format, v...))
	os.Exit(1)
}
