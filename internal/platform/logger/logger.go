package logger

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	DebugLogger *log.Logger
	InfoLogger  *log.Logger
	WarnLogger  *log.Logger
	ErrorLogger *log.Logger

	minLevel = LevelInfo
)

func init() {
	DebugLogger = log.New(os.Stdout, "DEBUG: ", log.Ldate|log.Ltime|log.Lshortfile)
	InfoLogger = log.New(os.Stdout, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile)
	WarnLogger = log.New(os.Stdout, "WARN: ", log.Ldate|log.Ltime|log.Lshortfile)
	ErrorLogger = log.New(os.Stderr, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
}

// SetLevel accepts debug, info, warn or error. Unknown values keep info.
func SetLevel(name string) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		minLevel = LevelDebug
	case "warn", "warning":
		minLevel = LevelWarn
	case "error":
		minLevel = LevelError
	default:
		minLevel = LevelInfo
	}
}

func Debug(msg string, v ...interface{}) {
	if minLevel > LevelDebug {
		return
	}
	DebugLogger.Output(2, format(msg, v))
}

func Info(msg string, v ...interface{}) {
	if minLevel > LevelInfo {
		return
	}
	InfoLogger.Output(2, format(msg, v))
}

func Warn(msg string, v ...interface{}) {
	if minLevel > LevelWarn {
		return
	}
	WarnLogger.Output(2, format(msg, v))
}

// Error logs msg with err appended. Trailing extras may be a
// map[string]interface{} (rendered as key=value) or plain values.
func Error(msg string, err error, v ...interface{}) {
	line := format(msg, v)
	if err != nil {
		line += ": " + err.Error()
	}
	ErrorLogger.Output(2, line)
}

func format(msg string, v []interface{}) string {
	var fields []string
	var args []interface{}
	for _, item := range v {
		switch x := item.(type) {
		case nil:
		case map[string]interface{}:
			fields = append(fields, renderFields(x))
		default:
			args = append(args, x)
		}
	}
	if len(args) > 0 {
		if strings.Contains(msg, "%") {
			msg = fmt.Sprintf(msg, args...)
		} else {
			msg = strings.TrimSpace(msg + " " + fmt.Sprint(args...))
		}
	}
	if len(fields) > 0 {
		msg += " " + strings.Join(fields, " ")
	}
	return msg
}

func renderFields(m map[string]interface{}) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, m[k]))
	}
	return strings.Join(parts, " ")
}
