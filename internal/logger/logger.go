package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"sync"
)

// ********************************************************
// ********* LOGGING **************************************
// ********************************************************

type LogLevel int

const (
	colorReset   = "\033[0m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorBlue    = "\033[34m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
	colorOrange  = "\033[38;5;208m"
)

const (
	DEBUG LogLevel = iota
	INFO
	INFORM
	HIGHLIGHT
	WARN
	ERROR
	FATAL
)

// Output destinations understood by SetLogOutput
const (
	OutputConsole = "console"
	OutputFile    = "file"
	OutputBoth    = "both"
)

// DefaultLogFile is used when file output is requested without a path
const DefaultLogFile = "/tmp/nbapredict.log"

type Logger struct {
	mu          sync.Mutex
	infoLogger  *log.Logger
	errorLogger *log.Logger
	level       LogLevel
	dateTime    bool
	file        *os.File
}

var defaultLogger = NewLogger(INFO, os.Stdout, os.Stderr)

// NewLogger creates a logger writing INFO and below to out and ERROR and above to errOut
func NewLogger(level LogLevel, out io.Writer, errOut io.Writer) *Logger {
	return &Logger{
		infoLogger:  log.New(out, "", 0),
		errorLogger: log.New(errOut, "", 0),
		level:       level,
	}
}

// Default returns the package level logger
func Default() *Logger {
	return defaultLogger
}

func (l *Logger) flags() int {
	if l.dateTime {
		return log.Ldate | log.Ltime
	}
	return 0
}

func (l *Logger) SetShowDateTime(value bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dateTime = value
	l.infoLogger.SetFlags(l.flags())
	l.errorLogger.SetFlags(l.flags())
}

func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *Logger) Level() LogLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// SetWriters redirects both loggers, closing any log file previously opened by SetOutput
func (l *Logger) SetWriters(out io.Writer, errOut io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closeFile()
	l.infoLogger = log.New(out, "", l.flags())
	l.errorLogger = log.New(errOut, "", l.flags())
}

// SetOutput sets the output destination for logs: console, file or both.
// path is only used for file and both and defaults to DefaultLogFile
func (l *Logger) SetOutput(output string, path string) error {
	if path == "" {
		path = DefaultLogFile
	}

	var infoWriter, errorWriter io.Writer
	var f *os.File

	switch strings.ToLower(output) {
	case OutputConsole, "c", "":
		infoWriter = os.Stdout
		errorWriter = os.Stderr
	case OutputFile, "f":
		var err error
		f, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file %s: %w", path, err)
		}
		infoWriter = f
		errorWriter = f
	case OutputBoth, "b":
		var err error
		f, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file %s: %w", path, err)
		}
		infoWriter = io.MultiWriter(os.Stdout, f)
		errorWriter = io.MultiWriter(os.Stderr, f)
	default:
		return fmt.Errorf("invalid log output type: %s", output)
	}

	l.SetWriters(infoWriter, errorWriter)
	l.mu.Lock()
	l.file = f
	l.mu.Unlock()
	return nil
}

// Close releases the log file if one is open
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closeFile()
}

func (l *Logger) closeFile() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// ParseLevel converts a config value such as "debug" or "WARN" into a LogLevel
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG, nil
	case "INFO", "":
		return INFO, nil
	case "INFORM":
		return INFORM, nil
	case "HIGHLIGHT":
		return HIGHLIGHT, nil
	case "WARN", "WARNING":
		return WARN, nil
	case "ERROR":
		return ERROR, nil
	case "FATAL":
		return FATAL, nil
	default:
		return INFO, fmt.Errorf("unknown log level: %s", s)
	}
}

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case INFORM:
		return "INFORM"
	case HIGHLIGHT:
		return "HIGHLIGHT"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) color() string {
	switch l {
	case DEBUG:
		return colorBlue
	case INFO:
		return colorGreen
	case INFORM:
		return colorMagenta
	case HIGHLIGHT:
		return colorCyan
	case WARN:
		return colorYellow
	case ERROR:
		return colorOrange
	case FATAL:
		return colorRed
	default:
		return colorReset
	}
}

func (l *Logger) log(depth int, level LogLevel, format string, v ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.level {
		return
	}

	_, file, line, ok := runtime.Caller(depth)
	if !ok {
		file = "unknown"
		line = 0
	}
	file = filepath.Base(file)

	msg := format
	processedArgs, jsonObjects := processArgs(v...)
	if len(processedArgs) > 0 {
		msg = fmt.Sprintf("%s %s", format, strings.Join(processedArgs, " "))
	}

	out := l.infoLogger
	if level >= ERROR {
		out = l.errorLogger
	}
	prefix := fmt.Sprintf("[%s] %s:%d: ", level.String(), file, line)
	out.Println(prefix + level.color() + msg + colorReset)
	// objects go on their own lines so they stay readable
	for _, obj := range jsonObjects {
		out.Println(prefix + level.color() + obj + colorReset)
	}
}

// processArgs renders primitives inline and everything else as indented JSON
func processArgs(args ...any) ([]string, []string) {
	if len(args) == 0 {
		return nil, nil
	}

	var primitives []string
	var jsonObjects []string

	for _, arg := range args {
		if isPrimitive(arg) {
			primitives = append(primitives, formatPrimitive(arg))
			continue
		}
		jsonBytes, err := json.MarshalIndent(arg, "", "  ")
		if err != nil {
			primitives = append(primitives, fmt.Sprintf("%v", arg))
			continue
		}
		primitives = append(primitives, fmt.Sprintf("[Object of type %s]", reflect.TypeOf(arg)))
		jsonObjects = append(jsonObjects, string(jsonBytes))
	}
	return primitives, jsonObjects
}

func formatPrimitive(arg any) string {
	switch v := arg.(type) {
	case nil:
		return "nil"
	case float32:
		return fmt.Sprintf("%.2f", v)
	case float64:
		return fmt.Sprintf("%.2f", v)
	case error:
		return v.Error()
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func isPrimitive(v any) bool {
	if v == nil {
		return true
	}
	switch v.(type) {
	case string, bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, error, fmt.Stringer:
		return true
	default:
		return false
	}
}

func (l *Logger) Debug(format string, v ...any)     { l.log(2, DEBUG, format, v...) }
func (l *Logger) Info(format string, v ...any)      { l.log(2, INFO, format, v...) }
func (l *Logger) Inform(format string, v ...any)    { l.log(2, INFORM, format, v...) }
func (l *Logger) Highlight(format string, v ...any) { l.log(2, HIGHLIGHT, format, v...) }
func (l *Logger) Warn(format string, v ...any)      { l.log(2, WARN, format, v...) }
func (l *Logger) Error(format string, v ...any)     { l.log(2, ERROR, format, v...) }

// Convenience methods using the default logger

func SetShowDateTime(value bool) {
	defaultLogger.SetShowDateTime(value)
}

func SetLevel(level LogLevel) {
	defaultLogger.SetLevel(level)
}

func SetLogOutput(output string, path string) error {
	return defaultLogger.SetOutput(output, path)
}

func Debug(format string, v ...any) {
	defaultLogger.log(2, DEBUG, format, v...)
}

func Info(format string, v ...any) {
	defaultLogger.log(2, INFO, format, v...)
}

func Inform(format string, v ...any) {
	defaultLogger.log(2, INFORM, format, v...)
}

func Highlight(format string, v ...any) {
	defaultLogger.log(2, HIGHLIGHT, format, v...)
}

func Warn(format string, v ...any) {
	defaultLogger.log(2, WARN, format, v...)
}

func Error(format string, v ...any) {
	defaultLogger.log(2, ERROR, format, v...)
}

func Fatal(format string, v ...any) {
	defaultLogger.log(2, FATAL, format, v...)
	defaultLogger.Close()
	os.Exit(1)
}
