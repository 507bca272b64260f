package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

// levelStyle is how a level is named and colored on the terminal.
type levelStyle struct {
	name     string
	level    *color.Color
	category *color.Color
}

var styles = map[LogLevel]levelStyle{
	DEBUG: {"DEBUG", color.New(color.FgCyan), color.New(color.FgCyan, color.Bold)},
	INFO:  {"INFO", color.New(color.FgGreen), color.New(color.FgGreen, color.Bold)},
	WARN:  {"WARN", color.New(color.FgYellow), color.New(color.FgYellow, color.Bold)},
	ERROR: {"ERROR", color.New(color.FgRed), color.New(color.FgRed, color.Bold)},
	FATAL: {"FATAL", color.New(color.FgRed, color.Bold), color.New(color.FgRed, color.Bold)},
}

var (
	timeColor   = color.New(color.FgBlue)
	sourceColor = color.New(color.FgMagenta)
)

func (l LogLevel) String() string {
	if s, ok := styles[l]; ok {
		return s.name
	}
	return "INFO"
}

// ParseLevel maps a level name such as "debug" or "WARN" to its LogLevel.
// Unknown names fall back to INFO.
func ParseLevel(name string) LogLevel {
	for level, s := range styles {
		if strings.EqualFold(s.name, strings.TrimSpace(name)) {
			return level
		}
	}
	return INFO
}

type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Service   string `json:"service"`
	Level     string `json:"level"`
	Category  string `json:"category"`
	Message   string `json:"message"`
	File      string `json:"file,omitempty"`
	Line      int    `json:"line,omitempty"`
}

// Options controls where a Logger writes. An empty Dir disables the JSON file.
type Options struct {
	Dir      string
	Service  string
	MinLevel LogLevel
	Terminal io.Writer
}

// Logger writes category-tagged lines: colored on the terminal, JSON in
// the daily file. It is safe for concurrent use.
type Logger struct {
	mu       sync.Mutex
	service  string
	terminal io.Writer
	file     *os.File
	jsonOut  *json.Encoder
	minLevel LogLevel
	exit     func(int)
}

// NewLogger builds the service logger: colored lines on Terminal (stdout by
// default) and JSON lines in <Dir>/<Service>-<date>.log.
func NewLogger(opts Options) (*Logger, error) {
	if opts.Service == "" {
		opts.Service = "cinema-service"
	}
	if opts.Terminal == nil {
		opts.Terminal = os.Stdout
	}

	l := &Logger{
		service:  opts.Service,
		terminal: opts.Terminal,
		minLevel: opts.MinLevel,
		exit:     os.Exit,
	}
	if opts.Dir == "" {
		return l, nil
	}

	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create logs directory: %w", err)
	}
	name := filepath.Join(opts.Dir, fmt.Sprintf("%s-%s.log", opts.Service, time.Now().Format("2006-01-02")))
	file, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	l.file = file
	l.jsonOut = json.NewEncoder(file)
	l.Info("LOGGER", "Log file: "+name)
	return l, nil
}

// NewNop returns a logger that discards everything. Used by tests.
func NewNop() *Logger {
	return &Logger{terminal: io.Discard, minLevel: FATAL + 1, exit: func(int) {}}
}

func (l *Logger) write(level LogLevel, category, message string) {
	if level < l.minLevel {
		return
	}

	entry := LogEntry{
		Timestamp: time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
		Service:   l.service,
		Level:     level.String(),
		Category:  strings.ToUpper(category),
		Message:   message,
	}
	// skip write and the public level method
	if _, file, line, ok := runtime.Caller(2); ok {
		entry.File, entry.Line = filepath.Base(file), line
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintln(l.terminal, l.terminalLine(level, entry))
	if l.jsonOut != nil {
		_ = l.jsonOut.Encode(entry)
	}
}

func (l *Logger) terminalLine(level LogLevel, entry LogEntry) string {
	style, ok := styles[level]
	if !ok {
		style = styles[INFO]
	}

	var b strings.Builder
	b.WriteString(timeColor.Sprint(entry.Timestamp[11:19]))
	b.WriteByte(' ')
	b.WriteString(style.level.Sprintf("%-5s", entry.Level))
	b.WriteByte(' ')
	b.WriteString(style.category.Sprintf("[%-10s]", entry.Category))
	b.WriteByte(' ')
	b.WriteString(entry.Message)
	if entry.File != "" && entry.Line > 0 {
		b.WriteString(sourceColor.Sprintf(" (%s:%d)", entry.File, entry.Line))
	}
	return b.String()
}

func (l *Logger) Debug(category, message string) { l.write(DEBUG, category, message) }
func (l *Logger) Info(category, message string)  { l.write(INFO, category, message) }
func (l *Logger) Warn(category, message string)  { l.write(WARN, category, message) }
func (l *Logger) Error(category, message string) { l.write(ERROR, category, message) }

// Fatal logs and terminates the process.
func (l *Logger) Fatal(category, message string) {
	l.write(FATAL, category, message)
	l.exit(1)
}

// Domain shorthands, one category each.

func (l *Logger) LogPurchase(action string, purchaseID int64, message string) {
	l.write(INFO, "PURCHASE", fmt.Sprintf("[%s] #%d %s", action, purchaseID, message))
}

func (l *Logger) LogAPI(method, path string, status int, duration time.Duration) {
	level := INFO
	if status >= 500 {
		level = ERROR
	}
	l.write(level, "HTTP", fmt.Sprintf("%s %s -> %d in %s", method, path, status, duration.Round(time.Microsecond)))
}

func (l *Logger) LogKafka(action, topic, message string) {
	l.write(DEBUG, "KAFKA", fmt.Sprintf("[%s] %s %s", action, topic, message))
}

func (l *Logger) LogProcess(processName, message string) {
	l.write(INFO, processName, message)
}

func (l *Logger) LogSecurity(event, message string) {
	l.write(WARN, "SECURITY", fmt.Sprintf("[%s] %s", event, message))
}

func (l *Logger) Close() {
	if l.file == nil {
		return
	}
	l.Info("LOGGER", "Closing log file")
	l.mu.Lock()
	defer l.mu.Unlock()
	l.file.Close()
	l.file, l.jsonOut = nil, nil
}
