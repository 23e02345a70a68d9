package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
)

var (
	GenericComponent   = "EventFmt"
	ToolComponent      = "EventFmt Tool"
	FormatterComponent = "Formatters"
	RendererComponent  = "Renderer"

	mu          sync.Mutex
	root_logger = newRootLogger()
	memory_hook = &memoryHook{max_lines: 1000}
	initialized bool
	prelogs     []string
)

type LogContext struct {
	*logrus.Entry
}

func (self *LogContext) Debug(format string, args ...interface{}) {
	self.Entry.Debugf(format, args...)
}

func (self *LogContext) Info(format string, args ...interface{}) {
	self.Entry.Infof(format, args...)
}

func (self *LogContext) Warn(format string, args ...interface{}) {
	self.Entry.Warnf(format, args...)
}

func (self *LogContext) Error(format string, args ...interface{}) {
	self.Entry.Errorf(format, args...)
}

func (self *LogContext) WithFields(fields logrus.Fields) *LogContext {
	return &LogContext{Entry: self.Entry.WithFields(fields)}
}

func GetLogger(component *string) *LogContext {
	mu.Lock()
	defer mu.Unlock()

	return &LogContext{
		Entry: root_logger.WithField("component", *component),
	}
}

func newRootLogger() *logrus.Logger {
	logger := logrus.New()
	logger.Out = os.Stderr
	logger.Level = logrus.InfoLevel
	logger.Formatter = &logrus.TextFormatter{
		FullTimestamp: true,
		DisableColors: !isatty.IsTerminal(os.Stderr.Fd()),
	}
	return logger
}

// Sets the log level and optionally mirrors all messages into a
// JSON log file. Messages recorded with Prelog before this call are
// flushed at debug level.
func InitLogging(level string, filename string) error {
	mu.Lock()
	defer mu.Unlock()

	if level != "" {
		parsed, err := logrus.ParseLevel(level)
		if err != nil {
			return fmt.Errorf("Invalid log level %v: %w", level, err)
		}
		root_logger.SetLevel(parsed)
	}

	// Calling this again replaces the previous log file.
	hooks := make(logrus.LevelHooks)
	hooks.Add(memory_hook)

	if filename != "" {
		fd, err := os.OpenFile(filename,
			os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0600)
		if err != nil {
			return fmt.Errorf("Unable to open log file %v: %w", filename, err)
		}
		fd.Close()

		hooks.Add(lfshook.NewHook(filename, &logrus.JSONFormatter{}))
	}
	root_logger.ReplaceHooks(hooks)

	initialized = true
	for _, line := range prelogs {
		root_logger.WithField("component", GenericComponent).Debug(line)
	}
	prelogs = nil

	return nil
}

// Log messages before logging is configured. These are kept in memory
// until InitLogging is called.
func Prelog(format string, v ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	line := fmt.Sprintf(format, v...)
	if initialized {
		root_logger.WithField("component", GenericComponent).Debug(line)
		return
	}
	prelogs = append(prelogs, line)
}

func DisableLogging() {
	mu.Lock()
	defer mu.Unlock()

	root_logger.Out = io.Discard
}

func SetOutput(out io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	root_logger.Out = out
}

func GetMemoryLogs() []string {
	return memory_hook.Lines()
}

func ClearMemoryLogs() {
	memory_hook.Clear()
}

// Keeps the most recent log lines in memory for tests and the verify
// command.
type memoryHook struct {
	mu        sync.Mutex
	lines     []string
	max_lines int
}

func (self *memoryHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (self *memoryHook) Fire(entry *logrus.Entry) error {
	component, _ := entry.Data["component"].(string)
	line := fmt.Sprintf("[%s] %s: %s",
		strings.ToUpper(entry.Level.String()), component, entry.Message)

	self.mu.Lock()
	defer self.mu.Unlock()

	self.lines = append(self.lines, line)
	if len(self.lines) > self.max_lines {
		self.lines = self.lines[len(self.lines)-self.max_lines:]
	}
	return nil
}

func (self *memoryHook) Lines() []string {
	self.mu.Lock()
	defer self.mu.Unlock()

	return append([]string{}, self.lines...)
}

func (self *memoryHook) Clear() {
	self.mu.Lock()
	defer self.mu.Unlock()

	self.lines = nil
}

func init() {
	root_logger.AddHook(memory_hook)
}
