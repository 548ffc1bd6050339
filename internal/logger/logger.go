// Package logger is a small categorized console logger.
//
// Every line carries a level, a category (DATABASE, HTTP, KAFKA, ...) and a
// message. Colors are disabled automatically when stdout is not a terminal.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

type Logger struct {
	mu    sync.Mutex
	out   io.Writer
	level Level
	exit  func(int)
	now   func() time.Time
}

var (
	debugColor    = color.New(color.FgHiBlack)
	infoColor     = color.New(color.FgCyan)
	warnColor     = color.New(color.FgYellow)
	errorColor    = color.New(color.FgRed, color.Bold)
	processColor  = color.New(color.FgGreen)
	securityColor = color.New(color.FgMagenta)
)

// NewLogger returns a logger writing to stdout at info level.
func NewLogger() *Logger {
	return New(color.Output, LevelInfo)
}

// New returns a logger writing to out.
func New(out io.Writer, level Level) *Logger {
	return &Logger{out: out, level: level, exit: os.Exit, now: time.Now}
}

func (l *Logger) Debug(category, msg string) { l.write(LevelDebug, debugColor, "DEBUG", category, msg) }
func (l *Logger) Info(category, msg string)  { l.write(LevelInfo, infoColor, "INFO", category, msg) }
func (l *Logger) Warn(category, msg string)  { l.write(LevelWarn, warnColor, "WARN", category, msg) }
func (l *Logger) Error(category, msg string) { l.write(LevelError, errorColor, "ERROR", category, msg) }

// Errorf logs a formatted error line.
func (l *Logger) Errorf(category, format string, args ...any) {
	l.Error(category, fmt.Sprintf(format, args...))
}

// LogProcess logs a startup/shutdown step.
func (l *Logger) LogProcess(category, msg string) {
	l.write(LevelInfo, processColor, "PROCESS", category, msg)
}

// LogSecurity records a rejected or suspicious request.
func (l *Logger) LogSecurity(event, msg string) {
	l.write(LevelWarn, securityColor, "SECURE", event, msg)
}

// Fatal logs and exits the process.
func (l *Logger) Fatal(category, msg string) {
	l.write(LevelError, errorColor, "FATAL", category, msg)
	l.exit(1)
}

func (l *Logger) write(level Level, c *color.Color, tag, category, msg string) {
	if l == nil || level < l.level {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	ts := l.now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(l.out, "%s %s [%s] %s\n", ts, c.Sprintf("%-7s", tag), category, msg)
}
