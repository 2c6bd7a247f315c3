package logger

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"helmetkiosk/internal/config"
)

// Fields is structured context attached to a log entry.
type Fields = logrus.Fields

// Logger provides leveled logging (debug/info/warning/error) to stdout and
// per-level rotating files.
type Logger struct {
	entry  *logrus.Entry
	logDir string
	files  *levelFileHook
}

// NewLogger creates a Logger writing to stdout and to info.log, warning.log
// and error.log under the configured log directory.
func NewLogger(cfg *config.Config) (*Logger, error) {
	if err := os.MkdirAll(cfg.LogDirectory, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	files := newLevelFileHook(cfg.LogDirectory)
	base := newBase(os.Stdout, cfg.LogLevel)
	base.AddHook(files)

	return &Logger{entry: logrus.NewEntry(base), logDir: cfg.LogDirectory, files: files}, nil
}

// NewDiscard returns a Logger that drops everything. Used in tests.
func NewDiscard() *Logger {
	return NewWithWriter(io.Discard)
}

// NewWithWriter returns a Logger writing only to w.
func NewWithWriter(w io.Writer) *Logger {
	return &Logger{entry: logrus.NewEntry(newBase(w, "debug"))}
}

func newBase(out io.Writer, level string) *logrus.Logger {
	base := logrus.New()
	base.SetOutput(out)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	base.SetLevel(lvl)

	base.SetFormatter(&formatter.Formatter{
		NoColors:        true,
		TimestampFormat: "2006-01-02 15:04:05",
		HideKeys:        false,
		CallerFirst:     true,
		CustomCallerFormatter: func(f *runtime.Frame) string {
			s := strings.Split(f.Function, ".")
			return fmt.Sprintf(" [%s:%d][%s()]", path.Base(f.File), f.Line, s[len(s)-1])
		},
	})
	return base
}

// WithFields returns a Logger that attaches fields to every entry.
func (l *Logger) WithFields(fields Fields) *Logger {
	return &Logger{entry: l.entry.WithFields(fields), logDir: l.logDir, files: l.files}
}

// Debug writes a formatted debug-level log entry.
func (l *Logger) Debug(format string, v ...interface{}) {
	l.entry.Debugf(format, v...)
}

// Info writes a formatted info-level log entry.
func (l *Logger) Info(format string, v ...interface{}) {
	l.entry.Infof(format, v...)
}

// Warning writes a formatted warning-level log entry.
func (l *Logger) Warning(format string, v ...interface{}) {
	l.entry.Warnf(format, v...)
}

// Error writes a formatted error-level log entry.
func (l *Logger) Error(format string, v ...interface{}) {
	l.entry.Errorf(format, v...)
}

// LogDirectory returns the directory holding the per-level files, or "" for
// loggers that do not write files.
func (l *Logger) LogDirectory() string {
	return l.logDir
}

// CleanLogs truncates the specified log file. A file that was never
// written counts as already clear.
func (l *Logger) CleanLogs(fileName string) error {
	if l.files == nil {
		return nil
	}
	if err := l.files.truncate(fileName); err != nil {
		l.Error("Error truncating %s: %v", fileName, err)
		return err
	}

	l.Info("File %s has been cleared.", fileName)
	return nil
}

// levelFileHook routes formatted entries to a rotating file per level.
type levelFileHook struct {
	mu      sync.Mutex
	files   map[string]*lumberjack.Logger
	writers map[logrus.Level]*lumberjack.Logger
}

func newLevelFileHook(dir string) *levelFileHook {
	files := make(map[string]*lumberjack.Logger)
	open := func(name string) *lumberjack.Logger {
		files[name] = &lumberjack.Logger{
			Filename:   filepath.Join(dir, name),
			LocalTime:  true,
			Compress:   true,
			MaxSize:    50,
			MaxAge:     7,
			MaxBackups: 3,
		}
		return files[name]
	}

	info := open("info.log")
	warning := open("warning.log")
	errs := open("error.log")

	return &levelFileHook{
		files: files,
		writers: map[logrus.Level]*lumberjack.Logger{
			logrus.DebugLevel: info,
			logrus.InfoLevel:  info,
			logrus.WarnLevel:  warning,
			logrus.ErrorLevel: errs,
			logrus.FatalLevel: errs,
			logrus.PanicLevel: errs,
		},
	}
}

func (h *levelFileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *levelFileHook) Fire(e *logrus.Entry) error {
	w, ok := h.writers[e.Level]
	if !ok {
		return nil
	}
	line, err := e.String()
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = io.WriteString(w, line)
	return err
}

// truncate empties one file. The writer is closed first so its next write
// reopens the file in append mode with the new size.
func (h *levelFileHook) truncate(fileName string) error {
	w, ok := h.files[fileName]
	if !ok {
		return fmt.Errorf("unknown log file %s", fileName)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := w.Close(); err != nil {
		return err
	}
	if err := os.Truncate(w.Filename, 0); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
