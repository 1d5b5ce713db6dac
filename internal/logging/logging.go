package logging

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

var logFile *lumberjack.Logger

// Setup installs the default slog logger. Records always go to stderr; when
// logPath is set they are also appended to a rotating log file.
func Setup(logPath string, debug bool) error {
	var writers []io.Writer
	writers = append(writers, os.Stderr)

	if logPath != "" {
		logDir := filepath.Dir(logPath)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}

		logFile = &lumberjack.Logger{
			Filename:   logPath,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     7, // days
		}
		writers = append(writers, logFile)
	}

	multiWriter := io.MultiWriter(writers...)

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(multiWriter, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))

	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	slog.Debug("logging initialized", "path", logPath, "debug", debug)

	return nil
}

// Close closes the log file
func Close() {
	if logFile == nil {
		return
	}

	err := logFile.Close()
	logFile = nil
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
	}
}
