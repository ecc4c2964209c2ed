// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Params selects the logger's level, format and destination.
type Params struct {
	Level string
	JSON  bool
	// File, when set, receives the log in addition to stdout and is rotated.
	File string
}

// Setup configures the standard logrus logger. The returned closer releases
// the log file, if any.
func Setup(params Params) io.Closer {
	if params.JSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	logrus.SetLevel(GetLevel(params.Level))

	if params.File == "" {
		logrus.SetOutput(os.Stdout)
		return io.NopCloser(nil)
	}

	if !strings.HasSuffix(params.File, ".log") {
		params.File += ".log"
	}
	rotating := &lumberjack.Logger{
		Filename: params.File,
		MaxSize:  50, // megabytes
		Compress: true,
	}
	logrus.SetOutput(io.MultiWriter(os.Stdout, rotating))
	return rotating
}

// GetLevel parses a level name, defaulting to info.
func GetLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}
