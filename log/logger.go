package log // import "github.com/epustaka/epustaka/log"

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/epustaka/epustaka/config"
)

var Logger *zap.Logger

func init() {
	Logger = NewLogger()
}

func Info(msg string, fields ...zap.Field) {
	Logger.Info(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	Logger.Error(msg, fields...)
}

func Debug(msg string, fields ...zap.Field) {
	Logger.Debug(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	Logger.Warn(msg, fields...)
}

func Fatal(msg string, fields ...zap.Field) {
	Logger.Fatal(msg, fields...)
}

// Fallback writes a raw string to stdout. zap escapes control characters in
// its fields, so multi-line output like SQL statements goes through here.
// https://github.com/uber-go/zap/issues/963
func Fallback(level string, msg string) {
	fmt.Fprintf(os.Stdout, "[%s] %s", level, msg)
}

// NewLogger builds the logger from config.Opts, falling back to defaults
// when the config has not been loaded yet.
func NewLogger() *zap.Logger {
	filename := "epustaka.log"
	maxSize := 20
	maxBackups := 3
	maxAge := 28
	compress := false
	level := "info"

	if config.Opts != nil {
		filename = config.Opts.LogFile
		maxSize = config.Opts.LogFileMaxSize
		maxBackups = config.Opts.LogFileMaxBackups
		maxAge = config.Opts.LogFileMaxAge
		compress = config.Opts.LogCompress
		level = config.Opts.LogLevel
	}

	rotationLog := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    maxSize, // megabytes
		MaxBackups: maxBackups,
		MaxAge:     maxAge, // days
		Compress:   compress,
	}

	return newZap(rotationLog, parseLevel(level))
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func newZap(rotationLog *lumberjack.Logger, level zapcore.Level) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	fileEncoder := zapcore.NewJSONEncoder(encoderConfig)
	consoleEncoder := zapcore.NewConsoleEncoder(encoderConfig)

	consoleWriter := zapcore.AddSync(os.Stdout)
	rotationWriter := zapcore.AddSync(rotationLog)

	consoleCore := zapcore.NewCore(consoleEncoder, consoleWriter, level)
	rotationCore := zapcore.NewCore(fileEncoder, rotationWriter, level)

	core := zapcore.NewTee(consoleCore, rotationCore)

	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel))
}
