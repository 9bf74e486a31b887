package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultFilename   = "sitepress.log"
	defaultMaxSizeMB  = 50
	defaultMaxBackups = 5
	defaultMaxAgeDays = 14
)

// Options 日志输出配置。Dir 为空时只输出到标准输出。
type Options struct {
	Dir        string
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// L 全局结构化日志实例
var L *zap.Logger

var (
	fallbackOnce sync.Once
	fallback     *zap.Logger
)

// Init 初始化全局日志，mode 与 GIN_MODE 取值一致（debug/release/test）。
func Init(mode string, opts Options) *zap.Logger {
	L = New(mode, opts)
	zap.ReplaceGlobals(L)
	return L
}

// New 创建日志实例：debug 模式输出彩色控制台格式，其余模式输出 JSON，并在配置了目录时同时写入滚动文件。
func New(mode string, opts Options) *zap.Logger {
	debug := strings.EqualFold(strings.TrimSpace(mode), "debug")

	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if debug {
		level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	encoderConfig := encoderConfig()
	var encoder zapcore.Encoder
	if debug {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	sinks := []zapcore.WriteSyncer{zapcore.AddSync(os.Stdout)}
	if strings.TrimSpace(opts.Dir) != "" {
		fileSink, err := newFileSink(opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file unavailable, writing to stdout only: %v\n", err)
		} else {
			sinks = append(sinks, fileSink)
		}
	}

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(sinks...), level)
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
}

// Z 返回可用的结构化日志实例
func Z() *zap.Logger {
	if L != nil {
		return L
	}
	fallbackOnce.Do(func() {
		fallback = zap.New(
			zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig()), zapcore.AddSync(os.Stdout), zap.InfoLevel),
			zap.AddCaller(), zap.AddCallerSkip(1),
		)
	})
	return fallback
}

// S 返回可用的 SugaredLogger
func S() *zap.SugaredLogger {
	return Z().Sugar()
}

func Debugw(message string, kv ...interface{}) {
	S().Debugw(message, kv...)
}

func Infow(message string, kv ...interface{}) {
	S().Infow(message, kv...)
}

func Warnw(message string, kv ...interface{}) {
	S().Warnw(message, kv...)
}

func Errorw(message string, kv ...interface{}) {
	S().Errorw(message, kv...)
}

// Sync 刷新缓冲，进程退出前调用。
func Sync() {
	_ = Z().Sync()
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "time"
	cfg.MessageKey = "message"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeDuration = zapcore.MillisDurationEncoder
	cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	return cfg
}

func newFileSink(opts Options) (zapcore.WriteSyncer, error) {
	dir := strings.TrimSpace(opts.Dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	filename := strings.TrimSpace(opts.Filename)
	if filename == "" {
		filename = defaultFilename
	}

	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Join(dir, filename),
		MaxSize:    positiveOr(opts.MaxSizeMB, defaultMaxSizeMB),
		MaxBackups: positiveOr(opts.MaxBackups, defaultMaxBackups),
		MaxAge:     positiveOr(opts.MaxAgeDays, defaultMaxAgeDays),
		Compress:   opts.Compress,
	}), nil
}

func positiveOr(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}
