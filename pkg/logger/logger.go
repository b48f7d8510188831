package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config 日志配置
type Config struct {
	Env   string // development -> 控制台可读输出; production -> JSON
	Level string // trace, debug, info, warn, error
	Dir   string // 日志目录, 为空时不写文件
}

var (
	mu      sync.RWMutex
	base    = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.DateTime}).With().Timestamp().Logger()
	logFile *os.File
)

// SetupLogger 初始化日志配置: 同时输出到控制台和按天切分的日志文件
func SetupLogger(cfg Config) error {
	var console io.Writer = os.Stdout
	if cfg.Env != "production" {
		console = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.DateTime}
	}

	writers := []io.Writer{console}
	var file *os.File
	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return fmt.Errorf("create log dir: %w", err)
		}

		name := filepath.Join(cfg.Dir, time.Now().Format("2006-01-02")+".log")
		f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		file = f
		writers = append(writers, f)
	}

	zl := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(parseLevel(cfg.Level)).
		With().Timestamp().Logger()

	mu.Lock()
	if logFile != nil {
		_ = logFile.Close()
	}
	logFile = file
	base = zl
	mu.Unlock()

	// 同步到 zerolog 全局 logger
	log.Logger = zl
	return nil
}

// Close 关闭日志文件
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

// L returns the structured logger.
func L() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := base
	return &l
}

// Info 记录信息级别的日志
func Info(format string, v ...interface{}) {
	L().Info().Msgf(format, v...)
}

// Warning 记录警告级别的日志
func Warning(format string, v ...interface{}) {
	L().Warn().Msgf(format, v...)
}

// Error 记录错误级别的日志
func Error(format string, v ...interface{}) {
	L().Error().Msgf(format, v...)
}

// Printf lets the logger stand in for gorm's logger.Writer.
func Printf(format string, v ...interface{}) {
	L().Info().Msgf(format, v...)
}

func parseLevel(s string) zerolog.Level {
	switch s {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
