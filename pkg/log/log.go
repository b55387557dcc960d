// Package log 基于 zerolog 的全局日志.
// 控制台输出始终开启，文件输出可选并由 lumberjack 轮转.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yeisme/drivevault/pkg/configs"
)

var (
	logger   zerolog.Logger
	initOnce sync.Once
)

// Init 初始化全局 logger，幂等.
func Init() {
	initOnce.Do(initLogger)
}

// Logger 返回全局 logger，首次调用时自动初始化.
func Logger() *zerolog.Logger {
	initOnce.Do(initLogger)

	return &logger
}

func initLogger() {
	cfg := configs.GetConfig()

	zerolog.SetGlobalLevel(parseLevel(cfg.Log.Level))

	builder := zerolog.New(io.MultiWriter(buildWriters(cfg.Log)...)).With()
	if cfg.Server.Debug {
		builder = builder.Caller().Stack()

		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	logger = builder.Timestamp().Logger()
	log.Logger = logger
}

func parseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		fmt.Printf("invalid log level %q, defaulting to info", level)

		return zerolog.InfoLevel
	}

	return lvl
}

func buildWriters(logCfg configs.LogConfig) []io.Writer {
	// stderr 的人类可读输出始终保留
	console := zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
		w.TimeFormat = time.Kitchen
	})

	writers := []io.Writer{console}

	if logCfg.EnableFile {
		writers = append(writers, &lumberjack.Logger{
			Filename:   logCfg.FilePath,
			MaxSize:    logCfg.MaxSize,
			MaxBackups: logCfg.MaxBackups,
			MaxAge:     logCfg.MaxAge,
			Compress:   logCfg.Compress,
		})
	}

	return writers
}

// GinWriter 把 gin 的文本行转成 zerolog 事件.
type GinWriter struct {
	logger *zerolog.Logger
	level  zerolog.Level
}

func NewGinWriter(logger *zerolog.Logger, level zerolog.Level) *GinWriter {
	return &GinWriter{logger: logger, level: level}
}

func (w *GinWriter) Write(p []byte) (int, error) {
	msg := strings.TrimSpace(string(p))

	switch w.level {
	case zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel:
		w.logger.Error().Msg(msg)
	case zerolog.WarnLevel:
		w.logger.Warn().Msg(msg)
	default:
		w.logger.Info().Msg(msg)
	}

	return len(p), nil
}
