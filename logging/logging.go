// Package logging 提供进程级 zerolog 日志：统一初始化、组件子 logger、携带请求 ID 的上下文 logger。
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	log := logging.With("service")
//	logging.Ctx(ctx).Info().Msg("recommend done")
//
// 核心数值包（corpus/profile/rank/rerank/explain）不打日志，只返回错误。
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Config 是日志配置。
type Config struct {
	Level  string    `koanf:"level"`  // trace/debug/info/warn/error，默认 info
	Format string    `koanf:"format"` // json/console，默认 json
	Caller bool      `koanf:"caller"` // 是否输出调用位置
	Output io.Writer `koanf:"-"`      // 默认 os.Stderr
}

var (
	mu  sync.RWMutex
	log = newLogger(Config{})
)

// Init 按配置重建全局 logger，可重复调用。
func Init(cfg Config) {
	l := newLogger(cfg)
	mu.Lock()
	log = l
	mu.Unlock()
}

func newLogger(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}
	zerolog.TimeFieldFormat = time.RFC3339

	l := zerolog.New(out).Level(ParseLevel(cfg.Level)).With().Timestamp().Logger()
	if cfg.Caller {
		l = l.With().Caller().Logger()
	}
	return l
}

// ParseLevel 解析日志级别，无法识别时返回 info。
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Logger 返回全局 logger。
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// With 返回带 component 字段的子 logger。
func With(component string) zerolog.Logger {
	return Logger().With().Str("component", component).Logger()
}

type ctxKey struct{}

// NewRequestID 生成请求 ID。
func NewRequestID() string {
	return uuid.NewString()
}

// WithRequestID 把请求 ID 写入 context。
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequestID 读取 context 中的请求 ID，不存在时返回空串。
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(ctxKey{}).(string); ok {
		return id
	}
	return ""
}

// Ctx 返回带 request_id 字段的全局 logger。
func Ctx(ctx context.Context) *zerolog.Logger {
	l := Logger()
	if id := RequestID(ctx); id != "" {
		l = l.With().Str("request_id", id).Logger()
	}
	return &l
}
