package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/rushteam/newsrec/core"
	"github.com/rushteam/newsrec/logging"
)

// 配置文件与环境变量约定。
const (
	EnvPrefix         = "NEWSREC_"
	ConfigPathEnvVar  = "NEWSREC_CONFIG"
	DefaultConfigPath = "newsrec.yaml"
)

// App 是进程级配置。加载顺序（后者覆盖前者）：内置默认值 -> YAML 文件 -> 环境变量。
//
// 环境变量：去掉 NEWSREC_ 前缀、转小写、"__" 表示层级，例如
// NEWSREC_RECOMMEND__TOP_N=20 -> recommend.top_n。
type App struct {
	Artifacts Artifacts      `koanf:"artifacts"`
	Recommend Recommend      `koanf:"recommend"`
	Server    Server         `koanf:"server"`
	Log       logging.Config `koanf:"log"`
	History   History        `koanf:"history"`
	Catalog   Catalog        `koanf:"catalog"`
	Pipeline  Pipeline       `koanf:"pipeline"`
}

// Artifacts 是语料产物目录。
type Artifacts struct {
	Dir string `koanf:"dir" validate:"required"`
}

// Recommend 是推荐请求的默认值，实现 core.RecommendConfig。
type Recommend struct {
	TopN     int   `koanf:"top_n" validate:"gte=0,lte=1000"`
	PoolSize int   `koanf:"pool_size" validate:"gte=0"`
	Weighted bool  `koanf:"weighted"`
	Random   bool  `koanf:"random"`
	Seed     int64 `koanf:"seed"`

	// Threshold 为 nil 时取评估表第一行的 threshold，评估表为空时取 FallbackThreshold
	Threshold         *float64 `koanf:"threshold" validate:"omitempty,gte=0,lte=1"`
	FallbackThreshold float64  `koanf:"fallback_threshold" validate:"gte=0,lte=1"`

	ExplainTopK     int `koanf:"explain_top_k" validate:"gte=1"`
	HistoryTopK     int `koanf:"history_top_k" validate:"gte=1"`
	MinHistoryItems int `koanf:"min_history" validate:"gte=0"`
}

var _ core.RecommendConfig = Recommend{}

func (r Recommend) DefaultTopN() int          { return r.TopN }
func (r Recommend) DefaultPoolSize() int      { return r.PoolSize }
func (r Recommend) DefaultSeed() int64        { return r.Seed }
func (r Recommend) DefaultThreshold() float64 { return r.FallbackThreshold }
func (r Recommend) DefaultExplainTopK() int   { return r.ExplainTopK }
func (r Recommend) DefaultHistoryTopK() int   { return r.HistoryTopK }
func (r Recommend) MinHistory() int           { return r.MinHistoryItems }

// Server 是 HTTP 服务配置。
type Server struct {
	Addr           string        `koanf:"addr" validate:"required"`
	RequestTimeout time.Duration `koanf:"request_timeout" validate:"gte=0"`
	ReadTimeout    time.Duration `koanf:"read_timeout"`
	WriteTimeout   time.Duration `koanf:"write_timeout"`
}

// History 是阅读历史存储配置。
type History struct {
	Backend string `koanf:"backend" validate:"oneof=memory redis"`
	Limit   int    `koanf:"limit" validate:"gte=0"`
	MaxLen  int    `koanf:"max_len" validate:"gte=0"`
	Redis   Redis  `koanf:"redis"`
}

// Redis 连接配置。
type Redis struct {
	Addr     string `koanf:"addr" validate:"required_if=Enabled true"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db" validate:"gte=0"`
	Prefix   string `koanf:"prefix"`
	Enabled  bool   `koanf:"-"`
}

// Catalog 是持久化元数据表配置；SQLitePath 为空时使用随产物加载的内存表。
type Catalog struct {
	SQLitePath string `koanf:"sqlite_path"`
}

// Pipeline 是推荐链路配置；File 为空时使用 pipeline.DefaultConfig。
type Pipeline struct {
	File string `koanf:"file"`

	// BlacklistKey 不为空时在默认链路中插入黑名单过滤（读取 Store 中的 JSON 数组）
	BlacklistKey string `koanf:"blacklist_key"`
}

// Default 返回内置默认配置。
func Default() App {
	d := &core.DefaultRecommendConfig{}
	return App{
		Artifacts: Artifacts{Dir: "artifacts"},
		Recommend: Recommend{
			TopN:              d.DefaultTopN(),
			PoolSize:          d.DefaultPoolSize(),
			Weighted:          true,
			Seed:              d.DefaultSeed(),
			FallbackThreshold: d.DefaultThreshold(),
			ExplainTopK:       d.DefaultExplainTopK(),
			HistoryTopK:       d.DefaultHistoryTopK(),
			MinHistoryItems:   d.MinHistory(),
		},
		Server: Server{
			Addr:           ":8080",
			RequestTimeout: 5 * time.Second,
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   30 * time.Second,
		},
		Log:     logging.Config{Level: "info", Format: "json"},
		History: History{Backend: "memory", Limit: 0, MaxLen: 500, Redis: Redis{Addr: "localhost:6379", Prefix: "history"}},
	}
}

// Load 依次加载默认值、YAML 文件、环境变量并校验。
// path 为空时依次尝试 NEWSREC_CONFIG 与 ./newsrec.yaml，都不存在则跳过文件层。
// 显式指定的 path 不存在时报错。
func Load(path string) (*App, error) {
	k := koanf.New(".")

	defaults := Default()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	configPath, err := resolvePath(path)
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var app App
	if err := k.Unmarshal("", &app); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := app.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &app, nil
}

func resolvePath(path string) (string, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("config file %s: %w", path, err)
		}
		return path, nil
	}
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err != nil {
			return "", fmt.Errorf("config file %s (from %s): %w", p, ConfigPathEnvVar, err)
		}
		return p, nil
	}
	if _, err := os.Stat(DefaultConfigPath); err == nil {
		return DefaultConfigPath, nil
	}
	return "", nil
}

// envKey: NEWSREC_SERVER__REQUEST_TIMEOUT -> server.request_timeout
func envKey(key string) string {
	key = strings.TrimPrefix(key, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(key), "__", ".")
}

var validate = validator.New()

// Validate 校验配置取值。
func (a *App) Validate() error {
	a.History.Redis.Enabled = a.History.Backend == "redis"
	if err := validate.Struct(a); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %s", fe.Namespace(), fe.Tag()))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

// ResolveThreshold 返回展示阈值：显式配置优先，否则取评估表阈值（为空时回退到 FallbackThreshold）。
func (r Recommend) ResolveThreshold(evaluated func(fallback float64) float64) float64 {
	if r.Threshold != nil {
		return *r.Threshold
	}
	if evaluated == nil {
		return r.FallbackThreshold
	}
	return evaluated(r.FallbackThreshold)
}
