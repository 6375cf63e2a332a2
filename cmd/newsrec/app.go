package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rushteam/newsrec/config"
	"github.com/rushteam/newsrec/core"
	"github.com/rushteam/newsrec/corpus"
	"github.com/rushteam/newsrec/logging"
	"github.com/rushteam/newsrec/metrics"
	"github.com/rushteam/newsrec/pipeline"
	"github.com/rushteam/newsrec/service"
	"github.com/rushteam/newsrec/store"
)

// runtime 是命令执行期间持有的资源。
type runtime struct {
	svc     *service.Recommender
	bundle  *corpus.Shared
	closers []func() error
}

func (rt *runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		_ = rt.closers[i]()
	}
}

// openStores 按配置创建 KV / 历史存储。memory 后端只在进程内有效。
func openStores(ctx context.Context, cfg *config.App) (core.Store, core.HistoryStore, func() error, error) {
	switch cfg.History.Backend {
	case "redis":
		rs, err := store.NewRedisStore(ctx, store.RedisConfig{
			Addr:          cfg.History.Redis.Addr,
			Password:      cfg.History.Redis.Password,
			DB:            cfg.History.Redis.DB,
			HistoryPrefix: cfg.History.Redis.Prefix,
			HistoryMaxLen: cfg.History.MaxLen,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		return rs, rs, rs.Close, nil
	default:
		ms := store.NewMemoryStore()
		ms.HistoryMaxLen = cfg.History.MaxLen
		return ms, ms, ms.Close, nil
	}
}

// newRuntime 组装推荐服务：共享语料（惰性加载）、存储、元数据表、链路配置。
func newRuntime(ctx context.Context, cfg *config.App) (*runtime, error) {
	rt := &runtime{}
	logger := logging.Logger()

	loader := &corpus.Loader{Dir: cfg.Artifacts.Dir, Logger: logging.With("loader")}
	rt.bundle = corpus.NewShared(func() (*corpus.Bundle, error) {
		start := time.Now()
		b, err := loader.Load(context.Background())
		metrics.BundleLoadDuration.Observe(time.Since(start).Seconds())
		return b, err
	})

	kv, history, closeStores, err := openStores(ctx, cfg)
	if err != nil {
		return nil, err
	}
	rt.closers = append(rt.closers, closeStores)

	var catalog corpus.Catalog
	if cfg.Catalog.SQLitePath != "" {
		sc, err := store.OpenSQLiteCatalog(cfg.Catalog.SQLitePath)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.closers = append(rt.closers, sc.Close)
		catalog = sc
	}

	var pcfg *pipeline.Config
	if cfg.Pipeline.File != "" {
		if pcfg, err = pipeline.LoadFromYAML(cfg.Pipeline.File); err != nil {
			rt.Close()
			return nil, fmt.Errorf("pipeline %s: %w", cfg.Pipeline.File, err)
		}
	}

	rt.svc, err = service.New(service.Options{
		Bundle:         rt.bundle,
		Catalog:        catalog,
		History:        history,
		Store:          kv,
		Pipeline:       pcfg,
		BlacklistKey:   cfg.Pipeline.BlacklistKey,
		Recommend:      cfg.Recommend,
		HistoryLimit:   cfg.History.Limit,
		RequestTimeout: cfg.Server.RequestTimeout,
		Logger:         logger,
	})
	if err != nil {
		rt.Close()
		return nil, err
	}
	return rt, nil
}
