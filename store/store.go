// Package store 是 core.Store / core.HistoryStore / corpus.Catalog 的基础设施实现。
//
// 注意：此包只包含实现，接口定义在 core 与 corpus 包。
//
// 示例：
//
//	var kv core.Store = store.NewMemoryStore()
//	var history core.HistoryStore = store.NewMemoryStore()
//	catalog, err := store.OpenSQLiteCatalog("news.db")
package store

import "github.com/rushteam/newsrec/core"

// ErrNotFound 是 core.ErrStoreNotFound 的别名，便于在实现内使用。
var ErrNotFound = core.ErrStoreNotFound

// DefaultHistoryPrefix 是阅读历史的默认 key 前缀，实际 key 为 {prefix}:{userID}。
const DefaultHistoryPrefix = "history"

func historyKey(prefix, userID string) string {
	if prefix == "" {
		prefix = DefaultHistoryPrefix
	}
	return prefix + ":" + userID
}

// tail 返回最后 limit 个元素；limit <= 0 表示全部。
func tail(ids []string, limit int) []string {
	if limit > 0 && len(ids) > limit {
		ids = ids[len(ids)-limit:]
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}
