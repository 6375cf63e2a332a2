package corpus

import (
	"context"
	"strings"
)

// Document 是新闻元数据（MIND news 表的子集）。
type Document struct {
	ID          string `json:"news_id"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
	Title       string `json:"title"`
	Abstract    string `json:"abstract,omitempty"`
	URL         string `json:"url,omitempty"`
}

// Catalog 是新闻元数据的查询接口。
//
// 实现：
//   - corpus.MemoryCatalog：随产物一起加载的内存表
//   - store.SQLiteCatalog：持久化到 SQLite 的表
type Catalog interface {
	// Document 按 ID 获取元数据，不存在时 ok=false
	Document(ctx context.Context, id string) (Document, bool, error)

	// Search 按标题关键词（大小写不敏感的子串）检索，保持语料顺序；keyword 为空时返回前 limit 条
	Search(ctx context.Context, keyword string, limit int) ([]Document, error)
}

// MemoryCatalog 是只读的内存元数据表，文档顺序即语料枚举顺序。
type MemoryCatalog struct {
	docs []Document
	byID map[string]int
}

var _ Catalog = (*MemoryCatalog)(nil)

// NewMemoryCatalog 构建内存表；重复 ID 只保留第一次出现。
func NewMemoryCatalog(docs []Document) *MemoryCatalog {
	c := &MemoryCatalog{
		docs: make([]Document, 0, len(docs)),
		byID: make(map[string]int, len(docs)),
	}
	for _, d := range docs {
		if _, dup := c.byID[d.ID]; dup {
			continue
		}
		c.byID[d.ID] = len(c.docs)
		c.docs = append(c.docs, d)
	}
	return c
}

func (c *MemoryCatalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.docs)
}

// IDs 按语料顺序返回所有 ID。
func (c *MemoryCatalog) IDs() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.docs))
	for i, d := range c.docs {
		out[i] = d.ID
	}
	return out
}

// Documents 返回所有文档（拷贝）。
func (c *MemoryCatalog) Documents() []Document {
	if c == nil {
		return nil
	}
	out := make([]Document, len(c.docs))
	copy(out, c.docs)
	return out
}

func (c *MemoryCatalog) Document(_ context.Context, id string) (Document, bool, error) {
	if c == nil {
		return Document{}, false, nil
	}
	i, ok := c.byID[id]
	if !ok {
		return Document{}, false, nil
	}
	return c.docs[i], true, nil
}

func (c *MemoryCatalog) Search(ctx context.Context, keyword string, limit int) ([]Document, error) {
	if c == nil {
		return nil, nil
	}
	kw := strings.ToLower(strings.TrimSpace(keyword))
	out := make([]Document, 0)
	for i, d := range c.docs {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if kw != "" && !strings.Contains(strings.ToLower(d.Title), kw) {
			continue
		}
		out = append(out, d)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
