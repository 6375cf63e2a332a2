package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/rushteam/newsrec/corpus"
)

// SQLiteCatalog 是持久化到 SQLite 的新闻元数据表，实现 corpus.Catalog。
// 行号 seq 记录导入顺序，检索结果按 seq 排列，与语料枚举顺序一致。
type SQLiteCatalog struct {
	db *sql.DB
}

var _ corpus.Catalog = (*SQLiteCatalog)(nil)

// OpenSQLiteCatalog 打开或创建数据库。
func OpenSQLiteCatalog(path string) (*SQLiteCatalog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createCatalogSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating catalog schema: %w", err)
	}
	return &SQLiteCatalog{db: db}, nil
}

func createCatalogSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS news (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			news_id TEXT NOT NULL UNIQUE,
			category TEXT NOT NULL DEFAULT '',
			subcategory TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL DEFAULT '',
			abstract TEXT NOT NULL DEFAULT '',
			url TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_news_category ON news(category);
	`)
	return err
}

// Import 在一个事务内写入文档；已存在的 ID 保留第一次写入的内容。
// 返回新写入的条数。
func (c *SQLiteCatalog) Import(ctx context.Context, docs []corpus.Document) (int, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO news (news_id, category, subcategory, title, abstract, url)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare import: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, d := range docs {
		res, err := stmt.ExecContext(ctx, d.ID, d.Category, d.Subcategory, d.Title, d.Abstract, d.URL)
		if err != nil {
			return 0, fmt.Errorf("insert %s: %w", d.ID, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return inserted, nil
}

// Count 返回文档总数。
func (c *SQLiteCatalog) Count(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM news`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (c *SQLiteCatalog) Document(ctx context.Context, id string) (corpus.Document, bool, error) {
	var d corpus.Document
	err := c.db.QueryRowContext(ctx, `
		SELECT news_id, category, subcategory, title, abstract, url
		FROM news WHERE news_id = ?`, id).
		Scan(&d.ID, &d.Category, &d.Subcategory, &d.Title, &d.Abstract, &d.URL)
	if errors.Is(err, sql.ErrNoRows) {
		return corpus.Document{}, false, nil
	}
	if err != nil {
		return corpus.Document{}, false, fmt.Errorf("query %s: %w", id, err)
	}
	return d, true, nil
}

func (c *SQLiteCatalog) Search(ctx context.Context, keyword string, limit int) ([]corpus.Document, error) {
	query := `SELECT news_id, category, subcategory, title, abstract, url FROM news`
	var args []any
	if kw := strings.TrimSpace(keyword); kw != "" {
		query += ` WHERE instr(lower(title), lower(?)) > 0`
		args = append(args, kw)
	}
	query += ` ORDER BY seq`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", keyword, err)
	}
	defer rows.Close()

	out := make([]corpus.Document, 0)
	for rows.Next() {
		var d corpus.Document
		if err := rows.Scan(&d.ID, &d.Category, &d.Subcategory, &d.Title, &d.Abstract, &d.URL); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Close closes the database connection.
func (c *SQLiteCatalog) Close() error {
	return c.db.Close()
}
