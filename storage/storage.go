package storage

// storage包是Channel与Notification数据的唯一写入口，
// 底层是带FTS5全文索引的SQLite，记录和它的索引条目在同一个事务中写入

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// 两张稳定表加一张FTS5虚拟表；索引同步在Commit的事务里由应用代码完成，
// 不用触发器，因为索引的内容是分词后的标题，SQL生成不了
const schema = `
CREATE TABLE IF NOT EXISTS Channel (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    site_name     TEXT NOT NULL,
    channel_name  TEXT NOT NULL,
    url           TEXT NOT NULL UNIQUE,
    base_link_url TEXT,
    mode          TEXT NOT NULL,
    config_json   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS Notification (
    fingerprint    TEXT PRIMARY KEY,
    channel_id     INTEGER NOT NULL,
    title          TEXT NOT NULL,
    link           TEXT NOT NULL,
    published_date TEXT,
    push_time      TEXT,
    FOREIGN KEY (channel_id) REFERENCES Channel(id)
);
CREATE INDEX IF NOT EXISTS idx_notification_channel ON Notification (channel_id);

CREATE VIRTUAL TABLE IF NOT EXISTS Notification_fts USING fts5(
    title,
    fingerprint UNINDEXED,
    prefix='2'
);
`

// sql数据库实例
type Store struct {
	options
	db *sql.DB
}

// 创建一个新的Store实例：打开数据库文件，启用外键约束并应用表结构
func New(opts ...Option) (*Store, error) {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	s := &Store{}
	s.options = options
	if err := s.openDB(); err != nil {
		return nil, err
	}
	return s, nil
}

// 打开SQLite数据库，目录不存在时先创建，通过ping测试连接是否正常
func (s *Store) openDB() error {
	if dir := filepath.Dir(s.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}
	// SQLite同一时刻只允许一个写入者，写操作在驱动层排队即可
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		return err
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return err
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 10000"); err != nil {
		return err
	}
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	s.db = db
	s.logger.Debug("storage opened", zap.String("path", s.path))
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
