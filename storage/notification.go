package storage

// 指纹去重和通知写入：指纹是标题+链接的内容哈希，在所有栏目间全局唯一，
// Commit是Notification与其索引条目的唯一写入口

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// 根据通知的标题和链接生成SHA-256指纹，
// 标题做trim和小写归一化，链接只做trim
func Fingerprint(title, link string) string {
	data := strings.ToLower(strings.TrimSpace(title)) + ":" + strings.TrimSpace(link)
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

// 检查指纹是否尚未出现过，纯读操作
func (s *Store) IsNew(fingerprint string) (bool, error) {
	var one int
	err := s.db.QueryRow(
		"SELECT 1 FROM Notification WHERE fingerprint = ?", fingerprint).Scan(&one)
	if err == sql.ErrNoRows {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup fingerprint: %w", err)
	}
	return false, nil
}

/*
输入栏目id和一条记录的标题、链接、日期，输出是否真正插入了新行

在同一个事务内插入Notification主表行（指纹已存在时INSERT OR IGNORE不产生新行，
防止并发写入同一指纹时重复计数），只有主表真正新增了行才写入FTS5索引条目，
两者要么都成功要么都回滚，保证记录和索引永不脱节；
任何失败都返回inserted=false且不留下部分状态，下次运行会重试这条记录
*/
func (s *Store) Commit(channelID int64, title, link, date string) (inserted bool, err error) {
	fingerprint := Fingerprint(title, link)
	pushTime := time.Now().Format("2006-01-02 15:04:05")

	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("begin commit: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
			inserted = false
		}
	}()

	res, err := tx.Exec(`
		INSERT OR IGNORE INTO Notification
		(fingerprint, channel_id, title, link, published_date, push_time)
		VALUES (?, ?, ?, ?, ?, ?)`,
		fingerprint, channelID, title, link, date, pushTime)
	if err != nil {
		return false, fmt.Errorf("insert notification: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if rows == 0 {
		// 指纹已存在，没有新行也就不需要索引条目
		return false, tx.Commit()
	}

	if _, err = tx.Exec(`
		INSERT INTO Notification_fts (fingerprint, title)
		VALUES (?, ?)`,
		fingerprint, s.tokenizer(title)); err != nil {
		return false, fmt.Errorf("insert fts entry: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("commit notification: %w", err)
	}
	return true, nil
}
