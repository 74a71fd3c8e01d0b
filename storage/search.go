package storage

// FTS5全文检索：从索引表出发，通过指纹连回主表，再连到Channel表取出处信息

import (
	"fmt"
)

// 一条搜索结果，带记录的完整内容和来源栏目
type SearchResult struct {
	Title       string
	Link        string
	Date        string
	SiteName    string
	ChannelName string
}

/*
输入编译好的FTS5 MATCH表达式和结果上限，输出按相关度从高到低排序的结果

rank是FTS5内置的BM25相关度（越相关值越小），这里是只读查询，
可以和写入并发执行
*/
func (s *Store) SearchNotifications(match string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(`
		SELECT
			n.title,
			n.link,
			n.published_date,
			c.site_name,
			c.channel_name
		FROM Notification_fts fts
		JOIN Notification n ON fts.fingerprint = n.fingerprint
		JOIN Channel c ON n.channel_id = c.id
		WHERE fts.title MATCH ?
		ORDER BY rank
		LIMIT ?`, match, limit)
	if err != nil {
		return nil, fmt.Errorf("fts search: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Title, &r.Link, &r.Date, &r.SiteName, &r.ChannelName); err != nil {
			return nil, fmt.Errorf("scan search result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
