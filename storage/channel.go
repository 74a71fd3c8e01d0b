package storage

// Channel表的非破坏性配置更新：以主URL为键，已存在的行只刷新描述性字段，
// 数字主键保持不变，这样配置被编辑后历史通知仍然挂在原来的栏目上

import (
	"fmt"

	"github.com/dszqbsm/notifier/config"
	"go.uber.org/zap"
)

/*
输入一个解析完成的任务，无有效输出

先尝试按主URL UPDATE已存在的行，没有命中说明是新配置，再执行INSERT OR IGNORE；
重复运行同一份配置是幂等的
*/
func (s *Store) UpsertChannel(ch *config.Channel) error {
	url := ch.PrimaryURL()
	if url == "" {
		return fmt.Errorf("channel %q has no url", ch.ChannelName)
	}
	configJSON, err := config.EncodeTaskConfig(ch)
	if err != nil {
		return err
	}

	res, err := s.db.Exec(`
		UPDATE Channel SET
			site_name = ?,
			channel_name = ?,
			base_link_url = ?,
			mode = ?,
			config_json = ?
		WHERE url = ?`,
		ch.SiteName, ch.ChannelName, ch.BaseLinkURL, ch.Mode, configJSON, url)
	if err != nil {
		return fmt.Errorf("update channel: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows > 0 {
		return nil
	}

	_, err = s.db.Exec(`
		INSERT OR IGNORE INTO Channel
		(site_name, channel_name, url, base_link_url, mode, config_json)
		VALUES (?, ?, ?, ?, ?, ?)`,
		ch.SiteName, ch.ChannelName, url, ch.BaseLinkURL, ch.Mode, configJSON)
	if err != nil {
		return fmt.Errorf("insert channel: %w", err)
	}
	s.logger.Info("channel registered",
		zap.String("site", ch.SiteName),
		zap.String("channel", ch.ChannelName))
	return nil
}

// 批量导入任务配置，单个任务失败只记录日志，不影响其他任务
func (s *Store) UpsertChannels(channels []*config.Channel) {
	for _, ch := range channels {
		if err := s.UpsertChannel(ch); err != nil {
			s.logger.Error("upsert channel failed",
				zap.String("channel", ch.ChannelName),
				zap.Error(err))
		}
	}
}

// 从数据库读出全部栏目的完整任务配置，供调度器使用
func (s *Store) AllChannels() ([]*config.Channel, error) {
	rows, err := s.db.Query(`
		SELECT id, site_name, channel_name, url, base_link_url, mode, config_json
		FROM Channel`)
	if err != nil {
		return nil, fmt.Errorf("query channels: %w", err)
	}
	defer rows.Close()

	var channels []*config.Channel
	for rows.Next() {
		var (
			id                                              int64
			siteName, channelName, url, base, mode, cfgJSON string
		)
		if err := rows.Scan(&id, &siteName, &channelName, &url, &base, &mode, &cfgJSON); err != nil {
			return nil, fmt.Errorf("scan channel: %w", err)
		}
		ch, err := config.DecodeChannel(id, siteName, channelName, url, base, mode, cfgJSON)
		if err != nil {
			// 单行配置损坏不应让整个任务集不可用
			s.logger.Error("decode channel config failed",
				zap.String("channel", channelName), zap.Error(err))
			continue
		}
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}
