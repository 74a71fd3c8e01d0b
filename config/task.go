package config

// 任务配置与Channel表config_json列之间的序列化，数据库独立列（站点名、栏目名、主URL、
// base_link_url、模式）之外的内容都封装在config_json中

import (
	"encoding/json"
	"fmt"
)

type taskConfig struct {
	URLList  []string    `json:"url_list"`
	MaxCount int         `json:"max_count"`
	HTML     *HTMLConfig `json:"html_config,omitempty"`
	API      *APIConfig  `json:"api_config,omitempty"`
}

// EncodeTaskConfig把任务的可序列化部分编码为config_json
func EncodeTaskConfig(c *Channel) (string, error) {
	cfg := taskConfig{
		URLList:  c.URLs,
		MaxCount: c.MaxCount,
		HTML:     c.HTML,
		API:      c.API,
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("encode task config: %w", err)
	}
	return string(data), nil
}

// DecodeChannel把数据库一行还原为完整的任务单元
func DecodeChannel(id int64, siteName, channelName, url, baseLinkURL, mode, configJSON string) (*Channel, error) {
	var cfg taskConfig
	if err := json.Unmarshal([]byte(configJSON), &cfg); err != nil {
		return nil, fmt.Errorf("decode task config for channel %q: %w", channelName, err)
	}
	urls := cfg.URLList
	if len(urls) == 0 && url != "" {
		urls = []string{url}
	}
	maxCount := cfg.MaxCount
	if maxCount <= 0 {
		maxCount = DefaultMaxCount
	}
	return &Channel{
		ID:          id,
		SiteName:    siteName,
		ChannelName: channelName,
		Mode:        mode,
		URLs:        urls,
		BaseLinkURL: baseLinkURL,
		MaxCount:    maxCount,
		HTML:        cfg.HTML,
		API:         cfg.API,
	}, nil
}
