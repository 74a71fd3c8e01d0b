package config

// 把树状的站点配置展开为扁平的爬取任务列表，处理Site级配置的继承和Channel级配置的覆盖
// 继承必须是非共享的：每个任务都持有独立的深拷贝，修改一个任务的配置不会影响其他任务或原始站点配置

import (
	"go.uber.org/zap"
)

/*
输入站点配置列表，输出扁平的爬取任务列表

每个站点先提取Site级默认配置（除name和channels外的全部字段）的深拷贝，
声明了channels的站点为每个栏目生成一个任务，栏目自身的字段覆盖默认配置，
其中html_config/api_config按键做浅层合并而不是整体替换；
没有channels的站点本身作为一个隐式栏目，URL取自对应模式配置中的url字段。
缺少必要字段的站点或栏目会被记录日志并跳过，不会中断其他站点的处理
*/
func Resolve(sites []*Site, logger *zap.Logger) []*Channel {
	if logger == nil {
		logger = zap.NewNop()
	}
	var tasks []*Channel

	for _, site := range sites {
		if site == nil || site.Name == "" {
			logger.Warn("skip site without name")
			continue
		}
		mode := site.Mode
		if mode == "" {
			mode = ModeHTML
		}

		if len(site.Channels) == 0 {
			task := resolveImplicit(site, mode)
			if task == nil {
				logger.Warn("skip site without url", zap.String("site", site.Name))
				continue
			}
			tasks = append(tasks, task)
			continue
		}

		for i := range site.Channels {
			ch := &site.Channels[i]
			if ch.ChannelName == "" || len(ch.URL) == 0 {
				logger.Warn("skip channel missing channel_name or url",
					zap.String("site", site.Name),
					zap.String("channel", ch.ChannelName))
				continue
			}
			tasks = append(tasks, resolveChannel(site, ch, mode))
		}
	}
	return tasks
}

// 声明了channels的站点：任务配置从Site级默认值的深拷贝开始，再应用栏目自身的覆盖
func resolveChannel(site *Site, ch *ChannelConfig, siteMode string) *Channel {
	mode := siteMode
	if ch.Mode != "" {
		mode = ch.Mode
	}
	maxCount := site.MaxCount
	if ch.MaxCount > 0 {
		maxCount = ch.MaxCount
	}
	if maxCount <= 0 {
		maxCount = DefaultMaxCount
	}

	// html_config/api_config做按键合并，让栏目只覆盖个别键而继承其余配置
	htmlConf := site.HTMLConfig.Clone()
	if ch.HTMLConfig != nil {
		htmlConf = site.HTMLConfig.Merge(ch.HTMLConfig)
	}
	apiConf := site.APIConfig.Clone()
	if ch.APIConfig != nil {
		apiConf = site.APIConfig.Merge(ch.APIConfig)
	}

	task := &Channel{
		SiteName:    site.Name,
		ChannelName: ch.ChannelName,
		Mode:        mode,
		URLs:        append([]string(nil), ch.URL...),
		MaxCount:    maxCount,
		HTML:        htmlConf,
		API:         apiConf,
	}
	task.BaseLinkURL = baseLinkURL(task)
	return task
}

// 没有channels的站点本身就是一个栏目，栏目名复用站点名
func resolveImplicit(site *Site, mode string) *Channel {
	maxCount := site.MaxCount
	if maxCount <= 0 {
		maxCount = DefaultMaxCount
	}
	task := &Channel{
		SiteName:    site.Name,
		ChannelName: site.Name,
		Mode:        mode,
		MaxCount:    maxCount,
		HTML:        site.HTMLConfig.Clone(),
		API:         site.APIConfig.Clone(),
	}
	switch mode {
	case ModeAPI:
		if task.API != nil {
			task.URLs = append([]string(nil), task.API.URL...)
		}
	default:
		if task.HTML != nil {
			task.URLs = append([]string(nil), task.HTML.URL...)
		}
	}
	if len(task.URLs) == 0 {
		return nil
	}
	task.BaseLinkURL = baseLinkURL(task)
	return task
}

// 从当前模式的提取配置中取出base_link_url，作为数据库的独立列保存
func baseLinkURL(task *Channel) string {
	switch task.Mode {
	case ModeAPI:
		if task.API != nil {
			return task.API.BaseLinkURL
		}
	default:
		if task.HTML != nil {
			return task.HTML.BaseLinkURL
		}
	}
	return ""
}
