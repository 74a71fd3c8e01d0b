package engine

// engine包实现一次运行到结束的批处理任务：从存储加载全部栏目，
// 分发给有界的工作协程池抓取、提取、去重入库，新记录按栏目分组交给推送端。
// 各栏目的数据和去重键空间互不相交，处理顺序与正确性无关；
// 单个栏目的任何失败都被限制在该栏目内，不会中断兄弟任务

import (
	"context"

	"github.com/dszqbsm/notifier/config"
	"github.com/dszqbsm/notifier/extract"
	"github.com/dszqbsm/notifier/storage"
	"go.uber.org/zap"
)

// 引擎对存储的依赖面，由storage.Store实现
type Storage interface {
	AllChannels() ([]*config.Channel, error)
	IsNew(fingerprint string) (bool, error)
	Commit(channelID int64, title, link, date string) (bool, error)
}

// 单个栏目本次运行的处理结果，错误和记录成对收集，任务循环无条件继续
type ChannelResult struct {
	Channel    *config.Channel
	NewRecords []extract.Record
	Err        error
}

// 一次运行的汇总统计
type RunStats struct {
	Channels  int
	NewItems  int
	FailTasks int
}

// 批处理爬虫实例
type Crawler struct {
	out chan ChannelResult
	options
}

// 创建一个新的引擎实例，并根据传入的选项进行配置
func NewEngine(opts ...Option) *Crawler {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	e := &Crawler{}
	e.options = options
	e.out = make(chan ChannelResult)
	return e
}

/*
执行一次完整的定时抓取、去重和推送流程

从存储加载任务集是唯一的致命失败点；之后每个栏目独立处理，
工作协程池的大小由WithWorkCount控制
*/
func (c *Crawler) Run(ctx context.Context) (*RunStats, error) {
	channels, err := c.storage.AllChannels()
	if err != nil {
		return nil, err
	}
	c.logger.Info("run start", zap.Int("channels", len(channels)))

	work := make(chan *config.Channel)
	for i := 0; i < c.workCount; i++ {
		go c.createWork(ctx, work)
	}
	go func() {
		for _, ch := range channels {
			work <- ch
		}
		close(work)
	}()

	stats := &RunStats{Channels: len(channels)}
	for i := 0; i < len(channels); i++ {
		result := <-c.out
		if result.Err != nil {
			stats.FailTasks++
			c.logger.Error("channel failed",
				zap.String("site", result.Channel.SiteName),
				zap.String("channel", result.Channel.ChannelName),
				zap.Error(result.Err))
			continue
		}
		if len(result.NewRecords) == 0 {
			continue
		}
		stats.NewItems += len(result.NewRecords)
		if c.notifier != nil {
			if err := c.notifier.Notify(result.Channel, result.NewRecords); err != nil {
				c.logger.Error("notify failed",
					zap.String("channel", result.Channel.ChannelName),
					zap.Error(err))
			}
		}
	}

	c.logger.Info("run finished",
		zap.Int("channels", stats.Channels),
		zap.Int("new", stats.NewItems),
		zap.Int("failed", stats.FailTasks))
	return stats, nil
}

// 工作协程：不断从任务通道取出栏目处理，把结果写入输出通道
func (c *Crawler) createWork(ctx context.Context, work <-chan *config.Channel) {
	for ch := range work {
		c.out <- c.crawlChannel(ctx, ch)
	}
}

/*
处理单个栏目：抓取每个URL、提取记录、按指纹去重后写入存储

结果上限在该栏目的多个URL之间共享，所以URL必须按配置顺序处理；
单个URL的抓取或解析失败只记录日志并继续处理剩下的URL
*/
func (c *Crawler) crawlChannel(ctx context.Context, ch *config.Channel) ChannelResult {
	extractor, err := extract.ForMode(ch.Mode)
	if err != nil {
		return ChannelResult{Channel: ch, Err: err}
	}

	var items []extract.Record
	for _, url := range ch.URLs {
		if len(items) >= ch.MaxCount {
			break
		}
		if err := ctx.Err(); err != nil {
			return ChannelResult{Channel: ch, Err: err}
		}

		body, err := c.fetcher.Get(url)
		if err != nil {
			c.logger.Warn("fetch failed",
				zap.String("channel", ch.ChannelName),
				zap.String("url", url),
				zap.Error(err))
			continue
		}
		records, err := extractor.Extract(body, ch, ch.MaxCount-len(items))
		if err != nil {
			c.logger.Warn("extract failed",
				zap.String("channel", ch.ChannelName),
				zap.String("url", url),
				zap.Error(err))
			continue
		}
		items = append(items, records...)
	}

	var newRecords []extract.Record
	for _, item := range items {
		fingerprint := storage.Fingerprint(item.Title, item.Link)
		isNew, err := c.storage.IsNew(fingerprint)
		if err != nil {
			c.logger.Error("dedup lookup failed", zap.Error(err))
			continue
		}
		if !isNew {
			continue
		}
		// Commit内部再做一次指纹冲突保护，并发提交同一指纹不会重复计数
		inserted, err := c.storage.Commit(ch.ID, item.Title, item.Link, item.Date)
		if err != nil {
			// 事务已回滚，这条记录下次运行会被重新发现
			c.logger.Error("commit failed",
				zap.String("title", item.Title),
				zap.Error(err))
			continue
		}
		if inserted {
			newRecords = append(newRecords, item)
		}
	}
	return ChannelResult{Channel: ch, NewRecords: newRecords}
}
