package engine

// 函数式选项模式

import (
	"github.com/dszqbsm/notifier/fetch"
	"github.com/dszqbsm/notifier/notify"
	"go.uber.org/zap"
)

type options struct {
	logger    *zap.Logger
	fetcher   fetch.Fetcher
	storage   Storage
	notifier  notify.Notifier
	workCount int
}

var defaultOptions = options{
	logger:    zap.NewNop(),
	workCount: 5,
}

type Option func(opts *options)

// 配置日志器
func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

// 配置抓取器
func WithFetcher(f fetch.Fetcher) Option {
	return func(opts *options) {
		opts.fetcher = f
	}
}

// 配置存储
func WithStorage(s Storage) Option {
	return func(opts *options) {
		opts.storage = s
	}
}

// 配置推送端
func WithNotifier(n notify.Notifier) Option {
	return func(opts *options) {
		opts.notifier = n
	}
}

// 配置工作协程数量
func WithWorkCount(workCount int) Option {
	return func(opts *options) {
		if workCount > 0 {
			opts.workCount = workCount
		}
	}
}
