package storage

// 函数式选项模式

import (
	"go.uber.org/zap"
)

// Tokenizer把标题切分为以空格连接的词串，作为全文索引的内容；
// 由search包注入分词实现，避免storage直接依赖分词器
type Tokenizer func(text string) string

type options struct {
	logger    *zap.Logger
	path      string
	tokenizer Tokenizer
}

// 默认选项：索引原始标题（不分词），数据库放在storage目录下
var defaultOptions = options{
	logger:    zap.NewNop(),
	path:      "storage/notifier.db",
	tokenizer: func(text string) string { return text },
}

type Option func(opts *options)

// 配置日志器
func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

// 配置数据库文件路径
func WithPath(path string) Option {
	return func(opts *options) {
		opts.path = path
	}
}

// 配置标题分词器
func WithTokenizer(tokenizer Tokenizer) Option {
	return func(opts *options) {
		if tokenizer != nil {
			opts.tokenizer = tokenizer
		}
	}
}
