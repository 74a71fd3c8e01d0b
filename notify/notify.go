package notify

// notify包定义外发推送的交接契约：引擎把新记录按栏目分组交给Notifier，
// 引擎的职责到这里为止，实际的消息投递（webhook签名、markdown渲染等）由外部实现

import (
	"github.com/dszqbsm/notifier/config"
	"github.com/dszqbsm/notifier/extract"
	"go.uber.org/zap"
)

// Notifier接收一个栏目本次运行发现的全部新记录
type Notifier interface {
	Notify(ch *config.Channel, records []extract.Record) error
}

// 把新记录打到日志的Notifier，没有配置真正的推送通道时作为默认实现
type LogNotifier struct {
	Logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{Logger: logger}
}

func (n *LogNotifier) Notify(ch *config.Channel, records []extract.Record) error {
	for _, r := range records {
		n.Logger.Info("new notification",
			zap.String("site", ch.SiteName),
			zap.String("channel", ch.ChannelName),
			zap.String("title", r.Title),
			zap.String("link", r.Link),
			zap.String("date", r.Date))
	}
	return nil
}
