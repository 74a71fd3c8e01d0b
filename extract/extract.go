package extract

// extract包把抓取到的原始内容归一化为统一的通知记录，
// 两种提取策略（HTML选择器、API数据路径）实现同一个接口，调用方不需要关心记录来自哪种策略

import (
	"fmt"

	"github.com/dszqbsm/notifier/config"
)

// 字段缺失或无法解析时的占位值
const NA = "N/A"

// Record表示一条被发现的通知
type Record struct {
	Title string
	Link  string
	Date  string
}

// 提取策略接口，输入原始响应内容和任务配置，输出归一化的记录列表，
// limit是本次调用最多允许产出的记录数（结果上限在同一任务的多个URL间共享）
type Extractor interface {
	Extract(body []byte, task *config.Channel, limit int) ([]Record, error)
}

/*
输入抓取模式，输出对应的提取策略实例

模式是闭合集合，未知模式返回错误而不是中断整个运行
*/
func ForMode(mode string) (Extractor, error) {
	switch mode {
	case config.ModeHTML:
		return &HTMLExtractor{}, nil
	case config.ModeAPI:
		return &APIExtractor{}, nil
	default:
		return nil, fmt.Errorf("unknown crawl mode: %q", mode)
	}
}
