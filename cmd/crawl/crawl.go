package crawl

// crawl子命令：加载站点配置，展开为任务导入数据库，然后执行一次
// 抓取-去重-推送批处理；配置了cron表达式时按计划反复运行

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/dszqbsm/notifier/config"
	"github.com/dszqbsm/notifier/engine"
	"github.com/dszqbsm/notifier/fetch"
	"github.com/dszqbsm/notifier/limiter"
	"github.com/dszqbsm/notifier/log"
	"github.com/dszqbsm/notifier/notify"
	"github.com/dszqbsm/notifier/proxy"
	"github.com/dszqbsm/notifier/search"
	"github.com/dszqbsm/notifier/storage"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"
)

var CrawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "run the crawl pipeline.",
	Long:  "run the crawl pipeline.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		Run()
	},
}

var configFile string

func init() {
	CrawlCmd.Flags().StringVar(
		&configFile, "config", "config.yaml", "set config file path")
}

// 限速配置，EventDur单位为秒
type LimitConfig struct {
	EventCount int
	EventDur   int
}

func Run() {
	// 通过viper加载应用配置
	v := viper.New()
	v.SetConfigFile(configFile)
	v.SetDefault("logLevel", "INFO")
	v.SetDefault("db", "storage/notifier.db")
	v.SetDefault("sitesFile", "sites.json")
	v.SetDefault("workCount", 5)
	v.SetDefault("fetcher.timeout", 10000)
	if err := v.ReadInConfig(); err != nil {
		// 配置文件缺失时全部使用默认值
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			panic(err)
		}
	}

	// log
	logLevel, err := zapcore.ParseLevel(v.GetString("logLevel"))
	if err != nil {
		panic(err)
	}
	plugin := log.NewStdoutPlugin(logLevel)
	if logFile := v.GetString("logFile"); logFile != "" {
		filePlugin, closer := log.NewFilePlugin(logFile, logLevel)
		defer closer.Close()
		plugin = zapcore.NewTee(plugin, filePlugin)
	}
	logger := log.NewLogger(plugin)
	logger.Info("log init end")
	zap.ReplaceGlobals(logger)

	// 分词器，标题入索引和查询编译共用
	segmenter, err := search.NewSegmenter()
	if err != nil {
		logger.Fatal("load segment dict failed", zap.Error(err))
	}

	// 存储配置
	store, err := storage.New(
		storage.WithPath(v.GetString("db")),
		storage.WithLogger(logger.Named("sqlDB")),
		storage.WithTokenizer(segmenter.ForIndex),
	)
	if err != nil {
		logger.Fatal("create storage failed", zap.Error(err))
	}
	defer store.Close()

	// 加载站点配置并展开为任务导入数据库（非破坏性更新）
	sites, err := loadSites(v.GetString("sitesFile"))
	if err != nil {
		logger.Fatal("load sites config failed", zap.Error(err))
	}
	channels := config.Resolve(sites, logger)
	store.UpsertChannels(channels)
	logger.Info("channels imported", zap.Int("count", len(channels)))

	// 采集器配置
	var p proxy.ProxyFunc
	if proxyURLs := v.GetStringSlice("fetcher.proxy"); len(proxyURLs) > 0 {
		if p, err = proxy.RoundRobinProxySwitcher(proxyURLs...); err != nil {
			logger.Error("RoundRobinProxySwitcher failed", zap.Error(err))
		}
	}
	var limit limiter.RateLimiter
	var lcfgs []LimitConfig
	if err := v.UnmarshalKey("fetcher.limits", &lcfgs); err == nil && len(lcfgs) > 0 {
		var limits []limiter.RateLimiter
		for _, lcfg := range lcfgs {
			l := rate.NewLimiter(limiter.Per(lcfg.EventCount, time.Duration(lcfg.EventDur)*time.Second), 1)
			limits = append(limits, l)
		}
		limit = limiter.Multi(limits...)
	}
	var f fetch.Fetcher = &fetch.BrowserFetch{
		Timeout: time.Duration(v.GetInt("fetcher.timeout")) * time.Millisecond,
		Proxy:   p,
		Limit:   limit,
		Cookie:  v.GetString("fetcher.cookie"),
		Logger:  logger,
	}

	// 初始化批处理引擎
	e := engine.NewEngine(
		engine.WithFetcher(f),
		engine.WithStorage(store),
		engine.WithNotifier(notify.NewLogNotifier(logger.Named("notify"))),
		engine.WithLogger(logger),
		engine.WithWorkCount(v.GetInt("workCount")),
	)

	runOnce := func() {
		if _, err := e.Run(context.Background()); err != nil {
			logger.Error("run failed", zap.Error(err))
		}
	}

	// 未配置cron表达式时只运行一次
	spec := v.GetString("cron")
	if spec == "" {
		runOnce()
		return
	}
	c := cron.New()
	if _, err := c.AddFunc(spec, runOnce); err != nil {
		logger.Fatal("invalid cron spec", zap.String("spec", spec), zap.Error(err))
	}
	logger.Info("cron scheduler started", zap.String("spec", spec))
	c.Run()
}

// 站点配置是外部契约约定的JSON文件
func loadSites(path string) ([]*config.Site, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sites []*config.Site
	if err := json.Unmarshal(data, &sites); err != nil {
		return nil, err
	}
	return sites, nil
}
