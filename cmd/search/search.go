package search

// search子命令：对已入库的通知标题做全文搜索，结果带站点和栏目出处

import (
	"fmt"

	"github.com/dszqbsm/notifier/log"
	searchengine "github.com/dszqbsm/notifier/search"
	"github.com/dszqbsm/notifier/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var SearchCmd = &cobra.Command{
	Use:   "search <keyword>",
	Short: "full-text search over stored notifications.",
	Long:  "full-text search over stored notifications.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		Run(args)
	},
}

var (
	configFile string
	limit      int
)

func init() {
	SearchCmd.Flags().StringVar(
		&configFile, "config", "config.yaml", "set config file path")
	SearchCmd.Flags().IntVar(
		&limit, "limit", searchengine.DefaultLimit, "max results to return")
}

func Run(args []string) {
	v := viper.New()
	v.SetConfigFile(configFile)
	v.SetDefault("db", "storage/notifier.db")
	v.ReadInConfig()

	plugin := log.NewStderrPlugin(zapcore.WarnLevel)
	logger := log.NewLogger(plugin)

	store, err := storage.New(
		storage.WithPath(v.GetString("db")),
		storage.WithLogger(logger.Named("sqlDB")),
	)
	if err != nil {
		logger.Fatal("open storage failed", zap.Error(err))
	}
	defer store.Close()

	segmenter, err := searchengine.NewSegmenter()
	if err != nil {
		logger.Fatal("load segment dict failed", zap.Error(err))
	}
	engine := searchengine.NewEngine(store, segmenter, logger)

	// 多个参数拼成一个关键词串，支持带布尔结构的输入
	keyword := ""
	for i, arg := range args {
		if i > 0 {
			keyword += " "
		}
		keyword += arg
	}

	results, err := engine.Search(keyword, limit)
	if err != nil {
		// 编译或执行失败只展示提示，不让命令崩溃
		fmt.Printf("搜索失败: %v\n请检查关键词中的括号和引号是否配对。\n", err)
		return
	}
	if len(results) == 0 {
		fmt.Println("未找到相关通知。")
		return
	}
	for i, r := range results {
		fmt.Printf("%d. [%s] %s\n   %s | %s - %s\n", i+1, r.Date, r.Title, r.Link, r.SiteName, r.ChannelName)
	}
}
