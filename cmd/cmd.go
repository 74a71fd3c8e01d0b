package cmd

// 借助cobra定义命令行界面，提供三个子命令：
// crawl执行定时抓取推送流程，search执行全文搜索，version打印版本信息

import (
	"github.com/dszqbsm/notifier/cmd/crawl"
	"github.com/dszqbsm/notifier/cmd/search"
	"github.com/dszqbsm/notifier/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print version.",
	Long:  "print version.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		version.Printer()
	},
}

func Execute() {
	var rootCmd = &cobra.Command{Use: "notifier"} // 仅用于组织和挂载子命令
	rootCmd.AddCommand(crawl.CrawlCmd, search.SearchCmd, versionCmd)
	rootCmd.Execute()
}
