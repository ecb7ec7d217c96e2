package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rosterctl",
	Short: "离线生成值班表",
	Long:  `读取 YAML 或 TOML 格式的场景文件，在本地运行排班引擎，不需要数据库和消息队列。`,
}

func init() {
	rootCmd.AddCommand(generateCmd)
}
