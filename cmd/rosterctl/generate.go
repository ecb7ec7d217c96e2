package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/scenario"
	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/scheduler"
)

var (
	flagFile   string
	flagStrict bool
	flagJSON   bool
	flagWatch  bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "根据场景文件生成排班",
	Example: `  rosterctl generate -f guard.yaml
  rosterctl generate -f guard.toml --strict --json
  rosterctl generate -f guard.yaml --watch`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&flagFile, "file", "f", "", "场景文件路径（.yaml/.yml/.toml）")
	generateCmd.Flags().BoolVar(&flagStrict, "strict", false, "人数不足时直接报错，而不是记录缺口")
	generateCmd.Flags().BoolVar(&flagJSON, "json", false, "以 JSON 格式输出完整结果")
	generateCmd.Flags().BoolVar(&flagWatch, "watch", false, "文件变化时重新生成")
	_ = generateCmd.MarkFlagRequired("file")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	parameters := scheduler.DefaultParameters()
	if flagStrict {
		parameters.StaffingPolicy = scheduler.StaffingPolicyStrict
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !flagWatch {
		return generateOnce(ctx, cmd, parameters, logger)
	}

	// 监听模式下生成失败只打印错误，继续等待下一次修改
	if err := generateOnce(ctx, cmd, parameters, logger); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "生成失败:", err)
	}
	return watch(ctx, flagFile, func() {
		fmt.Fprintf(cmd.OutOrStdout(), "\n--- %s 重新生成 ---\n", time.Now().Format(time.TimeOnly))
		if err := generateOnce(ctx, cmd, parameters, logger); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "生成失败:", err)
		}
	})
}

func generateOnce(ctx context.Context, cmd *cobra.Command, parameters *scheduler.Parameters, logger *slog.Logger) error {
	s, err := scenario.Load(flagFile)
	if err != nil {
		return err
	}

	outcome, store, err := scenario.Generate(ctx, s, parameters, logger)
	if err != nil {
		return err
	}

	if flagJSON {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(outcome.Result)
	}
	return scenario.WriteGrid(cmd.OutOrStdout(), store, outcome.Result)
}

// watch 监听文件所在的目录，编辑器保存时常常是先删除再创建
func watch(ctx context.Context, path string, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("无法创建文件监听: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("无法监听目录: %w", err)
	}

	// 一次保存可能触发多个事件，合并 200ms 内的事件
	var debounce <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				debounce = time.After(200 * time.Millisecond)
			}
		case <-debounce:
			debounce = nil
			onChange()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(os.Stderr, "文件监听出错:", err)
		}
	}
}
