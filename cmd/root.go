package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"Bt1QPlayer/model"
)

var rootCmd = &cobra.Command{
	Use:   "1qplayer",
	Short: "1QPlayer is a background playback and download engine for cloud music.",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := buildEngine()
		if err != nil {
			return err
		}
		defer e.shutdown()

		e.player.Subscribe(consoleNotifier{})
		if err := e.player.Initialize(); err != nil {
			return err
		}
		return repl(e)
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// repl 简单的交互循环，命令出错只提示不退出
func repl(e *engine) error {
	fmt.Println("命令: play [id|序号] / p / next / prev / mode / seek <秒> / fm / exitfm / search <词> / dl <id> / save / quit")

	var lastResults []model.Track
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			fmt.Print("> ")
			continue
		}
		cmdName, rest := fields[0], fields[1:]

		var err error
		switch cmdName {
		case "play":
			if len(rest) == 0 {
				err = e.player.Play("", nil)
				break
			}
			// 数字序号指向上次搜索结果，其余按歌曲 ID 处理
			if n, convErr := strconv.Atoi(rest[0]); convErr == nil && n >= 1 && n <= len(lastResults) {
				t := lastResults[n-1]
				err = e.player.Play(t.ID, &t)
			} else {
				err = e.player.Play(rest[0], nil)
			}
		case "p", "pause":
			err = e.player.PlayOrPause()
		case "next":
			err = e.player.Change(1)
		case "prev":
			err = e.player.Change(-1)
		case "mode":
			fmt.Println("播放模式:", e.player.ChangeMode())
		case "seek":
			if len(rest) == 1 {
				var sec float64
				if sec, err = strconv.ParseFloat(rest[0], 64); err == nil {
					err = e.player.Seek(sec)
				}
			}
		case "fm":
			err = e.player.StartFmMode(nil)
		case "exitfm":
			err = e.player.ExitFmMode()
		case "search":
			lastResults, err = doSearch(e, strings.Join(rest, " "))
		case "dl":
			for _, id := range rest {
				err = enqueueDownload(e, id)
				if err != nil {
					break
				}
			}
		case "save":
			err = e.player.SaveSession()
		case "quit", "exit", "q":
			return nil
		default:
			fmt.Println("未知命令:", cmdName)
		}

		if err != nil {
			fmt.Println("出错了:", err)
		}
		fmt.Print("> ")
	}
	return scanner.Err()
}
