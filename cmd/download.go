package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"Bt1QPlayer/core/download"
	"Bt1QPlayer/model"
)

var downloadCmd = &cobra.Command{
	Use:   "download <id>...",
	Short: "Download tracks with lyrics and cover art for offline playback.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := buildEngine()
		if err != nil {
			return err
		}
		defer e.shutdown()

		for _, id := range args {
			if err := enqueueDownload(e, id); err != nil {
				fmt.Println("入队失败:", err)
			}
		}
		e.download.Wait()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(downloadCmd)
}

// enqueueDownload 查详情后入队
func enqueueDownload(e *engine, id string) error {
	track, err := e.catalog.GetTrack(context.Background(), id)
	if err != nil {
		return err
	}
	return e.download.AddTask(*track, download.Options{}, consoleDownloadEvents{})
}

// consoleDownloadEvents 下载进度打印到终端
type consoleDownloadEvents struct{}

func (consoleDownloadEvents) OnStart(t model.Track) {
	fmt.Printf("开始下载: %s - %s\n", t.Name, t.ArtistNames())
}

func (consoleDownloadEvents) OnComplete(rec *model.DownloadedSong) {
	fmt.Printf("下载完成: %s → %s\n", rec.Name, rec.LocalURI)
}

func (consoleDownloadEvents) OnError(t model.Track, err error) {
	fmt.Printf("下载失败: %s: %v\n", t.Name, err)
}
