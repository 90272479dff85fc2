package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"Bt1QPlayer/model"
)

var (
	searchLimit  int
	searchOffset int
)

var searchCmd = &cobra.Command{
	Use:   "search <keywords>",
	Short: "Search the catalog for tracks.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := buildEngine()
		if err != nil {
			return err
		}
		defer e.shutdown()

		_, err = doSearch(e, strings.Join(args, " "))
		return err
	},
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 20, "结果条数")
	searchCmd.Flags().IntVar(&searchOffset, "offset", 0, "分页偏移")
	rootCmd.AddCommand(searchCmd)
}

// doSearch 搜索并打印结果，返回结果列表供 REPL 按序号点播
func doSearch(e *engine, keywords string) ([]model.Track, error) {
	if keywords == "" {
		return nil, fmt.Errorf("请输入搜索关键词")
	}
	tracks, total, err := e.catalog.SearchTracks(context.Background(), keywords, searchLimit, searchOffset)
	if err != nil {
		return nil, err
	}

	for i, t := range tracks {
		fmt.Printf("%3d. [%s] %s - %s\n", i+1, t.ID, t.Name, t.ArtistNames())
	}
	fmt.Printf("共 %d 条结果\n", total)
	return tracks, nil
}
