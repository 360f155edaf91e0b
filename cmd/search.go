package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adalundhe/psyche/core/search"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search indexed conversation transcripts",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		index, err := search.Open(cfg.Search.IndexPath)
		if err != nil {
			return err
		}
		defer index.Close()

		hits, err := index.Search(strings.Join(args, " "), searchLimit)
		if err != nil {
			return err
		}
		if len(hits) == 0 {
			fmt.Println("no matches")
			return nil
		}

		for _, hit := range hits {
			fmt.Printf("client %d experiment %d (score %.3f)\n", hit.Client, hit.Experiment, hit.Score)
			for _, fragment := range hit.Fragments {
				fmt.Printf("  %s\n", strings.TrimSpace(fragment))
			}
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "maximum results")
	rootCmd.AddCommand(searchCmd)
}
