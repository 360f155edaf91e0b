package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adalundhe/psyche/core/psyche"
)

var reportClient int

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Aggregate evaluation statistics for a client",
	Long: `Collect every persisted evaluation record for a client and report
mean, spread, and per-element averages across experiments.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		paths, err := store.ListClient(ctx, reportClient)
		if err != nil {
			return err
		}

		var records []*psyche.Record
		for _, path := range paths {
			if !strings.Contains(path, "/psyche_") {
				continue
			}
			data, found, err := store.GetPath(ctx, path)
			if err != nil {
				return err
			}
			if !found {
				continue
			}
			var record psyche.Record
			if err := json.Unmarshal(data, &record); err != nil {
				return fmt.Errorf("decode %s: %w", path, err)
			}
			records = append(records, &record)
		}

		if len(records) == 0 {
			fmt.Printf("no evaluations for client %d\n", reportClient)
			return nil
		}

		report := psyche.Summarize(records)
		fmt.Printf("client %d: %d evaluations\n", reportClient, report.Count)
		fmt.Printf("  psyche score  mean %.2f  stddev %.2f  min %.2f  max %.2f\n",
			report.Mean, report.StdDev, report.Min, report.Max)
		fmt.Println("  per-element means:")
		for _, element := range report.ElementMeans {
			fmt.Printf("    %-30s %.2f (weighted %.2f)\n", element.Element, element.MeanScore, element.MeanWeighted)
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().IntVar(&reportClient, "client", 0, "client number")
	reportCmd.MarkFlagRequired("client")
	rootCmd.AddCommand(reportCmd)
}
