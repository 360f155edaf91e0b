package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/adalundhe/psyche/core/construct"
)

var (
	buildClient      int
	buildDiagnosis   string
	buildAge         int
	buildSex         string
	buildNationality string
	buildVersion     string
	buildDate        string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Author a simulated patient case",
	Long: `Author the three persistent case artifacts for a client: the factual
Profile, the narrative History, and the Behavioral Directive with its
embedded mental status examination form.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		ts, err := openTemplates(cfg)
		if err != nil {
			return err
		}

		llm, err := newGateway(cmd.Context(), cfg, "")
		if err != nil {
			return err
		}

		dateToken := buildDate
		if dateToken == "" {
			dateToken = time.Now().Format("2006-01-02")
		}

		builder := construct.NewBuilder(ts, store, llm, dateToken)
		info := construct.GivenInformation{
			Diagnosis:   buildDiagnosis,
			Age:         buildAge,
			Sex:         buildSex,
			Nationality: buildNationality,
		}

		artifacts, err := builder.Build(cmd.Context(), buildClient, info, buildVersion)
		if err != nil {
			return err
		}

		tag, _ := info.Tag()
		fmt.Printf("built client %d (%s) with %d profile fields\n",
			artifacts.Client, tag, artifacts.Profile.Len())
		return nil
	},
}

func init() {
	buildCmd.Flags().IntVar(&buildClient, "client", 0, "client number")
	buildCmd.Flags().StringVar(&buildDiagnosis, "diagnosis", "", "diagnosis name or tag (e.g. \"Panic Disorder\", MDD)")
	buildCmd.Flags().IntVar(&buildAge, "age", 0, "patient age")
	buildCmd.Flags().StringVar(&buildSex, "sex", "", "patient sex")
	buildCmd.Flags().StringVar(&buildNationality, "nationality", "", "patient nationality")
	buildCmd.Flags().StringVar(&buildVersion, "version", "1.0", "artifact template version")
	buildCmd.Flags().StringVar(&buildDate, "date", "", "anchor date for narratives (default today)")
	buildCmd.MarkFlagRequired("client")
	buildCmd.MarkFlagRequired("diagnosis")
	rootCmd.AddCommand(buildCmd)
}
