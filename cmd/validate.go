package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/adalundhe/psyche/core/blobstore"
	"github.com/adalundhe/psyche/core/expert"
	"github.com/adalundhe/psyche/core/psyche"
)

var (
	validateClient      int
	validateExp         int
	validateExpert      string
	validateChoicesFile string
	validateProcess     int
	validateTechniques  int
	validateInformation int
)

// choicesFile is the on-disk form an expert fills in: element name to
// chosen option, plus optional free-text references.
type choicesFile struct {
	Choices map[string]string `yaml:"choices"`
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Record an expert validation of a PACA construct",
	Long: `Score an experiment's PACA construct against reference choices made by
a human expert, and record the expert's three interview quality ratings.
The result is persisted top-level under the expert's name.`,
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

		ts, err := openTemplates(cfg)
		if err != nil {
			return err
		}
		rubric, err := loadRubric(ts, cfg)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(validateChoicesFile)
		if err != nil {
			return fmt.Errorf("read choices: %w", err)
		}
		var file choicesFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return fmt.Errorf("parse choices: %w", err)
		}

		quality, err := expert.NewQualityAssessment(validateProcess, validateTechniques, validateInformation)
		if err != nil {
			return err
		}

		pacaConstruct, found, err := store.GetRecord(ctx, validateClient, blobstore.PacaConstructKey(validateClient, validateExp))
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("no PACA construct for client %d experiment %d", validateClient, validateExp)
		}

		llm, err := newGateway(ctx, cfg, "")
		if err != nil {
			return err
		}
		judge, err := psyche.NewLLMJudge(llm, "")
		if err != nil {
			return err
		}
		defer judge.Close()

		validator := expert.NewValidator(rubric, judge,
			psyche.WithChiefComplaintPolicy(psyche.Policy(cfg.Evaluation.ChiefComplaintPolicy)))

		record, err := validator.Validate(ctx, validateExpert, pacaConstruct, file.Choices, quality)
		if err != nil {
			return err
		}
		record.Evaluation.Client = validateClient
		record.Evaluation.Experiment = validateExp

		key := blobstore.ExpertKey(validateExpert, validateClient, validateExp)
		if err := store.PutPath(ctx, key, record); err != nil {
			return err
		}

		fmt.Printf("expert %s: psyche score %.2f, quality %d/15, persisted as %s\n",
			validateExpert, record.Evaluation.PsycheScore, record.Quality.Total, key)
		return nil
	},
}

func init() {
	validateCmd.Flags().IntVar(&validateClient, "client", 0, "client number")
	validateCmd.Flags().IntVar(&validateExp, "exp", 1, "experiment number")
	validateCmd.Flags().StringVar(&validateExpert, "expert", "", "expert rater name")
	validateCmd.Flags().StringVar(&validateChoicesFile, "choices", "", "YAML file of element choices")
	validateCmd.Flags().IntVar(&validateProcess, "process", 0, "process of the interview (1-5)")
	validateCmd.Flags().IntVar(&validateTechniques, "techniques", 0, "interview techniques (1-5)")
	validateCmd.Flags().IntVar(&validateInformation, "information", 0, "information for diagnosis (1-5)")
	validateCmd.MarkFlagRequired("client")
	validateCmd.MarkFlagRequired("expert")
	validateCmd.MarkFlagRequired("choices")
	rootCmd.AddCommand(validateCmd)
}
