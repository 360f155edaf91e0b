package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adalundhe/psyche/core/blobstore"
	"github.com/adalundhe/psyche/core/construct"
	"github.com/adalundhe/psyche/core/format"
	"github.com/adalundhe/psyche/core/psyche"
)

var (
	evaluateClient int
	evaluateExp    int
	evaluateModel  string
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score the PACA construct against its SP reference",
	Long: `Score an experiment's PACA construct against the SP construct using
the configured rubric. The weighted element scores, diagnostics, and the
aggregate psyche score are persisted as the evaluation record.`,
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

		spConstruct, pacaConstruct, err := loadConstructs(cmd, store)
		if err != nil {
			return err
		}

		llm, err := newGateway(ctx, cfg, evaluateModel)
		if err != nil {
			return err
		}
		judge, err := psyche.NewLLMJudge(llm, "")
		if err != nil {
			return err
		}
		defer judge.Close()

		evaluator := psyche.NewEvaluator(rubric, judge,
			psyche.WithChiefComplaintPolicy(psyche.Policy(cfg.Evaluation.ChiefComplaintPolicy)))

		record, err := evaluator.Score(ctx, spConstruct, pacaConstruct)
		if err != nil {
			return err
		}
		record.Client = evaluateClient
		record.Experiment = evaluateExp
		record.Model = modelName(cfg.LLM.Model, evaluateModel)
		if record.Diagnosis == "" {
			record.Diagnosis = clientDiagnosis(cmd, store)
		}

		key := blobstore.EvaluationKey(record.Diagnosis, record.Model, evaluateExp)
		if err := store.Put(ctx, evaluateClient, key, record); err != nil {
			return err
		}

		fmt.Printf("psyche score %.2f (normalized %.3f) persisted as %s\n",
			record.PsycheScore, record.NormalizedScore, key)
		for _, element := range record.Elements {
			line := fmt.Sprintf("  %-30s %.2f x %d = %.2f", element.Element, element.Score, element.Weight, element.WeightedScore)
			if element.Diagnostic != "" {
				line += "  (" + element.Diagnostic + ")"
			}
			fmt.Println(line)
		}
		return nil
	},
}

func loadConstructs(cmd *cobra.Command, store *blobstore.Adapter) (*format.Map, *format.Map, error) {
	spConstruct, found, err := store.GetRecord(cmd.Context(), evaluateClient, blobstore.SpConstructKey(evaluateClient, evaluateExp))
	if err != nil {
		return nil, nil, err
	}
	if !found {
		return nil, nil, fmt.Errorf("no SP construct for client %d experiment %d; run psyche extract first", evaluateClient, evaluateExp)
	}
	pacaConstruct, found, err := store.GetRecord(cmd.Context(), evaluateClient, blobstore.PacaConstructKey(evaluateClient, evaluateExp))
	if err != nil {
		return nil, nil, err
	}
	if !found {
		return nil, nil, fmt.Errorf("no PACA construct for client %d experiment %d; run psyche extract first", evaluateClient, evaluateExp)
	}
	return spConstruct, pacaConstruct, nil
}

// clientDiagnosis resolves the diagnosis tag from the client's given
// information; evaluation proceeds untagged when it is absent.
func clientDiagnosis(cmd *cobra.Command, store *blobstore.Adapter) string {
	data, found, err := store.Get(cmd.Context(), evaluateClient, blobstore.GivenInformationKey())
	if err != nil || !found {
		return "unknown"
	}
	var info construct.GivenInformation
	if err := json.Unmarshal(data, &info); err != nil {
		return "unknown"
	}
	if tag, ok := info.Tag(); ok {
		return string(tag)
	}
	return "unknown"
}

func modelName(configured, override string) string {
	if override != "" {
		return override
	}
	if configured != "" {
		return configured
	}
	return "default"
}

func init() {
	evaluateCmd.Flags().IntVar(&evaluateClient, "client", 0, "client number")
	evaluateCmd.Flags().IntVar(&evaluateExp, "exp", 1, "experiment number")
	evaluateCmd.Flags().StringVar(&evaluateModel, "model", "", "override configured model")
	evaluateCmd.MarkFlagRequired("client")
	rootCmd.AddCommand(evaluateCmd)
}
