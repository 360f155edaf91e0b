package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adalundhe/psyche/agents/paca"
	"github.com/adalundhe/psyche/core/blobstore"
	"github.com/adalundhe/psyche/core/construct"
	"github.com/adalundhe/psyche/core/dialogue"
	"github.com/adalundhe/psyche/core/extract"
)

var (
	extractClient  int
	extractExp     int
	extractVersion string
	extractModel   string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract SP and PACA constructs for a finished interview",
	Long: `Produce the two parallel structured records for an experiment: the SP
construct assembled from the authored artifacts, and the PACA construct
elicited by questioning the interviewer over its restored conversation
memory.`,
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

		schema, err := ts.GivenForm(cfg.Evaluation.GivenFormVersion)
		if err != nil {
			return err
		}
		extractor := extract.New(schema)

		artifacts, err := construct.Load(ctx, store, extractClient, extractVersion)
		if err != nil {
			return err
		}

		spConstruct, err := extractor.ExtractSP(artifacts)
		if err != nil {
			return err
		}
		if err := store.Put(ctx, extractClient, blobstore.SpConstructKey(extractClient, extractExp), spConstruct); err != nil {
			return err
		}

		record, err := loadConversation(cmd, store)
		if err != nil {
			return err
		}

		llm, err := newGateway(ctx, cfg, extractModel)
		if err != nil {
			return err
		}
		pacaBase, err := ts.SystemPrompt("paca", extractVersion, "")
		if err != nil {
			return err
		}
		clinician := paca.Resume(llm, paca.BuildSystemPrompt(pacaBase), record.Data)

		pacaConstruct, err := extractor.ExtractPACA(ctx, clinician)
		if err != nil {
			return err
		}
		if err := store.Put(ctx, extractClient, blobstore.PacaConstructKey(extractClient, extractExp), pacaConstruct); err != nil {
			return err
		}

		fmt.Printf("extracted constructs for client %d experiment %d (%d fields)\n",
			extractClient, extractExp, spConstruct.Len())
		return nil
	},
}

func loadConversation(cmd *cobra.Command, store *blobstore.Adapter) (*dialogue.Record, error) {
	key := blobstore.ConversationKey(extractClient, extractExp)
	data, found, err := store.Get(cmd.Context(), extractClient, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("no conversation %s; run psyche interview first", key)
	}
	var record dialogue.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decode conversation %s: %w", key, err)
	}
	return &record, nil
}

func init() {
	extractCmd.Flags().IntVar(&extractClient, "client", 0, "client number")
	extractCmd.Flags().IntVar(&extractExp, "exp", 1, "experiment number")
	extractCmd.Flags().StringVar(&extractVersion, "version", "1.0", "artifact and prompt version")
	extractCmd.Flags().StringVar(&extractModel, "model", "", "override configured model")
	extractCmd.MarkFlagRequired("client")
	rootCmd.AddCommand(extractCmd)
}
