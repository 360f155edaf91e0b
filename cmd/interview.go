package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/adalundhe/psyche/agents/paca"
	"github.com/adalundhe/psyche/agents/sp"
	"github.com/adalundhe/psyche/core/blobstore"
	"github.com/adalundhe/psyche/core/construct"
	"github.com/adalundhe/psyche/core/dialogue"
	"github.com/adalundhe/psyche/core/search"
)

var (
	interviewClient   int
	interviewExp      int
	interviewMaxTurns int
	interviewModel    string
	interviewVersion  string
	interviewShow     bool
)

var interviewCmd = &cobra.Command{
	Use:   "interview",
	Short: "Run a simulated interview between PACA and SP",
	Long: `Run a full clinician-patient interview for an authored client. The
transcript is persisted under the experiment number and added to the
conversation search index.`,
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

		llm, err := newGateway(ctx, cfg, interviewModel)
		if err != nil {
			return err
		}

		artifacts, err := construct.Load(ctx, store, interviewClient, interviewVersion)
		if err != nil {
			return err
		}

		spBase, err := ts.SystemPrompt("sp", interviewVersion, "")
		if err != nil {
			return err
		}
		pacaBase, err := ts.SystemPrompt("paca", interviewVersion, "")
		if err != nil {
			return err
		}

		patient := sp.New(llm, sp.BuildSystemPrompt(spBase, artifacts.Profile, artifacts.History, artifacts.Directive))
		clinician := paca.New(llm, paca.BuildSystemPrompt(pacaBase))

		maxTurns := cfg.Dialogue.MaxTurns
		if interviewMaxTurns > 0 {
			maxTurns = interviewMaxTurns
		}
		runner := dialogue.NewRunner(patient, clinician,
			dialogue.WithMaxTurns(maxTurns),
			dialogue.WithGreeting(cfg.Dialogue.Greeting),
		)

		var transcript []dialogue.Turn
		for {
			// The config file is watched; a lowered max_turns takes
			// effect mid-interview unless the flag pinned the cap.
			if interviewMaxTurns == 0 {
				if live := cfgManager.Get(); len(transcript) >= live.Dialogue.MaxTurns {
					slog.Info("turn cap reached", "max_turns", live.Dialogue.MaxTurns)
					break
				}
			}
			turn, ok, err := runner.Next(ctx)
			if err != nil {
				return fmt.Errorf("interview aborted after %d turns: %w", len(transcript), err)
			}
			if !ok {
				break
			}
			transcript = append(transcript, turn)
			if interviewShow {
				fmt.Printf("[%s] %s\n\n", turn.Speaker, turn.Utterance)
			}
		}

		record := dialogue.NewRecord(transcript, interviewVersion, interviewVersion)
		key := blobstore.ConversationKey(interviewClient, interviewExp)
		if err := store.Put(ctx, interviewClient, key, record); err != nil {
			return err
		}

		if err := indexConversation(cfg.Search.IndexPath, record, interviewClient, interviewExp); err != nil {
			slog.Warn("conversation persisted but not indexed", "error", err)
		}

		fmt.Printf("run %s: %d turns persisted as %s\n", record.RunID, record.TotalTurns, key)
		return nil
	},
}

func indexConversation(indexPath string, record *dialogue.Record, client, experiment int) error {
	index, err := search.Open(indexPath)
	if err != nil {
		return err
	}
	defer index.Close()
	return index.IndexConversation(record, client, experiment)
}

func init() {
	interviewCmd.Flags().IntVar(&interviewClient, "client", 0, "client number")
	interviewCmd.Flags().IntVar(&interviewExp, "exp", 1, "experiment number")
	interviewCmd.Flags().IntVar(&interviewMaxTurns, "max-turns", 0, "override configured turn cap")
	interviewCmd.Flags().StringVar(&interviewModel, "model", "", "override configured model")
	interviewCmd.Flags().StringVar(&interviewVersion, "version", "1.0", "artifact and prompt version")
	interviewCmd.Flags().BoolVar(&interviewShow, "show", false, "print turns as they happen")
	interviewCmd.MarkFlagRequired("client")
	rootCmd.AddCommand(interviewCmd)
}
