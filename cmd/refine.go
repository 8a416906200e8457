package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/manno/archflow/internal/config"
	"github.com/manno/archflow/internal/design"
	"github.com/manno/archflow/internal/session"
)

var refineCmd = &cobra.Command{
	Use:   "refine",
	Short: "Request a refinement of the selected architecture option",
	Long: `Refine records feedback against the selected option. The next 'run'
against the same session applies it once before generating the diagram and
staffing plan.

Example:
  archflow refine --session 7f3a... --actor alice \
    --feedback "replace the relational database with a serverless one" \
    --focus cost`,
	RunE: requestRefinement,
}

var (
	refineSessionID string
	refineActorID   string
	refineFeedback  string
	refineFocus     string
)

func init() {
	rootCmd.AddCommand(refineCmd)

	refineCmd.Flags().StringVar(&refineSessionID, "session", "", "session id (required)")
	refineCmd.Flags().StringVar(&refineActorID, "actor", "", "actor id (required)")
	refineCmd.Flags().StringVar(&refineFeedback, "feedback", "", "refinement feedback (required)")
	refineCmd.Flags().StringVar(&refineFocus, "focus", "", "focus area (cost, performance, security, reliability)")
	_ = refineCmd.MarkFlagRequired("session")
	_ = refineCmd.MarkFlagRequired("actor")
	_ = refineCmd.MarkFlagRequired("feedback")
}

func requestRefinement(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := GetLogger()
	cfg := config.Load()
	if cfg.MemoryID == "" {
		return fmt.Errorf("config: memory-id is required (ARCHFLOW_MEMORY_ID)")
	}

	store, cleanup, err := newSessionStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	sess := session.New(store, session.Scope{
		MemoryID:  cfg.MemoryID,
		SessionID: refineSessionID,
		ActorID:   refineActorID,
	})

	if err := sess.SaveRefinementRequest(ctx, design.RefinementRequest{
		Feedback:  refineFeedback,
		FocusArea: refineFocus,
		Processed: false,
	}); err != nil {
		return err
	}

	logger.Info("refinement requested",
		"session_id", refineSessionID,
		"focus", refineFocus)
	fmt.Printf("Refinement recorded for session %s; run the pipeline again to apply it\n", refineSessionID)
	return nil
}
