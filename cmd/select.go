package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/manno/archflow/internal/config"
	"github.com/manno/archflow/internal/design"
	"github.com/manno/archflow/internal/session"
)

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Record which architecture option to carry forward",
	Long: `Select stores a user's choice of architecture option in the session
scope. The next 'run' against the same session picks it up instead of the
recommended default.

Example:
  archflow select --session 7f3a... --actor alice --option "Cost-Optimized"`,
	RunE: selectOption,
}

var (
	selectSessionID string
	selectActorID   string
	selectOptName   string
)

func init() {
	rootCmd.AddCommand(selectCmd)

	selectCmd.Flags().StringVar(&selectSessionID, "session", "", "session id (required)")
	selectCmd.Flags().StringVar(&selectActorID, "actor", "", "actor id (required)")
	selectCmd.Flags().StringVar(&selectOptName, "option", "", "option name to select (required)")
	_ = selectCmd.MarkFlagRequired("session")
	_ = selectCmd.MarkFlagRequired("actor")
	_ = selectCmd.MarkFlagRequired("option")
}

func selectOption(cmd *cobra.Command, args []string) error {
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
		SessionID: selectSessionID,
		ActorID:   selectActorID,
	})

	options, err := sess.LoadDesignOptions(ctx)
	if err != nil {
		return fmt.Errorf("no design options stored for this session yet: %w", err)
	}
	opt, ok := design.FindOption(options, selectOptName)
	if !ok {
		return fmt.Errorf("option %q not found among %d stored options", selectOptName, len(options))
	}

	if err := sess.SaveSelectedOption(ctx, opt.Name); err != nil {
		return err
	}
	// re-pin the payload so the choice replaces any earlier pin
	if err := sess.SaveSelectedOptionData(ctx, opt); err != nil {
		return err
	}

	logger.Info("option selected", "session_id", selectSessionID, "option", opt.Name)
	fmt.Printf("Selected option %q for session %s\n", opt.Name, selectSessionID)
	return nil
}
