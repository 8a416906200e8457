package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/manno/archflow/internal/brief"
	"github.com/manno/archflow/internal/config"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the design pipeline for a requirements document",
	Long: `Run executes the full pipeline: requirements extraction, design
generation, comparison, selection, diagram and staffing plan. Progress and
step errors are printed at the end; all artifacts are persisted under the
session scope so a later run (after 'select' or 'refine') resumes from the
stored state.

Example:
  archflow run --brief brief.yaml
  archflow run --document requirements.txt --actor alice
  archflow run --document requirements.txt --actor alice --session 7f3a...`,
	RunE: runPipeline,
}

var (
	runBriefFile    string
	runDocumentFile string
	runSessionID    string
	runActorID      string
	runTimeout      time.Duration
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runBriefFile, "brief", "b", "", "path to Brief YAML file")
	runCmd.Flags().StringVarP(&runDocumentFile, "document", "d", "", "path to requirements document text file")
	runCmd.Flags().StringVar(&runSessionID, "session", "", "session id (generated when empty)")
	runCmd.Flags().StringVar(&runActorID, "actor", "", "actor id")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 15*time.Minute, "overall run timeout")
	runCmd.Flags().String("model-api-key", "", "model endpoint API key")
	runCmd.Flags().String("model", "", "model identifier")
	runCmd.Flags().String("artifact-dir", "", "directory for diagram artifacts")
	_ = viper.BindPFlag("model-api-key", runCmd.Flags().Lookup("model-api-key"))
	_ = viper.BindPFlag("model", runCmd.Flags().Lookup("model"))
	_ = viper.BindPFlag("artifact-dir", runCmd.Flags().Lookup("artifact-dir"))
}

func runPipeline(cmd *cobra.Command, args []string) error {
	logger := GetLogger()

	documentText, sessionID, actorID, metadata, err := resolveRunInputs()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), runTimeout)
	defer cancel()

	cfg := config.Load()
	engine, cleanup, err := newEngine(ctx, cfg, logger)
	if err != nil {
		logger.Error("pipeline setup failed", "error", err)
		return err
	}
	defer cleanup()

	logger.Info("starting pipeline run",
		"session_id", sessionID,
		"actor_id", actorID,
		"document_bytes", len(documentText))

	state := engine.Run(ctx, documentText, sessionID, actorID, metadata)

	fmt.Printf("\nSession: %s\n", state.SessionID)
	fmt.Printf("Final step: %s\n\n", state.CurrentStep)
	for _, msg := range state.Messages {
		fmt.Printf("  • %s\n", msg)
	}
	if len(state.Errors) > 0 {
		fmt.Printf("\n%d step error(s):\n", len(state.Errors))
		for _, e := range state.Errors {
			fmt.Printf("  ✗ %s\n", e)
		}
	}
	if state.Degraded {
		fmt.Println("\nNote: some steps ran on best-effort defaults after an upstream failure.")
	}

	return nil
}

func resolveRunInputs() (documentText, sessionID, actorID string, metadata map[string]string, err error) {
	if runBriefFile != "" {
		b, err := brief.LoadFromFile(runBriefFile)
		if err != nil {
			return "", "", "", nil, err
		}
		text, err := b.DocumentText()
		if err != nil {
			return "", "", "", nil, err
		}
		sessionID = b.Spec.SessionID
		if sessionID == "" {
			sessionID = uuid.NewString()
		}
		return text, sessionID, b.Spec.ActorID, b.Spec.Metadata, nil
	}

	if runDocumentFile == "" || runActorID == "" {
		return "", "", "", nil, fmt.Errorf("either --brief or both --document and --actor are required")
	}

	data, err := os.ReadFile(runDocumentFile)
	if err != nil {
		return "", "", "", nil, fmt.Errorf("failed to read document: %w", err)
	}

	sessionID = runSessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	return string(data), sessionID, runActorID, nil, nil
}
