package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/manno/archflow/internal/config"
	"github.com/manno/archflow/internal/gateway"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools exposed by the gateway",
	RunE:  listTools,
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}

func listTools(cmd *cobra.Command, args []string) error {
	logger := GetLogger()
	cfg := config.Load()

	gw, err := gateway.New(gateway.Config{
		URL:   cfg.GatewayURL,
		Token: cfg.GatewayToken,
	}, logger)
	if err != nil {
		return err
	}

	tools, err := gw.ListTools(cmd.Context())
	if err != nil {
		logger.Error("tool discovery failed", "error", err)
		return err
	}

	fmt.Printf("%d tool(s) available:\n", len(tools))
	for _, tool := range tools {
		fmt.Println(toolLine(tool))
	}
	return nil
}

func toolLine(tool gateway.ToolDescriptor) string {
	if tool.Description == "" {
		return "  " + tool.Name
	}
	return fmt.Sprintf("  %s: %s", tool.Name, tool.Description)
}
