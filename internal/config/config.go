// Package config assembles runtime configuration from viper-bound flags
// and environment variables.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds every external connection parameter of the pipeline.
type Config struct {
	// MemoryID names the session-store memory resource scoping all runs.
	MemoryID string

	// GatewayURL and GatewayToken connect the tool gateway client.
	GatewayURL   string
	GatewayToken string

	// NATSURL connects the durable session store. Empty selects the
	// in-memory store (single-process runs and tests).
	NATSURL string

	// ModelAPIKey, ModelBaseURL and Model configure the generator client.
	ModelAPIKey  string
	ModelBaseURL string
	Model        string

	// ArtifactDir is where diagram files are written.
	ArtifactDir string

	// MaxRefinePasses bounds the refinement cycle; zero keeps the default.
	MaxRefinePasses int
}

// Load reads configuration from the environment via viper. Flags bound by
// the commands take precedence over environment variables.
func Load() Config {
	viper.SetDefault("model", "gpt-4o")
	viper.SetDefault("artifact-dir", "artifacts")

	return Config{
		MemoryID:        viper.GetString("memory-id"),
		GatewayURL:      viper.GetString("gateway-url"),
		GatewayToken:    viper.GetString("gateway-token"),
		NATSURL:         viper.GetString("nats-url"),
		ModelAPIKey:     viper.GetString("model-api-key"),
		ModelBaseURL:    viper.GetString("model-base-url"),
		Model:           viper.GetString("model"),
		ArtifactDir:     viper.GetString("artifact-dir"),
		MaxRefinePasses: viper.GetInt("max-refine-passes"),
	}
}

// Validate fails fast on missing required parameters. These are the only
// errors that abort a run before the graph starts.
func (c Config) Validate() error {
	if c.MemoryID == "" {
		return fmt.Errorf("config: memory-id is required (ARCHFLOW_MEMORY_ID)")
	}
	if c.GatewayURL == "" {
		return fmt.Errorf("config: gateway-url is required (ARCHFLOW_GATEWAY_URL)")
	}
	if c.GatewayToken == "" {
		return fmt.Errorf("config: gateway-token is required (ARCHFLOW_GATEWAY_TOKEN)")
	}
	if c.ModelAPIKey == "" {
		return fmt.Errorf("config: model-api-key is required (ARCHFLOW_MODEL_API_KEY)")
	}
	return nil
}
