package cmd

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "archflow",
	Short: "Architecture design pipeline - from requirements document to staffing plan",
	Long: `Archflow drives a multi-stage design pipeline: it extracts requirements
from a document, generates candidate architecture options, compares them,
lets you pick and refine one, and produces a diagram and a staffing plan.
Generation is delegated to remote tools behind a gateway; all intermediate
artifacts are persisted per session so runs can be resumed.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.archflow.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("memory-id", "", "session store memory id")
	rootCmd.PersistentFlags().String("gateway-url", "", "tool gateway MCP endpoint URL")
	rootCmd.PersistentFlags().String("gateway-token", "", "tool gateway bearer token")
	rootCmd.PersistentFlags().String("nats-url", "", "NATS server URL for the durable session store")
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("memory-id", rootCmd.PersistentFlags().Lookup("memory-id"))
	_ = viper.BindPFlag("gateway-url", rootCmd.PersistentFlags().Lookup("gateway-url"))
	_ = viper.BindPFlag("gateway-token", rootCmd.PersistentFlags().Lookup("gateway-token"))
	_ = viper.BindPFlag("nats-url", rootCmd.PersistentFlags().Lookup("nats-url"))

	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			logger.Error("failed to get home directory", "error", err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".archflow")
	}

	viper.SetEnvPrefix("ARCHFLOW")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		logger.Info("using config file", "file", viper.ConfigFileUsed())
	}

	level := viper.GetString("log-level")
	switch level {
	case "debug":
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case "warn":
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	case "error":
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	}
}

func GetLogger() *slog.Logger {
	return logger
}
