package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "stratego-oracle",
	Short: "Stratego move suggestions from a text-completion oracle",
	Long: `stratego-oracle turns a Stratego game snapshot into a prompt for a language model,
reveals only what the AI player is entitled to know, and decodes the reply into a move.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", ".env", "path to the .env config file")
	rootCmd.AddCommand(serveCmd, promptCmd, decodeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func NewLogger(level string) *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	if lvl, err := zap.ParseAtomicLevel(level); err == nil {
		cfg.Level = lvl
	}
	logger, err := cfg.Build()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return logger.Sugar()
}
