package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

var logger zerolog.Logger

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "mediadex",
	Short: "An incremental filesystem indexer for large media libraries",
	Long: `mediadex crawls a directory tree and keeps a compact SQLite index of
every file and directory in it. Repeated runs reconcile the index with
the live filesystem instead of rescanning from scratch, and directory
names are tokenized into a browsable tag index.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := zerolog.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", logLevel, err)
		}
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(level).
			With().Timestamp().Logger()
		return nil
	},
}

var logLevel string

func init() {
	rootCmd.Version = version
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: trace|debug|info|warn|error")
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(tagsCmd)
	rootCmd.AddCommand(taggedCmd)
	rootCmd.AddCommand(infoCmd)
}
