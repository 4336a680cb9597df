package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Emit debug logs")
}

var rootCmd = &cobra.Command{
	Use:   "deckstream",
	Short: "Reconcile streamed slide markup into a structured deck",
	Long: `deckstream turns an incrementally-arriving markup stream into a
structured slide deck, resolving per-slide image assets in the background
and reconciling edits without clobbering streamed content.

Examples:
  deckstream generate talk.stream           # build a deck from a stream dump
  cat talk.stream | deckstream generate -   # stream from stdin
  deckstream decks list                     # list persisted decks`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if debug {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
}

var debug bool

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
