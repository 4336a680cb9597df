package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/marqview/deckstream/internal/config"
	"github.com/marqview/deckstream/internal/persist"
)

var decksFormat string

func init() {
	showDeckCmd.Flags().StringVar(&decksFormat, "format", "json", "Output format: json or yaml")
	decksCmd.AddCommand(listDecksCmd, showDeckCmd, deleteDeckCmd)
	rootCmd.AddCommand(decksCmd)
}

var decksCmd = &cobra.Command{
	Use:   "decks",
	Short: "Manage persisted decks",
}

func openPersist() (persist.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if !cfg.Persistence.Enabled {
		return nil, fmt.Errorf("persistence is disabled in config")
	}
	return persist.NewStore(cfg.Persistence)
}

var listDecksCmd = &cobra.Command{
	Use:   "list",
	Short: "List persisted decks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ps, err := openPersist()
		if err != nil {
			return err
		}
		defer ps.Close()

		decks, err := ps.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(decks) == 0 {
			fmt.Println("No decks saved yet.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tSLIDES\tUPDATED")
		for _, d := range decks {
			fmt.Fprintf(w, "%s\t%d\t%s\n", d.Name, d.SlideCount, d.UpdatedAt.Local().Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

var showDeckCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a persisted deck",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ps, err := openPersist()
		if err != nil {
			return err
		}
		defer ps.Close()

		doc, err := ps.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return writeDocument(cmd.OutOrStdout(), doc, decksFormat)
	},
}

var deleteDeckCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a persisted deck",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ps, err := openPersist()
		if err != nil {
			return err
		}
		defer ps.Close()
		return ps.Delete(cmd.Context(), args[0])
	},
}
