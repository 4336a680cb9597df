package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/marqview/deckstream/internal/assets"
	"github.com/marqview/deckstream/internal/config"
	"github.com/marqview/deckstream/internal/persist"
	"github.com/marqview/deckstream/internal/session"
)

// streamChunkSize is how much of the input is fed per transport event when
// replaying a stream dump.
const streamChunkSize = 512

var (
	genName       string
	genFormat     string
	genWithAssets bool
	genNoPersist  bool
)

func init() {
	generateCmd.Flags().StringVar(&genName, "name", "", "Deck name for persistence (default: input filename)")
	generateCmd.Flags().StringVar(&genFormat, "format", "json", "Output format: json or yaml")
	generateCmd.Flags().BoolVar(&genWithAssets, "assets", false, "Resolve slide image assets")
	generateCmd.Flags().BoolVar(&genNoPersist, "no-save", false, "Skip persisting the finished deck")
	rootCmd.AddCommand(generateCmd)
}

var generateCmd = &cobra.Command{
	Use:   "generate [file|-]",
	Short: "Build a deck from a markup stream",
	Long: `generate reads slide markup from a file (or stdin with "-"),
feeds it through the reconciliation engine the way the live transport
would - as an ever-growing buffer - and prints the finished deck.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		in, name, err := openInput(args[0])
		if err != nil {
			return err
		}
		defer in.Close()
		if genName != "" {
			name = genName
		}

		opts := session.Options{
			DeckName:          name,
			SuppressionWindow: cfg.Engine.SuppressionWindow(),
			FrameInterval:     cfg.Engine.FrameInterval(),
		}
		if genWithAssets {
			provider, err := assets.NewProvider(cfg.Assets)
			if err != nil {
				return err
			}
			opts.AssetProvider = provider
		}
		if !genNoPersist {
			ps, err := persist.NewStore(cfg.Persistence)
			if err != nil {
				return err
			}
			opts.Persist = ps
		}

		sess := session.New(opts)
		defer sess.Close()

		// Replay the input as a growing buffer, one transport event per
		// chunk. The final event finalizes the parser and saves the deck.
		var buf strings.Builder
		chunk := make([]byte, streamChunkSize)
		r := bufio.NewReader(in)
		for {
			n, err := r.Read(chunk)
			if n > 0 {
				buf.Write(chunk[:n])
				if err := sess.HandleStream(buf.String(), false); err != nil {
					return err
				}
			}
			if err == io.EOF {
				break
			}
			if err != nil {
				return fmt.Errorf("read stream: %w", err)
			}
		}
		if genWithAssets {
			// Let in-flight resolutions land so the final document carries
			// its asset URLs.
			sess.WaitAssets()
		}
		if err := sess.HandleStream(buf.String(), true); err != nil {
			// Save failures are surfaced but the in-memory deck is intact;
			// keep going so the user still gets their output.
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}

		return writeDocument(cmd.OutOrStdout(), sess.Document(), genFormat)
	},
}

func openInput(arg string) (io.ReadCloser, string, error) {
	if arg == "-" {
		return io.NopCloser(os.Stdin), "stdin-deck", nil
	}
	f, err := os.Open(arg)
	if err != nil {
		return nil, "", fmt.Errorf("open input: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(arg), filepath.Ext(arg))
	return f, name, nil
}

func writeDocument(w io.Writer, doc any, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(doc)
	default:
		return fmt.Errorf("unknown format: %s (valid: json, yaml)", format)
	}
}
