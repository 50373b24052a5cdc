package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quiverhq/quiver/internal/output"
	"github.com/quiverhq/quiver/internal/search"
)

func newSearchCmd() *cobra.Command {
	var (
		mode   string
		limit  int
		format string
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the library",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			ctx := cmd.Context()

			searchMode, err := parseMode(mode)
			if err != nil {
				return err
			}

			// Text-only searches never need an embedding provider.
			lib, embedder, err := openLibrary(ctx, searchMode != search.ModeText)
			if err != nil {
				return err
			}
			defer func() {
				_ = lib.Close()
				if embedder != nil {
					_ = embedder.Close()
				}
			}()

			if searchMode != search.ModeText {
				if err := lib.EnsureEmbeddings(ctx); err != nil {
					return err
				}
			}

			chunks, err := lib.Candidates(ctx, query, searchMode, limit)
			if err != nil {
				return err
			}

			engine := search.NewEngine(embedder, cfg.EngineConfig())
			results, err := engine.Search(ctx, query, chunks, searchMode)
			if err != nil {
				return err
			}
			if limit > 0 && len(results) > limit {
				results = results[:limit]
			}

			switch format {
			case "json":
				out, err := output.JSON(results)
				if err != nil {
					return err
				}
				cmd.Print(out)
			case "text":
				renderer := output.NewRenderer(output.StdoutIsTerminal())
				cmd.Print(renderer.Results(results))
			default:
				return fmt.Errorf("unknown format %q: want text or json", format)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "hybrid", "search mode: text, embedding or hybrid")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum number of results")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text or json")

	return cmd
}

func parseMode(raw string) (search.Mode, error) {
	switch search.Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", search.ModeHybrid:
		return search.ModeHybrid, nil
	case search.ModeText:
		return search.ModeText, nil
	case search.ModeEmbedding:
		return search.ModeEmbedding, nil
	default:
		return "", fmt.Errorf("unknown mode %q: want text, embedding or hybrid", raw)
	}
}
