package cmd

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/quiverhq/quiver/internal/library"
	"github.com/quiverhq/quiver/internal/mcp"
	"github.com/quiverhq/quiver/internal/search"
)

func newServeCmd() *cobra.Command {
	var watchDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server over stdio",
		Long: `Serve the library to MCP clients over stdio. Chunk embeddings are
computed once at startup when an embedding provider is reachable;
without one the server still answers keyword searches.

With --watch (or library.watch_dir in the config), changed .jsonl
files in the directory are re-imported while serving.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			lib, embedder, err := openLibrary(ctx, true)
			if err != nil {
				return err
			}
			defer func() {
				_ = lib.Close()
				if embedder != nil {
					_ = embedder.Close()
				}
			}()

			if err := lib.EnsureEmbeddings(ctx); err != nil {
				// Keyword search still works; say so and carry on.
				slog.Warn("embeddings unavailable, serving keyword search only",
					slog.String("error", err.Error()))
			}

			engine := search.NewEngine(embedder, cfg.EngineConfig())
			server, err := mcp.NewServer(engine, lib, slog.Default())
			if err != nil {
				return err
			}

			dir := watchDir
			if dir == "" {
				dir = cfg.Library.WatchDir
			}
			if dir != "" {
				watcher, err := library.NewWatcher(dir, func(ctx context.Context, path string) {
					if _, err := lib.AddFile(ctx, path); err != nil {
						slog.Warn("re-import failed",
							slog.String("path", path),
							slog.String("error", err.Error()))
						return
					}
					if err := lib.EnsureEmbeddings(ctx); err != nil {
						slog.Warn("re-embedding failed", slog.String("error", err.Error()))
					}
					server.FlushCache()
				}, slog.Default())
				if err != nil {
					return err
				}
				go watcher.Run(ctx)
				defer func() { _ = watcher.Close() }()
			}

			err = server.Serve(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&watchDir, "watch", "", "re-import changed .jsonl files from this directory")
	return cmd
}
