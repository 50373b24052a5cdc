// Package cmd provides the CLI commands for quiver.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/quiverhq/quiver/internal/config"
	"github.com/quiverhq/quiver/internal/embed"
	"github.com/quiverhq/quiver/internal/library"
	"github.com/quiverhq/quiver/internal/logging"
	"github.com/quiverhq/quiver/internal/output"
	"github.com/quiverhq/quiver/pkg/version"
)

var (
	cfgPath   string
	debugMode bool

	cfg        *config.Config
	logCleanup = func() {}
)

// Execute runs the CLI with signal-aware cancellation.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprint(os.Stderr, output.NewRenderer(false).Error(err))
		return err
	}
	return nil
}

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quiver",
		Short: "Hybrid keyword and semantic search over your documents",
		Long: `Quiver searches a personal library of pre-chunked documents with
combined BM25 keyword matching and embedding similarity, fused with
reciprocal rank fusion. Latin and CJK text are both handled.

Import chunk files with 'quiver add', search from the terminal with
'quiver search', or run 'quiver serve' to expose the library to MCP
clients.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("quiver version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultPath(), "config file location")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")

	cmd.PersistentPreRunE = setup
	cmd.PersistentPostRun = func(*cobra.Command, []string) { logCleanup() }

	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newAddCmd())
	cmd.AddCommand(newLsCmd())
	cmd.AddCommand(newRmCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// setup loads .env, the config file and the logger before any command
// runs. Serve keeps stderr quiet: stdout carries the MCP protocol and
// a chatty stderr confuses some clients.
func setup(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()

	var err error
	cfg, err = config.Load(cfgPath)
	if err != nil {
		return err
	}

	level := cfg.Logging.Level
	if debugMode {
		level = "debug"
	}

	_, cleanup, err := logging.Setup(logging.Config{
		Level:    level,
		FilePath: cfg.Logging.File,
		Quiet:    cmd.Name() == "serve",
	})
	if err != nil {
		return err
	}
	logCleanup = cleanup
	return nil
}

// openLibrary opens the configured library. withEmbedder controls
// whether an embedding provider is constructed; text-only commands
// skip it entirely.
func openLibrary(ctx context.Context, withEmbedder bool) (*library.Library, embed.Embedder, error) {
	var embedder embed.Embedder
	if withEmbedder {
		var err error
		embedder, err = embed.NewEmbedder(ctx,
			embed.ProviderType(cfg.Embeddings.Provider),
			cfg.Embeddings.Model,
			cfg.Embeddings.Host)
		if err != nil {
			return nil, nil, err
		}
	}

	lib, err := library.Open(ctx, library.Options{
		Path:     cfg.Library.Path,
		LockPath: cfg.LockPath(),
		Embedder: embedder,
	})
	if err != nil {
		if embedder != nil {
			_ = embedder.Close()
		}
		return nil, nil, err
	}
	return lib, embedder, nil
}
