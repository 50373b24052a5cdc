package cmd

import (
	"github.com/spf13/cobra"

	"github.com/quiverhq/quiver/internal/output"
)

func newLsCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List documents in the library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lib, _, err := openLibrary(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer func() { _ = lib.Close() }()

			docs, err := lib.List(cmd.Context())
			if err != nil {
				return err
			}

			if format == "json" {
				out, err := output.JSON(docs)
				if err != nil {
					return err
				}
				cmd.Print(out)
				return nil
			}
			cmd.Print(output.NewRenderer(output.StdoutIsTerminal()).Documents(docs))
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text or json")
	return cmd
}

func newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <doc-id> [more ids...]",
		Short: "Remove documents from the library",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, _, err := openLibrary(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer func() { _ = lib.Close() }()

			for _, id := range args {
				if err := lib.Remove(cmd.Context(), id); err != nil {
					return err
				}
				cmd.Printf("removed %s\n", id)
			}
			return nil
		},
	}
}
