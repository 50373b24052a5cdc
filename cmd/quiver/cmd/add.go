package cmd

import (
	"github.com/spf13/cobra"
)

func newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <file.jsonl> [more files...]",
		Short: "Import pre-chunked documents (JSON Lines, one chunk per line)",
		Long: `Import chunk files into the library. Each line is a JSON object:

  {"doc": "document-id", "text": "chunk text", "id": "optional chunk id"}

Lines without a doc field are grouped under a document named after the
file. Re-importing a document replaces its previous version.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			lib, _, err := openLibrary(ctx, false)
			if err != nil {
				return err
			}
			defer func() { _ = lib.Close() }()

			total := 0
			for _, path := range args {
				count, err := lib.AddFile(ctx, path)
				if err != nil {
					return err
				}
				cmd.Printf("%s: %d chunks\n", path, count)
				total += count
			}
			cmd.Printf("imported %d chunks from %d files\n", total, len(args))
			return nil
		},
	}
}
