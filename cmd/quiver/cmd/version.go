package cmd

import (
	"github.com/spf13/cobra"

	"github.com/quiverhq/quiver/internal/output"
	"github.com/quiverhq/quiver/pkg/version"
)

func newVersionCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version and build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.Info()
			if jsonOut {
				out, err := output.JSON(info)
				if err != nil {
					return err
				}
				cmd.Print(out)
				return nil
			}
			cmd.Println(info.String())
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	return cmd
}
