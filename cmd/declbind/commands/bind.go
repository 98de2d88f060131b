package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBindCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "bind [paths...]",
		Short: "Bind, merge and resolve declaration documents",
		Long: `Bind, merge and resolve declaration documents and report what was built.

Any unsupported declaration, incompatible merge or failed lookup is an error.

Examples:
  declbind bind decls/
  declbind bind --strict a.yaml b.yaml
  declbind bind --git . --rev v1.2.0 decls`,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, _, err := opts.run(cmd, args)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d declarations, %d entries, %d references resolved\n",
				res.Stats.Declarations, res.Stats.Entries, res.Stats.References)
			return nil
		},
	}
}
