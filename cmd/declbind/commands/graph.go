package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"martianoff/declbind/internal/deps"
)

func newGraphCommand(opts *globalOptions) *cobra.Command {
	var (
		cycles    bool
		order     bool
		externals bool
	)
	cmd := &cobra.Command{
		Use:   "graph [paths...]",
		Short: "Print references between environment entries",
		Long: `Print the reference graph of the resolved environment.

Each line shows an entry, a referenced entry and the member through which
it is referenced. Reference cycles between entries are legal; --cycles
lists them.

Examples:
  declbind graph decls/
  declbind graph --cycles decls/
  declbind graph --order decls/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cycles && order {
				return fmt.Errorf("--cycles and --order are mutually exclusive")
			}
			res, _, err := opts.run(cmd, args)
			if err != nil {
				return err
			}
			g := deps.Build(res.Env, externals)
			out := cmd.OutOrStdout()

			switch {
			case cycles:
				found := g.FindAllCycles()
				if len(found) == 0 {
					fmt.Fprintln(out, "No cycles.")
					return nil
				}
				for _, c := range found {
					fmt.Fprintln(out, strings.Join(c, " -> "))
				}
			case order:
				nodes, err := g.Order()
				if err != nil {
					return err
				}
				for _, n := range nodes {
					fmt.Fprintln(out, n.QName)
				}
			default:
				for _, n := range g.All() {
					for _, e := range n.Children {
						fmt.Fprintf(out, "%s %s (%s)\n", n.QName, e.To.QName, e.Via)
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&cycles, "cycles", false, "List reference cycles")
	cmd.Flags().BoolVar(&order, "order", false, "List entries with referenced entries first")
	cmd.Flags().BoolVar(&externals, "externals", false, "Include names without an environment entry")
	return cmd
}
