package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"martianoff/declbind/internal/config"
	"martianoff/declbind/internal/render"
)

func newDumpCommand(opts *globalOptions) *cobra.Command {
	var (
		format string
		color  string
	)
	cmd := &cobra.Command{
		Use:   "dump [paths...]",
		Short: "Print the resolved environment",
		Long: `Print every environment entry followed by the top-level container.

The format defaults to the output setting of ` + config.FileName + `.

Examples:
  declbind dump decls/
  declbind dump --format yaml decls/ > env.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := render.ParseColorMode(color)
			if err != nil {
				return err
			}
			res, cfg, err := opts.run(cmd, args)
			if err != nil {
				return err
			}
			if format == "" {
				format = cfg.Output
			}

			out := cmd.OutOrStdout()
			switch format {
			case config.OutputText:
				return render.Text(out, res.Env, render.UseColor(mode, out))
			case config.OutputYAML:
				return render.YAML(out, res.Env)
			default:
				return fmt.Errorf("unknown format %q (want %s or %s)", format, config.OutputText, config.OutputYAML)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: text or yaml")
	cmd.Flags().StringVar(&color, "color", string(render.ColorAuto), "Color text output: auto, always or never")
	return cmd
}
