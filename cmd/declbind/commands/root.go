// Package commands provides the CLI commands for the declbind tool.
package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"martianoff/declbind/internal/ast"
	"martianoff/declbind/internal/config"
	"martianoff/declbind/internal/pipeline"
	"martianoff/declbind/internal/source"
)

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:   "declbind",
		Short: "Bind and resolve declaration trees",
		Long: `declbind builds a resolved type environment from declaration documents
produced by an external parser.

Usage:
  declbind bind [paths...]       Bind, merge and resolve; report counts
  declbind dump [paths...]       Print the resolved environment
  declbind graph [paths...]      Print references between entries
  declbind version               Print version

Paths are files or directories. Without paths the current directory is used.
With --git, paths are directories inside the repository at --rev.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "Path to "+config.FileName+" (default: discovered from the working directory)")
	pf.BoolVar(&opts.strict, "strict", false, "Reject names that no declaration defines")
	pf.StringVar(&opts.gitRepo, "git", "", "Read documents from a git repository (local path or URL)")
	pf.StringVar(&opts.rev, "rev", "", "Revision to read with --git: tag, branch or commit (default HEAD)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "Print progress to stderr")

	root.AddCommand(newBindCommand(opts))
	root.AddCommand(newDumpCommand(opts))
	root.AddCommand(newGraphCommand(opts))
	root.AddCommand(newVersionCommand())
	return root
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type globalOptions struct {
	configPath string
	strict     bool
	gitRepo    string
	rev        string
	verbose    bool
}

func (o *globalOptions) logf(cmd *cobra.Command, format string, args ...any) {
	if !o.verbose {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
}

// run loads the configuration and the documents named by args and analyzes
// them.
func (o *globalOptions) run(cmd *cobra.Command, args []string) (*pipeline.Result, *config.Config, error) {
	cfg, err := config.Resolve(".", o.configPath)
	if err != nil {
		return nil, nil, err
	}
	if cmd.Flags().Changed("strict") {
		cfg.Strict = o.strict
	}
	if cfg.Path != "" {
		o.logf(cmd, "using config %s", cfg.Path)
	}

	program, err := o.load(cmd, cfg, args)
	if err != nil {
		return nil, nil, err
	}

	res, err := pipeline.New(cfg.PipelineOptions()).Analyze(program)
	if err != nil {
		return nil, nil, err
	}
	o.logf(cmd, "bound %d declarations", res.Stats.Declarations)
	o.logf(cmd, "registered %d entries", res.Stats.Entries)
	o.logf(cmd, "resolved %d references", res.Stats.References)
	return res, cfg, nil
}

func (o *globalOptions) load(cmd *cobra.Command, cfg *config.Config, args []string) (*ast.Program, error) {
	if o.gitRepo == "" {
		if o.rev != "" {
			return nil, fmt.Errorf("--rev requires --git")
		}
		paths := args
		if len(paths) == 0 {
			paths = []string{"."}
		}
		o.logf(cmd, "loading %s", strings.Join(paths, ", "))
		return source.LoadPaths(paths, cfg.Include)
	}

	var loader *source.GitLoader
	var err error
	if isRemote(o.gitRepo) {
		o.logf(cmd, "cloning %s", o.gitRepo)
		loader, err = source.CloneGit(o.gitRepo, cfg.Include)
	} else {
		loader, err = source.OpenGit(o.gitRepo, cfg.Include)
	}
	if err != nil {
		return nil, err
	}
	defer loader.Close()

	o.logf(cmd, "loading %s at %s", o.gitRepo, revOrHead(o.rev))
	return loader.Load(o.rev, args)
}

func isRemote(repo string) bool {
	if strings.Contains(repo, "://") || strings.HasPrefix(repo, "git@") {
		return true
	}
	_, err := os.Stat(repo)
	return err != nil && strings.HasSuffix(repo, ".git")
}

func revOrHead(rev string) string {
	if rev == "" {
		return "HEAD"
	}
	return rev
}
