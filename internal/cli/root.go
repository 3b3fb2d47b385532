// Package cli implements the tagdex command line: the HTTP server plus
// offline search and add commands against the configured record store.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/tagdex/internal/config"
	logpkg "github.com/kailas-cloud/tagdex/internal/logger"
)

// app is the state shared by subcommands after the root pre-run.
type app struct {
	env     string
	cfgFile string

	cfg    config.Config
	logger *zap.Logger
}

// NewRootCmd builds the tagdex command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "tagdex",
		Short: "Tagged document index with AI-proposed descriptions",
		Long: `tagdex stores uploaded files, proposes a description and tags for each
through an OpenAI-compatible chat API, and ranks saved records against
free-text queries.

Example usage:
  tagdex serve                          # Run the HTTP API
  tagdex search -q "network spec"       # Rank stored records
  tagdex add --description "..." --tag hr --path /uploads/x.pdf`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.init()
		},
	}

	root.PersistentFlags().StringVar(&a.env, "env", "", "environment name (overrides ENV, default local)")
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default config/<env>.yaml)")

	root.AddCommand(
		newServeCmd(a),
		newSearchCmd(a),
		newAddCmd(a),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func (a *app) init() error {
	if a.env == "" {
		a.env = config.GetEnv()
	}

	var err error
	if a.cfgFile != "" {
		a.cfg, err = config.LoadFile(a.cfgFile)
	} else {
		a.cfg, err = config.Load(a.env)
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	a.logger, err = logpkg.New(a.env, logpkg.Options{
		Level:  a.cfg.Logging.Level,
		Format: a.cfg.Logging.Format,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	zap.ReplaceGlobals(a.logger)
	return nil
}

// context attaches the application logger to ctx.
func (a *app) context(ctx context.Context) context.Context {
	return logpkg.ContextWithLogger(ctx, a.logger)
}
