// Command mindscape serves, lays out and validates mind maps from the
// command line.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/chazu/mindscape/pkg/config"
	"github.com/chazu/mindscape/pkg/engine"
	"github.com/cockroachdb/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

// cli holds state shared by the subcommands.
type cli struct {
	configPath string
	verbose    bool
	out        io.Writer
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{out: out}
	root := &cobra.Command{
		Use:          "mindscape",
		Short:        "3D mind-map viewer",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if c.verbose {
				log.SetLevel(log.DebugLevel)
			}
		},
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "YAML configuration file")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		c.serveCmd(),
		c.layoutCmd(),
		c.validateCmd(),
		c.configCmd(),
	)
	return root
}

func (c *cli) config() (config.Config, error) {
	return config.Load(c.configPath)
}

// load evaluates path and fails when it does not yield a valid map.
func load(eng *engine.Engine, path string) (engine.EvalResult, error) {
	res, err := eng.EvaluateFile(path)
	if err != nil {
		return res, err
	}
	if len(res.Errors) > 0 {
		return res, errors.Newf("%s: %d errors, first: %s", path, len(res.Errors), res.Errors[0].Error())
	}
	return res, nil
}

func (c *cli) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			data, err := cfg.Marshal()
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(c.out, string(data))
			return err
		},
	}
}
