package main

import (
	"encoding/json"

	"github.com/chazu/mindscape/pkg/engine"
	"github.com/chazu/mindscape/pkg/layout"
	"github.com/chazu/mindscape/pkg/mindmap"
	"github.com/chazu/mindscape/pkg/viewer"
	"github.com/spf13/cobra"
)

func (c *cli) layoutCmd() *cobra.Command {
	var (
		mode       string
		depth      int
		expandAll  bool
		iterations int
	)
	cmd := &cobra.Command{
		Use:   "layout <file>",
		Short: "Print the laid-out scene of a mind map as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if iterations > 0 {
				cfg.Layout.Force.Iterations = iterations
			}
			lm, err := layout.ParseMode(mode)
			if err != nil {
				return err
			}

			res, err := load(engine.NewEngine(), args[0])
			if err != nil {
				return err
			}

			st := viewer.New(res.Map, cfg.ViewerOptions())
			st.SetLayoutMode(lm)
			if expandAll {
				st.SetExpanded(mindmap.ExpandAll(res.Map))
			}
			if depth >= 0 {
				st.SetVisibleDepth(depth)
			}

			enc := json.NewEncoder(c.out)
			enc.SetIndent("", "  ")
			return enc.Encode(st.Scene().Wire())
		},
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", "tree", "layout mode: tree, radial or force")
	cmd.Flags().IntVarP(&depth, "depth", "d", -1, "visible depth (default: all)")
	cmd.Flags().BoolVarP(&expandAll, "expand-all", "a", false, "expand every node")
	cmd.Flags().IntVar(&iterations, "iterations", 0, "force-layout iterations (overrides config)")
	return cmd
}
