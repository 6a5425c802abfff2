package main

import (
	"fmt"

	"github.com/chazu/mindscape/pkg/engine"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

func (c *cli) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a mind-map file and report errors and warnings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			res, err := engine.NewEngine().EvaluateFile(path)
			if err != nil {
				return err
			}
			for _, e := range res.Errors {
				fmt.Fprintf(c.out, "%s:%d:%d: error: %s\n", path, e.Line, e.Col, describe(e.NodeID, e.Message))
			}
			for _, w := range res.Warnings {
				fmt.Fprintf(c.out, "%s:%d:%d: warning: %s\n", path, w.Line, w.Col, describe(w.NodeID, w.Message))
			}
			if len(res.Errors) > 0 {
				return errors.Newf("%s is not a valid mind map", path)
			}
			fmt.Fprintf(c.out, "%s: ok, %q with %d nodes, depth %d\n", path, res.Map.Title, res.Map.Count(), res.Map.MaxDepth())
			return nil
		},
	}
}

func describe(nodeID, msg string) string {
	if nodeID == "" {
		return msg
	}
	return fmt.Sprintf("node %q: %s", nodeID, msg)
}
