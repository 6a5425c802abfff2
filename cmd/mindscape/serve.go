package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chazu/mindscape/examples"
	"github.com/chazu/mindscape/pkg/engine"
	"github.com/chazu/mindscape/pkg/mindmap"
	"github.com/chazu/mindscape/pkg/server"
	"github.com/chazu/mindscape/pkg/watcher"
	"github.com/cockroachdb/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func (c *cli) serveCmd() *cobra.Command {
	var (
		addr  string
		watch bool
	)
	cmd := &cobra.Command{
		Use:   "serve [file]",
		Short: "Serve the browser viewer for a mind map (default: the Soil Science sample)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if watch && len(args) == 0 {
				return errors.New("--watch needs a file argument")
			}

			eng := engine.NewEngine()
			var m *mindmap.Map
			if len(args) == 1 {
				res, err := load(eng, args[0])
				if err != nil {
					return err
				}
				m = res.Map
			} else {
				res, err := eng.EvaluateResult(examples.SoilScience)
				if err != nil {
					return errors.Wrap(err, examples.SoilScienceName)
				}
				m = res.Map
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(cfg, m)
			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return srv.Run(ctx)
			})
			if watch {
				w, err := watcher.New(args[0], time.Duration(cfg.Server.WatchDebounce), func(path string) {
					res, err := load(eng, path)
					if err != nil {
						log.WithError(err).Warn("reload rejected")
						return
					}
					log.WithField("path", path).Info("mind map reloaded")
					srv.SetMap(res.Map)
				})
				if err != nil {
					return err
				}
				g.Go(func() error {
					return w.Run(ctx)
				})
			}

			log.WithFields(log.Fields{"addr": cfg.Server.Addr, "title": m.Title}).Info("serving mind map")
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload the file when it changes")
	return cmd
}
