package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"text/tabwriter"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/arena/internal/arena"
	"github.com/zeusync/arena/internal/config"
	"github.com/zeusync/arena/internal/core/observability/log"
	"github.com/zeusync/arena/internal/injector"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Play matches and print the scores",
		Long:  `Plays --matches matches, --parallelism at a time. Match i uses seed+i, so a run is reproducible from its flags.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runMatches(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}
	config.RegisterFlags(cmd.Flags())
	return cmd
}

func runMatches(ctx context.Context, cfg *config.Config, out io.Writer) error {
	rt, err := injector.InitializeRuntime(cfg.LogLevel())
	if err != nil {
		return errors.Wrap(err, "initialize runtime")
	}
	defs, err := loadDefinitions(cfg.Definitions)
	if err != nil {
		return errors.Wrap(err, "load definitions")
	}
	policies, err := cfg.Policies()
	if err != nil {
		return err
	}

	if cfg.Metrics.Addr != "" {
		stop := serveMetrics(cfg.Metrics.Addr, rt)
		defer stop()
	}

	results := make([]arena.Result, cfg.Matches)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Parallelism)
	for i := range results {
		settings := cfg.Arena
		settings.Seed += uint64(i)
		g.Go(func() error {
			m, err := arena.NewMatch(settings, policies,
				arena.WithLogger(rt.Log.With(log.Int("match", i))),
				arena.WithMetrics(rt.Metrics),
				arena.WithDefinitions(defs),
			)
			if err != nil {
				return errors.Wrapf(err, "match %d", i)
			}
			defer func() { _ = m.Close() }()
			r, err := m.Run(gctx)
			if err != nil {
				return errors.Wrapf(err, "match %d", i)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return printResults(out, cfg, policies, results)
}

func serveMetrics(addr string, rt *injector.Runtime) (stop func()) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(rt.Registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			rt.Log.Error("metrics server failed", log.String("addr", addr), log.Error(err))
		}
	}()
	rt.Log.Info("serving metrics", log.String("addr", addr))
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func printResults(out io.Writer, cfg *config.Config, policies [2]arena.Policy, results []arena.Result) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "MATCH\tSEED\tBLUE (%s)\tRED (%s)\tWINNER\n", policies[arena.Blue], policies[arena.Red])
	var wins [2]int
	draws := 0
	for i, r := range results {
		winner := "draw"
		if team, ok := r.Winner(); ok {
			winner = team.String()
			wins[team]++
		} else {
			draws++
		}
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%s\n",
			i, cfg.Arena.Seed+uint64(i), r.Teams[arena.Blue].Points(), r.Teams[arena.Red].Points(), winner)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "blue %d, red %d, draws %d\n", wins[arena.Blue], wins[arena.Red], draws)
	return err
}
