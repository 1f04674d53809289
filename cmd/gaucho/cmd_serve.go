package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ahrav/go-gaucho/internal/app"
	"github.com/ahrav/go-gaucho/internal/mcpserver"
	"github.com/ahrav/go-gaucho/internal/worker"
)

func (c *cli) workerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run a Temporal worker for the analysis and evaluation workflows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.setup(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error { return c.runWorker(ctx, a) })
			return g.Wait()
		},
	}
}

func (c *cli) serveCmd() *cobra.Command {
	var withWorker bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the entry points as MCP tools",
		Long: `Start an MCP server exposing analyze_image, get_analysis_by_category and
evaluate. The transport (stdio or http) comes from the mcp section of the
configuration. With --worker a Temporal worker runs in the same process.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.setup(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()
			svc, done, err := c.service(a)
			if err != nil {
				return err
			}
			defer done()

			srv := mcpserver.New(svc, version, a.Logger)
			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error { return serveMCP(ctx, a, srv) })
			if withWorker {
				g.Go(func() error { return c.runWorker(ctx, a) })
			}
			return g.Wait()
		},
	}
	cmd.Flags().BoolVar(&withWorker, "worker", false, "Also run a Temporal worker")
	return cmd
}

// runWorker polls the task queue until ctx is done.
func (c *cli) runWorker(ctx context.Context, a *app.App) error {
	tc, err := c.dial(a)
	if err != nil {
		return err
	}
	defer tc.Close()

	w := worker.New(tc, a.Config.Temporal, a.Activities())
	if err := w.Start(); err != nil {
		return fmt.Errorf("start worker: %w", err)
	}
	a.Logger.Info("worker started", "task_queue", a.Config.Temporal.TaskQueue)
	<-ctx.Done()
	w.Stop()
	return nil
}

func serveMCP(ctx context.Context, a *app.App, srv *mcpserver.Server) error {
	if a.Config.MCP.Transport != "http" {
		a.Logger.Info("serving MCP over stdio")
		return srv.RunStdio(ctx)
	}

	httpSrv := &http.Server{
		Addr:              a.Config.MCP.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Logger.Info("serving MCP over http", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
