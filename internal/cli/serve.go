package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/agentcanvas/internal/server"
	"github.com/matzehuels/agentcanvas/pkg/canvas"
	"github.com/matzehuels/agentcanvas/pkg/snapshot"
)

// shutdownTimeout bounds graceful HTTP shutdown and the final snapshot flush.
const shutdownTimeout = 10 * time.Second

// serveCommand creates the serve command that runs the canvas HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr       string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the canvas HTTP API with snapshot persistence",
		Long: `Run the canvas HTTP API.

The server restores the persisted snapshot at startup, exposes the graph
operations under /v1 together with a server-sent-event stream of change
notifications, and mirrors every mutation back to the snapshot store through
a coalescing background writer. On shutdown the final state is flushed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&configPath, "config", "", "config file (default: ~/.config/agentcanvas/config.toml)")

	return cmd
}

// runServe restores state, starts the HTTP server, and blocks until the
// context is cancelled.
func (c *CLI) runServe(ctx context.Context, cfg Config) error {
	store, err := c.openStore(ctx, cfg.Snapshot)
	if err != nil {
		return fmt.Errorf("open snapshot store: %w", err)
	}
	defer store.Close()

	cv := canvas.New(c.Logger)

	// Restore before attaching the writer so the load itself does not
	// trigger a save.
	snap := snapshot.LoadOrEmpty(ctx, store)
	nodes, edges := snap.Materialize()
	cv.SyncFromClient(nodes, edges)
	c.Logger.Info("snapshot restored", "backend", cfg.Snapshot.Backend, "nodes", len(nodes), "edges", len(edges))

	writer := snapshot.NewWriter(store, func() snapshot.Snapshot {
		return snapshot.FromState(cv.State())
	}, c.Logger)
	cv.SetScheduler(writer)
	writer.Start(ctx)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: server.New(cv, c.Logger).Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("canvas server listening", "addr", cfg.Server.Addr)
		printSuccess("serving on %s", cfg.Server.Addr)
		printNextStep("inspect state", fmt.Sprintf("curl http://%s/v1/state", cfg.Server.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		c.Logger.Info("shutting down")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		c.Logger.Warn("http shutdown incomplete", "error", err)
	}

	if err := writer.Flush(shutdownCtx); err != nil {
		return fmt.Errorf("final snapshot flush: %w", err)
	}
	printSuccess("snapshot flushed")
	return nil
}
