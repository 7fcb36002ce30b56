package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/litescript/ls-release-tui/internal/log"
	"github.com/litescript/ls-release-tui/internal/server"
	"github.com/litescript/ls-release-tui/internal/store"
)

func (a *app) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Publish the releases as a manifest over HTTP",
		Long: `Serve the releases as /manifest.json and /manifest.yaml, with
/healthz and Prometheus /metrics. The published manifest follows changes
made to the store by other release-tui processes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			srv := server.New()
			sess, st := a.openSession(srv)
			defer store.Close(st)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// The watcher goroutine is the only one touching sess after Load;
			// handlers read the published manifest.
			if sess.Persistent() {
				if dir, match, ok := store.WatchPath(st); ok {
					w, err := store.NewWatcher(dir, match, func() {
						if _, err := sess.Reload(); err != nil {
							log.ErrorErr(log.CatWatcher, "reload failed", err)
						}
					})
					if err != nil {
						log.ErrorErr(log.CatWatcher, "start watcher failed", err)
					} else {
						defer w.Stop()
					}
				}
			}

			fmt.Fprintf(a.out, "Serving %d releases on http://%s\n", len(srv.Published().Releases), addr)
			return serve(ctx, srv, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

func serve(ctx context.Context, srv *server.Server, addr string) error {
	if err := srv.ListenAndServe(ctx, addr); err != nil {
		return fmt.Errorf("serve %s: %w", addr, err)
	}
	return nil
}
