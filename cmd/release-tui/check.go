package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/litescript/ls-release-tui/internal/config"
	"github.com/litescript/ls-release-tui/internal/manifest"
	"github.com/litescript/ls-release-tui/internal/session"
	"github.com/litescript/ls-release-tui/internal/update"
	"github.com/litescript/ls-release-tui/internal/version"
)

// errUpdateCheck is returned when the remote could not be reconciled.
var errUpdateCheck = errors.New("update check failed")

func (a *app) checkCmd() *cobra.Command {
	var (
		retries int
		backoff time.Duration
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check the configured manifest for a newer release",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			checker, err := a.newChecker()
			if err != nil {
				return err
			}
			if checker == nil {
				return fmt.Errorf("%w: set [manifest] kind in %s", manifest.ErrNotConfigured, a.configPath())
			}

			return a.withSession(func(sess *session.Session, _ *printer) error {
				ctx, cancel := context.WithTimeout(cmd.Context(), a.checkTimeout(retries, backoff))
				defer cancel()

				res := checker.CheckWithRetry(ctx, sess.LocalVersion(), retries, backoff)
				sess.RecordCheck(res.Info, res.Err)
				if res.Err != nil {
					return res.Err
				}

				fmt.Fprintf(a.out, "%s (source: %s)\n", res.Info.Summary(), checker.Source().Name())
				if res.Info.Status == version.StatusRemoteUnavailable {
					return fmt.Errorf("%w: %w", errReported, errUpdateCheck)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&retries, "retries", 0, "extra attempts when the remote is unreachable")
	cmd.Flags().DurationVar(&backoff, "backoff", time.Second, "wait between attempts")
	return cmd
}

// checkTimeout bounds the whole check including retries.
func (a *app) checkTimeout(retries int, backoff time.Duration) time.Duration {
	per := a.cfg.Manifest.Timeout.Duration
	if per <= 0 {
		per = 10 * time.Second
	}
	return per + time.Duration(retries)*(per+backoff)
}

func (a *app) configPath() string {
	if a.cfgFile != "" {
		return a.cfgFile
	}
	return config.ConfigPath()
}

func (a *app) versionCmd() *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the release-tui version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(a.out, "release-tui v%s\n", version.Version)
			if !check {
				return nil
			}

			src, err := manifest.NewGitHubSource(manifest.SelfRepo, &http.Client{Timeout: 10 * time.Second})
			if err != nil {
				return err
			}
			res := update.NewChecker(src).Check(cmd.Context(), "v"+version.Version)
			if res.Err != nil {
				return res.Err
			}
			fmt.Fprintln(a.out, res.Info.Summary())
			if res.Info.UpdateAvailable() {
				fmt.Fprintf(a.out, "Install with: %s\n", version.InstallCommand())
			}
			if res.Info.Status == version.StatusRemoteUnavailable {
				return fmt.Errorf("%w: %w", errReported, errUpdateCheck)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "check GitHub for a newer release-tui")
	return cmd
}
