package main

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/litescript/ls-release-tui/internal/config"
	"github.com/litescript/ls-release-tui/internal/log"
	"github.com/litescript/ls-release-tui/internal/manifest"
	"github.com/litescript/ls-release-tui/internal/session"
	"github.com/litescript/ls-release-tui/internal/store"
	"github.com/litescript/ls-release-tui/internal/theme"
	"github.com/litescript/ls-release-tui/internal/tui"
	"github.com/litescript/ls-release-tui/internal/update"
	"github.com/litescript/ls-release-tui/internal/version"
)

func init() {
	// Query the terminal background before Bubble Tea owns stdin, so the
	// OSC 11 reply does not land in a text input.
	_ = lipgloss.HasDarkBackground()
}

// app carries what every subcommand needs.
type app struct {
	out      io.Writer
	errOut   io.Writer
	cfgFile  string
	cfg      config.Config
	closeLog func()
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "release-tui",
		Short: "Manage release versions from the terminal",
		Long: `release-tui keeps a list of releases (version, date, download location),
shows them newest first, suggests the next version number and checks a
published manifest for a newer release.

Run without a subcommand to open the interactive UI.`,
		Version:           version.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return a.init() },
		PersistentPostRun: func(cmd *cobra.Command, args []string) { a.close() },
		RunE:              a.runTUI,
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "",
		"config file (default: ~/.config/release-tui/config.toml)")

	root.AddCommand(
		a.listCmd(),
		a.addCmd(),
		a.uploadCmd(),
		a.editCmd(),
		a.rmCmd(),
		a.nextCmd(),
		a.checkCmd(),
		a.serveCmd(),
		a.versionCmd(),
	)
	return root
}

func (a *app) init() error {
	path := a.cfgFile
	if path == "" {
		path = config.ConfigPath()
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}
	a.cfg = cfg

	if cfg.Log.Path != "" {
		closeLog, err := log.Init(cfg.Log.Path)
		if err != nil {
			fmt.Fprintf(a.errOut, "Warning: failed to open log file: %v\n", err)
		} else {
			a.closeLog = closeLog
		}
		if cfg.Log.Debug {
			log.SetMinLevel(log.LevelDebug)
		}
	}
	log.Info(log.CatConfig, "config loaded", "path", path, "backend", cfg.Storage.Backend, "manifest", cfg.Manifest.Kind)
	return nil
}

func (a *app) close() {
	if a.closeLog != nil {
		a.closeLog()
		a.closeLog = nil
	}
}

// openSession opens the configured store and loads a session from it.
// Store failures are reported and the session runs in memory instead.
func (a *app) openSession(sink session.Sink) (*session.Session, store.Store) {
	if err := config.EnsureDataDir(a.cfg); err != nil {
		fmt.Fprintf(a.errOut, "Warning: failed to create data dir: %v\n", err)
	}

	opts := []session.Option{
		session.WithSink(sink),
		session.WithStrictVersions(a.cfg.Releases.StrictVersions),
		session.WithSeed(a.cfg.Releases.SeedDefaults),
		session.WithActivityLimit(a.cfg.Releases.ActivityLimit),
	}

	st, err := store.Open(a.cfg.Storage.Backend, a.cfg.Storage.Location())
	if err != nil {
		log.ErrorErr(log.CatStore, "open store failed", err)
		fmt.Fprintf(a.errOut, "Warning: %v; changes will not be saved\n", err)
	} else {
		opts = append(opts, session.WithStore(st))
	}

	sess := session.New(opts...)
	if err := sess.Load(); err != nil {
		fmt.Fprintf(a.errOut, "Warning: %v; changes will not be saved\n", err)
	}
	return sess, st
}

// newChecker returns nil when no manifest is configured.
func (a *app) newChecker() (*update.Checker, error) {
	if a.cfg.Manifest.Kind == "" {
		return nil, nil
	}
	src, err := manifest.New(a.cfg.Manifest)
	if err != nil {
		return nil, err
	}
	return update.NewChecker(src), nil
}

func (a *app) runTUI(cmd *cobra.Command, args []string) error {
	theme.Refresh()

	view := tui.NewProjection()
	sess, st := a.openSession(view)
	defer store.Close(st)

	checker, err := a.newChecker()
	if err != nil {
		fmt.Fprintf(a.errOut, "Warning: %v; update checks disabled\n", err)
	}

	opts := []tui.Option{tui.WithCheckOnStart(checker != nil)}

	// Reload when another release-tui writes to the same store
	if sess.Persistent() {
		if dir, match, ok := store.WatchPath(st); ok {
			changes := make(chan struct{}, 1)
			w, err := store.NewWatcher(dir, match, func() {
				select {
				case changes <- struct{}{}:
				default:
				}
			})
			if err != nil {
				log.ErrorErr(log.CatWatcher, "start watcher failed", err)
			} else {
				defer w.Stop()
				opts = append(opts, tui.WithChanges(changes))
			}
		}
	}

	model := tui.NewModel(sess, view, checker, opts...)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}
