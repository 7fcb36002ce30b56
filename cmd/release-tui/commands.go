package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/litescript/ls-release-tui/internal/activity"
	"github.com/litescript/ls-release-tui/internal/release"
	"github.com/litescript/ls-release-tui/internal/session"
	"github.com/litescript/ls-release-tui/internal/store"
)

// withSession runs fn against a session loaded from the configured store.
func (a *app) withSession(fn func(sess *session.Session, p *printer) error) error {
	p := newPrinter(a.errOut)
	sess, st := a.openSession(p)
	defer store.Close(st)
	return p.failed(fn(sess, p))
}

// parsePosition reads a registry position argument. A bad argument is
// recorded as a rejected op on sess.
func parsePosition(sess *session.Session, op, arg string) (int, error) {
	pos, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, sess.Reject(op, &release.ValidationError{Field: "position", Reason: fmt.Sprintf("%q is not a number", arg)})
	}
	return pos, nil
}

func (a *app) listCmd() *cobra.Command {
	var (
		output       string
		showActivity bool
		limit        int
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List releases newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(func(sess *session.Session, _ *printer) error {
				if showActivity {
					return writeActivity(a.out, sess.RecentActivity(limit), output)
				}
				latest, ok := sess.Latest()
				var latestPtr *release.Entry
				if ok {
					latestPtr = &latest
				}
				return writeReleases(a.out, sess.Releases(), latestPtr, output)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table, json or yaml")
	cmd.Flags().BoolVar(&showActivity, "activity", false, "show the activity log instead of releases")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of activity entries to show")
	return cmd
}

// listedRelease is the machine readable form of a listed release.
type listedRelease struct {
	Position    int    `json:"position" yaml:"position"`
	Version     string `json:"version" yaml:"version"`
	Date        string `json:"date" yaml:"date"`
	DownloadURL string `json:"download_url" yaml:"download_url"`
	Latest      bool   `json:"latest,omitempty" yaml:"latest,omitempty"`
}

func writeReleases(w io.Writer, items []release.Item, latest *release.Entry, format string) error {
	rows := make([]listedRelease, len(items))
	for i, it := range items {
		rows[i] = listedRelease{
			Position:    it.Position,
			Version:     it.Version,
			Date:        it.Date,
			DownloadURL: it.DownloadURL,
			Latest:      i == 0 && latest != nil,
		}
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(rows)
	case "table", "":
	default:
		return fmt.Errorf("unknown output format %q", format)
	}

	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No releases")
		return err
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "VERSION", "DATE", "DOWNLOAD", "")
	for _, r := range rows {
		marker := ""
		if r.Latest {
			marker = "latest"
		}
		t.Row(strconv.Itoa(r.Position), r.Version, r.Date, r.DownloadURL, marker)
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func writeActivity(w io.Writer, entries []activity.Entry, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(entries)
	case "table", "":
	default:
		return fmt.Errorf("unknown output format %q", format)
	}

	for _, e := range entries {
		sev := "  "
		if e.IsError() {
			sev = "! "
		}
		if _, err := fmt.Fprintf(w, "%s%s  %s\n", sev, e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Message); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) addCmd() *cobra.Command {
	var date, url string
	cmd := &cobra.Command{
		Use:   "add <version>",
		Short: "Register a release",
		Long:  "Register a release. The date defaults to today.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(func(sess *session.Session, _ *printer) error {
				pos, err := sess.Add(release.Entry{Version: args[0], Date: date, DownloadURL: url})
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Added %s at position %d\n", args[0], pos)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "release date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&url, "url", "", "download location")
	return cmd
}

func (a *app) uploadCmd() *cobra.Command {
	var label string
	cmd := &cobra.Command{
		Use:   "upload <file.zip>",
		Short: "Register a packaged release",
		Long: `Register a packaged release under download/<version>/<file>.
Without --version the next version after the latest release is used.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(func(sess *session.Session, _ *printer) error {
				var (
					entry release.Entry
					err   error
				)
				if label == "" {
					entry, err = sess.UploadNext(args[0])
				} else {
					entry, err = sess.Upload(label, args[0])
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Added %s at %s\n", entry.Version, entry.DownloadURL)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&label, "version", "", "version of the release (default: next version)")
	return cmd
}

func (a *app) editCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <position> <version>",
		Short: "Change the version of a release",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(func(sess *session.Session, _ *printer) error {
				pos, err := parsePosition(sess, "Edit", args[0])
				if err != nil {
					return err
				}
				old, err := sess.Edit(pos, args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Updated %s to %s\n", old.Version, args[1])
				return nil
			})
		},
	}
}

func (a *app) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <position>",
		Aliases: []string{"remove"},
		Short:   "Remove a release",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(func(sess *session.Session, _ *printer) error {
				pos, err := parsePosition(sess, "Remove", args[0])
				if err != nil {
					return err
				}
				old, err := sess.Remove(pos)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Removed %s\n", old.Version)
				return nil
			})
		},
	}
}

func (a *app) nextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "Print the next version number",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(func(sess *session.Session, _ *printer) error {
				next, err := sess.NextVersion()
				if err != nil {
					return err
				}
				fmt.Fprintln(a.out, next)
				return nil
			})
		},
	}
}
