package session

import (
	"github.com/litescript/ls-release-tui/internal/activity"
	"github.com/litescript/ls-release-tui/internal/release"
	"github.com/litescript/ls-release-tui/internal/version"
)

// Sink receives everything a presentation layer needs to redraw.
// Calls happen synchronously on the goroutine driving the session.
type Sink interface {
	// ReleasesChanged delivers the releases newest first. latest is nil
	// when no entry has a parseable version.
	ReleasesChanged(items []release.Item, latest *release.Entry)
	Reconciled(info version.UpdateInfo)
	Logged(entry activity.Entry)
	// Notify is a transient message for the user, such as a rejected edit.
	Notify(sev activity.Severity, msg string)
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) ReleasesChanged([]release.Item, *release.Entry) {}
func (NopSink) Reconciled(version.UpdateInfo) {}
func (NopSink) Logged(activity.Entry) {}
func (NopSink) Notify(activity.Severity, string) {}
