package tui

import (
	"github.com/litescript/ls-release-tui/internal/activity"
	"github.com/litescript/ls-release-tui/internal/release"
	"github.com/litescript/ls-release-tui/internal/session"
	"github.com/litescript/ls-release-tui/internal/version"
)

// activityBacklog is how many activity entries the view keeps.
const activityBacklog = 200

// Projection is the session sink behind the TUI. The session writes to it
// from Update and View reads it, both on the Bubble Tea loop.
type Projection struct {
	items    []release.Item
	latest   *release.Entry
	info     *version.UpdateInfo
	activity []activity.Entry // newest first

	notice    string
	noticeSev activity.Severity
}

var _ session.Sink = (*Projection)(nil)

// NewProjection creates an empty projection. Pass it to session.WithSink
// and then to NewModel.
func NewProjection() *Projection {
	return &Projection{}
}

// ReleasesChanged implements session.Sink.
func (p *Projection) ReleasesChanged(items []release.Item, latest *release.Entry) {
	p.items = items
	p.latest = latest
}

// Reconciled implements session.Sink.
func (p *Projection) Reconciled(info version.UpdateInfo) {
	p.info = &info
}

// Logged implements session.Sink.
func (p *Projection) Logged(e activity.Entry) {
	p.activity = append([]activity.Entry{e}, p.activity...)
	if len(p.activity) > activityBacklog {
		p.activity = p.activity[:activityBacklog]
	}
}

// Notify implements session.Sink.
func (p *Projection) Notify(sev activity.Severity, msg string) {
	p.notice = msg
	p.noticeSev = sev
}

func (p *Projection) setStatus(msg string) {
	p.Notify(activity.SeverityInfo, msg)
}

// syncActivity replaces the backlog after a load or reload.
func (p *Projection) syncActivity(recent []activity.Entry) {
	p.activity = recent
}

// hasLatest reports whether the first row is the latest release. Rows are
// sorted newest first with ties in registry order, which is the same entry
// the registry reports as latest.
func (p *Projection) hasLatest() bool {
	return p.latest != nil && len(p.items) > 0
}
