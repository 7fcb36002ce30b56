// Package session ties the release registry, the activity log, the
// snapshot store and a presentation sink together. It owns every side
// effect of a user action: the mutation, its activity entry, the flush to
// the store, and the sink notification.
package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/litescript/ls-release-tui/internal/activity"
	"github.com/litescript/ls-release-tui/internal/log"
	"github.com/litescript/ls-release-tui/internal/release"
	"github.com/litescript/ls-release-tui/internal/store"
	"github.com/litescript/ls-release-tui/internal/version"
)

// Option configures a Session.
type Option func(*Session)

// WithStore sets the snapshot store. Without one the session is in-memory.
func WithStore(st store.Store) Option {
	return func(s *Session) {
		if st != nil {
			s.store = st
			s.persistent = true
		}
	}
}

// WithSink sets the presentation sink.
func WithSink(sink Sink) Option {
	return func(s *Session) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// WithClock sets the time source for activity timestamps and upload dates.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithStrictVersions rejects labels that do not parse on add and edit.
func WithStrictVersions(strict bool) Option {
	return func(s *Session) { s.strict = strict }
}

// WithSeed fills an empty store with release.DefaultEntries.
func WithSeed(seed bool) Option {
	return func(s *Session) { s.seed = seed }
}

// WithActivityLimit caps the retained activity log.
func WithActivityLimit(n int) Option {
	return func(s *Session) { s.activityLimit = n }
}

// Session is the application context for one run. It is not safe for
// concurrent use.
type Session struct {
	id            string
	store         store.Store
	persistent    bool
	sink          Sink
	now           func() time.Time
	strict        bool
	seed          bool
	activityLimit int

	registry *release.Registry
	activity *activity.Log
	current  string
	lastInfo *version.UpdateInfo
}

// New creates a session. Call Load before using it.
func New(opts ...Option) *Session {
	s := &Session{
		id:     uuid.NewString(),
		store:  store.NewMemoryStore(),
		sink:   NopSink{},
		now:    time.Now,
		strict: true,
		seed:   true,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registry = release.NewRegistry()
	s.activity = activity.NewLog(activity.WithClock(s.now), activity.WithLimit(s.activityLimit))
	return s
}

// ID identifies the session in log lines.
func (s *Session) ID() string {
	return s.id
}

// Persistent reports whether changes still reach the configured store.
// It turns false after the first persistence failure.
func (s *Session) Persistent() bool {
	return s.persistent
}

// Load rehydrates the session from its store. A store with no snapshot is
// seeded with the default releases. If the store fails, the session
// continues in memory with the defaults and the error is returned.
func (s *Session) Load() error {
	snap, found, err := LoadSnapshot(s.store)
	if err != nil {
		log.ErrorErr(log.CatStore, "load snapshot failed", err, "session", s.id)
		s.degrade()
		s.applySeed()
		if s.seed {
			s.record(activity.SeverityError, "Failed to load saved releases, using defaults")
		} else {
			s.record(activity.SeverityError, "Failed to load saved releases")
		}
		s.publish()
		return err
	}

	if !found {
		s.applySeed()
		if s.seed {
			s.record(activity.SeverityInfo, "Initialized default releases")
		}
		s.flush()
		s.publish()
		return nil
	}

	s.apply(snap)
	log.Info(log.CatStore, "loaded snapshot", "session", s.id, "releases", len(snap.Releases))
	s.record(activity.SeverityInfo, fmt.Sprintf("Loaded %d releases", len(snap.Releases)))
	s.publish()
	return nil
}

// Reload re-reads the store after another process changed it. It is a
// no-op when the stored snapshot matches the session or when the session
// has stopped persisting.
func (s *Session) Reload() (bool, error) {
	if !s.persistent {
		return false, nil
	}
	snap, found, err := LoadSnapshot(s.store)
	if err != nil {
		log.ErrorErr(log.CatStore, "reload failed", err, "session", s.id)
		return false, err
	}
	if !found || snap.Equal(s.Snapshot()) {
		return false, nil
	}

	s.apply(snap)
	log.Info(log.CatStore, "reloaded snapshot", "session", s.id, "releases", len(snap.Releases))
	s.publish()
	for _, e := range s.activity.Recent(1) {
		s.sink.Logged(e)
	}
	return true, nil
}

// Add registers entry as is and returns its position.
func (s *Session) Add(entry release.Entry) (int, error) {
	entry.Version = strings.TrimSpace(entry.Version)
	if entry.Version == "" {
		return -1, s.reject("Add", &release.ValidationError{Field: "version", Reason: "must not be blank"})
	}
	if err := s.checkLabel(entry.Version); err != nil {
		return -1, s.reject("Add", err)
	}
	entry.Date = strings.TrimSpace(entry.Date)
	if entry.Date == "" {
		entry.Date = s.now().Format(release.DateLayout)
	} else if _, err := entry.ReleasedAt(); err != nil {
		return -1, s.reject("Add", &release.ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"})
	}

	pos := s.registry.Add(entry)
	s.commit(fmt.Sprintf("Added version %q", entry.Version))
	return pos, nil
}

// Upload registers a packaged release. Both the version and a .zip file
// name are required; the download location is download/<version>/<file>
// and the date is today.
func (s *Session) Upload(label, fileName string) (release.Entry, error) {
	entry, err := release.NewUpload(label, fileName, s.now())
	if err != nil {
		return release.Entry{}, s.reject("Upload", err)
	}
	if err := s.checkLabel(entry.Version); err != nil {
		return release.Entry{}, s.reject("Upload", err)
	}

	s.registry.Add(entry)
	s.commit(fmt.Sprintf("Added new version %q at %s", entry.Version, entry.DownloadURL))
	return entry, nil
}

// UploadNext is Upload with the version taken from NextVersion.
func (s *Session) UploadNext(fileName string) (release.Entry, error) {
	next, err := s.NextVersion()
	if err != nil {
		return release.Entry{}, s.reject("Upload", err)
	}
	return s.Upload(next, fileName)
}

// Edit replaces the version label at pos.
func (s *Session) Edit(pos int, label string) (release.Entry, error) {
	if _, err := s.registry.Get(pos); err != nil {
		return release.Entry{}, s.reject("Edit", err)
	}
	label = strings.TrimSpace(label)
	if label != "" {
		if err := s.checkLabel(label); err != nil {
			return release.Entry{}, s.reject("Edit", err)
		}
	}

	old, err := s.registry.Edit(pos, label)
	if err != nil {
		return release.Entry{}, s.reject("Edit", err)
	}

	s.commit(fmt.Sprintf("Updated version %q to %q", old.Version, label))
	return old, nil
}

// Remove deletes the entry at pos.
func (s *Session) Remove(pos int) (release.Entry, error) {
	old, err := s.registry.Remove(pos)
	if err != nil {
		return release.Entry{}, s.reject("Remove", err)
	}
	s.commit(fmt.Sprintf("Deleted version %q", old.Version))
	return old, nil
}

// Releases returns the entries newest first with their positions.
// Malformed labels sort last; they are logged, not returned as an error.
func (s *Session) Releases() []release.Item {
	items, err := s.registry.All()
	if err != nil {
		log.Debug(log.CatRegistry, "unparseable versions in registry", "session", s.id, "error", err.Error())
	}
	return items
}

// Entries returns the entries in registry order.
func (s *Session) Entries() []release.Entry {
	return s.registry.Entries()
}

// Latest returns the entry with the greatest version.
func (s *Session) Latest() (release.Entry, bool) {
	e, ok, _ := s.registry.Latest()
	return e, ok
}

// NextVersion suggests the label for the next release.
func (s *Session) NextVersion() (string, error) {
	latest, _ := s.Latest()
	return version.NextAfter(latest.Version)
}

// LocalVersion is the version reconciled against a remote: the latest
// registered label, or the persisted current version when the registry
// has none.
func (s *Session) LocalVersion() string {
	if latest, ok := s.Latest(); ok {
		return latest.Version
	}
	return s.current
}

// Activity returns the activity log, oldest first.
func (s *Session) Activity() []activity.Entry {
	return s.activity.Entries()
}

// RecentActivity returns up to n entries, newest first.
func (s *Session) RecentActivity(n int) []activity.Entry {
	return s.activity.Recent(n)
}

// LastCheck returns the most recent reconciliation, if any.
func (s *Session) LastCheck() (version.UpdateInfo, bool) {
	if s.lastInfo == nil {
		return version.UpdateInfo{}, false
	}
	return *s.lastInfo, true
}

// RecordCheck logs the outcome of an update check and forwards it to the
// sink. err is the local-version error returned by version.Reconcile.
func (s *Session) RecordCheck(info version.UpdateInfo, err error) {
	if err != nil {
		s.reject("Update check", err)
		return
	}

	s.lastInfo = &info
	switch info.Status {
	case version.StatusRemoteUnavailable:
		s.record(activity.SeverityError, info.Summary())
		s.sink.Notify(activity.SeverityError, info.Summary())
	default:
		s.record(activity.SeverityInfo, info.Summary())
	}
	s.flush()
	s.sink.Reconciled(info)
}

// Snapshot returns the state that would be persisted.
func (s *Session) Snapshot() Snapshot {
	current := s.current
	if latest, ok := s.Latest(); ok {
		current = latest.Version
	}
	return Snapshot{
		Releases:       s.registry.Entries(),
		Activity:       s.activity.Entries(),
		CurrentVersion: current,
	}
}

func (s *Session) checkLabel(label string) error {
	if !s.strict {
		return nil
	}
	_, err := version.Parse(label)
	return err
}

func (s *Session) applySeed() {
	if s.seed {
		s.registry.Replace(release.DefaultEntries())
	}
}

func (s *Session) apply(snap Snapshot) {
	s.registry.Replace(snap.Releases)
	s.activity.Replace(snap.Activity)
	s.current = snap.CurrentVersion
}

// commit finishes a successful mutation.
func (s *Session) commit(msg string) {
	log.Info(log.CatRegistry, msg, "session", s.id)
	s.record(activity.SeverityInfo, msg)
	s.flush()
	s.publish()
}

// Reject records op as refused for a reason found outside the session,
// such as an unparseable command line argument, and returns err.
func (s *Session) Reject(op string, err error) error {
	return s.reject(op, err)
}

// reject records a refused operation and hands err back.
func (s *Session) reject(op string, err error) error {
	msg := fmt.Sprintf("%s rejected: %v", op, err)
	log.Warn(log.CatRegistry, msg, "session", s.id)
	s.record(activity.SeverityError, msg)
	s.flush()
	s.sink.Notify(activity.SeverityError, describe(err))
	return err
}

func (s *Session) record(sev activity.Severity, msg string) {
	e := s.activity.Append(sev, msg)
	s.sink.Logged(e)
}

// flush saves the snapshot. On failure the session stops persisting and
// keeps going in memory.
func (s *Session) flush() {
	if !s.persistent {
		return
	}
	snap := s.Snapshot()
	if err := SaveSnapshot(s.store, snap); err != nil {
		log.ErrorErr(log.CatStore, "save snapshot failed", err, "session", s.id)
		s.degrade()
		s.record(activity.SeverityError, "Failed to save releases; changes are kept in memory only")
		s.sink.Notify(activity.SeverityError, "Saving failed, continuing in memory")
		return
	}
	s.current = snap.CurrentVersion
	log.Debug(log.CatStore, "saved snapshot", "session", s.id, "releases", len(snap.Releases))
}

func (s *Session) degrade() {
	s.persistent = false
	s.store = store.NewMemoryStore()
}

func (s *Session) publish() {
	items := s.Releases()
	var latest *release.Entry
	if e, ok := s.Latest(); ok {
		latest = &e
	}
	s.sink.ReleasesChanged(items, latest)
}

// describe renders err for a user-facing notice.
func describe(err error) string {
	var (
		oor *release.OutOfRangeError
		ve  *release.ValidationError
		me  *version.MalformedVersionError
	)
	switch {
	case errors.As(err, &oor):
		return fmt.Sprintf("No release at position %d", oor.Position)
	case errors.As(err, &ve):
		return fmt.Sprintf("Invalid %s: %s", ve.Field, ve.Reason)
	case errors.As(err, &me):
		return fmt.Sprintf("Invalid version %q: %s", me.Label, me.Reason)
	default:
		return err.Error()
	}
}
