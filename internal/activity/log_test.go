package activity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func TestLog_AppendAndRecent(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := NewLog(WithClock(clock.now))

	l.Info("loaded")
	l.Error("save failed")
	l.Info("added v1.0.1")

	entries := l.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "loaded", entries[0].Message)
	assert.True(t, entries[0].Timestamp.Before(entries[2].Timestamp))

	recent := l.Recent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "added v1.0.1", recent[0].Message)
	assert.Equal(t, "save failed", recent[1].Message)
	assert.True(t, recent[1].IsError())
}

func TestLog_RecentAll(t *testing.T) {
	l := NewLog()
	l.Info("a")
	l.Info("b")
	assert.Len(t, l.Recent(0), 2)
	assert.Len(t, l.Recent(10), 2)
}

func TestLog_Limit(t *testing.T) {
	l := NewLog(WithLimit(2))
	l.Info("one")
	l.Info("two")
	l.Info("three")

	require.Equal(t, 2, l.Len())
	assert.Equal(t, "two", l.Entries()[0].Message)

	l.Replace([]Entry{{Message: "a"}, {Message: "b"}, {Message: "c"}})
	assert.Equal(t, []Entry{{Message: "b"}, {Message: "c"}}, l.Entries())
}

func TestLog_TimestampsAreUTC(t *testing.T) {
	loc := time.FixedZone("ICT", 7*3600)
	l := NewLog(WithClock(func() time.Time { return time.Date(2024, 1, 1, 9, 0, 0, 0, loc) }))

	e := l.Info("x")
	assert.Equal(t, time.UTC, e.Timestamp.Location())
	assert.Equal(t, 2, e.Timestamp.Hour())
}
