// Package version parses, orders, and increments release version labels
// and reconciles a local release against a remotely reported one.
// It also carries the build version of release-tui itself.
package version

// Version is the current application version.
// Update this at logical milestones.
const Version = "0.1.0"

// Milestones:
// 0.1.0 - Release registry, manifest sources, update checks, TUI
// 0.2.0 - (planned) Pre-release labels (rc, beta) in the ordering
