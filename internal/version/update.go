package version

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Status classifies the outcome of an update check.
type Status int

const (
	StatusUpToDate Status = iota
	StatusUpdateAvailable
	StatusRemoteUnavailable
)

func (s Status) String() string {
	switch s {
	case StatusUpToDate:
		return "up to date"
	case StatusUpdateAvailable:
		return "update available"
	case StatusRemoteUnavailable:
		return "remote unavailable"
	default:
		return "unknown"
	}
}

// ErrNoRemoteVersion is reported when a fetch succeeded but named no version.
var ErrNoRemoteVersion = errors.New("remote reported no version")

// UpdateInfo contains the result of reconciling a local release with a remote one.
type UpdateInfo struct {
	CurrentVersion string
	LatestVersion  string
	Status         Status
	// Error is set when Status is StatusRemoteUnavailable.
	Error error
}

// UpdateAvailable reports whether the remote release is newer.
func (u UpdateInfo) UpdateAvailable() bool {
	return u.Status == StatusUpdateAvailable
}

// Retryable reports whether another fetch attempt could change the outcome.
// Cancelled checks and remotes that answered with a bad version are not retried.
func (u UpdateInfo) Retryable() bool {
	if u.Status != StatusRemoteUnavailable || u.Error == nil {
		return false
	}
	if errors.Is(u.Error, context.Canceled) || errors.Is(u.Error, ErrMalformed) || errors.Is(u.Error, ErrNoRemoteVersion) {
		return false
	}
	return true
}

// Summary is a one-line human description of the result.
func (u UpdateInfo) Summary() string {
	switch u.Status {
	case StatusUpdateAvailable:
		if u.CurrentVersion == "" {
			return fmt.Sprintf("Update available: %s", u.LatestVersion)
		}
		return fmt.Sprintf("Update available: %s -> %s", u.CurrentVersion, u.LatestVersion)
	case StatusUpToDate:
		return fmt.Sprintf("Up to date (%s)", u.CurrentVersion)
	default:
		if u.Error != nil {
			return fmt.Sprintf("Update check failed: %v", u.Error)
		}
		return "Update check failed"
	}
}

// Reconcile compares the local latest label with the one a remote reported.
//
// A failed fetch, a blank remote label, or a remote label that does not parse
// all yield StatusRemoteUnavailable; none of them count as up to date. A blank
// local label means nothing is released yet, so any valid remote is newer.
// A local label that does not parse is returned as an error.
func Reconcile(local, remote string, fetchErr error) (UpdateInfo, error) {
	info := UpdateInfo{
		CurrentVersion: strings.TrimSpace(local),
		LatestVersion:  strings.TrimSpace(remote),
	}

	if fetchErr != nil {
		info.Status = StatusRemoteUnavailable
		info.Error = fetchErr
		return info, nil
	}
	if info.LatestVersion == "" {
		info.Status = StatusRemoteUnavailable
		info.Error = ErrNoRemoteVersion
		return info, nil
	}

	remoteParsed, err := Parse(info.LatestVersion)
	if err != nil {
		info.Status = StatusRemoteUnavailable
		info.Error = err
		return info, nil
	}

	if info.CurrentVersion == "" {
		info.Status = StatusUpdateAvailable
		return info, nil
	}

	localParsed, err := Parse(info.CurrentVersion)
	if err != nil {
		return info, fmt.Errorf("local version: %w", err)
	}

	if Compare(remoteParsed, localParsed) > 0 {
		info.Status = StatusUpdateAvailable
	} else {
		info.Status = StatusUpToDate
	}
	return info, nil
}

// InstallCommand returns the command to update release-tui itself.
func InstallCommand() string {
	return "go install github.com/litescript/ls-release-tui/cmd/release-tui@latest"
}
