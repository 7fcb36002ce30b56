package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/litescript/ls-release-tui/internal/activity"
	"github.com/litescript/ls-release-tui/internal/release"
	"github.com/litescript/ls-release-tui/internal/version"
)

// errReported marks a failure the printer has already shown.
var errReported = errors.New("already reported")

// printer is the session sink for one-shot commands. Notices go to errOut;
// results are printed by the commands themselves.
type printer struct {
	errOut  io.Writer
	noticed bool
}

func newPrinter(errOut io.Writer) *printer {
	return &printer{errOut: errOut}
}

func (p *printer) ReleasesChanged([]release.Item, *release.Entry) {}
func (p *printer) Reconciled(version.UpdateInfo) {}
func (p *printer) Logged(activity.Entry) {}

func (p *printer) Notify(sev activity.Severity, msg string) {
	if sev == activity.SeverityError {
		fmt.Fprintf(p.errOut, "Error: %s\n", msg)
		p.noticed = true
		return
	}
	fmt.Fprintln(p.errOut, msg)
}

// failed wraps err so it is not printed twice once a notice went out.
func (p *printer) failed(err error) error {
	if err == nil {
		return nil
	}
	if p.noticed {
		return fmt.Errorf("%w: %w", errReported, err)
	}
	return err
}
