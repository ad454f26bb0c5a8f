// Package diag collects warnings emitted during a build so callers can
// inspect them after the fact, while still streaming them to the user.
package diag

import (
	"fmt"
	"io"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
)

// Collector records diagnostics and mirrors them to a logfmt stream.
// Warnings never abort the pipeline; fatal conditions are ordinary Go
// errors returned through normal call chains.
type Collector struct {
	logger   log.Logger
	warnings []string
}

// New creates a collector writing logfmt records to w (stderr in production).
func New(w io.Writer) *Collector {
	return &Collector{
		logger: log.NewLogfmtLogger(log.NewSyncWriter(w)),
	}
}

// NewNop creates a collector that records warnings without emitting them.
func NewNop() *Collector {
	return &Collector{logger: log.NewNopLogger()}
}

// Warnf records a warning and emits it at warn level.
func (c *Collector) Warnf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	c.warnings = append(c.warnings, msg)
	level.Warn(c.logger).Log("msg", msg)
}

// Errorf records a non-fatal error and emits it at error level. Used for
// conditions that degrade the output (e.g. a shortcut target that does not
// exist) without stopping the build.
func (c *Collector) Errorf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	c.warnings = append(c.warnings, msg)
	level.Error(c.logger).Log("msg", msg)
}

// Debugf emits a debug-level record without retaining it.
func (c *Collector) Debugf(format string, args ...interface{}) {
	level.Debug(c.logger).Log("msg", fmt.Sprintf(format, args...))
}

// Warnings returns every recorded warning and non-fatal error, in order.
func (c *Collector) Warnings() []string {
	return c.warnings
}

// Logger exposes the underlying logger for packages that log directly.
func (c *Collector) Logger() log.Logger {
	return c.logger
}
