// Package logging adapts [kernel.Logger] onto a real structured-logging
// stack: [logiface.Logger] as the generic front end, [stumpy] as the JSON
// writer backend, the same pairing stumpy's own example tests configure.
package logging

import (
	"github.com/bbrown1867/rucos-go/kernel"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// New builds a [kernel.Logger] that writes newline-delimited JSON via
// stumpy, using opts to configure the stumpy writer (field names, the
// destination io.Writer, defaulting to os.Stderr).
func New(level logiface.Level, opts ...stumpy.Option) kernel.Logger {
	l := stumpy.L.New(
		stumpy.L.WithStumpy(opts...),
		logiface.WithLevel[*stumpy.Event](level),
	)
	return &adapter{logger: l}
}

// adapter implements [kernel.Logger] over a stumpy-backed logiface
// logger. [New] builds one with its own logger; [Wrap] builds one over a
// logger the caller already has.
type adapter struct {
	logger *logiface.Logger[*stumpy.Event]
}

// Wrap adapts an existing *logiface.Logger[*stumpy.Event] to
// [kernel.Logger], for callers already running a stumpy logger elsewhere
// in the program and wanting the kernel to share it.
func Wrap(l *logiface.Logger[*stumpy.Event]) kernel.Logger {
	return &adapter{logger: l}
}

func (a *adapter) IsEnabled(level kernel.LogLevel) bool {
	cur := a.logger.Level()
	return cur.Enabled() && levelFor(level) <= cur
}

func (a *adapter) Log(entry kernel.LogEntry) {
	b := a.logger.Build(levelFor(entry.Level))
	if b == nil {
		return
	}
	if entry.HasTask {
		b = b.Uint64("task", uint64(entry.TaskID))
	}
	b = b.Uint64("tick", uint64(entry.Tick))
	if entry.Err != nil {
		b = b.Err(entry.Err)
	}
	b.Log(entry.Message)
}

// levelFor maps the kernel's two-level severity onto the fuller syslog
// scale logiface uses; everything else the kernel could plausibly grow
// into (warnings, notices) has an obvious home below Error and above
// Debug, so the mapping is written to leave room rather than pack both
// ends of the scale.
func levelFor(l kernel.LogLevel) logiface.Level {
	switch l {
	case kernel.LevelError:
		return logiface.LevelError
	default:
		return logiface.LevelDebug
	}
}
