// Package positioner translates the out-of-band (command_index,
// intra_offset) coordinate used by positioning requests into an absolute
// byte position within the log, reporting InvalidArgument for any
// coordinate that does not currently address a held byte.
package positioner

import (
	"errors"

	"github.com/commandlogd/commandlogd/internal/ringlog"
)

// ErrInvalidArgument is returned when the requested command index is not
// currently held, or the intra-command offset is not less than that
// command's size.
// This is the one error the core surfaces for coordinate-out-of-range,
// matching spec.md §4.7.
var ErrInvalidArgument = errors.New("positioner: invalid argument")

// Positioner resolves (write_cmd, write_cmd_offset) coordinates against a
// ring log.
type Positioner struct {
	log *ringlog.Log
}

// New returns a Positioner bound to log.
func New(log *ringlog.Log) *Positioner {
	return &Positioner{log: log}
}

// Resolve maps writeCmd (0-indexed, oldest held command is 0) and
// writeCmdOffset to an absolute byte position. The whole lookup is atomic
// with respect to concurrent log mutation: ringlog.Log.PositionOf holds the
// log's lock for its entire duration.
func (p *Positioner) Resolve(writeCmd, writeCmdOffset uint32) (int64, error) {
	pos, err := p.log.PositionOf(int(writeCmd), int(writeCmdOffset))
	if err != nil {
		return 0, ErrInvalidArgument
	}
	return pos, nil
}
