package gtfstools

import (
	"fmt"

	"github.com/jamespfennell/gtfstools/constants"
)

// UnknownStopError is returned when a stop_times row references a stop_id that is not in stops.txt.
type UnknownStopError struct {
	File   constants.StaticFile
	Row    int
	StopID string
}

func (e *UnknownStopError) Error() string {
	return fmt.Sprintf("%s: row %d references stop %q which is not in %s", e.File, e.Row, e.StopID, constants.StopsFile)
}

type InvalidStopSequenceError struct {
	TripID       string
	StopID       string
	StopSequence string
}

func (e *InvalidStopSequenceError) Error() string {
	return fmt.Sprintf("%s: trip %q has non-integer stop_sequence %q at stop %q",
		constants.StopTimesFile, e.TripID, e.StopSequence, e.StopID)
}
