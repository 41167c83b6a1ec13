package warnings

import (
	"fmt"
	"strings"

	"github.com/jamespfennell/gtfstools/constants"
)

type StaticWarning interface {
	File() constants.StaticFile
	Error() string
}

type TransferUnknownStop struct {
	Row          int
	FromStopID   string
	ToStopID     string
	UnknownStops []string
}

func (w TransferUnknownStop) File() constants.StaticFile {
	return constants.TransfersFile
}

func (w TransferUnknownStop) Error() string {
	return fmt.Sprintf("skipping transfer %q -> %q on row %d because of unknown stops %s",
		w.FromStopID, w.ToStopID, w.Row, strings.Join(w.UnknownStops, ", "))
}

// ParentStationMissing is a child stop whose parent_station is not a stop_id of stops.txt.
type ParentStationMissing struct {
	StopID        string
	ParentStation string
}

func (w ParentStationMissing) File() constants.StaticFile {
	return constants.StopsFile
}

func (w ParentStationMissing) Error() string {
	return fmt.Sprintf("stop %q has parent station %q which is not in the stops file", w.StopID, w.ParentStation)
}

// ParentStationNested is a child stop whose parent is itself a child.
type ParentStationNested struct {
	StopID             string
	ParentStation      string
	GrandparentStation string
}

func (w ParentStationNested) File() constants.StaticFile {
	return constants.StopsFile
}

func (w ParentStationNested) Error() string {
	return fmt.Sprintf("stop %q has parent station %q which itself has parent station %q",
		w.StopID, w.ParentStation, w.GrandparentStation)
}
