package gtfstools

import (
	"io"
	"sort"

	"github.com/jamespfennell/gtfstools/constants"
	"github.com/jamespfennell/gtfstools/csv"
	"github.com/jamespfennell/gtfstools/warnings"
)

// StopToParent maps every stop ID of a stops file to the ID of its parent station.
// A parent station maps to itself.
type StopToParent map[string]string

// Validate reports children whose parent is not in the mapping or is itself a child.
// GTFS only allows a single level of nesting between a stop and its parent station.
func (m StopToParent) Validate() []warnings.StaticWarning {
	var stopIDs []string
	for stopID := range m {
		stopIDs = append(stopIDs, stopID)
	}
	sort.Strings(stopIDs)
	var result []warnings.StaticWarning
	for _, stopID := range stopIDs {
		parent := m[stopID]
		if parent == stopID {
			continue
		}
		grandparent, ok := m[parent]
		if !ok {
			result = append(result, warnings.ParentStationMissing{StopID: stopID, ParentStation: parent})
			continue
		}
		if grandparent != parent {
			result = append(result, warnings.ParentStationNested{
				StopID:             stopID,
				ParentStation:      parent,
				GrandparentStation: grandparent,
			})
		}
	}
	return result
}

// UseParentStationsResult contains the row counts of a parent station substitution.
type UseParentStationsResult struct {
	Stops       int
	ParentStops int
	ChildStops  int
	StopTimes   int
}

// UseParentsInStops copies the parent stations of a stops file and builds the stop to parent mapping.
//
// A stop is a parent station if its parent_station field is empty. Child stops are not written out, but
// they are in the returned mapping.
func UseParentsInStops(in io.Reader, out io.Writer) (StopToParent, UseParentStationsResult, error) {
	var result UseParentStationsResult
	file, err := csv.New(constants.StopsFile, in)
	if err != nil {
		return nil, result, err
	}
	stopId := file.RequiredColumn(constants.StopId)
	parentStation := file.RequiredColumn(constants.ParentStation)
	if err := file.CheckRequiredColumns(); err != nil {
		return nil, result, err
	}
	w, err := csv.NewWriter(constants.StopsFile, out, file.HeaderContent())
	if err != nil {
		return nil, result, err
	}
	stopToParent := StopToParent{}
	for file.NextRow() {
		result.Stops++
		stopID := stopId.Read()
		parent := parentStation.Read()
		if parent != "" {
			stopToParent[stopID] = parent
			result.ChildStops++
			continue
		}
		stopToParent[stopID] = stopID
		result.ParentStops++
		if err := w.Write(file.RowContent()); err != nil {
			return nil, result, err
		}
	}
	if err := file.Err(); err != nil {
		return nil, result, err
	}
	if err := w.Flush(); err != nil {
		return nil, result, err
	}
	return stopToParent, result, nil
}

// UseParentsInStopTimes copies a stop times file, replacing each stop_id by its parent station.
//
// It returns an *UnknownStopError if a row references a stop that is not in the mapping; rows before
// that one have already been written to out.
func UseParentsInStopTimes(in io.Reader, out io.Writer, stopToParent StopToParent) (int, error) {
	file, err := csv.New(constants.StopTimesFile, in)
	if err != nil {
		return 0, err
	}
	stopId := file.RequiredColumn(constants.StopId)
	if err := file.CheckRequiredColumns(); err != nil {
		return 0, err
	}
	w, err := csv.NewWriter(constants.StopTimesFile, out, file.HeaderContent())
	if err != nil {
		return 0, err
	}
	numStopTimes := 0
	for file.NextRow() {
		stopID := stopId.Read()
		parent, ok := stopToParent[stopID]
		if !ok {
			// Flush what was written so far so that the partial output ends on a complete row.
			_ = w.Flush()
			return numStopTimes, &UnknownStopError{File: constants.StopTimesFile, Row: file.RowNumber(), StopID: stopID}
		}
		row := file.RowContent()
		row[stopId.Index()] = parent
		if err := w.Write(row); err != nil {
			return numStopTimes, err
		}
		numStopTimes++
	}
	if err := file.Err(); err != nil {
		return numStopTimes, err
	}
	return numStopTimes, w.Flush()
}

// ParentStations returns the set of stops that are their own parent station.
func (m StopToParent) ParentStations() map[string]bool {
	parents := map[string]bool{}
	for stopID, parent := range m {
		if stopID == parent {
			parents[stopID] = true
		}
	}
	return parents
}

// UseParentsInTransfers copies a transfers file, replacing from_stop_id and to_stop_id by their parent
// station. Stops that are not in the mapping are left unchanged.
func UseParentsInTransfers(in io.Reader, out io.Writer, stopToParent StopToParent) (int, error) {
	file, err := csv.New(constants.TransfersFile, in)
	if err != nil {
		return 0, err
	}
	fromStopId := file.RequiredColumn(constants.FromStopId)
	toStopId := file.RequiredColumn(constants.ToStopId)
	if err := file.CheckRequiredColumns(); err != nil {
		return 0, err
	}
	w, err := csv.NewWriter(constants.TransfersFile, out, file.HeaderContent())
	if err != nil {
		return 0, err
	}
	numTransfers := 0
	for file.NextRow() {
		row := file.RowContent()
		for _, column := range []csv.RequiredColumn{fromStopId, toStopId} {
			if parent, ok := stopToParent[column.Read()]; ok {
				row[column.Index()] = parent
			}
		}
		if err := w.Write(row); err != nil {
			return numTransfers, err
		}
		numTransfers++
	}
	if err := file.Err(); err != nil {
		return numTransfers, err
	}
	return numTransfers, w.Flush()
}
