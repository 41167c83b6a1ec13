package gtfstools

import (
	"io"

	"github.com/jamespfennell/gtfstools/constants"
	"github.com/jamespfennell/gtfstools/csv"
	"github.com/jamespfennell/gtfstools/warnings"
)

// RemoveInvalidTransfersResult is the result of filtering a transfers file.
type RemoveInvalidTransfersResult struct {
	KnownStops int
	Total      int
	Kept       int
	Removed    int
	// Warnings contains one entry per removed transfer, in file order.
	Warnings []warnings.StaticWarning
}

// ReadKnownStops returns the set of stop IDs in a stops file.
func ReadKnownStops(stops io.Reader) (map[string]bool, error) {
	file, err := csv.New(constants.StopsFile, stops)
	if err != nil {
		return nil, err
	}
	stopId := file.RequiredColumn(constants.StopId)
	if err := file.CheckRequiredColumns(); err != nil {
		return nil, err
	}
	knownStops := map[string]bool{}
	for file.NextRow() {
		knownStops[stopId.Read()] = true
	}
	if err := file.Err(); err != nil {
		return nil, err
	}
	return knownStops, nil
}

// FilterTransfers copies the transfers whose endpoints are both known stops.
//
// Kept rows are written verbatim and in input order; nothing is deduplicated.
func FilterTransfers(in io.Reader, knownStops map[string]bool, out io.Writer) (RemoveInvalidTransfersResult, error) {
	result := RemoveInvalidTransfersResult{KnownStops: len(knownStops)}
	file, err := csv.New(constants.TransfersFile, in)
	if err != nil {
		return result, err
	}
	fromStopId := file.RequiredColumn(constants.FromStopId)
	toStopId := file.RequiredColumn(constants.ToStopId)
	if err := file.CheckRequiredColumns(); err != nil {
		return result, err
	}
	w, err := csv.NewWriter(constants.TransfersFile, out, file.HeaderContent())
	if err != nil {
		return result, err
	}
	for file.NextRow() {
		result.Total++
		fromStopID := fromStopId.Read()
		toStopID := toStopId.Read()
		var unknownStops []string
		if !knownStops[fromStopID] {
			unknownStops = append(unknownStops, fromStopID)
		}
		if !knownStops[toStopID] {
			unknownStops = append(unknownStops, toStopID)
		}
		if len(unknownStops) > 0 {
			result.Warnings = append(result.Warnings, warnings.TransferUnknownStop{
				Row:          file.RowNumber(),
				FromStopID:   fromStopID,
				ToStopID:     toStopID,
				UnknownStops: unknownStops,
			})
			continue
		}
		if err := w.Write(file.RowContent()); err != nil {
			return result, err
		}
		result.Kept++
	}
	if err := file.Err(); err != nil {
		return result, err
	}
	if err := w.Flush(); err != nil {
		return result, err
	}
	result.Removed = result.Total - result.Kept
	return result, nil
}

// RemoveInvalidTransfers reads the known stops from the stops file and then filters the transfers file
// against them.
func RemoveInvalidTransfers(transfers, stops io.Reader, out io.Writer) (RemoveInvalidTransfersResult, error) {
	knownStops, err := ReadKnownStops(stops)
	if err != nil {
		return RemoveInvalidTransfersResult{}, err
	}
	return FilterTransfers(transfers, knownStops, out)
}
