// Package gtfstools contains single-pass transformations over GTFS static CSV files.
//
// Each function streams its input once, keeps only what it needs in memory, and writes rows
// it does not rewrite verbatim, so columns the function does not know about survive untouched.
package gtfstools

import (
	"fmt"
	"io"

	"github.com/jamespfennell/gtfstools/constants"
	"github.com/jamespfennell/gtfstools/csv"
)

// ArrivalDepartureCounts is the result of AnalyzeArrivalDeparture.
type ArrivalDepartureCounts struct {
	Total     int
	Equal     int
	Different int
}

// Check verifies that every row was counted exactly once.
func (c ArrivalDepartureCounts) Check() error {
	if c.Total != c.Equal+c.Different {
		return fmt.Errorf("inconsistent counts: %d stop times != %d equal + %d different", c.Total, c.Equal, c.Different)
	}
	return nil
}

// AnalyzeArrivalDeparture counts the stop times whose arrival_time and departure_time are the same string.
//
// Times are not parsed: "5:00:00" and "05:00:00" are different.
func AnalyzeArrivalDeparture(in io.Reader) (ArrivalDepartureCounts, error) {
	var counts ArrivalDepartureCounts
	file, err := csv.New(constants.StopTimesFile, in)
	if err != nil {
		return counts, err
	}
	arrivalTime := file.RequiredColumn(constants.ArrivalTime)
	departureTime := file.RequiredColumn(constants.DepartureTime)
	if err := file.CheckRequiredColumns(); err != nil {
		return counts, err
	}
	for file.NextRow() {
		counts.Total++
		if arrivalTime.Read() == departureTime.Read() {
			counts.Equal++
		} else {
			counts.Different++
		}
	}
	if err := file.Err(); err != nil {
		return ArrivalDepartureCounts{}, err
	}
	return counts, nil
}
