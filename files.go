package gtfstools

import (
	"io"
	"os"
)

// readFile opens path, passes it to f and closes it.
func readFile(path string, f func(in io.Reader) error) (err error) {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := in.Close(); err == nil {
			err = closeErr
		}
	}()
	return f(in)
}

// writeFile creates (or truncates) path, passes it to f and closes it. A partially written file is
// left in place if f fails.
func writeFile(path string, f func(out io.Writer) error) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); err == nil {
			err = closeErr
		}
	}()
	return f(out)
}

// AnalyzeArrivalDepartureFile runs AnalyzeArrivalDeparture on the stop times file at path.
func AnalyzeArrivalDepartureFile(path string) (ArrivalDepartureCounts, error) {
	var counts ArrivalDepartureCounts
	err := readFile(path, func(in io.Reader) error {
		var err error
		counts, err = AnalyzeArrivalDeparture(in)
		return err
	})
	return counts, err
}

// ListJoiningTripsFiles runs ListJoiningTrips on the stop times file at stopTimesPath and writes the
// sorted trips to outPath.
func ListJoiningTripsFiles(stopTimesPath, srcStopID, dstStopID, outPath string) ([]JoiningTrip, error) {
	var trips []JoiningTrip
	err := readFile(stopTimesPath, func(in io.Reader) error {
		var err error
		trips, err = ListJoiningTrips(in, srcStopID, dstStopID)
		return err
	})
	if err != nil {
		return nil, err
	}
	err = writeFile(outPath, func(out io.Writer) error {
		return WriteJoiningTrips(out, trips)
	})
	return trips, err
}

// RemoveInvalidTransfersFiles filters the transfers file at transfersPath against the stops file at
// stopsPath and writes the kept transfers to outPath.
func RemoveInvalidTransfersFiles(transfersPath, stopsPath, outPath string) (RemoveInvalidTransfersResult, error) {
	var knownStops map[string]bool
	err := readFile(stopsPath, func(in io.Reader) error {
		var err error
		knownStops, err = ReadKnownStops(in)
		return err
	})
	if err != nil {
		return RemoveInvalidTransfersResult{}, err
	}
	var result RemoveInvalidTransfersResult
	err = readFile(transfersPath, func(in io.Reader) error {
		return writeFile(outPath, func(out io.Writer) error {
			var err error
			result, err = FilterTransfers(in, knownStops, out)
			return err
		})
	})
	return result, err
}

// UseParentStationsPaths are the files read and written by UseParentStationsFiles.
type UseParentStationsPaths struct {
	InStops      string
	InStopTimes  string
	OutStops     string
	OutStopTimes string
}

// UseParentStationsFiles rewrites the stops file and then the stop times file so that only parent
// stations remain. The stops file is fully processed, and the mapping fully built, before the stop
// times file is opened.
func UseParentStationsFiles(paths UseParentStationsPaths) (StopToParent, UseParentStationsResult, error) {
	var stopToParent StopToParent
	var result UseParentStationsResult
	err := readFile(paths.InStops, func(in io.Reader) error {
		return writeFile(paths.OutStops, func(out io.Writer) error {
			var err error
			stopToParent, result, err = UseParentsInStops(in, out)
			return err
		})
	})
	if err != nil {
		return nil, result, err
	}
	err = readFile(paths.InStopTimes, func(in io.Reader) error {
		return writeFile(paths.OutStopTimes, func(out io.Writer) error {
			var err error
			result.StopTimes, err = UseParentsInStopTimes(in, out, stopToParent)
			return err
		})
	})
	return stopToParent, result, err
}
