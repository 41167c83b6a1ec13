package gtfstools

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jamespfennell/gtfstools/config"
	"github.com/jamespfennell/gtfstools/constants"
	"github.com/jamespfennell/gtfstools/internal/logging"
)

// JoinReport is the result of one trip-joining query of a prepare job.
type JoinReport struct {
	Src    string
	Dst    string
	Output string
	Trips  []JoiningTrip
}

// PrepareReport is the result of Prepare. Steps that were not configured are nil.
type PrepareReport struct {
	ParentStations   UseParentStationsResult
	Transfers        *RemoveInvalidTransfersResult
	ArrivalDeparture *ArrivalDepartureCounts
	Joins            []JoinReport
}

// Prepare runs a job: parent station substitution, then transfer filtering against the rewritten
// stops with transfer endpoints replaced by their parent station, then the configured checks on the rewritten stop times. Each step finishes before the next
// one starts, and the first failure stops the job.
func Prepare(job config.Job, logger *slog.Logger) (*PrepareReport, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(job.Output.Dir, 0755); err != nil {
		return nil, err
	}
	report := &PrepareReport{}
	paths := UseParentStationsPaths{
		InStops:      job.Input.Stops,
		InStopTimes:  job.Input.StopTimes,
		OutStops:     filepath.Join(job.Output.Dir, string(constants.StopsFile)),
		OutStopTimes: filepath.Join(job.Output.Dir, string(constants.StopTimesFile)),
	}

	logger.Info("using parent stations", slog.String("stops", paths.InStops), slog.String("stop_times", paths.InStopTimes))
	stopToParent, result, err := UseParentStationsFiles(paths)
	if err != nil {
		return nil, fmt.Errorf("failed to use parent stations: %w", err)
	}
	logging.LogWarnings(logger, slog.LevelWarn, stopToParent.Validate())
	report.ParentStations = result

	if job.Input.Transfers != "" {
		outTransfers := filepath.Join(job.Output.Dir, string(constants.TransfersFile))
		logger.Info("removing invalid transfers", slog.String("transfers", job.Input.Transfers))
		result, err := useParentsAndFilterTransfers(job.Input.Transfers, outTransfers, stopToParent)
		if err != nil {
			return nil, fmt.Errorf("failed to remove invalid transfers: %w", err)
		}
		logging.LogWarnings(logger, slog.LevelDebug, result.Warnings)
		report.Transfers = &result
	}

	if job.Checks.ArrivalDeparture {
		logger.Info("analyzing arrival and departure times", slog.String("stop_times", paths.OutStopTimes))
		counts, err := AnalyzeArrivalDepartureFile(paths.OutStopTimes)
		if err != nil {
			return nil, fmt.Errorf("failed to analyze stop times: %w", err)
		}
		if err := counts.Check(); err != nil {
			return nil, err
		}
		report.ArrivalDeparture = &counts
	}

	for _, join := range job.Joins {
		output := filepath.Join(job.Output.Dir, join.Output)
		logger.Info("listing joining trips", slog.String("src", join.Src), slog.String("dst", join.Dst))
		trips, err := ListJoiningTripsFiles(paths.OutStopTimes, join.Src, join.Dst, output)
		if err != nil {
			return nil, fmt.Errorf("failed to list trips from %s to %s: %w", join.Src, join.Dst, err)
		}
		report.Joins = append(report.Joins, JoinReport{
			Src:    join.Src,
			Dst:    join.Dst,
			Output: output,
			Trips:  trips,
		})
	}
	return report, nil
}

// useParentsAndFilterTransfers replaces the endpoints of each transfer by their parent station and keeps
// the transfers between two parent stations.
func useParentsAndFilterTransfers(inPath, outPath string, stopToParent StopToParent) (RemoveInvalidTransfersResult, error) {
	var mapped bytes.Buffer
	err := readFile(inPath, func(in io.Reader) error {
		_, err := UseParentsInTransfers(in, &mapped, stopToParent)
		return err
	})
	if err != nil {
		return RemoveInvalidTransfersResult{}, err
	}
	var result RemoveInvalidTransfersResult
	err = writeFile(outPath, func(out io.Writer) error {
		var err error
		result, err = FilterTransfers(&mapped, stopToParent.ParentStations(), out)
		return err
	})
	return result, err
}
