package gtfstools

import (
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/jamespfennell/gtfstools/constants"
	"github.com/jamespfennell/gtfstools/csv"
)

// JoiningTrip is a trip that serves a source stop and then a destination stop.
type JoiningTrip struct {
	TripID               string
	DepartureTimeFromSrc string
	ArrivalTimeAtDst     string
	SrcSequenceNumber    int
	DstSequenceNumber    int
}

// JoiningTripsHeader is the header of the file written by WriteJoiningTrips.
var JoiningTripsHeader = []string{
	"trip_id",
	"departure_time_from_src",
	"arrival_time_at_dst",
	"src_sequence_number",
	"dst_sequence_number",
}

type stopVisit struct {
	arrivalTime   string
	departureTime string
	stopSequence  string
}

// ListJoiningTrips returns the trips that visit srcStopID and later dstStopID, sorted by departure time
// from the source.
//
// If a trip visits a stop several times, the last visit in the file is the one used. A trip is kept only
// if its departure from the source is before its arrival at the destination; times are compared as
// strings, so a feed must use a single notation for times after midnight.
func ListJoiningTrips(in io.Reader, srcStopID, dstStopID string) ([]JoiningTrip, error) {
	file, err := csv.New(constants.StopTimesFile, in)
	if err != nil {
		return nil, err
	}
	tripId := file.RequiredColumn(constants.TripId)
	stopId := file.RequiredColumn(constants.StopId)
	arrivalTime := file.RequiredColumn(constants.ArrivalTime)
	departureTime := file.RequiredColumn(constants.DepartureTime)
	stopSequence := file.RequiredColumn(constants.StopSequence)
	if err := file.CheckRequiredColumns(); err != nil {
		return nil, err
	}

	// tripsAtSrc preserves first-seen order so that ties in departure time are reported deterministically.
	var tripsAtSrc []string
	srcVisits := map[string]stopVisit{}
	dstVisits := map[string]stopVisit{}
	for file.NextRow() {
		visit := stopVisit{
			arrivalTime:   arrivalTime.Read(),
			departureTime: departureTime.Read(),
			stopSequence:  stopSequence.Read(),
		}
		stopID := stopId.Read()
		tripID := tripId.Read()
		if stopID == srcStopID {
			if _, seen := srcVisits[tripID]; !seen {
				tripsAtSrc = append(tripsAtSrc, tripID)
			}
			srcVisits[tripID] = visit
		}
		if stopID == dstStopID {
			dstVisits[tripID] = visit
		}
	}
	if err := file.Err(); err != nil {
		return nil, err
	}

	var trips []JoiningTrip
	for _, tripID := range tripsAtSrc {
		dst, ok := dstVisits[tripID]
		if !ok {
			continue
		}
		src := srcVisits[tripID]
		if !(src.departureTime < dst.arrivalTime) {
			continue
		}
		srcSequence, err := parseStopSequence(tripID, srcStopID, src.stopSequence)
		if err != nil {
			return nil, err
		}
		dstSequence, err := parseStopSequence(tripID, dstStopID, dst.stopSequence)
		if err != nil {
			return nil, err
		}
		trips = append(trips, JoiningTrip{
			TripID:               tripID,
			DepartureTimeFromSrc: src.departureTime,
			ArrivalTimeAtDst:     dst.arrivalTime,
			SrcSequenceNumber:    srcSequence,
			DstSequenceNumber:    dstSequence,
		})
	}
	sort.SliceStable(trips, func(i, j int) bool {
		return trips[i].DepartureTimeFromSrc < trips[j].DepartureTimeFromSrc
	})
	return trips, nil
}

func parseStopSequence(tripID, stopID, raw string) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, &InvalidStopSequenceError{TripID: tripID, StopID: stopID, StopSequence: raw}
	}
	return i, nil
}

// WriteJoiningTrips writes the trips as CSV, header first, in the order given.
func WriteJoiningTrips(out io.Writer, trips []JoiningTrip) error {
	w, err := csv.NewWriter(constants.JoiningTripsFile, out, JoiningTripsHeader)
	if err != nil {
		return err
	}
	for _, trip := range trips {
		if err := w.Write([]string{
			trip.TripID,
			trip.DepartureTimeFromSrc,
			trip.ArrivalTimeAtDst,
			strconv.Itoa(trip.SrcSequenceNumber),
			strconv.Itoa(trip.DstSequenceNumber),
		}); err != nil {
			return err
		}
	}
	return w.Flush()
}
