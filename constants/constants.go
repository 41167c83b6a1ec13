package constants

type StaticFile string

const (
	StopsFile        StaticFile = "stops.txt"
	StopTimesFile    StaticFile = "stop_times.txt"
	TransfersFile    StaticFile = "transfers.txt"
	JoiningTripsFile StaticFile = "joining_trips.csv"
)

// Column names used by the tools. Any other column is passed through untouched.
const (
	StopId        = "stop_id"
	ParentStation = "parent_station"
	TripId        = "trip_id"
	ArrivalTime   = "arrival_time"
	DepartureTime = "departure_time"
	StopSequence  = "stop_sequence"
	FromStopId    = "from_stop_id"
	ToStopId      = "to_stop_id"
)
