package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/jamespfennell/gtfstools/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

type result struct {
	code   int
	stdout string
	stderr string
}

func runApp(args ...string) result {
	var stdout, stderr bytes.Buffer
	code := run(append([]string{"/usr/local/bin/gtfstools"}, args...), &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestWrongArgumentCount(t *testing.T) {
	for _, tc := range []struct {
		command string
		args    []string
		example string
	}{
		{"check-arrival-departure", nil, "gtfstools check-arrival-departure  stop_times.txt"},
		{"list-joining-trips", []string{"a", "b"}, "POLIC"},
		{"remove-invalid-transfers", []string{"a", "b", "c", "d"}, "VALID_transfers.txt"},
		{"use-parent-stations", []string{"a"}, "PARENT_stop_times.txt"},
		{"prepare", []string{"a", "b"}, "job.yml"},
	} {
		t.Run(tc.command, func(t *testing.T) {
			r := runApp(append([]string{tc.command}, tc.args...)...)

			assert.Equal(t, 1, r.code)
			assert.Contains(t, r.stdout, "Usage:")
			assert.Contains(t, r.stdout, "gtfstools "+tc.command)
			assert.Contains(t, r.stdout, "For instance :")
			assert.Contains(t, r.stdout, tc.example)
		})
	}
}

func TestMissingInputFile(t *testing.T) {
	dir := t.TempDir()
	stops := testutil.MustWriteFile(t, dir, "stops.txt", "stop_id,parent_station", "P,")
	stopTimes := testutil.MustWriteFile(t, dir, "stop_times.txt", "trip_id,stop_id", "t,P")
	missing := filepath.Join(dir, "missing.txt")
	out := filepath.Join(dir, "out.txt")

	for _, tc := range []struct {
		desc     string
		args     []string
		code     int
		expected string
	}{
		{
			desc:     "stop times of check-arrival-departure",
			args:     []string{"check-arrival-departure", missing},
			code:     2,
			expected: "ERROR with input STOP_TIMES file : " + missing,
		},
		{
			desc:     "stop times of list-joining-trips",
			args:     []string{"list-joining-trips", missing, "A", "B", out},
			code:     2,
			expected: "ERROR with input STOP_TIMES file : " + missing,
		},
		{
			desc:     "transfers",
			args:     []string{"remove-invalid-transfers", missing, stops, out},
			code:     2,
			expected: "ERROR with input TRANSFERS file : " + missing,
		},
		{
			desc:     "stops of remove-invalid-transfers",
			args:     []string{"remove-invalid-transfers", stops, missing, out},
			code:     3,
			expected: "ERROR with input STOPS file : " + missing,
		},
		{
			desc:     "stops of use-parent-stations",
			args:     []string{"use-parent-stations", missing, stopTimes, out, out},
			code:     2,
			expected: "ERROR with input STOPS file : " + missing,
		},
		{
			desc:     "stop times of use-parent-stations",
			args:     []string{"use-parent-stations", stops, missing, out, out},
			code:     3,
			expected: "ERROR with input STOP_TIMES file : " + missing,
		},
		{
			desc:     "job file",
			args:     []string{"prepare", missing},
			code:     2,
			expected: "ERROR with input JOB file : " + missing,
		},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			r := runApp(tc.args...)

			assert.Equal(t, tc.code, r.code)
			assert.Contains(t, r.stdout, tc.expected)
			assert.Contains(t, r.stdout, "Usage:")
		})
	}
}

func TestUnreadableInputFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root can read files with mode 0000")
	}
	dir := t.TempDir()
	stopTimes := testutil.MustWriteFile(t, dir, "stop_times.txt", "trip_id,arrival_time,departure_time", "t,05:00:00,05:00:00")
	require.NoError(t, os.Chmod(stopTimes, 0000))

	r := runApp("check-arrival-departure", stopTimes)

	assert.Equal(t, 2, r.code)
	assert.Contains(t, r.stdout, "ERROR with input STOP_TIMES file : "+stopTimes)
	assert.Contains(t, r.stdout, "Usage:")
	assert.NotContains(t, r.stdout, "Error:")
}

func TestDirectoryInputFile(t *testing.T) {
	dir := t.TempDir()

	r := runApp("check-arrival-departure", dir)

	assert.Equal(t, 2, r.code)
	assert.Contains(t, r.stdout, "ERROR with input STOP_TIMES file : "+dir)
}

func TestCheckArrivalDeparture(t *testing.T) {
	dir := t.TempDir()
	stopTimes := testutil.MustWriteFile(t, dir, "stop_times.txt",
		"trip_id,arrival_time,departure_time,stop_id,stop_sequence",
		"t,05:06:26,05:06:26,7440,1",
		"t,05:08:26,05:08:50,7438,2",
		"t,05:10:00,05:10:00,7437,3",
	)

	r := runApp("check-arrival-departure", stopTimes)

	require.Equal(t, 0, r.code, r.stdout)
	assert.Contains(t, r.stdout, "Analyzing INPUT stoptimes file :\n"+stopTimes+"\n")
	assert.Contains(t, r.stdout, "Total number of stop_times          = 3\n")
	assert.Contains(t, r.stdout, "stop_times where departure==arrival = 2\n")
	assert.Contains(t, r.stdout, "stop_times where departure!=arrival = 1\n")
}

func TestCheckArrivalDeparture_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	stopTimes := testutil.MustWriteFile(t, dir, "stop_times.txt", "trip_id,stop_id", "t,s")

	r := runApp("check-arrival-departure", stopTimes)

	assert.Equal(t, exitProcessingFailure, r.code)
	assert.Contains(t, r.stdout, "Error: stop_times.txt: missing required columns arrival_time, departure_time")
	assert.NotContains(t, r.stdout, "Total number of stop_times")
}

func TestListJoiningTrips(t *testing.T) {
	dir := t.TempDir()
	stopTimes := testutil.MustWriteFile(t, dir, "stop_times.txt",
		"trip_id,arrival_time,departure_time,stop_id,stop_sequence",
		"T1,05:00:00,05:00:00,POLIC,1",
		"T1,05:10:00,05:10:00,ARLAC,5",
		"T2,06:00:00,06:00:00,ARLAC,2",
	)
	out := filepath.Join(dir, "trips.csv")

	r := runApp("list-joining-trips", stopTimes, "POLIC", "ARLAC", out)

	require.Equal(t, 0, r.code, r.stdout)
	assert.Contains(t, r.stdout, "POLIC ->  ARLAC")
	assert.Contains(t, r.stdout, "There are 1 trips joining SRC to DST")
	assert.Contains(t, r.stdout, "\tTripID T1  DepartureFromSrc 05:00:00  ArrivalAtDst 05:10:00  SrcSeq 1  DstSeq 5\n")
	assert.Equal(t, testutil.Lines(
		"trip_id,departure_time_from_src,arrival_time_at_dst,src_sequence_number,dst_sequence_number",
		"T1,05:00:00,05:10:00,1,5",
	), testutil.MustReadFile(t, out))
}

func TestRemoveInvalidTransfers(t *testing.T) {
	dir := t.TempDir()
	stops := testutil.MustWriteFile(t, dir, "stops.txt", "stop_id", "A", "B")
	transfers := testutil.MustWriteFile(t, dir, "transfers.txt",
		"from_stop_id,to_stop_id,transfer_type",
		"A,B,0",
		"A,C,0",
		"C,B,0",
	)
	out := filepath.Join(dir, "VALID_transfers.txt")

	r := runApp("-v", "remove-invalid-transfers", transfers, stops, out)

	require.Equal(t, 0, r.code, r.stdout)
	assert.Contains(t, r.stdout, "Number of known stops = 2\n")
	assert.Contains(t, r.stdout, "On 3 input transfers in total, 2 were removed because invalid\n")
	assert.Contains(t, r.stderr, "unknown stops C")
	assert.Equal(t, testutil.Lines("from_stop_id,to_stop_id,transfer_type", "A,B,0"), testutil.MustReadFile(t, out))
}

func TestUseParentStations(t *testing.T) {
	dir := t.TempDir()
	stops := testutil.MustWriteFile(t, dir, "stops.txt", "stop_id,stop_name,parent_station", "P,Parent,", "C,Child,P")
	stopTimes := testutil.MustWriteFile(t, dir, "stop_times.txt",
		"trip_id,arrival_time,departure_time,stop_id,stop_sequence",
		"trip,05:00:00,05:00:00,C,1",
	)
	outStops := filepath.Join(dir, "PARENT_stops.txt")
	outStopTimes := filepath.Join(dir, "PARENT_stop_times.txt")

	r := runApp("use-parent-stations", stops, stopTimes, outStops, outStopTimes)

	require.Equal(t, 0, r.code, r.stdout)
	assert.Contains(t, r.stdout, "Kept 1 parent stations out of 2 stops (1 child stops removed)\n")
	assert.Contains(t, r.stdout, "Rewrote 1 stop_times\n")
	assert.Equal(t, testutil.Lines("stop_id,stop_name,parent_station", "P,Parent,"), testutil.MustReadFile(t, outStops))
	assert.Equal(t, testutil.Lines(
		"trip_id,arrival_time,departure_time,stop_id,stop_sequence",
		"trip,05:00:00,05:00:00,P,1",
	), testutil.MustReadFile(t, outStopTimes))
}

func TestUseParentStations_UnknownStop(t *testing.T) {
	dir := t.TempDir()
	stops := testutil.MustWriteFile(t, dir, "stops.txt", "stop_id,parent_station", "P,")
	stopTimes := testutil.MustWriteFile(t, dir, "stop_times.txt", "trip_id,stop_id", "trip,ghost")

	r := runApp("use-parent-stations", stops, stopTimes,
		filepath.Join(dir, "out_stops.txt"), filepath.Join(dir, "out_stop_times.txt"))

	assert.Equal(t, exitProcessingFailure, r.code)
	assert.Contains(t, r.stdout, `Error: stop_times.txt: row 1 references stop "ghost" which is not in stops.txt`)
}

func TestPrepare(t *testing.T) {
	dir := t.TempDir()
	testutil.MustWriteFile(t, dir, "stops.txt", "stop_id,parent_station", "A,", "A1,A", "B,", "B1,B")
	testutil.MustWriteFile(t, dir, "stop_times.txt",
		"trip_id,arrival_time,departure_time,stop_id,stop_sequence",
		"T,05:00:00,05:00:00,A1,1",
		"T,05:10:00,05:11:00,B1,2",
	)
	testutil.MustWriteFile(t, dir, "transfers.txt", "from_stop_id,to_stop_id", "A,B", "A1,B1", "A1,C")
	job := testutil.MustWriteFile(t, dir, "job.yml",
		"input:",
		"  stops: stops.txt",
		"  stop_times: stop_times.txt",
		"  transfers: transfers.txt",
		"output:",
		"  dir: out",
		"checks:",
		"  arrival_departure: true",
		"joins:",
		"  - src: A",
		"    dst: B",
		"    output: a_to_b.csv",
	)

	r := runApp("prepare", job)

	require.Equal(t, 0, r.code, r.stdout)
	assert.Contains(t, r.stdout, "Kept 2 parent stations out of 4 stops (2 child stops removed)\n")
	assert.Contains(t, r.stdout, "On 3 input transfers in total, 1 were removed because invalid\n")
	assert.Equal(t, testutil.Lines("from_stop_id,to_stop_id", "A,B", "A,B"), testutil.MustReadFile(t, filepath.Join(dir, "out", "transfers.txt")))
	assert.Contains(t, r.stdout, "stop_times where departure!=arrival = 1\n")
	assert.Contains(t, r.stdout, "There are 1 trips joining SRC to DST\n")
	assert.Equal(t, testutil.Lines(
		"trip_id,departure_time_from_src,arrival_time_at_dst,src_sequence_number,dst_sequence_number",
		"T,05:00:00,05:10:00,1,2",
	), testutil.MustReadFile(t, filepath.Join(dir, "out", "a_to_b.csv")))
}

func TestPrepare_InvalidJob(t *testing.T) {
	dir := t.TempDir()
	job := testutil.MustWriteFile(t, dir, "job.yml", "input:", "  stops: stops.txt", "output:", "  dir: out")

	r := runApp("prepare", job)

	assert.Equal(t, exitProcessingFailure, r.code)
	assert.Contains(t, r.stdout, "Error: invalid job file")
}

func TestExpandUser(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "feed", "stops.txt"), expandUser("~/feed/stops.txt"))
	assert.Equal(t, home, expandUser("~"))
	assert.Equal(t, "feed/~/stops.txt", expandUser("feed/~/stops.txt"))
	assert.Equal(t, "~other/stops.txt", expandUser("~other/stops.txt"))
}
