package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime/pprof"

	"github.com/jamespfennell/gtfstools"
)

var out = flag.String("out", "gtfstools_profile.pb.gz", "file path to output the profile to")
var src = flag.String("src", "", "source stop ID for the joining trips pass")
var dst = flag.String("dst", "", "destination stop ID for the joining trips pass")

func main() {
	if err := run(); err != nil {
		fmt.Println("failed:", err)
		os.Exit(1)
	}
}

// run profiles the stop_times passes over each stop_times file given as argument.
func run() error {
	flag.Parse()
	stopTimesFiles := flag.Args()
	var stopTimesBytes [][]byte
	for _, stopTimesFile := range stopTimesFiles {
		b, err := os.ReadFile(stopTimesFile)
		if err != nil {
			return err
		}
		stopTimesBytes = append(stopTimesBytes, b)
	}

	fmt.Println("starting profile")
	var profile bytes.Buffer
	if err := pprof.StartCPUProfile(&profile); err != nil {
		return err
	}
	for i, in := range stopTimesBytes {
		fmt.Printf("analyzing file %d/%d\n", i+1, len(stopTimesBytes))
		if _, err := gtfstools.AnalyzeArrivalDeparture(bytes.NewReader(in)); err != nil {
			return err
		}
		trips, err := gtfstools.ListJoiningTrips(bytes.NewReader(in), *src, *dst)
		if err != nil {
			return err
		}
		if err := gtfstools.WriteJoiningTrips(io.Discard, trips); err != nil {
			return err
		}
	}
	pprof.StopCPUProfile()

	fmt.Println("writing profile to", *out)
	return os.WriteFile(*out, profile.Bytes(), 0644)
}
