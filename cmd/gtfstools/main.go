package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jamespfennell/gtfstools"
	"github.com/jamespfennell/gtfstools/config"
	"github.com/jamespfennell/gtfstools/internal/logging"
	"github.com/urfave/cli/v2"
)

const (
	exitWrongArgumentCount = 1
	exitProcessingFailure  = 4
)

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

// run executes the application and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	err := newApp(args[0], stdout, stderr).Run(args)
	if err == nil {
		return 0
	}
	var exitErr cli.ExitCoder
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	fmt.Fprintln(stdout, "Error:", err)
	return exitProcessingFailure
}

// tool describes one command: its positional arguments, its usage text and what it does.
type tool struct {
	name        string
	usage       string
	description []string
	args        []string
	example     []string
	// inputs are the positions of the arguments that must be existing files, in exit code order.
	inputs []input
	action func(r *reporter, args []string) error
}

type input struct {
	position int
	kind     string
}

func newApp(argv0 string, stdout, stderr io.Writer) *cli.App {
	progName := filepath.Base(argv0)
	r := &reporter{w: stdout}
	app := &cli.App{
		Name:      progName,
		Usage:     "inspect and transform GTFS static CSV files",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log every skipped row to stderr",
			},
		},
		Before: func(ctx *cli.Context) error {
			level := slog.LevelWarn
			if ctx.Bool("verbose") {
				level = slog.LevelDebug
			}
			r.logger = logging.NewLogger(stderr, level)
			slog.SetDefault(r.logger)
			return nil
		},
		// Exit codes are returned by run, never by the library calling os.Exit.
		ExitErrHandler: func(*cli.Context, error) {},
	}
	for _, t := range tools() {
		app.Commands = append(app.Commands, t.command(progName, r))
	}
	return app
}

func tools() []tool {
	return []tool{
		{
			name:  "check-arrival-departure",
			usage: "count the stop times where arrival_time == departure_time",
			description: []string{
				"Parse stop_times.txt to check if arrival_time == departure_time.",
				"INPUT stop_times.txt is not modified.",
				"Prints on stdout number of stop_times for which both times are equal (resp. different)",
			},
			args:    []string{"INPUT_STOP_TIMES"},
			example: []string{"stop_times.txt"},
			inputs:  []input{{0, "STOP_TIMES"}},
			action:  checkArrivalDeparture,
		},
		{
			name:  "list-joining-trips",
			usage: "list the trips joining a source stop to a destination stop",
			description: []string{
				"Parse stop_times.txt, and list all trips joining a SOURCE stop to a DESTINATION stop",
				"INPUT stop_times.txt is not modified.",
				"Dumping joining trips in OUTPUT CSV file.",
				"Also printing for information the first and last joining trips on stdout.",
			},
			args:    []string{"INPUT_STOP_TIMES", "SRC_STOP", "DST_STOP", "OUTPUT_CSV"},
			example: []string{"stop_times.txt", "POLIC", "ARLAC", "/tmp/trips_from_POLIC_to_ARLAC.csv"},
			inputs:  []input{{0, "STOP_TIMES"}},
			action:  listJoiningTrips,
		},
		{
			name:  "remove-invalid-transfers",
			usage: "remove the transfers to or from a stop that is not in stops.txt",
			description: []string{
				"From an INPUT transfers.txt, only keep transfers to/from an existing stop (i.e. appearing in INPUT stops.txt)",
				"OUTPUT transfers.txt is identical to INPUT transfers.txt, but without the transfers to/from an inexisting stop.",
			},
			args:    []string{"INPUT_TRANSFERS", "INPUT_STOPS", "OUTPUT_TRANSFERS"},
			example: []string{"transfers.txt", "stops.txt", "VALID_transfers.txt"},
			inputs:  []input{{0, "TRANSFERS"}, {1, "STOPS"}},
			action:  removeInvalidTransfers,
		},
		{
			name:  "use-parent-stations",
			usage: "replace stops by their parent station in stops.txt and stop_times.txt",
			description: []string{
				"Edit input stops/stop_times files to replace stations by their parent.",
				"OUTPUT stops.txt only contains parent stations from INPUT stops.txt",
				"OUTPUT stop_times.txt is identical to INPUT stop_times.txt, but with stop_ids replaced by parent's station id.",
			},
			args:    []string{"INPUT_STOPS", "INPUT_STOP_TIMES", "OUTPUT_STOPS", "OUTPUT_STOP_TIMES"},
			example: []string{"stops.txt", "stop_times.txt", "PARENT_stops.txt", "PARENT_stop_times.txt"},
			inputs:  []input{{0, "STOPS"}, {1, "STOP_TIMES"}},
			action:  useParentStations,
		},
		{
			name:  "prepare",
			usage: "run parent station substitution, transfer filtering and checks described by a YAML job file",
			description: []string{
				"Run the preprocessing steps described in a YAML JOB_FILE:",
				"parent stations, then transfers filtered against the new stops, then checks and joining trips.",
				"All OUTPUT files are written in the output directory of the job.",
			},
			args:    []string{"JOB_FILE"},
			example: []string{"job.yml"},
			inputs:  []input{{0, "JOB"}},
			action:  prepare,
		},
	}
}

func (t tool) command(progName string, r *reporter) *cli.Command {
	invocation := progName + " " + t.name
	return &cli.Command{
		Name:      t.name,
		Usage:     t.usage,
		ArgsUsage: strings.Join(t.args, " "),
		Action: func(ctx *cli.Context) error {
			args := ctx.Args().Slice()
			if len(args) != len(t.args) {
				t.printUsage(r.w, invocation)
				return cli.Exit("", exitWrongArgumentCount)
			}
			for i := range args {
				args[i] = expandUser(args[i])
			}
			for i, in := range t.inputs {
				path := args[in.position]
				if !readable(path, r.logger) {
					fmt.Fprintf(r.w, "ERROR with input %s file : %s\n", in.kind, path)
					t.printUsage(r.w, invocation)
					return cli.Exit("", exitWrongArgumentCount+1+i)
				}
			}
			return t.action(r, args)
		},
	}
}

func (t tool) printUsage(w io.Writer, invocation string) {
	fmt.Fprintln(w)
	for _, line := range t.description {
		fmt.Fprintln(w, line)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Usage:\t%s\t%s\t\n", invocation, strings.Join(t.args, "\t"))
	fmt.Fprintf(tw, "For instance :\t%s\t%s\t\n", invocation, strings.Join(t.example, "\t"))
	tw.Flush()
}

// readable reports whether path is a regular file that can be opened for reading.
func readable(path string, logger *slog.Logger) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer logging.SafeClose(f, logger, "check "+path)
	info, err := f.Stat()
	return err == nil && !info.IsDir()
}

// expandUser replaces a leading ~ by the home directory of the current user.
func expandUser(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

func checkArrivalDeparture(r *reporter, args []string) error {
	inStopTimes := args[0]
	r.section("Analyzing INPUT stoptimes file :", inStopTimes)

	counts, err := gtfstools.AnalyzeArrivalDepartureFile(inStopTimes)
	if err != nil {
		return err
	}
	if err := counts.Check(); err != nil {
		return err
	}
	r.printArrivalDeparture(counts)
	return nil
}

func listJoiningTrips(r *reporter, args []string) error {
	inStopTimes, srcStop, dstStop, outJoiningTrips := args[0], args[1], args[2], args[3]
	r.section("Analyzing INPUT stoptimes file :", inStopTimes)
	r.section("Listing trips joining these stops :", fmt.Sprintf("%s ->  %s", srcStop, dstStop))
	r.section("Dumping trips joining SRC to DST in OUTPUT file :", outJoiningTrips)

	trips, err := gtfstools.ListJoiningTripsFiles(inStopTimes, srcStop, dstStop, outJoiningTrips)
	if err != nil {
		return err
	}
	r.printJoiningTrips(trips)
	return nil
}

func removeInvalidTransfers(r *reporter, args []string) error {
	inTransfers, inStops, outTransfers := args[0], args[1], args[2]
	r.section("Filtering INPUT transfers file :", inTransfers)
	r.section("With INPUT stops file :", inStops)
	r.section("Into OUTPUT transfers file :", outTransfers)

	result, err := gtfstools.RemoveInvalidTransfersFiles(inTransfers, inStops, outTransfers)
	if err != nil {
		return err
	}
	logging.LogWarnings(r.logger, slog.LevelDebug, result.Warnings)
	r.printTransfers(result)
	return nil
}

func useParentStations(r *reporter, args []string) error {
	paths := gtfstools.UseParentStationsPaths{
		InStops:      args[0],
		InStopTimes:  args[1],
		OutStops:     args[2],
		OutStopTimes: args[3],
	}
	r.section("Using parent stations from INPUT files :", paths.InStops, paths.InStopTimes)
	r.section("Into OUTPUT files :", paths.OutStops, paths.OutStopTimes)

	stopToParent, result, err := gtfstools.UseParentStationsFiles(paths)
	if err != nil {
		return err
	}
	logging.LogWarnings(r.logger, slog.LevelWarn, stopToParent.Validate())
	r.printParentStations(result)
	return nil
}

func prepare(r *reporter, args []string) error {
	jobPath := args[0]
	r.section("Running job file :", jobPath)

	job, err := config.Load(jobPath)
	if err != nil {
		return err
	}
	r.section("Into OUTPUT directory :", job.Output.Dir)

	report, err := gtfstools.Prepare(job, r.logger)
	if err != nil {
		return err
	}
	r.printParentStations(report.ParentStations)
	if report.Transfers != nil {
		r.printTransfers(*report.Transfers)
	}
	if report.ArrivalDeparture != nil {
		r.printArrivalDeparture(*report.ArrivalDeparture)
	}
	for _, join := range report.Joins {
		r.section("Trips joining these stops :", fmt.Sprintf("%s ->  %s", join.Src, join.Dst))
		r.section("Dumped in OUTPUT file :", join.Output)
		r.printJoiningTrips(join.Trips)
	}
	return nil
}

// reporter prints the human-readable progress report on stdout.
type reporter struct {
	w      io.Writer
	logger *slog.Logger
}

var (
	pathColor  = color.New(color.FgCyan)
	countColor = color.New(color.FgGreen)
	tripColor  = color.New(color.FgMagenta)
)

func (r *reporter) section(title string, values ...string) {
	fmt.Fprintln(r.w, title)
	for _, v := range values {
		fmt.Fprintln(r.w, pathColor.Sprint(v))
	}
}

func count(i int) string {
	return countColor.Sprint(humanize.Comma(int64(i)))
}

func (r *reporter) printArrivalDeparture(counts gtfstools.ArrivalDepartureCounts) {
	fmt.Fprintf(r.w, "Total number of stop_times          = %s\n", count(counts.Total))
	fmt.Fprintf(r.w, "stop_times where departure==arrival = %s\n", count(counts.Equal))
	fmt.Fprintf(r.w, "stop_times where departure!=arrival = %s\n", count(counts.Different))
}

func (r *reporter) printTransfers(result gtfstools.RemoveInvalidTransfersResult) {
	fmt.Fprintf(r.w, "Number of known stops = %s\n", count(result.KnownStops))
	fmt.Fprintf(r.w, "On %s input transfers in total, %s were removed because invalid\n",
		count(result.Total), count(result.Removed))
}

func (r *reporter) printParentStations(result gtfstools.UseParentStationsResult) {
	fmt.Fprintf(r.w, "Kept %s parent stations out of %s stops (%s child stops removed)\n",
		count(result.ParentStops), count(result.Stops), count(result.ChildStops))
	fmt.Fprintf(r.w, "Rewrote %s stop_times\n", count(result.StopTimes))
}

func (r *reporter) printJoiningTrips(trips []gtfstools.JoiningTrip) {
	fmt.Fprintf(r.w, "There are %s trips joining SRC to DST\n", count(len(trips)))
	first := trips[:min(5, len(trips))]
	last := trips[max(0, len(trips)-5):]
	fmt.Fprintln(r.w, "First ones are :")
	for _, trip := range first {
		fmt.Fprintf(r.w, "\t%s\n", formatTrip(trip))
	}
	fmt.Fprintln(r.w, "Last ones are :")
	for _, trip := range last {
		fmt.Fprintf(r.w, "\t%s\n", formatTrip(trip))
	}
}

func formatTrip(trip gtfstools.JoiningTrip) string {
	return fmt.Sprintf("TripID %s  DepartureFromSrc %s  ArrivalAtDst %s  SrcSeq %d  DstSeq %d",
		tripColor.Sprint(trip.TripID),
		tripColor.Sprint(trip.DepartureTimeFromSrc),
		tripColor.Sprint(trip.ArrivalTimeAtDst),
		trip.SrcSequenceNumber,
		trip.DstSequenceNumber,
	)
}
