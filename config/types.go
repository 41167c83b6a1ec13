package config

// InputConfig names the GTFS files the job reads.
type InputConfig struct {
	Stops     string `yaml:"stops" validate:"required"`
	StopTimes string `yaml:"stop_times" validate:"required"`
	// Transfers is optional; when empty no transfers file is written.
	Transfers string `yaml:"transfers"`
}

// OutputConfig contains where the job writes its files.
type OutputConfig struct {
	Dir string `yaml:"dir" validate:"required"`
}

// ChecksConfig enables the read-only analyses run on the rewritten files.
type ChecksConfig struct {
	ArrivalDeparture bool `yaml:"arrival_departure"`
}

// JoinConfig is one trip-joining query. Output is a file name inside the output directory.
type JoinConfig struct {
	Src    string `yaml:"src" validate:"required"`
	Dst    string `yaml:"dst" validate:"required"`
	Output string `yaml:"output" validate:"required,excludesall=/"`
}

// Job is the root of a prepare job file.
type Job struct {
	Input  InputConfig  `yaml:"input"`
	Output OutputConfig `yaml:"output"`
	Checks ChecksConfig `yaml:"checks"`
	Joins  []JoinConfig `yaml:"joins" validate:"dive"`
}
