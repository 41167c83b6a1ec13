// Package config loads the YAML job files run by the prepare command.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Load reads, decodes and validates the job file at path.
//
// Relative input paths and the output directory are resolved against the directory of the job file.
func Load(path string) (Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Job{}, err
	}
	job, err := Parse(data)
	if err != nil {
		return Job{}, fmt.Errorf("invalid job file %s: %w", path, err)
	}
	job.resolve(filepath.Dir(path))
	return job, nil
}

// Parse decodes and validates a job file. Unknown keys are rejected.
func Parse(data []byte) (Job, error) {
	var job Job
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&job); err != nil {
		return Job{}, err
	}
	v := validator.New()
	if err := v.Struct(job); err != nil {
		return Job{}, err
	}
	return job, nil
}

func (job *Job) resolve(baseDir string) {
	for _, p := range []*string{
		&job.Input.Stops,
		&job.Input.StopTimes,
		&job.Input.Transfers,
		&job.Output.Dir,
	} {
		if *p == "" || filepath.IsAbs(*p) {
			continue
		}
		*p = filepath.Join(baseDir, *p)
	}
}
