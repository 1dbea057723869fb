package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/paddock/internal/contract"
)

// LoadIntake reads human decisions from a YAML file:
//
//	drivers:
//	  7:
//	    - {driver: 3, salary: 500, length: 2}
//	next_year:
//	  7:
//	    - {driver: 9, salary: 400, length: 1}
//	parts:
//	  7:
//	    - {part: 14, length: 2}
//	terminate:
//	  7: [21]
//
// An empty file is an empty intake. Unknown keys are rejected; the
// decisions themselves are checked when they are applied.
func LoadIntake(path string) (*contract.Intake, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("decisions file not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeIntake, Message: fmt.Sprintf("opening decisions: %v", err)}
	}
	defer f.Close()

	return DecodeIntake(f)
}

// DecodeIntake decodes YAML decisions from r.
func DecodeIntake(r io.Reader) (*contract.Intake, error) {
	in := &contract.Intake{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(in); err != nil && !errors.Is(err, io.EOF) {
		return nil, &LoadError{Code: ErrCodeIntake, Message: fmt.Sprintf("decoding decisions: %v", err)}
	}
	return in, nil
}
