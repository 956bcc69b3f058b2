package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/md-rashed-zaman/availability/libs/availability"
	"gopkg.in/yaml.v3"
)

// Request is the on-disk request format. JSON documents decode too since JSON is valid YAML.
type Request struct {
	Available   [][2]string `yaml:"available"`
	Unavailable [][2]string `yaml:"unavailable"`
	Timezone    string      `yaml:"timezone"`
	Interval    string      `yaml:"interval"`
}

// LoadRequest reads a request from path, or from stdin when path is "-".
func LoadRequest(path string, stdin io.Reader) (*Request, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read request file: %w", err)
	}

	var req Request
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return &req, nil
		}
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Location resolves the request timezone, UTC when unset.
func (r *Request) Location() (*time.Location, error) {
	name := strings.TrimSpace(r.Timezone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", name, err)
	}
	return loc, nil
}

// Build parses the request ranges into an Availability.
func (r *Request) Build() (*availability.Availability, *time.Location, error) {
	loc, err := r.Location()
	if err != nil {
		return nil, nil, err
	}
	a, err := availability.ParseInLocation(r.Available, r.Unavailable, loc)
	if err != nil {
		return nil, nil, err
	}
	return a, loc, nil
}
