package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/workiq/weave/pkg/api"
	"github.com/workiq/weave/pkg/util"
)

type endpointsFile struct {
	Endpoints []*api.EndpointDef `yaml:"endpoints"`
}

var (
	ErrNoEndpoints       = errors.New("endpoints file declares no endpoints")
	ErrDuplicateEndpoint = errors.New("duplicate endpoint name")
)

// LoadEndpoints reads and validates the endpoint catalog from a YAML
// file. Definitions come back in declaration order
func LoadEndpoints(path string) ([]*api.EndpointDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading endpoints file: %w", err)
	}

	var file endpointsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing endpoints file: %w", err)
	}
	if len(file.Endpoints) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoEndpoints, path)
	}

	seen := util.Set[api.Name]{}
	for _, def := range file.Endpoints {
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("endpoint %s: %w", def.Name, err)
		}
		if seen.Contains(def.Name) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateEndpoint, def.Name)
		}
		seen.Add(def.Name)
	}
	return file.Endpoints, nil
}
