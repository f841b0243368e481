package utils

import (
	"fmt"
	"os"
	"sort"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/picogrid/tactical-retreat/pkg/simulation"
)

// LoadParamsFile reads parameter values from a YAML mapping and normalizes
// them against params. Unknown names are errors.
func LoadParamsFile(path string, params []simulation.Parameter) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read params file: %w", err)
	}

	raw := make(map[string]interface{})
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse params file: %w", err)
	}

	return NormalizeParams(raw, params)
}

// NormalizeParams checks every value in raw against its parameter definition
func NormalizeParams(raw map[string]interface{}, params []simulation.Parameter) (map[string]interface{}, error) {
	byName := make(map[string]simulation.Parameter, len(params))
	for _, p := range params {
		byName[p.Name] = p
	}

	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs *multierror.Error
	out := make(map[string]interface{}, len(raw))
	for _, name := range names {
		param, ok := byName[name]
		if !ok {
			errs = multierror.Append(errs, fmt.Errorf("unknown parameter %q", name))
			continue
		}
		value, err := param.Normalize(raw[name])
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		out[name] = value
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return out, nil
}
