package commands

import (
	"strings"

	"go.trai.ch/cogni/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// parseParams turns name=value pairs into parameters.
// Values are decoded as YAML scalars or flow collections, so 3 is an int and abc a string.
// An empty value stays the empty string.
func parseParams(pairs []string) (domain.Params, error) {
	params := make(domain.Params, len(pairs))
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidParamFlag, "cannot parse parameter"), "param", pair)
		}

		if raw == "" {
			params[name] = ""
			continue
		}

		var value any
		if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}
		params[name] = value
	}
	return params, nil
}
