package app

import (
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"github.com/CheerlessCloud/veendor/internal/types"
)

// ConfigName is the well-known config file name at the project root.
const ConfigName = ".veendor.yaml"

// LoadConfig reads and validates the veendor config. An explicit path
// overrides the project-root default.
func LoadConfig(dir string, explicitPath string) (types.Config, error) {
	path := explicitPath
	if path == "" {
		path = filepath.Join(dir, ConfigName)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Config{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("config file not found: " + path).
			WithCause(err)
	}
	var cfg types.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return types.Config{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse config yaml").
			WithCause(err)
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}
