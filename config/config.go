/*
Package config loads the optional .loomrc.yaml file that customizes
REPL cosmetics and which extension modules are auto-used without an
explicit `use` directive in source.

Grounded on the db47h-ngaro-style small-tool config pattern of a
single YAML file read via gopkg.in/yaml.v3 into a plain struct, with
every field defaulted so a missing or empty file is a valid config.
*/
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultFileName is the path the CLI passes to Load, relative to the
// current directory.
const DefaultFileName = ".loomrc.yaml"

// Config holds REPL and toolchain preferences. All fields have
// sensible zero values, so an absent file yields Default().
type Config struct {
	// Prompt is the REPL's input prompt string.
	Prompt string `yaml:"prompt"`
	// HistoryFile is where REPL line history persists between runs.
	HistoryFile string `yaml:"history_file"`
	// Color enables ANSI coloring of REPL output and diagnostics.
	Color bool `yaml:"color"`
	// AutoUse lists extension module names to register at REPL startup
	// even without a source-level `use` directive. `loom run` does not
	// read this file, so it does not apply this list.
	AutoUse []string `yaml:"auto_use"`
}

// Default returns the configuration used when no .loomrc.yaml is
// present.
func Default() Config {
	return Config{
		Prompt:      "loom> ",
		HistoryFile: ".loom_history",
		Color:       true,
	}
}

// Load reads and parses path, falling back to Default() if the file
// does not exist. A malformed file is an error; a missing one is not.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Wrapf(err, "reading config %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parsing config %s", path)
	}
	return cfg, nil
}
